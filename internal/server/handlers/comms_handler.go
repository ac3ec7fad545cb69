package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
	"github.com/inderaputra17/JLG-LOGS/internal/service/ledger"
)

// CommsService is the radio set surface served over HTTP.
type CommsService interface {
	UpsertComms(ctx context.Context, in ledger.CommsInput) (ledger.CommsResult, error)
	SetCommsStatus(ctx context.Context, id string, status models.CommsStatus) (models.CommsRecord, error)
	RemoveComms(ctx context.Context, id string) error
	ListComms(ctx context.Context) ([]models.CommsRecord, error)
	GetComms(ctx context.Context, id string) (models.CommsRecord, error)
}

// CommsHandler serves radio set records.
type CommsHandler struct {
	svc    CommsService
	logger *zap.Logger
}

// NewCommsHandler constructs the HTTP handler adapter.
func NewCommsHandler(svc CommsService, logger *zap.Logger) *CommsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommsHandler{svc: svc, logger: logger}
}

type commsRequest struct {
	SetNumber     any    `json:"setNumber"`
	VolunteerRole string `json:"volunteerRole"`
	LocationOfUse string `json:"locationOfUse"`
	CallSign      string `json:"callSign"`
	Status        string `json:"status"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// List returns every radio set ordered by set number.
func (h *CommsHandler) List(c *gin.Context) {
	items, err := h.svc.ListComms(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.CommsRecord]{Items: items, Count: len(items)})
}

// Get returns one radio set.
func (h *CommsHandler) Get(c *gin.Context) {
	rec, err := h.svc.GetComms(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Upsert writes a radio set keyed by its set number.
func (h *CommsHandler) Upsert(c *gin.Context) {
	var req commsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	res, err := h.svc.UpsertComms(c.Request.Context(), ledger.CommsInput{
		SetNumber: models.ParseQuantity(req.SetNumber, 0),
		Role:      req.VolunteerRole,
		Location:  req.LocationOfUse,
		CallSign:  req.CallSign,
		Status:    models.CommsStatus(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

// SetStatus changes only the status of a radio set.
func (h *CommsHandler) SetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	rec, err := h.svc.SetCommsStatus(c.Request.Context(), c.Param("id"), models.CommsStatus(strings.TrimSpace(req.Status)))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Delete removes a radio set.
func (h *CommsHandler) Delete(c *gin.Context) {
	if err := h.svc.RemoveComms(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
