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

// StockService is the stock ledger surface served over HTTP.
type StockService interface {
	AddOrMerge(ctx context.Context, in ledger.StockInput) (ledger.AddResult, error)
	UpdateFields(ctx context.Context, id string, in ledger.StockInput) (models.StockRecord, error)
	Remove(ctx context.Context, id string) error
	Transfer(ctx context.Context, in ledger.TransferInput) (ledger.TransferResult, error)
	ListStock(ctx context.Context, filter models.StockFilter) ([]models.StockRecord, error)
	GetStock(ctx context.Context, id string) (models.StockRecord, error)
	FindDuplicates(ctx context.Context) ([]models.DuplicateGroup, error)
}

// StockHandler serves the stock ledger.
type StockHandler struct {
	svc    StockService
	logger *zap.Logger
}

// NewStockHandler constructs the HTTP handler adapter.
func NewStockHandler(svc StockService, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{svc: svc, logger: logger}
}

// stockRequest accepts quantity as a JSON number or a numeric string.
type stockRequest struct {
	Type       string `json:"type"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Status     string `json:"status"`
	Quantity   any    `json:"quantity"`
	LocMain    string `json:"locMain"`
	LocExact   string `json:"locExact"`
	SiteStatus string `json:"siteStatus"`
}

func (r stockRequest) input() ledger.StockInput {
	return ledger.StockInput{
		Kind:          models.Kind(strings.TrimSpace(r.Type)),
		Name:          r.Name,
		Category:      r.Category,
		Status:        models.StockStatus(strings.TrimSpace(r.Status)),
		Quantity:      models.ParseQuantity(r.Quantity, -1),
		LocationMain:  r.LocMain,
		LocationExact: r.LocExact,
		SiteStatus:    models.SiteStatus(strings.TrimSpace(r.SiteStatus)),
	}
}

type transferRequest struct {
	LocMain    string `json:"locMain"`
	LocExact   string `json:"locExact"`
	SiteStatus string `json:"siteStatus"`
	Quantity   any    `json:"quantity"`
}

// quantity returns nil ("all") for an absent or blank amount.
func (r transferRequest) quantity() *int {
	switch v := r.Quantity.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
	}
	n := models.ParseQuantity(r.Quantity, -1)
	return &n
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// List returns stock records, optionally filtered by kind and search text.
func (h *StockHandler) List(c *gin.Context) {
	filter := models.StockFilter{
		Kind:   models.Kind(c.Query("kind")),
		Search: strings.TrimSpace(c.Query("q")),
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		respondError(c, h.logger, models.NewValidationError("kind", "must be consumable or fixture"))
		return
	}

	items, err := h.svc.ListStock(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.StockRecord]{Items: items, Count: len(items)})
}

// Get returns one stock record.
func (h *StockHandler) Get(c *gin.Context) {
	rec, err := h.svc.GetStock(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Create adds stock, merging into an existing pile with the same identity.
func (h *StockHandler) Create(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	res, err := h.svc.AddOrMerge(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status := http.StatusCreated
	if res.Merged {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

// Update replaces the editable fields of a stock record.
func (h *StockHandler) Update(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	rec, err := h.svc.UpdateFields(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Delete removes a stock record.
func (h *StockHandler) Delete(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Transfer moves quantity from the addressed record to another location.
func (h *StockHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	res, err := h.svc.Transfer(c.Request.Context(), ledger.TransferInput{
		SourceID:      c.Param("id"),
		LocationMain:  req.LocMain,
		LocationExact: req.LocExact,
		SiteStatus:    models.SiteStatus(strings.TrimSpace(req.SiteStatus)),
		Quantity:      req.quantity(),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Duplicates lists identity tuples held by more than one record.
func (h *StockHandler) Duplicates(c *gin.Context) {
	groups, err := h.svc.FindDuplicates(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.DuplicateGroup]{Items: groups, Count: len(groups)})
}
