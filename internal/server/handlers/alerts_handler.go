package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
)

// AlertService derives alerts from the current ledger contents.
type AlertService interface {
	Current(ctx context.Context) ([]models.AlertDescriptor, error)
	Summary(ctx context.Context) (models.DashboardSummary, error)
}

// AlertsHandler serves the alert list and dashboard figures.
type AlertsHandler struct {
	svc    AlertService
	logger *zap.Logger
}

// NewAlertsHandler constructs the HTTP handler adapter.
func NewAlertsHandler(svc AlertService, logger *zap.Logger) *AlertsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertsHandler{svc: svc, logger: logger}
}

// List returns alerts ordered by severity.
func (h *AlertsHandler) List(c *gin.Context) {
	alerts, err := h.svc.Current(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.AlertDescriptor]{Items: alerts, Count: len(alerts)})
}

// Dashboard returns record totals and alert counts.
func (h *AlertsHandler) Dashboard(c *gin.Context) {
	sum, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
