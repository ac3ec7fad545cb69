package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Errors})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "record not found"})
	case errors.Is(err, models.ErrInvalidQuantity):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "invalid quantity"})
	case errors.Is(err, models.ErrInsufficientQuantity):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "insufficient quantity"})
	case errors.Is(err, models.ErrTransactionAborted):
		logger.Warn("transaction aborted", zap.Error(err))
		c.JSON(http.StatusConflict, errorResponse{Error: "too much concurrent activity, try again"})
	case errors.Is(err, models.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		logger.Error("store unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "store unavailable"})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
}
