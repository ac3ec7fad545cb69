// Package ledger implements the stock and comms ledgers on top of a recordstore.Store:
// merge-on-create, field updates, deletes and quantity-conserving transfers.
package ledger

import (
	"time"

	"go.uber.org/zap"

	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
)

const (
	stockCollection      = "stock"
	commsCollection      = "comms"
	stockClaimCollection = "stock_claims"
	commsClaimCollection = "comms_claims"
)

const (
	defaultMaxRetries      = 5
	defaultInitialInterval = 25 * time.Millisecond
)

// Service owns quantity arithmetic and identity-merge decisions.
type Service struct {
	store           recordstore.Store
	logger          *zap.Logger
	maxRetries      uint64
	initialInterval time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithRetry bounds how often a conflicting atomic unit is re-run and how long
// the first pause between attempts lasts.
func WithRetry(maxRetries int, initialInterval time.Duration) Option {
	return func(s *Service) {
		if maxRetries >= 0 {
			s.maxRetries = uint64(maxRetries)
		}
		if initialInterval >= 0 {
			s.initialInterval = initialInterval
		}
	}
}

// NewService creates a new ledger service.
func NewService(store recordstore.Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:           store,
		logger:          logger,
		maxRetries:      defaultMaxRetries,
		initialInterval: defaultInitialInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
