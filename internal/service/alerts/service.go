// Package alerts derives severity-ranked alerts and dashboard figures from the
// ledger. It never writes.
package alerts

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
	"github.com/inderaputra17/JLG-LOGS/internal/metrics"
)

// recordSource is the read side of the ledger needed here.
type recordSource interface {
	ListStock(ctx context.Context, filter models.StockFilter) ([]models.StockRecord, error)
	ListComms(ctx context.Context) ([]models.CommsRecord, error)
}

// Service computes alerts on demand.
type Service struct {
	records recordSource
	logger  *zap.Logger
}

// NewService creates a new alerts service.
func NewService(records recordSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{records: records, logger: logger}
}

// Current loads every record and returns the derived alerts.
func (s *Service) Current(ctx context.Context) ([]models.AlertDescriptor, error) {
	stock, comms, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	alerts := DeriveAlerts(stock, comms)
	s.publish(alerts)
	return alerts, nil
}

// Summary returns record totals next to the alert counts.
func (s *Service) Summary(ctx context.Context) (models.DashboardSummary, error) {
	stock, comms, err := s.load(ctx)
	if err != nil {
		return models.DashboardSummary{}, err
	}
	alerts := DeriveAlerts(stock, comms)
	s.publish(alerts)

	sum := models.DashboardSummary{
		TotalRecords: len(stock),
		Comms:        len(comms),
		Alerts:       CountBySeverity(alerts),
	}
	for _, r := range stock {
		switch r.Kind {
		case models.KindConsumable:
			sum.Consumables.Records++
			sum.Consumables.Quantity += r.Quantity
		case models.KindFixture:
			sum.Fixtures.Records++
			sum.Fixtures.Quantity += r.Quantity
		}
	}
	return sum, nil
}

func (s *Service) load(ctx context.Context) ([]models.StockRecord, []models.CommsRecord, error) {
	var (
		stock []models.StockRecord
		comms []models.CommsRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stock, err = s.records.ListStock(gctx, models.StockFilter{})
		if err != nil {
			return fmt.Errorf("load stock: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		comms, err = s.records.ListComms(gctx)
		if err != nil {
			return fmt.Errorf("load comms: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return stock, comms, nil
}

func (s *Service) publish(alerts []models.AlertDescriptor) {
	counts := CountBySeverity(alerts)
	for sev, n := range counts {
		metrics.AlertsActive.WithLabelValues(string(sev)).Set(float64(n))
	}
	s.logger.Debug("alerts derived", zap.Int("total", len(alerts)), zap.Int("high", counts[models.SeverityHigh]))
}
