// Package digest builds the periodic alert digest and hands it to the
// configured sinks (WhatsApp message, spreadsheet export).
package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
	"github.com/inderaputra17/JLG-LOGS/pkg/clients/whatsapp"
)

const timeLayout = "2006-01-02 15:04"

type alertSource interface {
	Current(ctx context.Context) ([]models.AlertDescriptor, error)
}

// Exporter persists an alert snapshot.
type Exporter interface {
	ExportAlerts(ctx context.Context, at time.Time, alerts []models.AlertDescriptor) error
}

// Service sends alert digests. Nil sinks are skipped.
type Service struct {
	alerts    alertSource
	messenger whatsapp.Client
	recipient string
	exporter  Exporter
	location  *time.Location
	nowFn     func() time.Time
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMessenger sends digests as WhatsApp text messages to recipient.
func WithMessenger(client whatsapp.Client, recipient string) Option {
	return func(s *Service) {
		s.messenger = client
		s.recipient = recipient
	}
}

// WithExporter appends every digest's alerts to exporter.
func WithExporter(exporter Exporter) Option {
	return func(s *Service) { s.exporter = exporter }
}

// WithLocation renders timestamps in loc.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

// NewService wires a new digest service instance.
func NewService(alerts alertSource, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		alerts:   alerts,
		location: time.UTC,
		nowFn:    time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether any sink is configured.
func (s *Service) Enabled() bool {
	return s.messenger != nil || s.exporter != nil
}

// Send computes the current alerts and delivers them to every sink. Nothing is
// sent when there are no alerts. Sink failures are joined so one failing sink
// does not block the other.
func (s *Service) Send(ctx context.Context) (int, error) {
	alerts, err := s.alerts.Current(ctx)
	if err != nil {
		return 0, fmt.Errorf("load alerts: %w", err)
	}
	if len(alerts) == 0 {
		s.logger.Info("no active alerts, digest skipped")
		return 0, nil
	}

	now := s.nowFn().In(s.location)
	var errs []error

	if s.messenger != nil {
		_, err := s.messenger.SendTextMessage(ctx, whatsapp.SendTextMessageRequest{
			To:   s.recipient,
			Body: FormatDigest(now, alerts),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("send digest: %w", err))
		}
	}
	if s.exporter != nil {
		if err := s.exporter.ExportAlerts(ctx, now, alerts); err != nil {
			errs = append(errs, fmt.Errorf("export digest: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return len(alerts), err
	}
	s.logger.Info("alert digest delivered", zap.Int("alerts", len(alerts)))
	return len(alerts), nil
}

// FormatDigest renders alerts as a plain text message.
func FormatDigest(at time.Time, alerts []models.AlertDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock alerts %s: %d alert(s) require attention\n", at.Format(timeLayout), len(alerts))
	for _, a := range alerts {
		fmt.Fprintf(&b, "\n[%s] %s: %s (%s)", strings.ToUpper(string(a.Severity)), a.Module, a.Title, a.Status)
		if a.Location != "" {
			fmt.Fprintf(&b, " @ %s", a.Location)
		}
	}
	return b.String()
}
