package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/inderaputra17/JLG-LOGS/internal/config"
	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
)

// valuesAppender is the part of the Sheets API used for exports.
type valuesAppender interface {
	AppendRows(ctx context.Context, spreadsheetID, sheetRange string, rows [][]interface{}) error
}

// AlertExporter appends alert snapshots to a spreadsheet, one row per alert.
type AlertExporter struct {
	values        valuesAppender
	spreadsheetID string
	sheetRange    string
	logger        *zap.Logger
}

// NewAlertExporter builds a Google Sheets backed exporter.
func NewAlertExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*AlertExporter, error) {
	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}
	return newAlertExporter(apiAppender{service: service}, cfg, logger), nil
}

func newAlertExporter(values valuesAppender, cfg config.SheetsConfig, logger *zap.Logger) *AlertExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertExporter{
		values:        values,
		spreadsheetID: cfg.SpreadsheetID,
		sheetRange:    cfg.AlertsRange,
		logger:        logger,
	}
}

// ExportAlerts appends the alerts observed at the given time.
func (e *AlertExporter) ExportAlerts(ctx context.Context, at time.Time, alerts []models.AlertDescriptor) error {
	if len(alerts) == 0 {
		return nil
	}
	if e.sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	if err := e.values.AppendRows(ctx, e.spreadsheetID, e.sheetRange, alertRows(at, alerts)); err != nil {
		return err
	}
	e.logger.Debug("alerts appended to sheet", zap.String("range", e.sheetRange), zap.Int("rows", len(alerts)))
	return nil
}

func alertRows(at time.Time, alerts []models.AlertDescriptor) [][]interface{} {
	stamp := at.Format(time.RFC3339)
	rows := make([][]interface{}, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, []interface{}{
			stamp, string(a.Severity), string(a.Module), a.Title, a.Status, a.Location, a.Link,
		})
	}
	return rows
}

type apiAppender struct {
	service *sheetsapi.Service
}

func (a apiAppender) AppendRows(ctx context.Context, spreadsheetID, sheetRange string, rows [][]interface{}) error {
	payload := &sheetsapi.ValueRange{Values: rows}

	call := a.service.Spreadsheets.Values.Append(spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", sheetRange, err)
	}
	return nil
}
