package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inderaputra17/JLG-LOGS/internal/config"
	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
)

type recordingAppender struct {
	spreadsheetID string
	sheetRange    string
	rows          [][]interface{}
	err           error
}

func (r *recordingAppender) AppendRows(_ context.Context, spreadsheetID, sheetRange string, rows [][]interface{}) error {
	r.spreadsheetID, r.sheetRange, r.rows = spreadsheetID, sheetRange, rows
	return r.err
}

func TestExportAlerts(t *testing.T) {
	app := &recordingAppender{}
	exp := newAlertExporter(app, config.SheetsConfig{SpreadsheetID: "sheet-1", AlertsRange: "Alerts!A:G"}, nil)

	at := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	err := exp.ExportAlerts(context.Background(), at, []models.AlertDescriptor{{
		Module: models.ModuleComms, Title: "Set 7 (Golf)", Status: "Spoilt / Decommissioned",
		Location: "Tent 2", Severity: models.SeverityHigh, Link: "communications.html",
	}})
	require.NoError(t, err)

	assert.Equal(t, "sheet-1", app.spreadsheetID)
	assert.Equal(t, "Alerts!A:G", app.sheetRange)
	require.Len(t, app.rows, 1)
	assert.Equal(t, []interface{}{
		"2024-05-02T08:00:00Z", "high", "Comms", "Set 7 (Golf)", "Spoilt / Decommissioned", "Tent 2", "communications.html",
	}, app.rows[0])
}

func TestExportAlerts_SkipsEmpty(t *testing.T) {
	app := &recordingAppender{err: errors.New("should not be called")}
	exp := newAlertExporter(app, config.SheetsConfig{AlertsRange: "Alerts!A:G"}, nil)
	require.NoError(t, exp.ExportAlerts(context.Background(), time.Now(), nil))
	assert.Nil(t, app.rows)
}

func TestExportAlerts_PropagatesErrors(t *testing.T) {
	app := &recordingAppender{err: errors.New("quota")}
	exp := newAlertExporter(app, config.SheetsConfig{AlertsRange: "Alerts!A:G"}, nil)
	err := exp.ExportAlerts(context.Background(), time.Now(), []models.AlertDescriptor{{Title: "x"}})
	require.Error(t, err)
}
