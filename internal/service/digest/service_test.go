package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
	"github.com/inderaputra17/JLG-LOGS/pkg/clients/whatsapp"
)

type staticAlerts struct {
	alerts []models.AlertDescriptor
	err    error
}

func (s staticAlerts) Current(context.Context) ([]models.AlertDescriptor, error) {
	return s.alerts, s.err
}

type fakeMessenger struct {
	sent []whatsapp.SendTextMessageRequest
	err  error
}

func (f *fakeMessenger) SendTextMessage(_ context.Context, req whatsapp.SendTextMessageRequest) (*whatsapp.SendTextMessageResponse, error) {
	f.sent = append(f.sent, req)
	return &whatsapp.SendTextMessageResponse{}, f.err
}

type fakeExporter struct {
	calls int
	at    time.Time
	err   error
}

func (f *fakeExporter) ExportAlerts(_ context.Context, at time.Time, _ []models.AlertDescriptor) error {
	f.calls++
	f.at = at
	return f.err
}

var sample = []models.AlertDescriptor{
	{Module: models.ModuleComms, Title: "Set 7 (Golf)", Status: "Spoilt / Decommissioned", Location: "Tent 2", Severity: models.SeverityHigh},
	{Module: models.ModuleConsumable, Title: "Gloves", Status: "Low", Location: "Storeroom / ShelfC", Severity: models.SeverityMed},
}

func fixedNow() time.Time { return time.Date(2024, 5, 2, 0, 30, 0, 0, time.UTC) }

func TestSend_DeliversToBothSinks(t *testing.T) {
	msg := &fakeMessenger{}
	exp := &fakeExporter{}
	loc := time.FixedZone("SGT", 8*3600)
	svc := NewService(staticAlerts{alerts: sample}, nil, WithMessenger(msg, "6590000000"), WithExporter(exp), WithLocation(loc))
	svc.nowFn = fixedNow

	n, err := svc.Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, msg.sent, 1)
	assert.Equal(t, "6590000000", msg.sent[0].To)
	assert.Contains(t, msg.sent[0].Body, "2024-05-02 08:30: 2 alert(s)")
	assert.Contains(t, msg.sent[0].Body, "[HIGH] Comms: Set 7 (Golf) (Spoilt / Decommissioned) @ Tent 2")

	assert.Equal(t, 1, exp.calls)
	assert.Equal(t, loc, exp.at.Location())
}

func TestSend_SkipsWhenNoAlerts(t *testing.T) {
	msg := &fakeMessenger{}
	svc := NewService(staticAlerts{}, nil, WithMessenger(msg, "1"))

	n, err := svc.Send(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, msg.sent)
}

func TestSend_OneFailingSinkDoesNotBlockTheOther(t *testing.T) {
	msg := &fakeMessenger{err: errors.New("rate limited")}
	exp := &fakeExporter{}
	svc := NewService(staticAlerts{alerts: sample}, nil, WithMessenger(msg, "1"), WithExporter(exp))

	_, err := svc.Send(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, 1, exp.calls)
}

func TestSend_LoadError(t *testing.T) {
	svc := NewService(staticAlerts{err: models.ErrStoreUnavailable}, nil, WithExporter(&fakeExporter{}))
	_, err := svc.Send(context.Background())
	require.ErrorIs(t, err, models.ErrStoreUnavailable)
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewService(staticAlerts{}, nil).Enabled())
	assert.True(t, NewService(staticAlerts{}, nil, WithExporter(&fakeExporter{})).Enabled())
}
