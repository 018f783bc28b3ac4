package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alerta-utec/alerta-api/internal/models"
)

func sampleIncident() *models.Incident {
	now := time.Now().UTC()
	return &models.Incident{
		ID:        "i1",
		Title:     "Broken light",
		Location:  "Tower A",
		Status:    models.IncidentPending,
		Urgency:   models.UrgencyLow,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreatedEvent(t *testing.T) {
	incident := sampleIncident()
	event := CreatedEvent(incident)

	assert.Equal(t, "IncidentCreated", event.Type)
	assert.Equal(t, "i1", event.IncidentID)
	assert.Equal(t, "Broken light", event.Title)
	assert.Equal(t, incident.CreatedAt.Unix(), event.Timestamp)
}

func TestUpdateEventOnStatusChange(t *testing.T) {
	previous := sampleIncident()
	incident := sampleIncident()
	incident.Status = models.IncidentInProgress

	event := UpdateEvent(incident, previous)
	require.NotNil(t, event)
	assert.Equal(t, "IncidentStatusChanged", event.Type)
	assert.Equal(t, models.IncidentInProgress, event.Status)
}

func TestUpdateEventSuppressedWhenUnchanged(t *testing.T) {
	previous := sampleIncident()
	incident := sampleIncident()

	assert.Nil(t, UpdateEvent(incident, previous))
}

func TestShouldAlert(t *testing.T) {
	cases := []struct {
		status  models.IncidentStatus
		urgency models.IncidentUrgency
		want    bool
	}{
		{models.IncidentPending, models.UrgencyLow, false},
		{models.IncidentPending, models.UrgencyMedium, false},
		{models.IncidentPending, models.UrgencyHigh, true},
		{models.IncidentPending, models.UrgencyCritical, true},
		{models.IncidentInProgress, models.UrgencyLow, true},
		{models.IncidentEscalated, models.UrgencyLow, true},
		{models.IncidentResolved, models.UrgencyLow, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ShouldAlert(tc.status, tc.urgency), "status=%s urgency=%s", tc.status, tc.urgency)
	}
}
