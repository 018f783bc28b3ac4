package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alerta-utec/alerta-api/internal/models"
)

// Event is the payload published to realtime consumers.
type Event struct {
	Type       string                 `json:"type"`
	IncidentID string                 `json:"incident_id"`
	Title      string                 `json:"title,omitempty"`
	Location   string                 `json:"location,omitempty"`
	Status     models.IncidentStatus  `json:"status"`
	Urgency    models.IncidentUrgency `json:"urgency"`
	Timestamp  int64                  `json:"timestamp"`
}

const (
	eventIncidentCreated       = "IncidentCreated"
	eventIncidentStatusChanged = "IncidentStatusChanged"
)

// Broadcaster publishes incident lifecycle events to the event channel and
// escalation alerts to the alert channel. Publishing is best-effort: failures
// are logged, never surfaced to the request.
type Broadcaster struct {
	client       *redis.Client
	eventChannel string
	alertChannel string
	logger       *zap.Logger
}

// NewBroadcaster wraps an existing Redis client.
func NewBroadcaster(client *redis.Client, eventChannel, alertChannel string, logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{client: client, eventChannel: eventChannel, alertChannel: alertChannel, logger: logger}
}

// IncidentCreated notifies consumers about a newly reported incident.
func (b *Broadcaster) IncidentCreated(ctx context.Context, incident *models.Incident) {
	b.publish(ctx, CreatedEvent(incident))
}

// IncidentUpdated notifies consumers when status or urgency changed.
func (b *Broadcaster) IncidentUpdated(ctx context.Context, incident, previous *models.Incident) {
	event := UpdateEvent(incident, previous)
	if event == nil {
		return
	}
	b.publish(ctx, event)
}

func (b *Broadcaster) publish(ctx context.Context, event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Warn("failed to encode realtime event", zap.Error(err))
		return
	}

	if err := b.client.Publish(ctx, b.eventChannel, payload).Err(); err != nil {
		b.logger.Warn("failed to publish realtime event", zap.String("channel", b.eventChannel), zap.Error(err))
	}

	if ShouldAlert(event.Status, event.Urgency) {
		if err := b.client.Publish(ctx, b.alertChannel, payload).Err(); err != nil {
			b.logger.Warn("failed to publish alert", zap.String("channel", b.alertChannel), zap.Error(err))
		}
	}
}

// CreatedEvent builds the payload for a newly reported incident.
func CreatedEvent(incident *models.Incident) *Event {
	return &Event{
		Type:       eventIncidentCreated,
		IncidentID: incident.ID,
		Title:      incident.Title,
		Location:   incident.Location,
		Status:     incident.Status,
		Urgency:    incident.Urgency,
		Timestamp:  incident.CreatedAt.Unix(),
	}
}

// UpdateEvent builds the payload for an incident mutation, or nil when
// neither status nor urgency changed.
func UpdateEvent(incident, previous *models.Incident) *Event {
	if previous != nil && incident.Status == previous.Status && incident.Urgency == previous.Urgency {
		return nil
	}
	return &Event{
		Type:       eventIncidentStatusChanged,
		IncidentID: incident.ID,
		Status:     incident.Status,
		Urgency:    incident.Urgency,
		Timestamp:  incident.UpdatedAt.Unix(),
	}
}

// ShouldAlert decides whether an incident state warrants an operator alert.
func ShouldAlert(status models.IncidentStatus, urgency models.IncidentUrgency) bool {
	switch urgency {
	case models.UrgencyHigh, models.UrgencyCritical:
		return true
	}
	switch status {
	case models.IncidentInProgress, models.IncidentEscalated:
		return true
	}
	return false
}
