package models

import "time"

// IncidentStatus tracks the response workflow for a reported incident.
type IncidentStatus string

const (
	IncidentPending    IncidentStatus = "pending"
	IncidentInProgress IncidentStatus = "in_progress"
	IncidentEscalated  IncidentStatus = "escalated"
	IncidentResolved   IncidentStatus = "resolved"
)

// IncidentUrgency ranks how quickly an incident needs attention.
type IncidentUrgency string

const (
	UrgencyLow      IncidentUrgency = "low"
	UrgencyMedium   IncidentUrgency = "medium"
	UrgencyHigh     IncidentUrgency = "high"
	UrgencyCritical IncidentUrgency = "critical"
)

// Incident is a campus incident report. Reporter fields come from the
// request's trust context, never from the payload.
type Incident struct {
	ID            string          `db:"id" json:"id"`
	Title         string          `db:"title" json:"title"`
	Description   string          `db:"description" json:"description"`
	Location      string          `db:"location" json:"location"`
	Status        IncidentStatus  `db:"status" json:"status"`
	Urgency       IncidentUrgency `db:"urgency" json:"urgency"`
	ReporterID    string          `db:"reporter_id" json:"reporter_id"`
	ReporterEmail string          `db:"reporter_email" json:"reporter_email"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// Comment is a discussion entry attached to an incident.
type Comment struct {
	ID         string    `db:"id" json:"id"`
	IncidentID string    `db:"incident_id" json:"incident_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	UserName   string    `db:"user_name" json:"user_name"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CreateIncidentRequest is the payload for reporting an incident.
type CreateIncidentRequest struct {
	Title       string          `json:"title" validate:"required,min=3,max=120"`
	Description string          `json:"description" validate:"max=2000"`
	Location    string          `json:"location" validate:"required,min=2,max=120"`
	Urgency     IncidentUrgency `json:"urgency" validate:"omitempty,oneof=low medium high critical"`
}

// UpdateIncidentRequest mutates status and urgency only.
type UpdateIncidentRequest struct {
	Status  *IncidentStatus  `json:"status" validate:"omitempty,oneof=pending in_progress escalated resolved"`
	Urgency *IncidentUrgency `json:"urgency" validate:"omitempty,oneof=low medium high critical"`
}

// IncidentFilter narrows incident listings.
type IncidentFilter struct {
	Status  *IncidentStatus
	Urgency *IncidentUrgency
	Limit   int
}

// CreateCommentRequest is the payload for commenting on an incident.
type CreateCommentRequest struct {
	Comment string `json:"comment" validate:"required,min=1,max=1000"`
}
