package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/alerta-utec/alerta-api/internal/models"
)

// IncidentRepository provides database access for incident reports and their
// comments.
type IncidentRepository struct {
	db            *sqlx.DB
	table         string
	commentsTable string
}

// NewIncidentRepository creates a new instance of IncidentRepository.
func NewIncidentRepository(db *sqlx.DB, table, commentsTable string) *IncidentRepository {
	if table == "" {
		table = "incidents"
	}
	if commentsTable == "" {
		commentsTable = "incident_comments"
	}
	return &IncidentRepository{db: db, table: table, commentsTable: commentsTable}
}

// Create inserts a new incident report.
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	if incident.ID == "" {
		incident.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	incident.CreatedAt = now
	incident.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO %s (id, title, description, location, status, urgency, reporter_id, reporter_email, created_at, updated_at) VALUES (:id, :title, :description, :location, :status, :urgency, :reporter_id, :reporter_email, :created_at, :updated_at)`, r.table)
	if _, err := r.db.NamedExecContext(ctx, query, incident); err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// FindByID returns an incident by identifier.
func (r *IncidentRepository) FindByID(ctx context.Context, id string) (*models.Incident, error) {
	query := fmt.Sprintf(`SELECT id, title, description, location, status, urgency, reporter_id, reporter_email, created_at, updated_at FROM %s WHERE id = $1 LIMIT 1`, r.table)
	var incident models.Incident
	if err := r.db.GetContext(ctx, &incident, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find incident: %w", err)
	}
	return &incident, nil
}

// UpdateStatus mutates status and/or urgency. Other fields are immutable
// after creation.
func (r *IncidentRepository) UpdateStatus(ctx context.Context, id string, status *models.IncidentStatus, urgency *models.IncidentUrgency) (*models.Incident, error) {
	sets := []string{"updated_at = :updated_at"}
	args := map[string]interface{}{
		"id":         id,
		"updated_at": time.Now().UTC(),
	}
	if status != nil {
		sets = append(sets, "status = :status")
		args["status"] = *status
	}
	if urgency != nil {
		sets = append(sets, "urgency = :urgency")
		args["urgency"] = *urgency
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = :id`, r.table, strings.Join(sets, ", "))
	res, err := r.db.NamedExecContext(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("update incident: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update incident: %w", err)
	}
	if rows == 0 {
		return nil, sql.ErrNoRows
	}

	return r.FindByID(ctx, id)
}

// List returns incidents matching the filter, newest first.
func (r *IncidentRepository) List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, error) {
	baseQuery := fmt.Sprintf(`SELECT id, title, description, location, status, urgency, reporter_id, reporter_email, created_at, updated_at FROM %s WHERE 1=1`, r.table)
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Urgency != nil {
		conditions = append(conditions, fmt.Sprintf("urgency = $%d", len(args)+1))
		args = append(args, *filter.Urgency)
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	baseQuery += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)

	var incidents []models.Incident
	if err := r.db.SelectContext(ctx, &incidents, baseQuery, args...); err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	return incidents, nil
}

// CreateComment attaches a comment to an incident.
func (r *IncidentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, incident_id, user_id, user_name, comment, created_at) VALUES (:id, :incident_id, :user_id, :user_name, :comment, :created_at)`, r.commentsTable)
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// ListComments returns the comments for an incident, oldest first.
func (r *IncidentRepository) ListComments(ctx context.Context, incidentID string) ([]models.Comment, error) {
	query := fmt.Sprintf(`SELECT id, incident_id, user_id, user_name, comment, created_at FROM %s WHERE incident_id = $1 ORDER BY created_at ASC`, r.commentsTable)
	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, query, incidentID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
