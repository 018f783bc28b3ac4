package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alerta-utec/alerta-api/internal/models"
	appErrors "github.com/alerta-utec/alerta-api/pkg/errors"
)

type incidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	FindByID(ctx context.Context, id string) (*models.Incident, error)
	UpdateStatus(ctx context.Context, id string, status *models.IncidentStatus, urgency *models.IncidentUrgency) (*models.Incident, error)
	List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, incidentID string) ([]models.Comment, error)
}

// incidentPublisher fans incident lifecycle events out to realtime consumers.
// Publishing is best-effort; a failed publish never fails the request.
type incidentPublisher interface {
	IncidentCreated(ctx context.Context, incident *models.Incident)
	IncidentUpdated(ctx context.Context, incident, previous *models.Incident)
}

// IncidentService provides incident report and comment use cases. All
// authorization decisions happen upstream; reporter identity comes from the
// request's trust context.
type IncidentService struct {
	repo      incidentRepository
	publisher incidentPublisher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIncidentService constructs an IncidentService instance. The publisher is
// optional.
func NewIncidentService(repo incidentRepository, publisher incidentPublisher, validate *validator.Validate, logger *zap.Logger) *IncidentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &IncidentService{repo: repo, publisher: publisher, validator: validate, logger: logger}
}

// Create reports a new incident on behalf of the authenticated account.
func (s *IncidentService) Create(ctx context.Context, claims *models.TokenClaims, req models.CreateIncidentRequest) (*models.Incident, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid incident payload")
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = models.UrgencyLow
	}

	incident := &models.Incident{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		Status:        models.IncidentPending,
		Urgency:       urgency,
		ReporterID:    claims.Subject,
		ReporterEmail: claims.Subject,
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist incident")
	}

	if s.publisher != nil {
		s.publisher.IncidentCreated(ctx, incident)
	}

	return incident, nil
}

// Get returns a single incident.
func (s *IncidentService) Get(ctx context.Context, id string) (*models.Incident, error) {
	incident, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "incident not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incident")
	}
	return incident, nil
}

// List returns incidents matching the filter.
func (s *IncidentService) List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, error) {
	incidents, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list incidents")
	}
	return incidents, nil
}

// Update mutates status and/or urgency of an incident.
func (s *IncidentService) Update(ctx context.Context, id string, req models.UpdateIncidentRequest) (*models.Incident, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}
	if req.Status == nil && req.Urgency == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}

	previous, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "incident not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incident")
	}

	incident, err := s.repo.UpdateStatus(ctx, id, req.Status, req.Urgency)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "incident not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update incident")
	}

	if s.publisher != nil {
		s.publisher.IncidentUpdated(ctx, incident, previous)
	}

	return incident, nil
}

// AddComment attaches a comment to an existing incident.
func (s *IncidentService) AddComment(ctx context.Context, claims *models.TokenClaims, incidentID string, req models.CreateCommentRequest) (*models.Comment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}

	if _, err := s.repo.FindByID(ctx, incidentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "incident not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incident")
	}

	comment := &models.Comment{
		IncidentID: incidentID,
		UserID:     claims.Subject,
		UserName:   claims.Subject,
		Comment:    req.Comment,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist comment")
	}

	return comment, nil
}

// ListComments returns comments for an incident, oldest first.
func (s *IncidentService) ListComments(ctx context.Context, incidentID string) ([]models.Comment, error) {
	if _, err := s.repo.FindByID(ctx, incidentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "incident not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incident")
	}

	comments, err := s.repo.ListComments(ctx, incidentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}
	return comments, nil
}
