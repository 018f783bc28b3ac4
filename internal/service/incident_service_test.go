package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alerta-utec/alerta-api/internal/models"
	appErrors "github.com/alerta-utec/alerta-api/pkg/errors"
)

type mockIncidentRepo struct {
	incidents map[string]*models.Incident
	comments  map[string][]models.Comment
	nextID    int
}

func newMockIncidentRepo() *mockIncidentRepo {
	return &mockIncidentRepo{
		incidents: make(map[string]*models.Incident),
		comments:  make(map[string][]models.Comment),
	}
}

func (m *mockIncidentRepo) Create(ctx context.Context, incident *models.Incident) error {
	m.nextID++
	if incident.ID == "" {
		incident.ID = "i1"
	}
	stored := *incident
	m.incidents[incident.ID] = &stored
	return nil
}

func (m *mockIncidentRepo) FindByID(ctx context.Context, id string) (*models.Incident, error) {
	incident, ok := m.incidents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *incident
	return &copied, nil
}

func (m *mockIncidentRepo) UpdateStatus(ctx context.Context, id string, status *models.IncidentStatus, urgency *models.IncidentUrgency) (*models.Incident, error) {
	incident, ok := m.incidents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if status != nil {
		incident.Status = *status
	}
	if urgency != nil {
		incident.Urgency = *urgency
	}
	copied := *incident
	return &copied, nil
}

func (m *mockIncidentRepo) List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, error) {
	var out []models.Incident
	for _, incident := range m.incidents {
		if filter.Status != nil && incident.Status != *filter.Status {
			continue
		}
		out = append(out, *incident)
	}
	return out, nil
}

func (m *mockIncidentRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	m.comments[comment.IncidentID] = append(m.comments[comment.IncidentID], *comment)
	return nil
}

func (m *mockIncidentRepo) ListComments(ctx context.Context, incidentID string) ([]models.Comment, error) {
	return m.comments[incidentID], nil
}

type recordingPublisher struct {
	created []string
	updated []string
}

func (p *recordingPublisher) IncidentCreated(ctx context.Context, incident *models.Incident) {
	p.created = append(p.created, incident.ID)
}

func (p *recordingPublisher) IncidentUpdated(ctx context.Context, incident, previous *models.Incident) {
	p.updated = append(p.updated, incident.ID)
}

func studentClaims() *models.TokenClaims {
	return &models.TokenClaims{
		Role:             models.RoleStudent,
		TokenType:        models.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "a@x.edu"},
	}
}

func TestIncidentCreateDefaultsAndReporter(t *testing.T) {
	repo := newMockIncidentRepo()
	pub := &recordingPublisher{}
	svc := NewIncidentService(repo, pub, validator.New(), zap.NewNop())

	incident, err := svc.Create(context.Background(), studentClaims(), models.CreateIncidentRequest{
		Title:    "Broken light",
		Location: "Tower A",
	})
	require.NoError(t, err)
	assert.Equal(t, models.IncidentPending, incident.Status)
	assert.Equal(t, models.UrgencyLow, incident.Urgency)
	assert.Equal(t, "a@x.edu", incident.ReporterID)
	assert.Equal(t, []string{incident.ID}, pub.created)
}

func TestIncidentCreateValidation(t *testing.T) {
	svc := NewIncidentService(newMockIncidentRepo(), nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), studentClaims(), models.CreateIncidentRequest{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestIncidentUpdateStatusPublishesEvent(t *testing.T) {
	repo := newMockIncidentRepo()
	pub := &recordingPublisher{}
	svc := NewIncidentService(repo, pub, validator.New(), zap.NewNop())

	incident, err := svc.Create(context.Background(), studentClaims(), models.CreateIncidentRequest{Title: "Broken light", Location: "Tower A"})
	require.NoError(t, err)

	status := models.IncidentInProgress
	updated, err := svc.Update(context.Background(), incident.ID, models.UpdateIncidentRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.IncidentInProgress, updated.Status)
	assert.Equal(t, []string{incident.ID}, pub.updated)
}

func TestIncidentUpdateNothingToUpdate(t *testing.T) {
	svc := NewIncidentService(newMockIncidentRepo(), nil, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), "i1", models.UpdateIncidentRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestIncidentUpdateNotFound(t *testing.T) {
	svc := NewIncidentService(newMockIncidentRepo(), nil, validator.New(), zap.NewNop())

	status := models.IncidentResolved
	_, err := svc.Update(context.Background(), "missing", models.UpdateIncidentRequest{Status: &status})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAddCommentToUnknownIncident(t *testing.T) {
	svc := NewIncidentService(newMockIncidentRepo(), nil, validator.New(), zap.NewNop())

	_, err := svc.AddComment(context.Background(), studentClaims(), "missing", models.CreateCommentRequest{Comment: "hello"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAddAndListComments(t *testing.T) {
	repo := newMockIncidentRepo()
	svc := NewIncidentService(repo, nil, validator.New(), zap.NewNop())

	incident, err := svc.Create(context.Background(), studentClaims(), models.CreateIncidentRequest{Title: "Broken light", Location: "Tower A"})
	require.NoError(t, err)

	comment, err := svc.AddComment(context.Background(), studentClaims(), incident.ID, models.CreateCommentRequest{Comment: "on my way"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.edu", comment.UserID)

	comments, err := svc.ListComments(context.Background(), incident.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "on my way", comments[0].Comment)
}
