package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alerta-utec/alerta-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestFindByEmailNormalizesKey(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db, "users")

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "status", "last_login_at", "created_at", "updated_at"}).
		AddRow("u1", "a@x.edu", "hash", "A B", string(models.RoleStudent), string(models.StatusActive), nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, role, status, last_login_at, created_at, updated_at FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("a@x.edu").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "  A@X.EDU ")
	require.NoError(t, err)
	assert.Equal(t, "a@x.edu", user.Email)
	assert.Nil(t, user.LastLoginAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db, "users")

	mock.ExpectQuery("SELECT .+ FROM users WHERE email").
		WithArgs("missing@x.edu").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "missing@x.edu")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCreateUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db, "users")

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{Email: "A@X.edu", PasswordHash: "hash", FullName: "A B", Role: models.RoleStudent, Status: models.StatusActive}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "a@x.edu", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserEmailTaken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db, "users")

	// conditional insert hits the conflict clause and touches no rows
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 0))

	user := &models.User{Email: "a@x.edu", PasswordHash: "hash", FullName: "A B", Role: models.RoleStudent, Status: models.StatusActive}
	err := repo.Create(context.Background(), user)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateLastLogin(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db, "users")

	ts := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login_at = $2, updated_at = $3 WHERE email = $1")).
		WithArgs("a@x.edu", ts, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateLastLogin(context.Background(), "A@x.edu", ts)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLastLoginMissingAccountIsNoop(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db, "users")

	ts := time.Now().UTC()
	mock.ExpectExec("UPDATE users SET last_login_at").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateLastLogin(context.Background(), "missing@x.edu", ts)
	assert.NoError(t, err)
}

func TestCustomTableName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db, "accounts_staging")

	mock.ExpectQuery("FROM accounts_staging WHERE email").
		WithArgs("a@x.edu").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "a@x.edu")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
