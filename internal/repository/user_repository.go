package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/alerta-utec/alerta-api/internal/models"
)

// ErrEmailTaken is returned by Create when the email is already registered.
// The insert is conditional, so two concurrent creates for the same email
// yield exactly one success and one ErrEmailTaken.
var ErrEmailTaken = errors.New("repository: email already registered")

// UserRepository provides database access for accounts. The table name is
// taken from configuration so deployments can target different schemas.
type UserRepository struct {
	db    *sqlx.DB
	table string
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB, table string) *UserRepository {
	if table == "" {
		table = "users"
	}
	return &UserRepository{db: db, table: table}
}

// FindByEmail returns an account by its normalized email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT id, email, password_hash, full_name, role, status, last_login_at, created_at, updated_at FROM %s WHERE email = $1 LIMIT 1`, r.table)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, models.NormalizeEmail(email)); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// Create inserts a new account guarded by the unique email constraint. The
// conditional insert leaves no read-then-write window: the losing writer of a
// race observes ErrEmailTaken, never a silent overwrite.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = models.NormalizeEmail(user.Email)
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO %s (id, email, password_hash, full_name, role, status, created_at, updated_at) VALUES (:id, :email, :password_hash, :full_name, :role, :status, :created_at, :updated_at) ON CONFLICT (email) DO NOTHING`, r.table)
	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if rows == 0 {
		return ErrEmailTaken
	}
	return nil
}

// UpdateLastLogin stamps last_login_at for the account. A missing account is
// a no-op, not an error.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, email string, ts time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET last_login_at = $2, updated_at = $3 WHERE email = $1`, r.table)
	if _, err := r.db.ExecContext(ctx, query, models.NormalizeEmail(email), ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
