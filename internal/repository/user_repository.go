package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pwannenmacher/criteria-settings/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

const userColumns = `id, username, name, password_hash, is_staff, is_superuser, is_active,
	is_default_password, question, answer_hash, date_joined, last_login_at, created_at, updated_at`

// UserRepository handles user database operations
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, name, password_hash, is_staff, is_superuser, is_active,
		                   is_default_password, date_joined, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, $8)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Name,
		user.PasswordHash,
		user.IsStaff,
		user.IsSuperuser,
		user.IsActive,
		user.IsDefaultPassword,
		now,
	).Scan(&user.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.DateJoined = now
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.PasswordHash,
		&user.IsStaff,
		&user.IsSuperuser,
		&user.IsActive,
		&user.IsDefaultPassword,
		&user.Question,
		&user.AnswerHash,
		&user.DateJoined,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdatePassword replaces the password hash and sets the default-password flag
func (r *UserRepository) UpdatePassword(ctx context.Context, userID uint, passwordHash string, isDefault bool) error {
	query := `
		UPDATE users
		SET password_hash = $1, is_default_password = $2, updated_at = $3
		WHERE id = $4
	`
	return r.execOne(ctx, "update password", query, passwordHash, isDefault, time.Now(), userID)
}

// SetInitialCredentials stores the first user-chosen password together with
// the security question and hashed answer, clearing the default-password flag.
func (r *UserRepository) SetInitialCredentials(ctx context.Context, userID uint, passwordHash, question, answerHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, question = $2, answer_hash = $3,
		    is_default_password = FALSE, updated_at = $4
		WHERE id = $5
	`
	return r.execOne(ctx, "set initial credentials", query, passwordHash, question, answerHash, time.Now(), userID)
}

// UpdateLastLogin updates the user's last login timestamp
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID uint) error {
	query := `UPDATE users SET last_login_at = $1 WHERE id = $2`
	return r.execOne(ctx, "update last login", query, time.Now(), userID)
}

// SetActive activates or deactivates a user
func (r *UserRepository) SetActive(ctx context.Context, userID uint, active bool) error {
	query := `UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`
	return r.execOne(ctx, "update active status", query, active, time.Now(), userID)
}

func (r *UserRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
