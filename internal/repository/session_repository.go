package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pwannenmacher/criteria-settings/internal/models"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// SessionRepository handles issued token sessions
type SessionRepository struct {
	db DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create records an issued token
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO user_sessions (user_id, jti, token_type, expires_at, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		session.UserID,
		session.JTI,
		session.TokenType,
		session.ExpiresAt,
		session.IPAddress,
		session.UserAgent,
		now,
	).Scan(&session.ID)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	session.CreatedAt = now
	return nil
}

// GetByJTI retrieves a live session by token id
func (r *SessionRepository) GetByJTI(ctx context.Context, jti string) (*models.Session, error) {
	query := `
		SELECT id, user_id, jti, token_type, expires_at, COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at
		FROM user_sessions
		WHERE jti = $1 AND expires_at > $2
	`
	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, jti, time.Now()).Scan(
		&session.ID,
		&session.UserID,
		&session.JTI,
		&session.TokenType,
		&session.ExpiresAt,
		&session.IPAddress,
		&session.UserAgent,
		&session.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// DeleteByJTI revokes a single token
func (r *SessionRepository) DeleteByJTI(ctx context.Context, jti string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE jti = $1`, jti)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteAllUserSessions revokes every token of a user
func (r *SessionRepository) DeleteAllUserSessions(ctx context.Context, userID uint) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpiredSessions purges sessions past their expiry and returns how many were removed
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE expires_at <= $1`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
