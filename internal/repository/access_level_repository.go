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
	ErrAccessLevelNotFound = errors.New("access level not found")
	ErrAccessLevelExists   = errors.New("access level already exists")
)

const accessLevelColumns = `a.id, a.access_level, a.can_read_eval_data, a.can_write_eval_data,
	a.can_read_eval_settings, a.can_write_eval_settings, a.can_read_criteria_settings,
	a.can_write_criteria_settings, a.can_export, a.created_user_id, a.updated_user_id,
	a.created_at, a.updated_at`

// AccessLevelRepository handles access level database operations
type AccessLevelRepository struct {
	db DBTX
}

// NewAccessLevelRepository creates a new access level repository
func NewAccessLevelRepository(db DBTX) *AccessLevelRepository {
	return &AccessLevelRepository{db: db}
}

// Create creates a new access level
func (r *AccessLevelRepository) Create(ctx context.Context, level *models.AccessLevel) error {
	query := `
		INSERT INTO access_levels (access_level, can_read_eval_data, can_write_eval_data,
			can_read_eval_settings, can_write_eval_settings, can_read_criteria_settings,
			can_write_criteria_settings, can_export, created_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id
	`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		level.Name,
		level.CanReadEvalData,
		level.CanWriteEvalData,
		level.CanReadEvalSettings,
		level.CanWriteEvalSettings,
		level.CanReadCriteriaSettings,
		level.CanWriteCriteriaSettings,
		level.CanExport,
		level.CreatedUserID,
		now,
	).Scan(&level.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrAccessLevelExists
		}
		return fmt.Errorf("failed to create access level: %w", err)
	}
	level.CreatedAt = now
	level.UpdatedAt = now
	return nil
}

// GetByName retrieves an access level by name
func (r *AccessLevelRepository) GetByName(ctx context.Context, name string) (*models.AccessLevel, error) {
	query := `SELECT ` + accessLevelColumns + ` FROM access_levels a WHERE a.access_level = $1`
	level := &models.AccessLevel{}
	err := scanAccessLevel(r.db.QueryRowContext(ctx, query, name), level)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccessLevelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get access level: %w", err)
	}
	return level, nil
}

func scanAccessLevel(row rowScanner, level *models.AccessLevel) error {
	return row.Scan(
		&level.ID,
		&level.Name,
		&level.CanReadEvalData,
		&level.CanWriteEvalData,
		&level.CanReadEvalSettings,
		&level.CanWriteEvalSettings,
		&level.CanReadCriteriaSettings,
		&level.CanWriteCriteriaSettings,
		&level.CanExport,
		&level.CreatedUserID,
		&level.UpdatedUserID,
		&level.CreatedAt,
		&level.UpdatedAt,
	)
}
