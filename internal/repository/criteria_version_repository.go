package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pwannenmacher/criteria-settings/internal/models"
)

var (
	ErrCriteriaVersionNotFound = errors.New("criteria version not found")
	ErrCriteriaVersionExists   = errors.New("criteria version already exists")
)

const criteriaVersionColumns = `id, version_name, role_name, state, created_user_id, updated_user_id, created_at, updated_at`

// CriteriaVersionRepository handles criteria version database operations
type CriteriaVersionRepository struct {
	db DBTX
}

// NewCriteriaVersionRepository creates a new criteria version repository
func NewCriteriaVersionRepository(db DBTX) *CriteriaVersionRepository {
	return &CriteriaVersionRepository{db: db}
}

// Create inserts a new criteria version
func (r *CriteriaVersionRepository) Create(ctx context.Context, version *models.CriteriaVersion) error {
	query := `
		INSERT INTO criteria_versions (version_name, role_name, state, created_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		version.VersionName,
		version.RoleName,
		version.State,
		version.CreatedUserID,
		now,
	).Scan(&version.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrCriteriaVersionExists
		}
		return fmt.Errorf("failed to create criteria version: %w", err)
	}
	version.CreatedAt = now
	version.UpdatedAt = now
	return nil
}

// GetByName retrieves a criteria version by its unique name
func (r *CriteriaVersionRepository) GetByName(ctx context.Context, name string) (*models.CriteriaVersion, error) {
	return r.getOne(ctx, `SELECT `+criteriaVersionColumns+` FROM criteria_versions WHERE version_name = $1`, name)
}

// GetByNameForUpdate retrieves a criteria version and locks its row until the transaction ends
func (r *CriteriaVersionRepository) GetByNameForUpdate(ctx context.Context, name string) (*models.CriteriaVersion, error) {
	return r.getOne(ctx, `SELECT `+criteriaVersionColumns+` FROM criteria_versions WHERE version_name = $1 FOR UPDATE`, name)
}

func (r *CriteriaVersionRepository) getOne(ctx context.Context, query string, arg any) (*models.CriteriaVersion, error) {
	version := &models.CriteriaVersion{}
	err := scanCriteriaVersion(r.db.QueryRowContext(ctx, query, arg), version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCriteriaVersionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get criteria version: %w", err)
	}
	return version, nil
}

// ExistsByName reports whether a version with the given name exists
func (r *CriteriaVersionRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM criteria_versions WHERE version_name = $1)`
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check criteria version: %w", err)
	}
	return exists, nil
}

// Count returns the total number of criteria versions
func (r *CriteriaVersionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM criteria_versions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count criteria versions: %w", err)
	}
	return count, nil
}

// List returns the criteria versions matching filter, ordered by id
func (r *CriteriaVersionRepository) List(ctx context.Context, filter models.CriteriaVersionFilter) ([]models.CriteriaVersion, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.RoleName != "" {
		args = append(args, filter.RoleName)
		conditions = append(conditions, fmt.Sprintf("role_name = $%d", len(args)))
	}
	if filter.State != "" {
		args = append(args, filter.State)
		conditions = append(conditions, fmt.Sprintf("state = $%d", len(args)))
	}

	query := `SELECT ` + criteriaVersionColumns + ` FROM criteria_versions`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria versions: %w", err)
	}
	defer rows.Close()

	var versions []models.CriteriaVersion
	for rows.Next() {
		var version models.CriteriaVersion
		if err := scanCriteriaVersion(rows, &version); err != nil {
			return nil, fmt.Errorf("failed to scan criteria version: %w", err)
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}

// Update persists name, role, state and updater of an existing version
func (r *CriteriaVersionRepository) Update(ctx context.Context, version *models.CriteriaVersion) error {
	query := `
		UPDATE criteria_versions
		SET version_name = $1, role_name = $2, state = $3, updated_user_id = $4, updated_at = $5
		WHERE id = $6
	`
	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		version.VersionName,
		version.RoleName,
		version.State,
		version.UpdatedUserID,
		now,
		version.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrCriteriaVersionExists
		}
		return fmt.Errorf("failed to update criteria version: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrCriteriaVersionNotFound
	}
	version.UpdatedAt = now
	return nil
}

// Delete removes a version. Criteria, result policy and relationships cascade.
func (r *CriteriaVersionRepository) Delete(ctx context.Context, id uint) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM criteria_versions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete criteria version: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete criteria version: %w", err)
	}
	if rows == 0 {
		return ErrCriteriaVersionNotFound
	}
	return nil
}

func scanCriteriaVersion(row rowScanner, version *models.CriteriaVersion) error {
	return row.Scan(
		&version.ID,
		&version.VersionName,
		&version.RoleName,
		&version.State,
		&version.CreatedUserID,
		&version.UpdatedUserID,
		&version.CreatedAt,
		&version.UpdatedAt,
	)
}
