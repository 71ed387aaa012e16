package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/pwannenmacher/criteria-settings/internal/models"
)

var ErrCriteriaAliasExists = errors.New("criteria alias already exists in version")

// CriteriaRepository handles criteria tree nodes
type CriteriaRepository struct {
	db DBTX
}

// NewCriteriaRepository creates a new criteria repository
func NewCriteriaRepository(db DBTX) *CriteriaRepository {
	return &CriteriaRepository{db: db}
}

// Create inserts a criteria node
func (r *CriteriaRepository) Create(ctx context.Context, c *models.Criteria) error {
	query := `
		INSERT INTO criteria (version_id, name, alias, parent_alias, description, is_input,
		                      input_type_id, expression, is_final_result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		c.VersionID,
		c.Name,
		c.Alias,
		c.ParentAlias,
		c.Description,
		c.IsInput,
		c.InputTypeID,
		c.Expression,
		c.IsFinalResult,
	).Scan(&c.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrCriteriaAliasExists
		}
		return fmt.Errorf("failed to create criteria: %w", err)
	}
	return nil
}

// ListByVersion returns all criteria of a version ordered by id
func (r *CriteriaRepository) ListByVersion(ctx context.Context, versionID uint) ([]models.Criteria, error) {
	query := `
		SELECT id, version_id, name, alias, parent_alias, description, is_input,
		       input_type_id, expression, is_final_result
		FROM criteria
		WHERE version_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}
	defer rows.Close()

	var criteria []models.Criteria
	for rows.Next() {
		var c models.Criteria
		if err := rows.Scan(
			&c.ID,
			&c.VersionID,
			&c.Name,
			&c.Alias,
			&c.ParentAlias,
			&c.Description,
			&c.IsInput,
			&c.InputTypeID,
			&c.Expression,
			&c.IsFinalResult,
		); err != nil {
			return nil, fmt.Errorf("failed to scan criteria: %w", err)
		}
		criteria = append(criteria, c)
	}
	return criteria, rows.Err()
}
