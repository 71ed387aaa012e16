package repository

import (
	"context"
	"fmt"

	"github.com/pwannenmacher/criteria-settings/internal/models"
)

// VariableRelationshipRepository handles alias dependency edges
type VariableRelationshipRepository struct {
	db DBTX
}

// NewVariableRelationshipRepository creates a new variable relationship repository
func NewVariableRelationshipRepository(db DBTX) *VariableRelationshipRepository {
	return &VariableRelationshipRepository{db: db}
}

// Create inserts a relationship
func (r *VariableRelationshipRepository) Create(ctx context.Context, rel *models.VariableRelationship) error {
	query := `
		INSERT INTO variable_relationships (version_id, from_alias, to_alias)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, rel.VersionID, rel.FromAlias, rel.ToAlias).Scan(&rel.ID); err != nil {
		return fmt.Errorf("failed to create variable relationship: %w", err)
	}
	return nil
}

// ListByVersion returns the relationships of a version ordered by id
func (r *VariableRelationshipRepository) ListByVersion(ctx context.Context, versionID uint) ([]models.VariableRelationship, error) {
	query := `
		SELECT id, version_id, from_alias, to_alias
		FROM variable_relationships
		WHERE version_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variable relationships: %w", err)
	}
	defer rows.Close()

	var rels []models.VariableRelationship
	for rows.Next() {
		var rel models.VariableRelationship
		if err := rows.Scan(&rel.ID, &rel.VersionID, &rel.FromAlias, &rel.ToAlias); err != nil {
			return nil, fmt.Errorf("failed to scan variable relationship: %w", err)
		}
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}
