package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pwannenmacher/criteria-settings/internal/models"
)

var (
	ErrInputTypeNotFound = errors.New("input type not found")
	ErrInputTypeExists   = errors.New("input type already exists")
)

// InputTypeRepository handles input type database operations
type InputTypeRepository struct {
	db DBTX
}

// NewInputTypeRepository creates a new input type repository
func NewInputTypeRepository(db DBTX) *InputTypeRepository {
	return &InputTypeRepository{db: db}
}

// Create inserts a new input type
func (r *InputTypeRepository) Create(ctx context.Context, inputType *models.InputType) error {
	query := `INSERT INTO input_types (name, min, max) VALUES ($1, $2, $3) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, inputType.Name, inputType.Min, inputType.Max).Scan(&inputType.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrInputTypeExists
		}
		return fmt.Errorf("failed to create input type: %w", err)
	}
	return nil
}

// GetByID retrieves an input type by id
func (r *InputTypeRepository) GetByID(ctx context.Context, id uint) (*models.InputType, error) {
	query := `SELECT id, name, min, max FROM input_types WHERE id = $1`
	inputType := &models.InputType{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&inputType.ID, &inputType.Name, &inputType.Min, &inputType.Max)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInputTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get input type: %w", err)
	}
	return inputType, nil
}

// GetByName retrieves an input type by its unique name
func (r *InputTypeRepository) GetByName(ctx context.Context, name string) (*models.InputType, error) {
	query := `SELECT id, name, min, max FROM input_types WHERE name = $1`
	inputType := &models.InputType{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(&inputType.ID, &inputType.Name, &inputType.Min, &inputType.Max)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInputTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get input type: %w", err)
	}
	return inputType, nil
}

// List returns all input types ordered by id
func (r *InputTypeRepository) List(ctx context.Context) ([]models.InputType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, min, max FROM input_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list input types: %w", err)
	}
	defer rows.Close()

	var inputTypes []models.InputType
	for rows.Next() {
		var it models.InputType
		if err := rows.Scan(&it.ID, &it.Name, &it.Min, &it.Max); err != nil {
			return nil, fmt.Errorf("failed to scan input type: %w", err)
		}
		inputTypes = append(inputTypes, it)
	}
	return inputTypes, rows.Err()
}

// Update persists all fields of an existing input type
func (r *InputTypeRepository) Update(ctx context.Context, inputType *models.InputType) error {
	query := `UPDATE input_types SET name = $1, min = $2, max = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, inputType.Name, inputType.Min, inputType.Max, inputType.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrInputTypeExists
		}
		return fmt.Errorf("failed to update input type: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrInputTypeNotFound
	}
	return nil
}
