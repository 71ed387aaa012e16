package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pwannenmacher/criteria-settings/internal/models"
)

var ErrEmployeeNotFound = errors.New("employee not found")

const employeeColumns = `e.id, e.user_id, e.team_id, e.access_level_id, e.role, e.is_active,
	e.created_user_id, e.updated_user_id, e.created_at, e.updated_at`

// EmployeeRepository handles employee database operations
type EmployeeRepository struct {
	db DBTX
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db DBTX) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create creates a new employee record
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	query := `
		INSERT INTO employees (user_id, team_id, access_level_id, role, is_active, created_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id
	`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		employee.UserID,
		employee.TeamID,
		employee.AccessLevelID,
		employee.Role,
		employee.IsActive,
		employee.CreatedUserID,
		now,
	).Scan(&employee.ID)
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}
	employee.CreatedAt = now
	employee.UpdatedAt = now
	return nil
}

// LatestForUser returns the most recently created employee record of a user, active or not
func (r *EmployeeRepository) LatestForUser(ctx context.Context, userID uint) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees e WHERE e.user_id = $1 ORDER BY e.created_at DESC, e.id DESC LIMIT 1`
	employee := &models.Employee{}
	err := scanEmployee(r.db.QueryRowContext(ctx, query, userID), employee)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return employee, nil
}

// LatestActiveAccessLevel returns the access level of the user's most recent active employee record
func (r *EmployeeRepository) LatestActiveAccessLevel(ctx context.Context, userID uint) (*models.AccessLevel, error) {
	query := `
		SELECT ` + accessLevelColumns + `
		FROM employees e
		INNER JOIN access_levels a ON a.id = e.access_level_id
		WHERE e.user_id = $1 AND e.is_active = TRUE
		ORDER BY e.created_at DESC, e.id DESC
		LIMIT 1
	`
	level := &models.AccessLevel{}
	err := scanAccessLevel(r.db.QueryRowContext(ctx, query, userID), level)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee access level: %w", err)
	}
	return level, nil
}

func scanEmployee(row rowScanner, employee *models.Employee) error {
	return row.Scan(
		&employee.ID,
		&employee.UserID,
		&employee.TeamID,
		&employee.AccessLevelID,
		&employee.Role,
		&employee.IsActive,
		&employee.CreatedUserID,
		&employee.UpdatedUserID,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	)
}
