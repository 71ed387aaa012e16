package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pwannenmacher/criteria-settings/internal/models"
)

var ErrTeamNotFound = errors.New("team not found")

const teamColumns = `t.id, t.parent_team_id, t.name, t.is_active, t.created_user_id, t.updated_user_id, t.created_at, t.updated_at`

// TeamRepository handles team database operations
type TeamRepository struct {
	db DBTX
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db DBTX) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create creates a new team
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (parent_team_id, name, is_active, created_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, team.ParentTeamID, team.Name, team.IsActive, team.CreatedUserID, now).Scan(&team.ID)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	team.CreatedAt = now
	team.UpdatedAt = now
	return nil
}

// GetByName retrieves the first team with the given name
func (r *TeamRepository) GetByName(ctx context.Context, name string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams t WHERE t.name = $1 ORDER BY t.id LIMIT 1`
	team := &models.Team{}
	err := scanTeam(r.db.QueryRowContext(ctx, query, name), team)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// ListForActiveEmployee lists the teams in which the user has an active employee record
func (r *TeamRepository) ListForActiveEmployee(ctx context.Context, userID uint) ([]models.Team, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams t
		WHERE t.id IN (SELECT e.team_id FROM employees e WHERE e.user_id = $1 AND e.is_active = TRUE)
		ORDER BY t.id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var team models.Team
		if err := scanTeam(rows, &team); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(row rowScanner, team *models.Team) error {
	return row.Scan(
		&team.ID,
		&team.ParentTeamID,
		&team.Name,
		&team.IsActive,
		&team.CreatedUserID,
		&team.UpdatedUserID,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
}
