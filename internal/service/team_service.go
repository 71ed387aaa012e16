package service

import (
	"context"
	"database/sql"

	"github.com/pwannenmacher/criteria-settings/internal/models"
	"github.com/pwannenmacher/criteria-settings/internal/repository"
)

// TeamService lists teams for the authenticated user
type TeamService struct {
	db *sql.DB
}

// NewTeamService creates a new team service
func NewTeamService(db *sql.DB) *TeamService {
	return &TeamService{db: db}
}

// ListForUser returns the teams in which user has an active employee record
func (s *TeamService) ListForUser(ctx context.Context, user *models.User) ([]models.Team, error) {
	if user.IsDefaultPassword {
		return nil, ErrMustSetPassword
	}

	teams, err := repository.New(s.db).Teams.ListForActiveEmployee(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, ErrNotPartOfTeam
	}
	return teams, nil
}
