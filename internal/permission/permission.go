// Package permission decides whether a user may perform an action.
//
// Superusers may do anything. Staff users are authorized by the names of
// the permissions attached to their groups. Everyone else is authorized by
// the access level of their most recent active employee record.
package permission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pwannenmacher/criteria-settings/internal/models"
	"github.com/pwannenmacher/criteria-settings/internal/repository"
)

// Denial messages
const (
	MsgUserNotFound     = "User not found or inactive"
	MsgNoGroup          = "User is not part of any group"
	MsgEmployeeNotFound = "Employee not found or users are not part of any team"
)

// DeniedError is an explicit refusal with a reason suitable for clients
type DeniedError struct {
	Message string
}

func (e *DeniedError) Error() string {
	return e.Message
}

// Store is the data the resolver needs
type Store interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CountGroups(ctx context.Context, userID uint) (int, error)
	PermissionNames(ctx context.Context, userID uint) ([]string, error)
	LatestActiveAccessLevel(ctx context.Context, userID uint) (*models.AccessLevel, error)
}

// Resolver evaluates permission checks against a Store
type Resolver struct {
	store Store
}

// NewResolver creates a new resolver
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// ForRepositories creates a resolver reading from the given repositories
func ForRepositories(repos *repository.Store) *Resolver {
	return NewResolver(repoStore{repos: repos})
}

// Check reports whether username may perform action. permissionIs is the
// substring matched against staff permission names.
//
// A *DeniedError is returned when the user cannot be evaluated at all;
// false with a nil error means the user was evaluated and lacks the right.
func (r *Resolver) Check(ctx context.Context, username, action, permissionIs string) (bool, error) {
	user, err := r.store.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return false, &DeniedError{Message: MsgUserNotFound}
	}
	if err != nil {
		return false, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return false, &DeniedError{Message: MsgUserNotFound}
	}

	if user.IsSuperuser {
		return true, nil
	}

	if user.IsStaff {
		count, err := r.store.CountGroups(ctx, user.ID)
		if err != nil {
			return false, fmt.Errorf("failed to count groups: %w", err)
		}
		if count == 0 {
			return false, &DeniedError{Message: MsgNoGroup}
		}

		names, err := r.store.PermissionNames(ctx, user.ID)
		if err != nil {
			return false, fmt.Errorf("failed to load permissions: %w", err)
		}
		for _, name := range names {
			if strings.Contains(name, permissionIs) {
				return true, nil
			}
		}
		return false, nil
	}

	level, err := r.store.LatestActiveAccessLevel(ctx, user.ID)
	if errors.Is(err, repository.ErrEmployeeNotFound) {
		return false, &DeniedError{Message: MsgEmployeeNotFound}
	}
	if err != nil {
		return false, fmt.Errorf("failed to load access level: %w", err)
	}

	a, err := ParseAction(action)
	if err != nil {
		return false, err
	}
	return a.Allowed(level), nil
}

type repoStore struct {
	repos *repository.Store
}

func (s repoStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repos.Users.GetByUsername(ctx, username)
}

func (s repoStore) CountGroups(ctx context.Context, userID uint) (int, error) {
	return s.repos.Groups.CountForUser(ctx, userID)
}

func (s repoStore) PermissionNames(ctx context.Context, userID uint) ([]string, error) {
	return s.repos.Groups.PermissionNamesForUser(ctx, userID)
}

func (s repoStore) LatestActiveAccessLevel(ctx context.Context, userID uint) (*models.AccessLevel, error) {
	return s.repos.Employees.LatestActiveAccessLevel(ctx, userID)
}
