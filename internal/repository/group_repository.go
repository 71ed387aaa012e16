package repository

import (
	"context"
	"fmt"

	"github.com/pwannenmacher/criteria-settings/internal/models"
)

// GroupRepository handles staff groups and their permissions
type GroupRepository struct {
	db DBTX
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db DBTX) *GroupRepository {
	return &GroupRepository{db: db}
}

// GetOrCreate returns the group with the given name, creating it if needed
func (r *GroupRepository) GetOrCreate(ctx context.Context, name string) (*models.Group, error) {
	query := `
		INSERT INTO groups (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`
	group := &models.Group{}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&group.ID, &group.Name); err != nil {
		return nil, fmt.Errorf("failed to get or create group: %w", err)
	}
	return group, nil
}

// AddUser adds a user to a group
func (r *GroupRepository) AddUser(ctx context.Context, userID, groupID uint) error {
	query := `INSERT INTO user_groups (user_id, group_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, groupID); err != nil {
		return fmt.Errorf("failed to add user to group: %w", err)
	}
	return nil
}

// GrantPermission attaches the permission with the given codename to a group
func (r *GroupRepository) GrantPermission(ctx context.Context, groupID uint, codename string) error {
	query := `
		INSERT INTO group_permissions (group_id, permission_id)
		SELECT $1, id FROM permissions WHERE codename = $2
		ON CONFLICT DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, groupID, codename)
	if err != nil {
		return fmt.Errorf("failed to grant permission: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM permissions WHERE codename = $1)`, codename).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check permission: %w", err)
		}
		if !exists {
			return fmt.Errorf("permission %q does not exist", codename)
		}
	}
	return nil
}

// CountForUser returns how many groups the user belongs to
func (r *GroupRepository) CountForUser(ctx context.Context, userID uint) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM user_groups WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count user groups: %w", err)
	}
	return count, nil
}

// PermissionNamesForUser lists the names of all permissions granted through the user's groups
func (r *GroupRepository) PermissionNamesForUser(ctx context.Context, userID uint) ([]string, error) {
	query := `
		SELECT DISTINCT p.name
		FROM permissions p
		INNER JOIN group_permissions gp ON gp.permission_id = p.id
		INNER JOIN user_groups ug ON ug.group_id = gp.group_id
		WHERE ug.user_id = $1
		ORDER BY p.name
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user permissions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
