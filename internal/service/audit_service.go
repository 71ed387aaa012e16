package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pwannenmacher/criteria-settings/internal/models"
	"github.com/pwannenmacher/criteria-settings/internal/repository"
)

// Audit actions
const (
	AuditLoginSuccess      = "auth.login.success"
	AuditLoginFailed       = "auth.login.failed"
	AuditPasswordChanged   = "auth.password.changed"
	AuditPasswordSet       = "auth.password.initialized"
	AuditPasswordReset     = "auth.password.reset"
	AuditLogout            = "auth.logout"
	AuditVersionCreated    = "criteria_version.create"
	AuditVersionUpdated    = "criteria_version.update"
	AuditVersionDeleted    = "criteria_version.delete"
	AuditInputTypeCreated  = "input_type.create"
	AuditInputTypeUpdated  = "input_type.update"
	AuditCriteriaCreated   = "criteria.create"
	AuditPolicyUpdated     = "result_policy.update"
	AuditRelationCreated   = "variable_relationship.create"
	AuditVersionImported   = "criteria_version.import"
	AuditAccessDenied      = "access.denied"
	ResourceUser           = "users"
	ResourceCriteriaVer    = "criteria_versions"
	ResourceInputType      = "input_types"
	ResourceCriteria       = "criteria"
	ResourceResultPolicy   = "result_policies"
	ResourceVariableRelate = "variable_relationships"
)

// AuditService handles audit logging
type AuditService struct {
	db *sql.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{db: db}
}

// Log creates an audit log entry outside any transaction, ignoring errors.
// Used for authentication events that must not fail the request.
func (s *AuditService) Log(ctx context.Context, actor Actor, action, resource, details string) {
	if err := record(ctx, repository.New(s.db), actor, action, resource, details); err != nil {
		slog.Warn("Failed to write audit log", "action", action, "error", err)
	}
}

// List returns the newest entries of a resource
func (s *AuditService) List(ctx context.Context, resource string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	logs, err := repository.New(s.db).Audit.ListByResource(ctx, resource, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

// record writes an audit entry through store, so it commits or rolls back with the caller's transaction
func record(ctx context.Context, store *repository.Store, actor Actor, action, resource, details string) error {
	return store.Audit.Create(ctx, &models.AuditLog{
		UserID:    actor.userID(),
		Action:    action,
		Resource:  resource,
		Details:   details,
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
	})
}
