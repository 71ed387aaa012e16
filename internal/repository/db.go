package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store bundles every repository over one connection or transaction
type Store struct {
	Users                 *UserRepository
	Groups                *GroupRepository
	Teams                 *TeamRepository
	AccessLevels          *AccessLevelRepository
	Employees             *EmployeeRepository
	CriteriaVersions      *CriteriaVersionRepository
	InputTypes            *InputTypeRepository
	Criteria              *CriteriaRepository
	ResultPolicies        *ResultPolicyRepository
	VariableRelationships *VariableRelationshipRepository
	Sessions              *SessionRepository
	Audit                 *AuditRepository
}

// New creates a Store whose repositories share db
func New(db DBTX) *Store {
	return &Store{
		Users:                 NewUserRepository(db),
		Groups:                NewGroupRepository(db),
		Teams:                 NewTeamRepository(db),
		AccessLevels:          NewAccessLevelRepository(db),
		Employees:             NewEmployeeRepository(db),
		CriteriaVersions:      NewCriteriaVersionRepository(db),
		InputTypes:            NewInputTypeRepository(db),
		Criteria:              NewCriteriaRepository(db),
		ResultPolicies:        NewResultPolicyRepository(db),
		VariableRelationships: NewVariableRelationshipRepository(db),
		Sessions:              NewSessionRepository(db),
		Audit:                 NewAuditRepository(db),
	}
}

// IsUniqueViolation reports whether err is a Postgres unique constraint violation
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// IsForeignKeyViolation reports whether err is a Postgres foreign key violation
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
