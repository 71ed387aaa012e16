package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pwannenmacher/criteria-settings/internal/criteriatree"
	"github.com/pwannenmacher/criteria-settings/internal/permission"
	"github.com/pwannenmacher/criteria-settings/internal/repository"
	"github.com/pwannenmacher/criteria-settings/pkg/validator"
)

// Criteria setting errors. Their text is what clients see.
var (
	ErrNotPermitted            = errors.New("You do not have permission to perform this action.")
	ErrCriteriaVersionNotFound = errors.New("Criteria version can not found")
	ErrNoCriteriaVersions      = errors.New("Object has no value")
	ErrInputTypeNotFound       = errors.New("Data not found")
	ErrResultPolicyNotFound    = errors.New("Data not found")
	ErrInvalidStateTransition  = errors.New("Can not update state")
)

// Account errors
var (
	ErrIncorrectCredentials   = errors.New("Username or password is incorrect")
	ErrUserNotAllowed         = errors.New("User not allowed to do it")
	ErrMustSetPassword        = errors.New("Password has not been changed")
	ErrPasswordAlreadyChanged = errors.New("Password has been changed")
	ErrAnswerMismatch         = errors.New("The answer does not match")
	ErrInvalidRefreshToken    = errors.New("Invalid or expired refresh token")
	ErrNotPartOfTeam          = errors.New("User is not part of any team")
	ErrTeamNotFound           = errors.New("Team not found")
	ErrEmployeeTooSoon        = errors.New("Employees must be away from their old team for at least 90 days before joining a new team")
)

// NonFieldErrors is the key for errors that concern the payload as a whole
const NonFieldErrors = "non_field_errors"

// CredentialError tags an account error with the request field it concerns
type CredentialError struct {
	Field string
	Err   error
}

func (e *CredentialError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

func credentialError(field string, err error) error {
	return &CredentialError{Field: field, Err: err}
}

// ValidationError carries field level messages for a rejected payload
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates a validation error with a single message
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// validate runs struct tag validation and converts the result to a ValidationError
func validate(input interface{}) error {
	err := validator.ValidateStruct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.Errors
	if errors.As(err, &fieldErrs) {
		return &ValidationError{Fields: fieldErrs}
	}
	return fmt.Errorf("failed to validate input: %w", err)
}

// treeValidationError converts criteria tree errors to field errors
func treeValidationError(err error) error {
	var aliasErr *criteriatree.AliasError
	if errors.As(err, &aliasErr) {
		return NewValidationError(aliasErr.Field, capitalize(aliasErr.Err.Error())+".")
	}
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Actor identifies the caller of a service operation
type Actor struct {
	UserID    uint
	Username  string
	IPAddress string
	UserAgent string
}

func (a Actor) userID() *uint {
	if a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}

// authorize runs the permission check for a criteria setting action
func authorize(ctx context.Context, store *repository.Store, actor Actor, action string) error {
	ok, err := permission.ForRepositories(store).Check(ctx, actor.Username, action, permission.PermissionCriteria)
	if err != nil {
		var denied *permission.DeniedError
		if errors.As(err, &denied) {
			return err
		}
		return fmt.Errorf("failed to check permission: %w", err)
	}
	if !ok {
		return ErrNotPermitted
	}
	return nil
}
