package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pwannenmacher/criteria-settings/internal/database"
	"github.com/pwannenmacher/criteria-settings/internal/models"
	"github.com/pwannenmacher/criteria-settings/internal/permission"
	"github.com/pwannenmacher/criteria-settings/internal/repository"
	"github.com/pwannenmacher/criteria-settings/internal/transition"
)

const (
	msgVersionNameTaken = "criteria version with this version name already exists."
	msgOnlyOneField     = "Only one field of criteria version can be updated"
	maxVersionNameLen   = 200
)

// CreateCriteriaVersionInput is the payload of a version create
type CreateCriteriaVersionInput struct {
	VersionName string `json:"version_name" validate:"required,max=200"`
	RoleName    string `json:"role_name" validate:"oneof=TL|MB"`
	State       string `json:"state" validate:"oneof=Unofficial|Official|Outdated"`
}

// CriteriaVersionService manages criteria versions
type CriteriaVersionService struct {
	db *sql.DB
}

// NewCriteriaVersionService creates a new criteria version service
func NewCriteriaVersionService(db *sql.DB) *CriteriaVersionService {
	return &CriteriaVersionService{db: db}
}

// List returns the versions matching filter. An empty table is reported as
// ErrNoCriteriaVersions before any filter applies.
func (s *CriteriaVersionService) List(ctx context.Context, actor Actor, filter models.CriteriaVersionFilter) ([]models.CriteriaVersion, error) {
	var versions []models.CriteriaVersion
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)
		if err := authorize(ctx, store, actor, permission.ActionReadCriteriaSetting); err != nil {
			return err
		}

		count, err := store.CriteriaVersions.Count(ctx)
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNoCriteriaVersions
		}

		versions, err = store.CriteriaVersions.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// Get returns one version by name
func (s *CriteriaVersionService) Get(ctx context.Context, actor Actor, name string) (*models.CriteriaVersion, error) {
	var version *models.CriteriaVersion
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)
		if err := authorize(ctx, store, actor, permission.ActionReadCriteriaSetting); err != nil {
			return err
		}

		var err error
		version, err = loadVersion(ctx, store, name, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

// Create validates and stores a new version owned by actor
func (s *CriteriaVersionService) Create(ctx context.Context, actor Actor, in CreateCriteriaVersionInput) (*models.CriteriaVersion, error) {
	in.VersionName = strings.TrimSpace(in.VersionName)

	var version *models.CriteriaVersion
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)
		if err := authorize(ctx, store, actor, permission.ActionWriteCriteriaSetting); err != nil {
			return err
		}
		if err := validate(&in); err != nil {
			return err
		}

		exists, err := store.CriteriaVersions.ExistsByName(ctx, in.VersionName)
		if err != nil {
			return err
		}
		if exists {
			return NewValidationError("version_name", msgVersionNameTaken)
		}

		version = &models.CriteriaVersion{
			VersionName:   in.VersionName,
			RoleName:      models.CriteriaRoleMember,
			State:         models.StateUnofficial,
			CreatedUserID: actor.userID(),
		}
		if in.RoleName != "" {
			version.RoleName = models.CriteriaRole(in.RoleName)
		}
		if in.State != "" {
			version.State = models.VersionState(in.State)
		}

		if err := store.CriteriaVersions.Create(ctx, version); err != nil {
			if errors.Is(err, repository.ErrCriteriaVersionExists) {
				return NewValidationError("version_name", msgVersionNameTaken)
			}
			return err
		}
		return record(ctx, store, actor, AuditVersionCreated, ResourceCriteriaVer, version.VersionName)
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

// Update applies a single field change. Payloads naming more than one
// field are rejected whatever their content.
func (s *CriteriaVersionService) Update(ctx context.Context, actor Actor, name string, fields map[string]json.RawMessage) (*models.CriteriaVersion, error) {
	var version *models.CriteriaVersion
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)
		if err := authorize(ctx, store, actor, permission.ActionWriteCriteriaSetting); err != nil {
			return err
		}

		var err error
		version, err = loadVersion(ctx, store, name, true)
		if err != nil {
			return err
		}

		if len(fields) != 1 {
			return NewValidationError(NonFieldErrors, msgOnlyOneField)
		}

		var changed string
		for field, raw := range fields {
			if err := applyVersionField(ctx, store, version, field, raw); err != nil {
				return err
			}
			changed = field
		}

		version.UpdatedUserID = actor.userID()
		if err := store.CriteriaVersions.Update(ctx, version); err != nil {
			if errors.Is(err, repository.ErrCriteriaVersionExists) {
				return NewValidationError("version_name", msgVersionNameTaken)
			}
			return err
		}
		return record(ctx, store, actor, AuditVersionUpdated, ResourceCriteriaVer,
			fmt.Sprintf("%s: %s", name, changed))
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

// Delete removes a version together with its criteria, result policy and relationships
func (s *CriteriaVersionService) Delete(ctx context.Context, actor Actor, name string) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)
		if err := authorize(ctx, store, actor, permission.ActionWriteCriteriaSetting); err != nil {
			return err
		}

		version, err := loadVersion(ctx, store, name, true)
		if err != nil {
			return err
		}
		if err := store.CriteriaVersions.Delete(ctx, version.ID); err != nil {
			if errors.Is(err, repository.ErrCriteriaVersionNotFound) {
				return ErrCriteriaVersionNotFound
			}
			return err
		}
		return record(ctx, store, actor, AuditVersionDeleted, ResourceCriteriaVer, name)
	})
}

// applyVersionField decodes and validates one patched field into version
func applyVersionField(ctx context.Context, store *repository.Store, version *models.CriteriaVersion, field string, raw json.RawMessage) error {
	var value string
	decode := func() error {
		if err := json.Unmarshal(raw, &value); err != nil {
			return NewValidationError(field, "Not a valid string.")
		}
		value = strings.TrimSpace(value)
		return nil
	}

	switch field {
	case "version_name":
		if err := decode(); err != nil {
			return err
		}
		if value == "" {
			return NewValidationError(field, "This field may not be blank.")
		}
		if utf8.RuneCountInString(value) > maxVersionNameLen {
			return NewValidationError(field, fmt.Sprintf("Ensure this field has no more than %d characters.", maxVersionNameLen))
		}
		if value != version.VersionName {
			exists, err := store.CriteriaVersions.ExistsByName(ctx, value)
			if err != nil {
				return err
			}
			if exists {
				return NewValidationError(field, msgVersionNameTaken)
			}
		}
		version.VersionName = value

	case "role_name":
		if err := decode(); err != nil {
			return err
		}
		role := models.CriteriaRole(value)
		if !role.Valid() {
			return NewValidationError(field, fmt.Sprintf("%q is not a valid choice.", value))
		}
		version.RoleName = role

	case "state":
		if err := decode(); err != nil {
			return err
		}
		state := models.VersionState(value)
		if !state.Valid() {
			return NewValidationError(field, fmt.Sprintf("%q is not a valid choice.", value))
		}
		if !transition.CheckState(transition.ModelCriteriaVersion, version.State, state) {
			return ErrInvalidStateTransition
		}
		version.State = state

	default:
		return NewValidationError(field, "This field can not be updated.")
	}
	return nil
}

// loadVersion fetches a version by name, locking the row when forUpdate is set
func loadVersion(ctx context.Context, store *repository.Store, name string, forUpdate bool) (*models.CriteriaVersion, error) {
	get := store.CriteriaVersions.GetByName
	if forUpdate {
		get = store.CriteriaVersions.GetByNameForUpdate
	}

	version, err := get(ctx, name)
	if errors.Is(err, repository.ErrCriteriaVersionNotFound) {
		return nil, ErrCriteriaVersionNotFound
	}
	if err != nil {
		return nil, err
	}
	return version, nil
}
