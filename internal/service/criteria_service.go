package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pwannenmacher/criteria-settings/internal/criteriatree"
	"github.com/pwannenmacher/criteria-settings/internal/database"
	"github.com/pwannenmacher/criteria-settings/internal/models"
	"github.com/pwannenmacher/criteria-settings/internal/permission"
	"github.com/pwannenmacher/criteria-settings/internal/repository"
)

// CreateCriteriaInput is the payload of a criteria node create
type CreateCriteriaInput struct {
	Name          *string `json:"name" validate:"max=200"`
	Alias         string  `json:"alias" validate:"required,max=20"`
	ParentAlias   *string `json:"parent_alias" validate:"max=20"`
	Description   string  `json:"description"`
	IsInput       bool    `json:"is_input"`
	InputTypeID   *uint   `json:"input_type"`
	Expression    *string `json:"expression" validate:"max=200"`
	IsFinalResult bool    `json:"is_final_result"`
}

// ResultPolicyInput carries the three grading documents of a version
type ResultPolicyInput struct {
	GradingRule       json.RawMessage `json:"grading_rule"`
	ActionGrades      json.RawMessage `json:"action_grades"`
	ExplanationGrades json.RawMessage `json:"explanation_grades"`
}

// CreateRelationshipInput is the payload of a variable relationship create
type CreateRelationshipInput struct {
	FromAlias string `json:"from_alias" validate:"required,max=20"`
	ToAlias   string `json:"to_alias" validate:"required,max=20"`
}

// CriteriaService manages the criteria tree, result policy and variable
// relationships nested under a version
type CriteriaService struct {
	db *sql.DB
}

// NewCriteriaService creates a new criteria service
func NewCriteriaService(db *sql.DB) *CriteriaService {
	return &CriteriaService{db: db}
}

// withVersion authorizes actor, loads the named version and runs fn in one transaction
func (s *CriteriaService) withVersion(ctx context.Context, actor Actor, action, name string,
	fn func(store *repository.Store, version *models.CriteriaVersion) error) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)
		if err := authorize(ctx, store, actor, action); err != nil {
			return err
		}
		version, err := loadVersion(ctx, store, name, action == permission.ActionWriteCriteriaSetting)
		if err != nil {
			return err
		}
		return fn(store, version)
	})
}

// ListCriteria returns the criteria of a version
func (s *CriteriaService) ListCriteria(ctx context.Context, actor Actor, versionName string) ([]models.Criteria, error) {
	var criteria []models.Criteria
	err := s.withVersion(ctx, actor, permission.ActionReadCriteriaSetting, versionName,
		func(store *repository.Store, version *models.CriteriaVersion) error {
			var err error
			criteria, err = store.Criteria.ListByVersion(ctx, version.ID)
			return err
		})
	if err != nil {
		return nil, err
	}
	return criteria, nil
}

// CreateCriteria adds one node to a version's tree
func (s *CriteriaService) CreateCriteria(ctx context.Context, actor Actor, versionName string, in CreateCriteriaInput) (*models.Criteria, error) {
	in.Alias = strings.TrimSpace(in.Alias)
	if in.ParentAlias != nil {
		if p := strings.TrimSpace(*in.ParentAlias); p == "" {
			in.ParentAlias = nil
		} else {
			in.ParentAlias = &p
		}
	}

	var created *models.Criteria
	err := s.withVersion(ctx, actor, permission.ActionWriteCriteriaSetting, versionName,
		func(store *repository.Store, version *models.CriteriaVersion) error {
			if err := validate(&in); err != nil {
				return err
			}

			existing, err := store.Criteria.ListByVersion(ctx, version.ID)
			if err != nil {
				return err
			}
			index, err := criteriatree.Build(existing)
			if err != nil {
				return fmt.Errorf("stored criteria tree of %q is invalid: %w", version.VersionName, err)
			}

			node := models.Criteria{
				VersionID:     version.ID,
				Name:          in.Name,
				Alias:         in.Alias,
				ParentAlias:   in.ParentAlias,
				Description:   in.Description,
				IsInput:       in.IsInput,
				InputTypeID:   in.InputTypeID,
				Expression:    in.Expression,
				IsFinalResult: in.IsFinalResult,
			}
			if err := index.Add(node); err != nil {
				return treeValidationError(err)
			}
			if err := checkInputType(ctx, store, in.InputTypeID); err != nil {
				return err
			}

			if err := store.Criteria.Create(ctx, &node); err != nil {
				if errors.Is(err, repository.ErrCriteriaAliasExists) {
					return NewValidationError("alias", "Alias already exists in this version.")
				}
				return err
			}
			created = &node
			return record(ctx, store, actor, AuditCriteriaCreated, ResourceCriteria,
				fmt.Sprintf("%s: %s", version.VersionName, node.Alias))
		})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetResultPolicy returns the result policy of a version
func (s *CriteriaService) GetResultPolicy(ctx context.Context, actor Actor, versionName string) (*models.ResultPolicy, error) {
	var policy *models.ResultPolicy
	err := s.withVersion(ctx, actor, permission.ActionReadCriteriaSetting, versionName,
		func(store *repository.Store, version *models.CriteriaVersion) error {
			var err error
			policy, err = store.ResultPolicies.GetByVersion(ctx, version.ID)
			if errors.Is(err, repository.ErrResultPolicyNotFound) {
				return ErrResultPolicyNotFound
			}
			return err
		})
	if err != nil {
		return nil, err
	}
	return policy, nil
}

// PutResultPolicy creates or replaces the result policy of a version
func (s *CriteriaService) PutResultPolicy(ctx context.Context, actor Actor, versionName string, in ResultPolicyInput) (*models.ResultPolicy, error) {
	var policy *models.ResultPolicy
	err := s.withVersion(ctx, actor, permission.ActionWriteCriteriaSetting, versionName,
		func(store *repository.Store, version *models.CriteriaVersion) error {
			policy = &models.ResultPolicy{
				VersionID:         version.ID,
				GradingRule:       in.GradingRule,
				ActionGrades:      in.ActionGrades,
				ExplanationGrades: in.ExplanationGrades,
			}
			if err := store.ResultPolicies.Upsert(ctx, policy); err != nil {
				return err
			}
			return record(ctx, store, actor, AuditPolicyUpdated, ResourceResultPolicy, version.VersionName)
		})
	if err != nil {
		return nil, err
	}
	return policy, nil
}

// ListRelationships returns the variable relationships of a version
func (s *CriteriaService) ListRelationships(ctx context.Context, actor Actor, versionName string) ([]models.VariableRelationship, error) {
	var rels []models.VariableRelationship
	err := s.withVersion(ctx, actor, permission.ActionReadCriteriaSetting, versionName,
		func(store *repository.Store, version *models.CriteriaVersion) error {
			var err error
			rels, err = store.VariableRelationships.ListByVersion(ctx, version.ID)
			return err
		})
	if err != nil {
		return nil, err
	}
	return rels, nil
}

// CreateRelationship records a dependency between two aliases of the same version
func (s *CriteriaService) CreateRelationship(ctx context.Context, actor Actor, versionName string, in CreateRelationshipInput) (*models.VariableRelationship, error) {
	in.FromAlias = strings.TrimSpace(in.FromAlias)
	in.ToAlias = strings.TrimSpace(in.ToAlias)

	var rel *models.VariableRelationship
	err := s.withVersion(ctx, actor, permission.ActionWriteCriteriaSetting, versionName,
		func(store *repository.Store, version *models.CriteriaVersion) error {
			if err := validate(&in); err != nil {
				return err
			}

			existing, err := store.Criteria.ListByVersion(ctx, version.ID)
			if err != nil {
				return err
			}
			index, err := criteriatree.Build(existing)
			if err != nil {
				return fmt.Errorf("stored criteria tree of %q is invalid: %w", version.VersionName, err)
			}
			if err := index.ValidateRelationship(in.FromAlias, in.ToAlias); err != nil {
				return treeValidationError(err)
			}

			rel = &models.VariableRelationship{VersionID: version.ID, FromAlias: in.FromAlias, ToAlias: in.ToAlias}
			if err := store.VariableRelationships.Create(ctx, rel); err != nil {
				return err
			}
			return record(ctx, store, actor, AuditRelationCreated, ResourceVariableRelate,
				fmt.Sprintf("%s: %s -> %s", version.VersionName, rel.FromAlias, rel.ToAlias))
		})
	if err != nil {
		return nil, err
	}
	return rel, nil
}

func checkInputType(ctx context.Context, store *repository.Store, id *uint) error {
	if id == nil {
		return nil
	}
	_, err := store.InputTypes.GetByID(ctx, *id)
	if errors.Is(err, repository.ErrInputTypeNotFound) {
		return NewValidationError("input_type", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *id))
	}
	return err
}
