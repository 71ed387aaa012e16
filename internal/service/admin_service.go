package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pwannenmacher/criteria-settings/internal/auth"
	"github.com/pwannenmacher/criteria-settings/internal/criteriatree"
	"github.com/pwannenmacher/criteria-settings/internal/database"
	"github.com/pwannenmacher/criteria-settings/internal/models"
	"github.com/pwannenmacher/criteria-settings/internal/permission"
	"github.com/pwannenmacher/criteria-settings/internal/repository"
)

const (
	initialPasswordLength = 10
	teamCooldown          = 90 * 24 * time.Hour
)

// AdminService implements the account and data maintenance commands of the admin CLI
type AdminService struct {
	db      *sql.DB
	authSvc *auth.Service
	now     func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(db *sql.DB, authSvc *auth.Service) *AdminService {
	return &AdminService{db: db, authSvc: authSvc, now: time.Now}
}

// CreateUserInput describes a new account
type CreateUserInput struct {
	Username  string `json:"username" validate:"required,max=150"`
	Name      string `json:"name" validate:"max=150"`
	Staff     bool   `json:"is_staff"`
	Superuser bool   `json:"is_superuser"`
}

// CreateUser creates an active account with a random initial password. The
// password is returned once and only its hash is stored.
func (s *AdminService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validate(&in); err != nil {
		return nil, "", err
	}

	password, hash, err := s.initialPassword()
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Username:          in.Username,
		Name:              in.Name,
		PasswordHash:      hash,
		IsStaff:           in.Staff || in.Superuser,
		IsSuperuser:       in.Superuser,
		IsActive:          true,
		IsDefaultPassword: true,
	}
	if err := repository.New(s.db).Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, "", NewValidationError("username", "A user with that username already exists.")
		}
		return nil, "", err
	}
	return user, password, nil
}

// ResetUser issues a new initial password and puts the account back into the default-password state
func (s *AdminService) ResetUser(ctx context.Context, username string) (string, error) {
	password, hash, err := s.initialPassword()
	if err != nil {
		return "", err
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)
		user, err := store.Users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if err := store.Users.UpdatePassword(ctx, user.ID, hash, true); err != nil {
			return err
		}
		return store.Sessions.DeleteAllUserSessions(ctx, user.ID)
	})
	if err != nil {
		return "", err
	}
	return password, nil
}

// CreateTeam creates an active team, optionally below the team named parent
func (s *AdminService) CreateTeam(ctx context.Context, name, parent string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "This field is required.")
	}

	team := &models.Team{Name: name, IsActive: true}
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)
		if parent != "" {
			p, err := store.Teams.GetByName(ctx, parent)
			if errors.Is(err, repository.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			if err != nil {
				return err
			}
			team.ParentTeamID = &p.ID
		}
		return store.Teams.Create(ctx, team)
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// CreateAccessLevel creates an access level granting the listed capability flags.
// Reading evaluation data is always granted.
func (s *AdminService) CreateAccessLevel(ctx context.Context, name string, flags []string) (*models.AccessLevel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("access_level", "This field is required.")
	}

	level := &models.AccessLevel{Name: name}
	permission.ReadEvalData.Set(level, true)
	for _, flag := range flags {
		action, err := permission.ParseAction(flag)
		if err != nil {
			return nil, NewValidationError("flags", fmt.Sprintf("%q is not a valid choice.", flag))
		}
		action.Set(level, true)
	}

	if err := repository.New(s.db).AccessLevels.Create(ctx, level); err != nil {
		if errors.Is(err, repository.ErrAccessLevelExists) {
			return nil, NewValidationError("access_level", "access level with this name already exists.")
		}
		return nil, err
	}
	return level, nil
}

// AddEmployeeInput places a user in a team
type AddEmployeeInput struct {
	Username    string
	Team        string
	AccessLevel string
	Role        models.EmployeeRole
}

// AddEmployee creates an employee record. A user whose latest record is in
// another team must wait 90 days after that record's creation.
func (s *AdminService) AddEmployee(ctx context.Context, in AddEmployeeInput) (*models.Employee, error) {
	if in.Role == "" {
		in.Role = models.RoleDeveloper
	}
	if !in.Role.Valid() {
		return nil, NewValidationError("role", fmt.Sprintf("%q is not a valid choice.", in.Role))
	}

	var employee *models.Employee
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)

		user, err := store.Users.GetByUsername(ctx, in.Username)
		if err != nil {
			return err
		}
		team, err := store.Teams.GetByName(ctx, in.Team)
		if errors.Is(err, repository.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		if err != nil {
			return err
		}
		level, err := store.AccessLevels.GetByName(ctx, in.AccessLevel)
		if err != nil {
			return err
		}

		previous, err := store.Employees.LatestForUser(ctx, user.ID)
		switch {
		case errors.Is(err, repository.ErrEmployeeNotFound):
		case err != nil:
			return err
		case previous.TeamID != team.ID && s.now().Sub(previous.CreatedAt) < teamCooldown:
			return ErrEmployeeTooSoon
		}

		employee = &models.Employee{
			UserID:        user.ID,
			TeamID:        team.ID,
			AccessLevelID: level.ID,
			Role:          in.Role,
			IsActive:      true,
		}
		return store.Employees.Create(ctx, employee)
	})
	if err != nil {
		return nil, err
	}
	return employee, nil
}

// GrantGroupPermission adds a user to a group and grants the group a permission
func (s *AdminService) GrantGroupPermission(ctx context.Context, username, group, codename string) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)

		user, err := store.Users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		g, err := store.Groups.GetOrCreate(ctx, group)
		if err != nil {
			return err
		}
		if err := store.Groups.AddUser(ctx, user.ID, g.ID); err != nil {
			return err
		}
		if codename == "" {
			return nil
		}
		return store.Groups.GrantPermission(ctx, g.ID, codename)
	})
}

// VersionDocument is the import format of a complete criteria version
type VersionDocument struct {
	VersionName   string                 `yaml:"version_name"`
	RoleName      string                 `yaml:"role_name"`
	State         string                 `yaml:"state"`
	Criteria      []CriteriaDocument     `yaml:"criteria"`
	ResultPolicy  *ResultPolicyDocument  `yaml:"result_policy"`
	Relationships []RelationshipDocument `yaml:"relationships"`
}

// CriteriaDocument is one criteria node of an import file. InputType names an input type.
type CriteriaDocument struct {
	Name          string `yaml:"name"`
	Alias         string `yaml:"alias"`
	ParentAlias   string `yaml:"parent_alias"`
	Description   string `yaml:"description"`
	IsInput       bool   `yaml:"is_input"`
	InputType     string `yaml:"input_type"`
	Expression    string `yaml:"expression"`
	IsFinalResult bool   `yaml:"is_final_result"`
}

// ResultPolicyDocument holds free-form grading documents
type ResultPolicyDocument struct {
	GradingRule       any `yaml:"grading_rule"`
	ActionGrades      any `yaml:"action_grades"`
	ExplanationGrades any `yaml:"explanation_grades"`
}

// RelationshipDocument is one variable relationship of an import file
type RelationshipDocument struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// ParseVersionDocument decodes a YAML version document
func ParseVersionDocument(r io.Reader) (*VersionDocument, error) {
	var doc VersionDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse version document: %w", err)
	}
	return &doc, nil
}

// ImportVersion stores a complete version in one transaction. The criteria
// tree and the relationships are validated before anything is written.
func (s *AdminService) ImportVersion(ctx context.Context, actor Actor, doc *VersionDocument) (*models.CriteriaVersion, error) {
	version := &models.CriteriaVersion{
		VersionName:   strings.TrimSpace(doc.VersionName),
		RoleName:      models.CriteriaRoleMember,
		State:         models.StateUnofficial,
		CreatedUserID: actor.userID(),
	}
	if doc.RoleName != "" {
		version.RoleName = models.CriteriaRole(doc.RoleName)
	}
	if doc.State != "" {
		version.State = models.VersionState(doc.State)
	}
	if err := validate(&CreateCriteriaVersionInput{
		VersionName: version.VersionName,
		RoleName:    string(version.RoleName),
		State:       string(version.State),
	}); err != nil {
		return nil, err
	}

	nodes := make([]models.Criteria, 0, len(doc.Criteria))
	for _, c := range doc.Criteria {
		nodes = append(nodes, models.Criteria{
			Name:          optional(c.Name),
			Alias:         c.Alias,
			ParentAlias:   optional(c.ParentAlias),
			Description:   c.Description,
			IsInput:       c.IsInput,
			Expression:    optional(c.Expression),
			IsFinalResult: c.IsFinalResult,
		})
	}
	index, err := criteriatree.Build(nodes)
	if err != nil {
		return nil, treeValidationError(err)
	}
	for _, rel := range doc.Relationships {
		if err := index.ValidateRelationship(rel.From, rel.To); err != nil {
			return nil, treeValidationError(err)
		}
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)

		if err := store.CriteriaVersions.Create(ctx, version); err != nil {
			if errors.Is(err, repository.ErrCriteriaVersionExists) {
				return NewValidationError("version_name", msgVersionNameTaken)
			}
			return err
		}

		inputTypes := map[string]uint{}
		for i, c := range doc.Criteria {
			node := nodes[i]
			node.VersionID = version.ID
			node.Alias = strings.TrimSpace(node.Alias)
			if c.InputType != "" {
				id, ok := inputTypes[c.InputType]
				if !ok {
					it, err := store.InputTypes.GetByName(ctx, c.InputType)
					if errors.Is(err, repository.ErrInputTypeNotFound) {
						return NewValidationError("input_type", fmt.Sprintf("Input type %q does not exist.", c.InputType))
					}
					if err != nil {
						return err
					}
					id = it.ID
					inputTypes[c.InputType] = id
				}
				node.InputTypeID = &id
			}
			if err := store.Criteria.Create(ctx, &node); err != nil {
				return err
			}
		}

		if doc.ResultPolicy != nil {
			policy := &models.ResultPolicy{VersionID: version.ID}
			var err error
			if policy.GradingRule, err = toJSON(doc.ResultPolicy.GradingRule); err != nil {
				return err
			}
			if policy.ActionGrades, err = toJSON(doc.ResultPolicy.ActionGrades); err != nil {
				return err
			}
			if policy.ExplanationGrades, err = toJSON(doc.ResultPolicy.ExplanationGrades); err != nil {
				return err
			}
			if err := store.ResultPolicies.Upsert(ctx, policy); err != nil {
				return err
			}
		}

		for _, rel := range doc.Relationships {
			if err := store.VariableRelationships.Create(ctx, &models.VariableRelationship{
				VersionID: version.ID,
				FromAlias: rel.From,
				ToAlias:   rel.To,
			}); err != nil {
				return err
			}
		}

		return record(ctx, store, actor, AuditVersionImported, ResourceCriteriaVer,
			fmt.Sprintf("%s: %d criteria, %d relationships", version.VersionName, index.Len(), len(doc.Relationships)))
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

func (s *AdminService) initialPassword() (string, string, error) {
	password, err := auth.GenerateInitialPassword(initialPasswordLength)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := s.authSvc.HashPassword(password)
	if err != nil {
		return "", "", err
	}
	return password, hash, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// toJSON converts a decoded YAML value to a JSON document. Nil stays empty.
func toJSON(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result policy: %w", err)
	}
	return b, nil
}
