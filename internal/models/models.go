package models

import (
	"encoding/json"
	"time"
)

// User represents an account that can log in
type User struct {
	ID                uint       `json:"id" db:"id"`
	Username          string     `json:"username" db:"username"`
	Name              string     `json:"name" db:"name"`
	PasswordHash      string     `json:"-" db:"password_hash"`
	IsStaff           bool       `json:"is_staff" db:"is_staff"`
	IsSuperuser       bool       `json:"is_superuser" db:"is_superuser"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	IsDefaultPassword bool       `json:"is_default_password" db:"is_default_password"`
	Question          *string    `json:"question,omitempty" db:"question"`
	AnswerHash        *string    `json:"-" db:"answer_hash"`
	DateJoined        time.Time  `json:"date_joined" db:"date_joined"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// Group is a named set of permissions granted to staff users
type Group struct {
	ID   uint   `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Permission is a staff permission. Name is matched by substring.
type Permission struct {
	ID       uint   `json:"id" db:"id"`
	Codename string `json:"codename" db:"codename"`
	Name     string `json:"name" db:"name"`
}

// Team is an organisational unit, optionally nested under a parent team
type Team struct {
	ID            uint      `json:"id" db:"id"`
	ParentTeamID  *uint     `json:"parent_team,omitempty" db:"parent_team_id"`
	Name          string    `json:"name" db:"name"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedUserID *uint     `json:"created_user,omitempty" db:"created_user_id"`
	UpdatedUserID *uint     `json:"updated_user,omitempty" db:"updated_user_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// AccessLevel is a named bundle of capability flags shared by employees
type AccessLevel struct {
	ID                       uint      `json:"id" db:"id"`
	Name                     string    `json:"access_level" db:"access_level"`
	CanReadEvalData          bool      `json:"can_read_eval_data" db:"can_read_eval_data"`
	CanWriteEvalData         bool      `json:"can_write_eval_data" db:"can_write_eval_data"`
	CanReadEvalSettings      bool      `json:"can_read_eval_settings" db:"can_read_eval_settings"`
	CanWriteEvalSettings     bool      `json:"can_write_eval_settings" db:"can_write_eval_settings"`
	CanReadCriteriaSettings  bool      `json:"can_read_criteria_settings" db:"can_read_criteria_settings"`
	CanWriteCriteriaSettings bool      `json:"can_write_criteria_settings" db:"can_write_criteria_settings"`
	CanExport                bool      `json:"can_export" db:"can_export"`
	CreatedUserID            *uint     `json:"created_user,omitempty" db:"created_user_id"`
	UpdatedUserID            *uint     `json:"updated_user,omitempty" db:"updated_user_id"`
	CreatedAt                time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time `json:"updated_at" db:"updated_at"`
}

// EmployeeRole is the function an employee has inside a team
type EmployeeRole string

const (
	RoleProjectManager EmployeeRole = "Project Manager"
	RoleScrumMaster    EmployeeRole = "Scrum Master"
	RoleTeamLead       EmployeeRole = "Team Lead"
	RoleDeveloper      EmployeeRole = "Developer"
	RoleTester         EmployeeRole = "Tester"
)

// Valid reports whether r is one of the known employee roles
func (r EmployeeRole) Valid() bool {
	switch r {
	case RoleProjectManager, RoleScrumMaster, RoleTeamLead, RoleDeveloper, RoleTester:
		return true
	}
	return false
}

// Employee links a user to a team and an access level
type Employee struct {
	ID            uint         `json:"id" db:"id"`
	UserID        uint         `json:"user" db:"user_id"`
	TeamID        uint         `json:"team" db:"team_id"`
	AccessLevelID uint         `json:"access_level" db:"access_level_id"`
	Role          EmployeeRole `json:"role" db:"role"`
	IsActive      bool         `json:"is_active" db:"is_active"`
	CreatedUserID *uint        `json:"created_user,omitempty" db:"created_user_id"`
	UpdatedUserID *uint        `json:"updated_user,omitempty" db:"updated_user_id"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// CriteriaRole is the audience a criteria version is written for
type CriteriaRole string

const (
	CriteriaRoleTeamLead CriteriaRole = "TL"
	CriteriaRoleMember   CriteriaRole = "MB"
)

// Valid reports whether r is a known criteria role
func (r CriteriaRole) Valid() bool {
	return r == CriteriaRoleTeamLead || r == CriteriaRoleMember
}

// Label returns the human readable role name
func (r CriteriaRole) Label() string {
	switch r {
	case CriteriaRoleTeamLead:
		return "Team Lead"
	case CriteriaRoleMember:
		return "Member"
	}
	return string(r)
}

// VersionState is the lifecycle state of a criteria version
type VersionState string

const (
	StateUnofficial VersionState = "Unofficial"
	StateOfficial   VersionState = "Official"
	StateOutdated   VersionState = "Outdated"
)

// Valid reports whether s is a known lifecycle state
func (s VersionState) Valid() bool {
	return s == StateUnofficial || s == StateOfficial || s == StateOutdated
}

// CriteriaVersion is a named, stateful snapshot of a criteria tree
type CriteriaVersion struct {
	ID            uint         `json:"id" db:"id"`
	VersionName   string       `json:"version_name" db:"version_name"`
	RoleName      CriteriaRole `json:"role_name" db:"role_name"`
	State         VersionState `json:"state" db:"state"`
	CreatedUserID *uint        `json:"created_user" db:"created_user_id"`
	UpdatedUserID *uint        `json:"updated_user" db:"updated_user_id"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// CriteriaVersionFilter narrows a version listing. Empty fields match all.
type CriteriaVersionFilter struct {
	RoleName CriteriaRole
	State    VersionState
}

// InputType describes the value domain of an input criterion. Nil bounds are unbounded.
type InputType struct {
	ID   uint   `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Min  *int   `json:"min" db:"min"`
	Max  *int   `json:"max" db:"max"`
}

// Criteria is one node of a version's criteria tree
type Criteria struct {
	ID            uint    `json:"id" db:"id"`
	VersionID     uint    `json:"version" db:"version_id"`
	Name          *string `json:"name" db:"name"`
	Alias         string  `json:"alias" db:"alias"`
	ParentAlias   *string `json:"parent_alias" db:"parent_alias"`
	Description   string  `json:"description" db:"description"`
	IsInput       bool    `json:"is_input" db:"is_input"`
	InputTypeID   *uint   `json:"input_type" db:"input_type_id"`
	Expression    *string `json:"expression" db:"expression"`
	IsFinalResult bool    `json:"is_final_result" db:"is_final_result"`
}

// ResultPolicy holds the free-form grading documents of a version
type ResultPolicy struct {
	VersionID         uint            `json:"version" db:"version_id"`
	GradingRule       json.RawMessage `json:"grading_rule" db:"grading_rule"`
	ActionGrades      json.RawMessage `json:"action_grades" db:"action_grades"`
	ExplanationGrades json.RawMessage `json:"explanation_grades" db:"explanation_grades"`
}

// VariableRelationship is a directed dependency edge between two aliases
type VariableRelationship struct {
	ID        uint   `json:"id" db:"id"`
	VersionID uint   `json:"version" db:"version_id"`
	FromAlias string `json:"from_alias" db:"from_alias"`
	ToAlias   string `json:"to_alias" db:"to_alias"`
}

// TokenType distinguishes access and refresh sessions
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Session represents an issued token that has not been revoked
type Session struct {
	ID        uint      `json:"id" db:"id"`
	UserID    uint      `json:"user_id" db:"user_id"`
	JTI       string    `json:"-" db:"jti"`
	TokenType TokenType `json:"token_type" db:"token_type"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	IPAddress string    `json:"ip_address" db:"ip_address"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        uint      `json:"id" db:"id"`
	UserID    *uint     `json:"user_id,omitempty" db:"user_id"`
	Action    string    `json:"action" db:"action"`
	Resource  string    `json:"resource" db:"resource"`
	Details   string    `json:"details" db:"details"`
	IPAddress string    `json:"ip_address" db:"ip_address"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
