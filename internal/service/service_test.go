package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwannenmacher/criteria-settings/internal/criteriatree"
	"github.com/pwannenmacher/criteria-settings/internal/models"
	"github.com/pwannenmacher/criteria-settings/internal/permission"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var userRowColumns = []string{
	"id", "username", "name", "password_hash", "is_staff", "is_superuser", "is_active",
	"is_default_password", "question", "answer_hash", "date_joined", "last_login_at", "created_at", "updated_at",
}

var versionRowColumns = []string{"id", "version_name", "role_name", "state", "created_user_id", "updated_user_id", "created_at", "updated_at"}

func expectUser(mock sqlmock.Sqlmock, username string, superuser bool) {
	now := time.Now()
	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs(username).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(1, username, "Name", "hash", superuser, superuser, true, false, nil, nil, now, nil, now, now))
}

func expectVersion(mock sqlmock.Sqlmock, name string, state models.VersionState) {
	now := time.Now()
	mock.ExpectQuery(`FROM criteria_versions WHERE version_name = \$1 FOR UPDATE`).
		WithArgs(name).
		WillReturnRows(sqlmock.NewRows(versionRowColumns).
			AddRow(7, name, "MB", string(state), nil, nil, now, now))
}

func rawFields(t *testing.T, payload string) map[string]json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(payload), &fields))
	return fields
}

func TestCriteriaVersionService_UpdateRejectsMultipleFields(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewCriteriaVersionService(db)

	mock.ExpectBegin()
	expectUser(mock, "admin", true)
	expectVersion(mock, "v1", models.StateUnofficial)
	mock.ExpectRollback()

	actor := Actor{UserID: 1, Username: "admin"}
	_, err := svc.Update(context.Background(), actor, "v1",
		rawFields(t, `{"state":"Official","role_name":"TL"}`))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{msgOnlyOneField}, verr.Fields[NonFieldErrors])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCriteriaVersionService_UpdateGuardsState(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewCriteriaVersionService(db)

	mock.ExpectBegin()
	expectUser(mock, "admin", true)
	expectVersion(mock, "v1", models.StateOutdated)
	mock.ExpectRollback()

	_, err := svc.Update(context.Background(), Actor{UserID: 1, Username: "admin"}, "v1",
		rawFields(t, `{"state":"Official"}`))

	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCriteriaVersionService_UpdateNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewCriteriaVersionService(db)

	mock.ExpectBegin()
	expectUser(mock, "admin", true)
	mock.ExpectQuery(`FROM criteria_versions WHERE version_name = \$1 FOR UPDATE`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(versionRowColumns))
	mock.ExpectRollback()

	// not found wins over the invalid payload
	_, err := svc.Update(context.Background(), Actor{UserID: 1, Username: "admin"}, "missing",
		rawFields(t, `{"state":"Official","role_name":"TL"}`))

	assert.ErrorIs(t, err, ErrCriteriaVersionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCriteriaVersionService_ListEmptyTable(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewCriteriaVersionService(db)

	mock.ExpectBegin()
	expectUser(mock, "admin", true)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM criteria_versions`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	_, err := svc.List(context.Background(), Actor{UserID: 1, Username: "admin"},
		models.CriteriaVersionFilter{RoleName: models.CriteriaRoleTeamLead})

	assert.ErrorIs(t, err, ErrNoCriteriaVersions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCriteriaVersionService_DeniedWithoutEmployeeRecord(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewCriteriaVersionService(db)

	mock.ExpectBegin()
	expectUser(mock, "member", false)
	mock.ExpectQuery(`FROM employees e`).
		WithArgs(1).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := svc.Delete(context.Background(), Actor{UserID: 1, Username: "member"}, "v1")

	var denied *permission.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, permission.MsgEmployeeNotFound, denied.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyVersionField(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		raw       string
		current   models.VersionState
		wantErr   error
		wantField string
	}{
		{name: "valid role", field: "role_name", raw: `"TL"`},
		{name: "invalid role", field: "role_name", raw: `"XX"`, wantField: "role_name"},
		{name: "role not a string", field: "role_name", raw: `3`, wantField: "role_name"},
		{name: "unknown state", field: "state", raw: `"Draft"`, wantField: "state"},
		{name: "allowed transition", field: "state", raw: `"Official"`, current: models.StateUnofficial},
		{name: "forbidden transition", field: "state", raw: `"Unofficial"`, current: models.StateOfficial, wantErr: ErrInvalidStateTransition},
		{name: "blank name", field: "version_name", raw: `"  "`, wantField: "version_name"},
		{name: "too long name", field: "version_name", raw: `"` + strings.Repeat("x", 201) + `"`, wantField: "version_name"},
		{name: "unchanged name", field: "version_name", raw: `"v1"`},
		{name: "read-only field", field: "created_user", raw: `5`, wantField: "created_user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := tt.current
			if current == "" {
				current = models.StateUnofficial
			}
			version := &models.CriteriaVersion{VersionName: "v1", RoleName: models.CriteriaRoleMember, State: current}

			// store is only consulted for renames, which these cases avoid
			err := applyVersionField(context.Background(), nil, version, tt.field, json.RawMessage(tt.raw))

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantField != "":
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.NotEmpty(t, verr.Fields[tt.wantField])
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckBounds(t *testing.T) {
	one, five := 1, 5
	assert.NoError(t, checkBounds(nil, nil))
	assert.NoError(t, checkBounds(&one, nil))
	assert.NoError(t, checkBounds(&one, &five))
	assert.NoError(t, checkBounds(&five, &five))

	var verr *ValidationError
	require.ErrorAs(t, checkBounds(&five, &one), &verr)
	assert.Equal(t, []string{msgMinAboveMax}, verr.Fields[NonFieldErrors])
}

func TestValidateConvertsFieldErrors(t *testing.T) {
	err := validate(&CreateCriteriaVersionInput{RoleName: "XX"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "version_name")
	assert.Contains(t, verr.Fields, "role_name")
	assert.NotContains(t, verr.Fields, "state")
}

func TestTreeValidationError(t *testing.T) {
	_, err := criteriatree.Build([]models.Criteria{{Alias: "a"}, {Alias: "a"}})

	var verr *ValidationError
	require.ErrorAs(t, treeValidationError(err), &verr)
	assert.Equal(t, []string{"Alias already exists in this version."}, verr.Fields["alias"])

	other := errors.New("boom")
	assert.Equal(t, other, treeValidationError(other))
}

func TestCredentialErrorUnwraps(t *testing.T) {
	err := credentialError(FieldOldPassword, ErrIncorrectCredentials)

	assert.ErrorIs(t, err, ErrIncorrectCredentials)
	var cerr *CredentialError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "oldpassword", cerr.Field)
}

func TestTeamService_ListForUser(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewTeamService(db)

	_, err := svc.ListForUser(context.Background(), &models.User{ID: 3, IsDefaultPassword: true})
	assert.ErrorIs(t, err, ErrMustSetPassword)

	mock.ExpectQuery(`FROM teams t`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = svc.ListForUser(context.Background(), &models.User{ID: 3})
	assert.ErrorIs(t, err, ErrNotPartOfTeam)

	now := time.Now()
	mock.ExpectQuery(`FROM teams t`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent_team_id", "name", "is_active", "created_user_id", "updated_user_id", "created_at", "updated_at"}).
			AddRow(9, nil, "Core", true, nil, nil, now, now))
	teams, err := svc.ListForUser(context.Background(), &models.User{ID: 3})
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "Core", teams[0].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseVersionDocument(t *testing.T) {
	doc, err := ParseVersionDocument(strings.NewReader(`
version_name: 2025-TL
role_name: TL
criteria:
  - alias: total
    name: Total
    is_final_result: true
  - alias: q1
    parent_alias: total
    is_input: true
    input_type: Score
result_policy:
  grading_rule:
    A: [90, 100]
relationships:
  - from: q1
    to: total
`))
	require.NoError(t, err)
	assert.Equal(t, "2025-TL", doc.VersionName)
	require.Len(t, doc.Criteria, 2)
	assert.Equal(t, "total", doc.Criteria[1].ParentAlias)

	raw, err := toJSON(doc.ResultPolicy.GradingRule)
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":[90,100]}`, string(raw))

	_, err = ParseVersionDocument(strings.NewReader("version_name: x\nunknown_key: 1\n"))
	assert.Error(t, err)
}

func TestImportVersionValidatesTreeBeforeWriting(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewAdminService(db, nil)

	doc := &VersionDocument{
		VersionName: "cyclic",
		Criteria: []CriteriaDocument{
			{Alias: "a", ParentAlias: "b"},
			{Alias: "b", ParentAlias: "a"},
		},
	}
	_, err := svc.ImportVersion(context.Background(), Actor{}, doc)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Parent alias creates a cycle."}, verr.Fields["parent_alias"])
	assert.NoError(t, mock.ExpectationsWereMet(), "nothing may be written for an invalid tree")

	doc = &VersionDocument{
		VersionName:   "dangling",
		Criteria:      []CriteriaDocument{{Alias: "a"}},
		Relationships: []RelationshipDocument{{From: "a", To: "zz"}},
	}
	_, err = svc.ImportVersion(context.Background(), Actor{}, doc)
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Fields["to_alias"])
}

func TestAddEmployeeEnforcesTeamCooldown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		previousTeam uint
		previousAge  time.Duration
		wantErr      error
	}{
		{name: "recent move to another team", previousTeam: 2, previousAge: 30 * 24 * time.Hour, wantErr: ErrEmployeeTooSoon},
		{name: "old record in another team", previousTeam: 2, previousAge: 91 * 24 * time.Hour},
		{name: "recent record in the same team", previousTeam: 5, previousAge: 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			svc := NewAdminService(db, nil)
			svc.now = func() time.Time { return now }

			created := now.Add(-tt.previousAge)
			mock.ExpectBegin()
			expectUser(mock, "dev", false)
			mock.ExpectQuery(`FROM teams t WHERE t.name = \$1`).
				WithArgs("Core").
				WillReturnRows(sqlmock.NewRows([]string{"id", "parent_team_id", "name", "is_active", "created_user_id", "updated_user_id", "created_at", "updated_at"}).
					AddRow(5, nil, "Core", true, nil, nil, now, now))
			mock.ExpectQuery(`FROM access_levels a WHERE a.access_level = \$1`).
				WithArgs("member").
				WillReturnRows(sqlmock.NewRows([]string{"id", "access_level", "r1", "w1", "r2", "w2", "r3", "w3", "exp", "cu", "uu", "ca", "ua"}).
					AddRow(4, "member", true, false, false, false, true, false, false, nil, nil, now, now))
			mock.ExpectQuery(`FROM employees e WHERE e.user_id = \$1`).
				WithArgs(1).
				WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "team_id", "access_level_id", "role", "is_active", "cu", "uu", "ca", "ua"}).
					AddRow(3, 1, tt.previousTeam, 4, "Developer", true, nil, nil, created, created))

			if tt.wantErr != nil {
				mock.ExpectRollback()
			} else {
				mock.ExpectQuery(`INSERT INTO employees`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
				mock.ExpectCommit()
			}

			employee, err := svc.AddEmployee(context.Background(), AddEmployeeInput{
				Username: "dev", Team: "Core", AccessLevel: "member",
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.RoleDeveloper, employee.Role)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSetInitialPasswordRejectsLongQuestion(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewAuthService(db, nil, NewAuditService(db))

	err := svc.SetInitialPassword(context.Background(), SetInitialPasswordInput{
		Username:    "newcomer",
		Password:    "@Abcde12345",
		NewPassword: "@Newpass123",
		Question:    strings.Repeat("q", 256),
		Answer:      "blue",
	}, Actor{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Fields["question"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeExpiredSessionsLeavesLoggingToCaller(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewAuthService(db, nil, NewAuditService(db))

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	mock.ExpectExec(`DELETE FROM user_sessions WHERE expires_at <= \$1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := svc.PurgeExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Empty(t, buf.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
