package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwannenmacher/criteria-settings/internal/models"
)

func TestResultPolicyRepository_UpsertMapsEmptyDocumentsToNull(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec("INSERT INTO result_policies").
		WithArgs(2, `{"A":90}`, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewResultPolicyRepository(db).Upsert(context.Background(), &models.ResultPolicy{
		VersionID:   2,
		GradingRule: json.RawMessage(`{"A":90}`),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultPolicyRepository_GetByVersion(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT version_id, grading_rule").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"version_id", "grading_rule", "action_grades", "explanation_grades"}).
			AddRow(2, []byte(`{"A":90}`), nil, []byte(`["good"]`)))

	policy, err := NewResultPolicyRepository(db).GetByVersion(context.Background(), 2)
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":90}`, string(policy.GradingRule))
	assert.Empty(t, policy.ActionGrades)
	assert.JSONEq(t, `["good"]`, string(policy.ExplanationGrades))
}

func TestResultPolicyRepository_GetByVersionMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT version_id").
		WillReturnRows(sqlmock.NewRows([]string{"version_id", "grading_rule", "action_grades", "explanation_grades"}))

	_, err := NewResultPolicyRepository(db).GetByVersion(context.Background(), 2)
	assert.ErrorIs(t, err, ErrResultPolicyNotFound)
}
