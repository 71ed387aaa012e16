package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwannenmacher/criteria-settings/internal/models"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var versionRowColumns = []string{"id", "version_name", "role_name", "state", "created_user_id", "updated_user_id", "created_at", "updated_at"}

func TestCriteriaVersionRepository_ListFilters(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		filter    models.CriteriaVersionFilter
		wantWhere string
		wantArgs  []driver.Value
	}{
		{
			name:      "no filter",
			filter:    models.CriteriaVersionFilter{},
			wantWhere: "FROM criteria_versions ORDER BY id",
		},
		{
			name:      "role only",
			filter:    models.CriteriaVersionFilter{RoleName: models.CriteriaRoleTeamLead},
			wantWhere: "WHERE role_name = $1 ORDER BY id",
			wantArgs:  []driver.Value{models.CriteriaRoleTeamLead},
		},
		{
			name:      "state only",
			filter:    models.CriteriaVersionFilter{State: models.StateOfficial},
			wantWhere: "WHERE state = $1 ORDER BY id",
			wantArgs:  []driver.Value{models.StateOfficial},
		},
		{
			name:      "role and state",
			filter:    models.CriteriaVersionFilter{RoleName: models.CriteriaRoleMember, State: models.StateOutdated},
			wantWhere: "WHERE role_name = $1 AND state = $2 ORDER BY id",
			wantArgs:  []driver.Value{models.CriteriaRoleMember, models.StateOutdated},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewCriteriaVersionRepository(db)

			rows := sqlmock.NewRows(versionRowColumns).
				AddRow(1, "v1", "MB", "Official", 7, nil, now, now)

			expect := mock.ExpectQuery(regexp.QuoteMeta(tt.wantWhere))
			if len(tt.wantArgs) > 0 {
				expect = expect.WithArgs(tt.wantArgs...)
			}
			expect.WillReturnRows(rows)

			versions, err := repo.List(context.Background(), tt.filter)
			require.NoError(t, err)
			require.Len(t, versions, 1)
			assert.Equal(t, "v1", versions[0].VersionName)
			assert.Equal(t, models.StateOfficial, versions[0].State)
			require.NotNil(t, versions[0].CreatedUserID)
			assert.Equal(t, uint(7), *versions[0].CreatedUserID)
			assert.Nil(t, versions[0].UpdatedUserID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCriteriaVersionRepository_CreateDuplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCriteriaVersionRepository(db)

	mock.ExpectQuery("INSERT INTO criteria_versions").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	err := repo.Create(context.Background(), &models.CriteriaVersion{
		VersionName: "v1",
		RoleName:    models.CriteriaRoleMember,
		State:       models.StateUnofficial,
	})
	assert.ErrorIs(t, err, ErrCriteriaVersionExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCriteriaVersionRepository_GetByNameNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCriteriaVersionRepository(db)

	mock.ExpectQuery("SELECT .* FROM criteria_versions WHERE version_name = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(versionRowColumns))

	_, err := repo.GetByName(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCriteriaVersionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCriteriaVersionRepository_Delete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec("DELETE FROM criteria_versions WHERE id = \\$1").
			WithArgs(3).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewCriteriaVersionRepository(db).Delete(context.Background(), 3)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec("DELETE FROM criteria_versions").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewCriteriaVersionRepository(db).Delete(context.Background(), 3)
		assert.ErrorIs(t, err, ErrCriteriaVersionNotFound)
	})

	t.Run("driver error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec("DELETE FROM criteria_versions").
			WillReturnError(errors.New("connection reset"))

		err := NewCriteriaVersionRepository(db).Delete(context.Background(), 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete criteria version")
	})
}
