package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwannenmacher/criteria-settings/internal/models"
)

func TestAuditRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	uid := uint(3)
	mock.ExpectQuery("INSERT INTO audit_logs").
		WithArgs(&uid, "criteria_version.create", "criteria_versions", "Created version 1.0", "10.0.0.1", "curl", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	log := &models.AuditLog{
		UserID:    &uid,
		Action:    "criteria_version.create",
		Resource:  "criteria_versions",
		Details:   "Created version 1.0",
		IPAddress: "10.0.0.1",
		UserAgent: "curl",
	}
	require.NoError(t, NewAuditRepository(db).Create(context.Background(), log))
	assert.Equal(t, uint(11), log.ID)
	assert.False(t, log.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_ListByResourceAll(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now()
	mock.ExpectQuery("FROM audit_logs").
		WithArgs("", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "action", "resource", "details", "ip_address", "user_agent", "created_at"}).
			AddRow(2, nil, "access.denied", "criteria", "", "", "", now).
			AddRow(1, 3, "auth.login", "users", "", "", "", now))

	logs, err := NewAuditRepository(db).ListByResource(context.Background(), "", 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Nil(t, logs[0].UserID)
	require.NotNil(t, logs[1].UserID)
	assert.Equal(t, uint(3), *logs[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
