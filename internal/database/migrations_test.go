package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwannenmacher/criteria-settings/migrations"
)

func TestReadMigrations(t *testing.T) {
	files := fstest.MapFS{
		"002_add_things.up.sql":   {Data: []byte("CREATE TABLE things ();")},
		"002_add_things.down.sql": {Data: []byte("DROP TABLE things;")},
		"001_init.up.sql":         {Data: []byte("CREATE TABLE init ();")},
		"README.md":               {Data: []byte("ignored")},
		"noversion.sql":           {Data: []byte("ignored")},
		"003_only_down.down.sql":  {Data: []byte("DROP TABLE x;")},
	}

	got, err := ReadMigrations(files)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "001", got[0].Version)
	assert.Equal(t, "init", got[0].Title)
	assert.Equal(t, "002", got[1].Version)
	assert.Equal(t, "add things", got[1].Title)
	assert.Equal(t, "DROP TABLE things;", got[1].DownSQL)
	assert.Equal(t, calculateChecksum("CREATE TABLE things ();"), got[1].Checksum)
}

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	got, err := ReadMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Version, got[i].Version)
	}
	for _, m := range got {
		assert.NotEmpty(t, m.DownSQL, "migration %s has no down file", m.Version)
	}
}

func TestValidateChecksums(t *testing.T) {
	ms := []Migration{{Version: "001", Title: "init", Checksum: "abc"}}

	assert.NoError(t, validateChecksums(ms, map[string]string{}))
	assert.NoError(t, validateChecksums(ms, map[string]string{"001": "abc"}))
	assert.NoError(t, validateChecksums(ms, map[string]string{"001": ""}))

	err := validateChecksums(ms, map[string]string{"001": "def"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001 (init)")
}

func TestRunMigrationsAppliesPendingOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	files := fstest.MapFS{
		"001_init.up.sql": {Data: []byte("CREATE TABLE a (id INT);")},
		"002_more.up.sql": {Data: []byte("CREATE TABLE b (id INT);")},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version, COALESCE\\(checksum, ''\\) FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version", "checksum"}).
			AddRow("001", calculateChecksum("CREATE TABLE a (id INT);")))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id INT);")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs("002", "more", calculateChecksum("CREATE TABLE b (id INT);")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = NewMigrationExecutor(db, files).RunMigrations(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	files := fstest.MapFS{"001_init.up.sql": {Data: []byte("CREATE TABLE a (id INT);")}}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version").WillReturnRows(sqlmock.NewRows([]string{"version", "checksum"}))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a (id INT);")).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = NewMigrationExecutor(db, files).RunMigrations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration SQL failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}
