package testutil

import (
	"context"
	"database/sql"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/pwannenmacher/criteria-settings/internal/models"
	"github.com/pwannenmacher/criteria-settings/internal/repository"
)

// DefaultPassword satisfies the password policy and is shared by every fixture account
const DefaultPassword = "@Abcde12345"

// Fixtures holds test data
type Fixtures struct {
	DB *sql.DB

	// Superuser passes every permission check
	Superuser *models.User
	// Writer ("OnDQ") can read and write criteria settings
	Writer *models.User
	// Reader can only read criteria settings
	Reader *models.User
	// Outsider has neither a group nor an employee record
	Outsider *models.User
	// Newcomer still has the default password
	Newcomer *models.User
	// Inactive is disabled
	Inactive *models.User

	Team        *models.Team
	WriteAccess *models.AccessLevel
	ReadAccess  *models.AccessLevel
}

// SetupFixtures creates test data
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()
	ctx := context.Background()
	store := repository.New(db)

	f := &Fixtures{DB: db}

	f.Superuser = createUser(t, store, &models.User{Username: "root", Name: "Root", IsStaff: true, IsSuperuser: true, IsActive: true})
	f.Writer = createUser(t, store, &models.User{Username: "OnDQ", Name: "On DQ", IsActive: true})
	f.Reader = createUser(t, store, &models.User{Username: "reader", Name: "Reader", IsActive: true})
	f.Outsider = createUser(t, store, &models.User{Username: "outsider", Name: "Outsider", IsActive: true})
	f.Newcomer = createUser(t, store, &models.User{Username: "newcomer", Name: "Newcomer", IsActive: true, IsDefaultPassword: true})
	f.Inactive = createUser(t, store, &models.User{Username: "inactive", Name: "Inactive", IsActive: false})

	f.Team = &models.Team{Name: "Platform", IsActive: true}
	if err := store.Teams.Create(ctx, f.Team); err != nil {
		t.Fatalf("Failed to create team: %v", err)
	}

	f.WriteAccess = createAccessLevel(t, store, &models.AccessLevel{
		Name:                     "criteria-admin",
		CanReadEvalData:          true,
		CanReadCriteriaSettings:  true,
		CanWriteCriteriaSettings: true,
	})
	f.ReadAccess = createAccessLevel(t, store, &models.AccessLevel{
		Name:                    "criteria-viewer",
		CanReadEvalData:         true,
		CanReadCriteriaSettings: true,
	})

	createEmployee(t, store, f.Writer, f.Team, f.WriteAccess)
	createEmployee(t, store, f.Reader, f.Team, f.ReadAccess)
	createEmployee(t, store, f.Newcomer, f.Team, f.ReadAccess)

	return f
}

// createUser stores u with DefaultPassword
func createUser(t *testing.T, store *repository.Store, u *models.User) *models.User {
	t.Helper()

	// MinCost keeps the fixture setup fast; verification does not depend on cost
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	u.PasswordHash = string(hash)

	if err := store.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("Failed to create user %s: %v", u.Username, err)
	}
	return u
}

func createAccessLevel(t *testing.T, store *repository.Store, level *models.AccessLevel) *models.AccessLevel {
	t.Helper()
	if err := store.AccessLevels.Create(context.Background(), level); err != nil {
		t.Fatalf("Failed to create access level %s: %v", level.Name, err)
	}
	return level
}

func createEmployee(t *testing.T, store *repository.Store, u *models.User, team *models.Team, level *models.AccessLevel) {
	t.Helper()
	employee := &models.Employee{
		UserID:        u.ID,
		TeamID:        team.ID,
		AccessLevelID: level.ID,
		Role:          models.RoleDeveloper,
		IsActive:      true,
	}
	if err := store.Employees.Create(context.Background(), employee); err != nil {
		t.Fatalf("Failed to create employee for %s: %v", u.Username, err)
	}
}
