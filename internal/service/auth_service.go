package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pwannenmacher/criteria-settings/internal/auth"
	"github.com/pwannenmacher/criteria-settings/internal/database"
	"github.com/pwannenmacher/criteria-settings/internal/models"
	"github.com/pwannenmacher/criteria-settings/internal/repository"
	"github.com/pwannenmacher/criteria-settings/pkg/validator"
)

// Request field ids reported with account errors
const (
	FieldUsername    = "username"
	FieldPassword    = "password"
	FieldOldPassword = "oldpassword"
	FieldAnswer      = "answer"
)

// TokenPair is an issued access/refresh token pair
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginInput holds login credentials
type LoginInput struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordInput holds a password change request
type ChangePasswordInput struct {
	Username    string `json:"username" validate:"required,max=150"`
	Password    string `json:"password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// SetInitialPasswordInput replaces the system issued password and sets the security question
type SetInitialPasswordInput struct {
	Username    string `json:"username" validate:"required,max=150"`
	Password    string `json:"password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
	Question    string `json:"question" validate:"required,max=255"`
	Answer      string `json:"answer" validate:"required"`
}

// ForgotPasswordInput resets a password with the security answer
type ForgotPasswordInput struct {
	Username    string `json:"username" validate:"required,max=150"`
	Answer      string `json:"answer" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// AuthService handles authentication business logic
type AuthService struct {
	db      *sql.DB
	authSvc *auth.Service
	audit   *AuditService
}

// NewAuthService creates a new authentication service
func NewAuthService(db *sql.DB, authSvc *auth.Service, audit *AuditService) *AuthService {
	return &AuthService{db: db, authSvc: authSvc, audit: audit}
}

// Login verifies credentials and issues a token pair. Accounts that still
// carry their system issued password get ErrMustSetPassword and no tokens.
func (s *AuthService) Login(ctx context.Context, in LoginInput, client Actor) (*TokenPair, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}

	var pair *TokenPair
	var user *models.User
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)

		var err error
		user, err = store.Users.GetByUsername(ctx, in.Username)
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrIncorrectCredentials
		}
		if err != nil {
			return err
		}
		if !user.IsActive {
			return ErrUserNotAllowed
		}
		if err := s.authSvc.VerifyPassword(user.PasswordHash, in.Password); err != nil {
			return ErrIncorrectCredentials
		}
		if user.IsDefaultPassword {
			return ErrMustSetPassword
		}

		pair, err = s.issueTokens(ctx, store, user, client)
		if err != nil {
			return err
		}
		return store.Users.UpdateLastLogin(ctx, user.ID)
	})

	client.Username = in.Username
	if err != nil {
		if user != nil {
			client.UserID = user.ID
		}
		s.audit.Log(ctx, client, AuditLoginFailed, ResourceUser, err.Error())
		return nil, err
	}

	client.UserID = user.ID
	s.audit.Log(ctx, client, AuditLoginSuccess, ResourceUser, "User logged in")
	return pair, nil
}

// ChangePassword replaces the password of an account that already left the default password
func (s *AuthService) ChangePassword(ctx context.Context, in ChangePasswordInput, client Actor) error {
	if err := validate(&in); err != nil {
		return err
	}
	if err := validator.ValidatePassword(in.NewPassword); err != nil {
		return NewValidationError("new_password", err.Error())
	}

	var userID uint
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)

		user, err := s.activeUser(ctx, store, in.Username)
		if err != nil {
			return err
		}
		if user.IsDefaultPassword {
			return credentialError(FieldPassword, ErrUserNotAllowed)
		}
		if err := s.authSvc.VerifyPassword(user.PasswordHash, in.Password); err != nil {
			return credentialError(FieldOldPassword, ErrIncorrectCredentials)
		}

		hash, err := s.authSvc.HashPassword(in.NewPassword)
		if err != nil {
			return err
		}
		if err := store.Users.UpdatePassword(ctx, user.ID, hash, false); err != nil {
			return err
		}
		userID = user.ID
		return store.Sessions.DeleteAllUserSessions(ctx, user.ID)
	})
	if err != nil {
		return err
	}

	client.UserID = userID
	client.Username = in.Username
	s.audit.Log(ctx, client, AuditPasswordChanged, ResourceUser, "Password changed")
	return nil
}

// SetInitialPassword replaces the system issued password and stores the security question
func (s *AuthService) SetInitialPassword(ctx context.Context, in SetInitialPasswordInput, client Actor) error {
	if err := validate(&in); err != nil {
		return err
	}
	if err := validator.ValidatePassword(in.NewPassword); err != nil {
		return NewValidationError("new_password", err.Error())
	}

	var userID uint
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)

		user, err := s.activeUser(ctx, store, in.Username)
		if err != nil {
			return err
		}
		if err := s.authSvc.VerifyPassword(user.PasswordHash, in.Password); err != nil {
			return credentialError(FieldPassword, ErrIncorrectCredentials)
		}
		if !user.IsDefaultPassword {
			return ErrPasswordAlreadyChanged
		}

		hash, err := s.authSvc.HashPassword(in.NewPassword)
		if err != nil {
			return err
		}
		answerHash, err := s.authSvc.HashAnswer(in.Answer)
		if err != nil {
			return err
		}
		userID = user.ID
		return store.Users.SetInitialCredentials(ctx, user.ID, hash, in.Question, answerHash)
	})
	if err != nil {
		return err
	}

	client.UserID = userID
	client.Username = in.Username
	s.audit.Log(ctx, client, AuditPasswordSet, ResourceUser, "Initial password replaced")
	return nil
}

// ForgotPassword resets the password when the security answer matches
func (s *AuthService) ForgotPassword(ctx context.Context, in ForgotPasswordInput, client Actor) error {
	if err := validate(&in); err != nil {
		return err
	}
	if err := validator.ValidatePassword(in.NewPassword); err != nil {
		return NewValidationError("new_password", err.Error())
	}

	var userID uint
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)

		user, err := s.activeUser(ctx, store, in.Username)
		if err != nil {
			return err
		}
		if user.IsDefaultPassword {
			return credentialError(FieldUsername, ErrUserNotAllowed)
		}
		if user.AnswerHash == nil || s.authSvc.VerifyAnswer(*user.AnswerHash, in.Answer) != nil {
			return credentialError(FieldAnswer, ErrAnswerMismatch)
		}

		hash, err := s.authSvc.HashPassword(in.NewPassword)
		if err != nil {
			return err
		}
		if err := store.Users.UpdatePassword(ctx, user.ID, hash, false); err != nil {
			return err
		}
		userID = user.ID
		return store.Sessions.DeleteAllUserSessions(ctx, user.ID)
	})
	if err != nil {
		return err
	}

	client.UserID = userID
	client.Username = in.Username
	s.audit.Log(ctx, client, AuditPasswordReset, ResourceUser, "Password reset with security answer")
	return nil
}

// GetQuestion returns the security question of an account
func (s *AuthService) GetQuestion(ctx context.Context, username string) (string, error) {
	store := repository.New(s.db)
	user, err := s.activeUser(ctx, store, username)
	if err != nil {
		return "", err
	}
	if user.IsDefaultPassword {
		return "", credentialError(FieldUsername, ErrUserNotAllowed)
	}
	if user.Question == nil {
		return "", nil
	}
	return *user.Question, nil
}

// RefreshToken rotates a refresh token: the presented session is revoked and a new pair issued
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string, client Actor) (*TokenPair, error) {
	claims, err := s.authSvc.ValidateToken(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	var pair *TokenPair
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)

		session, err := store.Sessions.GetByJTI(ctx, claims.ID)
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrInvalidRefreshToken
		}
		if err != nil {
			return err
		}
		if session.UserID != claims.UserID || session.TokenType != models.TokenTypeRefresh {
			return ErrInvalidRefreshToken
		}

		user, err := store.Users.GetByID(ctx, claims.UserID)
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidRefreshToken
		}
		if err != nil {
			return err
		}
		if !user.IsActive || user.IsDefaultPassword {
			return ErrInvalidRefreshToken
		}

		if err := store.Sessions.DeleteByJTI(ctx, claims.ID); err != nil {
			return err
		}
		pair, err = s.issueTokens(ctx, store, user, client)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes every session of the caller
func (s *AuthService) Logout(ctx context.Context, client Actor) error {
	if err := repository.New(s.db).Sessions.DeleteAllUserSessions(ctx, client.UserID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	s.audit.Log(ctx, client, AuditLogout, ResourceUser, "All sessions revoked")
	return nil
}

// Authenticate resolves an access token to its active user. The token's
// session must still exist, so revoked tokens are refused.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.authSvc.ValidateToken(accessToken, models.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	store := repository.New(s.db)
	if _, err := store.Sessions.GetByJTI(ctx, claims.ID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}

	user, err := store.Users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, auth.ErrInvalidToken
	}
	return user, nil
}

// PurgeExpiredSessions deletes sessions whose token has expired
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return repository.New(s.db).Sessions.DeleteExpiredSessions(ctx)
}

// activeUser loads username and requires the account to be active
func (s *AuthService) activeUser(ctx context.Context, store *repository.Store, username string) (*models.User, error) {
	user, err := store.Users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, credentialError(FieldUsername, ErrIncorrectCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, credentialError(FieldUsername, ErrUserNotAllowed)
	}
	return user, nil
}

// issueTokens creates an access and a refresh token and records a session for each
func (s *AuthService) issueTokens(ctx context.Context, store *repository.Store, user *models.User, client Actor) (*TokenPair, error) {
	access, err := s.authSvc.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.authSvc.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	for _, t := range []struct {
		token *auth.IssuedToken
		kind  models.TokenType
	}{
		{access, models.TokenTypeAccess},
		{refresh, models.TokenTypeRefresh},
	} {
		if err := store.Sessions.Create(ctx, &models.Session{
			UserID:    user.ID,
			JTI:       t.token.JTI,
			TokenType: t.kind,
			ExpiresAt: t.token.ExpiresAt,
			IPAddress: client.IPAddress,
			UserAgent: client.UserAgent,
		}); err != nil {
			return nil, err
		}
	}

	return &TokenPair{Access: access.Token, Refresh: refresh.Token}, nil
}
