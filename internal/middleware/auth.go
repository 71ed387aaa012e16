package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pwannenmacher/criteria-settings/internal/auth"
	"github.com/pwannenmacher/criteria-settings/internal/metrics"
	"github.com/pwannenmacher/criteria-settings/internal/models"
)

// MsgAuthenticationRequired is returned for every rejected bearer token
const MsgAuthenticationRequired = "Authentication required"

// Authenticator resolves an access token to its user
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// AuthMiddleware validates bearer tokens
type AuthMiddleware struct {
	authenticator Authenticator
	metrics       *metrics.Metrics
}

// NewAuthMiddleware creates a new auth middleware. m may be nil.
func NewAuthMiddleware(authenticator Authenticator, m *metrics.Metrics) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator, metrics: m}
}

// Authenticate validates the bearer token and adds the user to the context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			m.reject(w, "missing_token")
			return
		}

		user, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				m.reject(w, "expired_token")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrWrongTokenType):
				m.reject(w, "invalid_token")
			default:
				slog.Error("Failed to authenticate request", "error", err, "request_id", GetRequestID(r.Context()))
				respondWithError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, reason string) {
	if m.metrics != nil {
		m.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
	respondWithError(w, http.StatusUnauthorized, MsgAuthenticationRequired)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
