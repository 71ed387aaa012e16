package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pwannenmacher/criteria-settings/internal/service"
)

// AuditLogger records audit entries without failing the request
type AuditLogger interface {
	Log(ctx context.Context, actor service.Actor, action, resource, details string)
}

// AuditMiddleware logs security-related outcomes
type AuditMiddleware struct {
	logger AuditLogger
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(logger AuditLogger) *AuditMiddleware {
	return &AuditMiddleware{logger: logger}
}

// Denials records requests answered with 401 or 403. Placed inside
// authentication it attributes them to the caller.
func (m *AuditMiddleware) Denials(resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			if rw.statusCode != http.StatusUnauthorized && rw.statusCode != http.StatusForbidden {
				return
			}
			m.logger.Log(context.WithoutCancel(r.Context()), ActorFromRequest(r), service.AuditAccessDenied, resource,
				fmt.Sprintf("%s %s -> %d", r.Method, r.URL.Path, rw.statusCode))
		})
	}
}

// ActorFromRequest describes the caller of r for services and audit entries
func ActorFromRequest(r *http.Request) service.Actor {
	actor := service.Actor{
		IPAddress: ClientIP(r),
		UserAgent: r.UserAgent(),
	}
	if user, ok := GetUser(r); ok {
		actor.UserID = user.ID
		actor.Username = user.Username
	}
	return actor
}
