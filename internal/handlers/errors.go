package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pwannenmacher/criteria-settings/internal/middleware"
	"github.com/pwannenmacher/criteria-settings/internal/permission"
	"github.com/pwannenmacher/criteria-settings/internal/service"
)

// writeServiceError maps criteria setting errors to a response. Checks run
// in the order permission, not found, validation, unexpected.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var denied *permission.DeniedError
	var verr *service.ValidationError

	switch {
	case errors.As(err, &denied):
		respondWithError(w, http.StatusForbidden, denied.Message)
	case errors.Is(err, service.ErrNotPermitted):
		respondWithError(w, http.StatusForbidden, service.ErrNotPermitted.Error())
	case errors.Is(err, service.ErrCriteriaVersionNotFound),
		errors.Is(err, service.ErrNoCriteriaVersions),
		errors.Is(err, service.ErrInputTypeNotFound),
		errors.Is(err, service.ErrResultPolicyNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &verr):
		JSONResponse(w, http.StatusBadRequest, map[string]any{"message": verr.Fields})
	case errors.Is(err, service.ErrInvalidStateTransition):
		respondWithError(w, http.StatusBadRequest, service.ErrInvalidStateTransition.Error())
	default:
		slog.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternalServer)
	}
}

// writeAccountError maps account errors to a response. Errors tagged with a
// field carry it as "id" so clients can highlight the offending input.
func writeAccountError(w http.ResponseWriter, r *http.Request, err error) {
	var code int
	switch {
	case errors.Is(err, service.ErrIncorrectCredentials), errors.Is(err, service.ErrNotPartOfTeam):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrUserNotAllowed):
		code = http.StatusForbidden
	case errors.Is(err, service.ErrMustSetPassword):
		JSONResponse(w, http.StatusMovedPermanently, map[string]any{
			"set_password": true,
			"message":      service.ErrMustSetPassword.Error(),
		})
		return
	case errors.Is(err, service.ErrPasswordAlreadyChanged):
		code = http.StatusMovedPermanently
	case errors.Is(err, service.ErrAnswerMismatch):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidRefreshToken):
		code = http.StatusUnauthorized
	default:
		writeServiceError(w, r, err)
		return
	}

	body := map[string]any{}
	var cerr *service.CredentialError
	if errors.As(err, &cerr) {
		body["message"] = cerr.Err.Error()
		if cerr.Field != "" {
			body["id"] = cerr.Field
		}
	} else {
		body["message"] = err.Error()
	}
	JSONResponse(w, code, body)
}
