package handlers

import (
	"net/http"

	"github.com/pwannenmacher/criteria-settings/internal/middleware"
	"github.com/pwannenmacher/criteria-settings/internal/service"
)

// Handlers bundles the request handlers of the API
type Handlers struct {
	Auth       *AuthHandler
	Teams      *TeamHandler
	Versions   *CriteriaVersionHandler
	InputTypes *InputTypeHandler
	Criteria   *CriteriaHandler
	Health     *HealthHandler
}

// RegisterRoutes registers every API route on mux
func RegisterRoutes(mux *http.ServeMux, h Handlers, authMw *middleware.AuthMiddleware, auditMw *middleware.AuditMiddleware) {
	protected := func(resource string, fn http.HandlerFunc) http.Handler {
		return authMw.Authenticate(auditMw.Denials(resource)(fn))
	}

	// {$} pins each route to its exact path

	// Accounts
	mux.HandleFunc("POST /users/login/{$}", h.Auth.Login)
	mux.HandleFunc("POST /users/change-password/{$}", h.Auth.ChangePassword)
	mux.HandleFunc("POST /users/set-init-password/{$}", h.Auth.SetInitialPassword)
	mux.HandleFunc("POST /users/forgot-password/{$}", h.Auth.ForgotPassword)
	mux.HandleFunc("GET /users/get-question/{username}/{$}", h.Auth.GetQuestion)
	mux.HandleFunc("POST /users/refresh-token/{$}", h.Auth.RefreshToken)
	mux.Handle("POST /users/logout/{$}", authMw.Authenticate(http.HandlerFunc(h.Auth.Logout)))
	mux.Handle("GET /users/view/{$}", authMw.Authenticate(http.HandlerFunc(h.Teams.ListMyTeams)))

	// Criteria versions
	mux.Handle("GET /criteria/criteria-version/{$}", protected(service.ResourceCriteriaVer, h.Versions.List))
	mux.Handle("POST /criteria/criteria-version/{$}", protected(service.ResourceCriteriaVer, h.Versions.Create))
	mux.Handle("GET /criteria/criteria-version/{version_name}/{$}", protected(service.ResourceCriteriaVer, h.Versions.Get))
	mux.Handle("PATCH /criteria/criteria-version/{version_name}/{$}", protected(service.ResourceCriteriaVer, h.Versions.Update))
	mux.Handle("DELETE /criteria/criteria-version/{version_name}/{$}", protected(service.ResourceCriteriaVer, h.Versions.Delete))

	// Nested under a version
	mux.Handle("GET /criteria/criteria-version/{version_name}/criteria/{$}", protected(service.ResourceCriteria, h.Criteria.ListCriteria))
	mux.Handle("POST /criteria/criteria-version/{version_name}/criteria/{$}", protected(service.ResourceCriteria, h.Criteria.CreateCriteria))
	mux.Handle("GET /criteria/criteria-version/{version_name}/result-policy/{$}", protected(service.ResourceResultPolicy, h.Criteria.GetResultPolicy))
	mux.Handle("PUT /criteria/criteria-version/{version_name}/result-policy/{$}", protected(service.ResourceResultPolicy, h.Criteria.PutResultPolicy))
	mux.Handle("GET /criteria/criteria-version/{version_name}/variable-relationship/{$}", protected(service.ResourceVariableRelate, h.Criteria.ListRelationships))
	mux.Handle("POST /criteria/criteria-version/{version_name}/variable-relationship/{$}", protected(service.ResourceVariableRelate, h.Criteria.CreateRelationship))

	// Input types
	mux.Handle("GET /criteria/input-type/{$}", protected(service.ResourceInputType, h.InputTypes.List))
	mux.Handle("POST /criteria/input-type/{$}", protected(service.ResourceInputType, h.InputTypes.Create))
	mux.Handle("PUT /criteria/input-type/{id}/{$}", protected(service.ResourceInputType, h.InputTypes.Update))

	mux.HandleFunc("GET /health", h.Health.Health)
}
