package handlers

import (
	"errors"
	"net/http"

	"github.com/pwannenmacher/criteria-settings/internal/middleware"
	"github.com/pwannenmacher/criteria-settings/internal/service"
)

// TeamHandler lists the teams of the caller
type TeamHandler struct {
	teamService *service.TeamService
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamService *service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// ListMyTeams returns the teams the caller is an active employee of
// @Summary List my teams
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Team
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]interface{} "Password has not been changed"
// @Failure 404 {object} map[string]string "User is not part of any team"
// @Router /users/view/ [get]
func (h *TeamHandler) ListMyTeams(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, middleware.MsgAuthenticationRequired)
		return
	}

	teams, err := h.teamService.ListForUser(r.Context(), user)
	if errors.Is(err, service.ErrMustSetPassword) {
		// unlike login, an authenticated view answers 403 here
		JSONResponse(w, http.StatusForbidden, map[string]any{
			"set_password": true,
			"message":      service.ErrMustSetPassword.Error(),
		})
		return
	}
	if err != nil {
		writeAccountError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, teams)
}
