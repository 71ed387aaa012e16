package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pwannenmacher/criteria-settings/internal/middleware"
	"github.com/pwannenmacher/criteria-settings/internal/models"
	"github.com/pwannenmacher/criteria-settings/internal/service"
)

// CriteriaVersionHandler handles /criteria/criteria-version/
type CriteriaVersionHandler struct {
	versionService *service.CriteriaVersionService
}

// NewCriteriaVersionHandler creates a new criteria version handler
func NewCriteriaVersionHandler(versionService *service.CriteriaVersionService) *CriteriaVersionHandler {
	return &CriteriaVersionHandler{versionService: versionService}
}

// List lists criteria versions
// @Summary List criteria versions
// @Tags Criteria Version
// @Produce json
// @Security BearerAuth
// @Param role_name query string false "TL or MB"
// @Param state query string false "Unofficial, Official or Outdated"
// @Success 200 {array} models.CriteriaVersion
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string "Object has no value"
// @Router /criteria/criteria-version/ [get]
func (h *CriteriaVersionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := models.CriteriaVersionFilter{
		RoleName: models.CriteriaRole(r.URL.Query().Get("role_name")),
		State:    models.VersionState(r.URL.Query().Get("state")),
	}

	versions, err := h.versionService.List(r.Context(), middleware.ActorFromRequest(r), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, versions)
}

// Get returns one criteria version
// @Summary Get criteria version
// @Tags Criteria Version
// @Produce json
// @Security BearerAuth
// @Param version_name path string true "Version name"
// @Success 200 {object} models.CriteriaVersion
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string "Criteria version can not found"
// @Router /criteria/criteria-version/{version_name}/ [get]
func (h *CriteriaVersionHandler) Get(w http.ResponseWriter, r *http.Request) {
	version, err := h.versionService.Get(r.Context(), middleware.ActorFromRequest(r), r.PathValue("version_name"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, version)
}

// Create creates a criteria version
// @Summary Create criteria version
// @Tags Criteria Version
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateCriteriaVersionInput true "Version"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Router /criteria/criteria-version/ [post]
func (h *CriteriaVersionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCriteriaVersionInput
	if !decodeJSON(w, r, &req) {
		return
	}

	version, err := h.versionService.Create(r.Context(), middleware.ActorFromRequest(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondWithMessage(w, http.StatusCreated, MsgCreateSuccessfully, version)
}

// Update changes exactly one field of a criteria version
// @Summary Update criteria version
// @Description The payload must contain exactly one of version_name, role_name or state
// @Tags Criteria Version
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param version_name path string true "Version name"
// @Param request body map[string]string true "Single field update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /criteria/criteria-version/{version_name}/ [patch]
func (h *CriteriaVersionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var fields map[string]json.RawMessage
	if !decodeJSON(w, r, &fields) {
		return
	}

	version, err := h.versionService.Update(r.Context(), middleware.ActorFromRequest(r), r.PathValue("version_name"), fields)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondWithMessage(w, http.StatusOK, MsgUpdateSuccessfully, version)
}

// Delete deletes a criteria version with its tree, policy and relationships
// @Summary Delete criteria version
// @Tags Criteria Version
// @Produce json
// @Security BearerAuth
// @Param version_name path string true "Version name"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /criteria/criteria-version/{version_name}/ [delete]
func (h *CriteriaVersionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.versionService.Delete(r.Context(), middleware.ActorFromRequest(r), r.PathValue("version_name")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondWithMessage(w, http.StatusOK, MsgDeleteSuccessfully, nil)
}
