package handlers

import (
	"net/http"

	"github.com/pwannenmacher/criteria-settings/internal/middleware"
	"github.com/pwannenmacher/criteria-settings/internal/service"
)

// CriteriaHandler handles the criteria tree, result policy and variable
// relationships nested under a criteria version
type CriteriaHandler struct {
	criteriaService *service.CriteriaService
}

// NewCriteriaHandler creates a new criteria handler
func NewCriteriaHandler(criteriaService *service.CriteriaService) *CriteriaHandler {
	return &CriteriaHandler{criteriaService: criteriaService}
}

// ListCriteria lists the criteria of a version
// @Summary List criteria
// @Tags Criteria
// @Produce json
// @Security BearerAuth
// @Param version_name path string true "Version name"
// @Success 200 {array} models.Criteria
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /criteria/criteria-version/{version_name}/criteria/ [get]
func (h *CriteriaHandler) ListCriteria(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.criteriaService.ListCriteria(r.Context(), middleware.ActorFromRequest(r), r.PathValue("version_name"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, criteria)
}

// CreateCriteria adds a criterion to a version
// @Summary Create criteria
// @Tags Criteria
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param version_name path string true "Version name"
// @Param request body service.CreateCriteriaInput true "Criterion"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /criteria/criteria-version/{version_name}/criteria/ [post]
func (h *CriteriaHandler) CreateCriteria(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCriteriaInput
	if !decodeJSON(w, r, &req) {
		return
	}

	criteria, err := h.criteriaService.CreateCriteria(r.Context(), middleware.ActorFromRequest(r), r.PathValue("version_name"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondWithMessage(w, http.StatusCreated, MsgCreateSuccessfully, criteria)
}

// GetResultPolicy returns the result policy of a version
// @Summary Get result policy
// @Tags Criteria
// @Produce json
// @Security BearerAuth
// @Param version_name path string true "Version name"
// @Success 200 {object} models.ResultPolicy
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /criteria/criteria-version/{version_name}/result-policy/ [get]
func (h *CriteriaHandler) GetResultPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.criteriaService.GetResultPolicy(r.Context(), middleware.ActorFromRequest(r), r.PathValue("version_name"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, policy)
}

// PutResultPolicy creates or replaces the result policy of a version
// @Summary Put result policy
// @Tags Criteria
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param version_name path string true "Version name"
// @Param request body service.ResultPolicyInput true "Grading documents"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /criteria/criteria-version/{version_name}/result-policy/ [put]
func (h *CriteriaHandler) PutResultPolicy(w http.ResponseWriter, r *http.Request) {
	var req service.ResultPolicyInput
	if !decodeJSON(w, r, &req) {
		return
	}

	policy, err := h.criteriaService.PutResultPolicy(r.Context(), middleware.ActorFromRequest(r), r.PathValue("version_name"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondWithMessage(w, http.StatusOK, MsgUpdateSuccessfully, policy)
}

// ListRelationships lists the variable relationships of a version
// @Summary List variable relationships
// @Tags Criteria
// @Produce json
// @Security BearerAuth
// @Param version_name path string true "Version name"
// @Success 200 {array} models.VariableRelationship
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /criteria/criteria-version/{version_name}/variable-relationship/ [get]
func (h *CriteriaHandler) ListRelationships(w http.ResponseWriter, r *http.Request) {
	relationships, err := h.criteriaService.ListRelationships(r.Context(), middleware.ActorFromRequest(r), r.PathValue("version_name"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, relationships)
}

// CreateRelationship adds a variable relationship to a version
// @Summary Create variable relationship
// @Tags Criteria
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param version_name path string true "Version name"
// @Param request body service.CreateRelationshipInput true "Relationship"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /criteria/criteria-version/{version_name}/variable-relationship/ [post]
func (h *CriteriaHandler) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRelationshipInput
	if !decodeJSON(w, r, &req) {
		return
	}

	relationship, err := h.criteriaService.CreateRelationship(r.Context(), middleware.ActorFromRequest(r), r.PathValue("version_name"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondWithMessage(w, http.StatusCreated, MsgCreateSuccessfully, relationship)
}
