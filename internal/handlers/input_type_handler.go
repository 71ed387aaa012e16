package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pwannenmacher/criteria-settings/internal/middleware"
	"github.com/pwannenmacher/criteria-settings/internal/service"
)

// InputTypeHandler handles /criteria/input-type/
type InputTypeHandler struct {
	inputTypeService *service.InputTypeService
}

// NewInputTypeHandler creates a new input type handler
func NewInputTypeHandler(inputTypeService *service.InputTypeService) *InputTypeHandler {
	return &InputTypeHandler{inputTypeService: inputTypeService}
}

// List lists input types
// @Summary List input types
// @Tags Input Type
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.InputType
// @Failure 403 {object} map[string]string
// @Router /criteria/input-type/ [get]
func (h *InputTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.inputTypeService.List(r.Context(), middleware.ActorFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, types)
}

// Create creates an input type
// @Summary Create input type
// @Tags Input Type
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateInputTypeInput true "Input type"
// @Success 201 {object} models.InputType
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Router /criteria/input-type/ [post]
func (h *InputTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateInputTypeInput
	if !decodeJSON(w, r, &req) {
		return
	}

	inputType, err := h.inputTypeService.Create(r.Context(), middleware.ActorFromRequest(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusCreated, inputType)
}

// Update partially updates an input type
// @Summary Update input type
// @Tags Input Type
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Input type ID"
// @Param request body map[string]interface{} true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string "Data not found"
// @Router /criteria/input-type/{id}/ [put]
func (h *InputTypeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 0)
	if err != nil || id == 0 {
		respondWithError(w, http.StatusNotFound, service.ErrInputTypeNotFound.Error())
		return
	}

	var fields map[string]json.RawMessage
	if !decodeJSON(w, r, &fields) {
		return
	}

	inputType, err := h.inputTypeService.Update(r.Context(), middleware.ActorFromRequest(r), uint(id), fields)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondWithMessage(w, http.StatusOK, MsgUpdateSuccessfully, inputType)
}
