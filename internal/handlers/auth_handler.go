package handlers

import (
	"net/http"

	"github.com/pwannenmacher/criteria-settings/internal/middleware"
	"github.com/pwannenmacher/criteria-settings/internal/service"
)

// AuthHandler handles account requests under /users/
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginResponse is returned after a successful login or token refresh
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	Message string `json:"message,omitempty"`
}

// RefreshTokenRequest carries the refresh token to rotate
type RefreshTokenRequest struct {
	Refresh string `json:"refresh"`
}

// Login handles user login
// @Summary Login
// @Description Exchange username and password for an access/refresh token pair
// @Tags Users
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Credentials"
// @Success 200 {object} LoginResponse
// @Success 301 {object} map[string]interface{} "Default password must be replaced first"
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "User not allowed to do it"
// @Failure 404 {object} map[string]string "Username or password is incorrect"
// @Router /users/login/ [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.authService.Login(r.Context(), req, middleware.ActorFromRequest(r))
	if err != nil {
		writeAccountError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, LoginResponse{
		Access:  pair.Access,
		Refresh: pair.Refresh,
		Message: MsgLoginSuccessfully,
	})
}

// ChangePassword handles a password change
// @Summary Change password
// @Tags Users
// @Accept json
// @Produce json
// @Param request body service.ChangePasswordInput true "Old and new password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/change-password/ [post]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req service.ChangePasswordInput
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.ChangePassword(r.Context(), req, middleware.ActorFromRequest(r)); err != nil {
		writeAccountError(w, r, err)
		return
	}

	respondWithMessage(w, http.StatusOK, MsgChangePasswordSuccessfully, nil)
}

// SetInitialPassword replaces the system issued password
// @Summary Set initial password
// @Description Replace the default password and store a security question
// @Tags Users
// @Accept json
// @Produce json
// @Param request body service.SetInitialPasswordInput true "New credentials"
// @Success 200 {object} map[string]string
// @Success 301 {object} map[string]string "Password has been changed"
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/set-init-password/ [post]
func (h *AuthHandler) SetInitialPassword(w http.ResponseWriter, r *http.Request) {
	var req service.SetInitialPasswordInput
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.SetInitialPassword(r.Context(), req, middleware.ActorFromRequest(r)); err != nil {
		writeAccountError(w, r, err)
		return
	}

	respondWithMessage(w, http.StatusOK, MsgChangePasswordSuccessfully, nil)
}

// ForgotPassword resets a password with the security answer
// @Summary Forgot password
// @Tags Users
// @Accept json
// @Produce json
// @Param request body service.ForgotPasswordInput true "Security answer and new password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/forgot-password/ [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req service.ForgotPasswordInput
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req, middleware.ActorFromRequest(r)); err != nil {
		writeAccountError(w, r, err)
		return
	}

	respondWithMessage(w, http.StatusOK, MsgResetPasswordSuccessfully, nil)
}

// GetQuestion returns the security question of a user
// @Summary Get security question
// @Tags Users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/get-question/{username}/ [get]
func (h *AuthHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.authService.GetQuestion(r.Context(), r.PathValue("username"))
	if err != nil {
		writeAccountError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, map[string]string{"question": question})
}

// RefreshToken rotates a refresh token
// @Summary Refresh token
// @Tags Users
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} map[string]string
// @Router /users/refresh-token/ [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Refresh == "" {
		JSONResponse(w, http.StatusBadRequest, map[string]any{
			"message": map[string][]string{"refresh": {"This field is required."}},
		})
		return
	}

	pair, err := h.authService.RefreshToken(r.Context(), req.Refresh, middleware.ActorFromRequest(r))
	if err != nil {
		writeAccountError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, LoginResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// Logout revokes every session of the caller
// @Summary Logout
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /users/logout/ [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), middleware.ActorFromRequest(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondWithMessage(w, http.StatusOK, MsgLogoutSuccessfully, nil)
}
