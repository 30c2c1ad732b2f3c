package handler

import (
	"errors"
	"net/http"

	"github.com/authlink/backend/internal/model"
	"github.com/authlink/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register godoc
// @Summary Register a new user
// @Description Creates the identity-provider account and the local user record, then returns a token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Email, password and optional nickname"
// @Success 200 {object} model.AuthResponse
// @Failure 400 {object} model.ValidationErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !bindJSON(c, &req) || !validOrReject(c, req.Validate()) {
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), req, requestMetadata(c))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Email and password"
// @Success 200 {object} model.AuthResponse
// @Failure 400 {object} model.ValidationErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bindJSON(c, &req) || !validOrReject(c, req.Validate()) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req, requestMetadata(c))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GoogleAuth godoc
// @Summary Sign in with Google
// @Description Accepts a Google ID token (credential) or an authorization code.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.GoogleAuthRequest true "Google credential or authorization code"
// @Success 200 {object} model.AuthResponse
// @Failure 400 {object} model.ValidationErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/google [post]
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	var req model.GoogleAuthRequest
	if !bindJSON(c, &req) || !validOrReject(c, req.Validate()) {
		return
	}

	resp, err := h.svc.GoogleSignIn(c.Request.Context(), req, requestMetadata(c))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RefreshRequest true "Refresh token"
// @Success 200 {object} model.TokenPairResponse
// @Failure 400 {object} model.ValidationErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if !bindJSON(c, &req) || !validOrReject(c, req.Validate()) {
		return
	}

	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken, requestMetadata(c))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Logout
// @Description Revokes the refresh token when valid. Always answers success.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LogoutRequest true "Refresh token"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.ValidationErrorResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req model.LogoutRequest
	if !bindJSON(c, &req) || !validOrReject(c, req.Validate()) {
		return
	}

	c.JSON(http.StatusOK, h.svc.Logout(c.Request.Context(), req.RefreshToken))
}

// SendPasswordReset godoc
// @Summary Request a password reset email
// @Description Always answers success-shaped regardless of account existence.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.SendPasswordResetRequest true "Account email"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.ValidationErrorResponse
// @Router /api/v1/auth/send-password-reset [post]
func (h *AuthHandler) SendPasswordReset(c *gin.Context) {
	var req model.SendPasswordResetRequest
	if !bindJSON(c, &req) || !validOrReject(c, req.Validate()) {
		return
	}

	c.JSON(http.StatusOK, h.svc.SendPasswordReset(c.Request.Context(), req.Email))
}

// ChangePassword godoc
// @Summary Change the current user's password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req model.ChangePasswordRequest
	if !bindJSON(c, &req) || !validOrReject(c, req.Validate()) {
		return
	}

	resp, err := h.svc.ChangePassword(c.Request.Context(), user.ID, req)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me godoc
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	authUser := GetAuthUser(c)
	if authUser == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), authUser.ID)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewUserResponse(user))
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return false
	}
	return true
}

func validOrReject(c *gin.Context, fields []model.FieldError) bool {
	if len(fields) > 0 {
		c.JSON(http.StatusBadRequest, model.ValidationErrorResponse{
			Error:  "validation failed",
			Fields: fields,
		})
		return false
	}
	return true
}

func requestMetadata(c *gin.Context) *model.TokenMetadata {
	return &model.TokenMetadata{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
		DeviceID:  c.GetHeader("X-Device-ID"),
	}
}

func writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, model.ErrorResponse{Error: "user already exists"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "user not found"})
	case errors.Is(err, service.ErrBadRequest):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrTokenRefreshFailed),
		errors.Is(err, service.ErrExternalAuthFailed),
		errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "server error"})
	}
}
