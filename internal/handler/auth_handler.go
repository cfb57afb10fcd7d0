package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/sift-profiler/internal/dto"
	middlewarepkg "github.com/octobees/sift-profiler/internal/middleware"
	"github.com/octobees/sift-profiler/internal/service"
)

// AuthHandler exposes authentication and account endpoints.
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

// Register handles POST /auth/register requests.
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return Error(c, http.StatusBadRequest, "username, email and password are required")
	}

	token, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return serviceError(c, err)
	}

	return Success(c, http.StatusCreated, "registration successful", token)
}

// Login handles POST /auth/login requests.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return Error(c, http.StatusBadRequest, "email and password are required")
	}

	token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	return Success(c, http.StatusOK, "login successful", token)
}

// Me handles GET /auth/me requests.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := middlewarepkg.UserIDFromContext(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	user, err := h.userService.GetMe(c.Request().Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return Success(c, http.StatusOK, "", user)
}

// UpdateMe handles PATCH /auth/me requests.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	userID, ok := middlewarepkg.UserIDFromContext(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	var req dto.UpdateMeRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	user, err := h.userService.UpdateMe(c.Request().Context(), userID, req)
	if err != nil {
		return serviceError(c, err)
	}

	return Success(c, http.StatusOK, "profile updated", user)
}
