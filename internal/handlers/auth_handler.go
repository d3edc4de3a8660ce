package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/api/middleware"
	"github.com/spservicesgroupinc-blip/custodyx/internal/gateway"
	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/services"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
)

type AuthHandler struct {
	backend   gateway.Backend
	manager   *state.Manager
	items     *services.ItemService
	messaging *services.MessagingService
	sessions  *services.SessionService
}

func NewAuthHandler(
	backend gateway.Backend,
	manager *state.Manager,
	items *services.ItemService,
	messaging *services.MessagingService,
	sessions *services.SessionService,
) *AuthHandler {
	return &AuthHandler{
		backend:   backend,
		manager:   manager,
		items:     items,
		messaging: messaging,
		sessions:  sessions,
	}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

// Login authenticates against the remote backend, hydrates the session
// state and starts message polling for the account.
// @Summary Login user
// @Description Authenticate user, load their data and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{} "JWT token and user identity"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := h.backend.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	return h.openSession(c, *user)
}

// Signup creates a new account on the remote backend and opens a
// session for it.
// @Summary Register a new user
// @Description Create an account, load its initial data and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Registration details"
// @Success 200 {object} map[string]interface{} "JWT token and user identity"
// @Failure 400 {object} map[string]string "Validation error or username exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := h.backend.Signup(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return h.openSession(c, *user)
}

func (h *AuthHandler) openSession(c echo.Context, user models.User) error {
	ctx := c.Request().Context()

	store := h.manager.Open(user)
	if err := h.items.Load(ctx, store); err != nil {
		h.manager.Close(user.UserID)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load account data"})
	}

	token, err := h.sessions.IssueToken(user)
	if err != nil {
		h.manager.Close(user.UserID)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}

	// Session metadata is best effort, the login stands either way.
	_ = h.sessions.Save(ctx, user, c.Request().UserAgent())

	h.messaging.StartPolling(context.Background(), store)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Logout tears down the in-memory session and stops polling.
// @Summary Logout user
// @Description Stop polling, drop session state and delete the session record
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "Logged out"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := middleware.GetUserID(c)

	h.messaging.StopPolling(userID)
	h.manager.Close(userID)
	if err := h.sessions.Delete(c.Request().Context(), userID); err != nil && err != services.ErrSessionNotFound {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete session"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me returns the current user identity and session metadata.
// @Summary Get current session
// @Description Get the authenticated user's identity and device info
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "No active session"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	resp := map[string]interface{}{"user": store.User()}
	if record, err := h.sessions.Get(c.Request().Context(), middleware.GetUserID(c)); err == nil {
		resp["session"] = record
	}

	return c.JSON(http.StatusOK, resp)
}
