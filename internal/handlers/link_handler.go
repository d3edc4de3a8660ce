package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/services"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
)

type LinkHandler struct {
	manager *state.Manager
	link    *services.LinkService
}

func NewLinkHandler(manager *state.Manager, link *services.LinkService) *LinkHandler {
	return &LinkHandler{manager: manager, link: link}
}

type LinkRequest struct {
	Username string `json:"username" validate:"required"`
}

type InviteResponseRequest struct {
	Accept bool `json:"accept"`
}

// RequestLink asks to link accounts with another user by username.
// @Summary Request account link
// @Tags link
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LinkRequest true "Target username"
// @Success 200 {object} gateway.LinkResult
// @Failure 400 {object} map[string]string "Validation error or link failed"
// @Failure 401 {object} map[string]string "No active session"
// @Router /link [post]
func (h *LinkHandler) RequestLink(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var req LinkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := h.link.Request(c.Request().Context(), store, req.Username)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

// ListInvites returns pending link invites, refreshed from the
// backend.
// @Summary List pending invites
// @Tags link
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.PendingInvite
// @Failure 401 {object} map[string]string "No active session"
// @Failure 502 {object} map[string]string "Backend error"
// @Router /link/invites [get]
func (h *LinkHandler) ListInvites(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	invites, err := h.link.RefreshInvites(c.Request().Context(), store)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	if invites == nil {
		invites = []models.PendingInvite{}
	}

	return c.JSON(http.StatusOK, invites)
}

// RespondToInvite accepts or rejects a pending link invite.
// @Summary Respond to invite
// @Tags link
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invite ID"
// @Param request body InviteResponseRequest true "Accept flag"
// @Success 200 {object} map[string]string "Invite response result"
// @Failure 400 {object} map[string]string "Respond failed"
// @Failure 401 {object} map[string]string "No active session"
// @Router /link/invites/{id}/respond [post]
func (h *LinkHandler) RespondToInvite(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var req InviteResponseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	status, err := h.link.Respond(c.Request().Context(), store, c.Param("id"), req.Accept)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": status})
}
