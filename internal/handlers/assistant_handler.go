package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/collaborator"
	"github.com/spservicesgroupinc-blip/custodyx/internal/services"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
)

type AssistantHandler struct {
	manager  *state.Manager
	analysis *services.AnalysisService
}

func NewAssistantHandler(manager *state.Manager, analysis *services.AnalysisService) *AssistantHandler {
	return &AssistantHandler{manager: manager, analysis: analysis}
}

type AssistantChatRequest struct {
	Messages []collaborator.ChatMessage `json:"messages" validate:"required,min=1,dive"`
}

// Chat runs one legal assistant turn. When the assistant produces a
// document it is filed automatically and returned by reference.
// @Summary Legal assistant turn
// @Tags assistant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AssistantChatRequest true "Conversation transcript"
// @Success 200 {object} models.AssistantResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "No active session"
// @Failure 402 {object} map[string]string "Insufficient tokens"
// @Failure 403 {object} map[string]string "Tier locked"
// @Failure 502 {object} map[string]string "Assistant failed"
// @Router /assistant/chat [post]
func (h *AssistantHandler) Chat(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var req AssistantChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	resp, err := h.analysis.AssistantTurn(c.Request().Context(), store, req.Messages)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTierLocked):
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Upgrade required for the assistant"})
		case errors.Is(err, services.ErrInsufficientTokens):
			return c.JSON(http.StatusPaymentRequired, map[string]string{"error": "Insufficient tokens"})
		default:
			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		}
	}

	return c.JSON(http.StatusOK, resp)
}
