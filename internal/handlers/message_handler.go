package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/api/middleware"
	"github.com/spservicesgroupinc-blip/custodyx/internal/services"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
)

type MessageHandler struct {
	manager   *state.Manager
	messaging *services.MessagingService
	analysis  *services.AnalysisService
}

func NewMessageHandler(manager *state.Manager, messaging *services.MessagingService, analysis *services.AnalysisService) *MessageHandler {
	return &MessageHandler{manager: manager, messaging: messaging, analysis: analysis}
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type AutoReplyRequest struct {
	Enabled bool `json:"enabled"`
}

// ListMessages returns the conversation in timestamp order.
// @Summary List messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Message
// @Failure 401 {object} map[string]string "No active session"
// @Router /messages [get]
func (h *MessageHandler) ListMessages(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.messaging.Messages(store))
}

// SendMessage sends a message to the linked account. The message shows
// up locally right away and is replaced by the confirmed copy once the
// backend accepts it.
// @Summary Send message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SendMessageRequest true "Message content"
// @Success 201 {object} models.Message
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "No active session"
// @Failure 502 {object} map[string]string "Send failed"
// @Router /messages [post]
func (h *MessageHandler) SendMessage(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	msg, err := h.messaging.Send(c.Request().Context(), store, req.Content)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Failed to send message"})
	}

	return c.JSON(http.StatusCreated, msg)
}

// SetAutoReply toggles assisted replies to incoming messages.
// @Summary Toggle auto-reply
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AutoReplyRequest true "Auto-reply flag"
// @Success 200 {object} map[string]bool
// @Router /messages/autoreply [put]
func (h *MessageHandler) SetAutoReply(c echo.Context) error {
	var req AutoReplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	h.messaging.SetAutoReply(middleware.GetUserID(c), req.Enabled)
	return c.JSON(http.StatusOK, map[string]bool{"enabled": req.Enabled})
}

// AnalyzeMessages runs a hostility analysis over the recent
// conversation window.
// @Summary Analyze conversation hostility
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MessagingAnalysisReport
// @Failure 400 {object} map[string]string "Not enough messages"
// @Failure 401 {object} map[string]string "No active session"
// @Failure 402 {object} map[string]string "Insufficient tokens"
// @Failure 502 {object} map[string]string "Analysis failed"
// @Router /messages/analysis [post]
func (h *MessageHandler) AnalyzeMessages(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	report, err := h.analysis.HostilityAnalysis(c.Request().Context(), store)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotEnoughMessages):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Not enough messages to analyze"})
		case errors.Is(err, services.ErrInsufficientTokens):
			return c.JSON(http.StatusPaymentRequired, map[string]string{"error": "Insufficient tokens"})
		default:
			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		}
	}

	return c.JSON(http.StatusOK, report)
}

// ReportFromChat drafts an incident report from the recent
// conversation and files it.
// @Summary Generate incident report from chat
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Report
// @Failure 400 {object} map[string]string "Not enough messages"
// @Failure 401 {object} map[string]string "No active session"
// @Failure 402 {object} map[string]string "Insufficient tokens"
// @Failure 502 {object} map[string]string "Generation failed"
// @Router /messages/report [post]
func (h *MessageHandler) ReportFromChat(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	report, err := h.analysis.ReportFromChat(c.Request().Context(), store)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotEnoughMessages):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Not enough messages to analyze"})
		case errors.Is(err, services.ErrInsufficientTokens):
			return c.JSON(http.StatusPaymentRequired, map[string]string{"error": "Insufficient tokens"})
		default:
			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		}
	}

	return c.JSON(http.StatusCreated, report)
}
