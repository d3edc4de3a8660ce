package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/services"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
)

type ProfileHandler struct {
	manager *state.Manager
	items   *services.ItemService
	ledger  *services.LedgerService
}

func NewProfileHandler(manager *state.Manager, items *services.ItemService, ledger *services.LedgerService) *ProfileHandler {
	return &ProfileHandler{manager: manager, items: items, ledger: ledger}
}

type UpgradeRequest struct {
	Tier models.SubscriptionTier `json:"tier" validate:"required,oneof=Plus Pro"`
}

// GetProfile returns the caller's case profile.
// @Summary Get profile
// @Description Get the current user's case profile with normalized token balance
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserProfile
// @Failure 401 {object} map[string]string "No active session"
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var profile *models.UserProfile
	store.View(func(d *state.Data) {
		if d.Profile != nil {
			p := *d.Profile
			profile = &p
		}
	})
	if profile == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No profile loaded"})
	}
	h.ledger.NormalizeProfile(profile)

	return c.JSON(http.StatusOK, profile)
}

// SaveProfile replaces the editable profile fields. The token balance,
// tier and link are preserved server side regardless of what the
// client sends.
// @Summary Save profile
// @Description Update case profile details
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UserProfile true "Profile details"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "No active session"
// @Router /profile [put]
func (h *ProfileHandler) SaveProfile(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var req models.UserProfile
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	saved := h.items.SaveProfile(c.Request().Context(), store, req)
	return c.JSON(http.StatusOK, saved)
}

// Balance returns the caller's token balance and tier.
// @Summary Get token balance
// @Description Get the current token balance and subscription tier
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "No active session"
// @Router /ledger/balance [get]
func (h *ProfileHandler) Balance(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	tokens, tier, err := h.ledger.Balance(store)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No profile loaded"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tokens": tokens,
		"tier":   tier,
	})
}

// Upgrade moves the account to a paid tier and credits its token grant.
// @Summary Upgrade subscription tier
// @Description Upgrade to Plus or Pro and credit the tier's token grant
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpgradeRequest true "Target tier"
// @Success 200 {object} map[string]interface{} "New balance and tier"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "No active session"
// @Router /ledger/upgrade [post]
func (h *ProfileHandler) Upgrade(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var req UpgradeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.ledger.Upgrade(c.Request().Context(), store, req.Tier); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	tokens, tier, _ := h.ledger.Balance(store)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tokens": tokens,
		"tier":   tier,
	})
}
