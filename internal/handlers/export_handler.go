package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/services"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
)

type ExportHandler struct {
	manager *state.Manager
	export  *services.ExportService
}

func NewExportHandler(manager *state.Manager, export *services.ExportService) *ExportHandler {
	return &ExportHandler{manager: manager, export: export}
}

// EvidencePackage builds a spreadsheet of every incident report and
// files it as an evidence package document.
// @Summary Export evidence package
// @Tags exports
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.StoredDocument
// @Failure 401 {object} map[string]string "No active session"
// @Failure 402 {object} map[string]string "Insufficient tokens"
// @Failure 500 {object} map[string]string "Export failed"
// @Router /exports/evidence [post]
func (h *ExportHandler) EvidencePackage(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	doc, err := h.export.EvidencePackage(c.Request().Context(), store)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientTokens) {
			return c.JSON(http.StatusPaymentRequired, map[string]string{"error": "Insufficient tokens"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	doc.Data = ""
	return c.JSON(http.StatusCreated, doc)
}
