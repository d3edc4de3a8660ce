package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/services"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
)

type ReportHandler struct {
	manager *state.Manager
	items   *services.ItemService
}

func NewReportHandler(manager *state.Manager, items *services.ItemService) *ReportHandler {
	return &ReportHandler{manager: manager, items: items}
}

type CreateReportRequest struct {
	Category     models.IncidentCategory `json:"category" validate:"required"`
	Tags         []string                `json:"tags"`
	Content      string                  `json:"content" validate:"required"`
	LegalContext string                  `json:"legalContext,omitempty"`
}

// ListReports returns all incident reports.
// @Summary List incident reports
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Report
// @Failure 401 {object} map[string]string "No active session"
// @Router /reports [get]
func (h *ReportHandler) ListReports(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var reports []models.Report
	store.View(func(d *state.Data) {
		reports = append(reports, d.Reports...)
	})
	if reports == nil {
		reports = []models.Report{}
	}

	return c.JSON(http.StatusOK, reports)
}

// CreateReport records a new incident report.
// @Summary Create incident report
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReportRequest true "Report details"
// @Success 201 {object} models.Report
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "No active session"
// @Router /reports [post]
func (h *ReportHandler) CreateReport(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var req CreateReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	report := h.items.AddReport(c.Request().Context(), store, models.Report{
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		Category:     req.Category,
		Tags:         req.Tags,
		Content:      req.Content,
		LegalContext: req.LegalContext,
	})

	return c.JSON(http.StatusCreated, report)
}

// DeleteReport removes an incident report.
// @Summary Delete incident report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} map[string]string "Report deleted"
// @Failure 401 {object} map[string]string "No active session"
// @Router /reports/{id} [delete]
func (h *ReportHandler) DeleteReport(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	h.items.DeleteReport(c.Request().Context(), store, c.Param("id"))
	return c.JSON(http.StatusOK, map[string]string{"message": "Report deleted"})
}

// ListDocuments returns document metadata. Content stays remote until
// fetched explicitly.
// @Summary List documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.StoredDocument
// @Failure 401 {object} map[string]string "No active session"
// @Router /documents [get]
func (h *ReportHandler) ListDocuments(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var docs []models.StoredDocument
	store.View(func(d *state.Data) {
		for _, doc := range d.Documents {
			// Strip the payload from list responses.
			doc.Data = ""
			docs = append(docs, doc)
		}
	})
	if docs == nil {
		docs = []models.StoredDocument{}
	}

	return c.JSON(http.StatusOK, docs)
}

// UploadDocument stores a new document.
// @Summary Upload document
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.StoredDocument true "Document with base64 data"
// @Success 201 {object} models.StoredDocument
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "No active session"
// @Router /documents [post]
func (h *ReportHandler) UploadDocument(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var req models.StoredDocument
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if req.Folder == "" {
		req.Folder = models.FolderUserUploads
	}
	if req.CreatedAt == "" {
		req.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	doc := h.items.AddDocument(c.Request().Context(), store, req)
	doc.Data = ""
	return c.JSON(http.StatusCreated, doc)
}

// DocumentContent returns the document payload, fetching it from the
// remote store on first access.
// @Summary Get document content
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} map[string]string "Base64 document data"
// @Failure 401 {object} map[string]string "No active session"
// @Failure 404 {object} map[string]string "Document not found"
// @Router /documents/{id}/content [get]
func (h *ReportHandler) DocumentContent(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	data, err := h.items.DocumentContent(c.Request().Context(), store, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"data": data})
}

// DeleteDocument removes a document.
// @Summary Delete document
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} map[string]string "Document deleted"
// @Failure 401 {object} map[string]string "No active session"
// @Router /documents/{id} [delete]
func (h *ReportHandler) DeleteDocument(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	h.items.DeleteDocument(c.Request().Context(), store, c.Param("id"))
	return c.JSON(http.StatusOK, map[string]string{"message": "Document deleted"})
}

// ListTemplates returns the caller's incident templates.
// @Summary List incident templates
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.IncidentTemplate
// @Failure 401 {object} map[string]string "No active session"
// @Router /templates [get]
func (h *ReportHandler) ListTemplates(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var templates []models.IncidentTemplate
	store.View(func(d *state.Data) {
		templates = append(templates, d.Templates...)
	})
	if templates == nil {
		templates = []models.IncidentTemplate{}
	}

	return c.JSON(http.StatusOK, templates)
}

// SaveTemplate creates or updates an incident template.
// @Summary Save incident template
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.IncidentTemplate true "Template details"
// @Success 200 {object} models.IncidentTemplate
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "No active session"
// @Router /templates [post]
func (h *ReportHandler) SaveTemplate(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var req models.IncidentTemplate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	tpl := h.items.SaveTemplate(c.Request().Context(), store, req)
	return c.JSON(http.StatusOK, tpl)
}

// DeleteTemplate removes an incident template.
// @Summary Delete incident template
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 200 {object} map[string]string "Template deleted"
// @Failure 401 {object} map[string]string "No active session"
// @Router /templates/{id} [delete]
func (h *ReportHandler) DeleteTemplate(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	h.items.DeleteTemplate(c.Request().Context(), store, c.Param("id"))
	return c.JSON(http.StatusOK, map[string]string{"message": "Template deleted"})
}
