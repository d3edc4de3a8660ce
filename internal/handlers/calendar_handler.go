package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/services"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
)

type CalendarHandler struct {
	manager      *state.Manager
	calendar     *services.CalendarService
	intervention *services.InterventionService
}

func NewCalendarHandler(manager *state.Manager, calendar *services.CalendarService, intervention *services.InterventionService) *CalendarHandler {
	return &CalendarHandler{manager: manager, calendar: calendar, intervention: intervention}
}

type GeneratePlanRequest struct {
	TemplateID string `json:"templateId" validate:"required"`
	StartDate  string `json:"startDate" validate:"required"`
	MyRole     string `json:"myRole" validate:"required,oneof=A B"`
}

type InterventionMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

// ListEvents returns the shared calendar sorted by start time.
// @Summary List shared events
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.SharedEvent
// @Failure 401 {object} map[string]string "No active session"
// @Router /calendar/events [get]
func (h *CalendarHandler) ListEvents(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.calendar.Events(store))
}

// CreateEvent adds a shared calendar event.
// @Summary Create shared event
// @Tags calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.EventInput true "Event details"
// @Success 201 {object} models.SharedEvent
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "No active session"
// @Router /calendar/events [post]
func (h *CalendarHandler) CreateEvent(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var req services.EventInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	event, err := h.calendar.CreateEvent(c.Request().Context(), store, req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, event)
}

// EditEvent updates a shared calendar event and appends to its audit
// trail.
// @Summary Edit shared event
// @Tags calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body services.EventEdit true "Updated event fields"
// @Success 200 {object} models.SharedEvent
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "No active session"
// @Failure 404 {object} map[string]string "Event not found"
// @Router /calendar/events/{id} [put]
func (h *CalendarHandler) EditEvent(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var req services.EventEdit
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	event, err := h.calendar.EditEvent(c.Request().Context(), store, c.Param("id"), req)
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Event not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, event)
}

// RefreshEvents re-pulls the shared calendar from the backend.
// @Summary Refresh shared events
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.SharedEvent
// @Failure 401 {object} map[string]string "No active session"
// @Failure 502 {object} map[string]string "Backend error"
// @Router /calendar/refresh [post]
func (h *CalendarHandler) RefreshEvents(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	events, err := h.calendar.Refresh(c.Request().Context(), store)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, events)
}

// ListPlanTemplates returns the built-in custody rotation templates.
// @Summary List parenting plan templates
// @Tags plan
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ParentingPlanTemplate
// @Router /calendar/plan/templates [get]
func (h *CalendarHandler) ListPlanTemplates(c echo.Context) error {
	return c.JSON(http.StatusOK, h.calendar.PlanTemplates())
}

// GeneratePlan expands a rotation template into a year of parenting
// events. A balanced plan is committed immediately. An imbalanced one
// is held back and opens a justification dialogue instead.
// @Summary Generate parenting plan
// @Tags plan
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GeneratePlanRequest true "Template, start date and role"
// @Success 200 {object} map[string]interface{} "Committed plan or intervention prompt"
// @Failure 400 {object} map[string]string "Validation error or unknown template"
// @Failure 401 {object} map[string]string "No active session"
// @Failure 409 {object} map[string]string "Intervention already in progress"
// @Router /calendar/plan/generate [post]
func (h *CalendarHandler) GeneratePlan(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var req GeneratePlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "startDate must be YYYY-MM-DD"})
	}

	proposal, err := h.calendar.GeneratePlan(store, req.TemplateID, startDate, req.MyRole)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if proposal.Imbalanced {
		warning, err := h.intervention.Begin(store, proposal)
		if err != nil {
			if errors.Is(err, services.ErrInterventionPending) {
				return c.JSON(http.StatusConflict, map[string]string{"error": "Intervention already in progress"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"committed": false,
			"myShare":   proposal.MyShare,
			"message":   warning,
		})
	}

	if err := h.calendar.SaveBatch(c.Request().Context(), store, proposal.Events); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"committed": true,
		"myShare":   proposal.MyShare,
		"events":    proposal.Events,
	})
}

// InterventionStatus reports whether a justification dialogue is open.
// @Summary Get intervention status
// @Tags plan
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /calendar/intervention [get]
func (h *CalendarHandler) InterventionStatus(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	stage, active := h.intervention.Stage(store)
	resp := map[string]interface{}{"active": active}
	if active {
		resp["stage"] = stage
	}
	return c.JSON(http.StatusOK, resp)
}

// InterventionRespond sends one justification turn to the guardian
// dialogue.
// @Summary Respond to intervention
// @Tags plan
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body InterventionMessageRequest true "Justification message"
// @Success 200 {object} map[string]interface{} "Guardian reply and stage"
// @Failure 400 {object} map[string]string "No intervention in progress"
// @Failure 401 {object} map[string]string "No active session"
// @Router /calendar/intervention/respond [post]
func (h *CalendarHandler) InterventionRespond(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	var req InterventionMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	reply, stage, err := h.intervention.Respond(c.Request().Context(), store, req.Message)
	if err != nil {
		if errors.Is(err, services.ErrNoIntervention) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "No intervention in progress"})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"reply": reply,
		"stage": stage,
	})
}

// InterventionAssessment generates the risk assessment document and
// commits the held plan.
// @Summary Generate risk assessment
// @Tags plan
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.StoredDocument
// @Failure 400 {object} map[string]string "No intervention or assessment not ready"
// @Failure 401 {object} map[string]string "No active session"
// @Failure 502 {object} map[string]string "Backend error"
// @Router /calendar/intervention/assessment [post]
func (h *CalendarHandler) InterventionAssessment(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	doc, err := h.intervention.GenerateAssessment(c.Request().Context(), store)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoIntervention):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "No intervention in progress"})
		case errors.Is(err, services.ErrAssessmentNotReady):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Assessment not yet available"})
		default:
			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		}
	}

	doc.Data = ""
	return c.JSON(http.StatusOK, doc)
}

// InterventionAbandon discards the held plan and closes the dialogue.
// @Summary Abandon intervention
// @Tags plan
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "Intervention abandoned"
// @Failure 400 {object} map[string]string "No intervention in progress"
// @Failure 401 {object} map[string]string "No active session"
// @Router /calendar/intervention/abandon [post]
func (h *CalendarHandler) InterventionAbandon(c echo.Context) error {
	store, err := activeStore(c, h.manager)
	if err != nil {
		return err
	}

	if err := h.intervention.Abandon(store); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No intervention in progress"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Intervention abandoned"})
}
