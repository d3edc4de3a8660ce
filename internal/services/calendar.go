package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spservicesgroupinc-blip/custodyx/internal/config"
	"github.com/spservicesgroupinc-blip/custodyx/internal/gateway"
	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

var calendarLog = logger.New("CALENDAR")

var ErrEventNotFound = errors.New("event not found")

// EventInput is what a caller supplies to create or edit an event.
// For parenting-category events the title and assignedTo are derived,
// not taken from input.
type EventInput struct {
	Title     string               `json:"title"`
	Start     string               `json:"start" validate:"required"`
	End       string               `json:"end,omitempty"`
	Category  models.EventCategory `json:"category" validate:"required,oneof=parenting school sports medical other"`
	Notes     string               `json:"notes,omitempty"`
	ChildName string               `json:"childName,omitempty"`
	// MyTime applies to parenting events only: whose slot this is.
	MyTime bool `json:"myTime"`
}

// EventEdit carries only the fields present in an edit payload.
// Pointer fields separate "leave alone" (nil) from "clear" (empty).
type EventEdit struct {
	Title     *string               `json:"title,omitempty"`
	Start     *string               `json:"start,omitempty"`
	End       *string               `json:"end,omitempty"`
	Category  *models.EventCategory `json:"category,omitempty" validate:"omitempty,oneof=parenting school sports medical other"`
	Notes     *string               `json:"notes,omitempty"`
	ChildName *string               `json:"childName,omitempty"`
}

// CalendarService owns the shared schedule: event writes with their
// audit trail, the wholesale fetch, and plan generation.
type CalendarService struct {
	backend gateway.Backend
	cfg     config.CalendarConfig
	now     func() time.Time
}

func NewCalendarService(backend gateway.Backend, cfg config.CalendarConfig) *CalendarService {
	return &CalendarService{backend: backend, cfg: cfg, now: time.Now}
}

func actorName(d *state.Data) string {
	if d.Profile != nil && d.Profile.Name != "" {
		return d.Profile.Name
	}
	return "User"
}

func linkedID(d *state.Data) string {
	if d.Profile != nil && d.Profile.LinkedUserID != "" {
		return d.Profile.LinkedUserID
	}
	if d.User.LinkedUserID != "" {
		return d.User.LinkedUserID
	}
	return "coparent_placeholder"
}

// CreateEvent builds an event with its initial audit entry, applies it
// locally, then persists it as a single-element batch. The local copy
// stands even if the persist fails.
func (s *CalendarService) CreateEvent(ctx context.Context, store *state.Store, input EventInput) (models.SharedEvent, error) {
	now := s.now().UTC().Format(time.RFC3339)

	var event models.SharedEvent
	var userID string

	store.Update(func(d *state.Data) {
		event = models.SharedEvent{
			ID:        models.NewID(models.PrefixEvent),
			Title:     input.Title,
			Start:     input.Start,
			End:       input.End,
			Category:  input.Category,
			Notes:     input.Notes,
			ChildName: input.ChildName,
			CreatorID: d.User.UserID,
		}
		if event.Title == "" {
			event.Title = "Untitled"
		}

		if input.Category == models.EventCategoryParenting {
			if input.MyTime {
				event.Title = "My Parenting Time"
				event.AssignedTo = d.User.UserID
			} else {
				event.Title = "Co-Parent Parenting Time"
				event.AssignedTo = linkedID(d)
			}
		}

		event.AuditLog = []models.AuditLogEntry{{
			Action:    models.AuditActionCreated,
			UserID:    d.User.UserID,
			UserName:  actorName(d),
			Timestamp: now,
			Details:   fmt.Sprintf("Created category: %s", input.Category),
		}}

		d.Events = append(d.Events, event)
		userID = d.User.UserID
	})

	if err := s.backend.SaveSharedEventsBatch(ctx, userID, []models.SharedEvent{event}); err != nil {
		calendarLog.Warn("event %s applied locally but not persisted: %v", event.ID, err)
		return event, err
	}
	return event, nil
}

// EditEvent mutates an event's fields and appends an edit entry to its
// audit log. The id never changes and the log never shrinks.
func (s *CalendarService) EditEvent(ctx context.Context, store *state.Store, eventID string, input EventEdit) (models.SharedEvent, error) {
	now := s.now().UTC().Format(time.RFC3339)

	var event models.SharedEvent
	var userID string
	found := false

	store.Update(func(d *state.Data) {
		userID = d.User.UserID
		for i := range d.Events {
			if d.Events[i].ID != eventID {
				continue
			}
			e := &d.Events[i]
			if input.Title != nil {
				e.Title = *input.Title
			}
			if input.Start != nil {
				e.Start = *input.Start
			}
			if input.End != nil {
				e.End = *input.End
			}
			if input.Category != nil {
				e.Category = *input.Category
			}
			if input.Notes != nil {
				e.Notes = *input.Notes
			}
			if input.ChildName != nil {
				e.ChildName = *input.ChildName
			}
			e.AuditLog = append(e.AuditLog, models.AuditLogEntry{
				Action:    models.AuditActionEdited,
				UserID:    d.User.UserID,
				UserName:  actorName(d),
				Timestamp: now,
				Details:   fmt.Sprintf("Updated details: %s", e.Title),
			})
			event = *e
			found = true
			return
		}
	})

	if !found {
		return models.SharedEvent{}, ErrEventNotFound
	}

	if err := s.backend.SaveSharedEventsBatch(ctx, userID, []models.SharedEvent{event}); err != nil {
		calendarLog.Warn("edit of %s applied locally but not persisted: %v", eventID, err)
		return event, err
	}
	return event, nil
}

// Refresh replaces the local schedule with the backend's copy. The
// fetched list is authoritative: both linked accounts write through
// the same store, so whatever it returns is the shared truth.
func (s *CalendarService) Refresh(ctx context.Context, store *state.Store) ([]models.SharedEvent, error) {
	userID := store.User().UserID

	events, err := s.backend.GetSharedEvents(ctx, userID)
	if err != nil {
		return nil, err
	}

	store.Update(func(d *state.Data) {
		d.Events = events
	})
	return events, nil
}

// Events returns the local schedule sorted by start time.
func (s *CalendarService) Events(store *state.Store) []models.SharedEvent {
	var events []models.SharedEvent
	store.View(func(d *state.Data) {
		events = append([]models.SharedEvent(nil), d.Events...)
	})
	state.SortBy(events, func(a, b models.SharedEvent) bool {
		return a.Start < b.Start
	})
	return events
}

// SaveBatch persists a generated plan and appends it to the local
// schedule. One call covers the whole horizon.
func (s *CalendarService) SaveBatch(ctx context.Context, store *state.Store, events []models.SharedEvent) error {
	userID := store.User().UserID

	if err := s.backend.SaveSharedEventsBatch(ctx, userID, events); err != nil {
		return calendarLog.Error("failed to save %d plan events: %v", len(events), err)
	}

	store.Update(func(d *state.Data) {
		d.Events = append(d.Events, events...)
	})
	calendarLog.Success("saved %d plan events for %s", len(events), userID)
	return nil
}
