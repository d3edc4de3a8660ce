package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
)

func strPtr(s string) *string { return &s }

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps the creation audit entry", func(t *testing.T) {
		backend := newFakeBackend()
		calendar := testCalendar(backend)
		store := newTestStore("u1")

		event, err := calendar.CreateEvent(ctx, store, EventInput{
			Title:    "Doctor visit",
			Start:    "2026-09-01T09:00:00Z",
			Category: models.EventCategoryMedical,
		})

		require.NoError(t, err)
		require.Len(t, event.AuditLog, 1)
		assert.Equal(t, models.AuditActionCreated, event.AuditLog[0].Action)
		assert.Equal(t, "Created category: medical", event.AuditLog[0].Details)
		assert.Equal(t, "Test Parent", event.AuditLog[0].UserName)
		assert.Equal(t, 1, backend.batchCalls)
	})

	t.Run("parenting events derive title and assignee", func(t *testing.T) {
		calendar := testCalendar(newFakeBackend())
		store := newTestStore("u1")

		mine, err := calendar.CreateEvent(ctx, store, EventInput{
			Title:    "ignored",
			Start:    "2026-09-01T00:00:00Z",
			Category: models.EventCategoryParenting,
			MyTime:   true,
		})
		require.NoError(t, err)
		assert.Equal(t, "My Parenting Time", mine.Title)
		assert.Equal(t, "u1", mine.AssignedTo)

		theirs, err := calendar.CreateEvent(ctx, store, EventInput{
			Start:    "2026-09-02T00:00:00Z",
			Category: models.EventCategoryParenting,
		})
		require.NoError(t, err)
		assert.Equal(t, "Co-Parent Parenting Time", theirs.Title)
		assert.Equal(t, "coparent_placeholder", theirs.AssignedTo)
	})

	t.Run("local copy stands when the persist fails", func(t *testing.T) {
		backend := newFakeBackend()
		backend.batchFail = true
		calendar := testCalendar(backend)
		store := newTestStore("u1")

		event, err := calendar.CreateEvent(ctx, store, EventInput{
			Title:    "School play",
			Start:    "2026-09-01T18:00:00Z",
			Category: models.EventCategorySchool,
		})

		assert.Error(t, err)
		store.View(func(d *state.Data) {
			require.Len(t, d.Events, 1)
			assert.Equal(t, event.ID, d.Events[0].ID)
		})
	})
}

func TestEditEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("appends to the audit log and keeps the id", func(t *testing.T) {
		calendar := testCalendar(newFakeBackend())
		store := newTestStore("u1")

		created, err := calendar.CreateEvent(ctx, store, EventInput{
			Title:    "Soccer practice",
			Start:    "2026-09-01T16:00:00Z",
			Category: models.EventCategorySports,
		})
		require.NoError(t, err)

		edited, err := calendar.EditEvent(ctx, store, created.ID, EventEdit{
			Title: strPtr("Soccer game"),
			Notes: strPtr("Bring cleats"),
		})

		require.NoError(t, err)
		assert.Equal(t, created.ID, edited.ID)
		require.Len(t, edited.AuditLog, 2)
		assert.Equal(t, models.AuditActionCreated, edited.AuditLog[0].Action)
		assert.Equal(t, models.AuditActionEdited, edited.AuditLog[1].Action)
		assert.Equal(t, "Updated details: Soccer game", edited.AuditLog[1].Details)
	})

	t.Run("absent fields are left alone", func(t *testing.T) {
		calendar := testCalendar(newFakeBackend())
		store := newTestStore("u1")

		created, err := calendar.CreateEvent(ctx, store, EventInput{
			Title:    "Pediatrician",
			Start:    "2026-09-03T10:00:00Z",
			Notes:    "Annual checkup",
			Category: models.EventCategoryMedical,
		})
		require.NoError(t, err)

		edited, err := calendar.EditEvent(ctx, store, created.ID, EventEdit{
			Start: strPtr("2026-09-04T10:00:00Z"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Pediatrician", edited.Title)
		assert.Equal(t, "Annual checkup", edited.Notes)
		assert.Equal(t, "2026-09-04T10:00:00Z", edited.Start)
	})

	t.Run("a present empty value clears the field", func(t *testing.T) {
		calendar := testCalendar(newFakeBackend())
		store := newTestStore("u1")

		created, err := calendar.CreateEvent(ctx, store, EventInput{
			Title:     "Pediatrician",
			Start:     "2026-09-03T10:00:00Z",
			End:       "2026-09-03T11:00:00Z",
			Notes:     "Annual checkup",
			ChildName: "Avery",
			Category:  models.EventCategoryMedical,
		})
		require.NoError(t, err)

		edited, err := calendar.EditEvent(ctx, store, created.ID, EventEdit{
			End:       strPtr(""),
			Notes:     strPtr(""),
			ChildName: strPtr(""),
		})

		require.NoError(t, err)
		assert.Empty(t, edited.End)
		assert.Empty(t, edited.Notes)
		assert.Empty(t, edited.ChildName)
		assert.Equal(t, "Pediatrician", edited.Title)
	})

	t.Run("unknown event", func(t *testing.T) {
		calendar := testCalendar(newFakeBackend())
		store := newTestStore("u1")

		_, err := calendar.EditEvent(ctx, store, "evt_missing", EventEdit{Title: strPtr("x")})

		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("backend copy replaces the local schedule", func(t *testing.T) {
		backend := newFakeBackend()
		backend.events = []models.SharedEvent{{ID: "evt_remote", Title: "Remote", Start: "2026-09-01T00:00:00Z"}}
		calendar := testCalendar(backend)
		store := newTestStore("u1")
		store.Update(func(d *state.Data) {
			d.Events = []models.SharedEvent{{ID: "evt_stale", Title: "Stale", Start: "2026-08-01T00:00:00Z"}}
		})

		events, err := calendar.Refresh(ctx, store)

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "evt_remote", events[0].ID)
		store.View(func(d *state.Data) {
			require.Len(t, d.Events, 1)
			assert.Equal(t, "evt_remote", d.Events[0].ID)
		})
	})
}

func TestEventsSorted(t *testing.T) {
	calendar := testCalendar(newFakeBackend())
	store := newTestStore("u1")
	store.Update(func(d *state.Data) {
		d.Events = []models.SharedEvent{
			{ID: "b", Start: "2026-09-02T00:00:00Z"},
			{ID: "a", Start: "2026-09-01T00:00:00Z"},
		}
	})

	events := calendar.Events(store)

	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].ID)
	assert.Equal(t, "b", events[1].ID)
}
