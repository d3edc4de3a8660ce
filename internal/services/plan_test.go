package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spservicesgroupinc-blip/custodyx/internal/config"
	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
)

func testCalendar(backend *fakeBackend) *CalendarService {
	return NewCalendarService(backend, config.CalendarConfig{
		PlanHorizonDays:    365,
		ImbalanceThreshold: 0.35,
	})
}

func TestGeneratePlan(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	t.Run("expands one event per day across the horizon", func(t *testing.T) {
		calendar := testCalendar(newFakeBackend())
		store := newTestStore("u1")

		proposal, err := calendar.GeneratePlan(store, "alt-weeks", start, "A")

		require.NoError(t, err)
		assert.Len(t, proposal.Events, 365)
		for _, e := range proposal.Events {
			assert.Equal(t, models.EventCategoryParenting, e.Category)
			assert.NotEmpty(t, e.AuditLog)
			assert.Equal(t, "Generated via Parenting Plan Template", e.AuditLog[0].Details)
		}
	})

	t.Run("role A claims the zero slots", func(t *testing.T) {
		calendar := testCalendar(newFakeBackend())
		store := newTestStore("u1")

		proposal, err := calendar.GeneratePlan(store, "alt-weeks", start, "A")

		require.NoError(t, err)
		// First 7 days of the cycle belong to Parent A.
		for i := 0; i < 7; i++ {
			assert.Equal(t, "My Parenting Time", proposal.Events[i].Title)
			assert.Equal(t, "u1", proposal.Events[i].AssignedTo)
		}
		for i := 7; i < 14; i++ {
			assert.Equal(t, "Co-Parent Parenting Time", proposal.Events[i].Title)
		}
	})

	t.Run("unlinked account assigns the placeholder co-parent", func(t *testing.T) {
		calendar := testCalendar(newFakeBackend())
		store := newTestStore("u1")

		proposal, err := calendar.GeneratePlan(store, "alt-weeks", start, "A")

		require.NoError(t, err)
		assert.Equal(t, "coparent_placeholder", proposal.Events[7].AssignedTo)
	})

	t.Run("fifty-fifty split passes the balance gate", func(t *testing.T) {
		calendar := testCalendar(newFakeBackend())
		store := newTestStore("u1")

		proposal, err := calendar.GeneratePlan(store, "2-2-3", start, "A")

		require.NoError(t, err)
		assert.False(t, proposal.Imbalanced)
		assert.InDelta(t, 0.5, proposal.MyShare, 0.05)
	})

	t.Run("visitor slot of every-other-weekend is flagged", func(t *testing.T) {
		calendar := testCalendar(newFakeBackend())
		store := newTestStore("u1")

		proposal, err := calendar.GeneratePlan(store, "eow", start, "B")

		require.NoError(t, err)
		assert.True(t, proposal.Imbalanced)
		assert.Less(t, proposal.MyShare, 0.35)
	})

	t.Run("share exactly at the threshold passes", func(t *testing.T) {
		backend := newFakeBackend()
		// 20-day horizon with the 14-day eow pattern gives B exactly 5
		// of 20 nights at 25%, so tune the threshold to match.
		calendar := NewCalendarService(backend, config.CalendarConfig{
			PlanHorizonDays:    20,
			ImbalanceThreshold: 0.25,
		})
		store := newTestStore("u1")

		proposal, err := calendar.GeneratePlan(store, "eow", start, "B")

		require.NoError(t, err)
		assert.Equal(t, 0.25, proposal.MyShare)
		assert.False(t, proposal.Imbalanced)
	})

	t.Run("unknown template", func(t *testing.T) {
		calendar := testCalendar(newFakeBackend())
		store := newTestStore("u1")

		_, err := calendar.GeneratePlan(store, "nope", start, "A")

		assert.ErrorIs(t, err, ErrUnknownTemplate)
	})

	t.Run("proposal is not persisted", func(t *testing.T) {
		backend := newFakeBackend()
		calendar := testCalendar(backend)
		store := newTestStore("u1")

		_, err := calendar.GeneratePlan(store, "2-2-3", start, "A")

		require.NoError(t, err)
		assert.Zero(t, backend.batchCalls)
		store.View(func(d *state.Data) {
			assert.Empty(t, d.Events)
		})
	})
}

func TestPlanTemplates(t *testing.T) {
	calendar := testCalendar(newFakeBackend())

	templates := calendar.PlanTemplates()

	require.Len(t, templates, 4)
	for _, tpl := range templates {
		assert.Equal(t, 14, tpl.CycleLengthDays)
		assert.Len(t, tpl.Pattern, 14)
	}
}
