package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
)

var ErrUnknownTemplate = errors.New("unknown plan template")

// planTemplates are the built-in custody rotations. Each pattern is a
// 14-day cycle of slots: 0 for Parent A, 1 for Parent B.
var planTemplates = []models.ParentingPlanTemplate{
	{
		ID:              "2-2-3",
		Name:            "2-2-3 Schedule (50/50)",
		Description:     "Equal time. Child spends 2 nights with A, 2 with B, then 3 with A. Swaps next week.",
		CycleLengthDays: 14,
		Pattern:         []int{0, 0, 1, 1, 0, 0, 0, 1, 1, 0, 0, 1, 1, 1},
	},
	{
		ID:              "2-2-5-5",
		Name:            "2-2-5-5 Schedule (50/50)",
		Description:     "Consistent weeknights. A has Mon/Tue, B has Wed/Thu. Weekends alternate.",
		CycleLengthDays: 14,
		Pattern:         []int{0, 0, 1, 1, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1},
	},
	{
		ID:              "alt-weeks",
		Name:            "Alternating Weeks (50/50)",
		Description:     "7 days with Parent A, then 7 days with Parent B.",
		CycleLengthDays: 14,
		Pattern:         []int{0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1},
	},
	{
		ID:              "eow",
		Name:            "Every Other Weekend (80/20)",
		Description:     `Standard "Visitor" schedule. Parent B has alternating weekends (Fri-Sun).`,
		CycleLengthDays: 14,
		Pattern:         []int{0, 0, 0, 0, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0},
	},
}

// PlanTemplates lists the built-in rotations.
func (s *CalendarService) PlanTemplates() []models.ParentingPlanTemplate {
	out := make([]models.ParentingPlanTemplate, len(planTemplates))
	copy(out, planTemplates)
	return out
}

// PlanProposal is a generated schedule awaiting commit. MyShare is the
// caller's fraction of overnights across the horizon; when it falls
// below the imbalance threshold the proposal must pass through the
// intervention flow before it can be saved.
type PlanProposal struct {
	Events     []models.SharedEvent `json:"events"`
	MyShare    float64              `json:"myShare"`
	Imbalanced bool                 `json:"imbalanced"`
}

// GeneratePlan expands a rotation template into one event per day
// across the horizon. myRole picks which pattern slot is the caller:
// "A" claims the 0 slots, "B" the 1 slots. The proposal is not
// persisted; callers commit it with SaveBatch or hand it to the
// intervention flow.
func (s *CalendarService) GeneratePlan(store *state.Store, templateID string, startDate time.Time, myRole string) (*PlanProposal, error) {
	var template *models.ParentingPlanTemplate
	for i := range planTemplates {
		if planTemplates[i].ID == templateID {
			template = &planTemplates[i]
			break
		}
	}
	if template == nil {
		return nil, ErrUnknownTemplate
	}

	targetSlot := 0
	if myRole == "B" {
		targetSlot = 1
	}

	now := s.now().UTC().Format(time.RFC3339)
	horizon := s.cfg.PlanHorizonDays

	var events []models.SharedEvent
	myOvernights := 0

	store.View(func(d *state.Data) {
		events = make([]models.SharedEvent, 0, horizon)
		for i := 0; i < horizon; i++ {
			day := startDate.AddDate(0, 0, i)
			slot := template.Pattern[i%len(template.Pattern)]
			mine := slot == targetSlot

			title := "Co-Parent Parenting Time"
			assignedTo := linkedID(d)
			if mine {
				myOvernights++
				title = "My Parenting Time"
				assignedTo = d.User.UserID
			}

			events = append(events, models.SharedEvent{
				ID:         fmt.Sprintf("%s_%s", models.NewID(models.PrefixPlan), template.ID),
				Title:      title,
				Start:      day.UTC().Format(time.RFC3339),
				Category:   models.EventCategoryParenting,
				CreatorID:  d.User.UserID,
				AssignedTo: assignedTo,
				AuditLog: []models.AuditLogEntry{{
					Action:    models.AuditActionCreated,
					UserID:    d.User.UserID,
					UserName:  actorName(d),
					Timestamp: now,
					Details:   "Generated via Parenting Plan Template",
				}},
			})
		}
	})

	share := float64(myOvernights) / float64(horizon)
	proposal := &PlanProposal{
		Events:  events,
		MyShare: share,
		// Strictly below threshold. A share exactly at it passes.
		Imbalanced: share < s.cfg.ImbalanceThreshold,
	}

	if proposal.Imbalanced {
		calendarLog.Warn("proposed plan gives caller %.1f%% of overnights, below the %.0f%% threshold",
			share*100, s.cfg.ImbalanceThreshold*100)
	}
	return proposal, nil
}
