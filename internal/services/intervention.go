package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spservicesgroupinc-blip/custodyx/internal/collaborator"
	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

var interventionLog = logger.New("INTERVENTION")

var (
	ErrNoIntervention      = errors.New("no intervention in progress")
	ErrAssessmentNotReady  = errors.New("assessment not yet available")
	ErrInterventionPending = errors.New("intervention already in progress")
)

// InterventionStage tracks where a challenged plan sits in the flow.
type InterventionStage string

const (
	StageAwaitingJustification InterventionStage = "AWAITING_JUSTIFICATION"
	StageReadyForAssessment    InterventionStage = "READY_FOR_ASSESSMENT"
)

// minJustificationTurns is how many user replies the guardian requires
// before the assessment unlocks.
const minJustificationTurns = 2

// Guardian is the collaborator surface the intervention flow needs.
type Guardian interface {
	GuardianTurn(ctx context.Context, transcript []collaborator.ChatMessage, profile *models.UserProfile) (string, error)
	ImbalanceReport(ctx context.Context, transcript []collaborator.ChatMessage, profile *models.UserProfile) (*models.StructuredLegalDocument, error)
}

// interventionSession holds one user's challenged plan while the
// dialogue runs. The pending events are not persisted anywhere until
// the session resolves.
type interventionSession struct {
	stage      InterventionStage
	transcript []collaborator.ChatMessage
	pending    []models.SharedEvent
	share      float64
	userTurns  int

	// filed is set once the risk assessment document has been stored,
	// so a retried commit reuses it instead of filing a second copy.
	filed *models.StoredDocument
}

// InterventionService gates imbalanced plan proposals behind a
// justification dialogue and a generated risk assessment.
type InterventionService struct {
	guardian Guardian
	items    *ItemService
	calendar *CalendarService

	mu       sync.Mutex
	sessions map[string]*interventionSession
}

func NewInterventionService(guardian Guardian, items *ItemService, calendar *CalendarService) *InterventionService {
	return &InterventionService{
		guardian: guardian,
		items:    items,
		calendar: calendar,
		sessions: make(map[string]*interventionSession),
	}
}

// Begin opens the dialogue for an imbalanced proposal and returns the
// guardian's opening challenge. The pending batch is held in memory
// only; nothing reaches the backend until the flow resolves.
func (s *InterventionService) Begin(store *state.Store, proposal *PlanProposal) (string, error) {
	userID := store.User().UserID

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[userID]; exists {
		return "", ErrInterventionPending
	}

	opening := fmt.Sprintf(
		"WARNING: The schedule you are attempting to create allocates only %.1f%% of overnights to one parent.\n\n"+
			"Clinical research indicates that parenting time below 35%% significantly damages the parent-child "+
			"attachment bond and can lead to long-term psychological harm.\n\n"+
			"I am the Child Advocacy Guardian. Before you can proceed with this schedule, you must explain: "+
			"Why are you proposing an arrangement that limits the child's access to a parent?",
		proposal.MyShare*100)

	s.sessions[userID] = &interventionSession{
		stage:      StageAwaitingJustification,
		transcript: []collaborator.ChatMessage{{Role: "model", Content: opening}},
		pending:    proposal.Events,
		share:      proposal.MyShare,
	}

	interventionLog.Warn("intervention opened for %s (%.1f%% share, %d events held)",
		userID, proposal.MyShare*100, len(proposal.Events))
	return opening, nil
}

// Respond records one justification turn and returns the guardian's
// reply. Once the user has given enough turns the assessment unlocks.
func (s *InterventionService) Respond(ctx context.Context, store *state.Store, text string) (reply string, stage InterventionStage, err error) {
	userID := store.User().UserID

	s.mu.Lock()
	session, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return "", "", ErrNoIntervention
	}
	session.transcript = append(session.transcript, collaborator.ChatMessage{Role: "user", Content: text})
	session.userTurns++
	transcript := append([]collaborator.ChatMessage(nil), session.transcript...)
	s.mu.Unlock()

	var profile *models.UserProfile
	store.View(func(d *state.Data) {
		if d.Profile != nil {
			copied := *d.Profile
			profile = &copied
		}
	})

	reply, err = s.guardian.GuardianTurn(ctx, transcript, profile)
	if err != nil {
		return "", "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok = s.sessions[userID]
	if !ok {
		return "", "", ErrNoIntervention
	}
	session.transcript = append(session.transcript, collaborator.ChatMessage{Role: "model", Content: reply})
	if session.userTurns >= minJustificationTurns {
		session.stage = StageReadyForAssessment
	}
	return reply, session.stage, nil
}

// GenerateAssessment produces the risk assessment document, stores it
// in the Risk Assessments folder, commits the held plan batch, and
// closes the session. This is the only path that lets an imbalanced
// plan reach the backend.
func (s *InterventionService) GenerateAssessment(ctx context.Context, store *state.Store) (models.StoredDocument, error) {
	userID := store.User().UserID

	s.mu.Lock()
	session, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return models.StoredDocument{}, ErrNoIntervention
	}
	if session.stage != StageReadyForAssessment {
		s.mu.Unlock()
		return models.StoredDocument{}, ErrAssessmentNotReady
	}
	transcript := append([]collaborator.ChatMessage(nil), session.transcript...)
	pending := session.pending
	filed := session.filed
	s.mu.Unlock()

	var doc models.StoredDocument
	if filed != nil {
		// A previous attempt already filed the assessment and only the
		// batch commit failed. Retry the commit with the same document.
		doc = *filed
	} else {
		var profile *models.UserProfile
		store.View(func(d *state.Data) {
			if d.Profile != nil {
				copied := *d.Profile
				profile = &copied
			}
		})

		report, err := s.guardian.ImbalanceReport(ctx, transcript, profile)
		if err != nil {
			return models.StoredDocument{}, err
		}

		raw, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return models.StoredDocument{}, err
		}

		now := time.Now().UTC()
		doc = models.StoredDocument{
			Name:           fmt.Sprintf("Risk Assessment - %s.txt", now.Format("2006-01-02")),
			MimeType:       "text/plain",
			Data:           base64.StdEncoding.EncodeToString(raw),
			CreatedAt:      now.Format(time.RFC3339),
			Folder:         models.FolderRiskAssessments,
			StructuredData: report,
		}
		doc = s.items.AddDocument(ctx, store, doc)

		s.mu.Lock()
		if session, ok := s.sessions[userID]; ok {
			copied := doc
			session.filed = &copied
		}
		s.mu.Unlock()
	}

	if err := s.calendar.SaveBatch(ctx, store, pending); err != nil {
		// The assessment exists but the plan did not land. Keep the
		// session open so the user can retry the commit.
		return doc, err
	}

	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()

	interventionLog.Success("intervention resolved for %s, %d events committed", userID, len(pending))
	return doc, nil
}

// Abandon discards the held batch and the dialogue. The imbalanced
// plan is forgotten as if never proposed.
func (s *InterventionService) Abandon(store *state.Store) error {
	userID := store.User().UserID

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[userID]; !ok {
		return ErrNoIntervention
	}
	delete(s.sessions, userID)
	interventionLog.Info("intervention abandoned for %s, pending batch discarded", userID)
	return nil
}

// Stage reports the current stage, if a session exists.
func (s *InterventionService) Stage(store *state.Store) (InterventionStage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[store.User().UserID]
	if !ok {
		return "", false
	}
	return session.stage, true
}
