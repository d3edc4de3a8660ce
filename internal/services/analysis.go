package services

import (
	"context"
	"errors"
	"time"

	"github.com/spservicesgroupinc-blip/custodyx/internal/collaborator"
	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

var analysisLog = logger.New("ANALYSIS")

var (
	ErrNotEnoughMessages = errors.New("not enough messages to analyze")
	ErrTierLocked        = errors.New("feature requires an upgraded tier")
)

// analysisWindow caps how much conversation history goes to the
// collaborator per analysis.
const analysisWindow = 30

// Analyst is the collaborator surface the analysis features use.
type Analyst interface {
	ChatIncidentReport(ctx context.Context, messages []models.Message, selfID string, profile *models.UserProfile) (*models.GeneratedReportData, error)
	MessagingAnalysis(ctx context.Context, messages []models.Message, selfID string, profile *models.UserProfile) (*models.MessagingAnalysisReport, error)
	AssistantTurn(ctx context.Context, transcript []collaborator.ChatMessage, profile *models.UserProfile) (*models.AssistantResponse, error)
}

// AnalysisService runs the billable collaborator features over local
// state: hostility analysis, chat-to-report distillation, and the
// legal assistant.
type AnalysisService struct {
	analyst Analyst
	ledger  *LedgerService
	items   *ItemService
}

func NewAnalysisService(analyst Analyst, ledger *LedgerService, items *ItemService) *AnalysisService {
	return &AnalysisService{analyst: analyst, ledger: ledger, items: items}
}

func (s *AnalysisService) window(store *state.Store) ([]models.Message, *models.UserProfile) {
	var msgs []models.Message
	var profile *models.UserProfile
	store.View(func(d *state.Data) {
		start := 0
		if len(d.Messages) > analysisWindow {
			start = len(d.Messages) - analysisWindow
		}
		msgs = append([]models.Message(nil), d.Messages[start:]...)
		if d.Profile != nil {
			copied := *d.Profile
			profile = &copied
		}
	})
	return msgs, profile
}

// ReportFromChat distills the recent conversation into an incident
// report and stores it through the normal optimistic path. Tokens are
// consumed before the collaborator runs; a malformed result is
// discarded without touching state and without a refund.
func (s *AnalysisService) ReportFromChat(ctx context.Context, store *state.Store) (models.Report, error) {
	msgs, profile := s.window(store)
	if len(msgs) == 0 {
		return models.Report{}, ErrNotEnoughMessages
	}

	if err := s.ledger.Consume(ctx, store, s.ledger.Costs().CostReport); err != nil {
		return models.Report{}, err
	}

	data, err := s.analyst.ChatIncidentReport(ctx, msgs, store.User().UserID, profile)
	if err != nil {
		return models.Report{}, err
	}

	report := models.Report{
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		Category:     data.Category,
		Tags:         data.Tags,
		Content:      data.Content,
		LegalContext: data.LegalContext,
	}
	report = s.items.AddReport(ctx, store, report)
	analysisLog.Success("chat incident report %s created for %s", report.ID, store.User().UserID)
	return report, nil
}

// HostilityAnalysis scores the recent conversation. The structured
// result goes back to the caller; nothing is stored.
func (s *AnalysisService) HostilityAnalysis(ctx context.Context, store *state.Store) (*models.MessagingAnalysisReport, error) {
	msgs, profile := s.window(store)
	if len(msgs) == 0 {
		return nil, ErrNotEnoughMessages
	}

	if err := s.ledger.Consume(ctx, store, s.ledger.Costs().CostAnalysis); err != nil {
		return nil, err
	}

	return s.analyst.MessagingAnalysis(ctx, msgs, store.User().UserID, profile)
}

// AssistantTurn runs one legal-assistant exchange. The feature is
// tier-gated on top of the token cost; free accounts get a distinct
// upgrade signal rather than a token error.
func (s *AnalysisService) AssistantTurn(ctx context.Context, store *state.Store, transcript []collaborator.ChatMessage) (*models.AssistantResponse, error) {
	_, tier, err := s.ledger.Balance(store)
	if err != nil {
		return nil, err
	}
	if tier == models.TierFree {
		return nil, ErrTierLocked
	}

	if err := s.ledger.Consume(ctx, store, s.ledger.Costs().CostAgent); err != nil {
		return nil, err
	}

	var profile *models.UserProfile
	store.View(func(d *state.Data) {
		if d.Profile != nil {
			copied := *d.Profile
			profile = &copied
		}
	})

	resp, err := s.analyst.AssistantTurn(ctx, transcript, profile)
	if err != nil {
		return nil, err
	}

	// Generated documents land in the library automatically.
	if resp.Type == "document" && resp.DocumentText != nil {
		doc := documentFromStructured(resp.Title, resp.DocumentText)
		s.items.AddDocument(ctx, store, doc)
	}
	return resp, nil
}
