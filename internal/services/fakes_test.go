package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/spservicesgroupinc-blip/custodyx/internal/collaborator"
	"github.com/spservicesgroupinc-blip/custodyx/internal/config"
	"github.com/spservicesgroupinc-blip/custodyx/internal/gateway"
	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
)

// fakeBackend is an in-memory gateway.Backend. Per-call failure hooks
// let tests exercise the optimistic paths.
type fakeBackend struct {
	mu sync.Mutex

	messages   []models.Message
	events     []models.SharedEvent
	sendFail   bool
	batchFail  bool
	sendCalls  int
	batchCalls int
	nextMsgID  int
	offline    bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{}
}

func (f *fakeBackend) Login(ctx context.Context, username, password string) (*models.User, error) {
	return &models.User{UserID: "u1", Username: username}, nil
}

func (f *fakeBackend) Signup(ctx context.Context, username, password string) (*models.User, error) {
	return &models.User{UserID: "u1", Username: username}, nil
}

func (f *fakeBackend) Sync(ctx context.Context, userID string) (*models.SyncData, error) {
	return &models.SyncData{}, nil
}

func (f *fakeBackend) GetDocumentContent(ctx context.Context, userID, docID string) (string, error) {
	return "", nil
}

func (f *fakeBackend) SaveItems(ctx context.Context, userID string, kind models.ItemKind, items interface{}) error {
	return nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, userID, content string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendFail {
		return nil, fmt.Errorf("send failed")
	}
	f.nextMsgID++
	msg := models.Message{
		ID:        fmt.Sprintf("msg_%d", f.nextMsgID),
		SenderID:  userID,
		Content:   content,
		Timestamp: fmt.Sprintf("2026-08-31T12:00:%02dZ", f.nextMsgID),
	}
	f.messages = append(f.messages, msg)
	return &msg, nil
}

func (f *fakeBackend) GetMessages(ctx context.Context, userID, after string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Message(nil), f.messages...), nil
}

func (f *fakeBackend) LinkByUsername(ctx context.Context, userID, targetUsername string) (*gateway.LinkResult, error) {
	return &gateway.LinkResult{Status: "linked", LinkedUserID: "u2"}, nil
}

func (f *fakeBackend) GetPendingInvites(ctx context.Context, userID string) ([]models.PendingInvite, error) {
	return nil, nil
}

func (f *fakeBackend) RespondToInvite(ctx context.Context, userID, inviteID string, accept bool) (string, error) {
	return "ACCEPTED", nil
}

func (f *fakeBackend) SaveSharedEventsBatch(ctx context.Context, userID string, events []models.SharedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	if f.batchFail {
		return fmt.Errorf("batch save failed")
	}
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeBackend) GetSharedEvents(ctx context.Context, userID string) ([]models.SharedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SharedEvent(nil), f.events...), nil
}

func (f *fakeBackend) Offline() bool {
	return f.offline
}

// fakePersister records every queued write.
type fakePersister struct {
	mu    sync.Mutex
	calls []persistCall
}

type persistCall struct {
	userID string
	kind   models.ItemKind
	items  interface{}
}

func (f *fakePersister) PersistItems(ctx context.Context, userID string, kind models.ItemKind, items interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, persistCall{userID: userID, kind: kind, items: items})
}

func (f *fakePersister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeReplier returns a canned auto-reply.
type fakeReplier struct {
	mu    sync.Mutex
	calls int
	reply string
	err   error
}

func (f *fakeReplier) AutoReply(ctx context.Context, incoming string, profile *models.UserProfile) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.reply == "" {
		return "auto reply", nil
	}
	return f.reply, nil
}

func (f *fakeReplier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeGuardian scripts the intervention dialogue.
type fakeGuardian struct {
	turnReply string
	turnErr   error
	report    *models.StructuredLegalDocument
	reportErr error
}

func (f *fakeGuardian) GuardianTurn(ctx context.Context, transcript []collaborator.ChatMessage, profile *models.UserProfile) (string, error) {
	if f.turnErr != nil {
		return "", f.turnErr
	}
	if f.turnReply == "" {
		return "explain further", nil
	}
	return f.turnReply, nil
}

func (f *fakeGuardian) ImbalanceReport(ctx context.Context, transcript []collaborator.ChatMessage, profile *models.UserProfile) (*models.StructuredLegalDocument, error) {
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	if f.report != nil {
		return f.report, nil
	}
	doc := &models.StructuredLegalDocument{
		Title:    "Risk Assessment",
		Preamble: "Assessment of a proposed custody imbalance.",
	}
	doc.Sections = append(doc.Sections, struct {
		Heading string `json:"heading"`
		Body    string `json:"body"`
	}{Heading: "Summary", Body: "The proposed schedule falls below the recommended threshold."})
	return doc, nil
}

// fakeAnalyst scripts the billable analysis features.
type fakeAnalyst struct {
	mu          sync.Mutex
	reportCalls int
	turnCalls   int

	report      *models.GeneratedReportData
	reportErr   error
	analysis    *models.MessagingAnalysisReport
	analysisErr error
	turn        *models.AssistantResponse
	turnErr     error
}

func (f *fakeAnalyst) ChatIncidentReport(ctx context.Context, messages []models.Message, selfID string, profile *models.UserProfile) (*models.GeneratedReportData, error) {
	f.mu.Lock()
	f.reportCalls++
	f.mu.Unlock()
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	if f.report != nil {
		return f.report, nil
	}
	return &models.GeneratedReportData{
		Content:  "summary of the exchange",
		Category: models.CategoryCommunicationIssue,
		Tags:     []string{"tone"},
	}, nil
}

func (f *fakeAnalyst) MessagingAnalysis(ctx context.Context, messages []models.Message, selfID string, profile *models.UserProfile) (*models.MessagingAnalysisReport, error) {
	if f.analysisErr != nil {
		return nil, f.analysisErr
	}
	if f.analysis != nil {
		return f.analysis, nil
	}
	return &models.MessagingAnalysisReport{
		ConflictScore:          4.5,
		ConflictScoreReasoning: "repeated blame language",
	}, nil
}

func (f *fakeAnalyst) AssistantTurn(ctx context.Context, transcript []collaborator.ChatMessage, profile *models.UserProfile) (*models.AssistantResponse, error) {
	f.mu.Lock()
	f.turnCalls++
	f.mu.Unlock()
	if f.turnErr != nil {
		return nil, f.turnErr
	}
	if f.turn != nil {
		return f.turn, nil
	}
	return &models.AssistantResponse{Type: "chat", Content: "you could file a motion"}, nil
}

func newTestStore(userID string) *state.Store {
	store := state.NewStore(models.User{UserID: userID, Username: "tester"})
	tokens := 50
	store.Update(func(d *state.Data) {
		d.Profile = &models.UserProfile{
			Name:   "Test Parent",
			Role:   "Mother",
			Tier:   models.TierFree,
			Tokens: &tokens,
		}
	})
	return store
}

func testLedgerConfig() config.LedgerConfig {
	return config.LedgerConfig{
		StarterTokens:   50,
		PlusTokens:      100,
		ProTokens:       500,
		CostChat:        1,
		CostReport:      5,
		CostAnalysis:    5,
		CostAgent:       10,
		CostEvidencePkg: 20,
	}
}
