package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spservicesgroupinc-blip/custodyx/internal/collaborator"
	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
)

func testAnalysis(analyst *fakeAnalyst, persister *fakePersister) *AnalysisService {
	ledger := NewLedgerService(testLedgerConfig(), persister)
	items := NewItemService(newFakeBackend(), ledger, persister)
	return NewAnalysisService(analyst, ledger, items)
}

func seedConversation(store *state.Store, n int) {
	store.Update(func(d *state.Data) {
		for i := 0; i < n; i++ {
			d.Messages = append(d.Messages, models.Message{
				ID:       models.NewID(models.PrefixMessage),
				SenderID: "u2",
				Content:  "message",
			})
		}
	})
}

func setTokens(store *state.Store, n int) {
	store.Update(func(d *state.Data) {
		d.Profile.Tokens = &n
	})
}

func TestReportFromChat(t *testing.T) {
	ctx := context.Background()

	t.Run("distills the conversation into a stored report", func(t *testing.T) {
		analyst := &fakeAnalyst{}
		svc := testAnalysis(analyst, &fakePersister{})
		store := newTestStore("u1")
		seedConversation(store, 3)

		report, err := svc.ReportFromChat(ctx, store)

		require.NoError(t, err)
		assert.Equal(t, models.CategoryCommunicationIssue, report.Category)

		store.View(func(d *state.Data) {
			require.Len(t, d.Reports, 1)
			assert.Equal(t, 45, *d.Profile.Tokens)
		})
	})

	t.Run("refuses an empty conversation before spending anything", func(t *testing.T) {
		analyst := &fakeAnalyst{}
		svc := testAnalysis(analyst, &fakePersister{})
		store := newTestStore("u1")

		_, err := svc.ReportFromChat(ctx, store)

		assert.ErrorIs(t, err, ErrNotEnoughMessages)
		store.View(func(d *state.Data) {
			assert.Equal(t, 50, *d.Profile.Tokens)
		})
	})

	t.Run("exhausted balance leaves no report behind", func(t *testing.T) {
		analyst := &fakeAnalyst{}
		persister := &fakePersister{}
		svc := testAnalysis(analyst, persister)
		store := newTestStore("u1")
		seedConversation(store, 3)
		setTokens(store, 4)

		_, err := svc.ReportFromChat(ctx, store)

		assert.ErrorIs(t, err, ErrInsufficientTokens)
		assert.Zero(t, analyst.reportCalls)
		assert.Zero(t, persister.callCount())
		store.View(func(d *state.Data) {
			assert.Empty(t, d.Reports)
			assert.Equal(t, 4, *d.Profile.Tokens)
		})
	})
}

func TestHostilityAnalysis(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the structured result without storing it", func(t *testing.T) {
		svc := testAnalysis(&fakeAnalyst{}, &fakePersister{})
		store := newTestStore("u1")
		seedConversation(store, 2)

		result, err := svc.HostilityAnalysis(ctx, store)

		require.NoError(t, err)
		assert.InDelta(t, 4.5, result.ConflictScore, 0.001)
		store.View(func(d *state.Data) {
			assert.Empty(t, d.Documents)
			assert.Equal(t, 45, *d.Profile.Tokens)
		})
	})

	t.Run("exhausted balance blocks the analysis outright", func(t *testing.T) {
		svc := testAnalysis(&fakeAnalyst{}, &fakePersister{})
		store := newTestStore("u1")
		seedConversation(store, 2)
		setTokens(store, 0)

		_, err := svc.HostilityAnalysis(ctx, store)

		assert.ErrorIs(t, err, ErrInsufficientTokens)
		store.View(func(d *state.Data) {
			assert.Equal(t, 0, *d.Profile.Tokens)
		})
	})
}

func TestAssistantTurn(t *testing.T) {
	ctx := context.Background()
	transcript := []collaborator.ChatMessage{{Role: "user", Content: "help me draft a motion"}}

	t.Run("free tier is locked out before any token spend", func(t *testing.T) {
		analyst := &fakeAnalyst{}
		svc := testAnalysis(analyst, &fakePersister{})
		store := newTestStore("u1")

		_, err := svc.AssistantTurn(ctx, store, transcript)

		assert.ErrorIs(t, err, ErrTierLocked)
		assert.Zero(t, analyst.turnCalls)
		store.View(func(d *state.Data) {
			assert.Equal(t, 50, *d.Profile.Tokens)
		})
	})

	t.Run("exhausted balance on a paid tier leaves no document behind", func(t *testing.T) {
		analyst := &fakeAnalyst{}
		persister := &fakePersister{}
		svc := testAnalysis(analyst, persister)
		store := newTestStore("u1")
		store.Update(func(d *state.Data) {
			d.Profile.Tier = models.TierPlus
		})
		setTokens(store, 9)

		_, err := svc.AssistantTurn(ctx, store, transcript)

		assert.ErrorIs(t, err, ErrInsufficientTokens)
		assert.Zero(t, analyst.turnCalls)
		assert.Zero(t, persister.callCount())
		store.View(func(d *state.Data) {
			assert.Empty(t, d.Documents)
			assert.Equal(t, 9, *d.Profile.Tokens)
		})
	})

	t.Run("a document turn lands the draft in the library", func(t *testing.T) {
		doc := &models.StructuredLegalDocument{
			Title:    "Motion to Modify",
			Preamble: "Comes now the petitioner.",
		}
		doc.Sections = append(doc.Sections, struct {
			Heading string `json:"heading"`
			Body    string `json:"body"`
		}{Heading: "Relief", Body: "Modify the schedule."})

		analyst := &fakeAnalyst{turn: &models.AssistantResponse{
			Type:         "document",
			Content:      "drafted the motion",
			Title:        "Motion to Modify",
			DocumentText: doc,
		}}
		svc := testAnalysis(analyst, &fakePersister{})
		store := newTestStore("u1")
		store.Update(func(d *state.Data) {
			d.Profile.Tier = models.TierPro
		})

		resp, err := svc.AssistantTurn(ctx, store, transcript)

		require.NoError(t, err)
		assert.Equal(t, "document", resp.Type)
		store.View(func(d *state.Data) {
			require.Len(t, d.Documents, 1)
			assert.Equal(t, models.FolderDraftedMotions, d.Documents[0].Folder)
			assert.Equal(t, 40, *d.Profile.Tokens)
		})
	})
}
