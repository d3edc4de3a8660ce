package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spservicesgroupinc-blip/custodyx/internal/config"
	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
)

func testMessaging(backend *fakeBackend, replier *fakeReplier) *MessagingService {
	ledger := NewLedgerService(testLedgerConfig(), &fakePersister{})
	svc := NewMessagingService(backend, replier, ledger, config.MessagingConfig{
		PollInterval:    5 * time.Second,
		FreshnessWindow: 30 * time.Second,
	})
	return svc
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 31, 12, 1, 0, 0, time.UTC)
}

func inbound(id, ts string) models.Message {
	return models.Message{ID: id, SenderID: "u2", Content: "from co-parent", Timestamp: ts}
}

// heldSendBackend delays one send's confirmation until released, so a
// test can invert the order confirmations come back in.
type heldSendBackend struct {
	*fakeBackend
	held    string
	entered chan struct{}
	release chan struct{}
}

func (b *heldSendBackend) SendMessage(ctx context.Context, userID, content string) (*models.Message, error) {
	if content == b.held {
		close(b.entered)
		<-b.release
	}
	return b.fakeBackend.SendMessage(ctx, userID, content)
}

func TestPoll(t *testing.T) {
	ctx := context.Background()

	t.Run("merges fetched messages in timestamp order", func(t *testing.T) {
		backend := newFakeBackend()
		backend.messages = []models.Message{
			inbound("m2", "2026-08-31T12:00:30Z"),
			inbound("m1", "2026-08-31T12:00:10Z"),
		}
		svc := testMessaging(backend, &fakeReplier{})
		store := newTestStore("u1")

		svc.Poll(ctx, store)

		msgs := svc.Messages(store)
		require.Len(t, msgs, 2)
		assert.Equal(t, "m1", msgs[0].ID)
		assert.Equal(t, "m2", msgs[1].ID)
	})

	t.Run("never auto-replies on the first poll", func(t *testing.T) {
		backend := newFakeBackend()
		backend.messages = []models.Message{inbound("m1", fixedNow().Add(-time.Second).Format(time.RFC3339))}
		replier := &fakeReplier{}
		svc := testMessaging(backend, replier)
		svc.now = fixedNow
		store := newTestStore("u1")
		svc.SetAutoReply("u1", true)

		svc.Poll(ctx, store)

		assert.Zero(t, replier.callCount())
	})

	t.Run("replies once to the newest fresh inbound message", func(t *testing.T) {
		backend := newFakeBackend()
		replier := &fakeReplier{}
		svc := testMessaging(backend, replier)
		svc.now = fixedNow
		store := newTestStore("u1")
		svc.SetAutoReply("u1", true)

		svc.Poll(ctx, store) // first poll marks the baseline

		backend.mu.Lock()
		backend.messages = append(backend.messages,
			inbound("m1", fixedNow().Add(-20*time.Second).Format(time.RFC3339)),
			inbound("m2", fixedNow().Add(-5*time.Second).Format(time.RFC3339)),
		)
		backend.mu.Unlock()

		svc.Poll(ctx, store)

		assert.Equal(t, 1, replier.callCount())
		// The confirmed reply landed in the conversation.
		var replies int
		for _, m := range svc.Messages(store) {
			if m.SenderID == "u1" && strings.Contains(m.Content, "auto reply") {
				replies++
			}
		}
		assert.Equal(t, 1, replies)
	})

	t.Run("a message triggers at most one reply ever", func(t *testing.T) {
		backend := newFakeBackend()
		replier := &fakeReplier{}
		svc := testMessaging(backend, replier)
		svc.now = fixedNow
		store := newTestStore("u1")
		svc.SetAutoReply("u1", true)

		svc.Poll(ctx, store)
		backend.mu.Lock()
		backend.messages = append(backend.messages, inbound("m1", fixedNow().Add(-time.Second).Format(time.RFC3339)))
		backend.mu.Unlock()

		svc.Poll(ctx, store)
		svc.Poll(ctx, store)
		svc.Poll(ctx, store)

		assert.Equal(t, 1, replier.callCount())
	})

	t.Run("stale inbound messages get no reply", func(t *testing.T) {
		backend := newFakeBackend()
		replier := &fakeReplier{}
		svc := testMessaging(backend, replier)
		svc.now = fixedNow
		store := newTestStore("u1")
		svc.SetAutoReply("u1", true)

		svc.Poll(ctx, store)
		backend.mu.Lock()
		backend.messages = append(backend.messages, inbound("m1", fixedNow().Add(-time.Minute).Format(time.RFC3339)))
		backend.mu.Unlock()

		svc.Poll(ctx, store)

		assert.Zero(t, replier.callCount())
		// Still marked seen, so it can never trigger later either.
		store.View(func(d *state.Data) {
			assert.True(t, d.SeenMessageIDs["m1"])
		})
	})

	t.Run("auto-reply off by default", func(t *testing.T) {
		backend := newFakeBackend()
		replier := &fakeReplier{}
		svc := testMessaging(backend, replier)
		svc.now = fixedNow
		store := newTestStore("u1")

		svc.Poll(ctx, store)
		backend.mu.Lock()
		backend.messages = append(backend.messages, inbound("m1", fixedNow().Add(-time.Second).Format(time.RFC3339)))
		backend.mu.Unlock()
		svc.Poll(ctx, store)

		assert.Zero(t, replier.callCount())
	})

	t.Run("own messages never trigger a reply", func(t *testing.T) {
		backend := newFakeBackend()
		replier := &fakeReplier{}
		svc := testMessaging(backend, replier)
		svc.now = fixedNow
		store := newTestStore("u1")
		svc.SetAutoReply("u1", true)

		svc.Poll(ctx, store)
		backend.mu.Lock()
		backend.messages = append(backend.messages, models.Message{
			ID: "m1", SenderID: "u1", Content: "mine", Timestamp: fixedNow().Add(-time.Second).Format(time.RFC3339),
		})
		backend.mu.Unlock()
		svc.Poll(ctx, store)

		assert.Zero(t, replier.callCount())
	})
}

func TestSend(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed copy replaces the optimistic one", func(t *testing.T) {
		backend := newFakeBackend()
		svc := testMessaging(backend, &fakeReplier{})
		store := newTestStore("u1")

		msg, err := svc.Send(ctx, store, "hello")

		require.NoError(t, err)
		assert.False(t, models.IsTempID(msg.ID))

		msgs := svc.Messages(store)
		require.Len(t, msgs, 1)
		assert.Equal(t, msg.ID, msgs[0].ID)
	})

	t.Run("failed send removes only the optimistic copy", func(t *testing.T) {
		backend := newFakeBackend()
		svc := testMessaging(backend, &fakeReplier{})
		store := newTestStore("u1")
		store.Update(func(d *state.Data) {
			d.Messages = []models.Message{inbound("m0", "2026-08-31T11:00:00Z")}
		})

		backend.sendFail = true
		_, err := svc.Send(ctx, store, "hello")

		assert.Error(t, err)
		msgs := svc.Messages(store)
		require.Len(t, msgs, 1)
		assert.Equal(t, "m0", msgs[0].ID)
	})

	t.Run("overlapping sends settle regardless of confirmation order", func(t *testing.T) {
		backend := &heldSendBackend{
			fakeBackend: newFakeBackend(),
			held:        "first",
			entered:     make(chan struct{}),
			release:     make(chan struct{}),
		}
		ledger := NewLedgerService(testLedgerConfig(), &fakePersister{})
		svc := NewMessagingService(backend, &fakeReplier{}, ledger, config.MessagingConfig{
			PollInterval:    5 * time.Second,
			FreshnessWindow: 30 * time.Second,
		})
		store := newTestStore("u1")

		var wg sync.WaitGroup
		var first models.Message
		var firstErr error
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, firstErr = svc.Send(ctx, store, "first")
		}()

		// The first send is in flight with its optimistic copy placed.
		<-backend.entered
		second, err := svc.Send(ctx, store, "second")
		require.NoError(t, err)

		// Now let the first confirmation land, after the second's.
		close(backend.release)
		wg.Wait()
		require.NoError(t, firstErr)

		msgs := svc.Messages(store)
		require.Len(t, msgs, 2)
		byContent := map[string]models.Message{}
		for _, m := range msgs {
			assert.False(t, models.IsTempID(m.ID))
			byContent[m.Content] = m
		}
		assert.Equal(t, first.ID, byContent["first"].ID)
		assert.Equal(t, second.ID, byContent["second"].ID)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("confirmed id is marked seen so the poller never re-replies to it", func(t *testing.T) {
		backend := newFakeBackend()
		svc := testMessaging(backend, &fakeReplier{})
		store := newTestStore("u1")

		msg, err := svc.Send(ctx, store, "hello")

		require.NoError(t, err)
		store.View(func(d *state.Data) {
			assert.True(t, d.SeenMessageIDs[msg.ID])
		})
	})
}
