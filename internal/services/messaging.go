package services

import (
	"context"
	"sync"
	"time"

	"github.com/spservicesgroupinc-blip/custodyx/internal/config"
	"github.com/spservicesgroupinc-blip/custodyx/internal/gateway"
	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

var messagingLog = logger.New("MESSAGING")

// Replier drafts the auto-reply text.
type Replier interface {
	AutoReply(ctx context.Context, incoming string, profile *models.UserProfile) (string, error)
}

// MessagingService runs the conversation with the linked co-parent:
// the poll loop, id-based dedup, the optional auto-reply, and the one
// mutation in the system that rolls back on failure (the send path).
type MessagingService struct {
	backend gateway.Backend
	replier Replier
	ledger  *LedgerService
	cfg     config.MessagingConfig
	now     func() time.Time

	mu       sync.Mutex
	pollers  map[string]context.CancelFunc
	autoOn   map[string]bool
}

func NewMessagingService(backend gateway.Backend, replier Replier, ledger *LedgerService, cfg config.MessagingConfig) *MessagingService {
	return &MessagingService{
		backend: backend,
		replier: replier,
		ledger:  ledger,
		cfg:     cfg,
		now:     time.Now,
		pollers: make(map[string]context.CancelFunc),
		autoOn:  make(map[string]bool),
	}
}

// mergeMessages folds a fetched batch into the local view by id, the
// incoming copy winning ties, then restores timestamp order. Running
// the same batch twice is a no-op.
func mergeMessages(current, incoming []models.Message) []models.Message {
	merged := state.MergeByID(current, incoming)
	state.SortBy(merged, func(a, b models.Message) bool {
		return a.Timestamp < b.Timestamp
	})
	return merged
}

// SetAutoReply toggles the auto-reply feature for a user.
func (s *MessagingService) SetAutoReply(userID string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoOn[userID] = enabled
}

func (s *MessagingService) autoReplyEnabled(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoOn[userID]
}

// StartPolling spawns the poll loop for one session. Stopping is
// idempotent and happens automatically when ctx is cancelled.
func (s *MessagingService) StartPolling(ctx context.Context, store *state.Store) {
	userID := store.User().UserID

	s.mu.Lock()
	if cancel, ok := s.pollers[userID]; ok {
		cancel()
	}
	pollCtx, cancel := context.WithCancel(ctx)
	s.pollers[userID] = cancel
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.cfg.PollInterval)
		defer ticker.Stop()

		s.Poll(pollCtx, store)
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				s.Poll(pollCtx, store)
			}
		}
	}()

	messagingLog.Info("message polling started for %s (every %s)", userID, s.cfg.PollInterval)
}

// StopPolling cancels a user's poll loop.
func (s *MessagingService) StopPolling(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.pollers[userID]; ok {
		cancel()
		delete(s.pollers, userID)
	}
}

// Poll fetches the conversation, merges it, and decides whether one
// auto-reply is owed. A failed poll changes nothing locally; the next
// tick retries.
func (s *MessagingService) Poll(ctx context.Context, store *state.Store) {
	userID := store.User().UserID

	msgs, err := s.backend.GetMessages(ctx, userID, "")
	if err != nil {
		messagingLog.Debug("poll failed for %s: %v", userID, err)
		return
	}

	var replyTo *models.Message
	var profile *models.UserProfile

	store.Update(func(d *state.Data) {
		firstPoll := !d.PolledOnce

		// New inbound messages are those never seen before from the
		// other side. Seen ids accumulate whether or not we reply, so
		// a message triggers at most one reply ever.
		var fresh []models.Message
		for _, m := range msgs {
			if !d.SeenMessageIDs[m.ID] && m.SenderID != userID {
				fresh = append(fresh, m)
			}
		}
		for _, m := range msgs {
			d.SeenMessageIDs[m.ID] = true
		}

		d.Messages = mergeMessages(d.Messages, msgs)
		d.PolledOnce = true

		if firstPoll || len(fresh) == 0 || !s.autoReplyEnabled(userID) {
			return
		}

		// Only the newest unseen message is considered, and only when
		// it is recent enough that a reply still reads as live.
		last := fresh[len(fresh)-1]
		ts, err := time.Parse(time.RFC3339, last.Timestamp)
		if err != nil || s.now().Sub(ts) >= s.cfg.FreshnessWindow {
			return
		}

		replyTo = &last
		if d.Profile != nil {
			copied := *d.Profile
			profile = &copied
		}
	})

	if replyTo != nil {
		s.autoReply(ctx, store, *replyTo, profile)
	}
}

// autoReply drafts and sends the automatic response. The reply is a
// billable chat turn, so it passes the ledger gate first.
func (s *MessagingService) autoReply(ctx context.Context, store *state.Store, incoming models.Message, profile *models.UserProfile) {
	userID := store.User().UserID

	if err := s.ledger.Consume(ctx, store, s.ledger.Costs().CostChat); err != nil {
		messagingLog.Warn("auto-reply skipped for %s: %v", userID, err)
		return
	}

	text, err := s.replier.AutoReply(ctx, incoming.Content, profile)
	if err != nil {
		messagingLog.Warn("auto-reply generation failed for %s: %v", userID, err)
		return
	}

	confirmed, err := s.backend.SendMessage(ctx, userID, text)
	if err != nil {
		messagingLog.Warn("auto-reply send failed for %s: %v", userID, err)
		return
	}

	store.Update(func(d *state.Data) {
		d.Messages = mergeMessages(d.Messages, []models.Message{*confirmed})
		d.SeenMessageIDs[confirmed.ID] = true
	})
}

// Send posts a message through the optimistic path: a temp-id copy
// appears immediately, the backend's confirmed copy replaces exactly
// that temp id, and a failed send removes it. This is the only
// mutation in the service that rolls back.
func (s *MessagingService) Send(ctx context.Context, store *state.Store, content string) (models.Message, error) {
	userID := store.User().UserID
	tempID := models.NewID(models.PrefixTemp)

	temp := models.Message{
		ID:        tempID,
		SenderID:  userID,
		Content:   content,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}

	store.Update(func(d *state.Data) {
		if d.Profile != nil {
			temp.RecipientID = d.Profile.LinkedUserID
		}
		d.Messages = append(d.Messages, temp)
	})

	confirmed, err := s.backend.SendMessage(ctx, userID, content)
	if err != nil {
		// Roll back just this temp copy. A poll may have landed in
		// between; everything it merged stays.
		store.Update(func(d *state.Data) {
			kept := d.Messages[:0]
			for _, m := range d.Messages {
				if m.ID != tempID {
					kept = append(kept, m)
				}
			}
			d.Messages = kept
		})
		return models.Message{}, messagingLog.Error("failed to send message for %s: %v", userID, err)
	}

	store.Update(func(d *state.Data) {
		kept := d.Messages[:0]
		for _, m := range d.Messages {
			if m.ID != tempID {
				kept = append(kept, m)
			}
		}
		d.Messages = mergeMessages(kept, []models.Message{*confirmed})
		d.SeenMessageIDs[confirmed.ID] = true
	})

	return *confirmed, nil
}

// Messages returns the conversation in timestamp order.
func (s *MessagingService) Messages(store *state.Store) []models.Message {
	var msgs []models.Message
	store.View(func(d *state.Data) {
		msgs = append([]models.Message(nil), d.Messages...)
	})
	return msgs
}
