package services

import (
	"context"
	"errors"

	"github.com/spservicesgroupinc-blip/custodyx/internal/config"
	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

var ledgerLog = logger.New("LEDGER")

var (
	ErrNoProfile          = errors.New("no profile loaded")
	ErrInsufficientTokens = errors.New("insufficient tokens")
)

// Persister queues a fire-and-forget write of one replicated
// collection. Implementations must not block the caller on the actual
// network write and must not report its outcome back.
type Persister interface {
	PersistItems(ctx context.Context, userID string, kind models.ItemKind, items interface{})
}

// LedgerService gates billable work behind the token balance. The
// decrement is optimistic: the persisted write may fail silently and
// the local balance stands either way.
type LedgerService struct {
	cfg       config.LedgerConfig
	persister Persister
}

func NewLedgerService(cfg config.LedgerConfig, persister Persister) *LedgerService {
	return &LedgerService{cfg: cfg, persister: persister}
}

// NormalizeProfile fills in the starter grant and the free tier when a
// synced profile omits them. Reading never changes what is persisted.
func (s *LedgerService) NormalizeProfile(profile *models.UserProfile) {
	if profile == nil {
		return
	}
	if profile.Tier == "" {
		profile.Tier = models.TierFree
	}
	if profile.Tokens == nil {
		starter := s.cfg.StarterTokens
		profile.Tokens = &starter
	}
}

// Balance reads the current token count, applying starter defaults for
// profiles that predate the ledger.
func (s *LedgerService) Balance(store *state.Store) (int, models.SubscriptionTier, error) {
	var tokens int
	var tier models.SubscriptionTier
	err := ErrNoProfile
	store.View(func(d *state.Data) {
		if d.Profile == nil {
			return
		}
		s.NormalizeProfile(d.Profile)
		tokens = *d.Profile.Tokens
		tier = d.Profile.Tier
		err = nil
	})
	return tokens, tier, err
}

// Consume deducts cost from the balance before the billable work runs.
// It fails closed without a profile and signals exhaustion without
// deducting. On success the new balance is already persisted in
// flight; there is no rollback if that write is lost.
func (s *LedgerService) Consume(ctx context.Context, store *state.Store, cost int) error {
	var result error
	var snapshot *models.UserProfile
	var userID string

	store.Update(func(d *state.Data) {
		if d.Profile == nil {
			result = ErrNoProfile
			return
		}
		s.NormalizeProfile(d.Profile)

		if *d.Profile.Tokens < cost {
			result = ErrInsufficientTokens
			return
		}

		remaining := *d.Profile.Tokens - cost
		d.Profile.Tokens = &remaining

		copied := *d.Profile
		snapshot = &copied
		userID = d.User.UserID
	})

	if result != nil {
		return result
	}

	ledgerLog.Debug("consumed %d tokens for %s, %d remaining", cost, userID, *snapshot.Tokens)
	s.persister.PersistItems(ctx, userID, models.ItemKindProfile, []models.UserProfile{*snapshot})
	return nil
}

// Upgrade credits the tier's token grant and relabels the profile.
func (s *LedgerService) Upgrade(ctx context.Context, store *state.Store, tier models.SubscriptionTier) error {
	var result error
	var snapshot models.UserProfile
	var userID string

	store.Update(func(d *state.Data) {
		if d.Profile == nil {
			result = ErrNoProfile
			return
		}
		s.NormalizeProfile(d.Profile)

		credited := *d.Profile.Tokens
		switch tier {
		case models.TierPlus:
			credited += s.cfg.PlusTokens
		case models.TierPro:
			credited += s.cfg.ProTokens
		}
		d.Profile.Tokens = &credited
		d.Profile.Tier = tier

		snapshot = *d.Profile
		userID = d.User.UserID
	})

	if result != nil {
		return result
	}

	ledgerLog.Success("upgraded %s to %s, balance now %d", userID, tier, *snapshot.Tokens)
	s.persister.PersistItems(ctx, userID, models.ItemKindProfile, []models.UserProfile{snapshot})
	return nil
}

// Costs exposes per-operation prices for the handlers.
func (s *LedgerService) Costs() config.LedgerConfig {
	return s.cfg
}
