package services

import (
	"context"

	"github.com/spservicesgroupinc-blip/custodyx/internal/gateway"
	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

var linkLog = logger.New("LINK")

// LinkService connects two accounts into a co-parent pair and tracks
// invites while a link request is outstanding.
type LinkService struct {
	backend   gateway.Backend
	persister Persister
}

func NewLinkService(backend gateway.Backend, persister Persister) *LinkService {
	return &LinkService{backend: backend, persister: persister}
}

// Request asks the backend to link this account to another username.
// The backend either links immediately or parks a pending invite on
// the target account; the result says which.
func (s *LinkService) Request(ctx context.Context, store *state.Store, targetUsername string) (*gateway.LinkResult, error) {
	userID := store.User().UserID

	result, err := s.backend.LinkByUsername(ctx, userID, targetUsername)
	if err != nil {
		return nil, err
	}

	if result.LinkedUserID != "" {
		s.applyLink(ctx, store, result.LinkedUserID)
		linkLog.Success("%s linked to %s", userID, result.LinkedUserID)
	} else {
		linkLog.Info("link request from %s to %q is %s", userID, targetUsername, result.Status)
	}
	return result, nil
}

// RefreshInvites fetches the pending invites addressed to this user.
func (s *LinkService) RefreshInvites(ctx context.Context, store *state.Store) ([]models.PendingInvite, error) {
	userID := store.User().UserID

	invites, err := s.backend.GetPendingInvites(ctx, userID)
	if err != nil {
		return nil, err
	}

	store.Update(func(d *state.Data) {
		d.Invites = invites
	})
	return invites, nil
}

// Respond accepts or rejects an invite. Accepting establishes the
// link on both the remote store and the local profile.
func (s *LinkService) Respond(ctx context.Context, store *state.Store, inviteID string, accept bool) (string, error) {
	userID := store.User().UserID

	linked, err := s.backend.RespondToInvite(ctx, userID, inviteID, accept)
	if err != nil {
		return "", err
	}

	store.Update(func(d *state.Data) {
		kept := d.Invites[:0]
		for _, inv := range d.Invites {
			if inv.ID != inviteID {
				kept = append(kept, inv)
			}
		}
		d.Invites = kept
	})

	if accept && linked != "" {
		s.applyLink(ctx, store, linked)
		linkLog.Success("%s accepted invite %s, now linked to %s", userID, inviteID, linked)
	}
	return linked, nil
}

func (s *LinkService) applyLink(ctx context.Context, store *state.Store, linkedUserID string) {
	var snapshot *models.UserProfile
	var userID string

	store.Update(func(d *state.Data) {
		d.User.LinkedUserID = linkedUserID
		userID = d.User.UserID
		if d.Profile != nil {
			d.Profile.LinkedUserID = linkedUserID
			copied := *d.Profile
			snapshot = &copied
		}
	})

	if snapshot != nil {
		s.persister.PersistItems(ctx, userID, models.ItemKindProfile, []models.UserProfile{*snapshot})
	}
}
