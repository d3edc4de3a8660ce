package services

import (
	"context"

	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

var refresherLog = logger.New("REFRESHER")

// Refresher periodically re-pulls the shared surfaces (calendar and
// invites) for every live session, so co-parent writes show up without
// waiting for a user action.
type Refresher struct {
	manager  *state.Manager
	calendar *CalendarService
	link     *LinkService
}

func NewRefresher(manager *state.Manager, calendar *CalendarService, link *LinkService) *Refresher {
	return &Refresher{manager: manager, calendar: calendar, link: link}
}

// RefreshAll walks the live sessions. Per-user failures are logged and
// skipped; one dead session never blocks the rest.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	for _, userID := range r.manager.ActiveUserIDs() {
		store := r.manager.Get(userID)
		if store == nil {
			continue
		}
		if _, err := r.calendar.Refresh(ctx, store); err != nil {
			refresherLog.Debug("calendar refresh failed for %s: %v", userID, err)
		}
		if _, err := r.link.RefreshInvites(ctx, store); err != nil {
			refresherLog.Debug("invite refresh failed for %s: %v", userID, err)
		}
	}
	return nil
}
