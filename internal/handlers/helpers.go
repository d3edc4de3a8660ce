package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/api/middleware"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
)

// activeStore resolves the caller's in-memory session state. A valid
// token with no loaded state means the process restarted since login,
// so the client has to authenticate again.
func activeStore(c echo.Context, manager *state.Manager) (*state.Store, error) {
	store := manager.Get(middleware.GetUserID(c))
	if store == nil {
		return nil, c.JSON(http.StatusUnauthorized, map[string]string{"error": "No active session, please log in again"})
	}
	return store, nil
}
