package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/spservicesgroupinc-blip/custodyx/internal/gateway"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

// SharedRefresher re-fetches shared state for every live session. The
// concrete implementation lives with the services; the task layer only
// needs the trigger.
type SharedRefresher interface {
	RefreshAll(ctx context.Context) error
}

// TaskHandler processes queued work.
type TaskHandler struct {
	backend   gateway.Backend
	refresher SharedRefresher
	logger    *logger.Logger
}

func NewTaskHandler(backend gateway.Backend, refresher SharedRefresher) *TaskHandler {
	return &TaskHandler{
		backend:   backend,
		refresher: refresher,
		logger:    logger.New("TASK_HANDLER"),
	}
}

// HandlePersistItems pushes one queued collection write to the
// backend. Failures are logged and swallowed; the task never retries.
func (h *TaskHandler) HandlePersistItems(ctx context.Context, t *asynq.Task) error {
	var task PersistItemsTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return fmt.Errorf("failed to unmarshal persist task: %w", err)
	}

	if err := h.backend.SaveItems(ctx, task.UserID, task.Kind, task.Items); err != nil {
		// Deliberately not returned: returning would make asynq mark
		// the task failed and surface retries we do not want.
		h.logger.Warn("persist of %s/%s dropped: %v", task.UserID, task.Kind, err)
	}
	return nil
}

// HandleSharedRefresh runs the periodic shared-state refresh.
func (h *TaskHandler) HandleSharedRefresh(ctx context.Context, t *asynq.Task) error {
	if h.refresher == nil {
		return nil
	}
	if err := h.refresher.RefreshAll(ctx); err != nil {
		return fmt.Errorf("shared refresh failed: %w", err)
	}
	return nil
}
