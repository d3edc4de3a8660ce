package tasks

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

// TaskClient enqueues background work.
type TaskClient struct {
	client *asynq.Client
	logger *logger.Logger
}

// NewTaskClient creates a new TaskClient with the given Redis configuration
func NewTaskClient(redisAddr, username, password string, db int) *TaskClient {
	redisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Username: username,
		Password: password,
		DB:       db,
	}

	return &TaskClient{
		client: asynq.NewClient(redisOpt),
		logger: logger.New("TASKS"),
	}
}

// Close closes the underlying asynq client
func (c *TaskClient) Close() error {
	return c.client.Close()
}

// PersistItems enqueues one collection write and returns immediately.
// The write never retries and never reports back: by the time it runs
// the caller's local state has already moved on, and replaying a stale
// snapshot later could clobber a newer write.
func (c *TaskClient) PersistItems(ctx context.Context, userID string, kind models.ItemKind, items interface{}) {
	payload, err := json.Marshal(PersistItemsTask{
		UserID: userID,
		Kind:   kind,
		Items:  items,
	})
	if err != nil {
		c.logger.Error("failed to marshal persist task for %s/%s: %v", userID, kind, err)
		return
	}

	info, err := c.client.EnqueueContext(ctx,
		asynq.NewTask(TaskTypePersistItems, payload),
		asynq.Queue(QueueCritical),
		asynq.Timeout(TimeoutShort),
		asynq.MaxRetry(RetryNone),
	)
	if err != nil {
		c.logger.Error("failed to enqueue persist task for %s/%s: %v", userID, kind, err)
		return
	}

	c.logger.Debug("enqueued persist task [%s] in queue %s for %s/%s",
		info.ID, info.Queue, userID, kind)
}
