package tasks

import (
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

// Scheduler handles periodic task scheduling
type Scheduler struct {
	scheduler *asynq.Scheduler
	logger    *logger.Logger
}

// NewScheduler creates a new task scheduler
func NewScheduler(redisAddr, username, password string, db int, log *logger.Logger) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
		&asynq.SchedulerOpts{},
	)

	return &Scheduler{
		scheduler: scheduler,
		logger:    log,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if err := s.registerTasks(); err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}

	s.logger.Info("starting task scheduler")
	return s.scheduler.Run()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Shutdown()
	s.logger.Info("task scheduler stopped")
}

// registerTasks registers all periodic tasks
func (s *Scheduler) registerTasks() error {
	// Shared-state refresh (every minute): pending invites and the
	// shared calendar for all live sessions.
	entryID, err := s.scheduler.Register("*/1 * * * *", asynq.NewTask(
		TaskTypeSharedRefresh,
		nil,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(RetryNone),
		asynq.Timeout(TimeoutMedium),
	))
	if err != nil {
		return fmt.Errorf("failed to register shared refresh task: %w", err)
	}

	s.logger.Info("registered shared refresh task [%s]", entryID)
	return nil
}
