package tasks

import (
	"time"

	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
)

// Task Types
const (
	// Persistence tasks
	TaskTypePersistItems = "persist:items"

	// Shared-state refresh tasks
	TaskTypeSharedRefresh = "shared:refresh"
)

// Task Queues
const (
	QueueCritical = "critical" // For user-visible writes
	QueueDefault  = "default"  // For regular tasks
	QueueLow      = "low"      // For background refreshes
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
)

// Task Retry Settings
const (
	RetryDefault = 3
	// RetryNone is for fire-and-forget writes: a lost write stays
	// lost, the caller's state is already ahead of it.
	RetryNone = 0
)

// PersistItemsTask carries one collection write to the backend. Items
// is pre-encoded so the task payload round-trips without knowing the
// element type.
type PersistItemsTask struct {
	UserID string          `json:"user_id"`
	Kind   models.ItemKind `json:"kind"`
	Items  interface{}     `json:"items"`
}
