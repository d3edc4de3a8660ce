// Package state holds the canonical in-memory snapshot for each
// signed-in user. All reads and writes go through a per-user Store
// under one mutex, so crossing goroutines (HTTP handlers, the message
// poller, the shared-state refresher) see consistent snapshots.
package state

import (
	"sync"

	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
)

// Store is one user's working set. Mutations happen through Update so
// the lock is held for the whole read-modify-write.
type Store struct {
	mu sync.Mutex
	d  Data
}

// Data is the mutable snapshot inside a Store.
type Data struct {
	User      models.User
	Profile   *models.UserProfile
	Reports   []models.Report
	Documents []models.StoredDocument
	Templates []models.IncidentTemplate
	Events    []models.SharedEvent
	Messages  []models.Message
	Invites   []models.PendingInvite

	// SeenMessageIDs is the poller's dedup set. It only grows for the
	// lifetime of the session.
	SeenMessageIDs map[string]bool

	// PolledOnce flips after the first completed poll. Auto-reply
	// never fires on the first batch.
	PolledOnce bool
}

func NewStore(user models.User) *Store {
	return &Store{d: Data{
		User:           user,
		SeenMessageIDs: make(map[string]bool),
	}}
}

// Update runs fn with the snapshot locked.
func (s *Store) Update(fn func(d *Data)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.d)
}

// View runs fn with the snapshot locked for reading. fn must not
// retain references to slices or maps past its return.
func (s *Store) View(fn func(d *Data)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.d)
}

// User returns the session identity.
func (s *Store) User() models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.User
}

// Manager maps userId to its Store, creating on first touch.
type Manager struct {
	mu     sync.RWMutex
	stores map[string]*Store
}

func NewManager() *Manager {
	return &Manager{stores: make(map[string]*Store)}
}

// Get returns the store for a user or nil when no session exists.
func (m *Manager) Get(userID string) *Store {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stores[userID]
}

// Open creates (or replaces) the store for a fresh session.
func (m *Manager) Open(user models.User) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := NewStore(user)
	m.stores[user.UserID] = s
	return s
}

// Close drops a user's store on logout.
func (m *Manager) Close(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, userID)
}

// ActiveUserIDs lists users with live sessions, for background
// refreshers.
func (m *Manager) ActiveUserIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.stores))
	for id := range m.stores {
		ids = append(ids, id)
	}
	return ids
}
