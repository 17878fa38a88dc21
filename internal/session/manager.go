package session

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
)

// Store persists session snapshots so a client can resume after a
// reconnect. *sessionstore.Store satisfies it through the app wiring.
type Store interface {
	Get(id string) (Snapshot, bool)
	Put(snap Snapshot)
	Save()
}

// Manager is the registry of live controllers. Live controllers are the
// source of truth; the store is consulted only when a session is not in
// memory (process restart).
type Manager struct {
	kitchen Kitchen
	store   Store

	mu   sync.RWMutex
	byID map[string]*Controller
}

func NewManager(kitchen Kitchen, store Store) *Manager {
	return &Manager{
		kitchen: kitchen,
		store:   store,
		byID:    make(map[string]*Controller),
	}
}

// Create starts a new session in Idle.
func (m *Manager) Create() *Controller {
	c := NewController(newSessionID(), m.kitchen)
	m.mu.Lock()
	m.byID[c.ID()] = c
	m.mu.Unlock()
	m.Persist(c)
	return c
}

// Get returns the live controller for id, restoring it from the store when
// the process no longer has it in memory.
func (m *Manager) Get(id string) (*Controller, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	m.mu.RLock()
	c, ok := m.byID[id]
	m.mu.RUnlock()
	if ok {
		return c, true
	}
	if m.store == nil {
		return nil, false
	}
	snap, ok := m.store.Get(id)
	if !ok {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byID[id]; ok {
		return c, true
	}
	c = NewController(id, m.kitchen)
	c.Restore(snap)
	m.byID[id] = c
	return c, true
}

// Persist writes the controller's current snapshot through to the store.
func (m *Manager) Persist(c *Controller) {
	if m.store == nil || c == nil {
		return
	}
	m.store.Put(c.Snapshot())
	m.store.Save()
}

func newSessionID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return "session-" + hex.EncodeToString(b[:])
}
