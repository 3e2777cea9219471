// Package session supplies the identity context that gates cart operations.
// The cart store only depends on the Provider contract; the Manager is an
// in-memory implementation for embedding applications and tests.
package session

import (
	"strings"
	"sync"

	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
)

// State is a point-in-time view of the session.
type State struct {
	LoggedIn bool
	UserID   string
}

// Listener receives the new state on every session transition.
type Listener func(State)

// Provider exposes the current session and transition notifications.
type Provider interface {
	Current() State
	Subscribe(listener Listener) (unsubscribe func())
}

// Manager is a thread-safe in-memory session holder.
type Manager struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// NewManager starts with no active session.
func NewManager() *Manager {
	return &Manager{listeners: make(map[int]Listener)}
}

// Current returns the active session state.
func (m *Manager) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers a transition listener and returns its removal func.
// Listeners are invoked synchronously, after the state change is visible.
func (m *Manager) Subscribe(listener Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = listener

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Login binds the session to the given user. Switching users while logged in
// counts as a transition.
func (m *Manager) Login(userID string) error {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	m.mu.Lock()
	if m.state.LoggedIn && m.state.UserID == trimmed {
		m.mu.Unlock()
		return nil
	}
	m.state = State{LoggedIn: true, UserID: trimmed}
	state, listeners := m.state, m.snapshotListeners()
	m.mu.Unlock()

	notify(listeners, state)
	return nil
}

// Logout ends the session. A no-op when nobody is logged in.
func (m *Manager) Logout() {
	m.mu.Lock()
	if !m.state.LoggedIn {
		m.mu.Unlock()
		return
	}
	m.state = State{}
	state, listeners := m.state, m.snapshotListeners()
	m.mu.Unlock()

	notify(listeners, state)
}

// snapshotListeners must be called with mu held. Listeners run outside the
// lock so they may call back into the manager.
func (m *Manager) snapshotListeners() []Listener {
	listeners := make([]Listener, 0, len(m.listeners))
	for _, listener := range m.listeners {
		listeners = append(listeners, listener)
	}
	return listeners
}

func notify(listeners []Listener, state State) {
	for _, listener := range listeners {
		listener(state)
	}
}
