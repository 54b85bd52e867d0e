package mirror

import (
	"context"
	"sync"

	"github.com/edenspa/core/internal/client"
	"github.com/edenspa/core/internal/models"
)

// Mirror caches the latest snapshot pushed to one session.
type Mirror struct {
	transport client.Transport

	mu        sync.RWMutex
	snapshot  *models.Snapshot
	dark      bool
	lastError string
	changed   chan struct{}
}

func New(t client.Transport) *Mirror {
	return &Mirror{transport: t, changed: make(chan struct{})}
}

// Transport returns the connection the mirror reads from.
func (m *Mirror) Transport() client.Transport { return m.transport }

// Run applies transport events until the stream closes or ctx ends. A closed
// stream leaves the mirror uninitialized and returns client.ErrNotConnected.
func (m *Mirror) Run(ctx context.Context) error {
	events := m.transport.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				m.reset()
				return client.ErrNotConnected
			}
			m.apply(ev)
		}
	}
}

func (m *Mirror) apply(ev client.Event) {
	switch ev.Name {
	case client.EventInitialState, client.EventStateUpdate:
		if ev.Snapshot == nil {
			return
		}
		snap := ev.Snapshot.Clone()
		m.mu.Lock()
		m.snapshot = &snap
		m.lastError = ""
		m.notifyLocked()
		m.mu.Unlock()
	case client.EventUpdateError:
		m.mu.Lock()
		m.lastError = ev.Error
		m.notifyLocked()
		m.mu.Unlock()
	case client.EventDisconnect:
		m.reset()
	}
}

func (m *Mirror) reset() {
	m.mu.Lock()
	m.snapshot = nil
	m.notifyLocked()
	m.mu.Unlock()
}

func (m *Mirror) notifyLocked() {
	close(m.changed)
	m.changed = make(chan struct{})
}

// Initialized reports whether a snapshot has arrived since the last (re)connect.
func (m *Mirror) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot != nil
}

// Snapshot returns a deep copy of the cached snapshot.
func (m *Mirror) Snapshot() (models.Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snapshot == nil {
		return models.Snapshot{}, false
	}
	return m.snapshot.Clone(), true
}

// LastError is the message of the most recent updateError, cleared by the next snapshot.
func (m *Mirror) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastError
}

// Changed returns a channel closed on the next snapshot, error or reset.
func (m *Mirror) Changed() <-chan struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.changed
}

// WaitInitialized blocks until a snapshot is cached or ctx ends.
func (m *Mirror) WaitInitialized(ctx context.Context) error {
	for {
		m.mu.RLock()
		ready := m.snapshot != nil
		changed := m.changed
		m.mu.RUnlock()
		if ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

// Theme is the palette to render with: the dark palette when dark mode is on,
// otherwise the document theme, or the built-in default before initialization.
func (m *Mirror) Theme() models.Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch {
	case m.dark:
		return models.DarkTheme
	case m.snapshot != nil:
		return m.snapshot.LightTheme
	default:
		return models.DefaultTheme
	}
}

func (m *Mirror) DarkMode() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dark
}

// ToggleDarkMode flips the local dark-mode flag and returns the new value.
// It never touches the document.
func (m *Mirror) ToggleDarkMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dark = !m.dark
	return m.dark
}
