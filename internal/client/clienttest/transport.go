// Package clienttest provides an in-memory client.Transport for tests.
package clienttest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/edenspa/core/internal/client"
	"github.com/edenspa/core/internal/models"
)

// Transport records outbound calls and lets tests push server events.
type Transport struct {
	events chan client.Event

	mu         sync.Mutex
	updates    []map[string]json.RawMessage
	closed     bool
	UpdateFunc func(partial map[string]json.RawMessage) (client.UpdateResult, error)
	AuthFunc   func(credential string) (client.AuthResult, error)
}

var _ client.Transport = (*Transport)(nil)

func New() *Transport {
	return &Transport{events: make(chan client.Event, 64)}
}

func (t *Transport) Events() <-chan client.Event { return t.events }

// Push queues a server event.
func (t *Transport) Push(ev client.Event) {
	t.events <- ev
}

// PushSnapshot queues an initialState or stateUpdate carrying a copy of snap.
func (t *Transport) PushSnapshot(name string, snap models.Snapshot) {
	c := snap.Clone()
	t.Push(client.Event{Name: name, Snapshot: &c})
}

func (t *Transport) Authenticate(_ context.Context, credential string) (client.AuthResult, error) {
	t.mu.Lock()
	fn, closed := t.AuthFunc, t.closed
	t.mu.Unlock()
	if closed {
		return client.AuthResult{}, client.ErrNotConnected
	}
	if fn == nil {
		return client.AuthResult{}, nil
	}
	return fn(credential)
}

// UpdateState records the partial and answers with UpdateFunc, or success by default.
func (t *Transport) UpdateState(_ context.Context, partial map[string]json.RawMessage) (client.UpdateResult, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return client.UpdateResult{}, client.ErrNotConnected
	}
	t.updates = append(t.updates, partial)
	fn := t.UpdateFunc
	t.mu.Unlock()
	if fn == nil {
		return client.UpdateResult{Success: true}, nil
	}
	return fn(partial)
}

// Updates returns every partial sent so far.
func (t *Transport) Updates() []map[string]json.RawMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]map[string]json.RawMessage(nil), t.updates...)
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.events)
	}
	return nil
}
