package gateway

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/edenspa/core/internal/client"
	"github.com/edenspa/core/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalConn is an in-process session. It receives the same pushes, in the
// same order, as a socket.io session and implements client.Transport.
type LocalConn struct {
	hub    *Hub
	id     string
	events chan client.Event

	mu      sync.Mutex
	token   string
	closed  bool
	dropped bool
}

var _ client.Transport = (*LocalConn)(nil)

// Connect registers a new in-process session. Its first event is initialState.
func (h *Hub) Connect(ctx context.Context) (*LocalConn, error) {
	c := &LocalConn{
		hub:    h,
		id:     "local-" + uuid.NewString(),
		events: make(chan client.Event, localEventBuffer),
	}
	if !h.enqueue(ctx, request{kind: requestRegister, peer: c}) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrHubClosed
	}
	return c, nil
}

func (c *LocalConn) ID() string { return c.id }

func (c *LocalConn) Events() <-chan client.Event { return c.events }

// HandshakeToken returns the token obtained by the last successful Authenticate.
func (c *LocalConn) HandshakeToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Emit runs on the hub loop. A session whose buffer is full is disconnected
// instead of stalling every other session.
func (c *LocalConn) Emit(event string, payload any) {
	ev := client.Event{Name: event}
	switch v := payload.(type) {
	case models.Snapshot:
		snap := v.Clone()
		ev.Snapshot = &snap
	case string:
		ev.Error = v
	}

	select {
	case c.events <- ev:
	default:
		c.hub.logger.Warn("gateway local session lagging, disconnecting", zap.String("sid", c.id))
		c.hub.dropPeer(c.id)
	}
}

// Drop runs on the hub loop and closes the event stream once.
func (c *LocalConn) Drop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dropped {
		return
	}
	c.dropped = true
	close(c.events)
}

func (c *LocalConn) Authenticate(ctx context.Context, credential string) (client.AuthResult, error) {
	v, err := c.call(ctx, request{kind: requestAuthenticate, credential: credential})
	if err != nil {
		return client.AuthResult{}, err
	}
	res, _ := v.(client.AuthResult)
	if res.Success && res.Token != "" {
		c.mu.Lock()
		c.token = res.Token
		c.mu.Unlock()
	}
	return res, nil
}

// UpdateState sends a partial document. The result arrives after the
// resulting stateUpdate has been queued on every session, this one included.
func (c *LocalConn) UpdateState(ctx context.Context, partial map[string]json.RawMessage) (client.UpdateResult, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	v, err := c.call(ctx, request{kind: requestUpdate, partial: partial, token: token, invalid: partial == nil})
	if err != nil {
		return client.UpdateResult{}, err
	}
	res, _ := v.(client.UpdateResult)
	return res, nil
}

func (c *LocalConn) call(ctx context.Context, req request) (any, error) {
	c.mu.Lock()
	closed := c.closed || c.dropped
	c.mu.Unlock()
	if closed {
		return nil, client.ErrNotConnected
	}

	replies := make(chan any, 1)
	req.peerID = c.id
	req.reply = func(v any) { replies <- v }
	if !c.hub.enqueue(ctx, req) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, client.ErrNotConnected
	}

	select {
	case v := <-replies:
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.hub.done:
		return nil, client.ErrNotConnected
	}
}

// Close disconnects the session. The event stream is closed by the hub.
func (c *LocalConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.hub.enqueue(context.Background(), request{kind: requestUnregister, peerID: c.id})
	return nil
}
