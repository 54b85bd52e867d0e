package gateway

import (
	"context"
	"errors"
	"net/http"

	"code.cloudfoundry.org/clock"
	"github.com/edenspa/core/internal/client"
	"github.com/edenspa/core/internal/modules/access"
	"github.com/edenspa/core/internal/modules/document"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

func NewHub(opts Options) *Hub {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.NewClock()
	}
	h := &Hub{
		store:        opts.Store,
		access:       opts.Access,
		signer:       opts.Signer,
		requireToken: opts.RequireToken,
		rc:           opts.Redis,
		logger:       logger,
		clock:        clk,
		sio:          socketio.NewServer(nil, nil),
		peers:        make(map[string]peer),
		inbox:        make(chan request, queueSize),
		done:         make(chan struct{}),
	}
	h.registerNamespace()
	return h
}

// Run processes the inbox until ctx is cancelled, then drops every session.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case req := <-h.inbox:
			switch req.kind {
			case requestRegister:
				h.registerPeer(req.peer)
			case requestUnregister:
				h.dropPeer(req.peerID)
			case requestAuthenticate:
				h.authenticate(req)
			case requestUpdate:
				h.update(ctx, req)
			}
		}
	}
}

func (h *Hub) shutdown() {
	h.stopOnce.Do(func() { close(h.done) })
	for id := range h.peers {
		h.dropPeer(id)
	}
	h.sio.Close(nil)
}

// enqueue hands a request to the loop. It reports false once the hub has stopped.
func (h *Hub) enqueue(ctx context.Context, req request) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.inbox <- req:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (h *Hub) registerPeer(p peer) {
	h.peers[p.ID()] = p
	online := len(h.peers)
	h.setOnline(online)
	h.logger.Debug("gateway session connected", zap.String("sid", p.ID()), zap.Int("online", online))

	h.updateDailyOnlineStats(online)
	p.Emit(client.EventInitialState, h.store.Snapshot())
}

func (h *Hub) dropPeer(id string) {
	p, ok := h.peers[id]
	if !ok {
		return
	}
	delete(h.peers, id)
	h.setOnline(len(h.peers))
	p.Drop()
	h.logger.Debug("gateway session disconnected", zap.String("sid", id))
}

func (h *Hub) authenticate(req request) {
	mode, ok := h.access.Authenticate(req.credential)
	if !ok {
		h.logger.Info("gateway authentication failed", zap.String("sid", req.peerID))
		req.respond(client.AuthResult{Success: false})
		return
	}

	res := client.AuthResult{Success: true, Mode: mode}
	if h.signer != nil {
		token, err := h.signer.Sign(string(mode))
		if err != nil {
			h.logger.Error("gateway sign token failed", zap.String("sid", req.peerID), zap.Error(err))
			req.respond(client.AuthResult{Success: false})
			return
		}
		res.Token = token
	}
	h.logger.Info("gateway authentication success", zap.String("sid", req.peerID), zap.String("mode", string(mode)))
	req.respond(res)
}

func (h *Hub) update(ctx context.Context, req request) {
	sender := h.peers[req.peerID]

	if h.requireToken && !h.authorized(req, sender) {
		h.logger.Warn("gateway update rejected, missing or invalid token", zap.String("sid", req.peerID))
		h.rejectUpdate(req, sender, msgNotAuthorized)
		return
	}
	if req.invalid {
		h.rejectUpdate(req, sender, msgInvalidUpdate)
		return
	}

	merged, err := h.store.Merge(ctx, req.partial)
	if err != nil {
		if errors.Is(err, document.ErrInvalidPartial) {
			h.logger.Warn("gateway update rejected", zap.String("sid", req.peerID), zap.Error(err))
			h.rejectUpdate(req, sender, msgInvalidUpdate)
			return
		}
		h.logger.Error("gateway update persist failed", zap.String("sid", req.peerID), zap.Error(err))
		h.rejectUpdate(req, sender, msgSaveFailed)
		return
	}

	h.logger.Info("gateway document updated", zap.String("sid", req.peerID), zap.Int("keys", len(req.partial)))
	h.broadcast(client.EventStateUpdate, merged.Public())
	req.respond(client.UpdateResult{Success: true})
}

func (h *Hub) rejectUpdate(req request, sender peer, message string) {
	if sender != nil {
		sender.Emit(client.EventUpdateError, message)
	}
	req.respond(client.UpdateResult{Success: false, Error: message})
}

func (h *Hub) authorized(req request, sender peer) bool {
	if h.signer == nil {
		return false
	}
	token := req.token
	if token == "" && sender != nil {
		token = sender.HandshakeToken()
	}
	if token == "" {
		return false
	}
	claims, err := h.signer.Parse(token)
	if err != nil {
		return false
	}
	return access.Mode(claims.Mode).Valid()
}

func (h *Hub) broadcast(event string, payload any) {
	for _, p := range h.peers {
		p.Emit(event, payload)
	}
}

func (r request) respond(v any) {
	if r.reply != nil {
		r.reply(v)
	}
}

func (h *Hub) setOnline(n int) {
	h.mu.Lock()
	h.online = n
	if n > h.peak {
		h.peak = n
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.online
}

// PeakCount returns the highest session count since start.
func (h *Hub) PeakCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.peak
}

// Handler returns the socket.io HTTP handler mounted at /socket.io.
func (h *Hub) Handler() http.Handler {
	return h.sio.ServeHandler(nil)
}
