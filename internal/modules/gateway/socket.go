package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/edenspa/core/internal/client"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

type socketPeer struct {
	sock  *socketio.Socket
	id    string
	token string
}

func newSocketPeer(sock *socketio.Socket) *socketPeer {
	return &socketPeer{
		sock:  sock,
		id:    string(sock.Id()),
		token: normalizeToken(extractToken(sock)),
	}
}

func (p *socketPeer) ID() string             { return p.id }
func (p *socketPeer) HandshakeToken() string { return p.token }

func (p *socketPeer) Emit(event string, payload any) {
	_ = p.sock.Emit(event, payload)
}

func (p *socketPeer) Drop() {
	p.sock.Disconnect(true)
}

func (h *Hub) registerNamespace() {
	_ = h.sio.Of("/", nil).On("connection", func(args ...any) {
		if len(args) == 0 {
			return
		}
		sock, ok := args[0].(*socketio.Socket)
		if !ok {
			return
		}
		p := newSocketPeer(sock)
		if !h.enqueue(context.Background(), request{kind: requestRegister, peer: p}) {
			sock.Disconnect(true)
			return
		}

		_ = sock.On(client.EventAuthenticate, func(eventArgs ...any) {
			payload, reply := splitAck(eventArgs)
			credential, _ := payload.(string)
			h.enqueue(context.Background(), request{
				kind:       requestAuthenticate,
				peerID:     p.id,
				credential: credential,
				reply:      reply,
			})
		})

		_ = sock.On(client.EventUpdateState, func(eventArgs ...any) {
			payload, reply := splitAck(eventArgs)
			partial, token, err := parseUpdatePayload(payload)
			h.enqueue(context.Background(), request{
				kind:    requestUpdate,
				peerID:  p.id,
				partial: partial,
				token:   token,
				invalid: err != nil,
				reply:   reply,
			})
		})

		_ = sock.On("disconnect", func(_ ...any) {
			h.enqueue(context.Background(), request{kind: requestUnregister, peerID: p.id})
		})
	})
}

// splitAck separates the event payload from a trailing acknowledgement callback.
func splitAck(args []any) (any, func(any)) {
	var reply func(any)
	if n := len(args); n > 0 {
		if ack, ok := args[n-1].(socketio.Ack); ok {
			reply = func(v any) { ack([]any{v}, nil) }
			args = args[:n-1]
		}
	}
	if len(args) == 0 {
		return nil, reply
	}
	return args[0], reply
}

// parseUpdatePayload accepts either a bare partial document or the
// {"token": ..., "state": {...}} envelope.
func parseUpdatePayload(payload any) (map[string]json.RawMessage, string, error) {
	if payload == nil {
		return nil, "", errors.New("empty update")
	}
	var data []byte
	switch v := payload.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		data = encoded
	}
	return decodeUpdate(data)
}

func decodeUpdate(data []byte) (map[string]json.RawMessage, string, error) {
	var partial map[string]json.RawMessage
	if err := json.Unmarshal(data, &partial); err != nil {
		return nil, "", err
	}
	if partial == nil {
		return nil, "", errors.New("update is not an object")
	}

	state, ok := partial["state"]
	if !ok {
		return partial, "", nil
	}
	var token string
	if raw, ok := partial["token"]; ok {
		if err := json.Unmarshal(raw, &token); err != nil {
			return nil, "", err
		}
	}
	var inner map[string]json.RawMessage
	if err := json.Unmarshal(state, &inner); err != nil {
		return nil, "", err
	}
	if inner == nil {
		return nil, "", errors.New("update state is not an object")
	}
	return inner, token, nil
}

func extractToken(sock *socketio.Socket) string {
	handshake := sock.Handshake()
	if handshake == nil {
		return ""
	}
	if token := firstValueFromMultiMap(handshake.Query, "token"); token != "" {
		return token
	}
	if token := firstValueFromMultiMap(handshake.Headers, "authorization"); token != "" {
		return token
	}
	return ""
}

func firstValueFromMultiMap(values map[string][]string, key string) string {
	if len(values) == 0 {
		return ""
	}
	for k, list := range values {
		if !strings.EqualFold(strings.TrimSpace(k), key) || len(list) == 0 {
			continue
		}
		v := strings.TrimSpace(list[0])
		if v != "" {
			return v
		}
	}
	return ""
}

func normalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
