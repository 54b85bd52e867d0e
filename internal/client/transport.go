// Package client holds the session-side view of the sync channel: the
// transport contract plus the mirror, draft and auto-lock components built on it.
package client

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/edenspa/core/internal/models"
	"github.com/edenspa/core/internal/modules/access"
)

// Sync channel event names.
const (
	EventInitialState = "initialState"
	EventStateUpdate  = "stateUpdate"
	EventUpdateError  = "updateError"
	EventDisconnect   = "disconnect"
	EventAuthenticate = "authenticate"
	EventUpdateState  = "updateState"
)

// ErrNotConnected is returned when the transport has been closed or dropped.
var ErrNotConnected = errors.New("not connected")

// Event is a server push received by a session.
type Event struct {
	Name     string
	Snapshot *models.Snapshot // initialState, stateUpdate
	Error    string           // updateError
}

// AuthResult is the acknowledgement of an authenticate request.
type AuthResult struct {
	Success bool        `json:"success"`
	Mode    access.Mode `json:"mode,omitempty"`
	Token   string      `json:"token,omitempty"`
}

// UpdateResult is the acknowledgement of an updateState request. It is sent
// after the resulting stateUpdate broadcast.
type UpdateResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Transport is one session's connection to the sync channel. Events is
// closed when the connection ends.
type Transport interface {
	Events() <-chan Event
	Authenticate(ctx context.Context, credential string) (AuthResult, error)
	UpdateState(ctx context.Context, partial map[string]json.RawMessage) (UpdateResult, error)
	Close() error
}
