package gateway

import (
	"encoding/json"
	"errors"
	"sync"

	"code.cloudfoundry.org/clock"
	"github.com/edenspa/core/internal/modules/access"
	"github.com/edenspa/core/internal/modules/document"
	"github.com/edenspa/core/internal/pkg/jwt"
	pkgredis "github.com/edenspa/core/internal/pkg/redis"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

const (
	redisKeyMaxOnlineCount      = "eden:max_online_count"
	redisKeyMaxOnlineCountTotal = "eden:max_online_count:total"

	msgSaveFailed    = "Failed to save changes."
	msgInvalidUpdate = "Invalid update payload."
	msgNotAuthorized = "Not authorized."

	localEventBuffer = 64
	queueSize        = 256
)

// ErrHubClosed is returned when connecting to a hub that has stopped.
var ErrHubClosed = errors.New("gateway hub closed")

// peer is one connected session, socket.io or in-process.
type peer interface {
	ID() string
	// Emit delivers a server push. It must not block the hub loop.
	Emit(event string, payload any)
	// HandshakeToken is the capability token presented at connect time, if any.
	HandshakeToken() string
	// Drop ends the connection from the server side.
	Drop()
}

type requestKind int

const (
	requestRegister requestKind = iota + 1
	requestUnregister
	requestAuthenticate
	requestUpdate
)

// request is one item of the hub inbox. Connects, disconnects and calls share
// a single queue so they are handled in arrival order.
type request struct {
	kind       requestKind
	peer       peer
	peerID     string
	credential string
	partial    map[string]json.RawMessage
	token      string
	invalid    bool
	reply      func(any) // nil when the caller asked for no ack
}

// Options configures a Hub.
type Options struct {
	Store  *document.Store
	Access *access.Service
	// Signer is required when RequireToken is set.
	Signer       *jwt.Signer
	RequireToken bool
	// Redis is optional; without it daily online stats are not recorded.
	Redis  *pkgredis.Client
	Logger *zap.Logger
	Clock  clock.Clock
}

// Hub owns every session and is the single writer of the document store.
type Hub struct {
	store        *document.Store
	access       *access.Service
	signer       *jwt.Signer
	requireToken bool
	rc           *pkgredis.Client
	logger       *zap.Logger
	clock        clock.Clock
	sio          *socketio.Server

	// peers is touched only by the loop goroutine.
	peers map[string]peer

	mu     sync.RWMutex
	online int
	peak   int

	inbox    chan request
	done     chan struct{}
	stopOnce sync.Once
}
