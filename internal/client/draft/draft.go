// Package draft implements the admin editing session: a private copy of the
// mirrored snapshot that is edited field by field and saved as a whole.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/edenspa/core/internal/client"
	"github.com/edenspa/core/internal/models"
	"github.com/edenspa/core/internal/modules/access"
	"github.com/edenspa/core/internal/modules/document"
)

// operatorCloseDelay is how long an operator session stays open after a successful save.
const operatorCloseDelay = 500 * time.Millisecond

var (
	ErrNotOpen        = errors.New("draft is not open")
	ErrAlreadyOpen    = errors.New("draft is already open")
	ErrNotInitialized = errors.New("no snapshot received yet")
	ErrSaving         = errors.New("save in progress")
	ErrSaveFailed     = errors.New("save failed")
	ErrOperatorOnly   = errors.New("operator mode required")
	ErrDerivedService = errors.New("service is derived from a featured service")
	ErrNotFound       = errors.New("item not found")
	ErrUnknownField   = errors.New("unknown field")
	ErrInvalidValue   = errors.New("invalid value")
	ErrEmptyPassword  = errors.New("password cannot be empty")
)

type State int

const (
	StateClosed State = iota
	StateOpening
	StateEditing
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Source provides the snapshot a draft is opened from.
type Source interface {
	Snapshot() (models.Snapshot, bool)
}

// Session is one admin editing session. All methods are safe for concurrent use.
type Session struct {
	source    Source
	transport client.Transport
	clock     clock.Clock

	mu        sync.Mutex
	state     State
	mode      access.Mode
	draft     models.Snapshot
	dirty     bool
	password  string
	lastError string
	gen       uint64
	done      chan struct{}
	stopClose chan struct{}
}

func New(source Source, transport client.Transport, clk clock.Clock) *Session {
	if clk == nil {
		clk = clock.NewClock()
	}
	done := make(chan struct{})
	close(done)
	return &Session{source: source, transport: transport, clock: clk, done: done}
}

// Open copies the current snapshot into a fresh draft. Broadcasts that arrive
// while the draft is open are not merged into it.
func (s *Session) Open(mode access.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("open draft: invalid mode %q", mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateClosed {
		return ErrAlreadyOpen
	}

	s.state = StateOpening
	snap, ok := s.source.Snapshot()
	if !ok {
		s.state = StateClosed
		return ErrNotInitialized
	}

	s.draft = snap.Clone()
	s.mode = mode
	s.dirty = false
	s.password = ""
	s.lastError = ""
	s.done = make(chan struct{})
	s.state = StateEditing
	return nil
}

// Discard drops the draft without contacting the server.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.state == StateClosed {
		return
	}
	if s.stopClose != nil {
		close(s.stopClose)
		s.stopClose = nil
	}
	s.state = StateClosed
	s.mode = ""
	s.draft = models.Snapshot{}
	s.dirty = false
	s.password = ""
	s.lastError = ""
	s.gen++
	close(s.done)
}

// Done returns a channel closed when the current draft closes for any reason.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Mode() access.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// PasswordPending reports whether a tenant password change waits for the next save.
func (s *Session) PasswordPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.password != ""
}

// LastError is the message of the last failed save, cleared by a successful one.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Draft returns a copy of the draft.
func (s *Session) Draft() (models.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing && s.state != StateSaving {
		return models.Snapshot{}, false
	}
	return s.draft.Clone(), true
}

// SetPendingPassword stages a new tenant password for the next save.
func (s *Session) SetPendingPassword(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	if s.mode != access.ModeOperator {
		return ErrOperatorOnly
	}
	s.password = strings.TrimSpace(password)
	return nil
}

// Save sends the whole draft. It is a no-op when nothing changed. A failed
// save keeps the draft dirty and editable; an operator session closes shortly
// after a successful one.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if !s.dirty && s.password == "" {
		s.mu.Unlock()
		return nil
	}
	password := s.password
	closeAfter := s.mode == access.ModeOperator
	s.mu.Unlock()

	return s.submit(ctx, password, closeAfter)
}

// ForceResetPassword immediately replaces the tenant password. Operator only.
func (s *Session) ForceResetPassword(ctx context.Context, password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}

	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.mode != access.ModeOperator {
		s.mu.Unlock()
		return ErrOperatorOnly
	}
	s.mu.Unlock()

	return s.submit(ctx, password, false)
}

func (s *Session) submit(ctx context.Context, password string, closeAfter bool) error {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	sent := s.draft.Clone()
	gen := s.gen
	s.state = StateSaving
	s.mu.Unlock()

	partial, err := document.ToPartial(sent)
	if err == nil && password != "" {
		partial[models.PasswordKey], err = json.Marshal(password)
	}
	var res client.UpdateResult
	if err == nil {
		res, err = s.transport.UpdateState(ctx, partial)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.state != StateSaving {
		// discarded while the request was in flight
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSaveFailed, err)
		}
		return nil
	}

	s.state = StateEditing
	if err != nil || !res.Success {
		msg := res.Error
		if err != nil {
			msg = err.Error()
		}
		if msg == "" {
			msg = "update rejected"
		}
		s.lastError = msg
		return fmt.Errorf("%w: %s", ErrSaveFailed, msg)
	}

	// The ack follows the stateUpdate broadcast and the server overwrote every
	// top-level key with what was sent, so sent is the current server state.
	s.draft = sent
	s.dirty = false
	s.password = ""
	s.lastError = ""
	if closeAfter {
		s.scheduleCloseLocked(gen)
	}
	return nil
}

// scheduleCloseLocked arms the post-save close. A close already pending for
// this draft keeps its original deadline.
func (s *Session) scheduleCloseLocked(gen uint64) {
	if s.stopClose != nil {
		return
	}
	timer := s.clock.NewTimer(operatorCloseDelay)
	stop := make(chan struct{})
	s.stopClose = stop
	go func() {
		select {
		case <-timer.C():
			s.mu.Lock()
			if s.gen == gen {
				s.stopClose = nil
				s.closeLocked()
			}
			s.mu.Unlock()
		case <-stop:
			timer.Stop()
		}
	}()
}

func (s *Session) editableLocked() error {
	switch s.state {
	case StateEditing:
		return nil
	case StateSaving:
		return ErrSaving
	default:
		return ErrNotOpen
	}
}

// edit applies fn to a copy of the draft and keeps the copy only when fn succeeds.
func (s *Session) edit(fn func(d *models.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	next := s.draft.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.draft = next
	s.dirty = true
	return nil
}

func (s *Session) requireOperatorLocked() error {
	if s.mode != access.ModeOperator {
		return ErrOperatorOnly
	}
	return nil
}
