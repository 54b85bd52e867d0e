// Package autolock closes an open draft after a period without panel activity.
package autolock

import (
	"sync"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/edenspa/core/internal/models"
)

// Scope says where an activity event was observed.
type Scope int

const (
	ScopePage Scope = iota
	ScopePanel
)

// Activity is a kind of user input.
type Activity int

const (
	PointerMove Activity = iota
	KeyPress
	Click
	Scroll
)

func (a Activity) valid() bool {
	return a >= PointerMove && a <= Scroll
}

// Lockable is the session the supervisor guards.
type Lockable interface {
	Discard()
	Done() <-chan struct{}
}

// TimeoutSource provides the snapshot carrying the idle window.
type TimeoutSource interface {
	Snapshot() (models.Snapshot, bool)
}

type Supervisor struct {
	session Lockable
	source  TimeoutSource
	clock   clock.Clock

	mu      sync.Mutex
	window  time.Duration
	gen     uint64
	timer   clock.Timer
	stop    chan struct{}
	expired func()
}

func New(session Lockable, source TimeoutSource, clk clock.Clock) *Supervisor {
	if clk == nil {
		clk = clock.NewClock()
	}
	return &Supervisor{session: session, source: source, clock: clk}
}

// OnExpire registers fn to run after an idle expiry has closed the session.
func (s *Supervisor) OnExpire(fn func()) {
	s.mu.Lock()
	s.expired = fn
	s.mu.Unlock()
}

// Window reads the idle window from the current snapshot, falling back to the
// default before the first snapshot. Zero means disabled.
func (s *Supervisor) Window() time.Duration {
	seconds := models.DefaultInactivityTimeout
	if snap, ok := s.source.Snapshot(); ok {
		seconds = snap.InactivityTimeout
	}
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// Start arms the timer for the session's current draft. It reports false when
// auto-lock is disabled. The timer is cancelled when the draft closes.
func (s *Supervisor) Start() bool {
	window := s.Window()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	if window == 0 {
		return false
	}
	s.window = window
	s.armLocked(s.session.Done())
	return true
}

// Observe records user activity. Only panel-scoped activity restarts the
// countdown, using the window of the latest snapshot. A window that dropped
// to zero stops the countdown.
func (s *Supervisor) Observe(scope Scope, kind Activity) {
	if scope != ScopePanel || !kind.valid() {
		return
	}
	window := s.Window()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		return
	}
	s.cancelLocked()
	if window == 0 {
		return
	}
	s.window = window
	s.armLocked(s.session.Done())
}

// Active reports whether a countdown is running.
func (s *Supervisor) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Stop cancels the countdown. No expiry fires afterwards.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *Supervisor) armLocked(done <-chan struct{}) {
	s.gen++
	gen := s.gen
	timer := s.clock.NewTimer(s.window)
	stop := make(chan struct{})
	s.timer = timer
	s.stop = stop

	go func() {
		select {
		case <-timer.C():
			s.expire(gen)
		case <-done:
			s.release(gen)
		case <-stop:
		}
	}()
}

func (s *Supervisor) cancelLocked() {
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	close(s.stop)
	s.timer = nil
	s.stop = nil
	s.gen++
}

// release drops a countdown whose draft closed for another reason.
func (s *Supervisor) release(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.cancelLocked()
	}
}

func (s *Supervisor) expire(gen uint64) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.stop = nil
	s.gen++
	fn := s.expired
	s.mu.Unlock()

	s.session.Discard()
	if fn != nil {
		fn()
	}
}
