package mirror

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edenspa/core/internal/client"
	"github.com/edenspa/core/internal/client/clienttest"
	"github.com/edenspa/core/internal/models"
)

func start(t *testing.T) (*Mirror, *clienttest.Transport, chan error) {
	t.Helper()
	tr := clienttest.New()
	m := New(tr)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	t.Cleanup(cancel)
	return m, tr, done
}

// push queues ev and waits until the mirror has applied it.
func push(t *testing.T, m *Mirror, tr *clienttest.Transport, ev client.Event) {
	t.Helper()
	changed := m.Changed()
	tr.Push(ev)
	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatalf("mirror did not apply %s", ev.Name)
	}
}

func snapshotEvent(name string, snap models.Snapshot) client.Event {
	c := snap.Clone()
	return client.Event{Name: name, Snapshot: &c}
}

func TestUninitializedUntilInitialState(t *testing.T) {
	m, tr, _ := start(t)

	if m.Initialized() {
		t.Fatal("mirror initialized before any event")
	}
	if _, ok := m.Snapshot(); ok {
		t.Fatal("snapshot available before initialState")
	}
	if m.Theme() != models.DefaultTheme {
		t.Fatal("uninitialized theme should be the built-in default")
	}

	doc := models.DefaultDocument().Public()
	push(t, m, tr, snapshotEvent(client.EventInitialState, doc))
	if !m.Initialized() {
		t.Fatal("mirror not initialized after initialState")
	}
	if err := m.WaitInitialized(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestStateUpdateReplacesWholeSnapshot(t *testing.T) {
	m, tr, _ := start(t)
	first := models.DefaultDocument().Public()
	push(t, m, tr, snapshotEvent(client.EventInitialState, first))

	second := models.Snapshot{BusinessName: "Lotus"}
	push(t, m, tr, snapshotEvent(client.EventStateUpdate, second))

	got, ok := m.Snapshot()
	if !ok {
		t.Fatal("snapshot missing")
	}
	if got.BusinessName != "Lotus" || len(got.Services) != 0 {
		t.Fatalf("snapshot was merged instead of replaced: %+v", got.Services)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	m, tr, _ := start(t)
	push(t, m, tr, snapshotEvent(client.EventInitialState, models.DefaultDocument().Public()))

	snap, _ := m.Snapshot()
	snap.Services[0].Name = "mutated"
	again, _ := m.Snapshot()
	if again.Services[0].Name == "mutated" {
		t.Fatal("Snapshot shares memory with the cache")
	}
}

func TestThemeFollowsDarkMode(t *testing.T) {
	m, tr, _ := start(t)
	snap := models.DefaultDocument().Public()
	snap.LightTheme.Primary = "#123456"
	push(t, m, tr, snapshotEvent(client.EventInitialState, snap))

	if m.Theme().Primary != "#123456" {
		t.Fatalf("theme primary = %q", m.Theme().Primary)
	}
	if !m.ToggleDarkMode() || m.Theme() != models.DarkTheme {
		t.Fatal("dark mode should override the document theme")
	}

	// dark mode survives updates and stays local
	push(t, m, tr, snapshotEvent(client.EventStateUpdate, snap))
	if m.Theme() != models.DarkTheme {
		t.Fatal("dark mode lost after stateUpdate")
	}
	if len(tr.Updates()) != 0 {
		t.Fatal("toggling dark mode sent an update")
	}
	if m.ToggleDarkMode() || m.Theme().Primary != "#123456" {
		t.Fatal("toggling back should restore the document theme")
	}
}

func TestUpdateErrorRecorded(t *testing.T) {
	m, tr, _ := start(t)
	push(t, m, tr, snapshotEvent(client.EventInitialState, models.DefaultDocument().Public()))
	push(t, m, tr, client.Event{Name: client.EventUpdateError, Error: "Failed to save changes."})

	if m.LastError() != "Failed to save changes." {
		t.Fatalf("last error = %q", m.LastError())
	}
	if !m.Initialized() {
		t.Fatal("updateError must not reset the mirror")
	}
	push(t, m, tr, snapshotEvent(client.EventStateUpdate, models.DefaultDocument().Public()))
	if m.LastError() != "" {
		t.Fatal("error not cleared by next snapshot")
	}
}

func TestDisconnectReturnsToUninitialized(t *testing.T) {
	m, tr, _ := start(t)
	push(t, m, tr, snapshotEvent(client.EventInitialState, models.DefaultDocument().Public()))
	push(t, m, tr, client.Event{Name: client.EventDisconnect})
	if m.Initialized() {
		t.Fatal("mirror still initialized after disconnect")
	}

	push(t, m, tr, snapshotEvent(client.EventInitialState, models.DefaultDocument().Public()))
	if !m.Initialized() {
		t.Fatal("mirror not re-initialized after fresh initialState")
	}
}

func TestClosedStreamEndsRun(t *testing.T) {
	m, tr, done := start(t)
	push(t, m, tr, snapshotEvent(client.EventInitialState, models.DefaultDocument().Public()))

	_ = tr.Close()
	select {
	case err := <-done:
		if !errors.Is(err, client.ErrNotConnected) {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after close")
	}
	if m.Initialized() {
		t.Fatal("mirror still initialized after transport closed")
	}
}

func TestWaitInitializedHonoursContext(t *testing.T) {
	m, _, _ := start(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := m.WaitInitialized(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}
