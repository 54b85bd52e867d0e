package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/alicebob/miniredis/v2"
	"github.com/edenspa/core/internal/client"
	"github.com/edenspa/core/internal/models"
	"github.com/edenspa/core/internal/modules/access"
	"github.com/edenspa/core/internal/modules/document"
	"github.com/edenspa/core/internal/pkg/jwt"
	pkgredis "github.com/edenspa/core/internal/pkg/redis"
)

const waitTimeout = 2 * time.Second

type memPersister struct {
	mu   sync.Mutex
	data []byte
	fail bool
}

func (p *memPersister) Load(context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return nil, document.ErrNotFound
	}
	return p.data, nil
}

func (p *memPersister) Save(_ context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("disk full")
	}
	p.data = append([]byte(nil), data...)
	return nil
}

func (p *memPersister) setFail(v bool) {
	p.mu.Lock()
	p.fail = v
	p.mu.Unlock()
}

type fixture struct {
	hub       *Hub
	store     *document.Store
	persister *memPersister
	cancel    context.CancelFunc
	stopped   chan struct{}
}

func newFixture(t *testing.T, operatorSecret string, mutate func(*Options)) *fixture {
	t.Helper()
	p := &memPersister{}
	store := document.NewStore(p, nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("store load: %v", err)
	}
	opts := Options{
		Store:  store,
		Access: access.NewService(store, operatorSecret, nil),
	}
	if mutate != nil {
		mutate(&opts)
	}
	hub := NewHub(opts)

	ctx, cancel := context.WithCancel(context.Background())
	f := &fixture{hub: hub, store: store, persister: p, cancel: cancel, stopped: make(chan struct{})}
	go func() {
		hub.Run(ctx)
		close(f.stopped)
	}()
	t.Cleanup(f.stop)
	return f
}

func (f *fixture) stop() {
	f.cancel()
	<-f.stopped
}

func (f *fixture) connect(t *testing.T) *LocalConn {
	t.Helper()
	conn, err := f.hub.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	ev := next(t, conn)
	if ev.Name != client.EventInitialState || ev.Snapshot == nil {
		t.Fatalf("first event = %+v, want initialState", ev)
	}
	return conn
}

func next(t *testing.T, conn *LocalConn) client.Event {
	t.Helper()
	select {
	case ev, ok := <-conn.Events():
		if !ok {
			t.Fatal("event stream closed")
		}
		return ev
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for event")
	}
	return client.Event{}
}

func pending(conn *LocalConn) (client.Event, bool) {
	select {
	case ev, ok := <-conn.Events():
		return ev, ok
	default:
		return client.Event{}, false
	}
}

func waitClosed(t *testing.T, conn *LocalConn) {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case _, ok := <-conn.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event stream not closed")
		}
	}
}

func partial(t *testing.T, kv map[string]any) map[string]json.RawMessage {
	t.Helper()
	p, err := document.ToPartial(kv)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func update(t *testing.T, conn *LocalConn, kv map[string]any) client.UpdateResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	res, err := conn.UpdateState(ctx, partial(t, kv))
	if err != nil {
		t.Fatalf("UpdateState: %v", err)
	}
	return res
}

func authenticate(t *testing.T, conn *LocalConn, credential string) client.AuthResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	res, err := conn.Authenticate(ctx, credential)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	return res
}

func TestFreshStoreAuthenticationScenario(t *testing.T) {
	f := newFixture(t, "", nil)

	conn, err := f.hub.Connect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	ev := next(t, conn)
	if ev.Name != client.EventInitialState {
		t.Fatalf("first event = %q", ev.Name)
	}
	payload, _ := json.Marshal(ev.Snapshot)
	if strings.Contains(string(payload), models.PasswordKey) {
		t.Fatal("initialState carried the tenant password")
	}

	if res := authenticate(t, conn, "2002"); !res.Success || res.Mode != access.ModeTenant {
		t.Fatalf("authenticate(2002) = %+v", res)
	}
	if res := authenticate(t, conn, "wrong"); res.Success || res.Mode != "" {
		t.Fatalf("authenticate(wrong) = %+v", res)
	}
}

func TestAuthenticateRepliesOnlyToCaller(t *testing.T) {
	f := newFixture(t, "master", nil)
	a := f.connect(t)
	b := f.connect(t)

	if res := authenticate(t, a, "master"); !res.Success || res.Mode != access.ModeOperator {
		t.Fatalf("operator auth = %+v", res)
	}
	if res := authenticate(t, a, ""); res.Success {
		t.Fatal("empty credential accepted")
	}
	if res := authenticate(t, a, "2002"); res.Mode != access.ModeTenant {
		t.Fatalf("tenant auth = %+v", res)
	}

	// the next thing b sees is the broadcast, nothing from a's logins
	update(t, a, map[string]any{"tagline": "after auth"})
	if ev := next(t, b); ev.Name != client.EventStateUpdate {
		t.Fatalf("b saw %q before the broadcast", ev.Name)
	}
}

func TestUpdateBroadcastsToEverySession(t *testing.T) {
	f := newFixture(t, "", nil)
	a := f.connect(t)
	b := f.connect(t)
	before := f.store.Snapshot()

	res := update(t, a, map[string]any{"businessName": "New Name"})
	if !res.Success {
		t.Fatalf("update result = %+v", res)
	}

	// the ack follows the broadcast, so a's copy is already queued
	evA, ok := pending(a)
	if !ok || evA.Name != client.EventStateUpdate {
		t.Fatalf("sender stateUpdate not queued before ack: %+v", evA)
	}
	evB := next(t, b)
	if evB.Name != client.EventStateUpdate {
		t.Fatalf("b event = %q", evB.Name)
	}

	want := before
	want.BusinessName = "New Name"
	for name, ev := range map[string]client.Event{"a": evA, "b": evB} {
		got, _ := json.Marshal(ev.Snapshot)
		exp, _ := json.Marshal(want)
		if string(got) != string(exp) {
			t.Fatalf("%s snapshot mismatch:\n got %s\nwant %s", name, got, exp)
		}
		if strings.Contains(string(got), models.PasswordKey) {
			t.Fatalf("%s stateUpdate carried the tenant password", name)
		}
	}
}

func TestPasswordChangeNeverBroadcast(t *testing.T) {
	f := newFixture(t, "", nil)
	a := f.connect(t)

	if res := update(t, a, map[string]any{"userPassword": "7777"}); !res.Success {
		t.Fatalf("update = %+v", res)
	}
	ev := next(t, a)
	payload, _ := json.Marshal(ev.Snapshot)
	if strings.Contains(string(payload), "7777") || strings.Contains(string(payload), models.PasswordKey) {
		t.Fatal("password leaked in stateUpdate")
	}
	if res := authenticate(t, a, "2002"); res.Success {
		t.Fatal("old password still accepted")
	}
	if res := authenticate(t, a, "7777"); !res.Success {
		t.Fatal("new password rejected")
	}
}

func TestFailedWriteNotifiesOnlySender(t *testing.T) {
	f := newFixture(t, "", nil)
	a := f.connect(t)
	b := f.connect(t)
	before := f.store.Read()

	f.persister.setFail(true)
	res := update(t, a, map[string]any{"businessName": "Broken"})
	if res.Success || res.Error != msgSaveFailed {
		t.Fatalf("update result = %+v", res)
	}
	ev := next(t, a)
	if ev.Name != client.EventUpdateError || ev.Error != msgSaveFailed {
		t.Fatalf("sender event = %+v", ev)
	}
	if got := f.store.Read(); got.BusinessName != before.BusinessName {
		t.Fatal("document changed after failed write")
	}

	f.persister.setFail(false)
	update(t, a, map[string]any{"businessName": "Fixed"})
	if ev := next(t, b); ev.Name != client.EventStateUpdate || ev.Snapshot.BusinessName != "Fixed" {
		t.Fatalf("b first event after failure = %+v", ev)
	}
}

func TestInvalidPartialRejected(t *testing.T) {
	f := newFixture(t, "", nil)
	a := f.connect(t)

	res := update(t, a, map[string]any{"services": "nope"})
	if res.Success || res.Error != msgInvalidUpdate {
		t.Fatalf("update result = %+v", res)
	}
	if ev := next(t, a); ev.Name != client.EventUpdateError {
		t.Fatalf("event = %+v", ev)
	}
}

func TestUpdatesAreSerializedInOneOrder(t *testing.T) {
	f := newFixture(t, "", nil)
	a := f.connect(t)
	b := f.connect(t)
	observer := f.connect(t)

	const n = 15
	var wg sync.WaitGroup
	for _, pair := range []struct {
		conn   *LocalConn
		prefix string
	}{{a, "a"}, {b, "b"}} {
		wg.Add(1)
		go func(conn *LocalConn, prefix string) {
			defer wg.Done()
			for i := 0; i < n; i++ {
				res, err := conn.UpdateState(context.Background(), partial(t, map[string]any{"tagline": fmt.Sprintf("%s-%d", prefix, i)}))
				if err != nil || !res.Success {
					t.Errorf("update %s-%d: %+v %v", prefix, i, res, err)
				}
			}
		}(pair.conn, pair.prefix)
	}
	wg.Wait()

	sequences := make([][]string, 0, 3)
	for _, conn := range []*LocalConn{a, b, observer} {
		seq := make([]string, 0, 2*n)
		for i := 0; i < 2*n; i++ {
			seq = append(seq, next(t, conn).Snapshot.Tagline)
		}
		sequences = append(sequences, seq)
	}
	for i := 1; i < len(sequences); i++ {
		if strings.Join(sequences[i], ",") != strings.Join(sequences[0], ",") {
			t.Fatalf("sessions observed different orders:\n%v\n%v", sequences[0], sequences[i])
		}
	}
	if last := sequences[0][2*n-1]; f.store.Snapshot().Tagline != last {
		t.Fatalf("store tagline = %q, last broadcast = %q", f.store.Snapshot().Tagline, last)
	}
}

func TestUpdateTokenRequired(t *testing.T) {
	signer := jwt.NewSigner("test-secret", time.Hour)
	f := newFixture(t, "", func(o *Options) {
		o.Signer = signer
		o.RequireToken = true
	})
	a := f.connect(t)

	res := update(t, a, map[string]any{"tagline": "anonymous"})
	if res.Success || res.Error != msgNotAuthorized {
		t.Fatalf("unauthenticated update = %+v", res)
	}
	if ev := next(t, a); ev.Name != client.EventUpdateError {
		t.Fatalf("event = %+v", ev)
	}

	auth := authenticate(t, a, "2002")
	if auth.Token == "" {
		t.Fatal("expected capability token")
	}
	claims, err := signer.Parse(auth.Token)
	if err != nil || claims.Mode != string(access.ModeTenant) {
		t.Fatalf("token claims = %+v, %v", claims, err)
	}
	if res := update(t, a, map[string]any{"tagline": "signed"}); !res.Success {
		t.Fatalf("authenticated update = %+v", res)
	}
}

func TestNoTokenIssuedWithoutSigner(t *testing.T) {
	f := newFixture(t, "", nil)
	a := f.connect(t)
	if res := authenticate(t, a, "2002"); res.Token != "" {
		t.Fatal("token issued without signer")
	}
}

func TestDecodeUpdate(t *testing.T) {
	p, token, err := decodeUpdate([]byte(`{"token":"abc","state":{"tagline":"x"}}`))
	if err != nil || token != "abc" || string(p["tagline"]) != `"x"` {
		t.Fatalf("envelope = %v %q %v", p, token, err)
	}
	if _, ok := p["token"]; ok {
		t.Fatal("envelope token leaked into partial")
	}

	p, token, err = decodeUpdate([]byte(`{"tagline":"y"}`))
	if err != nil || token != "" || string(p["tagline"]) != `"y"` {
		t.Fatalf("bare = %v %q %v", p, token, err)
	}

	for _, bad := range []string{`[]`, `null`, `"str"`, `{"state":5}`, `{"state":null}`} {
		if _, _, err := decodeUpdate([]byte(bad)); err == nil {
			t.Errorf("decodeUpdate(%s) accepted", bad)
		}
	}
}

func TestParseUpdatePayloadFromSocketValue(t *testing.T) {
	p, _, err := parseUpdatePayload(map[string]any{"businessName": "Socket"})
	if err != nil || string(p["businessName"]) != `"Socket"` {
		t.Fatalf("map payload = %v %v", p, err)
	}
	if _, _, err := parseUpdatePayload(nil); err == nil {
		t.Fatal("nil payload accepted")
	}
}

func TestSplitAck(t *testing.T) {
	var got []any
	var ack func([]any, error) = func(args []any, _ error) { got = args }

	payload, reply := splitAck([]any{"2002", ack})
	if payload != "2002" || reply == nil {
		t.Fatalf("payload = %v, reply nil = %v", payload, reply == nil)
	}
	reply(client.AuthResult{Success: true})
	if len(got) != 1 {
		t.Fatalf("ack args = %v", got)
	}

	payload, reply = splitAck([]any{"only"})
	if payload != "only" || reply != nil {
		t.Fatal("unexpected ack without callback")
	}
}

func TestNormalizeToken(t *testing.T) {
	if got := normalizeToken("  Bearer abc "); got != "abc" {
		t.Fatalf("normalizeToken = %q", got)
	}
	if got := normalizeToken("raw"); got != "raw" {
		t.Fatalf("normalizeToken = %q", got)
	}
}

func TestCloseEndsSession(t *testing.T) {
	f := newFixture(t, "", nil)
	a := f.connect(t)
	_ = f.connect(t)

	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	waitClosed(t, a)
	if f.hub.ClientCount() != 1 {
		t.Fatalf("online = %d, want 1", f.hub.ClientCount())
	}
	if _, err := a.UpdateState(context.Background(), partial(t, map[string]any{"tagline": "x"})); !errors.Is(err, client.ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
}

func TestShutdownDropsSessions(t *testing.T) {
	f := newFixture(t, "", nil)
	a := f.connect(t)

	f.stop()
	waitClosed(t, a)
	if _, err := f.hub.Connect(context.Background()); !errors.Is(err, ErrHubClosed) {
		t.Fatalf("Connect after stop: %v", err)
	}
	if _, err := a.Authenticate(context.Background(), "2002"); !errors.Is(err, client.ErrNotConnected) {
		t.Fatalf("Authenticate after stop: %v", err)
	}
}

func TestLaggingSessionIsDisconnected(t *testing.T) {
	f := newFixture(t, "", nil)
	writer := f.connect(t)
	lagging := f.connect(t)

	for i := 0; i < localEventBuffer+5; i++ {
		update(t, writer, map[string]any{"tagline": fmt.Sprintf("t-%d", i)})
		<-writer.Events()
	}
	waitClosed(t, lagging)
	if f.hub.ClientCount() != 1 {
		t.Fatalf("online = %d, want 1", f.hub.ClientCount())
	}
}

func TestDailyOnlineStats(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := pkgredis.Connect("redis://" + mr.Addr())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	clk := fakeclock.NewFakeClock(time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC))

	f := newFixture(t, "", func(o *Options) {
		o.Redis = rc
		o.Clock = clk
	})
	a := f.connect(t)
	_ = f.connect(t)

	stats := f.hub.Stats(context.Background())
	if stats.Online != 2 || stats.Peak != 2 || stats.Date != "5-1-24" {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.TodayMax == nil || *stats.TodayMax != 2 {
		t.Fatalf("today max = %v", stats.TodayMax)
	}
	if stats.TodayTotal == nil || *stats.TodayTotal != 2 {
		t.Fatalf("today total = %v", stats.TodayTotal)
	}

	_ = a.Close()
	waitClosed(t, a)
	_ = f.connect(t)

	stats = f.hub.Stats(context.Background())
	if *stats.TodayMax != 2 || *stats.TodayTotal != 3 || stats.Peak != 2 {
		t.Fatalf("stats after reconnect = %+v", stats)
	}
	if got := mr.HGet(redisKeyMaxOnlineCount, "5-1-24"); got != "2" {
		t.Fatalf("redis max = %q", got)
	}
}

func TestStatsWithoutRedis(t *testing.T) {
	f := newFixture(t, "", nil)
	_ = f.connect(t)
	stats := f.hub.Stats(context.Background())
	if stats.Online != 1 || stats.TodayMax != nil || stats.TodayTotal != nil {
		t.Fatalf("stats = %+v", stats)
	}
}
