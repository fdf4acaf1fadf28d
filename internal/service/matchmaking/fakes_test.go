package matchmaking

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bellaleprasann20/Chat-App/internal/config"
	"github.com/bellaleprasann20/Chat-App/internal/service/bot"
	chatstore "github.com/bellaleprasann20/Chat-App/internal/service/chat"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeTimer struct {
	delay time.Duration
	fn    func()
	fired bool
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	s.timers = append(s.timers, &fakeTimer{delay: d, fn: f})
	s.mu.Unlock()
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *fakeScheduler) delay(i int) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[i].delay
}

// fire runs timer i on the calling goroutine, at most once.
func (s *fakeScheduler) fire(i int) {
	s.mu.Lock()
	timer := s.timers[i]
	if timer.fired {
		s.mu.Unlock()
		return
	}
	timer.fired = true
	s.mu.Unlock()
	timer.fn()
}

type sentEvent struct {
	Event   string
	Payload any
}

type fakeTransport struct {
	mu     sync.Mutex
	inbox  map[string][]sentEvent
	groups map[string]map[string]struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		inbox:  make(map[string][]sentEvent),
		groups: make(map[string]map[string]struct{}),
	}
}

func (f *fakeTransport) Emit(connID, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbox[connID] = append(f.inbox[connID], sentEvent{Event: event, Payload: payload})
}

func (f *fakeTransport) Join(connID, group string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groups[group] == nil {
		f.groups[group] = make(map[string]struct{})
	}
	f.groups[group][connID] = struct{}{}
}

func (f *fakeTransport) Leave(connID, group string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.groups[group], connID)
	if len(f.groups[group]) == 0 {
		delete(f.groups, group)
	}
}

func (f *fakeTransport) BroadcastExcept(group, exceptConnID, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for connID := range f.groups[group] {
		if connID != exceptConnID {
			f.inbox[connID] = append(f.inbox[connID], sentEvent{Event: event, Payload: payload})
		}
	}
}

func (f *fakeTransport) Broadcast(group, event string, payload any) {
	f.BroadcastExcept(group, "", event, payload)
}

func (f *fakeTransport) events(connID string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentEvent(nil), f.inbox[connID]...)
}

func (f *fakeTransport) last(connID string) sentEvent {
	events := f.events(connID)
	if len(events) == 0 {
		return sentEvent{}
	}
	return events[len(events)-1]
}

func (f *fakeTransport) members(group string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.groups[group])
}

type stubBot struct {
	mu       sync.Mutex
	cleared  []string
	prompts  []string
	disabled bool
}

func (b *stubBot) Respond(_ context.Context, sessionID, message string) bot.Reply {
	b.mu.Lock()
	b.prompts = append(b.prompts, message)
	b.mu.Unlock()
	return bot.Reply{Text: "bot:" + message, Source: bot.SourceFallback}
}

func (b *stubBot) ClearHistory(sessionID string) {
	b.mu.Lock()
	b.cleared = append(b.cleared, sessionID)
	b.mu.Unlock()
}

func (b *stubBot) Info() bot.Info {
	return bot.Info{Enabled: !b.disabled, Mode: "simple"}
}

func (b *stubBot) clearedSessions() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.cleared...)
}

type harness struct {
	engine    *Engine
	store     *chatstore.Store
	clock     *fakeClock
	scheduler *fakeScheduler
	transport *fakeTransport
	bot       *stubBot
}

var testTimings = config.MatchConfig{
	BotFallback:   10 * time.Second,
	GreetingDelay: time.Second,
	ReplyDelayMin: time.Second,
	ReplyDelayMax: 2 * time.Second,
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, nil, nil)
}

func newHarnessWith(t *testing.T, matcher Matcher, newBot func(*chatstore.Store) Responder) *harness {
	t.Helper()

	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := chatstore.NewStore(chatstore.WithClock(clock.Now))
	if matcher == nil {
		matcher = chatstore.NewMatcher(store)
	}
	var responder Responder = &stubBot{}
	if newBot != nil {
		responder = newBot(store)
	}
	h := &harness{
		store:     store,
		clock:     clock,
		scheduler: &fakeScheduler{},
		transport: newFakeTransport(),
	}
	if stub, ok := responder.(*stubBot); ok {
		h.bot = stub
	}

	engine, err := NewEngine(Options{
		Store:     store,
		Matcher:   matcher,
		Bot:       responder,
		Transport: h.transport,
		Scheduler: h.scheduler,
		Timings:   testTimings,
		Rand:      rand.New(rand.NewSource(1)),
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	h.engine = engine

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = engine.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		engine.Wait()
	})
	return h
}

func client(name string) Client {
	return Client{ConnID: "conn-" + name, UserID: "user-" + name, DisplayName: name}
}

func (h *harness) waitForTimers(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.scheduler.count() >= n }, time.Second, 5*time.Millisecond)
}

func (h *harness) waitForEvent(t *testing.T, connID, event string, count int) {
	t.Helper()
	require.Eventually(t, func() bool {
		n := 0
		for _, ev := range h.transport.events(connID) {
			if ev.Event == event {
				n++
			}
		}
		return n >= count
	}, time.Second, 5*time.Millisecond)
}
