package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/bellaleprasann20/Chat-App/internal/config"
	"github.com/bellaleprasann20/Chat-App/internal/metrics"
	"github.com/bellaleprasann20/Chat-App/internal/model/chat"
	"github.com/bellaleprasann20/Chat-App/internal/service/bot"
)

// MaxMessageLength bounds a single chat message in characters.
const MaxMessageLength = 2000

var (
	ErrStopped         = errors.New("matchmaking engine stopped")
	ErrNotInSession    = errors.New("you are not in a chat")
	ErrAlreadyChatting = errors.New("you are already in a chat")
	ErrMessageTooLong  = fmt.Errorf("message is longer than %d characters", MaxMessageLength)
	ErrSuperseded      = errors.New("connection replaced by a newer one")
)

// clientErrors are reported to the sender verbatim; anything else is logged
// and replaced by a generic message.
var clientErrors = []error{ErrNotInSession, ErrAlreadyChatting, ErrMessageTooLong, ErrSuperseded}

// SessionStore is the state the Engine drives.
type SessionStore interface {
	Now() time.Time
	Enqueue(userID, connRef, displayName string, interests []string) error
	Dequeue(userID string) bool
	Waiting(userID string) (chat.WaitingEntry, bool)
	QueuePosition(userID string) int
	CreateSession(participantA, participantB string, isBot bool) (string, error)
	EndSession(userID string) (chat.EndedSession, bool)
	Session(sessionID string) (chat.Session, bool)
	SessionIDForUser(userID string) (string, bool)
	IsBotSession(sessionID string) bool
	Stats() chat.Stats
}

// Matcher picks a partner for a waiting user.
type Matcher interface {
	FindMatch(userID string) (chat.WaitingEntry, bool)
}

// Responder answers messages in bot sessions.
type Responder interface {
	Respond(ctx context.Context, sessionID, message string) bot.Reply
	ClearHistory(sessionID string)
	Info() bot.Info
}

// Options wires an Engine.
type Options struct {
	Store     SessionStore
	Matcher   Matcher
	Bot       Responder
	Transport Transport
	Scheduler Scheduler
	Timings   config.MatchConfig
	Rand      *rand.Rand
	Logger    zerolog.Logger
}

// Engine serializes every matchmaking workflow on one event loop.
type Engine struct {
	store     SessionStore
	matcher   Matcher
	bot       Responder
	transport Transport
	scheduler Scheduler
	timings   config.MatchConfig
	rand      *rand.Rand
	logger    zerolog.Logger

	tasks   chan func()
	stopped chan struct{}
	running sync.Once
	workers sync.WaitGroup

	// loop-owned
	ctx      context.Context
	conns    map[string]Client
	replaced map[string]struct{}
}

// NewEngine validates opts and returns an Engine ready to Run.
func NewEngine(opts Options) (*Engine, error) {
	switch {
	case opts.Store == nil:
		return nil, errors.New("matchmaking: store is required")
	case opts.Matcher == nil:
		return nil, errors.New("matchmaking: matcher is required")
	case opts.Bot == nil:
		return nil, errors.New("matchmaking: bot responder is required")
	case opts.Transport == nil:
		return nil, errors.New("matchmaking: transport is required")
	}

	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = TimerScheduler{}
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Engine{
		store:     opts.Store,
		matcher:   opts.Matcher,
		bot:       opts.Bot,
		transport: opts.Transport,
		scheduler: scheduler,
		timings:   opts.Timings,
		rand:      rnd,
		logger:    opts.Logger.With().Str("component", "matchmaking").Logger(),
		tasks:     make(chan func()),
		stopped:   make(chan struct{}),
		ctx:       context.Background(),
		conns:     make(map[string]Client),
		replaced:  make(map[string]struct{}),
	}, nil
}

// Run executes queued work until ctx is cancelled. It must be called once.
func (e *Engine) Run(ctx context.Context) error {
	e.ctx = ctx
	defer close(e.stopped)

	e.logger.Info().Msg("matchmaking loop started")
	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("matchmaking loop stopped")
			return ctx.Err()
		case task := <-e.tasks:
			e.exec(task)
		}
	}
}

// Wait blocks until background bot calls have returned.
func (e *Engine) Wait() {
	e.workers.Wait()
}

func (e *Engine) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("matchmaking task panicked")
		}
	}()
	task()
}

// do runs fn on the loop and waits for it. It must never be called from the
// loop itself.
func (e *Engine) do(fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case e.tasks <- task:
	case <-e.stopped:
		return ErrStopped
	}
	<-finished
	return nil
}

// handle runs a client operation behind the error boundary.
func (e *Engine) handle(client Client, op string, fn func() error) error {
	var opErr error
	err := e.do(func() {
		defer func() {
			if r := recover(); r != nil {
				opErr = fmt.Errorf("%s panicked: %v", op, r)
				e.fail(client, op, opErr)
			}
		}()

		if err := e.claim(client, op); err != nil {
			opErr = err
			e.fail(client, op, err)
			return
		}
		if err := fn(); err != nil {
			opErr = err
			e.fail(client, op, err)
		}
		e.refreshGauges()
	})
	if err != nil {
		return err
	}
	return opErr
}

// claim registers client as the live connection for its user. Operations
// from a superseded connection are refused until it disconnects.
func (e *Engine) claim(client Client, op string) error {
	if _, gone := e.replaced[client.ConnID]; gone {
		return ErrSuperseded
	}
	current, ok := e.conns[client.UserID]
	switch {
	case !ok:
		e.conns[client.UserID] = client
	case current.ConnID != client.ConnID && op == opConnect:
		e.releaseUser(current, metricsReasonReplaced)
		e.transport.Emit(current.ConnID, EventError, ErrorPayload{Message: ErrSuperseded.Error()})
		e.replaced[current.ConnID] = struct{}{}
		e.conns[client.UserID] = client
	case current.ConnID != client.ConnID:
		return ErrSuperseded
	}
	return nil
}

func (e *Engine) fail(client Client, op string, err error) {
	for _, public := range clientErrors {
		if errors.Is(err, public) {
			e.logger.Debug().Err(err).Str("op", op).Str("user_id", client.UserID).Msg("request rejected")
			e.transport.Emit(client.ConnID, EventError, ErrorPayload{Message: public.Error()})
			return
		}
	}
	e.logger.Error().Err(err).Str("op", op).Str("user_id", client.UserID).Msg("matchmaking operation failed")
	e.transport.Emit(client.ConnID, EventError, ErrorPayload{Message: genericErrorMessage})
}

func (e *Engine) refreshGauges() {
	stats := e.store.Stats()
	metrics.WaitingUsers.Set(float64(stats.Waiting))
	metrics.ActiveSessions.WithLabelValues(kindHuman).Set(float64(stats.ActiveChats - stats.BotChats))
	metrics.ActiveSessions.WithLabelValues(kindBot).Set(float64(stats.BotChats))
}

func (e *Engine) newMessage(content string, isBot, isSelf bool) ChatMessage {
	return ChatMessage{
		ID:        ulid.Make().String(),
		Content:   content,
		IsBot:     isBot,
		IsSelf:    isSelf,
		Timestamp: e.store.Now(),
	}
}

// replyDelay draws a delay in [ReplyDelayMin, ReplyDelayMax]. Loop only.
func (e *Engine) replyDelay() time.Duration {
	span := e.timings.ReplyDelayMax - e.timings.ReplyDelayMin
	if span <= 0 {
		return e.timings.ReplyDelayMin
	}
	return e.timings.ReplyDelayMin + time.Duration(e.rand.Int63n(int64(span)+1))
}

// after schedules fn to run on the loop once d has elapsed.
func (e *Engine) after(d time.Duration, fn func()) {
	e.scheduler.AfterFunc(d, func() {
		if err := e.do(fn); err != nil {
			e.logger.Debug().Err(err).Msg("dropping scheduled task")
		}
	})
}

// liveSession reports whether client still owns sessionID.
func (e *Engine) liveSession(client Client, sessionID string) bool {
	current, ok := e.conns[client.UserID]
	if !ok || current.ConnID != client.ConnID {
		return false
	}
	id, ok := e.store.SessionIDForUser(client.UserID)
	return ok && id == sessionID
}

// Stats reports queue and session counters.
func (e *Engine) Stats() chat.Stats {
	return e.store.Stats()
}

// IsUserInSession reports whether userID is chatting.
func (e *Engine) IsUserInSession(userID string) bool {
	_, ok := e.store.SessionIDForUser(userID)
	return ok
}

// SessionForUser returns the live session of userID.
func (e *Engine) SessionForUser(userID string) (chat.Session, bool) {
	id, ok := e.store.SessionIDForUser(userID)
	if !ok {
		return chat.Session{}, false
	}
	return e.store.Session(id)
}

// IsBotSession reports whether sessionID is a live bot session.
func (e *Engine) IsBotSession(sessionID string) bool {
	return e.store.IsBotSession(sessionID)
}

// BotInfo describes the bot responder.
func (e *Engine) BotInfo() bot.Info {
	return e.bot.Info()
}
