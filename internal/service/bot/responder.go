package bot

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bellaleprasann20/Chat-App/internal/metrics"
	"github.com/bellaleprasann20/Chat-App/internal/model/chat"
	"github.com/bellaleprasann20/Chat-App/internal/model/persona"
)

// Source tells where a reply came from.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
	SourceDisabled Source = "disabled"
)

const (
	modeAI     = "ai"
	modeSimple = "simple"

	defaultTimeout = 10 * time.Second
)

// HistoryStore keeps the per-session turns the backend sees.
type HistoryStore interface {
	History(sessionID string) []chat.Turn
	AppendHistory(sessionID string, turns ...chat.Turn) bool
	ClearHistory(sessionID string)
}

// Reply is a generated bot message.
type Reply struct {
	Text   string
	Source Source
}

// Info summarises the responder configuration.
type Info struct {
	Enabled            bool   `json:"enabled"`
	HasExternalBackend bool   `json:"hasExternalBackend"`
	Mode               string `json:"mode"`
	Backend            string `json:"backend,omitempty"`
}

// Options configures a Responder. Backend may be nil for rule-only replies.
type Options struct {
	Enabled bool
	Backend Backend
	History HistoryStore
	Persona persona.Persona
	Timeout time.Duration
	Rand    *rand.Rand
	Logger  zerolog.Logger
}

// Responder produces bot replies, preferring the external backend and
// falling back to keyword rules.
type Responder struct {
	enabled bool
	backend Backend
	history HistoryStore
	system  string
	timeout time.Duration
	logger  zerolog.Logger

	randMu sync.Mutex
	rand   *rand.Rand
}

// NewResponder wires a responder from opts.
func NewResponder(opts Options) (*Responder, error) {
	if opts.History == nil {
		return nil, errors.New("bot responder requires a history store")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Responder{
		enabled: opts.Enabled,
		backend: opts.Backend,
		history: opts.History,
		system:  BuildSystemPrompt(opts.Persona),
		timeout: timeout,
		logger:  opts.Logger.With().Str("component", "bot").Logger(),
		rand:    rnd,
	}, nil
}

// Respond returns the reply to message within sessionID. It never fails: any
// backend problem degrades to the rule-based reply.
func (r *Responder) Respond(ctx context.Context, sessionID, message string) Reply {
	if !r.enabled {
		metrics.BotReplies.WithLabelValues(string(SourceDisabled)).Inc()
		return Reply{Text: DisabledReply, Source: SourceDisabled}
	}

	if r.backend != nil {
		text, err := r.generate(ctx, sessionID, message)
		if err == nil {
			metrics.BotReplies.WithLabelValues(string(SourceAI)).Inc()
			return Reply{Text: text, Source: SourceAI}
		}
		r.logger.Warn().Err(err).Str("session_id", sessionID).Msg("bot backend failed, using rules")
	}

	metrics.BotReplies.WithLabelValues(string(SourceFallback)).Inc()
	return Reply{Text: r.fallback(sessionID, message), Source: SourceFallback}
}

func (r *Responder) generate(ctx context.Context, sessionID, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	text, err := r.backend.GenerateReply(ctx, Request{
		System:  r.system,
		History: r.history.History(sessionID),
		Message: message,
	})
	metrics.BotBackendLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", &BackendError{Backend: r.backend.Name(), Err: err}
	}

	r.history.AppendHistory(sessionID,
		chat.Turn{Role: chat.RoleUser, Content: message},
		chat.Turn{Role: chat.RoleAssistant, Content: text},
	)
	return text, nil
}

func (r *Responder) fallback(sessionID, message string) string {
	historyLen := len(r.history.History(sessionID))
	category := classify(message, historyLen)
	if historyLen == 0 {
		r.history.AppendHistory(sessionID, chat.Turn{Role: chat.RoleUser, Content: message})
	}
	return r.pick(category.pool())
}

func (r *Responder) pick(options []string) string {
	r.randMu.Lock()
	defer r.randMu.Unlock()
	return options[r.rand.Intn(len(options))]
}

// ClearHistory forgets the conversation for sessionID.
func (r *Responder) ClearHistory(sessionID string) {
	r.history.ClearHistory(sessionID)
}

// Info reports whether the bot is on and which backend serves it.
func (r *Responder) Info() Info {
	info := Info{Enabled: r.enabled, Mode: modeSimple}
	if r.backend != nil {
		info.HasExternalBackend = true
		info.Mode = modeAI
		info.Backend = r.backend.Name()
	}
	return info
}
