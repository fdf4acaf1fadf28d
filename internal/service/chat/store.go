package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bellaleprasann20/Chat-App/internal/model/chat"
)

var (
	ErrAlreadyInSession = errors.New("participant already in a session")
	ErrSelfMatch        = errors.New("participant cannot be matched with itself")
	ErrUserRequired     = errors.New("user id is required")
)

const (
	humanSessionPrefix = "random_"
	botSessionPrefix   = "bot_"
)

// Store is the single source of truth for waiting users, live sessions, the
// user→session index and bot conversation history. Each method is atomic;
// multi-step workflows are serialized by the caller.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time
	ids func() string

	waiting     map[string]chat.WaitingEntry
	order       []string
	sessions    map[string]chat.Session
	userSession map[string]string
	history     map[string][]chat.Turn
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used to stamp entries and sessions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the random part of generated session ids.
func WithIDGenerator(ids func() string) Option {
	return func(s *Store) { s.ids = ids }
}

// NewStore bootstraps an empty in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:         time.Now,
		ids:         uuid.NewString,
		waiting:     make(map[string]chat.WaitingEntry),
		sessions:    make(map[string]chat.Session),
		userSession: make(map[string]string),
		history:     make(map[string][]chat.Turn),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now exposes the store clock so the matcher scores against the same time base.
func (s *Store) Now() time.Time {
	return s.now()
}

// Enqueue inserts or replaces the waiting entry for userID. A replaced entry
// keeps its queue position but is restamped.
func (s *Store) Enqueue(userID, connRef, displayName string, interests []string) error {
	if userID == "" {
		return ErrUserRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.userSession[userID]; ok {
		return ErrAlreadyInSession
	}

	if _, exists := s.waiting[userID]; !exists {
		s.order = append(s.order, userID)
	}
	s.waiting[userID] = chat.WaitingEntry{
		UserID:      userID,
		ConnRef:     connRef,
		DisplayName: displayName,
		Interests:   append([]string(nil), interests...),
		EnqueuedAt:  s.now(),
	}
	return nil
}

// Dequeue removes the waiting entry and reports whether one existed.
func (s *Store) Dequeue(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dequeueLocked(userID)
}

func (s *Store) dequeueLocked(userID string) bool {
	if _, ok := s.waiting[userID]; !ok {
		return false
	}
	delete(s.waiting, userID)
	for i, id := range s.order {
		if id == userID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Waiting returns the entry for userID if the user is queued.
func (s *Store) Waiting(userID string) (chat.WaitingEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.waiting[userID]
	return entry, ok
}

// ListWaiting snapshots the queue in insertion order.
func (s *Store) ListWaiting() []chat.WaitingEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]chat.WaitingEntry, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, s.waiting[id])
	}
	return entries
}

// QueuePosition returns the 1-based queue position of userID, or 0.
func (s *Store) QueuePosition(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, id := range s.order {
		if id == userID {
			return i + 1
		}
	}
	return 0
}

// CreateSession pairs two participants. For bot sessions participantB is
// forced to the bot sentinel. Both humans leave the waiting set.
func (s *Store) CreateSession(participantA, participantB string, isBot bool) (string, error) {
	if participantA == "" {
		return "", ErrUserRequired
	}
	if isBot {
		participantB = chat.BotParticipant
	}
	if participantB == "" {
		return "", ErrUserRequired
	}
	if participantA == participantB {
		return "", ErrSelfMatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range []string{participantA, participantB} {
		if p == chat.BotParticipant {
			continue
		}
		if _, ok := s.userSession[p]; ok {
			return "", ErrAlreadyInSession
		}
	}

	prefix := humanSessionPrefix
	if isBot {
		prefix = botSessionPrefix
	}
	id := prefix + s.ids()
	for {
		if _, taken := s.sessions[id]; !taken {
			break
		}
		id = prefix + uuid.NewString()
	}

	s.sessions[id] = chat.Session{
		ID:           id,
		ParticipantA: participantA,
		ParticipantB: participantB,
		IsBot:        isBot,
		CreatedAt:    s.now(),
	}
	for _, p := range []string{participantA, participantB} {
		if p == chat.BotParticipant {
			continue
		}
		s.dequeueLocked(p)
		s.userSession[p] = id
	}
	return id, nil
}

// EndSession tears down the session of userID, removing both mappings and the
// bot history. It returns false when the user has no session.
func (s *Store) EndSession(userID string) (chat.EndedSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.userSession[userID]
	if !ok {
		return chat.EndedSession{}, false
	}
	session, ok := s.sessions[id]
	if !ok {
		delete(s.userSession, userID)
		return chat.EndedSession{}, false
	}

	delete(s.sessions, id)
	delete(s.history, id)
	for _, p := range []string{session.ParticipantA, session.ParticipantB} {
		if p != chat.BotParticipant {
			delete(s.userSession, p)
		}
	}

	return chat.EndedSession{
		SessionID:        id,
		OtherParticipant: session.Other(userID),
		IsBot:            session.IsBot,
	}, true
}

// Session returns the live session with the given id.
func (s *Store) Session(sessionID string) (chat.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

// SessionIDForUser returns the session id mapped to userID.
func (s *Store) SessionIDForUser(userID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.userSession[userID]
	return id, ok
}

// OtherParticipant returns the partner of userID, which may be the bot sentinel.
func (s *Store) OtherParticipant(userID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.userSession[userID]
	if !ok {
		return "", false
	}
	session, ok := s.sessions[id]
	if !ok {
		return "", false
	}
	return session.Other(userID), true
}

// IsBotSession reports whether sessionID is a live bot session.
func (s *Store) IsBotSession(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return ok && session.IsBot
}

// Stats returns queue and session counters.
func (s *Store) Stats() chat.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := chat.Stats{
		Waiting:     len(s.waiting),
		ActiveChats: len(s.sessions),
	}
	for _, session := range s.sessions {
		if session.IsBot {
			stats.BotChats++
		}
	}
	return stats
}

// History returns a copy of the bot conversation history for sessionID.
func (s *Store) History(sessionID string) []chat.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]chat.Turn(nil), s.history[sessionID]...)
}

// AppendHistory records turns for a live bot session, keeping the most recent
// HistoryLimit entries. It returns false if the session is gone.
func (s *Store) AppendHistory(sessionID string, turns ...chat.Turn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || !session.IsBot {
		return false
	}

	history := append(s.history[sessionID], turns...)
	if len(history) > chat.HistoryLimit {
		history = append([]chat.Turn(nil), history[len(history)-chat.HistoryLimit:]...)
	}
	s.history[sessionID] = history
	return true
}

// ClearHistory drops the stored history for sessionID.
func (s *Store) ClearHistory(sessionID string) {
	s.mu.Lock()
	delete(s.history, sessionID)
	s.mu.Unlock()
}
