package matchmaking

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bellaleprasann20/Chat-App/internal/metrics"
	chatstore "github.com/bellaleprasann20/Chat-App/internal/service/chat"
)

const (
	opConnect       = "connect"
	opRequestMatch  = "request-match"
	opStopSearching = "stop-searching"
	opSkip          = "skip"
	opSendMessage   = "send-message"
	opTyping        = "typing"
	opDisconnect    = "disconnect"
)

const (
	kindHuman = "human"
	kindBot   = "bot"

	metricsReasonSkip       = "skip"
	metricsReasonDisconnect = "disconnect"
	metricsReasonReplaced   = "replaced"
)

// greetingPrompt is what the bot is asked to answer when a session opens.
const greetingPrompt = "Hi"

// Connect registers client as its user's live connection. An older
// connection of the same user is released and told it was replaced.
func (e *Engine) Connect(client Client) error {
	return e.handle(client, opConnect, func() error { return nil })
}

// RequestMatch queues client and pairs it right away when a partner
// qualifies. Otherwise a bot fallback is armed. A failed pairing leaves the
// requester out of the queue.
func (e *Engine) RequestMatch(client Client, interests []string) error {
	return e.handle(client, opRequestMatch, func() error {
		if _, ok := e.store.SessionIDForUser(client.UserID); ok {
			return ErrAlreadyChatting
		}

		err := e.store.Enqueue(client.UserID, client.ConnID, client.DisplayName, normalizeInterests(interests))
		if err != nil {
			return fmt.Errorf("enqueue: %w", err)
		}

		if partner, ok := e.matcher.FindMatch(client.UserID); ok {
			err := e.pair(client, Client{ConnID: partner.ConnRef, UserID: partner.UserID, DisplayName: partner.DisplayName})
			if err != nil {
				e.store.Dequeue(client.UserID)
			}
			return err
		}

		entry, _ := e.store.Waiting(client.UserID)
		e.transport.Emit(client.ConnID, EventSearchingStarted, SearchingStarted{
			Message:       searchingMessage,
			QueuePosition: e.store.QueuePosition(client.UserID),
		})
		e.after(e.timings.BotFallback, func() {
			e.fallbackToBot(client, entry.EnqueuedAt.UnixNano())
		})
		return nil
	})
}

func (e *Engine) pair(client, partner Client) error {
	sessionID, err := e.store.CreateSession(client.UserID, partner.UserID, false)
	if err != nil {
		if errors.Is(err, chatstore.ErrAlreadyInSession) {
			e.logger.Error().Err(err).Str("user_id", client.UserID).Str("partner_id", partner.UserID).Msg("matched user already in a session")
		}
		return fmt.Errorf("create session: %w", err)
	}

	e.transport.Join(client.ConnID, sessionID)
	e.transport.Join(partner.ConnID, sessionID)
	connected := Connected{SessionID: sessionID, IsBot: false, Message: humanConnected}
	e.transport.Emit(client.ConnID, EventConnected, connected)
	e.transport.Emit(partner.ConnID, EventConnected, connected)

	metrics.MatchesTotal.WithLabelValues(kindHuman).Inc()
	e.logger.Info().
		Str("session_id", sessionID).
		Str("user_id", client.UserID).
		Str("partner_id", partner.UserID).
		Msg("matched strangers")
	return nil
}

// fallbackToBot runs when the fallback timer fires. It only acts if the same
// waiting request is still pending.
func (e *Engine) fallbackToBot(client Client, stamp int64) {
	entry, ok := e.store.Waiting(client.UserID)
	if !ok || entry.ConnRef != client.ConnID || entry.EnqueuedAt.UnixNano() != stamp {
		return
	}
	if _, busy := e.store.SessionIDForUser(client.UserID); busy {
		return
	}

	sessionID, err := e.store.CreateSession(client.UserID, "", true)
	if err != nil {
		e.fail(client, opRequestMatch, fmt.Errorf("create bot session: %w", err))
		return
	}

	e.transport.Join(client.ConnID, sessionID)
	e.transport.Emit(client.ConnID, EventConnected, Connected{SessionID: sessionID, IsBot: true, Message: botConnected})
	metrics.MatchesTotal.WithLabelValues(kindBot).Inc()
	e.refreshGauges()
	e.logger.Info().Str("session_id", sessionID).Str("user_id", client.UserID).Msg("connected user to bot")

	e.after(e.timings.GreetingDelay, func() {
		if e.liveSession(client, sessionID) {
			e.replyAsync(client, sessionID, greetingPrompt, false)
		}
	})
}

// replyAsync asks the bot for a reply off the loop and delivers it to client
// if the session survives. Regular replies wait a random delay first.
func (e *Engine) replyAsync(client Client, sessionID, text string, delayed bool) {
	ctx := e.ctx
	e.workers.Add(1)
	go func() {
		defer e.workers.Done()
		reply := e.bot.Respond(ctx, sessionID, text)

		deliver := func() {
			if !e.liveSession(client, sessionID) {
				e.logger.Debug().Str("session_id", sessionID).Msg("dropping bot reply for ended session")
				return
			}
			e.transport.Emit(client.ConnID, EventMessage, e.newMessage(reply.Text, true, false))
			metrics.MessagesRelayed.WithLabelValues(kindBot).Inc()
		}

		err := e.do(func() {
			if !delayed {
				deliver()
				return
			}
			if e.liveSession(client, sessionID) {
				e.after(e.replyDelay(), deliver)
			}
		})
		if err != nil {
			e.logger.Debug().Err(err).Str("session_id", sessionID).Msg("bot reply discarded")
		}
	}()
}

// StopSearching takes client out of the queue.
func (e *Engine) StopSearching(client Client) error {
	return e.handle(client, opStopSearching, func() error {
		e.store.Dequeue(client.UserID)
		e.transport.Emit(client.ConnID, EventSearchingStopped, Notice{Message: stoppedMessage})
		return nil
	})
}

// Skip ends the current session. The partner is notified; searching does not
// restart on its own.
func (e *Engine) Skip(client Client) error {
	return e.handle(client, opSkip, func() error {
		sessionID, ok := e.endSession(client, metricsReasonSkip)
		if !ok {
			return nil
		}
		e.transport.Leave(client.ConnID, sessionID)
		e.transport.Emit(client.ConnID, EventSkipped, Notice{Message: skippedMessage})
		return nil
	})
}

// endSession tears down the session of client and notifies a human partner.
// Store mappings are gone before any event is emitted.
func (e *Engine) endSession(client Client, reason string) (string, bool) {
	ended, ok := e.store.EndSession(client.UserID)
	if !ok {
		return "", false
	}
	metrics.SessionsEnded.WithLabelValues(reason).Inc()

	if ended.IsBot {
		e.bot.ClearHistory(ended.SessionID)
	} else if partner, online := e.conns[ended.OtherParticipant]; online {
		e.transport.Emit(partner.ConnID, EventPartnerDisconnected, Notice{Message: partnerLeftMessage})
		e.transport.Leave(partner.ConnID, ended.SessionID)
	}

	e.logger.Info().
		Str("session_id", ended.SessionID).
		Str("user_id", client.UserID).
		Str("reason", reason).
		Bool("bot", ended.IsBot).
		Msg("session ended")
	return ended.SessionID, true
}

// SendMessage relays text within the session of client.
func (e *Engine) SendMessage(client Client, text string) error {
	return e.handle(client, opSendMessage, func() error {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		if utf8.RuneCountInString(text) > MaxMessageLength {
			return ErrMessageTooLong
		}
		sessionID, ok := e.store.SessionIDForUser(client.UserID)
		if !ok {
			return ErrNotInSession
		}

		if e.store.IsBotSession(sessionID) {
			e.transport.Emit(client.ConnID, EventMessage, e.newMessage(text, false, true))
			metrics.MessagesRelayed.WithLabelValues(kindHuman).Inc()
			e.replyAsync(client, sessionID, text, true)
			return nil
		}

		msg := e.newMessage(text, false, false)
		e.transport.BroadcastExcept(sessionID, client.ConnID, EventMessage, msg)
		msg.IsSelf = true
		e.transport.Emit(client.ConnID, EventMessage, msg)
		metrics.MessagesRelayed.WithLabelValues(kindHuman).Inc()
		return nil
	})
}

// Typing forwards the typing indicator to a human partner.
func (e *Engine) Typing(client Client, isTyping bool) error {
	return e.handle(client, opTyping, func() error {
		sessionID, ok := e.store.SessionIDForUser(client.UserID)
		if !ok || e.store.IsBotSession(sessionID) {
			return nil
		}
		e.transport.BroadcastExcept(sessionID, client.ConnID, EventTyping, TypingState{IsTyping: isTyping})
		return nil
	})
}

// Disconnect cleans up after a closed connection. Calls for a connection
// that was already replaced only forget it.
func (e *Engine) Disconnect(client Client) error {
	err := e.do(func() {
		if _, gone := e.replaced[client.ConnID]; gone {
			delete(e.replaced, client.ConnID)
			return
		}
		current, ok := e.conns[client.UserID]
		if !ok || current.ConnID != client.ConnID {
			return
		}
		e.releaseUser(client, metricsReasonDisconnect)
		delete(e.conns, client.UserID)
		e.refreshGauges()
	})
	if errors.Is(err, ErrStopped) {
		return nil
	}
	return err
}

// releaseUser drops any queue entry and session held through client.
func (e *Engine) releaseUser(client Client, reason string) {
	e.store.Dequeue(client.UserID)
	if sessionID, ok := e.endSession(client, reason); ok {
		e.transport.Leave(client.ConnID, sessionID)
	}
}
