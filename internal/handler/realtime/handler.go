package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/bellaleprasann20/Chat-App/internal/auth"
	"github.com/bellaleprasann20/Chat-App/internal/metrics"
	"github.com/bellaleprasann20/Chat-App/internal/service/matchmaking"
	"github.com/bellaleprasann20/Chat-App/pkg/utils"
)

// Inbound event names.
const (
	eventRequestMatch  = "request-match"
	eventStopSearching = "stop-searching"
	eventSkip          = "skip"
	eventSendMessage   = "send-message"
	eventTyping        = "typing"
)

// Engine is the matchmaking surface driven by websocket events.
type Engine interface {
	Connect(client matchmaking.Client) error
	RequestMatch(client matchmaking.Client, interests []string) error
	StopSearching(client matchmaking.Client) error
	Skip(client matchmaking.Client) error
	SendMessage(client matchmaking.Client, text string) error
	Typing(client matchmaking.Client, isTyping bool) error
	Disconnect(client matchmaking.Client) error
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// RequestMatchMessage is the request-match payload.
type RequestMatchMessage struct {
	Interests []string `json:"interests"`
}

// SendMessageMessage is the send-message payload.
type SendMessageMessage struct {
	Text string `json:"text"`
}

// TypingMessage is the typing payload.
type TypingMessage struct {
	IsTyping bool `json:"isTyping"`
}

// Handler upgrades authenticated requests and feeds their events to the engine.
type Handler struct {
	hub      *Hub
	engine   Engine
	verifier auth.Verifier
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// New creates a websocket handler. allowOrigin decides cross-origin upgrades;
// nil accepts every origin.
func New(hub *Hub, engine Engine, verifier auth.Verifier, allowOrigin func(*http.Request) bool, logger zerolog.Logger) *Handler {
	if allowOrigin == nil {
		allowOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		hub:      hub,
		engine:   engine,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			CheckOrigin:     allowOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With().Str("component", "websocket").Logger(),
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	identity, err := h.verifier.Verify(r.Context(), auth.TokenFromRequest(r))
	if err != nil {
		h.logger.Debug().Err(err).Msg("rejecting websocket upgrade")
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("upgrade failed")
		return
	}

	mc := matchmaking.Client{
		ConnID:      uuid.NewString(),
		UserID:      identity.UserID,
		DisplayName: identity.DisplayName,
	}
	c := newClient(mc.ConnID, conn, h.logger)
	h.hub.register(c)
	metrics.WebsocketConnections.Inc()
	go c.writePump()

	log := h.logger.With().Str("conn_id", mc.ConnID).Str("user_id", mc.UserID).Logger()
	log.Info().Msg("websocket connected")

	defer func() {
		if err := h.engine.Disconnect(mc); err != nil {
			log.Warn().Err(err).Msg("disconnect cleanup failed")
		}
		h.hub.unregister(mc.ConnID)
		c.close()
		metrics.WebsocketConnections.Dec()
		log.Info().Msg("websocket closed")
	}()

	if err := h.engine.Connect(mc); err != nil {
		return
	}

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var (
				syntaxErr *json.SyntaxError
				typeErr   *json.UnmarshalTypeError
			)
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				h.hub.Emit(mc.ConnID, matchmaking.EventError, matchmaking.ErrorPayload{Message: "malformed message"})
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Msg("read error")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := h.dispatch(mc, &msg); errors.Is(err, matchmaking.ErrStopped) {
			return
		}
	}
}

// dispatch decodes one inbound event and hands it to the engine. Engine
// failures have already been reported to the client.
func (h *Handler) dispatch(mc matchmaking.Client, msg *inboundMessage) error {
	switch msg.Type {
	case eventRequestMatch:
		var payload RequestMatchMessage
		if !h.decode(mc, msg.Data, &payload) {
			return nil
		}
		return h.engine.RequestMatch(mc, payload.Interests)
	case eventStopSearching:
		return h.engine.StopSearching(mc)
	case eventSkip:
		return h.engine.Skip(mc)
	case eventSendMessage:
		var payload SendMessageMessage
		if !h.decode(mc, msg.Data, &payload) {
			return nil
		}
		return h.engine.SendMessage(mc, payload.Text)
	case eventTyping:
		var payload TypingMessage
		if !h.decode(mc, msg.Data, &payload) {
			return nil
		}
		return h.engine.Typing(mc, payload.IsTyping)
	default:
		h.hub.Emit(mc.ConnID, matchmaking.EventError, matchmaking.ErrorPayload{Message: "unknown event type"})
		return nil
	}
}

func (h *Handler) decode(mc matchmaking.Client, raw json.RawMessage, v any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return true
	}
	if err := json.Unmarshal(raw, v); err != nil {
		h.hub.Emit(mc.ConnID, matchmaking.EventError, matchmaking.ErrorPayload{Message: "malformed payload"})
		return false
	}
	return true
}
