package randomchat

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/bellaleprasann20/Chat-App/internal/auth"
	"github.com/bellaleprasann20/Chat-App/internal/model/chat"
	"github.com/bellaleprasann20/Chat-App/internal/service/bot"
	"github.com/bellaleprasann20/Chat-App/pkg/utils"
)

const defaultStreamInterval = 5 * time.Second

// Diagnostics is the read-only view of the matchmaking engine.
type Diagnostics interface {
	Stats() chat.Stats
	SessionForUser(userID string) (chat.Session, bool)
	BotInfo() bot.Info
}

// Handler serves random chat statistics and per-user status.
type Handler struct {
	diag     Diagnostics
	interval time.Duration
	logger   zerolog.Logger
}

// New creates a handler; interval <= 0 uses the default stream period.
func New(diag Diagnostics, interval time.Duration, logger zerolog.Logger) *Handler {
	if interval <= 0 {
		interval = defaultStreamInterval
	}
	return &Handler{
		diag:     diag,
		interval: interval,
		logger:   logger.With().Str("component", "randomchat").Logger(),
	}
}

// StatsResponse 匹配统计
type StatsResponse struct {
	chat.Stats
	Bot bot.Info `json:"bot"`
}

// StatusResponse 当前用户状态
type StatusResponse struct {
	IsInChat bool   `json:"isInChat"`
	RoomID   string `json:"roomId,omitempty"`
	IsBot    bool   `json:"isBot"`
}

// RegisterRoutes 注册随机聊天路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/random", func(rr chi.Router) {
		rr.Get("/stats", h.handleStats)
		rr.Get("/status", h.handleStatus)
		rr.Get("/stats/stream", h.handleStatsStream)
	})
}

func (h *Handler) snapshot() StatsResponse {
	return StatsResponse{Stats: h.diag.Stats(), Bot: h.diag.BotInfo()}
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	utils.RespondData(w, h.snapshot())
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	session, inChat := h.diag.SessionForUser(identity.UserID)
	utils.RespondData(w, StatusResponse{
		IsInChat: inChat,
		RoomID:   session.ID,
		IsBot:    inChat && session.IsBot,
	})
}

func (h *Handler) handleStatsStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	h.logger.Debug().Msg("opening stats stream")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	if err := utils.SendSSEEvent(w, flusher, "stats", h.snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug().Msg("closing stats stream")
			return
		case <-ticker.C:
			if err := utils.SendSSEEvent(w, flusher, "stats", h.snapshot()); err != nil {
				return
			}
		}
	}
}
