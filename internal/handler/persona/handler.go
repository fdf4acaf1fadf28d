package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bellaleprasann20/Chat-App/internal/model/persona"
	"github.com/bellaleprasann20/Chat-App/pkg/utils"
)

// Handler persona服务的HTTP处理器
type Handler struct {
	personas persona.Store
	activeID string
}

// New 创建persona处理器
func New(personas persona.Store, activeID string) *Handler {
	return &Handler{
		personas: personas,
		activeID: persona.Resolve(personas, activeID).ID,
	}
}

// ListResponse 列出机器人角色与当前生效的角色
type ListResponse struct {
	Active   string            `json:"active"`
	Personas []persona.Persona `json:"personas"`
}

// RegisterRoutes 注册persona相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
}

// handleListPersonas 列出所有persona
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondData(w, ListResponse{Active: h.activeID, Personas: h.personas.List()})
}
