package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumpybrain/DedMult/internal/domain"
	"github.com/lumpybrain/DedMult/internal/engine"
	"github.com/lumpybrain/DedMult/pkg/api"
)

// DebugHandler предоставляет доступ к внутреннему состоянию матча.
// Снимки берутся через очередь сессии, как и обычные запросы клиентов.
type DebugHandler struct {
	session *engine.Session
}

func NewDebugHandler(s *engine.Session) *DebugHandler {
	return &DebugHandler{session: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(r chi.Router) {
	r.Route("/debug", func(r chi.Router) {
		r.Get("/galaxy", h.handleGalaxy)
		r.Get("/queue", h.handleQueue)
	})
}

func (h *DebugHandler) snapshot(r *http.Request) (api.ServerResponse, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	return h.session.Submit(ctx, domain.InternalCommand{Action: domain.ActionSnapshot})
}

// /debug/galaxy - узлы, корабли, полосы и игроки
func (h *DebugHandler) handleGalaxy(w http.ResponseWriter, r *http.Request) {
	resp, err := h.snapshot(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, resp.Galaxy)
}

// /debug/queue - команды текущего хода в порядке регистрации
func (h *DebugHandler) handleQueue(w http.ResponseWriter, r *http.Request) {
	resp, err := h.snapshot(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	commands := resp.Commands
	if commands == nil {
		commands = []api.CommandView{}
	}
	writeJSON(w, commands)
}
