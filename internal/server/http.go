package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/lumpybrain/DedMult/internal/config"
	"github.com/lumpybrain/DedMult/internal/engine"
	"github.com/lumpybrain/DedMult/internal/network"
	"github.com/lumpybrain/DedMult/internal/version"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	session *engine.Session
	hub     *network.Broadcaster
	cfg     config.ServerConfig
	limits  config.RateLimitConfig
}

func New(session *engine.Session, hub *network.Broadcaster, cfg config.ServerConfig, limits config.RateLimitConfig) *Server {
	return &Server{
		session: session,
		hub:     hub,
		cfg:     cfg,
		limits:  limits,
	}
}

func (s *Server) log() *logrus.Entry {
	return logger.For("server")
}

// Router собирает все маршруты сервера.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWS)
	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)

	NewDebugHandler(s.session).RegisterRoutes(r)

	return newCORS(s.cfg).Handler(r)
}

// Run запускает HTTP сервер и останавливает его при отмене ctx.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log().WithField("port", s.cfg.Port).Info("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log().Info("Shutting down server")
	return srv.Shutdown(shutdownCtx)
}

// handleWS обрабатывает подключение по WebSocket
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log().WithError(err).Warn("Upgrade error")
		return
	}

	client := NewClient(s.session, s.hub, conn, s.limits)
	s.log().WithFields(logrus.Fields{
		"client": client.ID.String(),
		"remote": r.RemoteAddr,
	}).Info("Client connected")

	go client.writePump()
	go client.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.session.Done():
		http.Error(w, "session stopped", http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, version.Current())
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}
