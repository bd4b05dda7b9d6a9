package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"nutrifases-backend/internal/config"
	"nutrifases-backend/internal/dispatch"
	"nutrifases-backend/internal/llm"
	"nutrifases-backend/internal/types"
)

type Server struct {
	router *chi.Mux
	cfg    config.Config
	log    zerolog.Logger
	// completer is nil when no credential is configured; every chat request
	// then fails with a configuration error.
	completer llm.Completer
	persona   llm.Persona
	// validator is nil unless strict navigation is enabled.
	validator *dispatch.Validator
}

func NewServer(cfg config.Config, completer llm.Completer, persona llm.Persona, logger zerolog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		cfg:       cfg,
		log:       logger,
		completer: completer,
		persona:   persona,
	}
	if cfg.StrictNavigation {
		s.validator = dispatch.NewValidator(persona.Navigation.Pages)
	}

	s.router.Use(corsHandler(cfg))
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(accessLog(logger))
	s.router.Use(s.recoverer)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/", s.handleRoot)
	s.router.Get("/api/health", s.handleHealth)
	for _, path := range []string{"/api/chat", "/chat"} {
		s.router.Post(path, s.handleChat)
		s.router.Options(path, s.handlePreflight)
	}
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: s.persona.Greeting})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"configured": s.completer != nil,
	})
}

func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.completer == nil {
		s.writeError(w, r, errNotConfigured)
		return
	}

	history, gateErr := readHistory(w, r)
	if gateErr != nil {
		s.writeError(w, r, gateErr)
		return
	}

	reply, err := s.completer.Complete(r.Context(), history)
	if err != nil {
		s.writeError(w, r, completionError(err))
		return
	}

	result := dispatch.Parse(reply, s.validator)
	s.log.Debug().
		Str("rid", chimiddleware.GetReqID(r.Context())).
		Str("kind", dispatch.Kind(result)).
		Int("turns", len(history)).
		Msg("reply dispatched")

	switch res := result.(type) {
	case dispatch.ChatReply:
		writeJSON(w, http.StatusOK, types.ChatResponse{Response: res.Text})
	case dispatch.NavigationAction:
		writeRawJSON(w, http.StatusOK, res.Payload)
	case dispatch.ParseFailure:
		s.writeError(w, r, malformedNavigation(res))
	default:
		s.writeError(w, r, newError(KindInternal, "internal error: unclassified reply", nil))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, e *Error) {
	status := e.Status()
	ev := s.log.Warn()
	if status >= http.StatusInternalServerError {
		ev = s.log.Error()
	}
	ev.Str("rid", chimiddleware.GetReqID(r.Context())).
		Str("kind", e.Kind.String()).
		Int("status", status).
		Err(e.Err).
		Msg(e.Msg)
	writeJSON(w, status, types.ErrorResponse{Error: e.Msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, code int, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(raw)
}
