package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"orcamentos/internal/domain"
	"orcamentos/internal/model"
	"orcamentos/internal/service/data"

	"go.uber.org/zap"
)

// Server exposes the client portal and the designer panel as a JSON API. The
// screens themselves (forms, the map picker, geocoding) live on the front
// end; this layer only runs the operations and converts every failure into a
// structured {ok, message} body.
type Server struct {
	logger      *zap.Logger
	manager     *data.Manager
	sessions    *Sessions
	designerKey string
}

func NewServer(manager *data.Manager, designerKey string, logger *zap.Logger) *Server {
	return &Server{
		logger:      logger,
		manager:     manager,
		sessions:    NewSessions(24 * time.Hour),
		designerKey: designerKey,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("POST /api/recover", s.handleRecover)

	mux.HandleFunc("GET /api/budgets", s.withUser(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.withUser(s.handleSubmitBudget))
	mux.HandleFunc("PATCH /api/budgets/{id}", s.withUser(s.handleEditBudget))

	mux.HandleFunc("GET /api/designer/clients", s.withDesigner(s.handleListClients))
	mux.HandleFunc("GET /api/designer/budgets", s.withDesigner(s.handleDesignerBudgets))
	mux.HandleFunc("PATCH /api/designer/budgets/{id}", s.withDesigner(s.handleSetStatus))

	return mux
}

type response struct {
	OK      bool        `json:"ok"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func (s *Server) respond(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("writing response", zap.Error(err))
	}
}

func (s *Server) ok(w http.ResponseWriter, message string, payload interface{}) {
	s.respond(w, http.StatusOK, response{OK: true, Message: message, Data: payload})
}

// fail maps the engine's sentinel errors to statuses and human-readable
// messages; anything unexpected is logged and reported generically.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, data.ErrDuplicateEmail):
		s.respond(w, http.StatusConflict, response{Message: "Email já cadastrado."})
	case errors.Is(err, data.ErrInvalidCredentials):
		s.respond(w, http.StatusUnauthorized, response{Message: "Email ou senha incorretos."})
	case errors.Is(err, domain.ErrNotFound):
		s.respond(w, http.StatusNotFound, response{Message: "Registro não encontrado."})
	case errors.Is(err, domain.ErrMailNotConfigured):
		s.respond(w, http.StatusServiceUnavailable, response{Message: "Recuperação de senha indisponível: email do remetente não configurado."})
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.respond(w, http.StatusInternalServerError, response{Message: "Erro interno. Tente novamente."})
	}
}

func (s *Server) badRequest(w http.ResponseWriter, message string) {
	s.respond(w, http.StatusBadRequest, response{Message: message})
}

// withUser resolves the bearer token to the logged-in user.
func (s *Server) withUser(next func(http.ResponseWriter, *http.Request, model.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.respond(w, http.StatusUnauthorized, response{Message: "Faça login para continuar."})
			return
		}
		user, ok := s.sessions.User(token)
		if !ok {
			s.respond(w, http.StatusUnauthorized, response{Message: "Sessão expirada, faça login novamente."})
			return
		}
		next(w, r, user)
	}
}

// withDesigner guards the panel with the shared designer key.
func (s *Server) withDesigner(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.designerKey == "" {
			s.respond(w, http.StatusServiceUnavailable, response{Message: "Painel do projetista não configurado."})
			return
		}
		if r.Header.Get("X-Designer-Key") != s.designerKey {
			s.respond(w, http.StatusForbidden, response{Message: "Acesso restrito ao projetista."})
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
