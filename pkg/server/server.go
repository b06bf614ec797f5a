// Package server exposes the persistence gateway over the HTTP JSON API
// consumed by the presentation layer. Handlers are thin: they marshal
// requests onto the gateway and never hold game state of their own.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/siddharth-behl/100cr/pkg/gateway"
)

// Server hosts the progress and game API routes.
type Server struct {
	gw     *gateway.Gateway
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates the API server over the given gateway.
func New(gw *gateway.Gateway, logger *slog.Logger) *Server {
	s := &Server{
		gw:     gw,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/progress/{userId}", s.handleGetProgress)
	s.mux.HandleFunc("PUT /api/progress/{userId}", s.handlePutProgress)

	s.mux.HandleFunc("GET /api/game/{userId}", s.handleGetProgress)
	s.mux.HandleFunc("POST /api/game/{userId}/mission/{missionId}", s.handleUpdateMission)
	s.mux.HandleFunc("POST /api/game/{userId}/skill/{skillId}", s.handleUpdateSkill)
	s.mux.HandleFunc("POST /api/game/{userId}/level/{levelId}", s.handleUpdateLevel)

	s.mux.HandleFunc("POST /api/users", s.handleCreateUser)
	s.mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)
}

// message is the standard error/status response body.
type message struct {
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeMessage(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, message{Message: msg})
}

// pathInt parses an integer path segment, or returns ok=false after writing
// a 400 response.
func (s *Server) pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return v, true
}
