package server

import (
	"encoding/json"
	"net/http"

	"github.com/siddharth-behl/100cr/pkg/domain"
	gameerrors "github.com/siddharth-behl/100cr/pkg/errors"
)

type userResponse struct {
	User domain.User `json:"user"`
}

// handleCreateUser serves POST /api/users. Creating a user also creates its
// default progress record.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Username == "" || body.Password == "" {
		s.writeMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	existing, err := s.gw.GetUserByUsername(r.Context(), body.Username)
	if err != nil {
		s.logger.Error("Error creating user", "username", body.Username, "error", err)
		s.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if existing != nil {
		s.writeMessage(w, http.StatusConflict, "Username already exists")
		return
	}

	user, err := s.gw.CreateUser(r.Context(), body.Username, body.Password)
	if err != nil {
		if gameerrors.HasCode(err, gameerrors.ErrCodeUserExists) {
			s.writeMessage(w, http.StatusConflict, "Username already exists")
			return
		}
		s.logger.Error("Error creating user", "username", body.Username, "error", err)
		s.writeMessage(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	s.writeJSON(w, http.StatusCreated, userResponse{User: *user})
}

// handleGetUser serves GET /api/users/{id}.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathInt(w, r, "id")
	if !ok {
		return
	}

	user, err := s.gw.GetUser(r.Context(), id)
	if err != nil {
		s.logger.Error("Error getting user", "user_id", id, "error", err)
		s.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		s.writeMessage(w, http.StatusNotFound, "User not found")
		return
	}

	s.writeJSON(w, http.StatusOK, userResponse{User: *user})
}
