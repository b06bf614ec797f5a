package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/siddharth-behl/100cr/pkg/domain"
)

// progressResponse wraps a record for the read endpoints.
type progressResponse struct {
	Progress domain.ProgressRecord `json:"progress"`
}

// updateResponse is returned by the game mutation endpoints.
type updateResponse struct {
	Message  string                `json:"message"`
	Progress domain.ProgressRecord `json:"progress"`
}

// handleGetProgress serves GET /api/progress/{userId} and GET /api/game/{userId}.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathInt(w, r, "userId")
	if !ok {
		return
	}

	rec, err := s.gw.GetProgress(r.Context(), userID)
	if err != nil {
		s.logger.Error("Error getting game progress", "user_id", userID, "error", err)
		s.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if rec == nil {
		s.writeMessage(w, http.StatusNotFound, "Game progress not found")
		return
	}

	s.writeJSON(w, http.StatusOK, progressResponse{Progress: *rec})
}

// handlePutProgress serves PUT /api/progress/{userId}: a full-record upsert.
// The userId in the body must match the path.
func (s *Server) handlePutProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathInt(w, r, "userId")
	if !ok {
		return
	}

	var rec domain.ProgressRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if rec.UserID != userID {
		s.writeMessage(w, http.StatusBadRequest, "User ID mismatch")
		return
	}

	if err := s.gw.Save(r.Context(), rec); err != nil {
		s.logger.Error("Error updating game progress", "user_id", userID, "error", err)
		s.writeMessage(w, http.StatusInternalServerError, "Failed to update game progress")
		return
	}

	s.writeMessage(w, http.StatusOK, "Game progress updated successfully")
}

// handleUpdateMission serves POST /api/game/{userId}/mission/{missionId}.
// Body: {"completed": bool}. Adds or removes the mission id from the
// completed set and saves the record.
func (s *Server) handleUpdateMission(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathInt(w, r, "userId")
	if !ok {
		return
	}
	missionID := r.PathValue("missionId")

	var body struct {
		Completed bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := s.gw.GetProgress(r.Context(), userID)
	if err != nil {
		s.logger.Error("Error updating mission status", "user_id", userID, "error", err)
		s.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if rec == nil {
		s.writeMessage(w, http.StatusNotFound, "Game progress not found")
		return
	}

	updated := rec.Clone()
	if body.Completed {
		updated.CompletedMissions = appendUnique(updated.CompletedMissions, missionID)
	} else {
		updated.CompletedMissions = removeString(updated.CompletedMissions, missionID)
	}

	if err := s.gw.Save(r.Context(), updated); err != nil {
		s.writeMessage(w, http.StatusInternalServerError, "Failed to update mission status")
		return
	}

	verb := "uncompleted"
	if body.Completed {
		verb = "completed"
	}
	s.writeJSON(w, http.StatusOK, updateResponse{
		Message:  fmt.Sprintf("Mission %s successfully", verb),
		Progress: updated,
	})
}

// handleUpdateSkill serves POST /api/game/{userId}/skill/{skillId}.
// Body: {"unlocked": bool}. Adds or removes the skill id from the unlocked
// set and saves the record.
func (s *Server) handleUpdateSkill(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathInt(w, r, "userId")
	if !ok {
		return
	}
	skillID := r.PathValue("skillId")

	var body struct {
		Unlocked bool `json:"unlocked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := s.gw.GetProgress(r.Context(), userID)
	if err != nil {
		s.logger.Error("Error updating skill status", "user_id", userID, "error", err)
		s.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if rec == nil {
		s.writeMessage(w, http.StatusNotFound, "Game progress not found")
		return
	}

	updated := rec.Clone()
	if body.Unlocked {
		updated.UnlockedSkills = appendUnique(updated.UnlockedSkills, skillID)
	} else {
		updated.UnlockedSkills = removeString(updated.UnlockedSkills, skillID)
	}

	if err := s.gw.Save(r.Context(), updated); err != nil {
		s.writeMessage(w, http.StatusInternalServerError, "Failed to update skill status")
		return
	}

	verb := "removed"
	if body.Unlocked {
		verb = "unlocked"
	}
	s.writeJSON(w, http.StatusOK, updateResponse{
		Message:  fmt.Sprintf("Skill %s successfully", verb),
		Progress: updated,
	})
}

// handleUpdateLevel serves POST /api/game/{userId}/level/{levelId}.
// Body: {"unlocked"?: bool, "completed"?: bool}. Unlocking is additive only;
// an explicit completed=false removes the level from the completed set.
// Level id lists are kept sorted ascending.
func (s *Server) handleUpdateLevel(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathInt(w, r, "userId")
	if !ok {
		return
	}
	levelID, ok := s.pathInt(w, r, "levelId")
	if !ok {
		return
	}

	var body struct {
		Unlocked  *bool `json:"unlocked"`
		Completed *bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := s.gw.GetProgress(r.Context(), userID)
	if err != nil {
		s.logger.Error("Error updating level status", "user_id", userID, "error", err)
		s.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if rec == nil {
		s.writeMessage(w, http.StatusNotFound, "Game progress not found")
		return
	}

	updated := rec.Clone()
	p := domain.UserProgress{}
	p.ApplyRecord(updated)

	if body.Unlocked != nil && *body.Unlocked {
		p.AddUnlockedLevel(levelID)
	}
	if body.Completed != nil {
		if *body.Completed {
			p.AddCompletedLevel(levelID)
		} else {
			p.RemoveCompletedLevel(levelID)
		}
	}

	updated.UnlockedLevels = p.UnlockedLevels
	updated.CompletedLevels = p.CompletedLevels

	if err := s.gw.Save(r.Context(), updated); err != nil {
		s.writeMessage(w, http.StatusInternalServerError, "Failed to update level status")
		return
	}

	s.writeJSON(w, http.StatusOK, updateResponse{
		Message:  "Level status updated successfully",
		Progress: updated,
	})
}

func appendUnique(list []string, v string) []string {
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}

func removeString(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
