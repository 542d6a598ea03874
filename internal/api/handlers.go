package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ember-coach/ember/internal/app/coach"
	"github.com/ember-coach/ember/internal/domain"
)

// ─── Goals ──────────────────────────────────────────────────────────────────

type createGoalRequest struct {
	OwnerID string   `json:"owner_id"`
	Title   string   `json:"title"`
	Habits  []string `json:"habits"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.OwnerID == "" || req.Title == "" {
		writeError(w, http.StatusBadRequest, "owner_id and title are required")
		return
	}

	goal, err := s.coach.CreateGoal(req.OwnerID, req.Title, req.Habits)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := s.coach.Goal(chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrGoalNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleUserGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.coach.GoalsFor(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if goals == nil {
		goals = []domain.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

// ─── Check-ins ──────────────────────────────────────────────────────────────

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req coach.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" || req.GoalID == "" {
		writeError(w, http.StatusBadRequest, "user_id and goal_id are required")
		return
	}

	result, err := s.coach.SubmitCheckIn(r.Context(), req)
	switch {
	case errors.Is(err, domain.ErrDuplicateCheckIn):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrGoalNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

// ─── Chat / Sessions ────────────────────────────────────────────────────────

type chatTurnRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

func (s *Server) handleChatTurn(w http.ResponseWriter, r *http.Request) {
	var req chatTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	sentiment, err := s.coach.RecordChatTurn(req.UserID, req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"sentiment_score": sentiment})
}

type appOpenRequest struct {
	UserID         string  `json:"user_id"`
	SessionSeconds float64 `json:"session_seconds"`
}

func (s *Server) handleAppOpen(w http.ResponseWriter, r *http.Request) {
	var req appOpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if err := s.coach.RecordAppOpen(req.UserID, req.SessionSeconds); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

// ─── User State ─────────────────────────────────────────────────────────────

func (s *Server) handleUserXP(w http.ResponseWriter, r *http.Request) {
	state, err := s.coach.XP().Current(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleUserAchievements(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	unlocked, err := s.coach.Achievements().ListUnlocked(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if unlocked == nil {
		unlocked = []domain.UnlockedAchievement{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"unlocked": unlocked,
		"total":    s.coach.Achievements().TotalCount(),
	})
}

func (s *Server) handleUserChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := s.coach.Challenges().EnsureWeekly(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, challenges)
}

func (s *Server) handleUserInsights(w http.ResponseWriter, r *http.Request) {
	features, prediction, err := s.coach.Insights(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"features":   features,
		"prediction": prediction,
	})
}

func (s *Server) handleUserNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}

	notifs, err := s.coach.Notifications().Pending(chi.URLParam(r, "id"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if notifs == nil {
		notifs = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, notifs)
}

func (s *Server) handleNotificationSeen(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if err := s.coach.Notifications().MarkSeen(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seen"})
}
