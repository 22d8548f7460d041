package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ashureev/lingo-tutor/internal/domain"
	"github.com/ashureev/lingo-tutor/internal/identity"
	"github.com/ashureev/lingo-tutor/internal/tutor"
)

type optionsResponse struct {
	Languages []string          `json:"languages"`
	Levels    []string          `json:"levels"`
	Scenarios []domain.Scenario `json:"scenarios"`
	Exit      string            `json:"exit_command"`
}

type sessionResponse struct {
	*domain.Session
	ScenarioDescription string `json:"scenario_description,omitempty"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type messageResponse struct {
	tutor.Outcome
	Session sessionResponse `json:"session"`
}

type reviewResponse struct {
	SessionID string `json:"session_id"`
	Review    string `json:"review"`
}

// GetOptions returns the configuration catalogs for the UI controls.
func (h *Handler) GetOptions(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, optionsResponse{
		Languages: domain.Languages,
		Levels:    domain.Levels,
		Scenarios: domain.Scenarios,
		Exit:      tutor.ExitCommand,
	})
}

// GetSession returns the caller's current session, or an idle placeholder.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	owner := identity.OwnerFromContext(r.Context())
	if owner == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	session, err := h.sessions.GetSession(r.Context(), owner)
	if err != nil {
		h.logger.Error("failed to load session", "owner", owner, "error", err)
		Error(w, http.StatusServiceUnavailable, fmt.Sprintf("Database error: %v", err))
		return
	}
	if session == nil {
		session = &domain.Session{Owner: owner, State: domain.StateIdle, Turns: []domain.Turn{}}
	}
	JSON(w, http.StatusOK, toSessionResponse(session))
}

// StartSession starts or restarts a conversation with the posted preferences.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	owner := identity.OwnerFromContext(r.Context())
	if owner == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var prefs domain.Preferences
	if !h.decode(w, r, &prefs) {
		return
	}
	if err := prefs.Validate(); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	unlock := h.locks.lock(owner)
	defer unlock()

	session := h.svc.Start(owner, prefs)
	if err := h.sessions.SaveSession(r.Context(), &session); err != nil {
		h.logger.Error("failed to save new session", "owner", owner, "session_id", session.ID, "error", err)
		Error(w, http.StatusServiceUnavailable, fmt.Sprintf("Database error: %v", err))
		return
	}
	JSON(w, http.StatusCreated, toSessionResponse(&session))
}

// PostMessage runs one tutoring turn.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	owner := identity.OwnerFromContext(r.Context())
	if owner == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req messageRequest
	if !h.decode(w, r, &req) {
		return
	}

	unlock := h.locks.lock(owner)
	defer unlock()

	session, err := h.sessions.GetSession(r.Context(), owner)
	if err != nil {
		h.logger.Error("failed to load session", "owner", owner, "error", err)
		Error(w, http.StatusServiceUnavailable, fmt.Sprintf("Database error: %v", err))
		return
	}
	if session == nil {
		Error(w, http.StatusConflict, "no active session; start a conversation first")
		return
	}

	next, outcome, err := h.svc.Handle(r.Context(), *session, req.Message)
	switch {
	case errors.Is(err, tutor.ErrEmptyMessage):
		Error(w, http.StatusBadRequest, "message is required")
		return
	case errors.Is(err, tutor.ErrSessionNotActive):
		Error(w, http.StatusConflict, "no active session; start a conversation first")
		return
	case err != nil:
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.sessions.SaveSession(r.Context(), &next); err != nil {
		h.logger.Error("failed to save session", "owner", owner, "session_id", next.ID, "error", err)
		outcome.Notices = append(outcome.Notices, fmt.Sprintf("Database error: %v", err))
	}

	JSON(w, http.StatusOK, messageResponse{Outcome: outcome, Session: toSessionResponse(&next)})
}

// GetReview returns the review for the caller's current session id.
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	owner := identity.OwnerFromContext(r.Context())
	if owner == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	session, err := h.sessions.GetSession(r.Context(), owner)
	if err != nil {
		Error(w, http.StatusServiceUnavailable, fmt.Sprintf("Database error: %v", err))
		return
	}
	if session == nil {
		Error(w, http.StatusNotFound, "no session")
		return
	}

	JSON(w, http.StatusOK, reviewResponse{
		SessionID: session.ID,
		Review:    h.svc.Review(r.Context(), session.ID),
	})
}

func toSessionResponse(s *domain.Session) sessionResponse {
	resp := sessionResponse{Session: s}
	if sc, ok := domain.FindScenario(s.Preferences.Scenario); ok {
		resp.ScenarioDescription = sc.Description
	}
	return resp
}
