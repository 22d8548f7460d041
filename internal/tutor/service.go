// Package tutor implements the mistake-extraction and session-review pipeline.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/ashureev/lingo-tutor/internal/domain"
	"github.com/ashureev/lingo-tutor/internal/llm"
	"github.com/ashureev/lingo-tutor/internal/store"
	"github.com/google/uuid"
)

const (
	// ExitCommand ends a session when sent as a message.
	ExitCommand = "exit"
	// MalformedReplyNotice tells the learner a reply was shown unparsed.
	MalformedReplyNotice = "The tutor's reply could not be parsed; it is shown as received."
)

var (
	// ErrSessionNotActive is returned for messages sent to an idle or ended session.
	ErrSessionNotActive = errors.New("session is not active")
	// ErrEmptyMessage is returned for blank messages.
	ErrEmptyMessage = errors.New("message is empty")
)

// Outcome describes what one orchestrator step produced for the learner.
type Outcome struct {
	// Reply is the assistant turn, nil when the model call failed or the session ended.
	Reply *domain.Turn `json:"reply,omitempty"`
	// Notices are user-visible diagnostics for failures that did not stop the session.
	Notices []string `json:"notices,omitempty"`
	// Ended is set when the message was the exit command.
	Ended bool `json:"ended"`
	// Review is the session report, set when Ended.
	Review string `json:"review,omitempty"`
}

// Service drives tutoring sessions. It holds no per-session state; every
// call receives a session and returns the updated one.
type Service struct {
	llm      llm.Client
	mistakes store.MistakeLog
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a tutoring service.
func NewService(client llm.Client, mistakes store.MistakeLog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		llm:      client,
		mistakes: mistakes,
		logger:   logger,
		now:      time.Now,
	}
}

// NewSessionID derives a timestamp-based identifier. The random suffix keeps
// two restarts within the same second apart.
func NewSessionID(now time.Time) string {
	return now.Format("20060102150405") + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Start begins a fresh session, discarding any previous conversation.
func (s *Service) Start(owner string, prefs domain.Preferences) domain.Session {
	now := s.now()
	session := domain.Session{
		ID:          NewSessionID(now),
		Owner:       owner,
		Preferences: prefs,
		State:       domain.StateActive,
		Turns:       []domain.Turn{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.logger.Info("session started",
		"session_id", session.ID,
		"target_language", prefs.TargetLanguage,
		"level", prefs.Level,
		"scenario", prefs.Scenario,
	)
	return session
}

// Handle processes one learner message.
func (s *Service) Handle(ctx context.Context, session domain.Session, message string) (domain.Session, Outcome, error) {
	if !session.IsActive() {
		return session, Outcome{}, ErrSessionNotActive
	}
	if strings.TrimSpace(message) == "" {
		return session, Outcome{}, ErrEmptyMessage
	}

	next := session
	next.Turns = slices.Clone(session.Turns)

	if strings.EqualFold(strings.TrimSpace(message), ExitCommand) {
		ended, review := s.End(ctx, next)
		return ended, Outcome{Ended: true, Review: review}, nil
	}

	next.AppendTurn(domain.Turn{Role: domain.RoleUser, Content: message})
	next.State = domain.StateAwaitingModel

	raw, err := s.llm.Complete(ctx, BuildPrompt(next.Preferences, message))
	next.State = domain.StateActive
	if err != nil {
		s.logger.Error("model invocation failed", "session_id", next.ID, "error", err)
		return next, Outcome{Notices: []string{fmt.Sprintf("AI Service Error: %v", err)}}, nil
	}

	var outcome Outcome
	reply, err := ParseReply(raw)
	if err != nil {
		s.logger.Warn("unparseable model reply, showing it verbatim",
			"session_id", next.ID,
			"error", err,
			"raw", raw,
		)
		reply = plain(raw)
		outcome.Notices = append(outcome.Notices, MalformedReplyNotice)
	}

	turn := domain.Turn{Role: domain.RoleAssistant, Content: reply.Content}
	if reply.Kind == ReplyCorrection {
		turn.Correction = reply.Correction
		if notice := s.record(ctx, next.ID, message, reply.Correction); notice != "" {
			outcome.Notices = append(outcome.Notices, notice)
		}
	}

	next.AppendTurn(turn)
	outcome.Reply = &turn
	return next, outcome, nil
}

// record persists a mistake. Failures are logged and returned as a notice.
func (s *Service) record(ctx context.Context, sessionID, incorrect string, c *domain.Correction) string {
	if s.mistakes == nil {
		return "Database error: no storage connection"
	}
	err := s.mistakes.RecordMistake(ctx, sessionID, incorrect, c.Corrected, c.Explanation, c.Category)
	if err != nil {
		s.logger.Error("failed to record mistake", "session_id", sessionID, "error", err)
		return fmt.Sprintf("Database error: %v", err)
	}
	s.logger.Debug("mistake recorded", "session_id", sessionID, "category", c.Category)
	return ""
}

// End marks the session ended and returns its review.
func (s *Service) End(ctx context.Context, session domain.Session) (domain.Session, string) {
	session.State = domain.StateEnded
	session.UpdatedAt = s.now()
	review := s.Review(ctx, session.ID)
	s.logger.Info("session ended", "session_id", session.ID, "turns", len(session.Turns))
	return session, review
}

// Review fetches and formats the session's mistakes. Storage failures are
// returned as a diagnostic in place of the report.
func (s *Service) Review(ctx context.Context, sessionID string) string {
	if s.mistakes == nil {
		return "Error retrieving review: no storage connection"
	}
	mistakes, err := s.mistakes.FetchMistakes(ctx, sessionID)
	if err != nil {
		s.logger.Error("failed to fetch mistakes", "session_id", sessionID, "error", err)
		return fmt.Sprintf("Error retrieving review: %v", err)
	}
	return FormatReview(mistakes)
}
