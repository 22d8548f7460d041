package domain

import (
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// State is the lifecycle position of a tutoring session.
type State string

const (
	StateIdle          State = "idle"
	StateActive        State = "active"
	StateAwaitingModel State = "awaiting_model"
	StateEnded         State = "ended"
)

// Correction holds the structured part of a mistake-bearing reply.
type Correction struct {
	Corrected   string `json:"corrected"`
	Explanation string `json:"explanation"`
	Category    string `json:"category"`
}

// Turn is a single conversation entry. Turns are kept with the session only.
type Turn struct {
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	Correction *Correction `json:"correction,omitempty"`
}

// Session holds the state of one continuous practice conversation. Owner is
// the browser identity credential; it is never serialized and the store
// restores it from its key.
type Session struct {
	ID          string      `json:"id"`
	Owner       string      `json:"-"`
	Preferences Preferences `json:"preferences"`
	State       State       `json:"state"`
	Turns       []Turn      `json:"turns"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// IsActive reports whether the session accepts messages.
func (s *Session) IsActive() bool {
	return s != nil && s.State == StateActive
}

// AppendTurn adds a turn and bumps UpdatedAt.
func (s *Session) AppendTurn(t Turn) {
	s.Turns = append(s.Turns, t)
	s.UpdatedAt = time.Now()
}
