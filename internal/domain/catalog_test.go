package domain

import (
	"errors"
	"testing"
)

func TestCatalogSizes(t *testing.T) {
	if len(Languages) != 15 {
		t.Errorf("expected 15 languages, got %d", len(Languages))
	}
	if len(Levels) != 3 {
		t.Errorf("expected 3 levels, got %d", len(Levels))
	}
	if len(Scenarios) != 6 {
		t.Errorf("expected 6 scenarios, got %d", len(Scenarios))
	}
}

func TestPreferencesValidate(t *testing.T) {
	valid := Preferences{TargetLanguage: "Japanese", BaseLanguage: "Korean", Level: "Advanced", Scenario: "business"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid preferences, got %v", err)
	}

	cases := []Preferences{
		{TargetLanguage: "Klingon", BaseLanguage: "English", Level: "Beginner", Scenario: "Hotel"},
		{TargetLanguage: "French", BaseLanguage: "", Level: "Beginner", Scenario: "Hotel"},
		{TargetLanguage: "French", BaseLanguage: "English", Level: "Expert", Scenario: "Hotel"},
		{TargetLanguage: "French", BaseLanguage: "English", Level: "Beginner", Scenario: "Moon"},
	}
	for _, p := range cases {
		if err := p.Validate(); !errors.Is(err, ErrInvalidPreferences) {
			t.Errorf("expected ErrInvalidPreferences for %+v, got %v", p, err)
		}
	}
}

func TestSceneDescription(t *testing.T) {
	if got := SceneDescription("Hotel", "German"); got != "You're checking into a German-speaking hotel. Talk to the receptionist." {
		t.Errorf("unexpected hotel scene %q", got)
	}
	if got := SceneDescription("travel", "German"); got != "General conversation" {
		t.Errorf("unexpected fallback scene %q", got)
	}
}

func TestNormalizeCategory(t *testing.T) {
	for in, want := range map[string]string{"": "General", "  ": "General", " grammar ": "grammar"} {
		if got := NormalizeCategory(in); got != want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSessionAppendTurn(t *testing.T) {
	s := &Session{State: StateActive}
	s.AppendTurn(Turn{Role: RoleUser, Content: "hola"})
	if len(s.Turns) != 1 || s.UpdatedAt.IsZero() {
		t.Fatalf("unexpected session after append: %+v", s)
	}
	if !s.IsActive() {
		t.Fatal("expected active session")
	}
	var nilSession *Session
	if nilSession.IsActive() {
		t.Fatal("nil session must not be active")
	}
}
