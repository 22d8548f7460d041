package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPreferences is returned when preferences fall outside the catalogs.
var ErrInvalidPreferences = errors.New("invalid preferences")

// Languages offered by the UI.
var Languages = []string{
	"English", "Spanish", "French", "German", "Italian",
	"Chinese", "Japanese", "Korean", "Russian", "Arabic",
	"Portuguese", "Hindi", "Turkish", "Dutch", "Swedish",
}

// Levels offered by the UI.
var Levels = []string{"Beginner", "Intermediate", "Advanced"}

// Scenario is a named role-play context.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Scenarios offered by the UI, in display order.
var Scenarios = []Scenario{
	{Name: "Restaurant", Description: "Order food and interact with the waiter"},
	{Name: "Hotel", Description: "Check-in at a hotel"},
	{Name: "Shopping", Description: "Negotiate prices in a store"},
	{Name: "Greetings", Description: "Casual conversation"},
	{Name: "Travel", Description: "Ask for directions"},
	{Name: "Business", Description: "Professional meeting"},
}

// Preferences are the learner's choices for a session.
type Preferences struct {
	TargetLanguage string `json:"target_language"`
	BaseLanguage   string `json:"base_language"`
	Level          string `json:"level"`
	Scenario       string `json:"scenario"`
}

// Validate checks that every field is drawn from the catalogs.
// The console variant accepts free text and does not call this.
func (p Preferences) Validate() error {
	if !contains(Languages, p.TargetLanguage) {
		return fmt.Errorf("%w: unknown target language %q", ErrInvalidPreferences, p.TargetLanguage)
	}
	if !contains(Languages, p.BaseLanguage) {
		return fmt.Errorf("%w: unknown native language %q", ErrInvalidPreferences, p.BaseLanguage)
	}
	if !contains(Levels, p.Level) {
		return fmt.Errorf("%w: unknown level %q", ErrInvalidPreferences, p.Level)
	}
	if _, ok := FindScenario(p.Scenario); !ok {
		return fmt.Errorf("%w: unknown scenario %q", ErrInvalidPreferences, p.Scenario)
	}
	return nil
}

// FindScenario looks up a scenario by name, ignoring case.
func FindScenario(name string) (Scenario, bool) {
	for _, s := range Scenarios {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return Scenario{}, false
}

// SceneDescription returns the console introduction for a scenario.
func SceneDescription(scenario, targetLang string) string {
	switch strings.ToLower(strings.TrimSpace(scenario)) {
	case "restaurant":
		return fmt.Sprintf("You're in a %s-speaking restaurant. Order food and interact with the waiter.", targetLang)
	case "hotel":
		return fmt.Sprintf("You're checking into a %s-speaking hotel. Talk to the receptionist.", targetLang)
	case "shopping":
		return fmt.Sprintf("You're shopping in a %s store. Negotiate prices and ask about products.", targetLang)
	case "greetings":
		return fmt.Sprintf("Start a casual conversation with a %s speaker you just met.", targetLang)
	default:
		return "General conversation"
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
