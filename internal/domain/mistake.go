// Package domain contains core domain types for the language tutor.
package domain

import (
	"strings"
	"time"
)

// DefaultCategory is used when the model does not name a mistake category.
const DefaultCategory = "General"

// Mistake is one detected language error and its correction.
type Mistake struct {
	ID            int64     `json:"id"`
	SessionID     string    `json:"session_id"`
	CreatedAt     time.Time `json:"created_at"`
	IncorrectText string    `json:"incorrect_text"`
	CorrectedText string    `json:"corrected_text"`
	Explanation   string    `json:"explanation"`
	Category      string    `json:"category"`
}

// NormalizeCategory trims the category and falls back to DefaultCategory.
func NormalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return DefaultCategory
	}
	return category
}
