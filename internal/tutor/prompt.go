package tutor

import (
	"fmt"

	"github.com/ashureev/lingo-tutor/internal/domain"
)

const promptTemplate = "Act as a %s language tutor. The student knows %s and is %s level. " +
	"Current scenario: %s. The student wrote: '%s'. " +
	"If there are mistakes, reply with only a JSON object of the form " +
	`{"corrected": "<corrected version>", "explanation": "<brief explanation in English>", "category": "<grammar, vocabulary, spelling, ...>"}. ` +
	"If there are no mistakes, respond normally in %s without special formatting."

// BuildPrompt embeds the learner's preferences and raw message into the
// tutoring instruction sent to the model.
func BuildPrompt(prefs domain.Preferences, message string) string {
	scenario := prefs.Scenario
	if s, ok := domain.FindScenario(prefs.Scenario); ok {
		scenario = fmt.Sprintf("%s (%s)", s.Name, s.Description)
	}
	return fmt.Sprintf(promptTemplate,
		prefs.TargetLanguage, prefs.BaseLanguage, prefs.Level,
		scenario, message, prefs.TargetLanguage,
	)
}
