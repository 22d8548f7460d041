package tutor

import (
	"fmt"
	"strings"

	"github.com/ashureev/lingo-tutor/internal/domain"
)

// NoMistakesMessage is the whole review when a session recorded nothing.
const NoMistakesMessage = "No mistakes found! Great job!"

// FormatReview renders mistakes grouped by upper-cased category. Sections
// follow the order in which each category first appears and entries keep
// their original order.
func FormatReview(mistakes []domain.Mistake) string {
	if len(mistakes) == 0 {
		return NoMistakesMessage
	}

	var order []string
	groups := make(map[string][]domain.Mistake)
	for _, m := range mistakes {
		key := strings.ToUpper(domain.NormalizeCategory(m.Category))
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], m)
	}

	var b strings.Builder
	b.WriteString("Mistakes Review:\n")
	for _, key := range order {
		fmt.Fprintf(&b, "\n=== %s ===\n", key)
		for i, m := range groups[key] {
			fmt.Fprintf(&b, "%d. Original: %s\n", i+1, m.IncorrectText)
			fmt.Fprintf(&b, "   Corrected: %s\n", m.CorrectedText)
			fmt.Fprintf(&b, "   Explanation: %s\n", m.Explanation)
		}
	}
	return b.String()
}
