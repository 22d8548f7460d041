package tutor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ashureev/lingo-tutor/internal/domain"
	"github.com/xeipuuv/gojsonschema"
)

// Delimiter separates corrected text, explanation and category in the
// plain-text reply convention.
const Delimiter = "||"

// ErrMalformedReply is returned when a reply uses the delimiter but does not
// have all three parts.
var ErrMalformedReply = errors.New("malformed model reply")

// ReplyKind classifies a parsed model reply.
type ReplyKind int

const (
	// ReplyPlain is ordinary conversational content.
	ReplyPlain ReplyKind = iota
	// ReplyCorrection carries correction data.
	ReplyCorrection
)

// Reply is the parsed form of a model answer.
type Reply struct {
	Kind       ReplyKind
	Content    string
	Correction *domain.Correction
}

const correctionSchemaJSON = `{
	"type": "object",
	"required": ["corrected", "explanation"],
	"properties": {
		"corrected":   {"type": "string", "minLength": 1},
		"explanation": {"type": "string", "minLength": 1},
		"category":    {"type": "string"}
	}
}`

var correctionSchema = mustSchema(correctionSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("tutor: invalid correction schema: " + err.Error())
	}
	return schema
}

// ParseReply classifies raw model output.
//
// A JSON object reply is validated against the correction schema; anything
// that fails validation is treated as plain content. Otherwise the reply is
// split on Delimiter into at most three parts. No delimiter means plain
// content, and a delimiter with fewer than three parts yields
// ErrMalformedReply.
func ParseReply(raw string) (Reply, error) {
	if candidate, ok := jsonCandidate(raw); ok {
		return parseStructured(raw, candidate), nil
	}

	if !strings.Contains(raw, Delimiter) {
		return plain(raw), nil
	}

	parts := strings.SplitN(raw, Delimiter, 3)
	if len(parts) < 3 {
		return Reply{}, fmt.Errorf("%w: expected 3 parts separated by %q, got %d", ErrMalformedReply, Delimiter, len(parts))
	}

	return correction(parts[0], parts[1], parts[2]), nil
}

func parseStructured(raw, candidate string) Reply {
	result, err := correctionSchema.Validate(gojsonschema.NewStringLoader(candidate))
	if err != nil || !result.Valid() {
		return plain(raw)
	}

	var payload struct {
		Corrected   string `json:"corrected"`
		Explanation string `json:"explanation"`
		Category    string `json:"category"`
	}
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return plain(raw)
	}
	if strings.TrimSpace(payload.Corrected) == "" || strings.TrimSpace(payload.Explanation) == "" {
		return plain(raw)
	}
	return correction(payload.Corrected, payload.Explanation, payload.Category)
}

// jsonCandidate strips markdown fences and reports whether what remains
// looks like a single JSON object.
func jsonCandidate(raw string) (string, bool) {
	out := strings.TrimSpace(raw)
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	out = strings.TrimSpace(out)
	if strings.HasPrefix(out, "{") && strings.HasSuffix(out, "}") {
		return out, true
	}
	return "", false
}

func plain(raw string) Reply {
	return Reply{Kind: ReplyPlain, Content: raw}
}

func correction(corrected, explanation, category string) Reply {
	c := &domain.Correction{
		Corrected:   strings.TrimSpace(corrected),
		Explanation: strings.TrimSpace(explanation),
		Category:    domain.NormalizeCategory(category),
	}
	return Reply{Kind: ReplyCorrection, Content: c.Corrected, Correction: c}
}
