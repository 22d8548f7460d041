// Package console runs a tutoring session as a blocking terminal dialogue.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ashureev/lingo-tutor/internal/domain"
	"github.com/ashureev/lingo-tutor/internal/tutor"
	"github.com/charmbracelet/lipgloss"
)

// Defaults applied when a preference prompt is left blank.
var defaultPreferences = domain.Preferences{
	TargetLanguage: "Spanish",
	BaseLanguage:   "English",
	Level:          "Beginner",
	Scenario:       "Greetings",
}

type styles struct {
	label       lipgloss.Style
	explanation lipgloss.Style
	notice      lipgloss.Style
	header      lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		label:       r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		explanation: r.NewStyle().Foreground(lipgloss.Color("11")),
		notice:      r.NewStyle().Foreground(lipgloss.Color("9")),
		header:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
	}
}

// Console reads learner input line by line and prints tutor replies.
type Console struct {
	svc    *tutor.Service
	in     *bufio.Scanner
	out    io.Writer
	styles styles
}

// New creates a console bound to the given streams.
func New(svc *tutor.Service, in io.Reader, out io.Writer) *Console {
	return &Console{
		svc:    svc,
		in:     bufio.NewScanner(in),
		out:    out,
		styles: newStyles(out),
	}
}

// Run asks for preferences, then chats until "exit" or end of input, and
// finally prints the session review.
func (c *Console) Run(ctx context.Context) error {
	prefs, err := c.preferences()
	if err != nil {
		return err
	}

	session := c.svc.Start("", prefs)
	c.printf("\n%s %s\nLet's start! (type '%s' to quit)\n\n",
		c.styles.header.Render("Scenario:"),
		domain.SceneDescription(prefs.Scenario, prefs.TargetLanguage),
		tutor.ExitCommand,
	)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, ok := c.prompt("You: ")
		if !ok {
			line = tutor.ExitCommand
		}

		next, outcome, err := c.svc.Handle(ctx, session, line)
		if errors.Is(err, tutor.ErrEmptyMessage) {
			continue
		}
		if err != nil {
			return fmt.Errorf("handle message: %w", err)
		}
		session = next

		for _, notice := range outcome.Notices {
			c.printf("%s\n", c.styles.notice.Render(notice))
		}
		if outcome.Ended {
			c.printf("\n%s\n", outcome.Review)
			return c.in.Err()
		}
		c.printReply(outcome.Reply)
	}
}

func (c *Console) printReply(turn *domain.Turn) {
	if turn == nil {
		return
	}
	c.printf("%s %s\n", c.styles.label.Render("Tutor:"), turn.Content)
	if turn.Correction != nil {
		c.printf("%s %s (%s)\n\n",
			c.styles.explanation.Render("Explanation:"),
			turn.Correction.Explanation,
			turn.Correction.Category,
		)
	}
}

func (c *Console) preferences() (domain.Preferences, error) {
	questions := []struct {
		text     string
		dest     *string
		fallback string
	}{
		{"What language would you like to learn? ", new(string), defaultPreferences.TargetLanguage},
		{"What is your native language? ", new(string), defaultPreferences.BaseLanguage},
		{"What's your current level (beginner/intermediate/advanced)? ", new(string), defaultPreferences.Level},
		{"Choose a scenario (restaurant/hotel/shopping/greetings/travel/business): ", new(string), defaultPreferences.Scenario},
	}

	for _, q := range questions {
		answer, ok := c.prompt(q.text)
		if !ok {
			if err := c.in.Err(); err != nil {
				return domain.Preferences{}, fmt.Errorf("read preferences: %w", err)
			}
			return domain.Preferences{}, io.ErrUnexpectedEOF
		}
		if answer = strings.TrimSpace(answer); answer == "" {
			answer = q.fallback
		}
		*q.dest = answer
	}

	return domain.Preferences{
		TargetLanguage: *questions[0].dest,
		BaseLanguage:   *questions[1].dest,
		Level:          *questions[2].dest,
		Scenario:       *questions[3].dest,
	}, nil
}

func (c *Console) prompt(text string) (string, bool) {
	c.printf("%s", text)
	if !c.in.Scan() {
		return "", false
	}
	return c.in.Text(), true
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}
