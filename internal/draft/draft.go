// Package draft produces outreach email drafts for leads. Drafts come from
// the OpenAI chat completions API when a key is configured, or from a local
// letter template otherwise.
package draft

import (
	"context"
	"strings"

	"github.com/akaliyev/sponso/internal/config"
	"github.com/akaliyev/sponso/internal/models"
)

// Source tags how a draft's subject/body pair was obtained, so the parse
// fallback tiers stay visible to callers and tests.
type Source string

const (
	// SourceStructured means the model returned well-formed JSON.
	SourceStructured Source = "structured"
	// SourceHeuristic means the JSON parse failed and the draft was split
	// from plain text (first line as subject).
	SourceHeuristic Source = "heuristic"
	// SourceFallback means nothing usable was produced and fixed placeholder
	// content was substituted.
	SourceFallback Source = "fallback"
)

// Placeholder content used when the model output is entirely unusable.
const (
	FallbackSubject = "Sponsorship proposal"
	FallbackBody    = "Hello!"
)

// maxSubjectLen caps a heuristically extracted subject line.
const maxSubjectLen = 120

// Draft is a generated outreach email.
type Draft struct {
	Subject string
	Body    string
	Source  Source
}

// Drafter generates an outreach draft for a lead.
type Drafter interface {
	Draft(ctx context.Context, pitch config.PitchConfig, lead *models.Lead) (Draft, error)
}

// ParseContent turns raw model output into a Draft, degrading through the
// tiers: structured JSON, heuristic first-line split, fixed placeholder.
func ParseContent(content string) Draft {
	content = strings.TrimSpace(content)

	if d, ok := parseJSON(content); ok {
		return d
	}

	var lines []string
	for _, l := range strings.Split(content, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return Draft{Subject: FallbackSubject, Body: FallbackBody, Source: SourceFallback}
	}

	subject := lines[0]
	if r := []rune(subject); len(r) > maxSubjectLen {
		subject = string(r[:maxSubjectLen])
	}
	body := strings.TrimSpace(strings.Join(lines[1:], "\n"))
	if body == "" {
		body = content
	}
	return Draft{Subject: subject, Body: body, Source: SourceHeuristic}
}
