package draft

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/akaliyev/sponso/internal/config"
	"github.com/akaliyev/sponso/internal/models"
)

// promptTemplate is the user prompt for the drafting model. It asks for
// strict JSON so the structured parse tier usually succeeds.
const promptTemplate = `You write concise, professional sponsorship outreach emails in {{ .Language }}.

Context:
- Project/initiative: {{ .Pitch.Project }}
- Description: {{ .Pitch.Description }}
- Target audience: {{ .Pitch.Audience }}
- Benefits for sponsor: {{ .Pitch.Benefits }}
- Ask amount: {{ .Pitch.AskAmount }}

Lead:
- Company: {{ .Lead.Company }}
- Contact: {{ .Lead.Contact }}
- Contact channel (email/telegram/etc): {{ .Lead.Channel }}
- Notes: {{ .Lead.Note }}

Task:
Generate a single outreach email with:
1) subject (short)
2) body (5-10 short paragraphs max, concrete, respectful, no hype)

Output strictly as JSON:
{"subject": "...", "body": "..."}`

var promptTmpl = template.Must(template.New("draft-prompt").Parse(promptTemplate))

// promptData is the template context for BuildPrompt.
type promptData struct {
	Language string
	Pitch    config.PitchConfig
	Lead     *models.Lead
}

// languageName maps a pitch language code to the wording used in the prompt.
func languageName(code string) string {
	if code == "ru" {
		return "Russian"
	}
	return "English"
}

// BuildPrompt renders the drafting prompt for a lead.
func BuildPrompt(pitch config.PitchConfig, lead *models.Lead) (string, error) {
	var buf bytes.Buffer
	err := promptTmpl.Execute(&buf, promptData{
		Language: languageName(pitch.Language),
		Pitch:    pitch,
		Lead:     lead,
	})
	if err != nil {
		return "", fmt.Errorf("draft: render prompt: %w", err)
	}
	return buf.String(), nil
}
