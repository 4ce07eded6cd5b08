package draft

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/akaliyev/sponso/internal/config"
	"github.com/akaliyev/sponso/internal/models"
)

// Offline letter templates, used when no drafting API is configured. The
// operator replaces the [Your name] placeholders before sending by hand.
const (
	letterEN = `Hello, {{ .Lead.Contact }}!

My name is [Your name]. I represent {{ .Pitch.Project }}.
{{ .Pitch.Description }}

We are exploring a partnership with {{ .Lead.Company }}. In return we offer: {{ .Pitch.Benefits }}.

Our budget guideline is {{ .Pitch.AskAmount }}. Would a short call to discuss the details work for you?

Best regards,
[Your name]
`

	letterRU = `Здравствуйте, {{ .Lead.Contact }}!

Меня зовут [Ваше имя]. Я представляю {{ .Pitch.Project }}.
{{ .Pitch.Description }}

Мы рассматриваем партнёрство со стороны {{ .Lead.Company }}. Взамен предлагаем: {{ .Pitch.Benefits }}.

Ориентир по бюджету: {{ .Pitch.AskAmount }}. Будет ли удобно обсудить детали коротким созвоном?

С уважением,
[Ваше имя]
`
)

var (
	letterTmplEN = template.Must(template.New("letter-en").Parse(letterEN))
	letterTmplRU = template.Must(template.New("letter-ru").Parse(letterRU))
)

// TemplateDrafter renders a fixed letter from the pitch configuration. It
// never fails and always reports SourceFallback so the UI can show that no
// model was involved.
type TemplateDrafter struct{}

// Draft renders the offline letter for the lead.
func (TemplateDrafter) Draft(_ context.Context, pitch config.PitchConfig, lead *models.Lead) (Draft, error) {
	tmpl := letterTmplEN
	if pitch.Language == "ru" {
		tmpl = letterTmplRU
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		Pitch config.PitchConfig
		Lead  *models.Lead
	}{pitch, lead})
	if err != nil {
		return Draft{}, fmt.Errorf("draft: render letter: %w", err)
	}

	return Draft{
		Subject: fmt.Sprintf("Sponsorship proposal for %s", pitch.Project),
		Body:    buf.String(),
		Source:  SourceFallback,
	}, nil
}

// ForConfig picks the drafter implied by the OpenAI settings: the API client
// when a key is configured, the offline letter template otherwise.
func ForConfig(cfg config.OpenAIConfig) (Drafter, error) {
	if cfg.APIKey == "" {
		return TemplateDrafter{}, nil
	}
	return NewOpenAIDrafter(OpenAIOpts{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
}
