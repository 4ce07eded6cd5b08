package draft

import (
	"encoding/json"
	"strings"
)

// draftJSON is the shape the prompt asks the model to return.
type draftJSON struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// parseJSON extracts a structured draft from model output. Models sometimes
// wrap JSON in a markdown code fence, so the fence is stripped first.
func parseJSON(content string) (Draft, bool) {
	raw := stripCodeFence(content)

	var dj draftJSON
	if err := json.Unmarshal([]byte(raw), &dj); err != nil {
		return Draft{}, false
	}
	subject := strings.TrimSpace(dj.Subject)
	body := strings.TrimSpace(dj.Body)
	if subject == "" || body == "" {
		return Draft{}, false
	}
	return Draft{Subject: subject, Body: body, Source: SourceStructured}, true
}

// stripCodeFence removes a surrounding ```json ... ``` fence, if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
