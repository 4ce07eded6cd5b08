package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/akaliyev/sponso/internal/config"
	"github.com/akaliyev/sponso/internal/models"
)

// defaultTimeout bounds a single drafting call. The call is synchronous and
// blocks only the conversation that triggered it.
const defaultTimeout = 60 * time.Second

// OpenAIDrafter calls an OpenAI-compatible chat completions endpoint.
type OpenAIDrafter struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// OpenAIOpts holds parameters for creating an OpenAIDrafter.
type OpenAIOpts struct {
	BaseURL string // e.g. "https://api.openai.com/v1"
	APIKey  string
	Model   string
	Client  *http.Client // optional; defaults to a 60s-timeout client
}

// NewOpenAIDrafter creates an OpenAIDrafter.
func NewOpenAIDrafter(opts OpenAIOpts) (*OpenAIDrafter, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("draft: openai: api key is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("draft: openai: model is required")
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &OpenAIDrafter{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		model:   opts.Model,
		client:  client,
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Draft generates an outreach email for the lead. Any transport, status, or
// decode error is returned as-is; the caller decides how to surface it. A
// successful HTTP exchange always yields a draft; unusable content degrades
// through the parse tiers instead of failing.
func (d *OpenAIDrafter) Draft(ctx context.Context, pitch config.PitchConfig, lead *models.Lead) (Draft, error) {
	prompt, err := BuildPrompt(pitch, lead)
	if err != nil {
		return Draft{}, err
	}

	payload, err := json.Marshal(chatRequest{
		Model: d.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful assistant."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return Draft{}, fmt.Errorf("draft: openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Draft{}, fmt.Errorf("draft: openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return Draft{}, fmt.Errorf("draft: openai: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Draft{}, fmt.Errorf("draft: openai: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Draft{}, fmt.Errorf("draft: openai: status %d: %s", resp.StatusCode, truncateErrBody(body))
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return Draft{}, fmt.Errorf("draft: openai: decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return Draft{}, fmt.Errorf("draft: openai: response has no choices")
	}

	return ParseContent(cr.Choices[0].Message.Content), nil
}

// truncateErrBody keeps API error bodies readable in wrapped errors.
func truncateErrBody(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
