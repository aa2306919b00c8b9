package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/giglink/giglink/internal/config"
	"github.com/ollama/ollama/api"
)

const extractPrompt = `Extract the professional skills mentioned in the text below.
Respond with a JSON array of lowercase skill names and nothing else.

Text:
%s`

// LLMExtractor asks a local Ollama model for skills the fixed vocabulary
// misses. Callers fall back to Extract when the model is unavailable.
type LLMExtractor struct {
	client  *api.Client
	model   string
	timeout time.Duration
}

// NewLLMExtractor returns nil when no base URL is configured; the caller then
// runs on the vocabulary extractor alone.
func NewLLMExtractor(cfg config.ExtractorConfig) (*LLMExtractor, error) {
	if cfg.BaseURL == "" {
		return nil, nil
	}

	base, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &LLMExtractor{
		client:  api.NewClient(base, &http.Client{Timeout: timeout}),
		model:   cfg.Model,
		timeout: timeout,
	}, nil
}

// Extract sends the text to the model and parses a JSON array from the
// response. The vocabulary tokens found in the text are merged in so the
// model can only ever add skills, never lose the deterministic baseline.
func (e *LLMExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	stream := false
	req := &api.GenerateRequest{
		Model:  e.model,
		Prompt: fmt.Sprintf(extractPrompt, text),
		Stream: &stream,
	}

	var raw strings.Builder
	respFunc := func(resp api.GenerateResponse) error {
		raw.WriteString(resp.Response)
		return nil
	}
	if err := e.client.Generate(ctx, req, respFunc); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	extracted, err := parseSkillArray(raw.String())
	if err != nil {
		return nil, err
	}

	return mergeSkills(Extract(text), extracted), nil
}

// parseSkillArray pulls the first JSON array out of the model output; models
// tend to wrap answers in prose or code fences.
func parseSkillArray(out string) ([]string, error) {
	start := strings.Index(out, "[")
	end := strings.LastIndex(out, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in model output")
	}

	var parsed []string
	if err := json.Unmarshal([]byte(out[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}
	return parsed, nil
}

func mergeSkills(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	merged := make([]string, 0, len(base)+len(extra))
	for _, s := range base {
		seen[strings.ToLower(s)] = true
		merged = append(merged, s)
	}
	for _, s := range extra {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		merged = append(merged, s)
	}
	return merged
}
