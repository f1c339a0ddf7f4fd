package translate

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	anthropicDefaultModel    = "claude-sonnet-4-20250514"
	anthropicDefaultEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion         = "2023-06-01"
)

type anthropicService struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

func newAnthropic(opts Options) (*anthropicService, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("Anthropic: %w", ErrMissingAPIKey)
	}
	s := &anthropicService{
		apiKey:   opts.APIKey,
		model:    opts.Model,
		endpoint: opts.APIEndpoint,
		client:   httpClient(opts.HTTPClient),
	}
	if s.model == "" {
		s.model = anthropicDefaultModel
	}
	if s.endpoint == "" {
		s.endpoint = anthropicDefaultEndpoint
	}
	return s, nil
}

func (s *anthropicService) Name() string                    { return "Anthropic" }
func (s *anthropicService) SupportsLanguageDetection() bool { return true }

// Translate calls the messages API and returns the first text block.
func (s *anthropicService) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	body, err := postJSON(ctx, s.client, s.endpoint, "Anthropic",
		map[string]string{
			"x-api-key":         s.apiKey,
			"anthropic-version": anthropicVersion,
		},
		map[string]any{
			"model":      s.model,
			"max_tokens": maxTokens(text),
			"system":     systemPrompt(targetLang, sourceLang),
			"messages": []map[string]string{
				{"role": "user", "content": text},
			},
		})
	if err != nil {
		return "", err
	}

	doc := gjson.ParseBytes(body)
	if e := doc.Get("error"); e.Exists() {
		msg := e.Get("message").String()
		if msg == "" {
			msg = e.Get("type").String()
		}
		if msg == "" {
			msg = "unknown error"
		}
		return "", fmt.Errorf("Anthropic error: %s", msg)
	}
	out := strings.TrimSpace(doc.Get(`content.#(type=="text").text`).String())
	if out == "" {
		return "", fmt.Errorf("Anthropic: %w", ErrEmptyTranslation)
	}
	return out, nil
}
