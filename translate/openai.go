package translate

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	openAIDefaultModel    = "gpt-4o-mini"
	openAIDefaultEndpoint = "https://api.openai.com/v1/chat/completions"
)

type openAIService struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

func newOpenAI(opts Options) (*openAIService, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("OpenAI: %w", ErrMissingAPIKey)
	}
	s := &openAIService{
		apiKey:   opts.APIKey,
		model:    opts.Model,
		endpoint: opts.APIEndpoint,
		client:   httpClient(opts.HTTPClient),
	}
	if s.model == "" {
		s.model = openAIDefaultModel
	}
	if s.endpoint == "" {
		s.endpoint = openAIDefaultEndpoint
	}
	return s, nil
}

func (s *openAIService) Name() string                    { return "OpenAI" }
func (s *openAIService) SupportsLanguageDetection() bool { return true }

// Translate calls the chat completions API.
func (s *openAIService) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	body, err := postJSON(ctx, s.client, s.endpoint, "OpenAI",
		map[string]string{"Authorization": "Bearer " + s.apiKey},
		map[string]any{
			"model": s.model,
			"messages": []map[string]string{
				{"role": "system", "content": systemPrompt(targetLang, sourceLang)},
				{"role": "user", "content": text},
			},
			"temperature": 0.3,
			"max_tokens":  maxTokens(text),
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
		return "", fmt.Errorf("OpenAI error: %s", msg)
	}
	out := strings.TrimSpace(doc.Get("choices.0.message.content").String())
	if out == "" {
		return "", fmt.Errorf("OpenAI: %w", ErrEmptyTranslation)
	}
	return out, nil
}
