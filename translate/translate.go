// Package translate turns tweet text into another language through an LLM
// provider.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Provider names a translation backend.
type Provider string

const (
	OpenAI    Provider = "openai"
	Anthropic Provider = "anthropic"
	Google    Provider = "google"
	DeepL     Provider = "deepl"
	Azure     Provider = "azure"
	Libre     Provider = "libre"
	Custom    Provider = "custom"
)

// SupportedProviders lists the providers New can build.
var SupportedProviders = []Provider{OpenAI, Anthropic}

var (
	// ErrNotImplemented is returned by New for known providers without a backend.
	ErrNotImplemented = errors.New("translation provider not yet implemented")
	// ErrUnknownProvider is returned by New for unrecognized provider names.
	ErrUnknownProvider = errors.New("unknown translation provider")
	// ErrMissingAPIKey is returned by New when the provider needs a key.
	ErrMissingAPIKey = errors.New("translation requires an API key")
	// ErrEmptyTranslation is returned when the provider answered without text.
	ErrEmptyTranslation = errors.New("empty translation")
)

// Service translates text. sourceLang may be empty for auto-detection.
type Service interface {
	Name() string
	SupportsLanguageDetection() bool
	Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error)
}

// Options configures New.
type Options struct {
	Provider Provider
	APIKey   string
	// APIEndpoint overrides the provider's default URL.
	APIEndpoint string
	// Model overrides the provider's default model.
	Model string
	// HTTPClient defaults to a client with a 60s timeout.
	HTTPClient *http.Client
}

// New builds the Service for opts.Provider.
func New(opts Options) (Service, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(string(opts.Provider))))
	switch p {
	case OpenAI:
		return newOpenAI(opts)
	case Anthropic:
		return newAnthropic(opts)
	case Google, DeepL, Azure, Libre, Custom:
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrNotImplemented, p, supportedList())
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownProvider, opts.Provider, supportedList())
}

func supportedList() string {
	names := make([]string, len(SupportedProviders))
	for i, p := range SupportedProviders {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// systemPrompt is shared by every LLM provider.
func systemPrompt(targetLang, sourceLang string) string {
	hint := ""
	if sourceLang != "" {
		hint = " from " + sourceLang
	}
	return "You are a professional translator. Translate the following text" + hint +
		" to " + targetLang +
		". Return ONLY the translation, with no explanations, preamble, or quotation marks around the result."
}

// maxTokens leaves room for scripts that expand when translated.
func maxTokens(text string) int {
	return max(1024, len([]rune(text))*2)
}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 60 * time.Second}
}

// postJSON sends payload to endpoint and returns the body of a 2xx response.
func postJSON(ctx context.Context, client *http.Client, endpoint, name string, headers map[string]string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s API error (%d): %s", name, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
