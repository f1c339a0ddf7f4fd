package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	twitter "github.com/anatolykoptev/go-xreader"
	"github.com/anatolykoptev/go-xreader/translate"
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("translate-to", "", "translate tweet text to this language code")
	pf.String("translate-from", "", "source language code (default: auto-detect)")
	pf.String("translation-provider", "openai", "translation provider (openai, anthropic)")
	pf.String("translation-api-key", "", "API key for the translation provider")
	pf.String("translation-model", "", "model override for the translation provider")

	for key, flag := range map[string]string{
		"translate_to":         "translate-to",
		"translate_from":       "translate-from",
		"translation_provider": "translation-provider",
		"translation_api_key":  "translation-api-key",
		"translation_model":    "translation-model",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
	_ = viper.BindEnv("translation_api_key", "XREAD_TRANSLATION_API_KEY", "TRANSLATION_API_KEY")
}

// translator is the translation stage of a command, nil when --translate-to
// is not set.
type translator struct {
	svc      translate.Service
	provider string
	target   string
	source   string
}

func newTranslator() (*translator, error) {
	target := viper.GetString("translate_to")
	if target == "" {
		return nil, nil
	}
	provider := viper.GetString("translation_provider")
	svc, err := translate.New(translate.Options{
		Provider: translate.Provider(provider),
		APIKey:   viper.GetString("translation_api_key"),
		Model:    viper.GetString("translation_model"),
	})
	if err != nil {
		return nil, err
	}
	return &translator{
		svc:      svc,
		provider: strings.ToLower(provider),
		target:   target,
		source:   viper.GetString("translate_from"),
	}, nil
}

// skip reports whether t needs no translation: it is already in the target
// language or the platform marked it untranslatable.
func (tr *translator) skip(t *twitter.Tweet) bool {
	if strings.TrimSpace(t.Text) == "" {
		return true
	}
	if t.Lang != "" && strings.EqualFold(t.Lang, tr.target) {
		return true
	}
	return t.IsTranslatable != nil && !*t.IsTranslatable
}

// apply translates each tweet in place. Failures are logged and leave the
// tweet untranslated.
func (tr *translator) apply(ctx context.Context, tweets ...*twitter.Tweet) {
	if tr == nil {
		return
	}
	for _, t := range tweets {
		if t == nil || tr.skip(t) {
			continue
		}
		out, err := tr.svc.Translate(ctx, t.Text, tr.target, tr.source)
		if err != nil {
			slog.Warn("translation failed",
				slog.String("tweet_id", t.ID),
				slog.String("provider", tr.provider),
				slog.Any("error", err))
			continue
		}
		t.TranslatedText = out
		t.TranslatedTo = tr.target
		t.TranslationProvider = tr.provider
	}
}

// setup builds the client and the optional translator for a command run.
func setup() (*twitter.Client, *translator, error) {
	c, err := newClient()
	if err != nil {
		return nil, nil, err
	}
	tr, err := newTranslator()
	if err != nil {
		return nil, nil, err
	}
	return c, tr, nil
}
