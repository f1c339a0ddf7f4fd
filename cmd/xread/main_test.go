package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	twitter "github.com/anatolykoptev/go-xreader"
)

func TestTweetIDFromArg(t *testing.T) {
	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{"1234567890", "1234567890", false},
		{"https://x.com/alice/status/1799999999999999999", "1799999999999999999", false},
		{"https://twitter.com/alice/status/42?s=20", "42", false},
		{"https://mobile.twitter.com/alice/statuses/7", "7", false},
		{"https://x.com/alice", "", true},
		{"abc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := tweetIDFromArg(tt.arg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func pagingCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addPagingFlags(cmd, 20)
	cmd.Flags().Bool("json-full", false, "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestPageOptions(t *testing.T) {
	opts := pageOptions(pagingCmd(t))
	assert.Equal(t, twitter.PageOptions{MaxPages: 1, PageSize: 20, Limit: 20, PageDelay: time.Second}, opts)

	opts = pageOptions(pagingCmd(t, "--all", "--max-pages", "3", "--delay", "250ms", "--cursor", "abc", "--json-full"))
	assert.Equal(t, twitter.PageOptions{MaxPages: 3, StartCursor: "abc", PageDelay: 250 * time.Millisecond, IncludeRaw: true}, opts)
}

type fakeTranslator struct {
	calls []string
	fail  bool
}

func (f *fakeTranslator) Name() string                    { return "Fake" }
func (f *fakeTranslator) SupportsLanguageDetection() bool { return true }
func (f *fakeTranslator) Translate(_ context.Context, text, target, _ string) (string, error) {
	f.calls = append(f.calls, text)
	if f.fail {
		return "", errors.New("quota exceeded")
	}
	return "[" + target + "] " + text, nil
}

func TestTranslatorApply(t *testing.T) {
	no := false
	tweets := []*twitter.Tweet{
		{ID: "1", Text: "Bonjour", Lang: "fr"},
		{ID: "2", Text: "Hello", Lang: "EN"},
		{ID: "3", Text: "Hola", Lang: "es", IsTranslatable: &no},
		{ID: "4", Text: "  "},
	}
	fake := &fakeTranslator{}
	tr := &translator{svc: fake, provider: "openai", target: "en"}

	tr.apply(context.Background(), tweets...)

	assert.Equal(t, []string{"Bonjour"}, fake.calls)
	assert.Equal(t, "[en] Bonjour", tweets[0].TranslatedText)
	assert.Equal(t, "en", tweets[0].TranslatedTo)
	assert.Equal(t, "openai", tweets[0].TranslationProvider)
	for _, tw := range tweets[1:] {
		assert.Empty(t, tw.TranslatedText, tw.ID)
	}
}

func TestTranslatorApply_FailureLeavesTweet(t *testing.T) {
	tw := &twitter.Tweet{ID: "1", Text: "Bonjour", Lang: "fr"}
	tr := &translator{svc: &fakeTranslator{fail: true}, provider: "anthropic", target: "en"}

	tr.apply(context.Background(), tw)
	assert.Empty(t, tw.TranslatedText)
	assert.Empty(t, tw.TranslationProvider)

	var none *translator
	none.apply(context.Background(), tw)
}

func TestNewsOptions(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntP("count", "n", 10, "")
	cmd.Flags().StringSlice("tab", nil, "")
	cmd.Flags().Bool("ai-only", false, "")
	cmd.Flags().Bool("json-full", false, "")
	require.NoError(t, cmd.ParseFlags([]string{"-n", "3", "--tab", "for-you,Sports", "--ai-only"}))

	opts, err := newsOptions(cmd)
	require.NoError(t, err)
	assert.Equal(t, twitter.NewsOptions{Count: 3, Tabs: []twitter.NewsTab{twitter.TabForYou, twitter.TabSports}, AIOnly: true}, opts)

	require.NoError(t, cmd.ParseFlags([]string{"--tab", "weather"}))
	_, err = newsOptions(cmd)
	require.Error(t, err)
}
