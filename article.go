package twitter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"
)

// completeArticleText replaces t.Text with the full article body when the
// tweet's inline article text is only its title. Best effort: any failure
// leaves t untouched.
func (c *Client) completeArticleText(ctx context.Context, result gjson.Result, t *Tweet) {
	r := unwrapTweet(result)
	title, body := articleContent(r)
	if title == "" {
		return
	}
	if body != "" && strings.TrimSpace(body) != strings.TrimSpace(title) {
		return
	}
	userID := r.Get("core.user_results.result.rest_id").String()
	if userID == "" {
		return
	}

	fullTitle, plain := c.fetchArticlePlainText(ctx, userID, t.ID)
	if plain == "" {
		return
	}
	if fullTitle != "" {
		t.Text = fullTitle + "\n\n" + plain
	} else {
		t.Text = plain
	}
}

// fetchArticlePlainText looks tweetID up in the author's article timeline.
// It tries each candidate ID once and never refreshes the registry.
func (c *Client) fetchArticlePlainText(ctx context.Context, userID, tweetID string) (title, plain string) {
	body, err := c.tryCandidates(ctx, gqlRequest{
		operation: OpUserArticlesTweets,
		method:    "GET",
		variables: map[string]any{
			"userId":                                 userID,
			"count":                                  20,
			"includePromotedContent":                 true,
			"withVoice":                              true,
			"withQuickPromoteEligibilityTweetFields": true,
			"withBirdwatchNotes":                     true,
			"withCommunity":                          true,
			"withSafetyModeUserFields":               true,
			"withSuperFollowsUserFields":             true,
			"withDownvotePerspective":                false,
			"withReactionsMetadata":                  false,
			"withReactionsPerspective":               false,
			"withSuperFollowsTweetFields":            true,
			"withSuperFollowsReplyCount":             false,
			"withClientEventToken":                   false,
		},
		features:     featuresFor(OpUserArticlesTweets),
		fieldToggles: articleFieldToggles(),
	}, false)
	if err != nil {
		slog.Debug("article text fallback failed", slog.String("tweet_id", tweetID), slog.Any("error", err))
		return "", ""
	}

	doc := gjson.ParseBytes(body)
	found := findTweetResult(instructionsAt(doc, userTimelineInstructions, userTimelineV2), tweetID)
	if !found.Exists() {
		return "", ""
	}
	return articleContent(found)
}
