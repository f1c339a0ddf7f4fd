package twitter

import (
	"context"
	"fmt"
	"strings"
)

// Search returns up to count tweets matching query, newest first, fetching
// as many pages as needed.
func (c *Client) Search(ctx context.Context, query string, count int) (*TweetPage, error) {
	if count <= 0 {
		count = defaultPageSize
	}
	return c.SearchPaged(ctx, query, PageOptions{Limit: count})
}

// SearchPaged runs a "Latest" search with explicit paging control.
func (c *Client) SearchPaged(ctx context.Context, query string, opts PageOptions) (*TweetPage, error) {
	if strings.TrimSpace(query) == "" {
		return &TweetPage{}, fmt.Errorf("%w: empty search query", ErrInvalidInput)
	}
	return c.fetchTweetTimeline(ctx, &call{}, tweetTimeline{
		operation:    OpSearchTimeline,
		method:       "POST",
		instructions: []string{searchInstructions},
		variables: func(cursor string, count int) map[string]any {
			return withCursor(map[string]any{
				"rawQuery":    query,
				"count":       count,
				"querySource": "typed_query",
				"product":     "Latest",
			}, cursor)
		},
	}, opts)
}
