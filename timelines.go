package twitter

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
)

const defaultPageSize = 20

// tweetTimeline describes one cursor-paginated tweet resource.
type tweetTimeline struct {
	operation    string
	method       string
	instructions []string

	// variables builds the request variables for one page.
	variables func(cursor string, count int) map[string]any
	// alternate, if set, builds the fallback shape for variable rejections.
	alternate func(cursor string, count int) map[string]any
}

// fetchTweetTimeline pages through tl under the logical call cl. Lookups
// made before the walk pass the same cl so the call refreshes at most once.
func (c *Client) fetchTweetTimeline(ctx context.Context, cl *call, tl tweetTimeline, opts PageOptions) (*TweetPage, error) {
	norm := c.normalizer(opts.IncludeRaw)
	count := opts.PageSize
	if count <= 0 {
		count = defaultPageSize
	}
	if opts.Limit > 0 {
		count = min(count, opts.Limit)
	}
	method := tl.method
	if method == "" {
		method = "GET"
	}

	fetch := func(ctx context.Context, cursor string) (page[*Tweet], error) {
		req := pageRequest{
			gqlRequest: gqlRequest{
				operation: tl.operation,
				method:    method,
				variables: tl.variables(cursor, count),
				features:  featuresFor(tl.operation),
			},
		}
		if tl.alternate != nil {
			req.alternate = tl.alternate(cursor, count)
		}
		body, err := c.execute(ctx, cl, req)
		if err != nil {
			return page[*Tweet]{}, err
		}
		tweets, next := norm.tweetsFromInstructions(instructionsAt(gjson.ParseBytes(body), tl.instructions...))
		return page[*Tweet]{items: tweets, cursor: next}, nil
	}

	res, err := paginate(ctx, fetch, tweetKey, opts)
	return &TweetPage{Tweets: res.items, NextCursor: res.nextCursor}, err
}

func tweetKey(t *Tweet) string { return t.ID }

// withCursor adds cursor to vars when set.
func withCursor(vars map[string]any, cursor string) map[string]any {
	if cursor != "" {
		vars["cursor"] = cursor
	}
	return vars
}

// GetBookmarks returns one page of the authenticated account's bookmarks.
func (c *Client) GetBookmarks(ctx context.Context, count int) (*TweetPage, error) {
	return c.GetBookmarksPaged(ctx, PageOptions{MaxPages: 1, PageSize: count})
}

// GetBookmarksPaged walks the bookmarks timeline.
func (c *Client) GetBookmarksPaged(ctx context.Context, opts PageOptions) (*TweetPage, error) {
	return c.fetchTweetTimeline(ctx, &call{}, tweetTimeline{
		operation:    OpBookmarks,
		instructions: []string{bookmarksInstructions},
		variables: func(cursor string, count int) map[string]any {
			return withCursor(map[string]any{
				"count":                    count,
				"includePromotedContent":   false,
				"withDownvotePerspective":  false,
				"withReactionsMetadata":    false,
				"withReactionsPerspective": false,
			}, cursor)
		},
	}, opts)
}

// GetLikes returns one page of tweets the authenticated account liked.
func (c *Client) GetLikes(ctx context.Context, count int) (*TweetPage, error) {
	return c.GetLikesPaged(ctx, PageOptions{MaxPages: 1, PageSize: count})
}

// GetLikesPaged walks the likes timeline. The account's user ID is looked
// up first.
func (c *Client) GetLikesPaged(ctx context.Context, opts PageOptions) (*TweetPage, error) {
	cl := &call{}
	me, err := c.currentUser(ctx, cl)
	if err != nil {
		return &TweetPage{}, fmt.Errorf("could not determine current user: %w", err)
	}
	return c.fetchTweetTimeline(ctx, cl, tweetTimeline{
		operation:    OpLikes,
		instructions: []string{userTimelineInstructions, userTimelineV2},
		variables: func(cursor string, count int) map[string]any {
			return withCursor(map[string]any{
				"userId":                 me.ID,
				"count":                  count,
				"includePromotedContent": false,
				"withClientEventToken":   false,
				"withBirdwatchNotes":     false,
				"withVoice":              true,
			}, cursor)
		},
	}, opts)
}

// GetBookmarkFolderTimeline returns one page of a bookmark folder.
func (c *Client) GetBookmarkFolderTimeline(ctx context.Context, folderID string, count int) (*TweetPage, error) {
	return c.GetBookmarkFolderTimelinePaged(ctx, folderID, PageOptions{MaxPages: 1, PageSize: count})
}

// GetBookmarkFolderTimelinePaged walks a bookmark folder. Some deployments
// reject the count variable, so a shape without it is kept as fallback.
func (c *Client) GetBookmarkFolderTimelinePaged(ctx context.Context, folderID string, opts PageOptions) (*TweetPage, error) {
	if folderID == "" {
		return &TweetPage{}, fmt.Errorf("%w: folder id is required", ErrInvalidInput)
	}
	return c.fetchTweetTimeline(ctx, &call{}, tweetTimeline{
		operation:    OpBookmarkFolderTimeline,
		instructions: []string{folderInstructions},
		variables: func(cursor string, count int) map[string]any {
			return withCursor(map[string]any{
				"bookmark_collection_id": folderID,
				"includePromotedContent": true,
				"count":                  count,
			}, cursor)
		},
		alternate: func(cursor string, _ int) map[string]any {
			return withCursor(map[string]any{
				"bookmark_collection_id": folderID,
				"includePromotedContent": true,
			}, cursor)
		},
	}, opts)
}

// GetUserTweets walks the tweets posted by userID, newest first.
func (c *Client) GetUserTweets(ctx context.Context, userID string, opts PageOptions) (*TweetPage, error) {
	return c.userTweets(ctx, &call{}, userID, opts)
}

// GetUserTweetsByScreenName resolves handle and walks its tweets as one
// call. An empty handle means the session's own account.
func (c *Client) GetUserTweetsByScreenName(ctx context.Context, handle string, opts PageOptions) (*TweetPage, error) {
	cl := &call{}
	u, err := c.resolveUser(ctx, cl, handle)
	if err != nil {
		return &TweetPage{}, err
	}
	return c.userTweets(ctx, cl, u.ID, opts)
}

func (c *Client) userTweets(ctx context.Context, cl *call, userID string, opts PageOptions) (*TweetPage, error) {
	if userID == "" {
		return &TweetPage{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return c.fetchTweetTimeline(ctx, cl, tweetTimeline{
		operation:    OpUserTweets,
		instructions: []string{userTimelineInstructions, userTimelineV2},
		variables: func(cursor string, count int) map[string]any {
			return withCursor(map[string]any{
				"userId":                                 userID,
				"count":                                  count,
				"includePromotedContent":                 false,
				"withQuickPromoteEligibilityTweetFields": true,
				"withVoice":                              true,
				"withV2Timeline":                         true,
			}, cursor)
		},
	}, opts)
}
