package twitter

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/tidwall/gjson"
)

// Conversation is one TweetDetail response: the focal tweet and every tweet
// the platform returned around it. Replies and Thread are views over the same
// fetch, so asking for both costs one request.
type Conversation struct {
	TweetID    string
	Focal      *Tweet
	Tweets     []*Tweet
	NextCursor string
}

// Replies returns the direct replies to the focal tweet.
func (cv *Conversation) Replies() []*Tweet {
	return filterReplies(cv.Tweets, cv.TweetID)
}

// Thread returns the tweets sharing the focal tweet's conversation, oldest first.
func (cv *Conversation) Thread() []*Tweet {
	tweets := cv.Tweets
	if cv.Focal != nil && !slices.ContainsFunc(tweets, func(t *Tweet) bool { return t.ID == cv.Focal.ID }) {
		tweets = append([]*Tweet{cv.Focal}, tweets...)
	}
	return threadOf(tweets, cv.TweetID)
}

// tweetDetail fetches one TweetDetail page. A GET answered with 404 is
// retried as POST on the same ID before the next candidate.
func (c *Client) tweetDetail(ctx context.Context, cl *call, tweetID, cursor string) (gjson.Result, error) {
	vars := withCursor(map[string]any{
		"focalTweetId":                           tweetID,
		"with_rux_injections":                    false,
		"rankingMode":                            "Relevance",
		"includePromotedContent":                 true,
		"withCommunity":                          true,
		"withQuickPromoteEligibilityTweetFields": true,
		"withBirdwatchNotes":                     true,
		"withVoice":                              true,
	}, cursor)
	body, err := c.execute(ctx, cl, pageRequest{
		gqlRequest: gqlRequest{
			operation: OpTweetDetail,
			method:    "GET",
			variables: vars,
			features:  featuresFor(OpTweetDetail),
		},
		postOn404: true,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.ParseBytes(body), nil
}

// focalResult locates the queried tweet in a TweetDetail document.
func focalResult(doc gjson.Result, tweetID string) gjson.Result {
	if r := doc.Get("data.tweetResult.result"); unwrapTweet(r).Get("rest_id").String() != "" {
		return r
	}
	return findTweetResult(doc.Get(conversationInstructions), tweetID)
}

// GetConversation fetches the first TweetDetail page for tweetID.
func (c *Client) GetConversation(ctx context.Context, tweetID string, opts TweetOptions) (*Conversation, error) {
	if tweetID == "" {
		return nil, fmt.Errorf("%w: tweet id is required", ErrInvalidInput)
	}
	doc, err := c.tweetDetail(ctx, &call{}, tweetID, "")
	if err != nil {
		return nil, err
	}
	norm := c.normalizer(opts.IncludeRaw)
	tweets, next := norm.tweetsFromInstructions(doc.Get(conversationInstructions))
	return &Conversation{
		TweetID:    tweetID,
		Focal:      norm.mapTweet(focalResult(doc, tweetID), norm.quoteDepth),
		Tweets:     tweets,
		NextCursor: next,
	}, nil
}

// GetTweet fetches a single tweet. Articles whose body the platform
// truncated to the title are completed from the author's article timeline
// when possible.
func (c *Client) GetTweet(ctx context.Context, tweetID string, opts TweetOptions) (*Tweet, error) {
	if tweetID == "" {
		return nil, fmt.Errorf("%w: tweet id is required", ErrInvalidInput)
	}
	doc, err := c.tweetDetail(ctx, &call{}, tweetID, "")
	if err != nil {
		return nil, err
	}
	r := focalResult(doc, tweetID)
	t := c.normalizer(opts.IncludeRaw).mapTweet(r, c.cfg.QuoteDepth)
	if t == nil {
		return nil, &RequestError{Operation: OpTweetDetail, Message: "tweet not found in response", kind: ErrNotFound}
	}
	c.completeArticleText(ctx, r, t)
	return t, nil
}

// GetReplies returns the direct replies found on the first conversation page.
func (c *Client) GetReplies(ctx context.Context, tweetID string) (*TweetPage, error) {
	cv, err := c.GetConversation(ctx, tweetID, TweetOptions{})
	if err != nil {
		return &TweetPage{}, err
	}
	return &TweetPage{Tweets: cv.Replies(), NextCursor: cv.NextCursor}, nil
}

// GetThread returns the conversation thread found on the first page.
func (c *Client) GetThread(ctx context.Context, tweetID string) (*TweetPage, error) {
	cv, err := c.GetConversation(ctx, tweetID, TweetOptions{})
	if err != nil {
		return &TweetPage{}, err
	}
	return &TweetPage{Tweets: cv.Thread(), NextCursor: cv.NextCursor}, nil
}

// GetRepliesPaged walks the conversation and keeps direct replies. Filtering
// runs after aggregation so pages without replies do not end the walk.
func (c *Client) GetRepliesPaged(ctx context.Context, tweetID string, opts PageOptions) (*TweetPage, error) {
	res, err := c.conversationPaged(ctx, tweetID, opts)
	return &TweetPage{Tweets: filterReplies(res.items, tweetID), NextCursor: res.nextCursor}, err
}

// GetThreadPaged walks the conversation and keeps the thread.
func (c *Client) GetThreadPaged(ctx context.Context, tweetID string, opts PageOptions) (*TweetPage, error) {
	res, err := c.conversationPaged(ctx, tweetID, opts)
	return &TweetPage{Tweets: threadOf(res.items, tweetID), NextCursor: res.nextCursor}, err
}

func (c *Client) conversationPaged(ctx context.Context, tweetID string, opts PageOptions) (paged[*Tweet], error) {
	if tweetID == "" {
		return paged[*Tweet]{}, fmt.Errorf("%w: tweet id is required", ErrInvalidInput)
	}
	cl := &call{}
	norm := c.normalizer(opts.IncludeRaw)
	fetch := func(ctx context.Context, cursor string) (page[*Tweet], error) {
		doc, err := c.tweetDetail(ctx, cl, tweetID, cursor)
		if err != nil {
			return page[*Tweet]{}, err
		}
		tweets, next := norm.tweetsFromInstructions(doc.Get(conversationInstructions))
		return page[*Tweet]{items: tweets, cursor: next}, nil
	}
	return paginate(ctx, fetch, tweetKey, opts)
}

func filterReplies(tweets []*Tweet, tweetID string) []*Tweet {
	var out []*Tweet
	for _, t := range tweets {
		if t.InReplyToStatusID == tweetID {
			out = append(out, t)
		}
	}
	return out
}

// threadOf keeps tweets in the queried tweet's conversation (the queried ID
// itself when its conversation is unknown) sorted by creation time.
func threadOf(tweets []*Tweet, tweetID string) []*Tweet {
	root := tweetID
	for _, t := range tweets {
		if t.ID == tweetID && t.ConversationID != "" {
			root = t.ConversationID
			break
		}
	}
	var out []*Tweet
	for _, t := range tweets {
		if t.ConversationID == root {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b *Tweet) int {
		return parseCreatedAt(a.CreatedAt).Compare(parseCreatedAt(b.CreatedAt))
	})
	return out
}

// parseCreatedAt parses the platform timestamp. Unparsable values map to the
// zero time so they sort first.
func parseCreatedAt(s string) time.Time {
	for _, layout := range []string{time.RubyDate, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
