package twitter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
	"github.com/google/uuid"
)

// Doer is the HTTP surface the client needs. *stealth.BrowserClient satisfies it.
// Response header keys are lower-case.
type Doer interface {
	DoWithHeaderOrder(method, url string, headers map[string]string, body io.Reader, order []string) ([]byte, map[string]string, int, error)
}

// Searcher runs full-text tweet searches.
type Searcher interface {
	Search(ctx context.Context, query string, count int) (*TweetPage, error)
	SearchPaged(ctx context.Context, query string, opts PageOptions) (*TweetPage, error)
}

// Timelines reads the authenticated account's collections.
type Timelines interface {
	GetBookmarks(ctx context.Context, count int) (*TweetPage, error)
	GetBookmarksPaged(ctx context.Context, opts PageOptions) (*TweetPage, error)
	GetLikes(ctx context.Context, count int) (*TweetPage, error)
	GetLikesPaged(ctx context.Context, opts PageOptions) (*TweetPage, error)
	GetBookmarkFolderTimeline(ctx context.Context, folderID string, count int) (*TweetPage, error)
	GetBookmarkFolderTimelinePaged(ctx context.Context, folderID string, opts PageOptions) (*TweetPage, error)
	GetUserTweets(ctx context.Context, userID string, opts PageOptions) (*TweetPage, error)
	GetUserTweetsByScreenName(ctx context.Context, handle string, opts PageOptions) (*TweetPage, error)
}

// TweetDetails reads one tweet and its conversation.
type TweetDetails interface {
	GetTweet(ctx context.Context, tweetID string, opts TweetOptions) (*Tweet, error)
	GetReplies(ctx context.Context, tweetID string) (*TweetPage, error)
	GetThread(ctx context.Context, tweetID string) (*TweetPage, error)
	GetRepliesPaged(ctx context.Context, tweetID string, opts PageOptions) (*TweetPage, error)
	GetThreadPaged(ctx context.Context, tweetID string, opts PageOptions) (*TweetPage, error)
	GetConversation(ctx context.Context, tweetID string, opts TweetOptions) (*Conversation, error)
}

// Users looks up accounts, their follow graph and a tweet's retweeters.
type Users interface {
	GetUserByScreenName(ctx context.Context, handle string) (*User, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetCurrentUser(ctx context.Context) (*User, error)
	GetFollowing(ctx context.Context, userID string, opts PageOptions) (*UserPage, error)
	GetFollowers(ctx context.Context, userID string, opts PageOptions) (*UserPage, error)
	GetFollowingByScreenName(ctx context.Context, handle string, opts PageOptions) (*UserPage, error)
	GetFollowersByScreenName(ctx context.Context, handle string, opts PageOptions) (*UserPage, error)
	GetRetweeters(ctx context.Context, tweetID string, opts PageOptions) (*UserPage, error)
}

// News reads the explore tabs.
type News interface {
	GetNews(ctx context.Context, opts NewsOptions) ([]*NewsItem, error)
}

var (
	_ Searcher     = (*Client)(nil)
	_ Timelines    = (*Client)(nil)
	_ TweetDetails = (*Client)(nil)
	_ Users        = (*Client)(nil)
	_ News         = (*Client)(nil)
)

// Client is the GraphQL read client. It holds one session, one HTTP client,
// and the operation registry shared by every call.
type Client struct {
	doer       Doer
	session    *session
	registry   *Registry
	limiter    *ratelimit.Limiter
	clientUUID string
	cfg        ClientConfig
}

// NewClient creates a fully-wired client.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.defaults()
	if err := cfg.Credentials.validate(); err != nil {
		return nil, err
	}

	doer := cfg.Doer
	if doer == nil {
		opts := []stealth.ClientOption{
			stealth.WithHeaderOrder(twitterHeaderOrder),
		}
		if cfg.Proxy != "" {
			opts = append(opts, stealth.WithProxy(cfg.Proxy))
			slog.Debug("client proxy configured", slog.String("proxy", stealth.MaskProxy(cfg.Proxy)))
		}
		bc, err := stealth.NewClient(opts...)
		if err != nil {
			return nil, fmt.Errorf("stealth client: %w", err)
		}
		doer = bc
	}

	c := &Client{
		doer:       doer,
		session:    newSession(cfg.Credentials),
		limiter:    ratelimit.NewLimiter(cfg.RateLimit),
		clientUUID: uuid.NewString(),
		cfg:        cfg,
	}
	c.registry = newRegistry(registryConfig{
		fetch:       c.fetchPage,
		cachePath:   cfg.RegistryCachePath,
		scriptLimit: cfg.BundleScriptLimit,
		attempts:    cfg.BundleFetchAttempts,
		backoff:     cfg.BundleBackoff,
	})
	return c, nil
}

// Registry returns the operation registry backing this client.
func (c *Client) Registry() *Registry {
	return c.registry
}

// Credentials returns the current session credentials, including any ct0
// rotated in by the server since the client was created.
func (c *Client) Credentials() Credentials {
	return c.session.Credentials()
}

// recordAPICall calls the metrics hook if configured.
func (c *Client) recordAPICall(operation string, success, rateLimited bool) {
	if c.cfg.MetricsHook != nil {
		c.cfg.MetricsHook(operation, success, rateLimited)
	}
}
