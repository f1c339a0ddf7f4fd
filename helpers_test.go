package twitter

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeRequest struct {
	method  string
	url     string
	body    string
	headers map[string]string
}

// isGraphQL reports whether the request targets the GraphQL API.
func (r fakeRequest) isGraphQL() bool {
	return strings.HasPrefix(r.url, twitterBase+"/")
}

// queryID and operation split ".../graphql/{id}/{operation}".
func (r fakeRequest) queryID() string {
	parts := strings.Split(r.path(), "/")
	return parts[len(parts)-2]
}

func (r fakeRequest) operation() string {
	parts := strings.Split(r.path(), "/")
	return parts[len(parts)-1]
}

func (r fakeRequest) path() string {
	u, err := url.Parse(r.url)
	if err != nil {
		return r.url
	}
	return u.Path
}

// variables returns the request variables from the query string or body.
func (r fakeRequest) variables() gjson.Result {
	if r.method == "POST" {
		return gjson.Get(r.body, "variables")
	}
	u, err := url.Parse(r.url)
	if err != nil {
		return gjson.Result{}
	}
	return gjson.Parse(u.Query().Get("variables"))
}

type fakeResponse struct {
	status  int
	body    string
	headers map[string]string
	err     error
	delay   time.Duration
}

// fakeDoer scripts responses and records every request.
type fakeDoer struct {
	mu       sync.Mutex
	handler  func(req fakeRequest) fakeResponse
	requests []fakeRequest
}

func (f *fakeDoer) DoWithHeaderOrder(method, rawURL string, headers map[string]string, body io.Reader, _ []string) ([]byte, map[string]string, int, error) {
	req := fakeRequest{method: method, url: rawURL, headers: headers}
	if body != nil {
		b, _ := io.ReadAll(body)
		req.body = string(b)
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	resp := f.handler(req)
	if resp.delay > 0 {
		time.Sleep(resp.delay)
	}
	return []byte(resp.body), resp.headers, resp.status, resp.err
}

func (f *fakeDoer) graphqlCalls() []fakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeRequest
	for _, r := range f.requests {
		if r.isGraphQL() {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeDoer) callsTo(rawURL string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.url == rawURL {
			n++
		}
	}
	return n
}

func newTestClient(t *testing.T, handler func(req fakeRequest) fakeResponse) (*Client, *fakeDoer) {
	t.Helper()
	return newTestClientConfig(t, ClientConfig{}, handler)
}

// newTestClientConfig is newTestClient with extra config fields set on top
// of the test defaults.
func newTestClientConfig(t *testing.T, cfg ClientConfig, handler func(req fakeRequest) fakeResponse) (*Client, *fakeDoer) {
	t.Helper()
	doer := &fakeDoer{handler: handler}
	cfg.Credentials = Credentials{AuthToken: "tok", CT0: "csrf"}
	cfg.Timeout = 2 * time.Second
	cfg.DisableJitter = true
	cfg.BundleFetchAttempts = 1
	cfg.Doer = doer
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c, doer
}

// homeUnavailable answers the registry's home page fetch with 503, so a
// refresh fails fast and leaves the table unchanged.
func homeUnavailable(req fakeRequest) (fakeResponse, bool) {
	if req.url == twitterHome {
		return fakeResponse{status: 503}, true
	}
	return fakeResponse{}, false
}

func okJSON(body string) fakeResponse { return fakeResponse{status: 200, body: body} }

// nest wraps inner in objects named by the dot-separated path.
func nest(path, inner string) string {
	keys := strings.Split(path, ".")
	out := inner
	for i := len(keys) - 1; i >= 0; i-- {
		out = fmt.Sprintf(`{%q:%s}`, keys[i], out)
	}
	return out
}

// timelineBody builds a response with one TimelineAddEntries instruction.
func timelineBody(path string, entries ...string) string {
	return nest(path, `[{"type":"TimelineAddEntries","entries":[`+strings.Join(entries, ",")+`]}]`)
}

type tweetFixture struct {
	id, text, conversationID, replyTo, createdAt string
}

func tweetResultJSON(f tweetFixture) string {
	if f.text == "" {
		f.text = "tweet " + f.id
	}
	if f.conversationID == "" {
		f.conversationID = f.id
	}
	return fmt.Sprintf(`{
		"__typename": "Tweet",
		"rest_id": %q,
		"core": {"user_results": {"result": {"rest_id": "42", "legacy": {"screen_name": "alice", "name": "Alice"}}}},
		"legacy": {
			"full_text": %q,
			"created_at": %q,
			"conversation_id_str": %q,
			"in_reply_to_status_id_str": %q,
			"reply_count": 1,
			"retweet_count": 2,
			"favorite_count": 3,
			"lang": "en"
		}
	}`, f.id, f.text, f.createdAt, f.conversationID, f.replyTo)
}

func tweetEntry(f tweetFixture) string {
	return `{"entryId":"tweet-` + f.id + `","content":{"entryType":"TimelineTimelineItem","itemContent":{"itemType":"TimelineTweet","tweet_results":{"result":` + tweetResultJSON(f) + `}}}}`
}

func cursorEntry(value string) string {
	return `{"entryId":"cursor-bottom-0","content":{"entryType":"TimelineTimelineCursor","cursorType":"Bottom","value":"` + value + `"}}`
}

func userEntry(id, handle string) string {
	return `{"entryId":"user-` + id + `","content":{"entryType":"TimelineTimelineItem","itemContent":{"itemType":"TimelineUser","user_results":{"result":{"__typename":"User","rest_id":"` + id + `","legacy":{"screen_name":"` + handle + `","name":"` + handle + `","followers_count":10,"friends_count":5}}}}}}`
}

func tweetIDs(tweets []*Tweet) []string {
	ids := make([]string, len(tweets))
	for i, t := range tweets {
		ids[i] = t.ID
	}
	return ids
}
