package twitter

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookmarksPage(cursor string, ids ...string) string {
	entries := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		entries = append(entries, tweetEntry(tweetFixture{id: id}))
	}
	if cursor != "" {
		entries = append(entries, cursorEntry(cursor))
	}
	return timelineBody(bookmarksInstructions, entries...)
}

func queryIDs(reqs []fakeRequest) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.queryID()
	}
	return out
}

func TestExecute_FallsBackToNextCandidate(t *testing.T) {
	ids := Endpoints[OpBookmarks].IDs
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		if req.queryID() == ids[0] {
			return fakeResponse{status: 404}
		}
		return okJSON(bookmarksPage("", "1"))
	})

	page, err := c.GetBookmarks(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, tweetIDs(page.Tweets))
	assert.Equal(t, ids[:2], queryIDs(doer.graphqlCalls()))
	assert.Zero(t, doer.callsTo(twitterHome), "no refresh when a candidate works")
}

func TestExecute_RefreshesOnceWhenAllStale(t *testing.T) {
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		if resp, ok := homeUnavailable(req); ok {
			return resp
		}
		return fakeResponse{status: 404}
	})

	_, err := c.GetBookmarks(context.Background(), 20)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStaleOperationID)

	n := len(Endpoints[OpBookmarks].IDs)
	assert.Len(t, doer.graphqlCalls(), 2*n, "sequence runs once, then once more after refresh")
	assert.Equal(t, 1, doer.callsTo(twitterHome))
}

func TestExecute_UsesDiscoveredIDAfterRefresh(t *testing.T) {
	script := bundleOrigin + "/main.abc123.js"
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		switch req.url {
		case twitterHome:
			return okJSON(`<html><script src="` + script + `"></script></html>`)
		case script:
			return okJSON(`e.exports={queryId:"FreshBookmarksID",operationName:"Bookmarks",operationType:"query"}`)
		}
		if req.queryID() == "FreshBookmarksID" {
			return okJSON(bookmarksPage("", "7"))
		}
		return fakeResponse{status: 404}
	})

	page, err := c.GetBookmarks(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, tweetIDs(page.Tweets))

	calls := queryIDs(doer.graphqlCalls())
	n := len(Endpoints[OpBookmarks].IDs)
	require.Len(t, calls, n+1)
	assert.Equal(t, "FreshBookmarksID", calls[n])
	assert.Equal(t, "FreshBookmarksID", c.Registry().Resolve(OpBookmarks)[0])
}

func TestExecute_TransportErrorMovesOn(t *testing.T) {
	ids := Endpoints[OpBookmarks].IDs
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		if req.queryID() == ids[0] {
			return fakeResponse{err: errors.New("connection reset by peer")}
		}
		return okJSON(bookmarksPage("", "1"))
	})

	_, err := c.GetBookmarks(context.Background(), 20)
	require.NoError(t, err)
	assert.Len(t, doer.graphqlCalls(), 2)
}

func TestExecute_TimeoutMovesOn(t *testing.T) {
	ids := Endpoints[OpBookmarks].IDs
	doer := &fakeDoer{handler: func(req fakeRequest) fakeResponse {
		if req.queryID() == ids[0] {
			return fakeResponse{status: 200, body: bookmarksPage("", "slow"), delay: 300 * time.Millisecond}
		}
		return okJSON(bookmarksPage("", "fast"))
	}}
	c, err := NewClient(ClientConfig{
		Credentials:   Credentials{AuthToken: "tok", CT0: "csrf"},
		Timeout:       50 * time.Millisecond,
		DisableJitter: true,
		Doer:          doer,
	})
	require.NoError(t, err)

	page, err := c.GetBookmarks(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"fast"}, tweetIDs(page.Tweets))
}

func TestExecute_AllTransportFailuresDoNotRefresh(t *testing.T) {
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		return fakeResponse{err: errors.New("no route to host")}
	})

	_, err := c.GetBookmarks(context.Background(), 20)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrStaleOperationID)
	assert.Zero(t, doer.callsTo(twitterHome))
}

func TestExecute_TerminalFailures(t *testing.T) {
	tests := []struct {
		name string
		resp fakeResponse
		want error
	}{
		{"server error", fakeResponse{status: 500, body: "oops"}, ErrHTTPStatus},
		{"forbidden", fakeResponse{status: 403, body: `{"errors":[{"code":353,"message":"csrf"}]}`}, ErrHTTPStatus},
		{"platform errors", okJSON(`{"errors":[{"message":"Authorization: Denied by access control","code":37}]}`), ErrPlatformRejection},
		{"invalid json", okJSON(`<html>`), ErrPlatformRejection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, doer := newTestClient(t, func(req fakeRequest) fakeResponse { return tt.resp })

			_, err := c.GetBookmarks(context.Background(), 20)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Len(t, doer.graphqlCalls(), 1, "no next candidate after a terminal failure")
			assert.Zero(t, doer.callsTo(twitterHome))
		})
	}
}

func TestExecute_RateLimited(t *testing.T) {
	reset := strconv.FormatInt(time.Now().Add(10*time.Minute).Unix(), 10)
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		return fakeResponse{status: 429, headers: map[string]string{"x-rate-limit-reset": reset}}
	})

	_, err := c.GetBookmarks(context.Background(), 20)
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Len(t, doer.graphqlCalls(), 1)

	_, err = c.GetBookmarks(context.Background(), 20)
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Len(t, doer.graphqlCalls(), 1, "limited operation is not sent again before reset")
}

func TestExecute_TweetDetailPostFallback(t *testing.T) {
	ids := Endpoints[OpTweetDetail].IDs
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		if req.method == "GET" {
			return fakeResponse{status: 404}
		}
		return okJSON(nest(conversationInstructions, `[{"type":"TimelineAddEntries","entries":[`+tweetEntry(tweetFixture{id: "5"})+`]}]`))
	})

	tw, err := c.GetTweet(context.Background(), "5", TweetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "5", tw.ID)

	calls := doer.graphqlCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "GET", calls[0].method)
	assert.Equal(t, "POST", calls[1].method)
	assert.Equal(t, ids[0], calls[1].queryID())
	assert.Equal(t, "5", calls[1].variables().Get("focalTweetId").String())
}

func TestExecute_RefreshAtMostOncePerCall(t *testing.T) {
	n := len(Endpoints[OpBookmarks].IDs)
	var graphql atomic.Int32
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		if resp, ok := homeUnavailable(req); ok {
			return resp
		}
		i := int(graphql.Add(1))
		// Page 1: every candidate stale, then the replay's first candidate works.
		if i == n+1 {
			return okJSON(bookmarksPage("C1", "1"))
		}
		return fakeResponse{status: 404}
	})

	page, err := c.GetBookmarksPaged(context.Background(), PageOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStaleOperationID)
	assert.Equal(t, []string{"1"}, tweetIDs(page.Tweets))
	assert.Equal(t, "C1", page.NextCursor)
	assert.Equal(t, 1, doer.callsTo(twitterHome))
	assert.Len(t, doer.graphqlCalls(), n+1+n, "second page gets no refresh")
}

func TestExecute_MetricsHook(t *testing.T) {
	var ok, failed atomic.Int32
	ids := Endpoints[OpBookmarks].IDs
	doer := &fakeDoer{handler: func(req fakeRequest) fakeResponse {
		if req.queryID() == ids[0] {
			return fakeResponse{status: 404}
		}
		return okJSON(bookmarksPage("", "1"))
	}}
	c, err := NewClient(ClientConfig{
		Credentials:   Credentials{AuthToken: "tok", CT0: "csrf"},
		DisableJitter: true,
		Doer:          doer,
		MetricsHook: func(operation string, success, _ bool) {
			assert.Equal(t, OpBookmarks, operation)
			if success {
				ok.Add(1)
			} else {
				failed.Add(1)
			}
		},
	})
	require.NoError(t, err)

	_, err = c.GetBookmarks(context.Background(), 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, 1, failed.Load())
}

func TestExecute_ContextCanceled(t *testing.T) {
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		return fakeResponse{status: 404}
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetBookmarks(ctx, 20)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, doer.graphqlCalls())
}
