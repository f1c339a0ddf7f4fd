package twitter

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userByScreenNameBody = `{"data":{"user":{"result":{"__typename":"User","rest_id":"42","legacy":{"screen_name":"alice","name":"Alice"}}}}}`

func TestGetBookmarks(t *testing.T) {
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		return okJSON(bookmarksPage("next", "1", "2"))
	})

	page, err := c.GetBookmarks(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, tweetIDs(page.Tweets))
	assert.Equal(t, "next", page.NextCursor, "single page keeps the cursor for resuming")

	calls := doer.graphqlCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "GET", calls[0].method)
	assert.Equal(t, OpBookmarks, calls[0].operation())
	assert.EqualValues(t, 5, calls[0].variables().Get("count").Int())
	assert.Equal(t, "csrf", calls[0].headers["x-csrf-token"])
}

func TestGetBookmarksPaged_Resume(t *testing.T) {
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		switch req.variables().Get("cursor").String() {
		case "start":
			return okJSON(bookmarksPage("c2", "3"))
		case "c2":
			return okJSON(bookmarksPage("", "4"))
		}
		return okJSON(bookmarksPage("start", "1"))
	})

	page, err := c.GetBookmarksPaged(context.Background(), PageOptions{StartCursor: "start"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "4"}, tweetIDs(page.Tweets))
	assert.Empty(t, page.NextCursor)
	assert.Len(t, doer.graphqlCalls(), 2)
}

func TestGetBookmarkFolderTimeline_VariableShapeFallback(t *testing.T) {
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		if req.variables().Get("count").Exists() {
			return okJSON(`{"errors":[{"message":"Variable \"$count\" is not defined by operation 'BookmarkFolderTimeline'.","code":336}]}`)
		}
		return okJSON(timelineBody(folderInstructions, tweetEntry(tweetFixture{id: "9"})))
	})

	page, err := c.GetBookmarkFolderTimeline(context.Background(), "folder-1", 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, tweetIDs(page.Tweets))

	calls := doer.graphqlCalls()
	require.Len(t, calls, 2)
	assert.True(t, calls[0].variables().Get("count").Exists())
	assert.False(t, calls[1].variables().Get("count").Exists())
	assert.Equal(t, "folder-1", calls[1].variables().Get("bookmark_collection_id").String())
	assert.Zero(t, doer.callsTo(twitterHome))
}

func TestGetBookmarkFolderTimeline_OtherPlatformErrorIsFinal(t *testing.T) {
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		return okJSON(`{"errors":[{"message":"Folder not found","code":34}]}`)
	})

	_, err := c.GetBookmarkFolderTimeline(context.Background(), "missing", 20)
	require.ErrorIs(t, err, ErrPlatformRejection)
	assert.NotErrorIs(t, err, ErrVariableShape)
	assert.Len(t, doer.graphqlCalls(), 1)
}

func TestGetBookmarkFolderTimeline_RequiresID(t *testing.T) {
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse { return okJSON(`{}`) })

	_, err := c.GetBookmarkFolderTimeline(context.Background(), "", 20)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, doer.requests)
}

func TestGetLikes_UsesCurrentUser(t *testing.T) {
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		switch {
		case req.url == settingsURL:
			return okJSON(`{"screen_name":"alice"}`)
		case req.operation() == OpUserByScreenName:
			return okJSON(userByScreenNameBody)
		case req.operation() == OpLikes:
			return okJSON(timelineBody(userTimelineV2, tweetEntry(tweetFixture{id: "77"})))
		}
		return fakeResponse{status: 404}
	})

	page, err := c.GetLikes(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"77"}, tweetIDs(page.Tweets))

	calls := doer.graphqlCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "alice", calls[0].variables().Get("screen_name").String())
	assert.Equal(t, "42", calls[1].variables().Get("userId").String())
}

func TestGetLikes_CurrentUserFailure(t *testing.T) {
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		return fakeResponse{status: 401, body: `{"errors":[{"code":32}]}`}
	})

	_, err := c.GetLikes(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not determine current user")
	assert.Empty(t, doer.graphqlCalls())
}

func TestGetLikes_OneRefreshAcrossLookupAndWalk(t *testing.T) {
	var lookups atomic.Int32
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		if resp, ok := homeUnavailable(req); ok {
			return resp
		}
		switch {
		case req.url == settingsURL:
			return okJSON(`{"screen_name":"alice"}`)
		case req.operation() == OpUserByScreenName:
			if lookups.Add(1) <= int32(len(Endpoints[OpUserByScreenName].IDs)) {
				return fakeResponse{status: 404}
			}
			return okJSON(userByScreenNameBody)
		}
		return fakeResponse{status: 404}
	})

	page, err := c.GetLikesPaged(context.Background(), PageOptions{})
	require.ErrorIs(t, err, ErrStaleOperationID)
	assert.Empty(t, page.Tweets)
	assert.Equal(t, 1, doer.callsTo(twitterHome), "one logical call refreshes at most once")

	likes := 0
	for _, r := range doer.graphqlCalls() {
		if r.operation() == OpLikes {
			likes++
		}
	}
	assert.Equal(t, len(Endpoints[OpLikes].IDs), likes, "likes candidates tried once, no replay")
}

func TestGetUserTweets(t *testing.T) {
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		return okJSON(timelineBody(userTimelineInstructions,
			tweetEntry(tweetFixture{id: "5"}), tweetEntry(tweetFixture{id: "4"}), cursorEntry("older")))
	})

	page, err := c.GetUserTweets(context.Background(), "42", PageOptions{MaxPages: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "4"}, tweetIDs(page.Tweets))
	assert.Equal(t, "older", page.NextCursor)

	calls := doer.graphqlCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, OpUserTweets, calls[0].operation())
	assert.Equal(t, "42", calls[0].variables().Get("userId").String())
	assert.True(t, calls[0].variables().Get("withV2Timeline").Bool())
}

func TestGetUserTweetsByScreenName(t *testing.T) {
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse {
		if req.operation() == OpUserByScreenName {
			return okJSON(userByScreenNameBody)
		}
		return okJSON(timelineBody(userTimelineV2, tweetEntry(tweetFixture{id: "9"})))
	})

	page, err := c.GetUserTweetsByScreenName(context.Background(), "@alice", PageOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, tweetIDs(page.Tweets))

	calls := doer.graphqlCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, OpUserByScreenName, calls[0].operation())
	assert.Equal(t, "42", calls[1].variables().Get("userId").String())
}

func TestGetUserTweets_RequiresID(t *testing.T) {
	c, doer := newTestClient(t, func(req fakeRequest) fakeResponse { return okJSON(`{}`) })

	_, err := c.GetUserTweets(context.Background(), "", PageOptions{})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, doer.requests)
}
