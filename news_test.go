package twitter

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trendItem builds a trend itemContent.
func trendItem(name string, ai bool, extra string) string {
	s := fmt.Sprintf(`{"itemType":"TimelineTrend","name":%q,"is_ai_trend":%t`, name, ai)
	if extra != "" {
		s += "," + extra
	}
	return s + "}"
}

// newsBody wraps item contents as single-item module entries, one per entry.
func newsBody(items ...string) string {
	entries := make([]string, len(items))
	for i, it := range items {
		entries[i] = fmt.Sprintf(`{"entryId":"trend-entry-%d","content":{"items":[{"item":{"itemContent":%s}}]}}`, i, it)
	}
	return timelineBody(newsInstructions, entries...)
}

// newsByTab answers each tab request from bodies keyed by timeline ID.
func newsByTab(bodies map[NewsTab]string) func(req fakeRequest) fakeResponse {
	return func(req fakeRequest) fakeResponse {
		id := req.variables().Get("timelineId").String()
		for tab, body := range bodies {
			if newsTimelineIDs[tab] == id {
				return okJSON(body)
			}
		}
		return okJSON(newsBody())
	}
}

func TestGetNews_ParsesTrend(t *testing.T) {
	c, doer := newTestClient(t, newsByTab(map[NewsTab]string{
		TabForYou: newsBody(trendItem("AI Breakthrough in Machine Learning", true,
			`"social_context":{"text":"AI · 2h ago · 15.5K posts"},"trend_url":{"url":"https://x.com/hashtag/AI"}`)),
	}))

	items, err := c.GetNews(context.Background(), NewsOptions{Count: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	it := items[0]
	assert.Equal(t, "AI Breakthrough in Machine Learning", it.Headline)
	assert.Equal(t, "AI · AI", it.Category)
	assert.Equal(t, "2h ago", it.TimeAgo)
	assert.Equal(t, 15500, it.PostCount)
	assert.Equal(t, "https://x.com/hashtag/AI", it.URL)
	assert.Equal(t, "https://x.com/hashtag/AI", it.ID)
	assert.Equal(t, "forYou", it.Tab)
	assert.Nil(t, it.Raw)

	calls := doer.graphqlCalls()
	require.Len(t, calls, 1, "count reached on the first tab")
	assert.Equal(t, OpGenericTimelineByID, calls[0].operation())
}

func TestGetNews_IncludeRaw(t *testing.T) {
	item := trendItem("AI News", true, `"social_context":{"text":"AI · 1h ago · 1.2K posts"}`)
	c, _ := newTestClient(t, newsByTab(map[NewsTab]string{TabForYou: newsBody(item)}))

	items, err := c.GetNews(context.Background(), NewsOptions{Count: 1, IncludeRaw: true})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.JSONEq(t, item, string(items[0].Raw))
}

func TestGetNews_AIOnly(t *testing.T) {
	c, _ := newTestClient(t, newsByTab(map[NewsTab]string{
		TabForYou: newsBody(trendItem("AI News", true, ""), trendItem("Regular News", false, "")),
	}))

	items, err := c.GetNews(context.Background(), NewsOptions{Count: 10, AIOnly: true})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "AI News", items[0].Headline)
}

func TestGetNews_SelectedTabsOnly(t *testing.T) {
	c, doer := newTestClient(t, newsByTab(map[NewsTab]string{
		TabNews: newsBody(trendItem("News 1", true, "")),
	}))

	items, err := c.GetNews(context.Background(), NewsOptions{Count: 5, Tabs: []NewsTab{TabNews}})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "news", items[0].Tab)
	assert.Len(t, doer.graphqlCalls(), 1)
}

func TestGetNews_UnknownTab(t *testing.T) {
	c, doer := newTestClient(t, newsByTab(nil))

	_, err := c.GetNews(context.Background(), NewsOptions{Tabs: []NewsTab{"weather"}})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, doer.requests)
}

func TestGetNews_NothingFound(t *testing.T) {
	tests := []struct {
		name    string
		resp    fakeResponse
		wantErr error
	}{
		{"http 500 on every tab", fakeResponse{status: 500, body: "Server error"}, ErrHTTPStatus},
		{"platform errors", okJSON(`{"errors":[{"message":"Rate limited"},{"message":"Too many requests"}]}`), ErrPlatformRejection},
		{"empty tabs", okJSON(newsBody()), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, doer := newTestClient(t, func(req fakeRequest) fakeResponse { return tt.resp })

			items, err := c.GetNews(context.Background(), NewsOptions{Count: 10})
			require.ErrorIs(t, err, ErrNotFound)
			assert.Contains(t, err.Error(), "no news items found")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, items)
			assert.Len(t, doer.graphqlCalls(), len(DefaultNewsTabs))
		})
	}
}

func TestGetNews_FailingTabSkipped(t *testing.T) {
	c, _ := newTestClient(t, func(req fakeRequest) fakeResponse {
		if req.variables().Get("timelineId").String() == newsTimelineIDs[TabForYou] {
			return fakeResponse{status: 500, body: "boom"}
		}
		if req.variables().Get("timelineId").String() == newsTimelineIDs[TabSports] {
			return okJSON(newsBody(trendItem("Final score", false, `"social_context":{"text":"Sports · Trending"}`)))
		}
		return okJSON(newsBody())
	})

	items, err := c.GetNews(context.Background(), NewsOptions{Count: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Sports · Trending", items[0].Category)
	assert.Equal(t, "sports", items[0].Tab)
}

func TestGetNews_DedupAcrossTabs(t *testing.T) {
	dup := newsBody(trendItem("Duplicate Headline", true, ""))
	c, _ := newTestClient(t, newsByTab(map[NewsTab]string{TabForYou: dup, TabNews: dup}))

	items, err := c.GetNews(context.Background(), NewsOptions{Count: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Duplicate Headline", items[0].Headline)
}

func TestGetNews_Count(t *testing.T) {
	c, _ := newTestClient(t, newsByTab(map[NewsTab]string{
		TabForYou: newsBody(trendItem("News 1", true, ""), trendItem("News 2", true, ""), trendItem("News 3", true, "")),
	}))

	items, err := c.GetNews(context.Background(), NewsOptions{Count: 2})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestGetNews_ReplaceEntryInstruction(t *testing.T) {
	body := nest(newsInstructions, `[{"type":"TimelineReplaceEntry","entries":[`+
		`{"entryId":"replace-entry-1","content":{"itemContent":`+trendItem("Replacement headline", true, "")+`}}]}]`)
	c, _ := newTestClient(t, newsByTab(map[NewsTab]string{TabForYou: body}))

	items, err := c.GetNews(context.Background(), NewsOptions{Count: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Replacement headline", items[0].Headline)
	assert.Equal(t, "replace-entry-1", items[0].ID)
}

func TestGetNews_ModuleEntriesGetUniqueIDs(t *testing.T) {
	body := timelineBody(newsInstructions, `{"entryId":"module-entry","content":{"items":[`+
		`{"item":{"itemContent":`+trendItem("Headline A", true, "")+`}},`+
		`{"item":{"itemContent":`+trendItem("Headline B", true, "")+`}}]}}`)
	c, _ := newTestClient(t, newsByTab(map[NewsTab]string{TabForYou: body}))

	items, err := c.GetNews(context.Background(), NewsOptions{Count: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "module-entry-0", items[0].ID)
	assert.Equal(t, "module-entry-1", items[1].ID)
}

func TestParsePostCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"15.5K posts", 15500},
		{"2M posts", 2000000},
		{"1,204 posts", 1204},
		{"1 post", 1},
		{"many posts", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(strings.ReplaceAll(tt.in, " ", "_"), func(t *testing.T) {
			assert.Equal(t, tt.want, parsePostCount(tt.in))
		})
	}
}
