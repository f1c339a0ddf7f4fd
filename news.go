package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// NewsTab names an explore tab.
type NewsTab string

const (
	TabForYou        NewsTab = "forYou"
	TabTrending      NewsTab = "trending"
	TabNews          NewsTab = "news"
	TabSports        NewsTab = "sports"
	TabEntertainment NewsTab = "entertainment"
)

// newsTimelineIDs maps tabs to GenericTimelineById timeline IDs.
var newsTimelineIDs = map[NewsTab]string{
	TabForYou:        "VGltZWxpbmU6DAC2CwABAAAAB2Zvcl95b3UAAA==",
	TabTrending:      "VGltZWxpbmU6DAC2CwABAAAACHRyZW5kaW5nAAA=",
	TabNews:          "VGltZWxpbmU6DAC2CwABAAAABG5ld3MAAA==",
	TabSports:        "VGltZWxpbmU6DAC2CwABAAAABnNwb3J0cwAA",
	TabEntertainment: "VGltZWxpbmU6DAC2CwABAAAADWVudGVydGFpbm1lbnQAAA==",
}

// DefaultNewsTabs are read when NewsOptions.Tabs is empty.
var DefaultNewsTabs = []NewsTab{TabForYou, TabNews, TabSports, TabEntertainment}

// NewsOptions controls GetNews.
type NewsOptions struct {
	// Count caps the number of items returned. Default: 10.
	Count int

	// Tabs are read in order until Count items are collected.
	Tabs []NewsTab

	// AIOnly keeps only items the platform marks as AI-generated trends.
	AIOnly bool

	// IncludeRaw attaches each item's raw itemContent as NewsItem.Raw.
	IncludeRaw bool
}

// GetNews collects headlines from the explore tabs. Headlines repeated
// across tabs are kept once. A failing tab is logged and skipped; the call
// fails only when no tab produced an item.
func (c *Client) GetNews(ctx context.Context, opts NewsOptions) ([]*NewsItem, error) {
	count := opts.Count
	if count <= 0 {
		count = 10
	}
	tabs := opts.Tabs
	if len(tabs) == 0 {
		tabs = DefaultNewsTabs
	}
	for _, tab := range tabs {
		if _, ok := newsTimelineIDs[tab]; !ok {
			return nil, fmt.Errorf("%w: unknown news tab %q", ErrInvalidInput, tab)
		}
	}

	cl := &call{}
	var items []*NewsItem
	var lastErr error
	seen := make(map[string]bool)
	for _, tab := range tabs {
		if len(items) >= count {
			break
		}
		body, err := c.execute(ctx, cl, pageRequest{gqlRequest: gqlRequest{
			operation: OpGenericTimelineByID,
			method:    "GET",
			variables: map[string]any{
				"timelineId":             newsTimelineIDs[tab],
				"count":                  count,
				"includePromotedContent": false,
			},
			features: featuresFor(OpGenericTimelineByID),
		}})
		if err != nil {
			if ctx.Err() != nil {
				return items, err
			}
			slog.Warn("news tab failed", slog.String("tab", string(tab)), slog.Any("error", err))
			lastErr = err
			continue
		}

		for _, it := range newsFromInstructions(gjson.GetBytes(body, newsInstructions), tab, opts.IncludeRaw) {
			if opts.AIOnly && !it.IsAITrend {
				continue
			}
			if seen[it.Headline] {
				continue
			}
			seen[it.Headline] = true
			items = append(items, it)
			if len(items) >= count {
				break
			}
		}
	}

	if len(items) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("%w: no news items found: %w", ErrNotFound, lastErr)
		}
		return nil, fmt.Errorf("%w: no news items found", ErrNotFound)
	}
	return items, nil
}

// newsFromInstructions maps every headline-bearing item of a tab timeline.
func newsFromInstructions(instructions gjson.Result, tab NewsTab, includeRaw bool) []*NewsItem {
	scan := scanTimeline(instructions)
	var out []*NewsItem
	for i, ic := range scan.items {
		it := mapNewsItem(ic, scan.keys[i])
		if it == nil {
			continue
		}
		it.Tab = string(tab)
		if includeRaw {
			it.Raw = json.RawMessage(ic.Raw)
		}
		out = append(out, it)
	}
	return out
}

// mapNewsItem converts a trend itemContent. Items without a headline map
// to nil.
func mapNewsItem(ic gjson.Result, entryKey string) *NewsItem {
	headline := strings.TrimSpace(firstString(ic, "name", "trend.name"))
	if headline == "" {
		return nil
	}
	it := &NewsItem{
		Headline:  headline,
		URL:       firstString(ic, "trend_url.url", "trend.trend_url.url"),
		IsAITrend: ic.Get("is_ai_trend").Bool(),
	}

	// social_context reads like "Politics · 2h ago · 15.5K posts".
	var category []string
	for _, part := range strings.Split(firstString(ic, "social_context.text", "trend_metadata.domain_context"), "·") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case strings.HasSuffix(part, " ago"):
			it.TimeAgo = part
		case strings.HasSuffix(part, " posts"), strings.HasSuffix(part, " post"):
			it.PostCount = parsePostCount(part)
		default:
			category = append(category, part)
		}
	}
	it.Category = strings.Join(category, " · ")
	if it.IsAITrend {
		it.Category = strings.TrimSuffix("AI · "+it.Category, " · ")
	}

	it.ID = it.URL
	if it.ID == "" {
		it.ID = entryKey
	}
	return it
}

// parsePostCount reads counts like "15.5K posts", "2M posts" or "1,204 posts".
func parsePostCount(s string) int {
	f := strings.Fields(s)
	if len(f) == 0 {
		return 0
	}
	num := strings.ReplaceAll(f[0], ",", "")
	mult := 1.0
	switch {
	case strings.HasSuffix(num, "K"):
		mult, num = 1e3, strings.TrimSuffix(num, "K")
	case strings.HasSuffix(num, "M"):
		mult, num = 1e6, strings.TrimSuffix(num, "M")
	case strings.HasSuffix(num, "B"):
		mult, num = 1e9, strings.TrimSuffix(num, "B")
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	return int(v*mult + 0.5)
}
