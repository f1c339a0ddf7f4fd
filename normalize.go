package twitter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"
)

// Instruction array locations, one per resource.
const (
	searchInstructions       = "data.search_by_raw_query.search_timeline.timeline.instructions"
	bookmarksInstructions    = "data.bookmark_timeline_v2.timeline.instructions"
	folderInstructions       = "data.bookmark_collection_timeline.timeline.instructions"
	userTimelineInstructions = "data.user.result.timeline.timeline.instructions"
	userTimelineV2           = "data.user.result.timeline_v2.timeline.instructions"
	conversationInstructions = "data.threaded_conversation_with_injections_v2.instructions"
	retweetersInstructions   = "data.retweeters_timeline.timeline.instructions"
	newsInstructions         = "data.timeline.timeline.instructions"
)

// normalizer maps GraphQL result nodes to flat records.
type normalizer struct {
	quoteDepth int
	includeRaw bool
}

func (c *Client) normalizer(includeRaw bool) normalizer {
	return normalizer{quoteDepth: c.cfg.QuoteDepth, includeRaw: includeRaw}
}

// instructionsAt returns the first of paths that holds an instruction array.
func instructionsAt(doc gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := doc.Get(p); r.IsArray() {
			return r
		}
	}
	return gjson.Result{}
}

// timelineScan is the flattened content of an instruction tree.
type timelineScan struct {
	items  []gjson.Result // itemContent nodes in entry order
	keys   []string       // entry id of each item, suffixed inside modules
	cursor string         // first bottom cursor
}

// scanTimeline walks every instruction regardless of its type. Entries come
// from "entries", a single "entry" (replace instructions) and "moduleItems"
// (add-to-module instructions).
func scanTimeline(instructions gjson.Result) timelineScan {
	var scan timelineScan
	for _, ins := range instructions.Array() {
		for _, entry := range ins.Get("entries").Array() {
			scan.addEntry(entry)
		}
		if entry := ins.Get("entry"); entry.IsObject() {
			scan.addEntry(entry)
		}
		for _, mi := range ins.Get("moduleItems").Array() {
			scan.addItem(mi.Get("entryId").String(), mi.Get("item.itemContent"))
		}
	}
	return scan
}

func (s *timelineScan) addEntry(entry gjson.Result) {
	if value, isCursor, bottom := entryCursor(entry); isCursor {
		if bottom && s.cursor == "" {
			s.cursor = value
		}
		return
	}
	id := entry.Get("entryId").String()
	content := entry.Get("content")
	if ic := content.Get("itemContent"); ic.Exists() {
		s.addItem(id, ic)
		return
	}
	for i, it := range content.Get("items").Array() {
		key := firstString(it, "entryId")
		if key == "" {
			key = fmt.Sprintf("%s-%d", id, i)
		}
		s.addItem(key, it.Get("item.itemContent"))
	}
}

func (s *timelineScan) addItem(key string, itemContent gjson.Result) {
	if itemContent.IsObject() {
		s.items = append(s.items, itemContent)
		s.keys = append(s.keys, key)
	}
}

// entryCursor reports whether entry is a cursor and, if so, whether it is
// the bottom (next page) cursor.
func entryCursor(entry gjson.Result) (value string, isCursor, bottom bool) {
	content := entry.Get("content")
	cursorType := firstString(content, "cursorType", "itemContent.cursorType")
	entryType := firstString(content, "entryType", "__typename")
	entryID := entry.Get("entryId").String()
	isCursor = cursorType != "" || entryType == "TimelineTimelineCursor" || strings.HasPrefix(entryID, "cursor-")
	if !isCursor {
		return "", false, false
	}
	value = firstString(content, "value", "itemContent.value")
	bottom = value != "" && (cursorType == "Bottom" || strings.HasPrefix(entryID, "cursor-bottom"))
	return value, true, bottom
}

// firstString returns the first non-empty string among paths under node.
func firstString(node gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := node.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// tweetsFromInstructions returns the tweets of an instruction tree in entry
// order, deduplicated, plus the next-page cursor.
func (n normalizer) tweetsFromInstructions(instructions gjson.Result) ([]*Tweet, string) {
	scan := scanTimeline(instructions)
	var tweets []*Tweet
	seen := make(map[string]bool)
	for _, item := range scan.items {
		t := n.mapTweet(item.Get("tweet_results.result"), n.quoteDepth)
		if t == nil || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		tweets = append(tweets, t)
	}
	return tweets, scan.cursor
}

// findTweetResult returns the raw result node for tweetID within an
// instruction tree.
func findTweetResult(instructions gjson.Result, tweetID string) gjson.Result {
	for _, item := range scanTimeline(instructions).items {
		r := unwrapTweet(item.Get("tweet_results.result"))
		if r.Get("rest_id").String() == tweetID {
			return r
		}
	}
	return gjson.Result{}
}

// unwrapTweet resolves visibility wrappers and drops placeholders.
func unwrapTweet(result gjson.Result) gjson.Result {
	switch result.Get("__typename").String() {
	case "TweetWithVisibilityResults":
		return result.Get("tweet")
	case "TweetTombstone", "TweetUnavailable":
		return gjson.Result{}
	}
	if !result.Get("rest_id").Exists() && result.Get("tweet.rest_id").Exists() {
		return result.Get("tweet")
	}
	return result
}

// mapTweet converts one tweet result node. Returns nil when the node has no
// rest_id. depth bounds quoted-tweet recursion.
func (n normalizer) mapTweet(result gjson.Result, depth int) *Tweet {
	r := unwrapTweet(result)
	id := r.Get("rest_id").String()
	if id == "" {
		if result.Exists() {
			slog.Debug("skip tweet without rest_id", slog.String("typename", result.Get("__typename").String()))
		}
		return nil
	}

	legacy := r.Get("legacy")
	user := r.Get("core.user_results.result")
	t := &Tweet{
		ID:   id,
		Text: tweetText(r),
		Author: Author{
			Username: firstString(user, "legacy.screen_name", "core.screen_name"),
			Name:     firstString(user, "legacy.name", "core.name"),
		},
		AuthorID:          firstString(r, "core.user_results.result.rest_id", "legacy.user_id_str"),
		CreatedAt:         legacy.Get("created_at").String(),
		ReplyCount:        int(legacy.Get("reply_count").Int()),
		RetweetCount:      int(legacy.Get("retweet_count").Int()),
		LikeCount:         int(legacy.Get("favorite_count").Int()),
		ConversationID:    legacy.Get("conversation_id_str").String(),
		InReplyToStatusID: legacy.Get("in_reply_to_status_id_str").String(),
		Lang:              legacy.Get("lang").String(),
		Media:             extractMedia(legacy),
	}
	if v := r.Get("is_translatable"); v.Exists() {
		b := v.Bool()
		t.IsTranslatable = &b
	}
	if depth > 0 {
		if q := r.Get("quoted_status_result.result"); q.Exists() {
			t.QuotedTweet = n.mapTweet(q, depth-1)
		}
	}
	if n.includeRaw {
		t.Raw = json.RawMessage(result.Raw)
	}
	return t
}

// tweetText prefers long-form note text, then article text, then the
// legacy full_text.
func tweetText(r gjson.Result) string {
	if note := r.Get("note_tweet.note_tweet_results.result.text").String(); note != "" {
		return note
	}
	if title, body := articleContent(r); title != "" {
		if body == "" || strings.TrimSpace(body) == strings.TrimSpace(title) {
			return title
		}
		return title + "\n\n" + body
	}
	return r.Get("legacy.full_text").String()
}

// articleContent returns the title and inline plain text of an article
// attached to a tweet result, if any.
func articleContent(r gjson.Result) (title, body string) {
	article := r.Get("article")
	if !article.Exists() {
		return "", ""
	}
	title = firstString(article, "article_results.result.title", "title")
	body = firstString(article, "article_results.result.plain_text", "plain_text")
	return title, body
}

// usersFromInstructions returns the users of an instruction tree plus the
// next-page cursor.
func usersFromInstructions(instructions gjson.Result) ([]*User, string) {
	scan := scanTimeline(instructions)
	var users []*User
	seen := make(map[string]bool)
	for _, item := range scan.items {
		u := mapUser(item.Get("user_results.result"))
		if u == nil || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		users = append(users, u)
	}
	return users, scan.cursor
}

// mapUser converts one user result node. Unavailable users and nodes
// without rest_id map to nil.
func mapUser(r gjson.Result) *User {
	if r.Get("__typename").String() == "UserUnavailable" {
		return nil
	}
	id := r.Get("rest_id").String()
	if id == "" {
		return nil
	}
	legacy := r.Get("legacy")
	return &User{
		ID:              id,
		Username:        firstString(r, "legacy.screen_name", "core.screen_name"),
		Name:            firstString(r, "legacy.name", "core.name"),
		Description:     strings.TrimSpace(legacy.Get("description").String()),
		IsBlueVerified:  r.Get("is_blue_verified").Bool() || legacy.Get("verified").Bool(),
		FollowersCount:  int(legacy.Get("followers_count").Int()),
		FollowingCount:  int(legacy.Get("friends_count").Int()),
		ProfileImageURL: firstString(r, "legacy.profile_image_url_https", "avatar.image_url"),
	}
}
