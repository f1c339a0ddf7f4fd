package twitter

import "encoding/json"

// Author is the display identity attached to a tweet.
type Author struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Media is a photo, video, or animated GIF attached to a tweet.
type Media struct {
	Type       string `json:"type"`
	URL        string `json:"url"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
	VideoURL   string `json:"videoUrl,omitempty"`
	DurationMs int    `json:"durationMs,omitempty"`
}

// Tweet is the flat record produced from a GraphQL tweet result.
type Tweet struct {
	ID                string  `json:"id"`
	Text              string  `json:"text"`
	Author            Author  `json:"author"`
	AuthorID          string  `json:"authorId,omitempty"`
	CreatedAt         string  `json:"createdAt,omitempty"`
	ReplyCount        int     `json:"replyCount"`
	RetweetCount      int     `json:"retweetCount"`
	LikeCount         int     `json:"likeCount"`
	ConversationID    string  `json:"conversationId,omitempty"`
	InReplyToStatusID string  `json:"inReplyToStatusId,omitempty"`
	Lang              string  `json:"lang,omitempty"`
	IsTranslatable    *bool   `json:"isTranslatable,omitempty"`
	Media             []Media `json:"media,omitempty"`
	QuotedTweet       *Tweet  `json:"quotedTweet,omitempty"`

	// Set by the translation collaborator, never by the client.
	TranslatedText      string `json:"translatedText,omitempty"`
	TranslatedTo        string `json:"translatedTo,omitempty"`
	TranslationProvider string `json:"translationProvider,omitempty"`

	// Raw is the untouched tweet result, only populated on request.
	Raw json.RawMessage `json:"_raw,omitempty"`
}

// User is the flat record produced from a GraphQL user result.
type User struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	IsBlueVerified  bool   `json:"isBlueVerified,omitempty"`
	FollowersCount  int    `json:"followersCount"`
	FollowingCount  int    `json:"followingCount"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// TweetPage is the result of a tweet-listing call. On a failed call the page
// still carries whatever was collected before the failure.
type TweetPage struct {
	Tweets     []*Tweet `json:"tweets"`
	NextCursor string   `json:"nextCursor,omitempty"`
}

// UserPage is the user-listing counterpart of TweetPage.
type UserPage struct {
	Users      []*User `json:"users"`
	NextCursor string  `json:"nextCursor,omitempty"`
}

// TweetOptions controls single-tweet fetches.
type TweetOptions struct {
	// IncludeRaw attaches the raw GraphQL result as Tweet.Raw.
	IncludeRaw bool
}

// NewsItem is one trend or headline from an explore tab.
type NewsItem struct {
	// ID is the trend URL when there is one, else the timeline entry ID.
	ID        string `json:"id"`
	Headline  string `json:"headline"`
	Category  string `json:"category,omitempty"`
	TimeAgo   string `json:"timeAgo,omitempty"`
	PostCount int    `json:"postCount,omitempty"`
	URL       string `json:"url,omitempty"`
	IsAITrend bool   `json:"isAiTrend,omitempty"`
	Tab       string `json:"tab"`

	Raw json.RawMessage `json:"_raw,omitempty"`
}
