package twitter

import (
	"fmt"
	"maps"
)

const (
	twitterBase  = "https://x.com/i/api/graphql"
	twitterHome  = "https://x.com/"
	restAPIBase  = "https://x.com/i/api/1.1"
	settingsURL  = restAPIBase + "/account/settings.json"
	bundleOrigin = "https://abs.twimg.com/responsive-web/client-web"
)

// bearerTokens is the list of known web-app bearer tokens.
var bearerTokens = []string{
	"AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA",
	"AAAAAAAAAAAAAAAAAAAAAFQODgEAAAAAVHTp76lzh3rFzcHbmHVvQxYYpTw%3DckAlMINMjmCwxUcaXbAN4XqJVdgMJaHqNOFgPMK0zN1qLqLQCF",
}

// BearerToken is the active bearer token (first in list).
var BearerToken = bearerTokens[0]

// Operation names as they appear in GraphQL URLs and client bundles.
const (
	OpSearchTimeline         = "SearchTimeline"
	OpTweetDetail            = "TweetDetail"
	OpBookmarks              = "Bookmarks"
	OpBookmarkFolderTimeline = "BookmarkFolderTimeline"
	OpLikes                  = "Likes"
	OpFollowing              = "Following"
	OpFollowers              = "Followers"
	OpUserByScreenName       = "UserByScreenName"
	OpUserArticlesTweets     = "UserArticlesTweets"
	OpUserByRestID           = "UserByRestId"
	OpUserTweets             = "UserTweets"
	OpRetweeters             = "Retweeters"
	OpGenericTimelineByID    = "GenericTimelineById"
)

// Endpoint holds the built-in candidate IDs and feature flags of one operation.
// IDs are ordered: best-known first, older known-good IDs after.
type Endpoint struct {
	Name     string
	IDs      []string
	Features func() map[string]any
}

// Endpoints is the built-in operation table. The registry starts from it and
// appends these IDs as fallbacks after anything discovered on refresh.
var Endpoints = map[string]Endpoint{
	OpSearchTimeline:         {Name: OpSearchTimeline, IDs: []string{"AIdc203rPpK_k_2KWSdm7g", "nK1dw4oV3k4w5TdtcAdSww"}, Features: searchFeatures},
	OpTweetDetail:            {Name: OpTweetDetail, IDs: []string{"_8aYOgEDz35BrBcBal1-_w", "97JF30KziU00483E_8elBA"}, Features: tweetDetailFeatures},
	OpBookmarks:              {Name: OpBookmarks, IDs: []string{"RV1g3b8n_SGOHwkqKYSCFw", "tmd4ifV8RHltzn8ymGg1aw"}, Features: gqlFeatures},
	OpBookmarkFolderTimeline: {Name: OpBookmarkFolderTimeline, IDs: []string{"KJIQpsvxrTfRIlbaRIySHQ"}, Features: gqlFeatures},
	OpLikes:                  {Name: OpLikes, IDs: []string{"JR2gceKucIKcVNB_9JkhsA"}, Features: gqlFeatures},
	OpFollowing:              {Name: OpFollowing, IDs: []string{"C1qZ6bs-L3oc_TKSZyxkXQ"}, Features: gqlFeatures},
	OpFollowers:              {Name: OpFollowers, IDs: []string{"Elc_-qTARceHpztqhI9PQA"}, Features: gqlFeatures},
	OpUserByScreenName:       {Name: OpUserByScreenName, IDs: []string{"1VOOyvKkiI3FMmkeDNxM9A", "xc8f1g7BYqr6VTzTbvNlGw"}, Features: userFeatures},
	OpUserArticlesTweets:     {Name: OpUserArticlesTweets, IDs: []string{"8zBy9h4L90aDL02RsBcCFg"}, Features: articleFeatures},
	OpUserByRestID:           {Name: OpUserByRestID, IDs: []string{"WJ7rCtezBVT6nk6VM5R8Bw"}, Features: userFeatures},
	OpUserTweets:             {Name: OpUserTweets, IDs: []string{"HeWHY26ItCfUmm1e6ITjeA"}, Features: gqlFeatures},
	OpRetweeters:             {Name: OpRetweeters, IDs: []string{"i-CI8t2pJD15euZJErEDrg"}, Features: gqlFeatures},
	OpGenericTimelineByID:    {Name: OpGenericTimelineByID, IDs: []string{"uGSr7alSjR9v6QJAIaqSKQ"}, Features: gqlFeatures},
}

// endpointURL returns the GraphQL URL for one candidate ID of an operation.
func endpointURL(queryID, operation string) string {
	return fmt.Sprintf("%s/%s/%s", twitterBase, queryID, operation)
}

// featuresFor returns a fresh feature map for operation. Unknown operations get
// the canonical set.
func featuresFor(operation string) map[string]any {
	if ep, ok := Endpoints[operation]; ok && ep.Features != nil {
		return ep.Features()
	}
	return gqlFeatures()
}

// gqlFeatures returns the canonical GraphQL feature flags.
func gqlFeatures() map[string]any {
	return map[string]any{
		"articles_preview_enabled":                                                false,
		"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
		"communities_web_enable_tweet_community_results_fetch":                    true,
		"creator_subscriptions_quote_tweet_preview_enabled":                       false,
		"creator_subscriptions_tweet_preview_api_enabled":                         true,
		"freedom_of_speech_not_reach_fetch_enabled":                               true,
		"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
		"longform_notetweets_consumption_enabled":                                 true,
		"longform_notetweets_inline_media_enabled":                                true,
		"longform_notetweets_rich_text_read_enabled":                              true,
		"premium_content_api_read_enabled":                                        false,
		"profile_label_improvements_pcf_label_in_post_enabled":                    false,
		"responsive_web_edit_tweet_api_enabled":                                   true,
		"responsive_web_enhance_cards_enabled":                                    false,
		"responsive_web_graphql_exclude_directive_enabled":                        true,
		"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
		"responsive_web_graphql_timeline_navigation_enabled":                      true,
		"responsive_web_grok_analyze_button_fetch_trends_enabled":                 false,
		"responsive_web_grok_analyze_post_followups_enabled":                      false,
		"responsive_web_grok_image_annotation_enabled":                            false,
		"responsive_web_grok_share_attachment_enabled":                            false,
		"responsive_web_media_download_video_enabled":                             false,
		"responsive_web_twitter_article_tweet_consumption_enabled":                true,
		"rweb_tipjar_consumption_enabled":                                         true,
		"rweb_video_timestamps_enabled":                                           true,
		"standardized_nudges_misinfo":                                             true,
		"tweet_awards_web_tipping_enabled":                                        false,
		"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
		"tweet_with_visibility_results_prefer_gql_media_interstitial_enabled":     false,
		"tweetypie_unmention_optimization_enabled":                                true,
		"verified_phone_label_enabled":                                            false,
		"view_counts_everywhere_api_enabled":                                      true,
	}
}

func withOverrides(base map[string]any, overrides map[string]any) map[string]any {
	maps.Copy(base, overrides)
	return base
}

func searchFeatures() map[string]any {
	return withOverrides(gqlFeatures(), map[string]any{
		"articles_preview_enabled": true,
	})
}

func tweetDetailFeatures() map[string]any {
	return withOverrides(gqlFeatures(), map[string]any{
		"articles_preview_enabled":                                          true,
		"articles_rest_api_enabled":                                         true,
		"responsive_web_graphql_skip_user_profile_image_extensions_enabled": false,
		"creator_subscriptions_tweet_preview_api_enabled":                   true,
		"responsive_web_twitter_article_tweet_consumption_enabled":          true,
	})
}

func articleFeatures() map[string]any {
	return withOverrides(tweetDetailFeatures(), map[string]any{
		"responsive_web_twitter_article_plain_text_enabled": true,
	})
}

func articleFieldToggles() map[string]any {
	return map[string]any{
		"withArticlePlainText":        true,
		"withArticleRichContentState": false,
		"withPayments":                false,
		"withAuxiliaryUserLabels":     false,
	}
}

func userFeatures() map[string]any {
	return map[string]any{
		"hidden_profile_subscriptions_enabled":                              true,
		"profile_label_improvements_pcf_label_in_post_enabled":              false,
		"rweb_tipjar_consumption_enabled":                                   true,
		"responsive_web_graphql_exclude_directive_enabled":                  true,
		"verified_phone_label_enabled":                                      false,
		"subscriptions_verification_info_is_identity_verified_enabled":      true,
		"subscriptions_verification_info_verified_since_enabled":            true,
		"highlights_tweets_tab_ui_enabled":                                  true,
		"responsive_web_twitter_article_notes_tab_enabled":                  true,
		"subscriptions_feature_can_gift_premium":                            true,
		"creator_subscriptions_tweet_preview_api_enabled":                   true,
		"responsive_web_graphql_skip_user_profile_image_extensions_enabled": false,
		"responsive_web_graphql_timeline_navigation_enabled":                true,
	}
}
