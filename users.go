package twitter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var handleRe = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)

// normalizeHandle strips a leading "@" and validates the handle.
func normalizeHandle(handle string) (string, error) {
	h := strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if !handleRe.MatchString(h) {
		return "", fmt.Errorf("%w: invalid username %q", ErrInvalidInput, handle)
	}
	return h, nil
}

// GetUserByScreenName fetches a user profile by handle. The handle is
// validated before any request is made.
func (c *Client) GetUserByScreenName(ctx context.Context, handle string) (*User, error) {
	return c.userByScreenName(ctx, &call{}, handle)
}

func (c *Client) userByScreenName(ctx context.Context, cl *call, handle string) (*User, error) {
	h, err := normalizeHandle(handle)
	if err != nil {
		return nil, err
	}
	body, err := c.execute(ctx, cl, pageRequest{gqlRequest: gqlRequest{
		operation: OpUserByScreenName,
		method:    "GET",
		variables: map[string]any{
			"screen_name":              h,
			"withSafetyModeUserFields": true,
		},
		features:     featuresFor(OpUserByScreenName),
		fieldToggles: map[string]any{"withAuxiliaryUserLabels": false},
	}})
	if err != nil {
		return nil, err
	}
	u := mapUser(gjson.GetBytes(body, "data.user.result"))
	if u == nil {
		return nil, &RequestError{
			Operation: OpUserByScreenName,
			Message:   fmt.Sprintf("user @%s not found or unavailable", h),
			kind:      ErrNotFound,
		}
	}
	return u, nil
}

// GetUserByID fetches a user profile by numeric user ID.
func (c *Client) GetUserByID(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	body, err := c.execute(ctx, &call{}, pageRequest{gqlRequest: gqlRequest{
		operation: OpUserByRestID,
		method:    "GET",
		variables: map[string]any{
			"userId":                   userID,
			"withSafetyModeUserFields": true,
		},
		features: featuresFor(OpUserByRestID),
	}})
	if err != nil {
		return nil, err
	}
	u := mapUser(gjson.GetBytes(body, "data.user.result"))
	if u == nil {
		return nil, &RequestError{
			Operation: OpUserByRestID,
			Message:   fmt.Sprintf("user %s not found or unavailable", userID),
			kind:      ErrNotFound,
		}
	}
	return u, nil
}

// GetCurrentUser resolves the account behind the session cookies.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	return c.currentUser(ctx, &call{})
}

func (c *Client) currentUser(ctx context.Context, cl *call) (*User, error) {
	body, err := c.fetchAuthenticated(ctx, settingsURL)
	if err != nil {
		return nil, fmt.Errorf("account settings: %w", err)
	}
	screenName := gjson.GetBytes(body, "screen_name").String()
	if screenName == "" {
		return nil, fmt.Errorf("account settings: %w: no screen_name in response", ErrNotFound)
	}
	return c.userByScreenName(ctx, cl, screenName)
}

// resolveUser looks up handle, or the session's own account when handle is
// empty, under the refresh budget of cl.
func (c *Client) resolveUser(ctx context.Context, cl *call, handle string) (*User, error) {
	if handle == "" {
		return c.currentUser(ctx, cl)
	}
	return c.userByScreenName(ctx, cl, handle)
}

// GetFollowing walks the accounts userID follows.
func (c *Client) GetFollowing(ctx context.Context, userID string, opts PageOptions) (*UserPage, error) {
	return c.fetchUserList(ctx, &call{}, followList(OpFollowing, userID), opts)
}

// GetFollowers walks the accounts following userID.
func (c *Client) GetFollowers(ctx context.Context, userID string, opts PageOptions) (*UserPage, error) {
	return c.fetchUserList(ctx, &call{}, followList(OpFollowers, userID), opts)
}

// GetFollowingByScreenName resolves handle (empty means the session's own
// account) and walks the accounts it follows, all as one call.
func (c *Client) GetFollowingByScreenName(ctx context.Context, handle string, opts PageOptions) (*UserPage, error) {
	return c.followListByScreenName(ctx, OpFollowing, handle, opts)
}

// GetFollowersByScreenName is the followers counterpart of
// GetFollowingByScreenName.
func (c *Client) GetFollowersByScreenName(ctx context.Context, handle string, opts PageOptions) (*UserPage, error) {
	return c.followListByScreenName(ctx, OpFollowers, handle, opts)
}

func (c *Client) followListByScreenName(ctx context.Context, operation, handle string, opts PageOptions) (*UserPage, error) {
	cl := &call{}
	u, err := c.resolveUser(ctx, cl, handle)
	if err != nil {
		return &UserPage{}, err
	}
	return c.fetchUserList(ctx, cl, followList(operation, u.ID), opts)
}

// GetRetweeters walks the accounts that retweeted tweetID.
func (c *Client) GetRetweeters(ctx context.Context, tweetID string, opts PageOptions) (*UserPage, error) {
	return c.fetchUserList(ctx, &call{}, userList{
		operation:    OpRetweeters,
		idVar:        "tweetId",
		id:           tweetID,
		instructions: []string{retweetersInstructions},
		promoted:     true,
	}, opts)
}

// userList describes one cursor-paginated user resource.
type userList struct {
	operation    string
	idVar        string
	id           string
	instructions []string
	promoted     bool

	// restPath is the v1.1 list endpoint tried when GraphQL fails on a
	// fresh walk. Empty disables the fallback.
	restPath string
}

func followList(operation, userID string) userList {
	l := userList{
		operation:    operation,
		idVar:        "userId",
		id:           userID,
		instructions: []string{userTimelineInstructions, userTimelineV2},
	}
	switch operation {
	case OpFollowing:
		l.restPath = "friends/list.json"
	case OpFollowers:
		l.restPath = "followers/list.json"
	}
	return l
}

// fetchUserList is the paginated user list fetcher shared by the follow
// graph and retweeters.
//
// A follow list whose first GraphQL page fails is retried over the v1.1
// REST endpoint; once a page came from REST the walk stays there, since
// the two cursor formats differ. REST cursors are numeric, so a resumed
// numeric StartCursor goes straight to REST.
func (c *Client) fetchUserList(ctx context.Context, cl *call, l userList, opts PageOptions) (*UserPage, error) {
	if l.id == "" {
		return &UserPage{}, fmt.Errorf("%w: %s is required", ErrInvalidInput, l.idVar)
	}
	count := opts.PageSize
	if count <= 0 {
		count = defaultPageSize
	}
	if opts.Limit > 0 {
		count = min(count, opts.Limit)
	}

	viaREST := l.restPath != "" && isRESTCursor(opts.StartCursor)
	fetch := func(ctx context.Context, cursor string) (page[*User], error) {
		if viaREST {
			return c.userListViaREST(ctx, l, count, cursor)
		}
		body, err := c.execute(ctx, cl, pageRequest{gqlRequest: gqlRequest{
			operation: l.operation,
			method:    "GET",
			variables: withCursor(map[string]any{
				l.idVar:                  l.id,
				"count":                  count,
				"includePromotedContent": l.promoted,
			}, cursor),
			features: featuresFor(l.operation),
		}})
		if err == nil {
			users, next := usersFromInstructions(instructionsAt(gjson.ParseBytes(body), l.instructions...))
			return page[*User]{items: users, cursor: next}, nil
		}
		if l.restPath == "" || cursor != "" || ctx.Err() != nil {
			return page[*User]{}, err
		}

		p, restErr := c.userListViaREST(ctx, l, count, cursor)
		if restErr != nil {
			slog.Warn("rest fallback failed",
				slog.String("operation", l.operation),
				slog.Any("error", restErr))
			return page[*User]{}, err
		}
		slog.Info("graphql user list failed, continuing over rest",
			slog.String("operation", l.operation),
			slog.Any("error", err))
		viaREST = true
		return p, nil
	}

	res, err := paginate(ctx, fetch, func(u *User) string { return u.ID }, opts)
	return &UserPage{Users: res.items, NextCursor: res.nextCursor}, err
}

// userListViaREST reads one page of a v1.1 follow list. The end of the
// list is signalled by next_cursor "0".
func (c *Client) userListViaREST(ctx context.Context, l userList, count int, cursor string) (page[*User], error) {
	q := url.Values{}
	q.Set("user_id", l.id)
	q.Set("count", strconv.Itoa(count))
	q.Set("skip_status", "true")
	q.Set("include_user_entities", "false")
	if cursor == "" {
		cursor = "-1"
	}
	q.Set("cursor", cursor)

	body, err := c.fetchAuthenticated(ctx, restAPIBase+"/"+l.restPath+"?"+q.Encode())
	if err != nil {
		return page[*User]{}, fmt.Errorf("%s via rest: %w", l.operation, err)
	}
	doc := gjson.ParseBytes(body)
	if !doc.Get("users").IsArray() {
		return page[*User]{}, &RequestError{
			Operation: l.operation,
			Message:   "rest response has no users: " + truncateBytes(body, 200),
			kind:      ErrPlatformRejection,
		}
	}

	var users []*User
	for _, r := range doc.Get("users").Array() {
		if u := mapRESTUser(r); u != nil {
			users = append(users, u)
		}
	}
	next := doc.Get("next_cursor_str").String()
	if next == "0" {
		next = ""
	}
	return page[*User]{items: users, cursor: next}, nil
}

// isRESTCursor reports whether cursor came from a v1.1 list.
func isRESTCursor(cursor string) bool {
	if cursor == "" {
		return false
	}
	_, err := strconv.ParseInt(cursor, 10, 64)
	return err == nil
}

// mapRESTUser converts a v1.1 user object.
func mapRESTUser(r gjson.Result) *User {
	id := r.Get("id_str").String()
	if id == "" {
		return nil
	}
	return &User{
		ID:              id,
		Username:        r.Get("screen_name").String(),
		Name:            r.Get("name").String(),
		Description:     strings.TrimSpace(r.Get("description").String()),
		IsBlueVerified:  r.Get("ext_is_blue_verified").Bool() || r.Get("verified").Bool(),
		FollowersCount:  int(r.Get("followers_count").Int()),
		FollowingCount:  int(r.Get("friends_count").Int()),
		ProfileImageURL: r.Get("profile_image_url_https").String(),
	}
}
