package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	twitter "github.com/anatolykoptev/go-xreader"
)

// jsonOutput reports whether --json or --json-full was given.
func jsonOutput(cmd *cobra.Command) bool {
	asJSON, _ := cmd.Flags().GetBool("json")
	full, _ := cmd.Flags().GetBool("json-full")
	return asJSON || full
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// emitTweets prints a tweet page. fetchErr is the error that cut a paged
// fetch short; what was collected is still printed, followed by the error.
func emitTweets(cmd *cobra.Command, page *twitter.TweetPage, fetchErr error) error {
	out := cmd.OutOrStdout()
	if jsonOutput(cmd) {
		if err := writeJSON(out, page); err != nil {
			return err
		}
	} else {
		for i, t := range page.Tweets {
			if i > 0 {
				fmt.Fprintln(out)
			}
			writeTweet(out, t, "")
		}
		if page.NextCursor != "" {
			fmt.Fprintf(os.Stderr, "next cursor: %s\n", page.NextCursor)
		}
	}
	return fetchErr
}

func emitTweet(cmd *cobra.Command, t *twitter.Tweet) error {
	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), t)
	}
	writeTweet(cmd.OutOrStdout(), t, "")
	return nil
}

func writeTweet(w io.Writer, t *twitter.Tweet, indent string) {
	fmt.Fprintf(w, "%s@%s (%s)", indent, t.Author.Username, t.Author.Name)
	if t.CreatedAt != "" {
		fmt.Fprintf(w, " · %s", t.CreatedAt)
	}
	fmt.Fprintf(w, "\n%shttps://x.com/%s/status/%s\n", indent, t.Author.Username, t.ID)
	for _, line := range strings.Split(t.Text, "\n") {
		fmt.Fprintf(w, "%s  %s\n", indent, line)
	}
	if t.TranslatedText != "" {
		fmt.Fprintf(w, "%s  [%s via %s]\n", indent, t.TranslatedTo, t.TranslationProvider)
		for _, line := range strings.Split(t.TranslatedText, "\n") {
			fmt.Fprintf(w, "%s  %s\n", indent, line)
		}
	}
	for _, m := range t.Media {
		u := m.URL
		if m.VideoURL != "" {
			u = m.VideoURL
		}
		fmt.Fprintf(w, "%s  [%s] %s\n", indent, m.Type, u)
	}
	fmt.Fprintf(w, "%s  replies %d · retweets %d · likes %d\n", indent, t.ReplyCount, t.RetweetCount, t.LikeCount)
	if t.QuotedTweet != nil {
		fmt.Fprintf(w, "%s  quoting:\n", indent)
		writeTweet(w, t.QuotedTweet, indent+"    ")
	}
}

func emitUsers(cmd *cobra.Command, page *twitter.UserPage, fetchErr error) error {
	out := cmd.OutOrStdout()
	if jsonOutput(cmd) {
		if err := writeJSON(out, page); err != nil {
			return err
		}
	} else {
		for _, u := range page.Users {
			writeUser(out, u)
		}
		if page.NextCursor != "" {
			fmt.Fprintf(os.Stderr, "next cursor: %s\n", page.NextCursor)
		}
	}
	return fetchErr
}

func writeUser(w io.Writer, u *twitter.User) {
	verified := ""
	if u.IsBlueVerified {
		verified = " ✓"
	}
	fmt.Fprintf(w, "@%s (%s)%s  id=%s  followers=%d following=%d\n",
		u.Username, u.Name, verified, u.ID, u.FollowersCount, u.FollowingCount)
	if u.Description != "" {
		fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(u.Description, "\n", " "))
	}
}
