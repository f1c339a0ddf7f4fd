package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	twitter "github.com/anatolykoptev/go-xreader"
)

var readCmd = &cobra.Command{
	Use:   "read <tweet-id-or-url>",
	Short: "Read a single tweet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := tweetIDFromArg(args[0])
		if err != nil {
			return err
		}
		c, tr, err := setup()
		if err != nil {
			return err
		}
		full, _ := cmd.Flags().GetBool("json-full")
		t, err := c.GetTweet(cmd.Context(), id, twitter.TweetOptions{IncludeRaw: full})
		if err != nil {
			return fmt.Errorf("read %s: %w", id, err)
		}
		tr.apply(cmd.Context(), t)
		return emitTweet(cmd, t)
	},
}

var repliesCmd = &cobra.Command{
	Use:   "replies <tweet-id-or-url>",
	Short: "List direct replies to a tweet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConversation(cmd, args[0], (*twitter.Client).GetRepliesPaged)
	},
}

var threadCmd = &cobra.Command{
	Use:   "thread <tweet-id-or-url>",
	Short: "Show the conversation thread of a tweet, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConversation(cmd, args[0], (*twitter.Client).GetThreadPaged)
	},
}

type conversationFunc func(*twitter.Client, context.Context, string, twitter.PageOptions) (*twitter.TweetPage, error)

func runConversation(cmd *cobra.Command, arg string, fetch conversationFunc) error {
	id, err := tweetIDFromArg(arg)
	if err != nil {
		return err
	}
	c, tr, err := setup()
	if err != nil {
		return err
	}
	opts := pageOptions(cmd)
	// Replies and thread are filtered after the fetch, so --count bounds the
	// conversation scan rather than the printed result.
	if all, _ := cmd.Flags().GetBool("all"); !all {
		opts.Limit = 0
	}
	page, fetchErr := fetch(c, cmd.Context(), id, opts)
	tr.apply(cmd.Context(), page.Tweets...)
	return emitTweets(cmd, page, fetchErr)
}

func init() {
	addPagingFlags(repliesCmd, 20)
	addPagingFlags(threadCmd, 20)

	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(repliesCmd)
	rootCmd.AddCommand(threadCmd)
}
