package main

import (
	"context"

	"github.com/spf13/cobra"

	twitter "github.com/anatolykoptev/go-xreader"
)

var userCmd = &cobra.Command{
	Use:   "user <handle>",
	Short: "Show a user profile",
	Long: `user prints a profile looked up by handle, or by numeric user id
with --id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		var u *twitter.User
		if byID, _ := cmd.Flags().GetBool("id"); byID {
			u, err = c.GetUserByID(cmd.Context(), args[0])
		} else {
			u, err = c.GetUserByScreenName(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return writeJSON(cmd.OutOrStdout(), u)
		}
		writeUser(cmd.OutOrStdout(), u)
		return nil
	},
}

var followingCmd = &cobra.Command{
	Use:   "following [handle]",
	Short: "List accounts a user follows (default: you)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFollowList(cmd, args, (*twitter.Client).GetFollowingByScreenName)
	},
}

var followersCmd = &cobra.Command{
	Use:   "followers [handle]",
	Short: "List a user's followers (default: you)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFollowList(cmd, args, (*twitter.Client).GetFollowersByScreenName)
	},
}

var retweetersCmd = &cobra.Command{
	Use:   "retweeters <tweet-id-or-url>",
	Short: "List accounts that retweeted a tweet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := tweetIDFromArg(args[0])
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		page, fetchErr := c.GetRetweeters(cmd.Context(), id, pageOptions(cmd))
		return emitUsers(cmd, page, fetchErr)
	},
}

type followListFunc func(*twitter.Client, context.Context, string, twitter.PageOptions) (*twitter.UserPage, error)

// runFollowList fetches a follow list for the optional handle argument.
// The lookup and the walk run as one library call.
func runFollowList(cmd *cobra.Command, args []string, fetch followListFunc) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	handle := ""
	if len(args) == 1 {
		handle = args[0]
	}
	page, fetchErr := fetch(c, cmd.Context(), handle, pageOptions(cmd))
	return emitUsers(cmd, page, fetchErr)
}

func init() {
	userCmd.Flags().Bool("id", false, "treat the argument as a numeric user id")
	addPagingFlags(followingCmd, 20)
	addPagingFlags(followersCmd, 20)
	addPagingFlags(retweetersCmd, 20)

	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(followingCmd)
	rootCmd.AddCommand(followersCmd)
	rootCmd.AddCommand(retweetersCmd)
}
