package main

import (
	"github.com/spf13/cobra"
)

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "List your bookmarks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, tr, err := setup()
		if err != nil {
			return err
		}
		page, fetchErr := c.GetBookmarksPaged(cmd.Context(), pageOptions(cmd))
		tr.apply(cmd.Context(), page.Tweets...)
		return emitTweets(cmd, page, fetchErr)
	},
}

var likesCmd = &cobra.Command{
	Use:   "likes",
	Short: "List tweets you liked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, tr, err := setup()
		if err != nil {
			return err
		}
		page, fetchErr := c.GetLikesPaged(cmd.Context(), pageOptions(cmd))
		tr.apply(cmd.Context(), page.Tweets...)
		return emitTweets(cmd, page, fetchErr)
	},
}

var folderCmd = &cobra.Command{
	Use:   "folder <folder-id>",
	Short: "List the tweets in a bookmark folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, tr, err := setup()
		if err != nil {
			return err
		}
		page, fetchErr := c.GetBookmarkFolderTimelinePaged(cmd.Context(), args[0], pageOptions(cmd))
		tr.apply(cmd.Context(), page.Tweets...)
		return emitTweets(cmd, page, fetchErr)
	},
}

var tweetsCmd = &cobra.Command{
	Use:   "tweets [handle]",
	Short: "List a user's tweets, newest first (default: you)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, tr, err := setup()
		if err != nil {
			return err
		}
		handle := ""
		if len(args) == 1 {
			handle = args[0]
		}
		page, fetchErr := c.GetUserTweetsByScreenName(cmd.Context(), handle, pageOptions(cmd))
		tr.apply(cmd.Context(), page.Tweets...)
		return emitTweets(cmd, page, fetchErr)
	},
}

func init() {
	addPagingFlags(bookmarksCmd, 20)
	addPagingFlags(likesCmd, 20)
	addPagingFlags(folderCmd, 20)
	addPagingFlags(tweetsCmd, 20)

	rootCmd.AddCommand(bookmarksCmd)
	rootCmd.AddCommand(likesCmd)
	rootCmd.AddCommand(folderCmd)
	rootCmd.AddCommand(tweetsCmd)
}
