package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search recent tweets",
	Long: `Search runs a "Latest" search. The query accepts the web client's search
operators (from:, since:, filter:, and so on).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, tr, err := setup()
		if err != nil {
			return err
		}
		opts := pageOptions(cmd)
		if all, _ := cmd.Flags().GetBool("all"); !all {
			// A single search page may hold fewer than --count tweets.
			opts.MaxPages = 0
		}
		page, fetchErr := c.SearchPaged(cmd.Context(), strings.Join(args, " "), opts)
		tr.apply(cmd.Context(), page.Tweets...)
		return emitTweets(cmd, page, fetchErr)
	},
}

func init() {
	addPagingFlags(searchCmd, 20)
	rootCmd.AddCommand(searchCmd)
}
