package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	twitter "github.com/anatolykoptev/go-xreader"
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Show trending news from the explore tabs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := newsOptions(cmd)
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		items, err := c.GetNews(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return writeJSON(cmd.OutOrStdout(), items)
		}
		for _, it := range items {
			writeNewsItem(cmd.OutOrStdout(), it)
		}
		return nil
	},
}

func newsOptions(cmd *cobra.Command) (twitter.NewsOptions, error) {
	count, _ := cmd.Flags().GetInt("count")
	tabs, _ := cmd.Flags().GetStringSlice("tab")
	aiOnly, _ := cmd.Flags().GetBool("ai-only")
	full, _ := cmd.Flags().GetBool("json-full")

	opts := twitter.NewsOptions{Count: count, AIOnly: aiOnly, IncludeRaw: full}
	for _, t := range tabs {
		tab, ok := parseNewsTab(t)
		if !ok {
			return opts, fmt.Errorf("unknown tab %q (want for-you, trending, news, sports or entertainment)", t)
		}
		opts.Tabs = append(opts.Tabs, tab)
	}
	return opts, nil
}

func parseNewsTab(s string) (twitter.NewsTab, bool) {
	switch strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(strings.TrimSpace(s))) {
	case "foryou":
		return twitter.TabForYou, true
	case "trending":
		return twitter.TabTrending, true
	case "news":
		return twitter.TabNews, true
	case "sports":
		return twitter.TabSports, true
	case "entertainment":
		return twitter.TabEntertainment, true
	}
	return "", false
}

func writeNewsItem(w io.Writer, it *twitter.NewsItem) {
	fmt.Fprintln(w, it.Headline)
	var meta []string
	if it.Category != "" {
		meta = append(meta, it.Category)
	}
	if it.TimeAgo != "" {
		meta = append(meta, it.TimeAgo)
	}
	if it.PostCount > 0 {
		meta = append(meta, fmt.Sprintf("%d posts", it.PostCount))
	}
	if len(meta) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(meta, " · "))
	}
	if it.URL != "" {
		fmt.Fprintf(w, "  %s\n", it.URL)
	}
}

func init() {
	newsCmd.Flags().IntP("count", "n", 10, "maximum number of items")
	newsCmd.Flags().StringSlice("tab", nil, "explore tabs to read (default: for-you, news, sports, entertainment)")
	newsCmd.Flags().Bool("ai-only", false, "only AI-curated trends")
	rootCmd.AddCommand(newsCmd)
}
