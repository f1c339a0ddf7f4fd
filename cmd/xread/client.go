package main

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	twitter "github.com/anatolykoptev/go-xreader"
)

const defaultPageDelay = 1000 * time.Millisecond

// newClient builds a client from flags, environment, and config file.
func newClient() (*twitter.Client, error) {
	var creds twitter.Credentials
	if raw := viper.GetString("cookie"); raw != "" {
		creds = twitter.CredentialsFromCookie(raw)
	}
	if v := viper.GetString("auth_token"); v != "" {
		creds.AuthToken = v
	}
	if v := viper.GetString("ct0"); v != "" {
		creds.CT0 = v
	}
	if creds.AuthToken == "" || creds.CT0 == "" {
		return nil, fmt.Errorf("missing credentials: set --auth-token and --ct0, --cookie, or AUTH_TOKEN and CT0")
	}

	cfg := twitter.ClientConfig{
		Credentials:       creds,
		Proxy:             viper.GetString("proxy"),
		Timeout:           viper.GetDuration("timeout"),
		RegistryCachePath: viper.GetString("registry_cache"),
	}
	if viper.GetBool("no_quotes") {
		cfg.QuoteDepth = twitter.NoQuotedTweets
	}
	return twitter.NewClient(cfg)
}

// addPagingFlags registers the flags shared by every paginated command.
func addPagingFlags(cmd *cobra.Command, defaultCount int) {
	cmd.Flags().IntP("count", "n", defaultCount, "maximum number of results")
	cmd.Flags().Bool("all", false, "follow cursors until the stream ends")
	cmd.Flags().Int("max-pages", 0, "maximum pages to fetch with --all (0 = no limit)")
	cmd.Flags().Duration("delay", defaultPageDelay, "delay between page requests")
	cmd.Flags().String("cursor", "", "resume from a previous next cursor")
}

// pageOptions turns paging flags into PageOptions. Without --all a command
// fetches one page of at most --count results.
func pageOptions(cmd *cobra.Command) twitter.PageOptions {
	count, _ := cmd.Flags().GetInt("count")
	all, _ := cmd.Flags().GetBool("all")
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	delay, _ := cmd.Flags().GetDuration("delay")
	cursor, _ := cmd.Flags().GetString("cursor")
	jsonFull, _ := cmd.Flags().GetBool("json-full")

	opts := twitter.PageOptions{
		StartCursor: cursor,
		PageDelay:   delay,
		IncludeRaw:  jsonFull,
	}
	if all {
		opts.MaxPages = maxPages
	} else {
		opts.MaxPages = 1
		if count > 0 {
			opts.PageSize = count
			opts.Limit = count
		}
	}
	return opts
}

var (
	statusURLRe = regexp.MustCompile(`(?:twitter\.com|x\.com)/[^/]+/status(?:es)?/(\d+)`)
	numericRe   = regexp.MustCompile(`^\d+$`)
)

// tweetIDFromArg accepts a numeric tweet ID or a tweet URL.
func tweetIDFromArg(arg string) (string, error) {
	if numericRe.MatchString(arg) {
		return arg, nil
	}
	if m := statusURLRe.FindStringSubmatch(arg); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("not a tweet id or url: %q", arg)
}
