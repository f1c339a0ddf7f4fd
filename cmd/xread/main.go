// Package main is the entry point for the xread CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the xread CLI.
var rootCmd = &cobra.Command{
	Use:   "xread",
	Short: "Read X/Twitter content with browser session cookies",
	Long: `xread reads tweets, conversations, searches, bookmarks, likes, and follow
lists through the web client's GraphQL API, authenticated with the auth_token
and ct0 cookies of a logged-in browser session.

Credentials come from --auth-token/--ct0, --cookie, the XREAD_AUTH_TOKEN and
XREAD_CT0 (or AUTH_TOKEN and CT0) environment variables, a .env file, or
xread.yaml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if viper.GetBool("verbose") {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./xread.yaml or ~/.config/xread/xread.yaml)")
	pf.String("auth-token", "", "auth_token cookie value")
	pf.String("ct0", "", "ct0 cookie value")
	pf.String("cookie", "", "raw Cookie header containing auth_token and ct0")
	pf.String("proxy", "", "proxy URL for all requests")
	pf.Duration("timeout", 0, "per-request timeout (default 30s)")
	pf.String("registry-cache", "", "file to persist discovered operation ids")
	pf.Bool("no-quotes", false, "do not resolve quoted tweets")
	pf.Bool("verbose", false, "debug logging to stderr")
	pf.Bool("json", false, "output JSON")
	pf.Bool("json-full", false, "output JSON including raw GraphQL results")

	for key, flag := range map[string]string{
		"auth_token":     "auth-token",
		"ct0":            "ct0",
		"cookie":         "cookie",
		"proxy":          "proxy",
		"timeout":        "timeout",
		"registry_cache": "registry-cache",
		"no_quotes":      "no-quotes",
		"verbose":        "verbose",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
	_ = viper.BindEnv("auth_token", "XREAD_AUTH_TOKEN", "AUTH_TOKEN")
	_ = viper.BindEnv("ct0", "XREAD_CT0", "CT0")
}

func initConfig() {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("xread")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "xread"))
		}
	}

	viper.SetEnvPrefix("XREAD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
