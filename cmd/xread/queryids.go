package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var queryIDsCmd = &cobra.Command{
	Use:   "query-ids",
	Short: "Show the GraphQL operation ids in use",
	Long: `query-ids prints the candidate operation ids for each GraphQL operation,
best first. With --refresh it first re-reads them from the web client's
bundles; with --registry-cache the result is kept for later runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		reg := c.Registry()
		if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
			if err := reg.Refresh(cmd.Context()); err != nil {
				return err
			}
		}

		snap := reg.Snapshot()
		if jsonOutput(cmd) {
			return writeJSON(cmd.OutOrStdout(), snap)
		}

		out := cmd.OutOrStdout()
		if !snap.RefreshedAt.IsZero() {
			fmt.Fprintf(out, "refreshed %s\n", snap.RefreshedAt.Format(time.RFC3339))
		}
		names := make([]string, 0, len(snap.Operations))
		for name := range snap.Operations {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(out, "%-28s %s\n", name, strings.Join(snap.Operations[name], ", "))
		}
		return nil
	},
}

func init() {
	queryIDsCmd.Flags().Bool("refresh", false, "re-discover ids from the web client before printing")
	rootCmd.AddCommand(queryIDsCmd)
}
