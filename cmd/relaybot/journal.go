package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/flemzord/relaybot/modules/journal/sqlite"
	"github.com/flemzord/relaybot/pkg/app"
	"github.com/spf13/cobra"
)

func journalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the most recent relay journal entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			path, _ := cmd.Flags().GetString("db")
			if path == "" {
				path = filepath.Join(app.DefaultDataDir(), "relay.db")
			}

			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("no journal at %s: %w", path, err)
			}

			store, err := sqlite.Open(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Journal is empty.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tKIND\tCHAT\tTEXT")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					e.At.Local().Format(time.DateTime), e.Kind, e.ChatName, truncate(e.Text, 60))
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int("limit", 20, "Number of entries to show")
	cmd.Flags().String("db", "", "Journal database path (default: <data dir>/relay.db)")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
