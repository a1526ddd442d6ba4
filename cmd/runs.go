package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/transship/infra/journal"
)

var (
	journalCfg journal.Config
	runsQuery  journal.Query
	runsSince  time.Duration
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs recorded by the journal sink",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := journal.Open(journalCfg)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer func() { _ = store.Close() }()

		q := runsQuery
		if runsSince > 0 {
			q.Start = time.Now().Add(-runsSince)
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		recs, err := store.Query(ctx, q)
		if err != nil {
			return fmt.Errorf("query journal: %w", err)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tRUN\tMODE\tPOLICY\tSTATUS\tPERIODS\tSTATES\tDURATION\tMIN VALUE")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%.1fms\t%.4f\n",
				r.Timestamp.Format(time.RFC3339), r.RunID, r.Mode, r.Policy, r.Status,
				r.Periods, r.States, r.DurationMS, r.MinValue)
		}
		return w.Flush()
	},
}

func init() {
	f := runsCmd.Flags()
	f.StringVar(&journalCfg.Backend, "backend", journal.BackendJSONL, "journal backend jsonl|sqlite")
	f.StringVar(&journalCfg.Path, "journal", "", "journal path")
	f.StringVar(&runsQuery.Mode, "mode", "", "only runs of this mode (optimal|evaluation)")
	f.StringVar(&runsQuery.Policy, "policy", "", "only runs of this policy")
	f.StringVar(&runsQuery.Status, "status", "", "only runs with this status (ok|error)")
	f.DurationVar(&runsSince, "since", 0, "only runs newer than this duration")
	rootCmd.AddCommand(runsCmd)
}
