package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/transship/app"
)

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Write the single-period stage costs of every state",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRunner(cmd, nil, func(ctx context.Context, r *app.Runner) error {
			sc, err := r.StageCosts(ctx)
			if err != nil {
				return fmt.Errorf("stage costs: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: stage costs of %d states written\n", r.RunID(), len(sc.Store))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(costsCmd)
}
