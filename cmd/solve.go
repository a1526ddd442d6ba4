package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/transship/app"
	"github.com/kilianp07/transship/config"
)

var writePolicy bool

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Compute the optimal value function and policy",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tweak := func(cfg *config.Config) {
			if cmd.Flags().Changed("policy-table") {
				cfg.Output.Policy = writePolicy
			}
		}
		return withRunner(cmd, tweak, func(ctx context.Context, r *app.Runner) error {
			res, err := r.Solve(ctx)
			if err != nil {
				return fmt.Errorf("solve: %w", err)
			}
			s, v := res.Values.Min()
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d periods, %d states, min value %.4f at %s (%s)\n",
				r.RunID(), res.Periods, res.Values.Len(), v, s, res.Duration)
			return nil
		})
	},
}

func init() {
	solveCmd.Flags().BoolVar(&writePolicy, "policy-table", false, "also write the optimal policy table")
	rootCmd.AddCommand(solveCmd)
}
