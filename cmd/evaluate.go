package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/transship/app"
	"github.com/kilianp07/transship/config"
	"github.com/kilianp07/transship/core/heuristics"
)

var (
	policyType  string
	policyTable string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a heuristic or recorded policy",
	Long: "Evaluate runs backward induction under a fixed policy.\n" +
		"Built-in policies: " + fmt.Sprint(heuristics.Registry.Names()),
	RunE: func(cmd *cobra.Command, _ []string) error {
		tweak := func(cfg *config.Config) {
			if policyType != "" {
				cfg.Policy.Type = policyType
			}
			if policyTable != "" {
				cfg.Policy.Table = policyTable
			}
		}
		return withRunner(cmd, tweak, func(ctx context.Context, r *app.Runner) error {
			res, err := r.Evaluate(ctx)
			if err != nil {
				return fmt.Errorf("evaluate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d periods, mean value %.4f (%s)\n",
				r.RunID(), res.Periods, res.Values.Mean(), res.Duration)
			return nil
		})
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&policyType, "policy", "", "policy type, overrides policy.type")
	evaluateCmd.Flags().StringVar(&policyTable, "table", "", "recorded policy table for the replay policy")
	rootCmd.AddCommand(evaluateCmd)
}
