package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/policyops/pgov/internal/artifact"
	"github.com/policyops/pgov/internal/counterfactual"
	"github.com/policyops/pgov/internal/policy"
)

var (
	simulateAlternate string
	simulateProjectID string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-policy",
	Short: "Replay the trace history against an alternate policy",
	Long: `Re-decide every recorded action under an alternate policy document
and count the decisions that flip, split into stricter and more permissive
outcomes.

Exit codes:
  0  no contradictions
  1  one or more contradictions
  2  simulation failure

Examples:
  pgov simulate-policy --alternate proposed-policy.yaml
  pgov simulate-policy --alternate lockdown.json -o cf.json`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringVar(&simulateAlternate, "alternate", "", "Path to the alternate policy document (required)")
	simulateCmd.Flags().StringVar(&simulateProjectID, "project-id", "", "Project label recorded in the result")
	_ = simulateCmd.MarkFlagRequired("alternate")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return failExit(2, err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return failExit(2, err)
	}

	alternate, err := policy.Load(simulateAlternate)
	if err != nil {
		return failExit(2, fmt.Errorf("load alternate policy: %w", err))
	}

	// The original policy only informs the narrative; a missing document is
	// not fatal.
	original, err := policy.Find(cfg.ArtifactDir)
	if err != nil && !errors.Is(err, policy.ErrNoPolicy) {
		return failExit(2, err)
	}

	traces, err := loadTraces(store)
	if err != nil {
		return failExit(2, err)
	}

	res, err := counterfactual.Simulate(counterfactual.Input{
		ProjectID: simulateProjectID,
		Original:  original,
		Alternate: alternate,
		Traces:    traces,
	})
	if err != nil {
		return failExit(2, err)
	}

	if _, err := store.Write(artifact.CategoryCounterfactual, res); err != nil {
		return failExit(2, err)
	}
	if err := emit(res); err != nil {
		return failExit(2, err)
	}

	if res.Summary.Contradictions > 0 {
		return severityExit(1)
	}
	return nil
}
