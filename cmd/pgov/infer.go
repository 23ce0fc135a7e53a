package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/policyops/pgov/internal/artifact"
	"github.com/policyops/pgov/internal/inference"
)

var inferProjectID string

var inferCmd = &cobra.Command{
	Use:   "infer-policy",
	Short: "Mine the trace history for recommended policy changes",
	Long: `Analyze accumulated policy traces for recurring patterns (frequent
denies, overrides, review loops, unused rules, path and command templates)
and propose rule additions, modifications, and removals.

Exit codes:
  0  recommendations produced
  1  no traces found or artifact directory unusable

Examples:
  pgov infer-policy
  pgov infer-policy --artifact-dir /srv/agents/.pgov -o recs.json`,
	RunE: runInfer,
}

func init() {
	rootCmd.AddCommand(inferCmd)
	inferCmd.Flags().StringVar(&inferProjectID, "project-id", "", "Project label recorded in the result metadata")
}

func runInfer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	traces, err := loadTraces(store)
	if err != nil {
		return err
	}
	if len(traces) == 0 {
		return fmt.Errorf("no traces found under %s", cfg.ArtifactDir)
	}
	VerbosePrintf("analyzing %d trace(s)\n", len(traces))

	meta := map[string]string{}
	if inferProjectID != "" {
		meta["projectId"] = inferProjectID
	}
	res, err := inference.Infer(inference.Input{Traces: traces, Metadata: meta})
	if err != nil {
		return err
	}

	if _, err := store.Write(artifact.CategoryRecommendation, res); err != nil {
		return err
	}
	return emit(res)
}
