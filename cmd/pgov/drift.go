package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/policyops/pgov/internal/artifact"
	"github.com/policyops/pgov/internal/drift"
	"github.com/policyops/pgov/internal/trace"
)

var driftWindowHours int

var driftCmd = &cobra.Command{
	Use:   "detect-drift",
	Short: "Score policy behavior instability over a time window",
	Long: `Combine traces, recommendations, and review verdicts inside the
window into drift signals and a stability classification.

Exit codes:
  0  stable or watch
  1  volatile
  2  critical
  3  analysis failure

Examples:
  pgov detect-drift
  pgov detect-drift --window-hours 72 -o drift.json`,
	RunE: runDrift,
}

func init() {
	rootCmd.AddCommand(driftCmd)
	driftCmd.Flags().IntVar(&driftWindowHours, "window-hours", 24, "Length of the analysis window ending now")
}

func runDrift(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return failExit(3, err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return failExit(3, err)
	}

	now := time.Now().UTC()
	window := trace.Window{From: now.Add(-time.Duration(driftWindowHours) * time.Hour), To: now}

	traces, err := loadTraces(store)
	if err != nil {
		return failExit(3, err)
	}
	recs, err := loadRecommendations(store)
	if err != nil {
		return failExit(3, err)
	}
	verdicts, err := loadVerdicts(store)
	if err != nil {
		return failExit(3, err)
	}

	analysis := drift.Analyze(drift.Input{
		Traces:          trace.Filter(traces, window),
		Recommendations: recs,
		Verdicts:        verdicts,
		Window:          window,
	})

	if _, err := store.Write(artifact.CategoryDrift, analysis); err != nil {
		return failExit(3, err)
	}
	if err := emit(analysis); err != nil {
		return failExit(3, err)
	}

	switch analysis.Classification {
	case drift.ClassVolatile:
		return severityExit(1)
	case drift.ClassCritical:
		return severityExit(2)
	}
	return nil
}
