package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/policyops/pgov/internal/artifact"
	"github.com/policyops/pgov/internal/autopilot"
	"github.com/policyops/pgov/internal/runbook"
)

var runbookProjectID string

var runbookCmd = &cobra.Command{
	Use:   "make-runbook",
	Short: "Turn the latest risk verdict into a remediation runbook",
	Long: `Build an ordered, severity-tagged remediation plan from the latest
autopilot cycle and its supporting signals.

Exit codes:
  0  low or medium severity
  1  high severity
  2  critical severity, or planner failure

Examples:
  pgov make-runbook --project-id svc-a -o runbook.json`,
	RunE: runRunbook,
}

func init() {
	rootCmd.AddCommand(runbookCmd)
	runbookCmd.Flags().StringVar(&runbookProjectID, "project-id", "local", "Project the runbook targets")
}

func runRunbook(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return failExit(2, err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return failExit(2, err)
	}

	var assessment autopilot.Output
	if err := store.FindLatest(artifact.CategoryAutopilot, &assessment); err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return failExit(2, fmt.Errorf("no autopilot cycle found; run autopilot-cycle first"))
		}
		return failExit(2, err)
	}

	driftAnalysis, err := latestDrift(store)
	if err != nil {
		return failExit(2, err)
	}
	forecast, err := latestForecast(store)
	if err != nil {
		return failExit(2, err)
	}
	federation, err := latestFederation(store)
	if err != nil {
		return failExit(2, err)
	}
	traces, err := loadTraces(store)
	if err != nil {
		return failExit(2, err)
	}
	verdicts, err := loadVerdicts(store)
	if err != nil {
		return failExit(2, err)
	}

	out, err := runbook.Plan(runbook.Input{
		ProjectID:  runbookProjectID,
		Timestamp:  time.Now().UTC(),
		Assessment: &assessment,
		Drift:      driftAnalysis,
		Futures:    forecast,
		Federated:  federation,
		Traces:     traces,
		Verdicts:   verdicts,
	})
	if err != nil {
		return failExit(2, err)
	}

	if _, err := store.Write(artifact.CategoryRunbook, out); err != nil {
		return failExit(2, err)
	}
	if err := emit(out); err != nil {
		return failExit(2, err)
	}

	switch out.Severity {
	case runbook.SeverityHigh:
		return severityExit(1)
	case runbook.SeverityCritical:
		return severityExit(2)
	}
	return nil
}
