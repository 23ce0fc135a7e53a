package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/policyops/pgov/internal/artifact"
	"github.com/policyops/pgov/internal/autopilot"
)

var autopilotProjectID string

var autopilotCmd = &cobra.Command{
	Use:   "autopilot-cycle",
	Short: "Fuse all governance signals into one risk verdict",
	Long: `Run one autopilot cycle: fuse the latest drift analysis, forecast,
federation health, and review history into a global risk verdict with
recommended actions. At least one upstream artifact must exist.

Exit codes:
  0  stable or elevated
  1  volatile
  2  critical, or cycle failure

Examples:
  pgov autopilot-cycle --project-id svc-a`,
	RunE: runAutopilot,
}

func init() {
	rootCmd.AddCommand(autopilotCmd)
	autopilotCmd.Flags().StringVar(&autopilotProjectID, "project-id", "local", "Project the cycle assesses")
}

func runAutopilot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return failExit(2, err)
	}
	store, err := openStore(cfg)
	if err != nil {
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
	verdicts, err := loadVerdicts(store)
	if err != nil {
		return failExit(2, err)
	}

	out, err := autopilot.Run(autopilot.Input{
		ProjectID: autopilotProjectID,
		Timestamp: time.Now().UTC(),
		Drift:     driftAnalysis,
		Futures:   forecast,
		Federated: federation,
		Verdicts:  verdicts,
		Thresholds: autopilot.Thresholds{
			Volatility: cfg.Thresholds.Volatility,
			Drift:      cfg.Thresholds.Drift,
			Divergence: cfg.Thresholds.Divergence,
		},
	})
	if err != nil {
		return failExit(2, err)
	}

	if _, err := store.Write(artifact.CategoryAutopilot, out); err != nil {
		return failExit(2, err)
	}
	if err := emit(out); err != nil {
		return failExit(2, err)
	}

	switch out.Risk.GlobalRisk {
	case autopilot.RiskVolatile:
		return severityExit(1)
	case autopilot.RiskCritical:
		return severityExit(2)
	}
	return nil
}
