// Package autopilot fuses the latest drift, forecast, federation, and review
// signals for a project into one global risk verdict with recommended
// actions. It is the terminal decision point of the pipeline; operational
// tooling consumes its verdict through the CLI exit code.
package autopilot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/policyops/pgov/internal/drift"
	"github.com/policyops/pgov/internal/federate"
	"github.com/policyops/pgov/internal/futures"
	"github.com/policyops/pgov/internal/review"
)

// ErrNoSignals is returned when there is nothing to fuse: no drift analysis,
// no forecast, and no federation health.
var ErrNoSignals = errors.New("autopilot: at least one of drift, futures, or federated input is required")

// Global risk levels share the futures vocabulary.
const (
	RiskStable   = futures.RiskStable
	RiskElevated = futures.RiskElevated
	RiskVolatile = futures.RiskVolatile
	RiskCritical = futures.RiskCritical
)

// Thresholds are the configured trip points for each fused signal.
type Thresholds struct {
	// Volatility trips when the forecast volatility index exceeds it.
	Volatility float64 `json:"volatility"`

	// Drift trips when the overall drift score exceeds it.
	Drift float64 `json:"drift"`

	// Divergence trips when (1 - system stability) exceeds it.
	Divergence float64 `json:"divergence"`
}

// DefaultThresholds returns the stock trip points.
func DefaultThresholds() Thresholds {
	return Thresholds{Volatility: 0.6, Drift: 0.5, Divergence: 0.5}
}

// Input is one fusion request: the latest artifact of each upstream engine.
// Nil engine outputs simply do not contribute.
type Input struct {
	ProjectID string    `json:"projectId"`
	Timestamp time.Time `json:"timestamp"`

	Drift     *drift.Analysis  `json:"drift,omitempty"`
	Futures   *futures.Result  `json:"futures,omitempty"`
	Federated *federate.Health `json:"federated,omitempty"`
	Verdicts  []review.Verdict `json:"verdicts,omitempty"`

	Thresholds Thresholds `json:"thresholds"`
}

// Risk is the fused verdict.
type Risk struct {
	// GlobalRisk is the most severe of the contributing signal levels.
	GlobalRisk string             `json:"globalRisk"`
	Reasons    []string           `json:"reasons"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Output is the autopilot cycle artifact.
type Output struct {
	CycleID   string    `json:"cycleId"`
	ProjectID string    `json:"projectId"`
	Timestamp time.Time `json:"timestamp"`

	Risk               Risk     `json:"risk"`
	RecommendedActions []string `json:"recommendedActions"`
	Narrative          string   `json:"narrative"`
}

// severityRank orders risk levels for the most-severe fusion.
func severityRank(level string) int {
	switch level {
	case RiskElevated:
		return 1
	case RiskVolatile:
		return 2
	case RiskCritical:
		return 3
	}
	return 0
}

// Run executes one autopilot cycle.
func Run(in Input) (*Output, error) {
	if in.Drift == nil && in.Futures == nil && in.Federated == nil {
		return nil, ErrNoSignals
	}
	if in.Thresholds == (Thresholds{}) {
		in.Thresholds = DefaultThresholds()
	}

	out := &Output{
		CycleID:   xid.New().String(),
		ProjectID: in.ProjectID,
		Timestamp: in.Timestamp,
		Risk: Risk{
			GlobalRisk: RiskStable,
			Reasons:    []string{},
			Metrics:    map[string]float64{},
		},
		RecommendedActions: []string{},
	}

	// Fusion order: drift, then forecast, then federation. The global risk
	// escalates to the most severe contributor.
	if in.Drift != nil {
		fuseDrift(out, in.Drift, in.Thresholds)
	}
	if in.Futures != nil {
		fuseFutures(out, in.Futures, in.Thresholds)
	}
	if in.Federated != nil {
		fuseFederated(out, in.Federated, in.Thresholds)
	}
	fuseVerdicts(out, in.Verdicts)

	out.Narrative = narrative(out)
	return out, nil
}

func escalate(out *Output, level string) {
	if severityRank(level) > severityRank(out.Risk.GlobalRisk) {
		out.Risk.GlobalRisk = level
	}
}

// driftRisk maps a drift classification onto the risk vocabulary.
func driftRisk(classification string) string {
	switch classification {
	case drift.ClassWatch:
		return RiskElevated
	case drift.ClassVolatile:
		return RiskVolatile
	case drift.ClassCritical:
		return RiskCritical
	}
	return RiskStable
}

func fuseDrift(out *Output, a *drift.Analysis, t Thresholds) {
	out.Risk.Metrics["driftScore"] = a.OverallDriftScore
	out.Risk.Metrics["driftSignals"] = float64(len(a.Signals))
	escalate(out, driftRisk(a.Classification))

	if a.OverallDriftScore > t.Drift {
		out.Risk.Reasons = append(out.Risk.Reasons,
			fmt.Sprintf("drift score %.2f exceeds threshold %.2f (%s)", a.OverallDriftScore, t.Drift, a.Classification))
		out.RecommendedActions = append(out.RecommendedActions,
			"Freeze automated rule changes and review the drift signals before the next inference pass.")
	}
}

func fuseFutures(out *Output, f *futures.Result, t Thresholds) {
	out.Risk.Metrics["volatilityIndex"] = f.VolatilityIndex
	escalate(out, f.RiskLevel)

	if f.VolatilityIndex > t.Volatility {
		out.Risk.Reasons = append(out.Risk.Reasons,
			fmt.Sprintf("forecast volatility %.2f exceeds threshold %.2f over the next %dh", f.VolatilityIndex, t.Volatility, f.WindowHours))
		out.RecommendedActions = append(out.RecommendedActions,
			"Tighten review gates for the forecast window; require human approval for deny-rule removals.")
	}
}

// federatedRisk maps system stability onto the risk vocabulary: high
// stability is calm, low stability is alarming.
func federatedRisk(stability float64) string {
	switch {
	case stability >= 0.8:
		return RiskStable
	case stability >= 0.5:
		return RiskElevated
	case stability >= 0.2:
		return RiskVolatile
	}
	return RiskCritical
}

func fuseFederated(out *Output, h *federate.Health, t Thresholds) {
	out.Risk.Metrics["systemStability"] = h.SystemStabilityScore
	out.Risk.Metrics["outliers"] = float64(len(h.Outliers))
	escalate(out, federatedRisk(h.SystemStabilityScore))

	if divergence := 1 - h.SystemStabilityScore; divergence > t.Divergence {
		out.Risk.Reasons = append(out.Risk.Reasons,
			fmt.Sprintf("federation divergence %.2f exceeds threshold %.2f (%d outlier(s))", divergence, t.Divergence, len(h.Outliers)))
		out.RecommendedActions = append(out.RecommendedActions,
			"Reconcile this project's policy with the federation baseline consensus.")
	}
}

// fuseVerdicts contributes reasons only; review pushback alone raises risk to
// at most elevated.
func fuseVerdicts(out *Output, verdicts []review.Verdict) {
	if len(verdicts) == 0 {
		return
	}
	_, reject, _ := review.Ratios(verdicts)
	out.Risk.Metrics["rejectionRatio"] = reject

	if reject > 0.5 {
		escalate(out, RiskElevated)
		out.Risk.Reasons = append(out.Risk.Reasons,
			fmt.Sprintf("reviewers rejected %.0f%% of recent recommendations", reject*100))
		out.RecommendedActions = append(out.RecommendedActions,
			"Raise inference thresholds; most proposed rules are being rejected on review.")
	}
}

func narrative(out *Output) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Autopilot cycle %s for %s: global risk %s.", out.CycleID, out.ProjectID, out.Risk.GlobalRisk)
	if len(out.Risk.Reasons) == 0 {
		b.WriteString(" No thresholds tripped.")
		return b.String()
	}
	fmt.Fprintf(&b, " %d reason(s): %s", len(out.Risk.Reasons), strings.Join(out.Risk.Reasons, "; "))
	return b.String()
}
