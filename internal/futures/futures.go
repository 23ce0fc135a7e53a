// Package futures forecasts near-term policy risk by Monte-Carlo simulation
// over the recorded history: per-hour event rates are estimated from traces,
// recommendations, and verdicts, then many alternate windows are sampled and
// scored. The seed is explicit, so a forecast is reproducible bit for bit.
package futures

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/policyops/pgov/internal/drift"
	"github.com/policyops/pgov/internal/inference"
	"github.com/policyops/pgov/internal/review"
	"github.com/policyops/pgov/internal/trace"
)

// ErrNoHistory is returned when there are no traces to forecast from.
var ErrNoHistory = errors.New("futures: trace history is required for forecasting")

// Defaults for the simulation parameters.
const (
	DefaultIterations  = 500
	DefaultWindowHours = 4
)

// Risk levels, ordered from calm to alarming.
const (
	RiskStable   = "stable"
	RiskElevated = "elevated"
	RiskVolatile = "volatile"
	RiskCritical = "critical"
)

// Input is the forecast request plus all history it draws on.
type Input struct {
	ProjectID string `json:"projectId"`

	Traces          []trace.PolicyTrace        `json:"traces"`
	DriftHistory    []drift.Analysis           `json:"driftHistory,omitempty"`
	Recommendations []inference.Recommendation `json:"recommendations,omitempty"`
	Verdicts        []review.Verdict           `json:"verdicts,omitempty"`

	// Iterations is the Monte-Carlo sample count; 0 means DefaultIterations.
	Iterations int `json:"iterations"`

	// WindowHours is the forecast horizon; 0 means DefaultWindowHours.
	WindowHours int `json:"windowHours"`

	// Seed drives the PRNG. The same seed and history always produce the
	// same result.
	Seed int64 `json:"seed"`
}

// Result is the aggregate forecast artifact.
type Result struct {
	ProjectID   string `json:"projectId"`
	Iterations  int    `json:"iterations"`
	WindowHours int    `json:"windowHours"`
	Seed        int64  `json:"seed"`

	// VolatilityIndex is the mean simulated risk index in [0,1].
	VolatilityIndex float64 `json:"volatilityIndex"`

	// RiskLevel is stable, elevated, volatile, or critical.
	RiskLevel string `json:"riskLevel"`

	// OutcomeDistribution counts iterations per risk level.
	OutcomeDistribution map[string]int `json:"outcomeDistribution"`

	MostProbable string `json:"mostProbable"`
	Best         string `json:"best"`
	Worst        string `json:"worst"`
}

// rates are the per-hour event intensities estimated from history.
type rates struct {
	deny      float64
	override  float64
	review    float64
	recommend float64
	reject    float64
	baseline  float64 // latest drift score, the forecast's floor
}

// Per-event pressure contributions for one simulated hour.
const (
	denyPressure      = 0.05
	overridePressure  = 0.08
	reviewPressure    = 0.03
	recommendPressure = 0.06
	rejectPressure    = 0.04
)

// Forecast runs the Monte-Carlo simulation.
func Forecast(in Input) (*Result, error) {
	if len(in.Traces) == 0 {
		return nil, ErrNoHistory
	}
	if in.Iterations <= 0 {
		in.Iterations = DefaultIterations
	}
	if in.WindowHours <= 0 {
		in.WindowHours = DefaultWindowHours
	}

	r := estimateRates(in)
	rng := rand.New(rand.NewSource(in.Seed))

	res := &Result{
		ProjectID:           in.ProjectID,
		Iterations:          in.Iterations,
		WindowHours:         in.WindowHours,
		Seed:                in.Seed,
		OutcomeDistribution: map[string]int{},
	}

	sum := 0.0
	best, worst := 1.0, 0.0
	for i := 0; i < in.Iterations; i++ {
		index := simulateWindow(rng, r, in.WindowHours)
		sum += index
		if index < best {
			best = index
		}
		if index > worst {
			worst = index
		}
		res.OutcomeDistribution[riskLevel(index)]++
	}

	res.VolatilityIndex = sum / float64(in.Iterations)
	res.RiskLevel = riskLevel(res.VolatilityIndex)

	modal := modalOutcome(res.OutcomeDistribution)
	res.MostProbable = fmt.Sprintf("Most iterations (%d of %d) land %s over the next %dh.",
		res.OutcomeDistribution[modal], in.Iterations, modal, in.WindowHours)
	res.Best = fmt.Sprintf("Best simulated window scores %.2f (%s): event pressure stays low.", best, riskLevel(best))
	res.Worst = fmt.Sprintf("Worst simulated window scores %.2f (%s): deny/override bursts compound existing drift.", worst, riskLevel(worst))
	return res, nil
}

// estimateRates derives per-hour event intensities from the history span.
func estimateRates(in Input) rates {
	first, last := in.Traces[0].Timestamp, in.Traces[0].Timestamp
	denies, overrides, reviews := 0, 0, 0
	for _, t := range in.Traces {
		if t.Timestamp.Before(first) {
			first = t.Timestamp
		}
		if t.Timestamp.After(last) {
			last = t.Timestamp
		}
		switch {
		case t.FinalDecision == trace.DecisionDeny:
			denies++
		case t.FinalDecision == trace.DecisionReview:
			reviews++
		}
		if t.Overridden() {
			overrides++
		}
	}

	hours := last.Sub(first).Hours()
	if hours < 1 {
		hours = 1
	}

	rejects := 0
	for _, v := range in.Verdicts {
		if v.Verdict == review.VerdictReject {
			rejects++
		}
	}

	baseline := 0.0
	if n := len(in.DriftHistory); n > 0 {
		baseline = in.DriftHistory[n-1].OverallDriftScore
	}

	return rates{
		deny:      float64(denies) / hours,
		override:  float64(overrides) / hours,
		review:    float64(reviews) / hours,
		recommend: float64(len(in.Recommendations)) / hours,
		reject:    float64(rejects) / hours,
		baseline:  baseline,
	}
}

// simulateWindow samples one alternate window hour by hour and folds the
// event pressure onto the drift baseline.
func simulateWindow(rng *rand.Rand, r rates, hours int) float64 {
	pressure := 0.0
	for h := 0; h < hours; h++ {
		pressure += float64(samplePoisson(rng, r.deny)) * denyPressure
		pressure += float64(samplePoisson(rng, r.override)) * overridePressure
		pressure += float64(samplePoisson(rng, r.review)) * reviewPressure
		pressure += float64(samplePoisson(rng, r.recommend)) * recommendPressure
		pressure += float64(samplePoisson(rng, r.reject)) * rejectPressure
	}

	// The baseline drift persists; simulated pressure stacks on top.
	index := r.baseline + (1-r.baseline)*squash(pressure)
	if index > 1 {
		index = 1
	}
	return index
}

// squash maps unbounded pressure into [0,1) smoothly.
func squash(p float64) float64 {
	return 1 - math.Exp(-p)
}

// samplePoisson draws from Poisson(lambda) by Knuth's method. Rates here
// are small (events per hour), so the loop is short.
func samplePoisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k, p := 0, 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

// riskLevel maps a risk index to the forecast vocabulary, using the same
// boundaries as drift classification.
func riskLevel(index float64) string {
	switch {
	case index < 0.2:
		return RiskStable
	case index < 0.5:
		return RiskElevated
	case index < 0.8:
		return RiskVolatile
	default:
		return RiskCritical
	}
}

func modalOutcome(dist map[string]int) string {
	best, bestCount := RiskStable, -1
	for _, level := range []string{RiskStable, RiskElevated, RiskVolatile, RiskCritical} {
		if dist[level] > bestCount {
			best, bestCount = level, dist[level]
		}
	}
	return best
}
