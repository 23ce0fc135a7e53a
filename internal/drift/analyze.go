package drift

import (
	"fmt"
)

// Classification boundaries on the overall drift score.
const (
	classWatchBoundary    = 0.2
	classVolatileBoundary = 0.5
	classCriticalBoundary = 0.8
)

// Analyze runs every detector over the input and aggregates the signals into
// one drift analysis. A window with no traces is by definition stable.
func Analyze(in Input) *Analysis {
	analysis := &Analysis{Signals: []Signal{}, Window: in.Window}

	if len(in.Traces) == 0 {
		analysis.StabilityIndex = 1
		analysis.Classification = ClassStable
		analysis.Narrative = "No traces in the analysis window; the policy saw no evaluated actions, so no drift can exist."
		return analysis
	}

	analysis.Signals = append(analysis.Signals, detectRuleChurn(in.Recommendations, in.Window)...)
	analysis.Signals = append(analysis.Signals, detectOverrideEscalation(in.Traces)...)
	analysis.Signals = append(analysis.Signals, detectPermissionCreep(in.Recommendations)...)
	analysis.Signals = append(analysis.Signals, detectRestrictionCreep(in.Recommendations)...)
	analysis.Signals = append(analysis.Signals, detectFlipFlop(in.Recommendations)...)
	analysis.Signals = append(analysis.Signals, detectReviewerDisagreement(in.Verdicts)...)
	analysis.Signals = append(analysis.Signals, detectTemporalAnomaly(in.Traces, in.Window)...)

	analysis.OverallDriftScore = Score(analysis.Signals, len(in.Traces), len(in.Recommendations))
	analysis.StabilityIndex = 1 - analysis.OverallDriftScore
	analysis.Classification = Classify(analysis.OverallDriftScore)
	analysis.Narrative = narrative(analysis, len(in.Traces))
	return analysis
}

// Score folds signals into [0,1]: the severity-weighted mean of signal
// confidences, amplified by signal density relative to the evidence volume,
// capped at 1.
func Score(signals []Signal, traces, recommendations int) float64 {
	if len(signals) == 0 {
		return 0
	}

	var weighted, weights float64
	for _, s := range signals {
		w := s.Severity.Weight()
		weighted += w * s.Confidence
		weights += w
	}
	if weights == 0 {
		return 0
	}

	score := weighted / weights
	amplifier := 1 + 2*float64(len(signals))/float64(traces+recommendations+1)
	score *= amplifier
	if score > 1 {
		return 1
	}
	return score
}

// Classify maps a drift score to a stability classification. Boundaries are
// half-open: 0.2 is already watch and 0.8 is already critical.
func Classify(score float64) string {
	switch {
	case score < classWatchBoundary:
		return ClassStable
	case score < classVolatileBoundary:
		return ClassWatch
	case score < classCriticalBoundary:
		return ClassVolatile
	default:
		return ClassCritical
	}
}

func narrative(a *Analysis, traces int) string {
	if len(a.Signals) == 0 {
		return fmt.Sprintf("Analyzed %d traces; no drift signals detected. Policy behavior is %s.", traces, a.Classification)
	}

	byType := map[SignalType]int{}
	for _, s := range a.Signals {
		byType[s.Type]++
	}
	detail := ""
	for _, t := range []SignalType{TypeRuleChurn, TypeOverrideEscalation, TypePermissionCreep,
		TypeRestrictionCreep, TypeFlipFlop, TypeReviewerDisagreement, TypeTemporalAnomaly} {
		if byType[t] > 0 {
			if detail != "" {
				detail += ", "
			}
			detail += fmt.Sprintf("%s x%d", t, byType[t])
		}
	}
	return fmt.Sprintf("Analyzed %d traces; %d drift signals (%s). Overall drift %.2f, stability %.2f: %s.",
		traces, len(a.Signals), detail, a.OverallDriftScore, a.StabilityIndex, a.Classification)
}
