package drift

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/policyops/pgov/internal/trace"
)

// Override density thresholds: share of traces whose outcome was overridden.
const (
	overrideHighDensity   = 0.30
	overrideMediumDensity = 0.15
)

// detectOverrideEscalation fires when a growing share of decisions is being
// overridden: the policy on paper and the policy in practice are diverging.
func detectOverrideEscalation(traces []trace.PolicyTrace) []Signal {
	if len(traces) == 0 {
		return nil
	}

	overrides := overrideCount(traces)
	density := float64(overrides) / float64(len(traces))

	var severity Severity
	switch {
	case density >= overrideHighDensity:
		severity = SeverityHigh
	case density >= overrideMediumDensity:
		severity = SeverityMedium
	default:
		return nil
	}

	confidence := density * 2
	if confidence > 1 {
		confidence = 1
	}
	return []Signal{{
		ID:         xid.New().String(),
		Type:       TypeOverrideEscalation,
		Severity:   severity,
		Confidence: confidence,
		Explanation: fmt.Sprintf("%d of %d traces (%.0f%%) carried a triggered override",
			overrides, len(traces), density*100),
	}}
}
