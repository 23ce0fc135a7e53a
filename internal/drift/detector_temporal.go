package drift

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/policyops/pgov/internal/trace"
)

// Burst detection: the late half of the window holding several times the
// early half's traces, with a floor so tiny samples never fire.
const (
	temporalBurstFactor = 3.0
	temporalMinTraces   = 6
)

// detectTemporalAnomaly fires when evaluated activity is bursting late in
// the window rather than spread across it. A burst often precedes churn and
// override spikes, so it is surfaced on its own.
func detectTemporalAnomaly(traces []trace.PolicyTrace, window trace.Window) []Signal {
	if len(traces) < temporalMinTraces {
		return nil
	}

	mid := window.From.Add(window.To.Sub(window.From) / 2)
	early, late := 0, 0
	for _, t := range traces {
		if t.Timestamp.Before(mid) {
			early++
		} else {
			late++
		}
	}

	if early == 0 || float64(late) < temporalBurstFactor*float64(early) {
		return nil
	}

	ratio := float64(late) / float64(early)
	confidence := ratio / (2 * temporalBurstFactor)
	if confidence > 1 {
		confidence = 1
	}
	return []Signal{{
		ID:         xid.New().String(),
		Type:       TypeTemporalAnomaly,
		Severity:   SeverityMedium,
		Confidence: confidence,
		Explanation: fmt.Sprintf("activity burst: %d traces in the late half of the window vs %d early (%.1fx)",
			late, early, ratio),
	}}
}
