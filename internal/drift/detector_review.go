package drift

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/policyops/pgov/internal/review"
)

// reviewVarianceThreshold is the minimum variance of the verdict-class
// shares for a signal.
const reviewVarianceThreshold = 0.1

// detectReviewerDisagreement measures how unevenly review verdicts are
// distributed across approve/reject/revise. The variance of the three
// shares clears the threshold when the verdict mix is strongly skewed,
// meaning review outcomes are not tracking recommendation quality evenly.
func detectReviewerDisagreement(verdicts []review.Verdict) []Signal {
	if len(verdicts) == 0 {
		return nil
	}

	a, r, v := review.Ratios(verdicts)
	mean := (a + r + v) / 3
	variance := ((a-mean)*(a-mean) + (r-mean)*(r-mean) + (v-mean)*(v-mean)) / 3
	if variance <= reviewVarianceThreshold {
		return nil
	}

	confidence := 2 * variance
	if confidence > 1 {
		confidence = 1
	}
	return []Signal{{
		ID:         xid.New().String(),
		Type:       TypeReviewerDisagreement,
		Severity:   SeverityMedium,
		Confidence: confidence,
		Explanation: fmt.Sprintf("verdict shares approve=%.2f reject=%.2f revise=%.2f (variance %.3f)",
			a, r, v, variance),
	}}
}
