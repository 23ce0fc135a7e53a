// Package review assigns approve/reject/revise verdicts to inference
// recommendations. Downstream engines treat verdicts as opaque review
// history; whether a verdict came from the built-in heuristics or an
// interactive human session makes no difference to them.
package review

import (
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/policyops/pgov/internal/inference"
	"github.com/policyops/pgov/internal/trace"
)

// Verdict outcomes.
const (
	VerdictApprove = "approve"
	VerdictReject  = "reject"
	VerdictRevise  = "revise"
)

// Verdict is one review decision for one recommendation.
type Verdict struct {
	ID               string    `json:"id"`
	RecommendationID string    `json:"recommendationId"`
	Verdict          string    `json:"verdict"`
	Reviewer         string    `json:"reviewer"`
	Confidence       float64   `json:"confidence"`
	Notes            string    `json:"notes,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Result is the review stage's output artifact.
type Result struct {
	Verdicts []Verdict `json:"verdicts"`

	// Flagged is the governance flag: raised when review rejected
	// recommendations decisively (see Flag).
	Flagged bool `json:"flagged"`

	Narrative string `json:"narrative"`
}

// Confidence bands for the heuristic reviewer.
const (
	approveConfidence = 0.75
	rejectConfidence  = 0.40

	// removals need stronger evidence: a wrongly removed rule silently
	// widens the policy.
	removeApproveConfidence = 0.85
)

// Review applies the heuristic reviewer to every recommendation. The
// reviewer is deliberately conservative: low-confidence proposals are
// rejected, mid-band proposals are sent back for revision, and removals are
// held to a higher bar.
func Review(recs []inference.Recommendation, reviewer string, now time.Time) *Result {
	if reviewer == "" {
		reviewer = "heuristic"
	}

	res := &Result{Verdicts: []Verdict{}}
	for _, rec := range recs {
		v := Verdict{
			ID:               xid.New().String(),
			RecommendationID: rec.ID,
			Reviewer:         reviewer,
			Confidence:       rec.Confidence,
			Timestamp:        now,
		}
		v.Verdict, v.Notes = judge(rec)
		res.Verdicts = append(res.Verdicts, v)
	}

	res.Flagged = Flag(res.Verdicts)
	res.Narrative = narrative(res)
	return res
}

// judge decides one recommendation.
func judge(rec inference.Recommendation) (verdict, notes string) {
	approveBar := approveConfidence
	if rec.Type == inference.TypeRemoveRule {
		approveBar = removeApproveConfidence
	}

	switch {
	case rec.Confidence >= approveBar:
		return VerdictApprove, "confidence clears the approval bar"
	case rec.Confidence < rejectConfidence:
		return VerdictReject, "confidence too low to act on"
	case rec.ProposedRule.Effect == trace.DecisionDeny:
		return VerdictRevise, "deny-effect proposals need a human pass before adoption"
	default:
		return VerdictRevise, "mid-band confidence; needs narrowing or more evidence"
	}
}

// Flag reports whether the verdict set raises the governance flag: any
// high-confidence rejection, or rejections outnumbering half the verdicts.
func Flag(verdicts []Verdict) bool {
	if len(verdicts) == 0 {
		return false
	}
	rejects := 0
	for _, v := range verdicts {
		if v.Verdict != VerdictReject {
			continue
		}
		rejects++
		if v.Confidence >= 0.8 {
			return true
		}
	}
	return float64(rejects)/float64(len(verdicts)) > 0.5
}

// Ratios returns the approve/reject/revise shares of a verdict set. Used by
// the drift engine's reviewer-disagreement detector.
func Ratios(verdicts []Verdict) (approve, reject, revise float64) {
	if len(verdicts) == 0 {
		return 0, 0, 0
	}
	n := float64(len(verdicts))
	for _, v := range verdicts {
		switch v.Verdict {
		case VerdictApprove:
			approve++
		case VerdictReject:
			reject++
		case VerdictRevise:
			revise++
		}
	}
	return approve / n, reject / n, revise / n
}

func narrative(res *Result) string {
	a, r, v := Ratios(res.Verdicts)
	s := fmt.Sprintf("Reviewed %d recommendations: %.0f%% approved, %.0f%% rejected, %.0f%% sent back for revision.",
		len(res.Verdicts), a*100, r*100, v*100)
	if res.Flagged {
		s += " Governance flag raised: review rejected recommendations decisively."
	}
	return s
}
