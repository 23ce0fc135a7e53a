package drift

import (
	"fmt"
	"strings"

	"github.com/rs/xid"

	"github.com/policyops/pgov/internal/inference"
	"github.com/policyops/pgov/internal/trace"
)

// Creep count thresholds.
const (
	permissionHighCount    = 5
	permissionMediumCount  = 2
	restrictionHighCount   = 3
	restrictionMediumCount = 1
)

// detectPermissionCreep counts allow-oriented additions and modifications.
// A steady stream of new allowances widens the policy one small hole at a
// time.
func detectPermissionCreep(recs []inference.Recommendation) []Signal {
	count := 0
	for _, r := range recs {
		if r.Type != inference.TypeAddRule && r.Type != inference.TypeModifyRule {
			continue
		}
		if r.ProposedRule.Effect == trace.DecisionAllow {
			count++
		}
	}

	var severity Severity
	switch {
	case count >= permissionHighCount:
		severity = SeverityHigh
	case count >= permissionMediumCount:
		severity = SeverityMedium
	default:
		return nil
	}

	confidence := float64(count) / float64(permissionHighCount)
	if confidence > 1 {
		confidence = 1
	}
	return []Signal{{
		ID:          xid.New().String(),
		Type:        TypePermissionCreep,
		Severity:    severity,
		Confidence:  confidence,
		Explanation: fmt.Sprintf("%d allow-oriented rule additions/modifications recommended in the window", count),
	}}
}

// detectRestrictionCreep is the mirror image: removals plus deny/restrict
// flavored modifications tightening the policy.
func detectRestrictionCreep(recs []inference.Recommendation) []Signal {
	count := 0
	for _, r := range recs {
		switch {
		case r.Type == inference.TypeRemoveRule:
			count++
		case r.Type == inference.TypeModifyRule && restrictive(r):
			count++
		}
	}

	var severity Severity
	switch {
	case count >= restrictionHighCount:
		severity = SeverityHigh
	case count >= restrictionMediumCount:
		severity = SeverityMedium
	default:
		return nil
	}

	confidence := float64(count) / float64(restrictionHighCount)
	if confidence > 1 {
		confidence = 1
	}
	return []Signal{{
		ID:          xid.New().String(),
		Type:        TypeRestrictionCreep,
		Severity:    severity,
		Confidence:  confidence,
		Explanation: fmt.Sprintf("%d restriction-oriented recommendations in the window", count),
	}}
}

// restrictive reports whether a modification tightens rather than loosens.
func restrictive(r inference.Recommendation) bool {
	if r.ProposedRule.Effect == trace.DecisionDeny {
		return true
	}
	reason := strings.ToLower(r.Reason + " " + r.ProposedRule.Reason)
	return strings.Contains(reason, "restrict") || strings.Contains(reason, "deny")
}
