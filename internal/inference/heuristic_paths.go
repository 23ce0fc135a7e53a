package inference

import (
	"fmt"
	"path"
	"strings"

	"github.com/rs/xid"

	"github.com/policyops/pgov/internal/policy"
	"github.com/policyops/pgov/internal/trace"
)

// writePathTemplates groups write-file traces by the parent directory of the
// written path and proposes a directory-scoped rule carrying the majority
// historical decision for that directory.
func writePathTemplates(traces []trace.PolicyTrace, total int) []Recommendation {
	groups := make(map[string][]trace.PolicyTrace)
	for _, t := range traces {
		if t.ActionType != trace.ActionWriteFile {
			continue
		}
		p := extractPath(t)
		if p == "" {
			continue
		}
		dir := path.Dir(p)
		if dir == "." {
			continue
		}
		groups[dir] = append(groups[dir], t)
	}

	var recs []Recommendation
	for _, dir := range sortedKeys(groups) {
		group := groups[dir]
		if len(group) < minPathOccurrences {
			continue
		}

		decision := majorityDecision(group)
		prefix := dir
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		recs = append(recs, Recommendation{
			ID:   xid.New().String(),
			Type: TypeAddRule,
			Reason: fmt.Sprintf("%d file writes under %s historically resolved %s; scope a rule to the directory",
				len(group), dir, decision),
			AffectedActions: []string{trace.ActionWriteFile},
			TraceIDs:        actionIDs(group),
			ProposedRule: policy.Rule{
				ID:      string(decision) + "-writes-" + xid.New().String(),
				Effect:  decision,
				Actions: []string{trace.ActionWriteFile},
				Match:   policy.Match{PathPrefixes: []string{prefix}},
				Reason:  "templated from historical write-file decisions under " + dir,
			},
			Confidence: Confidence(len(group), total),
		})
	}
	return recs
}

// extractPath pulls the written file path out of a write-file trace. The
// machine summary ("write-file:<path>") is authoritative; otherwise the last
// slash-bearing token of the human summary is taken.
func extractPath(t trace.PolicyTrace) string {
	if t.MachineSummary != "" {
		if idx := strings.Index(t.MachineSummary, ":"); idx >= 0 {
			return t.MachineSummary[idx+1:]
		}
	}
	fields := strings.Fields(t.Summary)
	for i := len(fields) - 1; i >= 0; i-- {
		if strings.Contains(fields[i], "/") {
			return fields[i]
		}
	}
	return ""
}
