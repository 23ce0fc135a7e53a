package policy

import (
	"strings"

	"github.com/policyops/pgov/internal/trace"
)

// Action is the replayable core of an agent action: its type plus the target
// the rules match against (a path for write-file, a command line for
// run-command, a session label for start-session).
type Action struct {
	Type   string
	Target string
}

// ActionFromTrace reconstructs the action a trace recorded. The machine
// summary is the authoritative "<type>:<target>" form; the human summary is
// the fallback.
func ActionFromTrace(t trace.PolicyTrace) Action {
	if t.MachineSummary != "" {
		if idx := strings.Index(t.MachineSummary, ":"); idx >= 0 {
			return Action{Type: t.ActionType, Target: t.MachineSummary[idx+1:]}
		}
		return Action{Type: t.ActionType, Target: t.MachineSummary}
	}
	return Action{Type: t.ActionType, Target: t.Summary}
}

// Evaluation is the outcome of deciding one action against a document.
type Evaluation struct {
	Decision  trace.Decision
	RuleID    string
	Evaluated []trace.EvaluatedRule
}

// Evaluate decides an action against the document's rule set. Every rule is
// checked and recorded; among matches, the highest priority wins and ties
// break toward the more restrictive effect. No match falls through to the
// document default.
func Evaluate(doc *Document, action Action) Evaluation {
	ev := Evaluation{Decision: doc.Default()}
	bestPriority := 0
	matched := false

	for _, rule := range doc.Rules {
		hit := ruleMatches(rule, action)
		rec := trace.EvaluatedRule{
			RuleID:   rule.ID,
			Matched:  hit,
			Priority: rule.Priority,
			Effect:   rule.Effect,
		}
		if hit {
			rec.MatchReason = rule.Reason
		}
		ev.Evaluated = append(ev.Evaluated, rec)

		if !hit {
			continue
		}
		switch {
		case !matched,
			rule.Priority > bestPriority,
			rule.Priority == bestPriority && Strictness(rule.Effect) > Strictness(ev.Decision):
			ev.Decision = rule.Effect
			ev.RuleID = rule.ID
			bestPriority = rule.Priority
			matched = true
		}
	}

	return ev
}

// ruleMatches reports whether a rule applies to an action.
func ruleMatches(rule Rule, action Action) bool {
	if len(rule.Actions) > 0 && !containsString(rule.Actions, action.Type) {
		return false
	}
	if rule.Match.Empty() {
		return len(rule.Actions) > 0
	}

	for _, prefix := range rule.Match.PathPrefixes {
		if strings.HasPrefix(action.Target, prefix) {
			return true
		}
	}
	for _, prefix := range rule.Match.CommandPrefixes {
		if strings.HasPrefix(action.Target, prefix) {
			return true
		}
	}
	if len(rule.Match.Executables) > 0 {
		exe := firstField(action.Target)
		if exe != "" && containsString(rule.Match.Executables, exe) {
			return true
		}
	}
	return false
}

// Strictness orders decisions from most permissive (allow) to most
// restrictive (deny).
func Strictness(d trace.Decision) int {
	switch d {
	case trace.DecisionDeny:
		return 2
	case trace.DecisionReview:
		return 1
	default:
		return 0
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
