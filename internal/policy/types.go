// Package policy models policy documents (rule sets) and provides the rule
// evaluator used for counterfactual replay. Trace production against the live
// policy happens outside this repo; the evaluator here exists so recorded
// actions can be re-decided under an alternate rule set.
package policy

import "github.com/policyops/pgov/internal/trace"

// Document is one policy: an ordered rule set plus a default decision.
type Document struct {
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// ProjectID names the project the policy governs, when known.
	ProjectID string `json:"projectId,omitempty" yaml:"project_id,omitempty"`

	// DefaultDecision applies when no rule matches. Empty means allow.
	DefaultDecision trace.Decision `json:"defaultDecision,omitempty" yaml:"default_decision,omitempty"`

	Rules []Rule `json:"rules" yaml:"rules"`
}

// Rule is a single policy rule. Higher Priority wins; on equal priority the
// more restrictive effect wins (deny > review > allow).
type Rule struct {
	ID       string         `json:"id" yaml:"id"`
	Effect   trace.Decision `json:"effect" yaml:"effect"`
	Priority int            `json:"priority,omitempty" yaml:"priority,omitempty"`

	// Actions restricts the rule to the listed action types. Empty matches all.
	Actions []string `json:"actions,omitempty" yaml:"actions,omitempty"`

	Match  Match  `json:"match,omitempty" yaml:"match,omitempty"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Match holds the target predicates of a rule. A rule matches an action when
// every non-empty predicate group has at least one hit; an empty Match matches
// any target.
type Match struct {
	// PathPrefixes match write-file targets by directory prefix.
	PathPrefixes []string `json:"pathPrefixes,omitempty" yaml:"path_prefixes,omitempty"`

	// CommandPrefixes match run-command targets by literal prefix.
	CommandPrefixes []string `json:"commandPrefixes,omitempty" yaml:"command_prefixes,omitempty"`

	// Executables match run-command targets by their first token.
	Executables []string `json:"executables,omitempty" yaml:"executables,omitempty"`
}

// Empty reports whether the match carries no predicates at all.
func (m Match) Empty() bool {
	return len(m.PathPrefixes) == 0 && len(m.CommandPrefixes) == 0 && len(m.Executables) == 0
}

// Default returns the document's default decision, allow when unset.
func (d *Document) Default() trace.Decision {
	if d.DefaultDecision.Valid() {
		return d.DefaultDecision
	}
	return trace.DecisionAllow
}

// RuleIDs returns the set of rule IDs in the document.
func (d *Document) RuleIDs() map[string]bool {
	ids := make(map[string]bool, len(d.Rules))
	for _, r := range d.Rules {
		ids[r.ID] = true
	}
	return ids
}
