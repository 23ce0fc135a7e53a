// Package counterfactual replays recorded traces against an alternate policy
// and quantifies how the outcomes would change. A "what if" run never touches
// the live policy.
package counterfactual

import (
	"errors"
	"fmt"

	"github.com/policyops/pgov/internal/policy"
	"github.com/policyops/pgov/internal/trace"
)

// ErrNoTraces is returned when there is no history to replay.
var ErrNoTraces = errors.New("counterfactual: at least one trace is required for simulation")

// ErrNoAlternate is returned when the alternate policy is missing.
var ErrNoAlternate = errors.New("counterfactual: alternate policy is required")

// Input is one simulation request.
type Input struct {
	ProjectID string `json:"projectId"`

	// Original is the policy the traces were recorded under. Optional; it
	// only informs the narrative.
	Original *policy.Document `json:"original,omitempty"`

	// Alternate is the hypothetical policy the traces are replayed against.
	Alternate *policy.Document `json:"alternate"`

	Traces []trace.PolicyTrace `json:"traces"`
}

// Divergence records one trace whose replayed decision differs from the
// recorded one.
type Divergence struct {
	ActionID string         `json:"actionId"`
	Action   string         `json:"action"`
	Recorded trace.Decision `json:"recorded"`
	Replayed trace.Decision `json:"replayed"`

	// RuleID is the alternate rule that produced the replayed decision,
	// empty when the document default applied.
	RuleID string `json:"ruleId,omitempty"`
}

// Summary holds the tallies over all replayed traces.
type Summary struct {
	Traces int `json:"traces"`

	// Contradictions is the number of traces whose decision flips under
	// the alternate policy.
	Contradictions int `json:"contradictions"`

	// StrongerCount counts flips toward a more restrictive decision,
	// WeakerCount flips toward a more permissive one.
	StrongerCount int `json:"strongerCount"`
	WeakerCount   int `json:"weakerCount"`
}

// Result is the simulation artifact.
type Result struct {
	ProjectID   string       `json:"projectId"`
	Summary     Summary      `json:"summary"`
	Divergences []Divergence `json:"divergences"`
	Narrative   string       `json:"narrative"`
}

// Simulate replays every trace against the alternate policy.
func Simulate(in Input) (*Result, error) {
	if in.Alternate == nil {
		return nil, ErrNoAlternate
	}
	if len(in.Traces) == 0 {
		return nil, ErrNoTraces
	}

	res := &Result{
		ProjectID:   in.ProjectID,
		Divergences: []Divergence{},
	}
	res.Summary.Traces = len(in.Traces)

	for _, t := range in.Traces {
		action := policy.ActionFromTrace(t)
		ev := policy.Evaluate(in.Alternate, action)
		if ev.Decision == t.FinalDecision {
			continue
		}

		res.Summary.Contradictions++
		if policy.Strictness(ev.Decision) > policy.Strictness(t.FinalDecision) {
			res.Summary.StrongerCount++
		} else {
			res.Summary.WeakerCount++
		}
		res.Divergences = append(res.Divergences, Divergence{
			ActionID: t.ActionID,
			Action:   action.Type + ":" + action.Target,
			Recorded: t.FinalDecision,
			Replayed: ev.Decision,
			RuleID:   ev.RuleID,
		})
	}

	res.Narrative = narrative(res.Summary)
	return res, nil
}

func narrative(s Summary) string {
	if s.Contradictions == 0 {
		return fmt.Sprintf("Replayed %d trace(s): the alternate policy reproduces every recorded decision.", s.Traces)
	}
	return fmt.Sprintf(
		"Replayed %d trace(s): %d decision(s) flip under the alternate policy (%d stricter, %d more permissive).",
		s.Traces, s.Contradictions, s.StrongerCount, s.WeakerCount)
}
