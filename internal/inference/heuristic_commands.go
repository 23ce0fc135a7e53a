package inference

import (
	"fmt"
	"strings"

	"github.com/rs/xid"
	"mvdan.cc/sh/v3/syntax"

	"github.com/policyops/pgov/internal/policy"
	"github.com/policyops/pgov/internal/trace"
)

// commandTemplates groups run-command traces by their executable and
// proposes an executable-scoped rule carrying the majority historical
// decision. The executable comes from the parsed shell AST, not the raw
// string, so "sudo rm" and "rm -rf" group the way a policy author expects.
func commandTemplates(traces []trace.PolicyTrace, total int) []Recommendation {
	groups := make(map[string][]trace.PolicyTrace)
	for _, t := range traces {
		if t.ActionType != trace.ActionRunCommand {
			continue
		}
		exe := Executable(policy.ActionFromTrace(t).Target)
		if exe == "" {
			continue
		}
		groups[exe] = append(groups[exe], t)
	}

	var recs []Recommendation
	for _, exe := range sortedKeys(groups) {
		group := groups[exe]
		if len(group) < minCommandOccurrences {
			continue
		}

		decision := majorityDecision(group)
		recs = append(recs, Recommendation{
			ID:   xid.New().String(),
			Type: TypeAddRule,
			Reason: fmt.Sprintf("%d commands running %s historically resolved %s; scope a rule to the executable",
				len(group), exe, decision),
			AffectedActions: []string{trace.ActionRunCommand},
			TraceIDs:        actionIDs(group),
			ProposedRule: policy.Rule{
				ID:      string(decision) + "-" + exe + "-" + xid.New().String(),
				Effect:  decision,
				Actions: []string{trace.ActionRunCommand},
				Match:   policy.Match{Executables: []string{exe}},
				Reason:  "templated from historical run-command decisions for " + exe,
			},
			Confidence: Confidence(len(group), total),
		})
	}
	return recs
}

// Executable extracts the first executable name from a shell command line by
// parsing it as bash. sudo/env wrappers are unwrapped one level. Parse
// failures fall back to the first whitespace field.
func Executable(command string) string {
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return firstField(command)
	}

	for _, stmt := range file.Stmts {
		if call, ok := stmt.Cmd.(*syntax.CallExpr); ok {
			args := literalArgs(call)
			return unwrapElevation(args)
		}
	}
	return firstField(command)
}

// literalArgs flattens a call's words into their literal string forms,
// skipping words with expansions.
func literalArgs(call *syntax.CallExpr) []string {
	var args []string
	for _, word := range call.Args {
		if lit := word.Lit(); lit != "" {
			args = append(args, lit)
		}
	}
	return args
}

// unwrapElevation skips sudo/env prefixes (and their flags) to reach the
// actual executable.
func unwrapElevation(args []string) string {
	skipping := false
	for i, a := range args {
		if i == 0 || skipping {
			if a == "sudo" || a == "env" {
				skipping = true
				continue
			}
			if skipping && (strings.HasPrefix(a, "-") || strings.Contains(a, "=")) {
				continue
			}
		}
		return a
	}
	return ""
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
