package review

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/xid"
	"golang.org/x/term"

	"github.com/policyops/pgov/internal/inference"
)

// IsInteractive reports whether stdin is a terminal, i.e. a human can answer
// prompts. Non-interactive invocations fall back to the heuristic reviewer.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Session prompts a human through a recommendation list. Input and output
// are injectable for tests; NewSession wires them to the terminal.
type Session struct {
	In       io.Reader
	Out      io.Writer
	Reviewer string
	Now      func() time.Time
}

// NewSession builds a terminal-backed review session for the named reviewer.
func NewSession(reviewer string) *Session {
	return &Session{In: os.Stdin, Out: os.Stderr, Reviewer: reviewer, Now: time.Now}
}

// Run asks for a verdict on each recommendation in order. Unrecognized
// answers re-prompt; EOF rejects the remaining recommendations.
func (s *Session) Run(recs []inference.Recommendation) *Result {
	res := &Result{Verdicts: []Verdict{}}
	reader := bufio.NewReader(s.In)

	for i, rec := range recs {
		fmt.Fprintf(s.Out, "\n[%d/%d] %s (confidence %.2f)\n", i+1, len(recs), rec.Type, rec.Confidence)
		fmt.Fprintf(s.Out, "  %s\n", rec.Reason)
		if rec.ProposedRule.ID != "" {
			fmt.Fprintf(s.Out, "  proposed rule: %s (%s)\n", rec.ProposedRule.ID, rec.ProposedRule.Effect)
		}

		verdict := s.ask(reader)
		res.Verdicts = append(res.Verdicts, Verdict{
			ID:               xid.New().String(),
			RecommendationID: rec.ID,
			Verdict:          verdict,
			Reviewer:         s.Reviewer,
			Confidence:       rec.Confidence,
			Timestamp:        s.Now(),
		})
	}

	res.Flagged = Flag(res.Verdicts)
	res.Narrative = narrative(res)
	return res
}

func (s *Session) ask(reader *bufio.Reader) string {
	for {
		fmt.Fprint(s.Out, "  [a]pprove / [r]eject / re[v]ise? ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintln(s.Out, "(end of input, rejecting)")
			return VerdictReject
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "a", "approve":
			return VerdictApprove
		case "r", "reject":
			return VerdictReject
		case "v", "revise":
			return VerdictRevise
		}
		fmt.Fprintln(s.Out, "  unrecognized answer")
	}
}
