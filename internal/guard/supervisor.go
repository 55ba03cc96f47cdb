package guard

import (
	"errors"
	"fmt"
	"time"

	"github.com/cobaltsec/preflight/internal/heredoc"
	"github.com/cobaltsec/preflight/internal/pack"
)

// The script tiers parse attacker-influenced text, so they run under a
// supervisor: a wall-clock budget, panic containment, and diagnostics
// instead of errors. A guard that crashes or hangs the agent's hook is a
// worse outcome than one missed match, so every failure here degrades to
// "no script matches" plus a Diagnostic.

type scriptResult struct {
	matches []pack.Match
	errs    []error
}

// runScriptTier runs trigger detection, extraction, and script matching
// with the given budget. The returned diagnostics cover timeouts, panics,
// and the recoverable per-script failures.
func runScriptTier(command string, limits heredoc.Limits, budget time.Duration) ([]pack.Match, []Diagnostic) {
	// Tier 1 is cheap and pure, run it inline; no trigger means no budget
	// spent on the heavy tiers.
	if _, ok := heredoc.DetectTrigger(command); !ok {
		return nil, nil
	}

	// The caller may have spent the whole evaluation budget already.
	if budget <= 0 {
		return nil, []Diagnostic{{
			Stage:  "script",
			Reason: "time budget exhausted before script analysis",
		}}
	}

	ch := make(chan scriptResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- scriptResult{errs: []error{fmt.Errorf("panic: %v", r)}}
			}
		}()
		ms, errs := heredoc.Analyze(command, limits)
		ch <- scriptResult{matches: ms, errs: errs}
	}()

	select {
	case res := <-ch:
		return res.matches, diagnose(res.errs)
	case <-time.After(budget):
		return nil, []Diagnostic{{
			Stage:  "script",
			Reason: fmt.Sprintf("budget of %s exceeded", budget),
		}}
	}
}

// diagnose maps recoverable pipeline errors to staged diagnostics.
func diagnose(errs []error) []Diagnostic {
	var out []Diagnostic
	for _, err := range errs {
		var ee *heredoc.ExtractError
		var me *heredoc.MatchError
		switch {
		case errors.As(err, &ee):
			out = append(out, Diagnostic{Stage: "extract", Reason: ee.Error()})
		case errors.As(err, &me):
			out = append(out, Diagnostic{Stage: "match", Reason: me.Error()})
		default:
			out = append(out, Diagnostic{Stage: "script", Reason: err.Error()})
		}
	}
	return out
}
