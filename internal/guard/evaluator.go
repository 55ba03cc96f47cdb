package guard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cobaltsec/preflight/internal/pack"
)

// Evaluator turns a raw command and an agent identity into a Decision. It
// is safe for concurrent use; all state is read-only after construction.
type Evaluator struct {
	registry  *pack.Registry
	cfg       *Config
	allowlist *Allowlist
}

// NewEvaluator wires the registry, config, and the config's allowlist.
// Configuration problems surface here, at startup.
func NewEvaluator(registry *pack.Registry, cfg *Config) (*Evaluator, error) {
	al, err := cfg.BuildAllowlist()
	if err != nil {
		return nil, err
	}
	return &Evaluator{registry: registry, cfg: cfg, allowlist: al}, nil
}

// Evaluate is total: it always returns a Decision, never an error. Every
// internal failure degrades to Allow with a diagnostic attached.
func (e *Evaluator) Evaluate(command, agentID string) (dec Decision) {
	start := time.Now()
	deadline := start.Add(e.cfg.TotalBudget())
	defer func() {
		if r := recover(); r != nil {
			dec = Decision{
				Action:      ActionAllow,
				Command:     command,
				Agent:       agentID,
				Diagnostics: []Diagnostic{{Stage: "evaluate", Reason: fmt.Sprintf("panic: %v", r)}},
			}
		}
		dec.Elapsed = time.Since(start)
	}()

	profile := e.cfg.Profile(agentID)
	matches, diags := e.collect(command, profile, deadline)

	dec = Decision{
		Action:      ActionAllow,
		Command:     command,
		Agent:       agentID,
		Diagnostics: diags,
	}
	if len(matches) == 0 {
		return dec
	}

	// Most severe first; dynamic matches lose ties so a firm match governs.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Severity != matches[j].Severity {
			return matches[i].Severity > matches[j].Severity
		}
		return !matches[i].Dynamic && matches[j].Dynamic
	})
	dec.Matches = matches

	best := matches[0]
	dec.RuleID = best.RuleID
	dec.PackID = best.PackID
	dec.Severity = best.Severity
	dec.Reason = best.Reason
	dec.Suggestion = best.Suggestion
	dec.Dynamic = best.Dynamic

	if !profile.DisabledAllowlist {
		if entry, scope, ok := e.allowlist.Lookup(best.RuleID, command, agentID); ok {
			dec.Action = ActionAllow
			dec.Allowlisted = true
			dec.AllowlistScope = scope.String()
			if entry.Note != "" {
				dec.Reason = entry.Note
			}
			return dec
		}
	}

	dec.Action = e.action(best, profile.trust())
	return dec
}

// Explain returns every match for the command without allowlist or trust
// adjustment, for the --explain surface.
func (e *Evaluator) Explain(command, agentID string) []pack.Match {
	profile := e.cfg.Profile(agentID)
	matches, _ := e.collect(command, profile, time.Now().Add(e.cfg.TotalBudget()))
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Severity > matches[j].Severity
	})
	return matches
}

// collect pools the pack-tier and script-tier matches, dropping disabled
// packs for this agent. The deadline bounds the whole evaluation: the
// script tiers only get whatever is left of it, capped by the script
// budget.
func (e *Evaluator) collect(command string, profile AgentProfile, deadline time.Time) ([]pack.Match, []Diagnostic) {
	disabled := map[string]bool{}
	for _, id := range e.cfg.DisabledPacks {
		disabled[id] = true
	}
	for _, id := range profile.DisabledPacks {
		disabled[id] = true
	}
	for _, id := range profile.ExtraPacks {
		delete(disabled, id)
	}

	var matches []pack.Match
	for _, m := range e.registry.MatchCommand(command) {
		if !disabled[m.PackID] {
			matches = append(matches, m)
		}
	}

	budget := e.cfg.ScriptBudget()
	if remaining := time.Until(deadline); remaining < budget {
		budget = remaining
	}
	scriptMatches, diags := runScriptTier(command, e.cfg.ExtractLimits(), budget)
	for _, m := range scriptMatches {
		// Script-tier pack ids are namespaces like "heredoc.bash";
		// disabling "heredoc" disables them all.
		if disabled[m.PackID] || disabled[strings.SplitN(m.PackID, ".", 2)[0]] {
			continue
		}
		matches = append(matches, m)
	}
	return matches, diags
}

// action maps the governing match to a verdict. Severity at or above the
// fail-on threshold denies; below it warns. A dynamic argument softens a
// denial to a warning, since the destructive value is speculative. Trust
// then shifts the warn band: low trust denies on warnings, high trust
// allows them.
func (e *Evaluator) action(m pack.Match, trust TrustLevel) Action {
	act := ActionWarn
	if m.Severity >= e.cfg.FailOnSeverity() {
		act = ActionDeny
	}
	if m.Dynamic && act == ActionDeny {
		act = ActionWarn
	}
	switch trust {
	case TrustLow:
		if act == ActionWarn {
			act = ActionDeny
		}
	case TrustHigh:
		if act == ActionWarn && m.Severity < e.cfg.FailOnSeverity() && !m.Dynamic {
			act = ActionAllow
		}
	}
	return act
}
