package guard

import (
	"fmt"
	"strings"
)

// Scope orders allowlist layers from least to most specific. Lookup walks
// them most-specific first, so an agent entry beats a project entry, which
// beats user and system entries.
type Scope int

const (
	ScopeSystem Scope = iota
	ScopeUser
	ScopeProject
	ScopeAgent
)

func (s Scope) String() string {
	switch s {
	case ScopeAgent:
		return "agent"
	case ScopeProject:
		return "project"
	case ScopeUser:
		return "user"
	default:
		return "system"
	}
}

func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(s) {
	case "system":
		return ScopeSystem, nil
	case "user":
		return ScopeUser, nil
	case "project":
		return ScopeProject, nil
	case "agent":
		return ScopeAgent, nil
	}
	return ScopeSystem, fmt.Errorf("unknown allowlist scope %q", s)
}

// AllowEntry suppresses matches for one rule or one exact command. An
// entry listing agents applies to those agents only; an empty list applies
// to everyone in its scope.
type AllowEntry struct {
	// RuleID allowlists a rule ("git.git_reset_hard"). A trailing ".*"
	// allowlists a whole pack ("git.*").
	RuleID string `yaml:"rule"`
	// Command allowlists one exact command string.
	Command string   `yaml:"command"`
	Agents  []string `yaml:"agents"`
	Note    string   `yaml:"note"`
}

func (e AllowEntry) appliesTo(agentID string) bool {
	if len(e.Agents) == 0 {
		return true
	}
	for _, a := range e.Agents {
		if a == agentID {
			return true
		}
	}
	return false
}

func (e AllowEntry) covers(ruleID, command string) bool {
	if e.Command != "" && e.Command == strings.TrimSpace(command) {
		return true
	}
	if e.RuleID == "" {
		return false
	}
	if packID, ok := strings.CutSuffix(e.RuleID, ".*"); ok {
		return strings.HasPrefix(ruleID, packID+".")
	}
	if ruleID == e.RuleID {
		return true
	}
	// A rule entry covers its derived forms, except the catastrophic one:
	// that must be allowlisted by its full id or not at all.
	return strings.HasPrefix(ruleID, e.RuleID+".") && !strings.HasSuffix(ruleID, ".catastrophic")
}

// Allowlist is the merged, scoped entry set.
type Allowlist struct {
	entries map[Scope][]AllowEntry
}

func NewAllowlist() *Allowlist {
	return &Allowlist{entries: make(map[Scope][]AllowEntry)}
}

// Add appends an entry at the given scope.
func (a *Allowlist) Add(scope Scope, e AllowEntry) {
	a.entries[scope] = append(a.entries[scope], e)
}

// Lookup finds the most specific entry covering the rule or command for
// the agent.
func (a *Allowlist) Lookup(ruleID, command, agentID string) (AllowEntry, Scope, bool) {
	if a == nil {
		return AllowEntry{}, ScopeSystem, false
	}
	for scope := ScopeAgent; scope >= ScopeSystem; scope-- {
		for _, e := range a.entries[scope] {
			if e.appliesTo(agentID) && e.covers(ruleID, command) {
				return e, scope, true
			}
		}
	}
	return AllowEntry{}, ScopeSystem, false
}
