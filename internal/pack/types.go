package pack

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity ranks how much damage a matched command can do. The decision
// engine maps Critical/High to Deny and Medium/Low to Warn.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "low"
	}
}

// ParseSeverity converts a config/YAML string into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical, nil
	case "high":
		return SeverityHigh, nil
	case "medium":
		return SeverityMedium, nil
	case "low":
		return SeverityLow, nil
	}
	return SeverityLow, fmt.Errorf("unknown severity %q", s)
}

// DeriveKind selects how a captured argument refines a base rule.
type DeriveKind int

const (
	// DerivePath classifies a captured filesystem target. A catastrophic
	// target appends ".catastrophic" and escalates to Critical.
	DerivePath DeriveKind = iota
	// DeriveShellPayload classifies a captured string as embedded shell and
	// appends the detected operation kind (".rm_rf", ".git_reset_hard", ...).
	DeriveShellPayload
)

// DeriveRule is authored data on a Pattern: which capture group holds the
// argument and how to classify it. Derivation is a pure function of the
// base rule id and the captured literal.
type DeriveRule struct {
	Kind    DeriveKind
	Capture int // regex capture group index holding the argument
}

// SafePattern encodes an explicitly benign usage. A safe match suppresses
// destructive matches of the same pack on overlapping spans.
type SafePattern struct {
	ID          string
	Regex       *regexp.Regexp
	Description string
}

// Pattern is one destructive detection rule. Name is the operation part of
// the rule id; the full id is "<pack id>.<name>".
type Pattern struct {
	Name       string
	Regex      *regexp.Regexp
	Severity   Severity
	Reason     string // shown to the agent, keep under 100 chars
	Suggestion string
	Derive     *DeriveRule
}

// Pack bundles the safe and destructive patterns for one tool or category.
// Packs are immutable once registered.
type Pack struct {
	ID          string
	Name        string
	Description string
	// Keywords gate pattern evaluation: if none of these substrings occur
	// in the command, no destructive pattern of this pack can match.
	Keywords            []string
	SafePatterns        []SafePattern
	DestructivePatterns []Pattern
}

// RuleID returns the stable rule id for a pattern of this pack.
func (p *Pack) RuleID(name string) string {
	return p.ID + "." + name
}

// Span is a half-open byte range [Start, End) in the command text.
type Span struct {
	Start int
	End   int
}

func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Match is a single rule hit against a command or embedded script.
type Match struct {
	RuleID     string // possibly derived ("filesystem.rm_rf.catastrophic")
	PackID     string // pack id, or "heredoc.<lang>" for script-tier matches
	Severity   Severity
	Reason     string
	Suggestion string
	Span       Span
	// Dynamic marks a match whose argument is not statically resolvable
	// (variable, command substitution). The decision engine downgrades
	// dynamic matches to Warn regardless of severity.
	Dynamic bool
}

func safePattern(id, expr, description string) SafePattern {
	return SafePattern{ID: id, Regex: regexp.MustCompile(expr), Description: description}
}

func mustRegex(expr string) *regexp.Regexp {
	return regexp.MustCompile(expr)
}
