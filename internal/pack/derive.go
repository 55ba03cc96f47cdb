package pack

import "strings"

// TargetClass is the classification of a captured argument literal.
type TargetClass int

const (
	// TargetLiteral is a statically known, non-catastrophic argument.
	TargetLiteral TargetClass = iota
	// TargetCatastrophic is a literal whose destruction is maximal and
	// irreversible (filesystem root, home directory, whole-disk device).
	TargetCatastrophic
	// TargetDynamic is an argument built at runtime (variables, command
	// substitution); its value cannot be resolved statically.
	TargetDynamic
)

// catastrophicPaths are literal targets judged to cause maximal damage.
// Trailing slashes are trimmed before lookup; "/" itself is special-cased.
var catastrophicPaths = map[string]bool{
	"/*":    true,
	"~":     true,
	"~/":    true,
	"$HOME": true,
	"/etc":  true,
	"/usr":  true,
	"/var":  true,
	"/boot": true,
	"/bin":  true,
	"/sbin": true,
	"/lib":  true,
	"/home": true,
	"/root": true,
}

// ClassifyTarget decides whether an argument literal is catastrophic,
// dynamic, or an ordinary literal. Deterministic: identical input always
// yields the identical class.
func ClassifyTarget(arg string) TargetClass {
	arg = strings.TrimSpace(arg)
	arg = trimQuotes(arg)
	if arg == "" {
		return TargetLiteral
	}
	// $HOME is treated as a known catastrophic alias even though it is a
	// variable; any other expansion is dynamic.
	if arg != "$HOME" && strings.ContainsAny(arg, "$`") {
		return TargetDynamic
	}
	if arg == "/" {
		return TargetCatastrophic
	}
	trimmed := strings.TrimRight(arg, "/")
	if trimmed == "" {
		// "//", "///" etc. still name the root
		return TargetCatastrophic
	}
	if catastrophicPaths[arg] || catastrophicPaths[trimmed] {
		return TargetCatastrophic
	}
	return TargetLiteral
}

// deriveRuleID applies the path derivation policy to a base rule id and
// severity. Catastrophic targets append ".catastrophic" and escalate to
// Critical; dynamic targets keep the base id but flag the match for the
// Warn downgrade; plain literals pass through unchanged.
func deriveRuleID(base string, sev Severity, class TargetClass) (string, Severity, bool) {
	switch class {
	case TargetCatastrophic:
		return base + ".catastrophic", SeverityCritical, false
	case TargetDynamic:
		return base, sev, true
	default:
		return base, sev, false
	}
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
