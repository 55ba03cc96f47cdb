package heredoc

import (
	"regexp"
	"strings"

	"github.com/cobaltsec/preflight/internal/pack"
)

// Perl has no call-tree scanner worth the name (sigils, paren-less builtins,
// quote-like operators), so its rule table is targeted regexes. Each rule
// captures the first argument for derivation.

type perlRule struct {
	Name       string
	Re         *regexp.Regexp
	Severity   pack.Severity
	Reason     string
	Suggestion string
	Derive     pack.DeriveKind
}

var perlRules = []perlRule{
	{
		Name:       "rmtree",
		Re:         regexp.MustCompile(`\b(?:File::Path::)?(?:rmtree|remove_tree)\s*\(?\s*('[^']*'|"[^"]*"|\$\w+)`),
		Severity:   pack.SeverityHigh,
		Reason:     "File::Path rmtree recursively deletes a directory tree",
		Suggestion: "Move the tree aside or delete a narrower path",
		Derive:     pack.DerivePath,
	},
	{
		Name:     "unlink",
		Re:       regexp.MustCompile(`\bunlink\s*\(?\s*('[^']*'|"[^"]*"|\$\w+|<[^>]*>)`),
		Severity: pack.SeverityMedium,
		Reason:   "unlink deletes files without confirmation",
		Derive:   pack.DerivePath,
	},
	{
		Name:       "system",
		Re:         regexp.MustCompile(`\bsystem\s*\(?\s*('[^']*'|"[^"]*"|\$\w+)`),
		Severity:   pack.SeverityHigh,
		Reason:     "system runs an arbitrary shell command",
		Suggestion: "Run the command directly so it can be reviewed",
		Derive:     pack.DeriveShellPayload,
	},
	{
		Name:     "exec",
		Re:       regexp.MustCompile(`\bexec\s*\(?\s*('[^']*'|"[^"]*"|\$\w+)`),
		Severity: pack.SeverityHigh,
		Reason:   "exec replaces the process with an arbitrary command",
		Derive:   pack.DeriveShellPayload,
	},
	{
		Name:     "backticks",
		Re:       regexp.MustCompile("`([^`]+)`|\\bqx\\s*[({\\[]([^)}\\]]+)[)}\\]]"),
		Severity: pack.SeverityHigh,
		Reason:   "backticks run an arbitrary shell command",
		Derive:   pack.DeriveShellPayload,
	},
}

// matchPerl runs the perl rule table over the body. Spans are relative to
// the body.
func matchPerl(body string) []pack.Match {
	ns := LangPerl.Namespace()
	var out []pack.Match
	for i := range perlRules {
		r := &perlRules[i]
		for _, loc := range r.Re.FindAllStringSubmatchIndex(body, -1) {
			m := pack.Match{
				RuleID:     ns + "." + r.Name,
				PackID:     ns,
				Severity:   r.Severity,
				Reason:     r.Reason,
				Suggestion: r.Suggestion,
				Span:       pack.Span{Start: loc[0], End: loc[1]},
			}
			if arg, ok := firstGroup(body, loc); ok {
				derivePerl(&m, r, arg)
			}
			out = append(out, m)
		}
	}
	return out
}

// firstGroup returns the first capture group that participated in the match.
func firstGroup(s string, loc []int) (string, bool) {
	for g := 1; g*2 < len(loc); g++ {
		if loc[g*2] >= 0 {
			return s[loc[g*2]:loc[g*2+1]], true
		}
	}
	return "", false
}

func derivePerl(m *pack.Match, r *perlRule, arg string) {
	if strings.HasPrefix(arg, "$") || strings.HasPrefix(arg, "@") {
		m.Dynamic = true
		return
	}
	// Interpolating double quotes make the argument dynamic.
	if strings.HasPrefix(arg, `"`) && strings.ContainsAny(arg, "$@") {
		m.Dynamic = true
		return
	}
	lit := stripPerlQuotes(arg)
	switch r.Derive {
	case pack.DerivePath:
		if pack.ClassifyTarget(lit) == pack.TargetCatastrophic {
			m.RuleID += ".catastrophic"
			m.Severity = pack.SeverityCritical
		}
	case pack.DeriveShellPayload:
		kind, class, hit := AnalyzeShellPayload(lit)
		if !hit {
			return
		}
		m.RuleID += "." + kind
		switch class {
		case pack.TargetCatastrophic:
			m.Severity = pack.SeverityCritical
		case pack.TargetDynamic:
			m.Dynamic = true
		}
	}
}

func stripPerlQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"' || s[0] == '<') {
		return strings.Trim(s, `'"<>`)
	}
	return s
}
