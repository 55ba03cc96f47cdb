package heredoc

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/cobaltsec/preflight/internal/pack"
)

// Bash bodies get a real shell parse instead of the generic call scanner:
// mvdan.cc/sh understands quoting, pipelines, and expansions, so a word
// carrying $VAR or $(...) is known to be dynamic rather than guessed.

type shellWord struct {
	text    string
	dynamic bool
}

type shellCall struct {
	words  []shellWord
	offset int
}

// parseShellCalls flattens every simple command in the body, walking
// through pipelines, lists, subshells, and compound statements.
func parseShellCalls(body string) ([]shellCall, error) {
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(body), "")
	if err != nil {
		return nil, err
	}
	var calls []shellCall
	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok {
			return true
		}
		sc := shellCall{offset: int(call.Pos().Offset())}
		for _, w := range call.Args {
			sc.words = append(sc.words, resolveWord(w))
		}
		if len(sc.words) > 0 {
			calls = append(calls, sc)
		}
		return true
	})
	return calls, nil
}

// resolveWord renders a word to text and reports whether any part expands
// at runtime.
func resolveWord(w *syntax.Word) shellWord {
	var b strings.Builder
	dynamic := wordParts(&b, w.Parts)
	return shellWord{text: b.String(), dynamic: dynamic}
}

func wordParts(b *strings.Builder, parts []syntax.WordPart) bool {
	printer := syntax.NewPrinter()
	dynamic := false
	for _, p := range parts {
		switch part := p.(type) {
		case *syntax.Lit:
			b.WriteString(part.Value)
		case *syntax.SglQuoted:
			b.WriteString(part.Value)
		case *syntax.DblQuoted:
			if wordParts(b, part.Parts) {
				dynamic = true
			}
		default:
			// Parameter expansion, command substitution, arithmetic:
			// keep the source text for display, mark the word dynamic.
			var raw strings.Builder
			printer.Print(&raw, p)
			b.WriteString(raw.String())
			dynamic = true
		}
	}
	return dynamic
}

// matchBash checks every simple command in a bash body for destructive
// shapes. Spans are relative to the body. A parse failure is returned to
// the caller as a malformed body.
func matchBash(body string) ([]pack.Match, error) {
	calls, err := parseShellCalls(body)
	if err != nil {
		return nil, err
	}
	ns := LangBash.Namespace()
	var out []pack.Match
	for _, c := range calls {
		if m, ok := matchShellCall(ns, c); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// matchShellCall recognizes one destructive simple command, applying path
// classification to the affected target.
func matchShellCall(ns string, c shellCall) (pack.Match, bool) {
	exe := c.words[0].text
	rest := c.words[1:]
	span := pack.Span{Start: c.offset, End: c.offset + len(exe)}

	switch {
	case exe == "rm":
		recursive, force := false, false
		var target *shellWord
		for i := range rest {
			w := &rest[i]
			if strings.HasPrefix(w.text, "-") && !w.dynamic {
				if strings.HasPrefix(w.text, "--") {
					recursive = recursive || w.text == "--recursive"
					force = force || w.text == "--force"
				} else {
					recursive = recursive || strings.ContainsAny(w.text, "rR")
					force = force || strings.Contains(w.text, "f")
				}
				continue
			}
			if target == nil {
				target = w
			}
		}
		if !recursive || !force {
			return pack.Match{}, false
		}
		m := pack.Match{
			RuleID:     ns + ".rm_rf",
			PackID:     ns,
			Severity:   pack.SeverityHigh,
			Reason:     "rm -rf force-deletes a directory tree",
			Suggestion: "Move the tree aside or delete a narrower path",
			Span:       span,
		}
		if target != nil {
			// Classification first: $HOME is catastrophic even though it
			// expands at runtime.
			switch pack.ClassifyTarget(target.text) {
			case pack.TargetCatastrophic:
				m.RuleID += ".catastrophic"
				m.Severity = pack.SeverityCritical
			case pack.TargetDynamic:
				m.Dynamic = true
			default:
				m.Dynamic = target.dynamic
			}
		}
		return m, true

	case exe == "git" && hasWord(rest, "reset") && hasWord(rest, "--hard"):
		return pack.Match{
			RuleID:     ns + ".git_reset_hard",
			PackID:     ns,
			Severity:   pack.SeverityHigh,
			Reason:     "git reset --hard discards uncommitted changes",
			Suggestion: "Stash or commit before resetting",
			Span:       span,
			Dynamic:    anyDynamic(rest),
		}, true

	case exe == "git" && len(rest) > 0 && rest[0].text == "clean" && hasForceFlag(rest[1:]):
		if hasWord(rest, "-n") || hasWord(rest, "--dry-run") {
			return pack.Match{}, false
		}
		return pack.Match{
			RuleID:   ns + ".git_clean",
			PackID:   ns,
			Severity: pack.SeverityHigh,
			Reason:   "git clean -f deletes untracked files",
			Span:     span,
			Dynamic:  anyDynamic(rest),
		}, true

	case exe == "dd":
		for _, w := range rest {
			if strings.HasPrefix(w.text, "of=/dev/") {
				return pack.Match{
					RuleID:   ns + ".dd_block_device",
					PackID:   ns,
					Severity: pack.SeverityCritical,
					Reason:   "dd writing to a block device destroys its contents",
					Span:     span,
				}, true
			}
		}

	case strings.HasPrefix(exe, "mkfs"):
		return pack.Match{
			RuleID:   ns + ".mkfs",
			PackID:   ns,
			Severity: pack.SeverityCritical,
			Reason:   "mkfs formats a device, destroying its contents",
			Span:     span,
		}, true
	}
	return pack.Match{}, false
}

func hasWord(words []shellWord, s string) bool {
	for _, w := range words {
		if w.text == s {
			return true
		}
	}
	return false
}

func hasForceFlag(words []shellWord) bool {
	for _, w := range words {
		if w.text == "--force" {
			return true
		}
		if strings.HasPrefix(w.text, "-") && !strings.HasPrefix(w.text, "--") && strings.Contains(w.text, "f") {
			return true
		}
	}
	return false
}

func anyDynamic(words []shellWord) bool {
	for _, w := range words {
		if w.dynamic {
			return true
		}
	}
	return false
}

// AnalyzeShellPayload inspects a shell command line carried as a string
// argument (os.system("..."), execSync(`...`)) and reports the destructive
// shape found, if any, together with the target classification. The kind is
// appended to the host rule id.
func AnalyzeShellPayload(text string) (kind string, class pack.TargetClass, ok bool) {
	calls, err := parseShellCalls(text)
	if err != nil {
		// Unparseable payloads still get a lexical look: a payload
		// mentioning rm -rf should not vanish behind a syntax error.
		return lexicalPayload(text)
	}
	for _, c := range calls {
		m, hit := matchShellCall("x", c)
		if !hit {
			continue
		}
		switch {
		case strings.Contains(m.RuleID, ".rm_rf"):
			kind = "rm_rf"
		case strings.Contains(m.RuleID, ".git_reset_hard"):
			kind = "git_reset_hard"
		case strings.Contains(m.RuleID, ".git_clean"):
			kind = "git_clean"
		case strings.Contains(m.RuleID, ".dd_block_device"):
			kind = "dd_block_device"
		case strings.Contains(m.RuleID, ".mkfs"):
			kind = "mkfs"
		default:
			continue
		}
		class = pack.TargetLiteral
		if m.Dynamic {
			class = pack.TargetDynamic
		} else if m.Severity == pack.SeverityCritical {
			class = pack.TargetCatastrophic
		}
		return kind, class, true
	}
	return "", pack.TargetLiteral, false
}

func lexicalPayload(text string) (string, pack.TargetClass, bool) {
	fields := strings.Fields(text)
	for i, f := range fields {
		if f != "rm" {
			continue
		}
		recursive, force := false, false
		target := ""
		for _, w := range fields[i+1:] {
			if strings.HasPrefix(w, "-") {
				if strings.HasPrefix(w, "--") {
					recursive = recursive || w == "--recursive"
					force = force || w == "--force"
				} else {
					recursive = recursive || strings.ContainsAny(w, "rR")
					force = force || strings.Contains(w, "f")
				}
				continue
			}
			if target == "" {
				target = w
			}
		}
		if recursive && force {
			switch pack.ClassifyTarget(target) {
			case pack.TargetCatastrophic:
				return "rm_rf", pack.TargetCatastrophic, true
			case pack.TargetDynamic:
				return "rm_rf", pack.TargetDynamic, true
			default:
				return "rm_rf", pack.TargetLiteral, true
			}
		}
	}
	return "", pack.TargetLiteral, false
}
