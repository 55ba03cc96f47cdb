package heredoc

import (
	"regexp"
	"strings"

	"github.com/cobaltsec/preflight/internal/pack"
)

// TriggerKind identifies which inline-script syntax was spotted.
type TriggerKind int

const (
	TriggerHeredoc TriggerKind = iota
	TriggerHereString
	TriggerInlineFlag
	TriggerPipedScript
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerHeredoc:
		return "heredoc"
	case TriggerHereString:
		return "here-string"
	case TriggerInlineFlag:
		return "inline-flag"
	default:
		return "piped-script"
	}
}

// Trigger is a tier-1 hit: some syntax that embeds a script in the command.
// Marker holds the heredoc delimiter, the inline flag, or the piped
// interpreter name, depending on Kind.
type Trigger struct {
	Kind   TriggerKind
	Marker string
	Span   pack.Span
}

// The tier-1 gate is purely lexical: precompiled regexes over the raw
// command, no shell parsing. Both regexes are built from the language
// table so registering a language extends the gate automatically.
var (
	heredocRe    = regexp.MustCompile(`<<(-?)\s*(["']?)([A-Za-z_][A-Za-z0-9_.]*)(["']?)`)
	hereStringRe = regexp.MustCompile(`<<<\s*('[^']*'|"[^"]*"|\S+)`)
	inlineFlagRe *regexp.Regexp
	pipedRe      *regexp.Regexp
)

func init() {
	var interps, flags []string
	seenFlag := map[string]bool{}
	for _, d := range Descriptors() {
		interps = append(interps, d.Interpreters...)
		for _, f := range d.InlineFlags {
			if !seenFlag[f] {
				seenFlag[f] = true
				flags = append(flags, regexp.QuoteMeta(f))
			}
		}
	}
	alt := strings.Join(interps, "|")
	inlineFlagRe = regexp.MustCompile(
		`(?:^|[\s|;&(])(` + alt + `)(?:\s+-[^\s]+)*\s+(` + strings.Join(flags, "|") + `)(?:\s|$)`)
	pipedRe = regexp.MustCompile(`\|\s*(` + alt + `)\b`)
}

// DetectTrigger is the principal cost-avoidance gate: it reports the first
// inline-script syntax found, or ok=false when the command embeds nothing.
// Nothing downstream of tier 1 runs without a trigger.
func DetectTrigger(text string) (Trigger, bool) {
	ts := MatchedTriggers(text)
	if len(ts) == 0 {
		return Trigger{}, false
	}
	return ts[0], true
}

// MatchedTriggers reports every trigger in the command, in the order the
// kinds are checked: here-strings before heredocs (<<< would otherwise
// match <<), then inline flags, then piped scripts.
func MatchedTriggers(text string) []Trigger {
	var out []Trigger

	for _, loc := range hereStringRe.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, Trigger{
			Kind:   TriggerHereString,
			Marker: text[loc[2]:loc[3]],
			Span:   pack.Span{Start: loc[0], End: loc[1]},
		})
	}
	for _, loc := range heredocRe.FindAllStringSubmatchIndex(text, -1) {
		// Skip the "<<" inside a "<<<" already reported above.
		if loc[0] > 0 && text[loc[0]-1] == '<' {
			continue
		}
		out = append(out, Trigger{
			Kind:   TriggerHeredoc,
			Marker: text[loc[6]:loc[7]],
			Span:   pack.Span{Start: loc[0], End: loc[1]},
		})
	}
	if loc := inlineFlagRe.FindStringSubmatchIndex(text); loc != nil {
		out = append(out, Trigger{
			Kind:   TriggerInlineFlag,
			Marker: text[loc[4]:loc[5]],
			Span:   pack.Span{Start: loc[0], End: loc[1]},
		})
	}
	if loc := pipedRe.FindStringSubmatchIndex(text); loc != nil {
		out = append(out, Trigger{
			Kind:   TriggerPipedScript,
			Marker: text[loc[2]:loc[3]],
			Span:   pack.Span{Start: loc[0], End: loc[1]},
		})
	}
	return out
}
