package heredoc

import (
	"fmt"

	"github.com/cobaltsec/preflight/internal/pack"
)

// MatchErrorKind distinguishes recoverable tier-3 failures.
type MatchErrorKind int

const (
	// MatchParseFailed: the body claimed a language but would not parse.
	MatchParseFailed MatchErrorKind = iota
	// MatchUnsupported: a language with no rule table.
	MatchUnsupported
)

// MatchError is a recoverable tier-3 failure, handled fail-open upstream.
type MatchError struct {
	Kind MatchErrorKind
	Lang ScriptLanguage
	Msg  string
}

func (e *MatchError) Error() string {
	switch e.Kind {
	case MatchUnsupported:
		return fmt.Sprintf("no matcher for %s", e.Lang)
	default:
		return fmt.Sprintf("%s parse failed: %s", e.Lang, e.Msg)
	}
}

// MatchScript runs the tier-3 matcher for the script's language. Bash gets
// a full shell parse, Perl gets the regex table, every other supported
// language goes through the call-tree scanner. Spans in the result are
// relative to the body.
func MatchScript(lang ScriptLanguage, body string) ([]pack.Match, error) {
	switch lang {
	case LangBash:
		ms, err := matchBash(body)
		if err != nil {
			return nil, &MatchError{Kind: MatchParseFailed, Lang: lang, Msg: err.Error()}
		}
		return ms, nil
	case LangPerl:
		return matchPerl(body), nil
	}
	if d := descriptorFor(lang); d != nil && d.ASTCapable {
		return matchCallRules(lang, body), nil
	}
	return nil, &MatchError{Kind: MatchUnsupported, Lang: lang}
}

// Analyze runs the tiered pipeline over a raw command: trigger detection,
// extraction, classification, matching. Recoverable failures (ambiguous or
// malformed scripts, unparseable bodies) are returned alongside whatever
// matches the remaining triggers produced; the caller decides how to
// surface them. Spans are rebased to command coordinates.
func Analyze(text string, limits Limits) ([]pack.Match, []error) {
	trigs := MatchedTriggers(text)
	if len(trigs) == 0 {
		return nil, nil
	}
	var errs []error
	if len(trigs) > limits.MaxHeredocs {
		errs = append(errs, &ExtractError{Kind: ExtractMalformed,
			Msg: fmt.Sprintf("%d embedded scripts exceed the limit of %d", len(trigs), limits.MaxHeredocs)})
		trigs = trigs[:limits.MaxHeredocs]
	}
	var out []pack.Match
	for _, trig := range trigs {
		script, err := Extract(text, trig, limits)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ms, err := MatchScript(script.Language, script.Body)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, m := range ms {
			m.Span.Start += script.Span.Start
			m.Span.End += script.Span.Start
			out = append(out, m)
		}
	}
	return out, errs
}
