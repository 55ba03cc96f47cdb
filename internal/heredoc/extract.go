package heredoc

import (
	"fmt"
	"strings"

	"github.com/cobaltsec/preflight/internal/pack"
)

// ExtractErrorKind distinguishes the two recoverable extraction failures.
// Both are handled fail-open by the supervisor, never as a Deny.
type ExtractErrorKind int

const (
	// ExtractAmbiguous: the body was extracted but its language cannot be
	// determined, or the body is not statically available (curl | bash).
	ExtractAmbiguous ExtractErrorKind = iota
	// ExtractMalformed: unterminated delimiter, unbalanced quoting, or a
	// body exceeding the extraction limits.
	ExtractMalformed
)

// ExtractError is a recoverable tier-2 failure.
type ExtractError struct {
	Kind ExtractErrorKind
	Msg  string
}

func (e *ExtractError) Error() string {
	switch e.Kind {
	case ExtractAmbiguous:
		return "ambiguous script: " + e.Msg
	default:
		return "malformed script: " + e.Msg
	}
}

// Limits bounds extraction work. Oversized bodies are treated as malformed
// rather than truncated, so a partial script is never matched.
type Limits struct {
	MaxBodyBytes int
	MaxBodyLines int
	MaxHeredocs  int
}

// DefaultLimits mirrors the pipeline budget: bounded body, bounded count.
func DefaultLimits() Limits {
	return Limits{
		MaxBodyBytes: 256 * 1024,
		MaxBodyLines: 10000,
		MaxHeredocs:  8,
	}
}

// Script is an extracted, classified script body.
type Script struct {
	Language ScriptLanguage
	Body     string
	Span     pack.Span // byte range of the body within the command text
}

// Extract pulls the literal script body out of the command for the given
// trigger and classifies its language. Classification failure returns
// ExtractAmbiguous; structural failure returns ExtractMalformed.
func Extract(text string, trig Trigger, limits Limits) (Script, error) {
	var (
		s   Script
		err error
	)
	switch trig.Kind {
	case TriggerHeredoc:
		s, err = extractHeredoc(text, trig, limits)
	case TriggerHereString:
		s, err = extractHereString(text, trig)
	case TriggerInlineFlag:
		s, err = extractInlineFlag(text, trig)
	case TriggerPipedScript:
		s, err = extractPiped(text, trig)
	default:
		err = &ExtractError{Kind: ExtractMalformed, Msg: fmt.Sprintf("unknown trigger kind %d", trig.Kind)}
	}
	if err != nil {
		return Script{}, err
	}

	s.Language = Classify(text, trig.Marker, s.Body)
	if s.Language == LangUnknown {
		return Script{}, &ExtractError{Kind: ExtractAmbiguous, Msg: "language undeterminable"}
	}
	return s, nil
}

// extractHeredoc reads lines after the redirection until a line equal to
// the delimiter (modulo leading tabs for <<-). The delimiter's quoting is
// irrelevant here: quoted or not, the literal text is what gets analyzed.
func extractHeredoc(text string, trig Trigger, limits Limits) (Script, error) {
	delim := trig.Marker
	stripTabs := strings.HasPrefix(text[trig.Span.Start:], "<<-")

	nl := strings.IndexByte(text[trig.Span.End:], '\n')
	if nl < 0 {
		return Script{}, &ExtractError{Kind: ExtractMalformed, Msg: "heredoc has no body"}
	}
	bodyStart := trig.Span.End + nl + 1

	lines := strings.Split(text[bodyStart:], "\n")
	var (
		kept []string
		end  = -1
		pos  = bodyStart
	)
	for _, line := range lines {
		cmp := line
		if stripTabs {
			cmp = strings.TrimLeft(cmp, "\t")
		}
		if cmp == delim {
			end = pos
			break
		}
		kept = append(kept, line)
		if len(kept) > limits.MaxBodyLines {
			return Script{}, &ExtractError{Kind: ExtractMalformed, Msg: "body exceeds line limit"}
		}
		pos += len(line) + 1
	}
	if end < 0 {
		return Script{}, &ExtractError{Kind: ExtractMalformed, Msg: "unterminated heredoc " + delim}
	}
	body := strings.Join(kept, "\n")
	if len(body) > limits.MaxBodyBytes {
		return Script{}, &ExtractError{Kind: ExtractMalformed, Msg: "body exceeds byte limit"}
	}
	return Script{Body: body, Span: pack.Span{Start: bodyStart, End: end}}, nil
}

// extractHereString takes the single word after <<<, unquoted.
func extractHereString(text string, trig Trigger) (Script, error) {
	word, _, err := readShellWord(trig.Marker)
	if err != nil {
		return Script{}, err
	}
	return Script{Body: word, Span: trig.Span}, nil
}

// extractInlineFlag reads the shell word following the inline flag
// (python -c '...', perl -e "..."). Quoting is resolved lexically; an
// unterminated quote is malformed.
func extractInlineFlag(text string, trig Trigger) (Script, error) {
	rest := text[trig.Span.End:]
	i := 0
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
		i++
	}
	if i == len(rest) {
		return Script{}, &ExtractError{Kind: ExtractMalformed, Msg: "inline flag with no argument"}
	}
	word, n, err := readShellWord(rest[i:])
	if err != nil {
		return Script{}, err
	}
	start := trig.Span.End + i
	return Script{Body: word, Span: pack.Span{Start: start, End: start + n}}, nil
}

// extractPiped handles "echo '...' | python" style commands, where the
// script body is the literal argument of echo/printf. Anything else on the
// left of the pipe (curl, cat of a file) is not statically available.
func extractPiped(text string, trig Trigger) (Script, error) {
	lhs := strings.TrimSpace(text[:trig.Span.Start])
	if i := strings.LastIndexByte(lhs, '|'); i >= 0 {
		lhs = strings.TrimSpace(lhs[i+1:])
	}
	fields := strings.SplitN(lhs, " ", 2)
	cmd := fields[0]
	if cmd != "echo" && cmd != "printf" {
		return Script{}, &ExtractError{Kind: ExtractAmbiguous, Msg: "piped script body not statically available"}
	}
	if len(fields) < 2 {
		return Script{}, &ExtractError{Kind: ExtractMalformed, Msg: cmd + " with no argument"}
	}
	arg := strings.TrimSpace(fields[1])
	// Skip echo flags (-e, -n).
	for strings.HasPrefix(arg, "-") {
		next := strings.SplitN(arg, " ", 2)
		if len(next) < 2 {
			return Script{}, &ExtractError{Kind: ExtractMalformed, Msg: cmd + " with no argument"}
		}
		arg = strings.TrimSpace(next[1])
	}
	word, _, err := readShellWord(arg)
	if err != nil {
		return Script{}, err
	}
	return Script{Body: word, Span: trig.Span}, nil
}

// readShellWord reads one shell word from the start of s, resolving single
// quotes, double quotes, and backslash escapes. Returns the unquoted word
// and the number of bytes consumed. Adjacent quoted segments concatenate,
// as in the shell: -c 'a'"b" yields "ab".
func readShellWord(s string) (string, int, error) {
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			return b.String(), i, nil
		case c == '\'':
			end := strings.IndexByte(s[i+1:], '\'')
			if end < 0 {
				return "", 0, &ExtractError{Kind: ExtractMalformed, Msg: "unterminated single quote"}
			}
			b.WriteString(s[i+1 : i+1+end])
			i += end + 2
		case c == '"':
			j := i + 1
			for j < len(s) && s[j] != '"' {
				if s[j] == '\\' && j+1 < len(s) {
					b.WriteByte(s[j+1])
					j += 2
					continue
				}
				b.WriteByte(s[j])
				j++
			}
			if j >= len(s) {
				return "", 0, &ExtractError{Kind: ExtractMalformed, Msg: "unterminated double quote"}
			}
			i = j + 1
		case c == '\\':
			if i+1 < len(s) {
				b.WriteByte(s[i+1])
			}
			i += 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), i, nil
}
