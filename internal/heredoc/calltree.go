package heredoc

import "strings"

// The call-tree scanner turns a script body into a list of call nodes:
// qualified callee name plus classified arguments. It is a single-pass
// scanner, not a full grammar. Call shape is all the rule tables need, and
// one scanner serves every AST-capable language (Python, JavaScript,
// TypeScript, Ruby, Go).

type argKind int

const (
	argString argKind = iota // statically known string literal
	argIdent                 // bare identifier or number
	argCall                  // nested call
	argDynamic               // anything not statically resolvable
)

type callArg struct {
	Kind argKind
	Text string    // unquoted value for argString, source text for argIdent
	Call *callNode // set for argCall
}

type callNode struct {
	Name   string // qualified callee: "shutil.rmtree", "FileUtils.rm_rf"
	Args   []callArg
	Offset int // byte offset of the callee in the body
}

// scanCalls extracts every call expression from the body, including calls
// nested in argument position. It never fails: on unbalanced syntax it
// returns what was recognized so far.
func scanCalls(body string) []*callNode {
	s := &callScanner{src: body}
	s.run()
	return s.calls
}

type callScanner struct {
	src   string
	pos   int
	calls []*callNode
}

func (s *callScanner) run() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '#':
			s.skipLine()
		case c == '/' && s.peek(1) == '/':
			s.skipLine()
		case c == '/' && s.peek(1) == '*':
			s.skipBlockComment()
		case c == '\'' || c == '"' || c == '`':
			// Top-level string literal: not an argument, skip it whole.
			s.readString(c)
		case isIdentStart(c):
			s.scanIdent()
		default:
			s.pos++
		}
	}
}

func (s *callScanner) peek(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

func (s *callScanner) skipLine() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.pos++
	}
}

func (s *callScanner) skipBlockComment() {
	s.pos += 2
	for s.pos < len(s.src) {
		if s.src[s.pos] == '*' && s.peek(1) == '/' {
			s.pos += 2
			return
		}
		s.pos++
	}
}

// scanIdent reads a qualified identifier and, if it is applied to
// arguments, records the call.
func (s *callScanner) scanIdent() {
	start := s.pos
	name := s.readQualified()

	// Horizontal whitespace only: a callee and its arguments share a line.
	i := s.pos
	for i < len(s.src) && (s.src[i] == ' ' || s.src[i] == '\t') {
		i++
	}
	if i < len(s.src) && s.src[i] == '(' {
		s.pos = i + 1
		call := &callNode{Name: name, Offset: start}
		call.Args = s.readArgs()
		s.calls = append(s.calls, call)
		return
	}
	// Paren-less call with a string argument (Ruby idiom:
	// FileUtils.rm_rf '/tmp/x', system "rm -rf /").
	if i < len(s.src) && (s.src[i] == '\'' || s.src[i] == '"') {
		s.pos = i
		lit, dynamic := s.readString(s.src[i])
		call := &callNode{Name: name, Offset: start}
		kind := argString
		if dynamic {
			kind = argDynamic
		}
		call.Args = []callArg{{Kind: kind, Text: lit}}
		s.calls = append(s.calls, call)
	}
}

// readQualified reads ident(.ident|::ident)* from the current position.
func (s *callScanner) readQualified() string {
	start := s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if isIdentPart(c) {
			s.pos++
			continue
		}
		if c == '.' && s.pos+1 < len(s.src) && isIdentStart(s.src[s.pos+1]) {
			s.pos++
			continue
		}
		if c == ':' && s.peek(1) == ':' && s.pos+2 < len(s.src) && isIdentStart(s.src[s.pos+2]) {
			s.pos += 2
			continue
		}
		break
	}
	return s.src[start:s.pos]
}

// readArgs parses a parenthesized argument list, classifying each argument.
// Any argument containing operators, interpolation, or unrecognized tokens
// is dynamic.
func (s *callScanner) readArgs() []callArg {
	var args []callArg
	var cur *callArg
	flush := func() {
		if cur != nil {
			args = append(args, *cur)
			cur = nil
		}
	}
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ')':
			s.pos++
			flush()
			return args
		case c == ',':
			s.pos++
			flush()
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '\'' || c == '"' || c == '`':
			lit, dynamic := s.readString(c)
			kind := argString
			if dynamic {
				kind = argDynamic
			}
			if cur != nil {
				// Two tokens in one argument slot: expression, not literal.
				cur.Kind = argDynamic
			} else {
				cur = &callArg{Kind: kind, Text: lit}
			}
		case isIdentStart(c):
			start := s.pos
			name := s.readQualified()
			if s.pos < len(s.src) && s.src[s.pos] == '(' {
				s.pos++
				nested := &callNode{Name: name, Offset: start}
				nested.Args = s.readArgs()
				s.calls = append(s.calls, nested)
				if cur != nil {
					cur.Kind = argDynamic
				} else {
					cur = &callArg{Kind: argCall, Call: nested}
				}
			} else if cur != nil {
				cur.Kind = argDynamic
			} else {
				cur = &callArg{Kind: argIdent, Text: name}
			}
		case c >= '0' && c <= '9':
			start := s.pos
			for s.pos < len(s.src) && (s.src[s.pos] >= '0' && s.src[s.pos] <= '9' || s.src[s.pos] == '.') {
				s.pos++
			}
			if cur != nil {
				cur.Kind = argDynamic
			} else {
				cur = &callArg{Kind: argIdent, Text: s.src[start:s.pos]}
			}
		default:
			// Operator, interpolation sigil, bracket: dynamic argument.
			if cur == nil {
				cur = &callArg{Kind: argDynamic}
			} else {
				cur.Kind = argDynamic
			}
			s.pos++
		}
	}
	flush()
	return args
}

// readString consumes a quoted literal and reports whether it contains
// runtime interpolation (template `${}`, Ruby "#{}").
func (s *callScanner) readString(quote byte) (string, bool) {
	s.pos++ // opening quote
	var b strings.Builder
	dynamic := false
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' && s.pos+1 < len(s.src) {
			b.WriteByte(s.src[s.pos+1])
			s.pos += 2
			continue
		}
		if c == quote {
			s.pos++
			lit := b.String()
			if quote == '`' && strings.Contains(lit, "${") {
				dynamic = true
			}
			if quote == '"' && strings.Contains(lit, "#{") {
				dynamic = true
			}
			return lit, dynamic
		}
		b.WriteByte(c)
		s.pos++
	}
	return b.String(), dynamic // unterminated: best effort
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
