package heredoc

import (
	"fmt"
	"strings"
)

// Call patterns are written in a small source form compiled at startup:
//
//	shutil.rmtree($path)      capture the first argument as "path"
//	os.system($cmd)           capture, any later arguments ignored via ...
//	subprocess.run(_, ...)    wildcard first argument, any rest
//
// `_` matches any single argument, `$name` matches any single argument and
// captures it, `...` matches zero or more remaining arguments. A pattern
// with neither matches the exact arity.

type patArgKind int

const (
	patWildcard patArgKind = iota
	patCapture
	patRest
)

type patArg struct {
	Kind patArgKind
	Name string // capture name
}

type callPattern struct {
	Callee string
	Args   []patArg
}

// compilePattern parses the pattern source form. Malformed patterns are
// programming errors surfaced at startup via mustPattern.
func compilePattern(src string) (*callPattern, error) {
	open := strings.IndexByte(src, '(')
	if open < 0 || !strings.HasSuffix(src, ")") {
		return nil, fmt.Errorf("pattern %q: missing argument list", src)
	}
	callee := strings.TrimSpace(src[:open])
	if callee == "" {
		return nil, fmt.Errorf("pattern %q: empty callee", src)
	}
	p := &callPattern{Callee: callee}
	inner := strings.TrimSpace(src[open+1 : len(src)-1])
	if inner == "" {
		return p, nil
	}
	for i, part := range strings.Split(inner, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "_":
			p.Args = append(p.Args, patArg{Kind: patWildcard})
		case part == "...":
			p.Args = append(p.Args, patArg{Kind: patRest})
		case strings.HasPrefix(part, "$") && len(part) > 1:
			p.Args = append(p.Args, patArg{Kind: patCapture, Name: part[1:]})
		default:
			return nil, fmt.Errorf("pattern %q: bad argument %d %q", src, i, part)
		}
	}
	for i, a := range p.Args {
		if a.Kind == patRest && i != len(p.Args)-1 {
			return nil, fmt.Errorf("pattern %q: ... must be last", src)
		}
	}
	return p, nil
}

func mustPattern(src string) *callPattern {
	p, err := compilePattern(src)
	if err != nil {
		panic(err)
	}
	return p
}

// calleeMatches accepts the exact qualified name, a qualified call whose
// final segment matches a qualified pattern's ("cp.execSync" for
// "child_process.execSync", since the qualifier is usually an import
// alias), a qualified call of an unqualified pattern, and a bare call of
// the pattern's final segment ("rmtree" after a from-import vs pattern
// "shutil.rmtree").
func (p *callPattern) calleeMatches(name string) bool {
	if name == p.Callee {
		return true
	}
	if strings.HasSuffix(name, "."+p.Callee) || strings.HasSuffix(name, "::"+p.Callee) {
		return true
	}
	if strings.HasSuffix(p.Callee, "."+name) || strings.HasSuffix(p.Callee, "::"+name) {
		return true
	}
	if qualified(name) && qualified(p.Callee) && lastSegment(name) == lastSegment(p.Callee) {
		return true
	}
	return false
}

func qualified(s string) bool {
	return strings.ContainsAny(s, ".:")
}

func lastSegment(s string) string {
	if i := strings.LastIndexAny(s, ".:"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// match reports whether the call fits the pattern and returns the captured
// arguments by name.
func (p *callPattern) match(c *callNode) (map[string]callArg, bool) {
	if !p.calleeMatches(c.Name) {
		return nil, false
	}
	caps := map[string]callArg{}
	for i, pa := range p.Args {
		if pa.Kind == patRest {
			return caps, true
		}
		if i >= len(c.Args) {
			return nil, false
		}
		if pa.Kind == patCapture {
			caps[pa.Name] = c.Args[i]
		}
	}
	if len(c.Args) != len(p.Args) {
		// No rest marker: arity must agree exactly.
		return nil, false
	}
	return caps, true
}
