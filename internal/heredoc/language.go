package heredoc

import "strings"

// ScriptLanguage is the closed set of embedded-script languages the
// pipeline can classify and match.
type ScriptLanguage int

const (
	LangUnknown ScriptLanguage = iota
	LangBash
	LangPython
	LangJavaScript
	LangTypeScript
	LangRuby
	LangPerl
	LangGo
)

func (l ScriptLanguage) String() string {
	if d := descriptorFor(l); d != nil {
		return d.Name
	}
	return "unknown"
}

// Namespace returns the rule id namespace for script-tier matches of this
// language ("heredoc.python", "heredoc.bash", ...).
func (l ScriptLanguage) Namespace() string {
	return "heredoc." + l.String()
}

// LanguageDescriptor collects everything the pipeline needs to know about
// one language: how its host interpreter is invoked, which flag runs inline
// code, and the hints used for classification. Adding a language means
// adding one descriptor here plus its default patterns in rules.go.
type LanguageDescriptor struct {
	Lang ScriptLanguage
	Name string
	// Interpreters are executable names that run this language.
	Interpreters []string
	// InlineFlags run code given as the next argument (python -c, perl -e).
	InlineFlags []string
	// Extensions and DelimiterHints feed classification: "python3 <<PYEOF"
	// or "cat script.py | python3".
	Extensions     []string
	DelimiterHints []string
	// BodyHints are cheap substring signals checked in the script body.
	BodyHints []string
	// ASTCapable languages go through the call-tree matcher; the rest get
	// targeted regexes.
	ASTCapable bool
}

// descriptors is the single enumerable language table, in classification
// priority order.
var descriptors = []LanguageDescriptor{
	{
		Lang:           LangBash,
		Name:           "bash",
		Interpreters:   []string{"bash", "sh", "zsh", "dash", "ksh"},
		InlineFlags:    []string{"-c"},
		Extensions:     []string{".sh", ".bash"},
		DelimiterHints: []string{"SH", "BASH", "SHELL"},
		BodyHints:      []string{"#!/bin/sh", "#!/bin/bash", "#!/usr/bin/env bash", "set -e", "set -euo"},
		ASTCapable:     true,
	},
	{
		Lang:           LangPython,
		Name:           "python",
		Interpreters:   []string{"python", "python3", "python2"},
		InlineFlags:    []string{"-c"},
		Extensions:     []string{".py"},
		DelimiterHints: []string{"PY", "PYTHON"},
		BodyHints:      []string{"import ", "def ", "print(", "__main__"},
		ASTCapable:     true,
	},
	{
		Lang:           LangJavaScript,
		Name:           "javascript",
		Interpreters:   []string{"node", "nodejs"},
		InlineFlags:    []string{"-e", "--eval"},
		Extensions:     []string{".js", ".mjs", ".cjs"},
		DelimiterHints: []string{"JS", "NODE", "JAVASCRIPT"},
		BodyHints:      []string{"require(", "console.log", "=>", "const "},
		ASTCapable:     true,
	},
	{
		Lang:           LangTypeScript,
		Name:           "typescript",
		Interpreters:   []string{"ts-node", "tsx", "deno"},
		InlineFlags:    []string{"-e", "--eval"},
		Extensions:     []string{".ts", ".mts"},
		DelimiterHints: []string{"TS", "TYPESCRIPT"},
		BodyHints:      []string{": string", ": number", "interface ", "Deno."},
		ASTCapable:     true,
	},
	{
		Lang:           LangRuby,
		Name:           "ruby",
		Interpreters:   []string{"ruby", "irb"},
		InlineFlags:    []string{"-e"},
		Extensions:     []string{".rb"},
		DelimiterHints: []string{"RB", "RUBY"},
		BodyHints:      []string{"require '", "FileUtils", "puts ", ".each do"},
		ASTCapable:     true,
	},
	{
		Lang:           LangPerl,
		Name:           "perl",
		Interpreters:   []string{"perl"},
		InlineFlags:    []string{"-e", "-E"},
		Extensions:     []string{".pl", ".pm"},
		DelimiterHints: []string{"PL", "PERL"},
		BodyHints:      []string{"my $", "use strict", "=~", "sub "},
		ASTCapable:     false,
	},
	{
		Lang:           LangGo,
		Name:           "go",
		Interpreters:   []string{"gorun", "yaegi"},
		Extensions:     []string{".go"},
		DelimiterHints: []string{"GO", "GOLANG"},
		BodyHints:      []string{"package main", "func main(", "fmt.", ":="},
		ASTCapable:     true,
	},
}

// Descriptors returns the language table. Callers must not mutate it.
func Descriptors() []LanguageDescriptor {
	return descriptors
}

func descriptorFor(l ScriptLanguage) *LanguageDescriptor {
	for i := range descriptors {
		if descriptors[i].Lang == l {
			return &descriptors[i]
		}
	}
	return nil
}

// interpreterLang maps an executable name (basename, version suffix kept)
// to its language.
func interpreterLang(name string) ScriptLanguage {
	name = strings.TrimSuffix(name, ".exe")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	for _, d := range descriptors {
		for _, interp := range d.Interpreters {
			if name == interp {
				return d.Lang
			}
		}
	}
	return LangUnknown
}

// Classify determines the language of an extracted script body using, in
// order: the interpreter named in the command, the heredoc delimiter's
// naming convention or extension, a shebang line, and finally body hints.
// Returns LangUnknown when no signal is decisive.
func Classify(command, marker, body string) ScriptLanguage {
	// Piped-script triggers carry the interpreter as the marker itself.
	if l := interpreterLang(marker); l != LangUnknown {
		return l
	}

	// Interpreter name anywhere in the command (first hit wins; the token
	// before a heredoc or inline flag is the host interpreter).
	for _, tok := range strings.Fields(command) {
		if l := interpreterLang(tok); l != LangUnknown {
			return l
		}
	}

	// Delimiter naming convention: PYEOF, EOF_RB, SCRIPT.py ...
	upper := strings.ToUpper(marker)
	for _, d := range descriptors {
		for _, ext := range d.Extensions {
			if strings.HasSuffix(strings.ToLower(marker), ext) {
				return d.Lang
			}
		}
		for _, hint := range d.DelimiterHints {
			if upper != "" && (strings.HasPrefix(upper, hint) || strings.HasSuffix(upper, hint)) {
				return d.Lang
			}
		}
	}

	// Shebang in the body.
	if strings.HasPrefix(body, "#!") {
		line := body
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		for _, tok := range strings.FieldsFunc(line, func(r rune) bool { return r == '/' || r == ' ' || r == '!' || r == '#' }) {
			if l := interpreterLang(tok); l != LangUnknown {
				return l
			}
		}
	}

	// Body hints, first language with two distinct hits wins; one hit is
	// remembered as a weak candidate.
	weak := LangUnknown
	for _, d := range descriptors {
		hits := 0
		for _, h := range d.BodyHints {
			if strings.Contains(body, h) {
				hits++
			}
		}
		if hits >= 2 {
			return d.Lang
		}
		if hits == 1 && weak == LangUnknown {
			weak = d.Lang
		}
	}
	return weak
}
