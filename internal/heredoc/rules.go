package heredoc

import (
	"github.com/cobaltsec/preflight/internal/pack"
)

// scriptRule is one dangerous call shape for an AST-capable language. The
// resulting rule id is Namespace() + "." + Name, e.g. heredoc.python.shutil_rmtree.
type scriptRule struct {
	Name       string
	Pattern    *callPattern
	Severity   pack.Severity
	Reason     string
	Suggestion string
	Derive     *scriptDerive
}

// scriptDerive refines a matched rule from a captured argument: a path
// argument reclassifies the target, a shell payload gets re-analyzed as a
// command line.
type scriptDerive struct {
	Kind    pack.DeriveKind
	Capture string
	// JoinArgs treats every string argument of the call as one command
	// line (exec.Command("rm", "-rf", "/")).
	JoinArgs bool
}

// scriptRules holds the default rule tables, keyed by language. Compiled
// once at package init and read-only afterwards.
var scriptRules = map[ScriptLanguage][]scriptRule{
	LangPython: {
		{
			Name:       "shutil_rmtree",
			Pattern:    mustPattern("shutil.rmtree($path, ...)"),
			Severity:   pack.SeverityHigh,
			Reason:     "shutil.rmtree recursively deletes a directory tree",
			Suggestion: "Move the tree aside or delete a narrower path",
			Derive:     &scriptDerive{Kind: pack.DerivePath, Capture: "path"},
		},
		{
			Name:       "os_remove",
			Pattern:    mustPattern("os.remove($path, ...)"),
			Severity:   pack.SeverityMedium,
			Reason:     "os.remove deletes a file without confirmation",
			Derive:     &scriptDerive{Kind: pack.DerivePath, Capture: "path"},
		},
		{
			Name:       "os_removedirs",
			Pattern:    mustPattern("os.removedirs($path, ...)"),
			Severity:   pack.SeverityMedium,
			Reason:     "os.removedirs removes a directory chain",
			Derive:     &scriptDerive{Kind: pack.DerivePath, Capture: "path"},
		},
		{
			Name:       "os_system",
			Pattern:    mustPattern("os.system($cmd, ...)"),
			Severity:   pack.SeverityHigh,
			Reason:     "os.system runs an arbitrary shell command",
			Suggestion: "Run the command directly so it can be reviewed",
			Derive:     &scriptDerive{Kind: pack.DeriveShellPayload, Capture: "cmd"},
		},
		{
			Name:     "subprocess_call",
			Pattern:  mustPattern("subprocess.call($cmd, ...)"),
			Severity: pack.SeverityMedium,
			Reason:   "subprocess.call runs an external command",
			Derive:   &scriptDerive{Kind: pack.DeriveShellPayload, Capture: "cmd"},
		},
		{
			Name:     "subprocess_run",
			Pattern:  mustPattern("subprocess.run($cmd, ...)"),
			Severity: pack.SeverityMedium,
			Reason:   "subprocess.run runs an external command",
			Derive:   &scriptDerive{Kind: pack.DeriveShellPayload, Capture: "cmd"},
		},
		{
			Name:     "subprocess_popen",
			Pattern:  mustPattern("subprocess.Popen($cmd, ...)"),
			Severity: pack.SeverityMedium,
			Reason:   "subprocess.Popen spawns an external process",
			Derive:   &scriptDerive{Kind: pack.DeriveShellPayload, Capture: "cmd"},
		},
	},
	LangJavaScript: {
		{
			Name:       "exec_sync",
			Pattern:    mustPattern("child_process.execSync($cmd, ...)"),
			Severity:   pack.SeverityHigh,
			Reason:     "execSync runs an arbitrary shell command",
			Suggestion: "Run the command directly so it can be reviewed",
			Derive:     &scriptDerive{Kind: pack.DeriveShellPayload, Capture: "cmd"},
		},
		{
			Name:     "exec",
			Pattern:  mustPattern("child_process.exec($cmd, ...)"),
			Severity: pack.SeverityMedium,
			Reason:   "exec runs an arbitrary shell command",
			Derive:   &scriptDerive{Kind: pack.DeriveShellPayload, Capture: "cmd"},
		},
		{
			Name:     "fs_rm_sync",
			Pattern:  mustPattern("fs.rmSync($path, ...)"),
			Severity: pack.SeverityHigh,
			Reason:   "fs.rmSync deletes files, recursively with {recursive: true}",
			Derive:   &scriptDerive{Kind: pack.DerivePath, Capture: "path"},
		},
		{
			Name:     "fs_rmdir_sync",
			Pattern:  mustPattern("fs.rmdirSync($path, ...)"),
			Severity: pack.SeverityMedium,
			Reason:   "fs.rmdirSync removes a directory",
			Derive:   &scriptDerive{Kind: pack.DerivePath, Capture: "path"},
		},
		{
			Name:     "fs_unlink_sync",
			Pattern:  mustPattern("fs.unlinkSync($path, ...)"),
			Severity: pack.SeverityMedium,
			Reason:   "fs.unlinkSync deletes a file",
			Derive:   &scriptDerive{Kind: pack.DerivePath, Capture: "path"},
		},
		{
			Name:     "rimraf",
			Pattern:  mustPattern("rimraf($path, ...)"),
			Severity: pack.SeverityHigh,
			Reason:   "rimraf recursively deletes a directory tree",
			Derive:   &scriptDerive{Kind: pack.DerivePath, Capture: "path"},
		},
	},
	LangRuby: {
		{
			Name:       "fileutils_rm_rf",
			Pattern:    mustPattern("FileUtils.rm_rf($path, ...)"),
			Severity:   pack.SeverityHigh,
			Reason:     "FileUtils.rm_rf force-deletes a directory tree",
			Suggestion: "Move the tree aside or delete a narrower path",
			Derive:     &scriptDerive{Kind: pack.DerivePath, Capture: "path"},
		},
		{
			Name:     "fileutils_rm_r",
			Pattern:  mustPattern("FileUtils.rm_r($path, ...)"),
			Severity: pack.SeverityHigh,
			Reason:   "FileUtils.rm_r recursively deletes a directory tree",
			Derive:   &scriptDerive{Kind: pack.DerivePath, Capture: "path"},
		},
		{
			Name:     "fileutils_remove_entry",
			Pattern:  mustPattern("FileUtils.remove_entry_secure($path, ...)"),
			Severity: pack.SeverityMedium,
			Reason:   "FileUtils.remove_entry_secure deletes a filesystem entry",
			Derive:   &scriptDerive{Kind: pack.DerivePath, Capture: "path"},
		},
		{
			Name:       "system",
			Pattern:    mustPattern("system($cmd, ...)"),
			Severity:   pack.SeverityHigh,
			Reason:     "system runs an arbitrary shell command",
			Suggestion: "Run the command directly so it can be reviewed",
			Derive:     &scriptDerive{Kind: pack.DeriveShellPayload, Capture: "cmd", JoinArgs: true},
		},
		{
			Name:     "kernel_exec",
			Pattern:  mustPattern("exec($cmd, ...)"),
			Severity: pack.SeverityHigh,
			Reason:   "exec replaces the process with an arbitrary command",
			Derive:   &scriptDerive{Kind: pack.DeriveShellPayload, Capture: "cmd", JoinArgs: true},
		},
	},
	LangGo: {
		{
			Name:     "os_remove_all",
			Pattern:  mustPattern("os.RemoveAll($path)"),
			Severity: pack.SeverityHigh,
			Reason:   "os.RemoveAll recursively deletes a directory tree",
			Derive:   &scriptDerive{Kind: pack.DerivePath, Capture: "path"},
		},
		{
			Name:     "os_remove",
			Pattern:  mustPattern("os.Remove($path)"),
			Severity: pack.SeverityMedium,
			Reason:   "os.Remove deletes a file or empty directory",
			Derive:   &scriptDerive{Kind: pack.DerivePath, Capture: "path"},
		},
		{
			Name:     "exec_command",
			Pattern:  mustPattern("exec.Command($cmd, ...)"),
			Severity: pack.SeverityMedium,
			Reason:   "exec.Command spawns an external process",
			Derive:   &scriptDerive{Kind: pack.DeriveShellPayload, Capture: "cmd", JoinArgs: true},
		},
	},
}

func init() {
	// TypeScript shares the JavaScript table plus the Deno filesystem API.
	ts := append([]scriptRule(nil), scriptRules[LangJavaScript]...)
	ts = append(ts, scriptRule{
		Name:     "deno_remove",
		Pattern:  mustPattern("Deno.remove($path, ...)"),
		Severity: pack.SeverityHigh,
		Reason:   "Deno.remove deletes files, recursively with {recursive: true}",
		Derive:   &scriptDerive{Kind: pack.DerivePath, Capture: "path"},
	})
	scriptRules[LangTypeScript] = ts
}

// matchCallRules runs the language's rule table over the scanned call tree.
// Offsets in the returned spans are relative to the script body.
func matchCallRules(lang ScriptLanguage, body string) []pack.Match {
	rules := scriptRules[lang]
	if len(rules) == 0 {
		return nil
	}
	calls := scanCalls(body)
	var out []pack.Match
	for _, c := range calls {
		for i := range rules {
			r := &rules[i]
			caps, ok := r.Pattern.match(c)
			if !ok {
				continue
			}
			out = append(out, buildScriptMatch(lang, r, c, caps))
		}
	}
	return out
}

// buildScriptMatch applies the rule's derivation to the captured argument
// and produces the final match.
func buildScriptMatch(lang ScriptLanguage, r *scriptRule, c *callNode, caps map[string]callArg) pack.Match {
	base := lang.Namespace() + "." + r.Name
	m := pack.Match{
		RuleID:     base,
		PackID:     lang.Namespace(),
		Severity:   r.Severity,
		Reason:     r.Reason,
		Suggestion: r.Suggestion,
		Span:       pack.Span{Start: c.Offset, End: c.Offset + len(c.Name)},
	}
	if r.Derive == nil {
		return m
	}
	arg, found := caps[r.Derive.Capture]
	if !found {
		return m
	}

	switch r.Derive.Kind {
	case pack.DerivePath:
		if arg.Kind != argString {
			m.Dynamic = true
			return m
		}
		switch pack.ClassifyTarget(arg.Text) {
		case pack.TargetCatastrophic:
			m.RuleID = base + ".catastrophic"
			m.Severity = pack.SeverityCritical
		case pack.TargetDynamic:
			m.Dynamic = true
		}
	case pack.DeriveShellPayload:
		payload, ok := payloadText(arg, c, r.Derive.JoinArgs)
		if !ok {
			m.Dynamic = true
			return m
		}
		kind, class, hit := AnalyzeShellPayload(payload)
		if !hit {
			return m
		}
		m.RuleID = base + "." + kind
		if m.Severity < pack.SeverityHigh {
			m.Severity = pack.SeverityHigh
		}
		switch class {
		case pack.TargetCatastrophic:
			m.Severity = pack.SeverityCritical
		case pack.TargetDynamic:
			m.Dynamic = true
		}
	}
	return m
}

// payloadText resolves the shell command line carried by a call: either the
// single captured string, or every string argument joined when the API
// takes argv-style parameters.
func payloadText(arg callArg, c *callNode, join bool) (string, bool) {
	if arg.Kind == argString && (!join || len(c.Args) == 1) {
		return arg.Text, true
	}
	if !join {
		return "", false
	}
	parts := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		if a.Kind != argString {
			return "", false
		}
		parts = append(parts, a.Text)
	}
	if len(parts) == 0 {
		return "", false
	}
	return joinWords(parts), true
}

func joinWords(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += " " + p
	}
	return out
}
