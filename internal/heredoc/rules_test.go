package heredoc

import (
	"testing"

	"github.com/cobaltsec/preflight/internal/pack"
)

func singleMatch(t *testing.T, lang ScriptLanguage, body string) pack.Match {
	t.Helper()
	ms := matchCallRules(lang, body)
	if len(ms) != 1 {
		t.Fatalf("got %d matches for %q, want 1: %+v", len(ms), body, ms)
	}
	return ms[0]
}

func TestPythonRmtreeCatastrophic(t *testing.T) {
	m := singleMatch(t, LangPython, "import shutil\nshutil.rmtree('/')\n")
	if m.RuleID != "heredoc.python.shutil_rmtree.catastrophic" {
		t.Errorf("rule = %q", m.RuleID)
	}
	if m.Severity != pack.SeverityCritical {
		t.Errorf("severity = %s, want critical", m.Severity)
	}
	if m.Dynamic {
		t.Error("literal target reported dynamic")
	}
}

func TestPythonRmtreeLiteral(t *testing.T) {
	m := singleMatch(t, LangPython, "shutil.rmtree('/tmp/build')")
	if m.RuleID != "heredoc.python.shutil_rmtree" {
		t.Errorf("rule = %q", m.RuleID)
	}
	if m.Severity != pack.SeverityHigh {
		t.Errorf("severity = %s, want high", m.Severity)
	}
}

func TestPythonRmtreeDynamic(t *testing.T) {
	m := singleMatch(t, LangPython, "shutil.rmtree(target)")
	if !m.Dynamic {
		t.Error("identifier target not reported dynamic")
	}
	if m.Severity != pack.SeverityHigh {
		t.Errorf("severity = %s", m.Severity)
	}
}

func TestPythonFromImportRmtree(t *testing.T) {
	// Bare name after a from-import still matches the qualified pattern.
	m := singleMatch(t, LangPython, "from shutil import rmtree\nrmtree('/etc')")
	if m.RuleID != "heredoc.python.shutil_rmtree.catastrophic" {
		t.Errorf("rule = %q", m.RuleID)
	}
}

func TestPythonOsSystemPayload(t *testing.T) {
	m := singleMatch(t, LangPython, `os.system("rm -rf /")`)
	if m.RuleID != "heredoc.python.os_system.rm_rf" {
		t.Errorf("rule = %q", m.RuleID)
	}
	if m.Severity != pack.SeverityCritical {
		t.Errorf("severity = %s, want critical", m.Severity)
	}
}

func TestPythonOsSystemBenignPayload(t *testing.T) {
	m := singleMatch(t, LangPython, `os.system("ls -la")`)
	if m.RuleID != "heredoc.python.os_system" {
		t.Errorf("rule = %q", m.RuleID)
	}
	if m.Severity != pack.SeverityHigh {
		t.Errorf("severity = %s", m.Severity)
	}
}

func TestJavaScriptExecSync(t *testing.T) {
	m := singleMatch(t, LangJavaScript, `const cp = require('child_process'); cp.execSync("git reset --hard")`)
	if m.RuleID != "heredoc.javascript.exec_sync.git_reset_hard" {
		t.Errorf("rule = %q", m.RuleID)
	}
}

func TestJavaScriptRmSync(t *testing.T) {
	ms := matchCallRules(LangJavaScript, `fs.rmSync('/data', { recursive: true })`)
	if len(ms) != 1 {
		t.Fatalf("got %d matches: %+v", len(ms), ms)
	}
	if ms[0].RuleID != "heredoc.javascript.fs_rm_sync" {
		t.Errorf("rule = %q", ms[0].RuleID)
	}
}

func TestTypeScriptDenoRemove(t *testing.T) {
	m := singleMatch(t, LangTypeScript, `Deno.remove("/etc", { recursive: true })`)
	if m.RuleID != "heredoc.typescript.deno_remove.catastrophic" {
		t.Errorf("rule = %q", m.RuleID)
	}
}

func TestRubyParenlessRmRf(t *testing.T) {
	m := singleMatch(t, LangRuby, "FileUtils.rm_rf '/'")
	if m.RuleID != "heredoc.ruby.fileutils_rm_rf.catastrophic" {
		t.Errorf("rule = %q", m.RuleID)
	}
	if m.Severity != pack.SeverityCritical {
		t.Errorf("severity = %s", m.Severity)
	}
}

func TestRubySystemInterpolated(t *testing.T) {
	m := singleMatch(t, LangRuby, `system("rm -rf #{dir}")`)
	if m.RuleID != "heredoc.ruby.system" {
		t.Errorf("rule = %q", m.RuleID)
	}
	if !m.Dynamic {
		t.Error("interpolated payload not reported dynamic")
	}
}

func TestGoExecCommandJoined(t *testing.T) {
	m := singleMatch(t, LangGo, `exec.Command("rm", "-rf", "/")`)
	if m.RuleID != "heredoc.go.exec_command.rm_rf" {
		t.Errorf("rule = %q", m.RuleID)
	}
	if m.Severity != pack.SeverityCritical {
		t.Errorf("severity = %s", m.Severity)
	}
}

func TestBenignScriptsNoMatch(t *testing.T) {
	tests := []struct {
		lang ScriptLanguage
		body string
	}{
		{LangPython, "print('hello')\nx = [i for i in range(10)]"},
		{LangPython, "os.path.join('a', 'b')"},
		{LangJavaScript, "console.log('hi')"},
		{LangRuby, "puts 'hello'"},
		{LangGo, `fmt.Println("hi")`},
	}
	for _, tt := range tests {
		if ms := matchCallRules(tt.lang, tt.body); len(ms) != 0 {
			t.Errorf("%s %q matched %+v", tt.lang, tt.body, ms)
		}
	}
}
