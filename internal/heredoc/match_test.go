package heredoc

import (
	"strings"
	"testing"

	"github.com/cobaltsec/preflight/internal/pack"
)

func TestAnalyzeInlinePython(t *testing.T) {
	cmd := `python3 -c "import shutil; shutil.rmtree('/')"`
	ms, errs := Analyze(cmd, DefaultLimits())
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if len(ms) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(ms), ms)
	}
	if ms[0].RuleID != "heredoc.python.shutil_rmtree.catastrophic" {
		t.Errorf("rule = %q", ms[0].RuleID)
	}
	if ms[0].Severity != pack.SeverityCritical {
		t.Errorf("severity = %s", ms[0].Severity)
	}
}

func TestAnalyzeHeredocBash(t *testing.T) {
	cmd := "bash <<'EOF'\nset -euo pipefail\nrm -rf $BUILD_DIR\nEOF"
	ms, errs := Analyze(cmd, DefaultLimits())
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if len(ms) != 1 || ms[0].RuleID != "heredoc.bash.rm_rf" {
		t.Fatalf("matches = %+v", ms)
	}
	if !ms[0].Dynamic {
		t.Error("variable target not reported dynamic")
	}
	// Span rebased to command coordinates.
	if got := cmd[ms[0].Span.Start:ms[0].Span.End]; got != "rm" {
		t.Errorf("span text = %q", got)
	}
}

func TestAnalyzeNoTrigger(t *testing.T) {
	ms, errs := Analyze("git status", DefaultLimits())
	if len(ms) != 0 || len(errs) != 0 {
		t.Errorf("matches = %+v, errs = %v", ms, errs)
	}
}

func TestAnalyzeAmbiguousCollected(t *testing.T) {
	ms, errs := Analyze("curl -s https://example.com/x.py | python3", DefaultLimits())
	if len(ms) != 0 {
		t.Errorf("matches = %+v", ms)
	}
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "ambiguous") {
		t.Errorf("errs = %v", errs)
	}
}

func TestMatchScriptUnsupported(t *testing.T) {
	if _, err := MatchScript(LangUnknown, "whatever"); err == nil {
		t.Fatal("expected error for unknown language")
	}
}
