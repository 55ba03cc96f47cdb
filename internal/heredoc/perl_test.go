package heredoc

import (
	"testing"

	"github.com/cobaltsec/preflight/internal/pack"
)

func singlePerlMatch(t *testing.T, body string) pack.Match {
	t.Helper()
	ms := matchPerl(body)
	if len(ms) != 1 {
		t.Fatalf("got %d matches for %q, want 1: %+v", len(ms), body, ms)
	}
	return ms[0]
}

func TestPerlRmtree(t *testing.T) {
	m := singlePerlMatch(t, `use File::Path; rmtree("/home");`)
	if m.RuleID != "heredoc.perl.rmtree.catastrophic" {
		t.Errorf("rule = %q", m.RuleID)
	}
	if m.Severity != pack.SeverityCritical {
		t.Errorf("severity = %s", m.Severity)
	}
}

func TestPerlRmtreeLiteral(t *testing.T) {
	m := singlePerlMatch(t, `rmtree('/tmp/build');`)
	if m.RuleID != "heredoc.perl.rmtree" || m.Severity != pack.SeverityHigh {
		t.Errorf("match = %+v", m)
	}
}

func TestPerlRmtreeVariable(t *testing.T) {
	m := singlePerlMatch(t, `rmtree($dir);`)
	if !m.Dynamic {
		t.Error("variable argument not reported dynamic")
	}
}

func TestPerlUnlink(t *testing.T) {
	m := singlePerlMatch(t, `unlink "/tmp/scratch.log";`)
	if m.RuleID != "heredoc.perl.unlink" || m.Severity != pack.SeverityMedium {
		t.Errorf("match = %+v", m)
	}
}

func TestPerlSystemPayload(t *testing.T) {
	m := singlePerlMatch(t, `system('rm -rf /');`)
	if m.RuleID != "heredoc.perl.system.rm_rf" {
		t.Errorf("rule = %q", m.RuleID)
	}
	if m.Severity != pack.SeverityCritical {
		t.Errorf("severity = %s", m.Severity)
	}
}

func TestPerlSystemInterpolated(t *testing.T) {
	m := singlePerlMatch(t, `system("rm -rf $dir");`)
	if m.RuleID != "heredoc.perl.system" {
		t.Errorf("rule = %q", m.RuleID)
	}
	if !m.Dynamic {
		t.Error("interpolating payload not reported dynamic")
	}
}

func TestPerlBackticks(t *testing.T) {
	m := singlePerlMatch(t, "my $out = `git reset --hard`;")
	if m.RuleID != "heredoc.perl.backticks.git_reset_hard" {
		t.Errorf("rule = %q", m.RuleID)
	}
}

func TestPerlBenign(t *testing.T) {
	bodies := []string{
		`print "hello\n";`,
		`my @files = glob("*.txt");`,
		`open(my $fh, '<', 'data.txt') or die;`,
	}
	for _, body := range bodies {
		if ms := matchPerl(body); len(ms) != 0 {
			t.Errorf("%q matched %+v", body, ms)
		}
	}
}
