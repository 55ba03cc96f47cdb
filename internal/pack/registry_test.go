package pack

import (
	"strings"
	"testing"
)

func testPack() *Pack {
	return &Pack{
		ID:       "test",
		Name:     "Test",
		Keywords: []string{"frob"},
		SafePatterns: []SafePattern{
			safePattern("frob_dry_run", `\bfrob\b[^|;&]*--dry-run\b[^|;&]*`, "preview"),
		},
		DestructivePatterns: []Pattern{
			{
				Name:     "frob_purge",
				Regex:    mustRegex(`\bfrob\s+purge\b`),
				Severity: SeverityHigh,
				Reason:   "purge discards data",
			},
		},
	}
}

func TestNewRegistryValidation(t *testing.T) {
	tests := []struct {
		name  string
		packs func() []*Pack
		want  string
	}{
		{
			"duplicate pack id",
			func() []*Pack { return []*Pack{testPack(), testPack()} },
			"duplicate pack id",
		},
		{
			"duplicate rule in pack",
			func() []*Pack {
				p := testPack()
				p.DestructivePatterns = append(p.DestructivePatterns, p.DestructivePatterns[0])
				return []*Pack{p}
			},
			"duplicate rule id",
		},
		{
			"missing reason",
			func() []*Pack {
				p := testPack()
				p.DestructivePatterns[0].Reason = ""
				return []*Pack{p}
			},
			"no reason",
		},
		{
			"missing pack id",
			func() []*Pack {
				p := testPack()
				p.ID = ""
				return []*Pack{p}
			},
			"no id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.packs()...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestRegistryRuleIDsGloballyUnique(t *testing.T) {
	a := testPack()
	b := testPack()
	b.ID = "other"
	// Same pattern names in different packs are fine; ids are namespaced.
	if _, err := NewRegistry(a, b); err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
}

func TestKeywordGate(t *testing.T) {
	r := MustRegistry(testPack())
	if ms := r.MatchCommand("frob purge everything"); len(ms) != 1 {
		t.Errorf("got %d matches, want 1", len(ms))
	}
	// No keyword, pack regexes never run.
	if ms := r.MatchCommand("widget purge everything"); len(ms) != 0 {
		t.Errorf("keyword gate leaked: %+v", ms)
	}
}

func TestSafePatternSuppression(t *testing.T) {
	r := MustRegistry(testPack())
	if ms := r.MatchCommand("frob purge --dry-run"); len(ms) != 0 {
		t.Errorf("safe span did not suppress: %+v", ms)
	}
}

func TestMatchFields(t *testing.T) {
	r := MustRegistry(testPack())
	ms := r.MatchCommand("frob purge now")
	if len(ms) != 1 {
		t.Fatalf("got %d matches", len(ms))
	}
	m := ms[0]
	if m.RuleID != "test.frob_purge" || m.PackID != "test" {
		t.Errorf("ids = %q / %q", m.RuleID, m.PackID)
	}
	if got := "frob purge now"[m.Span.Start:m.Span.End]; got != "frob purge" {
		t.Errorf("span text = %q", got)
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	for _, id := range []string{"git", "filesystem", "messaging.kafka", "database.mysql", "platform.github", "loadbalancer.haproxy"} {
		if r.Pack(id) == nil {
			t.Errorf("builtin pack %q missing", id)
		}
	}
	ids := r.RuleIDs()
	if len(ids) == 0 {
		t.Fatal("no rule ids")
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] == ids[i-1] {
			t.Errorf("duplicate rule id %q", ids[i])
		}
	}
}

func TestMatchCommandDeterministic(t *testing.T) {
	r := DefaultRegistry()
	cmd := "git reset --hard && rm -rf /tmp/x"
	first := r.MatchCommand(cmd)
	for i := 0; i < 10; i++ {
		again := r.MatchCommand(cmd)
		if len(again) != len(first) {
			t.Fatalf("run %d: %d matches, want %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j].RuleID != first[j].RuleID {
				t.Fatalf("run %d: order changed", i)
			}
		}
	}
}
