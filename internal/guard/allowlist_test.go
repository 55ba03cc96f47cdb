package guard

import "testing"

func TestAllowlistScopeOrdering(t *testing.T) {
	al := NewAllowlist()
	al.Add(ScopeSystem, AllowEntry{RuleID: "git.git_reset_hard", Note: "system"})
	al.Add(ScopeAgent, AllowEntry{RuleID: "git.git_reset_hard", Agents: []string{"ci-bot"}, Note: "agent"})

	e, scope, ok := al.Lookup("git.git_reset_hard", "", "ci-bot")
	if !ok || scope != ScopeAgent || e.Note != "agent" {
		t.Errorf("got %+v at %s, want agent entry", e, scope)
	}
	_, scope, ok = al.Lookup("git.git_reset_hard", "", "other")
	if !ok || scope != ScopeSystem {
		t.Errorf("fallback scope = %s, want system", scope)
	}
}

func TestAllowlistPackWildcard(t *testing.T) {
	al := NewAllowlist()
	al.Add(ScopeUser, AllowEntry{RuleID: "filesystem.*"})
	if _, _, ok := al.Lookup("filesystem.rm_rf", "", ""); !ok {
		t.Error("wildcard did not cover pack rule")
	}
	if _, _, ok := al.Lookup("git.git_reset_hard", "", ""); ok {
		t.Error("wildcard leaked into another pack")
	}
}

func TestAllowlistDerivedRules(t *testing.T) {
	al := NewAllowlist()
	al.Add(ScopeProject, AllowEntry{RuleID: "heredoc.python.os_system"})
	if _, _, ok := al.Lookup("heredoc.python.os_system.git_clean", "", ""); !ok {
		t.Error("entry did not cover payload-derived rule id")
	}

	// Catastrophic derivations need an explicit entry.
	al.Add(ScopeProject, AllowEntry{RuleID: "filesystem.rm_rf"})
	if _, _, ok := al.Lookup("filesystem.rm_rf.catastrophic", "", ""); ok {
		t.Error("base entry covered the catastrophic derivation")
	}
	al.Add(ScopeProject, AllowEntry{RuleID: "filesystem.rm_rf.catastrophic"})
	if _, _, ok := al.Lookup("filesystem.rm_rf.catastrophic", "", ""); !ok {
		t.Error("explicit catastrophic entry not honored")
	}
}

func TestAllowlistExactCommand(t *testing.T) {
	al := NewAllowlist()
	al.Add(ScopeProject, AllowEntry{Command: "git clean -fdx"})
	if _, _, ok := al.Lookup("git.git_clean_force", "git clean -fdx", ""); !ok {
		t.Error("exact command not covered")
	}
	if _, _, ok := al.Lookup("git.git_clean_force", "git clean -f", ""); ok {
		t.Error("different command covered")
	}
}

func TestNilAllowlistLookup(t *testing.T) {
	var al *Allowlist
	if _, _, ok := al.Lookup("git.git_reset_hard", "", ""); ok {
		t.Error("nil allowlist returned a hit")
	}
}
