package pack

import "testing"

// matchOne asserts a command produces exactly one match with the given rule id.
func matchOne(t *testing.T, cmd, ruleID string) Match {
	t.Helper()
	ms := DefaultRegistry().MatchCommand(cmd)
	if len(ms) != 1 {
		t.Fatalf("%q: got %d matches (%+v), want 1", cmd, len(ms), ms)
	}
	if ms[0].RuleID != ruleID {
		t.Fatalf("%q: rule = %q, want %q", cmd, ms[0].RuleID, ruleID)
	}
	return ms[0]
}

func matchNone(t *testing.T, cmd string) {
	t.Helper()
	if ms := DefaultRegistry().MatchCommand(cmd); len(ms) != 0 {
		t.Fatalf("%q: unexpected matches %+v", cmd, ms)
	}
}

func TestGitPack(t *testing.T) {
	tests := []struct {
		cmd    string
		ruleID string // "" means no match expected
		sev    Severity
	}{
		{"git reset --hard HEAD~1", "git.git_reset_hard", SeverityHigh},
		{"git reset --hard origin/main", "git.git_reset_hard", SeverityHigh},
		{"git clean -fd", "git.git_clean_force", SeverityHigh},
		{"git checkout -- .", "git.git_checkout_discard", SeverityMedium},
		{"git checkout .", "git.git_checkout_discard", SeverityMedium},
		{"git push -f origin main", "git.git_push_force", SeverityHigh},
		{"git push origin main --force", "git.git_push_force", SeverityHigh},
		{"git branch -D feature/old", "git.git_branch_delete_force", SeverityMedium},
		{"git stash drop", "git.git_stash_drop", SeverityMedium},
		{"git stash clear", "git.git_stash_drop", SeverityMedium},
		{"git reflog expire --expire=now --all", "git.git_reflog_expire", SeverityHigh},

		{"git status", "", 0},
		{"git log --oneline -5", "", 0},
		{"git diff --stat", "", 0},
		{"git reset --soft HEAD~1", "", 0},
		{"git clean -fdn", "", 0},
		{"git push --force-with-lease origin main", "", 0},
		{"git checkout feature/new", "", 0},
		{"git checkout -b fix/typo", "", 0},
	}
	for _, tt := range tests {
		if tt.ruleID == "" {
			matchNone(t, tt.cmd)
			continue
		}
		m := matchOne(t, tt.cmd, tt.ruleID)
		if m.Severity != tt.sev {
			t.Errorf("%q: severity = %v, want %v", tt.cmd, m.Severity, tt.sev)
		}
	}
}

func TestFilesystemPack(t *testing.T) {
	tests := []struct {
		cmd     string
		ruleID  string
		sev     Severity
		dynamic bool
	}{
		{"rm -rf /tmp/build", "filesystem.rm_rf", SeverityHigh, false},
		{"rm -fr ./node_modules", "filesystem.rm_rf", SeverityHigh, false},
		{"rm -rf /", "filesystem.rm_rf.catastrophic", SeverityCritical, false},
		{"rm -rf ~", "filesystem.rm_rf.catastrophic", SeverityCritical, false},
		{"rm -rf $HOME", "filesystem.rm_rf.catastrophic", SeverityCritical, false},
		{"rm -rf /etc", "filesystem.rm_rf.catastrophic", SeverityCritical, false},
		{"rm -rf $TARGET", "filesystem.rm_rf", SeverityHigh, true},
		{"rm -rf $(git rev-parse --show-toplevel)", "filesystem.rm_rf", SeverityHigh, true},
		{"dd if=/dev/zero of=/dev/sda bs=1M", "filesystem.dd_block_device", SeverityCritical, false},
		{"mkfs.ext4 /dev/sdb1", "filesystem.mkfs", SeverityCritical, false},
		{"shred -u notes.txt", "filesystem.shred", SeverityMedium, false},
		{"truncate -s 0 app.log", "filesystem.truncate_zero", SeverityMedium, false},
		{"find build -name '*.o' -delete", "filesystem.find_delete", SeverityMedium, false},
		{"find /tmp/cache -type f -exec rm {} +", "filesystem.find_exec_rm", SeverityMedium, false},
	}
	for _, tt := range tests {
		m := matchOne(t, tt.cmd, tt.ruleID)
		if m.Severity != tt.sev {
			t.Errorf("%q: severity = %v, want %v", tt.cmd, m.Severity, tt.sev)
		}
		if m.Dynamic != tt.dynamic {
			t.Errorf("%q: dynamic = %v, want %v", tt.cmd, m.Dynamic, tt.dynamic)
		}
	}

	// Interactive removes prompt per file; the safe span suppresses the
	// recursive-force rule on the same segment.
	matchNone(t, "rm -rfi /tmp/scratch")
	matchNone(t, "rm --help")
	matchNone(t, "ls -la /tmp")
	matchNone(t, "find . -name '*.log' -print")
}

func TestKafkaPack(t *testing.T) {
	tests := []struct {
		cmd    string
		ruleID string
		sev    Severity
	}{
		{"kafka-topics.sh --bootstrap-server localhost:9092 --delete --topic orders", "messaging.kafka.topics_delete", SeverityHigh},
		{"kafka-topics --bootstrap-server kafka:9092 --delete --topic events", "messaging.kafka.topics_delete", SeverityHigh},
		{"kafka-consumer-groups.sh --bootstrap-server localhost:9092 --delete --group etl", "messaging.kafka.consumer_groups_delete", SeverityHigh},
		{"kafka-consumer-groups.sh --bootstrap-server localhost:9092 --group etl --reset-offsets --to-earliest --topic orders --execute", "messaging.kafka.reset_offsets", SeverityMedium},
		{"kafka-configs.sh --bootstrap-server localhost:9092 --alter --entity-type topics --entity-name orders --delete-config retention.ms", "messaging.kafka.configs_delete", SeverityMedium},
		{"kafka-acls.sh --bootstrap-server localhost:9092 --remove --allow-principal User:etl", "messaging.kafka.acls_remove", SeverityHigh},
		{"kafka-delete-records.sh --bootstrap-server localhost:9092 --offset-json-file offsets.json", "messaging.kafka.delete_records", SeverityHigh},
		{"rpk topic delete orders", "messaging.kafka.rpk_topic_delete", SeverityHigh},
	}
	for _, tt := range tests {
		m := matchOne(t, tt.cmd, tt.ruleID)
		if m.Severity != tt.sev {
			t.Errorf("%q: severity = %v, want %v", tt.cmd, m.Severity, tt.sev)
		}
	}

	matchNone(t, "kafka-topics.sh --bootstrap-server localhost:9092 --list")
	matchNone(t, "kafka-consumer-groups.sh --bootstrap-server localhost:9092 --describe --group etl")
	matchNone(t, "kafka-consumer-groups.sh --bootstrap-server localhost:9092 --group etl --reset-offsets --to-earliest --topic orders --dry-run")
}

func TestMySQLPack(t *testing.T) {
	tests := []struct {
		cmd    string
		ruleID string
		sev    Severity
	}{
		{`mysql -e "DROP DATABASE staging"`, "database.mysql.drop_database", SeverityCritical},
		{`mysql -u root -e "drop table users"`, "database.mysql.drop_table", SeverityHigh},
		{`mysql -e "TRUNCATE TABLE sessions"`, "database.mysql.truncate_table", SeverityHigh},
		{`mysql -e "DELETE FROM users"`, "database.mysql.delete_without_where", SeverityHigh},
		{"mysqladmin -u root drop staging", "database.mysql.mysqladmin_drop", SeverityCritical},
	}
	for _, tt := range tests {
		m := matchOne(t, tt.cmd, tt.ruleID)
		if m.Severity != tt.sev {
			t.Errorf("%q: severity = %v, want %v", tt.cmd, m.Severity, tt.sev)
		}
	}

	matchNone(t, `mysql -e "DELETE FROM users WHERE id = 42"`)
	matchNone(t, `mysql -e "SELECT count(*) FROM users"`)
	matchNone(t, `mysql -e "SHOW TABLES"`)
	matchNone(t, "mysqldump --all-databases > backup.sql")
}

func TestGitHubPack(t *testing.T) {
	tests := []struct {
		cmd    string
		ruleID string
		sev    Severity
	}{
		{"gh repo delete cobaltsec/old-repo --yes", "platform.github.repo_delete", SeverityCritical},
		{"gh release delete v0.1.0 --yes", "platform.github.release_delete", SeverityHigh},
		{"gh secret delete DEPLOY_KEY", "platform.github.secret_delete", SeverityHigh},
		{"gh repo archive acme/legacy", "platform.github.repo_archive", SeverityMedium},
		{"gh api -X DELETE /repos/acme/legacy", "platform.github.api_delete", SeverityHigh},
		{"gh api --method DELETE /repos/acme/legacy/releases/1", "platform.github.api_delete", SeverityHigh},
	}
	for _, tt := range tests {
		m := matchOne(t, tt.cmd, tt.ruleID)
		if m.Severity != tt.sev {
			t.Errorf("%q: severity = %v, want %v", tt.cmd, m.Severity, tt.sev)
		}
	}

	matchNone(t, "gh pr list --state open")
	matchNone(t, "gh repo view acme/legacy")
	matchNone(t, "gh release list")
}

func TestHAProxyPack(t *testing.T) {
	tests := []struct {
		cmd    string
		ruleID string
		sev    Severity
	}{
		{"haproxy -sf $(cat /run/haproxy.pid)", "loadbalancer.haproxy.soft_stop", SeverityHigh},
		{"haproxy -st $(cat /run/haproxy.pid)", "loadbalancer.haproxy.hard_stop", SeverityHigh},
		{"systemctl stop haproxy", "loadbalancer.haproxy.systemctl_stop", SeverityHigh},
		{"service haproxy stop", "loadbalancer.haproxy.service_stop", SeverityHigh},
		{"echo 'disable server backend/web1' | socat stdio /var/run/haproxy.sock", "loadbalancer.haproxy.socat_disable_server", SeverityHigh},
		{"echo 'disable frontend http-in' | socat stdio /var/run/haproxy.sock", "loadbalancer.haproxy.socat_disable_frontend", SeverityHigh},
		{"echo 'shutdown frontend http-in' | socat stdio /var/run/haproxy.sock", "loadbalancer.haproxy.socat_shutdown_frontend", SeverityHigh},
		{"echo 'shutdown sessions server backend/web1' | socat stdio /var/run/haproxy.sock", "loadbalancer.haproxy.socat_shutdown_sessions", SeverityMedium},
		{"rm /etc/haproxy/haproxy.cfg", "loadbalancer.haproxy.config_delete", SeverityHigh},
	}
	for _, tt := range tests {
		m := matchOne(t, tt.cmd, tt.ruleID)
		if m.Severity != tt.sev {
			t.Errorf("%q: severity = %v, want %v", tt.cmd, m.Severity, tt.sev)
		}
	}

	matchNone(t, "haproxy -c -f /etc/haproxy/haproxy.cfg")
	matchNone(t, "haproxy -vv")
	matchNone(t, "systemctl status haproxy")
	matchNone(t, "service haproxy status")
	matchNone(t, "echo 'show stat' | socat stdio /var/run/haproxy.sock")
	matchNone(t, "echo 'show servers state' | socat stdio /var/run/haproxy.sock")
}

func TestCompoundCommandMatchesMultiplePacks(t *testing.T) {
	ms := DefaultRegistry().MatchCommand("git reset --hard && rm -rf /")
	if len(ms) < 2 {
		t.Fatalf("got %d matches, want at least 2: %+v", len(ms), ms)
	}
	found := map[string]bool{}
	for _, m := range ms {
		found[m.RuleID] = true
	}
	if !found["git.git_reset_hard"] || !found["filesystem.rm_rf.catastrophic"] {
		t.Errorf("missing expected rules in %+v", ms)
	}
}
