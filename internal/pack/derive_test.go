package pack

import "testing"

func TestClassifyTarget(t *testing.T) {
	tests := []struct {
		arg  string
		want TargetClass
	}{
		{"/", TargetCatastrophic},
		{"//", TargetCatastrophic},
		{"/*", TargetCatastrophic},
		{"~", TargetCatastrophic},
		{"~/", TargetCatastrophic},
		{"$HOME", TargetCatastrophic},
		{"'$HOME'", TargetCatastrophic},
		{"/etc", TargetCatastrophic},
		{"/var/", TargetCatastrophic},
		{"/boot", TargetCatastrophic},
		{"\"/\"", TargetCatastrophic},

		{"$TARGET", TargetDynamic},
		{"${DIR}/build", TargetDynamic},
		{"$(pwd)", TargetDynamic},
		{"`pwd`", TargetDynamic},
		{"\"$HOME/tmp\"", TargetDynamic},

		{"/tmp/build", TargetLiteral},
		{"./node_modules", TargetLiteral},
		{"'/tmp/cache'", TargetLiteral},
		{"/etc/nginx/sites-enabled/old", TargetLiteral},
		{"~/projects/scratch", TargetLiteral},
		{"", TargetLiteral},
	}
	for _, tt := range tests {
		if got := ClassifyTarget(tt.arg); got != tt.want {
			t.Errorf("ClassifyTarget(%q) = %v, want %v", tt.arg, got, tt.want)
		}
	}
}

func TestDeriveRuleID(t *testing.T) {
	tests := []struct {
		class   TargetClass
		wantID  string
		wantSev Severity
		wantDyn bool
	}{
		{TargetCatastrophic, "filesystem.rm_rf.catastrophic", SeverityCritical, false},
		{TargetDynamic, "filesystem.rm_rf", SeverityHigh, true},
		{TargetLiteral, "filesystem.rm_rf", SeverityHigh, false},
	}
	for _, tt := range tests {
		id, sev, dyn := deriveRuleID("filesystem.rm_rf", SeverityHigh, tt.class)
		if id != tt.wantID || sev != tt.wantSev || dyn != tt.wantDyn {
			t.Errorf("deriveRuleID(class=%v) = (%q, %v, %v), want (%q, %v, %v)",
				tt.class, id, sev, dyn, tt.wantID, tt.wantSev, tt.wantDyn)
		}
	}
}

func TestSeverityRoundTrip(t *testing.T) {
	for _, s := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		got, err := ParseSeverity(s.String())
		if err != nil {
			t.Fatalf("ParseSeverity(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("round trip %v -> %v", s, got)
		}
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Error("expected error for unknown severity")
	}
}
