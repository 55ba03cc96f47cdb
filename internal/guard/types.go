package guard

import (
	"time"

	"github.com/cobaltsec/preflight/internal/pack"
)

// Action is the final verdict for a command.
type Action string

const (
	ActionAllow Action = "allow"
	ActionWarn  Action = "warn"
	ActionDeny  Action = "deny"
)

// TrustLevel shifts the warn band for an agent. Low trust turns warnings
// into denials, high trust turns them into logged allows. Denials from
// critical or threshold-exceeding matches are never relaxed by trust.
type TrustLevel string

const (
	TrustLow    TrustLevel = "low"
	TrustMedium TrustLevel = "medium"
	TrustHigh   TrustLevel = "high"
)

// AgentProfile identifies the calling agent and its per-agent policy
// adjustments. The zero value is an anonymous medium-trust agent.
type AgentProfile struct {
	AgentID       string     `yaml:"id"`
	Trust         TrustLevel `yaml:"trust"`
	DisabledPacks []string   `yaml:"disabled_packs"`
	// ExtraPacks re-enables packs for this agent that the global config
	// disabled.
	ExtraPacks []string `yaml:"extra_packs"`
	// Allow holds additional agent-scope allowlist entries carried on the
	// profile itself.
	Allow []AllowEntry `yaml:"allow"`
	// DisabledAllowlist makes every allowlist entry inert for this agent.
	DisabledAllowlist bool `yaml:"disabled_allowlist"`
}

func (p AgentProfile) trust() TrustLevel {
	if p.Trust == "" {
		return TrustMedium
	}
	return p.Trust
}

// Diagnostic records one recoverable pipeline failure that was handled
// fail-open. Stage names the tier that failed, Reason is human-readable.
type Diagnostic struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// Decision is the full outcome of evaluating one command. RuleID and the
// fields after it describe the governing match, when there is one.
type Decision struct {
	Action     Action        `json:"action"`
	Command    string        `json:"command"`
	Agent      string        `json:"agent,omitempty"`
	RuleID     string        `json:"rule_id,omitempty"`
	PackID     string        `json:"pack_id,omitempty"`
	Severity   pack.Severity `json:"-"`
	Reason     string        `json:"reason,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	// Dynamic marks a verdict downgraded because the destructive argument
	// is only known at runtime.
	Dynamic bool `json:"dynamic,omitempty"`
	// Allowlisted is set when an allowlist entry suppressed a match;
	// AllowlistScope names the scope the entry came from.
	Allowlisted    bool   `json:"allowlisted,omitempty"`
	AllowlistScope string `json:"allowlist_scope,omitempty"`
	// Matches holds every pooled match, most severe first.
	Matches     []pack.Match  `json:"-"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty"`
	Elapsed     time.Duration `json:"-"`
}

// Blocks reports whether the decision stops execution.
func (d Decision) Blocks() bool {
	return d.Action == ActionDeny
}
