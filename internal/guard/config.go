package guard

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cobaltsec/preflight/internal/heredoc"
	"github.com/cobaltsec/preflight/internal/pack"
)

const (
	DefaultConfigDir  = ".preflight"
	DefaultConfigFile = "config.yaml"
	DefaultLogFile    = "decisions.jsonl"
)

// Config is the engine configuration. Malformed configuration is a startup
// error, never a silent fallback: a guard running with half a config is
// worse than one that refuses to start.
type Config struct {
	// FailOn is the severity that triggers a Deny. Matches below it Warn.
	FailOn string `yaml:"fail_on"`
	// DisabledPacks are pack ids removed from matching for every agent.
	DisabledPacks []string `yaml:"disabled_packs"`

	Limits struct {
		MaxBodyBytes int `yaml:"max_body_bytes"`
		MaxBodyLines int `yaml:"max_body_lines"`
		MaxHeredocs  int `yaml:"max_heredocs"`
	} `yaml:"limits"`

	Budgets struct {
		// ScriptMillis bounds the script tiers on their own; TotalMillis
		// bounds the whole evaluation and clamps whatever time is left
		// for the script tiers when the pack tier ran long.
		ScriptMillis int `yaml:"script_ms"`
		TotalMillis  int `yaml:"total_ms"`
	} `yaml:"budgets"`

	Agents []AgentProfile `yaml:"agents"`

	Allowlist map[string][]AllowEntry `yaml:"allowlist"`

	LogPath string `yaml:"log_path"`

	failOn pack.Severity
}

// DefaultConfig matches the shipped behavior: deny at high, builtin packs,
// default extraction limits.
func DefaultConfig() *Config {
	cfg := &Config{FailOn: "high", failOn: pack.SeverityHigh}
	lim := heredoc.DefaultLimits()
	cfg.Limits.MaxBodyBytes = lim.MaxBodyBytes
	cfg.Limits.MaxBodyLines = lim.MaxBodyLines
	cfg.Limits.MaxHeredocs = lim.MaxHeredocs
	cfg.Budgets.ScriptMillis = 10
	cfg.Budgets.TotalMillis = 15
	return cfg
}

// LoadConfig reads the YAML config at path, filling unset fields with
// defaults. A missing file yields the default config; a malformed file or
// an invalid field is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg.finish()
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.FailOn == "" {
		cfg.FailOn = "high"
	}
	def := heredoc.DefaultLimits()
	if cfg.Limits.MaxBodyBytes <= 0 {
		cfg.Limits.MaxBodyBytes = def.MaxBodyBytes
	}
	if cfg.Limits.MaxBodyLines <= 0 {
		cfg.Limits.MaxBodyLines = def.MaxBodyLines
	}
	if cfg.Limits.MaxHeredocs <= 0 {
		cfg.Limits.MaxHeredocs = def.MaxHeredocs
	}
	if cfg.Budgets.ScriptMillis <= 0 {
		cfg.Budgets.ScriptMillis = 10
	}
	if cfg.Budgets.TotalMillis <= 0 {
		cfg.Budgets.TotalMillis = 15
	}
	return cfg.finish()
}

func (c *Config) finish() (*Config, error) {
	sev, err := pack.ParseSeverity(c.FailOn)
	if err != nil {
		return nil, fmt.Errorf("fail_on: %w", err)
	}
	c.failOn = sev
	for scope := range c.Allowlist {
		if _, err := ParseScope(scope); err != nil {
			return nil, err
		}
	}
	seen := map[string]bool{}
	for _, a := range c.Agents {
		if a.AgentID == "" {
			return nil, fmt.Errorf("agent profile without id")
		}
		if seen[a.AgentID] {
			return nil, fmt.Errorf("duplicate agent profile %q", a.AgentID)
		}
		seen[a.AgentID] = true
		switch a.trust() {
		case TrustLow, TrustMedium, TrustHigh:
		default:
			return nil, fmt.Errorf("agent %q: unknown trust level %q", a.AgentID, a.Trust)
		}
	}
	return c, nil
}

// FailOnSeverity returns the parsed deny threshold.
func (c *Config) FailOnSeverity() pack.Severity { return c.failOn }

// ExtractLimits returns the configured tier-2 limits.
func (c *Config) ExtractLimits() heredoc.Limits {
	return heredoc.Limits{
		MaxBodyBytes: c.Limits.MaxBodyBytes,
		MaxBodyLines: c.Limits.MaxBodyLines,
		MaxHeredocs:  c.Limits.MaxHeredocs,
	}
}

// ScriptBudget returns the wall-clock budget for the script tiers.
func (c *Config) ScriptBudget() time.Duration {
	return time.Duration(c.Budgets.ScriptMillis) * time.Millisecond
}

// TotalBudget returns the wall-clock budget for one whole evaluation.
func (c *Config) TotalBudget() time.Duration {
	return time.Duration(c.Budgets.TotalMillis) * time.Millisecond
}

// Profile resolves the agent id against configured profiles. Unknown
// agents get a medium-trust profile carrying just the id.
func (c *Config) Profile(agentID string) AgentProfile {
	for _, a := range c.Agents {
		if a.AgentID == agentID {
			return a
		}
	}
	return AgentProfile{AgentID: agentID}
}

// BuildAllowlist merges the config's scoped entries into an Allowlist.
func (c *Config) BuildAllowlist() (*Allowlist, error) {
	al := NewAllowlist()
	for scopeName, entries := range c.Allowlist {
		scope, err := ParseScope(scopeName)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.RuleID == "" && e.Command == "" {
				return nil, fmt.Errorf("allowlist %s: entry with neither rule nor command", scopeName)
			}
			al.Add(scope, e)
		}
	}
	// Profile-carried entries land at agent scope, bound to their agent.
	for _, a := range c.Agents {
		for _, e := range a.Allow {
			if e.RuleID == "" && e.Command == "" {
				return nil, fmt.Errorf("agent %s: allow entry with neither rule nor command", a.AgentID)
			}
			if len(e.Agents) == 0 {
				e.Agents = []string{a.AgentID}
			}
			al.Add(ScopeAgent, e)
		}
	}
	return al, nil
}

// ConfigPath resolves the default config location under the user's home.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// LogPathOrDefault resolves the decision log location.
func (c *Config) LogPathOrDefault() (string, error) {
	if c.LogPath != "" {
		return c.LogPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, DefaultConfigDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultLogFile), nil
}
