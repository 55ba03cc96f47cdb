package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cobaltsec/preflight/internal/guard"
	"github.com/cobaltsec/preflight/internal/logger"
	"github.com/cobaltsec/preflight/internal/pack"
)

var (
	configPath string
	logPath    string
	agentID    string
)

var rootCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Preflight - destructive command guard for AI agents",
	Long: `Preflight inspects shell commands before an AI coding agent runs them,
detecting destructive operations both in the command itself and in scripts
embedded via heredocs, inline interpreter flags, and pipes. Dangerous
commands are denied or flagged before they execute.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (default: ~/.preflight/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Path to decision log (default: ~/.preflight/decisions.jsonl)")
	rootCmd.PersistentFlags().StringVar(&agentID, "agent", "", "Agent identity for trust and allowlist scoping (default: $PREFLIGHT_AGENT)")
}

func Execute() error {
	return rootCmd.Execute()
}

// currentAgent resolves the agent identity from the flag or environment.
func currentAgent() string {
	if agentID != "" {
		return agentID
	}
	return os.Getenv("PREFLIGHT_AGENT")
}

// loadEvaluator builds the evaluator from the builtin packs and the user's
// config. Config problems are fatal here: commands that evaluate must not
// run with half a config.
func loadEvaluator() (*guard.Evaluator, *guard.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = guard.ConfigPath()
		if err != nil {
			return nil, nil, err
		}
	}
	cfg, err := guard.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	ev, err := guard.NewEvaluator(pack.DefaultRegistry(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return ev, cfg, nil
}

// logDecision appends the decision to the JSONL log. Logging failures are
// warnings, never a reason to change the verdict.
func logDecision(cfg *guard.Config, dec guard.Decision) {
	path := logPath
	if path == "" {
		var err error
		path, err = cfg.LogPathOrDefault()
		if err != nil {
			fmt.Fprintf(os.Stderr, "[preflight] warning: resolve log path: %v\n", err)
			return
		}
	}
	lg, err := logger.New(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[preflight] warning: open decision log: %v\n", err)
		return
	}
	defer func() { _ = lg.Close() }()
	if err := lg.LogDecision(dec); err != nil {
		fmt.Fprintf(os.Stderr, "[preflight] warning: write decision log: %v\n", err)
	}
}
