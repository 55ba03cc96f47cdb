package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cobaltsec/preflight/internal/guard"
)

var checkExplain bool

var checkCmd = &cobra.Command{
	Use:   "check <command>",
	Short: "Evaluate a command without running it",
	Long: `Evaluate a shell command against the builtin packs and the script
pipeline, printing the verdict.

Exit codes: 0 for allow and warn, 2 for deny.

Examples:
  preflight check "git reset --hard"
  preflight check --explain 'python3 -c "import shutil; shutil.rmtree(d)"'
  preflight check --agent ci-bot "git clean -fdx"`,
	Args: cobra.MinimumNArgs(1),
	RunE: checkCommand,
}

func init() {
	checkCmd.Flags().BoolVar(&checkExplain, "explain", false, "List every match instead of just the governing one")
	rootCmd.AddCommand(checkCmd)
}

func checkCommand(cmd *cobra.Command, args []string) error {
	command := strings.Join(args, " ")
	ev, cfg, err := loadEvaluator()
	if err != nil {
		return err
	}

	if checkExplain {
		return explainCommand(ev, command)
	}

	dec := ev.Evaluate(command, currentAgent())
	logDecision(cfg, dec)
	printDecision(dec)
	if dec.Blocks() {
		os.Exit(2)
	}
	return nil
}

func explainCommand(ev *guard.Evaluator, command string) error {
	matches := ev.Explain(command, currentAgent())
	if len(matches) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, m := range matches {
		fmt.Printf("%-10s %s\n", m.Severity, m.RuleID)
		fmt.Printf("           %s\n", m.Reason)
		if m.Dynamic {
			fmt.Println("           target is computed at runtime")
		}
		if m.Suggestion != "" {
			fmt.Printf("           hint: %s\n", m.Suggestion)
		}
	}
	return nil
}

func printDecision(dec guard.Decision) {
	pretty := term.IsTerminal(int(os.Stdout.Fd()))
	switch dec.Action {
	case guard.ActionDeny:
		if pretty {
			fmt.Printf("❌ deny  %s [%s]\n", dec.RuleID, dec.Severity)
		} else {
			fmt.Printf("deny %s [%s]\n", dec.RuleID, dec.Severity)
		}
		fmt.Printf("   %s\n", dec.Reason)
		if dec.Suggestion != "" {
			fmt.Printf("   hint: %s\n", dec.Suggestion)
		}
	case guard.ActionWarn:
		if pretty {
			fmt.Printf("⚠️  warn  %s [%s]\n", dec.RuleID, dec.Severity)
		} else {
			fmt.Printf("warn %s [%s]\n", dec.RuleID, dec.Severity)
		}
		fmt.Printf("   %s\n", dec.Reason)
	default:
		msg := "allow"
		if dec.Allowlisted {
			msg = fmt.Sprintf("allow (allowlisted at %s scope)", dec.AllowlistScope)
		}
		if pretty {
			fmt.Printf("✅ %s\n", msg)
		} else {
			fmt.Println(msg)
		}
	}
	for _, d := range dec.Diagnostics {
		fmt.Fprintf(os.Stderr, "[preflight] %s stage: %s\n", d.Stage, d.Reason)
	}
}
