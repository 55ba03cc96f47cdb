package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cobaltsec/preflight/internal/guard"
	"github.com/cobaltsec/preflight/internal/logger"
)

var (
	logFilterAction string
	logFilterAgent  string
	logLast         int
	logSummary      bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View and filter the decision log",
	Long: `View the preflight decision log with filtering and summary options.

Examples:
  preflight log                    # Show all entries
  preflight log --last 20          # Show last 20 entries
  preflight log --action deny      # Show only denied commands
  preflight log --agent ci-bot     # Show one agent's commands
  preflight log --summary          # Show summary statistics`,
	RunE: logCommand,
}

func init() {
	logCmd.Flags().StringVar(&logFilterAction, "action", "", "Filter by action (allow, warn, deny)")
	logCmd.Flags().StringVar(&logFilterAgent, "agent-id", "", "Filter by agent id")
	logCmd.Flags().IntVar(&logLast, "last", 0, "Show last N entries")
	logCmd.Flags().BoolVar(&logSummary, "summary", false, "Show summary statistics")
	rootCmd.AddCommand(logCmd)
}

func logCommand(cmd *cobra.Command, args []string) error {
	path := logPath
	if path == "" {
		cfg, err := guard.LoadConfig(mustConfigPath())
		if err != nil {
			return err
		}
		path, err = cfg.LogPathOrDefault()
		if err != nil {
			return err
		}
	}

	events, err := readDecisionLog(path)
	if err != nil {
		return fmt.Errorf("read decision log: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("No decision log entries found.")
		return nil
	}

	filtered := filterEvents(events)
	if logLast > 0 && logLast < len(filtered) {
		filtered = filtered[len(filtered)-logLast:]
	}

	if logSummary {
		printSummary(events)
		return nil
	}
	printEvents(filtered)
	return nil
}

func mustConfigPath() string {
	if configPath != "" {
		return configPath
	}
	path, err := guard.ConfigPath()
	if err != nil {
		return ""
	}
	return path
}

func readDecisionLog(path string) ([]logger.DecisionEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var events []logger.DecisionEvent
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event logger.DecisionEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue // skip malformed lines
		}
		events = append(events, event)
	}
	return events, scanner.Err()
}

func filterEvents(events []logger.DecisionEvent) []logger.DecisionEvent {
	if logFilterAction == "" && logFilterAgent == "" {
		return events
	}
	var filtered []logger.DecisionEvent
	for _, e := range events {
		if logFilterAction != "" && !strings.EqualFold(e.Action, logFilterAction) {
			continue
		}
		if logFilterAgent != "" && e.Agent != logFilterAgent {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

func printEvents(events []logger.DecisionEvent) {
	for _, e := range events {
		line := fmt.Sprintf("%-5s %s %s", e.Action, formatTimestamp(e.Timestamp), e.Command)
		if e.Agent != "" {
			line += "  (" + e.Agent + ")"
		}
		fmt.Println(line)
		if e.RuleID != "" {
			fmt.Printf("      rule: %s [%s]  %s\n", e.RuleID, e.Severity, e.Reason)
		}
		for _, d := range e.Diagnostics {
			fmt.Printf("      diagnostic: %s: %s\n", d.Stage, d.Reason)
		}
	}
}

func printSummary(all []logger.DecisionEvent) {
	counts := map[string]int{}
	allowlisted := 0
	diagnostics := 0
	for _, e := range all {
		counts[e.Action]++
		if e.Allowlisted {
			allowlisted++
		}
		diagnostics += len(e.Diagnostics)
	}
	fmt.Printf("total:        %d\n", len(all))
	fmt.Printf("allow:        %d (%d allowlisted)\n", counts["allow"], allowlisted)
	fmt.Printf("warn:         %d\n", counts["warn"])
	fmt.Printf("deny:         %d\n", counts["deny"])
	fmt.Printf("diagnostics:  %d\n", diagnostics)
	if len(all) > 0 {
		fmt.Printf("first event:  %s\n", formatTimestamp(all[0].Timestamp))
		fmt.Printf("last event:   %s\n", formatTimestamp(all[len(all)-1].Timestamp))
	}

	var denied []logger.DecisionEvent
	for _, e := range all {
		if e.Action == "deny" {
			denied = append(denied, e)
		}
	}
	if len(denied) > 0 {
		fmt.Println("\nrecent denials:")
		limit := len(denied)
		if limit > 10 {
			limit = 10
		}
		for _, e := range denied[len(denied)-limit:] {
			fmt.Printf("  %s %s (%s)\n", formatTimestamp(e.Timestamp), e.Command, e.RuleID)
		}
	}
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
