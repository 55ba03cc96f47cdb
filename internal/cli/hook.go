package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cobaltsec/preflight/internal/guard"
)

// hookInput covers the hook payloads of the supported IDEs.
// Claude Code sends: {"hook_event_name": "PreToolUse", "tool_name": "Bash", "tool_input": {"command": "..."}}
// Cursor sends:      {"command": "...", "cwd": "..."}
// Windsurf sends:    {"agent_action_name": "pre_run_command", "tool_info": {"command_line": "..."}}
type hookInput struct {
	// Claude Code fields
	HookEventName string          `json:"hook_event_name"`
	ToolName      string          `json:"tool_name"`
	ToolInput     claudeToolInput `json:"tool_input"`

	// Cursor fields
	Command string `json:"command"`
	Cwd     string `json:"cwd"`

	// Windsurf fields
	AgentActionName string   `json:"agent_action_name"`
	ToolInfo        toolInfo `json:"tool_info"`
}

type claudeToolInput struct {
	Command string `json:"command"`
}

type toolInfo struct {
	CommandLine string `json:"command_line"`
	Cwd         string `json:"cwd"`
}

// cursorHookOutput is the JSON response Cursor expects from hook scripts.
type cursorHookOutput struct {
	Continue     bool   `json:"continue"`
	Permission   string `json:"permission"`
	UserMessage  string `json:"user_message,omitempty"`
	AgentMessage string `json:"agent_message,omitempty"`
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Pre-execution hook handler for agent IDE integration",
	Long: `Reads a hook JSON payload from stdin, evaluates the shell command, and
responds in the caller's protocol. The IDE is detected from the payload
shape:
  Claude Code: blocks Bash tool calls with exit code 2
  Cursor:      responds with JSON permission allow/deny
  Windsurf:    blocks pre_run_command actions with exit code 2

Every internal failure fails open: the hook never blocks a command it
could not evaluate, it reports the problem on stderr instead.`,
	RunE: hookCommand,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func hookCommand(cmd *cobra.Command, args []string) error {
	if os.Getenv("PREFLIGHT_BYPASS") == "1" {
		data, _ := io.ReadAll(os.Stdin)
		var input hookInput
		if err := json.Unmarshal(data, &input); err == nil && input.Command != "" {
			outputCursorAllow()
		}
		return nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	var input hookInput
	if err := json.Unmarshal(data, &input); err != nil {
		// Unparseable input fails open.
		fmt.Fprintf(os.Stderr, "[preflight] warning: could not parse hook input: %v\n", err)
		return nil
	}

	switch {
	case input.HookEventName != "":
		return handleClaudeCodeHook(input)
	case input.Command != "":
		return handleCursorHook(input)
	case input.AgentActionName == "pre_run_command":
		return handleWindsurfHook(input)
	default:
		// Unsupported hook events pass through.
		return nil
	}
}

// evaluateHook is the shared evaluation path for all IDE hooks. The error
// return means "could not evaluate"; callers fail open on it.
func evaluateHook(command string) (guard.Decision, error) {
	ev, cfg, err := loadEvaluator()
	if err != nil {
		return guard.Decision{}, err
	}
	dec := ev.Evaluate(command, currentAgent())
	logDecision(cfg, dec)
	for _, d := range dec.Diagnostics {
		fmt.Fprintf(os.Stderr, "[preflight] %s stage: %s\n", d.Stage, d.Reason)
	}
	return dec, nil
}

// handleClaudeCodeHook processes PreToolUse events. Only Bash tool calls
// are evaluated; deny prints the reason to stdout and exits 2.
func handleClaudeCodeHook(input hookInput) error {
	if input.ToolName != "Bash" {
		return nil
	}
	command := input.ToolInput.Command
	if command == "" {
		return nil
	}
	dec, err := evaluateHook(command)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[preflight] warning: %v\n", err)
		return nil
	}
	if dec.Blocks() {
		fmt.Printf("Blocked by preflight: %s [%s]\n%s\n", dec.RuleID, dec.Severity, dec.Reason)
		if dec.Suggestion != "" {
			fmt.Println(dec.Suggestion)
		}
		os.Exit(2)
	}
	if dec.Action == guard.ActionWarn {
		fmt.Fprintf(os.Stderr, "[preflight] warning: %s: %s\n", dec.RuleID, dec.Reason)
	}
	return nil
}

// handleCursorHook responds with the permission JSON Cursor expects.
func handleCursorHook(input hookInput) error {
	command := input.Command
	if command == "" {
		outputCursorAllow()
		return nil
	}
	dec, err := evaluateHook(command)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[preflight] warning: %v\n", err)
		outputCursorAllow()
		return nil
	}
	if dec.Blocks() {
		out := cursorHookOutput{
			Continue:     true,
			Permission:   "deny",
			UserMessage:  "Blocked by preflight: " + dec.Reason,
			AgentMessage: fmt.Sprintf("%s [%s]: %s", dec.RuleID, dec.Severity, dec.Reason),
		}
		data, _ := json.Marshal(out)
		fmt.Println(string(data))
		return nil
	}
	outputCursorAllow()
	return nil
}

func outputCursorAllow() {
	data, _ := json.Marshal(cursorHookOutput{Continue: true, Permission: "allow"})
	fmt.Println(string(data))
}

// handleWindsurfHook blocks pre_run_command actions with exit code 2.
func handleWindsurfHook(input hookInput) error {
	command := input.ToolInfo.CommandLine
	if command == "" {
		return nil
	}
	dec, err := evaluateHook(command)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[preflight] warning: %v\n", err)
		return nil
	}
	if dec.Blocks() {
		fmt.Fprintf(os.Stderr, "Blocked by preflight: %s [%s]\n%s\n", dec.RuleID, dec.Severity, dec.Reason)
		os.Exit(2)
	}
	return nil
}
