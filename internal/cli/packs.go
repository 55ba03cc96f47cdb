package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cobaltsec/preflight/internal/pack"
)

var packsCmd = &cobra.Command{
	Use:   "packs",
	Short: "Inspect the builtin detection packs",
	Long: `List the builtin detection packs and their rules.

Examples:
  preflight packs                # List packs
  preflight packs show git       # Show the rules of one pack`,
	RunE: packsList,
}

var packsShowCmd = &cobra.Command{
	Use:   "show <pack-id>",
	Short: "Show the rules of one pack",
	Args:  cobra.ExactArgs(1),
	RunE:  packsShow,
}

func init() {
	packsCmd.AddCommand(packsShowCmd)
	rootCmd.AddCommand(packsCmd)
}

func packsList(cmd *cobra.Command, args []string) error {
	for _, p := range pack.DefaultRegistry().Packs() {
		fmt.Printf("%-18s %-12s %d rules  %s\n", p.ID, keywordSummary(p), len(p.DestructivePatterns), p.Description)
	}
	return nil
}

func keywordSummary(p *pack.Pack) string {
	if len(p.Keywords) == 1 {
		return p.Keywords[0]
	}
	return fmt.Sprintf("%d keywords", len(p.Keywords))
}

func packsShow(cmd *cobra.Command, args []string) error {
	p := pack.DefaultRegistry().Pack(args[0])
	if p == nil {
		return fmt.Errorf("unknown pack %q", args[0])
	}
	fmt.Printf("%s (%s)\n%s\n", p.Name, p.ID, p.Description)
	fmt.Printf("keywords: %v\n\n", p.Keywords)
	fmt.Println("destructive rules:")
	for _, pat := range p.DestructivePatterns {
		fmt.Printf("  %-28s %-8s %s\n", p.RuleID(pat.Name), pat.Severity, pat.Reason)
	}
	if len(p.SafePatterns) > 0 {
		fmt.Println("\nsafe patterns:")
		for _, sp := range p.SafePatterns {
			fmt.Printf("  %-28s %s\n", sp.ID, sp.Description)
		}
	}
	return nil
}
