package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"weft/internal/config"
	"weft/internal/llm"
	"weft/internal/pipeline"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble [milestone-id]",
	Short: "Assemble the LLM context for a milestone or ad hoc task",
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkInitialized()
	},
	RunE: runAssemble,
}

func init() {
	assembleCmd.Flags().String("task", "", "assemble for an ad hoc task description instead of a milestone")
	assembleCmd.Flags().Bool("meta", false, "print assembly metadata after the context")
	assembleCmd.Flags().Bool("llm", false, "forward the assembled context to the configured model")
	assembleCmd.Flags().Bool("all", false, "assemble every milestone in the store")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	assembler, cleanup, err := newAssembler(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	all, _ := cmd.Flags().GetBool("all")
	if all {
		return runAssembleAll(cmd, assembler)
	}

	task, _ := cmd.Flags().GetString("task")
	var res *pipeline.Result
	switch {
	case task != "":
		res, err = assembler.Assemble("", task)
	case len(args) == 1:
		store, serr := openStore()
		if serr != nil {
			return serr
		}
		res, err = assembler.AssembleMilestone(store, args[0])
	default:
		return fmt.Errorf("give a milestone id or --task")
	}
	if err != nil {
		return err
	}

	fmt.Print(res.Context)

	if meta, _ := cmd.Flags().GetBool("meta"); meta {
		printMeta(res)
	}

	if useLLM, _ := cmd.Flags().GetBool("llm"); useLLM {
		client := llm.NewClient(cfg)
		answer, err := client.Generate(res.Context, res.Task)
		if err != nil {
			return fmt.Errorf("LLM call failed: %w", err)
		}
		fmt.Println("\n--- model response ---")
		fmt.Println(answer)
	}
	return nil
}

func runAssembleAll(cmd *cobra.Command, assembler *pipeline.Assembler) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	results, err := assembler.AssembleAll(context.Background(), store)
	if err != nil {
		return err
	}
	for _, res := range results {
		fmt.Printf("%-30s tier=%-12s tokens=%-6d symbols=%-4d %s\n",
			res.MilestoneID, res.Meta.Tier, res.Meta.TokensUsed,
			res.Meta.SymbolsProcessed, res.Duration.Round(0))
	}
	return nil
}

func printMeta(res *pipeline.Result) {
	fmt.Fprintln(os.Stderr, "\n--- metadata ---")
	fmt.Fprintf(os.Stderr, "tier:        %s\n", res.Meta.Tier)
	fmt.Fprintf(os.Stderr, "tokens used: %d\n", res.Meta.TokensUsed)
	fmt.Fprintf(os.Stderr, "symbols:     %d\n", res.Meta.SymbolsProcessed)
	fmt.Fprintf(os.Stderr, "primary:     %v\n", res.Primary)
	fmt.Fprintf(os.Stderr, "cached:      %v\n", res.FromCache)
	for _, e := range res.Meta.Escalations {
		fmt.Fprintf(os.Stderr, "escalated:   %s -> %s (%s)\n", e.From, e.To, e.Reason)
	}
}
