package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"weft/internal/config"
	"weft/internal/index"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "Show the relevance ranking for a task",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkInitialized()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		idx, err := index.Load(weftDir())
		if err != nil {
			return fmt.Errorf("no usable symbol index: %w", err)
		}

		task, _ := cmd.Flags().GetString("task")
		sel := cfg.Selector()

		ranked := sel.RankDetailed(task, idx.Names())
		names := make([]string, len(ranked))
		for i, r := range ranked {
			names[i] = r.Name
		}
		primary := make(map[string]bool)
		for _, p := range sel.PrimaryTargets(task, names) {
			primary[p] = true
		}

		if task == "" {
			fmt.Printf("%d symbols indexed (no task given, original order):\n", len(ranked))
		} else {
			fmt.Printf("Ranking for: %q\n\n", task)
		}
		for i, r := range ranked {
			marker := " "
			if primary[r.Name] {
				marker = "*"
			}
			fmt.Printf("%s %3d. %-40s score %d\n", marker, i+1, r.Name, r.Score)
		}
		if len(primary) > 0 {
			fmt.Println("\n* primary edit target")
		}
		return nil
	},
}

func init() {
	symbolsCmd.Flags().String("task", "", "task description to rank against")
}
