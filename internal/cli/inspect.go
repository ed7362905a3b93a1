package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"weft/internal/config"
	"weft/internal/tui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [milestone-id]",
	Short: "Interactively inspect an assembled context",
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkInitialized()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		assembler, cleanup, err := newAssembler(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		task, _ := cmd.Flags().GetString("task")
		milestoneID := ""
		if len(args) == 1 {
			milestoneID = args[0]
			store, err := openStore()
			if err != nil {
				return err
			}
			m, err := store.Get(milestoneID)
			if err != nil {
				return err
			}
			task = m.Description
			if task == "" {
				task = m.Title
			}
		}
		if task == "" {
			return fmt.Errorf("give a milestone id or --task")
		}

		model := tui.NewModel(assembler, milestoneID, task, cfg.Assembly.MaxTokens)
		_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	inspectCmd.Flags().String("task", "", "inspect an ad hoc task instead of a milestone")
}
