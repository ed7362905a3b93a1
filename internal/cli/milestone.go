package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"weft/internal/milestone"
)

var milestoneCmd = &cobra.Command{
	Use:   "milestone",
	Short: "Manage the milestone store",
}

var milestoneAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a milestone",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkInitialized()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		title, _ := cmd.Flags().GetString("title")
		desc, _ := cmd.Flags().GetString("desc")
		if title == "" {
			return fmt.Errorf("--title is required")
		}

		m, err := store.Save(milestone.Milestone{Title: title, Description: desc})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Saved milestone %q\n", m.ID)
		return nil
	},
}

var milestoneListCmd = &cobra.Command{
	Use:   "list",
	Short: "List milestones",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkInitialized()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		milestones, err := store.List()
		if err != nil {
			return err
		}
		if len(milestones) == 0 {
			fmt.Println("No milestones yet. Add one with: weft milestone add --title \"...\"")
			return nil
		}
		for _, m := range milestones {
			fmt.Printf("%-30s %s\n", m.ID, m.Title)
		}
		return nil
	},
}

var milestoneShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one milestone",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkInitialized()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		m, err := store.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("ID:          %s\n", m.ID)
		fmt.Printf("Title:       %s\n", m.Title)
		fmt.Printf("Created:     %s\n", m.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("Description: %s\n", m.Description)
		return nil
	},
}

func init() {
	milestoneAddCmd.Flags().String("title", "", "milestone title")
	milestoneAddCmd.Flags().String("desc", "", "task description")
	milestoneCmd.AddCommand(milestoneAddCmd)
	milestoneCmd.AddCommand(milestoneListCmd)
	milestoneCmd.AddCommand(milestoneShowCmd)
}
