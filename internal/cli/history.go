package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"weft/internal/config"
	"weft/internal/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent assemblies",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkInitialized()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cfg.Cache.SQL.Enabled {
			return fmt.Errorf("history is disabled in weft.toml")
		}

		db, err := storage.OpenSQLite(cfg.Cache.SQL.DSN)
		if err != nil {
			return err
		}
		defer db.Close()

		n, _ := cmd.Flags().GetInt("n")
		entries, err := db.Recent(n)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No assemblies recorded yet.")
			return nil
		}

		for _, e := range entries {
			id := e.MilestoneID
			if id == "" {
				id = "(ad hoc)"
			}
			fmt.Printf("%s  %-25s tier=%-12s tokens=%d/%d symbols=%d escalations=%d\n",
				e.CreatedAt.Format("2006-01-02 15:04"), id, e.Tier,
				e.TokensUsed, e.MaxTokens, e.Symbols, e.Escalations)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("n", 20, "how many entries to show")
}
