package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"weft/internal/checksum"
	"weft/internal/config"
	"weft/internal/milestone"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize weft in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return initializeProject()
	},
}

func initializeProject() error {
	if err := os.MkdirAll(milestonesDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", weftDir(), err)
	}

	cfgPath := "weft.toml"
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		f, err := os.Create(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", cfgPath, err)
		}
		defer f.Close()
		if err := toml.NewEncoder(f).Encode(config.Default()); err != nil {
			return fmt.Errorf("failed to write default config: %w", err)
		}
		fmt.Printf("✓ Created %s\n", cfgPath)
	}

	store, err := milestone.NewStore(milestonesDir())
	if err != nil {
		return err
	}
	existing, _ := store.List()
	if len(existing) == 0 {
		m, err := store.Save(milestone.Milestone{
			Title:       "Example milestone",
			Description: "Fix the typo in the error message shown on login failure",
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Created sample milestone %q\n", m.ID)
	}

	// Snapshot the project so stale-index detection has a baseline.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if _, err := checksum.NewDetector(cfg.Project.Path).Save(weftDir()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not snapshot project checksum: %v\n", err)
	}

	fmt.Printf("✓ Initialized %s\n", weftDir())
	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Point your indexer at this project and have it write %s\n",
		filepath.Join(weftDir(), "index.json"))
	fmt.Println("  2. weft symbols --task \"your task\"   # preview the ranking")
	fmt.Println("  3. weft assemble --task \"your task\"  # build the context")
	return nil
}
