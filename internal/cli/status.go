package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"weft/internal/checksum"
	"weft/internal/config"
	"weft/internal/doctor"
	"weft/internal/index"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check index freshness",
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
			fmt.Println("⤫ No usable symbol index; run your indexer first.")
			return nil
		}
		fmt.Printf("✓ Index loaded: %d symbols\n", idx.Len())

		stale, err := checksum.NewDetector(cfg.Project.Path).Stale(weftDir())
		if err != nil {
			return err
		}
		if stale {
			fmt.Println("⤫ Project sources changed since the index was built; re-run your indexer.")
		} else {
			fmt.Println("✓ Index is up to date")
		}
		return nil
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run index integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctor.Run(weftDir())
	},
}
