package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"weft/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the symbol index",
}

var indexPackCmd = &cobra.Command{
	Use:   "pack",
	Short: "Pack index.json into the faster binary form",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkInitialized()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := index.Pack(weftDir()); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s\n", index.PackedName)
		return nil
	},
}

func init() {
	indexCmd.AddCommand(indexPackCmd)
}
