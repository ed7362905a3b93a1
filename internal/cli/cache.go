package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"weft/internal/config"
	"weft/internal/storage"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the assembly result cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := cacheClient()
		if err != nil {
			return err
		}
		defer rdb.Close()

		stats, err := rdb.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("Cached assemblies: %v\n", stats["cached_assemblies"])
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached assembly",
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := cacheClient()
		if err != nil {
			return err
		}
		defer rdb.Close()

		if err := rdb.Invalidate(); err != nil {
			return err
		}
		fmt.Println("✓ Cache cleared")
		return nil
	},
}

func cacheClient() (*storage.Redis, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Redis.Enabled {
		return nil, fmt.Errorf("redis cache is disabled in weft.toml")
	}
	return storage.NewRedis(cfg.Cache.Redis.URL)
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
