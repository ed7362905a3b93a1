package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"weft/internal/config"
	"weft/internal/index"
	"weft/internal/milestone"
	"weft/internal/pipeline"
	"weft/internal/storage"
)

const Version = "0.3.0"

const defaultWeftDir = ".weft"

var rootCmd = &cobra.Command{
	Use:   "weft",
	Short: "weft - progressive context assembly for code generation",
	Long: `weft assembles the context fed to an LLM code-generation call: it ranks a
project's symbols against a task description and escalates from signatures to
implementations to dependencies only when the task warrants it, under a hard
token budget.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("weft version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(assembleCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(milestoneCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func weftDir() string {
	return defaultWeftDir
}

func milestonesDir() string {
	return filepath.Join(weftDir(), "milestones")
}

func checkInitialized() error {
	if _, err := os.Stat(weftDir()); os.IsNotExist(err) {
		return fmt.Errorf("not initialized; run: weft init")
	}
	return nil
}

// newAssembler loads everything an assembly run needs. The returned cleanup
// closes whatever stores were opened.
func newAssembler(cfg *config.Config) (*pipeline.Assembler, func(), error) {
	idx, err := index.Load(weftDir())
	if err != nil {
		return nil, nil, fmt.Errorf("no usable symbol index: %w", err)
	}

	var opts []pipeline.Option
	var closers []func()

	if cfg.Cache.Redis.Enabled {
		if rdb, err := storage.NewRedis(cfg.Cache.Redis.URL); err == nil {
			opts = append(opts, pipeline.WithCache(rdb))
			closers = append(closers, func() { rdb.Close() })
		} else {
			fmt.Fprintf(os.Stderr, "warning: redis cache unavailable: %v\n", err)
		}
	}
	if cfg.Cache.SQL.Enabled {
		if db, err := storage.OpenSQLite(cfg.Cache.SQL.DSN); err == nil {
			opts = append(opts, pipeline.WithHistory(db))
			closers = append(closers, func() { db.Close() })
		} else {
			fmt.Fprintf(os.Stderr, "warning: history db unavailable: %v\n", err)
		}
	}

	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	return pipeline.New(cfg, idx, opts...), cleanup, nil
}

func openStore() (*milestone.Store, error) {
	return milestone.NewStore(milestonesDir())
}
