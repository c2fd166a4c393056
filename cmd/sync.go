package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"esl-middleware/core/config"
	"esl-middleware/core/logger"
	"esl-middleware/core/state"
	"esl-middleware/core/storage"
	"esl-middleware/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single synchronization cycle",
	Long: `Reads every table file in the input directory once, detects changes
against the stored state, and writes the resulting CSV files. Prints the
cycle summary as JSON with --json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()

		store := state.NewStore(cfg.Sync.StateFile, logg)
		store.Load()

		var uploader *storage.Uploader
		if cfg.Storage.Enabled {
			client, err := storage.NewClient(cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to create storage client: %w", err)
			}
			uploader = storage.NewUploader(client, cfg.Storage, logg)
			if err := uploader.EnsureBucket(cmd.Context()); err != nil {
				logg.Warn("Storage bucket check failed", zap.Error(err))
			}
		}

		service := sync.NewService(cfg.Sync, store, uploader, logg)
		summary, err := service.RunCycle(cmd.Context())
		if err != nil {
			return fmt.Errorf("cycle failed: %w", err)
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return fmt.Errorf("encode summary: %w", err)
			}
		} else {
			fmt.Printf("Cycle %s finished in %s\n", summary.CycleID, summary.Duration)
			for _, src := range summary.Sources {
				if src.Error != "" {
					fmt.Printf("  %-20s FAILED: %s\n", src.Source, src.Error)
					continue
				}
				fmt.Printf("  %-20s %d new, %d updated, %d deleted, %d unchanged",
					src.Source, src.New, src.Updated, src.Deleted, src.Unchanged)
				if src.CSVPath != "" {
					fmt.Printf(" -> %s", src.CSVPath)
				}
				fmt.Println()
			}
		}

		if summary.HasErrors() {
			return fmt.Errorf("%d source(s) failed", len(summary.Errors))
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().Bool("json", false, "print the cycle summary as JSON")
	RootCmd.AddCommand(syncCmd)
}
