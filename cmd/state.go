package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"esl-middleware/core/config"
	"esl-middleware/core/logger"
	"esl-middleware/core/state"

	"github.com/spf13/cobra"
)

// stateCmd represents the state command
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or reset the change-tracking state",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// stateShowCmd represents the state show command
var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the tracking summary for every source",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		snapshot := store.Snapshot()
		if len(snapshot) == 0 {
			fmt.Println("No tracked sources.")
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	},
}

// stateResetCmd represents the state reset command
var stateResetCmd = &cobra.Command{
	Use:   "reset [source]",
	Short: "Reset tracking state, for one source or all of them",
	Long: `Discards the stored fingerprints so the next cycle reports every record
as new. With a source file name only that source is reset.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			if !store.Reset(args[0]) {
				return fmt.Errorf("unknown source: %s", args[0])
			}
			fmt.Printf("Reset state for %s\n", args[0])
		} else {
			store.ResetAll()
			fmt.Println("Reset state for all sources")
		}
		return store.Save()
	},
}

func openStore() (*state.Store, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	store := state.NewStore(cfg.Sync.StateFile, logg)
	store.Load()
	return store, nil
}

func init() {
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateResetCmd)
	RootCmd.AddCommand(stateCmd)
}
