package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"esl-middleware/core/config"
	"esl-middleware/core/loader"
	"esl-middleware/core/logger"
	"esl-middleware/core/middleware/auth"
	"esl-middleware/core/middleware/rayid"
	"esl-middleware/core/state"
	"esl-middleware/core/storage"
	"esl-middleware/core/watcher"

	"esl-middleware/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the synchronization service",
	Long: `Runs the continuous synchronization loop: an immediate cycle, then one
every poll interval, plus early cycles on input directory activity when the
watcher is enabled. Also serves the HTTP status API unless disabled.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Load persistent state
		store := state.NewStore(cfg.Sync.StateFile, logg)
		store.Load()

		// 4. Prepare directories
		if err := os.MkdirAll(cfg.Sync.InputDir, 0o755); err != nil {
			logg.Fatal("Failed to create input directory", zap.Error(err))
		}
		if err := os.MkdirAll(cfg.Sync.OutputDir, 0o755); err != nil {
			logg.Fatal("Failed to create output directory", zap.Error(err))
		}

		// 5. Optional CSV upload channel
		var uploader *storage.Uploader
		if cfg.Storage.Enabled {
			client, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			uploader = storage.NewUploader(client, cfg.Storage, logg)
			if err := uploader.EnsureBucket(context.Background()); err != nil {
				// Uploads are a secondary channel; keep running and let
				// per-cycle uploads retry against the store.
				logg.Warn("Storage bucket check failed", zap.Error(err))
			}
		}

		// 6. Cycle orchestrator
		service := sync.NewService(cfg.Sync, store, uploader, logg)

		// 7. Optional HTTP status server
		var app *fiber.App
		if cfg.Server.Enabled {
			app = fiber.New(fiber.Config{
				DisableStartupMessage: true, // We will log our own startup message
			})

			// RayID must be first to trace everything
			app.Use(rayid.New())
			app.Use(func(c *fiber.Ctx) error {
				l := logger.WithRayID(logg, c)
				l.Info("Request started",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.String("ip", c.IP()),
				)
				err := c.Next()
				if err != nil {
					l.Error("Request error", zap.Error(err))
				}
				return err
			})
			app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

			mgr := loader.NewManager()
			mgr.Register(sync.NewFeature(service))
			if err := mgr.LoadAll(app); err != nil {
				logg.Fatal("Failed to load features", zap.Error(err))
			}

			go func() {
				logg.Info("Starting status server", zap.String("port", cfg.Server.Port))
				if err := app.Listen(":" + cfg.Server.Port); err != nil {
					logg.Fatal("Server failed to start", zap.Error(err))
				}
			}()
		}

		// 8. Optional input directory watcher
		var triggers <-chan struct{}
		if cfg.Watcher.Enabled {
			w, err := watcher.New(cfg.Sync.InputDir, time.Duration(cfg.Watcher.DebounceSeconds)*time.Second, logg)
			if err != nil {
				logg.Fatal("Failed to start directory watcher", zap.Error(err))
			}
			defer w.Close()
			triggers = w.Events()
		}

		logg.Info("Middleware started",
			zap.String("input_dir", cfg.Sync.InputDir),
			zap.String("output_dir", cfg.Sync.OutputDir),
			zap.Int("poll_interval_seconds", cfg.Sync.PollIntervalSeconds))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		runCycle := func(reason string) {
			if _, err := service.RunCycle(ctx); err != nil {
				if err == sync.ErrCycleInProgress {
					logg.Debug("Cycle already running, skipping", zap.String("trigger", reason))
					return
				}
				logg.Error("Cycle failed", zap.String("trigger", reason), zap.Error(err))
			}
		}

		// 9. Initial cycle, then poll loop
		runCycle("startup")

		ticker := time.NewTicker(time.Duration(cfg.Sync.PollIntervalSeconds) * time.Second)
		defer ticker.Stop()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	loop:
		for {
			select {
			case <-ticker.C:
				runCycle("poll")
			case <-triggers:
				runCycle("watcher")
			case <-sig:
				break loop
			}
		}

		// 10. Graceful Shutdown
		logg.Info("Shutting down...")
		cancel()
		if app != nil {
			_ = app.Shutdown()
		}
		if !service.WaitIdle(time.Duration(cfg.Sync.ShutdownTimeoutSeconds) * time.Second) {
			logg.Warn("Cycle still running at shutdown deadline")
		}
		if err := store.Save(); err != nil {
			logg.Error("Final state save failed", zap.Error(err))
		}
		logg.Info("Shutdown complete")
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
