package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"bizrecords/internal/app"
	"bizrecords/internal/config"
	"bizrecords/internal/logger"
	"bizrecords/internal/model"
)

var (
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "trashctl",
	Short: "Maintain the business records trash",
	Long: `trashctl inspects and repairs the trash shared by the bizrecords server.
It reads the same environment (.env) as the server and talks to the same stores.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		level := logger.ParseLevel(cfg.LogLevel)
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(logger.NewPrettyHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
}

// Execute runs the root command; called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// openServices connects to the configured stores. In-memory stores would
// only ever show an empty trash, so a database is required.
func openServices(ctx context.Context) (*app.Services, error) {
	if cfg.UsesMemoryStores() {
		return nil, fmt.Errorf("DATABASE_URL is not set; trashctl needs the shared database")
	}
	return app.BuildServices(ctx, cfg)
}

func operator() model.AuditActor {
	actor := model.AuditActor{UserID: "trashctl", Username: "trashctl", Role: "admin", IP: "local"}
	if current, err := user.Current(); err == nil && current.Username != "" {
		actor.Username = current.Username
	}
	return actor
}
