package main

import (
	"context"
	"database/sql"
	"fmt"
	"lot-dispatch-service/internal/app"
	"lot-dispatch-service/internal/platform/obs"
	"os"

	"github.com/spf13/cobra"
)

var settings app.Settings

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)

	seedCmd.Flags().StringVar(&seedPath, "file", "", "Lot seed JSON (defaults to LOTS_SEED_PATH)")
	planCmd.Flags().BoolVar(&planParallel, "parallel", false, "Sequence both vehicles concurrently")
	planCmd.Flags().BoolVar(&planNoHistory, "no-history", false, "Do not record the dispatch in history")
}

var rootCmd = &cobra.Command{
	Use:   "dispatchctl",
	Short: "Split lots between two trucks and sequence their tours",
	Long: `dispatchctl manages the lot dispatch database and plans dispatches from the terminal.
Configuration comes from the environment (and .env), the same as the server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		settings = app.LoadSettings()
		obs.Configure(settings.LogLevel, settings.LogFormat, os.Stderr)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := app.OpenStore(cmd.Context(), settings)
		if err != nil {
			return err
		}
		defer conn.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "Schema ready.")
		return nil
	},
}

// withStore opens the configured database for the duration of fn.
func withStore(ctx context.Context, fn func(conn *sql.DB) error) error {
	conn, err := app.OpenStore(ctx, settings)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}
