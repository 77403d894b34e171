package main

import (
	"database/sql"
	"fmt"
	"lot-dispatch-service/internal/adapters/repositories"

	"github.com/spf13/cobra"
)

var seedPath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load or update the lot reference table from JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := seedPath
		if path == "" {
			path = settings.LotsSeedPath
		}

		return withStore(cmd.Context(), func(conn *sql.DB) error {
			n, err := repositories.SeedLotsFromJSON(cmd.Context(), conn, settings.DBDriver, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d lots from %s\n", n, path)
			return nil
		})
	},
}
