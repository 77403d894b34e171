package main

import (
	"database/sql"
	"lot-dispatch-service/internal/app"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/services"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded dispatches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(conn *sql.DB) error {
			repo, _ := app.HistorySinks(conn, settings)
			recs, err := repo.ListRecords(cmd.Context())
			if err != nil {
				return err
			}

			loc := settings.Location()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()
			writeRow(w, "DATE", "TIME", "LOTS", "ROUTE A", "ROUTE B", "KM A", "KM B", "KM TOTAL")
			for _, r := range recs {
				t := r.CreatedAt.In(loc)
				writeRow(w,
					t.Format("2006-01-02"), t.Format("15:04:05"),
					strings.Join(r.RequestedLots, ","),
					strings.Join(r.LotsA, ","), strings.Join(r.LotsB, ","),
					km(r.KmA), km(r.KmB), km(r.KmTotal),
				)
			}
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show daily and monthly dispatch totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(conn *sql.DB) error {
			repo, _ := app.HistorySinks(conn, settings)
			recs, err := repo.ListRecords(cmd.Context())
			if err != nil {
				return err
			}

			daily, monthly := services.SummarizeHistory(recs, settings.Location())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()
			printStats(w, "DAY", daily)
			writeRow(w)
			printStats(w, "MONTH", monthly)
			return nil
		})
	},
}

func printStats(w *tabwriter.Writer, label string, stats []domain.PeriodStats) {
	writeRow(w, label, "OPERATIONS", "LOTS", "KM")
	for _, s := range stats {
		writeRow(w, s.Period, itoa(s.Operations), itoa(s.LotsAssigned), km(s.TotalKm))
	}
}
