package main

import (
	"database/sql"
	"errors"
	"fmt"
	"lot-dispatch-service/internal/adapters/repositories"
	"lot-dispatch-service/internal/app"
	"lot-dispatch-service/internal/config"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/services"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	planParallel  bool
	planNoHistory bool
)

var planCmd = &cobra.Command{
	Use:   "plan <lot codes>",
	Short: "Plan a dispatch, e.g. dispatchctl plan A05, B10, C01",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		fleet, err := config.LoadFleet(settings.FleetPath)
		if err != nil {
			return err
		}

		return withStore(ctx, func(conn *sql.DB) error {
			if err := app.SeedIfEmpty(ctx, conn, settings); err != nil {
				return err
			}

			tours, closeTours, err := app.TourCache(ctx, conn, settings)
			if err != nil {
				return err
			}
			defer closeTours()

			provider, err := app.RoutingProvider(settings, fleet, tours)
			if err != nil {
				return err
			}

			catalog := services.NewLotCatalog(repositories.NewSQLLotRepository(conn))
			codes, _ := services.ParseLotCodes(strings.Join(args, ","), nil)
			lots, unknown, err := catalog.Resolve(ctx, codes)
			if err != nil {
				return err
			}
			if len(unknown) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Unknown lots ignored: %s\n", strings.Join(unknown, ", "))
			}
			if len(lots) == 0 {
				return errors.New("no valid lots to dispatch")
			}

			plan, err := services.PlanDispatch(ctx, services.PlanDispatchRequest{
				LotIDs:   domain.LotIDs(lots),
				Depot:    fleet.DepotCoords(),
				Vehicles: fleet.FleetVehicles(),
				Parallel: planParallel,
			}, catalog, provider)
			if plan != nil {
				printPlan(cmd, plan)
			}
			if err != nil {
				return err
			}

			if !planNoHistory {
				_, sinks := app.HistorySinks(conn, settings)
				if err := services.RecordHistory(ctx, plan, sinks...); err != nil {
					log.Error().Err(err).Msg("history write failed")
				}
			}
			return nil
		})
	},
}

func printPlan(cmd *cobra.Command, plan *domain.DispatchPlan) {
	for _, r := range plan.Routes {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", r.Vehicle.ID, r.Vehicle.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "  assigned: %s\n", joinOrDash(r.AssignedLots))
		if r.Failed() {
			fmt.Fprintf(cmd.OutOrStdout(), "  FAILED (%s): %s\n", r.Failure.Kind, r.Failure.Message)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  route:    depot -> %s -> depot\n", joinOrDash(r.Tour.Order))
		fmt.Fprintf(cmd.OutOrStdout(), "  distance: %.2f km\n", r.Tour.DistanceKm)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Total: %.2f km\n", plan.TotalDistanceKm())
}

func joinOrDash(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}
