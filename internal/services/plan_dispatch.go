package services

import (
	"context"
	"errors"
	"fmt"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/metrics"
	"lot-dispatch-service/internal/platform/obs"
	"lot-dispatch-service/internal/ports"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoLots          = errors.New("no lots to dispatch")
	ErrUnknownLot      = errors.New("unknown lot")
	ErrAllRoutesFailed = errors.New("all routes failed")
)

// LotResolver maps lot identifiers to reference lots. *LotCatalog implements it.
type LotResolver interface {
	Resolve(ctx context.Context, ids []string) ([]domain.Lot, []string, error)
}

type PlanDispatchRequest struct {
	LotIDs   []string
	Depot    domain.Coordinates
	Vehicles [domain.FleetSize]domain.Vehicle
	// Sequence both vehicles concurrently. Provider-side pacing still applies.
	Parallel bool
}

// PlanDispatch splits the requested lots between the two vehicles and sequences each tour.
//
// A routing failure for one vehicle is recorded on that vehicle's RouteResult and does not
// stop the other. When every vehicle that received lots failed, the plan is returned
// together with an error wrapping ErrAllRoutesFailed.
func PlanDispatch(
	ctx context.Context,
	req PlanDispatchRequest,
	resolver LotResolver,
	provider ports.RoutingProvider,
) (_ *domain.DispatchPlan, err error) {
	defer obs.Time(ctx, "services.PlanDispatch")(&err)

	ids := DedupeLotIDs(req.LotIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("plan dispatch: %w", ErrNoLots)
	}

	lots, unknown, err := resolver.Resolve(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("plan dispatch: resolve lots: %w", err)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("plan dispatch: %w: %s", ErrUnknownLot, strings.Join(unknown, ", "))
	}

	a, b := PartitionLots(lots)
	clusters := [domain.FleetSize][]domain.Lot{a, b}

	logger := obs.Logger(ctx)
	logger.Info().Int("lots", len(lots)).Int("group_a", len(a)).Int("group_b", len(b)).Msg("lots partitioned")

	var tours [domain.FleetSize]domain.Tour
	var seqErrs [domain.FleetSize]error

	sequence := func(i int) {
		tours[i], seqErrs[i] = SequenceTour(ctx, provider, req.Depot, clusters[i])
	}

	if req.Parallel {
		// Each goroutine writes only its own index; failures are collected per vehicle.
		var g errgroup.Group
		for i := range clusters {
			g.Go(func() error {
				sequence(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range clusters {
			sequence(i)
		}
	}

	plan := &domain.DispatchPlan{
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Depot:         req.Depot,
		RequestedLots: ids,
	}

	var failures *multierror.Error
	attempted, failed := 0, 0

	for i := range clusters {
		res := domain.RouteResult{
			Vehicle:      req.Vehicles[i],
			AssignedLots: domain.LotIDs(clusters[i]),
		}

		if len(clusters[i]) > 0 {
			attempted++
		}

		if seqErrs[i] != nil {
			failed++
			f := ClassifyFailure(seqErrs[i])
			res.Failure = &f
			failures = multierror.Append(failures, fmt.Errorf("vehicle %s: %w", req.Vehicles[i].ID, seqErrs[i]))

			metrics.RouteSequencing.WithLabelValues(string(f.Kind)).Inc()
			logger.Warn().
				Str("vehicle", req.Vehicles[i].ID).
				Str("kind", string(f.Kind)).
				Err(seqErrs[i]).
				Msg("route sequencing failed")
		} else {
			res.Tour = tours[i]
			if len(clusters[i]) > 0 {
				metrics.RouteSequencing.WithLabelValues("ok").Inc()
			}
		}

		plan.Routes[i] = res
	}

	if attempted > 0 && failed == attempted {
		return plan, fmt.Errorf("plan dispatch: %w: %w", ErrAllRoutesFailed, failures.ErrorOrNil())
	}

	return plan, nil
}

// ClassifyFailure turns a sequencing error into the per-vehicle failure indicator.
// Anything that is neither "no route" nor "malformed" counts as unreachable,
// including caller timeouts and cancellation.
func ClassifyFailure(err error) domain.RouteFailure {
	kind := domain.FailureUnreachable
	switch {
	case errors.Is(err, ports.ErrRouteNotFound):
		kind = domain.FailureNoRoute
	case errors.Is(err, ports.ErrMalformedResponse):
		kind = domain.FailureMalformed
	}

	return domain.RouteFailure{Kind: kind, Message: err.Error()}
}
