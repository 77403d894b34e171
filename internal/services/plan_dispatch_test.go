package services

import (
	"context"
	"errors"
	"lot-dispatch-service/internal/adapters/routing"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/ports"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLotRepo struct {
	lots  []domain.Lot
	err   error
	calls int
}

func (r *staticLotRepo) ListLots(ctx context.Context) ([]domain.Lot, error) {
	r.calls++
	return r.lots, r.err
}

var testVehicles = [domain.FleetSize]domain.Vehicle{
	{ID: "AF820AB", Name: "Truck 1 (Route A)"},
	{ID: "AE898TW", Name: "Truck 2 (Route B)"},
}

func testCatalog() *LotCatalog {
	return NewLotCatalog(&staticLotRepo{lots: []domain.Lot{
		lot("A05", -64.2564, -23.2470),
		lot("B05", -64.1500, -23.1500),
		lot("B06", -64.1510, -23.1490),
	}})
}

func planRequest(ids ...string) PlanDispatchRequest {
	return PlanDispatchRequest{LotIDs: ids, Depot: testDepot, Vehicles: testVehicles}
}

func TestPlanDispatch_OneLotPerVehicle(t *testing.T) {
	provider := routing.NewMockRoutingProvider(
		routing.MockRoute{Resp: ports.RouteResponse{DistanceMeters: 3000, PointsOrder: []int{0, 1, 2}}},
		routing.MockRoute{Resp: ports.RouteResponse{DistanceMeters: 25500, PointsOrder: []int{0, 1, 2}}},
	)

	plan, err := PlanDispatch(context.Background(), planRequest("A05", "B05"), testCatalog(), provider)
	require.NoError(t, err)
	require.NotNil(t, plan)

	a, b := plan.Routes[0], plan.Routes[1]
	assert.Equal(t, testVehicles[0], a.Vehicle)
	assert.Equal(t, []string{"A05"}, a.AssignedLots)
	assert.Equal(t, []string{"A05"}, a.Tour.Order)
	assert.Equal(t, 3.0, a.Tour.DistanceKm)
	assert.Equal(t, []string{"B05"}, b.AssignedLots)
	assert.Equal(t, []string{"B05"}, b.Tour.Order)
	assert.Equal(t, 25.5, b.Tour.DistanceKm)
	assert.InDelta(t, 28.5, plan.TotalDistanceKm(), 1e-9)

	assert.NotEmpty(t, plan.ID)
	assert.False(t, plan.CreatedAt.IsZero())
	assert.Equal(t, []string{"A05", "B05"}, plan.RequestedLots)
}

func TestPlanDispatch_SecondVehicleFails(t *testing.T) {
	provider := routing.NewMockRoutingProvider(
		routing.MockRoute{Resp: ports.RouteResponse{DistanceMeters: 3000, PointsOrder: []int{0, 1, 2}}},
		routing.MockRoute{Err: ports.ErrRoutingUnavailable},
	)

	plan, err := PlanDispatch(context.Background(), planRequest("A05", "B05", "B06"), testCatalog(), provider)
	require.NoError(t, err)

	a, b := plan.Routes[0], plan.Routes[1]
	assert.False(t, a.Failed())
	assert.Equal(t, []string{"A05"}, a.Tour.Order)

	require.True(t, b.Failed())
	assert.Equal(t, domain.FailureUnreachable, b.Failure.Kind)
	assert.Equal(t, []string{"B05", "B06"}, b.AssignedLots)
	assert.Empty(t, b.Tour.Order)
	assert.Equal(t, 3.0, plan.TotalDistanceKm())
}

func TestPlanDispatch_AllRoutesFailed(t *testing.T) {
	provider := routing.NewMockRoutingProvider(
		routing.MockRoute{Err: ports.ErrRouteNotFound},
		routing.MockRoute{Err: ports.ErrMalformedResponse},
	)

	plan, err := PlanDispatch(context.Background(), planRequest("A05", "B05"), testCatalog(), provider)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllRoutesFailed)
	assert.ErrorIs(t, err, ports.ErrRouteNotFound)
	require.NotNil(t, plan)
	assert.Equal(t, domain.FailureNoRoute, plan.Routes[0].Failure.Kind)
	assert.Equal(t, domain.FailureMalformed, plan.Routes[1].Failure.Kind)
}

func TestPlanDispatch_SingleLotFailureIsTotal(t *testing.T) {
	provider := routing.NewMockRoutingProvider(routing.MockRoute{Err: ports.ErrRouteNotFound})

	plan, err := PlanDispatch(context.Background(), planRequest("A05"), testCatalog(), provider)
	assert.ErrorIs(t, err, ErrAllRoutesFailed)
	require.NotNil(t, plan)
	assert.False(t, plan.Routes[1].Failed(), "vehicle without lots has nothing to fail")
	assert.Empty(t, plan.Routes[1].AssignedLots)
	assert.Equal(t, 1, provider.CallCount())
}

func TestPlanDispatch_DuplicateIdsCountOnce(t *testing.T) {
	provider := routing.NewMockRoutingProvider()

	plan, err := PlanDispatch(context.Background(), planRequest("A05", "B05", "A05"), testCatalog(), provider)
	require.NoError(t, err)
	assert.Equal(t, []string{"A05", "B05"}, plan.RequestedLots)
	assert.Len(t, plan.Routes[0].AssignedLots, 1)
	assert.Len(t, plan.Routes[1].AssignedLots, 1)
	assert.Equal(t, 2, provider.CallCount())
}

func TestPlanDispatch_UnknownLot(t *testing.T) {
	provider := routing.NewMockRoutingProvider()

	plan, err := PlanDispatch(context.Background(), planRequest("A05", "Z99"), testCatalog(), provider)
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, ErrUnknownLot)
	assert.Contains(t, err.Error(), "Z99")
	assert.Zero(t, provider.CallCount())
}

func TestPlanDispatch_NoLots(t *testing.T) {
	_, err := PlanDispatch(context.Background(), planRequest(), testCatalog(), routing.NewMockRoutingProvider())
	assert.ErrorIs(t, err, ErrNoLots)
}

func TestPlanDispatch_Parallel(t *testing.T) {
	provider := routing.NewMockRoutingProvider()
	provider.DefaultMeters = 1500

	req := planRequest("A05", "B05", "B06")
	req.Parallel = true

	plan, err := PlanDispatch(context.Background(), req, testCatalog(), provider)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.CallCount())
	assert.Equal(t, []string{"A05"}, plan.Routes[0].Tour.Order)
	assert.Equal(t, []string{"B05", "B06"}, plan.Routes[1].Tour.Order)
	assert.Equal(t, 3.0, plan.TotalDistanceKm())
}

func TestPlanDispatch_CatalogError(t *testing.T) {
	catalog := NewLotCatalog(&staticLotRepo{err: errors.New("db down")})
	_, err := PlanDispatch(context.Background(), planRequest("A05"), catalog, routing.NewMockRoutingProvider())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestClassifyFailure(t *testing.T) {
	assert.Equal(t, domain.FailureNoRoute, ClassifyFailure(ports.ErrRouteNotFound).Kind)
	assert.Equal(t, domain.FailureMalformed, ClassifyFailure(ports.ErrMalformedResponse).Kind)
	assert.Equal(t, domain.FailureUnreachable, ClassifyFailure(ports.ErrRoutingUnavailable).Kind)
	assert.Equal(t, domain.FailureUnreachable, ClassifyFailure(context.DeadlineExceeded).Kind)
	assert.Equal(t, domain.FailureUnreachable, ClassifyFailure(context.Canceled).Kind)
}
