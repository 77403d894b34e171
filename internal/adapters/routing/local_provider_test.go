package routing

import (
	"context"
	"lot-dispatch-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProvider_KeepsEndpointsAndPermutes(t *testing.T) {
	depot := domain.Coordinates{Lon: -64.245, Lat: -23.260}
	points := []domain.Coordinates{
		depot,
		{Lon: -64.30, Lat: -23.10},
		{Lon: -64.25, Lat: -23.25},
		{Lon: -64.28, Lat: -23.18},
		depot,
	}

	resp, err := NewLocalProvider().OptimizeRoute(context.Background(), points)
	require.NoError(t, err)

	require.Len(t, resp.PointsOrder, 5)
	assert.Equal(t, 0, resp.PointsOrder[0])
	assert.Equal(t, 4, resp.PointsOrder[4])
	assert.ElementsMatch(t, []int{1, 2, 3}, resp.PointsOrder[1:4])
	// Points lie on a line moving away from the depot.
	assert.Equal(t, []int{0, 2, 3, 1, 4}, resp.PointsOrder)
	assert.Greater(t, resp.DistanceMeters, 0.0)
	assert.Len(t, resp.Path, 5)
}

func TestLocalProvider_TwoOptRemovesCrossing(t *testing.T) {
	// Square corners visited in a crossing order.
	points := []domain.Coordinates{
		{Lon: 0, Lat: 0},
		{Lon: 1, Lat: 1},
		{Lon: 0, Lat: 1},
		{Lon: 1, Lat: 0},
	}
	crossing := []int{0, 1, 2, 3}
	improved := improveOrder2Opt(points, crossing, 10)

	assert.Less(t, pathDistance(points, improved), pathDistance(points, crossing))
	assert.Equal(t, 0, improved[0])
	assert.Equal(t, 3, improved[3])
}

func TestLocalProvider_RejectsInvalidPoints(t *testing.T) {
	_, err := NewLocalProvider().OptimizeRoute(context.Background(), []domain.Coordinates{{Lon: 0, Lat: 0}})
	assert.Error(t, err)

	_, err = NewLocalProvider().OptimizeRoute(context.Background(), []domain.Coordinates{{Lon: 0, Lat: 0}, {Lon: 200, Lat: 0}})
	assert.Error(t, err)
}

func TestHaversineMeters(t *testing.T) {
	// One degree of latitude is about 111.2 km.
	d := haversineMeters(domain.Coordinates{Lon: 0, Lat: 0}, domain.Coordinates{Lon: 0, Lat: 1})
	assert.InDelta(t, 111195, d, 100)
}
