package api

import (
	"bytes"
	"context"
	"encoding/json"
	"lot-dispatch-service/internal/adapters/routing"
	"lot-dispatch-service/internal/api/dto"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/ports"
	"lot-dispatch-service/internal/services"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLots struct{ lots []domain.Lot }

func (f *fakeLots) ListLots(ctx context.Context) ([]domain.Lot, error) { return f.lots, nil }

type fakeHistory struct {
	mu   sync.Mutex
	recs []domain.HistoryRecord
}

func (f *fakeHistory) AppendRecord(ctx context.Context, rec domain.HistoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, rec)
	return nil
}

func (f *fakeHistory) ListRecords(ctx context.Context) ([]domain.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.HistoryRecord(nil), f.recs...), nil
}

func newTestServer(t *testing.T, provider ports.RoutingProvider) (*httptest.Server, *fakeHistory) {
	t.Helper()

	lots := &fakeLots{lots: []domain.Lot{
		{ID: "A05", Coords: domain.Coordinates{Lon: -64.2564, Lat: -23.2470}},
		{ID: "B05", Coords: domain.Coordinates{Lon: -64.1500, Lat: -23.1500}},
	}}
	hist := &fakeHistory{}

	h := NewRouter(Deps{
		Catalog:  services.NewLotCatalog(lots),
		Provider: provider,
		Depot:    domain.Coordinates{Lon: -64.245, Lat: -23.260},
		Vehicles: [domain.FleetSize]domain.Vehicle{{ID: "AF820AB", Name: "Truck 1"}, {ID: "AE898TW", Name: "Truck 2"}},
		History:  hist,
		Location: time.UTC,
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, hist
}

func postPlan(t *testing.T, srv *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/plans", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, routing.NewMockRoutingProvider())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp2, err := http.Post(srv.URL+"/health", "application/json", nil)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestListLots(t *testing.T) {
	srv, _ := newTestServer(t, routing.NewMockRoutingProvider())

	resp, err := http.Get(srv.URL + "/lots")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out dto.ListLotsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Lots, 2)
	assert.Equal(t, "A05", out.Lots[0].ID)

	refresh, err := http.Post(srv.URL+"/lots/refresh", "application/json", nil)
	require.NoError(t, err)
	refresh.Body.Close()
	assert.Equal(t, http.StatusOK, refresh.StatusCode)
}

func TestGetLot(t *testing.T) {
	srv, _ := newTestServer(t, routing.NewMockRoutingProvider())

	resp, err := http.Get(srv.URL + "/lots/b05")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.LotResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, dto.LotResponse{ID: "B05", Lon: -64.15, Lat: -23.15}, out)

	missing, err := http.Get(srv.URL + "/lots/Z99")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	// The fixed refresh route still wins over the id pattern.
	refresh, err := http.Get(srv.URL + "/lots/refresh")
	require.NoError(t, err)
	refresh.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, refresh.StatusCode)
}

func TestPlan_TextInputReportsUnknown(t *testing.T) {
	provider := routing.NewMockRoutingProvider()
	provider.DefaultMeters = 2000
	srv, hist := newTestServer(t, provider)

	resp, body := postPlan(t, srv, `{"lots": " a05, zz1, B05, a05"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out dto.PlanResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, []string{"ZZ1"}, out.UnknownLots)
	assert.Equal(t, []string{"A05", "B05"}, out.RequestedLots)
	require.Len(t, out.Routes, 2)
	assert.Equal(t, "AF820AB", out.Routes[0].Vehicle.ID)
	assert.Equal(t, []string{"A05"}, out.Routes[0].Order)
	assert.Equal(t, []string{"B05"}, out.Routes[1].Order)
	assert.Equal(t, 4.0, out.TotalDistanceKm)

	recs, _ := hist.ListRecords(context.Background())
	require.Len(t, recs, 1)
	assert.Equal(t, 4.0, recs[0].KmTotal)
}

func TestPlan_IDListAndParallel(t *testing.T) {
	srv, _ := newTestServer(t, routing.NewMockRoutingProvider())

	resp, body := postPlan(t, srv, `{"lot_ids": ["B05", "A05"], "parallel": true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out dto.PlanResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, []string{"B05", "A05"}, out.RequestedLots)
	assert.Empty(t, out.UnknownLots)
}

func TestPlan_NoValidLots(t *testing.T) {
	srv, hist := newTestServer(t, routing.NewMockRoutingProvider())

	resp, body := postPlan(t, srv, `{"lots": "zz1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out dto.PlanErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, []string{"ZZ1"}, out.UnknownLots)

	resp, _ = postPlan(t, srv, `{"lots": " , "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postPlan(t, srv, `{"lots": "A05", "extra": 1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Empty(t, hist.recs)
}

func TestPlan_AllRoutesFailedIsBadGateway(t *testing.T) {
	provider := routing.NewMockRoutingProvider(
		routing.MockRoute{Err: ports.ErrRoutingUnavailable},
		routing.MockRoute{Err: ports.ErrRoutingUnavailable},
	)
	srv, hist := newTestServer(t, provider)

	resp, body := postPlan(t, srv, `{"lots": "A05,B05"}`)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var out dto.PlanResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotNil(t, out.Routes[0].Failure)
	assert.Equal(t, "unreachable", out.Routes[0].Failure.Kind)
	assert.Empty(t, hist.recs, "history is not written on total failure")
}

func TestHistoryEndpoints(t *testing.T) {
	srv, hist := newTestServer(t, routing.NewMockRoutingProvider())
	ctx := context.Background()
	require.NoError(t, hist.AppendRecord(ctx, domain.HistoryRecord{
		ID: "h1", CreatedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		LotsA: []string{"A05"}, LotsB: []string{"B05"}, KmTotal: 12.5,
	}))

	resp, err := http.Get(srv.URL + "/history")
	require.NoError(t, err)
	var list dto.ListHistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	require.Len(t, list.Records, 1)
	assert.Equal(t, "h1", list.Records[0].ID)

	resp, err = http.Get(srv.URL + "/history/stats")
	require.NoError(t, err)
	var stats dto.HistoryStatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	assert.Equal(t, "UTC", stats.Timezone)
	require.Len(t, stats.Daily, 1)
	assert.Equal(t, dto.PeriodStatsResponse{Period: "2025-05-01", Operations: 1, LotsAssigned: 2, TotalKm: 12.5}, stats.Daily[0])
	require.Len(t, stats.Monthly, 1)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, routing.NewMockRoutingProvider())

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
