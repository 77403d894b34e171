package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"lot-dispatch-service/internal/metrics"
	"lot-dispatch-service/internal/platform/obs"
	"lot-dispatch-service/internal/ports"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	maxAttempts = 4
	// A longer server-requested wait means the quota is spent; give up instead.
	maxRetryWait = 30 * time.Second
)

// Exception names GraphHopper reports in hints when the points themselves
// cannot be routed, plus the message fragments it uses for the same cases.
var (
	noRouteDetails = []string{
		"PointNotFoundException",
		"ConnectionNotFoundException",
		"PointOutOfBoundsException",
	}
	noRouteMessages = []string{
		"cannot find point",
		"connection between locations not found",
		"out of bounds",
	}
)

// apiError is a non-2xx answer from GraphHopper.
type apiError struct {
	Status  int
	Message string
	// Exception class names from the hints array.
	Details []string
	// Wait requested by Retry-After, or X-RateLimit-Reset on a 429.
	RetryAfter time.Duration
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("graphhopper status %d", e.Status)
	}
	return fmt.Sprintf("graphhopper status %d: %s", e.Status, e.Message)
}

// noRoute reports whether GraphHopper rejected the points rather than the request.
// A 400 such as "Too many points" is a refused request, not a missing route.
func (e *apiError) noRoute() bool {
	if e.Status != http.StatusBadRequest {
		return false
	}
	for _, d := range e.Details {
		for _, name := range noRouteDetails {
			if strings.HasSuffix(d, name) {
				return true
			}
		}
	}
	msg := strings.ToLower(e.Message)
	for _, m := range noRouteMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func (e *apiError) retryable() bool {
	switch e.Status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// post sends payload to endpoint, retrying transient failures. Every attempt,
// retries included, takes a token from the limiter first.
func (g *GraphHopperProvider) post(ctx context.Context, endpoint string, payload []byte) (*http.Response, error) {
	backoff := g.retryBackoff

	for attempt := 1; ; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: pacing: %w", ports.ErrRoutingUnavailable, err)
		}

		resp, err := g.send(ctx, endpoint, payload)
		if err == nil {
			return resp, nil
		}

		wait, ok := retryWait(ctx, err, backoff)
		if !ok || attempt == maxAttempts {
			return nil, err
		}

		obs.Logger(ctx).Debug().
			Err(err).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("retrying graphhopper request")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", ports.ErrRoutingUnavailable, ctx.Err())
		case <-timer.C:
		}

		backoff *= 2
	}
}

// send performs a single round trip. Error statuses come back as *apiError.
func (g *GraphHopperProvider) send(ctx context.Context, endpoint string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.session.Do(req)
	metrics.RoutingLatency.WithLabelValues(providerGraphHopper).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, readAPIError(resp, time.Now())
	}
	return resp, nil
}

func readAPIError(resp *http.Response, now time.Time) *apiError {
	e := &apiError{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Message string `json:"message"`
		Hints   []struct {
			Details string `json:"details"`
		} `json:"hints"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		e.Message = body.Message
		for _, h := range body.Hints {
			if h.Details != "" {
				e.Details = append(e.Details, h.Details)
			}
		}
	} else {
		e.Message = strings.TrimSpace(string(raw))
	}

	e.RetryAfter = serverWait(resp.StatusCode, resp.Header, now)
	return e
}

// serverWait reads Retry-After (delay seconds or an HTTP date). On a 429 it also
// reads X-RateLimit-Reset, the seconds until GraphHopper refills credits.
func serverWait(status int, h http.Header, now time.Time) time.Duration {
	var wait time.Duration

	if v := strings.TrimSpace(h.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			wait = time.Duration(secs) * time.Second
		} else if at, err := http.ParseTime(v); err == nil {
			wait = at.Sub(now)
		}
	}

	if status == http.StatusTooManyRequests {
		if v := strings.TrimSpace(h.Get("X-RateLimit-Reset")); v != "" {
			if secs, err := strconv.ParseFloat(v, 64); err == nil {
				wait = max(wait, time.Duration(secs*float64(time.Second)))
			}
		}
	}

	return max(wait, 0)
}

// retryWait decides whether err is worth another attempt and how long to wait
// before it: the larger of backoff and what the server asked for.
func retryWait(ctx context.Context, err error, backoff time.Duration) (time.Duration, bool) {
	var ae *apiError
	if errors.As(err, &ae) {
		if !ae.retryable() {
			return 0, false
		}
		wait := max(backoff, ae.RetryAfter)
		if wait > maxRetryWait {
			return 0, false
		}
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
			return 0, false
		}
		return wait, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && ctx.Err() == nil {
		return backoff, true
	}
	return 0, false
}
