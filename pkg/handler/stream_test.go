package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckquiz/progress-service/pkg/metrics"
)

// openStream connects to an SSE endpoint and returns the response plus a
// scanner over its body. The caller must close the response body.
func openStream(t *testing.T, srv *httptest.Server, path, token string) (*http.Response, *bufio.Scanner) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	return resp, bufio.NewScanner(resp.Body)
}

// awaitEventData scans SSE lines until a data line containing want arrives.
func awaitEventData(t *testing.T, scanner *bufio.Scanner, event, want string) {
	t.Helper()

	sawEvent := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event:") && strings.Contains(line, event) {
			sawEvent = true
			continue
		}
		if sawEvent && strings.HasPrefix(line, "data:") {
			assert.Contains(t, line, want)
			return
		}
	}
	t.Fatalf("stream ended before %q event with data %q", event, want)
}

// awaitWatcherCount polls the live-watcher gauge until it reaches want.
func awaitWatcherCount(t *testing.T, want float64) {
	t.Helper()
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.ActiveWatchers) == want
	}, 3*time.Second, 10*time.Millisecond)
}

func TestStreamProgress(t *testing.T) {
	api := setupTestAPI(t)
	srv := httptest.NewServer(api.engine)
	defer srv.Close()

	baseline := testutil.ToFloat64(metrics.ActiveWatchers)

	require.NoError(t, api.progress.RecordAttempt(context.Background(), "user-1", "beginner", 7, 10))

	resp, scanner := openStream(t, srv, "/v1/progress/stream", api.token(t, "user-1"))

	// first event is the snapshot at subscribe time
	awaitEventData(t, scanner, "progress", `"beginner"`)
	awaitWatcherCount(t, baseline+1)

	// a new attempt drives a fresh emission of the full map
	require.NoError(t, api.progress.RecordAttempt(context.Background(), "user-1", "advanced", 3, 10))
	awaitEventData(t, scanner, "progress", `"advanced"`)

	// client disconnect disposes the subscription
	require.NoError(t, resp.Body.Close())
	awaitWatcherCount(t, baseline)
}

func TestStreamEligibility(t *testing.T) {
	api := setupTestAPI(t)
	srv := httptest.NewServer(api.engine)
	defer srv.Close()

	baseline := testutil.ToFloat64(metrics.ActiveWatchers)

	require.NoError(t, api.progress.RecordCorrectCard(context.Background(), "user-1", "beginner", "card-1"))

	resp, scanner := openStream(t, srv, "/v1/eligibility/stream", api.token(t, "user-1"))

	awaitEventData(t, scanner, "eligibility", `"count":1`)
	awaitWatcherCount(t, baseline+1)

	require.NoError(t, resp.Body.Close())
	awaitWatcherCount(t, baseline)
}

func TestStreamRequiresAuth(t *testing.T) {
	api := setupTestAPI(t)
	srv := httptest.NewServer(api.engine)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/v1/progress/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
