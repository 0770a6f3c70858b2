package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tokoquant/idxradar/internal/models"
	"github.com/tokoquant/idxradar/internal/store"
)

func newTestServer(t *testing.T, signals *store.Store) *httptest.Server {
	t.Helper()
	srv := NewServer(":0", signals)
	ts := httptest.NewServer(srv.server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func addSignals(signals *store.Store, ids ...string) {
	for _, id := range ids {
		signals.Add(models.Signal{ID: id, Mode: models.ModeScalper, Pair: "btcidr", Priority: 10})
	}
}

func TestGetSignals(t *testing.T) {
	signals := store.New(20)
	addSignals(signals, "a", "b", "c")
	ts := newTestServer(t, signals)

	resp, err := http.Get(ts.URL + "/api/signals")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	var got []models.Signal
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 signals, got %d", len(got))
	}
	if got[0].ID != "c" || got[2].ID != "a" {
		t.Errorf("Expected most recent first [c..a], got [%s..%s]", got[0].ID, got[2].ID)
	}
}

func TestGetSignals_Limit(t *testing.T) {
	signals := store.New(20)
	addSignals(signals, "a", "b", "c")
	ts := newTestServer(t, signals)

	resp, err := http.Get(ts.URL + "/api/signals?limit=2")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var got []models.Signal
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 signals, got %d", len(got))
	}
	if got[0].ID != "c" || got[1].ID != "b" {
		t.Errorf("Expected [c b], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestGetSignals_InvalidLimit(t *testing.T) {
	ts := newTestServer(t, store.New(20))

	for _, limit := range []string{"abc", "-1"} {
		resp, err := http.Get(ts.URL + "/api/signals?limit=" + limit)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400 for limit=%s, got %d", limit, resp.StatusCode)
		}
	}
}

func TestGetSignals_EmptyStoreReturnsArray(t *testing.T) {
	ts := newTestServer(t, store.New(20))

	resp, err := http.Get(ts.URL + "/api/signals")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("Expected empty JSON array, got %q", string(body))
	}
}

func TestGetHealth(t *testing.T) {
	signals := store.New(20)
	addSignals(signals, "a")
	ts := newTestServer(t, signals)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var got struct {
		Status  string `json:"status"`
		Signals int    `json:"signals"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got.Status != "healthy" {
		t.Errorf("Expected status healthy, got %q", got.Status)
	}
	if got.Signals != 1 {
		t.Errorf("Expected 1 signal counted, got %d", got.Signals)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, store.New(20))

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestSignalsRejectsWrites(t *testing.T) {
	ts := newTestServer(t, store.New(20))

	resp, err := http.Post(ts.URL+"/api/signals", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}
}
