package indodax

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, ClientConfig{
		Timeout:           time.Second,
		MaxRetries:        3,
		RetryDelay:        time.Millisecond,
		RequestsPerSecond: 1000,
	})
}

func TestSummaries(t *testing.T) {
	var gotUA string
	mux := http.NewServeMux()
	mux.HandleFunc("/summaries", func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{
			"tickers": {
				"btc_idr": {"high": "1710000000", "low": "1650000000", "last": "1700000000", "vol_idr": "25000000000", "vol_btc": "14.7"},
				"doge_idr": {"last": 1900, "vol_idr": 5200000000}
			},
			"prices_24h": {"btc_idr": "1680000000"}
		}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv.URL)
	tickers, err := c.Summaries(context.Background())
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(tickers) != 2 {
		t.Fatalf("expected 2 tickers, got %d", len(tickers))
	}
	if _, ok := tickers["btc_idr"]; !ok {
		t.Error("btc_idr missing from tickers")
	}
	if gotUA != "Mozilla/5.0 (compatible; IndodaxScanner/2.0)" {
		t.Errorf("unexpected User-Agent: %q", gotUA)
	}
}

func TestDepthMixedValueTypes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/depth/btc_idr", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"buy": [[1700000000, "0.5"], ["1699000000", 1.25], ["bogus", "x"]],
			"sell": [[1701000000, "2.0"]]
		}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv.URL)
	book, err := c.Depth(context.Background(), "btc_idr")
	if err != nil {
		t.Fatalf("Depth: %v", err)
	}
	if len(book.Buy) != 2 {
		t.Fatalf("expected 2 parseable buy levels, got %d", len(book.Buy))
	}
	if book.Buy[0].Price != 1700000000 || book.Buy[0].Quantity != 0.5 {
		t.Errorf("unexpected first buy level: %+v", book.Buy[0])
	}
	if book.Buy[1].Price != 1699000000 || book.Buy[1].Quantity != 1.25 {
		t.Errorf("unexpected second buy level: %+v", book.Buy[1])
	}
	if len(book.Sell) != 1 {
		t.Fatalf("expected 1 sell level, got %d", len(book.Sell))
	}
}

func TestDoRequestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/summaries", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"tickers": {"btc_idr": {"last": "100"}}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv.URL)
	if _, err := c.Summaries(context.Background()); err != nil {
		t.Fatalf("expected recovery after retries, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestDoRequestExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/summaries", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv.URL)
	if _, err := c.Summaries(context.Background()); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestDoRequestClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/depth/gone_idr", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv.URL)
	if _, err := c.Depth(context.Background(), "gone_idr"); err == nil {
		t.Fatal("expected error for 404")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("404 should not be retried, got %d attempts", got)
	}
}
