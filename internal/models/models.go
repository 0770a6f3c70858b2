// Package models defines the core domain entities: snapshots, candidates,
// signals, and order books.
package models

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"
)

// Mode identifies which detection heuristic produced a signal.
type Mode string

const (
	ModeScalper      Mode = "scalper"
	ModeMicroPump    Mode = "micro_pump"
	ModeBreakout     Mode = "breakout"
	ModeAccumulation Mode = "accumulation"
	ModeRebound      Mode = "rebound"
	ModeLowcap       Mode = "lowcap"
)

// RawTicker is one instrument's summary record as delivered by the exchange.
// Field names and value types vary between API shapes, so it stays untyped
// until normalization.
type RawTicker map[string]any

// Snapshot is one normalized observation of an instrument's price and volume
// state. BuyVolume and SellVolume are estimates when the feed does not report
// them directly.
type Snapshot struct {
	LastPrice   float64   `json:"last_price"`
	QuoteVolume float64   `json:"quote_volume"`
	BuyVolume   float64   `json:"buy_volume"`
	SellVolume  float64   `json:"sell_volume"`
	ObservedAt  time.Time `json:"observed_at"`
}

// Validate checks snapshot field constraints.
func (s *Snapshot) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"last price", s.LastPrice},
		{"quote volume", s.QuoteVolume},
		{"buy volume", s.BuyVolume},
		{"sell volume", s.SellVolume},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return errors.New(f.name + " must be finite")
		}
		if f.value < 0 {
			return errors.New(f.name + " must not be negative")
		}
	}
	if s.ObservedAt.IsZero() {
		return errors.New("observed at must be set")
	}
	return nil
}

// Candidate is a detection module's proposed signal for one instrument in one
// cycle. Pair, Imbalance, News, and Priority are filled in during scoring;
// a candidate that loses the intra-cycle selection is discarded.
type Candidate struct {
	Mode       Mode
	Entry      float64
	TakeProfit float64
	StopLoss   float64
	RawScore   int

	Pair      string
	Imbalance float64
	News      bool
	Priority  float64
}

// Signal is the stored record of a dispatched alert. Time is the dispatch
// wall clock formatted HH:MM:SS in UTC, matching what dashboard consumers
// expect.
type Signal struct {
	ID         string  `json:"id"`
	Mode       Mode    `json:"mode"`
	Pair       string  `json:"pair"`
	Time       string  `json:"time"`
	Entry      float64 `json:"entry"`
	TakeProfit float64 `json:"tp"`
	StopLoss   float64 `json:"sl"`
	Priority   float64 `json:"priority"`
	Imbalance  float64 `json:"imbalance"`
	News       bool    `json:"news"`
}

// Level is one order-book price level.
type Level struct {
	Price    float64
	Quantity float64
}

// OrderBook holds both sides of an instrument's book, best price first.
type OrderBook struct {
	Buy  []Level
	Sell []Level
}

// AsFloat coerces a decoded JSON value to float64. Exchange payloads mix
// numbers, numeric strings, and json.Number for the same field.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
