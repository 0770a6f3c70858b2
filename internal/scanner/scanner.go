// Package scanner implements the detection engine: per-instrument snapshot
// history, the heuristic module set, composite scoring, cooldown gating, and
// alert dispatch.
package scanner

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tokoquant/idxradar/internal/logger"
	"github.com/tokoquant/idxradar/internal/metrics"
	"github.com/tokoquant/idxradar/internal/models"
	"github.com/tokoquant/idxradar/internal/store"
)

// MarketFeed supplies raw ticker summaries and per-instrument order books.
type MarketFeed interface {
	Summaries(ctx context.Context) (map[string]models.RawTicker, error)
	Depth(ctx context.Context, pair string) (models.OrderBook, error)
}

// NewsSource supplies per-instrument news flags. Implementations degrade to
// an empty map on failure; the scanner treats absence as "no news".
type NewsSource interface {
	Flags(ctx context.Context) map[string]bool
}

// Notifier forwards a dispatched signal to the outbound channel.
type Notifier interface {
	SendSignal(sig models.Signal) error
}

// Config holds detection and dispatch behavior.
type Config struct {
	QuoteSuffix    string
	MinQuoteVolume float64
	WindowSize     int
	AlertThreshold float64
	Cooldown       time.Duration
	MaxParallel    int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		QuoteSuffix:    "idr",
		MinQuoteVolume: 1_000_000,
		WindowSize:     12,
		AlertThreshold: 6,
		Cooldown:       4 * time.Minute,
		MaxParallel:    4,
	}
}

// Deps bundles the scanner's collaborators. News, Notifier, and Metrics may
// be nil.
type Deps struct {
	Feed     MarketFeed
	Signals  *store.Store
	News     NewsSource
	Notifier Notifier
	Metrics  *metrics.Recorder
}

// Scanner owns all mutable detection state: history windows, cooldown
// records, and the signal store it feeds. Construct one per process; state
// lives until exit.
type Scanner struct {
	cfg       Config
	feed      MarketFeed
	signals   *store.Store
	news      NewsSource
	notifier  Notifier
	metrics   *metrics.Recorder
	history   *historyStore
	cooldowns *cooldownGate
}

// New creates a scanner.
func New(cfg Config, deps Deps) *Scanner {
	if cfg.MaxParallel < 1 {
		cfg.MaxParallel = 1
	}
	return &Scanner{
		cfg:       cfg,
		feed:      deps.Feed,
		signals:   deps.Signals,
		news:      deps.News,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		history:   newHistoryStore(cfg.WindowSize),
		cooldowns: newCooldownGate(cfg.Cooldown),
	}
}

// Cycle runs one full scan: fetch the summary map, then run the
// per-instrument unit for every pair with the configured quote suffix.
// Instruments are processed with bounded parallelism; each instrument's own
// pipeline stays strictly ordered. Only a summaries failure fails the cycle.
func (s *Scanner) Cycle(ctx context.Context) error {
	start := time.Now()

	tickers, err := s.feed.Summaries(ctx)
	if err != nil {
		s.metrics.RecordFeedError("summaries")
		s.metrics.RecordCycleError()
		return fmt.Errorf("summaries fetch failed: %w", err)
	}

	var flags map[string]bool
	if s.news != nil {
		flags = s.news.Flags(ctx)
	}

	var dispatched atomic.Int32
	processed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxParallel)
	for pair, raw := range tickers {
		if !strings.HasSuffix(pair, s.cfg.QuoteSuffix) {
			continue
		}
		processed++
		pair, raw := pair, raw
		g.Go(func() error {
			if sig := s.processPair(gctx, pair, raw, flags); sig != nil {
				dispatched.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	elapsed := time.Since(start)
	s.metrics.RecordPairsScanned(processed)
	s.metrics.RecordCycle(elapsed.Seconds())
	logger.Info("Cycle complete: %d pairs scanned, %d signals dispatched in %v", processed, dispatched.Load(), elapsed)
	return nil
}

// processPair runs one instrument through the pipeline: normalize, admit
// into history, cooldown guard, detect, score, select, dispatch. It returns
// the dispatched signal, if any.
func (s *Scanner) processPair(ctx context.Context, pair string, raw models.RawTicker, newsFlags map[string]bool) *models.Signal {
	now := time.Now().UTC()

	snap, err := normalizeTicker(raw, s.cfg.QuoteSuffix, now)
	if err != nil {
		logger.Debug("Skipping %s: %v", pair, err)
		return nil
	}
	if snap.QuoteVolume < s.cfg.MinQuoteVolume {
		return nil
	}

	// The reference and window are captured before the append so modules
	// compare the new snapshot against history that does not yet contain it.
	prev, _ := s.history.Previous(pair)
	window := s.history.Window(pair)
	s.history.Append(pair, snap)

	if s.cooldowns.Cooling(pair, now) {
		logger.Debug("Skipping %s: cooling down", pair)
		return nil
	}

	candidates := s.detect(snap, prev, window)
	if len(candidates) == 0 {
		return nil
	}

	imbalance := s.probeImbalance(ctx, pair)
	hasNews := newsFlags[pair]
	for i := range candidates {
		candidates[i].Pair = pair
		candidates[i].Imbalance = imbalance
		candidates[i].News = hasNews
		candidates[i].Priority = priorityOf(candidates[i].RawScore, imbalance, hasNews)
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Priority > best.Priority {
			best = c
		}
	}

	if best.Priority < s.cfg.AlertThreshold {
		logger.Debug("Best candidate for %s below threshold: %s %.2f", pair, best.Mode, best.Priority)
		return nil
	}

	sig := s.dispatch(best, now)
	return &sig
}

// detect evaluates every module. Scoring compares against the previous
// snapshot, except for breakout, whose reference is the second-to-last
// window entry.
func (s *Scanner) detect(now, prev models.Snapshot, window []models.Snapshot) []models.Candidate {
	var out []models.Candidate
	for _, d := range detectors {
		cand := d.detect(now, window)
		if cand == nil {
			continue
		}
		ref := prev
		if d.mode == models.ModeBreakout {
			ref = window[len(window)-2]
		}
		cand.RawScore = rawScore(now, ref)
		out = append(out, *cand)
	}
	return out
}

// probeImbalance fetches the order book and reduces it to a signed skew.
// Any failure degrades to 0 so the candidate survives on its raw score.
func (s *Scanner) probeImbalance(ctx context.Context, pair string) float64 {
	book, err := s.feed.Depth(ctx, pair)
	if err != nil {
		s.metrics.RecordFeedError("depth")
		logger.Debug("Depth probe failed for %s: %v", pair, err)
		return 0
	}
	return bookImbalance(book)
}

// dispatch stores the winning candidate and forwards it best-effort. The
// store insert and the cooldown latch stand even if the send fails.
func (s *Scanner) dispatch(cand models.Candidate, now time.Time) models.Signal {
	sig := models.Signal{
		ID:         uuid.New().String(),
		Mode:       cand.Mode,
		Pair:       cand.Pair,
		Time:       now.Format("15:04:05"),
		Entry:      cand.Entry,
		TakeProfit: cand.TakeProfit,
		StopLoss:   cand.StopLoss,
		Priority:   round1(cand.Priority),
		Imbalance:  cand.Imbalance,
		News:       cand.News,
	}

	s.signals.Add(sig)
	s.cooldowns.MarkDispatched(cand.Pair, now)
	s.metrics.RecordSignal(string(cand.Mode))
	logger.Info("NEW SIGNAL: %s on %s (priority %.1f)", strings.ToUpper(string(sig.Mode)), strings.ToUpper(sig.Pair), sig.Priority)

	if s.notifier != nil {
		if err := s.notifier.SendSignal(sig); err != nil {
			s.metrics.RecordNotifyFailure()
			logger.Error("Failed to deliver %s alert for %s: %v", sig.Mode, sig.Pair, err)
		}
	}
	return sig
}
