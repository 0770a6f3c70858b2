package scanner

import (
	"math"

	"github.com/tokoquant/idxradar/internal/models"
)

// levelSet holds the take-profit and stop-loss multipliers for a mode.
type levelSet struct {
	tp float64
	sl float64
}

var (
	scalperLevels = levelSet{tp: 1.035, sl: 0.992}
	normalLevels  = levelSet{tp: 1.06, sl: 0.99}
	ghostLevels   = levelSet{tp: 1.10, sl: 0.987}
)

// breakoutMinWindow is how much history the volatility squeeze test needs
// before it is meaningful.
const breakoutMinWindow = 10

// detectorFunc inspects the current snapshot against the instrument's window
// as it stood before the current append (oldest first). It returns a
// candidate or nil.
type detectorFunc func(now models.Snapshot, window []models.Snapshot) *models.Candidate

// detectors is the closed set of heuristics. Every entry runs every cycle
// for every instrument so several can fire at once; the order here also
// breaks priority ties, earliest entry winning.
var detectors = []struct {
	mode   models.Mode
	detect detectorFunc
}{
	{models.ModeScalper, detectScalper},
	{models.ModeMicroPump, detectMicroPump},
	{models.ModeBreakout, detectBreakout},
	{models.ModeAccumulation, detectAccumulation},
	{models.ModeRebound, detectRebound},
	{models.ModeLowcap, detectLowcap},
}

// calcLevels derives take-profit and stop-loss prices from an entry, rounded
// to 6 decimals.
func calcLevels(entry float64, set levelSet) (tp, sl float64) {
	return round6(entry * set.tp), round6(entry * set.sl)
}

func round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}

func newCandidate(mode models.Mode, entry float64, set levelSet) *models.Candidate {
	tp, sl := calcLevels(entry, set)
	return &models.Candidate{Mode: mode, Entry: entry, TakeProfit: tp, StopLoss: sl}
}

func lastOf(window []models.Snapshot) (models.Snapshot, bool) {
	if len(window) == 0 {
		return models.Snapshot{}, false
	}
	return window[len(window)-1], true
}

func detectScalper(now models.Snapshot, window []models.Snapshot) *models.Candidate {
	prev, ok := lastOf(window)
	if !ok {
		return nil
	}
	if now.LastPrice > prev.LastPrice*1.008 && now.QuoteVolume > prev.QuoteVolume*1.25 {
		return newCandidate(models.ModeScalper, math.Round(now.LastPrice*0.999), scalperLevels)
	}
	return nil
}

func detectMicroPump(now models.Snapshot, window []models.Snapshot) *models.Candidate {
	prev, ok := lastOf(window)
	if !ok {
		return nil
	}
	if now.LastPrice > prev.LastPrice*1.035 && now.QuoteVolume > prev.QuoteVolume*1.8 {
		return newCandidate(models.ModeMicroPump, math.Round(now.LastPrice*0.995), normalLevels)
	}
	return nil
}

func detectBreakout(now models.Snapshot, window []models.Snapshot) *models.Candidate {
	if len(window) < breakoutMinWindow {
		return nil
	}
	prices := make([]float64, len(window))
	for i, s := range window {
		prices[i] = s.LastPrice
	}
	last := prices[len(prices)-1]
	if pstdev(prices) < last*0.006 && now.LastPrice > last*1.02 {
		return newCandidate(models.ModeBreakout, math.Round(now.LastPrice), normalLevels)
	}
	return nil
}

func detectAccumulation(now models.Snapshot, window []models.Snapshot) *models.Candidate {
	prev, ok := lastOf(window)
	if !ok {
		return nil
	}
	if now.BuyVolume > now.SellVolume*1.7 && now.QuoteVolume > prev.QuoteVolume*1.3 {
		return newCandidate(models.ModeAccumulation, math.Round(now.LastPrice), ghostLevels)
	}
	return nil
}

func detectRebound(now models.Snapshot, window []models.Snapshot) *models.Candidate {
	prev, ok := lastOf(window)
	if !ok {
		return nil
	}
	if prev.LastPrice > now.LastPrice*1.07 && now.QuoteVolume > prev.QuoteVolume*1.4 {
		return newCandidate(models.ModeRebound, math.Round(now.LastPrice), normalLevels)
	}
	return nil
}

func detectLowcap(now models.Snapshot, window []models.Snapshot) *models.Candidate {
	prev, ok := lastOf(window)
	if !ok {
		return nil
	}
	if now.LastPrice < lowPriceThreshold && now.QuoteVolume > prev.QuoteVolume*3 {
		return newCandidate(models.ModeLowcap, math.Round(now.LastPrice), ghostLevels)
	}
	return nil
}
