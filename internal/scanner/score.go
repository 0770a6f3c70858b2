package scanner

import (
	"math"

	"github.com/tokoquant/idxradar/internal/models"
)

// lowPriceThreshold marks "cheap" instruments in absolute quote units; they
// qualify for the lowcap module and earn a small score bonus.
const lowPriceThreshold = 200.0

// probeLevels is how many order-book levels per side feed the imbalance sum.
const probeLevels = 8

// rawScore accumulates the fixed heuristic increments for a candidate,
// comparing the current snapshot against its scoring reference.
func rawScore(now, ref models.Snapshot) int {
	score := 0
	if now.LastPrice > ref.LastPrice*1.01 {
		score += 2
	}
	if now.LastPrice > ref.LastPrice*1.03 {
		score += 4
	}
	if now.QuoteVolume > ref.QuoteVolume*1.5 {
		score += 3
	}
	if now.QuoteVolume > ref.QuoteVolume*2.5 {
		score += 5
	}
	if now.BuyVolume > now.SellVolume*1.4 {
		score += 3
	}
	if now.BuyVolume > now.SellVolume*2.0 {
		score += 5
	}
	if now.LastPrice < lowPriceThreshold {
		score += 2
	}
	return score
}

// priorityOf combines a raw score with the imbalance magnitude and the news
// boost into the value candidates are ranked and thresholded by.
func priorityOf(raw int, imbalance float64, news bool) float64 {
	p := float64(raw) + math.Abs(imbalance)*0.15
	if news {
		p += 8
	}
	return p
}

// bookImbalance reduces an order book to a signed percentage skew between
// top-of-book buy and sell quantities, rounded to one decimal. An empty book
// yields 0.
func bookImbalance(book models.OrderBook) float64 {
	buy := sumQuantities(book.Buy)
	sell := sumQuantities(book.Sell)
	if buy+sell == 0 {
		return 0
	}
	return round1((buy - sell) / (buy + sell) * 100)
}

func sumQuantities(levels []models.Level) float64 {
	if len(levels) > probeLevels {
		levels = levels[:probeLevels]
	}
	var sum float64
	for _, l := range levels {
		sum += l.Quantity
	}
	return sum
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
