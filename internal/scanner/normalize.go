package scanner

import (
	"errors"
	"time"

	"github.com/tokoquant/idxradar/internal/models"
)

// Field name fallbacks for the summary payload shapes seen in the wild.
// Order matters: the first present, coercible key wins.
var (
	priceKeys = []string{"last", "last_price", "price"}
	buyKeys   = []string{"vol_buy", "buy_volume"}
	sellKeys  = []string{"vol_sell", "sell_volume"}
)

// volumeKeys lists quote-volume candidates; the suffix-specific key
// ("vol_idr") is what the live API uses.
func volumeKeys(quoteSuffix string) []string {
	return []string{"vol_" + quoteSuffix, "quote_volume", "vol"}
}

// lookupFloat returns the first present field among keys that coerces to a
// float.
func lookupFloat(raw models.RawTicker, keys []string) (float64, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if f, ok := models.AsFloat(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// normalizeTicker converts a raw summary record into a snapshot. A missing
// quote volume becomes 0 (and is filtered out later by the admission check);
// missing buy/sell volumes each default to half of quote volume.
func normalizeTicker(raw models.RawTicker, quoteSuffix string, at time.Time) (models.Snapshot, error) {
	price, ok := lookupFloat(raw, priceKeys)
	if !ok {
		return models.Snapshot{}, errors.New("no recognizable price field")
	}

	volume, ok := lookupFloat(raw, volumeKeys(quoteSuffix))
	if !ok {
		volume = 0
	}

	buy, ok := lookupFloat(raw, buyKeys)
	if !ok {
		buy = volume * 0.5
	}
	sell, ok := lookupFloat(raw, sellKeys)
	if !ok {
		sell = volume * 0.5
	}

	snap := models.Snapshot{
		LastPrice:   price,
		QuoteVolume: volume,
		BuyVolume:   buy,
		SellVolume:  sell,
		ObservedAt:  at,
	}
	if err := snap.Validate(); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}
