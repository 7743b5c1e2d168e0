package analytics

import (
	"sort"
	"time"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

// AtOrBefore returns the latest snapshot dated on or before target's day.
// When every snapshot is later than target, the series' last entry is
// returned instead. ok is false only for an empty series. The series must be
// sorted by AsOfDate ascending.
//
// Trend reconstruction, mover ranking and watch correlation all go through
// this one lookup so their edge cases agree.
func AtOrBefore(series []models.CardPriceSnapshot, target time.Time) (snap models.CardPriceSnapshot, ok bool) {
	if len(series) == 0 {
		return models.CardPriceSnapshot{}, false
	}

	day := models.StartOfDay(target)
	i := sort.Search(len(series), func(i int) bool {
		return models.StartOfDay(series[i].AsOfDate).After(day)
	})
	if i == 0 {
		return series[len(series)-1], true
	}
	return series[i-1], true
}

// latestSnapshot is the series' most recent observation
func latestSnapshot(series []models.CardPriceSnapshot) (models.CardPriceSnapshot, bool) {
	if len(series) == 0 {
		return models.CardPriceSnapshot{}, false
	}
	return series[len(series)-1], true
}

// resolvePrice applies the finish preference: foil finishes read the foil
// price first, everything else the regular price first, each falling back to
// the other. Both missing prices to 0.
func resolvePrice(usd, usdFoil *float64, finish models.Finish) float64 {
	first, second := usd, usdFoil
	if finish.IsFoilVariant() {
		first, second = usdFoil, usd
	}
	if first != nil {
		return *first
	}
	if second != nil {
		return *second
	}
	return 0
}

func snapshotPrice(snap models.CardPriceSnapshot, finish models.Finish) float64 {
	return resolvePrice(snap.USD, snap.USDFoil, finish)
}

// normalizeSeries copies every series sorted by date so the engine never
// depends on, or mutates, the caller's ordering.
func normalizeSeries(in map[string][]models.CardPriceSnapshot) map[string][]models.CardPriceSnapshot {
	out := make(map[string][]models.CardPriceSnapshot, len(in))
	for cardID, series := range in {
		if len(series) == 0 {
			continue
		}
		sorted := make([]models.CardPriceSnapshot, len(series))
		copy(sorted, series)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].AsOfDate.Before(sorted[j].AsOfDate)
		})
		out[cardID] = sorted
	}
	return out
}
