package analytics

import (
	"math"
	"sort"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

const (
	maxWatchHighlights = 10
	maxWatchProgress   = 200
	triggerProgress    = 100
)

func priceForType(usd, usdFoil *float64, priceType models.WatchPriceType) *float64 {
	src := usd
	if priceType == models.WatchPriceUSDFoil {
		src = usdFoil
	}
	if src == nil {
		return nil
	}
	v := *src
	return &v
}

// correlateWatchlist joins the user's watches with the cards they hold and
// measures how close each watch is to firing. Progress is direction
// normalised: 100 means the threshold has been reached either way.
func correlateWatchlist(positions []position, series map[string][]models.CardPriceSnapshot, watches []models.PriceWatch) models.WatchlistSummary {
	held := make(map[string]position, len(positions))
	for _, p := range positions {
		if _, ok := held[p.holding.CardID]; !ok {
			held[p.holding.CardID] = p
		}
	}

	upcoming := make([]models.WatchlistHighlight, 0)
	triggered := make([]models.WatchlistHighlight, 0)

	for _, w := range watches {
		p, ok := held[w.CardID]
		if !ok {
			continue
		}

		var current *float64
		if snap, ok := latestSnapshot(series[w.CardID]); ok {
			current = priceForType(snap.USD, snap.USDFoil, w.PriceType)
		}
		if current == nil {
			current = priceForType(p.entry.Card.PriceUSD, p.entry.Card.PriceFoilUSD, w.PriceType)
		}

		baseline := current
		if w.LastPrice != nil {
			baseline = w.LastPrice
		}

		h := models.WatchlistHighlight{
			WatchID:          w.ID,
			CardID:           w.CardID,
			Name:             p.holding.Name,
			SetCode:          p.holding.SetCode,
			ImageSmall:       p.holding.ImageSmall,
			Direction:        w.Direction,
			PriceType:        w.PriceType,
			ThresholdPercent: w.ThresholdPercent,
			Baseline:         roundPtr(baseline),
			CurrentPrice:     roundPtr(current),
			LastNotifiedAt:   w.LastNotifiedAt,
		}

		// Triggering compares the unrounded progress, so 99.996% stays upcoming
		// even though it displays as 100.
		var progress float64
		if baseline != nil && *baseline > 0 && current != nil {
			delta := (*current - *baseline) / *baseline * 100
			normalized := delta
			factor := 1 + w.ThresholdPercent/100
			if w.Direction == models.WatchDown {
				normalized = -delta
				factor = 1 - w.ThresholdPercent/100
			}

			if w.ThresholdPercent > 0 {
				progress = math.Max(0, math.Min(maxWatchProgress, normalized/w.ThresholdPercent*100))
			}

			h.DeltaPercent = floatPtr(round2(delta))
			h.ProgressPercent = round2(progress)
			h.TargetPrice = floatPtr(round2(*baseline * factor))
		}

		h.Triggered = progress >= triggerProgress || w.LastNotifiedAt != nil
		if h.Triggered {
			triggered = append(triggered, h)
		} else {
			upcoming = append(upcoming, h)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].ProgressPercent > upcoming[j].ProgressPercent
	})
	sort.SliceStable(triggered, func(i, j int) bool {
		a, b := triggered[i].LastNotifiedAt, triggered[j].LastNotifiedAt
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.After(*b)
	})

	if len(upcoming) > maxWatchHighlights {
		upcoming = upcoming[:maxWatchHighlights]
	}
	if len(triggered) > maxWatchHighlights {
		triggered = triggered[:maxWatchHighlights]
	}
	return models.WatchlistSummary{Upcoming: upcoming, Triggered: triggered}
}
