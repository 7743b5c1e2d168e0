package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

const (
	volatilityLookbackDays = 30
	sparklinePoints        = 12
	maxVolatilityItems     = 15

	stableThreshold      = 0.05
	speculativeThreshold = 0.15
)

// ClassifyVolatility maps a coefficient of variation to a stability tier
func ClassifyVolatility(score float64) models.VolatilityClass {
	switch {
	case score < stableThreshold:
		return models.VolatilityStable
	case score < speculativeThreshold:
		return models.VolatilityWatch
	default:
		return models.VolatilitySpeculative
	}
}

type scoredItem struct {
	item  models.VolatilityItem
	score float64
}

// classifyVolatility scores every holding over its last 30 days of prices.
// Holdings with fewer than two prices, or a non-positive mean, are skipped.
func classifyVolatility(
	positions []position,
	series map[string][]models.CardPriceSnapshot,
	liquidity map[string]models.CardLiquiditySnapshot,
	now time.Time,
) models.VolatilitySummary {
	summary := models.VolatilitySummary{Items: make([]models.VolatilityItem, 0)}
	windowStart := models.StartOfDay(now).AddDate(0, 0, -volatilityLookbackDays)

	scored := make([]scoredItem, 0, len(positions))
	for _, p := range positions {
		prices := recentPrices(series[p.holding.CardID], windowStart, p.holding.Finish)
		if len(prices) == 0 {
			prices = []float64{p.holding.UnitPrice}
		}
		if len(prices) < 2 {
			continue
		}

		mean, stdDev := meanAndSampleStdDev(prices)
		if mean <= 0 {
			continue
		}
		score := stdDev / mean
		class := ClassifyVolatility(score)
		switch class {
		case models.VolatilityStable:
			summary.StableCount++
		case models.VolatilityWatch:
			summary.WatchCount++
		default:
			summary.SpeculativeCount++
		}

		first, last := prices[0], prices[len(prices)-1]
		item := models.VolatilityItem{
			HoldingID:       p.holding.ID,
			CardID:          p.holding.CardID,
			Name:            p.holding.Name,
			SetCode:         p.holding.SetCode,
			Finish:          p.holding.Finish,
			ImageSmall:      p.holding.ImageSmall,
			VolatilityScore: roundTo(score, 4),
			Classification:  class,
			Sparkline:       downsample(prices, sparklinePoints),
			PriceNow:        round2(last),
		}
		if first > 0 {
			item.PriceChangePercent = floatPtr(round2((last - first) / first * 100))
		}
		if l, ok := liquidity[p.holding.CardID]; ok {
			item.ListingsCount = l.ListingsCount
			item.BuylistCount = l.BuylistCount
			item.BuylistHigh = l.BuylistHigh
		}
		scored = append(scored, scoredItem{item: item, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > maxVolatilityItems {
		scored = scored[:maxVolatilityItems]
	}
	for _, s := range scored {
		summary.Items = append(summary.Items, s.item)
	}
	return summary
}

func recentPrices(series []models.CardPriceSnapshot, windowStart time.Time, finish models.Finish) []float64 {
	prices := make([]float64, 0, len(series))
	for _, snap := range series {
		if models.StartOfDay(snap.AsOfDate).Before(windowStart) {
			continue
		}
		prices = append(prices, snapshotPrice(snap, finish))
	}
	return prices
}

// meanAndSampleStdDev uses an n-1 denominator, floored at 1
func meanAndSampleStdDev(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	denom := float64(len(values) - 1)
	if denom < 1 {
		denom = 1
	}
	return mean, math.Sqrt(sq / denom)
}

// downsample keeps at most max points, picked at evenly spaced indices so the
// first and last prices always survive. Values are rounded to cents.
func downsample(values []float64, max int) []float64 {
	if len(values) <= max {
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = round2(v)
		}
		return out
	}

	out := make([]float64, max)
	last := len(values) - 1
	for i := 0; i < max; i++ {
		out[i] = round2(values[i*last/(max-1)])
	}
	return out
}
