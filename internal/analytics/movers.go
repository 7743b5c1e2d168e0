package analytics

import (
	"sort"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

// MoverWindows are the lookback lengths, in days, movers are ranked over
var MoverWindows = []int{1, 7, 30}

const (
	maxMovers = 5

	// trendDeadZone keeps sub-quarter-percent daily moves classified FLAT
	trendDeadZone = 0.25
)

// rankMovers compares each holding's latest snapshot price with its price
// windowDays earlier. It also returns the gain percentage per card, which
// stays nil when the starting price was not positive.
func rankMovers(positions []position, series map[string][]models.CardPriceSnapshot, windowDays int) (models.PortfolioMovers, map[string]*float64) {
	gainers := make([]models.PortfolioMover, 0)
	losers := make([]models.PortfolioMover, 0)
	percentages := make(map[string]*float64)

	for _, p := range positions {
		s := series[p.holding.CardID]
		latest, ok := latestSnapshot(s)
		if !ok {
			continue
		}

		then, _ := AtOrBefore(s, models.StartOfDay(latest.AsOfDate).AddDate(0, 0, -windowDays))
		priceNow := snapshotPrice(latest, p.holding.Finish)
		priceThen := snapshotPrice(then, p.holding.Finish)
		delta := priceNow - priceThen

		var pct *float64
		if priceThen > 0 {
			pct = floatPtr(round2(delta / priceThen * 100))
		}
		percentages[p.holding.CardID] = pct

		mover := models.PortfolioMover{
			Holding:        p.holding,
			CostBasis:      roundPtr(p.costBasis()),
			Gain:           round2(delta * float64(p.holding.Quantity)),
			GainPerUnit:    round2(delta),
			GainPercentage: valueOrZero(pct),
		}
		switch {
		case mover.Gain > 0:
			gainers = append(gainers, mover)
		case mover.Gain < 0:
			losers = append(losers, mover)
		}
	}

	sort.SliceStable(gainers, func(i, j int) bool { return gainers[i].Gain > gainers[j].Gain })
	sort.SliceStable(losers, func(i, j int) bool { return losers[i].Gain < losers[j].Gain })
	if len(gainers) > maxMovers {
		gainers = gainers[:maxMovers]
	}
	if len(losers) > maxMovers {
		losers = losers[:maxMovers]
	}

	return models.PortfolioMovers{Gainers: gainers, Losers: losers}, percentages
}

// ResolveTrendDirection classifies a daily change percentage
func ResolveTrendDirection(percentage *float64) models.TrendDirection {
	switch {
	case percentage == nil:
		return models.TrendFlat
	case *percentage > trendDeadZone:
		return models.TrendUp
	case *percentage < -trendDeadZone:
		return models.TrendDown
	default:
		return models.TrendFlat
	}
}

func buildTrendIndicators(daily map[string]*float64) map[string]models.TrendIndicator {
	indicators := make(map[string]models.TrendIndicator, len(daily))
	for cardID, pct := range daily {
		indicators[cardID] = models.TrendIndicator{
			Direction:  ResolveTrendDirection(pct),
			Percentage: pct,
		}
	}
	return indicators
}
