// Package analytics computes the portfolio summary for one user's collection.
//
// Everything here is a pure function of its Input: no I/O, no shared state,
// no errors. Missing prices, snapshots and costs all have defined fallbacks,
// and every ratio guards its denominator.
package analytics

import (
	"sort"
	"time"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

const maxTopHoldings = 5

// Input is everything the engine needs, fetched up front by the caller.
type Input struct {
	// Entries must have Card populated.
	Entries []models.CollectionEntry
	// PriceSnapshots is keyed by card id.
	PriceSnapshots map[string][]models.CardPriceSnapshot
	// Liquidity holds the latest observation per card id.
	Liquidity map[string]models.CardLiquiditySnapshot
	// PortfolioSnapshots is keyed by YYYY-MM-DD.
	PortfolioSnapshots map[string]models.PortfolioValueSnapshot
	// Watches are the active watches filed under the user's email.
	Watches []models.PriceWatch
	// Now anchors "today" for the trend and the volatility window. Zero means time.Now().
	Now time.Time
}

// BuildSummary computes the full portfolio summary
func BuildSummary(in Input) models.PortfolioSummary {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	summary := emptySummary(now)
	if len(in.Entries) == 0 {
		return summary
	}

	series := normalizeSeries(in.PriceSnapshots)
	positions := projectPositions(in.Entries)

	totals := computeTotals(positions)
	summary.Totals = totals

	summary.Distributions = buildDistributions(positions, totals.CurrentValue)
	for _, slice := range summary.Distributions.Set {
		summary.DistributionBySet[slice.Key] = slice.TotalValue
	}
	summary.Heatmaps = buildHeatmaps(positions, totals.CurrentValue)
	summary.TopHoldings = topHoldings(positions)
	summary.Trend = reconstructTrend(positions, series, in.PortfolioSnapshots, totals.CostBasis, now)

	summary.MoversByWindow = make([]models.MoverWindow, 0, len(MoverWindows))
	for _, days := range MoverWindows {
		movers, percentages := rankMovers(positions, series, days)
		summary.MoversByWindow = append(summary.MoversByWindow, models.MoverWindow{
			WindowDays:      days,
			PortfolioMovers: movers,
		})
		if days == 1 {
			summary.Movers = movers
			summary.TrendIndicators = buildTrendIndicators(percentages)
		}
	}

	summary.Volatility = classifyVolatility(positions, series, in.Liquidity, now)
	summary.Watchlist = correlateWatchlist(positions, series, in.Watches)

	return summary
}

// emptySummary is the defined result for an empty collection: zero totals,
// empty lists, heatmaps with their full axes.
func emptySummary(now time.Time) models.PortfolioSummary {
	return models.PortfolioSummary{
		Totals:            models.PortfolioTotals{},
		DistributionBySet: make(map[string]float64),
		TopHoldings:       make([]models.Holding, 0),
		Movers: models.PortfolioMovers{
			Gainers: make([]models.PortfolioMover, 0),
			Losers:  make([]models.PortfolioMover, 0),
		},
		Trend: make([]models.TrendPoint, 0),
		Distributions: models.PortfolioDistributions{
			Set:    make([]models.DistributionSlice, 0),
			Finish: make([]models.DistributionSlice, 0),
			Color:  make([]models.DistributionSlice, 0),
			Format: make([]models.DistributionSlice, 0),
			Rarity: make([]models.DistributionSlice, 0),
		},
		Heatmaps:       buildHeatmaps(nil, 0),
		MoversByWindow: make([]models.MoverWindow, 0),
		Volatility: models.VolatilitySummary{
			Items: make([]models.VolatilityItem, 0),
		},
		Watchlist: models.WatchlistSummary{
			Upcoming:  make([]models.WatchlistHighlight, 0),
			Triggered: make([]models.WatchlistHighlight, 0),
		},
		TrendIndicators: make(map[string]models.TrendIndicator),
		LastUpdated:     now.UTC().Format(time.RFC3339),
	}
}

func topHoldings(positions []position) []models.Holding {
	holdings := make([]models.Holding, len(positions))
	for i, p := range positions {
		holdings[i] = p.holding
	}
	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].TotalValue > holdings[j].TotalValue
	})
	if len(holdings) > maxTopHoldings {
		holdings = holdings[:maxTopHoldings]
	}
	return holdings
}
