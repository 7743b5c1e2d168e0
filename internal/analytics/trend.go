package analytics

import (
	"sort"
	"time"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

// reconstructTrend values the collection on every day any card has a price
// snapshot, plus today. Each holding is priced at its snapshot on or before
// that day; cards with no history at all use the live unit price.
func reconstructTrend(
	positions []position,
	series map[string][]models.CardPriceSnapshot,
	portfolio map[string]models.PortfolioValueSnapshot,
	staticCostBasis float64,
	now time.Time,
) []models.TrendPoint {
	days := make(map[string]time.Time)
	for _, s := range series {
		for _, snap := range s {
			day := models.StartOfDay(snap.AsOfDate)
			days[models.DayKey(day)] = day
		}
	}
	today := models.StartOfDay(now)
	days[models.DayKey(today)] = today

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]models.TrendPoint, 0, len(keys))
	for _, key := range keys {
		day := days[key]

		var total float64
		for _, p := range positions {
			price := p.holding.UnitPrice
			if snap, ok := AtOrBefore(series[p.holding.CardID], day); ok {
				price = snapshotPrice(snap, p.holding.Finish)
			}
			total += price * float64(p.holding.Quantity)
		}

		point := models.TrendPoint{
			Date:       key,
			TotalValue: round2(total),
			CostBasis:  staticCostBasis,
		}
		if ps, ok := portfolio[key]; ok {
			if ps.CostBasis != nil {
				point.CostBasis = round2(*ps.CostBasis)
			}
			point.CashFlow = round2(valueOrZero(ps.CashIn) - valueOrZero(ps.CashOut))
			point.Benchmark = ps.BenchmarkValue
		}
		points = append(points, point)
	}
	return points
}
