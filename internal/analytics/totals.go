package analytics

import (
	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

// ComputeTotals sums value and cost basis over a collection. Entries without
// a recorded acquisition price are left out of the cost basis rather than
// counted as free.
func ComputeTotals(entries []models.CollectionEntry) models.PortfolioTotals {
	return computeTotals(projectPositions(entries))
}

func computeTotals(positions []position) models.PortfolioTotals {
	var value, basis float64
	for _, p := range positions {
		value += p.holding.TotalValue
		if cb := p.costBasis(); cb != nil {
			basis += *cb
		}
	}

	totals := models.PortfolioTotals{
		CurrentValue: round2(value),
		CostBasis:    round2(basis),
	}
	totals.UnrealizedGain = round2(totals.CurrentValue - totals.CostBasis)
	if totals.CostBasis != 0 {
		totals.GainPercentage = floatPtr(round2(totals.UnrealizedGain / totals.CostBasis * 100))
	}
	return totals
}
