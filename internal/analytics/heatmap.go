package analytics

import (
	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

type cellKey struct {
	x, y string
}

type cellAccumulator struct {
	value    float64
	quantity int
}

// buildHeatmap cross-tabulates positions onto fixed axes. Each position lands
// whole in exactly one cell; every axis combination is emitted, empty or not.
func buildHeatmap(xAxis, yAxis []string, positions []position, grandTotal float64, cellOf func(p position) cellKey) models.Heatmap {
	cells := make(map[cellKey]*cellAccumulator)
	for _, p := range positions {
		k := cellOf(p)
		acc, ok := cells[k]
		if !ok {
			acc = &cellAccumulator{}
			cells[k] = acc
		}
		acc.value += p.holding.TotalValue
		acc.quantity += p.holding.Quantity
	}

	out := models.Heatmap{
		XAxis: append([]string(nil), xAxis...),
		YAxis: append([]string(nil), yAxis...),
		Cells: make([]models.HeatmapCell, 0, len(xAxis)*len(yAxis)),
	}
	for _, x := range xAxis {
		for _, y := range yAxis {
			cell := models.HeatmapCell{X: x, Y: y}
			if acc, ok := cells[cellKey{x, y}]; ok {
				cell.TotalValue = round2(acc.value)
				cell.Quantity = acc.quantity
				if grandTotal > 0 {
					cell.Percentage = round2(acc.value / grandTotal * 100)
				}
			}
			out.Cells = append(out.Cells, cell)
		}
	}
	return out
}

func formatAxis() []string {
	axis := make([]string, 0, len(FormatPriority)+1)
	for _, f := range FormatPriority {
		axis = append(axis, capitalize(f))
	}
	return append(axis, bucketOther)
}

func rarityAxis() []string {
	axis := make([]string, 0, len(RarityTiers)+1)
	for _, r := range RarityTiers {
		axis = append(axis, capitalize(r))
	}
	return append(axis, bucketOther)
}

func finishAxis() []string {
	finishes := models.AllFinishes()
	axis := make([]string, len(finishes))
	for i, f := range finishes {
		axis[i] = string(f)
	}
	return axis
}

func formatBucket(p position) string {
	if f := p.holding.PrimaryFormat; f != nil && isPriorityFormat(*f) {
		return capitalize(*f)
	}
	return bucketOther
}

func buildHeatmaps(positions []position, grandTotal float64) models.PortfolioHeatmaps {
	return models.PortfolioHeatmaps{
		FormatColor: buildHeatmap(formatAxis(), ColorBuckets, positions, grandTotal, func(p position) cellKey {
			return cellKey{x: formatBucket(p), y: p.holding.PrimaryColorBucket}
		}),
		RarityFinish: buildHeatmap(rarityAxis(), finishAxis(), positions, grandTotal, func(p position) cellKey {
			return cellKey{x: capitalize(NormalizeRarity(p.holding.Rarity)), y: string(p.holding.Finish)}
		}),
	}
}
