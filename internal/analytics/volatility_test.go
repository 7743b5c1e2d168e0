package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

func dailySeries(start string, prices ...float64) []models.CardPriceSnapshot {
	first := day(start)
	out := make([]models.CardPriceSnapshot, len(prices))
	for i, p := range prices {
		out[i] = models.CardPriceSnapshot{AsOfDate: first.AddDate(0, 0, i), USD: ptr(p)}
	}
	return out
}

func TestClassifyVolatility(t *testing.T) {
	tests := []struct {
		score float64
		want  models.VolatilityClass
	}{
		{0, models.VolatilityStable},
		{0.0499, models.VolatilityStable},
		{0.05, models.VolatilityWatch},
		{0.1499, models.VolatilityWatch},
		{0.15, models.VolatilitySpeculative},
		{1.2, models.VolatilitySpeculative},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyVolatility(tt.score))
		})
	}
}

func TestClassifyVolatilityTiers(t *testing.T) {
	now := day("2024-03-31").Add(10 * time.Hour)
	entries := []models.CollectionEntry{
		newEntry(1, "stable", 1, ptr(10)),
		newEntry(2, "watch", 1, ptr(11)),
		newEntry(3, "spike", 1, ptr(20)),
		newEntry(4, "lonely", 1, ptr(4)),
		newEntry(5, "unpriced", 1, nil),
	}
	series := normalizeSeries(map[string][]models.CardPriceSnapshot{
		"stable": dailySeries("2024-03-20", 10, 10.1, 9.9, 10),
		"watch":  dailySeries("2024-03-20", 10, 11, 10, 11),
		"spike":  append(dailySeries("2024-02-01", 500), dailySeries("2024-03-20", 10, 20, 10, 20)...),
		"lonely": dailySeries("2024-03-25", 4),
	})
	liquidity := map[string]models.CardLiquiditySnapshot{
		"spike": {CardID: "spike", ListingsCount: intPtr(12), BuylistHigh: ptr(9.5)},
	}

	summary := classifyVolatility(projectPositions(entries), series, liquidity, now)

	assert.Equal(t, 1, summary.StableCount)
	assert.Equal(t, 1, summary.WatchCount)
	assert.Equal(t, 1, summary.SpeculativeCount)
	require.Len(t, summary.Items, 3)

	spike := summary.Items[0]
	assert.Equal(t, "spike", spike.CardID)
	assert.Equal(t, models.VolatilitySpeculative, spike.Classification)
	assert.Equal(t, 0.3849, spike.VolatilityScore)
	assert.Equal(t, []float64{10, 20, 10, 20}, spike.Sparkline)
	assert.Equal(t, 20.0, spike.PriceNow)
	require.NotNil(t, spike.PriceChangePercent)
	assert.Equal(t, 100.0, *spike.PriceChangePercent)
	require.NotNil(t, spike.ListingsCount)
	assert.Equal(t, 12, *spike.ListingsCount)
	assert.Nil(t, spike.BuylistCount)

	assert.Equal(t, "watch", summary.Items[1].CardID)
	assert.Equal(t, models.VolatilityWatch, summary.Items[1].Classification)
	assert.Equal(t, "stable", summary.Items[2].CardID)
	assert.Equal(t, models.VolatilityStable, summary.Items[2].Classification)
	assert.Nil(t, summary.Items[2].ListingsCount)
}

func TestClassifyVolatilityCapsItemsNotCounts(t *testing.T) {
	now := day("2024-03-31")
	var entries []models.CollectionEntry
	series := make(map[string][]models.CardPriceSnapshot)
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("c%02d", i)
		entries = append(entries, newEntry(uint(i+1), id, 1, ptr(10)))
		series[id] = dailySeries("2024-03-10", 10, 10+float64(i+1)/10)
	}

	summary := classifyVolatility(projectPositions(entries), normalizeSeries(series), nil, now)

	assert.Equal(t, 20, summary.StableCount+summary.WatchCount+summary.SpeculativeCount)
	require.Len(t, summary.Items, 15)
	assert.Equal(t, "c19", summary.Items[0].CardID)
}

func TestDownsample(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i) + 0.004
	}

	got := downsample(values, 12)

	require.Len(t, got, 12)
	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 29.0, got[11])
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i], got[i-1])
	}

	assert.Equal(t, []float64{1.23, 4}, downsample([]float64{1.234, 4}, 12))
}

func TestMeanAndSampleStdDev(t *testing.T) {
	mean, sd := meanAndSampleStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 5.0, mean)
	assert.InDelta(t, 2.138, sd, 0.001)

	mean, sd = meanAndSampleStdDev([]float64{3})
	assert.Equal(t, 3.0, mean)
	assert.Zero(t, sd)
}
