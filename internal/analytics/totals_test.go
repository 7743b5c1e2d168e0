package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

func TestComputeTotals(t *testing.T) {
	entries := []models.CollectionEntry{
		newEntry(1, "a", 2, ptr(10), withAcquired(6)),
		newEntry(2, "b", 1, ptr(5.5), withAcquired(4)),
		newEntry(3, "c", 3, ptr(1)), // no recorded cost
	}

	totals := ComputeTotals(entries)

	assert.Equal(t, 28.5, totals.CurrentValue)
	assert.Equal(t, 16.0, totals.CostBasis)
	assert.Equal(t, 12.5, totals.UnrealizedGain)
	require.NotNil(t, totals.GainPercentage)
	assert.Equal(t, 78.13, *totals.GainPercentage)
}

func TestComputeTotalsWithoutCostBasis(t *testing.T) {
	totals := ComputeTotals([]models.CollectionEntry{newEntry(1, "a", 1, ptr(3))})

	assert.Equal(t, 3.0, totals.CurrentValue)
	assert.Equal(t, 0.0, totals.CostBasis)
	assert.Equal(t, 3.0, totals.UnrealizedGain)
	assert.Nil(t, totals.GainPercentage)
}

func TestComputeTotalsLoss(t *testing.T) {
	totals := ComputeTotals([]models.CollectionEntry{newEntry(1, "a", 1, ptr(3), withAcquired(4))})

	assert.Equal(t, -1.0, totals.UnrealizedGain)
	require.NotNil(t, totals.GainPercentage)
	assert.Equal(t, -25.0, *totals.GainPercentage)
}
