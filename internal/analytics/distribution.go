package analytics

import (
	"sort"
	"strings"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

const maxDistributionSlices = 12

type bucketKey struct {
	Key   string
	Label string
}

// bucketResolver returns every bucket a position belongs to. A position in N
// buckets contributes 1/N of its value and quantity to each.
type bucketResolver func(p position) []bucketKey

type bucketAccumulator struct {
	key      string
	label    string
	value    float64
	quantity float64
}

func aggregateDistribution(positions []position, grandTotal float64, resolve bucketResolver) []models.DistributionSlice {
	buckets := make(map[string]*bucketAccumulator)
	for _, p := range positions {
		keys := resolve(p)
		if len(keys) == 0 {
			continue
		}
		weight := 1 / float64(len(keys))
		for _, k := range keys {
			acc, ok := buckets[k.Key]
			if !ok {
				acc = &bucketAccumulator{key: k.Key, label: k.Label}
				buckets[k.Key] = acc
			}
			acc.value += p.holding.TotalValue * weight
			acc.quantity += float64(p.holding.Quantity) * weight
		}
	}

	accs := make([]*bucketAccumulator, 0, len(buckets))
	for _, acc := range buckets {
		accs = append(accs, acc)
	}
	sort.Slice(accs, func(i, j int) bool {
		if accs[i].value != accs[j].value {
			return accs[i].value > accs[j].value
		}
		return accs[i].key < accs[j].key
	})
	if len(accs) > maxDistributionSlices {
		accs = accs[:maxDistributionSlices]
	}

	slices := make([]models.DistributionSlice, 0, len(accs))
	for _, acc := range accs {
		slice := models.DistributionSlice{
			Key:        acc.key,
			Label:      acc.label,
			TotalValue: round2(acc.value),
			Quantity:   round2(acc.quantity),
		}
		if grandTotal > 0 {
			slice.Percentage = round2(acc.value / grandTotal * 100)
		}
		if acc.quantity > 0 {
			slice.AveragePrice = round2(acc.value / acc.quantity)
		}
		slices = append(slices, slice)
	}
	return slices
}

func bySet(p position) []bucketKey {
	code := strings.ToUpper(strings.TrimSpace(p.holding.SetCode))
	if code == "" {
		return nil
	}
	return []bucketKey{{Key: code, Label: code}}
}

func byFinish(p position) []bucketKey {
	return []bucketKey{{Key: string(p.holding.Finish), Label: finishLabel(p.holding.Finish)}}
}

func byColor(p position) []bucketKey {
	bucket := p.holding.PrimaryColorBucket
	return []bucketKey{{Key: bucket, Label: colorLabel(bucket)}}
}

func byFormat(p position) []bucketKey {
	if p.holding.PrimaryFormat == nil {
		return []bucketKey{{Key: keyOther, Label: bucketOther}}
	}
	format := *p.holding.PrimaryFormat
	return []bucketKey{{Key: format, Label: capitalize(format)}}
}

func byRarity(p position) []bucketKey {
	rarity := NormalizeRarity(p.holding.Rarity)
	return []bucketKey{{Key: rarity, Label: capitalize(rarity)}}
}

func buildDistributions(positions []position, grandTotal float64) models.PortfolioDistributions {
	return models.PortfolioDistributions{
		Set:    aggregateDistribution(positions, grandTotal, bySet),
		Finish: aggregateDistribution(positions, grandTotal, byFinish),
		Color:  aggregateDistribution(positions, grandTotal, byColor),
		Format: aggregateDistribution(positions, grandTotal, byFormat),
		Rarity: aggregateDistribution(positions, grandTotal, byRarity),
	}
}
