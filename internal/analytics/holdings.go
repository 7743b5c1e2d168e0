package analytics

import (
	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

// position pairs a projected holding with the ledger entry it came from.
// The entry carries what the holding drops: acquisition cost, live prices,
// legalities.
type position struct {
	holding models.Holding
	entry   models.CollectionEntry
}

// costBasis is acquired price times quantity, nil when no cost was recorded
func (p position) costBasis() *float64 {
	if p.entry.AcquiredPrice == nil {
		return nil
	}
	v := *p.entry.AcquiredPrice * float64(p.holding.Quantity)
	return &v
}

// ResolveUnitPrice returns the live market price for an entry's finish
func ResolveUnitPrice(entry models.CollectionEntry) float64 {
	return resolvePrice(entry.Card.PriceUSD, entry.Card.PriceFoilUSD, holdingFinish(entry))
}

func holdingFinish(entry models.CollectionEntry) models.Finish {
	if entry.Finish.Valid() {
		return entry.Finish
	}
	return models.NormalizeFinish(string(entry.Finish))
}

// ProjectHolding prices one collection entry at its card's live price
func ProjectHolding(entry models.CollectionEntry) models.Holding {
	quantity := entry.Quantity
	if quantity < 0 {
		quantity = 0
	}

	unitPrice := round2(ResolveUnitPrice(entry))

	identity := make([]string, len(entry.Card.ColorIdentity))
	copy(identity, entry.Card.ColorIdentity)

	return models.Holding{
		ID:                 entry.ID,
		CardID:             entry.CardID,
		Name:               entry.Card.Name,
		SetCode:            entry.Card.SetCode,
		Quantity:           quantity,
		Finish:             holdingFinish(entry),
		ImageSmall:         entry.Card.ImageURLSmall,
		UnitPrice:          unitPrice,
		TotalValue:         round2(unitPrice * float64(quantity)),
		Rarity:             entry.Card.Rarity,
		ColorIdentity:      identity,
		PrimaryColorBucket: PrimaryColorBucket(entry.Card.ColorIdentity),
		PrimaryFormat:      PrimaryFormat(entry.Card.Legalities),
	}
}

func projectPositions(entries []models.CollectionEntry) []position {
	positions := make([]position, len(entries))
	for i, e := range entries {
		positions[i] = position{holding: ProjectHolding(e), entry: e}
	}
	return positions
}
