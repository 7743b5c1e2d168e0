package analytics

import (
	"time"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

func ptr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func snap(date string, usd, usdFoil *float64) models.CardPriceSnapshot {
	return models.CardPriceSnapshot{AsOfDate: day(date), USD: usd, USDFoil: usdFoil}
}

type entryOpt func(*models.CollectionEntry)

func withFinish(f models.Finish) entryOpt {
	return func(e *models.CollectionEntry) { e.Finish = f }
}

func withAcquired(v float64) entryOpt {
	return func(e *models.CollectionEntry) { e.AcquiredPrice = ptr(v) }
}

func withFoilPrice(v *float64) entryOpt {
	return func(e *models.CollectionEntry) { e.Card.PriceFoilUSD = v }
}

func withCard(fn func(c *models.Card)) entryOpt {
	return func(e *models.CollectionEntry) { fn(&e.Card) }
}

func newEntry(id uint, cardID string, qty int, usd *float64, opts ...entryOpt) models.CollectionEntry {
	e := models.CollectionEntry{
		ID:       id,
		CardID:   cardID,
		Quantity: qty,
		Finish:   models.FinishNonfoil,
		Card: models.Card{
			ID:       cardID,
			Name:     "Card " + cardID,
			SetCode:  "neo",
			Rarity:   "rare",
			PriceUSD: usd,
		},
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}
