package models

import (
	"time"
)

// Card is a cached Scryfall printing. Prices are nullable: Scryfall omits
// usd/usd_foil for printings that have no market in that finish.
type Card struct {
	ID             string            `json:"id" gorm:"primaryKey"`
	Name           string            `json:"name" gorm:"not null;index"`
	SetName        string            `json:"set_name"`
	SetCode        string            `json:"set_code" gorm:"index"`
	CardNumber     string            `json:"card_number"`
	Rarity         string            `json:"rarity"`
	ColorIdentity  []string          `json:"color_identity" gorm:"serializer:json"`
	Legalities     map[string]string `json:"legalities" gorm:"serializer:json"`
	ImageURLSmall  string            `json:"image_url_small"`
	ImageURL       string            `json:"image_url"`
	ImageURLLarge  string            `json:"image_url_large"`
	PriceUSD       *float64          `json:"price_usd"`
	PriceFoilUSD   *float64          `json:"price_usd_foil"`
	PriceUpdatedAt *time.Time        `json:"price_updated_at"`
	LastPriceCheck *time.Time        `json:"last_price_check"` // When we last attempted to fetch price
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type CardSearchResult struct {
	Cards      []Card `json:"cards"`
	TotalCount int    `json:"total_count"`
	HasMore    bool   `json:"has_more"`
}
