package models

import "time"

type WatchDirection string

const (
	WatchUp   WatchDirection = "UP"
	WatchDown WatchDirection = "DOWN"
)

type WatchPriceType string

const (
	WatchPriceUSD     WatchPriceType = "USD"
	WatchPriceUSDFoil WatchPriceType = "USD_FOIL"
)

// PriceWatch asks to be told when a card moves ThresholdPercent away from
// LastPrice. Watches are filed under a contact address rather than a user id;
// they are attached to a user by matching Contact against User.Email.
type PriceWatch struct {
	ID               uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	CardID           string         `json:"card_id" gorm:"not null;index"`
	Contact          string         `json:"contact" gorm:"not null;index"`
	Direction        WatchDirection `json:"direction" gorm:"not null"`
	PriceType        WatchPriceType `json:"price_type" gorm:"not null;default:'USD'"`
	ThresholdPercent float64        `json:"threshold_percent"`
	LastPrice        *float64       `json:"last_price"`
	LastNotifiedAt   *time.Time     `json:"last_notified_at"`
	Active           bool           `json:"active" gorm:"default:true;index"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type CreateWatchRequest struct {
	CardID           string         `json:"card_id" binding:"required"`
	Direction        WatchDirection `json:"direction" binding:"required,oneof=UP DOWN"`
	PriceType        WatchPriceType `json:"price_type"`
	ThresholdPercent float64        `json:"threshold_percent" binding:"required,gt=0"`
	LastPrice        *float64       `json:"last_price"`
}
