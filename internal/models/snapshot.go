package models

import (
	"time"
)

// CardPriceSnapshot is the recorded market price of a card on one day.
// Rows are historical fact and are never rewritten once the day is over.
type CardPriceSnapshot struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CardID      string    `json:"card_id" gorm:"not null;uniqueIndex:idx_card_price_day"`
	AsOfDate    time.Time `json:"as_of_date" gorm:"not null;uniqueIndex:idx_card_price_day"`
	USD         *float64  `json:"usd"`
	USDFoil     *float64  `json:"usd_foil"`
	DemandScore *float64  `json:"demand_score"`
	CreatedAt   time.Time `json:"created_at"`
}

// CardLiquiditySnapshot records how actively a card trades as of a date
type CardLiquiditySnapshot struct {
	ID            uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CardID        string    `json:"card_id" gorm:"not null;index"`
	AsOfDate      time.Time `json:"as_of_date" gorm:"not null;index"`
	ListingsCount *int      `json:"listings_count"`
	BuylistCount  *int      `json:"buylist_count"`
	BuylistHigh   *float64  `json:"buylist_high"`
	CreatedAt     time.Time `json:"created_at"`
}

type RecordLiquidityRequest struct {
	AsOfDate      string   `json:"as_of_date"` // YYYY-MM-DD, defaults to today
	ListingsCount *int     `json:"listings_count"`
	BuylistCount  *int     `json:"buylist_count"`
	BuylistHigh   *float64 `json:"buylist_high"`
}

// PortfolioValueSnapshot stores one user's daily portfolio figures
type PortfolioValueSnapshot struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID         uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_portfolio_user_day"`
	SnapshotDate   time.Time `json:"snapshot_date" gorm:"not null;uniqueIndex:idx_portfolio_user_day"`
	TotalValue     float64   `json:"total_value"`
	TotalCards     int       `json:"total_cards"`
	CostBasis      *float64  `json:"cost_basis"`
	CashIn         *float64  `json:"cash_in"`
	CashOut        *float64  `json:"cash_out"`
	BenchmarkValue *float64  `json:"benchmark_value"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ValueHistoryResponse is the API response for value history
type ValueHistoryResponse struct {
	Snapshots []PortfolioValueSnapshot `json:"snapshots"`
	Period    string                   `json:"period"` // "week", "month", "3month", "year", "all"
}

// PriceHistoryResponse is the API response for a card's price snapshots
type PriceHistoryResponse struct {
	CardID    string              `json:"card_id"`
	Snapshots []CardPriceSnapshot `json:"snapshots"`
}

// DayKey is the UTC calendar day used to key snapshots and trend points
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// StartOfDay truncates t to midnight UTC
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
