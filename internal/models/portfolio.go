package models

import "time"

// Holding is a priced view of one collection entry. It is derived on every
// summary request and never stored.
type Holding struct {
	ID                 uint     `json:"id"`
	CardID             string   `json:"card_id"`
	Name               string   `json:"name"`
	SetCode            string   `json:"set_code"`
	Quantity           int      `json:"quantity"`
	Finish             Finish   `json:"finish"`
	ImageSmall         string   `json:"image_small,omitempty"`
	UnitPrice          float64  `json:"unit_price"`
	TotalValue         float64  `json:"total_value"`
	Rarity             string   `json:"rarity,omitempty"`
	ColorIdentity      []string `json:"color_identity"`
	PrimaryColorBucket string   `json:"primary_color_bucket"`
	PrimaryFormat      *string  `json:"primary_format"`
}

type PortfolioTotals struct {
	CurrentValue   float64  `json:"current_value"`
	CostBasis      float64  `json:"cost_basis"`
	UnrealizedGain float64  `json:"unrealized_gain"`
	GainPercentage *float64 `json:"gain_percentage"`
}

type TrendPoint struct {
	Date       string   `json:"date"`
	TotalValue float64  `json:"total_value"`
	CostBasis  float64  `json:"cost_basis"`
	CashFlow   float64  `json:"cash_flow"`
	Benchmark  *float64 `json:"benchmark,omitempty"`
}

type DistributionSlice struct {
	Key          string  `json:"key"`
	Label        string  `json:"label"`
	TotalValue   float64 `json:"total_value"`
	Quantity     float64 `json:"quantity"`
	Percentage   float64 `json:"percentage"`
	AveragePrice float64 `json:"average_price"`
}

type PortfolioDistributions struct {
	Set    []DistributionSlice `json:"set"`
	Finish []DistributionSlice `json:"finish"`
	Color  []DistributionSlice `json:"color"`
	Format []DistributionSlice `json:"format"`
	Rarity []DistributionSlice `json:"rarity"`
}

type HeatmapCell struct {
	X          string  `json:"x"`
	Y          string  `json:"y"`
	TotalValue float64 `json:"total_value"`
	Quantity   int     `json:"quantity"`
	Percentage float64 `json:"percentage"`
}

type Heatmap struct {
	XAxis []string      `json:"x_axis"`
	YAxis []string      `json:"y_axis"`
	Cells []HeatmapCell `json:"cells"`
}

type PortfolioHeatmaps struct {
	FormatColor  Heatmap `json:"format_color"`
	RarityFinish Heatmap `json:"rarity_finish"`
}

// PortfolioMover is a holding ranked by its value change over a window.
// GainPercentage is 0 when the window start price was not positive.
type PortfolioMover struct {
	Holding
	CostBasis      *float64 `json:"cost_basis"`
	Gain           float64  `json:"gain"`
	GainPerUnit    float64  `json:"gain_per_unit"`
	GainPercentage float64  `json:"gain_percentage"`
}

type PortfolioMovers struct {
	Gainers []PortfolioMover `json:"gainers"`
	Losers  []PortfolioMover `json:"losers"`
}

type MoverWindow struct {
	WindowDays int `json:"window_days"`
	PortfolioMovers
}

type VolatilityClass string

const (
	VolatilityStable      VolatilityClass = "STABLE"
	VolatilityWatch       VolatilityClass = "WATCH"
	VolatilitySpeculative VolatilityClass = "SPECULATIVE"
)

type VolatilityItem struct {
	HoldingID          uint            `json:"holding_id"`
	CardID             string          `json:"card_id"`
	Name               string          `json:"name"`
	SetCode            string          `json:"set_code"`
	Finish             Finish          `json:"finish"`
	ImageSmall         string          `json:"image_small,omitempty"`
	VolatilityScore    float64         `json:"volatility_score"`
	Classification     VolatilityClass `json:"classification"`
	Sparkline          []float64       `json:"sparkline"`
	PriceNow           float64         `json:"price_now"`
	PriceChangePercent *float64        `json:"price_change_percent"`
	ListingsCount      *int            `json:"listings_count,omitempty"`
	BuylistCount       *int            `json:"buylist_count,omitempty"`
	BuylistHigh        *float64        `json:"buylist_high,omitempty"`
}

type VolatilitySummary struct {
	Items            []VolatilityItem `json:"items"`
	StableCount      int              `json:"stable_count"`
	WatchCount       int              `json:"watch_count"`
	SpeculativeCount int              `json:"speculative_count"`
}

type WatchlistHighlight struct {
	WatchID          uint           `json:"watch_id"`
	CardID           string         `json:"card_id"`
	Name             string         `json:"name"`
	SetCode          string         `json:"set_code"`
	ImageSmall       string         `json:"image_small,omitempty"`
	Direction        WatchDirection `json:"direction"`
	PriceType        WatchPriceType `json:"price_type"`
	ThresholdPercent float64        `json:"threshold_percent"`
	Baseline         *float64       `json:"baseline"`
	CurrentPrice     *float64       `json:"current_price"`
	DeltaPercent     *float64       `json:"delta_percent"`
	ProgressPercent  float64        `json:"progress_percent"`
	TargetPrice      *float64       `json:"target_price"`
	LastNotifiedAt   *time.Time     `json:"last_notified_at"`
	Triggered        bool           `json:"triggered"`
}

type WatchlistSummary struct {
	Upcoming  []WatchlistHighlight `json:"upcoming"`
	Triggered []WatchlistHighlight `json:"triggered"`
}

type TrendDirection string

const (
	TrendUp   TrendDirection = "UP"
	TrendDown TrendDirection = "DOWN"
	TrendFlat TrendDirection = "FLAT"
)

type TrendIndicator struct {
	Direction  TrendDirection `json:"direction"`
	Percentage *float64       `json:"percentage"`
}

// PortfolioSummary is the full analytics payload for one user
type PortfolioSummary struct {
	Totals            PortfolioTotals           `json:"totals"`
	DistributionBySet map[string]float64        `json:"distribution_by_set"`
	TopHoldings       []Holding                 `json:"top_holdings"`
	Movers            PortfolioMovers           `json:"movers"`
	Trend             []TrendPoint              `json:"trend"`
	Distributions     PortfolioDistributions    `json:"distributions"`
	Heatmaps          PortfolioHeatmaps         `json:"heatmaps"`
	MoversByWindow    []MoverWindow             `json:"movers_by_window"`
	Volatility        VolatilitySummary         `json:"volatility"`
	Watchlist         WatchlistSummary          `json:"watchlist"`
	TrendIndicators   map[string]TrendIndicator `json:"trend_indicators"`
	LastUpdated       string                    `json:"last_updated"`
}
