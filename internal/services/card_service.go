package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

// CardSource is the remote catalog; *ScryfallService in production.
type CardSource interface {
	SearchCards(ctx context.Context, query string) (*models.CardSearchResult, error)
	GetCard(ctx context.Context, id string) (*models.Card, error)
	GetCards(ctx context.Context, ids []string) ([]models.Card, error)
}

// CardService fronts the catalog with the local cards table
type CardService struct {
	db     *gorm.DB
	source CardSource
}

func NewCardService(db *gorm.DB, source CardSource) *CardService {
	return &CardService{db: db, source: source}
}

func (s *CardService) SearchCards(ctx context.Context, query string) (*models.CardSearchResult, error) {
	result, err := s.source.SearchCards(ctx, query)
	if err != nil {
		return nil, err
	}
	s.cacheCardsAsync(result.Cards)
	return result, nil
}

// cacheCardsAsync saves search results so they can be added to a collection
// without another catalog round trip.
func (s *CardService) cacheCardsAsync(cards []models.Card) {
	if len(cards) == 0 {
		return
	}
	// Copy to avoid racing with response serialization
	toCache := make([]models.Card, len(cards))
	copy(toCache, cards)
	go func() {
		if err := s.saveCards(context.Background(), toCache); err != nil {
			log.Warn().Err(err).Int("count", len(toCache)).Msg("failed to cache cards")
		}
	}()
}

// catalogColumns are refreshed when a known card is seen again. Price columns
// belong to the price worker and are only written on first insert.
var catalogColumns = []string{
	"name", "set_name", "set_code", "card_number", "rarity",
	"color_identity", "legalities",
	"image_url_small", "image_url", "image_url_large", "updated_at",
}

func (s *CardService) saveCards(ctx context.Context, cards []models.Card) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(catalogColumns),
	}).Create(&cards).Error
}

// GetCard serves a card from the local table, falling back to the catalog
// and caching what it finds.
func (s *CardService) GetCard(ctx context.Context, id string) (*models.Card, error) {
	var card models.Card
	err := s.db.WithContext(ctx).First(&card, "id = ?", id).Error
	if err == nil {
		return &card, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load card %s: %w", id, err)
	}

	fetched, err := s.source.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.saveCards(ctx, []models.Card{*fetched}); err != nil {
		return nil, fmt.Errorf("cache card %s: %w", id, err)
	}
	return fetched, nil
}

// GetPriceHistory returns a card's daily price snapshots, oldest first
func (s *CardService) GetPriceHistory(ctx context.Context, id string) (*models.PriceHistoryResponse, error) {
	var snapshots []models.CardPriceSnapshot
	err := s.db.WithContext(ctx).
		Where("card_id = ?", id).
		Order("as_of_date ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, fmt.Errorf("load price history for %s: %w", id, err)
	}
	return &models.PriceHistoryResponse{CardID: id, Snapshots: snapshots}, nil
}

// RecordLiquidity stores one liquidity observation for a known card
func (s *CardService) RecordLiquidity(ctx context.Context, cardID string, req models.RecordLiquidityRequest, now time.Time) (*models.CardLiquiditySnapshot, error) {
	if _, err := s.GetCard(ctx, cardID); err != nil {
		return nil, err
	}

	asOf := models.StartOfDay(now)
	if req.AsOfDate != "" {
		parsed, err := time.Parse("2006-01-02", req.AsOfDate)
		if err != nil {
			return nil, fmt.Errorf("%w: as_of_date must be YYYY-MM-DD", ErrInvalidInput)
		}
		asOf = parsed
	}
	if negative(req.ListingsCount) || negative(req.BuylistCount) || (req.BuylistHigh != nil && *req.BuylistHigh < 0) {
		return nil, fmt.Errorf("%w: liquidity figures cannot be negative", ErrInvalidInput)
	}

	snap := models.CardLiquiditySnapshot{
		CardID:        cardID,
		AsOfDate:      asOf,
		ListingsCount: req.ListingsCount,
		BuylistCount:  req.BuylistCount,
		BuylistHigh:   req.BuylistHigh,
	}
	if err := s.db.WithContext(ctx).Create(&snap).Error; err != nil {
		return nil, fmt.Errorf("record liquidity for %s: %w", cardID, err)
	}
	return &snap, nil
}

func negative(v *int) bool {
	return v != nil && *v < 0
}
