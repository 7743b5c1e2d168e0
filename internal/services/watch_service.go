package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

// WatchService manages price watches. Watches are stored under a contact
// address and belong to whichever user has that email.
type WatchService struct {
	db    *gorm.DB
	cards *CardService
}

func NewWatchService(db *gorm.DB, cards *CardService) *WatchService {
	return &WatchService{db: db, cards: cards}
}

// ListActive returns the active watches filed under the user's email
func (s *WatchService) ListActive(ctx context.Context, user *models.User) ([]models.PriceWatch, error) {
	watches := make([]models.PriceWatch, 0)
	err := s.db.WithContext(ctx).
		Where("contact = ? AND active = ?", normalizeEmail(user.Email), true).
		Order("id ASC").
		Find(&watches).Error
	if err != nil {
		return nil, fmt.Errorf("list watches for %s: %w", user.Email, err)
	}
	return watches, nil
}

// Create files a new watch under the user's email. Without an explicit
// last price the card's current price for the watched type is the baseline.
func (s *WatchService) Create(ctx context.Context, user *models.User, req models.CreateWatchRequest) (*models.PriceWatch, error) {
	if req.Direction != models.WatchUp && req.Direction != models.WatchDown {
		return nil, fmt.Errorf("%w: direction must be UP or DOWN", ErrInvalidInput)
	}
	priceType := req.PriceType
	if priceType == "" {
		priceType = models.WatchPriceUSD
	}
	if priceType != models.WatchPriceUSD && priceType != models.WatchPriceUSDFoil {
		return nil, fmt.Errorf("%w: price_type must be USD or USD_FOIL", ErrInvalidInput)
	}
	if req.ThresholdPercent <= 0 {
		return nil, fmt.Errorf("%w: threshold_percent must be positive", ErrInvalidInput)
	}
	if err := validatePrice(req.LastPrice); err != nil {
		return nil, err
	}

	card, err := s.cards.GetCard(ctx, req.CardID)
	if err != nil {
		return nil, err
	}

	lastPrice := req.LastPrice
	if lastPrice == nil {
		if priceType == models.WatchPriceUSDFoil {
			lastPrice = card.PriceFoilUSD
		} else {
			lastPrice = card.PriceUSD
		}
	}

	watch := models.PriceWatch{
		CardID:           req.CardID,
		Contact:          normalizeEmail(user.Email),
		Direction:        req.Direction,
		PriceType:        priceType,
		ThresholdPercent: req.ThresholdPercent,
		LastPrice:        lastPrice,
		Active:           true,
	}
	if err := s.db.WithContext(ctx).Create(&watch).Error; err != nil {
		return nil, fmt.Errorf("create watch: %w", err)
	}
	return &watch, nil
}

// Delete removes one of the user's watches
func (s *WatchService) Delete(ctx context.Context, user *models.User, id uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND contact = ?", id, normalizeEmail(user.Email)).
		Delete(&models.PriceWatch{})
	if result.Error != nil {
		return fmt.Errorf("delete watch %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
