package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

const (
	minEntryQuantity = 1
	maxEntryQuantity = 9999
)

// CollectionService is the per-user collection ledger
type CollectionService struct {
	db        *gorm.DB
	cards     *CardService
	snapshots *SnapshotService
	now       func() time.Time
}

func NewCollectionService(db *gorm.DB, cards *CardService, snapshots *SnapshotService) *CollectionService {
	return &CollectionService{
		db:        db,
		cards:     cards,
		snapshots: snapshots,
		now:       time.Now,
	}
}

// List returns the user's entries, newest first, optionally narrowed to one
// set code.
func (s *CollectionService) List(ctx context.Context, userID uint, setCode string) ([]models.CollectionEntry, error) {
	query := s.db.WithContext(ctx).
		Preload("Card").
		Where("collection_entries.user_id = ?", userID).
		Order("collection_entries.added_at DESC")

	if setCode = strings.TrimSpace(setCode); setCode != "" {
		query = query.
			Joins("JOIN cards ON cards.id = collection_entries.card_id").
			Where("LOWER(cards.set_code) = ?", strings.ToLower(setCode))
	}

	entries := make([]models.CollectionEntry, 0)
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list collection for user %d: %w", userID, err)
	}
	return entries, nil
}

// Add puts copies of a card into the user's collection. Copies of the same
// card in the same finish bought at the same price merge into one stack.
// An acquired price is booked as cash paid in on today's portfolio row.
func (s *CollectionService) Add(ctx context.Context, userID uint, req models.AddToCollectionRequest) (*models.CollectionUpdateResponse, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	finish, err := parseFinish(req.Finish)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(req.AcquiredPrice); err != nil {
		return nil, err
	}

	// Makes sure the card row exists locally before referencing it
	if _, err := s.cards.GetCard(ctx, req.CardID); err != nil {
		return nil, err
	}

	now := s.now()
	var (
		entry     models.CollectionEntry
		operation string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("user_id = ? AND card_id = ? AND finish = ?", userID, req.CardID, finish)
		if req.AcquiredPrice == nil {
			query = query.Where("acquired_price IS NULL")
		} else {
			query = query.Where("acquired_price = ?", *req.AcquiredPrice)
		}

		err := query.First(&entry).Error
		switch {
		case err == nil:
			if entry.Quantity+quantity > maxEntryQuantity {
				return fmt.Errorf("%w: quantity would exceed %d", ErrInvalidInput, maxEntryQuantity)
			}
			entry.Quantity += quantity
			if req.Notes != "" {
				entry.Notes = req.Notes
			}
			if err := tx.Save(&entry).Error; err != nil {
				return err
			}
			operation = "merged"
		case errors.Is(err, gorm.ErrRecordNotFound):
			entry = models.CollectionEntry{
				UserID:        userID,
				CardID:        req.CardID,
				Quantity:      quantity,
				Finish:        finish,
				AcquiredPrice: req.AcquiredPrice,
				Notes:         req.Notes,
				AddedAt:       now,
			}
			if err := tx.Omit("Card").Create(&entry).Error; err != nil {
				return err
			}
			operation = "created"
		default:
			return err
		}

		if req.AcquiredPrice != nil {
			return s.snapshots.RecordCashIn(ctx, tx, userID, *req.AcquiredPrice*float64(quantity), now)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("add card %s for user %d: %w", req.CardID, userID, err)
	}

	if err := s.db.WithContext(ctx).Preload("Card").First(&entry, entry.ID).Error; err != nil {
		return nil, fmt.Errorf("reload entry %d: %w", entry.ID, err)
	}

	resp := &models.CollectionUpdateResponse{Entry: entry, Operation: operation}
	if operation == "merged" {
		resp.Message = fmt.Sprintf("added %d to existing stack (now %d)", quantity, entry.Quantity)
	}
	return resp, nil
}

// Update changes quantity, finish, acquired price or notes of one entry
func (s *CollectionService) Update(ctx context.Context, userID, entryID uint, req models.UpdateCollectionRequest) (*models.CollectionUpdateResponse, error) {
	entry, err := s.get(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}

	if req.Quantity != nil {
		if err := validateQuantity(*req.Quantity); err != nil {
			return nil, err
		}
		entry.Quantity = *req.Quantity
	}
	if req.Finish != nil {
		finish, err := parseFinish(*req.Finish)
		if err != nil {
			return nil, err
		}
		entry.Finish = finish
	}
	if req.AcquiredPrice != nil {
		if err := validatePrice(req.AcquiredPrice); err != nil {
			return nil, err
		}
		entry.AcquiredPrice = req.AcquiredPrice
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}

	if err := s.db.WithContext(ctx).Omit("Card").Save(entry).Error; err != nil {
		return nil, fmt.Errorf("update entry %d: %w", entryID, err)
	}
	if err := s.db.WithContext(ctx).Preload("Card").First(entry, entry.ID).Error; err != nil {
		return nil, fmt.Errorf("reload entry %d: %w", entryID, err)
	}
	return &models.CollectionUpdateResponse{Entry: *entry, Operation: "updated"}, nil
}

// Delete removes an entry. Its recorded cost (acquired price × quantity) is
// booked as cash paid out on today's portfolio row, mirroring Add.
func (s *CollectionService) Delete(ctx context.Context, userID, entryID uint) error {
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.CollectionEntry
		err := tx.Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Delete(&entry).Error; err != nil {
			return err
		}
		if entry.AcquiredPrice != nil {
			return s.snapshots.RecordCashOut(ctx, tx, userID, *entry.AcquiredPrice*float64(entry.Quantity), now)
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", entryID, err)
	}
	return nil
}

func (s *CollectionService) get(ctx context.Context, userID, entryID uint) (*models.CollectionEntry, error) {
	var entry models.CollectionEntry
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load entry %d: %w", entryID, err)
	}
	return &entry, nil
}

func validateQuantity(q int) error {
	if q < minEntryQuantity || q > maxEntryQuantity {
		return fmt.Errorf("%w: quantity must be between %d and %d", ErrInvalidInput, minEntryQuantity, maxEntryQuantity)
	}
	return nil
}

func validatePrice(p *float64) error {
	if p != nil && *p < 0 {
		return fmt.Errorf("%w: acquired_price cannot be negative", ErrInvalidInput)
	}
	return nil
}

// parseFinish accepts any casing of a known finish; empty means NONFOIL
func parseFinish(f models.Finish) (models.Finish, error) {
	if strings.TrimSpace(string(f)) == "" {
		return models.FinishNonfoil, nil
	}
	finish := models.Finish(strings.ToUpper(strings.TrimSpace(string(f))))
	if !finish.Valid() {
		return "", fmt.Errorf("%w: finish must be one of NONFOIL, FOIL, ETCHED", ErrInvalidInput)
	}
	return finish, nil
}

// HeldCardIDs lists the distinct cards in the user's collection
func (s *CollectionService) HeldCardIDs(ctx context.Context, userID uint) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.CollectionEntry{}).
		Where("user_id = ?", userID).
		Distinct("card_id").
		Order("card_id ASC").
		Pluck("card_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list held cards for user %d: %w", userID, err)
	}
	return ids, nil
}
