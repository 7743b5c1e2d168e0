package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/phuslu/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/abhik-roy/mtg-card-collection-app/internal/metrics"
	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

const (
	// defaultBatchSize matches Scryfall's /cards/collection limit, so a
	// batch is one upstream request
	defaultBatchSize = 75

	defaultUpdateInterval = 15 * time.Minute
)

type PriceWorker struct {
	db             *gorm.DB
	source         CardSource
	updateInterval time.Duration
	batchSize      int
	now            func() time.Time
	mu             sync.RWMutex

	// Priority queue for user-requested refreshes
	urgentQueue []string
	urgentMu    sync.Mutex

	// Stats (reset at midnight UTC)
	cardsUpdatedToday int
	lastUpdateTime    time.Time
	lastStatsDay      time.Time
}

type PriceStatus struct {
	LastUpdateTime    time.Time `json:"last_update_time"`
	NextUpdateTime    time.Time `json:"next_update_time"`
	CardsUpdatedToday int       `json:"cards_updated_today"`
	BatchSize         int       `json:"batch_size"`
	QueueSize         int       `json:"queue_size"`
	UpdateInterval    string    `json:"update_interval"`
}

func NewPriceWorker(db *gorm.DB, source CardSource, interval time.Duration, batchSize int) *PriceWorker {
	if interval <= 0 {
		interval = defaultUpdateInterval
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &PriceWorker{
		db:             db,
		source:         source,
		updateInterval: interval,
		batchSize:      batchSize,
		now:            time.Now,
	}
}

// QueueRefresh adds a card to the high-priority refresh queue and returns
// its 1-indexed position.
func (w *PriceWorker) QueueRefresh(cardID string) int {
	w.urgentMu.Lock()
	defer w.urgentMu.Unlock()

	for i, id := range w.urgentQueue {
		if id == cardID {
			return i + 1
		}
	}
	w.urgentQueue = append(w.urgentQueue, cardID)
	metrics.PriceQueueSize.Set(float64(len(w.urgentQueue)))
	log.Info().Str("card_id", cardID).Int("queue_size", len(w.urgentQueue)).Msg("price worker: queued refresh")
	return len(w.urgentQueue)
}

// GetQueueSize returns current urgent queue size
func (w *PriceWorker) GetQueueSize() int {
	w.urgentMu.Lock()
	defer w.urgentMu.Unlock()
	return len(w.urgentQueue)
}

func (w *PriceWorker) resetDailyStatsIfNeeded() {
	w.mu.Lock()
	defer w.mu.Unlock()

	today := models.StartOfDay(w.now())
	if w.lastStatsDay.Before(today) {
		if !w.lastStatsDay.IsZero() {
			log.Info().Int("cards_updated", w.cardsUpdatedToday).Msg("price worker: daily stats reset")
		}
		w.cardsUpdatedToday = 0
		w.lastStatsDay = today
	}
}

// Start begins the background price update worker
func (w *PriceWorker) Start(ctx context.Context) {
	log.Info().Int("batch_size", w.batchSize).Dur("interval", w.updateInterval).Msg("price worker started")

	// Run immediately on startup
	if updated, err := w.UpdateBatch(ctx); err != nil {
		log.Error().Err(err).Msg("price worker: initial batch update failed")
	} else {
		log.Info().Int("updated", updated).Msg("price worker: initial batch done")
	}

	ticker := time.NewTicker(w.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("price worker stopping")
			return
		case <-ticker.C:
			if updated, err := w.UpdateBatch(ctx); err != nil {
				log.Error().Err(err).Msg("price worker: batch update failed")
			} else if updated > 0 {
				log.Info().Int("updated", updated).Msg("price worker: batch updated")
			}
		}
	}
}

// UpdateBatch refreshes up to batchSize held cards in priority order:
// 1. User-requested refreshes
// 2. Collection cards never priced
// 3. Collection cards with the oldest prices
func (w *PriceWorker) UpdateBatch(ctx context.Context) (int, error) {
	w.resetDailyStatsIfNeeded()

	cardIDs, err := w.selectBatch(ctx)
	if err != nil {
		return 0, err
	}
	if len(cardIDs) == 0 {
		log.Debug().Msg("price worker: no cards to update")
		return 0, nil
	}

	return w.refresh(ctx, cardIDs)
}

func (w *PriceWorker) selectBatch(ctx context.Context) ([]string, error) {
	db := w.db.WithContext(ctx)

	w.urgentMu.Lock()
	cardIDs := w.urgentQueue
	if len(cardIDs) > w.batchSize {
		cardIDs = append([]string(nil), cardIDs[:w.batchSize]...)
		w.urgentQueue = w.urgentQueue[w.batchSize:]
	} else {
		w.urgentQueue = nil
	}
	metrics.PriceQueueSize.Set(float64(len(w.urgentQueue)))
	w.urgentMu.Unlock()

	held := db.Model(&models.CollectionEntry{}).Select("card_id")

	remaining := w.batchSize - len(cardIDs)
	if remaining > 0 {
		var neverPriced []string
		query := db.Model(&models.Card{}).
			Where("id IN (?)", held).
			Where("price_updated_at IS NULL")
		if len(cardIDs) > 0 {
			query = query.Where("id NOT IN ?", cardIDs)
		}
		if err := query.Limit(remaining).Pluck("id", &neverPriced).Error; err != nil {
			return nil, fmt.Errorf("select unpriced cards: %w", err)
		}
		cardIDs = append(cardIDs, neverPriced...)
		remaining -= len(neverPriced)
	}

	if remaining > 0 {
		var oldest []string
		query := db.Model(&models.Card{}).
			Where("id IN (?)", held).
			Where("price_updated_at IS NOT NULL")
		if len(cardIDs) > 0 {
			query = query.Where("id NOT IN ?", cardIDs)
		}
		if err := query.Order("price_updated_at ASC").Limit(remaining).Pluck("id", &oldest).Error; err != nil {
			return nil, fmt.Errorf("select stale cards: %w", err)
		}
		cardIDs = append(cardIDs, oldest...)
	}

	return cardIDs, nil
}

// refresh fetches fresh prices for cardIDs and stores them on the card and
// as today's price snapshot.
func (w *PriceWorker) refresh(ctx context.Context, cardIDs []string) (int, error) {
	start := time.Now()

	cards, err := w.source.GetCards(ctx, cardIDs)
	if err != nil && len(cards) == 0 {
		metrics.PriceUpdateErrorsTotal.Add(float64(len(cardIDs)))
		return 0, fmt.Errorf("fetch prices: %w", err)
	}
	if err != nil {
		log.Warn().Err(err).Int("fetched", len(cards)).Msg("price worker: partial batch")
	}

	updated := 0
	for i := range cards {
		if err := w.savePrices(ctx, &cards[i]); err != nil {
			metrics.PriceUpdateErrorsTotal.Inc()
			log.Error().Err(err).Str("card_id", cards[i].ID).Msg("price worker: failed to save prices")
			continue
		}
		updated++
	}

	w.mu.Lock()
	w.cardsUpdatedToday += updated
	w.lastUpdateTime = w.now()
	w.mu.Unlock()

	metrics.PriceUpdatesTotal.Add(float64(updated))
	metrics.PriceBatchDuration.Observe(time.Since(start).Seconds())

	return updated, nil
}

// savePrices writes the live prices onto the card row and upserts the
// card's snapshot for today. Earlier days are never touched.
func (w *PriceWorker) savePrices(ctx context.Context, card *models.Card) error {
	now := w.now()
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Card{}).Where("id = ?", card.ID).Updates(map[string]interface{}{
			"price_usd":        card.PriceUSD,
			"price_foil_usd":   card.PriceFoilUSD,
			"price_updated_at": now,
			"last_price_check": now,
		}).Error
		if err != nil {
			return err
		}

		snap := models.CardPriceSnapshot{
			CardID:   card.ID,
			AsOfDate: models.StartOfDay(now),
			USD:      card.PriceUSD,
			USDFoil:  card.PriceFoilUSD,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "card_id"}, {Name: "as_of_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"usd", "usd_foil"}),
		}).Create(&snap).Error
	})
}

// UpdateCard refreshes one card immediately, outside the batch cycle
func (w *PriceWorker) UpdateCard(ctx context.Context, cardID string) (*models.Card, error) {
	var existing models.Card
	err := w.db.WithContext(ctx).First(&existing, "id = ?", cardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load card %s: %w", cardID, err)
	}

	if _, err := w.refresh(ctx, []string{cardID}); err != nil {
		return nil, err
	}

	if err := w.db.WithContext(ctx).First(&existing, "id = ?", cardID).Error; err != nil {
		return nil, fmt.Errorf("reload card %s: %w", cardID, err)
	}
	return &existing, nil
}

// GetStatus returns the current status
func (w *PriceWorker) GetStatus() PriceStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return PriceStatus{
		LastUpdateTime:    w.lastUpdateTime,
		NextUpdateTime:    w.lastUpdateTime.Add(w.updateInterval),
		CardsUpdatedToday: w.cardsUpdatedToday,
		BatchSize:         w.batchSize,
		QueueSize:         w.GetQueueSize(),
		UpdateInterval:    w.updateInterval.String(),
	}
}
