package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/abhik-roy/mtg-card-collection-app/internal/analytics"
	"github.com/abhik-roy/mtg-card-collection-app/internal/metrics"
	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

// SnapshotService records each user's daily portfolio value
type SnapshotService struct {
	db       *gorm.DB
	schedule string
	now      func() time.Time

	mu           sync.RWMutex
	lastSnapshot time.Time
}

func NewSnapshotService(db *gorm.DB, schedule string) *SnapshotService {
	return &SnapshotService{
		db:       db,
		schedule: schedule,
		now:      time.Now,
	}
}

// Start runs TakeSnapshots on the cron schedule (UTC) until ctx is done
func (s *SnapshotService) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(s.schedule, func() {
		if _, err := s.TakeSnapshots(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled portfolio snapshot failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", s.schedule, err)
	}

	log.Info().Str("schedule", s.schedule).Msg("snapshot service started")
	c.Start()

	<-ctx.Done()
	log.Info().Msg("snapshot service stopping")
	<-c.Stop().Done()
	return nil
}

// TakeSnapshots records today's snapshot for every user and refreshes the
// collection gauges. It returns how many users were snapshotted.
func (s *SnapshotService) TakeSnapshots(ctx context.Context) (int, error) {
	var userIDs []uint
	if err := s.db.WithContext(ctx).Model(&models.User{}).Pluck("id", &userIDs).Error; err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	var (
		taken      int
		totalValue float64
		totalCards int
	)
	for _, id := range userIDs {
		snap, err := s.TakeSnapshot(ctx, id)
		if err != nil {
			metrics.PortfolioSnapshotsTotal.WithLabelValues("failed").Inc()
			log.Error().Err(err).Uint("user_id", id).Msg("portfolio snapshot failed")
			continue
		}
		taken++
		totalValue += snap.TotalValue
		totalCards += snap.TotalCards
	}

	metrics.CollectionValueUSD.Set(totalValue)
	metrics.CollectionCardsTotal.Set(float64(totalCards))

	var cached int64
	if err := s.db.WithContext(ctx).Model(&models.Card{}).Count(&cached).Error; err == nil {
		metrics.CardDatabaseSize.Set(float64(cached))
	}

	log.Info().Int("users", taken).Float64("total_value", totalValue).Msg("portfolio snapshots recorded")
	return taken, nil
}

// TakeSnapshot upserts today's row for one user. Value figures are
// recomputed; cash flow and benchmark columns already on the row are kept.
func (s *SnapshotService) TakeSnapshot(ctx context.Context, userID uint) (*models.PortfolioValueSnapshot, error) {
	var entries []models.CollectionEntry
	err := s.db.WithContext(ctx).
		Preload("Card").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load collection for user %d: %w", userID, err)
	}

	totals := analytics.ComputeTotals(entries)
	cards := 0
	for _, e := range entries {
		cards += e.Quantity
	}

	costBasis := totals.CostBasis
	snap := models.PortfolioValueSnapshot{
		UserID:       userID,
		SnapshotDate: models.StartOfDay(s.now()),
		TotalValue:   totals.CurrentValue,
		TotalCards:   cards,
		CostBasis:    &costBasis,
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_value", "total_cards", "cost_basis", "updated_at"}),
	}).Create(&snap).Error
	if err != nil {
		return nil, fmt.Errorf("save snapshot for user %d: %w", userID, err)
	}
	// Reload so the returned row carries the preserved columns
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND snapshot_date = ?", userID, snap.SnapshotDate).
		First(&snap).Error
	if err != nil {
		return nil, fmt.Errorf("reload snapshot for user %d: %w", userID, err)
	}

	metrics.PortfolioSnapshotsTotal.WithLabelValues("success").Inc()

	s.mu.Lock()
	s.lastSnapshot = s.now()
	s.mu.Unlock()

	log.Debug().Uint("user_id", userID).Float64("total_value", snap.TotalValue).Int("cards", cards).Msg("recorded portfolio snapshot")
	return &snap, nil
}

// RecordCashIn adds amount to the cash_in of the user's snapshot for the day
// containing at, creating the row if needed. Pass a transaction handle to
// make it part of a larger write.
func (s *SnapshotService) RecordCashIn(ctx context.Context, tx *gorm.DB, userID uint, amount float64, at time.Time) error {
	return s.recordCashFlow(ctx, tx, userID, "cash_in", amount, at)
}

// RecordCashOut adds amount to the day's cash_out
func (s *SnapshotService) RecordCashOut(ctx context.Context, tx *gorm.DB, userID uint, amount float64, at time.Time) error {
	return s.recordCashFlow(ctx, tx, userID, "cash_out", amount, at)
}

func (s *SnapshotService) recordCashFlow(ctx context.Context, tx *gorm.DB, userID uint, column string, amount float64, at time.Time) error {
	if tx == nil {
		tx = s.db
	}
	if amount <= 0 {
		return nil
	}

	snap := models.PortfolioValueSnapshot{
		UserID:       userID,
		SnapshotDate: models.StartOfDay(at),
	}
	switch column {
	case "cash_in":
		snap.CashIn = &amount
	case "cash_out":
		snap.CashOut = &amount
	default:
		return fmt.Errorf("unknown cash flow column %q", column)
	}

	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column:       gorm.Expr("COALESCE(portfolio_value_snapshots." + column + ", 0) + excluded." + column),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&snap).Error
	if err != nil {
		return fmt.Errorf("record %s for user %d: %w", column, userID, err)
	}
	return nil
}

// GetHistory returns a user's snapshots for week, month, 3month, year or
// all, oldest first. Unknown periods mean month.
func (s *SnapshotService) GetHistory(ctx context.Context, userID uint, period string) (*models.ValueHistoryResponse, error) {
	now := s.now()
	var startDate time.Time

	switch period {
	case "week":
		startDate = now.AddDate(0, 0, -7)
	case "month":
		startDate = now.AddDate(0, -1, 0)
	case "3month":
		startDate = now.AddDate(0, -3, 0)
	case "year":
		startDate = now.AddDate(-1, 0, 0)
	case "all":
		startDate = time.Time{} // No filter
	default:
		period = "month"
		startDate = now.AddDate(0, -1, 0)
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("snapshot_date ASC")
	if !startDate.IsZero() {
		query = query.Where("snapshot_date >= ?", models.StartOfDay(startDate))
	}

	snapshots := make([]models.PortfolioValueSnapshot, 0)
	if err := query.Find(&snapshots).Error; err != nil {
		return nil, fmt.Errorf("load value history for user %d: %w", userID, err)
	}

	return &models.ValueHistoryResponse{Snapshots: snapshots, Period: period}, nil
}

// LastSnapshotTime is when TakeSnapshot last succeeded in this process
func (s *SnapshotService) LastSnapshotTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSnapshot
}
