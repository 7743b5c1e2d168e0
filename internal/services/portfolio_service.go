package services

import (
	"context"
	"fmt"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/abhik-roy/mtg-card-collection-app/internal/analytics"
	"github.com/abhik-roy/mtg-card-collection-app/internal/metrics"
	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

// PortfolioService gathers a user's collection and history and hands them
// to the analytics engine.
type PortfolioService struct {
	db      *gorm.DB
	users   *UserService
	watches *WatchService
	now     func() time.Time
}

func NewPortfolioService(db *gorm.DB, users *UserService, watches *WatchService) *PortfolioService {
	return &PortfolioService{
		db:      db,
		users:   users,
		watches: watches,
		now:     time.Now,
	}
}

// GetSummary builds the portfolio summary for one user. The five inputs are
// read concurrently; any read failure fails the whole request.
func (s *PortfolioService) GetSummary(ctx context.Context, userID uint) (*models.PortfolioSummary, error) {
	start := time.Now()

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var in analytics.Input
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		entries, err := s.loadEntries(gctx, userID)
		in.Entries = entries
		return err
	})
	g.Go(func() error {
		series, err := s.loadPriceSnapshots(gctx, userID)
		in.PriceSnapshots = series
		return err
	})
	g.Go(func() error {
		liquidity, err := s.loadLatestLiquidity(gctx, userID)
		in.Liquidity = liquidity
		return err
	})
	g.Go(func() error {
		snapshots, err := s.loadPortfolioSnapshots(gctx, userID)
		in.PortfolioSnapshots = snapshots
		return err
	})
	g.Go(func() error {
		watches, err := s.watches.ListActive(gctx, user)
		in.Watches = watches
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load portfolio inputs for user %d: %w", userID, err)
	}

	in.Now = s.now()
	summary := analytics.BuildSummary(in)

	elapsed := time.Since(start)
	metrics.SummaryDuration.Observe(elapsed.Seconds())
	log.Debug().
		Uint("user_id", userID).
		Int("entries", len(in.Entries)).
		Int("watches", len(in.Watches)).
		Dur("elapsed", elapsed).
		Msg("built portfolio summary")

	return &summary, nil
}

// heldCards selects the card ids in a user's collection, for use as a subquery
func (s *PortfolioService) heldCards(ctx context.Context, userID uint) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.CollectionEntry{}).
		Select("card_id").
		Where("user_id = ?", userID)
}

func (s *PortfolioService) loadEntries(ctx context.Context, userID uint) ([]models.CollectionEntry, error) {
	var entries []models.CollectionEntry
	err := s.db.WithContext(ctx).
		Preload("Card").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("entries: %w", err)
	}
	return entries, nil
}

func (s *PortfolioService) loadPriceSnapshots(ctx context.Context, userID uint) (map[string][]models.CardPriceSnapshot, error) {
	var rows []models.CardPriceSnapshot
	err := s.db.WithContext(ctx).
		Where("card_id IN (?)", s.heldCards(ctx, userID)).
		Order("card_id ASC, as_of_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("price snapshots: %w", err)
	}

	series := make(map[string][]models.CardPriceSnapshot)
	for _, r := range rows {
		series[r.CardID] = append(series[r.CardID], r)
	}
	return series, nil
}

// loadLatestLiquidity keeps the most recent observation per card; the later
// insert wins a same-day tie.
func (s *PortfolioService) loadLatestLiquidity(ctx context.Context, userID uint) (map[string]models.CardLiquiditySnapshot, error) {
	var rows []models.CardLiquiditySnapshot
	err := s.db.WithContext(ctx).
		Where("card_id IN (?)", s.heldCards(ctx, userID)).
		Order("as_of_date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("liquidity: %w", err)
	}

	latest := make(map[string]models.CardLiquiditySnapshot, len(rows))
	for _, r := range rows {
		latest[r.CardID] = r
	}
	return latest, nil
}

func (s *PortfolioService) loadPortfolioSnapshots(ctx context.Context, userID uint) (map[string]models.PortfolioValueSnapshot, error) {
	var rows []models.PortfolioValueSnapshot
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("snapshot_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("portfolio snapshots: %w", err)
	}

	byDay := make(map[string]models.PortfolioValueSnapshot, len(rows))
	for _, r := range rows {
		byDay[models.DayKey(r.SnapshotDate)] = r
	}
	return byDay, nil
}
