package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/abhik-roy/mtg-card-collection-app/internal/database"
	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.MemoryDSN(t.Name()), logger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// fakeCatalog stands in for Scryfall
type fakeCatalog struct {
	mu      sync.Mutex
	cards   map[string]models.Card
	fetched [][]string
}

func newFakeCatalog(cards ...models.Card) *fakeCatalog {
	f := &fakeCatalog{cards: make(map[string]models.Card)}
	for _, c := range cards {
		f.cards[c.ID] = c
	}
	return f
}

func (f *fakeCatalog) set(card models.Card) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cards[card.ID] = card
}

func (f *fakeCatalog) SearchCards(ctx context.Context, query string) (*models.CardSearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := &models.CardSearchResult{Cards: []models.Card{}}
	for _, c := range f.cards {
		if c.Name == query {
			result.Cards = append(result.Cards, c)
		}
	}
	result.TotalCount = len(result.Cards)
	return result, nil
}

func (f *fakeCatalog) GetCard(ctx context.Context, id string) (*models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cards[id]
	if !ok {
		return nil, ErrCardNotFound
	}
	return &c, nil
}

func (f *fakeCatalog) GetCards(ctx context.Context, ids []string) ([]models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, append([]string(nil), ids...))
	out := make([]models.Card, 0, len(ids))
	for _, id := range ids {
		if c, ok := f.cards[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func catalogCard(id string, usd, foil *float64) models.Card {
	return models.Card{
		ID:            id,
		Name:          "Card " + id,
		SetCode:       "mh2",
		Rarity:        "rare",
		ColorIdentity: []string{"R"},
		Legalities:    map[string]string{"modern": "legal"},
		PriceUSD:      usd,
		PriceFoilUSD:  foil,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type testServices struct {
	db         *gorm.DB
	catalog    *fakeCatalog
	users      *UserService
	cards      *CardService
	snapshots  *SnapshotService
	collection *CollectionService
	watches    *WatchService
	portfolio  *PortfolioService
	user       *models.User
}

func newTestServices(t *testing.T, now time.Time, cards ...models.Card) *testServices {
	t.Helper()
	db := newTestDB(t)
	catalog := newFakeCatalog(cards...)

	s := &testServices{db: db, catalog: catalog}
	s.users = NewUserService(db)
	s.cards = NewCardService(db, catalog)
	s.snapshots = NewSnapshotService(db, "0 23 * * *")
	s.snapshots.now = fixedClock(now)
	s.collection = NewCollectionService(db, s.cards, s.snapshots)
	s.collection.now = fixedClock(now)
	s.watches = NewWatchService(db, s.cards)
	s.portfolio = NewPortfolioService(db, s.users, s.watches)
	s.portfolio.now = fixedClock(now)

	user, err := s.users.EnsureDefaultUser(context.Background(), "Collector@Example.com")
	require.NoError(t, err)
	s.user = user
	return s
}
