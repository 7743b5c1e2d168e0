package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/abhik-roy/mtg-card-collection-app/internal/config"
	"github.com/abhik-roy/mtg-card-collection-app/internal/database"
	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
	"github.com/abhik-roy/mtg-card-collection-app/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubCatalog struct {
	cards map[string]models.Card
}

func (s *stubCatalog) SearchCards(ctx context.Context, query string) (*models.CardSearchResult, error) {
	result := &models.CardSearchResult{Cards: []models.Card{}}
	for _, c := range s.cards {
		if c.Name == query {
			result.Cards = append(result.Cards, c)
		}
	}
	result.TotalCount = len(result.Cards)
	return result, nil
}

func (s *stubCatalog) GetCard(ctx context.Context, id string) (*models.Card, error) {
	c, ok := s.cards[id]
	if !ok {
		return nil, services.ErrCardNotFound
	}
	return &c, nil
}

func (s *stubCatalog) GetCards(ctx context.Context, ids []string) ([]models.Card, error) {
	out := make([]models.Card, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.cards[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := database.Open(database.MemoryDSN(t.Name()), logger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	usd := 2.5
	catalog := &stubCatalog{cards: map[string]models.Card{
		"bolt": {ID: "bolt", Name: "Lightning Bolt", SetCode: "2xm", Rarity: "uncommon", ColorIdentity: []string{"R"}, PriceUSD: &usd},
	}}

	users := services.NewUserService(db)
	cards := services.NewCardService(db, catalog)
	snapshots := services.NewSnapshotService(db, "0 23 * * *")
	watches := services.NewWatchService(db, cards)

	user, err := users.EnsureDefaultUser(context.Background(), "collector@example.com")
	require.NoError(t, err)

	return SetupRouter(config.ServerConfig{}, Services{
		Users:         users,
		Cards:         cards,
		Collection:    services.NewCollectionService(db, cards, snapshots),
		Watches:       watches,
		Portfolio:     services.NewPortfolioService(db, users, watches),
		Snapshots:     snapshots,
		PriceWorker:   services.NewPriceWorker(db, catalog, 0, 0),
		DefaultUserID: user.ID,
	})
}

func do(t *testing.T, router *gin.Engine, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(t, router, http.MethodGet, "/health", nil, "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = do(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mtg_http_requests_total")
}

func TestCORSDefaultsToLocalDevServers(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/collection", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUserResolution(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/api/users/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "collector@example.com", decode[models.User](t, w).Email)

	w = do(t, router, http.MethodGet, "/api/users/me", nil, "X-User-ID", "abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/portfolio/summary", nil, "X-User-ID", "999")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodPost, "/api/users", gin.H{"email": "second@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.User](t, w)

	w = do(t, router, http.MethodGet, "/api/users/me", nil, "X-User-ID", fmt.Sprint(created.ID))
	assert.Equal(t, "second@example.com", decode[models.User](t, w).Email)

	w = do(t, router, http.MethodPost, "/api/users", gin.H{"email": "Second@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodPost, "/api/users", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCollectionEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/collection", gin.H{"card_id": "bolt", "quantity": 2, "acquired_price": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.CollectionUpdateResponse](t, w)
	assert.Equal(t, "Lightning Bolt", created.Entry.Card.Name)

	w = do(t, router, http.MethodPost, "/api/collection", gin.H{"card_id": "bolt", "acquired_price": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[models.CollectionUpdateResponse](t, w).Entry.Quantity)

	w = do(t, router, http.MethodPost, "/api/collection", gin.H{"card_id": "bolt", "finish": "glossy"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/collection", gin.H{"card_id": "unknown"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodPost, "/api/collection", gin.H{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/collection?set=2XM", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.CollectionEntry](t, w), 1)

	path := fmt.Sprintf("/api/collection/%d", created.Entry.ID)
	w = do(t, router, http.MethodPut, path, gin.H{"quantity": 5, "finish": "foil"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.CollectionUpdateResponse](t, w)
	assert.Equal(t, 5, updated.Entry.Quantity)
	assert.Equal(t, models.FinishFoil, updated.Entry.Finish)

	w = do(t, router, http.MethodPost, "/api/collection/refresh-prices", nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["queued"])

	w = do(t, router, http.MethodDelete, "/api/collection/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPortfolioEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/collection", gin.H{"card_id": "bolt", "quantity": 4, "acquired_price": 2})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodGet, "/api/portfolio/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[models.PortfolioSummary](t, w)
	assert.Equal(t, 10.0, summary.Totals.CurrentValue)
	assert.Equal(t, 8.0, summary.Totals.CostBasis)
	require.Len(t, summary.TopHoldings, 1)
	assert.Len(t, summary.MoversByWindow, 3)

	w = do(t, router, http.MethodPost, "/api/portfolio/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[models.PortfolioValueSnapshot](t, w)
	assert.Equal(t, 10.0, snap.TotalValue)
	require.NotNil(t, snap.CashIn)
	assert.Equal(t, 8.0, *snap.CashIn)

	w = do(t, router, http.MethodGet, "/api/portfolio/history?period=week", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[models.ValueHistoryResponse](t, w)
	assert.Equal(t, "week", history.Period)
	assert.Len(t, history.Snapshots, 1)
}

func TestWatchEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/watches", gin.H{"card_id": "bolt", "direction": "UP", "threshold_percent": 10})
	require.Equal(t, http.StatusCreated, w.Code)
	watch := decode[models.PriceWatch](t, w)
	require.NotNil(t, watch.LastPrice)
	assert.Equal(t, 2.5, *watch.LastPrice)

	w = do(t, router, http.MethodPost, "/api/watches", gin.H{"card_id": "bolt", "direction": "LEFT", "threshold_percent": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/watches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.PriceWatch](t, w), 1)

	w = do(t, router, http.MethodPost, "/api/users", gin.H{"email": "other@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	other := fmt.Sprint(decode[models.User](t, w).ID)

	w = do(t, router, http.MethodGet, "/api/watches", nil, "X-User-ID", other)
	assert.Empty(t, decode[[]models.PriceWatch](t, w))

	path := fmt.Sprintf("/api/watches/%d", watch.ID)
	w = do(t, router, http.MethodDelete, path, nil, "X-User-ID", other)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCardEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/api/cards/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/cards/search?q=Lightning+Bolt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[models.CardSearchResult](t, w).Cards, 1)

	w = do(t, router, http.MethodGet, "/api/cards/bolt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lightning Bolt", decode[models.Card](t, w).Name)

	w = do(t, router, http.MethodGet, "/api/cards/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodPost, "/api/cards/bolt/liquidity", gin.H{"as_of_date": "2024-03-01", "listings_count": 7})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 7, *decode[models.CardLiquiditySnapshot](t, w).ListingsCount)

	w = do(t, router, http.MethodPost, "/api/cards/bolt/liquidity", gin.H{"as_of_date": "March 1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/cards/bolt/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bolt", decode[models.PriceHistoryResponse](t, w).CardID)
}

func TestPriceEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/cards/bolt/refresh-price?queue=true", nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["queue_position"])

	w = do(t, router, http.MethodGet, "/api/prices/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[services.PriceStatus](t, w)
	assert.Equal(t, 1, status.QueueSize)
	assert.Equal(t, 75, status.BatchSize)

	// not cached locally yet
	w = do(t, router, http.MethodPost, "/api/cards/bolt/refresh-price", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/api/cards/bolt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodPost, "/api/cards/bolt/refresh-price", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
