package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

func TestWatchCreateDefaultsBaseline(t *testing.T) {
	s := newTestServices(t, testNow, catalogCard("bolt", floatPtr(2), floatPtr(6)))
	ctx := context.Background()

	usd, err := s.watches.Create(ctx, s.user, models.CreateWatchRequest{CardID: "bolt", Direction: models.WatchUp, ThresholdPercent: 10})
	require.NoError(t, err)
	assert.Equal(t, models.WatchPriceUSD, usd.PriceType)
	assert.Equal(t, "collector@example.com", usd.Contact)
	assert.True(t, usd.Active)
	require.NotNil(t, usd.LastPrice)
	assert.Equal(t, 2.0, *usd.LastPrice)

	foil, err := s.watches.Create(ctx, s.user, models.CreateWatchRequest{
		CardID:           "bolt",
		Direction:        models.WatchDown,
		PriceType:        models.WatchPriceUSDFoil,
		ThresholdPercent: 15,
	})
	require.NoError(t, err)
	require.NotNil(t, foil.LastPrice)
	assert.Equal(t, 6.0, *foil.LastPrice)

	explicit, err := s.watches.Create(ctx, s.user, models.CreateWatchRequest{
		CardID:           "bolt",
		Direction:        models.WatchUp,
		ThresholdPercent: 5,
		LastPrice:        floatPtr(1.75),
	})
	require.NoError(t, err)
	assert.Equal(t, 1.75, *explicit.LastPrice)
}

func TestWatchCreateValidation(t *testing.T) {
	s := newTestServices(t, testNow, catalogCard("bolt", floatPtr(2), nil))
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.CreateWatchRequest
		want error
	}{
		{"bad direction", models.CreateWatchRequest{CardID: "bolt", Direction: "SIDEWAYS", ThresholdPercent: 5}, ErrInvalidInput},
		{"bad price type", models.CreateWatchRequest{CardID: "bolt", Direction: models.WatchUp, PriceType: "EUR", ThresholdPercent: 5}, ErrInvalidInput},
		{"zero threshold", models.CreateWatchRequest{CardID: "bolt", Direction: models.WatchUp}, ErrInvalidInput},
		{"negative last price", models.CreateWatchRequest{CardID: "bolt", Direction: models.WatchUp, ThresholdPercent: 5, LastPrice: floatPtr(-1)}, ErrInvalidInput},
		{"unknown card", models.CreateWatchRequest{CardID: "nope", Direction: models.WatchUp, ThresholdPercent: 5}, ErrCardNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.watches.Create(ctx, s.user, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWatchesAreScopedByEmail(t *testing.T) {
	s := newTestServices(t, testNow, catalogCard("bolt", floatPtr(2), nil))
	ctx := context.Background()

	mine, err := s.watches.Create(ctx, s.user, models.CreateWatchRequest{CardID: "bolt", Direction: models.WatchUp, ThresholdPercent: 10})
	require.NoError(t, err)

	other, err := s.users.CreateUser(ctx, models.CreateUserRequest{Email: "other@example.com"})
	require.NoError(t, err)
	theirs, err := s.watches.Create(ctx, other, models.CreateWatchRequest{CardID: "bolt", Direction: models.WatchDown, ThresholdPercent: 10})
	require.NoError(t, err)

	// filed directly under the same address
	require.NoError(t, s.db.Create(&models.PriceWatch{
		CardID:           "bolt",
		Contact:          "collector@example.com",
		Direction:        models.WatchUp,
		PriceType:        models.WatchPriceUSD,
		ThresholdPercent: 20,
		Active:           true,
	}).Error)
	// inactive watches are not listed
	inactive := models.PriceWatch{CardID: "bolt", Contact: "collector@example.com", Direction: models.WatchUp, ThresholdPercent: 1, Active: true}
	require.NoError(t, s.db.Create(&inactive).Error)
	require.NoError(t, s.db.Model(&inactive).Update("active", false).Error)

	watches, err := s.watches.ListActive(ctx, s.user)
	require.NoError(t, err)
	require.Len(t, watches, 2)
	assert.Equal(t, mine.ID, watches[0].ID)

	assert.ErrorIs(t, s.watches.Delete(ctx, s.user, theirs.ID), ErrNotFound)
	require.NoError(t, s.watches.Delete(ctx, other, theirs.ID))
}
