package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

func TestTakeSnapshotPreservesCashFlow(t *testing.T) {
	s := newTestServices(t, testNow, catalogCard("bolt", floatPtr(2.5), nil))
	ctx := context.Background()

	_, err := s.collection.Add(ctx, s.user.ID, models.AddToCollectionRequest{CardID: "bolt", Quantity: 4, AcquiredPrice: floatPtr(1)})
	require.NoError(t, err)

	snap, err := s.snapshots.TakeSnapshot(ctx, s.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, snap.TotalValue)
	assert.Equal(t, 4, snap.TotalCards)
	require.NotNil(t, snap.CostBasis)
	assert.Equal(t, 4.0, *snap.CostBasis)
	require.NotNil(t, snap.CashIn)
	assert.Equal(t, 4.0, *snap.CashIn)

	// running again the same day updates in place
	_, err = s.snapshots.TakeSnapshot(ctx, s.user.ID)
	require.NoError(t, err)
	var count int64
	require.NoError(t, s.db.Model(&models.PortfolioValueSnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTakeSnapshotsCoversEveryUser(t *testing.T) {
	s := newTestServices(t, testNow)
	ctx := context.Background()
	_, err := s.users.CreateUser(ctx, models.CreateUserRequest{Email: "second@example.com"})
	require.NoError(t, err)

	taken, err := s.snapshots.TakeSnapshots(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, taken)
	assert.False(t, s.snapshots.LastSnapshotTime().IsZero())
}

func TestRecordCashOutIgnoresNonPositive(t *testing.T) {
	s := newTestServices(t, testNow)
	ctx := context.Background()

	require.NoError(t, s.snapshots.RecordCashOut(ctx, nil, s.user.ID, 0, testNow))
	require.NoError(t, s.snapshots.RecordCashOut(ctx, nil, s.user.ID, 3, testNow))
	require.NoError(t, s.snapshots.RecordCashOut(ctx, nil, s.user.ID, 2, testNow))

	var snap models.PortfolioValueSnapshot
	require.NoError(t, s.db.First(&snap).Error)
	require.NotNil(t, snap.CashOut)
	assert.Equal(t, 5.0, *snap.CashOut)
}

func TestGetHistory(t *testing.T) {
	s := newTestServices(t, testNow)
	ctx := context.Background()

	for _, daysAgo := range []int{40, 20, 3, 0} {
		day := models.StartOfDay(testNow.AddDate(0, 0, -daysAgo))
		require.NoError(t, s.db.Create(&models.PortfolioValueSnapshot{
			UserID:       s.user.ID,
			SnapshotDate: day,
			TotalValue:   float64(100 - daysAgo),
		}).Error)
	}

	tests := []struct {
		period     string
		wantPeriod string
		want       int
	}{
		{"week", "week", 2},
		{"month", "month", 3},
		{"all", "all", 4},
		{"decade", "month", 3},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			history, err := s.snapshots.GetHistory(ctx, s.user.ID, tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPeriod, history.Period)
			assert.Len(t, history.Snapshots, tt.want)
		})
	}

	history, err := s.snapshots.GetHistory(ctx, s.user.ID, "all")
	require.NoError(t, err)
	assert.Equal(t, 60.0, history.Snapshots[0].TotalValue)
}
