package dashboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/refina/finance_client/dashboard"
	"github.com/refina/finance_client/finance_api"
	"github.com/refina/finance_client/local_store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeSummaries struct {
	overview *finance_api.UserSummary
	monthly  []finance_api.MonthlyPoint
	most     []finance_api.MostExpense
	daily    []finance_api.WalletDailyPoint

	err error
}

func (f *fakeSummaries) UserSummary(ctx context.Context) (*finance_api.UserSummary, error) {
	return f.overview, f.err
}

func (f *fakeSummaries) MonthlySummary(ctx context.Context) ([]finance_api.MonthlyPoint, error) {
	return f.monthly, f.err
}

func (f *fakeSummaries) MostExpenses(ctx context.Context) ([]finance_api.MostExpense, error) {
	return f.most, f.err
}

func (f *fakeSummaries) WalletDailySummary(ctx context.Context) ([]finance_api.WalletDailyPoint, error) {
	return f.daily, f.err
}

func newFakeSummaries() *fakeSummaries {
	return &fakeSummaries{
		overview: &finance_api.UserSummary{
			TotalIncome:  500000,
			TotalExpense: 120000,
			TotalBalance: 380000,
		},
		monthly: []finance_api.MonthlyPoint{
			{Month: "2025-07", Income: 250000, Expense: 60000},
			{Month: "2025-08", Income: 250000, Expense: 60000},
		},
		most: []finance_api.MostExpense{
			{CategoryName: "Food", Total: 75000},
			{CategoryName: "Transport", Total: 25000},
		},
		daily: []finance_api.WalletDailyPoint{
			{Date: "2025-08-30", Balance: 370000},
			{Date: "2025-08-31", Balance: 380000},
		},
	}
}

func newTestMirror(t *testing.T) *local_store.Mirror {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mirror := local_store.NewMirror(db)
	require.NoError(t, mirror.Migrate())

	return mirror
}

func TestDashboardRefreshPublishesSnapshot(t *testing.T) {
	ctx := context.Background()
	src := newFakeSummaries()
	service := dashboard.NewDashboardService(src, newTestMirror(t))

	notified := 0
	cancel := service.Subscribe(func() { notified++ })
	defer cancel()

	assert.Nil(t, service.Latest())

	snap, err := service.Refresh(ctx)
	require.NoError(t, err)

	assert.False(t, snap.FromMirror)
	assert.Equal(t, src.overview, snap.Overview)
	assert.Equal(t, src.monthly, snap.Monthly)
	assert.Equal(t, src.most, snap.MostExpenses)
	assert.Equal(t, src.daily, snap.WalletDaily)
	assert.False(t, snap.FetchedAt.IsZero())

	assert.Equal(t, snap, service.Latest())
	assert.Equal(t, 1, notified)
}

func TestDashboardFallsBackToMirror(t *testing.T) {
	ctx := context.Background()
	src := newFakeSummaries()
	mirror := newTestMirror(t)
	service := dashboard.NewDashboardService(src, mirror)

	_, err := service.Refresh(ctx)
	require.NoError(t, err)

	src.err = errors.New("backend unreachable")

	snap, err := service.Refresh(ctx)
	require.NoError(t, err)

	assert.True(t, snap.FromMirror)
	assert.Equal(t, newFakeSummaries().overview, snap.Overview)
	assert.Equal(t, newFakeSummaries().monthly, snap.Monthly)
	assert.Equal(t, snap, service.Latest())
}

func TestDashboardRefreshFailsWithoutMirrorCopy(t *testing.T) {
	src := newFakeSummaries()
	src.err = errors.New("backend unreachable")
	service := dashboard.NewDashboardService(src, newTestMirror(t))

	_, err := service.Refresh(context.Background())
	assert.ErrorContains(t, err, "backend unreachable")
	assert.Nil(t, service.Latest())
}
