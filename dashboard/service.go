package dashboard

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/refina/finance_client/finance_api"
	"github.com/refina/finance_client/local_store"
	"github.com/refina/finance_client/session"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "dashboard").Logger()

// SummarySource is the aggregate read surface of the backend.
type SummarySource interface {
	UserSummary(ctx context.Context) (*finance_api.UserSummary, error)
	MonthlySummary(ctx context.Context) ([]finance_api.MonthlyPoint, error)
	MostExpenses(ctx context.Context) ([]finance_api.MostExpense, error)
	WalletDailySummary(ctx context.Context) ([]finance_api.WalletDailyPoint, error)
}

// DashboardService keeps the four dashboard aggregates fresh and observable.
type DashboardService interface {
	Refresh(ctx context.Context) (*Snapshot, error)
	Latest() *Snapshot
	Subscribe(fn func()) func()
	StartRefresher(schedule string) error
	Stop()
}

// Snapshot is one consistent fetch of the four dashboard aggregates.
type Snapshot struct {
	Overview     *finance_api.UserSummary       `json:"overview"`
	Monthly      []finance_api.MonthlyPoint     `json:"monthly"`
	MostExpenses []finance_api.MostExpense      `json:"most_expenses"`
	WalletDaily  []finance_api.WalletDailyPoint `json:"wallet_daily"`
	FetchedAt    time.Time                      `json:"fetched_at"`
	FromMirror   bool                           `json:"from_mirror"`
}

const (
	summaryKeyOverview    = "user-summary"
	summaryKeyMonthly     = "user-monthly-summary"
	summaryKeyMostExpense = "user-most-expenses"
	summaryKeyWalletDaily = "user-wallet-daily-summary"
)

func NewDashboardService(src SummarySource, mirror *local_store.Mirror) *dashboardServiceImpl {
	return &dashboardServiceImpl{
		src:    src,
		mirror: mirror,
		cron:   cron.New(),
		store:  session.NewStore(),
	}
}

type dashboardServiceImpl struct {
	src    SummarySource
	mirror *local_store.Mirror

	mu   sync.Mutex
	last *Snapshot

	cron  *cron.Cron
	store *session.Store
}

// Refresh fetches the four aggregates concurrently. A full fetch updates the
// mirror; a failed one falls back to the last mirrored snapshot.
func (d *dashboardServiceImpl) Refresh(ctx context.Context) (*Snapshot, error) {
	snap := Snapshot{FetchedAt: time.Now()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		overview, err := d.src.UserSummary(gctx)
		snap.Overview = overview
		return err
	})
	g.Go(func() error {
		monthly, err := d.src.MonthlySummary(gctx)
		snap.Monthly = monthly
		return err
	})
	g.Go(func() error {
		most, err := d.src.MostExpenses(gctx)
		snap.MostExpenses = most
		return err
	})
	g.Go(func() error {
		daily, err := d.src.WalletDailySummary(gctx)
		snap.WalletDaily = daily
		return err
	})

	err := g.Wait()
	if err != nil {
		logger.Warn().Err(err).Msg("summary fetch failed, trying mirror")
		mirrored, merr := d.fromMirror(ctx)
		if merr != nil {
			return nil, err
		}
		d.publish(mirrored)
		return mirrored, nil
	}

	d.toMirror(ctx, &snap)
	d.publish(&snap)
	return &snap, nil
}

func (d *dashboardServiceImpl) publish(snap *Snapshot) {
	d.mu.Lock()
	d.last = snap
	d.mu.Unlock()

	d.store.Notify()
}

// Latest returns the most recently published snapshot, which may come from
// the mirror.
func (d *dashboardServiceImpl) Latest() *Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

func (d *dashboardServiceImpl) Subscribe(fn func()) func() {
	return d.store.Subscribe(fn)
}

func (d *dashboardServiceImpl) toMirror(ctx context.Context, snap *Snapshot) {
	if d.mirror == nil {
		return
	}

	saves := map[string]any{
		summaryKeyOverview:    snap.Overview,
		summaryKeyMonthly:     snap.Monthly,
		summaryKeyMostExpense: snap.MostExpenses,
		summaryKeyWalletDaily: snap.WalletDaily,
	}
	for key, value := range saves {
		err := d.mirror.SaveSummary(ctx, key, value)
		if err != nil {
			logger.Error().Err(err).Str("key", key).Msg("mirroring summary failed")
		}
	}
}

func (d *dashboardServiceImpl) fromMirror(ctx context.Context) (*Snapshot, error) {
	if d.mirror == nil {
		return nil, local_store.ErrNotMirrored
	}

	snap := Snapshot{
		FetchedAt:  time.Now(),
		FromMirror: true,
	}

	err := d.mirror.LoadSummary(ctx, summaryKeyOverview, &snap.Overview)
	if err != nil {
		return nil, err
	}
	err = d.mirror.LoadSummary(ctx, summaryKeyMonthly, &snap.Monthly)
	if err != nil {
		return nil, err
	}
	err = d.mirror.LoadSummary(ctx, summaryKeyMostExpense, &snap.MostExpenses)
	if err != nil {
		return nil, err
	}
	err = d.mirror.LoadSummary(ctx, summaryKeyWalletDaily, &snap.WalletDaily)
	if err != nil {
		return nil, err
	}

	return &snap, nil
}

// StartRefresher schedules Refresh on a cron expression, e.g. "@every 5m".
func (d *dashboardServiceImpl) StartRefresher(schedule string) error {
	_, err := d.cron.AddFunc(schedule, func() {
		_, err := d.Refresh(context.Background())
		if err != nil {
			logger.Error().Err(err).Msg("scheduled dashboard refresh failed")
		}
	})
	if err != nil {
		return err
	}

	d.cron.Start()
	return nil
}

func (d *dashboardServiceImpl) Stop() {
	d.cron.Stop()
}
