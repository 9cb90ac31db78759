package editor_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/refina/finance_client/editor"
	"github.com/refina/finance_client/finance_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadCall struct {
	TransactionID string
	Filename      string
	Size          int
}

// fakeSources implements every editor source with injectable delays and
// failures so tests can pin fetch ordering.
type fakeSources struct {
	mu sync.Mutex

	categories map[finance_api.TransactionType][]finance_api.CategoryGroup
	wallets    []finance_api.Wallet
	details    map[string]*finance_api.Transaction

	catDelay    time.Duration
	walletDelay time.Duration
	detailDelay time.Duration
	createDelay time.Duration

	catErr    error
	walletErr error
	detailErr error
	createErr error
	uploadErr map[string]error

	createIDs []string

	catCalls    []finance_api.TransactionType
	detailCalls []string
	walletCalls int
	created     []*finance_api.TransactionPayload
	updated     map[string]*finance_api.TransactionPayload
	uploads     []uploadCall
}

func newFakeSources() *fakeSources {
	return &fakeSources{
		categories: map[finance_api.TransactionType][]finance_api.CategoryGroup{},
		details:    map[string]*finance_api.Transaction{},
		uploadErr:  map[string]error{},
		updated:    map[string]*finance_api.TransactionPayload{},
		createIDs:  []string{"tx-created"},
		wallets: []finance_api.Wallet{
			{ID: "w1", Name: "Main Bank", Type: finance_api.WalletBank, Balance: 100000},
			{ID: "w2", Name: "Cash", Type: finance_api.WalletPhysical, Balance: 5000},
		},
	}
}

// CategoriesByType implements editor.CategorySource.
func (f *fakeSources) CategoriesByType(ctx context.Context, typ finance_api.TransactionType) ([]finance_api.CategoryGroup, error) {
	time.Sleep(f.catDelay)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.catCalls = append(f.catCalls, typ)
	if f.catErr != nil {
		return nil, f.catErr
	}
	return f.categories[typ], nil
}

// Wallets implements editor.WalletSource.
func (f *fakeSources) Wallets(ctx context.Context) ([]finance_api.Wallet, error) {
	time.Sleep(f.walletDelay)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.walletCalls++
	if f.walletErr != nil {
		return nil, f.walletErr
	}
	return f.wallets, nil
}

// TransactionDetail implements editor.TransactionSource.
func (f *fakeSources) TransactionDetail(ctx context.Context, id string) (*finance_api.Transaction, error) {
	time.Sleep(f.detailDelay)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls = append(f.detailCalls, id)
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return f.details[id], nil
}

// TransactionCreate implements editor.TransactionSource.
func (f *fakeSources) TransactionCreate(ctx context.Context, typ finance_api.TransactionType, pay *finance_api.TransactionPayload) ([]string, error) {
	time.Sleep(f.createDelay)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, pay)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createIDs, nil
}

// TransactionUpdate implements editor.TransactionSource.
func (f *fakeSources) TransactionUpdate(ctx context.Context, id string, pay *finance_api.TransactionPayload) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[id] = pay
	return []string{id}, nil
}

// UploadAttachment implements editor.AttachmentUploader.
func (f *fakeSources) UploadAttachment(ctx context.Context, transactionID string, filename string, content io.Reader) error {
	raw, _ := io.ReadAll(content)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.uploadErr[filename]; err != nil {
		return err
	}
	f.uploads = append(f.uploads, uploadCall{
		TransactionID: transactionID,
		Filename:      filename,
		Size:          len(raw),
	})
	return nil
}

func (f *fakeSources) uploadLog() []uploadCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]uploadCall, len(f.uploads))
	copy(out, f.uploads)
	return out
}

func seedExpenseCategories(f *fakeSources) {
	f.categories[finance_api.TypeExpense] = []finance_api.CategoryGroup{
		{Name: "Daily", Categories: []finance_api.Category{
			{ID: "c1", Name: "Food", GroupName: "Daily", Type: finance_api.TypeExpense},
			{ID: "c2", Name: "Transport", GroupName: "Daily", Type: finance_api.TypeExpense},
		}},
	}
}

func seedTransferCategories(f *fakeSources, withCashIn bool, withCashOut bool) {
	cats := []finance_api.Category{}
	if withCashIn {
		cats = append(cats, finance_api.Category{ID: "c-in", Name: "Cash In", GroupName: "Cash In"})
	}
	if withCashOut {
		cats = append(cats, finance_api.Category{ID: "c-out", Name: "Cash Out", GroupName: "Cash Out"})
	}
	f.categories[finance_api.TypeTransfer] = []finance_api.CategoryGroup{
		{Name: "Transfer", Categories: cats},
	}
}

func TestPanelOpenScenario(t *testing.T) {
	src := newFakeSources()
	seedExpenseCategories(src)

	date, err := time.Parse(time.RFC3339, "2024-06-01T10:00:00Z")
	require.NoError(t, err)

	src.details["tx-1"] = &finance_api.Transaction{
		ID:              "tx-1",
		Type:            finance_api.TypeExpense,
		Amount:          50000,
		WalletID:        "w1",
		CategoryID:      "c1",
		TransactionDate: date,
		Description:     "Lunch",
		Attachments:     []string{},
	}

	panel := editor.NewPanel(src, src, src, src)
	panel.Open(context.Background(), editor.Target{
		TransactionID: "tx-1",
		Type:          finance_api.TypeExpense,
	})

	err = panel.WaitReady(context.Background())
	require.NoError(t, err)

	assert.True(t, panel.ReadinessGate())
	assert.Equal(t, editor.StateReady, panel.State())

	assert.Equal(t, []string{"tx-1"}, src.detailCalls)
	assert.Equal(t, []finance_api.TransactionType{finance_api.TypeExpense}, src.catCalls)
	assert.Equal(t, 1, src.walletCalls)

	form := panel.Form()
	assert.Equal(t, "tx-1", form.ID)
	assert.Equal(t, int64(50000), form.Amount)
	assert.Equal(t, "w1", form.WalletID)
	assert.Equal(t, "c1", form.CategoryID)
	assert.Equal(t, "Lunch", form.Description)
	assert.Equal(t, editor.LocalDate(date), form.Date)

	assert.Len(t, panel.Wallets(), 2)
	assert.Len(t, panel.Categories(), 1)
}

func TestPanelReadinessGate(t *testing.T) {
	src := newFakeSources()
	seedExpenseCategories(src)
	src.walletDelay = 150 * time.Millisecond

	panel := editor.NewPanel(src, src, src, src)
	panel.Open(context.Background(), editor.Target{Type: finance_api.TypeExpense})

	// wallets still loading keeps the gate false even after categories land
	assert.Eventually(t, func() bool {
		return len(panel.Categories()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.False(t, panel.ReadinessGate())
	assert.Equal(t, editor.StateLoading, panel.State())

	err := panel.WaitReady(context.Background())
	require.NoError(t, err)
	assert.True(t, panel.ReadinessGate())
}

func TestPanelSkipsFetchesWithoutTarget(t *testing.T) {
	src := newFakeSources()

	panel := editor.NewPanel(src, src, src, src)
	panel.Open(context.Background(), editor.Target{})

	err := panel.WaitReady(context.Background())
	require.NoError(t, err)

	assert.Empty(t, src.detailCalls)
	assert.Empty(t, src.catCalls)
	assert.Equal(t, 1, src.walletCalls)
}

func TestPanelStaleDetailIgnoredAfterClose(t *testing.T) {
	src := newFakeSources()
	seedExpenseCategories(src)
	src.detailDelay = 100 * time.Millisecond

	date, _ := time.Parse(time.RFC3339, "2024-06-01T10:00:00Z")
	src.details["tx-1"] = &finance_api.Transaction{
		ID:              "tx-1",
		Amount:          50000,
		WalletID:        "w1",
		CategoryID:      "c1",
		TransactionDate: date,
		Description:     "Lunch",
	}

	panel := editor.NewPanel(src, src, src, src)
	panel.Open(context.Background(), editor.Target{
		TransactionID: "tx-1",
		Type:          finance_api.TypeExpense,
	})
	panel.Close()

	// reopen for a brand-new entry before the stale detail resolves
	panel.Open(context.Background(), editor.Target{Type: finance_api.TypeExpense})

	err := panel.WaitReady(context.Background())
	require.NoError(t, err)

	time.Sleep(150 * time.Millisecond)

	form := panel.Form()
	assert.Equal(t, "", form.ID, "stale detail must not hydrate the new session")
	assert.Equal(t, int64(0), form.Amount)
	assert.Equal(t, "", form.Description)
	assert.Empty(t, panel.Stager().Items())
}

func TestPanelCloseResetsEverything(t *testing.T) {
	src := newFakeSources()
	seedExpenseCategories(src)

	panel := editor.NewPanel(src, src, src, src)
	panel.Open(context.Background(), editor.Target{Type: finance_api.TypeExpense})
	require.NoError(t, panel.WaitReady(context.Background()))

	form := panel.Form()
	form.Amount = 7000
	form.WalletID = "w1"
	form.CategoryID = "c1"
	form.Description = "coffee"
	panel.Stager().Add(&editor.LocalFile{Name: "receipt.png", Data: []byte("png")})

	panel.Close()

	assert.Equal(t, editor.StateClosed, panel.State())
	assert.Equal(t, "", form.WalletID)
	assert.Equal(t, int64(0), form.Amount)
	assert.Equal(t, "", form.Description)
	assert.NotEmpty(t, form.Date)
	assert.Empty(t, panel.Stager().Items())
	assert.Nil(t, panel.Categories())
}

func TestPanelFetchErrorSurfacedOnce(t *testing.T) {
	src := newFakeSources()
	seedExpenseCategories(src)
	src.walletErr = assert.AnError

	panel := editor.NewPanel(src, src, src, src)
	panel.Open(context.Background(), editor.Target{Type: finance_api.TypeExpense})

	err := panel.WaitReady(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotEqual(t, editor.StateReady, panel.State())
}

func TestPanelNotifiesSubscribers(t *testing.T) {
	src := newFakeSources()

	panel := editor.NewPanel(src, src, src, src)

	var mu sync.Mutex
	states := []editor.PanelState{}
	cancel := panel.Subscribe(func() {
		mu.Lock()
		states = append(states, panel.State())
		mu.Unlock()
	})
	defer cancel()

	panel.Open(context.Background(), editor.Target{})
	require.NoError(t, panel.WaitReady(context.Background()))
	panel.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, states, editor.StateLoading)
	assert.Contains(t, states, editor.StateReady)
	assert.Contains(t, states, editor.StateClosed)
}
