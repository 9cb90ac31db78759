package editor

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/refina/finance_client/finance_api"
	"github.com/refina/finance_client/session"
)

type CategorySource interface {
	CategoriesByType(ctx context.Context, typ finance_api.TransactionType) ([]finance_api.CategoryGroup, error)
}

type WalletSource interface {
	Wallets(ctx context.Context) ([]finance_api.Wallet, error)
}

type TransactionSource interface {
	TransactionDetail(ctx context.Context, id string) (*finance_api.Transaction, error)
	TransactionCreate(ctx context.Context, typ finance_api.TransactionType, pay *finance_api.TransactionPayload) ([]string, error)
	TransactionUpdate(ctx context.Context, id string, pay *finance_api.TransactionPayload) ([]string, error)
}

type AttachmentUploader interface {
	UploadAttachment(ctx context.Context, transactionID string, filename string, content io.Reader) error
}

type PanelState string

const (
	StateClosed     PanelState = "closed"
	StateLoading    PanelState = "loading"
	StateReady      PanelState = "ready"
	StateSubmitting PanelState = "submitting"
)

// Target identifies what the panel is editing: an existing transaction by id,
// a new entry of a given type, or both.
type Target struct {
	TransactionID string
	Type          finance_api.TransactionType
}

var (
	ErrPanelClosed    = errors.New("panel is closed")
	ErrPanelNotReady  = errors.New("panel is not ready")
	ErrSubmitInFlight = errors.New("submit already in flight")
)

// Panel owns the edit drawer workflow: it triggers the lazy fetches on open,
// gates readiness on their completion, holds the form and attachment stager,
// and sequences submission. Fetch completions that outlive the session they
// were issued for are discarded by generation comparison.
type Panel struct {
	catSrc   CategorySource
	wltSrc   WalletSource
	tranSrc  TransactionSource
	uploader AttachmentUploader

	mu     sync.Mutex
	state  PanelState
	gen    uint64
	target Target
	form   Form
	stager *Stager

	catsLoading    bool
	walletsLoading bool
	detailLoading  bool

	groups   []finance_api.CategoryGroup
	wallets  []finance_api.Wallet
	fetchErr error
	readyCh  chan struct{}

	onRefresh func()
	now       func() time.Time
	store     *session.Store
}

func NewPanel(
	catSrc CategorySource,
	wltSrc WalletSource,
	tranSrc TransactionSource,
	uploader AttachmentUploader,
) *Panel {
	panel := &Panel{
		catSrc:   catSrc,
		wltSrc:   wltSrc,
		tranSrc:  tranSrc,
		uploader: uploader,
		state:    StateClosed,
		stager:   NewStager(),
		now:      time.Now,
		store:    session.NewStore(),
	}
	panel.form.Reset(panel.now(), "")

	return panel
}

// Open starts a panel session for the given target. The detail fetch is issued
// only when a transaction id is present, the category fetch only when a type
// is present, the wallet fetch always. The three run concurrently and may
// complete in any order.
func (p *Panel) Open(ctx context.Context, target Target) {
	p.mu.Lock()
	p.gen++
	gen := p.gen

	p.state = StateLoading
	p.target = target
	p.fetchErr = nil
	p.groups = nil
	p.wallets = nil
	p.form.Reset(p.now(), target.Type)
	p.stager.Reset()

	p.detailLoading = target.TransactionID != ""
	p.catsLoading = target.Type != ""
	p.walletsLoading = true
	p.readyCh = make(chan struct{})
	p.mu.Unlock()

	p.store.Notify()

	if target.TransactionID != "" {
		go func() {
			tran, err := p.tranSrc.TransactionDetail(ctx, target.TransactionID)
			p.commit(gen, err, func() {
				p.detailLoading = false
				if err == nil {
					p.form.Hydrate(tran)
					p.stager.Hydrate(tran.Attachments)
				}
			})
		}()
	}

	if target.Type != "" {
		go func() {
			groups, err := p.catSrc.CategoriesByType(ctx, target.Type)
			p.commit(gen, err, func() {
				p.catsLoading = false
				if err == nil {
					p.groups = groups
				}
			})
		}()
	}

	go func() {
		wallets, err := p.wltSrc.Wallets(ctx)
		p.commit(gen, err, func() {
			p.walletsLoading = false
			if err == nil {
				p.wallets = wallets
			}
		})
	}()
}

// commit applies one fetch completion, unless it belongs to a session that is
// no longer the active one.
func (p *Panel) commit(gen uint64, err error, apply func()) {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}

	if err != nil && p.fetchErr == nil {
		p.fetchErr = err
	}

	apply()

	var readyCh chan struct{}
	if p.gateLocked() && p.state == StateLoading {
		if p.fetchErr == nil {
			p.state = StateReady
		}
		readyCh = p.readyCh
		p.readyCh = nil
	}
	p.mu.Unlock()

	if readyCh != nil {
		close(readyCh)
	}
	p.store.Notify()
}

func (p *Panel) gateLocked() bool {
	return !p.catsLoading && !p.walletsLoading && !p.detailLoading
}

// ReadinessGate reports whether the dependent selector controls are safe to
// render. Pure AND of the three not-loading flags.
func (p *Panel) ReadinessGate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gateLocked()
}

// WaitReady blocks until the open session's fetches have all completed, then
// returns the first fetch error if any occurred.
func (p *Panel) WaitReady(ctx context.Context) error {
	p.mu.Lock()
	if p.state == StateClosed {
		p.mu.Unlock()
		return ErrPanelClosed
	}
	if p.gateLocked() {
		err := p.fetchErr
		p.mu.Unlock()
		return err
	}
	readyCh := p.readyCh
	p.mu.Unlock()

	select {
	case <-readyCh:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close discards the form and attachment list unconditionally. In-flight
// fetches for the closed session become stale and their results are ignored.
func (p *Panel) Close() {
	p.mu.Lock()
	p.closeLocked()
	p.mu.Unlock()

	p.store.Notify()
}

func (p *Panel) closeLocked() {
	p.gen++
	p.state = StateClosed
	p.target = Target{}
	p.fetchErr = nil
	p.groups = nil
	p.wallets = nil
	p.catsLoading = false
	p.walletsLoading = false
	p.detailLoading = false
	p.readyCh = nil
	p.form.Reset(p.now(), "")
	p.stager.Reset()
}

func (p *Panel) State() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err returns the first fetch failure of the current session, surfaced once
// and never retried.
func (p *Panel) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetchErr
}

// Form exposes the form store for user edits. The panel exclusively owns it
// while open.
func (p *Panel) Form() *Form {
	return &p.form
}

func (p *Panel) Stager() *Stager {
	return p.stager
}

func (p *Panel) Target() Target {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

// Categories returns the loaded category groups for the current session.
func (p *Panel) Categories() []finance_api.CategoryGroup {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.groups
}

func (p *Panel) Wallets() []finance_api.Wallet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wallets
}

// OnRefresh registers the caller's list-refresh hook run after a successful
// submit.
func (p *Panel) OnRefresh(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRefresh = fn
}

// Subscribe registers a callback fired on every panel state change.
func (p *Panel) Subscribe(fn func()) func() {
	return p.store.Subscribe(fn)
}
