package editor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/refina/finance_client/finance_api"
	"golang.org/x/sync/errgroup"
)

// Category names the backend keys fund-transfer legs on. The derived ids are a
// pass-through convention: absent names leave the fields omitted.
const (
	CashInCategoryName  = "Cash In"
	CashOutCategoryName = "Cash Out"
)

type UploadFailure struct {
	TransactionID string `json:"transaction_id"`
	Name          string `json:"name"`
	Err           error  `json:"-"`
}

// UploadError reports which attachment uploads failed after the transaction
// itself was already persisted. Uploaded siblings are not rolled back.
type UploadError struct {
	Failures []UploadFailure `json:"failures"`
}

// Error implements error.
func (e *UploadError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s -> %s: %v", f.Name, f.TransactionID, f.Err))
	}
	return "attachment upload failed: " + strings.Join(parts, "; ")
}

// Submit validates the form, persists it as a transaction and uploads every
// staged local file to each returned transaction id. Re-entrant submits while
// one is in flight are rejected. On success the panel closes and the caller's
// refresh hook runs.
func (p *Panel) Submit(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case StateSubmitting:
		p.mu.Unlock()
		return ErrSubmitInFlight
	case StateReady:
	default:
		p.mu.Unlock()
		return ErrPanelNotReady
	}

	form := p.form
	err := form.Validate()
	if err != nil {
		p.mu.Unlock()
		return err
	}

	pay := form.Payload()
	if form.Type == finance_api.TypeTransfer {
		deriveTransferCategories(p.groups, pay)
	}

	gen := p.gen
	p.state = StateSubmitting
	p.mu.Unlock()
	p.store.Notify()

	files := p.stager.LocalFiles()

	var ids []string
	if form.ID != "" {
		ids, err = p.tranSrc.TransactionUpdate(ctx, form.ID, pay)
	} else {
		ids, err = p.tranSrc.TransactionCreate(ctx, form.Type, pay)
	}
	if err != nil {
		p.backToReady(gen)
		return err
	}

	err = p.uploadAll(ctx, ids, files)
	if err != nil {
		p.backToReady(gen)
		return err
	}

	p.mu.Lock()
	refresh := p.onRefresh
	if gen == p.gen {
		p.closeLocked()
	}
	p.mu.Unlock()
	p.store.Notify()

	if refresh != nil {
		refresh()
	}

	return nil
}

func (p *Panel) backToReady(gen uint64) {
	p.mu.Lock()
	if gen == p.gen && p.state == StateSubmitting {
		p.state = StateReady
	}
	p.mu.Unlock()

	p.store.Notify()
}

// uploadAll issues one upload per file per transaction id, concurrently, all
// after the creating request's response. Every failure is collected; nothing
// is retried or rolled back.
func (p *Panel) uploadAll(ctx context.Context, ids []string, files []*LocalFile) error {
	if len(files) == 0 || len(ids) == 0 {
		return nil
	}

	var g errgroup.Group
	var mu sync.Mutex
	failures := []UploadFailure{}

	for _, id := range ids {
		for _, file := range files {
			g.Go(func() error {
				err := p.uploader.UploadAttachment(ctx, id, file.Name, bytes.NewReader(file.Data))
				if err != nil {
					mu.Lock()
					failures = append(failures, UploadFailure{
						TransactionID: id,
						Name:          file.Name,
						Err:           err,
					})
					mu.Unlock()
				}
				return nil
			})
		}
	}

	_ = g.Wait()

	if len(failures) != 0 {
		return &UploadError{Failures: failures}
	}

	return nil
}

func deriveTransferCategories(groups []finance_api.CategoryGroup, pay *finance_api.TransactionPayload) {
	for _, cat := range finance_api.FlattenGroups(groups) {
		switch cat.Name {
		case CashInCategoryName:
			if pay.CashInCategoryID == nil {
				id := cat.ID
				pay.CashInCategoryID = &id
			}
		case CashOutCategoryName:
			if pay.CashOutCategoryID == nil {
				id := cat.ID
				pay.CashOutCategoryID = &id
			}
		}
	}
}
