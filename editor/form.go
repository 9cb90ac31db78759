package editor

import (
	"time"

	"github.com/refina/finance_client/finance_api"
)

// LocalDateLayout is the local-time ISO-with-offset representation the date
// picker works with.
const LocalDateLayout = "2006-01-02T15:04:05-07:00"

func LocalDate(t time.Time) string {
	return t.Local().Format(LocalDateLayout)
}

func ParseLocalDate(s string) (time.Time, error) {
	return time.Parse(LocalDateLayout, s)
}

// Form mirrors the transaction being composed. It is the single source of
// truth for the open panel and is always rebuilt whole: hydrated from a
// fetched detail on edit, reset to defaults on close or new entry.
type Form struct {
	ID          string
	Type        finance_api.TransactionType
	Amount      int64
	WalletID    string
	CategoryID  string
	Date        string
	Description string

	FromWalletID string
	ToWalletID   string
	AdminFee     int64
}

// Reset restores every field to its type-appropriate default. Partial resets
// are a defect, so this assigns the zero record wholesale.
func (f *Form) Reset(now time.Time, typ finance_api.TransactionType) {
	*f = Form{
		Type: typ,
		Date: LocalDate(now),
	}
}

// Hydrate overwrites the entire form from a fetched detail record. Records
// without an id are ignored.
func (f *Form) Hydrate(tran *finance_api.Transaction) {
	if tran == nil || tran.ID == "" {
		return
	}

	typ := tran.Type
	if typ == "" {
		typ = f.Type
	}

	*f = Form{
		ID:          tran.ID,
		Type:        typ,
		Amount:      tran.Amount,
		WalletID:    tran.WalletID,
		CategoryID:  tran.CategoryID,
		Date:        LocalDate(tran.TransactionDate),
		Description: tran.Description,

		FromWalletID: tran.FromWalletID,
		ToWalletID:   tran.ToWalletID,
		AdminFee:     tran.AdminFee,
	}
}

// Payload renders the form as the full-record request body. Fund-transfer
// forms carry the wallet pair, everything else the single wallet reference.
func (f *Form) Payload() *finance_api.TransactionPayload {
	pay := finance_api.TransactionPayload{
		Amount:          f.Amount,
		TransactionDate: f.Date,
		Description:     f.Description,
	}

	if f.Type == finance_api.TypeTransfer {
		pay.FromWalletID = f.FromWalletID
		pay.ToWalletID = f.ToWalletID
		pay.AdminFee = f.AdminFee
	} else {
		pay.WalletID = f.WalletID
		pay.CategoryID = f.CategoryID
	}

	return &pay
}
