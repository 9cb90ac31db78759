package finance_api

import "time"

type TransactionType string

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "fund_transfer"
)

type WalletType string

const (
	WalletBank     WalletType = "bank"
	WalletEwallet  WalletType = "e-wallet"
	WalletPhysical WalletType = "physical"
	WalletOther    WalletType = "others"
)

type Category struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	GroupName string          `json:"group_name"`
	Type      TransactionType `json:"type"`
}

type CategoryGroup struct {
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

type Wallet struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	AccountNumber string     `json:"account_number"`
	Balance       int64      `json:"balance"`
	Type          WalletType `json:"type"`
}

type WalletGroup struct {
	Type    WalletType `json:"type"`
	Wallets []Wallet   `json:"wallets"`
}

// Transaction is the detail record as the backend returns it. Amounts are in
// integer minor currency units. For fund transfers the backend fills the
// from/to pair instead of WalletID.
type Transaction struct {
	ID              string          `json:"id"`
	Type            TransactionType `json:"type"`
	Amount          int64           `json:"amount"`
	WalletID        string          `json:"wallet_id"`
	CategoryID      string          `json:"category_id"`
	TransactionDate time.Time       `json:"transaction_date"`
	Description     string          `json:"description"`
	Attachments     []string        `json:"attachments"`

	FromWalletID string `json:"from_wallet_id,omitempty"`
	ToWalletID   string `json:"to_wallet_id,omitempty"`
	AdminFee     int64  `json:"admin_fee,omitempty"`
}

// TransactionPayload is the full-record body sent on create and update. The
// cash in/out category ids are only set for fund transfers and stay omitted
// when the category list does not carry the matching names.
type TransactionPayload struct {
	Amount          int64  `json:"amount"`
	WalletID        string `json:"wallet_id,omitempty"`
	CategoryID      string `json:"category_id,omitempty"`
	TransactionDate string `json:"transaction_date"`
	Description     string `json:"description"`

	FromWalletID      string  `json:"from_wallet_id,omitempty"`
	ToWalletID        string  `json:"to_wallet_id,omitempty"`
	AdminFee          int64   `json:"admin_fee,omitempty"`
	CashInCategoryID  *string `json:"cash_in_category_id,omitempty"`
	CashOutCategoryID *string `json:"cash_out_category_id,omitempty"`
}

type UserSummary struct {
	TotalIncome  int64 `json:"total_income"`
	TotalExpense int64 `json:"total_expense"`
	TotalBalance int64 `json:"total_balance"`
}

type MonthlyPoint struct {
	Month   string `json:"month"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
}

type MostExpense struct {
	CategoryName string `json:"category_name"`
	Total        int64  `json:"total"`
}

type WalletDailyPoint struct {
	Date    string `json:"date"`
	Balance int64  `json:"balance"`
}
