package finance_mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/refina/finance_client/finance_api"
)

type UploadRecord struct {
	TransactionID string
	Filename      string
	Size          int64
}

// Backend is a seedable in-memory stand-in for the remote finance API. Delays
// and failures are injectable per path prefix so tests can pin ordering and
// stale-response behavior.
type Backend struct {
	mu sync.Mutex

	Token        string
	Users        map[string]string
	Categories   map[finance_api.TransactionType][]finance_api.CategoryGroup
	WalletList   []finance_api.Wallet
	Transactions map[string]*finance_api.Transaction

	Overview    finance_api.UserSummary
	Monthly     []finance_api.MonthlyPoint
	TopExpenses []finance_api.MostExpense
	WalletDaily []finance_api.WalletDailyPoint

	Uploads  []UploadRecord
	Requests []string
	Delays   map[string]time.Duration
	Fail     map[string]int

	nextID int
}

func NewBackend() *Backend {
	return &Backend{
		Token:        "mock-token",
		Users:        map[string]string{},
		Categories:   map[finance_api.TransactionType][]finance_api.CategoryGroup{},
		Transactions: map[string]*finance_api.Transaction{},
		Delays:       map[string]time.Duration{},
		Fail:         map[string]int{},
	}
}

// Serve starts the backend on an in-process listener. Callers own the
// returned server's lifetime.
func Serve() (*Backend, *httptest.Server) {
	backend := NewBackend()
	server := httptest.NewServer(backend.Handler())
	return backend, server
}

// SeedDefault loads a small uniform dataset: three wallets, expense and
// income categories, and the Cash In/Cash Out pair for fund transfers.
func (b *Backend) SeedDefault() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Users["user@example.com"] = "secret"
	b.WalletList = []finance_api.Wallet{
		{ID: "w1", Name: "Main Bank", AccountNumber: "****1234", Balance: 1_500_000, Type: finance_api.WalletBank},
		{ID: "w2", Name: "E-Wallet", AccountNumber: "****5678", Balance: 250_000, Type: finance_api.WalletEwallet},
		{ID: "w3", Name: "Cash", AccountNumber: "", Balance: 100_000, Type: finance_api.WalletPhysical},
	}
	b.Categories[finance_api.TypeExpense] = []finance_api.CategoryGroup{
		{Name: "Daily", Categories: []finance_api.Category{
			{ID: "c1", Name: "Food", GroupName: "Daily", Type: finance_api.TypeExpense},
			{ID: "c2", Name: "Transport", GroupName: "Daily", Type: finance_api.TypeExpense},
		}},
	}
	b.Categories[finance_api.TypeIncome] = []finance_api.CategoryGroup{
		{Name: "Work", Categories: []finance_api.Category{
			{ID: "c3", Name: "Salary", GroupName: "Work", Type: finance_api.TypeIncome},
		}},
	}
	b.Categories[finance_api.TypeTransfer] = []finance_api.CategoryGroup{
		{Name: "Cash In", Categories: []finance_api.Category{
			{ID: "c-in", Name: "Cash In", GroupName: "Cash In", Type: finance_api.TypeIncome},
		}},
		{Name: "Cash Out", Categories: []finance_api.Category{
			{ID: "c-out", Name: "Cash Out", GroupName: "Cash Out", Type: finance_api.TypeExpense},
		}},
	}
}

func (b *Backend) SeedTransaction(tran *finance_api.Transaction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Transactions[tran.ID] = tran
}

// RequestLog returns the method+path of every request seen so far.
func (b *Backend) RequestLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, len(b.Requests))
	copy(out, b.Requests)
	return out
}

func (b *Backend) UploadLog() []UploadRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]UploadRecord, len(b.Uploads))
	copy(out, b.Uploads)
	return out
}

type envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeEnvelope(w http.ResponseWriter, code int, ok bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(envelope{Status: ok, Message: message, Data: data})
}

// before records the request and applies injected delay/failure. Returns true
// when the request was already answered.
func (b *Backend) before(w http.ResponseWriter, r *http.Request) bool {
	b.mu.Lock()
	b.Requests = append(b.Requests, r.Method+" "+r.URL.Path)

	var delay time.Duration
	failCode := 0
	for prefix, d := range b.Delays {
		if strings.HasPrefix(r.URL.Path, prefix) {
			delay = d
		}
	}
	for prefix, code := range b.Fail {
		if strings.HasPrefix(r.URL.Path, prefix) {
			failCode = code
		}
	}
	b.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if failCode != 0 {
		writeEnvelope(w, failCode, false, "injected failure", nil)
		return true
	}

	return false
}

func (b *Backend) authed(w http.ResponseWriter, r *http.Request) bool {
	b.mu.Lock()
	token := b.Token
	b.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+token {
		writeEnvelope(w, http.StatusUnauthorized, false, "unauthorized", nil)
		return false
	}
	return true
}

func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}

		var pay finance_api.LoginPayload
		json.NewDecoder(r.Body).Decode(&pay)

		b.mu.Lock()
		password, ok := b.Users[pay.Email]
		token := b.Token
		b.mu.Unlock()

		if !ok || password != pay.Password {
			writeEnvelope(w, http.StatusUnauthorized, false, "invalid credentials", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, true, "login success", map[string]string{"token": token})
	})

	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}

		var pay finance_api.RegisterPayload
		json.NewDecoder(r.Body).Decode(&pay)

		b.mu.Lock()
		b.Users[pay.Email] = pay.Password
		b.mu.Unlock()

		writeEnvelope(w, http.StatusCreated, true, "registered", nil)
	})

	mux.HandleFunc("GET /auth/{provider}/oauth", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		writeEnvelope(w, http.StatusOK, true, "", map[string]string{
			"redirect_url": "https://oauth.example.com/" + r.PathValue("provider"),
		})
	})

	mux.HandleFunc("POST /auth/send/otp", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		writeEnvelope(w, http.StatusOK, true, "otp sent", nil)
	})

	mux.HandleFunc("POST /auth/verify/otp", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		writeEnvelope(w, http.StatusOK, true, "otp verified", nil)
	})

	mux.HandleFunc("GET /categories/type/{type}", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		if !b.authed(w, r) {
			return
		}

		typ := finance_api.TransactionType(r.PathValue("type"))
		b.mu.Lock()
		groups := b.Categories[typ]
		b.mu.Unlock()

		if groups == nil {
			groups = []finance_api.CategoryGroup{}
		}
		writeEnvelope(w, http.StatusOK, true, "", groups)
	})

	mux.HandleFunc("GET /users/wallets", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		if !b.authed(w, r) {
			return
		}

		b.mu.Lock()
		wallets := b.WalletList
		b.mu.Unlock()
		writeEnvelope(w, http.StatusOK, true, "", wallets)
	})

	mux.HandleFunc("GET /wallets/user-by-type", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		if !b.authed(w, r) {
			return
		}

		b.mu.Lock()
		byType := map[finance_api.WalletType][]finance_api.Wallet{}
		order := []finance_api.WalletType{}
		for _, wallet := range b.WalletList {
			if _, ok := byType[wallet.Type]; !ok {
				order = append(order, wallet.Type)
			}
			byType[wallet.Type] = append(byType[wallet.Type], wallet)
		}
		b.mu.Unlock()

		groups := []finance_api.WalletGroup{}
		for _, typ := range order {
			groups = append(groups, finance_api.WalletGroup{Type: typ, Wallets: byType[typ]})
		}
		writeEnvelope(w, http.StatusOK, true, "", groups)
	})

	mux.HandleFunc("GET /transactions", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		if !b.authed(w, r) {
			return
		}

		b.mu.Lock()
		trans := []finance_api.Transaction{}
		for _, tran := range b.Transactions {
			trans = append(trans, *tran)
		}
		b.mu.Unlock()
		writeEnvelope(w, http.StatusOK, true, "", trans)
	})

	mux.HandleFunc("GET /transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		if !b.authed(w, r) {
			return
		}

		b.mu.Lock()
		tran, ok := b.Transactions[r.PathValue("id")]
		b.mu.Unlock()

		if !ok {
			writeEnvelope(w, http.StatusNotFound, false, "transaction not found", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, true, "", tran)
	})

	mux.HandleFunc("POST /transactions/{type}", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		if !b.authed(w, r) {
			return
		}

		typ := finance_api.TransactionType(r.PathValue("type"))
		var pay finance_api.TransactionPayload
		json.NewDecoder(r.Body).Decode(&pay)

		ids := b.createFromPayload(typ, &pay)
		writeEnvelope(w, http.StatusCreated, true, "created", map[string][]string{"transaction_ids": ids})
	})

	mux.HandleFunc("PUT /transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		if !b.authed(w, r) {
			return
		}

		id := r.PathValue("id")
		var pay finance_api.TransactionPayload
		json.NewDecoder(r.Body).Decode(&pay)

		b.mu.Lock()
		tran, ok := b.Transactions[id]
		if ok {
			tran.Amount = pay.Amount
			tran.WalletID = pay.WalletID
			tran.CategoryID = pay.CategoryID
			tran.Description = pay.Description
			tran.FromWalletID = pay.FromWalletID
			tran.ToWalletID = pay.ToWalletID
			tran.AdminFee = pay.AdminFee
			if date, err := time.Parse("2006-01-02T15:04:05-07:00", pay.TransactionDate); err == nil {
				tran.TransactionDate = date
			}
		}
		b.mu.Unlock()

		if !ok {
			writeEnvelope(w, http.StatusNotFound, false, "transaction not found", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, true, "updated", map[string][]string{"transaction_ids": {id}})
	})

	mux.HandleFunc("DELETE /transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		if !b.authed(w, r) {
			return
		}

		b.mu.Lock()
		delete(b.Transactions, r.PathValue("id"))
		b.mu.Unlock()
		writeEnvelope(w, http.StatusOK, true, "deleted", nil)
	})

	mux.HandleFunc("POST /transactions/attachment/{id}", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		if !b.authed(w, r) {
			return
		}

		err := r.ParseMultipartForm(16 << 20)
		if err != nil {
			writeEnvelope(w, http.StatusBadRequest, false, "invalid multipart body", nil)
			return
		}

		file, header, err := r.FormFile("attachment")
		if err != nil {
			writeEnvelope(w, http.StatusBadRequest, false, "attachment field missing", nil)
			return
		}
		file.Close()

		b.mu.Lock()
		b.Uploads = append(b.Uploads, UploadRecord{
			TransactionID: r.PathValue("id"),
			Filename:      header.Filename,
			Size:          header.Size,
		})
		b.mu.Unlock()

		writeEnvelope(w, http.StatusCreated, true, "uploaded", nil)
	})

	mux.HandleFunc("GET /transactions/user-summary/detail", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		if !b.authed(w, r) {
			return
		}
		writeEnvelope(w, http.StatusOK, true, "", b.Overview)
	})

	mux.HandleFunc("GET /transactions/user-monthly-summary/detail", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		if !b.authed(w, r) {
			return
		}
		writeEnvelope(w, http.StatusOK, true, "", b.Monthly)
	})

	mux.HandleFunc("GET /transactions/user-most-expenses/detail", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		if !b.authed(w, r) {
			return
		}
		writeEnvelope(w, http.StatusOK, true, "", b.TopExpenses)
	})

	mux.HandleFunc("GET /transactions/user-wallet-daily-summary/detail", func(w http.ResponseWriter, r *http.Request) {
		if b.before(w, r) {
			return
		}
		if !b.authed(w, r) {
			return
		}
		writeEnvelope(w, http.StatusOK, true, "", b.WalletDaily)
	})

	return mux
}

func (b *Backend) createFromPayload(typ finance_api.TransactionType, pay *finance_api.TransactionPayload) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	date, _ := time.Parse("2006-01-02T15:04:05-07:00", pay.TransactionDate)

	if typ == finance_api.TypeTransfer {
		b.nextID++
		outID := fmt.Sprintf("tx-%d-out", b.nextID)
		inID := fmt.Sprintf("tx-%d-in", b.nextID)

		b.Transactions[outID] = &finance_api.Transaction{
			ID: outID, Type: typ, Amount: pay.Amount,
			FromWalletID: pay.FromWalletID, ToWalletID: pay.ToWalletID,
			AdminFee: pay.AdminFee, TransactionDate: date, Description: pay.Description,
		}
		b.Transactions[inID] = &finance_api.Transaction{
			ID: inID, Type: typ, Amount: pay.Amount,
			FromWalletID: pay.FromWalletID, ToWalletID: pay.ToWalletID,
			TransactionDate: date, Description: pay.Description,
		}

		return []string{outID, inID}
	}

	b.nextID++
	id := fmt.Sprintf("tx-%d", b.nextID)
	b.Transactions[id] = &finance_api.Transaction{
		ID: id, Type: typ, Amount: pay.Amount,
		WalletID: pay.WalletID, CategoryID: pay.CategoryID,
		TransactionDate: date, Description: pay.Description,
	}

	return []string{id}
}
