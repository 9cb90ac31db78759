package finance_api_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/refina/finance_client/finance_api"
	"github.com/refina/finance_client/finance_mock"
	"github.com/refina/finance_client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*finance_mock.Backend, *finance_api.Client, *session.Session) {
	t.Helper()

	backend, server := finance_mock.Serve()
	t.Cleanup(server.Close)
	backend.SeedDefault()

	sess := session.NewSession()
	client := finance_api.NewClient(server.URL, server.Client(), sess)

	return backend, client, sess
}

func login(t *testing.T, client *finance_api.Client, sess *session.Session) {
	t.Helper()

	token, err := client.Login(context.Background(), &finance_api.LoginPayload{
		Email:    "user@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	sess.SetToken(token)
}

func TestLogin(t *testing.T) {
	_, client, sess := newTestClient(t)

	token, err := client.Login(context.Background(), &finance_api.LoginPayload{
		Email:    "user@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "mock-token", token)

	sess.SetToken(token)
	assert.True(t, sess.Authenticated())
}

func TestLoginBadCredentials(t *testing.T) {
	_, client, _ := newTestClient(t)

	_, err := client.Login(context.Background(), &finance_api.LoginPayload{
		Email:    "user@example.com",
		Password: "wrong",
	})

	var aerr *finance_api.APIError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, http.StatusUnauthorized, aerr.StatusCode)
	assert.Equal(t, "invalid credentials", aerr.Message)
}

func TestAuthenticatedCallWithoutToken(t *testing.T) {
	_, client, _ := newTestClient(t)

	_, err := client.Wallets(context.Background())
	assert.ErrorIs(t, err, finance_api.ErrNoToken)
}

func TestCategoriesByType(t *testing.T) {
	_, client, sess := newTestClient(t)
	login(t, client, sess)

	groups, err := client.CategoriesByType(context.Background(), finance_api.TypeExpense)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Daily", groups[0].Name)
	assert.Len(t, groups[0].Categories, 2)

	flat := finance_api.FlattenGroups(groups)
	assert.Len(t, flat, 2)
	assert.Equal(t, "Daily", flat[0].GroupName)
}

func TestWallets(t *testing.T) {
	_, client, sess := newTestClient(t)
	login(t, client, sess)

	wallets, err := client.Wallets(context.Background())
	require.NoError(t, err)
	assert.Len(t, wallets, 3)

	groups, err := client.WalletsByType(context.Background())
	require.NoError(t, err)
	assert.Len(t, groups, 3)
}

func TestTransactionCreateSingle(t *testing.T) {
	backend, client, sess := newTestClient(t)
	login(t, client, sess)

	ids, err := client.TransactionCreate(context.Background(), finance_api.TypeExpense, &finance_api.TransactionPayload{
		Amount:          50000,
		WalletID:        "w1",
		CategoryID:      "c1",
		TransactionDate: "2024-06-01T17:00:00+07:00",
		Description:     "Lunch",
	})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	tran, err := client.TransactionDetail(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, int64(50000), tran.Amount)
	assert.Equal(t, "Lunch", tran.Description)

	assert.Contains(t, backend.RequestLog(), "POST /transactions/expense")
}

func TestTransactionCreateFundTransferReturnsTwoIDs(t *testing.T) {
	_, client, sess := newTestClient(t)
	login(t, client, sess)

	ids, err := client.TransactionCreate(context.Background(), finance_api.TypeTransfer, &finance_api.TransactionPayload{
		Amount:          200000,
		FromWalletID:    "w1",
		ToWalletID:      "w2",
		AdminFee:        2500,
		TransactionDate: "2024-06-01T17:00:00+07:00",
	})
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestUploadAttachmentMultipart(t *testing.T) {
	backend, client, sess := newTestClient(t)
	login(t, client, sess)

	err := client.UploadAttachment(context.Background(), "tx-1", "receipt.png", bytes.NewReader([]byte("fake-png")))
	require.NoError(t, err)

	uploads := backend.UploadLog()
	require.Len(t, uploads, 1)
	assert.Equal(t, "tx-1", uploads[0].TransactionID)
	assert.Equal(t, "receipt.png", uploads[0].Filename)
	assert.Equal(t, int64(len("fake-png")), uploads[0].Size)
}

func TestTransactionDetailNotFound(t *testing.T) {
	_, client, sess := newTestClient(t)
	login(t, client, sess)

	_, err := client.TransactionDetail(context.Background(), "missing")

	var aerr *finance_api.APIError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, http.StatusNotFound, aerr.StatusCode)
}

func TestSummaries(t *testing.T) {
	backend, client, sess := newTestClient(t)
	login(t, client, sess)

	backend.Overview = finance_api.UserSummary{TotalIncome: 900, TotalExpense: 400, TotalBalance: 500}
	backend.TopExpenses = []finance_api.MostExpense{{CategoryName: "Food", Total: 300}}

	overview, err := client.UserSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(500), overview.TotalBalance)

	most, err := client.MostExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, most, 1)
	assert.Equal(t, "Food", most[0].CategoryName)
}

func TestOAuthAndOTP(t *testing.T) {
	_, client, _ := newTestClient(t)

	url, err := client.OAuthURL(context.Background(), "google")
	require.NoError(t, err)
	assert.Equal(t, "https://oauth.example.com/google", url)

	require.NoError(t, client.SendOTP(context.Background(), "user@example.com"))
	require.NoError(t, client.VerifyOTP(context.Background(), "user@example.com", "123456"))
}
