package finance_api

import (
	"context"
	"net/http"
)

// UserSummary fetches the aggregated income/expense/balance totals.
func (c *Client) UserSummary(ctx context.Context) (*UserSummary, error) {
	var sum UserSummary
	err := c.doJSON(ctx, http.MethodGet, "/transactions/user-summary/detail", true, nil, &sum)
	if err != nil {
		return nil, err
	}

	return &sum, nil
}

// MonthlySummary fetches per-month income/expense totals.
func (c *Client) MonthlySummary(ctx context.Context) ([]MonthlyPoint, error) {
	points := []MonthlyPoint{}
	err := c.doJSON(ctx, http.MethodGet, "/transactions/user-monthly-summary/detail", true, nil, &points)
	if err != nil {
		return nil, err
	}

	return points, nil
}

// MostExpenses fetches the top spending categories.
func (c *Client) MostExpenses(ctx context.Context) ([]MostExpense, error) {
	items := []MostExpense{}
	err := c.doJSON(ctx, http.MethodGet, "/transactions/user-most-expenses/detail", true, nil, &items)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// WalletDailySummary fetches the per-day balance trend across wallets.
func (c *Client) WalletDailySummary(ctx context.Context) ([]WalletDailyPoint, error) {
	points := []WalletDailyPoint{}
	err := c.doJSON(ctx, http.MethodGet, "/transactions/user-wallet-daily-summary/detail", true, nil, &points)
	if err != nil {
		return nil, err
	}

	return points, nil
}
