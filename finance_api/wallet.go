package finance_api

import (
	"context"
	"net/http"
)

// Wallets lists the authenticated user's wallets as a flat list.
func (c *Client) Wallets(ctx context.Context) ([]Wallet, error) {
	wallets := []Wallet{}
	err := c.doJSON(ctx, http.MethodGet, "/users/wallets", true, nil, &wallets)
	if err != nil {
		return nil, err
	}

	return wallets, nil
}

// WalletsByType lists the user's wallets grouped by wallet type.
func (c *Client) WalletsByType(ctx context.Context) ([]WalletGroup, error) {
	groups := []WalletGroup{}
	err := c.doJSON(ctx, http.MethodGet, "/wallets/user-by-type", true, nil, &groups)
	if err != nil {
		return nil, err
	}

	return groups, nil
}
