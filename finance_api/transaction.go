package finance_api

import (
	"context"
	"fmt"
	"net/http"
)

type TransactionListFilter struct {
	WalletID string
	Type     TransactionType
	Page     int
	Limit    int
}

type createData struct {
	TransactionIDs []string `json:"transaction_ids"`
}

// TransactionDetail fetches one transaction by id.
func (c *Client) TransactionDetail(ctx context.Context, id string) (*Transaction, error) {
	var tran Transaction
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/transactions/%s", id), true, nil, &tran)
	if err != nil {
		return nil, err
	}

	return &tran, nil
}

func (c *Client) TransactionList(ctx context.Context, filter *TransactionListFilter) ([]Transaction, error) {
	trans := []Transaction{}

	path := "/transactions"
	if filter != nil {
		query := fmt.Sprintf("?page=%d&limit=%d", filter.Page, filter.Limit)
		if filter.WalletID != "" {
			query += "&wallet_id=" + filter.WalletID
		}
		if filter.Type != "" {
			query += "&type=" + string(filter.Type)
		}
		path += query
	}

	err := c.doJSON(ctx, http.MethodGet, path, true, nil, &trans)
	if err != nil {
		return nil, err
	}

	return trans, nil
}

// TransactionCreate creates a typed transaction and returns the ids the
// backend committed. Income and expense yield one id, a fund transfer yields
// the debit and credit leg ids.
func (c *Client) TransactionCreate(ctx context.Context, typ TransactionType, pay *TransactionPayload) ([]string, error) {
	var data createData
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/transactions/%s", typ), true, pay, &data)
	if err != nil {
		return nil, err
	}

	if len(data.TransactionIDs) == 0 {
		return nil, &APIError{
			StatusCode: http.StatusBadGateway,
			Message:    "backend returned no transaction id",
		}
	}

	return data.TransactionIDs, nil
}

// TransactionUpdate replaces the full record of one transaction.
func (c *Client) TransactionUpdate(ctx context.Context, id string, pay *TransactionPayload) ([]string, error) {
	var data createData
	err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/transactions/%s", id), true, pay, &data)
	if err != nil {
		return nil, err
	}

	if len(data.TransactionIDs) == 0 {
		data.TransactionIDs = []string{id}
	}

	return data.TransactionIDs, nil
}

func (c *Client) TransactionDelete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/transactions/%s", id), true, nil, nil)
}
