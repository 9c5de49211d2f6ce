package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"marketplace/internal/models"
)

// GetBalance is never cached; the booking balance check depends on it.
func (c *Client) GetBalance(ctx context.Context, session *models.Session) (*models.Balance, error) {
	var b models.Balance
	if _, err := c.call(ctx, request{
		name: "wallet.balance", method: http.MethodGet, path: "/wallet/balance", session: session,
	}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) ListTransactions(ctx context.Context, session *models.Session, query models.TransactionQuery) (*models.Page[models.Transaction], error) {
	q := url.Values{}
	if query.Type != "" {
		q.Set("type", string(query.Type))
	}
	if query.Page > 0 {
		q.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		q.Set("limit", strconv.Itoa(query.Limit))
	}

	var txs []models.Transaction
	pagination, err := c.call(ctx, request{
		name: "wallet.transactions", method: http.MethodGet, path: "/wallet/transactions", query: q, session: session,
	}, &txs)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.Transaction]{Items: txs, Pagination: pagination}, nil
}

func (c *Client) Deposit(ctx context.Context, session *models.Session, req models.DepositRequest) (*models.Transaction, error) {
	var tx models.Transaction
	if _, err := c.call(ctx, request{
		name: "wallet.deposit", method: http.MethodPost, path: "/wallet/deposit", body: req, session: session,
	}, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}
