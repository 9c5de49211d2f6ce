// Package wallet holds the advisory balance check run before a booking is
// created, plus the transaction classification used by the wallet views.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/domain"
	"marketplace/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	// ErrBalanceUnavailable means the balance could not be fetched. It is never
	// reported as an insufficient balance.
	ErrBalanceUnavailable = errors.New("wallet balance unavailable")
	ErrInvalidPrice       = errors.New("service price must be positive")
)

// Decision is the outcome of a balance check.
type Decision struct {
	CustomerID string
	Balance    decimal.Decimal
	Price      decimal.Decimal
	Sufficient bool
	// Shortfall is price minus balance when insufficient, zero otherwise.
	Shortfall decimal.Decimal
}

// Gate compares the customer's current balance with a service price. It does
// not cache: every Check fetches a fresh balance.
type Gate struct {
	wallet domain.WalletAPI
	logger *zerolog.Logger
}

func NewGate(wallet domain.WalletAPI, logger *zerolog.Logger) *Gate {
	return &Gate{wallet: wallet, logger: logger}
}

func (g *Gate) Check(ctx context.Context, session *models.Session, price decimal.Decimal) (Decision, error) {
	if !price.IsPositive() {
		return Decision{}, ErrInvalidPrice
	}

	customerID := ""
	if session != nil {
		customerID = session.User.ID
	}

	bal, err := g.wallet.GetBalance(ctx, session)
	if err != nil {
		g.logger.Warn().Err(err).Str("customer_id", customerID).Msg("Failed to fetch wallet balance")
		return Decision{}, fmt.Errorf("%w: %w", ErrBalanceUnavailable, err)
	}
	if bal == nil {
		return Decision{}, ErrBalanceUnavailable
	}

	return Evaluate(customerID, bal.Balance, price), nil
}

// Evaluate applies the balance >= price rule.
func Evaluate(customerID string, balance, price decimal.Decimal) Decision {
	d := Decision{
		CustomerID: customerID,
		Balance:    balance,
		Price:      price,
		Sufficient: balance.GreaterThanOrEqual(price),
		Shortfall:  decimal.Zero,
	}
	if !d.Sufficient {
		d.Shortfall = price.Sub(balance)
	}
	return d
}
