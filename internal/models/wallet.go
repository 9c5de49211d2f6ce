package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxDeposit    TransactionType = "DEPOSIT"
	TxWithdrawal TransactionType = "WITHDRAWAL"
	TxPayment    TransactionType = "PAYMENT"
	TxReceived   TransactionType = "RECEIVED"
	TxRefund     TransactionType = "REFUND"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxPayment, TxReceived, TxRefund:
		return true
	}
	return false
}

type Balance struct {
	UserID  string          `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

type Transaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	BookingID     *string         `json:"booking_id"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}

type TransactionQuery struct {
	Type  TransactionType
	Page  int
	Limit int
}

type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty" validate:"max=255"`
}
