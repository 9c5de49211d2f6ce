package wallet

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"marketplace/internal/models"

	"github.com/shopspring/decimal"
)

var typeLabels = map[models.TransactionType]string{
	models.TxDeposit:    "Crédito",
	models.TxWithdrawal: "Saque",
	models.TxPayment:    "Pagamento",
	models.TxReceived:   "Recebimento",
	models.TxRefund:     "Estorno",
}

// IsCredit reports whether the type increases the balance.
func IsCredit(t models.TransactionType) bool {
	switch t {
	case models.TxDeposit, models.TxReceived, models.TxRefund:
		return true
	}
	return false
}

// IsDebit reports whether the type decreases the balance.
func IsDebit(t models.TransactionType) bool {
	return t == models.TxWithdrawal || t == models.TxPayment
}

// SignedAmount applies the direction of t to a non-negative amount.
func SignedAmount(t models.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if IsDebit(t) {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}

func TypeLabel(t models.TransactionType) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Sign is the "+" or "-" prefix shown next to an amount.
func Sign(t models.TransactionType) string {
	if IsCredit(t) {
		return "+"
	}
	return "-"
}

type Tab string

const (
	TabAll    Tab = "all"
	TabCredit Tab = "credito"
	TabDebit  Tab = "debito"
)

func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case "", TabAll:
		return TabAll, nil
	case TabCredit, TabDebit:
		return t, nil
	}
	return "", fmt.Errorf("unknown wallet tab %q", s)
}

// FilterTransactions keeps the transactions that belong to tab, preserving order.
func FilterTransactions(txs []models.Transaction, tab Tab) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		switch tab {
		case TabCredit:
			if !IsCredit(tx.Type) {
				continue
			}
		case TabDebit:
			if !IsDebit(tx.Type) {
				continue
			}
		}
		out = append(out, tx)
	}
	return out
}

// LedgerIssue describes a row that breaks the running-balance identity.
type LedgerIssue struct {
	TransactionID string
	Reason        string
}

// CheckLedger walks the history in createdAt order and reports rows whose
// balances do not chain. The wallet service owns the ledger; this is only
// for diagnostics and never corrects anything.
func CheckLedger(txs []models.Transaction) []LedgerIssue {
	ordered := append([]models.Transaction(nil), txs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	var issues []LedgerIssue
	for i, tx := range ordered {
		want := tx.BalanceBefore.Add(SignedAmount(tx.Type, tx.Amount))
		if !want.Equal(tx.BalanceAfter) {
			issues = append(issues, LedgerIssue{
				TransactionID: tx.ID,
				Reason:        fmt.Sprintf("balance_after %s, expected %s", tx.BalanceAfter, want),
			})
		}
		if i > 0 && !ordered[i-1].BalanceAfter.Equal(tx.BalanceBefore) {
			issues = append(issues, LedgerIssue{
				TransactionID: tx.ID,
				Reason:        fmt.Sprintf("balance_before %s, previous balance_after %s", tx.BalanceBefore, ordered[i-1].BalanceAfter),
			})
		}
	}
	return issues
}

var (
	ErrInvalidAmount = errors.New("invalid deposit amount")
	ErrBelowMinimum  = errors.New("amount below minimum deposit")
)

// MinimumError reports the minimum a rejected deposit fell short of.
type MinimumError struct {
	Minimum decimal.Decimal
}

func (e *MinimumError) Error() string {
	return fmt.Sprintf("%s: %s", ErrBelowMinimum, e.Minimum)
}

func (e *MinimumError) Is(target error) bool {
	return target == ErrBelowMinimum
}

// ValidateDeposit checks a recharge amount against the configured minimum.
func ValidateDeposit(amount, minimum decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.LessThan(minimum) {
		return &MinimumError{Minimum: minimum}
	}
	return nil
}
