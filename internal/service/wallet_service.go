package service

import (
	"context"
	"fmt"
	"strings"

	"marketplace/internal/config"
	"marketplace/internal/domain"
	"marketplace/internal/events"
	"marketplace/internal/models"
	"marketplace/internal/validation"
	"marketplace/internal/wallet"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type WalletService struct {
	wallet       domain.WalletAPI
	eventBus     domain.EventPublisher
	minDeposit   decimal.Decimal
	quickAmounts []decimal.Decimal
	logger       *zerolog.Logger
}

func NewWalletService(w domain.WalletAPI, eventBus domain.EventPublisher, cfg config.WalletConfig, logger *zerolog.Logger) *WalletService {
	min := cfg.MinDeposit
	if min <= 0 {
		min = models.DefaultMinDeposit
	}
	amounts := cfg.QuickAmounts
	if len(amounts) == 0 {
		amounts = models.QuickDepositAmounts
	}

	quick := make([]decimal.Decimal, 0, len(amounts))
	for _, a := range amounts {
		quick = append(quick, decimal.NewFromInt(a))
	}

	return &WalletService{
		wallet:       w,
		eventBus:     eventBus,
		minDeposit:   decimal.NewFromInt(min),
		quickAmounts: quick,
		logger:       logger,
	}
}

func (s *WalletService) MinDeposit() decimal.Decimal {
	return s.minDeposit
}

// QuickAmounts are the preset recharge buttons.
func (s *WalletService) QuickAmounts() []decimal.Decimal {
	return append([]decimal.Decimal(nil), s.quickAmounts...)
}

func (s *WalletService) Balance(ctx context.Context, session *models.Session) (*models.Balance, error) {
	if session == nil {
		return nil, ErrNoSession
	}
	bal, err := s.wallet.GetBalance(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return bal, nil
}

func (s *WalletService) Transactions(ctx context.Context, session *models.Session, query models.TransactionQuery) (*models.Page[models.Transaction], error) {
	if session == nil {
		return nil, ErrNoSession
	}
	if query.Type != "" && !query.Type.Valid() {
		return nil, fmt.Errorf("unknown transaction type %q", query.Type)
	}
	page, err := s.wallet.ListTransactions(ctx, session, query)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if page == nil {
		page = &models.Page[models.Transaction]{}
	}
	return page, nil
}

// Deposit recharges the wallet. Amounts below the minimum never reach the
// backend.
func (s *WalletService) Deposit(ctx context.Context, session *models.Session, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if session == nil {
		return nil, ErrNoSession
	}
	if err := wallet.ValidateDeposit(amount, s.minDeposit); err != nil {
		return nil, err
	}

	req := models.DepositRequest{Amount: amount, Description: strings.TrimSpace(description)}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	tx, err := s.wallet.Deposit(ctx, session, req)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", session.User.ID).Str("amount", amount.String()).Msg("Failed to deposit")
		return nil, err
	}

	payload := events.DepositPayload{
		UserID: session.User.ID,
		Amount: amount.StringFixed(2),
	}
	if tx != nil {
		payload.TransactionID = tx.ID
	}
	if bal, err := s.wallet.GetBalance(ctx, session); err != nil {
		s.logger.Warn().Err(err).Str("user_id", session.User.ID).Msg("Failed to refresh balance after deposit")
	} else if bal != nil {
		payload.BalanceAfter = bal.Balance.StringFixed(2)
	}

	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventWalletDeposited, payload); err != nil {
			s.logger.Error().Err(err).Str("event_type", events.EventWalletDeposited).Msg("Failed to publish deposit event")
		}
	}
	return tx, nil
}
