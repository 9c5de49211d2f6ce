package service

import (
	"errors"
	"fmt"

	"marketplace/internal/booking"
	"marketplace/internal/client"
	"marketplace/internal/format"
	"marketplace/internal/validation"
	"marketplace/internal/wallet"
)

var (
	ErrNoSession           = errors.New("not logged in")
	ErrCustomerOnly        = errors.New("only customers can book services")
	ErrProviderOnly        = errors.New("only providers can manage services")
	ErrServiceRequired     = errors.New("service is required")
	ErrDateRequired        = errors.New("booking date is required")
	ErrTimeRequired        = errors.New("booking start time is required")
	ErrDateTooSoon         = errors.New("booking date must be after today")
	ErrInvalidTimeSlot     = errors.New("start time is not a bookable slot")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrNotAllowed          = errors.New("action not allowed for this booking")
	ErrBookingNotLoaded    = errors.New("booking is not loaded")
)

// InsufficientBalanceError carries the gate decision that blocked a booking.
type InsufficientBalanceError struct {
	Decision wallet.Decision
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: short by %s", ErrInsufficientBalance, e.Decision.Shortfall.StringFixed(2))
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// UserMessage returns the Portuguese messages to show for err. Server errors
// are flattened by client.Messages with fallback as the last resort.
func UserMessage(err error, fallback string) []string {
	if err == nil {
		return nil
	}

	var (
		verrs        validation.Errors
		insufficient *InsufficientBalanceError
		minimum      *wallet.MinimumError
	)

	switch {
	case errors.As(err, &verrs):
		return verrs.Messages()
	case errors.As(err, &insufficient):
		return []string{fmt.Sprintf("Saldo insuficiente. Faltam %s para esta reserva", format.Currency(insufficient.Decision.Shortfall))}
	case errors.As(err, &minimum):
		return []string{"O valor mínimo de recarga é " + format.Currency(minimum.Minimum)}
	case errors.Is(err, ErrDateRequired), errors.Is(err, ErrTimeRequired):
		return []string{"Por favor, preencha data e horário"}
	case errors.Is(err, ErrDateTooSoon):
		return []string{"A data deve ser a partir de amanhã"}
	case errors.Is(err, ErrInvalidTimeSlot):
		return []string{"Selecione um horário válido"}
	case errors.Is(err, ErrServiceRequired):
		return []string{"Selecione um serviço"}
	case errors.Is(err, wallet.ErrBalanceUnavailable):
		return []string{"Não foi possível verificar o seu saldo"}
	case errors.Is(err, booking.ErrReasonRequired):
		return []string{"Por favor, informe o motivo do cancelamento"}
	case errors.Is(err, ErrNotAllowed):
		return []string{"Esta ação não está disponível para esta reserva"}
	case errors.Is(err, ErrBookingNotLoaded):
		return []string{"Reserva não encontrada"}
	case errors.Is(err, ErrCustomerOnly):
		return []string{"Apenas clientes podem fazer reservas"}
	case errors.Is(err, ErrProviderOnly):
		return []string{"Apenas prestadores podem gerir serviços"}
	case errors.Is(err, ErrNoSession):
		return []string{"Faça login para continuar"}
	case errors.Is(err, client.ErrUnauthorized):
		return []string{client.MsgSessionExpired}
	case errors.Is(err, wallet.ErrInvalidAmount):
		return []string{"Informe um valor válido"}
	}

	return client.Messages(err, fallback)
}
