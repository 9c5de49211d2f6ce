package main

import (
	"fmt"

	"marketplace/internal/events"
	"marketplace/internal/format"
)

var bookingNotices = map[string]string{
	events.EventBookingCreated:   "Reserva criada com sucesso!",
	events.EventBookingConfirmed: "Reserva confirmada com sucesso!",
	events.EventBookingCancelled: "Reserva cancelada com sucesso!",
}

var serviceNotices = map[string]string{
	"created": "Serviço criado com sucesso!",
	"updated": "Serviço atualizado com sucesso!",
	"status":  "Estado do serviço atualizado!",
	"deleted": "Serviço excluído com sucesso!",
}

// subscribeNotifier prints the transient notifications raised by the
// services. Failures are printed by the command that failed.
func (a *app) subscribeNotifier() {
	a.bus.Subscribe(func(event *events.Event) error {
		var p events.BookingEventPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s (%s)\n", bookingNotices[event.Type], p.BookingID)
		return nil
	}, events.EventBookingCreated, events.EventBookingConfirmed, events.EventBookingCancelled)

	a.bus.Subscribe(func(event *events.Event) error {
		var p events.DepositPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Recarga de %s realizada com sucesso!\n", format.CurrencyString(p.Amount))
		if p.BalanceAfter != "" {
			fmt.Fprintf(a.out, "Saldo atual: %s\n", format.CurrencyString(p.BalanceAfter))
		}
		return nil
	}, events.EventWalletDeposited)

	a.bus.Subscribe(func(event *events.Event) error {
		var p events.ServicePayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		if msg, ok := serviceNotices[p.Action]; ok {
			fmt.Fprintln(a.out, msg)
		}
		return nil
	}, events.EventServiceChanged)

	a.bus.Subscribe(func(event *events.Event) error {
		var p events.FailurePayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		a.logger.Debug().Str("operation", p.Operation).Str("booking_id", p.BookingID).Strs("messages", p.Messages).Msg("operation failed")
		return nil
	}, events.EventBookingFailed)

	a.bus.Subscribe(func(event *events.Event) error {
		var p events.ReloadPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		a.logger.Debug().Str("tab", p.Tab).Int("count", p.Count).Msg("bookings reloaded")
		return nil
	}, events.EventBookingsReloaded)
}
