package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"marketplace/internal/booking"
	"marketplace/internal/dashboard"
	"marketplace/internal/format"
	"marketplace/internal/models"
	"marketplace/internal/wallet"
)

var tabLabels = map[dashboard.Tab]string{
	dashboard.TabAll:        "Todas",
	dashboard.TabPendente:   "Pendentes",
	dashboard.TabConfirmada: "Confirmadas",
	dashboard.TabCancelada:  "Canceladas",
	dashboard.TabConcluida:  "Concluídas",
}

func roleLabel(r models.Role) string {
	switch r {
	case models.RoleCustomer:
		return "Cliente"
	case models.RoleProvider:
		return "Prestador"
	}
	return string(r)
}

func serviceStatusLabel(s *models.Service) string {
	if s.IsActive() {
		return "Ativo"
	}
	return "Inativo"
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printUser(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "%s <%s>\n", u.Name, u.Email)
	fmt.Fprintf(w, "Tipo: %s\n", roleLabel(u.Type))
	if u.Phone != "" {
		fmt.Fprintf(w, "Telefone: %s\n", u.Phone)
	}
	if u.NIF != "" {
		fmt.Fprintf(w, "NIF: %s\n", u.NIF)
	}
}

func printServices(w io.Writer, services []models.Service) {
	if len(services) == 0 {
		fmt.Fprintln(w, "Nenhum serviço encontrado")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNOME\tCATEGORIA\tDURAÇÃO\tPREÇO\tESTADO")
	for i := range services {
		s := &services[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d min\t%s\t%s\n",
			s.ID, s.Name, s.Category.Label(), s.Duration, format.Currency(s.Price), serviceStatusLabel(s))
	}
	_ = tw.Flush()
}

func printService(w io.Writer, s *models.Service) {
	fmt.Fprintf(w, "%s (%s)\n", s.Name, s.ID)
	fmt.Fprintf(w, "Categoria: %s\n", s.Category.Label())
	fmt.Fprintf(w, "Duração: %d min\n", s.Duration)
	fmt.Fprintf(w, "Preço: %s\n", format.Currency(s.Price))
	fmt.Fprintf(w, "Estado: %s\n", serviceStatusLabel(s))
	if s.Description != "" {
		fmt.Fprintf(w, "\n%s\n", s.Description)
	}
	if s.Provider != nil {
		fmt.Fprintf(w, "\nPrestador: %s", s.Provider.Name)
		if s.Provider.Phone != "" {
			fmt.Fprintf(w, " | %s", s.Provider.Phone)
		}
		if s.Provider.Email != "" {
			fmt.Fprintf(w, " | %s", s.Provider.Email)
		}
		fmt.Fprintln(w)
	}
}

func printAvailability(w io.Writer, date string, a *models.Availability) {
	if a == nil || !a.Available || len(a.AvailableTimes) == 0 {
		fmt.Fprintf(w, "\nSem horários disponíveis em %s\n", format.DateString(date))
		return
	}
	fmt.Fprintf(w, "\nHorários disponíveis em %s: %s\n", format.DateString(date), strings.Join(a.AvailableTimes, " "))
}

func printTabs(w io.Writer, st dashboard.Stats, active dashboard.Tab) {
	parts := make([]string, 0, len(dashboard.Tabs))
	for _, t := range dashboard.Tabs {
		label := fmt.Sprintf("%s (%d)", tabLabels[t], st.ForTab(t))
		if t == active {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))
}

func printBookings(w io.Writer, bookings []models.Booking, role models.Role) {
	if len(bookings) == 0 {
		fmt.Fprintln(w, "Nenhuma reserva encontrada")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATA\tHORA\tSERVIÇO\tCONTRAPARTE\tESTADO\tTOTAL")
	for i := range bookings {
		b := &bookings[i]
		counterpart := "-"
		if p := b.Counterpart(role); p != nil && p.Name != "" {
			counterpart = p.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, format.Date(b.BookingDate.Time), format.Time(b.StartTime), b.ServiceName(),
			counterpart, booking.Label(b.Status), format.Currency(b.TotalPrice))
	}
	_ = tw.Flush()
}

func printBooking(w io.Writer, b *models.Booking, role models.Role, now time.Time) {
	fmt.Fprintf(w, "Reserva %s: %s\n", b.ID, booking.Label(b.Status))
	fmt.Fprintf(w, "Serviço: %s\n", b.ServiceName())
	fmt.Fprintf(w, "Data: %s, %s", format.Date(b.BookingDate.Time), format.Time(b.StartTime))
	if b.EndTime != "" {
		fmt.Fprintf(w, " - %s", format.Time(b.EndTime))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total: %s\n", format.Currency(b.TotalPrice))

	if p := b.Counterpart(role); p != nil {
		label := "Prestador"
		if role == models.RoleProvider {
			label = "Cliente"
		}
		fmt.Fprintf(w, "%s: %s", label, p.Name)
		if p.Phone != "" {
			fmt.Fprintf(w, " | %s", p.Phone)
		}
		if p.Email != "" {
			fmt.Fprintf(w, " | %s", p.Email)
		}
		fmt.Fprintln(w)
	}

	if b.Status == models.BookingCancelled {
		if b.CancellationReason != nil {
			fmt.Fprintf(w, "Motivo: %s\n", *b.CancellationReason)
		}
		if by := booking.CancelledByLabel(b.CancelledBy); by != "" {
			fmt.Fprintf(w, "Cancelada por: %s\n", by)
		}
	}

	fmt.Fprintln(w, "Histórico:")
	for _, e := range booking.Timeline(b) {
		fmt.Fprintf(w, "  %s  %s\n", format.DateTime(e.At), e.Label)
	}

	var actions []string
	for _, act := range booking.Actions(b, role, now) {
		switch act {
		case booking.ActionConfirm:
			actions = append(actions, "confirm "+b.ID)
		case booking.ActionCancel:
			actions = append(actions, "cancel "+b.ID+" <motivo>")
		}
	}
	if len(actions) > 0 {
		fmt.Fprintf(w, "Ações: %s\n", strings.Join(actions, ", "))
	}
}

func printTransactions(w io.Writer, txs []models.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "Nenhuma transação encontrada")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "DATA\tTIPO\tVALOR\tSALDO\tDESCRIÇÃO")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s%s\t%s\t%s\n",
			format.DateTime(tx.CreatedAt), wallet.TypeLabel(tx.Type), wallet.Sign(tx.Type),
			format.Currency(tx.Amount.Abs()), format.Currency(tx.BalanceAfter), tx.Description)
	}
	_ = tw.Flush()
}

func printCustomerSummary(w io.Writer, s dashboard.CustomerSummary, bal *models.Balance) {
	if bal != nil {
		fmt.Fprintf(w, "Saldo: %s\n", format.Currency(bal.Balance))
	}
	fmt.Fprintf(w, "Reservas ativas: %d\n", s.ActiveBookings)
	fmt.Fprintf(w, "Pendentes: %d\n", s.PendingBookings)
	fmt.Fprintf(w, "Concluídas: %d\n", s.CompletedBookings)
	fmt.Fprintf(w, "Total gasto: %s\n", format.Currency(s.TotalSpent))
}

func printProviderSummary(w io.Writer, s dashboard.ProviderSummary) {
	fmt.Fprintf(w, "Serviços: %d (%d ativos)\n", s.TotalServices, s.ActiveServices)
	fmt.Fprintf(w, "Reservas este mês: %d\n", s.MonthlyBookings)
	fmt.Fprintf(w, "Pendentes: %d\n", s.PendingBookings)
	fmt.Fprintf(w, "Receita do mês: %s\n", format.Currency(s.MonthlyRevenue))
	fmt.Fprintf(w, "Receita total: %s\n", format.Currency(s.TotalRevenue))
}
