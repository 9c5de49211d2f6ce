// Package dashboard computes the per-status counts, tab filters and summary
// figures shown on booking lists and dashboards.
package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"marketplace/internal/models"
)

type Tab string

const (
	TabAll        Tab = "all"
	TabPendente   Tab = "pendente"
	TabConfirmada Tab = "confirmada"
	TabCancelada  Tab = "cancelada"
	TabConcluida  Tab = "concluida"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabAll, TabPendente, TabConfirmada, TabCancelada, TabConcluida}

var tabStatus = map[Tab]models.BookingStatus{
	TabPendente:   models.BookingPending,
	TabConfirmada: models.BookingConfirmed,
	TabCancelada:  models.BookingCancelled,
	TabConcluida:  models.BookingCompleted,
}

func ParseTab(s string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(s)))
	if t == "" || t == TabAll {
		return TabAll, nil
	}
	if _, ok := tabStatus[t]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// StatusForTab returns the status a tab selects; ok is false for "all".
func StatusForTab(t Tab) (models.BookingStatus, bool) {
	s, ok := tabStatus[t]
	return s, ok
}

type Stats struct {
	Total      int `json:"total"`
	Pendente   int `json:"pendente"`
	Confirmada int `json:"confirmada"`
	Cancelada  int `json:"cancelada"`
	Concluida  int `json:"concluida"`
}

// ForTab returns the count shown next to a tab.
func (s Stats) ForTab(t Tab) int {
	switch t {
	case TabPendente:
		return s.Pendente
	case TabConfirmada:
		return s.Confirmada
	case TabCancelada:
		return s.Cancelada
	case TabConcluida:
		return s.Concluida
	}
	return s.Total
}

func Count(bookings []models.Booking) Stats {
	st := Stats{Total: len(bookings)}
	for i := range bookings {
		switch bookings[i].Status {
		case models.BookingPending:
			st.Pendente++
		case models.BookingConfirmed:
			st.Confirmada++
		case models.BookingCancelled:
			st.Cancelada++
		case models.BookingCompleted:
			st.Concluida++
		}
	}
	return st
}

// Filter returns a new slice with the bookings of tab, most recent booking
// date first. Equal dates keep their fetch order.
func Filter(bookings []models.Booking, tab Tab) []models.Booking {
	want, byStatus := StatusForTab(tab)

	out := make([]models.Booking, 0, len(bookings))
	for i := range bookings {
		if byStatus && bookings[i].Status != want {
			continue
		}
		out = append(out, bookings[i])
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BookingDate.After(out[j].BookingDate.Time)
	})
	return out
}
