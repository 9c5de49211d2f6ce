package booking

import "marketplace/internal/models"

const defaultColor = "bg-gray-100 text-gray-800 border-gray-300"

var statusLabels = map[models.BookingStatus]string{
	models.BookingPending:   "Pendente",
	models.BookingConfirmed: "Confirmada",
	models.BookingCancelled: "Cancelada",
	models.BookingCompleted: "Concluída",
}

var statusColors = map[models.BookingStatus]string{
	models.BookingPending:   "bg-yellow-100 text-yellow-800 border-yellow-300",
	models.BookingConfirmed: "bg-green-100 text-green-800 border-green-300",
	models.BookingCancelled: "bg-red-100 text-red-800 border-red-300",
	models.BookingCompleted: "bg-blue-100 text-blue-800 border-blue-300",
}

// Label returns the display label; unknown values are shown as-is.
func Label(s models.BookingStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Color returns the badge classes for a status.
func Color(s models.BookingStatus) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return defaultColor
}

func CancelledByLabel(by *models.CancelledBy) string {
	if by == nil {
		return ""
	}
	switch *by {
	case models.CancelledByCustomer:
		return "Cliente"
	case models.CancelledByProvider:
		return "Prestador"
	case models.CancelledBySystem:
		return "Sistema"
	}
	return string(*by)
}
