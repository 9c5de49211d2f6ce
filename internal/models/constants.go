package models

import "github.com/shopspring/decimal"

func init() {
	// backend expects JSON numbers for amounts
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	// DefaultSessionTTL session lifetime in Redis
	DefaultSessionTTL = 24 * 60 * 60 // 24h in seconds

	// DefaultCatalogCacheTTL lifetime of cached catalog responses
	DefaultCatalogCacheTTL = 5 * 60 // 5 minutes in seconds

	// DefaultPageSize page size for list endpoints
	DefaultPageSize = 20

	// Booking start-time grid
	FirstSlot   = "08:00"
	LastSlot    = "18:00"
	SlotMinutes = 30

	// DefaultMinDeposit minimum recharge amount (Kz)
	DefaultMinDeposit = 1000
)

// QuickDepositAmounts are the preset recharge values offered to the user.
var QuickDepositAmounts = []int64{5000, 10000, 20000, 50000, 100000}
