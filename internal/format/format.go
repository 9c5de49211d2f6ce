// Package format renders money, dates and times the way the marketplace
// shows them to Angolan users (pt-AO locale, AOA currency).
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	nbsp = "\u00a0"

	// InvalidCurrency is shown when an amount cannot be parsed.
	InvalidCurrency = "Kz 0,00"

	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006, 15:04"
)

// Currency formats an amount as "15 000,00 Kz" (pt-AO). Thousands are
// grouped with a no-break space only from five integer digits on.
func Currency(v decimal.Decimal) string {
	s := v.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if v.Round(2).IsNegative() {
		b.WriteString("-")
	}
	b.WriteString(groupThousands(intPart))
	b.WriteString(",")
	b.WriteString(frac)
	b.WriteString(nbsp)
	b.WriteString("Kz")
	return b.String()
}

// CurrencyString parses a numeric string and formats it with Currency.
func CurrencyString(s string) string {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return InvalidCurrency
	}
	return Currency(v)
}

func groupThousands(digits string) string {
	if len(digits) < 5 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(nbsp)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Date formats t as dd/mm/yyyy; the zero time renders as "".
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// DateString parses an RFC 3339 timestamp or a YYYY-MM-DD date and formats it
// with Date. Unparseable input renders as "".
func DateString(s string) string {
	t, ok := parse(s)
	if !ok {
		return ""
	}
	return Date(t)
}

// DateTime formats t as "dd/mm/yyyy, HH:MM".
func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTimeLayout)
}

func DateTimeString(s string) string {
	t, ok := parse(s)
	if !ok {
		return ""
	}
	return DateTime(t)
}

// Time trims a "HH:MM:SS" wire time to "HH:MM".
func Time(s string) string {
	if len(s) <= 5 {
		return s
	}
	return s[:5]
}

func parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
