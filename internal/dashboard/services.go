package dashboard

import (
	"sort"
	"strings"

	"marketplace/internal/models"
)

type PriceOrder string

const (
	PriceNone PriceOrder = ""
	PriceAsc  PriceOrder = "asc"
	PriceDesc PriceOrder = "desc"
)

type ServiceFilter struct {
	Search   string
	Category models.ServiceCategory // empty or "all" keeps every category
	Order    PriceOrder
}

// FilterServices applies the catalog search box, category picker and price
// sort to a fetched listing.
func FilterServices(services []models.Service, f ServiceFilter) []models.Service {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Service, 0, len(services))
	for i := range services {
		s := services[i]
		if f.Category != "" && f.Category != "all" && s.Category != f.Category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(s.Name), term) &&
			!strings.Contains(strings.ToLower(s.Description), term) {
			continue
		}
		out = append(out, s)
	}

	switch f.Order {
	case PriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case PriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	}
	return out
}
