package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ServiceCategory string

const (
	CategoryBeauty      ServiceCategory = "BEAUTY"
	CategoryHealth      ServiceCategory = "HEALTH"
	CategoryEducation   ServiceCategory = "EDUCATION"
	CategoryTechnology  ServiceCategory = "TECHNOLOGY"
	CategoryConsulting  ServiceCategory = "CONSULTING"
	CategoryMaintenance ServiceCategory = "MAINTENANCE"
	CategoryEvents      ServiceCategory = "EVENTS"
	CategoryOther       ServiceCategory = "OTHER"
)

var ServiceCategories = []ServiceCategory{
	CategoryBeauty, CategoryHealth, CategoryEducation, CategoryTechnology,
	CategoryConsulting, CategoryMaintenance, CategoryEvents, CategoryOther,
}

var categoryLabels = map[ServiceCategory]string{
	CategoryBeauty:      "Beleza",
	CategoryHealth:      "Saúde",
	CategoryEducation:   "Educação",
	CategoryTechnology:  "Tecnologia",
	CategoryConsulting:  "Consultoria",
	CategoryMaintenance: "Manutenção",
	CategoryEvents:      "Eventos",
	CategoryOther:       "Outros",
}

func (c ServiceCategory) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c ServiceCategory) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

type ServiceStatus string

const (
	ServiceActive   ServiceStatus = "ACTIVE"
	ServiceInactive ServiceStatus = "INACTIVE"
)

type ProviderContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Service struct {
	ID          string           `json:"id"`
	ProviderID  string           `json:"provider_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    ServiceCategory  `json:"category"`
	Duration    int              `json:"duration"`
	Price       decimal.Decimal  `json:"price"`
	Status      ServiceStatus    `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Provider    *ProviderContact `json:"provider,omitempty"`
}

func (s *Service) IsActive() bool {
	return s.Status == ServiceActive
}

type ServiceFilters struct {
	Category ServiceCategory
	Search   string
	IsActive *bool
}

// ServiceInput is the create/update payload for a listing.
type ServiceInput struct {
	ProviderID  string          `json:"provider_id" validate:"required"`
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Category    ServiceCategory `json:"category" validate:"required,category"`
	Duration    int             `json:"duration" validate:"required,min=1,max=1440"`
	Price       decimal.Decimal `json:"price" validate:"required,gte=0.01,lte=1000000"`
}

type ServiceStatusRequest struct {
	Status ServiceStatus `json:"status"`
}
