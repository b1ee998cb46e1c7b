package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"puja-booking-api/pkg/utils"
)

type ServiceType string

const (
	ServiceTypePuja      ServiceType = "puja"
	ServiceTypeHomam     ServiceType = "homam"
	ServiceTypeAstrology ServiceType = "astrology"
)

var ServiceTypes = []ServiceType{ServiceTypePuja, ServiceTypeHomam, ServiceTypeAstrology}

func (t ServiceType) Valid() bool {
	for _, st := range ServiceTypes {
		if st == t {
			return true
		}
	}
	return false
}

// Price is a non-negative currency amount. It travels as a JSON string with
// two fractional digits so the UI never sees float rounding.
type Price struct {
	decimal.Decimal
}

// MustPrice parses s and panics on failure. Intended for fixtures and constants.
func MustPrice(s string) Price {
	return Price{Decimal: decimal.RequireFromString(s)}
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.StringFixed(2) + `"`), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		return fmt.Errorf("price is empty")
	}
	d, err := utils.ParsePrice(raw)
	if err != nil {
		return err
	}
	p.Decimal = d
	return nil
}

// ServiceRecord is a catalog item owned by the remote catalog service.
// Records are treated as immutable once ingested.
type ServiceRecord struct {
	ID              int64       `json:"id,omitempty"`
	Token           string      `json:"token,omitempty"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	ServiceType     ServiceType `json:"service_type"`
	Price           Price       `json:"price"`
	PriceLabel      string      `json:"price_label,omitempty"`
	DurationMinutes int         `json:"duration_minutes"`
	IsActive        bool        `json:"is_active"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	// DescriptionText is Description with markup stripped, filled at ingestion.
	DescriptionText string `json:"-"`
}

// SearchableDescription prefers the stripped description when available.
func (r ServiceRecord) SearchableDescription() string {
	if r.DescriptionText != "" {
		return r.DescriptionText
	}
	return r.Description
}

// Public returns a copy safe to hand to API clients: the raw id is replaced
// by token and the display price is filled in.
func (r ServiceRecord) Public(token string) ServiceRecord {
	r.ID = 0
	r.Token = token
	r.PriceLabel = utils.FormatINR(r.Price.Decimal)
	return r
}

// Validate checks the record invariants enforced at ingestion.
func (r ServiceRecord) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("record id must be positive, got %d", r.ID)
	}
	if r.CreatedAt.IsZero() {
		return fmt.Errorf("record %d: created_at is missing", r.ID)
	}
	if r.Price.IsNegative() {
		return fmt.Errorf("record %d: negative price %s", r.ID, r.Price.String())
	}
	if r.DurationMinutes <= 0 {
		return fmt.Errorf("record %d: duration must be positive, got %d", r.ID, r.DurationMinutes)
	}
	return nil
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
