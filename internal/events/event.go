// Package events holds the immutable, timestamp-ordered event table that
// every report reads from, together with the loaders that build it.
package events

import (
	"math"
	"strings"
	"time"
)

// Type is the kind of a logged event.
type Type string

const (
	TypeSale Type = "sale"
	TypeWeb  Type = "web"
)

// ParseType maps a raw event_type value onto a known Type.
func ParseType(raw string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeSale:
		return TypeSale, true
	case TypeWeb:
		return TypeWeb, true
	default:
		return "", false
	}
}

// Event is one row of the source log, either a sale or a web hit.
// Sale-only and web-only fields are blank on the other type.
type Event struct {
	Timestamp       time.Time
	Type            Type
	Country         string
	Product         string
	Price           float64
	UnitCost        float64
	Quantity        float64
	Channel         string
	JobType         string
	URL             string
	Status          string
	UserAgent       string
	CustomerID      string
	SalespersonID   string
	SalespersonName string

	// Derived at load time.
	Revenue      float64
	Cost         float64
	Profit       float64
	ProfitMargin float64
}

// derive fills the P&L columns. A zero revenue divides by 1 so the margin
// collapses to the profit instead of becoming NaN.
func (e *Event) derive() {
	e.Price = finite(e.Price)
	e.UnitCost = finite(e.UnitCost)
	e.Quantity = finite(e.Quantity)

	e.Revenue = e.Price * e.Quantity
	e.Cost = e.UnitCost * e.Quantity
	e.Profit = e.Revenue - e.Cost

	divisor := e.Revenue
	if divisor == 0 {
		divisor = 1
	}
	e.ProfitMargin = e.Profit / divisor
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
