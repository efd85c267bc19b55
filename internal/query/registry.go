package query

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/seuros/salesboard/internal/events"
)

// ErrUnknownReport is returned for a report name that is not registered.
var ErrUnknownReport = errors.New("unknown report")

// Shape tells whether a report yields a list of rows or a single record.
type Shape string

const (
	ShapeList   Shape = "list"
	ShapeRecord Shape = "record"
)

// Report is one named aggregation.
type Report struct {
	Name        string `json:"name"`
	Shape       Shape  `json:"shape"`
	Description string `json:"description"`

	run    func(*events.Table, Filter) any
	empty  func() any
	decode func([]byte) (any, error)
}

// Run evaluates the report. It never returns nil.
func (r Report) Run(table *events.Table, f Filter) any {
	return r.run(table, f)
}

// Empty is the value the report yields for no matching rows.
func (r Report) Empty() any {
	return r.empty()
}

// Decode parses a JSON payload into the report's typed result.
func (r Report) Decode(data []byte) (any, error) {
	return r.decode(data)
}

func listReport[T any](name, description string, fn func(*events.Table, Filter) []T) Report {
	return Report{
		Name:        name,
		Shape:       ShapeList,
		Description: description,
		run: func(t *events.Table, f Filter) any {
			out := fn(t, f)
			if out == nil {
				out = []T{}
			}
			return out
		},
		empty: func() any { return []T{} },
		decode: func(data []byte) (any, error) {
			out := []T{}
			if err := json.Unmarshal(data, &out); err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			if out == nil {
				out = []T{}
			}
			return out, nil
		},
	}
}

func recordReport[T any](name, description string, fn func(*events.Table, Filter) T) Report {
	return Report{
		Name:        name,
		Shape:       ShapeRecord,
		Description: description,
		run:         func(t *events.Table, f Filter) any { return fn(t, f) },
		empty: func() any {
			var zero T
			return zero
		},
		decode: func(data []byte) (any, error) {
			var out T
			if err := json.Unmarshal(data, &out); err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			return out, nil
		},
	}
}

// comparisonReport keeps the three views as empty lists rather than null.
func comparisonReport() Report {
	r := recordReport("salesperson_comparison", "Per-year individual, team and spread views", SalespersonComparison)
	r.empty = func() any {
		return Comparison{Individuals: []IndividualYear{}, Team: []TeamYear{}, TeamStats: []TeamStatYear{}}
	}
	decode := r.decode
	r.decode = func(data []byte) (any, error) {
		v, err := decode(data)
		if err != nil {
			return nil, err
		}
		c := v.(Comparison)
		if c.Individuals == nil {
			c.Individuals = []IndividualYear{}
		}
		if c.Team == nil {
			c.Team = []TeamYear{}
		}
		if c.TeamStats == nil {
			c.TeamStats = []TeamStatYear{}
		}
		return c, nil
	}
	return r
}

var registry = []Report{
	listReport("sales", "Quantity, revenue and profit per country and product", Sales),
	listReport("web_events", "Tracked web hits per country and URL", WebEvents),
	recordReport("metrics", "Headline sales and web counters", Metrics),
	listReport("stats", "Price and quantity statistics per event type", Stats),
	recordReport("conversion_funnel", "Visits, demo requests and sales with conversion rate", ConversionFunnel),
	listReport("trends", "Monthly revenue and profit", Trends),
	listReport("sales_by_channel", "Quantity and revenue per product and channel", SalesByChannel),
	listReport("profit_margin", "Mean profit margin per country and product", ProfitMargin),
	listReport("top_customers", "Five customers with the highest revenue", TopCustomers),
	listReport("web_trends", "Weekly tracked web hits", WebTrends),
	listReport("sales_stats", "Sales statistics per country, product and job type", SalesStats),
	listReport("salesperson_performance", "Salesperson totals against yearly and monthly targets", SalespersonPerformance),
	comparisonReport(),
	listReport("countries", "Distinct countries in the data", Countries),
	recordReport("software_sales", "Sales of the software product line", SoftwareSales),
	listReport("yoy_growth", "Year-over-year revenue and quantity growth per product", YoYGrowth),
	listReport("promo_correlation", "Monthly promotional events joined with sales trends", PromoCorrelation),
	recordReport("marketing_kpis", "Marketing overview derived from tracked web hits", MarketingKPIs),
	listReport("campaign_performance", "Tracked web hits with the impression model", CampaignPerformance),
	listReport("product_metrics", "Per-product totals and averages", ProductMetrics),
}

var byName = func() map[string]Report {
	m := make(map[string]Report, len(registry))
	for _, r := range registry {
		m[r.Name] = r
	}
	return m
}()

// Lookup finds a report by name.
func Lookup(name string) (Report, error) {
	r, ok := byName[name]
	if !ok {
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownReport, name)
	}
	return r, nil
}

// Reports lists every registered report in menu order.
func Reports() []Report {
	out := make([]Report, len(registry))
	copy(out, registry)
	return out
}
