package query

import (
	"time"

	"github.com/seuros/salesboard/internal/events"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 10, 0, 0, 0, time.UTC)
}

type saleOpt func(*events.Event)

func withCustomer(id string) saleOpt {
	return func(ev *events.Event) { ev.CustomerID = id }
}

func withSalesperson(id, name string) saleOpt {
	return func(ev *events.Event) {
		ev.SalespersonID = id
		ev.SalespersonName = name
	}
}

func withChannel(ch string) saleOpt {
	return func(ev *events.Event) { ev.Channel = ch }
}

func withJobType(job string) saleOpt {
	return func(ev *events.Event) { ev.JobType = job }
}

func withUnitCost(cost float64) saleOpt {
	return func(ev *events.Event) { ev.UnitCost = cost }
}

func sale(ts time.Time, country, product string, price, qty float64, opts ...saleOpt) events.Event {
	ev := events.Event{
		Timestamp: ts,
		Type:      events.TypeSale,
		Country:   country,
		Product:   product,
		Price:     price,
		Quantity:  qty,
	}
	for _, opt := range opts {
		opt(&ev)
	}
	return ev
}

func hit(ts time.Time, country, path string) events.Event {
	return events.Event{
		Timestamp: ts,
		Type:      events.TypeWeb,
		Country:   country,
		URL:       path,
		Status:    "200",
	}
}

func table(rows ...events.Event) *events.Table {
	return events.NewTable(rows)
}

type staticSource struct {
	table      *events.Table
	generation uint64
}

func (s *staticSource) Current() (*events.Table, uint64) {
	return s.table, s.generation
}
