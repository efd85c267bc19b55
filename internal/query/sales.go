package query

import (
	"slices"
	"sort"

	"github.com/seuros/salesboard/internal/events"
)

func salesRows(table *events.Table, f Filter) []*events.Event {
	return Apply(table.OfType(events.TypeSale), f).Rows()
}

// Sales sums quantity, revenue and profit per (country, product).
func Sales(table *events.Table, f Filter) []SalesRow {
	out := []SalesRow{}
	for _, g := range groupBy(salesRows(table, f), pairOf(country, product), comparePair) {
		out = append(out, SalesRow{
			Country:    g.key.a,
			Product:    g.key.b,
			SalesCount: sumOf(g.rows, quantity),
			Revenue:    sumOf(g.rows, revenue),
			Profit:     sumOf(g.rows, profit),
		})
	}
	return out
}

// Trends sums revenue and profit per calendar month. Every month from the
// first to the last sale is present.
func Trends(table *events.Table, f Filter) []TrendRow {
	rows := salesRows(table, f)
	out := []TrendRow{}
	if len(rows) == 0 {
		return out
	}

	first := monthStart(rows[0].Timestamp)
	last := monthStart(rows[len(rows)-1].Timestamp)
	index := make(map[int64]int)
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		index[m.Unix()] = len(out)
		out = append(out, TrendRow{Timestamp: m})
	}
	for _, ev := range rows {
		i := index[monthStart(ev.Timestamp).Unix()]
		out[i].Revenue += ev.Revenue
		out[i].Profit += ev.Profit
	}
	return out
}

// SalesByChannel sums quantity and revenue per (product, channel).
func SalesByChannel(table *events.Table, f Filter) []ChannelRow {
	out := []ChannelRow{}
	for _, g := range groupBy(salesRows(table, f), pairOf(product, channel), comparePair) {
		out = append(out, ChannelRow{
			Product:    g.key.a,
			Channel:    g.key.b,
			SalesCount: sumOf(g.rows, quantity),
			Revenue:    sumOf(g.rows, revenue),
		})
	}
	return out
}

// ProfitMargin averages the per-row margin per (country, product).
func ProfitMargin(table *events.Table, f Filter) []ProfitMarginRow {
	out := []ProfitMarginRow{}
	for _, g := range groupBy(salesRows(table, f), pairOf(country, product), comparePair) {
		out = append(out, ProfitMarginRow{
			Country: g.key.a,
			Product: g.key.b,
			ProfitMargin: mean(column(g.rows, func(ev *events.Event) float64 {
				return ev.ProfitMargin
			})),
		})
	}
	return out
}

// TopCustomersLimit is the number of rows top_customers keeps.
const TopCustomersLimit = 5

// TopCustomers returns the (customer, country) groups with the highest
// revenue. Equal revenues keep key order.
func TopCustomers(table *events.Table, f Filter) []CustomerRow {
	out := []CustomerRow{}
	for _, g := range groupBy(salesRows(table, f), pairOf(customer, country), comparePair) {
		out = append(out, CustomerRow{
			CustomerID: g.key.a,
			Country:    g.key.b,
			SalesCount: sumOf(g.rows, quantity),
			Revenue:    sumOf(g.rows, revenue),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	if len(out) > TopCustomersLimit {
		out = out[:TopCustomersLimit]
	}
	return out
}

// SalesStats reports mean and standard deviation of quantity, revenue and
// profit per (country, product, job_type). A blank job type reads "Unknown".
func SalesStats(table *events.Table, f Filter) []SalesStatRow {
	key := func(ev *events.Event) (triple, bool) {
		job := ev.JobType
		if job == "" {
			job = "Unknown"
		}
		return triple{ev.Country, ev.Product, job}, ev.Country != "" && ev.Product != ""
	}

	out := []SalesStatRow{}
	for _, g := range groupBy(salesRows(table, f), key, compareTriple) {
		q := column(g.rows, quantity)
		r := column(g.rows, revenue)
		p := column(g.rows, profit)
		out = append(out, SalesStatRow{
			Country:        g.key.a,
			Product:        g.key.b,
			JobType:        g.key.c,
			MeanSalesCount: round2(mean(q)),
			StdSalesCount:  round2(stddev(q)),
			MeanRevenue:    round2(mean(r)),
			StdRevenue:     round2(stddev(r)),
			MeanProfit:     round2(mean(p)),
			StdProfit:      round2(stddev(p)),
		})
	}
	return out
}

// SoftwareSales counts sale rows of the software product line.
func SoftwareSales(table *events.Table, f Filter) SoftwareTotals {
	var out SoftwareTotals
	for _, ev := range salesRows(table, f) {
		if !slices.Contains(SoftwareProducts, ev.Product) {
			continue
		}
		out.SoftwareSalesCount++
		out.SoftwareRevenue += ev.Revenue
	}
	return out
}
