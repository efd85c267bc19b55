package query

import (
	"cmp"
	"slices"

	"github.com/seuros/salesboard/internal/events"
)

// Countries lists the distinct countries present after filtering.
func Countries(table *events.Table, f Filter) []string {
	return Apply(table, f).Countries()
}

// YoYGrowth sums revenue and quantity per (product, year) and reports the
// percent change against the product's previous observed year. A product's
// first year has nothing to compare with and is omitted.
func YoYGrowth(table *events.Table, f Filter) []GrowthRow {
	type productYear struct {
		product string
		year    int
	}
	key := func(ev *events.Event) (productYear, bool) {
		return productYear{ev.Product, ev.Timestamp.Year()}, ev.Product != ""
	}
	compare := func(x, y productYear) int {
		return cmp.Or(cmp.Compare(x.product, y.product), cmp.Compare(x.year, y.year))
	}

	out := []GrowthRow{}
	var prev *GrowthRow
	for _, g := range groupBy(salesRows(table, f), key, compare) {
		cur := GrowthRow{
			Product:    g.key.product,
			Year:       g.key.year,
			Revenue:    sumOf(g.rows, revenue),
			SalesCount: sumOf(g.rows, quantity),
		}
		if prev != nil && prev.Product == cur.Product {
			cur.RevenueGrowth = growth(cur.Revenue, prev.Revenue)
			cur.SalesGrowth = growth(cur.SalesCount, prev.SalesCount)
			out = append(out, cur)
		}
		prev = &cur
	}
	return out
}

func growth(cur, prev float64) float64 {
	return percent(cur-prev, prev)
}

// ProductMetrics summarises each product over its (country, product) sales
// groups: total quantity plus the average group revenue and profit.
func ProductMetrics(table *events.Table, f Filter) []ProductMetricRow {
	type agg struct {
		sales    float64
		revenues []float64
		profits  []float64
	}
	var order []string
	byProduct := make(map[string]*agg)
	for _, r := range Sales(table, f) {
		a, ok := byProduct[r.Product]
		if !ok {
			a = &agg{}
			byProduct[r.Product] = a
			order = append(order, r.Product)
		}
		a.sales += r.SalesCount
		a.revenues = append(a.revenues, r.Revenue)
		a.profits = append(a.profits, r.Profit)
	}

	slices.Sort(order)
	out := make([]ProductMetricRow, 0, len(order))
	for _, name := range order {
		a := byProduct[name]
		out = append(out, ProductMetricRow{
			Product:    name,
			SalesCount: a.sales,
			AvgRevenue: mean(a.revenues),
			AvgProfit:  mean(a.profits),
		})
	}
	return out
}
