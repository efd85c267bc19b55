package query

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/seuros/salesboard/internal/events"
)

// Revenue goals used by the salesperson reports.
const (
	YearlyTarget     = 120000.0
	MonthlyTarget    = YearlyTarget / 12
	TeamSize         = 10
	TeamYearlyTarget = YearlyTarget * TeamSize
)

// Marketing goals used by marketing_kpis.
const (
	ExpectedVisits      = 10000.0
	ExpectedImpressions = 20000.0
	ImpressionsPerVisit = 2
)

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// stddev is the sample standard deviation; 0 when there are fewer than two values.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return clean(math.Sqrt(sq / float64(len(values)-1)))
}

func round2(v float64) float64 {
	return clean(math.Round(v*100) / 100)
}

// ratio divides, yielding 0 for a zero denominator.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return clean(num / den)
}

func percent(num, den float64) float64 {
	return ratio(num, den) * 100
}

func clean(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// weekStart returns Monday 00:00 of the week containing t.
func weekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// group is one bucket of rows sharing a key.
type group[K comparable] struct {
	key  K
	rows []*events.Event
}

// groupBy buckets rows by key, skipping rows for which key reports false.
// Groups come back in ascending key order with rows in table order.
func groupBy[K comparable](rows []*events.Event, key func(*events.Event) (K, bool), compare func(a, b K) int) []group[K] {
	index := make(map[K]int)
	var out []group[K]
	for _, ev := range rows {
		k, ok := key(ev)
		if !ok {
			continue
		}
		i, seen := index[k]
		if !seen {
			i = len(out)
			index[k] = i
			out = append(out, group[K]{key: k})
		}
		out[i].rows = append(out[i].rows, ev)
	}
	slices.SortFunc(out, func(a, b group[K]) int { return compare(a.key, b.key) })
	return out
}

func column(rows []*events.Event, get func(*events.Event) float64) []float64 {
	out := make([]float64, len(rows))
	for i, ev := range rows {
		out[i] = get(ev)
	}
	return out
}

func sumOf(rows []*events.Event, get func(*events.Event) float64) float64 {
	var total float64
	for _, ev := range rows {
		total += get(ev)
	}
	return total
}

func quantity(ev *events.Event) float64 { return ev.Quantity }
func revenue(ev *events.Event) float64  { return ev.Revenue }
func profit(ev *events.Event) float64   { return ev.Profit }

type pair struct{ a, b string }

func comparePair(x, y pair) int {
	return cmp.Or(cmp.Compare(x.a, y.a), cmp.Compare(x.b, y.b))
}

type triple struct{ a, b, c string }

func compareTriple(x, y triple) int {
	return cmp.Or(cmp.Compare(x.a, y.a), cmp.Compare(x.b, y.b), cmp.Compare(x.c, y.c))
}

// pairOf keys on two fields, rejecting rows where either is blank.
func pairOf(first, second func(*events.Event) string) func(*events.Event) (pair, bool) {
	return func(ev *events.Event) (pair, bool) {
		k := pair{first(ev), second(ev)}
		return k, k.a != "" && k.b != ""
	}
}

func country(ev *events.Event) string  { return ev.Country }
func product(ev *events.Event) string  { return ev.Product }
func channel(ev *events.Event) string  { return ev.Channel }
func customer(ev *events.Event) string { return ev.CustomerID }
func url(ev *events.Event) string      { return ev.URL }
