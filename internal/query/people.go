package query

import (
	"cmp"
	"slices"

	"github.com/seuros/salesboard/internal/events"
)

type monthly struct {
	month   int64
	sales   float64
	revenue float64
}

type monthlySummary struct {
	latestAchieved float64
	meanSales      float64
	stdSales       float64
	meanRevenue    float64
	stdRevenue     float64
}

// monthlyBySalesperson rolls sales into calendar months per salesperson id
// and summarises each id's months.
func monthlyBySalesperson(rows []*events.Event) map[string]monthlySummary {
	months := make(map[string]map[int64]*monthly)
	for _, ev := range rows {
		if ev.SalespersonID == "" || ev.SalespersonName == "" {
			continue
		}
		byMonth, ok := months[ev.SalespersonID]
		if !ok {
			byMonth = make(map[int64]*monthly)
			months[ev.SalespersonID] = byMonth
		}
		m := monthStart(ev.Timestamp).Unix()
		bucket, ok := byMonth[m]
		if !ok {
			bucket = &monthly{month: m}
			byMonth[m] = bucket
		}
		bucket.sales += ev.Quantity
		bucket.revenue += ev.Revenue
	}

	out := make(map[string]monthlySummary, len(months))
	for id, byMonth := range months {
		var (
			latest   *monthly
			sales    []float64
			revenues []float64
		)
		for _, m := range byMonth {
			if latest == nil || m.month > latest.month {
				latest = m
			}
			sales = append(sales, m.sales)
			revenues = append(revenues, m.revenue)
		}
		out[id] = monthlySummary{
			latestAchieved: round2(percent(latest.revenue, MonthlyTarget)),
			meanSales:      round2(mean(sales)),
			stdSales:       round2(stddev(sales)),
			meanRevenue:    round2(mean(revenues)),
			stdRevenue:     round2(stddev(revenues)),
		}
	}
	return out
}

// SalespersonPerformance sums sales per (salesperson, country) and adds
// target achievement plus monthly statistics for each salesperson.
func SalespersonPerformance(table *events.Table, f Filter) []SalespersonRow {
	rows := salesRows(table, f)
	key := func(ev *events.Event) (triple, bool) {
		k := triple{ev.SalespersonID, ev.SalespersonName, ev.Country}
		return k, k.a != "" && k.b != "" && k.c != ""
	}

	out := []SalespersonRow{}
	groups := groupBy(rows, key, compareTriple)
	if len(groups) == 0 {
		return out
	}
	summaries := monthlyBySalesperson(rows)
	for _, g := range groups {
		r := SalespersonRow{
			SalespersonID:   g.key.a,
			SalespersonName: g.key.b,
			Country:         g.key.c,
			SalesCount:      sumOf(g.rows, quantity),
			Revenue:         sumOf(g.rows, revenue),
			Profit:          sumOf(g.rows, profit),
		}
		r.YearlyTargetAchieved = round2(percent(r.Revenue, YearlyTarget))
		if s, ok := summaries[r.SalespersonID]; ok {
			r.MonthlyTargetAchieved = s.latestAchieved
			r.MeanMonthlySales = s.meanSales
			r.StdMonthlySales = s.stdSales
			r.MeanMonthlyRevenue = s.meanRevenue
			r.StdMonthlyRevenue = s.stdRevenue
		}
		out = append(out, r)
	}
	return out
}

type yearKey struct {
	year int
	id   string
	name string
	ctry string
}

func compareYearKey(x, y yearKey) int {
	return cmp.Or(
		cmp.Compare(x.year, y.year),
		cmp.Compare(x.id, y.id),
		cmp.Compare(x.name, y.name),
		cmp.Compare(x.ctry, y.ctry),
	)
}

// SalespersonComparison reports individual totals, team totals and the
// spread across salespeople for each calendar year.
func SalespersonComparison(table *events.Table, f Filter) Comparison {
	out := Comparison{
		Individuals: []IndividualYear{},
		Team:        []TeamYear{},
		TeamStats:   []TeamStatYear{},
	}
	rows := salesRows(table, f)
	if len(rows) == 0 {
		return out
	}

	individual := func(ev *events.Event) (yearKey, bool) {
		k := yearKey{ev.Timestamp.Year(), ev.SalespersonID, ev.SalespersonName, ev.Country}
		return k, k.id != "" && k.name != "" && k.ctry != ""
	}
	for _, g := range groupBy(rows, individual, compareYearKey) {
		r := IndividualYear{
			Year:            g.key.year,
			SalespersonID:   g.key.id,
			SalespersonName: g.key.name,
			Country:         g.key.ctry,
			SalesCount:      sumOf(g.rows, quantity),
			Revenue:         sumOf(g.rows, revenue),
			Profit:          sumOf(g.rows, profit),
		}
		r.YearlyTargetAchieved = round2(percent(r.Revenue, YearlyTarget))
		out.Individuals = append(out.Individuals, r)
	}

	byYear := func(ev *events.Event) (int, bool) { return ev.Timestamp.Year(), true }
	for _, g := range groupBy(rows, byYear, cmp.Compare[int]) {
		t := TeamYear{
			Year:           g.key,
			TeamSalesCount: sumOf(g.rows, quantity),
			TeamRevenue:    sumOf(g.rows, revenue),
			TeamProfit:     sumOf(g.rows, profit),
		}
		t.TeamTargetAchieved = round2(percent(t.TeamRevenue, TeamYearlyTarget))
		out.Team = append(out.Team, t)
	}

	perPerson := func(ev *events.Event) (yearKey, bool) {
		return yearKey{year: ev.Timestamp.Year(), id: ev.SalespersonID}, ev.SalespersonID != ""
	}
	spread := make(map[int][][2]float64)
	var years []int
	for _, g := range groupBy(rows, perPerson, compareYearKey) {
		if _, ok := spread[g.key.year]; !ok {
			years = append(years, g.key.year)
		}
		spread[g.key.year] = append(spread[g.key.year], [2]float64{sumOf(g.rows, quantity), sumOf(g.rows, revenue)})
	}
	slices.Sort(years)
	for _, y := range years {
		var sales, revenues []float64
		for _, v := range spread[y] {
			sales = append(sales, v[0])
			revenues = append(revenues, v[1])
		}
		out.TeamStats = append(out.TeamStats, TeamStatYear{
			Year:            y,
			MeanTeamSales:   round2(mean(sales)),
			StdTeamSales:    round2(stddev(sales)),
			MeanTeamRevenue: round2(mean(revenues)),
			StdTeamRevenue:  round2(stddev(revenues)),
		})
	}
	return out
}
