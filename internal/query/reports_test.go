package query

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seuros/salesboard/internal/events"
)

func TestSalesSingleRow(t *testing.T) {
	tbl := table(sale(day(2024, 3, 1), "US", "AI Assistant", 100, 2, withUnitCost(30)))

	assert.Equal(t, []SalesRow{{
		Country:    "US",
		Product:    "AI Assistant",
		SalesCount: 2,
		Revenue:    200,
		Profit:     140,
	}}, Sales(tbl, Filter{}))

	m := Metrics(tbl, Filter{})
	assert.Equal(t, 200.0, m.TotalRevenue)
	assert.Equal(t, 1, m.TotalSales)
}

func TestSalesGroupsInKeyOrderAndSkipsBlankKeys(t *testing.T) {
	tbl := table(
		sale(day(2024, 3, 1), "US", "B", 10, 1),
		sale(day(2024, 3, 2), "DE", "A", 10, 2),
		sale(day(2024, 3, 3), "US", "A", 10, 3),
		sale(day(2024, 3, 4), "US", "B", 10, 4),
		sale(day(2024, 3, 5), "", "B", 10, 5),
	)

	got := Sales(tbl, Filter{})
	require.Len(t, got, 3)
	assert.Equal(t, "DE", got[0].Country)
	assert.Equal(t, SalesRow{Country: "US", Product: "A", SalesCount: 3, Revenue: 30, Profit: 30}, got[1])
	assert.Equal(t, SalesRow{Country: "US", Product: "B", SalesCount: 5, Revenue: 50, Profit: 50}, got[2])
}

func TestWebEventsCountsTrackedURLsOnly(t *testing.T) {
	tbl := table(
		hit(day(2024, 3, 1), "US", URLRequestDemo),
		hit(day(2024, 3, 2), "US", URLRequestDemo),
		hit(day(2024, 3, 2), "US", "/pricing"),
		hit(day(2024, 3, 3), "DE", URLAIAssistant),
		sale(day(2024, 3, 3), "DE", "A", 1, 1),
	)

	assert.Equal(t, []WebEventRow{
		{Country: "DE", URL: URLAIAssistant, Count: 1},
		{Country: "US", URL: URLRequestDemo, Count: 2},
	}, WebEvents(tbl, Filter{}))
}

func TestMetricsCountsTrackedHits(t *testing.T) {
	tbl := table(
		hit(day(2024, 3, 1), "US", URLRequestDemo),
		hit(day(2024, 3, 1), "US", URLPromotion),
		hit(day(2024, 3, 1), "US", URLPromotion),
		hit(day(2024, 3, 1), "US", URLAIAssistant),
		hit(day(2024, 3, 1), "US", "/"),
		sale(day(2024, 3, 1), "US", "A", 50, 2, withUnitCost(20)),
	)

	assert.Equal(t, MetricsSnapshot{
		TotalSales:    1,
		TotalRevenue:  100,
		TotalProfit:   60,
		DemoRequests:  1,
		PromoRequests: 2,
		AIRequests:    1,
	}, Metrics(tbl, Filter{}))
}

func TestStatsUsesSampleDeviation(t *testing.T) {
	tbl := table(
		sale(day(2024, 3, 1), "US", "A", 10, 1),
		sale(day(2024, 3, 2), "US", "A", 20, 3),
		hit(day(2024, 3, 2), "US", "/"),
	)

	assert.Equal(t, []StatRow{
		{EventType: "sale", MeanPrice: 15, StdPrice: 7.07, MeanQuantity: 2, StdQuantity: 1.41},
		{EventType: "web"},
	}, Stats(tbl, Filter{}))
}

func TestConversionFunnel(t *testing.T) {
	tbl := table(
		hit(day(2024, 3, 1), "US", URLRequestDemo),
		hit(day(2024, 3, 1), "US", "/"),
		hit(day(2024, 3, 1), "US", "/"),
		hit(day(2024, 3, 1), "US", "/"),
		sale(day(2024, 3, 1), "US", "A", 1, 1),
	)

	assert.Equal(t, Funnel{WebVisits: 4, DemoRequests: 1, Sales: 1, ConversionRate: 25}, ConversionFunnel(tbl, Filter{}))
}

func TestConversionFunnelWithoutWebRows(t *testing.T) {
	tbl := table(
		sale(day(2024, 3, 1), "US", "A", 1, 1),
		sale(day(2024, 3, 2), "US", "A", 1, 1),
		sale(day(2024, 3, 3), "US", "A", 1, 1),
	)

	assert.Equal(t, Funnel{Sales: 3}, ConversionFunnel(tbl, Filter{}))
}

func TestTrendsFillsMissingMonths(t *testing.T) {
	tbl := table(
		sale(day(2024, 1, 15), "US", "A", 10, 1),
		sale(day(2024, 1, 20), "US", "A", 10, 2),
		sale(day(2024, 4, 2), "US", "A", 10, 1, withUnitCost(4)),
	)

	assert.Equal(t, []TrendRow{
		{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Revenue: 30, Profit: 30},
		{Timestamp: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{Timestamp: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Timestamp: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Revenue: 10, Profit: 6},
	}, Trends(tbl, Filter{}))
}

func TestTrendsCrossesYearBoundary(t *testing.T) {
	tbl := table(
		sale(day(2023, 11, 30), "US", "A", 1, 1),
		sale(day(2024, 2, 1), "US", "A", 1, 1),
	)
	got := Trends(tbl, Filter{})
	require.Len(t, got, 4)
	assert.Equal(t, time.December, got[1].Timestamp.Month())
	assert.Equal(t, 2024, got[2].Timestamp.Year())
}

func TestSalesByChannelAndProfitMargin(t *testing.T) {
	tbl := table(
		sale(day(2024, 3, 1), "US", "A", 100, 1, withChannel("online"), withUnitCost(50)),
		sale(day(2024, 3, 2), "US", "A", 100, 3, withChannel("online"), withUnitCost(90)),
		sale(day(2024, 3, 3), "US", "A", 100, 1, withChannel("partner")),
	)

	assert.Equal(t, []ChannelRow{
		{Product: "A", Channel: "online", SalesCount: 4, Revenue: 400},
		{Product: "A", Channel: "partner", SalesCount: 1, Revenue: 100},
	}, SalesByChannel(tbl, Filter{}))

	margins := ProfitMargin(tbl, Filter{})
	require.Len(t, margins, 1)
	// margins are 0.5, 0.1 and 1.0
	assert.InDelta(t, 1.6/3, margins[0].ProfitMargin, 1e-9)
}

func TestTopCustomersKeepsFiveByRevenue(t *testing.T) {
	var rows []events.Event
	for i := 1; i <= 6; i++ {
		rows = append(rows, sale(day(2024, 3, i), "US", "A", float64(i*10), 1, withCustomer(fmt.Sprintf("c-%d", i))))
	}
	got := TopCustomers(table(rows...), Filter{})

	require.Len(t, got, 5)
	for i, want := range []string{"c-6", "c-5", "c-4", "c-3", "c-2"} {
		assert.Equal(t, want, got[i].CustomerID)
	}
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Revenue, got[i].Revenue)
	}
}

func TestTopCustomersTiesKeepKeyOrder(t *testing.T) {
	tbl := table(
		sale(day(2024, 3, 1), "US", "A", 10, 1, withCustomer("c-b")),
		sale(day(2024, 3, 2), "US", "A", 10, 1, withCustomer("c-a")),
		sale(day(2024, 3, 3), "US", "A", 20, 1, withCustomer("c-c")),
	)
	got := TopCustomers(tbl, Filter{})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c-c", "c-a", "c-b"}, []string{got[0].CustomerID, got[1].CustomerID, got[2].CustomerID})
}

func TestWebTrendsWeeklyBuckets(t *testing.T) {
	tbl := table(
		hit(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), "US", URLRequestDemo),
		hit(time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC), "US", URLAIAssistant),
		hit(time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC), "US", URLPromotion),
		hit(time.Date(2024, 3, 25, 9, 0, 0, 0, time.UTC), "US", "/pricing"),
	)

	monday := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	assert.Equal(t, []WebTrendRow{
		{Timestamp: monday(4), RequestDemo: 1, AIAssistant: 1},
		{Timestamp: monday(11)},
		{Timestamp: monday(18), PromotionalEvent: 1},
		{Timestamp: monday(25)},
	}, WebTrends(tbl, Filter{}))
}

func TestWebTrendsSpansFilterBounds(t *testing.T) {
	tbl := table(hit(time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC), "US", URLRequestDemo))

	got := WebTrends(tbl, Filter{
		Start: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.Len(t, got, 5)
	assert.Equal(t, time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC), got[0].Timestamp)
	assert.Equal(t, 1, got[1].RequestDemo)
	assert.Equal(t, time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC), got[4].Timestamp)
}

func TestWebTrendsWithoutTrackedHitsIsEmpty(t *testing.T) {
	tbl := table(hit(day(2024, 3, 6), "US", "/pricing"))
	got := WebTrends(tbl, Filter{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSalesStatsUnknownJobType(t *testing.T) {
	tbl := table(
		sale(day(2024, 3, 1), "US", "A", 10, 1),
		sale(day(2024, 3, 2), "US", "A", 10, 3),
		sale(day(2024, 3, 3), "US", "A", 10, 2, withJobType("Prototyping")),
	)

	got := SalesStats(tbl, Filter{})
	require.Len(t, got, 2)
	assert.Equal(t, SalesStatRow{
		Country: "US", Product: "A", JobType: "Prototyping",
		MeanSalesCount: 2, MeanRevenue: 20, MeanProfit: 20,
	}, got[0])
	assert.Equal(t, SalesStatRow{
		Country: "US", Product: "A", JobType: "Unknown",
		MeanSalesCount: 2, StdSalesCount: 1.41,
		MeanRevenue: 20, StdRevenue: 14.14,
		MeanProfit: 20, StdProfit: 14.14,
	}, got[1])
}

func TestSalespersonPerformance(t *testing.T) {
	tbl := table(
		sale(day(2024, 1, 10), "US", "A", 1000, 5, withSalesperson("sp-1", "Ada Lovelace")),
		sale(day(2024, 2, 10), "US", "A", 1000, 10, withSalesperson("sp-1", "Ada Lovelace")),
		sale(day(2024, 2, 11), "DE", "A", 500, 2, withSalesperson("sp-2", "Grace Hopper")),
		sale(day(2024, 2, 12), "DE", "A", 500, 2),
	)

	got := SalespersonPerformance(tbl, Filter{})
	require.Len(t, got, 2)

	ada := got[0]
	assert.Equal(t, "sp-1", ada.SalespersonID)
	assert.Equal(t, 15.0, ada.SalesCount)
	assert.Equal(t, 15000.0, ada.Revenue)
	assert.InDelta(t, 12.5, ada.YearlyTargetAchieved, 1e-9)
	assert.InDelta(t, 100, ada.MonthlyTargetAchieved, 1e-9)
	assert.InDelta(t, 7.5, ada.MeanMonthlySales, 1e-9)
	assert.InDelta(t, 3.54, ada.StdMonthlySales, 1e-9)
	assert.InDelta(t, 7500, ada.MeanMonthlyRevenue, 1e-9)
	assert.InDelta(t, 3535.53, ada.StdMonthlyRevenue, 1e-9)

	grace := got[1]
	assert.Equal(t, "Grace Hopper", grace.SalespersonName)
	assert.InDelta(t, 0.83, grace.YearlyTargetAchieved, 1e-9)
	assert.InDelta(t, 10, grace.MonthlyTargetAchieved, 1e-9)
	assert.Equal(t, 0.0, grace.StdMonthlySales)
}

func TestSalespersonComparisonTwoYears(t *testing.T) {
	tbl := table(
		sale(day(2023, 5, 1), "US", "A", 6000, 2, withSalesperson("sp-1", "Ada")),
		sale(day(2024, 5, 1), "US", "A", 10000, 3, withSalesperson("sp-1", "Ada")),
		sale(day(2024, 6, 1), "DE", "A", 10000, 3, withSalesperson("sp-2", "Grace")),
	)

	got := SalespersonComparison(tbl, Filter{})

	require.Len(t, got.Team, 2)
	assert.Equal(t, TeamYear{Year: 2023, TeamSalesCount: 2, TeamRevenue: 12000, TeamProfit: 12000, TeamTargetAchieved: 1}, got.Team[0])
	assert.Equal(t, TeamYear{Year: 2024, TeamSalesCount: 6, TeamRevenue: 60000, TeamProfit: 60000, TeamTargetAchieved: 5}, got.Team[1])

	require.Len(t, got.Individuals, 3)
	assert.Equal(t, 2023, got.Individuals[0].Year)
	assert.Equal(t, 10.0, got.Individuals[0].YearlyTargetAchieved)
	assert.Equal(t, 25.0, got.Individuals[1].YearlyTargetAchieved)

	require.Len(t, got.TeamStats, 2)
	assert.Equal(t, TeamStatYear{Year: 2023, MeanTeamSales: 2, MeanTeamRevenue: 12000}, got.TeamStats[0])
	assert.Equal(t, TeamStatYear{Year: 2024, MeanTeamSales: 3, MeanTeamRevenue: 30000}, got.TeamStats[1])
}

func TestCountriesReport(t *testing.T) {
	tbl := table(
		sale(day(2024, 3, 1), "US", "A", 1, 1),
		hit(day(2024, 3, 1), "DE", "/"),
		hit(day(2024, 3, 1), "", "/"),
	)
	assert.Equal(t, []string{"DE", "US"}, Countries(tbl, Filter{}))
}

func TestSoftwareSales(t *testing.T) {
	tbl := table(
		sale(day(2024, 3, 1), "US", "AI Assistant", 100, 1),
		sale(day(2024, 3, 1), "US", "Smart Prototype", 50, 2),
		sale(day(2024, 3, 1), "US", "Consulting", 999, 1),
	)
	assert.Equal(t, SoftwareTotals{SoftwareSalesCount: 2, SoftwareRevenue: 200}, SoftwareSales(tbl, Filter{}))
}

func TestYoYGrowth(t *testing.T) {
	tbl := table(
		sale(day(2023, 3, 1), "US", "A", 100, 1),
		sale(day(2024, 3, 1), "US", "A", 50, 3),
		sale(day(2024, 3, 1), "US", "B", 10, 1),
		sale(day(2022, 3, 1), "US", "C", 0, 0),
		sale(day(2023, 3, 1), "US", "C", 10, 1),
	)

	assert.Equal(t, []GrowthRow{
		{Product: "A", Year: 2024, Revenue: 150, SalesCount: 3, RevenueGrowth: 50, SalesGrowth: 200},
		{Product: "C", Year: 2023, Revenue: 10, SalesCount: 1},
	}, YoYGrowth(tbl, Filter{}))
}

func TestPromoCorrelation(t *testing.T) {
	tbl := table(
		hit(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC), "US", URLPromotion),
		hit(time.Date(2024, 3, 19, 9, 0, 0, 0, time.UTC), "US", URLPromotion),
		sale(day(2024, 3, 15), "US", "A", 100, 1),
		sale(day(2024, 5, 15), "US", "A", 100, 1),
	)

	assert.Equal(t, []PromoCorrelationRow{{
		Timestamp:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PromotionalEvent: 2,
		Revenue:          100,
		Profit:           100,
	}}, PromoCorrelation(tbl, Filter{}))
}

func TestPromoCorrelationUsesCalendarMonthOfEachHit(t *testing.T) {
	// 2024-02-03 is a Saturday; its week starts on Monday 2024-01-29.
	tbl := table(
		hit(time.Date(2024, 2, 3, 12, 0, 0, 0, time.UTC), "US", URLPromotion),
		sale(day(2024, 1, 10), "US", "A", 100, 1),
		sale(day(2024, 2, 10), "US", "A", 40, 1),
	)

	assert.Equal(t, []PromoCorrelationRow{{
		Timestamp:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PromotionalEvent: 1,
		Revenue:          40,
		Profit:           40,
	}}, PromoCorrelation(tbl, Filter{}))
}

func TestMarketingKPIsAndCampaigns(t *testing.T) {
	tbl := table(
		hit(day(2024, 3, 1), "US", URLRequestDemo),
		hit(day(2024, 3, 1), "US", URLRequestDemo),
		hit(day(2024, 3, 1), "US", URLAIAssistant),
		hit(day(2024, 3, 1), "DE", URLPromotion),
		hit(day(2024, 3, 1), "DE", "/"),
	)

	k := MarketingKPIs(tbl, Filter{})
	assert.Equal(t, 4, k.WebsiteVisits)
	assert.Equal(t, 8, k.Impressions)
	assert.InDelta(t, 50, k.LeadConversion, 1e-9)
	assert.InDelta(t, 25, k.ClickThroughRate, 1e-9)
	assert.InDelta(t, 0.04, k.VisitAchievement, 1e-9)
	assert.InDelta(t, 0.04, k.ImpressionAchievement, 1e-9)

	campaigns := CampaignPerformance(tbl, Filter{})
	require.Len(t, campaigns, 3)
	assert.Equal(t, CampaignRow{
		Country: "DE", CountryName: "Germany", URL: URLPromotion,
		Count: 1, Impressions: 2, ConversionRate: 50,
	}, campaigns[0])
}

func TestProductMetrics(t *testing.T) {
	tbl := table(
		sale(day(2024, 3, 1), "US", "A", 100, 1, withUnitCost(40)),
		sale(day(2024, 3, 1), "DE", "A", 100, 3),
		sale(day(2024, 3, 1), "DE", "B", 10, 1),
	)

	assert.Equal(t, []ProductMetricRow{
		{Product: "A", SalesCount: 4, AvgRevenue: 200, AvgProfit: 180},
		{Product: "B", SalesCount: 1, AvgRevenue: 10, AvgProfit: 10},
	}, ProductMetrics(tbl, Filter{}))
}

func TestEveryReportHasEmptyValueOnEmptyInput(t *testing.T) {
	empty := table()
	for _, r := range Reports() {
		t.Run(r.Name, func(t *testing.T) {
			got := r.Run(empty, Filter{})
			assert.Equal(t, r.Empty(), got)

			data, err := json.Marshal(got)
			require.NoError(t, err)
			assert.NotEqual(t, "null", string(data))
			if r.Shape == ShapeList {
				assert.Equal(t, "[]", string(data))
			}
		})
	}
}

func TestEmptyValueWhenFilterExcludesEverything(t *testing.T) {
	tbl := table(
		sale(day(2024, 3, 1), "US", "A", 100, 1, withSalesperson("sp-1", "Ada"), withCustomer("c-1")),
		hit(day(2024, 3, 1), "US", URLRequestDemo),
	)
	f := Filter{Start: day(2025, 1, 1)}
	for _, r := range Reports() {
		assert.Equal(t, r.Empty(), r.Run(tbl, f), r.Name)
	}
}

func TestReportDecodeRoundTrip(t *testing.T) {
	tbl := table(
		sale(day(2024, 3, 1), "US", "A", 100, 1, withSalesperson("sp-1", "Ada"), withCustomer("c-1")),
		hit(day(2024, 3, 1), "US", URLRequestDemo),
	)
	for _, name := range []string{"sales", "metrics", "trends", "salesperson_comparison"} {
		r, err := Lookup(name)
		require.NoError(t, err)

		want := r.Run(tbl, Filter{})
		data, err := json.Marshal(want)
		require.NoError(t, err)

		got, err := r.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestLookupUnknownReport(t *testing.T) {
	_, err := Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownReport)
}

func TestMathHelpers(t *testing.T) {
	assert.Equal(t, 0.0, ratio(1, 0))
	assert.Equal(t, 0.0, clean(math.NaN()))
	assert.Equal(t, 0.0, stddev([]float64{4}))
	assert.Equal(t, 1.23, round2(1.2349))
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), weekStart(time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), weekStart(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
}
