package query

import (
	"cmp"

	"github.com/seuros/salesboard/internal/countries"
	"github.com/seuros/salesboard/internal/events"
)

func webTable(table *events.Table, f Filter) *events.Table {
	return Apply(table.OfType(events.TypeWeb), f)
}

func trackedOnly(ev *events.Event) bool { return tracked(ev.URL) }

// WebEvents counts tracked web hits per (country, url).
func WebEvents(table *events.Table, f Filter) []WebEventRow {
	hits := webTable(table, f).Where(trackedOnly).Rows()
	out := []WebEventRow{}
	for _, g := range groupBy(hits, pairOf(country, url), comparePair) {
		out = append(out, WebEventRow{Country: g.key.a, URL: g.key.b, Count: len(g.rows)})
	}
	return out
}

// Metrics is the headline snapshot over both event types.
func Metrics(table *events.Table, f Filter) MetricsSnapshot {
	var out MetricsSnapshot
	for _, ev := range Apply(table, f).Rows() {
		switch ev.Type {
		case events.TypeSale:
			out.TotalSales++
			out.TotalRevenue += ev.Revenue
			out.TotalProfit += ev.Profit
		case events.TypeWeb:
			switch ev.URL {
			case URLRequestDemo:
				out.DemoRequests++
			case URLPromotion:
				out.PromoRequests++
			case URLAIAssistant:
				out.AIRequests++
			}
		}
	}
	return out
}

// Stats reports mean and standard deviation of price and quantity per
// event type.
func Stats(table *events.Table, f Filter) []StatRow {
	key := func(ev *events.Event) (string, bool) { return string(ev.Type), true }

	out := []StatRow{}
	for _, g := range groupBy(Apply(table, f).Rows(), key, cmp.Compare[string]) {
		price := column(g.rows, func(ev *events.Event) float64 { return ev.Price })
		qty := column(g.rows, quantity)
		out = append(out, StatRow{
			EventType:    g.key,
			MeanPrice:    round2(mean(price)),
			StdPrice:     round2(stddev(price)),
			MeanQuantity: round2(mean(qty)),
			StdQuantity:  round2(stddev(qty)),
		})
	}
	return out
}

// ConversionFunnel counts web visits, demo requests and sales. The rate is
// sales per hundred visits.
func ConversionFunnel(table *events.Table, f Filter) Funnel {
	var out Funnel
	for _, ev := range Apply(table, f).Rows() {
		switch ev.Type {
		case events.TypeWeb:
			out.WebVisits++
			if ev.URL == URLRequestDemo {
				out.DemoRequests++
			}
		case events.TypeSale:
			out.Sales++
		}
	}
	out.ConversionRate = percent(float64(out.Sales), float64(out.WebVisits))
	return out
}

// WebTrends counts tracked hits per calendar week. The weeks span the filter
// bounds, or the observed web activity where a bound is open, and quiet
// weeks are emitted with zero counts.
func WebTrends(table *events.Table, f Filter) []WebTrendRow {
	out := []WebTrendRow{}
	web := webTable(table, f)
	hits := web.Where(trackedOnly).Rows()
	if len(hits) == 0 {
		return out
	}

	first, last, _ := web.Span()
	if !f.Start.IsZero() {
		first = f.Start
	}
	if !f.End.IsZero() {
		last = f.End
	}

	index := make(map[int64]int)
	for w, end := weekStart(first), weekStart(last); !w.After(end); w = w.AddDate(0, 0, 7) {
		index[w.Unix()] = len(out)
		out = append(out, WebTrendRow{Timestamp: w})
	}
	for _, ev := range hits {
		i, ok := index[weekStart(ev.Timestamp).Unix()]
		if !ok {
			continue
		}
		switch ev.URL {
		case URLRequestDemo:
			out[i].RequestDemo++
		case URLPromotion:
			out[i].PromotionalEvent++
		case URLAIAssistant:
			out[i].AIAssistant++
		}
	}
	return out
}

// PromoCorrelation counts promotional-event hits per calendar month
// and joins them with the monthly sales trend. Only months present
// on both sides are returned.
func PromoCorrelation(table *events.Table, f Filter) []PromoCorrelationRow {
	promo := make(map[int64]int)
	for _, ev := range webTable(table, f).Rows() {
		if ev.URL == URLPromotion {
			promo[monthStart(ev.Timestamp).Unix()]++
		}
	}

	out := []PromoCorrelationRow{}
	if len(promo) == 0 {
		return out
	}
	for _, t := range Trends(table, f) {
		count, ok := promo[t.Timestamp.Unix()]
		if !ok {
			continue
		}
		out = append(out, PromoCorrelationRow{
			Timestamp:        t.Timestamp,
			PromotionalEvent: count,
			Revenue:          t.Revenue,
			Profit:           t.Profit,
		})
	}
	return out
}

// CampaignPerformance extends web_events with display names and the
// impression model.
func CampaignPerformance(table *events.Table, f Filter) []CampaignRow {
	rows := WebEvents(table, f)
	out := make([]CampaignRow, 0, len(rows))
	for _, r := range rows {
		impressions := r.Count * ImpressionsPerVisit
		out = append(out, CampaignRow{
			Country:        r.Country,
			CountryName:    countries.DisplayName(r.Country),
			URL:            r.URL,
			Count:          r.Count,
			Impressions:    impressions,
			ConversionRate: percent(float64(r.Count), float64(impressions)),
		})
	}
	return out
}

// MarketingKPIs derives the marketing overview from tracked web hits.
func MarketingKPIs(table *events.Table, f Filter) KPIs {
	var out KPIs
	for _, r := range WebEvents(table, f) {
		out.WebsiteVisits += r.Count
		switch r.URL {
		case URLRequestDemo:
			out.DemoRequests += r.Count
		case URLAIAssistant:
			out.AIRequests += r.Count
		}
	}
	visits := float64(out.WebsiteVisits)
	out.Impressions = out.WebsiteVisits * ImpressionsPerVisit
	out.LeadConversion = percent(float64(out.DemoRequests), visits)
	out.ClickThroughRate = percent(float64(out.AIRequests), visits)
	out.VisitAchievement = percent(visits, ExpectedVisits)
	out.ImpressionAchievement = percent(float64(out.Impressions), ExpectedImpressions)
	return out
}
