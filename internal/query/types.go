package query

import "time"

// Tracked web paths.
const (
	URLRequestDemo = "/request-demo"
	URLPromotion   = "/promotional-event"
	URLAIAssistant = "/ai-assistant"
)

// TrackedURLs lists the web paths reported on, in column order.
var TrackedURLs = []string{URLRequestDemo, URLPromotion, URLAIAssistant}

// SoftwareProducts are the products counted by software_sales.
var SoftwareProducts = []string{"AI Assistant", "Smart Prototype", "Analytics Suite"}

func tracked(u string) bool {
	return u == URLRequestDemo || u == URLPromotion || u == URLAIAssistant
}

type SalesRow struct {
	Country    string  `json:"country"`
	Product    string  `json:"product"`
	SalesCount float64 `json:"sales_count"`
	Revenue    float64 `json:"revenue"`
	Profit     float64 `json:"profit"`
}

type WebEventRow struct {
	Country string `json:"country"`
	URL     string `json:"url"`
	Count   int    `json:"count"`
}

// MetricsSnapshot is the headline sales and web counters.
type MetricsSnapshot struct {
	TotalSales    int     `json:"total_sales"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalProfit   float64 `json:"total_profit"`
	DemoRequests  int     `json:"demo_requests"`
	PromoRequests int     `json:"promo_requests"`
	AIRequests    int     `json:"ai_requests"`
}

type StatRow struct {
	EventType    string  `json:"event_type"`
	MeanPrice    float64 `json:"mean_price"`
	StdPrice     float64 `json:"std_price"`
	MeanQuantity float64 `json:"mean_quantity"`
	StdQuantity  float64 `json:"std_quantity"`
}

type Funnel struct {
	WebVisits      int     `json:"web_visits"`
	DemoRequests   int     `json:"demo_requests"`
	Sales          int     `json:"sales"`
	ConversionRate float64 `json:"conversion_rate"`
}

// TrendRow is one calendar month, labelled with its first instant.
type TrendRow struct {
	Timestamp time.Time `json:"timestamp"`
	Revenue   float64   `json:"revenue"`
	Profit    float64   `json:"profit"`
}

type ChannelRow struct {
	Product    string  `json:"product"`
	Channel    string  `json:"channel"`
	SalesCount float64 `json:"sales_count"`
	Revenue    float64 `json:"revenue"`
}

type ProfitMarginRow struct {
	Country      string  `json:"country"`
	Product      string  `json:"product"`
	ProfitMargin float64 `json:"profit_margin"`
}

type CustomerRow struct {
	CustomerID string  `json:"customer_id"`
	Country    string  `json:"country"`
	SalesCount float64 `json:"sales_count"`
	Revenue    float64 `json:"revenue"`
}

// WebTrendRow is one week, labelled with its Monday.
type WebTrendRow struct {
	Timestamp        time.Time `json:"timestamp"`
	RequestDemo      int       `json:"request_demo"`
	PromotionalEvent int       `json:"promotional_event"`
	AIAssistant      int       `json:"ai_assistant"`
}

// Total is the number of tracked events in the week.
func (r WebTrendRow) Total() int {
	return r.RequestDemo + r.PromotionalEvent + r.AIAssistant
}

type SalesStatRow struct {
	Country        string  `json:"country"`
	Product        string  `json:"product"`
	JobType        string  `json:"job_type"`
	MeanSalesCount float64 `json:"mean_sales_count"`
	StdSalesCount  float64 `json:"std_sales_count"`
	MeanRevenue    float64 `json:"mean_revenue"`
	StdRevenue     float64 `json:"std_revenue"`
	MeanProfit     float64 `json:"mean_profit"`
	StdProfit      float64 `json:"std_profit"`
}

type SalespersonRow struct {
	SalespersonID         string  `json:"salesperson_id"`
	SalespersonName       string  `json:"salesperson_name"`
	Country               string  `json:"country"`
	SalesCount            float64 `json:"sales_count"`
	Revenue               float64 `json:"revenue"`
	Profit                float64 `json:"profit"`
	YearlyTargetAchieved  float64 `json:"yearly_target_achieved"`
	MonthlyTargetAchieved float64 `json:"monthly_target_achieved"`
	MeanMonthlySales      float64 `json:"mean_monthly_sales"`
	StdMonthlySales       float64 `json:"std_monthly_sales"`
	MeanMonthlyRevenue    float64 `json:"mean_monthly_revenue"`
	StdMonthlyRevenue     float64 `json:"std_monthly_revenue"`
}

// Comparison holds three views keyed by calendar year.
type Comparison struct {
	Individuals []IndividualYear `json:"individuals"`
	Team        []TeamYear       `json:"team"`
	TeamStats   []TeamStatYear   `json:"team_stats"`
}

type IndividualYear struct {
	Year                 int     `json:"year"`
	SalespersonID        string  `json:"salesperson_id"`
	SalespersonName      string  `json:"salesperson_name"`
	Country              string  `json:"country"`
	SalesCount           float64 `json:"sales_count"`
	Revenue              float64 `json:"revenue"`
	Profit               float64 `json:"profit"`
	YearlyTargetAchieved float64 `json:"yearly_target_achieved"`
}

type TeamYear struct {
	Year               int     `json:"year"`
	TeamSalesCount     float64 `json:"team_sales_count"`
	TeamRevenue        float64 `json:"team_revenue"`
	TeamProfit         float64 `json:"team_profit"`
	TeamTargetAchieved float64 `json:"team_target_achieved"`
}

type TeamStatYear struct {
	Year            int     `json:"year"`
	MeanTeamSales   float64 `json:"mean_team_sales"`
	StdTeamSales    float64 `json:"std_team_sales"`
	MeanTeamRevenue float64 `json:"mean_team_revenue"`
	StdTeamRevenue  float64 `json:"std_team_revenue"`
}

type SoftwareTotals struct {
	SoftwareSalesCount int     `json:"software_sales_count"`
	SoftwareRevenue    float64 `json:"software_revenue"`
}

type GrowthRow struct {
	Product       string  `json:"product"`
	Year          int     `json:"year"`
	Revenue       float64 `json:"revenue"`
	SalesCount    float64 `json:"sales_count"`
	RevenueGrowth float64 `json:"revenue_growth"`
	SalesGrowth   float64 `json:"sales_growth"`
}

type PromoCorrelationRow struct {
	Timestamp        time.Time `json:"timestamp"`
	PromotionalEvent int       `json:"promotional_event"`
	Revenue          float64   `json:"revenue"`
	Profit           float64   `json:"profit"`
}

type KPIs struct {
	WebsiteVisits         int     `json:"website_visits"`
	DemoRequests          int     `json:"demo_requests"`
	AIRequests            int     `json:"ai_requests"`
	LeadConversion        float64 `json:"lead_conversion"`
	ClickThroughRate      float64 `json:"click_through_rate"`
	Impressions           int     `json:"impressions"`
	VisitAchievement      float64 `json:"visit_achievement"`
	ImpressionAchievement float64 `json:"impression_achievement"`
}

type CampaignRow struct {
	Country        string  `json:"country"`
	CountryName    string  `json:"country_name"`
	URL            string  `json:"url"`
	Count          int     `json:"count"`
	Impressions    int     `json:"impressions"`
	ConversionRate float64 `json:"conversion_rate"`
}

type ProductMetricRow struct {
	Product    string  `json:"product"`
	SalesCount float64 `json:"sales_count"`
	AvgRevenue float64 `json:"avg_revenue"`
	AvgProfit  float64 `json:"avg_profit"`
}
