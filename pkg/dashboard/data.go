// Package dashboard holds the Phase 1 fixture data of the CloudOps console and
// renders its pages.
package dashboard

type KPIs struct {
	MonthSpend    float64 `json:"monthSpend" yaml:"monthSpend"`
	SpendDeltaPct float64 `json:"spendDeltaPct" yaml:"spendDeltaPct"`
	OpenAlerts    int     `json:"openAlerts" yaml:"openAlerts"`
	OpenRecs      int     `json:"openRecs" yaml:"openRecs"`
}

type Alert struct {
	ID        string `json:"id" yaml:"id"`
	Type      string `json:"type" yaml:"type"`
	Status    string `json:"status" yaml:"status"`
	Severity  string `json:"severity" yaml:"severity"`
	Title     string `json:"title" yaml:"title"`
	CreatedAt string `json:"createdAt" yaml:"createdAt"`
}

type Recommendation struct {
	ID          string `json:"id" yaml:"id"`
	Status      string `json:"status" yaml:"status"`
	Title       string `json:"title" yaml:"title"`
	LinkedAlert string `json:"linkedAlert" yaml:"linkedAlert"`
}

type DailyCost struct {
	Date  string  `json:"date" yaml:"date"`
	Total float64 `json:"total" yaml:"total"`
}

type Data struct {
	KPIs            KPIs             `json:"kpis" yaml:"kpis"`
	Alerts          []Alert          `json:"alerts" yaml:"alerts"`
	Recommendations []Recommendation `json:"recs" yaml:"recs"`
	Costs           []DailyCost      `json:"costs" yaml:"costs"`
}

// RecentLimit caps the alert and recommendation lists on the dashboard route.
const RecentLimit = 5

// Fixtures returns a fresh copy of the sample data shown until real ingestion exists.
func Fixtures() Data {
	return Data{
		KPIs: KPIs{
			MonthSpend:    1247.33,
			SpendDeltaPct: 18.4,
			OpenAlerts:    3,
			OpenRecs:      4,
		},
		Alerts: []Alert{
			{ID: "AL-1001", Type: "cost", Status: "open", Severity: "warn", Title: "EC2 spend +38% vs baseline", CreatedAt: "2026-02-01"},
			{ID: "AL-1002", Type: "reliability", Status: "open", Severity: "bad", Title: "API 5XX spike detected", CreatedAt: "2026-02-02"},
			{ID: "AL-1003", Type: "cost", Status: "acknowledged", Severity: "warn", Title: "NAT data processing up", CreatedAt: "2026-02-02"},
		},
		Recommendations: []Recommendation{
			{ID: "RC-2001", Status: "open", Title: "Review EC2 usage / scale down idle instances", LinkedAlert: "AL-1001"},
			{ID: "RC-2002", Status: "in_progress", Title: "Investigate API errors: deploy logs + correlation IDs", LinkedAlert: "AL-1002"},
			{ID: "RC-2003", Status: "open", Title: "Reduce NAT usage with endpoints where justified", LinkedAlert: "AL-1003"},
			{ID: "RC-2004", Status: "done", Title: "Enable billing alarm in us-east-1 for early warning", LinkedAlert: "-"},
		},
		Costs: []DailyCost{
			{Date: "2026-01-25", Total: 32.14},
			{Date: "2026-01-26", Total: 29.88},
			{Date: "2026-01-27", Total: 34.01},
			{Date: "2026-01-28", Total: 37.22},
			{Date: "2026-01-29", Total: 35.8},
			{Date: "2026-01-30", Total: 41.06},
			{Date: "2026-01-31", Total: 44.13},
		},
	}
}

func (d Data) RecentAlerts() []Alert {
	if len(d.Alerts) > RecentLimit {
		return d.Alerts[:RecentLimit]
	}
	return d.Alerts
}

func (d Data) RecentRecommendations() []Recommendation {
	if len(d.Recommendations) > RecentLimit {
		return d.Recommendations[:RecentLimit]
	}
	return d.Recommendations
}
