package dashboard

const (
	RouteDashboard       = "dashboard"
	RouteCosts           = "costs"
	RouteAlerts          = "alerts"
	RouteRecommendations = "recommendations"
)

type Route struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
}

// Routes are listed in navigation order.
var Routes = []Route{
	{
		ID:       RouteDashboard,
		Label:    "Dashboard",
		Title:    "Dashboard",
		Subtitle: "High-level view of spend + reliability guardrails (fake data in Phase 1).",
	},
	{
		ID:       RouteCosts,
		Label:    "Costs",
		Title:    "Costs",
		Subtitle: "30-day rolling view by service will be wired in Phase 3 (Cost Explorer ingestion).",
	},
	{
		ID:       RouteAlerts,
		Label:    "Alerts",
		Title:    "Alerts",
		Subtitle: "Alerts are generated automatically by guardrail jobs (Phase 4).",
	},
	{
		ID:       RouteRecommendations,
		Label:    "Recommendations",
		Title:    "Recommendations",
		Subtitle: "Recommendations are linked to alerts and tracked through a lifecycle (Phase 2+).",
	},
}

// ResolveRoute returns the route with the given id. Unknown ids fall back to the dashboard.
func ResolveRoute(id string) Route {
	for _, r := range Routes {
		if r.ID == id {
			return r
		}
	}
	return Routes[0]
}

// BadgeClass maps an alert severity to its CSS class.
func BadgeClass(severity string) string {
	switch severity {
	case "ok":
		return "badge ok"
	case "warn":
		return "badge warn"
	default:
		return "badge bad"
	}
}

// AuthBadge returns the CSS class and label of the login indicator.
func AuthBadge(authenticated bool) (class, text string) {
	if authenticated {
		return "badge ok", "Logged in"
	}
	return "badge warn", "Not logged in"
}
