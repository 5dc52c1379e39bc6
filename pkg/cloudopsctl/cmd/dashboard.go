package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/output"
	"github.com/cloudops-dev/cloudops/pkg/dashboard"
)

type dashboardOverview struct {
	KPIs            dashboard.KPIs             `json:"kpis" yaml:"kpis"`
	Alerts          []dashboard.Alert          `json:"alerts" yaml:"alerts"`
	Recommendations []dashboard.Recommendation `json:"recs" yaml:"recs"`
}

func routeIDs() []string {
	ids := make([]string, 0, len(dashboard.Routes))
	for _, r := range dashboard.Routes {
		ids = append(ids, r.ID)
	}
	return ids
}

func NewDashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "dashboard [" + strings.Join(routeIDs(), "|") + "]",
		Short:     "Show the console views",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: routeIDs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			id := dashboard.RouteDashboard
			if len(args) == 1 {
				id = args[0]
			}
			route := dashboard.ResolveRoute(id)
			if route.ID != id {
				return fmt.Errorf("unknown view %q, expected one of: %s", id, strings.Join(routeIDs(), ", "))
			}

			data := dashboard.Fixtures()
			if format != output.FormatTable {
				return output.WriteObject(rt.Writer(), format, viewObject(route.ID, data))
			}
			writeView(rt.Writer(), route, data)
			return nil
		},
	}
}

func viewObject(id string, data dashboard.Data) any {
	switch id {
	case dashboard.RouteCosts:
		return data.Costs
	case dashboard.RouteAlerts:
		return data.Alerts
	case dashboard.RouteRecommendations:
		return data.Recommendations
	default:
		return dashboardOverview{
			KPIs:            data.KPIs,
			Alerts:          data.RecentAlerts(),
			Recommendations: data.RecentRecommendations(),
		}
	}
}

func writeView(w io.Writer, route dashboard.Route, data dashboard.Data) {
	_, _ = fmt.Fprintf(w, "%s\n%s\n\n", route.Title, route.Subtitle)
	switch route.ID {
	case dashboard.RouteCosts:
		output.WriteCostTable(w, data.Costs)
	case dashboard.RouteAlerts:
		output.WriteAlertTable(w, data.Alerts)
	case dashboard.RouteRecommendations:
		output.WriteRecommendationTable(w, data.Recommendations)
	default:
		output.WriteKPITable(w, data.KPIs)
		_, _ = fmt.Fprintln(w, "\nRecent alerts")
		output.WriteAlertTable(w, data.RecentAlerts())
		_, _ = fmt.Fprintln(w, "\nRecommendations")
		output.WriteRecommendationTable(w, data.RecentRecommendations())
	}
}
