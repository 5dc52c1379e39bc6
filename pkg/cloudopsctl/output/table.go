package output

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/cloudops-dev/cloudops/pkg/dashboard"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
}

func WriteKPITable(w io.Writer, k dashboard.KPIs) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "MONTH_SPEND\tDELTA\tOPEN_ALERTS\tOPEN_RECS")
	_, _ = fmt.Fprintf(tw, "$%.2f\t%v%%\t%d\t%d\n", k.MonthSpend, k.SpendDeltaPct, k.OpenAlerts, k.OpenRecs)
	_ = tw.Flush()
}

func WriteAlertTable(w io.Writer, alerts []dashboard.Alert) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tSEVERITY\tTITLE\tCREATED")
	for _, a := range alerts {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.Type, a.Status, a.Severity, a.Title, a.CreatedAt)
	}
	_ = tw.Flush()
}

func WriteRecommendationTable(w io.Writer, recs []dashboard.Recommendation) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tLINKED_ALERT")
	for _, r := range recs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Status, r.Title, r.LinkedAlert)
	}
	_ = tw.Flush()
}

func WriteCostTable(w io.Writer, costs []dashboard.DailyCost) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "DATE\tTOTAL($)")
	for _, c := range costs {
		_, _ = fmt.Fprintf(tw, "%s\t%.2f\n", c.Date, c.Total)
	}
	_ = tw.Flush()
}

// AuthStatus is what `auth status` reports.
type AuthStatus struct {
	Profile       string     `json:"profile" yaml:"profile"`
	Authenticated bool       `json:"authenticated" yaml:"authenticated"`
	Email         string     `json:"email,omitempty" yaml:"email,omitempty"`
	Username      string     `json:"username,omitempty" yaml:"username,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Verified      *bool      `json:"verified,omitempty" yaml:"verified,omitempty"`
}

func WriteAuthStatusTable(w io.Writer, s AuthStatus) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "PROFILE\tSTATUS\tUSER\tEXPIRES\tVERIFIED")
	status := "Not logged in"
	if s.Authenticated {
		status = "Logged in"
	}
	user := dash(s.Email)
	if s.Email == "" && s.Username != "" {
		user = s.Username
	}
	expires := "-"
	if s.ExpiresAt != nil {
		expires = formatTime(*s.ExpiresAt)
	}
	verified := "-"
	if s.Verified != nil {
		verified = fmt.Sprintf("%t", *s.Verified)
	}
	_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", dash(s.Profile), status, user, expires, verified)
	_ = tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
