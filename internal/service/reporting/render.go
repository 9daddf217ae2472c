package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/mamadbah2/packline/internal/domain/models"
)

// RenderText formats a report the way operators read it in a terminal or a chat.
func RenderText(report models.ReconciliationReport) string {
	var b strings.Builder

	b.WriteString("Packaging waste report\n")
	for _, day := range report.Days {
		fmt.Fprintf(&b, "\n%s:\n", day.Date)
		fmt.Fprintf(&b, "    - Production: %s kg\n", day.TotalProductionKg.String())
		fmt.Fprintf(&b, "    - Packaging required: %s units\n", day.PackagingRequired.String())
		fmt.Fprintf(&b, "    - Packaging used: %d units\n", day.PackagingUsed)
		fmt.Fprintf(&b, "    - Packaging wasted: %s kg\n", day.WasteKg.StringFixed(2))
	}

	if len(report.Alerts) > 0 {
		b.WriteString("\nAlerts\n")
		b.WriteString(RenderAlerts(report.Alerts))
	} else {
		b.WriteString("\nNo anomaly detected.\n")
	}

	b.WriteString("\nCumulative stock\n")
	dates := lo.Keys(report.Stock.Balances)
	sort.Strings(dates)
	for _, date := range dates {
		fmt.Fprintf(&b, "%s : %s kg\n", date, report.Stock.Balances[date].StringFixed(2))
	}
	fmt.Fprintf(&b, "Current stock: %s kg\n", report.Stock.Current.StringFixed(2))

	return b.String()
}

// RenderAlerts lists one alert message per line.
func RenderAlerts(alerts []models.Alert) string {
	lines := lo.Map(alerts, func(a models.Alert, _ int) string {
		return a.Message
	})
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
