package delivery

import (
	"fmt"
	"html"
	"strings"

	"altitude-backend/internal/activity/domain"
	"altitude-backend/internal/dashboard/usecase"
)

const dashboardStyle = `
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', system-ui, sans-serif;
  background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
  min-height: 100vh;
  padding: 20px;
}
.container { max-width: 1200px; margin: 0 auto; }
h1 {
  color: white;
  text-align: center;
  margin-bottom: 10px;
  font-size: 2.5rem;
  text-shadow: 2px 2px 4px rgba(0,0,0,0.3);
}
.date-picker-container { text-align: center; margin-bottom: 30px; color: white; }
.date-picker {
  background: white;
  border: 2px solid #667eea;
  border-radius: 8px;
  padding: 8px 12px;
  font-size: 1rem;
  color: #2c3e50;
}
.cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(260px, 1fr)); gap: 20px; }
.card {
  background: white;
  border-radius: 12px;
  padding: 20px;
  box-shadow: 0 4px 12px rgba(0,0,0,0.15);
}
.card h2 { color: #2c3e50; font-size: 1.1rem; margin-bottom: 12px; }
.stat { display: flex; justify-content: space-between; padding: 4px 0; color: #555; }
.stat b { color: #2c3e50; }
.timeline li { list-style: none; padding: 6px 0; border-bottom: 1px solid #eee; color: #555; }
.timeline time { color: #667eea; font-weight: 600; margin-right: 8px; }
.warning { color: #c0392b; font-size: 0.9rem; }
`

// renderDashboardHTML builds the standalone dashboard page: the selected
// date's summary and timeline, weekly averages and lifetime totals.
func renderDashboardHTML(date string, daily *domain.DailySummary, timeline []usecase.TimelineEntry, trends *usecase.WeeklyTrends, lifetime *usecase.LifetimeSummary) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("<title>Altitude Summary Dashboard</title>\n")
	fmt.Fprintf(&b, "<style>%s</style>\n</head>\n<body>\n<div class=\"container\">\n", dashboardStyle)

	b.WriteString("<h1>Altitude Summary Dashboard</h1>\n")
	fmt.Fprintf(&b, `<div class="date-picker-container">
<form method="get"><input type="hidden" name="format" value="html">
<label>Date: <input class="date-picker" type="date" name="date" value="%s" onchange="this.form.submit()"></label>
</form></div>
`, html.EscapeString(date))

	b.WriteString("<div class=\"cards\">\n")

	fmt.Fprintf(&b, "<div class=\"card\">\n<h2>%s</h2>\n", html.EscapeString(daily.FormattedDate))
	fmt.Fprintf(&b, "<div class=\"stat\"><span>Toiletings</span><b>Wet %d / Dry %d / BM %d</b></div>\n", daily.Toiletings.Wet, daily.Toiletings.Dry, daily.Toiletings.BM)
	fmt.Fprintf(&b, "<div class=\"stat\"><span>Diapers</span><b>Wet %d / Dry %d / BM %d</b></div>\n", daily.Diapers.Wet, daily.Diapers.Dry, daily.Diapers.BM)
	fmt.Fprintf(&b, "<div class=\"stat\"><span>Nap</span><b>%d mins</b></div>\n", daily.NapMinutes)
	for _, w := range daily.NapWarnings {
		fmt.Fprintf(&b, "<div class=\"warning\">%s</div>\n", html.EscapeString(w))
	}
	fmt.Fprintf(&b, "<div class=\"stat\"><span>AM Snack</span><b>%s</b></div>\n", html.EscapeString(daily.Meals.AMSnack))
	fmt.Fprintf(&b, "<div class=\"stat\"><span>Lunch</span><b>%s</b></div>\n", html.EscapeString(daily.Meals.Lunch))
	fmt.Fprintf(&b, "<div class=\"stat\"><span>PM Snack</span><b>%s</b></div>\n", html.EscapeString(daily.Meals.PMSnack))
	b.WriteString("</div>\n")

	b.WriteString("<div class=\"card\">\n<h2>Timeline</h2>\n<ul class=\"timeline\">\n")
	if len(timeline) == 0 {
		b.WriteString("<li>No activities recorded</li>\n")
	}
	for _, entry := range timeline {
		label := entry.Name
		if entry.Subtype != "" {
			label = fmt.Sprintf("%s: %s", entry.Name, entry.Subtype)
		}
		fmt.Fprintf(&b, "<li><time>%s</time>%s</li>\n", html.EscapeString(entry.Time), html.EscapeString(label))
	}
	b.WriteString("</ul>\n</div>\n")

	b.WriteString("<div class=\"card\">\n<h2>Weekly Averages</h2>\n")
	for _, key := range []string{"toileting_per_day", "diaper_per_day", "nap_sessions_per_day", "meals_eaten_per_day", "other_activities_per_day"} {
		fmt.Fprintf(&b, "<div class=\"stat\"><span>%s</span><b>%.1f</b></div>\n", html.EscapeString(averageLabel(key)), trends.Averages[key])
	}
	b.WriteString("</div>\n")

	b.WriteString("<div class=\"card\">\n<h2>All Time</h2>\n")
	fmt.Fprintf(&b, "<div class=\"stat\"><span>Days tracked</span><b>%d</b></div>\n", lifetime.DaysTracked)
	fmt.Fprintf(&b, "<div class=\"stat\"><span>Total activities</span><b>%d</b></div>\n", lifetime.TotalActivities)
	fmt.Fprintf(&b, "<div class=\"stat\"><span>Total naps</span><b>%d</b></div>\n", lifetime.TotalNaps)
	fmt.Fprintf(&b, "<div class=\"stat\"><span>Avg nap</span><b>%.1f mins</b></div>\n", lifetime.AverageNapMinutes)
	fmt.Fprintf(&b, "<div class=\"stat\"><span>First record</span><b>%s</b></div>\n", html.EscapeString(lifetime.FirstActivityDate))
	b.WriteString("</div>\n")

	b.WriteString("</div>\n</div>\n</body>\n</html>\n")
	return b.String()
}

func averageLabel(key string) string {
	label := strings.TrimSuffix(key, "_per_day")
	label = strings.ReplaceAll(label, "_", " ")
	if label == "" {
		return key
	}
	return strings.ToUpper(label[:1]) + label[1:] + " / day"
}
