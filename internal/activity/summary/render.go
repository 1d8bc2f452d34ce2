package summary

import (
	"fmt"
	"strings"

	"altitude-backend/internal/activity/domain"
)

// RenderText formats a daily summary as the fixed five-section plain-text
// report sent to parents.
func RenderText(s domain.DailySummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== DAILY SUMMARY FOR %s ===\n", strings.ToUpper(s.FormattedDate))
	fmt.Fprintf(&b, "Generated at %s\n\n", s.GeneratedAt.Format("3:04 PM"))

	fmt.Fprintf(&b, "1. # of Toiletings - Wet: %d, Dry: %d, BM: %d\n\n", s.Toiletings.Wet, s.Toiletings.Dry, s.Toiletings.BM)
	fmt.Fprintf(&b, "2. # of Diapers - Wet: %d, Dry: %d, BM: %d\n\n", s.Diapers.Wet, s.Diapers.Dry, s.Diapers.BM)

	fmt.Fprintf(&b, "3. Length of Nap: %s\n", formatNap(s.NapMinutes))
	for _, w := range s.NapWarnings {
		fmt.Fprintf(&b, "   Warning: %s\n", w)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "4. Meals Status - AM Snack: %s, Lunch: %s, PM Snack: %s\n\n", s.Meals.AMSnack, s.Meals.Lunch, s.Meals.PMSnack)

	other := "None"
	if len(s.OtherActivities) > 0 {
		other = strings.Join(s.OtherActivities, ", ")
	}
	fmt.Fprintf(&b, "5. Other Activities: %s\n\n", other)

	b.WriteString("---\nSummary auto-generated from Altitude updates")
	return b.String()
}

func formatNap(minutes int) string {
	out := fmt.Sprintf("%d mins", minutes)
	if minutes >= 60 {
		out += fmt.Sprintf(" (%dh %dm)", minutes/60, minutes%60)
	}
	return out
}

// RenderHTML wraps the plain-text report in the HTML email body.
func RenderHTML(s domain.DailySummary) string {
	html := strings.ReplaceAll(RenderText(s), "\n", "<br>\n")
	html = strings.Replace(html, "1. # of Toiletings", "<h3>&#128701; Toiletings</h3>", 1)
	html = strings.Replace(html, "2. # of Diapers", "<h3>&#128118; Diapers</h3>", 1)
	html = strings.Replace(html, "3. Length of Nap", "<h3>&#128564; Nap Duration</h3>", 1)
	html = strings.Replace(html, "4. Meals Status", "<h3>&#127869; Meals</h3>", 1)
	html = strings.Replace(html, "5. Other Activities", "<h3>&#127912; Activities</h3>", 1)

	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<div style="background: #f8f9fa; padding: 20px; border-radius: 8px;">
%s
</div>
</body>
</html>`, html)
}

// Subject builds the email subject line for a daily summary.
func Subject(s domain.DailySummary) string {
	return fmt.Sprintf("Daily Altitude Summary - %s", s.FormattedDate)
}
