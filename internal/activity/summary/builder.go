// Package summary aggregates one day's activity records into the daily
// rollup and renders it for delivery.
package summary

import (
	"fmt"
	"sort"
	"time"

	"altitude-backend/internal/activity/domain"
)

// Build aggregates the records for one date into a DailySummary. Input
// order does not matter: records are sorted internally, so shuffled input
// produces an identical summary.
func Build(records []domain.ActivityRecord, date string) domain.DailySummary {
	sorted := make([]domain.ActivityRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		if sorted[i].RawContent != sorted[j].RawContent {
			return sorted[i].RawContent < sorted[j].RawContent
		}
		return sorted[i].ID < sorted[j].ID
	})

	napMinutes, napWarnings := napDuration(sorted)

	return domain.DailySummary{
		Date:            date,
		FormattedDate:   formatDate(date),
		GeneratedAt:     time.Now(),
		Toiletings:      countSubtypes(sorted, domain.ActivityToileting),
		Diapers:         countSubtypes(sorted, domain.ActivityDiaper),
		NapMinutes:      napMinutes,
		NapWarnings:     napWarnings,
		Meals:           mealStatus(sorted),
		OtherActivities: otherActivities(sorted),
	}
}

func formatDate(date string) string {
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return date
	}
	return d.Format("Monday, January 2, 2006")
}

// countSubtypes tallies wet/dry/bm independently; a compound record
// ("wet + bm") increments both buckets by exactly one.
func countSubtypes(records []domain.ActivityRecord, activityType domain.ActivityType) domain.SubtypeCounts {
	var counts domain.SubtypeCounts
	for _, r := range records {
		if r.ActivityType != activityType {
			continue
		}
		if r.HasSubtype(domain.SubtypeWet) {
			counts.Wet++
		}
		if r.HasSubtype(domain.SubtypeDry) {
			counts.Dry++
		}
		if r.HasSubtype(domain.SubtypeBM) {
			counts.BM++
		}
	}
	return counts
}

// napDuration pairs each start with the nearest following stop and sums
// the completed pairs. Unmatched events and zero-length pairs (both ends
// fell back to the receipt time) contribute zero minutes but are surfaced
// as warnings for manual review, never dropped silently.
func napDuration(records []domain.ActivityRecord) (int, []string) {
	var total int
	var warnings []string
	var pendingStart *domain.ActivityRecord

	for i := range records {
		r := records[i]
		if r.ActivityType != domain.ActivityNap {
			continue
		}
		switch r.ActivitySubtype {
		case domain.SubtypeStart:
			if pendingStart != nil {
				warnings = append(warnings, fmt.Sprintf("nap start at %s has no matching stop", pendingStart.ParsedTime))
			}
			pendingStart = &records[i]
		case domain.SubtypeStop:
			if pendingStart == nil {
				warnings = append(warnings, fmt.Sprintf("nap stop at %s has no matching start", r.ParsedTime))
				continue
			}
			minutes := int(r.Timestamp.Sub(pendingStart.Timestamp).Minutes())
			if minutes > 0 {
				total += minutes
			} else {
				warnings = append(warnings, fmt.Sprintf("nap from %s to %s has a non-positive duration", pendingStart.ParsedTime, r.ParsedTime))
			}
			pendingStart = nil
		}
	}
	if pendingStart != nil {
		warnings = append(warnings, fmt.Sprintf("nap start at %s has no matching stop", pendingStart.ParsedTime))
	}
	return total, warnings
}

// mealStatus reports the latest record per meal slot; the chronological
// sort above makes "latest wins" a plain overwrite. Slots with no record
// stay at "No data", which is distinct from a reported "None".
func mealStatus(records []domain.ActivityRecord) domain.MealStatus {
	status := domain.MealStatus{
		AMSnack: domain.MealStatusNoData,
		Lunch:   domain.MealStatusNoData,
		PMSnack: domain.MealStatusNoData,
	}
	for _, r := range records {
		if r.ActivityType != domain.ActivityMeal {
			continue
		}
		switch r.ActivityName {
		case domain.MealAMSnack:
			status.AMSnack = titleStatus(r.ActivitySubtype)
		case domain.MealLunch:
			status.Lunch = titleStatus(r.ActivitySubtype)
		case domain.MealPMSnack:
			status.PMSnack = titleStatus(r.ActivitySubtype)
		}
	}
	return status
}

func titleStatus(subtype string) string {
	switch subtype {
	case domain.SubtypeAll:
		return "All"
	case domain.SubtypeSome:
		return "Some"
	case domain.SubtypeNone:
		return "None"
	}
	return subtype
}

// otherActivities lists free-text entries chronologically, with exact
// repeated descriptions removed.
func otherActivities(records []domain.ActivityRecord) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.ActivityType != domain.ActivityOther {
			continue
		}
		desc := r.ActivityName
		if r.ActivitySubtype != "" {
			desc = fmt.Sprintf("%s: %s", r.ActivityName, r.ActivitySubtype)
		}
		if _, dup := seen[desc]; dup {
			continue
		}
		seen[desc] = struct{}{}
		out = append(out, desc)
	}
	return out
}
