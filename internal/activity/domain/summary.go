package domain

import "time"

// MealStatusNoData is reported when a day has no record at all for a meal.
// Distinct from "None", which means the meal was offered and refused.
const MealStatusNoData = "No data"

// SubtypeCounts tallies wet/dry/bm occurrences for one category.
// A compound record ("wet + bm") increments both buckets once.
type SubtypeCounts struct {
	Wet int `json:"wet"`
	Dry int `json:"dry"`
	BM  int `json:"bm"`
}

// MealStatus holds the latest reported status for each meal slot.
type MealStatus struct {
	AMSnack string `json:"am_snack"`
	Lunch   string `json:"lunch"`
	PMSnack string `json:"pm_snack"`
}

// DailySummary is the derived rollup of one day's activity records.
// It is rendered and emailed, never persisted.
type DailySummary struct {
	Date            string        `json:"date"`
	FormattedDate   string        `json:"formatted_date"`
	GeneratedAt     time.Time     `json:"generated_at"`
	Toiletings      SubtypeCounts `json:"toiletings"`
	Diapers         SubtypeCounts `json:"diapers"`
	NapMinutes      int           `json:"nap_duration_minutes"`
	NapWarnings     []string      `json:"nap_warnings,omitempty"`
	Meals           MealStatus    `json:"meals"`
	OtherActivities []string      `json:"other_activities"`
}
