// Package usecase provides the analytics queries behind the dashboard
// endpoints: trends, nap and meal patterns, timelines and lifetime stats.
package usecase

import (
	"math"
	"sort"
	"time"

	"altitude-backend/internal/activity/domain"
	"altitude-backend/internal/activity/repository"
	"altitude-backend/internal/activity/summary"
)

// DayStats counts one day's activity by category.
type DayStats struct {
	Date            string `json:"date"`
	Toileting       int    `json:"toileting"`
	Diaper          int    `json:"diaper"`
	NapSessions     int    `json:"nap_sessions"`
	MealsEaten      int    `json:"meals_eaten"`
	OtherActivities int    `json:"other_activities"`
	TotalActivities int    `json:"total_activities"`
}

// WeeklyTrends is the per-day breakdown plus daily averages for a range.
type WeeklyTrends struct {
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	Days      []DayStats         `json:"days"`
	Averages  map[string]float64 `json:"averages"`
}

// NapAnalysis summarizes nap patterns over a date range.
type NapAnalysis struct {
	TotalNaps         int      `json:"total_naps"`
	AverageMinutes    float64  `json:"average_duration_minutes"`
	LongestMinutes    int      `json:"longest_nap_minutes"`
	ShortestMinutes   int      `json:"shortest_nap_minutes"`
	Durations         []int    `json:"nap_durations"`
	CommonStartTimes  []string `json:"common_nap_start_times"`
	UnpairedNapEvents int      `json:"unpaired_nap_events"`
}

// MealCounts tallies how often a meal was eaten fully, partially or not.
type MealCounts struct {
	All  int `json:"all"`
	Some int `json:"some"`
	None int `json:"none"`
}

// MealAnalysis breaks down eating patterns per meal slot.
type MealAnalysis struct {
	Counts      map[string]MealCounts         `json:"meal_counts"`
	Percentages map[string]map[string]float64 `json:"meal_percentages"`
	TotalMeals  int                           `json:"total_meals_tracked"`
}

// TimelineEntry is one activity in a day's chronological view.
type TimelineEntry struct {
	Time    string              `json:"time"`
	Type    domain.ActivityType `json:"activity_type"`
	Subtype string              `json:"activity_subtype,omitempty"`
	Name    string              `json:"activity_name,omitempty"`
	RawText string              `json:"raw_content"`
}

// MonthlySummary aggregates one calendar month.
type MonthlySummary struct {
	Year            int                         `json:"year"`
	Month           int                         `json:"month"`
	TotalActivities int                         `json:"total_activities"`
	TypeCounts      map[domain.ActivityType]int `json:"activity_type_counts"`
	DailyCounts     map[string]int              `json:"daily_activity_counts"`
	BusiestDay      string                      `json:"busiest_day,omitempty"`
	AveragePerDay   float64                     `json:"average_daily_activities"`
}

// LifetimeSummary spans every stored record.
type LifetimeSummary struct {
	TotalToileting        int     `json:"total_toileting"`
	TotalDiapers          int     `json:"total_diapers"`
	TotalNaps             int     `json:"total_naps"`
	TotalActivities       int     `json:"total_activities"`
	DaysTracked           int     `json:"days_tracked"`
	UniqueOtherActivities int     `json:"unique_other_activities"`
	FirstActivityDate     string  `json:"first_activity_date"`
	LastActivityDate      string  `json:"last_activity_date"`
	AverageNapMinutes     float64 `json:"avg_nap_duration"`
}

// DashboardQueries serves the read-only analytics surface.
type DashboardQueries interface {
	WeeklyTrends(start, end string) (*WeeklyTrends, error)
	NapAnalysis(start, end string) (*NapAnalysis, error)
	MealAnalysis(start, end string) (*MealAnalysis, error)
	Timeline(date string) ([]TimelineEntry, error)
	MonthlySummary(year, month int) (*MonthlySummary, error)
	Search(query, start, end string) ([]domain.ActivityRecord, error)
	AvailableDates() ([]string, error)
	DailySummary(date string) (*domain.DailySummary, error)
	LifetimeSummary() (*LifetimeSummary, error)
}

type dashboardQueries struct {
	activityRepo repository.ActivityRepository
}

// NewDashboardQueries creates a new instance of dashboardQueries
func NewDashboardQueries(activityRepo repository.ActivityRepository) DashboardQueries {
	return &dashboardQueries{activityRepo: activityRepo}
}

func (q *dashboardQueries) WeeklyTrends(start, end string) (*WeeklyTrends, error) {
	records, err := q.activityRepo.QueryByDateRange(start, end)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*DayStats)
	for _, r := range records {
		stats, ok := byDate[r.Date]
		if !ok {
			stats = &DayStats{Date: r.Date}
			byDate[r.Date] = stats
		}
		stats.TotalActivities++
		switch r.ActivityType {
		case domain.ActivityToileting:
			stats.Toileting++
		case domain.ActivityDiaper:
			stats.Diaper++
		case domain.ActivityNap:
			if r.ActivitySubtype == domain.SubtypeStart {
				stats.NapSessions++
			} else {
				stats.TotalActivities-- // stops are half of a session, not a separate event
			}
		case domain.ActivityMeal:
			if r.ActivitySubtype == domain.SubtypeAll || r.ActivitySubtype == domain.SubtypeSome {
				stats.MealsEaten++
			}
		case domain.ActivityOther:
			stats.OtherActivities++
		}
	}

	trends := &WeeklyTrends{StartDate: start, EndDate: end, Averages: map[string]float64{}}
	for _, stats := range byDate {
		trends.Days = append(trends.Days, *stats)
	}
	sort.Slice(trends.Days, func(i, j int) bool { return trends.Days[i].Date < trends.Days[j].Date })

	if n := float64(len(trends.Days)); n > 0 {
		var toileting, diaper, naps, meals, other int
		for _, d := range trends.Days {
			toileting += d.Toileting
			diaper += d.Diaper
			naps += d.NapSessions
			meals += d.MealsEaten
			other += d.OtherActivities
		}
		trends.Averages["toileting_per_day"] = round1(float64(toileting) / n)
		trends.Averages["diaper_per_day"] = round1(float64(diaper) / n)
		trends.Averages["nap_sessions_per_day"] = round1(float64(naps) / n)
		trends.Averages["meals_eaten_per_day"] = round1(float64(meals) / n)
		trends.Averages["other_activities_per_day"] = round1(float64(other) / n)
	}
	return trends, nil
}

func (q *dashboardQueries) NapAnalysis(start, end string) (*NapAnalysis, error) {
	records, err := q.activityRepo.QueryByDateRange(start, end)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]domain.ActivityRecord)
	for _, r := range records {
		if r.ActivityType == domain.ActivityNap {
			byDate[r.Date] = append(byDate[r.Date], r)
		}
	}

	analysis := &NapAnalysis{Durations: []int{}, CommonStartTimes: []string{}}
	var startTimes []string
	for _, dayNaps := range byDate {
		var pending *domain.ActivityRecord
		for i := range dayNaps {
			r := dayNaps[i]
			switch r.ActivitySubtype {
			case domain.SubtypeStart:
				if pending != nil {
					analysis.UnpairedNapEvents++
				}
				pending = &dayNaps[i]
			case domain.SubtypeStop:
				if pending == nil {
					analysis.UnpairedNapEvents++
					continue
				}
				if minutes := int(r.Timestamp.Sub(pending.Timestamp).Minutes()); minutes > 0 {
					analysis.Durations = append(analysis.Durations, minutes)
					startTimes = append(startTimes, pending.ParsedTime)
				}
				pending = nil
			}
		}
		if pending != nil {
			analysis.UnpairedNapEvents++
		}
	}

	analysis.TotalNaps = len(analysis.Durations)
	if analysis.TotalNaps > 0 {
		total := 0
		analysis.ShortestMinutes = analysis.Durations[0]
		for _, d := range analysis.Durations {
			total += d
			if d > analysis.LongestMinutes {
				analysis.LongestMinutes = d
			}
			if d < analysis.ShortestMinutes {
				analysis.ShortestMinutes = d
			}
		}
		analysis.AverageMinutes = round1(float64(total) / float64(analysis.TotalNaps))
	}
	analysis.CommonStartTimes = commonTimes(startTimes, 3)
	return analysis, nil
}

// commonTimes returns the up-to-n most frequent times, most frequent first.
func commonTimes(times []string, n int) []string {
	counts := make(map[string]int)
	for _, t := range times {
		counts[t]++
	}
	unique := make([]string, 0, len(counts))
	for t := range counts {
		unique = append(unique, t)
	}
	sort.Slice(unique, func(i, j int) bool {
		if counts[unique[i]] != counts[unique[j]] {
			return counts[unique[i]] > counts[unique[j]]
		}
		return unique[i] < unique[j]
	})
	if len(unique) > n {
		unique = unique[:n]
	}
	return unique
}

func (q *dashboardQueries) MealAnalysis(start, end string) (*MealAnalysis, error) {
	records, err := q.activityRepo.QueryByDateRange(start, end)
	if err != nil {
		return nil, err
	}

	counts := map[string]MealCounts{
		domain.MealAMSnack: {},
		domain.MealLunch:   {},
		domain.MealPMSnack: {},
	}
	total := 0
	for _, r := range records {
		if r.ActivityType != domain.ActivityMeal {
			continue
		}
		c, ok := counts[r.ActivityName]
		if !ok {
			continue
		}
		switch r.ActivitySubtype {
		case domain.SubtypeAll:
			c.All++
		case domain.SubtypeSome:
			c.Some++
		case domain.SubtypeNone:
			c.None++
		default:
			continue
		}
		counts[r.ActivityName] = c
		total++
	}

	percentages := make(map[string]map[string]float64, len(counts))
	for meal, c := range counts {
		mealTotal := c.All + c.Some + c.None
		p := map[string]float64{"all": 0, "some": 0, "none": 0}
		if mealTotal > 0 {
			p["all"] = round1(float64(c.All) / float64(mealTotal) * 100)
			p["some"] = round1(float64(c.Some) / float64(mealTotal) * 100)
			p["none"] = round1(float64(c.None) / float64(mealTotal) * 100)
		}
		percentages[meal] = p
	}

	return &MealAnalysis{Counts: counts, Percentages: percentages, TotalMeals: total}, nil
}

func (q *dashboardQueries) Timeline(date string) ([]TimelineEntry, error) {
	records, err := q.activityRepo.QueryByDate(date)
	if err != nil {
		return nil, err
	}

	timeline := make([]TimelineEntry, 0, len(records))
	for _, r := range records {
		name := r.ActivityName
		if name == "" {
			name = string(r.ActivityType)
		}
		timeline = append(timeline, TimelineEntry{
			Time:    r.ParsedTime,
			Type:    r.ActivityType,
			Subtype: r.ActivitySubtype,
			Name:    name,
			RawText: r.RawContent,
		})
	}
	return timeline, nil
}

func (q *dashboardQueries) MonthlySummary(year, month int) (*MonthlySummary, error) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	records, err := q.activityRepo.QueryByDateRange(first.Format(domain.DateLayout), last.Format(domain.DateLayout))
	if err != nil {
		return nil, err
	}

	out := &MonthlySummary{
		Year:            year,
		Month:           month,
		TotalActivities: len(records),
		TypeCounts:      make(map[domain.ActivityType]int),
		DailyCounts:     make(map[string]int),
	}
	for _, r := range records {
		out.TypeCounts[r.ActivityType]++
		out.DailyCounts[r.Date]++
	}
	busiest := 0
	for date, count := range out.DailyCounts {
		if count > busiest || (count == busiest && date < out.BusiestDay) {
			busiest = count
			out.BusiestDay = date
		}
	}
	if n := len(out.DailyCounts); n > 0 {
		out.AveragePerDay = round1(float64(len(records)) / float64(n))
	}
	return out, nil
}

func (q *dashboardQueries) Search(query, start, end string) ([]domain.ActivityRecord, error) {
	if start == "" || end == "" {
		// Default to the last 30 days when unbounded.
		now := time.Now()
		end = now.Format(domain.DateLayout)
		start = now.AddDate(0, 0, -30).Format(domain.DateLayout)
	}
	return q.activityRepo.Search(query, start, end)
}

func (q *dashboardQueries) AvailableDates() ([]string, error) {
	return q.activityRepo.AvailableDates()
}

func (q *dashboardQueries) DailySummary(date string) (*domain.DailySummary, error) {
	records, err := q.activityRepo.QueryByDate(date)
	if err != nil {
		return nil, err
	}
	daily := summary.Build(records, date)
	return &daily, nil
}

func (q *dashboardQueries) LifetimeSummary() (*LifetimeSummary, error) {
	dates, err := q.activityRepo.AvailableDates()
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return &LifetimeSummary{FirstActivityDate: "N/A", LastActivityDate: "N/A"}, nil
	}

	// AvailableDates is newest first.
	first := dates[len(dates)-1]
	last := dates[0]

	records, err := q.activityRepo.QueryByDateRange(first, last)
	if err != nil {
		return nil, err
	}

	out := &LifetimeSummary{
		TotalActivities:   len(records),
		DaysTracked:       len(dates),
		FirstActivityDate: first,
		LastActivityDate:  last,
	}

	uniqueOther := make(map[string]struct{})
	for _, r := range records {
		switch r.ActivityType {
		case domain.ActivityToileting:
			out.TotalToileting++
		case domain.ActivityDiaper:
			out.TotalDiapers++
		case domain.ActivityOther:
			uniqueOther[r.ActivityName] = struct{}{}
		}
	}
	out.UniqueOtherActivities = len(uniqueOther)

	napAnalysis, err := q.NapAnalysis(first, last)
	if err != nil {
		return nil, err
	}
	out.TotalNaps = napAnalysis.TotalNaps
	out.AverageNapMinutes = napAnalysis.AverageMinutes
	return out, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
