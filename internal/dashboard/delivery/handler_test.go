package delivery

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"altitude-backend/internal/activity/domain"
	"altitude-backend/internal/dashboard/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type stubQueries struct {
	availableDates []string
	timelineSize   int
	lastTimeline   string
	lastTrendStart string
	lastTrendEnd   string
}

func (s *stubQueries) WeeklyTrends(start, end string) (*usecase.WeeklyTrends, error) {
	s.lastTrendStart = start
	s.lastTrendEnd = end
	return &usecase.WeeklyTrends{
		StartDate: start,
		EndDate:   end,
		Averages:  map[string]float64{"toileting_per_day": 2.5},
	}, nil
}

func (s *stubQueries) NapAnalysis(start, end string) (*usecase.NapAnalysis, error) {
	return &usecase.NapAnalysis{TotalNaps: 4, AverageMinutes: 95.5}, nil
}

func (s *stubQueries) MealAnalysis(start, end string) (*usecase.MealAnalysis, error) {
	return &usecase.MealAnalysis{TotalMeals: 12}, nil
}

func (s *stubQueries) Timeline(date string) ([]usecase.TimelineEntry, error) {
	s.lastTimeline = date
	entries := make([]usecase.TimelineEntry, s.timelineSize)
	for i := range entries {
		entries[i] = usecase.TimelineEntry{
			Time: fmt.Sprintf("%d:00 AM", i+1),
			Type: domain.ActivityToileting,
			Name: "toileting",
		}
	}
	return entries, nil
}

func (s *stubQueries) MonthlySummary(year, month int) (*usecase.MonthlySummary, error) {
	return &usecase.MonthlySummary{Year: year, Month: month, TotalActivities: 80}, nil
}

func (s *stubQueries) Search(query, start, end string) ([]domain.ActivityRecord, error) {
	return nil, nil
}

func (s *stubQueries) AvailableDates() ([]string, error) {
	return s.availableDates, nil
}

func (s *stubQueries) DailySummary(date string) (*domain.DailySummary, error) {
	return &domain.DailySummary{
		Date:          date,
		FormattedDate: "Tuesday, June 10, 2025",
		NapMinutes:    127,
		Meals:         domain.MealStatus{AMSnack: "Some", Lunch: "All", PMSnack: domain.MealStatusNoData},
	}, nil
}

func (s *stubQueries) LifetimeSummary() (*usecase.LifetimeSummary, error) {
	return &usecase.LifetimeSummary{
		TotalActivities:   500,
		DaysTracked:       60,
		TotalNaps:         55,
		AverageNapMinutes: 101.3,
		FirstActivityDate: "2025-03-01",
		LastActivityDate:  "2025-06-10",
	}, nil
}

func newDashboardRouter(stub *stubQueries) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(stub)
	r := gin.New()
	r.GET("/api/dashboard", handler.Overview)
	return r
}

func TestOverviewComposesAnalytics(t *testing.T) {
	stub := &stubQueries{timelineSize: 3}
	r := newDashboardRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp, "weekly_trends")
	require.Contains(t, resp, "nap_analysis")
	require.Contains(t, resp, "meal_analysis")
	require.Contains(t, resp, "today_timeline")
	require.Contains(t, resp, "monthly_summary")

	overview := resp["overview"].(map[string]any)
	require.EqualValues(t, 3, overview["today_activities"])
	require.EqualValues(t, 80, overview["month_total_activities"])
	require.InDelta(t, 95.5, overview["average_nap_duration"].(float64), 0.001)
}

func TestOverviewLimitsTimelineToTenEntries(t *testing.T) {
	stub := &stubQueries{timelineSize: 14}
	r := newDashboardRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp["today_timeline"].([]any), 10)
	require.EqualValues(t, 14, resp["overview"].(map[string]any)["today_activities"])
}

func TestOverviewHTMLFormat(t *testing.T) {
	stub := &stubQueries{availableDates: []string{"2025-06-10"}, timelineSize: 2}
	r := newDashboardRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard?format=html&date=2025-06-10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
	require.Contains(t, w.Body.String(), "Altitude Summary Dashboard")
	require.Contains(t, w.Body.String(), "Tuesday, June 10, 2025")
	require.Contains(t, w.Body.String(), "127 mins")
}

func TestOverviewHTMLViaAcceptHeader(t *testing.T) {
	stub := &stubQueries{availableDates: []string{"2025-06-10"}}
	r := newDashboardRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard?date=2025-06-10", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestOverviewHTMLFallsBackToMostRecentDate(t *testing.T) {
	stub := &stubQueries{availableDates: []string{"2025-06-10", "2025-06-09"}}
	r := newDashboardRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard?format=html&date=2025-07-01", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2025-06-10", stub.lastTimeline)
	require.Equal(t, "2025-06-10", stub.lastTrendEnd)
	require.Equal(t, "2025-06-03", stub.lastTrendStart)
}
