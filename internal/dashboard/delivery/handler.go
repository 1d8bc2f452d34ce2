package delivery

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"altitude-backend/internal/activity/domain"
	"altitude-backend/internal/dashboard/usecase"

	"github.com/gin-gonic/gin"
)

// DashboardHandler handles the analytics API endpoints
type DashboardHandler struct {
	queries usecase.DashboardQueries
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(queries usecase.DashboardQueries) *DashboardHandler {
	return &DashboardHandler{
		queries: queries,
	}
}

// Overview composes the default dashboard: weekly trends, nap and meal
// analysis, today's timeline and the current month. With format=html or
// an HTML Accept header it serves the dashboard page instead.
// GET /api/dashboard
func (h *DashboardHandler) Overview(c *gin.Context) {
	if c.Query("format") == "html" || strings.Contains(c.GetHeader("Accept"), "text/html") {
		h.overviewHTML(c)
		return
	}

	now := time.Now()
	end := now.Format(domain.DateLayout)
	weekStart := now.AddDate(0, 0, -7).Format(domain.DateLayout)
	monthStart := now.AddDate(0, 0, -30).Format(domain.DateLayout)

	trends, err := h.queries.WeeklyTrends(weekStart, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	naps, err := h.queries.NapAnalysis(monthStart, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	meals, err := h.queries.MealAnalysis(monthStart, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	timeline, err := h.queries.Timeline(end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	monthly, err := h.queries.MonthlySummary(now.Year(), int(now.Month()))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	recent := timeline
	if len(recent) > 10 {
		recent = recent[:10]
	}

	c.JSON(http.StatusOK, gin.H{
		"generated_at": now,
		"overview": gin.H{
			"today_activities":       len(timeline),
			"week_averages":          trends.Averages,
			"month_total_activities": monthly.TotalActivities,
			"average_nap_duration":   naps.AverageMinutes,
		},
		"weekly_trends":   trends,
		"nap_analysis":    naps,
		"meal_analysis":   meals,
		"today_timeline":  recent,
		"monthly_summary": monthly,
	})
}

// overviewHTML serves the dashboard page for one date, falling back to
// the most recent date with data when the requested one has none.
func (h *DashboardHandler) overviewHTML(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().Format(domain.DateLayout))

	available, err := h.queries.AvailableDates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(available) > 0 && !containsDate(available, date) {
		date = available[0]
	}

	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}
	weekStart := day.AddDate(0, 0, -7).Format(domain.DateLayout)

	daily, err := h.queries.DailySummary(date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	timeline, err := h.queries.Timeline(date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	trends, err := h.queries.WeeklyTrends(weekStart, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	lifetime, err := h.queries.LifetimeSummary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	page := renderDashboardHTML(date, daily, timeline, trends, lifetime)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func containsDate(dates []string, date string) bool {
	for _, d := range dates {
		if d == date {
			return true
		}
	}
	return false
}

// WeeklyTrends handles GET /api/dashboard/weekly-trends
func (h *DashboardHandler) WeeklyTrends(c *gin.Context) {
	start, end := h.dateRange(c, 7)
	trends, err := h.queries.WeeklyTrends(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, trends)
}

// NapAnalysis handles GET /api/dashboard/nap-analysis
func (h *DashboardHandler) NapAnalysis(c *gin.Context) {
	start, end := h.dateRange(c, 30)
	analysis, err := h.queries.NapAnalysis(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// MealAnalysis handles GET /api/dashboard/meal-analysis
func (h *DashboardHandler) MealAnalysis(c *gin.Context) {
	start, end := h.dateRange(c, 30)
	analysis, err := h.queries.MealAnalysis(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// Timeline handles GET /api/dashboard/timeline?date=...
func (h *DashboardHandler) Timeline(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().Format(domain.DateLayout))
	timeline, err := h.queries.Timeline(date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "timeline": timeline})
}

// MonthlySummary handles GET /api/dashboard/monthly-summary?year=2025&month=6
func (h *DashboardHandler) MonthlySummary(c *gin.Context) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())
	if y := c.Query("year"); y != "" {
		if parsed, err := strconv.Atoi(y); err == nil {
			year = parsed
		}
	}
	if m := c.Query("month"); m != "" {
		if parsed, err := strconv.Atoi(m); err == nil && parsed >= 1 && parsed <= 12 {
			month = parsed
		}
	}

	monthly, err := h.queries.MonthlySummary(year, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, monthly)
}

// Search handles GET /api/dashboard/search?q=...
func (h *DashboardHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	records, err := h.queries.Search(query, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "results": records, "count": len(records)})
}

// AvailableDates handles GET /api/dashboard/available-dates
func (h *DashboardHandler) AvailableDates(c *gin.Context) {
	dates, err := h.queries.AvailableDates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates})
}

func (h *DashboardHandler) dateRange(c *gin.Context, defaultDays int) (string, string) {
	now := time.Now()
	end := c.DefaultQuery("end_date", now.Format(domain.DateLayout))
	start := c.DefaultQuery("start_date", now.AddDate(0, 0, -defaultDays).Format(domain.DateLayout))
	return start, end
}
