package delivery

import (
	"net/http"
	"strconv"
	"time"

	"altitude-backend/internal/activity/domain"
	"altitude-backend/internal/activity/usecase"

	"github.com/gin-gonic/gin"
)

// SummaryHandler handles the daily summary trigger and audit endpoints
type SummaryHandler struct {
	summaryUsecase usecase.SummaryUsecase
}

// NewSummaryHandler creates a new SummaryHandler
func NewSummaryHandler(summaryUsecase usecase.SummaryUsecase) *SummaryHandler {
	return &SummaryHandler{
		summaryUsecase: summaryUsecase,
	}
}

// TriggerRequest is the POST body for a manual summary run.
type TriggerRequest struct {
	Date   string `json:"date"`
	Force  bool   `json:"force"`
	DryRun bool   `json:"dry_run"`
}

// Trigger runs the daily summary for the requested date.
// GET /api/summary?date=2025-06-10&force=true&dry_run=true
func (h *SummaryHandler) Trigger(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().Format(domain.DateLayout))
	force := c.Query("force") == "true"
	dryRun := c.Query("dry_run") == "true"

	h.run(c, date, force, dryRun)
}

// TriggerPost runs the daily summary from a JSON payload.
// POST /api/summary
func (h *SummaryHandler) TriggerPost(c *gin.Context) {
	var req TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format(domain.DateLayout)
	}

	h.run(c, req.Date, req.Force, req.DryRun)
}

func (h *SummaryHandler) run(c *gin.Context, date string, force, dryRun bool) {
	result, err := h.summaryUsecase.Run(c.Request.Context(), date, force, dryRun)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "date": date})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Weekly returns per-day summaries for a date range.
// GET /api/summary/weekly?start_date=...&end_date=...
func (h *SummaryHandler) Weekly(c *gin.Context) {
	now := time.Now()
	end := c.DefaultQuery("end_date", now.Format(domain.DateLayout))
	start := c.DefaultQuery("start_date", now.AddDate(0, 0, -7).Format(domain.DateLayout))

	weekly, err := h.summaryUsecase.Weekly(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, weekly)
}

// Audit checks mailbox against store for the last N weekdays.
// GET /api/audit?days=7
func (h *SummaryHandler) Audit(c *gin.Context) {
	days := 7
	if d := c.Query("days"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			days = parsed
		}
	}

	report, err := h.summaryUsecase.AuditWeekdays(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}
