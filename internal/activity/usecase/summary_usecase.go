package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"altitude-backend/internal/activity/domain"
	"altitude-backend/internal/activity/parser"
	"altitude-backend/internal/activity/repository"
	"altitude-backend/internal/activity/summary"
)

// RunResult reports the outcome of one daily summary run.
type RunResult struct {
	Status      string               `json:"status"`
	Date        string               `json:"date"`
	Messages    int                  `json:"messages"`
	NewRecords  int                  `json:"new_records"`
	Summary     *domain.DailySummary `json:"summary,omitempty"`
	SummaryText string               `json:"summary_text,omitempty"`
	Delivered   bool                 `json:"delivered"`
}

// WeeklySummary groups per-day summaries over a date range.
type WeeklySummary struct {
	StartDate       string                         `json:"start_date"`
	EndDate         string                         `json:"end_date"`
	GeneratedAt     time.Time                      `json:"generated_at"`
	DailySummaries  map[string]domain.DailySummary `json:"daily_summaries"`
	TotalActivities int                            `json:"total_activities"`
}

// AuditDay is one weekday's health check: how many messages the mailbox
// holds for the day versus how many records made it into the store.
type AuditDay struct {
	Date          string `json:"date"`
	Weekday       string `json:"weekday"`
	Messages      int    `json:"messages"`
	ParsedRecords int    `json:"parsed_records"`
	StoredRecords int    `json:"stored_records"`
	Missing       bool   `json:"missing"`
}

// AuditReport covers the last N weekdays.
type AuditReport struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Days        []AuditDay `json:"days"`
}

// SummaryUsecase drives the daily batch: fetch, parse, store, aggregate,
// render, deliver.
type SummaryUsecase interface {
	// Run processes one date. force rebuilds even when the mailbox is
	// empty; dryRun skips delivery and nothing else.
	Run(ctx context.Context, date string, force, dryRun bool) (*RunResult, error)
	// Weekly builds per-day summaries for [start, end] from the store.
	Weekly(start, end string) (*WeeklySummary, error)
	// AuditWeekdays checks mailbox vs store for the last N weekdays.
	AuditWeekdays(ctx context.Context, days int) (*AuditReport, error)
}

type summaryUsecase struct {
	mailSource   domain.MailSource
	parser       *parser.Parser
	activityRepo repository.ActivityRepository
	notifier     domain.Notifier
	recipient    string
}

// NewSummaryUsecase creates a new instance of summaryUsecase
func NewSummaryUsecase(mailSource domain.MailSource, p *parser.Parser, activityRepo repository.ActivityRepository, notifier domain.Notifier, recipient string) SummaryUsecase {
	return &summaryUsecase{
		mailSource:   mailSource,
		parser:       p,
		activityRepo: activityRepo,
		notifier:     notifier,
		recipient:    recipient,
	}
}

func (u *summaryUsecase) Run(ctx context.Context, date string, force, dryRun bool) (*RunResult, error) {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	result := &RunResult{Status: "success", Date: date}

	messages, err := u.mailSource.Fetch(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages for %s: %w", date, err)
	}
	result.Messages = len(messages)

	if len(messages) == 0 && !force {
		log.Printf("[Summary] No Altitude messages found for %s", date)
		result.Status = "no_data"
		return result, nil
	}

	var parsed []domain.ActivityRecord
	for _, msg := range messages {
		parsed = append(parsed, u.parser.ParseMessage(msg)...)
	}

	// Insertion failure aborts the whole run; a partial store would
	// produce an incomplete summary.
	inserted, err := u.activityRepo.Append(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to store records for %s: %w", date, err)
	}
	result.NewRecords = inserted
	log.Printf("[Summary] %s: %d messages, %d parsed records, %d newly stored", date, len(messages), len(parsed), inserted)

	records, err := u.activityRepo.QueryByDate(date)
	if err != nil {
		return nil, fmt.Errorf("failed to load records for %s: %w", date, err)
	}

	daily := summary.Build(records, date)
	result.Summary = &daily
	result.SummaryText = summary.RenderText(daily)

	if dryRun {
		log.Printf("[Summary] Dry run for %s, skipping delivery", date)
		return result, nil
	}

	if err := u.notifier.Send(ctx, summary.Subject(daily), result.SummaryText, summary.RenderHTML(daily)); err != nil {
		return nil, fmt.Errorf("failed to deliver summary for %s: %w", date, err)
	}
	result.Delivered = true
	log.Printf("[Summary] Delivered summary for %s to %s", date, u.recipient)
	return result, nil
}

func (u *summaryUsecase) Weekly(start, end string) (*WeeklySummary, error) {
	records, err := u.activityRepo.QueryByDateRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load records for %s..%s: %w", start, end, err)
	}

	byDate := make(map[string][]domain.ActivityRecord)
	for _, r := range records {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	out := &WeeklySummary{
		StartDate:       start,
		EndDate:         end,
		GeneratedAt:     time.Now(),
		DailySummaries:  make(map[string]domain.DailySummary, len(byDate)),
		TotalActivities: len(records),
	}
	for date, dayRecords := range byDate {
		out.DailySummaries[date] = summary.Build(dayRecords, date)
	}
	return out, nil
}

func (u *summaryUsecase) AuditWeekdays(ctx context.Context, days int) (*AuditReport, error) {
	if days <= 0 {
		days = 7
	}

	report := &AuditReport{GeneratedAt: time.Now()}
	for _, date := range lastWeekdays(time.Now(), days) {
		messages, err := u.mailSource.Fetch(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch messages for %s: %w", date, err)
		}

		parsed := 0
		for _, msg := range messages {
			parsed += len(u.parser.ParseMessage(msg))
		}

		stored, err := u.activityRepo.QueryByDate(date)
		if err != nil {
			return nil, fmt.Errorf("failed to load records for %s: %w", date, err)
		}

		day, _ := time.Parse(domain.DateLayout, date)
		report.Days = append(report.Days, AuditDay{
			Date:          date,
			Weekday:       day.Weekday().String(),
			Messages:      len(messages),
			ParsedRecords: parsed,
			StoredRecords: len(stored),
			Missing:       len(messages) == 0 && len(stored) == 0,
		})
	}
	return report, nil
}

// lastWeekdays returns the most recent n weekdays before now, oldest first.
func lastWeekdays(now time.Time, n int) []string {
	var dates []string
	day := now
	for len(dates) < n {
		day = day.AddDate(0, 0, -1)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		dates = append(dates, day.Format(domain.DateLayout))
	}
	for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
		dates[i], dates[j] = dates[j], dates[i]
	}
	return dates
}
