package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"altitude-backend/internal/activity/domain"
	"altitude-backend/internal/activity/parser"

	"github.com/stretchr/testify/require"
)

type fakeMailSource struct {
	messages map[string][]domain.RawMessage
	err      error
}

func (f *fakeMailSource) Fetch(ctx context.Context, date string) ([]domain.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.messages[date], nil
}

// fakeActivityRepo is an in-memory ActivityRepository with the same
// idempotency contract as the Postgres one.
type fakeActivityRepo struct {
	records   []domain.ActivityRecord
	appendErr error
	queryErr  error
}

func (f *fakeActivityRepo) Append(records []domain.ActivityRecord) (int, error) {
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	// Processed status is decided per message before anything is
	// appended, so a multi-record message is stored whole.
	processed := make(map[string]bool)
	for _, r := range records {
		if _, ok := processed[r.SourceMessageID]; !ok {
			p, _ := f.MessageProcessed(r.SourceMessageID)
			processed[r.SourceMessageID] = p
		}
	}
	inserted := 0
	for _, r := range records {
		if processed[r.SourceMessageID] {
			continue
		}
		f.records = append(f.records, r)
		inserted++
	}
	return inserted, nil
}

func (f *fakeActivityRepo) MessageProcessed(messageID string) (bool, error) {
	for _, r := range f.records {
		if r.SourceMessageID == messageID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeActivityRepo) QueryByDate(date string) ([]domain.ActivityRecord, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []domain.ActivityRecord
	for _, r := range f.records {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeActivityRepo) QueryByDateRange(start, end string) ([]domain.ActivityRecord, error) {
	var out []domain.ActivityRecord
	for _, r := range f.records {
		if r.Date >= start && r.Date <= end {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeActivityRepo) AvailableDates() ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range f.records {
		if _, ok := seen[r.Date]; ok {
			continue
		}
		seen[r.Date] = struct{}{}
		out = append(out, r.Date)
	}
	return out, nil
}

func (f *fakeActivityRepo) Search(query, start, end string) ([]domain.ActivityRecord, error) {
	return nil, nil
}

type fakeNotifier struct {
	sent    int
	subject string
	text    string
	html    string
	err     error
}

func (f *fakeNotifier) Send(ctx context.Context, subject, textBody, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent++
	f.subject = subject
	f.text = textBody
	f.html = htmlBody
	return nil
}

func altitudeMessage(id, body string) domain.RawMessage {
	return domain.RawMessage{
		MessageID:  id,
		Snippet:    body,
		Body:       body,
		ReceivedAt: time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC),
	}
}

func newTestUsecase(mail *fakeMailSource, repo *fakeActivityRepo, notifier *fakeNotifier) SummaryUsecase {
	p := parser.New("Kavitha", time.UTC)
	return NewSummaryUsecase(mail, p, repo, notifier, "parent@example.com")
}

func TestRunFetchesParsesStoresAndDelivers(t *testing.T) {
	mail := &fakeMailSource{messages: map[string][]domain.RawMessage{
		"2025-06-10": {
			altitudeMessage("m1", "Toileting: Wet Kavitha - posted 10:00 AM"),
			altitudeMessage("m2", "Nap: Start Kavitha - posted 12:46 PM Nap: Stop Kavitha - posted 2:53 PM"),
		},
	}}
	repo := &fakeActivityRepo{}
	notifier := &fakeNotifier{}

	result, err := newTestUsecase(mail, repo, notifier).Run(context.Background(), "2025-06-10", false, false)

	require.NoError(t, err)
	require.Equal(t, "success", result.Status)
	require.Equal(t, 2, result.Messages)
	require.Equal(t, 3, result.NewRecords)
	require.True(t, result.Delivered)
	require.Equal(t, 1, notifier.sent)
	require.Contains(t, notifier.subject, "Daily Altitude Summary")
	require.Contains(t, notifier.text, "Wet: 1")
	require.Equal(t, 127, result.Summary.NapMinutes)
}

func TestRunStoresMultiRecordMessageWhole(t *testing.T) {
	mail := &fakeMailSource{messages: map[string][]domain.RawMessage{
		"2025-06-10": {altitudeMessage("m1", "Nap: Start Kavitha - posted 12:46 PM Nap: Stop Kavitha - posted 2:53 PM")},
	}}
	repo := &fakeActivityRepo{}

	result, err := newTestUsecase(mail, repo, &fakeNotifier{}).Run(context.Background(), "2025-06-10", false, true)

	require.NoError(t, err)
	require.Equal(t, 2, result.NewRecords)
	require.Len(t, repo.records, 2)
}

func TestRunDryRunSkipsDelivery(t *testing.T) {
	mail := &fakeMailSource{messages: map[string][]domain.RawMessage{
		"2025-06-10": {altitudeMessage("m1", "Diaper: Dry Kavitha - posted 9:15 AM")},
	}}
	repo := &fakeActivityRepo{}
	notifier := &fakeNotifier{}

	result, err := newTestUsecase(mail, repo, notifier).Run(context.Background(), "2025-06-10", false, true)

	require.NoError(t, err)
	require.Equal(t, "success", result.Status)
	require.False(t, result.Delivered)
	require.Zero(t, notifier.sent)
	require.NotEmpty(t, result.SummaryText)
}

func TestRunIsIdempotentAcrossReruns(t *testing.T) {
	mail := &fakeMailSource{messages: map[string][]domain.RawMessage{
		"2025-06-10": {altitudeMessage("m1", "Toileting: Wet Kavitha - posted 10:00 AM")},
	}}
	repo := &fakeActivityRepo{}
	uc := newTestUsecase(mail, repo, &fakeNotifier{})

	first, err := uc.Run(context.Background(), "2025-06-10", false, true)
	require.NoError(t, err)
	require.Equal(t, 1, first.NewRecords)

	second, err := uc.Run(context.Background(), "2025-06-10", false, true)
	require.NoError(t, err)
	require.Zero(t, second.NewRecords)
	require.Len(t, repo.records, 1)
	require.Equal(t, 1, second.Summary.Toiletings.Wet)
}

func TestRunNoMessagesReturnsNoData(t *testing.T) {
	mail := &fakeMailSource{}
	notifier := &fakeNotifier{}

	result, err := newTestUsecase(mail, &fakeActivityRepo{}, notifier).Run(context.Background(), "2025-06-10", false, false)

	require.NoError(t, err)
	require.Equal(t, "no_data", result.Status)
	require.Nil(t, result.Summary)
	require.Zero(t, notifier.sent)
}

func TestRunForceBuildsSummaryFromStore(t *testing.T) {
	repo := &fakeActivityRepo{records: []domain.ActivityRecord{{
		ID:              "r1",
		Timestamp:       time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC),
		Date:            "2025-06-10",
		ActivityType:    domain.ActivityToileting,
		ActivitySubtype: domain.SubtypeWet,
		ParsedTime:      "10:00 AM",
		SourceMessageID: "m1",
	}}}
	notifier := &fakeNotifier{}

	result, err := newTestUsecase(&fakeMailSource{}, repo, notifier).Run(context.Background(), "2025-06-10", true, false)

	require.NoError(t, err)
	require.Equal(t, "success", result.Status)
	require.Equal(t, 1, result.Summary.Toiletings.Wet)
	require.True(t, result.Delivered)
}

func TestRunInvalidDate(t *testing.T) {
	_, err := newTestUsecase(&fakeMailSource{}, &fakeActivityRepo{}, &fakeNotifier{}).
		Run(context.Background(), "06/10/2025", false, false)

	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid date")
}

func TestRunStoreFailureAbortsBeforeDelivery(t *testing.T) {
	mail := &fakeMailSource{messages: map[string][]domain.RawMessage{
		"2025-06-10": {altitudeMessage("m1", "Toileting: Wet Kavitha - posted 10:00 AM")},
	}}
	repo := &fakeActivityRepo{appendErr: errors.New("connection reset")}
	notifier := &fakeNotifier{}

	_, err := newTestUsecase(mail, repo, notifier).Run(context.Background(), "2025-06-10", false, false)

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to store records")
	require.Zero(t, notifier.sent)
}

func TestRunDeliveryFailure(t *testing.T) {
	mail := &fakeMailSource{messages: map[string][]domain.RawMessage{
		"2025-06-10": {altitudeMessage("m1", "Toileting: Wet Kavitha - posted 10:00 AM")},
	}}
	notifier := &fakeNotifier{err: errors.New("smtp auth failed")}

	_, err := newTestUsecase(mail, &fakeActivityRepo{}, notifier).Run(context.Background(), "2025-06-10", false, false)

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to deliver summary")
}

func TestWeeklyGroupsByDate(t *testing.T) {
	repo := &fakeActivityRepo{records: []domain.ActivityRecord{
		{ID: "r1", Date: "2025-06-09", ActivityType: domain.ActivityToileting, ActivitySubtype: domain.SubtypeWet, SourceMessageID: "m1"},
		{ID: "r2", Date: "2025-06-10", ActivityType: domain.ActivityDiaper, ActivitySubtype: domain.SubtypeBM, SourceMessageID: "m2"},
		{ID: "r3", Date: "2025-06-10", ActivityType: domain.ActivityToileting, ActivitySubtype: domain.SubtypeDry, SourceMessageID: "m3"},
	}}

	weekly, err := newTestUsecase(&fakeMailSource{}, repo, &fakeNotifier{}).Weekly("2025-06-09", "2025-06-13")

	require.NoError(t, err)
	require.Equal(t, 3, weekly.TotalActivities)
	require.Len(t, weekly.DailySummaries, 2)
	require.Equal(t, 1, weekly.DailySummaries["2025-06-09"].Toiletings.Wet)
	require.Equal(t, 1, weekly.DailySummaries["2025-06-10"].Diapers.BM)
}

func TestAuditWeekdaysSkipsWeekends(t *testing.T) {
	mail := &fakeMailSource{messages: map[string][]domain.RawMessage{}}

	report, err := newTestUsecase(mail, &fakeActivityRepo{}, &fakeNotifier{}).
		AuditWeekdays(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, report.Days, 5)
	for _, day := range report.Days {
		require.NotEqual(t, "Saturday", day.Weekday)
		require.NotEqual(t, "Sunday", day.Weekday)
		require.True(t, day.Missing)
	}
}

func TestLastWeekdaysOldestFirst(t *testing.T) {
	// Friday 2025-06-13; the previous 5 weekdays are Mon..Thu of that
	// week plus Friday of the one before.
	now := time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC)

	dates := lastWeekdays(now, 5)

	require.Equal(t, []string{"2025-06-06", "2025-06-09", "2025-06-10", "2025-06-11", "2025-06-12"}, dates)
}
