package parser

import (
	"testing"
	"time"

	"altitude-backend/internal/activity/domain"

	"github.com/stretchr/testify/require"
)

var testLoc = time.UTC

func testParser() *Parser {
	return New("Kavitha", testLoc)
}

func receivedAt(hour, min int) time.Time {
	return time.Date(2025, 6, 10, hour, min, 0, 0, testLoc)
}

func TestParseToiletingLine(t *testing.T) {
	p := testParser()
	records := p.Parse("Toileting: Wet Kavitha Baradol - posted 10:00 AM", receivedAt(10, 5), "msg-1")

	require.Len(t, records, 1)
	r := records[0]
	require.Equal(t, domain.ActivityToileting, r.ActivityType)
	require.Equal(t, domain.SubtypeWet, r.ActivitySubtype)
	require.Equal(t, "10:00 AM", r.ParsedTime)
	require.Equal(t, "2025-06-10", r.Date)
	require.Equal(t, "msg-1", r.SourceMessageID)
	require.Equal(t, time.Date(2025, 6, 10, 10, 0, 0, 0, testLoc), r.Timestamp)
}

func TestParseMultipleActivitiesWithNearestTime(t *testing.T) {
	p := testParser()
	content := "Lunch: All Kavitha - posted 12:14 PM Toileting: Wet Kavitha - posted 12:15 PM"
	records := p.Parse(content, receivedAt(12, 20), "msg-2")

	require.Len(t, records, 2)

	byType := make(map[domain.ActivityType]domain.ActivityRecord)
	for _, r := range records {
		byType[r.ActivityType] = r
	}
	require.Equal(t, "12:15 PM", byType[domain.ActivityToileting].ParsedTime)

	lunch := byType[domain.ActivityMeal]
	require.Equal(t, domain.MealLunch, lunch.ActivityName)
	require.Equal(t, domain.SubtypeAll, lunch.ActivitySubtype)
	require.Equal(t, "12:14 PM", lunch.ParsedTime)
}

func TestParseCompoundDiaperLine(t *testing.T) {
	p := testParser()

	for _, raw := range []string{
		"Diaper: Wet + BM Kavitha - posted 2:30 PM",
		"Diaper: wet and bm Kavitha - posted 2:30 PM",
	} {
		records := p.Parse(raw, receivedAt(14, 35), "msg-3")
		require.Len(t, records, 1, raw)
		require.Equal(t, domain.ActivityDiaper, records[0].ActivityType)
		require.Equal(t, "wet + bm", records[0].ActivitySubtype)
	}
}

func TestParseNapLines(t *testing.T) {
	p := testParser()
	content := "Nap: Start Kavitha - posted 12:46 PM Nap: Stop Kavitha - posted 2:53 PM"
	records := p.Parse(content, receivedAt(15, 0), "msg-4")

	require.Len(t, records, 2)
	require.Equal(t, domain.SubtypeStart, records[0].ActivitySubtype)
	require.Equal(t, domain.SubtypeStop, records[1].ActivitySubtype)
}

func TestParseNapPhraseVariant(t *testing.T) {
	p := testParser()
	records := p.Parse("Nap started - posted 12:46 PM", receivedAt(13, 0), "msg-5")

	require.Len(t, records, 1)
	require.Equal(t, domain.ActivityNap, records[0].ActivityType)
	require.Equal(t, domain.SubtypeStart, records[0].ActivitySubtype)

	records = p.Parse("Nap ended - posted 2:53 PM", receivedAt(15, 0), "msg-6")
	require.Len(t, records, 1)
	require.Equal(t, domain.SubtypeStop, records[0].ActivitySubtype)
}

func TestParseMealStatuses(t *testing.T) {
	p := testParser()
	content := "AM Snack: Some Kavitha - posted 9:30 AM\nPM Snack: None Kavitha - posted 3:15 PM"
	records := p.Parse(content, receivedAt(15, 30), "msg-7")

	require.Len(t, records, 2)
	require.Equal(t, domain.MealAMSnack, records[0].ActivityName)
	require.Equal(t, domain.SubtypeSome, records[0].ActivitySubtype)
	require.Equal(t, domain.MealPMSnack, records[1].ActivityName)
	require.Equal(t, domain.SubtypeNone, records[1].ActivitySubtype)
}

func TestParseFreeTextActivity(t *testing.T) {
	p := testParser()
	content := "Snap Frame Kavitha Baradol (https://example.com/photo) - posted 11:05 AM"
	records := p.Parse(content, receivedAt(11, 10), "msg-8")

	require.Len(t, records, 1)
	require.Equal(t, domain.ActivityOther, records[0].ActivityType)
	require.Equal(t, "Snap Frame", records[0].ActivityName)
	require.Equal(t, "11:05 AM", records[0].ParsedTime)
}

func TestParseUnrecognizedContent(t *testing.T) {
	p := testParser()

	require.Empty(t, p.Parse("Weather: sunny", receivedAt(9, 0), "msg-9"))
	require.Empty(t, p.Parse("", receivedAt(9, 0), "msg-10"))
	require.Empty(t, p.Parse("   \n\t  ", receivedAt(9, 0), "msg-11"))
}

func TestParseMissingTimeAnchorFlagsRecord(t *testing.T) {
	p := testParser()
	received := receivedAt(14, 35)
	records := p.Parse("Diaper: Dry Kavitha", received, "msg-12")

	require.Len(t, records, 1)
	require.Equal(t, domain.ParsedTimeUnknown, records[0].ParsedTime)
	require.Equal(t, received, records[0].Timestamp)
	require.Equal(t, "Diaper: Dry", records[0].RawContent)
}

func TestParseTimeAfterReceiptShiftsToPreviousDay(t *testing.T) {
	p := testParser()
	// Email delivered just after midnight; the posted time belongs to the
	// previous afternoon.
	received := time.Date(2025, 6, 11, 0, 30, 0, 0, testLoc)
	records := p.Parse("Toileting: Dry Kavitha - posted 4:50 PM", received, "msg-13")

	require.Len(t, records, 1)
	require.Equal(t, "2025-06-10", records[0].Date)
	require.Equal(t, time.Date(2025, 6, 10, 16, 50, 0, 0, testLoc), records[0].Timestamp)
}

func TestParseMessageMergesSnippetAndBody(t *testing.T) {
	p := testParser()
	msg := domain.RawMessage{
		MessageID:  "msg-14",
		Snippet:    "Toileting: Wet Kavitha - posted 10:00 AM",
		Body:       "Toileting: Wet Kavitha - posted 10:00 AM\nSnap Frame Kavitha - posted 10:30 AM",
		ReceivedAt: receivedAt(10, 45),
	}
	records := p.ParseMessage(msg)

	require.Len(t, records, 2)
	require.Equal(t, domain.ActivityToileting, records[0].ActivityType)
	require.Equal(t, domain.ActivityOther, records[1].ActivityType)
}

func TestParseIsRepeatable(t *testing.T) {
	p := testParser()
	content := "Diaper: BM Kavitha - posted 1:15 PM"
	received := receivedAt(13, 20)

	first := p.Parse(content, received, "msg-15")
	second := p.Parse(content, received, "msg-15")

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	require.Equal(t, first[0].ActivitySubtype, second[0].ActivitySubtype)
	require.Equal(t, first[0].Timestamp, second[0].Timestamp)
	require.Equal(t, first[0].SourceMessageID, second[0].SourceMessageID)
}
