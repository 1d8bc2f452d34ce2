// Package parser turns raw Altitude notification bodies into typed
// activity records. Extraction is best-effort: unmatched content is
// skipped, recognized lines with a malformed time are still emitted with
// ParsedTime set to "Unknown" so the raw content stays auditable.
package parser

import (
	"regexp"
	"strings"
	"time"

	"altitude-backend/internal/activity/domain"

	"github.com/google/uuid"
)

// skewTolerance bounds how far a posted time may run ahead of the email's
// receipt time before it is treated as belonging to the previous day.
// Altitude logs same-day but delivery can lag, so a small window is enough.
const skewTolerance = 4 * time.Hour

// extracted is the normalized result of one template match.
type extracted struct {
	activityType domain.ActivityType
	subtype      string
	name         string
}

// template pairs a line pattern with its extraction function. Templates
// are evaluated in order; adding a new notification format means adding
// an entry here, not touching the existing ones.
type template struct {
	pattern *regexp.Regexp
	extract func(groups []string) extracted
}

var (
	timeAnchorPattern = regexp.MustCompile(`(?i)posted\s+(\d{1,2}:\d{2}\s+[AP]M)`)
	clockPattern      = regexp.MustCompile(`(?i)^\s*(\d{1,2}):(\d{2})\s+([AP]M)\s*$`)
	compoundPattern   = regexp.MustCompile(`(?i)wet\s*(?:\+|and)\s*bm`)
	parenPattern      = regexp.MustCompile(`\([^)]*\)`)
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	spacePattern      = regexp.MustCompile(`\s+`)
)

// standardNames are the fixed activity labels already covered by the
// template table; free-text extraction skips anything matching them.
var standardNames = []string{"toileting", "diaper", "nap", "snack", "lunch", "am snack", "pm snack"}

func subtypeExtractor(t domain.ActivityType) func([]string) extracted {
	return func(groups []string) extracted {
		return extracted{activityType: t, subtype: normalizeSubtype(groups[1])}
	}
}

func mealExtractor(name string) func([]string) extracted {
	return func(groups []string) extracted {
		return extracted{activityType: domain.ActivityMeal, subtype: strings.ToLower(groups[1]), name: name}
	}
}

func napPhraseExtractor(groups []string) extracted {
	subtype := domain.SubtypeStart
	if strings.EqualFold(groups[1], "ended") {
		subtype = domain.SubtypeStop
	}
	return extracted{activityType: domain.ActivityNap, subtype: subtype}
}

// normalizeSubtype lowercases a matched subtype and collapses the
// compound spellings ("Wet + BM", "wet and bm") into one canonical form.
func normalizeSubtype(s string) string {
	if compoundPattern.MatchString(s) {
		return domain.SubtypeWet + " + " + domain.SubtypeBM
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Parser extracts activity records from Altitude notification text.
type Parser struct {
	templates []template
	signature string
	loc       *time.Location
}

// New builds a parser. The signature is the caregiver sign-off that marks
// free-text activity lines in the full email body; loc is the timezone the
// daycare posts in and defaults to receivedAt's location when nil.
func New(signature string, loc *time.Location) *Parser {
	return &Parser{
		signature: signature,
		loc:       loc,
		templates: []template{
			{regexp.MustCompile(`(?i)Toileting:\s*(Wet\s*(?:\+|and)\s*BM|Wet|Dry|BM)`), subtypeExtractor(domain.ActivityToileting)},
			{regexp.MustCompile(`(?i)Diaper:\s*(Wet\s*(?:\+|and)\s*BM|Wet|Dry|BM)`), subtypeExtractor(domain.ActivityDiaper)},
			{regexp.MustCompile(`(?i)Nap:\s*(Start|Stop)`), subtypeExtractor(domain.ActivityNap)},
			{regexp.MustCompile(`(?i)Nap\s+(started|ended)`), napPhraseExtractor},
			{regexp.MustCompile(`(?i)AM Snack:\s*(All|Some|None)`), mealExtractor(domain.MealAMSnack)},
			{regexp.MustCompile(`(?i)Lunch:\s*(All|Some|None)`), mealExtractor(domain.MealLunch)},
			{regexp.MustCompile(`(?i)PM Snack:\s*(All|Some|None)`), mealExtractor(domain.MealPMSnack)},
		},
	}
}

// Parse extracts zero or more activity records from one raw email body.
// It never fails: empty or unrecognized input yields an empty result.
func (p *Parser) Parse(rawBody string, receivedAt time.Time, messageID string) []domain.ActivityRecord {
	return p.extract(rawBody, receivedAt, messageID, true)
}

// ParseMessage extracts records from a fetched message. The snippet is
// scanned first for the standard activity lines, then the full body adds
// anything the snippet missed, including free-text activity entries.
func (p *Parser) ParseMessage(msg domain.RawMessage) []domain.ActivityRecord {
	records := p.extract(msg.Snippet, msg.ReceivedAt, msg.MessageID, false)

	if body := strings.TrimSpace(msg.Body); body != "" && body != strings.TrimSpace(msg.Snippet) {
		seen := make(map[string]struct{}, len(records))
		for _, r := range records {
			seen[recordKey(r)] = struct{}{}
		}
		for _, r := range p.extract(msg.Body, msg.ReceivedAt, msg.MessageID, true) {
			if _, dup := seen[recordKey(r)]; dup {
				continue
			}
			seen[recordKey(r)] = struct{}{}
			records = append(records, r)
		}
	}

	return records
}

func recordKey(r domain.ActivityRecord) string {
	return string(r.ActivityType) + "|" + r.ActivityName + "|" + r.ActivitySubtype + "|" + r.ParsedTime
}

func (p *Parser) extract(content string, receivedAt time.Time, messageID string, includeFreeText bool) []domain.ActivityRecord {
	records := []domain.ActivityRecord{}
	if strings.TrimSpace(content) == "" {
		return records
	}

	anchors := timeAnchorPattern.FindAllStringSubmatchIndex(content, -1)

	for _, tmpl := range p.templates {
		for _, idx := range tmpl.pattern.FindAllStringSubmatchIndex(content, -1) {
			groups := submatches(content, idx)
			e := tmpl.extract(groups)
			// Measure from the match end: the posting time trails its
			// activity line, so this binds each line to its own anchor.
			parsedTime := closestAnchor(content, idx[1], anchors)
			records = append(records, p.newRecord(e, parsedTime, groups[0], receivedAt, messageID))
		}
	}

	if includeFreeText && p.signature != "" {
		records = append(records, p.extractFreeText(content, anchors, receivedAt, messageID)...)
	}

	return records
}

// extractFreeText captures non-standard activity entries, which Altitude
// renders as a label plus the caregiver's sign-off (e.g. "Snap Frame Kavitha").
func (p *Parser) extractFreeText(content string, anchors [][]int, receivedAt time.Time, messageID string) []domain.ActivityRecord {
	freeTextPattern := regexp.MustCompile(`(?i)^([A-Za-z][A-Za-z\s]+?)(?::\s*([A-Za-z\s]*?))?\s*` + regexp.QuoteMeta(p.signature))

	var records []domain.ActivityRecord
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(strings.ToLower(line), strings.ToLower(p.signature)) {
			continue
		}

		clean := parenPattern.ReplaceAllString(line, "")
		clean = urlPattern.ReplaceAllString(clean, "")
		clean = strings.TrimSpace(spacePattern.ReplaceAllString(clean, " "))

		m := freeTextPattern.FindStringSubmatch(clean)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if name == "" || isStandardName(name) {
			continue
		}

		parsedTime := domain.ParsedTimeUnknown
		if pos := strings.Index(content, line); pos >= 0 {
			parsedTime = closestAnchor(content, pos+len(line), anchors)
		}

		e := extracted{
			activityType: domain.ActivityOther,
			subtype:      strings.TrimSpace(m[2]),
			name:         name,
		}
		records = append(records, p.newRecord(e, parsedTime, clean, receivedAt, messageID))
	}
	return records
}

// isStandardName matches whole words only, so labels like "Snap Frame"
// are not swallowed by the "nap" entry.
func isStandardName(name string) bool {
	lower := strings.ToLower(name)
	for _, std := range standardNames {
		if lower == std {
			return true
		}
	}
	for _, word := range strings.Fields(lower) {
		for _, std := range standardNames {
			if word == std {
				return true
			}
		}
	}
	return false
}

func (p *Parser) newRecord(e extracted, parsedTime, rawContent string, receivedAt time.Time, messageID string) domain.ActivityRecord {
	ts := p.normalizeTime(parsedTime, receivedAt)
	return domain.ActivityRecord{
		ID:              uuid.New().String(),
		Timestamp:       ts,
		Date:            ts.In(p.location(receivedAt)).Format(domain.DateLayout),
		ActivityType:    e.activityType,
		ActivitySubtype: e.subtype,
		ActivityName:    e.name,
		RawContent:      rawContent,
		ParsedTime:      parsedTime,
		SourceMessageID: messageID,
	}
}

func (p *Parser) location(receivedAt time.Time) *time.Location {
	if p.loc != nil {
		return p.loc
	}
	return receivedAt.Location()
}

// normalizeTime combines a 12-hour clock string with the receipt date. A
// posted time more than skewTolerance ahead of receipt is shifted to the
// previous day. Unparseable times fall back to the receipt timestamp.
func (p *Parser) normalizeTime(parsedTime string, receivedAt time.Time) time.Time {
	m := clockPattern.FindStringSubmatch(parsedTime)
	if m == nil {
		return receivedAt
	}

	hours := atoi(m[1])
	minutes := atoi(m[2])
	if hours < 1 || hours > 12 || minutes > 59 {
		return receivedAt
	}
	if strings.EqualFold(m[3], "PM") && hours != 12 {
		hours += 12
	} else if strings.EqualFold(m[3], "AM") && hours == 12 {
		hours = 0
	}

	loc := p.location(receivedAt)
	day := receivedAt.In(loc)
	ts := time.Date(day.Year(), day.Month(), day.Day(), hours, minutes, 0, 0, loc)
	if ts.After(receivedAt.Add(skewTolerance)) {
		ts = ts.AddDate(0, 0, -1)
	}
	return ts
}

// closestAnchor returns the "posted h:mm AM/PM" time nearest to the match
// position, in either direction; notifications interleave the activity
// line and its posting time in no fixed order.
func closestAnchor(content string, pos int, anchors [][]int) string {
	closest := domain.ParsedTimeUnknown
	minDistance := -1
	for _, a := range anchors {
		distance := a[0] - pos
		if distance < 0 {
			distance = -distance
		}
		if minDistance < 0 || distance < minDistance {
			minDistance = distance
			closest = content[a[2]:a[3]]
		}
	}
	return closest
}

func submatches(content string, idx []int) []string {
	groups := make([]string, 0, len(idx)/2)
	for i := 0; i+1 < len(idx); i += 2 {
		if idx[i] < 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, content[idx[i]:idx[i+1]])
	}
	return groups
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
