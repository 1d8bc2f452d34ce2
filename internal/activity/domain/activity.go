package domain

import (
	"strings"
	"time"
)

// ActivityType classifies a parsed daycare event
type ActivityType string

const (
	ActivityToileting ActivityType = "toileting"
	ActivityDiaper    ActivityType = "diaper"
	ActivityNap       ActivityType = "nap"
	ActivityMeal      ActivityType = "meal"
	ActivityOther     ActivityType = "other"
)

// Subtype values. Toileting/diaper use wet/dry/bm (possibly compound,
// e.g. "wet + bm"), naps use start/stop, meals use all/some/none.
const (
	SubtypeWet   = "wet"
	SubtypeDry   = "dry"
	SubtypeBM    = "bm"
	SubtypeStart = "start"
	SubtypeStop  = "stop"
	SubtypeAll   = "all"
	SubtypeSome  = "some"
	SubtypeNone  = "none"
)

// The three meal slots Altitude reports on.
const (
	MealAMSnack = "AM Snack"
	MealLunch   = "Lunch"
	MealPMSnack = "PM Snack"
)

// ParsedTimeUnknown marks a recognized line whose posted time could not be
// read. The record is still emitted so the raw content stays auditable.
const ParsedTimeUnknown = "Unknown"

// DateLayout is the calendar-date format used for grouping and queries.
const DateLayout = "2006-01-02"

// ActivityRecord is one parsed daycare event. Records are append-only:
// a message is parsed once and its records are never updated.
type ActivityRecord struct {
	ID              string       `json:"id" gorm:"primaryKey"`
	Timestamp       time.Time    `json:"timestamp" gorm:"index"`
	Date            string       `json:"date" gorm:"index;not null"`
	ActivityType    ActivityType `json:"activity_type" gorm:"not null"`
	ActivitySubtype string       `json:"activity_subtype,omitempty"`
	ActivityName    string       `json:"activity_name,omitempty"`
	RawContent      string       `json:"raw_content" gorm:"type:text"`
	ParsedTime      string       `json:"parsed_time,omitempty"`
	SourceMessageID string       `json:"source_message_id" gorm:"index;not null"`
	CreatedAt       time.Time    `json:"created_at"`
}

// TableName specifies the table name for GORM
func (ActivityRecord) TableName() string {
	return "activities"
}

// HasSubtype reports whether the record's subtype includes the given
// keyword. Compound subtypes like "wet + bm" match both wet and bm.
func (r ActivityRecord) HasSubtype(keyword string) bool {
	return strings.Contains(strings.ToLower(r.ActivitySubtype), keyword)
}
