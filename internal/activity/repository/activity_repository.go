package repository

import (
	"fmt"

	"altitude-backend/internal/activity/domain"

	"gorm.io/gorm"
)

// ActivityRepository defines the interface for activity record storage.
// Records are append-only; Append must be idempotent per source message.
type ActivityRepository interface {
	// Append inserts records, skipping any whose source message was
	// already stored. Returns the number of records actually inserted.
	Append(records []domain.ActivityRecord) (int, error)
	// MessageProcessed reports whether a message's records are stored.
	MessageProcessed(messageID string) (bool, error)
	// QueryByDate returns a date's records ordered by timestamp.
	QueryByDate(date string) ([]domain.ActivityRecord, error)
	// QueryByDateRange returns records for [start, end] ordered by timestamp.
	QueryByDateRange(start, end string) ([]domain.ActivityRecord, error)
	// AvailableDates returns the distinct dates with records, newest first.
	AvailableDates() ([]string, error)
	// Search finds records whose name, subtype or raw content matches the
	// query, optionally bounded by a date range.
	Search(query, start, end string) ([]domain.ActivityRecord, error)
}

// activityRepository implements ActivityRepository on GORM/Postgres
type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new instance of activityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{
		db: db,
	}
}

// Append groups the records by source message, drops groups already in
// the store and inserts the rest in one transaction. Any insert failure
// aborts the whole batch so a run never ends half-stored.
func (r *activityRepository) Append(records []domain.ActivityRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	byMessage := make(map[string][]domain.ActivityRecord)
	var order []string
	for _, rec := range records {
		if _, ok := byMessage[rec.SourceMessageID]; !ok {
			order = append(order, rec.SourceMessageID)
		}
		byMessage[rec.SourceMessageID] = append(byMessage[rec.SourceMessageID], rec)
	}

	var toInsert []domain.ActivityRecord
	for _, messageID := range order {
		processed, err := r.MessageProcessed(messageID)
		if err != nil {
			return 0, err
		}
		if processed {
			continue
		}
		toInsert = append(toInsert, byMessage[messageID]...)
	}
	if len(toInsert) == 0 {
		return 0, nil
	}

	if err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&toInsert).Error
	}); err != nil {
		return 0, fmt.Errorf("failed to insert activity records: %w", err)
	}
	return len(toInsert), nil
}

func (r *activityRepository) MessageProcessed(messageID string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.ActivityRecord{}).Where("source_message_id = ?", messageID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *activityRepository) QueryByDate(date string) ([]domain.ActivityRecord, error) {
	var records []domain.ActivityRecord
	err := r.db.Where("date = ?", date).Order("timestamp asc").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *activityRepository) QueryByDateRange(start, end string) ([]domain.ActivityRecord, error) {
	var records []domain.ActivityRecord
	err := r.db.Where("date >= ? AND date <= ?", start, end).Order("timestamp asc").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *activityRepository) AvailableDates() ([]string, error) {
	var dates []string
	err := r.db.Model(&domain.ActivityRecord{}).Distinct("date").Order("date desc").Pluck("date", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}

func (r *activityRepository) Search(query, start, end string) ([]domain.ActivityRecord, error) {
	q := r.db.Where("activity_name ILIKE ? OR activity_subtype ILIKE ? OR raw_content ILIKE ?",
		"%"+query+"%", "%"+query+"%", "%"+query+"%")
	if start != "" {
		q = q.Where("date >= ?", start)
	}
	if end != "" {
		q = q.Where("date <= ?", end)
	}

	var records []domain.ActivityRecord
	if err := q.Order("timestamp asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
