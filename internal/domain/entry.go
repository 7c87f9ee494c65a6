package domain

import (
	"errors"
	"time"
)

// TimeEntry is one logged work interval against a task. Entries are owned by
// the tracking feature; the report core only ever reads them.
type TimeEntry struct {
	ID              int64
	TaskID          int64
	SessionID       *int64 // nil when the entry was logged outside a work session
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int64
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewTimeEntry creates a completed time entry for a task
func NewTimeEntry(taskID int64, start, end time.Time) *TimeEntry {
	now := time.Now()
	return &TimeEntry{
		TaskID:          taskID,
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: int64(end.Sub(start).Minutes()),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Duration returns the logged duration
func (e *TimeEntry) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}

// Validate returns an error if the entry is invalid
func (e *TimeEntry) Validate() error {
	if e.TaskID <= 0 {
		return errors.New("task ID is required")
	}
	if e.StartTime.IsZero() {
		return errors.New("start time is required")
	}
	if e.EndTime.IsZero() {
		return errors.New("end time is required")
	}
	if e.EndTime.Before(e.StartTime) {
		return errors.New("end time must be after start time")
	}
	if e.DurationMinutes < 0 {
		return errors.New("duration cannot be negative")
	}
	return nil
}
