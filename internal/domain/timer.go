package domain

import "time"

type TimerState string

const (
	TimerStateIdle    TimerState = "idle"
	TimerStateRunning TimerState = "running"
	TimerStatePaused  TimerState = "paused"
)

// ActiveTimer is the singleton tracking state. It belongs to a work session;
// every segment it flushes becomes a TimeEntry carrying the session id.
type ActiveTimer struct {
	TaskID             int64
	SessionID          int64
	StartTime          time.Time
	PausedAt           *time.Time
	TotalPausedSeconds int64
}

// NewActiveTimer creates a running timer for a task within a work session
func NewActiveTimer(taskID, sessionID int64) *ActiveTimer {
	return &ActiveTimer{
		TaskID:    taskID,
		SessionID: sessionID,
		StartTime: time.Now(),
	}
}

// State returns the current timer state
func (t *ActiveTimer) State() TimerState {
	if t.PausedAt != nil {
		return TimerStatePaused
	}
	return TimerStateRunning
}

// Elapsed returns the active duration (excluding paused time)
func (t *ActiveTimer) Elapsed() time.Duration {
	totalElapsed := time.Since(t.StartTime)
	pausedDuration := time.Duration(t.TotalPausedSeconds) * time.Second

	if t.PausedAt != nil {
		pausedDuration += time.Since(*t.PausedAt)
	}

	return totalElapsed - pausedDuration
}

// Pause pauses the timer
func (t *ActiveTimer) Pause() {
	if t.PausedAt == nil {
		now := time.Now()
		t.PausedAt = &now
	}
}

// Resume resumes a paused timer
func (t *ActiveTimer) Resume() {
	if t.PausedAt != nil {
		pauseDuration := time.Since(*t.PausedAt)
		t.TotalPausedSeconds += int64(pauseDuration.Seconds())
		t.PausedAt = nil
	}
}

// ToTimeEntry converts the timer's active span into a time entry when
// stopped, stamped with the timer's session
func (t *ActiveTimer) ToTimeEntry() *TimeEntry {
	if t.PausedAt != nil {
		t.Resume()
	}

	now := time.Now()
	sessionID := t.SessionID

	return &TimeEntry{
		TaskID:          t.TaskID,
		SessionID:       &sessionID,
		StartTime:       t.StartTime,
		EndTime:         now,
		DurationMinutes: int64(t.Elapsed().Minutes()),
		CreatedAt:       t.StartTime,
		UpdatedAt:       now,
	}
}
