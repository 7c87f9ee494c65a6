package domain

import (
	"errors"
	"strings"
	"time"
)

// Task is a unit of client work that time entries are logged against.
type Task struct {
	ID         int64
	ClientID   int64
	Title      string
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewTask creates a new task for a client
func NewTask(clientID int64, title string) *Task {
	now := time.Now()
	return &Task{
		ClientID:  clientID,
		Title:     strings.TrimSpace(title),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate returns an error if the task is invalid
func (t *Task) Validate() error {
	if t.ClientID <= 0 {
		return errors.New("client ID is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("task title is required")
	}
	return nil
}
