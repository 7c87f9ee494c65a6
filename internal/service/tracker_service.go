package service

import (
	"context"
	"errors"
	"time"

	"github.com/avery/vaops/internal/domain"
	"github.com/avery/vaops/internal/repository"
)

var (
	ErrTimerAlreadyRunning = errors.New("timer is already running")
	ErrTimerNotRunning     = errors.New("timer is not running")
	ErrTimerNotPaused      = errors.New("timer is not paused")
	ErrNoActiveTimer       = errors.New("no active timer")
	ErrTaskNotFound        = errors.New("task not found")
)

// TrackerService manages the active timer state machine. Starting a timer
// opens a work session; every segment it flushes (checkpoint or stop)
// becomes a time entry stamped with the session id, so one sitting yields a
// group of entries the report grouper can fold together.
type TrackerService interface {
	// GetState returns the current timer state (idle, running, paused)
	GetState(ctx context.Context) (domain.TimerState, error)

	// GetActiveTimer returns the current active timer, or nil if idle
	GetActiveTimer(ctx context.Context) (*domain.ActiveTimer, error)

	// Start opens a new work session and timer for a task (only from Idle)
	Start(ctx context.Context, taskID int64) error

	// Pause pauses the running timer (only from Running state)
	Pause(ctx context.Context) error

	// Resume resumes a paused timer (only from Paused state)
	Resume(ctx context.Context) error

	// Checkpoint flushes the elapsed segment as a time entry and keeps the
	// timer running within the same session
	Checkpoint(ctx context.Context, notes string) (*domain.TimeEntry, error)

	// Stop flushes the final segment and ends the timer (Running or Paused)
	Stop(ctx context.Context, notes string) (*domain.TimeEntry, error)

	// Discard drops the active timer without creating an entry
	Discard(ctx context.Context) error

	// ElapsedDuration returns the elapsed time of the active timer
	ElapsedDuration(ctx context.Context) (time.Duration, error)
}

type trackerService struct {
	timerRepo   repository.TimerRepository
	sessionRepo repository.WorkSessionRepository
	entryRepo   repository.TimeEntryRepository
	taskRepo    repository.TaskRepository
}

// NewTrackerService creates a new tracker service
func NewTrackerService(
	timerRepo repository.TimerRepository,
	sessionRepo repository.WorkSessionRepository,
	entryRepo repository.TimeEntryRepository,
	taskRepo repository.TaskRepository,
) TrackerService {
	return &trackerService{
		timerRepo:   timerRepo,
		sessionRepo: sessionRepo,
		entryRepo:   entryRepo,
		taskRepo:    taskRepo,
	}
}

func (s *trackerService) GetState(ctx context.Context) (domain.TimerState, error) {
	timer, err := s.timerRepo.Get(ctx)
	if err != nil {
		return "", err
	}
	if timer == nil {
		return domain.TimerStateIdle, nil
	}
	return timer.State(), nil
}

func (s *trackerService) GetActiveTimer(ctx context.Context) (*domain.ActiveTimer, error) {
	return s.timerRepo.Get(ctx)
}

func (s *trackerService) Start(ctx context.Context, taskID int64) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrTaskNotFound
	}

	existingTimer, err := s.timerRepo.Get(ctx)
	if err != nil {
		return err
	}
	if existingTimer != nil {
		return ErrTimerAlreadyRunning
	}

	session := &domain.WorkSession{
		TaskID:    taskID,
		StartedAt: time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return err
	}

	timer := domain.NewActiveTimer(taskID, session.ID)
	return s.timerRepo.Save(ctx, timer)
}

func (s *trackerService) Pause(ctx context.Context) error {
	timer, err := s.timerRepo.Get(ctx)
	if err != nil {
		return err
	}
	if timer == nil {
		return ErrNoActiveTimer
	}

	if timer.State() != domain.TimerStateRunning {
		return ErrTimerNotRunning
	}

	timer.Pause()
	return s.timerRepo.Save(ctx, timer)
}

func (s *trackerService) Resume(ctx context.Context) error {
	timer, err := s.timerRepo.Get(ctx)
	if err != nil {
		return err
	}
	if timer == nil {
		return ErrNoActiveTimer
	}

	if timer.State() != domain.TimerStatePaused {
		return ErrTimerNotPaused
	}

	timer.Resume()
	return s.timerRepo.Save(ctx, timer)
}

func (s *trackerService) Checkpoint(ctx context.Context, notes string) (*domain.TimeEntry, error) {
	timer, err := s.timerRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if timer == nil {
		return nil, ErrNoActiveTimer
	}

	entry := timer.ToTimeEntry()
	entry.Notes = notes
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	// Restart the segment clock within the same session
	fresh := domain.NewActiveTimer(timer.TaskID, timer.SessionID)
	if err := s.timerRepo.Save(ctx, fresh); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *trackerService) Stop(ctx context.Context, notes string) (*domain.TimeEntry, error) {
	timer, err := s.timerRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if timer == nil {
		return nil, ErrNoActiveTimer
	}

	entry := timer.ToTimeEntry()
	entry.Notes = notes
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.timerRepo.Delete(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *trackerService) Discard(ctx context.Context) error {
	timer, err := s.timerRepo.Get(ctx)
	if err != nil {
		return err
	}
	if timer == nil {
		return ErrNoActiveTimer
	}

	return s.timerRepo.Delete(ctx)
}

func (s *trackerService) ElapsedDuration(ctx context.Context) (time.Duration, error) {
	timer, err := s.timerRepo.Get(ctx)
	if err != nil {
		return 0, err
	}
	if timer == nil {
		return 0, ErrNoActiveTimer
	}

	return timer.Elapsed(), nil
}
