package service

import (
	"context"
	"errors"
	"testing"

	"github.com/avery/vaops/internal/domain"
)

func newTrackerFixture() (*trackerService, *mockTimerRepo, *mockSessionRepo, *mockEntryRepo) {
	taskRepo := &mockTaskRepo{tasks: map[int64]*domain.Task{
		10: {ID: 10, ClientID: 1, Title: "Inbox triage"},
	}}
	timerRepo := &mockTimerRepo{}
	sessionRepo := newMockSessionRepo()
	entryRepo := &mockEntryRepo{clientOf: map[int64]int64{10: 1}}

	svc := &trackerService{
		timerRepo:   timerRepo,
		sessionRepo: sessionRepo,
		entryRepo:   entryRepo,
		taskRepo:    taskRepo,
	}
	return svc, timerRepo, sessionRepo, entryRepo
}

func TestStartOpensSession(t *testing.T) {
	svc, timerRepo, sessionRepo, _ := newTrackerFixture()
	ctx := context.Background()

	if err := svc.Start(ctx, 10); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if timerRepo.timer == nil {
		t.Fatal("expected active timer saved")
	}
	if timerRepo.timer.TaskID != 10 {
		t.Errorf("expected timer on task 10, got %d", timerRepo.timer.TaskID)
	}
	if len(sessionRepo.sessions) != 1 {
		t.Fatalf("expected one work session, got %d", len(sessionRepo.sessions))
	}
	if timerRepo.timer.SessionID != 1 {
		t.Errorf("timer must carry the new session id, got %d", timerRepo.timer.SessionID)
	}

	state, err := svc.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state != domain.TimerStateRunning {
		t.Errorf("expected running state, got %q", state)
	}
}

func TestStartUnknownTask(t *testing.T) {
	svc, _, _, _ := newTrackerFixture()

	if err := svc.Start(context.Background(), 99); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestStartWhileRunning(t *testing.T) {
	svc, _, _, _ := newTrackerFixture()
	ctx := context.Background()

	if err := svc.Start(ctx, 10); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := svc.Start(ctx, 10); !errors.Is(err, ErrTimerAlreadyRunning) {
		t.Fatalf("expected ErrTimerAlreadyRunning, got %v", err)
	}
}

func TestPauseResume(t *testing.T) {
	svc, _, _, _ := newTrackerFixture()
	ctx := context.Background()

	if err := svc.Pause(ctx); !errors.Is(err, ErrNoActiveTimer) {
		t.Fatalf("expected ErrNoActiveTimer, got %v", err)
	}

	if err := svc.Start(ctx, 10); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := svc.Resume(ctx); !errors.Is(err, ErrTimerNotPaused) {
		t.Fatalf("expected ErrTimerNotPaused, got %v", err)
	}

	if err := svc.Pause(ctx); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	state, _ := svc.GetState(ctx)
	if state != domain.TimerStatePaused {
		t.Errorf("expected paused state, got %q", state)
	}
	if err := svc.Pause(ctx); !errors.Is(err, ErrTimerNotRunning) {
		t.Fatalf("expected ErrTimerNotRunning, got %v", err)
	}

	if err := svc.Resume(ctx); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	state, _ = svc.GetState(ctx)
	if state != domain.TimerStateRunning {
		t.Errorf("expected running state after resume, got %q", state)
	}
}

func TestCheckpointKeepsSession(t *testing.T) {
	svc, timerRepo, _, entryRepo := newTrackerFixture()
	ctx := context.Background()

	if err := svc.Start(ctx, 10); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	sessionID := timerRepo.timer.SessionID

	entry, err := svc.Checkpoint(ctx, "first chunk")
	if err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}
	if entry.SessionID == nil || *entry.SessionID != sessionID {
		t.Error("checkpoint entry must carry the session id")
	}
	if entry.Notes != "first chunk" {
		t.Errorf("unexpected notes %q", entry.Notes)
	}
	if len(entryRepo.entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entryRepo.entries))
	}

	// the timer keeps going in the same session with a fresh segment clock
	if timerRepo.timer == nil {
		t.Fatal("expected timer still active after checkpoint")
	}
	if timerRepo.timer.SessionID != sessionID {
		t.Error("checkpoint must not open a new session")
	}

	second, err := svc.Stop(ctx, "second chunk")
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if second.SessionID == nil || *second.SessionID != sessionID {
		t.Error("stop entry must share the session with the checkpoint entry")
	}
}

func TestStopEndsTimer(t *testing.T) {
	svc, timerRepo, _, entryRepo := newTrackerFixture()
	ctx := context.Background()

	if _, err := svc.Stop(ctx, ""); !errors.Is(err, ErrNoActiveTimer) {
		t.Fatalf("expected ErrNoActiveTimer, got %v", err)
	}

	if err := svc.Start(ctx, 10); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	entry, err := svc.Stop(ctx, "done")
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if entry.TaskID != 10 {
		t.Errorf("expected entry on task 10, got %d", entry.TaskID)
	}
	if timerRepo.timer != nil {
		t.Error("expected timer cleared after stop")
	}
	if len(entryRepo.entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entryRepo.entries))
	}

	state, _ := svc.GetState(ctx)
	if state != domain.TimerStateIdle {
		t.Errorf("expected idle state, got %q", state)
	}
}

func TestDiscardDropsWithoutEntry(t *testing.T) {
	svc, timerRepo, _, entryRepo := newTrackerFixture()
	ctx := context.Background()

	if err := svc.Discard(ctx); !errors.Is(err, ErrNoActiveTimer) {
		t.Fatalf("expected ErrNoActiveTimer, got %v", err)
	}

	if err := svc.Start(ctx, 10); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := svc.Discard(ctx); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}
	if timerRepo.timer != nil {
		t.Error("expected timer cleared")
	}
	if len(entryRepo.entries) != 0 {
		t.Errorf("discard must not create entries, got %d", len(entryRepo.entries))
	}
}
