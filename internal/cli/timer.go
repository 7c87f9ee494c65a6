package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Manage the active timer",
	Long: `Start, stop, pause, resume, or check the status of the active timer.

Starting a timer opens a work session. Every checkpoint or stop logs a time
entry stamped with the session, so one sitting groups together on reports.`,
}

var timerStartCmd = &cobra.Command{
	Use:   "start [task_id]",
	Short: "Start a new timer for a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		taskID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		if err := appInstance.TrackerService.Start(ctx, taskID); err != nil {
			return fmt.Errorf("failed to start timer: %w", err)
		}

		// Get task for display
		task, _ := appInstance.TaskRepo.GetByID(ctx, taskID)
		taskTitle := fmt.Sprintf("Task #%d", taskID)
		if task != nil {
			taskTitle = task.Title
		}

		fmt.Printf("✓ Timer started for %s\n", taskTitle)
		return nil
	},
}

var timerCheckpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Log the elapsed segment as an entry and keep the timer running",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		notes, _ := cmd.Flags().GetString("notes")

		entry, err := appInstance.TrackerService.Checkpoint(ctx, notes)
		if err != nil {
			return fmt.Errorf("failed to checkpoint timer: %w", err)
		}

		fmt.Printf("✓ Segment logged (entry ID: %d)\n", entry.ID)
		fmt.Printf("  Duration: %s\n", formatDuration(entry.Duration()))
		fmt.Println("  Timer is still running")
		return nil
	},
}

var timerStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active timer and save the time entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		notes, _ := cmd.Flags().GetString("notes")

		entry, err := appInstance.TrackerService.Stop(ctx, notes)
		if err != nil {
			return fmt.Errorf("failed to stop timer: %w", err)
		}

		// Get task for display
		task, _ := appInstance.TaskRepo.GetByID(ctx, entry.TaskID)
		taskTitle := fmt.Sprintf("Task #%d", entry.TaskID)
		if task != nil {
			taskTitle = task.Title
		}

		fmt.Printf("✓ Timer stopped\n")
		fmt.Printf("  Task: %s\n", taskTitle)
		fmt.Printf("  Duration: %s\n", formatDuration(entry.Duration()))
		return nil
	},
}

var timerPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the active timer",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if err := appInstance.TrackerService.Pause(ctx); err != nil {
			return fmt.Errorf("failed to pause timer: %w", err)
		}

		fmt.Println("✓ Timer paused")
		return nil
	},
}

var timerResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused timer",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if err := appInstance.TrackerService.Resume(ctx); err != nil {
			return fmt.Errorf("failed to resume timer: %w", err)
		}

		fmt.Println("✓ Timer resumed")
		return nil
	},
}

var timerDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Discard the active timer without saving",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if err := appInstance.TrackerService.Discard(ctx); err != nil {
			return fmt.Errorf("failed to discard timer: %w", err)
		}

		fmt.Println("✓ Timer discarded")
		return nil
	},
}

var timerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of the active timer",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		state, err := appInstance.TrackerService.GetState(ctx)
		if err != nil {
			return fmt.Errorf("failed to get timer state: %w", err)
		}

		if state == "idle" {
			fmt.Println("No active timer")
			return nil
		}

		timer, err := appInstance.TrackerService.GetActiveTimer(ctx)
		if err != nil {
			return fmt.Errorf("failed to get active timer: %w", err)
		}

		// Get task for display
		task, _ := appInstance.TaskRepo.GetByID(ctx, timer.TaskID)
		taskTitle := fmt.Sprintf("Task #%d", timer.TaskID)
		if task != nil {
			taskTitle = task.Title
		}

		fmt.Printf("Timer Status: %s\n", state)
		fmt.Printf("  Task: %s\n", taskTitle)
		fmt.Printf("  Session: #%d\n", timer.SessionID)
		fmt.Printf("  Started: %s\n", timer.StartTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Elapsed: %s\n", formatDuration(timer.Elapsed()))
		return nil
	},
}

func init() {
	timerCmd.AddCommand(timerStartCmd)
	timerCmd.AddCommand(timerCheckpointCmd)
	timerCmd.AddCommand(timerStopCmd)
	timerCmd.AddCommand(timerPauseCmd)
	timerCmd.AddCommand(timerResumeCmd)
	timerCmd.AddCommand(timerDiscardCmd)
	timerCmd.AddCommand(timerStatusCmd)

	// Checkpoint flags
	timerCheckpointCmd.Flags().String("notes", "", "Notes for the logged segment")

	// Stop flags
	timerStopCmd.Flags().String("notes", "", "Notes for the logged entry")
}

// resolveClientID resolves a client by ID or name
func resolveClientID(ctx context.Context, idOrName string) (int64, error) {
	// Try to parse as ID first
	if id, err := strconv.ParseInt(idOrName, 10, 64); err == nil {
		// Verify client exists
		client, err := appInstance.ClientRepo.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		if client == nil {
			return 0, fmt.Errorf("client with ID %d not found", id)
		}
		return id, nil
	}

	// Try to find by name
	client, err := appInstance.ClientRepo.GetByName(ctx, idOrName)
	if err != nil {
		return 0, err
	}
	if client == nil {
		return 0, fmt.Errorf("client named '%s' not found", idOrName)
	}

	return client.ID, nil
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	} else if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
