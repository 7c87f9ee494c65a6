package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/avery/vaops/internal/domain"
	"github.com/spf13/cobra"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Manage time entries",
	Long:  `List, add, edit, and delete time entries.`,
}

var entriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// Parse filters
		var taskID *int64
		if cmd.Flags().Changed("task") {
			id, _ := cmd.Flags().GetInt64("task")
			taskID = &id
		}

		var start, end *time.Time
		if cmd.Flags().Changed("start") {
			startStr, _ := cmd.Flags().GetString("start")
			t, err := parseDate(startStr)
			if err != nil {
				return fmt.Errorf("invalid start date: %w", err)
			}
			start = &t
		}
		if cmd.Flags().Changed("end") {
			endStr, _ := cmd.Flags().GetString("end")
			t, err := parseDate(endStr)
			if err != nil {
				return fmt.Errorf("invalid end date: %w", err)
			}
			end = &t
		}

		entries, err := appInstance.EntryRepo.List(ctx, taskID, start, end)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No entries found")
			return nil
		}

		// Print table header
		fmt.Printf("%-5s %-30s %-17s %-10s %-9s\n", "ID", "Task", "Start", "Duration", "Session")
		fmt.Println("--------------------------------------------------------------------------")

		var totalDuration time.Duration

		// Print entries
		for _, entry := range entries {
			task, _ := appInstance.TaskRepo.GetByID(ctx, entry.TaskID)
			taskTitle := fmt.Sprintf("Task #%d", entry.TaskID)
			if task != nil {
				taskTitle = task.Title
			}

			session := "-"
			if entry.SessionID != nil {
				session = fmt.Sprintf("#%d", *entry.SessionID)
			}

			duration := entry.Duration()

			fmt.Printf("%-5d %-30s %-17s %-10s %-9s\n",
				entry.ID,
				truncate(taskTitle, 30),
				entry.StartTime.Format("2006-01-02 15:04"),
				formatDuration(duration),
				session,
			)

			totalDuration += duration
		}

		fmt.Println("--------------------------------------------------------------------------")
		fmt.Printf("Total: %d entries, %s\n", len(entries), formatDuration(totalDuration))
		return nil
	},
}

var entriesAddCmd = &cobra.Command{
	Use:   "add [task_id] [start_time] [end_time] [notes]",
	Short: "Add a time entry manually",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		taskID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		task, err := appInstance.TaskRepo.GetByID(ctx, taskID)
		if err != nil {
			return fmt.Errorf("failed to get task: %w", err)
		}
		if task == nil {
			return fmt.Errorf("task not found")
		}

		// Parse times
		startTime, err := parseDateTime(args[1])
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}

		endTime, err := parseDateTime(args[2])
		if err != nil {
			return fmt.Errorf("invalid end time: %w", err)
		}

		// Get notes
		notes := ""
		if len(args) > 3 {
			notes = args[3]
		}

		// Manual entries have no work session
		entry := domain.NewTimeEntry(taskID, startTime, endTime)
		entry.Notes = notes

		if err := entry.Validate(); err != nil {
			return fmt.Errorf("invalid entry: %w", err)
		}

		if err := appInstance.EntryRepo.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to create entry: %w", err)
		}

		fmt.Printf("✓ Time entry created (ID: %d)\n", entry.ID)
		fmt.Printf("  Task: %s\n", task.Title)
		fmt.Printf("  Duration: %s\n", formatDuration(entry.Duration()))
		return nil
	},
}

var entriesEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a time entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry ID: %w", err)
		}

		entry, err := appInstance.EntryRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get entry: %w", err)
		}
		if entry == nil {
			return fmt.Errorf("entry not found")
		}

		// Update fields if flags provided
		if cmd.Flags().Changed("notes") {
			notes, _ := cmd.Flags().GetString("notes")
			entry.Notes = notes
		}
		if cmd.Flags().Changed("start") {
			startStr, _ := cmd.Flags().GetString("start")
			start, err := parseDateTime(startStr)
			if err != nil {
				return fmt.Errorf("invalid start time: %w", err)
			}
			entry.StartTime = start
		}
		if cmd.Flags().Changed("end") {
			endStr, _ := cmd.Flags().GetString("end")
			end, err := parseDateTime(endStr)
			if err != nil {
				return fmt.Errorf("invalid end time: %w", err)
			}
			entry.EndTime = end
		}
		entry.DurationMinutes = int64(entry.EndTime.Sub(entry.StartTime).Minutes())

		if err := entry.Validate(); err != nil {
			return fmt.Errorf("invalid entry: %w", err)
		}

		if err := appInstance.EntryRepo.Update(ctx, entry); err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}

		fmt.Printf("✓ Entry updated (ID: %d)\n", entry.ID)
		return nil
	},
}

var entriesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a time entry",
	Long: `Delete a time entry. Saved reports keep their own frozen copies, so
deleting an entry never changes an existing report.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry ID: %w", err)
		}

		if err := appInstance.EntryRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}

		fmt.Printf("✓ Entry deleted (ID: %d)\n", id)
		return nil
	},
}

func init() {
	entriesCmd.AddCommand(entriesListCmd)
	entriesCmd.AddCommand(entriesAddCmd)
	entriesCmd.AddCommand(entriesEditCmd)
	entriesCmd.AddCommand(entriesDeleteCmd)

	// List flags
	entriesListCmd.Flags().Int64("task", 0, "Filter by task ID")
	entriesListCmd.Flags().String("start", "", "Filter by start date (YYYY-MM-DD or 'today')")
	entriesListCmd.Flags().String("end", "", "Filter by end date (YYYY-MM-DD or 'today')")

	// Edit flags
	entriesEditCmd.Flags().String("notes", "", "New notes")
	entriesEditCmd.Flags().String("start", "", "New start time")
	entriesEditCmd.Flags().String("end", "", "New end time")
}

// parseDate parses a date string in various formats
func parseDate(s string) (time.Time, error) {
	switch s {
	case "today":
		return time.Now().Truncate(24 * time.Hour), nil
	case "yesterday":
		return time.Now().Add(-24 * time.Hour).Truncate(24 * time.Hour), nil
	default:
		// Try YYYY-MM-DD format
		t, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("expected format: YYYY-MM-DD, 'today', or 'yesterday'")
		}
		return t, nil
	}
}

// parseDateTime parses a datetime string in various formats
func parseDateTime(s string) (time.Time, error) {
	// Try ISO format with time
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
		return t, nil
	}

	// Try date + space + time
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local); err == nil {
		return t, nil
	}

	// Try date + space + time (no seconds)
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local); err == nil {
		return t, nil
	}

	// Try just date (assume midnight)
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("expected format: YYYY-MM-DD or YYYY-MM-DD HH:MM:SS")
}
