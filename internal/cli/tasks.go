package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/avery/vaops/internal/domain"
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage client tasks",
	Long:  `List, add, and archive tasks. Time is always tracked against a task.`,
}

var tasksListCmd = &cobra.Command{
	Use:   "list [client_id_or_name]",
	Short: "List tasks for a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clientID, err := resolveClientID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve client: %w", err)
		}

		includeArchived, _ := cmd.Flags().GetBool("archived")

		tasks, err := appInstance.TaskRepo.ListByClient(ctx, clientID, includeArchived)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks found")
			return nil
		}

		// Print table header
		fmt.Printf("%-5s %-50s %-10s\n", "ID", "Title", "Status")
		fmt.Println("-------------------------------------------------------------------")

		for _, task := range tasks {
			status := "Active"
			if task.IsArchived {
				status = "Archived"
			}
			fmt.Printf("%-5d %-50s %-10s\n",
				task.ID,
				truncate(task.Title, 50),
				status,
			)
		}

		fmt.Printf("\nTotal: %d task(s)\n", len(tasks))
		return nil
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add [client_id_or_name] [title]",
	Short: "Add a new task for a client",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clientID, err := resolveClientID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve client: %w", err)
		}

		task := domain.NewTask(clientID, args[1])
		if err := task.Validate(); err != nil {
			return fmt.Errorf("invalid task: %w", err)
		}

		if err := appInstance.TaskRepo.Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		fmt.Printf("✓ Task created: %s (ID: %d)\n", task.Title, task.ID)
		return nil
	},
}

var tasksArchiveCmd = &cobra.Command{
	Use:   "archive [id]",
	Short: "Archive a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		task, err := appInstance.TaskRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get task: %w", err)
		}
		if task == nil {
			return fmt.Errorf("task not found")
		}

		if err := appInstance.TaskRepo.Archive(ctx, id); err != nil {
			return fmt.Errorf("failed to archive task: %w", err)
		}

		fmt.Printf("✓ Task archived: %s\n", task.Title)
		return nil
	},
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksArchiveCmd)

	// List flags
	tasksListCmd.Flags().Bool("archived", false, "Include archived tasks")
}
