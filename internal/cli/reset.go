package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset data in the database",
	Long: `Reset data in the database.

Examples:
  vaops reset entries    # Delete all time entries, sessions, and timer state
  vaops reset reports    # Delete all saved reports
  vaops reset all        # Wipe everything: clients, tasks, entries, reports, invoices`,
}

var resetEntriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Delete all time entries, work sessions, and timer state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL time entries, work sessions, and timer state. Saved reports are kept. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		db := appInstance.DB

		// Order matters due to foreign keys
		tables := []string{
			"active_timer",
			"time_entries",
			"work_sessions",
		}

		for _, table := range tables {
			if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		fmt.Println("All time entries, work sessions, and timer state have been deleted.")
		return nil
	},
}

var resetReportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Delete all saved reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL saved reports. Invoices linking to them will show no report. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		db := appInstance.DB

		tables := []string{
			"time_report_entries",
			"time_reports",
		}

		for _, table := range tables {
			if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		fmt.Println("All saved reports have been deleted.")
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete ALL data: clients, tasks, entries, reports, invoices, everything",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL data (clients, tasks, entries, reports, invoices, everything). Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		db := appInstance.DB

		// Order matters due to foreign keys
		tables := []string{
			"active_timer",
			"time_entries",
			"work_sessions",
			"time_report_entries",
			"time_reports",
			"client_documents",
			"tasks",
			"clients",
		}

		for _, table := range tables {
			if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		fmt.Println("All data has been deleted.")
		return nil
	},
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	resetCmd.AddCommand(resetEntriesCmd)
	resetCmd.AddCommand(resetReportsCmd)
	resetCmd.AddCommand(resetAllCmd)
}
