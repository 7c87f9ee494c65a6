package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avery/vaops/internal/service"
	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Generate and manage time reports",
	Long: `Preview, save, and inspect time reports.

A preview aggregates a client's time entries for a date range. Saving a
preview freezes it into an immutable report: later edits or deletions of the
underlying entries never change a saved report.`,
}

var reportsGenerateCmd = &cobra.Command{
	Use:   "generate [client_id_or_name]",
	Short: "Preview a time report for a client and date range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clientID, err := resolveClientID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve client: %w", err)
		}

		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")

		from, err := parseDate(fromStr)
		if err != nil {
			return fmt.Errorf("invalid from date: %w", err)
		}
		to, err := parseDate(toStr)
		if err != nil {
			return fmt.Errorf("invalid to date: %w", err)
		}

		includeNotes, _ := cmd.Flags().GetBool("notes")

		preview, err := appInstance.ReportService.Preview(ctx, clientID, from, to, includeNotes)
		if err != nil {
			return fmt.Errorf("failed to generate preview: %w", err)
		}

		// Render the preview through the same grouping as a saved report
		printReportRows(service.GroupReportEntries(preview.Snapshot()))
		fmt.Printf("\nEntries: %d\n", preview.EntryCount)
		fmt.Printf("Total: %s\n", formatDuration(time.Duration(preview.TotalSeconds)*time.Second))

		save, _ := cmd.Flags().GetBool("save")
		if !save {
			return nil
		}

		// Resolve the report name: explicit flag or the suggested default
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name, err = appInstance.ReportService.SuggestName(ctx, clientID, from, to)
			if err != nil {
				return fmt.Errorf("failed to suggest report name: %w", err)
			}
		}

		report, err := appInstance.ReportService.Save(ctx, preview, name)
		if err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}

		fmt.Printf("\n✓ Report saved: %s (ID: %d)\n", report.Name, report.ID)
		return nil
	},
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var clientID *int64
		if cmd.Flags().Changed("client") {
			id, _ := cmd.Flags().GetInt64("client")
			clientID = &id
		}

		reports, err := appInstance.ReportService.List(ctx, clientID)
		if err != nil {
			return fmt.Errorf("failed to list reports: %w", err)
		}

		if len(reports) == 0 {
			fmt.Println("No reports found")
			return nil
		}

		// Print table header
		fmt.Printf("%-5s %-35s %-20s %-23s %-10s\n", "ID", "Name", "Client", "Period", "Total")
		fmt.Println("---------------------------------------------------------------------------------------------")

		for _, report := range reports {
			client, _ := appInstance.ClientRepo.GetByID(ctx, report.ClientID)
			clientName := fmt.Sprintf("Client #%d", report.ClientID)
			if client != nil {
				clientName = client.Name
			}

			period := fmt.Sprintf("%s - %s",
				report.DateFrom.Format("2006-01-02"),
				report.DateTo.Format("2006-01-02"),
			)

			fmt.Printf("%-5d %-35s %-20s %-23s %-10s\n",
				report.ID,
				truncate(report.Name, 35),
				truncate(clientName, 20),
				period,
				formatDuration(time.Duration(report.TotalSeconds)*time.Second),
			)
		}

		fmt.Printf("\nTotal: %d report(s)\n", len(reports))
		return nil
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a saved report with grouped entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid report ID: %w", err)
		}

		report, err := appInstance.ReportService.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get report: %w", err)
		}
		if report == nil {
			return fmt.Errorf("report not found")
		}

		client, _ := appInstance.ClientRepo.GetByID(ctx, report.ClientID)
		clientName := fmt.Sprintf("Client #%d", report.ClientID)
		if client != nil {
			clientName = client.Name
		}

		fmt.Println(strings.Repeat("=", 80))
		fmt.Printf("Report: %s\n", report.Name)
		fmt.Println(strings.Repeat("=", 80))
		fmt.Printf("Client: %s\n", clientName)
		fmt.Printf("Period: %s to %s\n",
			report.DateFrom.Format("2006-01-02"),
			report.DateTo.Format("2006-01-02"),
		)
		fmt.Printf("Created: %s\n", report.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Println()

		printReportRows(service.GroupReportEntries(report.Entries))

		fmt.Println(strings.Repeat("-", 80))
		fmt.Printf("Entries: %d\n", report.EntryCount)
		fmt.Printf("Total: %s\n", formatDuration(time.Duration(report.TotalSeconds)*time.Second))
		fmt.Println(strings.Repeat("=", 80))
		return nil
	},
}

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid report ID: %w", err)
		}

		report, err := appInstance.ReportService.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get report: %w", err)
		}
		if report == nil {
			return fmt.Errorf("report not found")
		}

		if !confirmPrompt(fmt.Sprintf("Delete report '%s'? Invoices linking to it will show no report.", report.Name)) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.ReportService.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete report: %w", err)
		}

		fmt.Printf("✓ Report deleted: %s\n", report.Name)
		return nil
	},
}

// printReportRows renders grouped report rows, indenting session members
// under their summary row
func printReportRows(rows []service.ReportRow) {
	fmt.Printf("%-12s %-45s %s\n", "Date", "Task", "Duration")
	fmt.Println(strings.Repeat("-", 80))

	for _, row := range rows {
		indent := ""
		if row.Level > 0 {
			indent = "  "
		}

		title := row.TaskTitle
		if row.IsSessionSummary {
			title = title + " (session)"
		}

		fmt.Printf("%-12s %-45s %s\n",
			row.EntryDate.Format("2006-01-02"),
			indent+truncate(title, 45-len(indent)),
			formatDuration(time.Duration(row.DurationSeconds)*time.Second),
		)

		if row.Notes != nil && *row.Notes != "" {
			fmt.Printf("%-12s %s  %s\n", "", indent, truncate(*row.Notes, 60))
		}
	}
}

func init() {
	reportsCmd.AddCommand(reportsGenerateCmd)
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsDeleteCmd)

	// Generate flags
	reportsGenerateCmd.Flags().String("from", "", "Range start date (required)")
	reportsGenerateCmd.Flags().String("to", "", "Range end date (required)")
	reportsGenerateCmd.Flags().Bool("notes", false, "Include entry notes")
	reportsGenerateCmd.Flags().Bool("save", false, "Save the preview as a report")
	reportsGenerateCmd.Flags().String("name", "", "Report name (defaults to a suggested name)")
	reportsGenerateCmd.MarkFlagRequired("from")
	reportsGenerateCmd.MarkFlagRequired("to")

	// List flags
	reportsListCmd.Flags().Int64("client", 0, "Filter by client ID")
}
