package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avery/vaops/internal/domain"
	"github.com/avery/vaops/internal/service"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Manage invoices",
	Long: `Create, list, and manage invoice documents.

An invoice can link to a saved time report. The link is a reference only:
deleting either side never deletes the other, and an invoice whose report
was deleted simply renders without one.`,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var clientID *int64
		if cmd.Flags().Changed("client") {
			id, _ := cmd.Flags().GetInt64("client")
			clientID = &id
		}

		invoices, err := appInstance.InvoiceService.ListInvoices(ctx, clientID)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		if len(invoices) == 0 {
			fmt.Println("No invoices found")
			return nil
		}

		// Print table header
		fmt.Printf("%-5s %-30s %-20s %-12s %-10s\n", "ID", "Title", "Client", "Total", "Report")
		fmt.Println("--------------------------------------------------------------------------------")

		for _, doc := range invoices {
			client, _ := appInstance.ClientRepo.GetByID(ctx, doc.ClientID)
			clientName := fmt.Sprintf("Client #%d", doc.ClientID)
			if client != nil {
				clientName = client.Name
			}

			content, err := domain.MergeInvoiceContent(doc.Content)
			if err != nil {
				return fmt.Errorf("failed to decode invoice %d: %w", doc.ID, err)
			}

			reportCol := "-"
			if content.TimeReportID != 0 {
				reportCol = fmt.Sprintf("#%d", content.TimeReportID)
				if content.ShowTimeReportToClient {
					reportCol += " (shown)"
				}
			}

			fmt.Printf("%-5d %-30s %-20s $%-11.2f %-10s\n",
				doc.ID,
				truncate(doc.Title, 30),
				truncate(clientName, 20),
				content.Total(),
				reportCol,
			)
		}

		fmt.Printf("\nTotal: %d invoice(s)\n", len(invoices))
		return nil
	},
}

var invoicesCreateCmd = &cobra.Command{
	Use:   "create [client_id_or_name] [title]",
	Short: "Create a new invoice",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clientID, err := resolveClientID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve client: %w", err)
		}

		number, _ := cmd.Flags().GetString("number")
		taxRate, _ := cmd.Flags().GetFloat64("tax")
		notes, _ := cmd.Flags().GetString("notes")
		if !cmd.Flags().Changed("tax") {
			taxRate = appInstance.Config.Invoice.DefaultTaxRate
		}

		issueDate := time.Now()
		dueDate := issueDate.AddDate(0, 0, appInstance.Config.Invoice.DefaultDueDays)

		content := &domain.InvoiceContent{
			SchemaVersion: domain.InvoiceContentVersion,
			InvoiceNumber: number,
			IssueDate:     issueDate.Format("2006-01-02"),
			DueDate:       dueDate.Format("2006-01-02"),
			LineItems:     []domain.InvoiceLineItem{},
			TaxRate:       taxRate,
			Notes:         notes,
		}

		doc, err := appInstance.InvoiceService.CreateInvoice(ctx, clientID, args[1], content)
		if err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		fmt.Printf("✓ Invoice created: %s (ID: %d)\n", doc.Title, doc.ID)
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show invoice details",
	Long: `Show invoice details including the linked time report, if any.

With --client-view the output is rendered as the client would see it: the
linked report appears only when "show to client" is on.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice ID: %w", err)
		}

		doc, content, err := appInstance.InvoiceService.GetInvoice(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}

		client, _ := appInstance.ClientRepo.GetByID(ctx, doc.ClientID)
		clientName := fmt.Sprintf("Client #%d", doc.ClientID)
		if client != nil {
			clientName = client.Name
		}

		clientView, _ := cmd.Flags().GetBool("client-view")

		fmt.Println(strings.Repeat("=", 80))
		fmt.Printf("Invoice: %s\n", doc.Title)
		fmt.Println(strings.Repeat("=", 80))
		fmt.Printf("Client: %s\n", clientName)
		if content.InvoiceNumber != "" {
			fmt.Printf("Number: %s\n", content.InvoiceNumber)
		}
		if content.IssueDate != "" {
			fmt.Printf("Issued: %s\n", content.IssueDate)
		}
		if content.DueDate != "" {
			fmt.Printf("Due: %s\n", content.DueDate)
		}
		fmt.Println()

		// Print line items
		if len(content.LineItems) > 0 {
			fmt.Println("Line Items:")
			fmt.Println(strings.Repeat("-", 80))
			fmt.Printf("%-45s %-8s %-10s %s\n", "Description", "Qty", "Price", "Amount")
			fmt.Println(strings.Repeat("-", 80))

			for _, item := range content.LineItems {
				fmt.Printf("%-45s %8.2f $%9.2f $%9.2f\n",
					truncate(item.Description, 45),
					item.Quantity,
					item.UnitPrice,
					item.Amount,
				)
			}
			fmt.Println(strings.Repeat("-", 80))
		}

		// Print totals
		fmt.Printf("\n")
		fmt.Printf("Subtotal: $%.2f\n", content.Subtotal())
		if content.TaxRate > 0 {
			fmt.Printf("Tax (%.1f%%): $%.2f\n", content.TaxRate*100, content.Subtotal()*content.TaxRate)
		}
		fmt.Printf("Total: $%.2f\n", content.Total())

		// Resolve the linked report; a deleted report renders as "no report"
		report, err := appInstance.InvoiceService.TimeReportForInvoice(ctx, id, clientView)
		if err != nil {
			return fmt.Errorf("failed to resolve linked report: %w", err)
		}

		fmt.Println()
		if report == nil {
			if content.TimeReportID != 0 && !clientView {
				fmt.Println("Time Report: (no report — the linked report no longer exists)")
			} else {
				fmt.Println("Time Report: none")
			}
		} else {
			fmt.Printf("Time Report: %s\n", report.Name)
			fmt.Println(strings.Repeat("-", 80))
			printReportRows(service.GroupReportEntries(report.Entries))
			fmt.Println(strings.Repeat("-", 80))
			fmt.Printf("Report total: %s\n", formatDuration(time.Duration(report.TotalSeconds)*time.Second))
		}

		fmt.Println(strings.Repeat("=", 80))
		return nil
	},
}

var invoicesLinkCmd = &cobra.Command{
	Use:   "link [invoice_id] [report_id]",
	Short: "Link a saved time report to an invoice",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoiceID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice ID: %w", err)
		}

		reportID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid report ID: %w", err)
		}

		show, _ := cmd.Flags().GetBool("show")

		if err := appInstance.InvoiceService.LinkTimeReport(ctx, invoiceID, reportID, show); err != nil {
			return fmt.Errorf("failed to link report: %w", err)
		}

		fmt.Printf("✓ Report #%d linked to invoice #%d\n", reportID, invoiceID)
		if show {
			fmt.Println("  The report will be shown to the client")
		}
		return nil
	},
}

var invoicesUnlinkCmd = &cobra.Command{
	Use:   "unlink [invoice_id]",
	Short: "Remove the time report link from an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice ID: %w", err)
		}

		if err := appInstance.InvoiceService.UnlinkTimeReport(ctx, id); err != nil {
			return fmt.Errorf("failed to unlink report: %w", err)
		}

		fmt.Printf("✓ Report unlinked from invoice #%d\n", id)
		return nil
	},
}

var invoicesShowReportCmd = &cobra.Command{
	Use:   "show-report [invoice_id] [on|off]",
	Short: "Toggle client visibility of the linked time report",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice ID: %w", err)
		}

		var show bool
		switch args[1] {
		case "on":
			show = true
		case "off":
			show = false
		default:
			return fmt.Errorf("expected 'on' or 'off', got '%s'", args[1])
		}

		if err := appInstance.InvoiceService.SetShowTimeReport(ctx, id, show); err != nil {
			return fmt.Errorf("failed to update report visibility: %w", err)
		}

		if show {
			fmt.Printf("✓ Invoice #%d now shows its time report to the client\n", id)
		} else {
			fmt.Printf("✓ Invoice #%d no longer shows its time report to the client\n", id)
		}
		return nil
	},
}

func init() {
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesCreateCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesLinkCmd)
	invoicesCmd.AddCommand(invoicesUnlinkCmd)
	invoicesCmd.AddCommand(invoicesShowReportCmd)

	// List flags
	invoicesListCmd.Flags().Int64("client", 0, "Filter by client ID")

	// Create flags
	invoicesCreateCmd.Flags().String("number", "", "Invoice number")
	invoicesCreateCmd.Flags().Float64("tax", 0, "Tax rate (0.0 to 1.0)")
	invoicesCreateCmd.Flags().String("notes", "", "Invoice notes")

	// Show flags
	invoicesShowCmd.Flags().Bool("client-view", false, "Render as the client would see it")

	// Link flags
	invoicesLinkCmd.Flags().Bool("show", false, "Show the report to the client")
}
