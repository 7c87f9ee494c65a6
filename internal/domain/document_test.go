package domain

import (
	"testing"
)

func TestMergeInvoiceContentEmpty(t *testing.T) {
	content, err := MergeInvoiceContent("")
	if err != nil {
		t.Fatalf("MergeInvoiceContent failed: %v", err)
	}
	if content.SchemaVersion != InvoiceContentVersion {
		t.Errorf("expected schema version %d, got %d", InvoiceContentVersion, content.SchemaVersion)
	}
	if content.LineItems == nil || len(content.LineItems) != 0 {
		t.Error("expected empty line items slice")
	}
	if content.TimeReportID != 0 || content.ShowTimeReportToClient {
		t.Error("expected no report link on fresh content")
	}
}

func TestMergeInvoiceContentUpgradesVersion(t *testing.T) {
	content, err := MergeInvoiceContent(`{"schema_version":0,"invoice_number":"INV-001"}`)
	if err != nil {
		t.Fatalf("MergeInvoiceContent failed: %v", err)
	}
	if content.SchemaVersion != InvoiceContentVersion {
		t.Errorf("expected upgraded schema version, got %d", content.SchemaVersion)
	}
	if content.InvoiceNumber != "INV-001" {
		t.Errorf("existing fields must survive the merge, got %q", content.InvoiceNumber)
	}
	if content.LineItems == nil {
		t.Error("missing line items must default to an empty slice")
	}
}

func TestMergeInvoiceContentNormalizesOrphanShowFlag(t *testing.T) {
	// a show flag without a report id is contradictory stored state
	content, err := MergeInvoiceContent(`{"schema_version":1,"time_report_id":0,"show_time_report_to_client":true}`)
	if err != nil {
		t.Fatalf("MergeInvoiceContent failed: %v", err)
	}
	if content.ShowTimeReportToClient {
		t.Error("show flag must be forced off when no report is linked")
	}

	content, err = MergeInvoiceContent(`{"schema_version":1,"time_report_id":42,"show_time_report_to_client":true}`)
	if err != nil {
		t.Fatalf("MergeInvoiceContent failed: %v", err)
	}
	if !content.ShowTimeReportToClient {
		t.Error("show flag must survive when a report is linked")
	}
}

func TestMergeInvoiceContentBadJSON(t *testing.T) {
	if _, err := MergeInvoiceContent("{not json"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSetTimeReport(t *testing.T) {
	content := &InvoiceContent{SchemaVersion: InvoiceContentVersion}

	content.SetTimeReport(7, true)
	if content.TimeReportID != 7 || !content.ShowTimeReportToClient {
		t.Errorf("unexpected state after link: %+v", content)
	}

	content.SetTimeReport(0, true)
	if content.TimeReportID != 0 {
		t.Error("expected cleared report id")
	}
	if content.ShowTimeReportToClient {
		t.Error("clearing the link must reset the show flag regardless of the argument")
	}
}

func TestInvoiceTotals(t *testing.T) {
	content := &InvoiceContent{
		LineItems: []InvoiceLineItem{
			{Description: "Admin support", Quantity: 10, UnitPrice: 40, Amount: 400},
			{Description: "Research", Quantity: 2, UnitPrice: 50, Amount: 100},
		},
		TaxRate: 0.2,
	}

	if got := content.Subtotal(); got != 500 {
		t.Errorf("expected subtotal 500, got %v", got)
	}
	if got := content.Total(); got != 600 {
		t.Errorf("expected total 600, got %v", got)
	}
}

func TestInvoiceContentValidate(t *testing.T) {
	valid := &InvoiceContent{TaxRate: 0.2}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid content, got %v", err)
	}

	bad := &InvoiceContent{TaxRate: 1.5}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for tax rate above 1")
	}

	bad = &InvoiceContent{TimeReportID: -1}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative report id")
	}
}

func TestEncodeMergeRoundTrip(t *testing.T) {
	content := &InvoiceContent{
		SchemaVersion: InvoiceContentVersion,
		InvoiceNumber: "INV-007",
		TaxRate:       0.1,
		LineItems:     []InvoiceLineItem{{Description: "Support", Quantity: 1, UnitPrice: 80, Amount: 80}},
	}
	content.SetTimeReport(3, true)

	encoded, err := content.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := MergeInvoiceContent(encoded)
	if err != nil {
		t.Fatalf("MergeInvoiceContent failed: %v", err)
	}
	if decoded.InvoiceNumber != "INV-007" || decoded.TimeReportID != 3 || !decoded.ShowTimeReportToClient {
		t.Errorf("round trip lost fields: %+v", decoded)
	}
}

func TestNewInvoiceDocument(t *testing.T) {
	content := &InvoiceContent{SchemaVersion: InvoiceContentVersion}

	doc, err := NewInvoiceDocument(1, "  March retainer  ", content)
	if err != nil {
		t.Fatalf("NewInvoiceDocument failed: %v", err)
	}
	if doc.Kind != DocumentKindInvoice {
		t.Errorf("expected invoice kind, got %q", doc.Kind)
	}
	if doc.Title != "March retainer" {
		t.Errorf("expected trimmed title, got %q", doc.Title)
	}

	if _, err := NewInvoiceDocument(0, "x", content); err == nil {
		t.Error("expected error for missing client id")
	}
	if _, err := NewInvoiceDocument(1, "   ", content); err == nil {
		t.Error("expected error for blank title")
	}
}
