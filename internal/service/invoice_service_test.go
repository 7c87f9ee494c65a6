package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avery/vaops/internal/domain"
)

func newInvoiceFixture(t *testing.T) (*invoiceService, *mockDocRepo, *mockReportRepo) {
	t.Helper()

	clientRepo := &mockClientRepo{clients: map[int64]*domain.Client{
		1: {ID: 1, Name: "Acme Co"},
		2: {ID: 2, Name: "Beta LLC"},
	}}
	docRepo := newMockDocRepo()
	reportRepo := newMockReportRepo()

	svc := &invoiceService{
		docRepo:    docRepo,
		reportRepo: reportRepo,
		clientRepo: clientRepo,
	}
	return svc, docRepo, reportRepo
}

func seedReport(repo *mockReportRepo, clientID int64, name string) *domain.TimeReport {
	report := &domain.TimeReport{
		VAUserID:     "va-1",
		ClientID:     clientID,
		Name:         name,
		DateFrom:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local),
		DateTo:       time.Date(2026, 3, 31, 0, 0, 0, 0, time.Local),
		TotalSeconds: 3600,
		EntryCount:   1,
		CreatedAt:    time.Now(),
	}
	entries := []*domain.TimeReportEntry{
		{EntryDate: report.DateFrom, TaskTitle: "Research", DurationSeconds: 3600},
	}
	repo.Create(context.Background(), report, entries)
	return report
}

func TestCreateInvoice(t *testing.T) {
	svc, _, _ := newInvoiceFixture(t)
	ctx := context.Background()

	doc, err := svc.CreateInvoice(ctx, 1, "March retainer", nil)
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}
	if doc.ID == 0 {
		t.Error("expected document id assigned")
	}
	if doc.Kind != domain.DocumentKindInvoice {
		t.Errorf("expected invoice kind, got %q", doc.Kind)
	}

	_, content, err := svc.GetInvoice(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetInvoice failed: %v", err)
	}
	if content.SchemaVersion != domain.InvoiceContentVersion {
		t.Errorf("expected current schema version, got %d", content.SchemaVersion)
	}
	if content.TimeReportID != 0 || content.ShowTimeReportToClient {
		t.Error("new invoice must start without a report link")
	}
}

func TestCreateInvoiceUnknownClient(t *testing.T) {
	svc, _, _ := newInvoiceFixture(t)

	_, err := svc.CreateInvoice(context.Background(), 99, "Ghost", nil)
	if !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestLinkTimeReport(t *testing.T) {
	svc, _, reportRepo := newInvoiceFixture(t)
	ctx := context.Background()

	report := seedReport(reportRepo, 1, "March 2026")
	doc, err := svc.CreateInvoice(ctx, 1, "March retainer", nil)
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}

	if err := svc.LinkTimeReport(ctx, doc.ID, report.ID, true); err != nil {
		t.Fatalf("LinkTimeReport failed: %v", err)
	}

	_, content, err := svc.GetInvoice(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetInvoice failed: %v", err)
	}
	if content.TimeReportID != report.ID {
		t.Errorf("expected link to report %d, got %d", report.ID, content.TimeReportID)
	}
	if !content.ShowTimeReportToClient {
		t.Error("expected show flag set")
	}
}

func TestLinkTimeReportClientMismatch(t *testing.T) {
	svc, _, reportRepo := newInvoiceFixture(t)
	ctx := context.Background()

	report := seedReport(reportRepo, 2, "Beta work")
	doc, _ := svc.CreateInvoice(ctx, 1, "March retainer", nil)

	err := svc.LinkTimeReport(ctx, doc.ID, report.ID, false)
	if !errors.Is(err, ErrReportClientMismatch) {
		t.Fatalf("expected ErrReportClientMismatch, got %v", err)
	}

	_, content, _ := svc.GetInvoice(ctx, doc.ID)
	if content.TimeReportID != 0 {
		t.Error("failed link must not be persisted")
	}
}

func TestLinkTimeReportMissingReport(t *testing.T) {
	svc, _, _ := newInvoiceFixture(t)
	ctx := context.Background()

	doc, _ := svc.CreateInvoice(ctx, 1, "March retainer", nil)
	err := svc.LinkTimeReport(ctx, doc.ID, 404, false)
	if !errors.Is(err, ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
}

func TestUnlinkResetsShowFlag(t *testing.T) {
	svc, _, reportRepo := newInvoiceFixture(t)
	ctx := context.Background()

	report := seedReport(reportRepo, 1, "March 2026")
	doc, _ := svc.CreateInvoice(ctx, 1, "March retainer", nil)
	if err := svc.LinkTimeReport(ctx, doc.ID, report.ID, true); err != nil {
		t.Fatalf("LinkTimeReport failed: %v", err)
	}

	if err := svc.UnlinkTimeReport(ctx, doc.ID); err != nil {
		t.Fatalf("UnlinkTimeReport failed: %v", err)
	}

	_, content, _ := svc.GetInvoice(ctx, doc.ID)
	if content.TimeReportID != 0 {
		t.Error("expected cleared report id")
	}
	if content.ShowTimeReportToClient {
		t.Error("show flag must reset when the link is cleared")
	}
}

func TestSetShowTimeReportRequiresLink(t *testing.T) {
	svc, _, reportRepo := newInvoiceFixture(t)
	ctx := context.Background()

	doc, _ := svc.CreateInvoice(ctx, 1, "March retainer", nil)
	if err := svc.SetShowTimeReport(ctx, doc.ID, true); !errors.Is(err, ErrNoReportLinked) {
		t.Fatalf("expected ErrNoReportLinked, got %v", err)
	}

	report := seedReport(reportRepo, 1, "March 2026")
	if err := svc.LinkTimeReport(ctx, doc.ID, report.ID, false); err != nil {
		t.Fatalf("LinkTimeReport failed: %v", err)
	}
	if err := svc.SetShowTimeReport(ctx, doc.ID, true); err != nil {
		t.Fatalf("SetShowTimeReport failed: %v", err)
	}

	_, content, _ := svc.GetInvoice(ctx, doc.ID)
	if !content.ShowTimeReportToClient {
		t.Error("expected show flag on")
	}
}

func TestTimeReportForInvoice(t *testing.T) {
	svc, _, reportRepo := newInvoiceFixture(t)
	ctx := context.Background()

	report := seedReport(reportRepo, 1, "March 2026")
	doc, _ := svc.CreateInvoice(ctx, 1, "March retainer", nil)

	// no link yet
	got, err := svc.TimeReportForInvoice(ctx, doc.ID, false)
	if err != nil {
		t.Fatalf("TimeReportForInvoice failed: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil report before linking")
	}

	if err := svc.LinkTimeReport(ctx, doc.ID, report.ID, false); err != nil {
		t.Fatalf("LinkTimeReport failed: %v", err)
	}

	// internal view sees the report even with disclosure off
	got, err = svc.TimeReportForInvoice(ctx, doc.ID, false)
	if err != nil {
		t.Fatalf("TimeReportForInvoice failed: %v", err)
	}
	if got == nil || got.ID != report.ID {
		t.Fatal("expected linked report in internal view")
	}
	if len(got.Entries) != 1 {
		t.Errorf("expected entries loaded with the report, got %d", len(got.Entries))
	}

	// client view hides it until disclosure is on
	got, err = svc.TimeReportForInvoice(ctx, doc.ID, true)
	if err != nil {
		t.Fatalf("TimeReportForInvoice failed: %v", err)
	}
	if got != nil {
		t.Fatal("expected hidden report in client view")
	}

	if err := svc.SetShowTimeReport(ctx, doc.ID, true); err != nil {
		t.Fatalf("SetShowTimeReport failed: %v", err)
	}
	got, err = svc.TimeReportForInvoice(ctx, doc.ID, true)
	if err != nil {
		t.Fatalf("TimeReportForInvoice failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected report visible in client view after disclosure")
	}
}

func TestTimeReportForInvoiceStaleLink(t *testing.T) {
	svc, _, reportRepo := newInvoiceFixture(t)
	ctx := context.Background()

	report := seedReport(reportRepo, 1, "March 2026")
	doc, _ := svc.CreateInvoice(ctx, 1, "March retainer", nil)
	if err := svc.LinkTimeReport(ctx, doc.ID, report.ID, true); err != nil {
		t.Fatalf("LinkTimeReport failed: %v", err)
	}

	// deleting the report leaves the invoice's weak reference dangling
	if err := reportRepo.Delete(ctx, report.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := svc.TimeReportForInvoice(ctx, doc.ID, false)
	if err != nil {
		t.Fatalf("stale link must not be an error, got %v", err)
	}
	if got != nil {
		t.Fatal("expected nil report for a stale link")
	}

	// the raw reference survives so the UI can say the report is gone
	_, content, _ := svc.GetInvoice(ctx, doc.ID)
	if content.TimeReportID != report.ID {
		t.Error("stale reference should remain on the invoice")
	}
}

func TestGetInvoiceNotFound(t *testing.T) {
	svc, _, _ := newInvoiceFixture(t)

	_, _, err := svc.GetInvoice(context.Background(), 404)
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}
