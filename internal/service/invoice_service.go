package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/avery/vaops/internal/domain"
	"github.com/avery/vaops/internal/repository"
)

var (
	ErrDocumentNotFound     = errors.New("document not found")
	ErrNotAnInvoice         = errors.New("document is not an invoice")
	ErrReportNotFound       = errors.New("time report not found")
	ErrReportClientMismatch = errors.New("time report belongs to a different client")
	ErrNoReportLinked       = errors.New("no time report linked to invoice")
)

// InvoiceService manages invoice documents and their optional weak reference
// to a saved time report. The reference is lookup-only: deleting an invoice
// never deletes the report and vice versa.
type InvoiceService interface {
	// CreateInvoice creates a new invoice document for a client
	CreateInvoice(ctx context.Context, clientID int64, title string, content *domain.InvoiceContent) (*domain.ClientDocument, error)

	// GetInvoice loads an invoice with its decoded, default-merged content
	GetInvoice(ctx context.Context, id int64) (*domain.ClientDocument, *domain.InvoiceContent, error)

	// ListInvoices lists invoice documents, optionally filtered by client
	ListInvoices(ctx context.Context, clientID *int64) ([]*domain.ClientDocument, error)

	// LinkTimeReport attaches a saved report to an invoice. The report must
	// belong to the invoice's client.
	LinkTimeReport(ctx context.Context, documentID, reportID int64, showToClient bool) error

	// UnlinkTimeReport clears the report reference and, in the same update,
	// resets the show-to-client flag
	UnlinkTimeReport(ctx context.Context, documentID int64) error

	// SetShowTimeReport toggles client-facing disclosure of the linked report
	SetShowTimeReport(ctx context.Context, documentID int64, show bool) error

	// TimeReportForInvoice resolves the invoice's linked report with entries
	// for rendering. Returns nil (not an error) when no report is linked,
	// when the linked report has been deleted, or when clientFacing is set
	// and disclosure is off.
	TimeReportForInvoice(ctx context.Context, documentID int64, clientFacing bool) (*domain.TimeReport, error)
}

type invoiceService struct {
	docRepo    repository.DocumentRepository
	reportRepo repository.TimeReportRepository
	clientRepo repository.ClientRepository
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	docRepo repository.DocumentRepository,
	reportRepo repository.TimeReportRepository,
	clientRepo repository.ClientRepository,
) InvoiceService {
	return &invoiceService{
		docRepo:    docRepo,
		reportRepo: reportRepo,
		clientRepo: clientRepo,
	}
}

func (s *invoiceService) CreateInvoice(
	ctx context.Context,
	clientID int64,
	title string,
	content *domain.InvoiceContent,
) (*domain.ClientDocument, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	if content == nil {
		content = &domain.InvoiceContent{
			SchemaVersion: domain.InvoiceContentVersion,
			LineItems:     []domain.InvoiceLineItem{},
		}
	}
	if err := content.Validate(); err != nil {
		return nil, fmt.Errorf("invalid invoice content: %w", err)
	}

	doc, err := domain.NewInvoiceDocument(clientID, title, content)
	if err != nil {
		return nil, err
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id int64) (*domain.ClientDocument, *domain.InvoiceContent, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if doc == nil {
		return nil, nil, ErrDocumentNotFound
	}
	if doc.Kind != domain.DocumentKindInvoice {
		return nil, nil, ErrNotAnInvoice
	}

	content, err := domain.MergeInvoiceContent(doc.Content)
	if err != nil {
		return nil, nil, err
	}

	return doc, content, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, clientID *int64) ([]*domain.ClientDocument, error) {
	kind := domain.DocumentKindInvoice
	return s.docRepo.List(ctx, clientID, &kind)
}

func (s *invoiceService) LinkTimeReport(ctx context.Context, documentID, reportID int64, showToClient bool) error {
	doc, content, err := s.GetInvoice(ctx, documentID)
	if err != nil {
		return err
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return err
	}
	if report == nil {
		return ErrReportNotFound
	}
	if report.ClientID != doc.ClientID {
		return fmt.Errorf("%w: report %d", ErrReportClientMismatch, reportID)
	}

	content.SetTimeReport(reportID, showToClient)
	return s.saveContent(ctx, doc.ID, content)
}

func (s *invoiceService) UnlinkTimeReport(ctx context.Context, documentID int64) error {
	doc, content, err := s.GetInvoice(ctx, documentID)
	if err != nil {
		return err
	}

	// SetTimeReport(0, ...) also forces the disclosure flag off so a stale
	// "show to client" can never survive the cleared reference
	content.SetTimeReport(0, false)
	return s.saveContent(ctx, doc.ID, content)
}

func (s *invoiceService) SetShowTimeReport(ctx context.Context, documentID int64, show bool) error {
	doc, content, err := s.GetInvoice(ctx, documentID)
	if err != nil {
		return err
	}

	if content.TimeReportID == 0 {
		return ErrNoReportLinked
	}

	content.ShowTimeReportToClient = show
	return s.saveContent(ctx, doc.ID, content)
}

func (s *invoiceService) TimeReportForInvoice(ctx context.Context, documentID int64, clientFacing bool) (*domain.TimeReport, error) {
	_, content, err := s.GetInvoice(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if content.TimeReportID == 0 {
		return nil, nil
	}
	if clientFacing && !content.ShowTimeReportToClient {
		return nil, nil
	}

	report, err := s.reportRepo.GetByID(ctx, content.TimeReportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		// The linked report was deleted; the invoice renders without it
		return nil, nil
	}

	entries, err := s.reportRepo.GetEntries(ctx, report.ID)
	if err != nil {
		return nil, err
	}
	report.Entries = entries

	return report, nil
}

func (s *invoiceService) saveContent(ctx context.Context, documentID int64, content *domain.InvoiceContent) error {
	encoded, err := content.Encode()
	if err != nil {
		return err
	}
	return s.docRepo.UpdateContent(ctx, documentID, encoded)
}
