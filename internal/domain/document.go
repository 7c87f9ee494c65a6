package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type DocumentKind string

const (
	DocumentKindInvoice DocumentKind = "invoice"
)

// InvoiceContentVersion is the current invoice content schema version.
// Content loaded at an older version is upgraded by MergeInvoiceContent.
const InvoiceContentVersion = 1

// ClientDocument is a document belonging to a client. Its content is a
// versioned JSON blob whose shape depends on Kind.
type ClientDocument struct {
	ID        int64
	ClientID  int64
	Kind      DocumentKind
	Title     string
	Content   string // raw JSON, decode with MergeInvoiceContent
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InvoiceContent is the explicit schema for invoice document content.
// TimeReportID is a weak reference to a saved TimeReport (0 = none); it
// relates the invoice to the report for display, never ownership.
type InvoiceContent struct {
	SchemaVersion int               `json:"schema_version"`
	InvoiceNumber string            `json:"invoice_number"`
	IssueDate     string            `json:"issue_date"` // YYYY-MM-DD
	DueDate       string            `json:"due_date"`
	LineItems     []InvoiceLineItem `json:"line_items"`
	TaxRate       float64           `json:"tax_rate"`
	Notes         string            `json:"notes"`

	TimeReportID           int64 `json:"time_report_id"`
	ShowTimeReportToClient bool  `json:"show_time_report_to_client"`
}

// InvoiceLineItem is one billed line on an invoice.
type InvoiceLineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// Subtotal sums the line item amounts
func (c *InvoiceContent) Subtotal() float64 {
	total := 0.0
	for _, item := range c.LineItems {
		total += item.Amount
	}
	return total
}

// Total returns the subtotal plus tax
func (c *InvoiceContent) Total() float64 {
	sub := c.Subtotal()
	return sub + sub*c.TaxRate
}

// SetTimeReport links or clears the report reference. Clearing the link
// always resets the client-visibility flag so a stale "show to client"
// can never survive a cleared reference.
func (c *InvoiceContent) SetTimeReport(reportID int64, showToClient bool) {
	c.TimeReportID = reportID
	if reportID == 0 {
		c.ShowTimeReportToClient = false
	} else {
		c.ShowTimeReportToClient = showToClient
	}
}

// Validate returns an error if the content is invalid
func (c *InvoiceContent) Validate() error {
	if c.TaxRate < 0 || c.TaxRate > 1 {
		return errors.New("tax rate must be between 0 and 1")
	}
	if c.TimeReportID < 0 {
		return errors.New("time report ID cannot be negative")
	}
	return nil
}

// MergeInvoiceContent decodes stored invoice content, fills defaults for
// missing fields, and upgrades older schema versions. It normalizes the
// report linkage invariant: a cleared time_report_id forces the
// show-to-client flag off. Empty input yields a fresh content struct.
func MergeInvoiceContent(raw string) (*InvoiceContent, error) {
	content := &InvoiceContent{
		SchemaVersion: InvoiceContentVersion,
		LineItems:     []InvoiceLineItem{},
	}

	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), content); err != nil {
			return nil, fmt.Errorf("failed to decode invoice content: %w", err)
		}
	}

	if content.SchemaVersion < InvoiceContentVersion {
		content.SchemaVersion = InvoiceContentVersion
	}
	if content.LineItems == nil {
		content.LineItems = []InvoiceLineItem{}
	}
	if content.TimeReportID == 0 {
		content.ShowTimeReportToClient = false
	}

	return content, nil
}

// Encode serializes the content for storage
func (c *InvoiceContent) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode invoice content: %w", err)
	}
	return string(data), nil
}

// NewInvoiceDocument creates a new invoice document for a client
func NewInvoiceDocument(clientID int64, title string, content *InvoiceContent) (*ClientDocument, error) {
	if clientID <= 0 {
		return nil, errors.New("client ID is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("document title is required")
	}
	encoded, err := content.Encode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &ClientDocument{
		ClientID:  clientID,
		Kind:      DocumentKindInvoice,
		Title:     strings.TrimSpace(title),
		Content:   encoded,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
