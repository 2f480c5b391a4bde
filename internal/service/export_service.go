package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
)

// --- Interface ---

// ExportService renders the invoice list as a downloadable file. Both
// formats reuse the list filter, so an export always matches what the
// caller sees on screen.
type ExportService interface {
	ExportInvoicesCSV(ctx context.Context, filter InvoiceFilter) ([]byte, error)
	ExportInvoicesJSON(ctx context.Context, filter InvoiceFilter) ([]byte, error)
}

type exportService struct {
	invoices InvoiceService
}

func NewExportService(invoices InvoiceService) ExportService {
	return &exportService{invoices: invoices}
}

var invoiceCSVHeader = []string{
	"invoice_no", "customer", "status", "due_date",
	"subtotal", "vat_amount", "amount", "credited_amount", "net_amount",
	"rot_amount", "payable_amount", "is_credit_note", "created_at",
}

func (s *exportService) ExportInvoicesCSV(ctx context.Context, filter InvoiceFilter) ([]byte, error) {
	rows, err := s.fetchAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(invoiceCSVHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, inv := range rows {
		record := []string{
			inv.InvoiceNo,
			inv.CustomerName,
			inv.Status,
			inv.DueDate,
			inv.Subtotal,
			inv.VATAmount,
			inv.Amount,
			inv.CreditedAmount,
			inv.NetAmount,
			inv.ROTAmount,
			inv.PayableAmount,
			fmt.Sprintf("%t", inv.IsCreditNote),
			inv.CreatedAt,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) ExportInvoicesJSON(ctx context.Context, filter InvoiceFilter) ([]byte, error) {
	rows, err := s.fetchAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invoices: %w", err)
	}
	return data, nil
}

// fetchAll pages through the filtered list so exports are not capped at one
// page.
func (s *exportService) fetchAll(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, error) {
	const pageSize = 200

	var all []InvoiceResponse
	filter.Limit = pageSize
	for page := 1; ; page++ {
		filter.Page = page
		rows, total, err := s.invoices.ListInvoices(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
		if int64(len(all)) >= total || len(rows) == 0 {
			return all, nil
		}
	}
}
