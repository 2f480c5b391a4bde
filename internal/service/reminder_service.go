package service

import (
	"context"
	"fmt"
	"time"

	"crmbackend/internal/mailer"
	"crmbackend/internal/model"
	"crmbackend/internal/repository"
	"crmbackend/internal/websocket"

	"github.com/google/uuid"
)

// Reminder schedules. Quote offsets count days after the quote was created;
// invoice offsets are relative to the due date, negative meaning before it.
var (
	quoteReminderOffsets   = []int{3, 7, 14}
	invoiceReminderOffsets = []int{-3, 0, 7, 14}
)

// --- DTOs ---

type SweepResult struct {
	QuoteReminders   int      `json:"quote_reminders"`
	InvoiceReminders int      `json:"invoice_reminders"`
	MarkedOverdue    int      `json:"marked_overdue"`
	Errors           []string `json:"errors,omitempty"`
}

// --- Interface ---

type ReminderService interface {
	RunSweep(ctx context.Context, now time.Time) (SweepResult, error)
	ListEmailLogs(ctx context.Context, entityID string) ([]model.EmailLog, error)
}

type reminderService struct {
	reminderRepo repository.ReminderRepository
	quoteRepo    repository.QuoteRepository
	invoiceRepo  repository.InvoiceRepository
	sender       mailer.Sender
	hub          *websocket.Hub
	audit        AuditService
}

func NewReminderService(
	reminderRepo repository.ReminderRepository,
	quoteRepo repository.QuoteRepository,
	invoiceRepo repository.InvoiceRepository,
	sender mailer.Sender,
	hub *websocket.Hub,
	audit AuditService,
) ReminderService {
	return &reminderService{
		reminderRepo: reminderRepo,
		quoteRepo:    quoteRepo,
		invoiceRepo:  invoiceRepo,
		sender:       sender,
		hub:          hub,
		audit:        audit,
	}
}

// daysBetween counts whole calendar days from a to b, UTC dates. Negative
// when b is before a.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

func matchesOffset(offsets []int, days int) (int, bool) {
	for _, o := range offsets {
		if days == o {
			return o, true
		}
	}
	return 0, false
}

// RunSweep is the externally scheduled pass over SENT quotes and invoices.
// A reminder fires when the day offset matches the schedule exactly; the
// dedup log keeps repeated runs on the same day from resending. Invoices
// past their due date are moved to OVERDUE in the same pass. Partial
// failures are collected, not fatal: the sweep runs again tomorrow.
func (s *reminderService) RunSweep(ctx context.Context, now time.Time) (SweepResult, error) {
	var result SweepResult

	quotes, err := s.quoteRepo.ListByStatus(ctx, model.QuoteStatusSent)
	if err != nil {
		return result, fmt.Errorf("failed to fetch sent quotes: %w", err)
	}
	for i := range quotes {
		quote := &quotes[i]
		offset, ok := matchesOffset(quoteReminderOffsets, daysBetween(quote.CreatedAt, now))
		if !ok {
			continue
		}
		sent, err := s.sendQuoteReminder(ctx, quote, offset)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("quote %s: %v", quote.QuoteNo, err))
		}
		if sent {
			result.QuoteReminders++
		}
	}

	invoices, err := s.invoiceRepo.ListByStatuses(ctx, []string{
		model.InvoiceStatusDraft, model.InvoiceStatusSent, model.InvoiceStatusOverdue,
	})
	if err != nil {
		return result, fmt.Errorf("failed to fetch invoices: %w", err)
	}
	for i := range invoices {
		invoice := &invoices[i]
		days := daysBetween(invoice.DueDate, now)

		if days > 0 && invoice.Status != model.InvoiceStatusOverdue {
			if err := s.invoiceRepo.MarkOverdue(ctx, invoice.ID, now); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("invoice %s: %v", invoice.InvoiceNo, err))
			} else {
				invoice.Status = model.InvoiceStatusOverdue
				result.MarkedOverdue++
				s.hub.BroadcastEvent(websocket.EventInvoiceOverdue, map[string]string{
					"invoice_id": invoice.ID.String(),
					"invoice_no": invoice.InvoiceNo,
				})
			}
		}

		// Drafts were never sent to the customer, so no reminder mail.
		if invoice.Status == model.InvoiceStatusDraft {
			continue
		}
		offset, ok := matchesOffset(invoiceReminderOffsets, days)
		if !ok {
			continue
		}
		sent, err := s.sendInvoiceReminder(ctx, invoice, offset)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("invoice %s: %v", invoice.InvoiceNo, err))
		}
		if sent {
			result.InvoiceReminders++
		}
	}

	s.audit.Record(ctx, nil, model.ActionReminderSweep, "", "reminder sweep", result)
	return result, nil
}

// sendQuoteReminder reports whether a mail actually went out, so a run that
// hits the dedup log is not counted as a sent reminder.
func (s *reminderService) sendQuoteReminder(ctx context.Context, quote *model.Quote, offset int) (bool, error) {
	already, err := s.reminderRepo.HasReminder(ctx, model.ReminderEntityQuote, quote.ID, offset)
	if err != nil || already {
		return false, err
	}
	if quote.Customer == nil || quote.Customer.Email == "" {
		return false, fmt.Errorf("customer has no email address")
	}

	msg := mailer.Message{
		Recipient: quote.Customer.Email,
		Subject:   fmt.Sprintf("Påminnelse: offert %s", quote.QuoteNo),
		Body: fmt.Sprintf(
			"Hej %s,\n\nVi vill påminna om vår offert %s på %s kr som vi skickade för %d dagar sedan.\n\nHör gärna av er om ni har frågor.\n\nMed vänliga hälsningar",
			quote.Customer.Name, quote.QuoteNo, quote.Amount.StringFixed(2), offset,
		),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return false, fmt.Errorf("failed to send reminder: %w", err)
	}

	quoteID := quote.ID
	if err := s.reminderRepo.CreateEmailLog(ctx, &model.EmailLog{
		Recipient:  msg.Recipient,
		Subject:    msg.Subject,
		Body:       msg.Body,
		EntityType: model.ReminderEntityQuote,
		EntityID:   &quoteID,
	}); err != nil {
		return true, err
	}
	if err := s.reminderRepo.CreateReminder(ctx, &model.ReminderLog{
		EntityType: model.ReminderEntityQuote,
		EntityID:   quote.ID,
		DayOffset:  offset,
	}); err != nil {
		return true, err
	}
	return true, nil
}

func (s *reminderService) sendInvoiceReminder(ctx context.Context, invoice *model.Invoice, offset int) (bool, error) {
	already, err := s.reminderRepo.HasReminder(ctx, model.ReminderEntityInvoice, invoice.ID, offset)
	if err != nil || already {
		return false, err
	}
	if invoice.Customer == nil || invoice.Customer.Email == "" {
		return false, fmt.Errorf("customer has no email address")
	}

	var subject, intro string
	switch {
	case offset < 0:
		subject = fmt.Sprintf("Påminnelse: faktura %s förfaller snart", invoice.InvoiceNo)
		intro = fmt.Sprintf("Er faktura %s förfaller om %d dagar.", invoice.InvoiceNo, -offset)
	case offset == 0:
		subject = fmt.Sprintf("Påminnelse: faktura %s förfaller idag", invoice.InvoiceNo)
		intro = fmt.Sprintf("Er faktura %s förfaller idag.", invoice.InvoiceNo)
	default:
		subject = fmt.Sprintf("Betalningspåminnelse: faktura %s", invoice.InvoiceNo)
		intro = fmt.Sprintf("Er faktura %s förföll för %d dagar sedan och är ännu inte betald.", invoice.InvoiceNo, offset)
	}

	msg := mailer.Message{
		Recipient: invoice.Customer.Email,
		Subject:   subject,
		Body: fmt.Sprintf(
			"Hej %s,\n\n%s\n\nBelopp att betala: %s kr\nFörfallodatum: %s\n\nHar ni redan betalat kan ni bortse från detta meddelande.\n\nMed vänliga hälsningar",
			invoice.Customer.Name, intro, invoice.PayableAmount().StringFixed(2), invoice.DueDate.Format("2006-01-02"),
		),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return false, fmt.Errorf("failed to send reminder: %w", err)
	}

	invoiceID := invoice.ID
	if err := s.reminderRepo.CreateEmailLog(ctx, &model.EmailLog{
		Recipient:  msg.Recipient,
		Subject:    msg.Subject,
		Body:       msg.Body,
		EntityType: model.ReminderEntityInvoice,
		EntityID:   &invoiceID,
	}); err != nil {
		return true, err
	}
	if err := s.reminderRepo.CreateReminder(ctx, &model.ReminderLog{
		EntityType: model.ReminderEntityInvoice,
		EntityID:   invoice.ID,
		DayOffset:  offset,
	}); err != nil {
		return true, err
	}
	return true, nil
}

func (s *reminderService) ListEmailLogs(ctx context.Context, entityID string) ([]model.EmailLog, error) {
	id, err := uuid.Parse(entityID)
	if err != nil {
		return nil, fmt.Errorf("invalid entity id: %w", err)
	}
	return s.reminderRepo.ListEmailLogs(ctx, id)
}
