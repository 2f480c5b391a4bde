package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crmbackend/internal/finance"
	"crmbackend/internal/mailer"
	"crmbackend/internal/model"
	"crmbackend/internal/repository"
	"crmbackend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditType enum constants: the three credit scopes.
const (
	CreditTypeFull    = "FULL"    // negate the whole original invoice
	CreditTypePartial = "PARTIAL" // negate a selected subset of line items
	CreditTypeAmount  = "AMOUNT"  // arbitrary gross amount with a synthetic line
)

// Credit-note email template variants.
const (
	CreditEmailStandard    = "standard"
	CreditEmailExplanation = "explanation"
)

// --- DTOs ---

type CreateCreditNoteRequest struct {
	OriginalInvoiceID string `json:"original_invoice_id" binding:"required"`
	CreditType        string `json:"credit_type" binding:"required,oneof=FULL PARTIAL AMOUNT"`
	Reason            string `json:"reason" binding:"required"`
	ReasonText        string `json:"reason_text"`
	ItemIndices       []int  `json:"item_indices"` // PARTIAL: indices into the original's line items
	Amount            string `json:"amount"`       // AMOUNT: positive gross figure
}

type SendCreditNoteRequest struct {
	TemplateVariant string `json:"template_variant" binding:"omitempty,oneof=standard explanation"`
}

// --- Interface ---

type CreditNoteService interface {
	CreateCreditNote(ctx context.Context, actorID string, req CreateCreditNoteRequest) (InvoiceResponse, error)
	ListCreditHistory(ctx context.Context, originalInvoiceID string) ([]InvoiceResponse, error)
	SendCreditNote(ctx context.Context, actorID, id string, req SendCreditNoteRequest) (InvoiceResponse, error)
	MarkPaid(ctx context.Context, actorID, id string) (InvoiceResponse, error)
}

type creditNoteService struct {
	invoiceRepo  repository.InvoiceRepository
	reminderRepo repository.ReminderRepository
	txManager    repository.TransactionManager
	sender       mailer.Sender
	audit        AuditService
	hub          *websocket.Hub
}

func NewCreditNoteService(
	invoiceRepo repository.InvoiceRepository,
	reminderRepo repository.ReminderRepository,
	txManager repository.TransactionManager,
	sender mailer.Sender,
	audit AuditService,
	hub *websocket.Hub,
) CreditNoteService {
	return &creditNoteService{
		invoiceRepo:  invoiceRepo,
		reminderRepo: reminderRepo,
		txManager:    txManager,
		sender:       sender,
		audit:        audit,
		hub:          hub,
	}
}

// --- Pure derivation and validation ---

// creditDerivation is a fully derived credit note before persistence:
// negated line items plus the negated subtotal/VAT/gross figures.
type creditDerivation struct {
	Lines    []model.InvoiceLineItem
	Subtotal decimal.Decimal
	VAT      decimal.Decimal
	Amount   decimal.Decimal
}

func validCreditReason(reason string) bool {
	switch reason {
	case model.CreditReasonReturvara, model.CreditReasonPriskorrigering,
		model.CreditReasonFelaktigFaktura, model.CreditReasonAnnat:
		return true
	}
	return false
}

// creditReasonLabel renders the reason for documents and synthetic lines.
func creditReasonLabel(reason, reasonText string) string {
	switch reason {
	case model.CreditReasonReturvara:
		return "Returvara"
	case model.CreditReasonPriskorrigering:
		return "Priskorrigering"
	case model.CreditReasonFelaktigFaktura:
		return "Felaktig faktura"
	case model.CreditReasonAnnat:
		return reasonText
	}
	return reason
}

// validateCreditable rejects originals that cannot take another credit note:
// wrong status, already fully credited, or itself a credit note.
func validateCreditable(original *model.Invoice) error {
	if original.IsCreditNote {
		return errors.New("a credit note cannot be credited")
	}
	if original.Status != model.InvoiceStatusSent && original.Status != model.InvoiceStatusPaid {
		return errors.New("only sent or paid invoices can be credited")
	}
	if original.CreditedAmount.Abs().GreaterThanOrEqual(original.Amount.Abs()) {
		return errors.New("invoice is already fully credited")
	}
	return nil
}

// deriveCredit builds the negated line items and figures for the requested
// scope. Quantities stay positive; unit prices and totals flip sign.
func deriveCredit(original *model.Invoice, req CreateCreditNoteRequest) (creditDerivation, error) {
	switch req.CreditType {
	case CreditTypeFull:
		lines := make([]model.InvoiceLineItem, 0, len(original.Items))
		for i, item := range original.Items {
			lines = append(lines, model.InvoiceLineItem{
				Position:    i,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice.Neg(),
				Total:       item.Total.Neg(),
			})
		}
		return figuresFromLines(lines), nil

	case CreditTypePartial:
		if len(req.ItemIndices) == 0 {
			return creditDerivation{}, errors.New("partial credit requires at least one line item index")
		}
		seen := make(map[int]bool, len(req.ItemIndices))
		lines := make([]model.InvoiceLineItem, 0, len(req.ItemIndices))
		for _, idx := range req.ItemIndices {
			if idx < 0 || idx >= len(original.Items) {
				return creditDerivation{}, fmt.Errorf("line item index %d is out of range", idx)
			}
			if seen[idx] {
				return creditDerivation{}, fmt.Errorf("line item index %d selected twice", idx)
			}
			seen[idx] = true

			item := original.Items[idx]
			lines = append(lines, model.InvoiceLineItem{
				Position:    len(lines),
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice.Neg(),
				Total:       item.Total.Neg(),
			})
		}
		return figuresFromLines(lines), nil

	case CreditTypeAmount:
		gross, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return creditDerivation{}, fmt.Errorf("invalid amount: %w", err)
		}
		if !gross.IsPositive() {
			return creditDerivation{}, errors.New("amount adjustment must be a positive figure")
		}
		// The supplied figure is gross. Back out the VAT portion so
		// subtotal + VAT lands exactly on the requested credit.
		subtotal := gross.Div(decimal.NewFromInt(1).Add(finance.StandardVATRate)).Round(2).Neg()
		vat := gross.Neg().Sub(subtotal)
		line := model.InvoiceLineItem{
			Position:    0,
			Description: creditReasonLabel(req.Reason, req.ReasonText),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   subtotal,
			Total:       subtotal,
		}
		return creditDerivation{
			Lines:    []model.InvoiceLineItem{line},
			Subtotal: subtotal,
			VAT:      vat,
			Amount:   gross.Neg(),
		}, nil
	}

	return creditDerivation{}, fmt.Errorf("unknown credit type %q", req.CreditType)
}

func figuresFromLines(lines []model.InvoiceLineItem) creditDerivation {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total)
	}
	vat := finance.VAT(subtotal)
	return creditDerivation{
		Lines:    lines,
		Subtotal: subtotal,
		VAT:      vat,
		Amount:   subtotal.Add(vat),
	}
}

// --- Implementation ---

func (s *creditNoteService) CreateCreditNote(ctx context.Context, actorID string, req CreateCreditNoteRequest) (InvoiceResponse, error) {
	originalID, err := uuid.Parse(req.OriginalInvoiceID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid original_invoice_id: %w", err)
	}

	if !validCreditReason(req.Reason) {
		return InvoiceResponse{}, errors.New("invalid credit reason")
	}
	if req.Reason == model.CreditReasonAnnat && req.ReasonText == "" {
		return InvoiceResponse{}, errors.New("reason_text is required when reason is annat")
	}

	var creditNote model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		original, findErr := s.invoiceRepo.FindByIDWithItems(txCtx, originalID)
		if findErr != nil {
			return fmt.Errorf("original invoice not found: %w", findErr)
		}

		if valErr := validateCreditable(original); valErr != nil {
			return valErr
		}

		derived, deriveErr := deriveCredit(original, req)
		if deriveErr != nil {
			return deriveErr
		}

		if derived.Amount.Abs().GreaterThan(original.RemainingCreditable()) {
			return errors.New("credit amount exceeds the remaining creditable amount")
		}

		number, numErr := s.generateCreditNoteNo(txCtx)
		if numErr != nil {
			return fmt.Errorf("failed to generate credit note number: %w", numErr)
		}

		creditNote = model.Invoice{
			InvoiceNo:         number,
			CustomerID:        original.CustomerID,
			OrderID:           original.OrderID,
			Subtotal:          derived.Subtotal,
			VATAmount:         derived.VAT,
			Amount:            derived.Amount,
			DueDate:           time.Now(),
			Status:            model.InvoiceStatusDraft,
			IsCreditNote:      true,
			OriginalInvoiceID: &original.ID,
			CreditReason:      req.Reason,
			CreditReasonText:  req.ReasonText,
		}

		if createErr := s.invoiceRepo.Create(txCtx, &creditNote); createErr != nil {
			return fmt.Errorf("failed to create credit note: %w", createErr)
		}

		for i := range derived.Lines {
			derived.Lines[i].InvoiceID = creditNote.ID
		}
		if itemsErr := s.invoiceRepo.CreateItems(txCtx, derived.Lines); itemsErr != nil {
			return fmt.Errorf("failed to create credit note lines: %w", itemsErr)
		}

		// Accumulate onto the original in the same transaction so the
		// remaining-creditable reads stay consistent with the notes issued.
		original.CreditedAmount = original.CreditedAmount.Add(derived.Amount)
		if updErr := s.invoiceRepo.Update(txCtx, original); updErr != nil {
			return fmt.Errorf("failed to update original invoice: %w", updErr)
		}
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.recordAudit(ctx, actorID, model.ActionCreateCreditNote, creditNote.ID.String(), creditNote.InvoiceNo, map[string]string{
		"original_invoice_id": originalID.String(),
		"amount":              creditNote.Amount.StringFixed(2),
		"reason":              req.Reason,
	})
	s.hub.BroadcastEvent(websocket.EventCreditNoteCreated, map[string]string{
		"id":             creditNote.ID.String(),
		"credit_note_no": creditNote.InvoiceNo,
		"amount":         creditNote.Amount.StringFixed(2),
	})

	reloaded, err := s.invoiceRepo.FindByIDWithItems(ctx, creditNote.ID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to reload credit note: %w", err)
	}
	return toInvoiceResponse(*reloaded), nil
}

func (s *creditNoteService) ListCreditHistory(ctx context.Context, originalInvoiceID string) ([]InvoiceResponse, error) {
	originalID, err := uuid.Parse(originalInvoiceID)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice id: %w", err)
	}

	notes, err := s.invoiceRepo.ListCreditNotesByOriginal(ctx, originalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch credit history: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(notes))
	for _, note := range notes {
		result = append(result, toInvoiceResponse(note))
	}
	return result, nil
}

func (s *creditNoteService) SendCreditNote(ctx context.Context, actorID, id string, req SendCreditNoteRequest) (InvoiceResponse, error) {
	creditNoteID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid credit note id: %w", err)
	}

	note, err := s.invoiceRepo.FindByIDWithItems(ctx, creditNoteID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("credit note not found: %w", err)
	}
	if !note.IsCreditNote {
		return InvoiceResponse{}, errors.New("document is not a credit note")
	}
	if note.Customer == nil || note.Customer.Email == "" {
		return InvoiceResponse{}, errors.New("customer has no email address")
	}

	var originalNo string
	if note.OriginalInvoiceID != nil {
		if original, findErr := s.invoiceRepo.FindByID(ctx, *note.OriginalInvoiceID); findErr == nil {
			originalNo = original.InvoiceNo
		}
	}

	variant := req.TemplateVariant
	if variant == "" {
		variant = CreditEmailStandard
	}
	subject, body := CreditNoteEmail(variant, note.Customer.Name, note.InvoiceNo, originalNo,
		note.Amount.Abs().StringFixed(2), creditReasonLabel(note.CreditReason, note.CreditReasonText))

	msg := mailer.Message{Recipient: note.Customer.Email, Subject: subject, Body: body}
	if err := s.sender.Send(ctx, msg); err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to send credit note email: %w", err)
	}

	entityID := note.ID
	if logErr := s.reminderRepo.CreateEmailLog(ctx, &model.EmailLog{
		Recipient:  msg.Recipient,
		Subject:    msg.Subject,
		Body:       msg.Body,
		EntityType: model.ReminderEntityInvoice,
		EntityID:   &entityID,
	}); logErr != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to record email log: %w", logErr)
	}

	if note.Status == model.InvoiceStatusDraft {
		if err := s.invoiceRepo.UpdateStatus(ctx, creditNoteID, model.InvoiceStatusSent); err != nil {
			return InvoiceResponse{}, fmt.Errorf("failed to update credit note status: %w", err)
		}
		note.Status = model.InvoiceStatusSent
	}

	s.recordAudit(ctx, actorID, model.ActionSendCreditNote, note.ID.String(), note.InvoiceNo, map[string]string{
		"recipient": msg.Recipient,
		"template":  variant,
	})
	return toInvoiceResponse(*note), nil
}

// MarkPaid records the credit as acknowledged/settled.
func (s *creditNoteService) MarkPaid(ctx context.Context, actorID, id string) (InvoiceResponse, error) {
	creditNoteID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid credit note id: %w", err)
	}

	note, err := s.invoiceRepo.FindByID(ctx, creditNoteID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("credit note not found: %w", err)
	}
	if !note.IsCreditNote {
		return InvoiceResponse{}, errors.New("document is not a credit note")
	}

	if err := s.invoiceRepo.UpdateStatus(ctx, creditNoteID, model.InvoiceStatusPaid); err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to update credit note status: %w", err)
	}
	note.Status = model.InvoiceStatusPaid

	s.recordAudit(ctx, actorID, model.ActionInvoiceStatus, note.ID.String(), note.InvoiceNo, map[string]string{
		"status": model.InvoiceStatusPaid,
	})
	return toInvoiceResponse(*note), nil
}

// generateCreditNoteNo numbers credit notes in their own sequence, distinct
// from invoice numbers.
func (s *creditNoteService) generateCreditNoteNo(ctx context.Context) (string, error) {
	today := time.Now().Format("20060102")
	prefix := "KRED-" + today + "-"

	count, err := s.invoiceRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *creditNoteService) recordAudit(ctx context.Context, actorID, action, entityID, entityName string, details interface{}) {
	var userID *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		userID = &parsed
	}
	s.audit.Record(ctx, userID, action, entityID, entityName, details)
}

// CreditNoteEmail renders the canned credit-note notification. The two
// variants differ in verbosity: "explanation" spells out the next steps
// (refund or reduced balance), "standard" only states the credit.
func CreditNoteEmail(variant, customerName, creditNoteNo, originalInvoiceNo, amount, reason string) (subject, body string) {
	subject = fmt.Sprintf("Kreditfaktura %s", creditNoteNo)

	switch variant {
	case CreditEmailExplanation:
		body = fmt.Sprintf(
			"Hej %s,\n\n"+
				"Vi har utfärdat kreditfaktura %s som krediterar %s kr av faktura %s.\n"+
				"Anledning: %s.\n\n"+
				"Om fakturan redan är betald återbetalar vi beloppet till ert konto. "+
				"Om den är obetald minskar beloppet att betala med motsvarande summa.\n\n"+
				"Med vänliga hälsningar",
			customerName, creditNoteNo, amount, originalInvoiceNo, reason,
		)
	default:
		body = fmt.Sprintf(
			"Hej %s,\n\n"+
				"Kreditfaktura %s på %s kr har utfärdats mot faktura %s.\n"+
				"Anledning: %s.\n\n"+
				"Med vänliga hälsningar",
			customerName, creditNoteNo, amount, originalInvoiceNo, reason,
		)
	}
	return subject, body
}
