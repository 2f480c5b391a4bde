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

// --- DTOs ---

type LineItemInput struct {
	Description string `json:"description" binding:"required"`
	Quantity    string `json:"quantity" binding:"required"`
	UnitPrice   string `json:"unit_price" binding:"required"`
}

type CreateInvoiceRequest struct {
	CustomerID     string          `json:"customer_id" binding:"required"`
	OrderID        string          `json:"order_id"`
	DueDate        string          `json:"due_date" binding:"required"` // YYYY-MM-DD
	AssignedUserID string          `json:"assigned_user_id"`
	AssignedTeamID string          `json:"assigned_team_id"`
	ROTApplicable  bool            `json:"rot_applicable"`
	ROTPayerNumber string          `json:"rot_payer_number"`
	ROTProperty    string          `json:"rot_property"`
	ROTAmount      string          `json:"rot_amount"`
	Items          []LineItemInput `json:"items" binding:"required,min=1,dive"`
}

type UpdateInvoiceRequest struct {
	DueDate        string          `json:"due_date"`
	AssignedUserID string          `json:"assigned_user_id"`
	AssignedTeamID string          `json:"assigned_team_id"`
	ROTApplicable  *bool           `json:"rot_applicable"`
	ROTPayerNumber *string         `json:"rot_payer_number"`
	ROTProperty    *string         `json:"rot_property"`
	ROTAmount      string          `json:"rot_amount"`
	Items          []LineItemInput `json:"items" binding:"required,min=1,dive"`
}

type BulkInvoiceRequest struct {
	OrderIDs []string `json:"order_ids" binding:"required,min=1"`
	DueDate  string   `json:"due_date" binding:"required"`
}

// BulkInvoiceResult reports aggregate success/failure counts; failed orders
// are not retried and successful ones are not rolled back.
type BulkInvoiceResult struct {
	Created int      `json:"created"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

type LineItemResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Total       string `json:"total"`
}

type InvoiceResponse struct {
	ID                string             `json:"id"`
	InvoiceNo         string             `json:"invoice_no"`
	CustomerID        string             `json:"customer_id"`
	CustomerName      string             `json:"customer_name,omitempty"`
	OrderID           *string            `json:"order_id"`
	Subtotal          string             `json:"subtotal"`
	VATAmount         string             `json:"vat_amount"`
	Amount            string             `json:"amount"`
	CreditedAmount    string             `json:"credited_amount"`
	NetAmount         string             `json:"net_amount"`
	PayableAmount     string             `json:"payable_amount"`
	DueDate           string             `json:"due_date"`
	Status            string             `json:"status"`
	AssignedUserID    *string            `json:"assigned_user_id"`
	AssignedTeamID    *string            `json:"assigned_team_id"`
	ROTApplicable     bool               `json:"rot_applicable"`
	ROTPayerNumber    string             `json:"rot_payer_number,omitempty"`
	ROTProperty       string             `json:"rot_property,omitempty"`
	ROTAmount         string             `json:"rot_amount"`
	IsCreditNote      bool               `json:"is_credit_note"`
	OriginalInvoiceID *string            `json:"original_invoice_id,omitempty"`
	CreditReason      string             `json:"credit_reason,omitempty"`
	Items             []LineItemResponse `json:"items,omitempty"`
	CreatedAt         string             `json:"created_at"`
}

type InvoiceFilter struct {
	Status     string
	CustomerID string
	// CreditNotes switches the listing from invoices to credit notes.
	CreditNotes bool
	Page        int
	Limit       int
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, actorID string, req CreateInvoiceRequest) (InvoiceResponse, error)
	CreateBulkFromOrders(ctx context.Context, actorID string, req BulkInvoiceRequest) (BulkInvoiceResult, error)
	GetInvoice(ctx context.Context, id string) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
	UpdateInvoice(ctx context.Context, actorID, id string, req UpdateInvoiceRequest) (InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, actorID, id string) error
	SendInvoice(ctx context.Context, actorID, id string) (InvoiceResponse, error)
	MarkPaid(ctx context.Context, actorID, id string) (InvoiceResponse, error)
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	reminderRepo repository.ReminderRepository
	txManager    repository.TransactionManager
	sender       mailer.Sender
	audit        AuditService
	hub          *websocket.Hub
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	reminderRepo repository.ReminderRepository,
	txManager repository.TransactionManager,
	sender mailer.Sender,
	audit AuditService,
	hub *websocket.Hub,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		reminderRepo: reminderRepo,
		txManager:    txManager,
		sender:       sender,
		audit:        audit,
		hub:          hub,
	}
}

// --- Pure helpers ---

// buildLineItems parses and validates line-item input and recomputes every
// total as quantity * unit price. Client-supplied totals are never trusted.
func buildLineItems(items []LineItemInput) ([]model.InvoiceLineItem, error) {
	lines := make([]model.InvoiceLineItem, 0, len(items))
	for i, item := range items {
		quantity, err := decimal.NewFromString(item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("item %d: invalid quantity: %w", i, err)
		}
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("item %d: invalid unit_price: %w", i, err)
		}
		if quantity.IsNegative() {
			return nil, fmt.Errorf("item %d: quantity must not be negative", i)
		}

		lines = append(lines, model.InvoiceLineItem{
			Position:    i,
			Description: item.Description,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			Total:       finance.LineTotal(quantity, unitPrice),
		})
	}
	return lines, nil
}

// invoiceFigures derives subtotal, VAT and gross amount from the line items.
func invoiceFigures(lines []model.InvoiceLineItem) (subtotal, vat, amount decimal.Decimal) {
	subtotal = decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total)
	}
	vat = finance.VAT(subtotal)
	amount = subtotal.Add(vat)
	return subtotal, vat, amount
}

func parseAssignment(userID, teamID string) (*uuid.UUID, *uuid.UUID, error) {
	if userID != "" && teamID != "" {
		return nil, nil, errors.New("invoice can be assigned to a user or a team, not both")
	}
	var uID, tID *uuid.UUID
	if userID != "" {
		parsed, err := uuid.Parse(userID)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid assigned_user_id: %w", err)
		}
		uID = &parsed
	}
	if teamID != "" {
		parsed, err := uuid.Parse(teamID)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid assigned_team_id: %w", err)
		}
		tID = &parsed
	}
	return uID, tID, nil
}

func parseROTAmount(raw string, amount decimal.Decimal) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	rot, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rot_amount: %w", err)
	}
	if rot.IsNegative() {
		return decimal.Zero, errors.New("rot_amount must not be negative")
	}
	if rot.GreaterThan(amount) {
		return decimal.Zero, errors.New("rot_amount must not exceed the invoice amount")
	}
	return rot, nil
}

// --- Implementation ---

func (s *invoiceService) CreateInvoice(ctx context.Context, actorID string, req CreateInvoiceRequest) (InvoiceResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid customer_id: %w", err)
	}
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return InvoiceResponse{}, fmt.Errorf("customer not found: %w", err)
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid due_date: %w", err)
	}

	assignedUser, assignedTeam, err := parseAssignment(req.AssignedUserID, req.AssignedTeamID)
	if err != nil {
		return InvoiceResponse{}, err
	}

	lines, err := buildLineItems(req.Items)
	if err != nil {
		return InvoiceResponse{}, err
	}
	subtotal, vat, amount := invoiceFigures(lines)

	rotAmount, err := parseROTAmount(req.ROTAmount, amount)
	if err != nil {
		return InvoiceResponse{}, err
	}

	var orderID *uuid.UUID
	if req.OrderID != "" {
		parsed, parseErr := uuid.Parse(req.OrderID)
		if parseErr != nil {
			return InvoiceResponse{}, fmt.Errorf("invalid order_id: %w", parseErr)
		}
		if _, findErr := s.orderRepo.FindByID(ctx, parsed); findErr != nil {
			return InvoiceResponse{}, fmt.Errorf("referenced order not found: %w", findErr)
		}
		orderID = &parsed
	}

	invoice := model.Invoice{
		CustomerID:     customerID,
		OrderID:        orderID,
		Subtotal:       subtotal,
		VATAmount:      vat,
		Amount:         amount,
		DueDate:        dueDate,
		Status:         model.InvoiceStatusDraft,
		AssignedUserID: assignedUser,
		AssignedTeamID: assignedTeam,
		ROTApplicable:  req.ROTApplicable,
		ROTPayerNumber: req.ROTPayerNumber,
		ROTProperty:    req.ROTProperty,
		ROTAmount:      rotAmount,
	}

	// Header, line items and the source-order status advance are one
	// transactional unit: no compensating deletes, no orphaned headers.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoiceNo, numErr := s.generateDocumentNo(txCtx, "INV")
		if numErr != nil {
			return fmt.Errorf("failed to generate invoice number: %w", numErr)
		}
		invoice.InvoiceNo = invoiceNo

		if createErr := s.invoiceRepo.Create(txCtx, &invoice); createErr != nil {
			return fmt.Errorf("failed to create invoice: %w", createErr)
		}

		for i := range lines {
			lines[i].InvoiceID = invoice.ID
		}
		if itemsErr := s.invoiceRepo.CreateItems(txCtx, lines); itemsErr != nil {
			return fmt.Errorf("failed to create line items: %w", itemsErr)
		}

		if invoice.OrderID != nil {
			if statusErr := s.orderRepo.UpdateStatus(txCtx, *invoice.OrderID, model.OrderStatusInvoiceComplete); statusErr != nil {
				return fmt.Errorf("failed to advance order status: %w", statusErr)
			}
		}
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.recordAudit(ctx, actorID, model.ActionCreateInvoice, invoice.ID.String(), invoice.InvoiceNo, map[string]string{
		"amount": invoice.Amount.StringFixed(2),
	})
	s.hub.BroadcastEvent(websocket.EventInvoiceCreated, map[string]string{
		"id":         invoice.ID.String(),
		"invoice_no": invoice.InvoiceNo,
		"amount":     invoice.Amount.StringFixed(2),
	})

	reloaded, err := s.invoiceRepo.FindByIDWithItems(ctx, invoice.ID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to reload invoice: %w", err)
	}
	return toInvoiceResponse(*reloaded), nil
}

func (s *invoiceService) CreateBulkFromOrders(ctx context.Context, actorID string, req BulkInvoiceRequest) (BulkInvoiceResult, error) {
	result := BulkInvoiceResult{}

	for _, rawID := range req.OrderIDs {
		orderID, err := uuid.Parse(rawID)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: invalid order id", rawID))
			continue
		}

		order, err := s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: order not found", rawID))
			continue
		}
		if order.Status != model.OrderStatusReadyToInvoice {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: order is not ready to invoice", order.OrderNo))
			continue
		}

		createReq := CreateInvoiceRequest{
			CustomerID: order.CustomerID.String(),
			OrderID:    order.ID.String(),
			DueDate:    req.DueDate,
			Items: []LineItemInput{{
				Description: order.Description,
				Quantity:    "1",
				UnitPrice:   order.Value.String(),
			}},
		}

		if _, err := s.CreateInvoice(ctx, actorID, createReq); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", order.OrderNo, err))
			continue
		}
		result.Created++
	}

	return result, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}
	invoice, err := s.invoiceRepo.FindByIDWithItems(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invoice not found: %w", err)
	}
	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.InvoiceListFilter{
		Status:      filter.Status,
		CreditNotes: filter.CreditNotes,
		Page:        filter.Page,
		Limit:       filter.Limit,
	}
	if filter.CustomerID != "" {
		parsed, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid customer_id: %w", err)
		}
		repoFilter.CustomerID = &parsed
	}

	invoices, total, err := s.invoiceRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, total, nil
}

// UpdateInvoice replaces the full line-item set and recomputes the amount
// figures. There is no diffing: delete all, reinsert, recompute.
func (s *invoiceService) UpdateInvoice(ctx context.Context, actorID, id string, req UpdateInvoiceRequest) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invoice not found: %w", err)
	}
	if invoice.IsCreditNote {
		return InvoiceResponse{}, errors.New("credit notes cannot be edited")
	}
	if !invoice.CreditedAmount.IsZero() {
		return InvoiceResponse{}, errors.New("invoice has credit notes and can no longer be edited")
	}

	lines, err := buildLineItems(req.Items)
	if err != nil {
		return InvoiceResponse{}, err
	}
	subtotal, vat, amount := invoiceFigures(lines)

	if req.DueDate != "" {
		dueDate, parseErr := time.Parse("2006-01-02", req.DueDate)
		if parseErr != nil {
			return InvoiceResponse{}, fmt.Errorf("invalid due_date: %w", parseErr)
		}
		invoice.DueDate = dueDate
	}

	if req.AssignedUserID != "" || req.AssignedTeamID != "" {
		assignedUser, assignedTeam, assignErr := parseAssignment(req.AssignedUserID, req.AssignedTeamID)
		if assignErr != nil {
			return InvoiceResponse{}, assignErr
		}
		invoice.AssignedUserID = assignedUser
		invoice.AssignedTeamID = assignedTeam
	}

	if req.ROTApplicable != nil {
		invoice.ROTApplicable = *req.ROTApplicable
	}
	if req.ROTPayerNumber != nil {
		invoice.ROTPayerNumber = *req.ROTPayerNumber
	}
	if req.ROTProperty != nil {
		invoice.ROTProperty = *req.ROTProperty
	}

	invoice.Subtotal = subtotal
	invoice.VATAmount = vat
	invoice.Amount = amount

	rotAmount, err := parseROTAmount(req.ROTAmount, amount)
	if err != nil {
		return InvoiceResponse{}, err
	}
	if req.ROTAmount != "" {
		invoice.ROTAmount = rotAmount
	} else if invoice.ROTAmount.GreaterThan(amount) {
		return InvoiceResponse{}, errors.New("existing rot_amount exceeds the recomputed invoice amount")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.invoiceRepo.DeleteItems(txCtx, invoiceID); delErr != nil {
			return fmt.Errorf("failed to clear line items: %w", delErr)
		}
		for i := range lines {
			lines[i].InvoiceID = invoiceID
		}
		if itemsErr := s.invoiceRepo.CreateItems(txCtx, lines); itemsErr != nil {
			return fmt.Errorf("failed to recreate line items: %w", itemsErr)
		}
		if updErr := s.invoiceRepo.Update(txCtx, invoice); updErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updErr)
		}
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.recordAudit(ctx, actorID, model.ActionUpdateInvoice, invoice.ID.String(), invoice.InvoiceNo, map[string]string{
		"amount": invoice.Amount.StringFixed(2),
	})

	reloaded, err := s.invoiceRepo.FindByIDWithItems(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to reload invoice: %w", err)
	}
	return toInvoiceResponse(*reloaded), nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, actorID, id string) error {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("invoice not found: %w", err)
	}
	// Credit notes stay: the original invoice keeps its credited amount and
	// the credit history must keep accounting for it.
	if invoice.IsCreditNote {
		return errors.New("credit notes cannot be deleted")
	}
	if !invoice.CreditedAmount.IsZero() {
		return errors.New("invoice has credit notes and cannot be deleted")
	}

	if err := s.invoiceRepo.Delete(ctx, invoiceID); err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	s.recordAudit(ctx, actorID, model.ActionDeleteInvoice, invoice.ID.String(), invoice.InvoiceNo, nil)
	return nil
}

// SendInvoice hands the rendered document to the mail collaborator, records
// the email log entry and advances DRAFT to SENT. A failed send leaves the
// invoice untouched.
func (s *invoiceService) SendInvoice(ctx context.Context, actorID, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByIDWithItems(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invoice not found: %w", err)
	}
	if invoice.Status == model.InvoiceStatusPaid {
		return InvoiceResponse{}, errors.New("invoice is already paid")
	}
	if invoice.Customer == nil || invoice.Customer.Email == "" {
		return InvoiceResponse{}, errors.New("customer has no email address")
	}

	subject, body := renderInvoiceEmail(invoice)
	msg := mailer.Message{Recipient: invoice.Customer.Email, Subject: subject, Body: body}
	if err := s.sender.Send(ctx, msg); err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to send invoice email: %w", err)
	}

	entityID := invoice.ID
	if logErr := s.reminderRepo.CreateEmailLog(ctx, &model.EmailLog{
		Recipient:  msg.Recipient,
		Subject:    msg.Subject,
		Body:       msg.Body,
		EntityType: model.ReminderEntityInvoice,
		EntityID:   &entityID,
	}); logErr != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to record email log: %w", logErr)
	}

	if invoice.Status == model.InvoiceStatusDraft {
		if err := s.invoiceRepo.UpdateStatus(ctx, invoiceID, model.InvoiceStatusSent); err != nil {
			return InvoiceResponse{}, fmt.Errorf("failed to update invoice status: %w", err)
		}
		invoice.Status = model.InvoiceStatusSent
		s.hub.BroadcastEvent(websocket.EventInvoiceSent, map[string]string{
			"id":         invoice.ID.String(),
			"invoice_no": invoice.InvoiceNo,
		})
	}

	s.recordAudit(ctx, actorID, model.ActionSendInvoice, invoice.ID.String(), invoice.InvoiceNo, map[string]string{
		"recipient": msg.Recipient,
	})
	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, actorID, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invoice not found: %w", err)
	}

	if err := s.invoiceRepo.UpdateStatus(ctx, invoiceID, model.InvoiceStatusPaid); err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to update invoice status: %w", err)
	}
	invoice.Status = model.InvoiceStatusPaid

	s.recordAudit(ctx, actorID, model.ActionInvoiceStatus, invoice.ID.String(), invoice.InvoiceNo, map[string]string{
		"status": model.InvoiceStatusPaid,
	})
	return toInvoiceResponse(*invoice), nil
}

// --- Internals ---

// generateDocumentNo numbers documents per day and prefix, e.g.
// INV-20250901-00004 or KRED-20250901-00001. Credit notes use a distinct
// sequence from invoices via their prefix.
func (s *invoiceService) generateDocumentNo(ctx context.Context, kind string) (string, error) {
	today := time.Now().Format("20060102")
	prefix := kind + "-" + today + "-"

	count, err := s.invoiceRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *invoiceService) recordAudit(ctx context.Context, actorID, action, entityID, entityName string, details interface{}) {
	var userID *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		userID = &parsed
	}
	s.audit.Record(ctx, userID, action, entityID, entityName, details)
}

func renderInvoiceEmail(invoice *model.Invoice) (subject, body string) {
	subject = fmt.Sprintf("Faktura %s", invoice.InvoiceNo)
	body = fmt.Sprintf(
		"Hej %s,\n\nHär kommer faktura %s på %s kr (varav moms %s kr).\n",
		invoice.Customer.Name, invoice.InvoiceNo,
		invoice.Amount.StringFixed(2), invoice.VATAmount.StringFixed(2),
	)
	if invoice.ROTApplicable && invoice.ROTAmount.IsPositive() {
		body += fmt.Sprintf(
			"Efter ROT-avdrag om %s kr är beloppet att betala %s kr.\n",
			invoice.ROTAmount.StringFixed(2), invoice.PayableAmount().StringFixed(2),
		)
	}
	body += fmt.Sprintf("\nFörfallodatum: %s\n\nMed vänliga hälsningar", invoice.DueDate.Format("2006-01-02"))
	return subject, body
}

// --- Mapping ---

func toLineItemResponses(items []model.InvoiceLineItem) []LineItemResponse {
	result := make([]LineItemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, LineItemResponse{
			ID:          item.ID.String(),
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Total:       item.Total.StringFixed(2),
		})
	}
	return result
}

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:             inv.ID.String(),
		InvoiceNo:      inv.InvoiceNo,
		CustomerID:     inv.CustomerID.String(),
		Subtotal:       inv.Subtotal.StringFixed(2),
		VATAmount:      inv.VATAmount.StringFixed(2),
		Amount:         inv.Amount.StringFixed(2),
		CreditedAmount: inv.CreditedAmount.StringFixed(2),
		NetAmount:      inv.NetAmount().StringFixed(2),
		PayableAmount:  inv.PayableAmount().StringFixed(2),
		DueDate:        inv.DueDate.Format("2006-01-02"),
		Status:         inv.Status,
		ROTApplicable:  inv.ROTApplicable,
		ROTPayerNumber: inv.ROTPayerNumber,
		ROTProperty:    inv.ROTProperty,
		ROTAmount:      inv.ROTAmount.StringFixed(2),
		IsCreditNote:   inv.IsCreditNote,
		CreditReason:   inv.CreditReason,
		Items:          toLineItemResponses(inv.Items),
		CreatedAt:      inv.CreatedAt.Format(time.RFC3339),
	}

	if inv.Customer != nil {
		resp.CustomerName = inv.Customer.Name
	}
	if inv.OrderID != nil {
		id := inv.OrderID.String()
		resp.OrderID = &id
	}
	if inv.AssignedUserID != nil {
		id := inv.AssignedUserID.String()
		resp.AssignedUserID = &id
	}
	if inv.AssignedTeamID != nil {
		id := inv.AssignedTeamID.String()
		resp.AssignedTeamID = &id
	}
	if inv.OriginalInvoiceID != nil {
		id := inv.OriginalInvoiceID.String()
		resp.OriginalInvoiceID = &id
	}

	return resp
}
