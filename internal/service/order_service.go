package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crmbackend/internal/mailer"
	"crmbackend/internal/model"
	"crmbackend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateOrderRequest struct {
	CustomerID             string `json:"customer_id" binding:"required"`
	Description            string `json:"description"`
	Value                  string `json:"value" binding:"required"`
	PrimarySalespersonID   string `json:"primary_salesperson_id"`
	SecondarySalespersonID string `json:"secondary_salesperson_id"`
	CommissionSplitPct     string `json:"commission_split_pct"`
}

type UpdateOrderRequest struct {
	Description            string `json:"description"`
	Value                  string `json:"value" binding:"required"`
	Status                 string `json:"status" binding:"required,oneof=NEW IN_PROGRESS READY_TO_INVOICE INVOICE_COMPLETE CANCELLED"`
	PrimarySalespersonID   string `json:"primary_salesperson_id"`
	SecondarySalespersonID string `json:"secondary_salesperson_id"`
	CommissionSplitPct     string `json:"commission_split_pct"`
}

type CreateQuoteRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
}

// --- Interface ---

type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, status string, page, limit int) ([]model.Order, int64, error)
	UpdateOrder(ctx context.Context, id string, req UpdateOrderRequest) (*model.Order, error)

	CreateQuote(ctx context.Context, req CreateQuoteRequest) (*model.Quote, error)
	ListQuotes(ctx context.Context, status string, page, limit int) ([]model.Quote, int64, error)
	SendQuote(ctx context.Context, id string) (*model.Quote, error)
	SetQuoteStatus(ctx context.Context, id, status string) (*model.Quote, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	quoteRepo    repository.QuoteRepository
	customerRepo repository.CustomerRepository
	userRepo     repository.UserRepository
	reminderRepo repository.ReminderRepository
	sender       mailer.Sender
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	quoteRepo repository.QuoteRepository,
	customerRepo repository.CustomerRepository,
	userRepo repository.UserRepository,
	reminderRepo repository.ReminderRepository,
	sender mailer.Sender,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		quoteRepo:    quoteRepo,
		customerRepo: customerRepo,
		userRepo:     userRepo,
		reminderRepo: reminderRepo,
		sender:       sender,
	}
}

// commissionFields parses the salesperson attribution shared by create and
// update. A secondary without a primary is rejected, as is a split outside
// 0-100.
func (s *orderService) commissionFields(ctx context.Context, primaryID, secondaryID, splitPct string) (*uuid.UUID, *uuid.UUID, decimal.Decimal, error) {
	var primary, secondary *uuid.UUID
	if primaryID != "" {
		id, err := uuid.Parse(primaryID)
		if err != nil {
			return nil, nil, decimal.Zero, fmt.Errorf("invalid primary_salesperson_id: %w", err)
		}
		if _, err := s.userRepo.GetByID(ctx, primaryID); err != nil {
			return nil, nil, decimal.Zero, errors.New("primary salesperson not found")
		}
		primary = &id
	}
	if secondaryID != "" {
		if primary == nil {
			return nil, nil, decimal.Zero, errors.New("secondary salesperson requires a primary salesperson")
		}
		id, err := uuid.Parse(secondaryID)
		if err != nil {
			return nil, nil, decimal.Zero, fmt.Errorf("invalid secondary_salesperson_id: %w", err)
		}
		if _, err := s.userRepo.GetByID(ctx, secondaryID); err != nil {
			return nil, nil, decimal.Zero, errors.New("secondary salesperson not found")
		}
		if *primary == id {
			return nil, nil, decimal.Zero, errors.New("primary and secondary salesperson must differ")
		}
		secondary = &id
	}

	split := decimal.Zero
	if splitPct != "" {
		v, err := decimal.NewFromString(splitPct)
		if err != nil {
			return nil, nil, decimal.Zero, fmt.Errorf("invalid commission_split_pct: %w", err)
		}
		if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(100)) {
			return nil, nil, decimal.Zero, errors.New("commission_split_pct must be between 0 and 100")
		}
		split = v
	}
	return primary, secondary, split, nil
}

func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.Order, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer_id: %w", err)
	}
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, errors.New("customer not found")
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid value: %w", err)
	}
	if value.IsNegative() {
		return nil, errors.New("value must not be negative")
	}

	primary, secondary, split, err := s.commissionFields(ctx, req.PrimarySalespersonID, req.SecondarySalespersonID, req.CommissionSplitPct)
	if err != nil {
		return nil, err
	}

	count, err := s.orderRepo.CountByPrefix(ctx, "ORD-"+time.Now().Format("20060102")+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	order := &model.Order{
		OrderNo:                fmt.Sprintf("ORD-%s-%05d", time.Now().Format("20060102"), count+1),
		CustomerID:             customerID,
		Description:            req.Description,
		Value:                  value,
		Status:                 model.OrderStatusNew,
		PrimarySalespersonID:   primary,
		SecondarySalespersonID: secondary,
		CommissionSplitPct:     split,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return s.orderRepo.FindByID(ctx, order.ID)
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.New("order not found")
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, status string, page, limit int) ([]model.Order, int64, error) {
	return s.orderRepo.List(ctx, status, page, limit)
}

func (s *orderService) UpdateOrder(ctx context.Context, id string, req UpdateOrderRequest) (*model.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == model.OrderStatusInvoiceComplete && req.Status != model.OrderStatusInvoiceComplete {
		return nil, errors.New("invoiced orders cannot change status")
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid value: %w", err)
	}
	if value.IsNegative() {
		return nil, errors.New("value must not be negative")
	}

	primary, secondary, split, err := s.commissionFields(ctx, req.PrimarySalespersonID, req.SecondarySalespersonID, req.CommissionSplitPct)
	if err != nil {
		return nil, err
	}

	order.Description = req.Description
	order.Value = value
	order.Status = req.Status
	order.PrimarySalespersonID = primary
	order.SecondarySalespersonID = secondary
	order.CommissionSplitPct = split

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return s.orderRepo.FindByID(ctx, order.ID)
}

func (s *orderService) CreateQuote(ctx context.Context, req CreateQuoteRequest) (*model.Quote, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer_id: %w", err)
	}
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, errors.New("customer not found")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	if amount.IsNegative() {
		return nil, errors.New("amount must not be negative")
	}

	count, err := s.quoteRepo.CountByPrefix(ctx, "OFF-"+time.Now().Format("20060102")+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to generate quote number: %w", err)
	}

	quote := &model.Quote{
		QuoteNo:    fmt.Sprintf("OFF-%s-%05d", time.Now().Format("20060102"), count+1),
		CustomerID: customerID,
		Amount:     amount,
		Status:     model.QuoteStatusDraft,
	}
	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}
	return s.quoteRepo.FindByID(ctx, quote.ID)
}

func (s *orderService) ListQuotes(ctx context.Context, status string, page, limit int) ([]model.Quote, int64, error) {
	return s.quoteRepo.List(ctx, status, page, limit)
}

// SendQuote mails the quote to the customer and moves it DRAFT -> SENT.
// Sending starts the follow-up reminder clock.
func (s *orderService) SendQuote(ctx context.Context, id string) (*model.Quote, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid quote id: %w", err)
	}
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, errors.New("quote not found")
	}
	if quote.Status != model.QuoteStatusDraft {
		return nil, errors.New("only draft quotes can be sent")
	}
	if quote.Customer == nil || quote.Customer.Email == "" {
		return nil, errors.New("customer has no email address")
	}

	msg := mailer.Message{
		Recipient: quote.Customer.Email,
		Subject:   fmt.Sprintf("Offert %s", quote.QuoteNo),
		Body: fmt.Sprintf(
			"Hej %s,\n\nTack för ert intresse. Bifogat finner ni vår offert %s på %s kr.\n\nOfferten är giltig i 30 dagar.\n\nMed vänliga hälsningar",
			quote.Customer.Name, quote.QuoteNo, quote.Amount.StringFixed(2),
		),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send quote: %w", err)
	}

	if err := s.reminderRepo.CreateEmailLog(ctx, &model.EmailLog{
		Recipient:  msg.Recipient,
		Subject:    msg.Subject,
		Body:       msg.Body,
		EntityType: model.ReminderEntityQuote,
		EntityID:   &quote.ID,
	}); err != nil {
		return nil, fmt.Errorf("failed to record email: %w", err)
	}
	if err := s.quoteRepo.UpdateStatus(ctx, quote.ID, model.QuoteStatusSent); err != nil {
		return nil, fmt.Errorf("failed to update quote status: %w", err)
	}
	return s.quoteRepo.FindByID(ctx, quote.ID)
}

func (s *orderService) SetQuoteStatus(ctx context.Context, id, status string) (*model.Quote, error) {
	if status != model.QuoteStatusAccepted && status != model.QuoteStatusRejected {
		return nil, errors.New("status must be ACCEPTED or REJECTED")
	}
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid quote id: %w", err)
	}
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, errors.New("quote not found")
	}
	if quote.Status != model.QuoteStatusSent {
		return nil, errors.New("only sent quotes can be accepted or rejected")
	}
	if err := s.quoteRepo.UpdateStatus(ctx, quote.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update quote status: %w", err)
	}
	return s.quoteRepo.FindByID(ctx, quote.ID)
}
