package service

import (
	"context"
	"testing"
	"time"

	"crmbackend/internal/mailer"
	"crmbackend/internal/model"
	"crmbackend/internal/repository"
	"crmbackend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- In-memory fakes for the sweep ---

type reminderKey struct {
	entityType string
	entityID   uuid.UUID
	dayOffset  int
}

type memReminderRepo struct {
	reminders map[reminderKey]bool
	emailLogs []model.EmailLog
}

func newMemReminderRepo() *memReminderRepo {
	return &memReminderRepo{reminders: make(map[reminderKey]bool)}
}

func (r *memReminderRepo) HasReminder(_ context.Context, entityType string, entityID uuid.UUID, dayOffset int) (bool, error) {
	return r.reminders[reminderKey{entityType, entityID, dayOffset}], nil
}

func (r *memReminderRepo) CreateReminder(_ context.Context, log *model.ReminderLog) error {
	r.reminders[reminderKey{log.EntityType, log.EntityID, log.DayOffset}] = true
	return nil
}

func (r *memReminderRepo) CreateEmailLog(_ context.Context, log *model.EmailLog) error {
	r.emailLogs = append(r.emailLogs, *log)
	return nil
}

func (r *memReminderRepo) ListEmailLogs(_ context.Context, entityID uuid.UUID) ([]model.EmailLog, error) {
	var out []model.EmailLog
	for _, l := range r.emailLogs {
		if l.EntityID != nil && *l.EntityID == entityID {
			out = append(out, l)
		}
	}
	return out, nil
}

type memQuoteRepo struct {
	quotes []model.Quote
}

func (r *memQuoteRepo) Create(_ context.Context, _ *model.Quote) error { return nil }
func (r *memQuoteRepo) FindByID(_ context.Context, _ uuid.UUID) (*model.Quote, error) {
	return nil, nil
}
func (r *memQuoteRepo) List(_ context.Context, _ string, _, _ int) ([]model.Quote, int64, error) {
	return nil, 0, nil
}
func (r *memQuoteRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ string) error { return nil }
func (r *memQuoteRepo) ListByStatus(_ context.Context, status string) ([]model.Quote, error) {
	var out []model.Quote
	for _, q := range r.quotes {
		if q.Status == status {
			out = append(out, q)
		}
	}
	return out, nil
}
func (r *memQuoteRepo) CountByPrefix(_ context.Context, _ string) (int64, error) { return 0, nil }

type memInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
	deleted  []uuid.UUID
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
}

func (r *memInvoiceRepo) Create(_ context.Context, invoice *model.Invoice) error {
	r.invoices[invoice.ID] = invoice
	return nil
}
func (r *memInvoiceRepo) CreateItems(_ context.Context, _ []model.InvoiceLineItem) error { return nil }
func (r *memInvoiceRepo) DeleteItems(_ context.Context, _ uuid.UUID) error               { return nil }
func (r *memInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, assert.AnError
	}
	copied := *inv
	return &copied, nil
}
func (r *memInvoiceRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	return r.FindByID(ctx, id)
}
func (r *memInvoiceRepo) List(_ context.Context, _ repository.InvoiceListFilter) ([]model.Invoice, int64, error) {
	return nil, 0, nil
}
func (r *memInvoiceRepo) Update(_ context.Context, invoice *model.Invoice) error {
	r.invoices[invoice.ID] = invoice
	return nil
}
func (r *memInvoiceRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	if inv, ok := r.invoices[id]; ok {
		inv.Status = status
	}
	return nil
}
func (r *memInvoiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.invoices, id)
	r.deleted = append(r.deleted, id)
	return nil
}
func (r *memInvoiceRepo) CountByPrefix(_ context.Context, _ string) (int64, error) { return 0, nil }
func (r *memInvoiceRepo) ListCreditNotesByOriginal(_ context.Context, _ uuid.UUID) ([]model.Invoice, error) {
	return nil, nil
}
func (r *memInvoiceRepo) ListByStatuses(_ context.Context, statuses []string) ([]model.Invoice, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		for _, s := range statuses {
			if inv.Status == s {
				out = append(out, *inv)
				break
			}
		}
	}
	return out, nil
}
func (r *memInvoiceRepo) MarkOverdue(_ context.Context, id uuid.UUID, _ time.Time) error {
	if inv, ok := r.invoices[id]; ok {
		inv.Status = model.InvoiceStatusOverdue
	}
	return nil
}

type countingSender struct {
	sent []mailer.Message
}

func (s *countingSender) Send(_ context.Context, msg mailer.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

type nopAudit struct{}

func (nopAudit) Record(_ context.Context, _ *uuid.UUID, _, _, _ string, _ interface{}) {}
func (nopAudit) List(_ context.Context, _ string, _, _ int) ([]AuditEntryResponse, int64, error) {
	return nil, 0, nil
}

func testHub() *websocket.Hub {
	hub := websocket.NewHub()
	go hub.Run()
	return hub
}

// --- Sweep behavior ---

func TestRunSweepCountsOnlyActualSends(t *testing.T) {
	now := time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC)
	customer := &model.Customer{ID: uuid.New(), Name: "Bygg AB", Email: "faktura@byggab.se"}

	quoteRepo := &memQuoteRepo{quotes: []model.Quote{{
		ID:         uuid.New(),
		QuoteNo:    "OFF-20250907-00001",
		CustomerID: customer.ID,
		Customer:   customer,
		Amount:     decimal.NewFromInt(15000),
		Status:     model.QuoteStatusSent,
		CreatedAt:  now.AddDate(0, 0, -3),
	}}}

	reminderRepo := newMemReminderRepo()
	sender := &countingSender{}
	svc := NewReminderService(reminderRepo, quoteRepo, newMemInvoiceRepo(), sender, testHub(), nopAudit{})

	first, err := svc.RunSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, first.QuoteReminders)
	assert.Len(t, sender.sent, 1)

	// A second run on the same day hits the dedup log. Nothing is sent and
	// nothing is counted.
	second, err := svc.RunSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, second.QuoteReminders)
	assert.Empty(t, second.Errors)
	assert.Len(t, sender.sent, 1)
}

func TestRunSweepInvoiceReRunSameDay(t *testing.T) {
	now := time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC)
	customer := &model.Customer{ID: uuid.New(), Name: "Svensson", Email: "sven@example.se"}

	invoiceRepo := newMemInvoiceRepo()
	invoice := &model.Invoice{
		ID:         uuid.New(),
		InvoiceNo:  "INV-20250810-00001",
		CustomerID: customer.ID,
		Customer:   customer,
		Subtotal:   d("1000"),
		VATAmount:  d("250"),
		Amount:     d("1250"),
		DueDate:    now.AddDate(0, 0, -7),
		Status:     model.InvoiceStatusSent,
	}
	require.NoError(t, invoiceRepo.Create(context.Background(), invoice))

	sender := &countingSender{}
	svc := NewReminderService(newMemReminderRepo(), &memQuoteRepo{}, invoiceRepo, sender, testHub(), nopAudit{})

	first, err := svc.RunSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, first.MarkedOverdue)
	assert.Equal(t, 1, first.InvoiceReminders)
	assert.Len(t, sender.sent, 1)

	second, err := svc.RunSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, second.MarkedOverdue)
	assert.Equal(t, 0, second.InvoiceReminders)
	assert.Len(t, sender.sent, 1)
}
