package repository

import (
	"context"
	"time"

	"crmbackend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceListFilter narrows the invoice listing. CreditNotes selects between
// regular invoices and credit notes.
type InvoiceListFilter struct {
	Status      string
	CustomerID  *uuid.UUID
	CreditNotes bool
	Page        int
	Limit       int
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	CreateItems(ctx context.Context, items []model.InvoiceLineItem) error
	DeleteItems(ctx context.Context, invoiceID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error)
	Update(ctx context.Context, invoice *model.Invoice) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
	ListCreditNotesByOriginal(ctx context.Context, originalID uuid.UUID) ([]model.Invoice, error)
	// ListByStatuses feeds the reminder sweep: SENT (and for the overdue
	// transition also DRAFT) invoices regardless of due date.
	ListByStatuses(ctx context.Context, statuses []string) ([]model.Invoice, error)
	MarkOverdue(ctx context.Context, id uuid.UUID, now time.Time) error
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) CreateItems(ctx context.Context, items []model.InvoiceLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&items).Error
}

func (r *invoiceRepository) DeleteItems(ctx context.Context, invoiceID uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.InvoiceLineItem{}, "invoice_id = ?", invoiceID).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Customer").
		Preload("AssignedUser").
		Preload("AssignedTeam").
		First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("is_credit_note = ?", filter.CreditNotes)
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.CustomerID != nil {
			q = q.Where("customer_id = ?", *filter.CustomerID)
		}
		return q
	}

	if err := apply(db.Model(&model.Invoice{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := apply(db.Preload("Customer")).
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Omit("Items").Save(invoice).Error
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Invoice{}).Where("id = ?", id).Update("status", status).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Line items cascade via the FK constraint.
	return GetDB(ctx, r.db).Delete(&model.Invoice{}, "id = ?", id).Error
}

func (r *invoiceRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Invoice{}).Where("invoice_no LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *invoiceRepository) ListCreditNotesByOriginal(ctx context.Context, originalID uuid.UUID) ([]model.Invoice, error) {
	var notes []model.Invoice
	if err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("is_credit_note = true AND original_invoice_id = ?", originalID).
		Order("created_at ASC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *invoiceRepository) ListByStatuses(ctx context.Context, statuses []string) ([]model.Invoice, error) {
	var invoices []model.Invoice
	if err := GetDB(ctx, r.db).
		Preload("Customer").
		Where("is_credit_note = false AND status IN ?", statuses).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *invoiceRepository) MarkOverdue(ctx context.Context, id uuid.UUID, now time.Time) error {
	return GetDB(ctx, r.db).Model(&model.Invoice{}).
		Where("id = ? AND status IN ?", id, []string{model.InvoiceStatusDraft, model.InvoiceStatusSent}).
		Updates(map[string]interface{}{"status": model.InvoiceStatusOverdue, "updated_at": now}).Error
}
