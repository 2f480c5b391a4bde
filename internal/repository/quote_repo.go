package repository

import (
	"context"

	"crmbackend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuoteRepository interface {
	Create(ctx context.Context, quote *model.Quote) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	List(ctx context.Context, status string, page, limit int) ([]model.Quote, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByStatus(ctx context.Context, status string) ([]model.Quote, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	return GetDB(ctx, r.db).Create(quote).Error
}

func (r *quoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	if err := GetDB(ctx, r.db).Preload("Customer").First(&quote, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) List(ctx context.Context, status string, page, limit int) ([]model.Quote, int64, error) {
	var quotes []model.Quote
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Quote{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Preload("Customer")
	if status != "" {
		fetch = fetch.Where("status = ?", status)
	}
	if err := fetch.Order("created_at DESC").Offset(offset).Limit(limit).Find(&quotes).Error; err != nil {
		return nil, 0, err
	}

	return quotes, total, nil
}

func (r *quoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Quote{}).Where("id = ?", id).Update("status", status).Error
}

func (r *quoteRepository) ListByStatus(ctx context.Context, status string) ([]model.Quote, error) {
	var quotes []model.Quote
	if err := GetDB(ctx, r.db).Preload("Customer").Where("status = ?", status).Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *quoteRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Quote{}).Where("quote_no LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
