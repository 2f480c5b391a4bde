package repository

import (
	"context"
	"time"

	"crmbackend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, status string, page, limit int) ([]model.Order, int64, error)
	Update(ctx context.Context, order *model.Order) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
	// ListCommissionable returns orders created inside the period where the
	// given user is primary or secondary salesperson and commission is not
	// yet paid out.
	ListCommissionable(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("Customer").
		Preload("PrimarySalesperson").
		Preload("SecondarySalesperson").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, status string, page, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Order{})
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
	if err := fetch.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Save(order).Error
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Order{}).Where("order_no LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) ListCommissionable(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.Order, error) {
	var orders []model.Order
	if err := GetDB(ctx, r.db).
		Where("commission_paid = false").
		Where("(primary_salesperson_id = ? OR secondary_salesperson_id = ?)", userID, userID).
		Where("created_at >= ? AND created_at < ?", from, to).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
