package repository

import (
	"context"
	"time"

	"crmbackend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TimeLogRepository interface {
	Create(ctx context.Context, log *model.TimeLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TimeLog, error)
	Update(ctx context.Context, log *model.TimeLog) error
	ListByEmployeePeriod(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]model.TimeLog, error)
	ApproveByEmployeePeriod(ctx context.Context, employeeID uuid.UUID, from, to time.Time, note string) (int64, error)
}

type timeLogRepository struct {
	db *gorm.DB
}

func NewTimeLogRepository(db *gorm.DB) TimeLogRepository {
	return &timeLogRepository{db: db}
}

func (r *timeLogRepository) Create(ctx context.Context, log *model.TimeLog) error {
	return GetDB(ctx, r.db).Create(log).Error
}

func (r *timeLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TimeLog, error) {
	var log model.TimeLog
	if err := GetDB(ctx, r.db).First(&log, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *timeLogRepository) Update(ctx context.Context, log *model.TimeLog) error {
	return GetDB(ctx, r.db).Save(log).Error
}

func (r *timeLogRepository) ListByEmployeePeriod(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]model.TimeLog, error) {
	var logs []model.TimeLog
	if err := GetDB(ctx, r.db).
		Where("employee_id = ? AND start_time >= ? AND start_time < ?", employeeID, from, to).
		Order("start_time ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *timeLogRepository) ApproveByEmployeePeriod(ctx context.Context, employeeID uuid.UUID, from, to time.Time, note string) (int64, error) {
	result := GetDB(ctx, r.db).Model(&model.TimeLog{}).
		Where("employee_id = ? AND start_time >= ? AND start_time < ? AND is_approved = false", employeeID, from, to).
		Updates(map[string]interface{}{"is_approved": true, "approval_note": note})
	return result.RowsAffected, result.Error
}

