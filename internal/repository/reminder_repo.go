package repository

import (
	"context"

	"crmbackend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderRepository covers the reminder dedup log and the outbound email log.
type ReminderRepository interface {
	HasReminder(ctx context.Context, entityType string, entityID uuid.UUID, dayOffset int) (bool, error)
	CreateReminder(ctx context.Context, log *model.ReminderLog) error
	CreateEmailLog(ctx context.Context, log *model.EmailLog) error
	ListEmailLogs(ctx context.Context, entityID uuid.UUID) ([]model.EmailLog, error)
}

type reminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) HasReminder(ctx context.Context, entityType string, entityID uuid.UUID, dayOffset int) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ReminderLog{}).
		Where("entity_type = ? AND entity_id = ? AND day_offset = ?", entityType, entityID, dayOffset).
		Count(&count).Error
	return count > 0, err
}

func (r *reminderRepository) CreateReminder(ctx context.Context, log *model.ReminderLog) error {
	return GetDB(ctx, r.db).Create(log).Error
}

func (r *reminderRepository) CreateEmailLog(ctx context.Context, log *model.EmailLog) error {
	return GetDB(ctx, r.db).Create(log).Error
}

func (r *reminderRepository) ListEmailLogs(ctx context.Context, entityID uuid.UUID) ([]model.EmailLog, error) {
	var logs []model.EmailLog
	if err := GetDB(ctx, r.db).
		Where("entity_id = ?", entityID).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
