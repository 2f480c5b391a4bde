package model

import (
	"time"

	"github.com/google/uuid"
)

// ReminderEntityType enum constants
const (
	ReminderEntityQuote   = "QUOTE"
	ReminderEntityInvoice = "INVOICE"
)

// EmailLog records every outbound message the core asked the mail
// collaborator to deliver. Delivery mechanics live outside this service.
type EmailLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Recipient  string    `gorm:"type:varchar(255);not null" json:"recipient"`
	Subject    string    `gorm:"type:varchar(255);not null" json:"subject"`
	Body       string    `gorm:"type:text" json:"body"`
	EntityType string    `gorm:"type:varchar(20);index" json:"entity_type"` // QUOTE, INVOICE
	EntityID   *uuid.UUID `gorm:"type:uuid;index" json:"entity_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// ReminderLog deduplicates the reminder sweep: one row per entity, reminder
// type and day offset means that reminder has been sent and must not repeat.
type ReminderLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EntityType string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_reminder_dedup" json:"entity_type"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reminder_dedup" json:"entity_id"`
	DayOffset  int       `gorm:"type:int;not null;uniqueIndex:idx_reminder_dedup" json:"day_offset"`
	CreatedAt  time.Time `json:"created_at"`
}
