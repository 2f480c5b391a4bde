package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStatus enum constants
const (
	QuoteStatusDraft    = "DRAFT"
	QuoteStatusSent     = "SENT"
	QuoteStatusAccepted = "ACCEPTED"
	QuoteStatusRejected = "REJECTED"
)

// Quote is a minimal offer document. The reminder sweep follows up SENT
// quotes at fixed day offsets from their creation date.
type Quote struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuoteNo    string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"quote_no"`
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer   *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount"`
	Status     string          `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
