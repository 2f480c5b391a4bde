package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus constants
const (
	OrderStatusNew             = "NEW"
	OrderStatusInProgress      = "IN_PROGRESS"
	OrderStatusReadyToInvoice  = "READY_TO_INVOICE"
	OrderStatusInvoiceComplete = "INVOICE_COMPLETE"
	OrderStatusCancelled       = "CANCELLED"
)

// Order represents a sold job. It is the source document for invoice
// creation and carries the commission attribution: an optional primary and
// secondary salesperson plus the split percentage awarded to the secondary.
type Order struct {
	ID                     uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNo                string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"order_no"`
	CustomerID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer               *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Description            string          `gorm:"type:text" json:"description"`
	Value                  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"value"`
	Status                 string          `gorm:"type:varchar(30);not null;default:'NEW';index" json:"status"`
	PrimarySalespersonID   *uuid.UUID      `gorm:"type:uuid;index" json:"primary_salesperson_id"`
	PrimarySalesperson     *User           `gorm:"foreignKey:PrimarySalespersonID" json:"primary_salesperson,omitempty"`
	SecondarySalespersonID *uuid.UUID      `gorm:"type:uuid;index" json:"secondary_salesperson_id"`
	SecondarySalesperson   *User           `gorm:"foreignKey:SecondarySalespersonID" json:"secondary_salesperson,omitempty"`
	CommissionSplitPct     decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"commission_split_pct"` // 0-100, share of the secondary
	CommissionPaid         bool            `gorm:"default:false;index" json:"commission_paid"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}
