package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus enum constants
const (
	InvoiceStatusDraft   = "DRAFT"
	InvoiceStatusSent    = "SENT"
	InvoiceStatusPaid    = "PAID"
	InvoiceStatusOverdue = "OVERDUE"
)

// CreditReason enum constants. ReasonAnnat requires a free-text note.
const (
	CreditReasonReturvara       = "returvara"
	CreditReasonPriskorrigering = "priskorrigering"
	CreditReasonFelaktigFaktura = "felaktig_faktura"
	CreditReasonAnnat           = "annat"
)

// Invoice is the central billing document. Credit notes share the table with
// is_credit_note set: they carry their own numbering sequence, a link to the
// original invoice and negated amounts.
//
// Monetary columns are always derived from the line items: Subtotal is the
// sum of line totals, VATAmount is Subtotal at the Swedish standard rate and
// Amount is Subtotal + VATAmount. CreditedAmount accumulates the (negative)
// amounts of credit notes issued against this invoice.
type Invoice struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceNo  string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_no"`
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer   *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	OrderID    *uuid.UUID      `gorm:"type:uuid;index" json:"order_id"` // source order, nullable
	Order      *Order          `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"subtotal"`
	VATAmount  decimal.Decimal `gorm:"column:vat_amount;type:decimal(18,4);not null;default:0" json:"vat_amount"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount"`
	DueDate    time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	Status     string          `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`

	// Assignment: an individual user or a team, mutually exclusive.
	AssignedUserID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_user_id"`
	AssignedUser   *User      `gorm:"foreignKey:AssignedUserID" json:"assigned_user,omitempty"`
	AssignedTeamID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_team_id"`
	AssignedTeam   *Team      `gorm:"foreignKey:AssignedTeamID" json:"assigned_team,omitempty"`

	// ROT deduction metadata for statutory reporting. ROTAmount reduces the
	// payable figure on the printed document, never Amount itself.
	ROTApplicable   bool            `gorm:"column:rot_applicable;default:false" json:"rot_applicable"`
	ROTPayerNumber  string          `gorm:"column:rot_payer_number;type:varchar(13)" json:"rot_payer_number"`
	ROTProperty     string          `gorm:"column:rot_property;type:varchar(100)" json:"rot_property"` // fastighetsbeteckning
	ROTAmount       decimal.Decimal `gorm:"column:rot_amount;type:decimal(18,4);default:0" json:"rot_amount"`

	// Credit-note fields
	IsCreditNote      bool            `gorm:"default:false;index" json:"is_credit_note"`
	OriginalInvoiceID *uuid.UUID      `gorm:"type:uuid;index" json:"original_invoice_id"`
	OriginalInvoice   *Invoice        `gorm:"foreignKey:OriginalInvoiceID" json:"original_invoice,omitempty"`
	CreditReason      string          `gorm:"type:varchar(30)" json:"credit_reason"`
	CreditReasonText  string          `gorm:"type:text" json:"credit_reason_text"`
	CreditedAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"credited_amount"` // <= 0

	Items     []InvoiceLineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NetAmount is Amount reduced by the accumulated credits. CreditedAmount is
// stored negative, so this is a plain addition.
func (i *Invoice) NetAmount() decimal.Decimal {
	return i.Amount.Add(i.CreditedAmount)
}

// RemainingCreditable is how much can still be credited against this invoice.
func (i *Invoice) RemainingCreditable() decimal.Decimal {
	return i.Amount.Abs().Sub(i.CreditedAmount.Abs())
}

// PayableAmount is the figure shown on the printed document: Amount reduced
// by the declared ROT deduction.
func (i *Invoice) PayableAmount() decimal.Decimal {
	return i.Amount.Sub(i.ROTAmount)
}

// InvoiceLineItem belongs to exactly one invoice. Total is always recomputed
// as Quantity * UnitPrice, never trusted from input. Line items are deleted
// and recreated wholesale on invoice edit.
type InvoiceLineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Position    int             `gorm:"type:int;not null;default:0" json:"position"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
}
