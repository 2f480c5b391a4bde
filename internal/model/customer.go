package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a CRM customer record referenced by orders, quotes and invoices.
// OrgNumber holds either an organisationsnummer or a personnummer for
// private customers.
type Customer struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	OrgNumber  string         `gorm:"type:varchar(13)" json:"org_number"`
	Email      string         `gorm:"type:varchar(255);index" json:"email"`
	Phone      string         `gorm:"type:varchar(20)" json:"phone"`
	Address    string         `gorm:"type:varchar(255)" json:"address"`
	PostalCode string         `gorm:"type:varchar(10)" json:"postal_code"`
	City       string         `gorm:"type:varchar(100)" json:"city"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
