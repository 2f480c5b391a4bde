package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Role constants
const (
	RoleAdmin   = "admin"
	RoleEkonomi = "ekonomi"
	RoleSaljare = "säljare"
)

// EmploymentType enum constants
const (
	EmploymentHourly = "HOURLY"
	EmploymentSalary = "SALARY"
)

// User represents the central user entity for logic and database structure
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username  string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone     string         `gorm:"type:varchar(20);not null" json:"phone"`
	Password  string         `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	Role      string         `gorm:"type:varchar(50);not null" json:"role"`
	TeamID    *uuid.UUID     `gorm:"type:uuid;index" json:"team_id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

// Team groups users for invoice assignment
type Team struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// EmployeeProfile extends a user account with compensation attributes.
// There is no independent creation path: the row is upserted by an
// administrator against an existing user account.
type EmployeeProfile struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID             uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User               *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	EmploymentType     string          `gorm:"type:varchar(20);not null;default:'HOURLY'" json:"employment_type"` // HOURLY, SALARY
	HourlyRate         decimal.Decimal `gorm:"type:decimal(18,4);default:0" json:"hourly_rate"`
	MonthlySalary      decimal.Decimal `gorm:"type:decimal(18,4);default:0" json:"monthly_salary"`
	CommissionEligible bool            `gorm:"default:false" json:"commission_eligible"`
	CommissionRate     decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"commission_rate"` // percent, e.g. 5 = 5%
	Personnummer       string          `gorm:"type:varchar(13)" json:"personnummer"`
	BankAccount        string          `gorm:"type:varchar(50)" json:"bank_account"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
