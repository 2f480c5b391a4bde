package model

import (
	"time"

	"github.com/google/uuid"
)

// TimeLog records worked time for one employee on one order. EndTime is nil
// while the log is still running; worked minutes are only computable once it
// is set.
type TimeLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EmployeeID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"employee_id"` // FK to users.id
	Employee     *User      `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	OrderID      *uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	Order        *Order     `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	StartTime    time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	BreakMinutes int        `gorm:"type:int;not null;default:0" json:"break_minutes"`
	IsApproved   bool       `gorm:"default:false;index" json:"is_approved"`
	ApprovalNote string     `gorm:"type:text" json:"approval_note"`
	Note         string     `gorm:"type:text" json:"note"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// WorkedMinutes returns end - start - break, or 0 while the log is open.
// Negative results (break longer than the interval) clamp to 0.
func (t *TimeLog) WorkedMinutes() int {
	if t.EndTime == nil {
		return 0
	}
	minutes := int(t.EndTime.Sub(t.StartTime).Minutes()) - t.BreakMinutes
	if minutes < 0 {
		return 0
	}
	return minutes
}
