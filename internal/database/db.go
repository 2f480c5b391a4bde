package database

import (
	"log"

	"crmbackend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.Team{},
		&model.EmployeeProfile{},
		&model.RefreshToken{},
		&model.Customer{},
		&model.Order{},
		&model.Quote{},
		&model.Invoice{},
		&model.InvoiceLineItem{},
		&model.TimeLog{},
		&model.EmailLog{},
		&model.ReminderLog{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
