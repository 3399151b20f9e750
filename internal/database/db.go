package database

import (
	"log"

	"aprobaciones/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes the relational request store via GORM.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate applies the relational schema: directory, catalog, requests and
// their append-only status history. Audit events live in redis and have no
// relational schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RequestType{},
		&model.Request{},
		&model.StatusHistoryEntry{},
	)
}
