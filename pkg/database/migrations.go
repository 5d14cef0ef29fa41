package database

import (
	"github.com/wacrm/pkg/entities"
	"gorm.io/gorm"
)

// AutoMigrate runs database migrations
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entities.Contact{},
		&entities.Message{},
	)
}
