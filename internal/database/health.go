package database

import (
	"context"

	"gorm.io/gorm"
)

// Ping runs a trivial query to verify the database answers
func Ping(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec("SELECT 1").Error
}
