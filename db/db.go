package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open establishes the database connection. The handle is passed explicitly
// to services and controllers; there is no package-level connection.
func Open(databaseURL string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
}
