package db

import (
	"gorm.io/gorm"

	"github.com/washpoint/carwash-app/models"
)

// Migrate runs AutoMigrate for all models plus the raw constraints GORM tags
// cannot express.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.CarWashStation{},
		&models.AvailabilityRule{},
		&models.Availability{},
		&models.TimeSlot{},
		&models.Booking{},
	)
	if err != nil {
		return err
	}

	// One active booking per slot per calendar day. Booking dates are
	// normalized to midnight UTC, so this backstops the in-transaction
	// bookable check across concurrent server processes. Partial indexes work
	// on both Postgres and SQLite.
	return conn.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_slot_date
		ON bookings (time_slot_id, booking_date)
		WHERE status NOT IN ('cancelled', 'rejected') AND deleted_at IS NULL`).Error
}
