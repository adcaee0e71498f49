package schedule

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/washpoint/carwash-app/db"
	"github.com/washpoint/carwash-app/models"
)

// newTestDB opens a throwaway sqlite database with the full schema, including
// the raw partial index on bookings.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "schedule_test.db")
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	return conn
}

func seedWasher(t *testing.T, conn *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Name: "Washer", Email: email, Password: "x", Role: models.RoleWasher}
	require.NoError(t, conn.Create(&user).Error)
	return user
}

func seedStation(t *testing.T, conn *gorm.DB, owner models.User) models.CarWashStation {
	t.Helper()
	station := models.CarWashStation{
		UserID:       owner.ID,
		Name:         "Sparkle Wash",
		Location:     "Main St 1",
		PricePerWash: 25,
	}
	require.NoError(t, conn.Create(&station).Error)
	return station
}

func seedRule(t *testing.T, conn *gorm.DB, stationID uint, opening, closing string, duration int, days models.DayList) models.AvailabilityRule {
	t.Helper()
	rule := models.AvailabilityRule{
		CarWashStationID:    stationID,
		OpeningTime:         opening,
		ClosingTime:         closing,
		SlotDurationMinutes: duration,
		DaysOpen:            days,
	}
	require.NoError(t, conn.Create(&rule).Error)
	return rule
}

func seedBooking(t *testing.T, conn *gorm.DB, userID, stationID, slotID uint, date time.Time, status models.BookingStatus) models.Booking {
	t.Helper()
	booking := models.Booking{
		UserID:           userID,
		CarWashStationID: stationID,
		TimeSlotID:       slotID,
		BookingDate:      NormalizeDate(date),
		Status:           status,
	}
	require.NoError(t, conn.Create(&booking).Error)
	return booking
}

func allDays() models.DayList {
	return models.DayList{
		models.DaySun, models.DayMon, models.DayTue, models.DayWed,
		models.DayThu, models.DayFri, models.DaySat,
	}
}

// nextWeekday returns a future date, at least a week out, falling on wd.
// Reconciliation only touches dates from today forward, so tests stay in the
// future to land inside its scope.
func nextWeekday(wd time.Weekday) time.Time {
	d := NormalizeDate(time.Now().UTC()).AddDate(0, 0, 7)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-09-07")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "Monday", DayNameOf(d))
	assert.Equal(t, models.DayMon, DayTagOf(d))

	d, err = ParseDate("2026-09-07T18:30:00+05:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), d, "time of day and zone are discarded")

	_, err = ParseDate("07/09/2026")
	assert.True(t, IsValidation(err))
}

func TestNormalizeDateIsIdempotent(t *testing.T) {
	now := time.Date(2026, 9, 7, 23, 59, 59, 999999999, time.FixedZone("X", 3600))
	once := NormalizeDate(now)
	assert.Equal(t, once, NormalizeDate(once))
	assert.Equal(t, time.UTC, once.Location())
}
