package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washpoint/carwash-app/models"
)

func TestAvailabilityCreate(t *testing.T) {
	conn := newTestDB(t)
	svc := New(conn)
	owner := seedWasher(t, conn, "owner@wash.test")
	station := seedStation(t, conn, owner)
	requester := Requester{ID: owner.ID, Role: models.RoleWasher}
	seedRule(t, conn, station.ID, "08:00 AM", "06:00 PM", 30, models.DayList{models.DayMon, models.DayFri})

	monday := nextWeekday(time.Monday)
	av, err := svc.Availability.Create(AvailabilityInput{
		CarWashStationID:    station.ID,
		Date:                monday.Format("2006-01-02"),
		OpeningTime:         "09:00 AM",
		ClosingTime:         "12:00 PM",
		SlotDurationMinutes: 60,
		Note:                "short day",
	}, requester)
	require.NoError(t, err)

	assert.Equal(t, monday, av.Date)
	assert.Equal(t, "Monday", av.Day)
	assert.Equal(t, "short day", av.Note)
	require.Len(t, av.TimeSlots, 3)
	assert.Equal(t, "09:00 AM", av.TimeSlots[0].StartTime)
	assert.Equal(t, "12:00 PM", av.TimeSlots[2].EndTime)
	assert.Equal(t, 1, av.TimeSlots[0].Capacity)

	// The explicit snapshot wins over the rule's hours for this date.
	found, err := svc.Availability.Find(av.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00 AM", found.OpeningTime)
	assert.Equal(t, 60, found.SlotDurationMinutes)
}

func TestAvailabilityCreateRejections(t *testing.T) {
	conn := newTestDB(t)
	svc := New(conn)
	owner := seedWasher(t, conn, "owner@wash.test")
	station := seedStation(t, conn, owner)
	requester := Requester{ID: owner.ID, Role: models.RoleWasher}

	base := AvailabilityInput{
		CarWashStationID:    station.ID,
		Date:                nextWeekday(time.Monday).Format("2006-01-02"),
		OpeningTime:         "09:00 AM",
		ClosingTime:         "12:00 PM",
		SlotDurationMinutes: 60,
	}

	// No rule yet.
	_, err := svc.Availability.Create(base, requester)
	assert.True(t, IsValidation(err), "got %v", err)

	seedRule(t, conn, station.ID, "08:00 AM", "06:00 PM", 30, models.DayList{models.DayMon})

	closed := base
	closed.Date = nextWeekday(time.Sunday).Format("2006-01-02")
	_, err = svc.Availability.Create(closed, requester)
	assert.ErrorIs(t, err, ErrDayClosed)

	_, err = svc.Availability.Create(base, requester)
	require.NoError(t, err)
	_, err = svc.Availability.Create(base, requester)
	assert.ErrorIs(t, err, ErrAvailabilityExists)

	// Rejections leave no partial rows behind.
	var avCount, slotCount int64
	require.NoError(t, conn.Model(&models.Availability{}).Count(&avCount).Error)
	require.NoError(t, conn.Model(&models.TimeSlot{}).Count(&slotCount).Error)
	assert.EqualValues(t, 1, avCount)
	assert.EqualValues(t, 3, slotCount)
}

func TestAvailabilityCreateBulk(t *testing.T) {
	conn := newTestDB(t)
	svc := New(conn)
	owner := seedWasher(t, conn, "owner@wash.test")
	station := seedStation(t, conn, owner)
	requester := Requester{ID: owner.ID, Role: models.RoleWasher}
	seedRule(t, conn, station.ID, "09:00 AM", "12:00 PM", 60, models.DayList{models.DayMon, models.DayTue})

	monday := nextWeekday(time.Monday)
	item := func(date time.Time) AvailabilityInput {
		return AvailabilityInput{
			CarWashStationID:    station.ID,
			Date:                date.Format("2006-01-02"),
			OpeningTime:         "09:00 AM",
			ClosingTime:         "12:00 PM",
			SlotDurationMinutes: 60,
		}
	}

	result, err := svc.Availability.CreateBulk([]AvailabilityInput{
		item(monday),
		item(monday.AddDate(0, 0, 1)), // Tuesday, fine
		item(monday.AddDate(0, 0, 2)), // Wednesday, closed
		item(monday),                  // duplicate of the first
	}, requester)
	require.NoError(t, err)

	assert.Len(t, result.Created, 2)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Index)
	assert.Equal(t, 3, result.Errors[1].Index)

	avs, err := svc.Availability.ListByStation(station.ID)
	require.NoError(t, err)
	assert.Len(t, avs, 2)
}

func TestGenerateFromRule(t *testing.T) {
	conn := newTestDB(t)
	svc := New(conn)
	owner := seedWasher(t, conn, "owner@wash.test")
	station := seedStation(t, conn, owner)
	requester := Requester{ID: owner.ID, Role: models.RoleWasher}
	seedRule(t, conn, station.ID, "09:00 AM", "12:00 PM", 60, models.DayList{models.DayMon, models.DayWed})

	monday := nextWeekday(time.Monday)
	sunday := monday.AddDate(0, 0, 6)

	result, err := svc.Availability.GenerateFromRule(
		station.ID, monday.Format("2006-01-02"), sunday.Format("2006-01-02"), false, requester)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created, "Monday and Wednesday")
	assert.Equal(t, 5, result.Skipped, "closed weekdays")
	assert.Zero(t, result.Refreshed)

	// A second run over the same range creates nothing new.
	result, err = svc.Availability.GenerateFromRule(
		station.ID, monday.Format("2006-01-02"), sunday.Format("2006-01-02"), false, requester)
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Equal(t, 7, result.Skipped)

	// With overwrite, existing dates are refreshed to the rule's values.
	require.NoError(t, conn.Model(&models.AvailabilityRule{}).
		Where("car_wash_station_id = ?", station.ID).
		Update("slot_duration_minutes", 30).Error)
	result, err = svc.Availability.GenerateFromRule(
		station.ID, monday.Format("2006-01-02"), sunday.Format("2006-01-02"), true, requester)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Refreshed)

	avs, err := svc.Availability.ListByStation(station.ID)
	require.NoError(t, err)
	require.Len(t, avs, 2)
	for _, av := range avs {
		assert.Equal(t, 30, av.SlotDurationMinutes)
		assert.Len(t, av.TimeSlots, 6)
	}

	_, err = svc.Availability.GenerateFromRule(
		station.ID, sunday.Format("2006-01-02"), monday.Format("2006-01-02"), false, requester)
	assert.True(t, IsValidation(err), "inverted range, got %v", err)
}

func TestAvailabilityDelete(t *testing.T) {
	conn := newTestDB(t)
	svc := New(conn)
	owner := seedWasher(t, conn, "owner@wash.test")
	customer := seedWasher(t, conn, "customer@wash.test")
	station := seedStation(t, conn, owner)
	requester := Requester{ID: owner.ID, Role: models.RoleWasher}
	seedRule(t, conn, station.ID, "09:00 AM", "12:00 PM", 60, allDays())

	day, err := svc.Provisioner.Ensure(station.ID, nextWeekday(time.Thursday))
	require.NoError(t, err)

	booking := seedBooking(t, conn, customer.ID, station.ID, day.TimeSlots[0].ID, day.Date, models.BookingPending)
	assert.ErrorIs(t, svc.Availability.Delete(day.ID, requester), ErrHasBookings)

	// A cancelled booking no longer blocks deletion.
	require.NoError(t, conn.Model(&booking).Update("status", models.BookingCancelled).Error)
	require.NoError(t, svc.Availability.Delete(day.ID, requester))

	_, err = svc.Availability.Find(day.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	var slots int64
	require.NoError(t, conn.Model(&models.TimeSlot{}).Where("availability_id = ?", day.ID).Count(&slots).Error)
	assert.Zero(t, slots)

	// Deleting the availability frees the (station, date) pair for re-creation.
	_, err = svc.Provisioner.Ensure(station.ID, day.Date)
	require.NoError(t, err)
}

func TestAvailableToday(t *testing.T) {
	conn := newTestDB(t)
	svc := New(conn)
	owner := seedWasher(t, conn, "owner@wash.test")
	station := seedStation(t, conn, owner)
	seedRule(t, conn, station.ID, "09:00 AM", "12:00 PM", 60, allDays())

	listed, err := svc.Availability.AvailableToday()
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = svc.Provisioner.EnsureToday(station.ID)
	require.NoError(t, err)

	listed, err = svc.Availability.AvailableToday()
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, station.ID, listed[0].CarWashStationID)
	assert.Equal(t, "Sparkle Wash", listed[0].CarWashStation.Name)
	assert.Len(t, listed[0].TimeSlots, 3)
}
