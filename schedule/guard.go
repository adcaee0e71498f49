package schedule

import (
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/washpoint/carwash-app/models"
)

// SlotBookingGuard answers "which slots are free" and "may this slot be
// booked". CheckBookable runs against whatever handle it is given so the
// booking collaborator can re-run it on its own insert transaction.
type SlotBookingGuard struct {
	db   *gorm.DB
	prov *AutoProvisioner
}

// DaySlots is the free-slot listing for one station and date.
type DaySlots struct {
	Date        time.Time         `json:"date"`
	Day         string            `json:"day"`
	TotalSlots  int               `json:"total_slots"`
	BookedCount int               `json:"booked_count"`
	FreeSlots   []models.TimeSlot `json:"free_slots"`
}

// ListFree returns the unblocked, unbooked slots of the station's
// availability for the date, ordered by start time. A missing or closed
// availability yields an empty listing, not an error.
func (g *SlotBookingGuard) ListFree(stationID uint, date time.Time) (*DaySlots, error) {
	date = NormalizeDate(date)
	out := &DaySlots{Date: date, Day: DayNameOf(date)}

	var av models.Availability
	err := g.db.Preload("TimeSlots").
		Where("car_wash_station_id = ? AND date = ?", stationID, date).
		First(&av).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	out.TotalSlots = len(av.TimeSlots)
	if av.IsClosed {
		return out, nil
	}

	booked, err := activeBookingSlotIDs(g.db, stationID, date)
	if err != nil {
		return nil, err
	}
	out.BookedCount = len(booked)

	for _, slot := range av.TimeSlots {
		if slot.IsBlocked || booked[slot.ID] {
			continue
		}
		out.FreeSlots = append(out.FreeSlots, slot)
	}
	sort.Slice(out.FreeSlots, func(i, j int) bool {
		a, _ := ParseClock(out.FreeSlots[i].StartTime)
		b, _ := ParseClock(out.FreeSlots[j].StartTime)
		return a < b
	})
	return out, nil
}

// EnsureAndListFree provisions the date's schedule from the rule when missing
// and then lists free slots. This is the hot path for "show me slots for
// date X".
func (g *SlotBookingGuard) EnsureAndListFree(stationID uint, date time.Time) (*DaySlots, error) {
	if _, err := g.prov.Ensure(stationID, date); err != nil {
		return nil, err
	}
	return g.ListFree(stationID, date)
}

// CheckBookable decides whether a booking may claim the slot on the date.
// Booking creation must call this again on the same transaction that inserts
// the booking, so the free-check and the claim see one consistent snapshot.
func (g *SlotBookingGuard) CheckBookable(tx *gorm.DB, slotID, stationID uint, date time.Time) error {
	if tx == nil {
		tx = g.db
	}
	date = NormalizeDate(date)
	start, end := dayBounds(date)

	var held int64
	err := tx.Model(&models.Booking{}).
		Where("time_slot_id = ? AND car_wash_station_id = ?", slotID, stationID).
		Where("booking_date BETWEEN ? AND ?", start, end).
		Where("status NOT IN ?", []models.BookingStatus{models.BookingCancelled, models.BookingRejected}).
		Count(&held).Error
	if err != nil {
		return err
	}
	if held > 0 {
		return ErrSlotConflict
	}

	var slot models.TimeSlot
	err = tx.Joins("Availability").
		Where("time_slots.id = ? AND \"Availability\".car_wash_station_id = ?", slotID, stationID).
		First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if slot.IsBlocked || slot.Availability.IsClosed {
		return ErrDayClosed
	}
	if slot.Availability.Day != DayNameOf(date) {
		return ErrDayMismatch
	}
	return nil
}
