package schedule

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/washpoint/carwash-app/models"
)

// AvailabilityStore owns the materialized per-date schedules and their slot
// grids, including reconciliation after a rule change.
type AvailabilityStore struct {
	db *gorm.DB
}

// AvailabilityInput carries the fields for explicit availability creation.
type AvailabilityInput struct {
	CarWashStationID    uint   `json:"car_wash_station_id"`
	Date                string `json:"date"`
	OpeningTime         string `json:"opening_time"`
	ClosingTime         string `json:"closing_time"`
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
	Note                string `json:"note"`
}

// BulkError records one failed item of a bulk creation.
type BulkError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// BulkResult summarizes a bulk creation.
type BulkResult struct {
	Created []models.Availability `json:"created"`
	Errors  []BulkError           `json:"errors"`
}

// GenerateResult summarizes a from-rule range generation.
type GenerateResult struct {
	Created   int `json:"created"`
	Refreshed int `json:"refreshed"`
	Skipped   int `json:"skipped"`
}

// activeBookingSlotIDs returns the ids of slots held by a non-cancelled,
// non-rejected booking for the station on the given calendar day.
func activeBookingSlotIDs(tx *gorm.DB, stationID uint, date time.Time) (map[uint]bool, error) {
	start, end := dayBounds(date)
	var ids []uint
	err := tx.Model(&models.Booking{}).
		Where("car_wash_station_id = ?", stationID).
		Where("booking_date BETWEEN ? AND ?", start, end).
		Where("status NOT IN ?", []models.BookingStatus{models.BookingCancelled, models.BookingRejected}).
		Pluck("time_slot_id", &ids).Error
	if err != nil {
		return nil, err
	}
	booked := make(map[uint]bool, len(ids))
	for _, id := range ids {
		booked[id] = true
	}
	return booked, nil
}

// materialize inserts the availability row and its generated slot grid inside
// the given transaction. Callers hold the transaction; either everything
// becomes visible or nothing does.
func materialize(tx *gorm.DB, av *models.Availability) error {
	if err := tx.Create(av).Error; err != nil {
		return err
	}
	grid := Generate(av.OpeningTime, av.ClosingTime, av.SlotDurationMinutes)
	if len(grid) == 0 {
		return nil
	}
	slots := make([]models.TimeSlot, len(grid))
	for i, iv := range grid {
		slots[i] = models.TimeSlot{
			AvailabilityID: av.ID,
			StartTime:      iv.Start,
			EndTime:        iv.End,
			Capacity:       1,
		}
	}
	if err := tx.Create(&slots).Error; err != nil {
		return err
	}
	av.TimeSlots = slots
	return nil
}

// validateAvailabilityFields checks the snapshot fields of an explicit
// creation request.
func validateAvailabilityFields(in AvailabilityInput) error {
	if _, err := ParseClock(in.OpeningTime); err != nil {
		return validationf("invalid opening_time: %v", err)
	}
	if _, err := ParseClock(in.ClosingTime); err != nil {
		return validationf("invalid closing_time: %v", err)
	}
	if !ValidRange(in.OpeningTime, in.ClosingTime) {
		return validationf("opening_time %q must be before closing_time %q", in.OpeningTime, in.ClosingTime)
	}
	if in.SlotDurationMinutes < 1 || in.SlotDurationMinutes > 1440 {
		return validationf("slot_duration_minutes must be between 1 and 1440, got %d", in.SlotDurationMinutes)
	}
	return nil
}

// Create materializes the schedule for one station and date. The station must
// have a rule and the date's weekday must be open per that rule; otherwise
// nothing is persisted.
func (s *AvailabilityStore) Create(in AvailabilityInput, requester Requester) (*models.Availability, error) {
	if err := validateAvailabilityFields(in); err != nil {
		return nil, err
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	if _, err := requireStationOwner(s.db, in.CarWashStationID, requester); err != nil {
		return nil, err
	}

	var rule models.AvailabilityRule
	if err := s.db.Where("car_wash_station_id = ?", in.CarWashStationID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationf("station has no availability rule; create one first")
		}
		return nil, err
	}
	if !rule.DaysOpen.Contains(DayTagOf(date)) {
		return nil, ErrDayClosed
	}

	var existing models.Availability
	err = s.db.Where("car_wash_station_id = ? AND date = ?", in.CarWashStationID, date).First(&existing).Error
	if err == nil {
		return nil, ErrAvailabilityExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	av := models.Availability{
		CarWashStationID:    in.CarWashStationID,
		Date:                date,
		Day:                 DayNameOf(date),
		OpeningTime:         in.OpeningTime,
		ClosingTime:         in.ClosingTime,
		SlotDurationMinutes: in.SlotDurationMinutes,
		Note:                in.Note,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return materialize(tx, &av)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("station_id", av.CarWashStationID).
		Str("date", date.Format("2006-01-02")).
		Int("slots", len(av.TimeSlots)).
		Msg("availability created")
	return &av, nil
}

// CreateBulk materializes several schedules in one transaction. Invalid items
// are reported and skipped; valid ones all commit together.
func (s *AvailabilityStore) CreateBulk(inputs []AvailabilityInput, requester Requester) (*BulkResult, error) {
	result := &BulkResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		store := &AvailabilityStore{db: tx}
		for i, in := range inputs {
			av, err := store.Create(in, requester)
			if err != nil {
				if IsValidation(err) || errors.Is(err, ErrDayClosed) || errors.Is(err, ErrAvailabilityExists) {
					result.Errors = append(result.Errors, BulkError{Index: i, Message: err.Error()})
					continue
				}
				return err
			}
			result.Created = append(result.Created, *av)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateFromRule materializes every open day of [startDate, endDate] from
// the station's rule. Existing dates are skipped, or refreshed to the rule's
// current values when overwrite is set (booked slots are never touched).
func (s *AvailabilityStore) GenerateFromRule(stationID uint, startDate, endDate string, overwrite bool, requester Requester) (*GenerateResult, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, validationf("end_date %s is before start_date %s", endDate, startDate)
	}
	if _, err := requireStationOwner(s.db, stationID, requester); err != nil {
		return nil, err
	}

	var rule models.AvailabilityRule
	if err := s.db.Where("car_wash_station_id = ?", stationID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	result := &GenerateResult{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
			if !rule.DaysOpen.Contains(DayTagOf(date)) {
				result.Skipped++
				continue
			}

			var existing models.Availability
			err := tx.Where("car_wash_station_id = ? AND date = ?", stationID, date).First(&existing).Error
			switch {
			case err == nil:
				if !overwrite {
					result.Skipped++
					continue
				}
				if err := refreshFromRule(tx, &existing, &rule); err != nil {
					return err
				}
				result.Refreshed++
			case errors.Is(err, gorm.ErrRecordNotFound):
				av := models.Availability{
					CarWashStationID:    stationID,
					Date:                date,
					Day:                 DayNameOf(date),
					OpeningTime:         rule.OpeningTime,
					ClosingTime:         rule.ClosingTime,
					SlotDurationMinutes: rule.SlotDurationMinutes,
				}
				if err := materialize(tx, &av); err != nil {
					return err
				}
				result.Created++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("station_id", stationID).
		Int("created", result.Created).
		Int("refreshed", result.Refreshed).
		Int("skipped", result.Skipped).
		Msg("availabilities generated from rule")
	return result, nil
}

// refreshFromRule updates the snapshot fields of an existing availability to
// the rule's current values and regrids additively: unbooked slots are
// replaced by the new grid, booked slots stay verbatim even if they no longer
// align with it.
func refreshFromRule(tx *gorm.DB, av *models.Availability, rule *models.AvailabilityRule) error {
	booked, err := activeBookingSlotIDs(tx, av.CarWashStationID, av.Date)
	if err != nil {
		return err
	}

	del := tx.Unscoped().Where("availability_id = ?", av.ID)
	if len(booked) > 0 {
		ids := make([]uint, 0, len(booked))
		for id := range booked {
			ids = append(ids, id)
		}
		del = del.Where("id NOT IN ?", ids)
	}
	if err := del.Delete(&models.TimeSlot{}).Error; err != nil {
		return err
	}

	av.OpeningTime = rule.OpeningTime
	av.ClosingTime = rule.ClosingTime
	av.SlotDurationMinutes = rule.SlotDurationMinutes
	if err := tx.Save(av).Error; err != nil {
		return err
	}

	grid := Generate(rule.OpeningTime, rule.ClosingTime, rule.SlotDurationMinutes)
	if len(grid) == 0 {
		return nil
	}
	slots := make([]models.TimeSlot, len(grid))
	for i, iv := range grid {
		slots[i] = models.TimeSlot{
			AvailabilityID: av.ID,
			StartTime:      iv.Start,
			EndTime:        iv.End,
			Capacity:       1,
		}
	}
	// A booked slot may share a start time with the regenerated grid; the
	// unique index on (availability_id, start_time) makes those inserts no-ops.
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&slots).Error
}

// reconcile brings every availability of the rule's station dated today or
// later in line with the rule's new values. Dates whose weekday is no longer
// open are deleted when nothing is booked, otherwise closed in place so
// existing bookings survive.
func (s *AvailabilityStore) reconcile(tx *gorm.DB, rule *models.AvailabilityRule) error {
	today := NormalizeDate(time.Now().UTC())
	var availabilities []models.Availability
	err := tx.Where("car_wash_station_id = ? AND date >= ?", rule.CarWashStationID, today).
		Find(&availabilities).Error
	if err != nil {
		return err
	}

	for i := range availabilities {
		av := &availabilities[i]
		booked, err := activeBookingSlotIDs(tx, av.CarWashStationID, av.Date)
		if err != nil {
			return err
		}

		if !rule.DaysOpen.Contains(DayTagOf(av.Date)) {
			if len(booked) == 0 {
				if err := tx.Unscoped().Where("availability_id = ?", av.ID).Delete(&models.TimeSlot{}).Error; err != nil {
					return err
				}
				if err := tx.Unscoped().Delete(av).Error; err != nil {
					return err
				}
				continue
			}
			// Keep booked slots, drop the rest, close the day.
			ids := make([]uint, 0, len(booked))
			for id := range booked {
				ids = append(ids, id)
			}
			if err := tx.Unscoped().
				Where("availability_id = ? AND id NOT IN ?", av.ID, ids).
				Delete(&models.TimeSlot{}).Error; err != nil {
				return err
			}
			if err := tx.Model(av).Update("is_closed", true).Error; err != nil {
				return err
			}
			log.Warn().
				Uint("station_id", av.CarWashStationID).
				Str("date", av.Date.Format("2006-01-02")).
				Int("booked_slots", len(booked)).
				Msg("availability closed by rule change, booked slots preserved")
			continue
		}

		if err := refreshFromRule(tx, av, rule); err != nil {
			return err
		}
	}
	return nil
}

// Find returns an availability with its slots and station.
func (s *AvailabilityStore) Find(id uint) (*models.Availability, error) {
	var av models.Availability
	err := s.db.Preload("TimeSlots").Preload("CarWashStation").First(&av, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &av, nil
}

// ListByStation returns the station's availabilities, oldest date first.
func (s *AvailabilityStore) ListByStation(stationID uint) ([]models.Availability, error) {
	var avs []models.Availability
	err := s.db.Preload("TimeSlots").
		Where("car_wash_station_id = ?", stationID).
		Order("date asc").
		Find(&avs).Error
	if err != nil {
		return nil, err
	}
	return avs, nil
}

// AvailableToday returns all availabilities materialized for today, with
// their stations and slots, for the "who is open right now" listing.
func (s *AvailabilityStore) AvailableToday() ([]models.Availability, error) {
	today := NormalizeDate(time.Now().UTC())
	var avs []models.Availability
	err := s.db.Preload("TimeSlots").Preload("CarWashStation").
		Where("date = ? AND is_closed = ?", today, false).
		Find(&avs).Error
	if err != nil {
		return nil, err
	}
	return avs, nil
}

// Delete removes an availability and its slots. It refuses when any slot is
// still referenced by an active booking.
func (s *AvailabilityStore) Delete(id uint, requester Requester) error {
	var av models.Availability
	if err := s.db.First(&av, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if _, err := requireStationOwner(s.db, av.CarWashStationID, requester); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		booked, err := activeBookingSlotIDs(tx, av.CarWashStationID, av.Date)
		if err != nil {
			return err
		}
		if len(booked) > 0 {
			return ErrHasBookings
		}
		if err := tx.Unscoped().Where("availability_id = ?", av.ID).Delete(&models.TimeSlot{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&av).Error
	})
}
