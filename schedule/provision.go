package schedule

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/washpoint/carwash-app/models"
)

// AutoProvisioner lazily materializes a station's schedule for a date from
// its rule, so callers on the listing and booking paths never see "no
// schedule" for an open day.
type AutoProvisioner struct {
	db    *gorm.DB
	store *AvailabilityStore
}

// Ensure returns the availability for (stationID, date), creating it from the
// station's rule when missing. A nil availability with a nil error means "no
// schedule": the station has no rule or the weekday is closed. Callers treat
// that as nothing available, not as a failure.
//
// Two concurrent calls for the same missing (station, date) may both attempt
// the insert; the unique index on (car_wash_station_id, date) fails the loser,
// which then re-fetches the winner's row. The result is idempotent either way.
func (p *AutoProvisioner) Ensure(stationID uint, date time.Time) (*models.Availability, error) {
	date = NormalizeDate(date)

	av, err := p.fetch(stationID, date)
	if err == nil {
		return av, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var rule models.AvailabilityRule
	err = p.db.Where("car_wash_station_id = ?", stationID).First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !rule.DaysOpen.Contains(DayTagOf(date)) {
		return nil, nil
	}

	created := models.Availability{
		CarWashStationID:    stationID,
		Date:                date,
		Day:                 DayNameOf(date),
		OpeningTime:         rule.OpeningTime,
		ClosingTime:         rule.ClosingTime,
		SlotDurationMinutes: rule.SlotDurationMinutes,
	}
	err = p.db.Transaction(func(tx *gorm.DB) error {
		return materialize(tx, &created)
	})
	if err != nil {
		// Lost the creation race: the unique index rejected our insert and
		// someone else's row is there now.
		if av, fetchErr := p.fetch(stationID, date); fetchErr == nil {
			return av, nil
		}
		return nil, err
	}

	log.Info().
		Uint("station_id", stationID).
		Str("date", date.Format("2006-01-02")).
		Int("slots", len(created.TimeSlots)).
		Msg("availability auto-provisioned")
	return &created, nil
}

// EnsureToday provisions today's schedule for the station.
func (p *AutoProvisioner) EnsureToday(stationID uint) (*models.Availability, error) {
	return p.Ensure(stationID, time.Now().UTC())
}

// SweepToday provisions today's schedule for every station that has a rule.
// Used by the nightly cron job; failures are logged per station and do not
// stop the sweep.
func (p *AutoProvisioner) SweepToday() int {
	var rules []models.AvailabilityRule
	if err := p.db.Find(&rules).Error; err != nil {
		log.Error().Err(err).Msg("provisioning sweep: failed to list rules")
		return 0
	}

	provisioned := 0
	for _, rule := range rules {
		av, err := p.EnsureToday(rule.CarWashStationID)
		if err != nil {
			log.Error().Err(err).
				Uint("station_id", rule.CarWashStationID).
				Msg("provisioning sweep: ensure failed")
			continue
		}
		if av != nil {
			provisioned++
		}
	}
	return provisioned
}

func (p *AutoProvisioner) fetch(stationID uint, date time.Time) (*models.Availability, error) {
	var av models.Availability
	err := p.db.Preload("TimeSlots").
		Where("car_wash_station_id = ? AND date = ?", stationID, date).
		First(&av).Error
	if err != nil {
		return nil, err
	}
	return &av, nil
}
