package schedule

import (
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/washpoint/carwash-app/models"
)

// RuleService manages the one-per-station weekly availability rules.
type RuleService struct {
	db    *gorm.DB
	store *AvailabilityStore
}

// RuleInput carries the fields for rule creation.
type RuleInput struct {
	CarWashStationID    uint           `json:"car_wash_station_id"`
	OpeningTime         string         `json:"opening_time"`
	ClosingTime         string         `json:"closing_time"`
	SlotDurationMinutes int            `json:"slot_duration_minutes"`
	DaysOpen            models.DayList `json:"days_open"`
}

// RuleUpdate carries the optional fields of a partial rule update.
type RuleUpdate struct {
	OpeningTime         *string         `json:"opening_time"`
	ClosingTime         *string         `json:"closing_time"`
	SlotDurationMinutes *int            `json:"slot_duration_minutes"`
	DaysOpen            *models.DayList `json:"days_open"`
}

func validateRuleFields(opening, closing string, duration int, days models.DayList) error {
	if _, err := ParseClock(opening); err != nil {
		return validationf("invalid opening_time: %v", err)
	}
	if _, err := ParseClock(closing); err != nil {
		return validationf("invalid closing_time: %v", err)
	}
	if !ValidRange(opening, closing) {
		return validationf("opening_time %q must be before closing_time %q", opening, closing)
	}
	if duration < 1 || duration > 1440 {
		return validationf("slot_duration_minutes must be between 1 and 1440, got %d", duration)
	}
	if len(days) == 0 {
		return validationf("days_open must list at least one day")
	}
	for _, d := range days {
		if !models.IsDayTag(d) {
			return validationf("unknown day tag %q", d)
		}
	}
	return nil
}

// requireStationOwner loads the station and checks the requester owns it.
func requireStationOwner(db *gorm.DB, stationID uint, requester Requester) (*models.CarWashStation, error) {
	var station models.CarWashStation
	if err := db.First(&station, stationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !requester.IsAdmin() && station.UserID != requester.ID {
		return nil, ErrForbidden
	}
	return &station, nil
}

// Create persists a new rule for the station. Fails with ErrRuleExists when
// the station already has one.
func (s *RuleService) Create(in RuleInput, requester Requester) (*models.AvailabilityRule, error) {
	if err := validateRuleFields(in.OpeningTime, in.ClosingTime, in.SlotDurationMinutes, in.DaysOpen); err != nil {
		return nil, err
	}
	if _, err := requireStationOwner(s.db, in.CarWashStationID, requester); err != nil {
		return nil, err
	}

	var existing models.AvailabilityRule
	err := s.db.Where("car_wash_station_id = ?", in.CarWashStationID).First(&existing).Error
	if err == nil {
		return nil, ErrRuleExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rule := models.AvailabilityRule{
		CarWashStationID:    in.CarWashStationID,
		OpeningTime:         in.OpeningTime,
		ClosingTime:         in.ClosingTime,
		SlotDurationMinutes: in.SlotDurationMinutes,
		DaysOpen:            in.DaysOpen,
	}
	if err := s.db.Create(&rule).Error; err != nil {
		return nil, err
	}

	log.Info().
		Uint("station_id", rule.CarWashStationID).
		Uint("rule_id", rule.ID).
		Msg("availability rule created")
	return &rule, nil
}

// Get returns the station's rule.
func (s *RuleService) Get(stationID uint) (*models.AvailabilityRule, error) {
	var rule models.AvailabilityRule
	if err := s.db.Where("car_wash_station_id = ?", stationID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// List returns every rule.
func (s *RuleService) List() ([]models.AvailabilityRule, error) {
	var rules []models.AvailabilityRule
	if err := s.db.Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// Update applies a partial update and reconciles all of the station's
// availabilities dated today or later against the new values.
func (s *RuleService) Update(ruleID uint, patch RuleUpdate, requester Requester) (*models.AvailabilityRule, error) {
	var rule models.AvailabilityRule
	if err := s.db.First(&rule, ruleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := requireStationOwner(s.db, rule.CarWashStationID, requester); err != nil {
		return nil, err
	}

	if patch.OpeningTime != nil {
		rule.OpeningTime = *patch.OpeningTime
	}
	if patch.ClosingTime != nil {
		rule.ClosingTime = *patch.ClosingTime
	}
	if patch.SlotDurationMinutes != nil {
		rule.SlotDurationMinutes = *patch.SlotDurationMinutes
	}
	if patch.DaysOpen != nil {
		rule.DaysOpen = *patch.DaysOpen
	}
	if err := validateRuleFields(rule.OpeningTime, rule.ClosingTime, rule.SlotDurationMinutes, rule.DaysOpen); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&rule).Error; err != nil {
			return err
		}
		return s.store.reconcile(tx, &rule)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("station_id", rule.CarWashStationID).
		Uint("rule_id", rule.ID).
		Msg("availability rule updated and reconciled")
	return &rule, nil
}

// Delete removes the rule. Existing availabilities and their slots stay
// behind as historical snapshots.
func (s *RuleService) Delete(ruleID uint, requester Requester) error {
	var rule models.AvailabilityRule
	if err := s.db.First(&rule, ruleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if _, err := requireStationOwner(s.db, rule.CarWashStationID, requester); err != nil {
		return err
	}
	// Hard delete, the unique index on car_wash_station_id would otherwise
	// block the station from ever getting a new rule.
	return s.db.Unscoped().Delete(&rule).Error
}
