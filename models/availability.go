package models

import (
	"time"

	"gorm.io/gorm"
)

// Availability is the materialized schedule of one station for one calendar
// date. Opening hours and slot duration are a snapshot of the owning rule at
// creation or reconciliation time, so later rule edits do not silently change
// already-materialized dates.
type Availability struct {
	gorm.Model
	CarWashStationID    uint           `json:"car_wash_station_id" gorm:"uniqueIndex:idx_station_date"`
	CarWashStation      CarWashStation `json:"car_wash_station,omitempty" gorm:"foreignKey:CarWashStationID"`
	Date                time.Time      `json:"date" gorm:"uniqueIndex:idx_station_date"` // midnight UTC
	Day                 string         `json:"day"`                                      // e.g. "Monday", derived from Date
	OpeningTime         string         `json:"opening_time"`
	ClosingTime         string         `json:"closing_time"`
	SlotDurationMinutes int            `json:"slot_duration_minutes"`
	IsClosed            bool           `json:"is_closed"`
	Note                string         `json:"note,omitempty"`
	TimeSlots           []TimeSlot     `json:"time_slots,omitempty" gorm:"foreignKey:AvailabilityID"`
}
