package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Weekday tags as stored in days_open, matching time.Weekday order.
const (
	DaySun = "SUN"
	DayMon = "MON"
	DayTue = "TUE"
	DayWed = "WED"
	DayThu = "THU"
	DayFri = "FRI"
	DaySat = "SAT"
)

var dayTags = [7]string{DaySun, DayMon, DayTue, DayWed, DayThu, DayFri, DaySat}

// DayTagFor returns the days_open tag for a weekday.
func DayTagFor(wd time.Weekday) string {
	return dayTags[int(wd)]
}

// IsDayTag reports whether s is one of the seven known tags.
func IsDayTag(s string) bool {
	for _, t := range dayTags {
		if t == s {
			return true
		}
	}
	return false
}

// DayList is a set of weekday tags persisted as a comma-joined string.
type DayList []string

func (d DayList) Value() (driver.Value, error) {
	return strings.Join(d, ","), nil
}

func (d *DayList) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}

	var s string
	switch v := value.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("failed to scan DayList: unsupported type %T", value)
	}

	if s == "" {
		*d = nil
		return nil
	}
	*d = strings.Split(s, ",")
	return nil
}

// Contains reports whether tag is in the list.
func (d DayList) Contains(tag string) bool {
	for _, t := range d {
		if t == tag {
			return true
		}
	}
	return false
}

// AvailabilityRule is a station's recurring weekly template: opening hours,
// slot duration and which weekdays the station is open. At most one rule
// exists per station.
type AvailabilityRule struct {
	gorm.Model
	CarWashStationID    uint           `json:"car_wash_station_id" gorm:"uniqueIndex"`
	CarWashStation      CarWashStation `json:"car_wash_station,omitempty" gorm:"foreignKey:CarWashStationID"`
	OpeningTime         string         `json:"opening_time"` // e.g. "08:00 AM"
	ClosingTime         string         `json:"closing_time"` // e.g. "10:00 PM"
	SlotDurationMinutes int            `json:"slot_duration_minutes"`
	DaysOpen            DayList        `json:"days_open" gorm:"type:text"`
}
