package models

import (
	"gorm.io/gorm"
)

// TimeSlot is one bookable interval [StartTime, EndTime) within an
// Availability. Slots of one availability never overlap; the unique index on
// (availability_id, start_time) lets grid regeneration skip duplicates.
type TimeSlot struct {
	gorm.Model
	AvailabilityID uint         `json:"availability_id" gorm:"uniqueIndex:idx_availability_start"`
	Availability   Availability `json:"availability,omitempty" gorm:"foreignKey:AvailabilityID"`
	StartTime      string       `json:"start_time" gorm:"uniqueIndex:idx_availability_start"` // e.g. "09:00 AM"
	EndTime        string       `json:"end_time"`
	Capacity       int          `json:"capacity" gorm:"default:1"`
	IsBlocked      bool         `json:"is_blocked"`
	BlockReason    string       `json:"block_reason,omitempty"`
}
