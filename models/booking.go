package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingRejected   BookingStatus = "rejected"
)

// ActiveBookingStatuses are the statuses that keep a time slot occupied.
// Cancelled and rejected bookings free the slot.
var ActiveBookingStatuses = []BookingStatus{
	BookingPending, BookingConfirmed, BookingInProgress, BookingCompleted,
}

// Booking references exactly one time slot on one concrete date. The
// scheduling core reads bookings to determine occupancy; it never mutates
// them. BookingDate is normalized to midnight UTC so the partial unique index
// on (time_slot_id, booking_date) holds per calendar day.
type Booking struct {
	gorm.Model
	UserID           uint           `json:"user_id"`
	User             User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CarWashStationID uint           `json:"car_wash_station_id"`
	CarWashStation   CarWashStation `json:"car_wash_station,omitempty" gorm:"foreignKey:CarWashStationID"`
	TimeSlotID       uint           `json:"time_slot_id"`
	TimeSlot         TimeSlot       `json:"time_slot,omitempty" gorm:"foreignKey:TimeSlotID"`
	BookingDate      time.Time      `json:"booking_date"`
	CarType          string         `json:"car_type"`
	ServiceType      string         `json:"service_type"`
	TotalAmount      float64        `json:"total_amount"`
	Status           BookingStatus  `json:"status"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = BookingPending
	}
	return nil
}
