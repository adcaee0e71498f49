package models

import (
	"gorm.io/gorm"
)

type CarWashStation struct {
	gorm.Model
	UserID         uint               `json:"user_id" gorm:"uniqueIndex"`
	User           User               `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Location       string             `json:"location"`
	Latitude       float64            `json:"latitude"`
	Longitude      float64            `json:"longitude"`
	PricePerWash   float64            `json:"price_per_wash"`
	PhoneNumber    string             `json:"phone_number"`
	Status         string             `json:"status" gorm:"default:active"`
	Rule           *AvailabilityRule  `json:"rule,omitempty" gorm:"foreignKey:CarWashStationID"`
	Availabilities []Availability     `json:"availabilities,omitempty" gorm:"foreignKey:CarWashStationID"`
}
