package models

import (
	"time"
)

const (
	RoleUser   = "user"
	RoleWasher = "washer"
	RoleAdmin  = "admin"
)

type User struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	Name       string          `json:"name"`
	Email      string          `json:"email" gorm:"unique"`
	Password   string          `json:"password,omitempty"`
	Role       string          `json:"role" gorm:"default:user"`
	IsVerified bool            `json:"is_verified"`
	Station    *CarWashStation `json:"station,omitempty" gorm:"foreignKey:UserID"`
	Bookings   []Booking       `json:"bookings,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
