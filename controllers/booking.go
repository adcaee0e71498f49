package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/washpoint/carwash-app/models"
	"github.com/washpoint/carwash-app/schedule"
	"github.com/washpoint/carwash-app/utils"
)

// BookingController is the booking collaborator's surface. The scheduling
// core never writes bookings; this controller does, re-running the bookable
// check inside the insert transaction so two concurrent bookers cannot both
// claim the last slot.
type BookingController struct {
	DB     *gorm.DB
	Guard  *schedule.SlotBookingGuard
	Mailer *utils.Mailer
}

type bookingInput struct {
	CarWashStationID uint    `json:"car_wash_station_id"`
	TimeSlotID       uint    `json:"time_slot_id"`
	BookingDate      string  `json:"booking_date"`
	CarType          string  `json:"car_type"`
	ServiceType      string  `json:"service_type"`
	TotalAmount      float64 `json:"total_amount"`
}

// CreateBooking claims a free slot for the requester
func (b *BookingController) CreateBooking(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var in bookingInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	date, err := schedule.ParseDate(in.BookingDate)
	if err != nil {
		return scheduleError(c, err, "booking")
	}

	// Fast pre-check so obviously taken slots fail before opening a
	// transaction.
	if err := b.Guard.CheckBookable(nil, in.TimeSlotID, in.CarWashStationID, date); err != nil {
		return scheduleError(c, err, "booking")
	}

	booking := models.Booking{
		UserID:           userID,
		CarWashStationID: in.CarWashStationID,
		TimeSlotID:       in.TimeSlotID,
		BookingDate:      date,
		CarType:          in.CarType,
		ServiceType:      in.ServiceType,
		TotalAmount:      in.TotalAmount,
	}
	err = b.DB.Transaction(func(tx *gorm.DB) error {
		// Re-check on this transaction: the free-check and the claim must see
		// one consistent snapshot.
		if err := b.Guard.CheckBookable(tx, in.TimeSlotID, in.CarWashStationID, date); err != nil {
			return err
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		// The partial unique index rejects the race loser even when both
		// transactions passed the check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = schedule.ErrSlotConflict
		}
		return scheduleError(c, err, "booking")
	}

	b.sendConfirmation(&booking)
	return c.Status(fiber.StatusCreated).JSON(booking)
}

func (b *BookingController) sendConfirmation(booking *models.Booking) {
	if b.Mailer == nil {
		return
	}
	var user models.User
	if err := b.DB.First(&user, booking.UserID).Error; err != nil {
		return
	}
	var slot models.TimeSlot
	b.DB.First(&slot, booking.TimeSlotID)

	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your booking has been placed.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Time:</strong> %s - %s</li>
			<li><strong>Status:</strong> %s</li>
		</ul>
	`, user.Name, booking.BookingDate.Format("2006-01-02"), slot.StartTime, slot.EndTime, booking.Status)

	if err := b.Mailer.SendEmail(user.Email, "Booking Confirmation", body); err != nil {
		log.Error().Err(err).Uint("booking_id", booking.ID).Msg("failed to send booking confirmation")
	}
}

// ListMyBookings returns the requester's bookings, most recent date first
func (b *BookingController) ListMyBookings(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var bookings []models.Booking
	err := b.DB.Preload("TimeSlot").Preload("CarWashStation").
		Where("user_id = ?", userID).
		Order("booking_date desc").
		Find(&bookings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch bookings",
			Error:   err.Error(),
		})
	}
	return c.JSON(bookings)
}

// CancelBooking frees the slot by flipping the booking's status
func (b *BookingController) CancelBooking(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid booking id",
		})
	}

	var booking models.Booking
	if err := b.DB.First(&booking, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Booking not found",
		})
	}
	if booking.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
			Message: "You can only cancel your own bookings",
		})
	}
	if booking.Status != models.BookingPending && booking.Status != models.BookingConfirmed {
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: fmt.Sprintf("Cannot cancel a booking with status %s", booking.Status),
		})
	}

	if err := b.DB.Model(&booking).Update("status", models.BookingCancelled).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to cancel booking",
			Error:   err.Error(),
		})
	}
	return c.JSON(booking)
}

// CheckSlotBookable reports whether the slot can be booked for ?date=
func (b *BookingController) CheckSlotBookable(c *fiber.Ctx) error {
	slotID := c.QueryInt("time_slot_id")
	stationID := c.QueryInt("station_id")
	if slotID <= 0 || stationID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "time_slot_id and station_id are required",
		})
	}
	date, err := schedule.ParseDate(c.Query("date"))
	if err != nil {
		return scheduleError(c, err, "slot")
	}

	if err := b.Guard.CheckBookable(nil, uint(slotID), uint(stationID), date); err != nil {
		return scheduleError(c, err, "slot")
	}
	return c.JSON(fiber.Map{"bookable": true})
}
