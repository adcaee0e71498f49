package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/washpoint/carwash-app/schedule"
	"github.com/washpoint/carwash-app/utils"
)

// requesterFromCtx builds the explicit requester from the locals the JWT
// middleware set.
func requesterFromCtx(c *fiber.Ctx) (schedule.Requester, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return schedule.Requester{}, false
	}
	role, ok := c.Locals("role").(string)
	if !ok {
		return schedule.Requester{}, false
	}
	return schedule.Requester{ID: userID, Role: role}, true
}

// scheduleError maps the scheduling core's typed failures to HTTP responses.
func scheduleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case schedule.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, schedule.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: fallback + " not found",
		})
	case errors.Is(err, schedule.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
			Message: "You don't own this station",
		})
	case errors.Is(err, schedule.ErrDayClosed):
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: "Station is closed on this day",
		})
	case errors.Is(err, schedule.ErrRuleExists),
		errors.Is(err, schedule.ErrAvailabilityExists),
		errors.Is(err, schedule.ErrSlotConflict),
		errors.Is(err, schedule.ErrDayMismatch),
		errors.Is(err, schedule.ErrHasBookings):
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to process " + fallback,
			Error:   err.Error(),
		})
	}
}
