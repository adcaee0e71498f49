package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/washpoint/carwash-app/schedule"
	"github.com/washpoint/carwash-app/utils"
)

// AvailabilityController exposes materialized schedules and free-slot
// listings.
type AvailabilityController struct {
	Store       *schedule.AvailabilityStore
	Provisioner *schedule.AutoProvisioner
	Guard       *schedule.SlotBookingGuard
}

// CreateAvailability materializes one date's schedule with generated slots
func (a *AvailabilityController) CreateAvailability(c *fiber.Ctx) error {
	requester, ok := requesterFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found in context",
		})
	}

	var in schedule.AvailabilityInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	av, err := a.Store.Create(in, requester)
	if err != nil {
		return scheduleError(c, err, "availability")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"availability": av,
		"time_slots":   av.TimeSlots,
	})
}

// CreateBulkAvailability materializes several dates in one transaction
func (a *AvailabilityController) CreateBulkAvailability(c *fiber.Ctx) error {
	requester, ok := requesterFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found in context",
		})
	}

	var body struct {
		Availabilities []schedule.AvailabilityInput `json:"availabilities"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	result, err := a.Store.CreateBulk(body.Availabilities, requester)
	if err != nil {
		return scheduleError(c, err, "availabilities")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// GenerateFromRule materializes a date range from the station's rule
func (a *AvailabilityController) GenerateFromRule(c *fiber.Ctx) error {
	requester, ok := requesterFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found in context",
		})
	}
	stationID, err := parseUintParam(c, "stationId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid station id",
		})
	}

	var body struct {
		StartDate         string `json:"start_date"`
		EndDate           string `json:"end_date"`
		OverwriteExisting bool   `json:"overwrite_existing"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	result, err := a.Store.GenerateFromRule(stationID, body.StartDate, body.EndDate, body.OverwriteExisting, requester)
	if err != nil {
		return scheduleError(c, err, "availabilities")
	}
	return c.JSON(result)
}

// GetAvailability returns one availability with its slots
func (a *AvailabilityController) GetAvailability(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid availability id",
		})
	}
	av, err := a.Store.Find(id)
	if err != nil {
		return scheduleError(c, err, "availability")
	}
	return c.JSON(av)
}

// ListStationAvailabilities returns a station's materialized dates
func (a *AvailabilityController) ListStationAvailabilities(c *fiber.Ctx) error {
	stationID, err := parseUintParam(c, "stationId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid station id",
		})
	}
	avs, err := a.Store.ListByStation(stationID)
	if err != nil {
		return scheduleError(c, err, "availabilities")
	}
	return c.JSON(avs)
}

// AvailableToday lists stations that have a schedule for today
func (a *AvailabilityController) AvailableToday(c *fiber.Ctx) error {
	avs, err := a.Store.AvailableToday()
	if err != nil {
		return scheduleError(c, err, "availabilities")
	}
	return c.JSON(fiber.Map{
		"count":          len(avs),
		"availabilities": avs,
	})
}

// DeleteAvailability removes a date and its slots unless booked
func (a *AvailabilityController) DeleteAvailability(c *fiber.Ctx) error {
	requester, ok := requesterFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found in context",
		})
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid availability id",
		})
	}
	if err := a.Store.Delete(id, requester); err != nil {
		return scheduleError(c, err, "availability")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListFreeSlots returns the free slots of a station for ?date=YYYY-MM-DD
func (a *AvailabilityController) ListFreeSlots(c *fiber.Ctx) error {
	stationID, err := parseUintParam(c, "stationId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid station id",
		})
	}
	date, err := schedule.ParseDate(c.Query("date"))
	if err != nil {
		return scheduleError(c, err, "slots")
	}

	slots, err := a.Guard.ListFree(stationID, date)
	if err != nil {
		return scheduleError(c, err, "slots")
	}
	return c.JSON(slots)
}

// EnsureAndListFreeSlots provisions the date from the rule if needed, then
// lists free slots. The hot path for the booking screen.
func (a *AvailabilityController) EnsureAndListFreeSlots(c *fiber.Ctx) error {
	stationID, err := parseUintParam(c, "stationId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid station id",
		})
	}
	date, err := schedule.ParseDate(c.Query("date"))
	if err != nil {
		return scheduleError(c, err, "slots")
	}

	slots, err := a.Guard.EnsureAndListFree(stationID, date)
	if err != nil {
		return scheduleError(c, err, "slots")
	}
	return c.JSON(slots)
}
