package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/washpoint/carwash-app/models"
	"github.com/washpoint/carwash-app/utils"
)

// StationController manages car wash stations. One station per washer.
type StationController struct {
	DB *gorm.DB
}

// CreateStation registers the requester's station
func (s *StationController) CreateStation(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var station models.CarWashStation
	if err := c.BodyParser(&station); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	station.UserID = userID

	var existing models.CarWashStation
	if s.DB.Where("user_id = ?", userID).First(&existing).RowsAffected > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":    "You already created a car wash station",
			"station_id": existing.ID,
		})
	}

	if err := s.DB.Create(&station).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to create car wash station",
			Error:   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(station)
}

// GetStation returns one station with its rule
func (s *StationController) GetStation(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid station id",
		})
	}

	var station models.CarWashStation
	if err := s.DB.Preload("Rule").First(&station, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Car wash station not found",
		})
	}
	return c.JSON(station)
}

// ListStations returns all stations
func (s *StationController) ListStations(c *fiber.Ctx) error {
	var stations []models.CarWashStation
	if err := s.DB.Find(&stations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch car wash stations",
			Error:   err.Error(),
		})
	}
	return c.JSON(stations)
}

// MyStation returns the requester's station with its rule
func (s *StationController) MyStation(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var station models.CarWashStation
	if err := s.DB.Preload("Rule").Where("user_id = ?", userID).First(&station).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "No car wash station found for this user",
		})
	}
	return c.JSON(station)
}
