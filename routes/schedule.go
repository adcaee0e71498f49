package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/washpoint/carwash-app/controllers"
	"github.com/washpoint/carwash-app/middleware"
	"github.com/washpoint/carwash-app/models"
)

// SetupScheduleRoutes configures rules, availabilities and slot listings
func SetupScheduleRoutes(app *fiber.App, rules *controllers.RuleController, availability *controllers.AvailabilityController, stations *controllers.StationController, secret string) {
	washer := middleware.RequireRole(models.RoleWasher, models.RoleAdmin)

	station := app.Group("/stations")
	station.Get("/", stations.ListStations)
	station.Get("/available-today", availability.AvailableToday)
	station.Get("/me", middleware.Protected(secret), washer, stations.MyStation)
	station.Post("/", middleware.Protected(secret), washer, stations.CreateStation)
	station.Get("/:id", stations.GetStation)
	station.Get("/:stationId/rule", rules.GetStationRule)
	station.Get("/:stationId/availabilities", availability.ListStationAvailabilities)
	station.Get("/:stationId/slots", availability.ListFreeSlots)
	station.Get("/:stationId/slots/ensure", middleware.Protected(secret), availability.EnsureAndListFreeSlots)
	station.Post("/:stationId/availabilities/generate", middleware.Protected(secret), washer, availability.GenerateFromRule)

	rule := app.Group("/availability-rules")
	rule.Get("/", rules.GetAllRules)
	rule.Post("/", middleware.Protected(secret), washer, rules.CreateRule)
	rule.Patch("/:id", middleware.Protected(secret), washer, rules.UpdateRule)
	rule.Delete("/:id", middleware.Protected(secret), washer, rules.DeleteRule)

	av := app.Group("/availabilities")
	av.Get("/:id", availability.GetAvailability)
	av.Post("/", middleware.Protected(secret), washer, availability.CreateAvailability)
	av.Post("/bulk", middleware.Protected(secret), washer, availability.CreateBulkAvailability)
	av.Delete("/:id", middleware.Protected(secret), washer, availability.DeleteAvailability)
}
