package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/washpoint/carwash-app/controllers"
	"github.com/washpoint/carwash-app/middleware"
)

// SetupBookingRoutes configures all booking related routes
func SetupBookingRoutes(app *fiber.App, bookings *controllers.BookingController, secret string) {
	group := app.Group("/bookings", middleware.Protected(secret))
	group.Get("/", bookings.ListMyBookings)
	group.Get("/check", bookings.CheckSlotBookable)
	group.Post("/", bookings.CreateBooking)
	group.Patch("/:id/cancel", bookings.CancelBooking)
}
