package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/washpoint/carwash-app/controllers"
	"github.com/washpoint/carwash-app/middleware"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App, auth *controllers.AuthController, secret string) {
	group := app.Group("/auth")

	// Public routes
	group.Post("/register", auth.Register)
	group.Post("/verify", auth.VerifyOTP)
	group.Post("/login", auth.Login)
	group.Post("/refresh", auth.RefreshToken)

	// Protected routes
	group.Get("/me", middleware.Protected(secret), auth.Me)
}
