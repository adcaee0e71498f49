package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"

	"github.com/washpoint/carwash-app/config"
	"github.com/washpoint/carwash-app/controllers"
	"github.com/washpoint/carwash-app/cron"
	"github.com/washpoint/carwash-app/db"
	"github.com/washpoint/carwash-app/redis"
	"github.com/washpoint/carwash-app/routes"
	"github.com/washpoint/carwash-app/schedule"
	"github.com/washpoint/carwash-app/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	var mailer *utils.Mailer
	if cfg.SMTPHost != "" {
		mailer = &utils.Mailer{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.EmailUser,
			Pass: cfg.EmailPass,
		}
	}

	auth := &controllers.AuthController{DB: conn, Mailer: mailer, Secret: cfg.JWTSecret}
	if cfg.RedisAddr != "" {
		client, err := redis.Connect(cfg.RedisAddr)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		auth.Redis = client
	}

	svc := schedule.New(conn)
	rules := &controllers.RuleController{Rules: svc.Rules}
	availability := &controllers.AvailabilityController{
		Store:       svc.Availability,
		Provisioner: svc.Provisioner,
		Guard:       svc.Guard,
	}
	stations := &controllers.StationController{DB: conn}
	bookings := &controllers.BookingController{DB: conn, Guard: svc.Guard, Mailer: mailer}

	if _, err := cron.StartProvisioningSweep(svc.Provisioner); err != nil {
		log.Fatal().Err(err).Msg("failed to start provisioning sweep")
	}

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	routes.SetupAuthRoutes(app, auth, cfg.JWTSecret)
	routes.SetupScheduleRoutes(app, rules, availability, stations, cfg.JWTSecret)
	routes.SetupBookingRoutes(app, bookings, cfg.JWTSecret)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
