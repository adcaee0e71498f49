package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/washpoint/carwash-app/controllers"
	"github.com/washpoint/carwash-app/db"
	"github.com/washpoint/carwash-app/models"
	"github.com/washpoint/carwash-app/routes"
	"github.com/washpoint/carwash-app/schedule"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "api_test.db")
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	svc := schedule.New(conn)
	app := fiber.New()
	routes.SetupScheduleRoutes(app,
		&controllers.RuleController{Rules: svc.Rules},
		&controllers.AvailabilityController{Store: svc.Availability, Provisioner: svc.Provisioner, Guard: svc.Guard},
		&controllers.StationController{DB: conn},
		testSecret)
	routes.SetupBookingRoutes(app, &controllers.BookingController{DB: conn, Guard: svc.Guard}, testSecret)
	return app, conn
}

func signToken(t *testing.T, user models.User) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func createUser(t *testing.T, conn *gorm.DB, email, role string) models.User {
	t.Helper()
	user := models.User{Name: "Test", Email: email, Password: "x", Role: role, IsVerified: true}
	require.NoError(t, conn.Create(&user).Error)
	return user
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func futureMonday() time.Time {
	d := schedule.NormalizeDate(time.Now().UTC()).AddDate(0, 0, 7)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func TestRuleEndpoints(t *testing.T) {
	app, conn := newTestApp(t)
	washer := createUser(t, conn, "washer@wash.test", models.RoleWasher)
	customer := createUser(t, conn, "customer@wash.test", models.RoleUser)
	token := signToken(t, washer)

	resp, body := doJSON(t, app, "POST", "/stations/", token, fiber.Map{
		"name": "Sparkle Wash", "location": "Main St 1", "price_per_wash": 25,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, "body: %v", body)
	stationID := body["ID"].(float64)

	ruleBody := fiber.Map{
		"car_wash_station_id":   stationID,
		"opening_time":          "09:00 AM",
		"closing_time":          "12:00 PM",
		"slot_duration_minutes": 60,
		"days_open":             []string{"MON", "TUE"},
	}

	resp, _ = doJSON(t, app, "POST", "/availability-rules/", "", ruleBody)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "no token")

	resp, _ = doJSON(t, app, "POST", "/availability-rules/", signToken(t, customer), ruleBody)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "customers cannot create rules")

	resp, body = doJSON(t, app, "POST", "/availability-rules/", token, ruleBody)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, "body: %v", body)

	resp, body = doJSON(t, app, "POST", "/availability-rules/", token, ruleBody)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, "body: %v", body)

	resp, body = doJSON(t, app, "GET", fmt.Sprintf("/stations/%.0f/rule", stationID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "09:00 AM", body["opening_time"])
}

func TestBookingFlow(t *testing.T) {
	app, conn := newTestApp(t)
	washer := createUser(t, conn, "washer@wash.test", models.RoleWasher)
	alice := createUser(t, conn, "alice@wash.test", models.RoleUser)
	bob := createUser(t, conn, "bob@wash.test", models.RoleUser)
	washerToken := signToken(t, washer)

	_, stationBody := doJSON(t, app, "POST", "/stations/", washerToken, fiber.Map{
		"name": "Sparkle Wash", "location": "Main St 1",
	})
	stationID := stationBody["ID"].(float64)

	resp, _ := doJSON(t, app, "POST", "/availability-rules/", washerToken, fiber.Map{
		"car_wash_station_id":   stationID,
		"opening_time":          "09:00 AM",
		"closing_time":          "12:00 PM",
		"slot_duration_minutes": 60,
		"days_open":             []string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	monday := futureMonday().Format("2006-01-02")

	// First listing provisions the day's grid from the rule.
	resp, listing := doJSON(t, app, "GET",
		fmt.Sprintf("/stations/%.0f/slots/ensure?date=%s", stationID, monday), signToken(t, alice), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "body: %v", listing)
	free := listing["free_slots"].([]interface{})
	require.Len(t, free, 3)
	slotID := free[0].(map[string]interface{})["ID"].(float64)

	bookingBody := fiber.Map{
		"car_wash_station_id": stationID,
		"time_slot_id":        slotID,
		"booking_date":        monday,
		"car_type":            "sedan",
		"service_type":        "full",
		"total_amount":        25,
	}

	resp, body := doJSON(t, app, "POST", "/bookings/", signToken(t, alice), bookingBody)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, "body: %v", body)
	assert.Equal(t, "pending", body["status"])

	// The same slot and date is gone for the next booker.
	resp, body = doJSON(t, app, "POST", "/bookings/", signToken(t, bob), bookingBody)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, "body: %v", body)

	resp, listing = doJSON(t, app, "GET",
		fmt.Sprintf("/stations/%.0f/slots?date=%s", stationID, monday), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, listing["free_slots"].([]interface{}), 2)
	assert.EqualValues(t, 1, listing["booked_count"])
}
