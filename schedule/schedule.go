// Package schedule implements the availability and time-slot core of the
// car-wash marketplace: weekly availability rules per station, materialized
// per-date schedules with generated slot grids, on-demand provisioning and
// the booking-conflict guard.
//
// All multi-step writes run inside one GORM transaction; concurrency
// correctness comes from database constraints, not in-process locking.
package schedule

import (
	"time"

	"gorm.io/gorm"

	"github.com/washpoint/carwash-app/models"
)

// Requester is the authenticated caller, carried explicitly into every
// mutating operation instead of ambient request state.
type Requester struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the requester may bypass ownership checks.
func (r Requester) IsAdmin() bool { return r.Role == models.RoleAdmin }

// Service bundles the scheduling components over one database handle.
type Service struct {
	Rules        *RuleService
	Availability *AvailabilityStore
	Provisioner  *AutoProvisioner
	Guard        *SlotBookingGuard
}

func New(db *gorm.DB) *Service {
	store := &AvailabilityStore{db: db}
	prov := &AutoProvisioner{db: db, store: store}
	return &Service{
		Rules:        &RuleService{db: db, store: store},
		Availability: store,
		Provisioner:  prov,
		Guard:        &SlotBookingGuard{db: db, prov: prov},
	}
}

// NormalizeDate truncates t to its civil date at midnight UTC. Every stored
// date and every weekday derivation in this package goes through here, so the
// core never mixes UTC-normalized dates with zone-shifted weekday names.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts "2006-01-02" or RFC 3339 input and normalizes it.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return NormalizeDate(t), nil
		}
	}
	return time.Time{}, validationf("invalid date %q, expected ISO-8601 (e.g. 2024-01-01)", s)
}

// DayNameOf returns the full weekday name ("Monday") of a normalized date.
func DayNameOf(date time.Time) string {
	return NormalizeDate(date).Weekday().String()
}

// DayTagOf returns the days_open tag ("MON") of a normalized date.
func DayTagOf(date time.Time) string {
	return models.DayTagFor(NormalizeDate(date).Weekday())
}

// dayBounds returns the [00:00:00.000, 23:59:59.999] window of date's
// calendar day, used when matching bookings to a date.
func dayBounds(date time.Time) (time.Time, time.Time) {
	start := NormalizeDate(date)
	return start, start.Add(24*time.Hour - time.Millisecond)
}
