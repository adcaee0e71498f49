package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced rule, availability, slot or
	// station does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the requester does not own the station
	// they are mutating.
	ErrForbidden = errors.New("forbidden")
	// ErrRuleExists is returned on rule creation when the station already has
	// a rule.
	ErrRuleExists = errors.New("availability rule already exists for this station")
	// ErrSlotConflict is returned when a non-cancelled booking already holds
	// the slot for the requested date.
	ErrSlotConflict = errors.New("time slot is already booked for this date")
	// ErrDayClosed is returned when the requested weekday is not open per the
	// station rule, or the day is explicitly closed. Distinct from ErrNotFound
	// so clients can render "closed" rather than "unknown".
	ErrDayClosed = errors.New("station is closed on this day")
	// ErrHasBookings blocks deleting an availability whose slots are still
	// referenced by active bookings.
	ErrHasBookings = errors.New("availability has active bookings")
	// ErrAvailabilityExists is returned on explicit creation for a
	// (station, date) pair that is already materialized.
	ErrAvailabilityExists = errors.New("availability already exists for this station and date")
	// ErrDayMismatch is returned when a slot's owning availability belongs to
	// a different weekday than the requested date, which catches stale slot
	// ids replayed for the wrong date.
	ErrDayMismatch = errors.New("time slot does not belong to the requested date's weekday")
)

// ValidationError reports malformed input: bad dates, inverted time ranges,
// out-of-range durations, unknown day tags.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
