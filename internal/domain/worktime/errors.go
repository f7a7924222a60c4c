package worktime

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Recovered locally by the engine: the value is treated as unknown.
	ErrMalformedDuration = errors.New("malformed duration")
	// Recovered locally by the engine: the interval is excluded and the day flagged incomplete.
	ErrInvalidInterval = errors.New("invalid attendance interval: clock-out before clock-in")

	// Surfaced to the caller; no compliance judgment is possible without a ceiling.
	ErrMissingCeiling = errors.New("no permitted-hours ceiling configured for employee group")

	ErrInvalidPeriod         = errors.New("invalid period")
	ErrIncompleteDaySequence = errors.New("day sequence does not cover the whole period")
	ErrCompanyIDRequired     = errors.New("company_id claim is missing or invalid")
	ErrForbiddenEmployee     = errors.New("not allowed to read reports of this employee")
)

// MalformedDurationError reports a duration string that looks like HH:MM[:SS]
// but cannot be parsed.
type MalformedDurationError struct {
	Raw    string
	Reason string
}

func (e *MalformedDurationError) Error() string {
	return fmt.Sprintf("malformed duration %q: %s", e.Raw, e.Reason)
}

func (e *MalformedDurationError) Unwrap() error {
	return ErrMalformedDuration
}

type InvalidIntervalError struct {
	ClockIn  time.Time
	ClockOut time.Time
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("invalid attendance interval: clock-out %s before clock-in %s",
		e.ClockOut.Format(time.RFC3339), e.ClockIn.Format(time.RFC3339))
}

func (e *InvalidIntervalError) Unwrap() error {
	return ErrInvalidInterval
}

type MissingCeilingError struct {
	CompanyID string
	GroupName string
}

func (e *MissingCeilingError) Error() string {
	if e.GroupName == "" {
		return ErrMissingCeiling.Error()
	}
	return fmt.Sprintf("no permitted-hours ceiling for group %q", e.GroupName)
}

func (e *MissingCeilingError) Unwrap() error {
	return ErrMissingCeiling
}

type IncompleteDaySequenceError struct {
	Period string
	Want   int
	Got    int
}

func (e *IncompleteDaySequenceError) Error() string {
	return fmt.Sprintf("period %s needs %d days, got %d", e.Period, e.Want, e.Got)
}

func (e *IncompleteDaySequenceError) Unwrap() error {
	return ErrIncompleteDaySequence
}
