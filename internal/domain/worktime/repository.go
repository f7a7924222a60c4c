package worktime

import (
	"context"
	"time"
)

// ScheduleRepository is the planning feed. Entries are returned per date in
// [from, to]; dates without roster and without template may be omitted.
type ScheduleRepository interface {
	ListScheduleEntries(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]ScheduleEntry, error)
}

// AttendanceRepository is the clock-in/clock-out feed.
type AttendanceRepository interface {
	ListAttendanceRecords(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]AttendanceRecord, error)
}

type GroupCeilingRepository interface {
	// GetActiveByGroup returns *MissingCeilingError when the group has no active ceiling.
	GetActiveByGroup(ctx context.Context, companyID string, groupName string) (GroupCeiling, error)
}

type ComplianceAlertRepository interface {
	// ReplaceForPeriod deletes the company's alerts for period and stores alerts in their place.
	ReplaceForPeriod(ctx context.Context, companyID string, period string, alerts []ComplianceAlert) error
	List(ctx context.Context, companyID string, filter AlertFilter) ([]ComplianceAlert, error)
}
