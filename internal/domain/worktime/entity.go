package worktime

import (
	"time"
)

// TimeSource tags which planning source produced a day's planned minutes.
type TimeSource string

const (
	SourceRoster   TimeSource = "ROSTER"   // Rostered shift (cuadrante) for that exact date
	SourceTemplate TimeSource = "TEMPLATE" // Weekly contract template (horario)
	SourceNone     TimeSource = "NONE"     // No plan known for the day
)

// SourceLabel is the audit label of a whole period.
type SourceLabel string

const (
	LabelRoster   SourceLabel = "ROSTER"
	LabelTemplate SourceLabel = "TEMPLATE"
	LabelMixed    SourceLabel = "MIXED"
)

type ComplianceStatus string

const (
	StatusOK     ComplianceStatus = "OK"
	StatusAlerta ComplianceStatus = "ALERTA"
	StatusRiesgo ComplianceStatus = "RIESGO"
)

var ComplianceStatusValues = []string{
	string(StatusOK),
	string(StatusAlerta),
	string(StatusRiesgo),
}

// Rank orders statuses OK < ALERTA < RIESGO. Unknown values rank below OK.
func (s ComplianceStatus) Rank() int {
	switch s {
	case StatusOK:
		return 0
	case StatusAlerta:
		return 1
	case StatusRiesgo:
		return 2
	default:
		return -1
	}
}

// Worst returns the highest ranked status, or OK when none are given.
func Worst(statuses ...ComplianceStatus) ComplianceStatus {
	worst := StatusOK
	for _, s := range statuses {
		if s.Rank() > worst.Rank() {
			worst = s
		}
	}
	return worst
}

type PeriodKind string

const (
	PeriodMonth PeriodKind = "month"
	PeriodYear  PeriodKind = "year"
)

// AttendanceInterval is one clock-in/clock-out pair. Either side may be
// missing when the employee forgot to punch.
type AttendanceInterval struct {
	ClockIn  *time.Time
	ClockOut *time.Time
}

// DayInput is everything the reconciler needs for one employee-day.
type DayInput struct {
	EmployeeID      string
	Date            time.Time
	RosterMinutes   *int
	TemplateMinutes *int
	Intervals       []AttendanceInterval
}

// DayPolicy carries the per-group daily rules applied when splitting worked time.
type DayPolicy struct {
	// ComplementaryCapMinutes is the daily soft limit of work above plan
	// that still counts as complementary. Zero means every excess minute
	// is extraordinary.
	ComplementaryCapMinutes int
}

// DayRecord is the reconciled view of one employee on one calendar date.
// Nil pointers mean "unknown", never zero.
type DayRecord struct {
	EmployeeID           string
	Date                 time.Time
	PlanMinutes          *int
	PlanSource           TimeSource
	WorkedMinutes        *int
	DeltaMinutes         *int
	Incomplete           bool
	OrdinaryMinutes      int
	ComplementaryMinutes int
	ExtraordinaryMinutes int

	// Issues holds the recoverable errors absorbed while reconciling the day.
	Issues []error
}

// PeriodSummary is the rollup of a month or a year for one employee.
type PeriodSummary struct {
	Kind  PeriodKind
	Key   string // "YYYY-MM" or "YYYY"
	Start time.Time
	End   time.Time
	AsOf  time.Time

	TotalPlanMinutes      int
	TotalWorkedMinutes    int
	TotalPermittedMinutes *int

	TotalOrdinary      int
	TotalComplementary int
	TotalExtraordinary int

	PlanToDateMinutes   int
	WorkedToDateMinutes int

	DiffVsPlan      int
	DiffVsPermitted *int
	DiffPlanToDate  int

	SourceLabel SourceLabel
	// HasPlan is false when no constituent carried any plan; SourceLabel
	// then falls back to TEMPLATE for display only.
	HasPlan bool

	DaysWithRoster   int
	DaysWithTemplate int
	DaysWithoutPlan  int
	IncompleteDays   int

	// Annual only.
	MonthsWithRoster   int
	MonthsWithTemplate int
	MonthsMixed        int
	Months             []PeriodSummary
}

// WithCeiling returns a copy of the summary carrying the permitted ceiling
// for its kind. Embedded months receive the monthly ceiling.
func (s PeriodSummary) WithCeiling(c GroupCeiling) PeriodSummary {
	out := s
	permitted := c.PermittedFor(s.Kind)
	diff := s.TotalWorkedMinutes - permitted
	out.TotalPermittedMinutes = &permitted
	out.DiffVsPermitted = &diff

	if len(s.Months) > 0 {
		out.Months = make([]PeriodSummary, len(s.Months))
		for i, m := range s.Months {
			out.Months[i] = m.WithCeiling(c)
		}
	}
	return out
}

// GroupCeiling is the per-group configuration read by the classifier.
// Optional tolerances fall back to the service defaults when nil.
type GroupCeiling struct {
	ID                           string
	CompanyID                    string
	GroupName                    string
	MonthlyPermittedMinutes      int
	AnnualPermittedMinutes       int
	PlanToleranceMinutes         *int
	PermittedToleranceMinutes    *int
	PlanToDateToleranceMinutes   *int
	DailyComplementaryCapMinutes *int
	IsActive                     bool
	CreatedAt                    time.Time
	UpdatedAt                    time.Time
}

func (c GroupCeiling) PermittedFor(kind PeriodKind) int {
	if kind == PeriodYear {
		return c.AnnualPermittedMinutes
	}
	return c.MonthlyPermittedMinutes
}

// Thresholds are the tolerance bands handed to the classifier.
type Thresholds struct {
	PlanToleranceMinutes       int
	PermittedToleranceMinutes  int
	PlanToDateToleranceMinutes int
}

// Statuses is the classifier output for one summary.
type Statuses struct {
	EstadoPlan         ComplianceStatus
	EstadoPermitidas   ComplianceStatus
	EstadoPlanHastaHoy ComplianceStatus
}

func (s Statuses) Worst() ComplianceStatus {
	return Worst(s.EstadoPlan, s.EstadoPermitidas, s.EstadoPlanHastaHoy)
}

// ScheduleEntry is the raw planning feed for one date. Roster and Template
// hold whatever the schedule store produced: decimal hours, "HH:MM:SS"
// strings, or nil when absent.
type ScheduleEntry struct {
	Date     time.Time
	Roster   any
	Template any
}

// AttendanceRecord is one clock row of the attendance feed.
type AttendanceRecord struct {
	ID       string
	Date     time.Time
	ClockIn  *time.Time
	ClockOut *time.Time
}

// ComplianceAlert is a persisted month-to-date status produced by the sweep.
type ComplianceAlert struct {
	ID                 string
	CompanyID          string
	EmployeeID         string
	EmployeeName       string
	Period             string
	EstadoPlan         ComplianceStatus
	EstadoPermitidas   ComplianceStatus
	EstadoPlanHastaHoy ComplianceStatus
	WorstStatus        ComplianceStatus
	DiffVsPlan         int
	DiffVsPermitted    int
	DiffPlanToDate     int
	SourceLabel        SourceLabel
	ComputedAt         time.Time
}
