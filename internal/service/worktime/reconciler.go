package worktime

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
)

type planCandidate struct {
	source  worktime.TimeSource
	minutes *int
}

type workedSpan struct {
	start time.Time
	end   time.Time
}

// Reconcile merges the plan sources and the attendance of one employee-day
// into a DayRecord. It never fails: bad intervals are excluded and recorded
// as issues on an incomplete day.
func Reconcile(in worktime.DayInput, policy worktime.DayPolicy) worktime.DayRecord {
	rec := worktime.DayRecord{
		EmployeeID: in.EmployeeID,
		Date:       worktime.DateOnly(in.Date),
	}

	rec.PlanMinutes, rec.PlanSource = resolvePlan(in)
	rec.WorkedMinutes, rec.Incomplete, rec.Issues = resolveWorked(in.Intervals)

	if rec.WorkedMinutes == nil {
		return rec
	}

	worked := *rec.WorkedMinutes
	rec.OrdinaryMinutes, rec.ComplementaryMinutes, rec.ExtraordinaryMinutes = splitWorked(worked, rec.PlanMinutes, policy)

	if rec.PlanMinutes != nil {
		delta := worked - *rec.PlanMinutes
		rec.DeltaMinutes = &delta
	}

	return rec
}

// resolvePlan walks the plan sources in precedence order. The roster is an
// explicit override for the date, so it always wins over the weekly template.
func resolvePlan(in worktime.DayInput) (*int, worktime.TimeSource) {
	candidates := []planCandidate{
		{source: worktime.SourceRoster, minutes: in.RosterMinutes},
		{source: worktime.SourceTemplate, minutes: in.TemplateMinutes},
	}

	for _, c := range candidates {
		if c.minutes == nil || *c.minutes < 0 {
			continue
		}
		v := *c.minutes
		return &v, c.source
	}
	return nil, worktime.SourceNone
}

func resolveWorked(intervals []worktime.AttendanceInterval) (*int, bool, []error) {
	var (
		spans      []workedSpan
		incomplete bool
		issues     []error
	)

	for _, iv := range intervals {
		switch {
		case iv.ClockIn == nil && iv.ClockOut == nil:
			continue
		case iv.ClockIn == nil || iv.ClockOut == nil:
			// Unmatched punch: never guess the missing side.
			incomplete = true
		case iv.ClockOut.Before(*iv.ClockIn):
			incomplete = true
			issues = append(issues, &worktime.InvalidIntervalError{ClockIn: *iv.ClockIn, ClockOut: *iv.ClockOut})
		default:
			spans = append(spans, workedSpan{start: *iv.ClockIn, end: *iv.ClockOut})
		}
	}

	if len(spans) == 0 {
		return nil, incomplete, issues
	}

	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].start.Before(spans[j].start)
	})

	// Overlapping pairs are clipped against the furthest exit seen so far.
	var total time.Duration
	cursor := spans[0].start
	for _, s := range spans {
		start := s.start
		if start.Before(cursor) {
			start = cursor
		}
		if s.end.After(start) {
			total += s.end.Sub(start)
		}
		if s.end.After(cursor) {
			cursor = s.end
		}
	}

	minutes := int(total.Round(time.Minute) / time.Minute)
	return &minutes, incomplete, issues
}

// splitWorked buckets worked minutes: ordinary up to the plan, complementary
// up to the daily soft cap, extraordinary beyond. Without a plan there is no
// basis for "extra", so everything is ordinary.
func splitWorked(worked int, plan *int, policy worktime.DayPolicy) (ordinary, complementary, extraordinary int) {
	if plan == nil {
		return worked, 0, 0
	}

	ordinary = min(worked, *plan)
	excess := worked - ordinary
	complementary = min(excess, max(policy.ComplementaryCapMinutes, 0))
	extraordinary = excess - complementary
	return ordinary, complementary, extraordinary
}
