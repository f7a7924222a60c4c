package worktime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testGeneratedAt = time.Date(2025, 5, 2, 7, 30, 0, 0, time.UTC)
	testEmployeeRef = worktime.EmployeeRef{ID: "emp-1", Code: "EMP-001", Name: "Ana Ruiz", Group: "operations"}
	testCeiling     = worktime.GroupCeiling{GroupName: "operations", MonthlyPermittedMinutes: 10560, AnnualPermittedMinutes: 126720}
)

func aprilDays() []worktime.DayRecord {
	return monthDays(april2025, func(d time.Time) worktime.DayRecord {
		if isWeekday(d) {
			return plannedDay(d, worktime.SourceTemplate, 480, 480)
		}
		return emptyDay(d)
	})
}

func TestBuildMonthly(t *testing.T) {
	days := aprilDays()
	summary := AggregateMonth(april2025, days, april2025.LastDay()).WithCeiling(testCeiling)

	t.Run("summary only", func(t *testing.T) {
		report, err := BuildMonthly(MonthlyInput{
			Employee:    testEmployeeRef,
			Summary:     summary,
			Statuses:    worktime.Statuses{EstadoPlan: worktime.StatusOK, EstadoPermitidas: worktime.StatusOK, EstadoPlanHastaHoy: worktime.StatusOK},
			Days:        days,
			GeneratedAt: testGeneratedAt,
		})
		require.NoError(t, err)

		assert.Equal(t, "2025-04", report.Period)
		assert.Equal(t, "2025-04-01", report.PeriodStart)
		assert.Equal(t, "2025-04-30", report.PeriodEnd)
		assert.Equal(t, "2025-05-02T07:30:00Z", report.GeneratedAt)
		assert.Equal(t, 10560, report.Summary.TotalPlanMinutes)
		require.NotNil(t, report.Summary.TotalPermittedMinutes)
		assert.Equal(t, 10560, *report.Summary.TotalPermittedMinutes)
		assert.Equal(t, "OK", report.Statuses.Worst)
		assert.Empty(t, report.Days)
	})

	t.Run("with detail renders unknown as null", func(t *testing.T) {
		report, err := BuildMonthly(MonthlyInput{
			Employee:    testEmployeeRef,
			Summary:     summary,
			Days:        days,
			Detail:      true,
			GeneratedAt: testGeneratedAt,
		})
		require.NoError(t, err)
		require.Len(t, report.Days, 30)

		// 2025-04-05 is a Saturday without plan or attendance.
		saturday := report.Days[4]
		assert.Equal(t, "2025-04-05", saturday.Date)
		assert.Equal(t, "Saturday", saturday.DayOfWeek)
		assert.Nil(t, saturday.PlanMinutes)
		assert.Nil(t, saturday.WorkedMinutes)
		assert.Equal(t, "NONE", saturday.PlanSource)

		raw, err := json.Marshal(saturday)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"plan_minutes":null`)
		assert.Contains(t, string(raw), `"worked_minutes":null`)
	})

	t.Run("missing day", func(t *testing.T) {
		_, err := BuildMonthly(MonthlyInput{Summary: summary, Days: days[1:], GeneratedAt: testGeneratedAt})
		assert.ErrorIs(t, err, worktime.ErrIncompleteDaySequence)

		var seqErr *worktime.IncompleteDaySequenceError
		require.ErrorAs(t, err, &seqErr)
		assert.Equal(t, 30, seqErr.Want)
		assert.Equal(t, 29, seqErr.Got)
	})

	t.Run("out of order", func(t *testing.T) {
		shuffled := append([]worktime.DayRecord(nil), days...)
		shuffled[3], shuffled[4] = shuffled[4], shuffled[3]
		_, err := BuildMonthly(MonthlyInput{Summary: summary, Days: shuffled, GeneratedAt: testGeneratedAt})
		assert.ErrorIs(t, err, worktime.ErrIncompleteDaySequence)
	})
}

func TestBuildMonthly_InvalidIntervalIssue(t *testing.T) {
	days := aprilDays()
	in := days[0].Date.Add(18 * time.Hour)
	out := days[0].Date.Add(14 * time.Hour)
	days[0] = Reconcile(worktime.DayInput{
		Date:            days[0].Date,
		TemplateMinutes: intPtr(480),
		Intervals:       []worktime.AttendanceInterval{{ClockIn: &in, ClockOut: &out}},
	}, worktime.DayPolicy{})

	summary := AggregateMonth(april2025, days, april2025.LastDay())
	report, err := BuildMonthly(MonthlyInput{Summary: summary, Days: days, Detail: true, GeneratedAt: testGeneratedAt})
	require.NoError(t, err)

	first := report.Days[0]
	assert.True(t, first.Incomplete)
	assert.Equal(t, []string{"invalid_interval 18:00-14:00"}, first.Issues)
	assert.Equal(t, 1, report.Summary.IncompleteDays)
}

func TestBuildAnnual(t *testing.T) {
	var (
		allDays []worktime.DayRecord
		months  []worktime.PeriodSummary
	)
	for _, m := range worktime.MonthsOfYear(2025) {
		source := worktime.SourceRoster
		if m.Month > time.August {
			source = worktime.SourceTemplate
		}
		days := monthDays(m, func(d time.Time) worktime.DayRecord {
			if isWeekday(d) {
				return plannedDay(d, source, 480, 480)
			}
			return emptyDay(d)
		})
		allDays = append(allDays, days...)
		months = append(months, AggregateMonth(m, days, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
	}

	year, err := AggregateYear(2025, months)
	require.NoError(t, err)
	year = year.WithCeiling(testCeiling)

	monthStatuses := make([]worktime.Statuses, 12)
	for i := range monthStatuses {
		monthStatuses[i] = worktime.Statuses{EstadoPlan: worktime.StatusOK, EstadoPermitidas: worktime.StatusOK, EstadoPlanHastaHoy: worktime.StatusOK}
	}

	report, err := BuildAnnual(AnnualInput{
		Employee:      testEmployeeRef,
		Summary:       year,
		Statuses:      monthStatuses[0],
		MonthStatuses: monthStatuses,
		Days:          allDays,
		Detail:        true,
		GeneratedAt:   testGeneratedAt,
	})
	require.NoError(t, err)

	assert.Equal(t, "2025", report.Period)
	assert.Equal(t, "2025-01-01", report.PeriodStart)
	assert.Equal(t, "2025-12-31", report.PeriodEnd)
	assert.Equal(t, worktime.SourceMix{MonthsWithRoster: 8, MonthsWithTemplate: 4}, report.SourceMix)
	assert.Equal(t, "MIXED", report.Summary.SourceLabel)
	require.Len(t, report.Months, 12)
	assert.Equal(t, "2025-09", report.Months[8].Period)
	assert.Equal(t, "TEMPLATE", report.Months[8].Summary.SourceLabel)
	require.NotNil(t, report.Months[0].Summary.TotalPermittedMinutes)
	assert.Equal(t, 10560, *report.Months[0].Summary.TotalPermittedMinutes)
	require.NotNil(t, report.Summary.TotalPermittedMinutes)
	assert.Equal(t, 126720, *report.Summary.TotalPermittedMinutes)
	assert.Len(t, report.Days, 365)

	t.Run("needs twelve month statuses", func(t *testing.T) {
		_, err := BuildAnnual(AnnualInput{Summary: year, MonthStatuses: monthStatuses[:11], Days: allDays})
		assert.ErrorIs(t, err, worktime.ErrInvalidPeriod)
	})

	t.Run("rejects monthly summary", func(t *testing.T) {
		_, err := BuildAnnual(AnnualInput{Summary: months[0], MonthStatuses: monthStatuses, Days: allDays})
		assert.ErrorIs(t, err, worktime.ErrInvalidPeriod)
	})
}
