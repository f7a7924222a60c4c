package worktime

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func clock(h, m int) *time.Time {
	t := testDay.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	return &t
}

func span(inH, inM, outH, outM int) worktime.AttendanceInterval {
	return worktime.AttendanceInterval{ClockIn: clock(inH, inM), ClockOut: clock(outH, outM)}
}

func TestReconcile_PlanPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		roster     *int
		template   *int
		wantPlan   *int
		wantSource worktime.TimeSource
	}{
		{"roster wins over template", intPtr(480), intPtr(420), intPtr(480), worktime.SourceRoster},
		{"roster of zero still wins", intPtr(0), intPtr(420), intPtr(0), worktime.SourceRoster},
		{"template only", nil, intPtr(420), intPtr(420), worktime.SourceTemplate},
		{"negative roster skipped", intPtr(-60), intPtr(420), intPtr(420), worktime.SourceTemplate},
		{"no plan", nil, nil, nil, worktime.SourceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Reconcile(worktime.DayInput{
				EmployeeID:      "emp-1",
				Date:            testDay,
				RosterMinutes:   tt.roster,
				TemplateMinutes: tt.template,
			}, worktime.DayPolicy{})

			assert.Equal(t, tt.wantPlan, rec.PlanMinutes)
			assert.Equal(t, tt.wantSource, rec.PlanSource)
			assert.Nil(t, rec.WorkedMinutes)
			assert.False(t, rec.Incomplete)
		})
	}
}

func TestReconcile_WorkedSplit(t *testing.T) {
	tests := []struct {
		name          string
		plan          *int
		cap           int
		intervals     []worktime.AttendanceInterval
		wantWorked    int
		wantDelta     *int
		ordinary      int
		complementary int
		extraordinary int
	}{
		{
			name:       "exactly the plan",
			plan:       intPtr(480),
			intervals:  []worktime.AttendanceInterval{span(9, 0, 13, 0), span(14, 0, 18, 0)},
			wantWorked: 480, wantDelta: intPtr(0),
			ordinary: 480,
		},
		{
			name:       "600 minutes with a 60 minute cap",
			plan:       intPtr(480),
			cap:        60,
			intervals:  []worktime.AttendanceInterval{span(8, 0, 18, 0)},
			wantWorked: 600, wantDelta: intPtr(120),
			ordinary: 480, complementary: 60, extraordinary: 60,
		},
		{
			name:       "no cap means every excess minute is extraordinary",
			plan:       intPtr(480),
			intervals:  []worktime.AttendanceInterval{span(8, 0, 18, 0)},
			wantWorked: 600, wantDelta: intPtr(120),
			ordinary: 480, extraordinary: 120,
		},
		{
			name:       "short day",
			plan:       intPtr(480),
			cap:        60,
			intervals:  []worktime.AttendanceInterval{span(9, 0, 15, 0)},
			wantWorked: 360, wantDelta: intPtr(-120),
			ordinary: 360,
		},
		{
			name:       "without plan everything is ordinary",
			cap:        60,
			intervals:  []worktime.AttendanceInterval{span(8, 0, 18, 0)},
			wantWorked: 600,
			ordinary:   600,
		},
		{
			name:       "overlapping pairs are not counted twice",
			plan:       intPtr(480),
			intervals:  []worktime.AttendanceInterval{span(12, 0, 14, 0), span(9, 0, 13, 0)},
			wantWorked: 300, wantDelta: intPtr(-180),
			ordinary: 300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Reconcile(worktime.DayInput{
				EmployeeID:    "emp-1",
				Date:          testDay,
				RosterMinutes: tt.plan,
				Intervals:     tt.intervals,
			}, worktime.DayPolicy{ComplementaryCapMinutes: tt.cap})

			require.NotNil(t, rec.WorkedMinutes)
			assert.Equal(t, tt.wantWorked, *rec.WorkedMinutes)
			assert.Equal(t, tt.wantDelta, rec.DeltaMinutes)
			assert.Equal(t, tt.ordinary, rec.OrdinaryMinutes)
			assert.Equal(t, tt.complementary, rec.ComplementaryMinutes)
			assert.Equal(t, tt.extraordinary, rec.ExtraordinaryMinutes)
			assert.False(t, rec.Incomplete)
		})
	}
}

func TestReconcile_OpenEntry(t *testing.T) {
	rec := Reconcile(worktime.DayInput{
		EmployeeID:    "emp-1",
		Date:          testDay,
		RosterMinutes: intPtr(480),
		Intervals:     []worktime.AttendanceInterval{{ClockIn: clock(9, 0)}},
	}, worktime.DayPolicy{})

	assert.Nil(t, rec.WorkedMinutes)
	assert.Nil(t, rec.DeltaMinutes)
	assert.True(t, rec.Incomplete)
	assert.Zero(t, rec.OrdinaryMinutes)
	assert.Equal(t, intPtr(480), rec.PlanMinutes)
}

func TestReconcile_ExitBeforeEntry(t *testing.T) {
	rec := Reconcile(worktime.DayInput{
		EmployeeID: "emp-1",
		Date:       testDay,
		Intervals: []worktime.AttendanceInterval{
			span(9, 0, 13, 0),
			span(18, 0, 14, 0),
		},
	}, worktime.DayPolicy{})

	require.NotNil(t, rec.WorkedMinutes)
	assert.Equal(t, 240, *rec.WorkedMinutes)
	assert.True(t, rec.Incomplete)
	require.Len(t, rec.Issues, 1)
	assert.ErrorIs(t, rec.Issues[0], worktime.ErrInvalidInterval)
}

func TestReconcile_RoundsToMinute(t *testing.T) {
	out := testDay.Add(8*time.Hour + 40*time.Second)
	rec := Reconcile(worktime.DayInput{
		Date:      testDay,
		Intervals: []worktime.AttendanceInterval{{ClockIn: &testDay, ClockOut: &out}},
	}, worktime.DayPolicy{})

	require.NotNil(t, rec.WorkedMinutes)
	assert.Equal(t, 481, *rec.WorkedMinutes)
}

func TestReconcile_SplitAlwaysAddsUp(t *testing.T) {
	plans := []*int{nil, intPtr(0), intPtr(240), intPtr(480)}
	caps := []int{-30, 0, 30, 60, 600}

	for _, plan := range plans {
		for _, capMinutes := range caps {
			for hours := 0; hours <= 12; hours++ {
				rec := Reconcile(worktime.DayInput{
					Date:          testDay,
					RosterMinutes: plan,
					Intervals:     []worktime.AttendanceInterval{span(6, 0, 6+hours, 15)},
				}, worktime.DayPolicy{ComplementaryCapMinutes: capMinutes})

				require.NotNil(t, rec.WorkedMinutes)
				sum := rec.OrdinaryMinutes + rec.ComplementaryMinutes + rec.ExtraordinaryMinutes
				assert.Equal(t, *rec.WorkedMinutes, sum)
				assert.GreaterOrEqual(t, rec.ComplementaryMinutes, 0)
				assert.GreaterOrEqual(t, rec.ExtraordinaryMinutes, 0)
			}
		}
	}
}
