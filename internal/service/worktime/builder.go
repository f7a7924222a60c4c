package worktime

import (
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
)

type MonthlyInput struct {
	Employee    worktime.EmployeeRef
	Summary     worktime.PeriodSummary
	Statuses    worktime.Statuses
	Days        []worktime.DayRecord
	Detail      bool
	GeneratedAt time.Time
}

type AnnualInput struct {
	Employee      worktime.EmployeeRef
	Summary       worktime.PeriodSummary
	Statuses      worktime.Statuses
	MonthStatuses []worktime.Statuses
	Days          []worktime.DayRecord
	Detail        bool
	GeneratedAt   time.Time
}

// BuildMonthly assembles the monthly report. Days must hold one record per
// calendar day of the month, in order.
func BuildMonthly(in MonthlyInput) (worktime.MonthlyReport, error) {
	month, err := worktime.ParseMonth(in.Summary.Key)
	if err != nil {
		return worktime.MonthlyReport{}, err
	}
	if err := checkDaySequence(in.Summary.Key, month.FirstDay(), month.Days(), in.Days); err != nil {
		return worktime.MonthlyReport{}, err
	}

	report := worktime.MonthlyReport{
		Employee:    in.Employee,
		Period:      in.Summary.Key,
		PeriodStart: in.Summary.Start.Format(worktime.DateLayout),
		PeriodEnd:   in.Summary.End.Format(worktime.DateLayout),
		AsOf:        in.Summary.AsOf.Format(worktime.DateLayout),
		GeneratedAt: in.GeneratedAt.Format(time.RFC3339),
		Summary:     summaryView(in.Summary),
		Statuses:    statusView(in.Statuses),
	}
	if in.Detail {
		report.Days = dayRows(in.Days)
	}
	return report, nil
}

// BuildAnnual assembles the annual report with its twelve-month breakdown.
func BuildAnnual(in AnnualInput) (worktime.AnnualReport, error) {
	if in.Summary.Kind != worktime.PeriodYear {
		return worktime.AnnualReport{}, fmt.Errorf("%w: %q is not an annual summary", worktime.ErrInvalidPeriod, in.Summary.Key)
	}
	if len(in.Summary.Months) != 12 || len(in.MonthStatuses) != 12 {
		return worktime.AnnualReport{}, fmt.Errorf("%w: annual report needs 12 months and 12 statuses, got %d and %d",
			worktime.ErrInvalidPeriod, len(in.Summary.Months), len(in.MonthStatuses))
	}
	year := in.Summary.Start.Year()
	if err := checkDaySequence(in.Summary.Key, in.Summary.Start, worktime.DaysInYear(year), in.Days); err != nil {
		return worktime.AnnualReport{}, err
	}

	report := worktime.AnnualReport{
		Employee:    in.Employee,
		Period:      in.Summary.Key,
		PeriodStart: in.Summary.Start.Format(worktime.DateLayout),
		PeriodEnd:   in.Summary.End.Format(worktime.DateLayout),
		AsOf:        in.Summary.AsOf.Format(worktime.DateLayout),
		GeneratedAt: in.GeneratedAt.Format(time.RFC3339),
		Summary:     summaryView(in.Summary),
		Statuses:    statusView(in.Statuses),
		SourceMix: worktime.SourceMix{
			MonthsWithRoster:   in.Summary.MonthsWithRoster,
			MonthsWithTemplate: in.Summary.MonthsWithTemplate,
			MonthsMixed:        in.Summary.MonthsMixed,
		},
		Months: make([]worktime.AnnualMonthRow, 0, 12),
	}

	for i, m := range in.Summary.Months {
		report.Months = append(report.Months, worktime.AnnualMonthRow{
			Period:   m.Key,
			Summary:  summaryView(m),
			Statuses: statusView(in.MonthStatuses[i]),
		})
	}

	if in.Detail {
		report.Days = dayRows(in.Days)
	}
	return report, nil
}

func checkDaySequence(period string, first time.Time, want int, days []worktime.DayRecord) error {
	if len(days) != want {
		return &worktime.IncompleteDaySequenceError{Period: period, Want: want, Got: len(days)}
	}
	for i, d := range days {
		expected := first.AddDate(0, 0, i)
		if !worktime.DateOnly(d.Date).Equal(expected) {
			return fmt.Errorf("%w: day %d is %s, want %s", worktime.ErrIncompleteDaySequence, i+1,
				d.Date.Format(worktime.DateLayout), expected.Format(worktime.DateLayout))
		}
	}
	return nil
}

func summaryView(s worktime.PeriodSummary) worktime.SummaryView {
	return worktime.SummaryView{
		TotalPlanMinutes:      s.TotalPlanMinutes,
		TotalWorkedMinutes:    s.TotalWorkedMinutes,
		TotalPermittedMinutes: copyInt(s.TotalPermittedMinutes),
		TotalOrdinary:         s.TotalOrdinary,
		TotalComplementary:    s.TotalComplementary,
		TotalExtraordinary:    s.TotalExtraordinary,
		PlanToDateMinutes:     s.PlanToDateMinutes,
		WorkedToDateMinutes:   s.WorkedToDateMinutes,
		DiffVsPlan:            s.DiffVsPlan,
		DiffVsPermitted:       copyInt(s.DiffVsPermitted),
		DiffPlanToDate:        s.DiffPlanToDate,
		SourceLabel:           string(s.SourceLabel),
		HasPlan:               s.HasPlan,
		DaysWithRoster:        s.DaysWithRoster,
		DaysWithTemplate:      s.DaysWithTemplate,
		DaysWithoutPlan:       s.DaysWithoutPlan,
		IncompleteDays:        s.IncompleteDays,
	}
}

func statusView(s worktime.Statuses) worktime.StatusView {
	return worktime.StatusView{
		EstadoPlan:         string(s.EstadoPlan),
		EstadoPermitidas:   string(s.EstadoPermitidas),
		EstadoPlanHastaHoy: string(s.EstadoPlanHastaHoy),
		Worst:              string(s.Worst()),
	}
}

func dayRows(days []worktime.DayRecord) []worktime.DayRow {
	rows := make([]worktime.DayRow, 0, len(days))
	for _, d := range days {
		row := worktime.DayRow{
			Date:                 d.Date.Format(worktime.DateLayout),
			DayOfWeek:            d.Date.Weekday().String(),
			PlanMinutes:          copyInt(d.PlanMinutes),
			PlanSource:           string(d.PlanSource),
			WorkedMinutes:        copyInt(d.WorkedMinutes),
			DeltaMinutes:         copyInt(d.DeltaMinutes),
			Incomplete:           d.Incomplete,
			OrdinaryMinutes:      d.OrdinaryMinutes,
			ComplementaryMinutes: d.ComplementaryMinutes,
			ExtraordinaryMinutes: d.ExtraordinaryMinutes,
		}
		for _, issue := range d.Issues {
			row.Issues = append(row.Issues, issueCode(issue))
		}
		rows = append(rows, row)
	}
	return rows
}

func issueCode(err error) string {
	var invalid *worktime.InvalidIntervalError
	if errors.As(err, &invalid) {
		return fmt.Sprintf("invalid_interval %s-%s", invalid.ClockIn.Format("15:04"), invalid.ClockOut.Format("15:04"))
	}
	return err.Error()
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
