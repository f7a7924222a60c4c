package worktime

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
)

// AggregateMonth folds the day records of one month into a summary.
// Unknown plan or worked minutes contribute nothing. Records outside the
// month and repeated dates are ignored so no day is counted twice.
func AggregateMonth(month worktime.Month, days []worktime.DayRecord, asOf time.Time) worktime.PeriodSummary {
	s := worktime.PeriodSummary{
		Kind:  worktime.PeriodMonth,
		Key:   month.Key(),
		Start: month.FirstDay(),
		End:   month.LastDay(),
		AsOf:  worktime.DateOnly(asOf),
	}

	seen := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		date := worktime.DateOnly(d.Date)
		if date.Before(s.Start) || date.After(s.End) {
			continue
		}
		if _, dup := seen[date]; dup {
			continue
		}
		seen[date] = struct{}{}

		elapsed := !date.After(s.AsOf)

		if d.PlanMinutes != nil {
			s.TotalPlanMinutes += *d.PlanMinutes
			if elapsed {
				s.PlanToDateMinutes += *d.PlanMinutes
			}
		}
		if d.WorkedMinutes != nil {
			s.TotalWorkedMinutes += *d.WorkedMinutes
			if elapsed {
				s.WorkedToDateMinutes += *d.WorkedMinutes
			}
		}

		s.TotalOrdinary += d.OrdinaryMinutes
		s.TotalComplementary += d.ComplementaryMinutes
		s.TotalExtraordinary += d.ExtraordinaryMinutes

		switch d.PlanSource {
		case worktime.SourceRoster:
			s.DaysWithRoster++
		case worktime.SourceTemplate:
			s.DaysWithTemplate++
		default:
			s.DaysWithoutPlan++
		}

		if d.Incomplete {
			s.IncompleteDays++
		}
	}

	s.HasPlan = s.DaysWithRoster > 0 || s.DaysWithTemplate > 0
	s.SourceLabel = sourceLabel(s.DaysWithRoster > 0, s.DaysWithTemplate > 0, false)
	s.DiffVsPlan = s.TotalWorkedMinutes - s.TotalPlanMinutes
	s.DiffPlanToDate = s.WorkedToDateMinutes - s.PlanToDateMinutes

	return s
}

// AggregateYear rolls twelve monthly summaries (January to December of
// year, in order) into an annual summary.
func AggregateYear(year int, months []worktime.PeriodSummary) (worktime.PeriodSummary, error) {
	expected := worktime.MonthsOfYear(year)
	if len(months) != len(expected) {
		return worktime.PeriodSummary{}, fmt.Errorf("%w: annual aggregation needs 12 months, got %d", worktime.ErrInvalidPeriod, len(months))
	}
	for i, m := range months {
		if m.Kind != worktime.PeriodMonth || m.Key != expected[i].Key() {
			return worktime.PeriodSummary{}, fmt.Errorf("%w: month %d is %q, want %q", worktime.ErrInvalidPeriod, i+1, m.Key, expected[i].Key())
		}
	}

	s := worktime.PeriodSummary{
		Kind:   worktime.PeriodYear,
		Key:    strconv.Itoa(year),
		Start:  expected[0].FirstDay(),
		End:    expected[11].LastDay(),
		AsOf:   months[0].AsOf,
		Months: make([]worktime.PeriodSummary, len(months)),
	}
	copy(s.Months, months)

	for _, m := range months {
		s.TotalPlanMinutes += m.TotalPlanMinutes
		s.TotalWorkedMinutes += m.TotalWorkedMinutes
		s.TotalOrdinary += m.TotalOrdinary
		s.TotalComplementary += m.TotalComplementary
		s.TotalExtraordinary += m.TotalExtraordinary
		s.PlanToDateMinutes += m.PlanToDateMinutes
		s.WorkedToDateMinutes += m.WorkedToDateMinutes

		s.DaysWithRoster += m.DaysWithRoster
		s.DaysWithTemplate += m.DaysWithTemplate
		s.DaysWithoutPlan += m.DaysWithoutPlan
		s.IncompleteDays += m.IncompleteDays

		if !m.HasPlan {
			continue
		}
		s.HasPlan = true
		switch m.SourceLabel {
		case worktime.LabelRoster:
			s.MonthsWithRoster++
		case worktime.LabelTemplate:
			s.MonthsWithTemplate++
		case worktime.LabelMixed:
			s.MonthsMixed++
		}
	}

	s.SourceLabel = sourceLabel(s.MonthsWithRoster > 0, s.MonthsWithTemplate > 0, s.MonthsMixed > 0)
	s.DiffVsPlan = s.TotalWorkedMinutes - s.TotalPlanMinutes
	s.DiffPlanToDate = s.WorkedToDateMinutes - s.PlanToDateMinutes

	return s, nil
}

// sourceLabel maps the distinct sources seen to a label. With no source at
// all the label falls back to TEMPLATE for display.
func sourceLabel(roster, template, mixed bool) worktime.SourceLabel {
	switch {
	case mixed || (roster && template):
		return worktime.LabelMixed
	case roster:
		return worktime.LabelRoster
	default:
		return worktime.LabelTemplate
	}
}
