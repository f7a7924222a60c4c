package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	"github.com/cmlabs-hris/worktime-backend/internal/pkg/database"
)

type workScheduleRepositoryImpl struct {
	db *database.DB
}

func NewWorkScheduleRepository(db *database.DB) worktime.ScheduleRepository {
	return &workScheduleRepositoryImpl{db: db}
}

// ListScheduleEntries implements worktime.ScheduleRepository.
//
// Roster hours come from employee_shifts as decimal hours. The template
// duration is derived from the weekly work schedule in force that day
// (assignment override first, then the employee default) and rendered as
// interval text "HH:MM:SS". Both are handed to the normalizer untouched.
func (w *workScheduleRepositoryImpl) ListScheduleEntries(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]worktime.ScheduleEntry, error) {
	q := GetQuerier(ctx, w.db)

	query := `
		-- QUERY: ListScheduleEntries

WITH days AS (
    SELECT d::date AS date
    FROM generate_series($3::date, $4::date, interval '1 day') AS d
),
roster AS (
    SELECT es.date, SUM(es.planned_hours) AS planned_hours
    FROM employee_shifts es
    WHERE es.employee_id = $1
      AND es.company_id = $2
      AND es.date BETWEEN $3::date AND $4::date
    GROUP BY es.date
),
target_schedule AS (
    SELECT days.date,
        COALESCE(
            -- PRIORITY 1: assignment override
            (
                SELECT esa.work_schedule_id
                FROM employee_schedule_assignments esa
                WHERE esa.employee_id = $1
                  AND days.date BETWEEN esa.start_date AND esa.end_date
                ORDER BY esa.start_date DESC
                LIMIT 1
            ),
            -- PRIORITY 2: employee default
            e.work_schedule_id
        ) AS work_schedule_id
    FROM days
    CROSS JOIN employees e
    WHERE e.id = $1 AND e.company_id = $2
)
SELECT
    days.date,
    roster.planned_hours::text AS roster_hours,
    CASE WHEN wst.id IS NULL THEN NULL ELSE (
        (wst.clock_out_time - wst.clock_in_time)
        + CASE WHEN wst.is_next_day_checkout THEN interval '24 hours' ELSE interval '0' END
        - COALESCE(wst.break_end_time - wst.break_start_time, interval '0')
    )::text END AS template_duration
FROM days
LEFT JOIN roster ON roster.date = days.date
LEFT JOIN target_schedule ts ON ts.date = days.date
LEFT JOIN work_schedules ws ON ws.id = ts.work_schedule_id
    AND ws.company_id = $2
    AND ws.deleted_at IS NULL
LEFT JOIN work_schedule_times wst ON wst.work_schedule_id = ws.id
    AND wst.day_of_week = EXTRACT(ISODOW FROM days.date)::int
ORDER BY days.date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule entries: %w", err)
	}
	defer rows.Close()

	var entries []worktime.ScheduleEntry
	for rows.Next() {
		var (
			date         time.Time
			rosterHours  *string
			templateSpan *string
		)
		if err := rows.Scan(&date, &rosterHours, &templateSpan); err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}

		entry := worktime.ScheduleEntry{Date: date}
		if rosterHours != nil {
			entry.Roster = *rosterHours
		}
		if templateSpan != nil {
			entry.Template = *templateSpan
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entries, nil
}
