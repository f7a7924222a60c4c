package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	"github.com/cmlabs-hris/worktime-backend/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) worktime.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// ListAttendanceRecords implements worktime.AttendanceRepository.
// Rows are grouped by their work date, so a night shift that clocks out
// after midnight stays on the day it started.
func (a *attendanceRepository) ListAttendanceRecords(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]worktime.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, date, clock_in, clock_out
		FROM attendances
		WHERE employee_id = $1
		  AND company_id = $2
		  AND date BETWEEN $3::date AND $4::date
		  AND (clock_in IS NOT NULL OR clock_out IS NOT NULL)
		ORDER BY date ASC, clock_in ASC NULLS LAST
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []worktime.AttendanceRecord
	for rows.Next() {
		var rec worktime.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.Date, &rec.ClockIn, &rec.ClockOut); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}
