package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/employee"
	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	"github.com/cmlabs-hris/worktime-backend/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()
	ctx := context.Background()

	setup, err := NewTestDatabase(ctx)
	require.NoError(t, err)
	if setup == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, setup.TruncateAllTables(ctx))
	t.Cleanup(setup.Close)
	return setup
}

type fixture struct {
	companyID  string
	employeeID string
	scheduleID string
}

// seedEmployee creates an employee on a Monday-Friday 09:00-17:00 schedule
// with a one hour break.
func seedEmployee(t *testing.T, ctx context.Context, setup *TestDatabaseSetup) fixture {
	t.Helper()
	f := fixture{companyID: uuid.NewString()}

	err := setup.DB.QueryRow(ctx, `
		INSERT INTO work_schedules (company_id, name) VALUES ($1, 'Office') RETURNING id
	`, f.companyID).Scan(&f.scheduleID)
	require.NoError(t, err)

	for dow := 1; dow <= 5; dow++ {
		_, err := setup.DB.Exec(ctx, `
			INSERT INTO work_schedule_times (work_schedule_id, day_of_week, clock_in_time, clock_out_time, break_start_time, break_end_time)
			VALUES ($1, $2, '09:00', '17:00', '12:00', '13:00')
		`, f.scheduleID, dow)
		require.NoError(t, err)
	}

	err = setup.DB.QueryRow(ctx, `
		INSERT INTO employees (company_id, work_schedule_id, employee_code, full_name, group_name)
		VALUES ($1, $2, 'EMP-001', 'Ana Ruiz', 'operations')
		RETURNING id
	`, f.companyID, f.scheduleID).Scan(&f.employeeID)
	require.NoError(t, err)

	return f
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScheduleRepository_ListScheduleEntries(t *testing.T) {
	setup := setupTestDatabase(t)
	ctx := context.Background()
	f := seedEmployee(t, ctx, setup)

	// Monday 2025-03-03 gets a 7.5h roster shift that overrides the 7h template.
	_, err := setup.DB.Exec(ctx, `
		INSERT INTO employee_shifts (employee_id, company_id, date, planned_hours) VALUES ($1, $2, '2025-03-03', 7.5)
	`, f.employeeID, f.companyID)
	require.NoError(t, err)

	repo := postgresql.NewWorkScheduleRepository(setup.DB)
	entries, err := repo.ListScheduleEntries(ctx, f.employeeID, f.companyID, date(2025, 3, 1), date(2025, 3, 7))
	require.NoError(t, err)
	require.Len(t, entries, 7)

	t.Run("weekend has no plan", func(t *testing.T) {
		assert.Nil(t, entries[0].Roster)
		assert.Nil(t, entries[0].Template)
		assert.Nil(t, entries[1].Template)
	})

	t.Run("roster and template both reported", func(t *testing.T) {
		assert.Equal(t, "7.50", entries[2].Roster)
		assert.Equal(t, "07:00:00", entries[2].Template)
	})

	t.Run("weekday template only", func(t *testing.T) {
		assert.Nil(t, entries[3].Roster)
		assert.Equal(t, "07:00:00", entries[3].Template)
	})
}

func TestAttendanceRepository_ListAttendanceRecords(t *testing.T) {
	setup := setupTestDatabase(t)
	ctx := context.Background()
	f := seedEmployee(t, ctx, setup)

	_, err := setup.DB.Exec(ctx, `
		INSERT INTO attendances (employee_id, company_id, date, clock_in, clock_out) VALUES
			($1, $2, '2025-03-03', '2025-03-03 09:00:00+00', '2025-03-03 17:00:00+00'),
			($1, $2, '2025-03-04', '2025-03-04 09:00:00+00', NULL),
			($1, $2, '2025-03-05', NULL, NULL),
			($1, $2, '2025-04-01', '2025-04-01 09:00:00+00', '2025-04-01 17:00:00+00')
	`, f.employeeID, f.companyID)
	require.NoError(t, err)

	repo := postgresql.NewAttendanceRepository(setup.DB)
	records, err := repo.ListAttendanceRecords(ctx, f.employeeID, f.companyID, date(2025, 3, 1), date(2025, 3, 31))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.NotNil(t, records[0].ClockOut)
	assert.Nil(t, records[1].ClockOut)
}

func TestEmployeeRepository_GetByID(t *testing.T) {
	setup := setupTestDatabase(t)
	ctx := context.Background()
	f := seedEmployee(t, ctx, setup)
	repo := postgresql.NewEmployeeRepository(setup.DB)

	t.Run("found", func(t *testing.T) {
		emp, err := repo.GetByID(ctx, f.employeeID, f.companyID)
		require.NoError(t, err)
		assert.Equal(t, "Ana Ruiz", emp.FullName)
		assert.Equal(t, "operations", emp.GroupName)
		assert.True(t, emp.IsActive())
	})

	t.Run("other company", func(t *testing.T) {
		_, err := repo.GetByID(ctx, f.employeeID, uuid.NewString())
		assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	})

	t.Run("company listing", func(t *testing.T) {
		ids, err := repo.ListCompanyIDsWithActiveEmployees(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, f.companyID)

		emps, err := repo.GetActiveByCompanyID(ctx, f.companyID)
		require.NoError(t, err)
		assert.Len(t, emps, 1)
	})
}

func TestGroupCeilingRepository_GetActiveByGroup(t *testing.T) {
	setup := setupTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()

	_, err := setup.DB.Exec(ctx, `
		INSERT INTO group_ceilings (company_id, group_name, monthly_permitted_minutes, annual_permitted_minutes, plan_tolerance_minutes)
		VALUES ($1, 'operations', 9600, 105600, 60)
	`, companyID)
	require.NoError(t, err)

	repo := postgresql.NewGroupCeilingRepository(setup.DB)

	c, err := repo.GetActiveByGroup(ctx, companyID, "operations")
	require.NoError(t, err)
	assert.Equal(t, 9600, c.MonthlyPermittedMinutes)
	require.NotNil(t, c.PlanToleranceMinutes)
	assert.Equal(t, 60, *c.PlanToleranceMinutes)
	assert.Nil(t, c.DailyComplementaryCapMinutes)

	_, err = repo.GetActiveByGroup(ctx, companyID, "logistics")
	var missing *worktime.MissingCeilingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "logistics", missing.GroupName)
}

func TestComplianceAlertRepository_ReplaceAndList(t *testing.T) {
	setup := setupTestDatabase(t)
	ctx := context.Background()
	f := seedEmployee(t, ctx, setup)
	repo := postgresql.NewComplianceAlertRepository(setup.DB)
	computedAt := time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC)

	alert := func(worst worktime.ComplianceStatus) worktime.ComplianceAlert {
		return worktime.ComplianceAlert{
			EmployeeID:         f.employeeID,
			EmployeeName:       "Ana Ruiz",
			EstadoPlan:         worst,
			EstadoPermitidas:   worktime.StatusOK,
			EstadoPlanHastaHoy: worktime.StatusOK,
			WorstStatus:        worst,
			DiffVsPlan:         45,
			SourceLabel:        worktime.LabelTemplate,
			ComputedAt:         computedAt,
		}
	}

	require.NoError(t, repo.ReplaceForPeriod(ctx, f.companyID, "2025-03", []worktime.ComplianceAlert{alert(worktime.StatusAlerta)}))

	alerts, err := repo.List(ctx, f.companyID, worktime.AlertFilter{Period: "2025-03"})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, worktime.StatusAlerta, alerts[0].WorstStatus)
	assert.NotEmpty(t, alerts[0].ID)

	t.Run("replace drops previous rows", func(t *testing.T) {
		require.NoError(t, repo.ReplaceForPeriod(ctx, f.companyID, "2025-03", []worktime.ComplianceAlert{alert(worktime.StatusRiesgo)}))

		alerts, err := repo.List(ctx, f.companyID, worktime.AlertFilter{Period: "2025-03"})
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, worktime.StatusRiesgo, alerts[0].WorstStatus)
	})

	t.Run("min status filter", func(t *testing.T) {
		require.NoError(t, repo.ReplaceForPeriod(ctx, f.companyID, "2025-03", []worktime.ComplianceAlert{alert(worktime.StatusAlerta)}))

		alerts, err := repo.List(ctx, f.companyID, worktime.AlertFilter{Period: "2025-03", MinStatus: worktime.StatusRiesgo})
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})

	t.Run("inside caller transaction", func(t *testing.T) {
		tx := postgresql.NewTxManager(setup.DB)
		err := tx.WithinTransaction(ctx, pgx.TxOptions{}, func(txCtx context.Context) error {
			return repo.ReplaceForPeriod(txCtx, f.companyID, "2025-03", nil)
		})
		require.NoError(t, err)

		alerts, err := repo.List(ctx, f.companyID, worktime.AlertFilter{Period: "2025-03"})
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})
}
