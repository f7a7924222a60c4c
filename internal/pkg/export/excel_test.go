package export

import (
	"bytes"
	"testing"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func intPtr(v int) *int { return &v }

func sampleReport() worktime.MonthlyReport {
	return worktime.MonthlyReport{
		Employee:    worktime.EmployeeRef{ID: "emp-1", Code: "EMP-001", Name: "Ana Ruiz", Group: "operations"},
		Period:      "2025-04",
		PeriodStart: "2025-04-01",
		PeriodEnd:   "2025-04-30",
		AsOf:        "2025-04-30",
		Summary: worktime.SummaryView{
			TotalPlanMinutes:      10560,
			TotalWorkedMinutes:    10680,
			TotalPermittedMinutes: intPtr(10560),
			DiffVsPlan:            120,
			DiffVsPermitted:       intPtr(120),
			SourceLabel:           "TEMPLATE",
		},
		Statuses: worktime.StatusView{EstadoPlan: "RIESGO", EstadoPermitidas: "RIESGO", EstadoPlanHastaHoy: "OK", Worst: "RIESGO"},
		Days: []worktime.DayRow{
			{Date: "2025-04-01", DayOfWeek: "Tuesday", PlanMinutes: intPtr(480), PlanSource: "TEMPLATE", WorkedMinutes: intPtr(600), DeltaMinutes: intPtr(120), OrdinaryMinutes: 480, ComplementaryMinutes: 60, ExtraordinaryMinutes: 60},
			{Date: "2025-04-02", DayOfWeek: "Wednesday", PlanMinutes: intPtr(480), PlanSource: "TEMPLATE", Incomplete: true, Issues: []string{"invalid_interval 18:00-14:00"}},
		},
	}
}

func TestWriteMonthlyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMonthlyReport(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, DaysSheet}, f.GetSheetList())

	title, err := f.GetCellValue(SummarySheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "WORK-TIME REPORT 2025-04", title)

	name, err := f.GetCellValue(SummarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Ana Ruiz", name)

	rows, err := f.GetRows(DaysSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, []string{"2025-04-01", "Tuesday", "8:00", "TEMPLATE", "10:00", "2:00", "8:00", "1:00", "1:00"}, rows[1][:9])

	// Unknown worked time is spelled out, not written as zero.
	assert.Equal(t, "unknown", rows[2][4])
	assert.Equal(t, "yes", rows[2][9])
	assert.Equal(t, "invalid_interval 18:00-14:00", rows[2][10])
}

func TestWriteMonthlyReport_SummaryOnly(t *testing.T) {
	report := sampleReport()
	report.Days = nil

	var buf bytes.Buffer
	require.NoError(t, WriteMonthlyReport(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet}, f.GetSheetList())
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0:00", FormatMinutes(0))
	assert.Equal(t, "7:30", FormatMinutes(450))
	assert.Equal(t, "-2:05", FormatMinutes(-125))
	assert.Equal(t, "176:00", FormatMinutes(10560))
}

func TestMonthlyFilename(t *testing.T) {
	assert.Equal(t, "worktime_EMP-001_2025-04.xlsx", MonthlyFilename(sampleReport()))
}
