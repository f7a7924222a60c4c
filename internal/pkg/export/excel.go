package export

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Summary"
	DaysSheet    = "Days"

	// ContentTypeXLSX is the media type of the workbook written by WriteMonthlyReport.
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	unknownCell = "unknown"
)

var dayHeaders = []interface{}{
	"Date", "Day", "Plan", "Source", "Worked", "Delta", "Ordinary", "Complementary", "Extraordinary", "Incomplete", "Issues",
}

// MonthlyFilename is the download name of a monthly workbook.
func MonthlyFilename(report worktime.MonthlyReport) string {
	code := report.Employee.Code
	if code == "" {
		code = report.Employee.ID
	}
	return fmt.Sprintf("worktime_%s_%s.xlsx", code, report.Period)
}

// WriteMonthlyReport renders a monthly report as an XLSX workbook with a
// summary sheet and, when the report carries days, a per-day sheet.
// Unknown values are written as "unknown", never as 0.
func WriteMonthlyReport(w io.Writer, report worktime.MonthlyReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummary(f, report, headerStyle); err != nil {
		return err
	}

	if len(report.Days) > 0 {
		if err := writeDays(f, report.Days, headerStyle); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, report worktime.MonthlyReport, headerStyle int) error {
	s := report.Summary
	st := report.Statuses

	title := fmt.Sprintf("WORK-TIME REPORT %s", report.Period)
	if err := f.SetCellValue(SummarySheet, "A1", title); err != nil {
		return err
	}
	if err := f.MergeCell(SummarySheet, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", headerStyle); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Employee", report.Employee.Name},
		{"Code", report.Employee.Code},
		{"Group", report.Employee.Group},
		{"Period", fmt.Sprintf("%s to %s", report.PeriodStart, report.PeriodEnd)},
		{"As of", report.AsOf},
		{"Source", s.SourceLabel},
		{},
		{"Planned", FormatMinutes(s.TotalPlanMinutes)},
		{"Worked", FormatMinutes(s.TotalWorkedMinutes)},
		{"Permitted", formatOptional(s.TotalPermittedMinutes)},
		{"Ordinary", FormatMinutes(s.TotalOrdinary)},
		{"Complementary", FormatMinutes(s.TotalComplementary)},
		{"Extraordinary", FormatMinutes(s.TotalExtraordinary)},
		{"Planned to date", FormatMinutes(s.PlanToDateMinutes)},
		{"Worked to date", FormatMinutes(s.WorkedToDateMinutes)},
		{"Diff vs plan", FormatMinutes(s.DiffVsPlan)},
		{"Diff vs permitted", formatOptional(s.DiffVsPermitted)},
		{"Diff plan to date", FormatMinutes(s.DiffPlanToDate)},
		{"Days with roster", s.DaysWithRoster},
		{"Days with template", s.DaysWithTemplate},
		{"Days without plan", s.DaysWithoutPlan},
		{"Incomplete days", s.IncompleteDays},
		{},
		{"Estado plan", st.EstadoPlan},
		{"Estado permitidas", st.EstadoPermitidas},
		{"Estado plan hasta hoy", st.EstadoPlanHastaHoy},
		{"Worst", st.Worst},
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i, err)
		}
	}

	if err := f.SetColWidth(SummarySheet, "A", "A", 24); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "B", "B", 28)
}

func writeDays(f *excelize.File, days []worktime.DayRow, headerStyle int) error {
	if _, err := f.NewSheet(DaysSheet); err != nil {
		return fmt.Errorf("create days sheet: %w", err)
	}

	if err := f.SetSheetRow(DaysSheet, "A1", &dayHeaders); err != nil {
		return err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(dayHeaders), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(DaysSheet, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	for i, d := range days {
		incomplete := ""
		if d.Incomplete {
			incomplete = "yes"
		}
		issues := ""
		for j, issue := range d.Issues {
			if j > 0 {
				issues += "; "
			}
			issues += issue
		}

		row := []interface{}{
			d.Date,
			d.DayOfWeek,
			formatOptional(d.PlanMinutes),
			d.PlanSource,
			formatOptional(d.WorkedMinutes),
			formatOptional(d.DeltaMinutes),
			FormatMinutes(d.OrdinaryMinutes),
			FormatMinutes(d.ComplementaryMinutes),
			FormatMinutes(d.ExtraordinaryMinutes),
			incomplete,
			issues,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(DaysSheet, cell, &row); err != nil {
			return fmt.Errorf("write day %s: %w", d.Date, err)
		}
	}

	if err := f.SetColWidth(DaysSheet, "A", "B", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(DaysSheet, "C", "J", 14); err != nil {
		return err
	}
	return f.SetColWidth(DaysSheet, "K", "K", 36)
}

// FormatMinutes renders minutes as signed H:MM.
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%d:%02d", sign, minutes/60, minutes%60)
}

func formatOptional(minutes *int) string {
	if minutes == nil {
		return unknownCell
	}
	return FormatMinutes(*minutes)
}
