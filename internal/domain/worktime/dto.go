package worktime

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktime-backend/internal/pkg/validator"
)

// ========================================
// MONTHLY REPORT
// ========================================

type MonthlyReportRequest struct {
	EmployeeID string `json:"employee_id"`
	Period     string `json:"period"`          // YYYY-MM
	AsOf       string `json:"as_of,omitempty"` // YYYY-MM-DD, defaults to today
	Detail     bool   `json:"detail"`
}

// Validate checks the request. now bounds the accepted years.
func (r *MonthlyReportRequest) Validate(now time.Time) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if month, ok := validator.IsValidMonthKey(r.Period); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "period",
			Message: "period must be in YYYY-MM format",
		})
	} else if msg, ok := checkYear(month.Year(), now); !ok {
		errs = append(errs, validator.ValidationError{Field: "period", Message: msg})
	}

	if r.AsOf != "" {
		if _, ok := validator.IsValidDate(r.AsOf); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "as_of",
				Message: "as_of must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// ANNUAL REPORT
// ========================================

type AnnualReportRequest struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	AsOf       string `json:"as_of,omitempty"`
	Detail     bool   `json:"detail"`
}

func (r *AnnualReportRequest) Validate(now time.Time) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if msg, ok := checkYear(r.Year, now); !ok {
		errs = append(errs, validator.ValidationError{Field: "year", Message: msg})
	}

	if r.AsOf != "" {
		if _, ok := validator.IsValidDate(r.AsOf); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "as_of",
				Message: "as_of must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkYear(year int, now time.Time) (string, bool) {
	currentYear := now.Year()
	if year < 2020 || year > currentYear+1 {
		return fmt.Sprintf("year must be between 2020 and %d", currentYear+1), false
	}
	return "", true
}

// ========================================
// ALERTS
// ========================================

type AlertListRequest struct {
	Period    string `json:"period"`
	MinStatus string `json:"min_status,omitempty"`
}

func (r *AlertListRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidMonthKey(r.Period); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "period",
			Message: "period must be in YYYY-MM format",
		})
	}

	if r.MinStatus != "" && !validator.IsInSlice(r.MinStatus, ComplianceStatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "min_status",
			Message: "min_status must be one of OK, ALERTA, RIESGO",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AlertFilter struct {
	Period    string
	MinStatus ComplianceStatus
}

// ========================================
// RESPONSES
// ========================================

type EmployeeRef struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

// DayRow renders one DayRecord. Unknown values are null, never zero.
type DayRow struct {
	Date                 string   `json:"date"`
	DayOfWeek            string   `json:"day_of_week"`
	PlanMinutes          *int     `json:"plan_minutes"`
	PlanSource           string   `json:"plan_source"`
	WorkedMinutes        *int     `json:"worked_minutes"`
	DeltaMinutes         *int     `json:"delta_minutes"`
	Incomplete           bool     `json:"incomplete"`
	OrdinaryMinutes      int      `json:"ordinary_minutes"`
	ComplementaryMinutes int      `json:"complementary_minutes"`
	ExtraordinaryMinutes int      `json:"extraordinary_minutes"`
	Issues               []string `json:"issues,omitempty"`
}

type SummaryView struct {
	TotalPlanMinutes      int  `json:"total_plan_minutes"`
	TotalWorkedMinutes    int  `json:"total_worked_minutes"`
	TotalPermittedMinutes *int `json:"total_permitted_minutes"`

	TotalOrdinary      int `json:"total_ordinary_minutes"`
	TotalComplementary int `json:"total_complementary_minutes"`
	TotalExtraordinary int `json:"total_extraordinary_minutes"`

	PlanToDateMinutes   int `json:"plan_to_date_minutes"`
	WorkedToDateMinutes int `json:"worked_to_date_minutes"`

	DiffVsPlan      int  `json:"diff_vs_plan"`
	DiffVsPermitted *int `json:"diff_vs_permitted"`
	DiffPlanToDate  int  `json:"diff_plan_to_date"`

	SourceLabel string `json:"source_label"`
	HasPlan     bool   `json:"has_plan"`

	DaysWithRoster   int `json:"days_with_roster"`
	DaysWithTemplate int `json:"days_with_template"`
	DaysWithoutPlan  int `json:"days_without_plan"`
	IncompleteDays   int `json:"incomplete_days"`
}

type StatusView struct {
	EstadoPlan         string `json:"estado_plan"`
	EstadoPermitidas   string `json:"estado_permitidas"`
	EstadoPlanHastaHoy string `json:"estado_plan_hasta_hoy"`
	Worst              string `json:"worst"`
}

type MonthlyReport struct {
	Employee    EmployeeRef `json:"employee"`
	Period      string      `json:"period"`
	PeriodStart string      `json:"period_start"`
	PeriodEnd   string      `json:"period_end"`
	AsOf        string      `json:"as_of"`
	GeneratedAt string      `json:"generated_at"`

	Summary  SummaryView `json:"summary"`
	Statuses StatusView  `json:"statuses"`
	Days     []DayRow    `json:"days,omitempty"`
}

type SourceMix struct {
	MonthsWithRoster   int `json:"months_with_roster"`
	MonthsWithTemplate int `json:"months_with_template"`
	MonthsMixed        int `json:"months_mixed"`
}

type AnnualMonthRow struct {
	Period   string      `json:"period"`
	Summary  SummaryView `json:"summary"`
	Statuses StatusView  `json:"statuses"`
}

type AnnualReport struct {
	Employee    EmployeeRef `json:"employee"`
	Period      string      `json:"period"`
	PeriodStart string      `json:"period_start"`
	PeriodEnd   string      `json:"period_end"`
	AsOf        string      `json:"as_of"`
	GeneratedAt string      `json:"generated_at"`

	Summary   SummaryView      `json:"summary"`
	Statuses  StatusView       `json:"statuses"`
	SourceMix SourceMix        `json:"source_mix"`
	Months    []AnnualMonthRow `json:"months"`
	Days      []DayRow         `json:"days,omitempty"`
}

type ComplianceAlertResponse struct {
	ID                 string `json:"id"`
	EmployeeID         string `json:"employee_id"`
	EmployeeName       string `json:"employee_name"`
	Period             string `json:"period"`
	EstadoPlan         string `json:"estado_plan"`
	EstadoPermitidas   string `json:"estado_permitidas"`
	EstadoPlanHastaHoy string `json:"estado_plan_hasta_hoy"`
	WorstStatus        string `json:"worst_status"`
	DiffVsPlan         int    `json:"diff_vs_plan"`
	DiffVsPermitted    int    `json:"diff_vs_permitted"`
	DiffPlanToDate     int    `json:"diff_plan_to_date"`
	SourceLabel        string `json:"source_label"`
	ComputedAt         string `json:"computed_at"`
}

func NewComplianceAlertResponse(a ComplianceAlert) ComplianceAlertResponse {
	return ComplianceAlertResponse{
		ID:                 a.ID,
		EmployeeID:         a.EmployeeID,
		EmployeeName:       a.EmployeeName,
		Period:             a.Period,
		EstadoPlan:         string(a.EstadoPlan),
		EstadoPermitidas:   string(a.EstadoPermitidas),
		EstadoPlanHastaHoy: string(a.EstadoPlanHastaHoy),
		WorstStatus:        string(a.WorstStatus),
		DiffVsPlan:         a.DiffVsPlan,
		DiffVsPermitted:    a.DiffVsPermitted,
		DiffPlanToDate:     a.DiffPlanToDate,
		SourceLabel:        string(a.SourceLabel),
		ComputedAt:         a.ComputedAt.Format(time.RFC3339),
	}
}
