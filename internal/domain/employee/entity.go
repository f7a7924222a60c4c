package employee

import "time"

// Employee is the subject of a work-time report. GroupName selects the
// GroupCeiling that applies to the employee.
type Employee struct {
	ID               string
	UserID           *string
	CompanyID        string
	WorkScheduleID   *string
	EmployeeCode     string
	FullName         string
	GroupName        string
	EmploymentType   EmploymentType
	EmploymentStatus EmploymentStatus
	HireDate         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

type EmploymentType string

const (
	EmploymentTypePermanent  EmploymentType = "permanent"
	EmploymentTypeProbation  EmploymentType = "probation"
	EmploymentTypeContract   EmploymentType = "contract"
	EmploymentTypeSeasonal   EmploymentType = "seasonal"
	EmploymentTypeInternship EmploymentType = "internship"
)

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// IsActive reports whether the employee should be included in compliance sweeps.
func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive && e.DeletedAt == nil
}
