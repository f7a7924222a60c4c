package worktime

import (
	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
)

// Classify assigns the three compliance statuses of a summary. The ceiling
// is mandatory; a nil ceiling is reported instead of guessed. That error
// carries no group, so callers that know the employee's group should look
// the ceiling up first and return the repository's MissingCeilingError.
func Classify(summary worktime.PeriodSummary, ceiling *worktime.GroupCeiling, t worktime.Thresholds) (worktime.Statuses, error) {
	if ceiling == nil {
		return worktime.Statuses{}, &worktime.MissingCeilingError{}
	}

	diffVsPermitted := summary.TotalWorkedMinutes - ceiling.PermittedFor(summary.Kind)

	return worktime.Statuses{
		EstadoPlan:         Tier(summary.DiffVsPlan, t.PlanToleranceMinutes),
		EstadoPermitidas:   Tier(diffVsPermitted, t.PermittedToleranceMinutes),
		EstadoPlanHastaHoy: Tier(summary.DiffPlanToDate, t.PlanToDateToleranceMinutes),
	}, nil
}

// Tier is the three-band rule shared by every status:
// diff <= 0 is OK, 0 < diff <= tolerance is ALERTA, anything above is RIESGO.
// It is monotonic in diff.
func Tier(diff, tolerance int) worktime.ComplianceStatus {
	switch {
	case diff <= 0:
		return worktime.StatusOK
	case diff <= tolerance:
		return worktime.StatusAlerta
	default:
		return worktime.StatusRiesgo
	}
}
