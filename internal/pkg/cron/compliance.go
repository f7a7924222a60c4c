package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/employee"
	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
)

// ComplianceJobs recomputes month-to-date compliance alerts for every company.
type ComplianceJobs struct {
	employeeRepo employee.EmployeeRepository
	worktimeSvc  worktime.Service
	location     *time.Location
	now          func() time.Time
}

func NewComplianceJobs(employeeRepo employee.EmployeeRepository, worktimeSvc worktime.Service, location *time.Location) *ComplianceJobs {
	if location == nil {
		location = time.UTC
	}
	return &ComplianceJobs{
		employeeRepo: employeeRepo,
		worktimeSvc:  worktimeSvc,
		location:     location,
		now:          time.Now,
	}
}

func (j *ComplianceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("compliance_sweep", interval, interval, j.SweepAllCompanies)
}

// SweepAllCompanies runs the sweep for each company with active employees.
// A failing company does not stop the others.
func (j *ComplianceJobs) SweepAllCompanies(ctx context.Context) error {
	asOf := worktime.DateOnly(j.now().In(j.location))
	slog.Info("Cron: Starting compliance sweep", "as_of", asOf.Format(worktime.DateLayout))

	companyIDs, err := j.employeeRepo.ListCompanyIDsWithActiveEmployees(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	var (
		errs  []error
		total int
	)
	for _, companyID := range companyIDs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		n, err := j.worktimeSvc.SweepCompliance(ctx, companyID, asOf)
		if err != nil {
			slog.Error("Cron: compliance sweep failed", "company_id", companyID, "error", err)
			errs = append(errs, fmt.Errorf("company %s: %w", companyID, err))
			continue
		}
		total += n
	}

	slog.Info("Cron: Compliance sweep completed", "companies", len(companyIDs), "alerts", total)
	return errors.Join(errs...)
}
