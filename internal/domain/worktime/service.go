package worktime

import (
	"context"
	"time"
)

// Service generates work-time compliance reports.
type Service interface {
	// GenerateMonthlyReport reconciles one employee-month and classifies it.
	GenerateMonthlyReport(ctx context.Context, req MonthlyReportRequest) (MonthlyReport, error)

	// GenerateAnnualReport reconciles twelve months and rolls them up.
	GenerateAnnualReport(ctx context.Context, req AnnualReportRequest) (AnnualReport, error)

	// ListAlerts returns the last sweep results for a period.
	ListAlerts(ctx context.Context, req AlertListRequest) ([]ComplianceAlertResponse, error)

	// SweepCompliance recomputes month-to-date statuses for every active
	// employee of a company and stores the non-OK ones. Returns the number of alerts stored.
	SweepCompliance(ctx context.Context, companyID string, asOf time.Time) (int, error)
}
