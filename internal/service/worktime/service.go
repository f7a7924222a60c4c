package worktime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/employee"
	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	"github.com/cmlabs-hris/worktime-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktime-backend/internal/repository/postgresql"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Config carries the service-wide defaults. Values set on a GroupCeiling
// take precedence.
type Config struct {
	DefaultThresholds              worktime.Thresholds
	DefaultComplementaryCapMinutes int
	SweepConcurrency               int
	Location                       *time.Location
}

type WorktimeServiceImpl struct {
	txManager    postgresql.TxManager
	scheduleRepo worktime.ScheduleRepository
	attendRepo   worktime.AttendanceRepository
	ceilingRepo  worktime.GroupCeilingRepository
	alertRepo    worktime.ComplianceAlertRepository
	employeeRepo employee.EmployeeRepository
	cfg          Config

	now   func() time.Time
	group singleflight.Group
}

func NewWorktimeService(
	txManager postgresql.TxManager,
	scheduleRepo worktime.ScheduleRepository,
	attendRepo worktime.AttendanceRepository,
	ceilingRepo worktime.GroupCeilingRepository,
	alertRepo worktime.ComplianceAlertRepository,
	employeeRepo employee.EmployeeRepository,
	cfg Config,
) *WorktimeServiceImpl {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.SweepConcurrency <= 0 {
		cfg.SweepConcurrency = 4
	}
	return &WorktimeServiceImpl{
		txManager:    txManager,
		scheduleRepo: scheduleRepo,
		attendRepo:   attendRepo,
		ceilingRepo:  ceilingRepo,
		alertRepo:    alertRepo,
		employeeRepo: employeeRepo,
		cfg:          cfg,
		now:          time.Now,
	}
}

// periodData is everything read from one snapshot for one employee and range.
type periodData struct {
	employee employee.Employee
	ceiling  worktime.GroupCeiling
	days     []worktime.DayRecord
}

// GenerateMonthlyReport implements worktime.Service.
func (s *WorktimeServiceImpl) GenerateMonthlyReport(ctx context.Context, req worktime.MonthlyReportRequest) (worktime.MonthlyReport, error) {
	if err := req.Validate(s.now().In(s.cfg.Location)); err != nil {
		return worktime.MonthlyReport{}, err
	}

	companyID, err := s.authorizeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return worktime.MonthlyReport{}, err
	}

	month, err := worktime.ParseMonth(req.Period)
	if err != nil {
		return worktime.MonthlyReport{}, err
	}
	asOf, err := s.resolveAsOf(req.AsOf)
	if err != nil {
		return worktime.MonthlyReport{}, err
	}

	key := fmt.Sprintf("month/%s/%s/%s/%s/%t", companyID, req.EmployeeID, month.Key(), asOf.Format(worktime.DateLayout), req.Detail)
	return coalesce(ctx, &s.group, key, func(ctx context.Context) (worktime.MonthlyReport, error) {
		return s.monthlyReport(ctx, companyID, req.EmployeeID, month, asOf, req.Detail)
	})
}

// coalesce shares one in-flight computation between identical requests. The
// shared call is detached from the cancellation of whichever caller started
// it; every caller still stops waiting when its own ctx is done.
func coalesce[T any](ctx context.Context, group *singleflight.Group, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	detached := context.WithoutCancel(ctx)
	ch := group.DoChan(key, func() (any, error) {
		return fn(detached)
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (s *WorktimeServiceImpl) monthlyReport(ctx context.Context, companyID, employeeID string, month worktime.Month, asOf time.Time, detail bool) (worktime.MonthlyReport, error) {
	data, err := s.loadPeriod(ctx, companyID, employeeID, month.FirstDay(), month.LastDay())
	if err != nil {
		return worktime.MonthlyReport{}, err
	}

	summary, statuses, err := s.evaluateMonth(data, month, asOf)
	if err != nil {
		return worktime.MonthlyReport{}, err
	}

	return BuildMonthly(MonthlyInput{
		Employee:    employeeRef(data.employee),
		Summary:     summary,
		Statuses:    statuses,
		Days:        data.days,
		Detail:      detail,
		GeneratedAt: s.now().UTC(),
	})
}

// GenerateAnnualReport implements worktime.Service.
func (s *WorktimeServiceImpl) GenerateAnnualReport(ctx context.Context, req worktime.AnnualReportRequest) (worktime.AnnualReport, error) {
	if err := req.Validate(s.now().In(s.cfg.Location)); err != nil {
		return worktime.AnnualReport{}, err
	}

	companyID, err := s.authorizeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return worktime.AnnualReport{}, err
	}

	asOf, err := s.resolveAsOf(req.AsOf)
	if err != nil {
		return worktime.AnnualReport{}, err
	}

	key := fmt.Sprintf("year/%s/%s/%d/%s/%t", companyID, req.EmployeeID, req.Year, asOf.Format(worktime.DateLayout), req.Detail)
	return coalesce(ctx, &s.group, key, func(ctx context.Context) (worktime.AnnualReport, error) {
		return s.annualReport(ctx, companyID, req.EmployeeID, req.Year, asOf, req.Detail)
	})
}

func (s *WorktimeServiceImpl) annualReport(ctx context.Context, companyID, employeeID string, year int, asOf time.Time, detail bool) (worktime.AnnualReport, error) {
	months := worktime.MonthsOfYear(year)

	// One read for the whole year, then split per month.
	data, err := s.loadPeriod(ctx, companyID, employeeID, months[0].FirstDay(), months[11].LastDay())
	if err != nil {
		return worktime.AnnualReport{}, err
	}

	monthSummaries := make([]worktime.PeriodSummary, 0, len(months))
	offset := 0
	for _, m := range months {
		end := offset + m.Days()
		if end > len(data.days) {
			end = len(data.days)
		}
		monthSummaries = append(monthSummaries, AggregateMonth(m, data.days[offset:end], asOf))
		offset = end
	}

	yearSummary, err := AggregateYear(year, monthSummaries)
	if err != nil {
		return worktime.AnnualReport{}, err
	}
	yearSummary = yearSummary.WithCeiling(data.ceiling)

	thresholds := s.thresholds(data.ceiling)
	statuses, err := Classify(yearSummary, &data.ceiling, thresholds)
	if err != nil {
		return worktime.AnnualReport{}, err
	}

	monthStatuses := make([]worktime.Statuses, 0, len(yearSummary.Months))
	for _, m := range yearSummary.Months {
		st, err := Classify(m, &data.ceiling, thresholds)
		if err != nil {
			return worktime.AnnualReport{}, err
		}
		monthStatuses = append(monthStatuses, st)
	}

	return BuildAnnual(AnnualInput{
		Employee:      employeeRef(data.employee),
		Summary:       yearSummary,
		Statuses:      statuses,
		MonthStatuses: monthStatuses,
		Days:          data.days,
		Detail:        detail,
		GeneratedAt:   s.now().UTC(),
	})
}

// ListAlerts implements worktime.Service.
func (s *WorktimeServiceImpl) ListAlerts(ctx context.Context, req worktime.AlertListRequest) ([]worktime.ComplianceAlertResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	alerts, err := s.alertRepo.List(ctx, id.CompanyID, worktime.AlertFilter{
		Period:    req.Period,
		MinStatus: worktime.ComplianceStatus(req.MinStatus),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list compliance alerts: %w", err)
	}

	responses := make([]worktime.ComplianceAlertResponse, 0, len(alerts))
	for _, a := range alerts {
		responses = append(responses, worktime.NewComplianceAlertResponse(a))
	}
	return responses, nil
}

// SweepCompliance implements worktime.Service.
func (s *WorktimeServiceImpl) SweepCompliance(ctx context.Context, companyID string, asOf time.Time) (int, error) {
	if companyID == "" {
		return 0, worktime.ErrCompanyIDRequired
	}

	asOf = worktime.DateOnly(asOf)
	month := worktime.MonthOf(asOf)
	computedAt := s.now().UTC()

	employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, companyID)
	if err != nil {
		return 0, fmt.Errorf("failed to get active employees: %w", err)
	}

	var (
		mu     sync.Mutex
		alerts []worktime.ComplianceAlert
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.SweepConcurrency)

	for _, emp := range employees {
		g.Go(func() error {
			alert, err := s.sweepEmployee(gctx, companyID, emp.ID, month, asOf, computedAt)
			if errors.Is(err, worktime.ErrMissingCeiling) {
				slog.Warn("compliance sweep: skipping employee without ceiling",
					"company_id", companyID, "employee_id", emp.ID, "group", emp.GroupName)
				return nil
			}
			if err != nil {
				return fmt.Errorf("employee %s: %w", emp.ID, err)
			}
			if alert != nil {
				mu.Lock()
				alerts = append(alerts, *alert)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].EmployeeName < alerts[j].EmployeeName
	})

	if err := s.alertRepo.ReplaceForPeriod(ctx, companyID, month.Key(), alerts); err != nil {
		return 0, fmt.Errorf("failed to store compliance alerts: %w", err)
	}

	slog.Info("compliance sweep finished",
		"company_id", companyID, "period", month.Key(), "employees", len(employees), "alerts", len(alerts))

	return len(alerts), nil
}

// sweepEmployee returns nil when the employee is OK on every status.
func (s *WorktimeServiceImpl) sweepEmployee(ctx context.Context, companyID, employeeID string, month worktime.Month, asOf, computedAt time.Time) (*worktime.ComplianceAlert, error) {
	data, err := s.loadPeriod(ctx, companyID, employeeID, month.FirstDay(), month.LastDay())
	if err != nil {
		return nil, err
	}
	summary, statuses, err := s.evaluateMonth(data, month, asOf)
	if err != nil {
		return nil, err
	}
	if statuses.Worst() == worktime.StatusOK {
		return nil, nil
	}
	alert := newAlert(companyID, data.employee, summary, statuses, computedAt)
	return &alert, nil
}

// loadPeriod reads the employee, ceiling and both feeds from one snapshot and
// reconciles every calendar day in [from, to].
func (s *WorktimeServiceImpl) loadPeriod(ctx context.Context, companyID, employeeID string, from, to time.Time) (periodData, error) {
	var (
		data     periodData
		entries  []worktime.ScheduleEntry
		attended []worktime.AttendanceRecord
	)

	err := s.txManager.WithinTransaction(ctx, postgresql.ReadSnapshot, func(txCtx context.Context) error {
		emp, err := s.employeeRepo.GetByID(txCtx, employeeID, companyID)
		if err != nil {
			return err
		}
		data.employee = emp

		if emp.GroupName == "" {
			return &worktime.MissingCeilingError{CompanyID: companyID}
		}
		data.ceiling, err = s.ceilingRepo.GetActiveByGroup(txCtx, companyID, emp.GroupName)
		if err != nil {
			return err
		}

		entries, err = s.scheduleRepo.ListScheduleEntries(txCtx, employeeID, companyID, from, to)
		if err != nil {
			return fmt.Errorf("failed to list schedule entries: %w", err)
		}

		attended, err = s.attendRepo.ListAttendanceRecords(txCtx, employeeID, companyID, from, to)
		if err != nil {
			return fmt.Errorf("failed to list attendance records: %w", err)
		}
		return nil
	})
	if err != nil {
		return periodData{}, err
	}

	data.days = s.reconcileRange(employeeID, from, to, entries, attended, s.dayPolicy(data.ceiling))
	return data, nil
}

func (s *WorktimeServiceImpl) evaluateMonth(data periodData, month worktime.Month, asOf time.Time) (worktime.PeriodSummary, worktime.Statuses, error) {
	summary := AggregateMonth(month, data.days, asOf).WithCeiling(data.ceiling)
	statuses, err := Classify(summary, &data.ceiling, s.thresholds(data.ceiling))
	if err != nil {
		return worktime.PeriodSummary{}, worktime.Statuses{}, err
	}
	return summary, statuses, nil
}

// reconcileRange produces exactly one DayRecord per calendar day, feeding
// the normalizer with the raw schedule values.
func (s *WorktimeServiceImpl) reconcileRange(employeeID string, from, to time.Time, entries []worktime.ScheduleEntry, records []worktime.AttendanceRecord, policy worktime.DayPolicy) []worktime.DayRecord {
	byDate := make(map[time.Time]worktime.ScheduleEntry, len(entries))
	for _, e := range entries {
		byDate[worktime.DateOnly(e.Date)] = e
	}

	intervals := make(map[time.Time][]worktime.AttendanceInterval)
	for _, r := range records {
		d := worktime.DateOnly(r.Date)
		intervals[d] = append(intervals[d], worktime.AttendanceInterval{ClockIn: r.ClockIn, ClockOut: r.ClockOut})
	}

	first, last := worktime.DateOnly(from), worktime.DateOnly(to)
	days := make([]worktime.DayRecord, 0, int(last.Sub(first).Hours()/24)+1)

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		entry := byDate[d]
		rec := Reconcile(worktime.DayInput{
			EmployeeID:      employeeID,
			Date:            d,
			RosterMinutes:   s.normalize(employeeID, d, worktime.SourceRoster, entry.Roster),
			TemplateMinutes: s.normalize(employeeID, d, worktime.SourceTemplate, entry.Template),
			Intervals:       intervals[d],
		}, policy)

		for _, issue := range rec.Issues {
			slog.Warn("attendance interval excluded",
				"employee_id", employeeID, "date", d.Format(worktime.DateLayout), "error", issue)
		}
		days = append(days, rec)
	}
	return days
}

func (s *WorktimeServiceImpl) normalize(employeeID string, date time.Time, source worktime.TimeSource, raw any) *int {
	minutes, err := NormalizeDuration(raw)
	if err != nil {
		slog.Warn("malformed planned duration treated as unknown",
			"employee_id", employeeID, "date", date.Format(worktime.DateLayout), "source", source, "error", err)
		return nil
	}
	return minutes
}

func (s *WorktimeServiceImpl) thresholds(c worktime.GroupCeiling) worktime.Thresholds {
	t := s.cfg.DefaultThresholds
	if c.PlanToleranceMinutes != nil {
		t.PlanToleranceMinutes = *c.PlanToleranceMinutes
	}
	if c.PermittedToleranceMinutes != nil {
		t.PermittedToleranceMinutes = *c.PermittedToleranceMinutes
	}
	if c.PlanToDateToleranceMinutes != nil {
		t.PlanToDateToleranceMinutes = *c.PlanToDateToleranceMinutes
	}
	return t
}

func (s *WorktimeServiceImpl) dayPolicy(c worktime.GroupCeiling) worktime.DayPolicy {
	capMinutes := s.cfg.DefaultComplementaryCapMinutes
	if c.DailyComplementaryCapMinutes != nil {
		capMinutes = *c.DailyComplementaryCapMinutes
	}
	return worktime.DayPolicy{ComplementaryCapMinutes: capMinutes}
}

// resolveAsOf parses as_of or falls back to today in the configured timezone.
func (s *WorktimeServiceImpl) resolveAsOf(raw string) (time.Time, error) {
	if raw == "" {
		return worktime.DateOnly(s.now().In(s.cfg.Location)), nil
	}
	t, err := time.Parse(worktime.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: as_of %q", worktime.ErrInvalidPeriod, raw)
	}
	return t, nil
}

// authorizeEmployee returns the caller's company. Owners and managers may
// read any employee of their company, everyone else only themselves.
func (s *WorktimeServiceImpl) authorizeEmployee(ctx context.Context, employeeID string) (string, error) {
	id, err := identityFromContext(ctx)
	if err != nil {
		return "", err
	}

	if id.Role == jwt.RoleOwner || id.Role == jwt.RoleManager {
		return id.CompanyID, nil
	}
	if id.EmployeeID == "" || id.EmployeeID != employeeID {
		return "", worktime.ErrForbiddenEmployee
	}
	return id.CompanyID, nil
}

func identityFromContext(ctx context.Context) (jwt.Identity, error) {
	id, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return jwt.Identity{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if id.CompanyID == "" {
		return jwt.Identity{}, worktime.ErrCompanyIDRequired
	}
	return id, nil
}

func employeeRef(e employee.Employee) worktime.EmployeeRef {
	return worktime.EmployeeRef{
		ID:    e.ID,
		Code:  e.EmployeeCode,
		Name:  e.FullName,
		Group: e.GroupName,
	}
}

func newAlert(companyID string, emp employee.Employee, summary worktime.PeriodSummary, st worktime.Statuses, computedAt time.Time) worktime.ComplianceAlert {
	var diffVsPermitted int
	if summary.DiffVsPermitted != nil {
		diffVsPermitted = *summary.DiffVsPermitted
	}
	return worktime.ComplianceAlert{
		CompanyID:          companyID,
		EmployeeID:         emp.ID,
		EmployeeName:       emp.FullName,
		Period:             summary.Key,
		EstadoPlan:         st.EstadoPlan,
		EstadoPermitidas:   st.EstadoPermitidas,
		EstadoPlanHastaHoy: st.EstadoPlanHastaHoy,
		WorstStatus:        st.Worst(),
		DiffVsPlan:         summary.DiffVsPlan,
		DiffVsPermitted:    diffVsPermitted,
		DiffPlanToDate:     summary.DiffPlanToDate,
		SourceLabel:        summary.SourceLabel,
		ComputedAt:         computedAt,
	}
}

var _ worktime.Service = (*WorktimeServiceImpl)(nil)
