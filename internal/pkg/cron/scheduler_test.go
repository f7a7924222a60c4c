package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/employee"
	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler()
	var order []string
	errBoom := errors.New("boom")

	s.AddJob("first", time.Hour, 0, func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	s.AddJob("second", time.Hour, 0, func(ctx context.Context) error {
		order = append(order, "second")
		return errBoom
	})

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestScheduler_Timeout(t *testing.T) {
	s := NewScheduler()
	s.AddJob("slow", time.Hour, 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduler_SkipsOverlappingRun(t *testing.T) {
	s := NewScheduler()
	release := make(chan struct{})
	started := make(chan struct{})

	s.AddJob("blocking", time.Hour, 0, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	job := s.jobs[0]

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.executeJob(context.Background(), job)
	}()
	<-started

	ran, err := s.executeJob(context.Background(), job)
	assert.NoError(t, err)
	assert.False(t, ran)

	close(release)
	<-done
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler()
	var mu sync.Mutex
	runs := 0
	s.AddJob("tick", 5*time.Millisecond, 0, func(ctx context.Context) error {
		mu.Lock()
		runs++
		mu.Unlock()
		return nil
	})

	s.Start()
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, runs, 1)
}

type stubEmployeeRepo struct {
	employee.EmployeeRepository
	companies []string
}

func (s *stubEmployeeRepo) ListCompanyIDsWithActiveEmployees(ctx context.Context) ([]string, error) {
	return s.companies, nil
}

type stubWorktimeService struct {
	worktime.Service
	calls map[string]time.Time
	fail  string
}

func (s *stubWorktimeService) SweepCompliance(ctx context.Context, companyID string, asOf time.Time) (int, error) {
	s.calls[companyID] = asOf
	if companyID == s.fail {
		return 0, errors.New("database unavailable")
	}
	return 2, nil
}

func TestComplianceJobs_SweepAllCompanies(t *testing.T) {
	madrid := time.FixedZone("CEST", 2*60*60)

	svc := &stubWorktimeService{calls: map[string]time.Time{}, fail: "company-b"}
	jobs := NewComplianceJobs(&stubEmployeeRepo{companies: []string{"company-a", "company-b", "company-c"}}, svc, madrid)
	// 23:30 UTC on April 30th is already May 1st in Madrid.
	jobs.now = func() time.Time { return time.Date(2025, 4, 30, 23, 30, 0, 0, time.UTC) }

	scheduler := NewScheduler()
	jobs.RegisterJobs(scheduler, time.Hour)

	err := scheduler.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company-b")

	assert.Len(t, svc.calls, 3)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), svc.calls["company-c"])
}
