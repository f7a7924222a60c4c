package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	"github.com/cmlabs-hris/worktime-backend/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type complianceAlertRepositoryImpl struct {
	db *database.DB
}

func NewComplianceAlertRepository(db *database.DB) worktime.ComplianceAlertRepository {
	return &complianceAlertRepositoryImpl{db: db}
}

// ReplaceForPeriod implements worktime.ComplianceAlertRepository.
// The delete and the inserts share one transaction; an open transaction in
// ctx is reused.
func (r *complianceAlertRepositoryImpl) ReplaceForPeriod(ctx context.Context, companyID string, period string, alerts []worktime.ComplianceAlert) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return r.replace(ctx, GetQuerier(ctx, r.db), companyID, period, alerts)
	}
	return WithTransaction(ctx, r.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return r.replace(ctx, tx, companyID, period, alerts)
	})
}

func (r *complianceAlertRepositoryImpl) replace(ctx context.Context, q database.Querier, companyID string, period string, alerts []worktime.ComplianceAlert) error {
	if _, err := q.Exec(ctx, `DELETE FROM compliance_alerts WHERE company_id = $1 AND period = $2`, companyID, period); err != nil {
		return fmt.Errorf("failed to clear compliance alerts: %w", err)
	}
	if len(alerts) == 0 {
		return nil
	}

	query := `
		INSERT INTO compliance_alerts (
			id, company_id, employee_id, employee_name, period,
			estado_plan, estado_permitidas, estado_plan_hasta_hoy, worst_status,
			diff_vs_plan, diff_vs_permitted, diff_plan_to_date, source_label, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	batch := &pgx.Batch{}
	for i := range alerts {
		a := &alerts[i]
		if a.ID == "" {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("failed to generate alert id: %w", err)
			}
			a.ID = id.String()
		}
		batch.Queue(query,
			a.ID, companyID, a.EmployeeID, a.EmployeeName, period,
			a.EstadoPlan, a.EstadoPermitidas, a.EstadoPlanHastaHoy, a.WorstStatus,
			a.DiffVsPlan, a.DiffVsPermitted, a.DiffPlanToDate, a.SourceLabel, a.ComputedAt,
		)
	}

	results := q.SendBatch(ctx, batch)
	for range alerts {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert compliance alert: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close alert batch: %w", err)
	}

	return nil
}

// List implements worktime.ComplianceAlertRepository.
func (r *complianceAlertRepositoryImpl) List(ctx context.Context, companyID string, filter worktime.AlertFilter) ([]worktime.ComplianceAlert, error) {
	q := GetQuerier(ctx, r.db)

	minStatus := filter.MinStatus
	if minStatus == "" {
		minStatus = worktime.StatusOK
	}

	query := `
		SELECT ca.id, ca.company_id, ca.employee_id, ca.employee_name, ca.period,
			ca.estado_plan, ca.estado_permitidas, ca.estado_plan_hasta_hoy, ca.worst_status,
			ca.diff_vs_plan, ca.diff_vs_permitted, ca.diff_plan_to_date, ca.source_label, ca.computed_at
		FROM compliance_alerts ca
		WHERE ca.company_id = $1
		  AND ca.period = $2
		  AND array_position(ARRAY['OK','ALERTA','RIESGO'], ca.worst_status) >= array_position(ARRAY['OK','ALERTA','RIESGO'], $3::text)
		ORDER BY array_position(ARRAY['OK','ALERTA','RIESGO'], ca.worst_status) DESC, ca.diff_vs_permitted DESC, ca.employee_name ASC
	`

	rows, err := q.Query(ctx, query, companyID, filter.Period, string(minStatus))
	if err != nil {
		return nil, fmt.Errorf("failed to query compliance alerts: %w", err)
	}
	defer rows.Close()

	var alerts []worktime.ComplianceAlert
	for rows.Next() {
		var a worktime.ComplianceAlert
		if err := rows.Scan(
			&a.ID, &a.CompanyID, &a.EmployeeID, &a.EmployeeName, &a.Period,
			&a.EstadoPlan, &a.EstadoPermitidas, &a.EstadoPlanHastaHoy, &a.WorstStatus,
			&a.DiffVsPlan, &a.DiffVsPermitted, &a.DiffPlanToDate, &a.SourceLabel, &a.ComputedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan compliance alert: %w", err)
		}
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return alerts, nil
}
