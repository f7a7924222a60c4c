package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	"github.com/cmlabs-hris/worktime-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type groupCeilingRepositoryImpl struct {
	db *database.DB
}

func NewGroupCeilingRepository(db *database.DB) worktime.GroupCeilingRepository {
	return &groupCeilingRepositoryImpl{db: db}
}

// GetActiveByGroup implements worktime.GroupCeilingRepository.
func (g *groupCeilingRepositoryImpl) GetActiveByGroup(ctx context.Context, companyID string, groupName string) (worktime.GroupCeiling, error) {
	q := GetQuerier(ctx, g.db)

	query := `
		SELECT id, company_id, group_name, monthly_permitted_minutes, annual_permitted_minutes,
			plan_tolerance_minutes, permitted_tolerance_minutes, plan_to_date_tolerance_minutes,
			daily_complementary_cap_minutes, is_active, created_at, updated_at
		FROM group_ceilings
		WHERE company_id = $1 AND group_name = $2 AND is_active = true
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var c worktime.GroupCeiling
	err := q.QueryRow(ctx, query, companyID, groupName).Scan(
		&c.ID, &c.CompanyID, &c.GroupName, &c.MonthlyPermittedMinutes, &c.AnnualPermittedMinutes,
		&c.PlanToleranceMinutes, &c.PermittedToleranceMinutes, &c.PlanToDateToleranceMinutes,
		&c.DailyComplementaryCapMinutes, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worktime.GroupCeiling{}, &worktime.MissingCeilingError{CompanyID: companyID, GroupName: groupName}
		}
		return worktime.GroupCeiling{}, fmt.Errorf("failed to get group ceiling: %w", err)
	}

	return c, nil
}
