package employee

import "context"

type EmployeeRepository interface {
	// GetByID returns ErrEmployeeNotFound when the employee does not exist in the company.
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)

	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)

	// ListCompanyIDsWithActiveEmployees is used by the compliance sweep to fan out per company.
	ListCompanyIDsWithActiveEmployees(ctx context.Context) ([]string, error)
}
