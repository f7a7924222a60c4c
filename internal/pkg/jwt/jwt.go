package jwt

import (
	"context"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Role string

const (
	RoleOwner    Role = "owner"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
	RolePending  Role = "pending"
)

// Identity is the subset of access-token claims the worktime API reads.
// Tokens are issued by the HRIS auth service with the same secret.
type Identity struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	Role       Role
}

// Service verifies access tokens. Tokens are issued by the HRIS auth service.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// IdentityFromContext reads the verified claims placed by jwtauth.Verifier.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Identity{}, err
	}

	var id Identity
	id.UserID, _ = claims["user_id"].(string)
	id.EmployeeID, _ = claims["employee_id"].(string)
	id.CompanyID, _ = claims["company_id"].(string)
	role, _ := claims["role"].(string)
	id.Role = Role(role)
	return id, nil
}
