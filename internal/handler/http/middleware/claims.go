package middleware

import (
	"context"

	"github.com/cmlabs-hris/worktime-go/internal/domain/auth"
	"github.com/cmlabs-hris/worktime-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
)

// EmployeeIDFromContext returns the employee_id claim of the verified token.
func EmployeeIDFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", auth.ErrInvalidToken
	}
	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", auth.ErrEmployeeClaimMissing
	}
	return employeeID, nil
}

// RoleFromContext returns the role claim, or an empty role when absent.
func RoleFromContext(ctx context.Context) user.Role {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return user.Role(role)
}
