package auth

import "errors"

var (
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrEmployeeClaimMissing = errors.New("employee_id claim is missing or invalid")
)
