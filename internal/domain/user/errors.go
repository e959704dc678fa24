package user

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrPrincipalMissing        = errors.New("principal missing from request")
	ErrUnknownRole             = errors.New("unknown role")
)

// AuthorizationError reports a principal whose role lacks the required permission.
type AuthorizationError struct {
	Role       Role
	Permission Permission
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("insufficient permissions: required '%s', but user role is '%s'", e.Permission, e.Role)
}

func (e *AuthorizationError) Unwrap() error {
	return ErrInsufficientPermissions
}
