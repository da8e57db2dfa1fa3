package xerrors

import (
	"errors"
)

// Common reusable application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal server error")
	ErrBadRequest   = errors.New("bad request")
)

// Billing errors. Each terminates the current orchestration call; none is
// retried internally.
var (
	ErrPlanNotFound         = errors.New("subscription plan not found")
	ErrInvalidTerm          = errors.New("invalid billing term")
	ErrPlanNotFree          = errors.New("plan is not a free plan")
	ErrGatewayNotConfigured = errors.New("no payment gateway is configured")
	ErrChargeFailed         = errors.New("charge failed")
	ErrInitiationFailed     = errors.New("payment initiation failed")
)

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
