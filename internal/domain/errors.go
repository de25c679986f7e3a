package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

func ErrInsufficientBalance() *AppError {
	return &AppError{Code: "INSUFFICIENT_BALANCE", Message: "insufficient balance", Status: 400}
}

// ErrAlreadySettled is the idempotency guard: the bet has left the
// open/closed states and cannot be settled again.
func ErrAlreadySettled(betID string) *AppError {
	return &AppError{Code: "ALREADY_SETTLED", Message: fmt.Sprintf("bet %s is not in a resolvable state", betID), Status: 409}
}

// ErrMissingOracle signals a commissioner-override resolution where the
// commissioner has no wager on the bet to act as the oracle.
func ErrMissingOracle(betID string) *AppError {
	return &AppError{Code: "MISSING_ORACLE", Message: fmt.Sprintf("commissioner has no wager on bet %s", betID), Status: 422}
}

// ErrInvalidOutcome signals a resolution outcome that is structurally
// unusable, e.g. a non-numeric outcome for a target-proximity bet.
func ErrInvalidOutcome(msg string) *AppError {
	return &AppError{Code: "INVALID_OUTCOME", Message: msg, Status: 422}
}

// ErrLimitExceeded signals a wager that breaches a configured betting
// limit (single-wager max or daily stake cap).
func ErrLimitExceeded(msg string) *AppError {
	return &AppError{Code: "LIMIT_EXCEEDED", Message: msg, Status: 422}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: "RATE_LIMITED", Message: msg, Status: 429}
}

func ErrAccountLocked(msg string) *AppError {
	return &AppError{Code: "ACCOUNT_LOCKED", Message: msg, Status: 423}
}

func ErrPersistence(msg string, cause error) *AppError {
	return &AppError{Code: "PERSISTENCE_FAILURE", Message: msg, Status: 500, Cause: cause}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}
