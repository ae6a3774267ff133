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

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
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

func ErrInsufficientBalance() *AppError {
	return &AppError{Code: "INSUFFICIENT_BALANCE", Message: "insufficient balance", Status: 400}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}

// Settlement error taxonomy. These never abort a sweep; each settles the
// affected wager to an error or void status instead.

// ErrUnresolvableMarket marks a leg whose market could not be classified.
func ErrUnresolvableMarket(marketName string) *AppError {
	return &AppError{Code: "UNRESOLVABLE_MARKET", Message: fmt.Sprintf("market %q could not be classified", marketName), Status: 422}
}

// ErrIncompleteMatchData marks a market the outcome feed cannot resolve.
func ErrIncompleteMatchData(matchID, detail string) *AppError {
	return &AppError{Code: "INCOMPLETE_MATCH_DATA", Message: fmt.Sprintf("match %s: %s", matchID, detail), Status: 422}
}

// ErrArithmeticInconsistency marks a settlement state that should be
// impossible, such as equality against a half line.
func ErrArithmeticInconsistency(detail string) *AppError {
	return &AppError{Code: "ARITHMETIC_INCONSISTENCY", Message: detail, Status: 500}
}
