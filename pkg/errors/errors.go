package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the failure class of an AppError.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation_error"
	CodeNotFound           ErrorCode = "not_found"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeForbidden          ErrorCode = "forbidden"
	CodeConflict           ErrorCode = "conflict"
	CodeBranchClosed       ErrorCode = "branch_closed"
	CodeSlotTaken          ErrorCode = "slot_taken"
	CodeInvalidCoupon      ErrorCode = "invalid_coupon"
	CodeMembershipInactive ErrorCode = "membership_inactive"
	CodePaymentFailure     ErrorCode = "payment_failure"
	CodeDeliveryFailure    ErrorCode = "delivery_failure"
	CodeRateLimited        ErrorCode = "rate_limited"
	CodeInternal           ErrorCode = "internal_error"
)

// AppError is the structured error carried across service boundaries.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
}

func Validation(message string, err error) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Err: err}
}

func Unauthorized(err error) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: "unauthorized", Err: err}
}

func Conflict(message string, err error) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Err: err}
}

func BranchClosed(message string) *AppError {
	return &AppError{Code: CodeBranchClosed, Message: message}
}

func SlotTaken(message string) *AppError {
	return &AppError{Code: CodeSlotTaken, Message: message}
}

func InvalidCoupon(message string) *AppError {
	return &AppError{Code: CodeInvalidCoupon, Message: message}
}

func MembershipInactive(message string) *AppError {
	return &AppError{Code: CodeMembershipInactive, Message: message}
}

func PaymentFailure(message string, err error) *AppError {
	return &AppError{Code: CodePaymentFailure, Message: message, Err: err}
}

func DeliveryFailure(message string, err error) *AppError {
	return &AppError{Code: CodeDeliveryFailure, Message: message, Err: err}
}

func RateLimited(message string) *AppError {
	return &AppError{Code: CodeRateLimited, Message: message}
}

func Internal(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "internal server error", Err: err}
}

// CodeOf extracts the error code; unknown errors map to CodeInternal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
