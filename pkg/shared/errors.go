package shared

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorCodeSigningUnavailable    ErrorCode = "signing_unavailable"
	ErrorCodeTransientRPC          ErrorCode = "transient_rpc"
	ErrorCodeNonceConflict         ErrorCode = "nonce_conflict"
	ErrorCodeDuplicateSubmission   ErrorCode = "duplicate_submission"
	ErrorCodeAuthorizationMismatch ErrorCode = "authorization_mismatch"
	ErrorCodeTransactionReverted   ErrorCode = "transaction_reverted"
	ErrorCodeDecodeFailure         ErrorCode = "decode_failure"
	ErrorCodeAddressNotFound       ErrorCode = "address_not_found"
)

// Retryable reports whether failures with this code may succeed on resubmission.
func (c ErrorCode) Retryable() bool {
	switch c {
	case ErrorCodeTransientRPC, ErrorCodeNonceConflict, ErrorCodeDuplicateSubmission:
		return true
	default:
		return false
	}
}

// Error is the typed failure returned across the SDK. Two errors match under
// errors.Is when their codes are equal.
type Error struct {
	Code    ErrorCode
	Message string
	Reason  string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "world sdk error"
	}
	message := e.Message
	if message == "" {
		message = string(e.Code)
	}
	if e.Reason != "" {
		message = fmt.Sprintf("%s: %s", message, e.Reason)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", message, e.Cause)
	}
	return message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *Error) Is(target error) bool {
	typed, ok := target.(*Error)
	if !ok || e == nil || typed == nil {
		return false
	}
	return typed.Code == e.Code
}

var (
	ErrSigningUnavailable    = &Error{Code: ErrorCodeSigningUnavailable, Message: "signing unavailable"}
	ErrTransientRPC          = &Error{Code: ErrorCodeTransientRPC, Message: "transient rpc failure"}
	ErrNonceConflict         = &Error{Code: ErrorCodeNonceConflict, Message: "nonce conflict"}
	ErrDuplicateSubmission   = &Error{Code: ErrorCodeDuplicateSubmission, Message: "duplicate submission"}
	ErrAuthorizationMismatch = &Error{Code: ErrorCodeAuthorizationMismatch, Message: "authorization mismatch"}
	ErrTransactionReverted   = &Error{Code: ErrorCodeTransactionReverted, Message: "transaction reverted"}
	ErrDecodeFailure         = &Error{Code: ErrorCodeDecodeFailure, Message: "decode failure"}
	ErrAddressNotFound       = &Error{Code: ErrorCodeAddressNotFound, Message: "address not found"}
)

// NewError builds a coded error wrapping cause.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// AddressNotFound reports a contract name missing from a deployment.
func AddressNotFound(name string, network string) *Error {
	return &Error{
		Code:    ErrorCodeAddressNotFound,
		Message: fmt.Sprintf("no address for %q on network %q", name, network),
	}
}

// CodeOf returns the code of the first *Error in the chain, or "".
func CodeOf(err error) ErrorCode {
	var typed *Error
	if errors.As(err, &typed) && typed != nil {
		return typed.Code
	}
	return ""
}

// ReasonOf returns the ledger-supplied reason carried by err, if any.
func ReasonOf(err error) string {
	var typed *Error
	if errors.As(err, &typed) && typed != nil {
		return typed.Reason
	}
	return ""
}
