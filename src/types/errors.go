package types

import "errors"

type ErrorKind string

const (
	ERROR_VALIDATION         ErrorKind = "validation"
	ERROR_AUTHORIZATION      ErrorKind = "authorization"
	ERROR_CONFLICT           ErrorKind = "conflict"
	ERROR_INSUFFICIENT_FUNDS ErrorKind = "insufficient_funds"
	ERROR_NOT_FOUND          ErrorKind = "not_found"
	ERROR_INFRASTRUCTURE     ErrorKind = "infrastructure"
)

// AppError carries the error class the handlers map onto HTTP statuses.
type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewValidationError(msg string) *AppError {
	return &AppError{Kind: ERROR_VALIDATION, Message: msg}
}

func NewAuthorizationError(msg string) *AppError {
	return &AppError{Kind: ERROR_AUTHORIZATION, Message: msg}
}

func NewConflictError(msg string) *AppError {
	return &AppError{Kind: ERROR_CONFLICT, Message: msg}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{Kind: ERROR_NOT_FOUND, Message: msg}
}

var (
	ErrAlreadyPaid        = &AppError{Kind: ERROR_CONFLICT, Message: "payment has already been completed"}
	ErrAlreadyCancelled   = &AppError{Kind: ERROR_CONFLICT, Message: "group booking is already cancelled"}
	ErrAlreadyCompleted   = &AppError{Kind: ERROR_CONFLICT, Message: "group booking is already completed"}
	ErrAlreadyResponded   = &AppError{Kind: ERROR_CONFLICT, Message: "invitation has already been responded to"}
	ErrWrongPaymentModel  = &AppError{Kind: ERROR_CONFLICT, Message: "operation not allowed for this payment model"}
	ErrCapacityExceeded   = &AppError{Kind: ERROR_CONFLICT, Message: "group booking is already at maximum capacity"}
	ErrInvitationExpired  = &AppError{Kind: ERROR_CONFLICT, Message: "invitation has expired"}
	ErrInvitationNotFound = &AppError{Kind: ERROR_NOT_FOUND, Message: "invitation not found"}
	ErrNotOrganizer       = &AppError{Kind: ERROR_AUTHORIZATION, Message: "only the organizer may perform this action"}
	ErrNotAuthorized      = &AppError{Kind: ERROR_AUTHORIZATION, Message: "you are not allowed to perform this action"}
	ErrInsufficientFunds  = &AppError{Kind: ERROR_INSUFFICIENT_FUNDS, Message: "insufficient wallet balance"}
	ErrBookingNotFound    = &AppError{Kind: ERROR_NOT_FOUND, Message: "group booking not found"}
	ErrParticipantMissing = &AppError{Kind: ERROR_NOT_FOUND, Message: "participant not found"}
	ErrWalletNotFound     = &AppError{Kind: ERROR_NOT_FOUND, Message: "wallet account not found"}
)

// KindOf classifies any error; unknown errors count as infrastructure
// failures so callers never retry a typed domain error by accident.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ERROR_INFRASTRUCTURE
}
