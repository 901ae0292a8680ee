package service

// Error is a domain error with a stable machine-readable code. Handlers map
// codes to HTTP statuses; messages are safe to show to users.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrForbidden = &Error{Code: "FORBIDDEN", Message: "you do not have access to this resource"}
	ErrNotFound  = &Error{Code: "NOT_FOUND", Message: "resource not found"}

	ErrAlreadyVoided = &Error{Code: "ALREADY_VOIDED", Message: "transaction is already voided"}
	ErrVoided        = &Error{Code: "VOIDED", Message: "voided transactions cannot be modified"}

	ErrAlreadyMember  = &Error{Code: "ALREADY_MEMBER", Message: "a pending or active member already exists for this email"}
	ErrLimitReached   = &Error{Code: "LIMIT_REACHED", Message: "subscription tier limit reached"}
	ErrTransferFailed = &Error{Code: "TRANSFER_FAILED", Message: "transfer could not be completed"}
)

// Validation builds a VALIDATION_ERROR with a caller-supplied message.
func Validation(msg string) *Error {
	return &Error{Code: "VALIDATION_ERROR", Message: msg}
}
