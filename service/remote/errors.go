package remote

import (
	"context"
	"errors"
	"fmt"
)

// ReasonGenericTimeout is the fallback reason recorded for any failure that
// does not carry a recognized business reason code.
const ReasonGenericTimeout = "GENERIC_TIMEOUT"

// DomainError is a recognized business failure of a remote refresh with an
// embedded reason code such as RATE_LIMITED or ITEM_LOCKED.
type DomainError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote: %s", e.Code)
	}
	return fmt.Sprintf("remote: %s: %s", e.Code, e.Message)
}

// NewDomainError creates a DomainError with the supplied reason code.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// IsCancellation reports whether err is a cancellation signal rather than a
// real failure. Cancellations are excluded from the aggregation decision.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Classify maps a failure to the reason code recorded against the
// transaction: a DomainError contributes its own code, anything else falls
// back to ReasonGenericTimeout. The mapping is evaluated once per failure
// and does not depend on any declaration order.
func Classify(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ReasonGenericTimeout
}
