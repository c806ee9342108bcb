package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidInvoice  = errors.New("invalid_invoice")
	ErrInvalidScheme   = errors.New("invalid_scheme")
)

// ProviderError is a billing-provider rejection. APIErrorCode carries the
// provider's own error marker; when present the failure is surfaced to the
// operator as a payment problem rather than a connection problem.
type ProviderError struct {
	StatusCode   int
	Message      string
	APIErrorCode string
}

func (e *ProviderError) Error() string {
	if e.APIErrorCode != "" {
		return fmt.Sprintf("billing provider error (%d, %s): %s", e.StatusCode, e.APIErrorCode, e.Message)
	}
	return fmt.Sprintf("billing provider error (%d): %s", e.StatusCode, e.Message)
}

// IsPaymentError reports whether err is a provider rejection carrying a
// payment-error marker.
func IsPaymentError(err error) bool {
	var provErr *ProviderError
	return errors.As(err, &provErr) && provErr.APIErrorCode != ""
}
