package offer

import (
	"errors"
	"fmt"
)

// Variant is one of the two fixed monetization paths.
type Variant string

const (
	VariantFullPay  Variant = "full_pay"
	VariantThreePay Variant = "three_pay"
)

// Stage names the step of the fulfillment pipeline a failure occurred in.
// The pipeline is forward-only: once a stage commits it is never rolled
// back, so failure reporting must say exactly which side effects exist.
type Stage string

const (
	StageValidation Stage = "validation"
	StageBilling    Stage = "billing"
	StageMio        Stage = "mio_registration"
	StageHub        Stage = "hub_registration"
)

var (
	ErrValidation     = errors.New("missing_required_fields")
	ErrUnknownVariant = errors.New("unknown_offer_variant")
)

// Request is one confirmed offer to fulfill.
type Request struct {
	Variant       Variant
	CustomerID    string
	CustomerEmail string
	// CustomerName is the display name sent to Hub. Falls back to the
	// email when the customer record has no name.
	CustomerName string
}

// FulfillmentError reports which stage failed and which earlier stages
// already committed. Message is operator-facing and actionable.
type FulfillmentError struct {
	Stage   Stage
	Message string
	// BillingCommitted is true from the Mio stage on: the customer has
	// been charged and the charge stands.
	BillingCommitted bool
	// MioRegistered is true for Hub-stage failures only.
	MioRegistered bool
	Err           error
}

func (e *FulfillmentError) Error() string {
	return fmt.Sprintf("offer fulfillment failed at %s: %s", e.Stage, e.Message)
}

func (e *FulfillmentError) Unwrap() error {
	return e.Err
}
