package domain

import "context"

// Provider is the raw billing-provider API surface the orchestrator builds
// on. One provider call per method, errors propagate unmodified.
type Provider interface {
	// SearchCustomerByEmail returns (nil, nil) when no customer matches:
	// not-found is a normal outcome, not an error.
	SearchCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	ListQualifyingSubscriptions(ctx context.Context, customerID string) ([]Subscription, error)
	CreateSubscription(ctx context.Context, customerID, planID, couponID string) (SubscriptionResult, error)
	UpdateSubscription(ctx context.Context, subscriptionID, planID, couponID string) (SubscriptionResult, error)
	CreateCharge(ctx context.Context, customerID string, amount int64, description string, autoCollect bool) (Invoice, error)
	ApplyPaymentScheduleScheme(ctx context.Context, invoiceID, schemeID string) (ScheduleResult, error)
}

// Service is the billing orchestrator consumed by the offer sequencer and
// the HTTP layer.
type Service interface {
	LookupCustomer(ctx context.Context, email string) (*Customer, error)
	ExistingSubscriptions(ctx context.Context, customerID string) ([]Subscription, error)
	CreateOrUpdateSubscription(ctx context.Context, customerID string) (SubscriptionResult, error)
	CreateOneTimeCharge(ctx context.Context, customerID string, amount int64, description string) (ChargeResult, error)
	CreatePendingInvoice(ctx context.Context, customerID string, amount int64, description string) (InvoiceResult, error)
	ApplyPaymentSchedule(ctx context.Context, invoiceID, schemeID string) (ScheduleResult, error)
	ProcessFullPay(ctx context.Context, customerID, email string) (OfferResult, error)
	ProcessThreePay(ctx context.Context, customerID, email string) (OfferResult, error)
}
