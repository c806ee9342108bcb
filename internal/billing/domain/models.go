package domain

// Customer is a read-only snapshot from the billing provider. It is
// re-fetched on every lookup and never persisted locally.
type Customer struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	HasPaymentMethod bool   `json:"hasPaymentMethod"`
}

// Subscription statuses that qualify as "existing" for offer purposes.
const (
	StatusActive      = "active"
	StatusNonRenewing = "non_renewing"
	StatusInTrial     = "in_trial"
)

type Subscription struct {
	ID     string `json:"id"`
	PlanID string `json:"planId"`
	Status string `json:"status"`
}

// SubscriptionResult reports which path CreateOrUpdateSubscription took.
// Updated is audit information, not control flow.
type SubscriptionResult struct {
	SubscriptionID string `json:"subscriptionId"`
	Status         string `json:"status"`
	Updated        bool   `json:"updated"`
}

// Invoice is the provider's view of a created invoice, shared by the
// immediate-charge and deferred-collection paths.
type Invoice struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	AmountPaid int64  `json:"amountPaid"`
	AmountDue  int64  `json:"amountDue"`
	Total      int64  `json:"total"`
}

// ChargeResult is an immediately collected single-charge invoice.
type ChargeResult struct {
	InvoiceID  string `json:"invoiceId"`
	Status     string `json:"status"`
	AmountPaid int64  `json:"amountPaid"`
	AmountDue  int64  `json:"amountDue"`
}

// InvoiceResult is an invoice created with automatic collection disabled.
type InvoiceResult struct {
	InvoiceID string `json:"invoiceId"`
	Status    string `json:"status"`
	Total     int64  `json:"total"`
}

// PaymentSchedule is one provider-side scheduled collection entry, as
// returned by the schedule-scheme application. The provider's schedule is
// the source of truth for actual collection.
type PaymentSchedule struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Amount      int64  `json:"amount"`
	ScheduledAt int64  `json:"scheduledAt"`
}

// ScheduleResult is the outcome of applying a payment-schedule scheme.
type ScheduleResult struct {
	InvoiceID        string            `json:"invoiceId"`
	Status           string            `json:"status"`
	PaymentSchedules []PaymentSchedule `json:"paymentSchedules"`
}

// ScheduledPayment is a display-only installment descriptor. Dates are
// computed client-side (today, +1 month, +2 months) and may diverge from
// the provider-applied schedule.
type ScheduledPayment struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// OfferResult is the billing artifact of a fulfilled offer: a subscription
// reference, a transaction reference (the invoice), and, for three-pay
// only, the display descriptors.
type OfferResult struct {
	SubscriptionID    string             `json:"subscriptionId"`
	TransactionID     string             `json:"transactionId"`
	InvoiceStatus     string             `json:"invoiceStatus"`
	Message           string             `json:"message"`
	ManualStep        string             `json:"manualStep"`
	ScheduledPayments []ScheduledPayment `json:"scheduledPayments,omitempty"`
}
