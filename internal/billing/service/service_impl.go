package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/alkeincodes/bundle-tool/internal/billing/domain"
	"github.com/alkeincodes/bundle-tool/internal/clock"
)

// Pricing carries the externally configured offer values. Amounts are
// integer minor units.
type Pricing struct {
	PlanID           string
	CouponID         string
	ThreePaySchemeID string
	FullPayAmount    int64
	ThreePayAmount   int64
}

type Params struct {
	fx.In

	Provider domain.Provider
	Log      *zap.Logger
	Clock    clock.Clock
	Pricing  Pricing
}

type Service struct {
	provider domain.Provider
	log      *zap.Logger
	clk      clock.Clock
	pricing  Pricing
}

func NewService(p Params) domain.Service {
	return &Service{
		provider: p.Provider,
		log:      p.Log.Named("billing.service"),
		clk:      p.Clock,
		pricing:  p.Pricing,
	}
}

// LookupCustomer fetches a fresh customer snapshot by exact email match.
// A missing customer is (nil, nil), not an error.
func (s *Service) LookupCustomer(ctx context.Context, email string) (*domain.Customer, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.ErrInvalidEmail
	}
	return s.provider.SearchCustomerByEmail(ctx, strings.ToLower(email))
}

// ExistingSubscriptions lists the customer's qualifying subscriptions in
// provider order.
func (s *Service) ExistingSubscriptions(ctx context.Context, customerID string) ([]domain.Subscription, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.ErrInvalidCustomer
	}
	return s.provider.ListQualifyingSubscriptions(ctx, customerID)
}

// canonicalSubscription picks the subscription an offer operates on when a
// customer has more than one qualifying subscription: the earliest one the
// provider returned. Deliberate, documented tie-break.
func canonicalSubscription(subs []domain.Subscription) *domain.Subscription {
	if len(subs) == 0 {
		return nil
	}
	return &subs[0]
}

// CreateOrUpdateSubscription updates the canonical existing subscription
// in place when one exists, otherwise creates a new one. Both paths apply
// the configured plan and coupon.
func (s *Service) CreateOrUpdateSubscription(ctx context.Context, customerID string) (domain.SubscriptionResult, error) {
	existing, err := s.ExistingSubscriptions(ctx, customerID)
	if err != nil {
		return domain.SubscriptionResult{}, err
	}
	s.log.Info("existing subscriptions",
		zap.String("customer_id", customerID),
		zap.Int("count", len(existing)),
	)

	if sub := canonicalSubscription(existing); sub != nil {
		s.log.Info("updating existing subscription",
			zap.String("subscription_id", sub.ID),
			zap.String("current_plan", sub.PlanID),
			zap.String("target_plan", s.pricing.PlanID),
		)
		result, err := s.provider.UpdateSubscription(ctx, sub.ID, s.pricing.PlanID, s.pricing.CouponID)
		if err != nil {
			s.log.Error("subscription update failed", zap.String("subscription_id", sub.ID), zap.Error(err))
			return domain.SubscriptionResult{}, err
		}
		return result, nil
	}

	s.log.Info("no existing subscription, creating new one", zap.String("customer_id", customerID))
	return s.provider.CreateSubscription(ctx, customerID, s.pricing.PlanID, s.pricing.CouponID)
}

// CreateOneTimeCharge creates and immediately collects a single-charge
// invoice.
func (s *Service) CreateOneTimeCharge(ctx context.Context, customerID string, amount int64, description string) (domain.ChargeResult, error) {
	invoice, err := s.provider.CreateCharge(ctx, customerID, amount, description, true)
	if err != nil {
		return domain.ChargeResult{}, err
	}
	return domain.ChargeResult{
		InvoiceID:  invoice.ID,
		Status:     invoice.Status,
		AmountPaid: invoice.AmountPaid,
		AmountDue:  invoice.AmountDue,
	}, nil
}

// CreatePendingInvoice creates an invoice with automatic collection
// disabled, for later schedule application.
func (s *Service) CreatePendingInvoice(ctx context.Context, customerID string, amount int64, description string) (domain.InvoiceResult, error) {
	invoice, err := s.provider.CreateCharge(ctx, customerID, amount, description, false)
	if err != nil {
		return domain.InvoiceResult{}, err
	}
	return domain.InvoiceResult{
		InvoiceID: invoice.ID,
		Status:    invoice.Status,
		Total:     invoice.Total,
	}, nil
}

// ApplyPaymentSchedule applies the pre-configured payment-schedule scheme
// to an invoice.
func (s *Service) ApplyPaymentSchedule(ctx context.Context, invoiceID, schemeID string) (domain.ScheduleResult, error) {
	if strings.TrimSpace(invoiceID) == "" {
		return domain.ScheduleResult{}, domain.ErrInvalidInvoice
	}
	if strings.TrimSpace(schemeID) == "" {
		return domain.ScheduleResult{}, domain.ErrInvalidScheme
	}
	return s.provider.ApplyPaymentScheduleScheme(ctx, invoiceID, schemeID)
}

// ProcessFullPay runs the full-pay offer: create-or-update the
// subscription, then one immediately collected charge for the configured
// amount. Downstream membership provisioning stays a manual step.
func (s *Service) ProcessFullPay(ctx context.Context, customerID, email string) (domain.OfferResult, error) {
	subscription, err := s.CreateOrUpdateSubscription(ctx, customerID)
	if err != nil {
		return domain.OfferResult{}, err
	}

	charge, err := s.CreateOneTimeCharge(ctx, customerID, s.pricing.FullPayAmount, "TME Plus Mio Bundle - Full Pay")
	if err != nil {
		return domain.OfferResult{}, err
	}

	return domain.OfferResult{
		SubscriptionID: subscription.SubscriptionID,
		TransactionID:  charge.InvoiceID,
		InvoiceStatus:  charge.Status,
		Message:        "Successfully processed TME Plus Full Pay",
	}, nil
}

// ProcessThreePay runs the three-pay offer: create-or-update the
// subscription, one pending invoice for the full 3x amount, then the
// provider-side schedule split. The returned installment dates are display
// values; the provider's applied schedule governs actual collection.
func (s *Service) ProcessThreePay(ctx context.Context, customerID, email string) (domain.OfferResult, error) {
	subscription, err := s.CreateOrUpdateSubscription(ctx, customerID)
	if err != nil {
		return domain.OfferResult{}, err
	}

	installment := s.pricing.ThreePayAmount
	total := installment * 3

	description := fmt.Sprintf("TME Plus Mio Bundle - 3-Pay Plan (%s × 3)", formatAmount(installment))
	invoice, err := s.CreatePendingInvoice(ctx, customerID, total, description)
	if err != nil {
		return domain.OfferResult{}, err
	}

	scheduled, err := s.ApplyPaymentSchedule(ctx, invoice.InvoiceID, s.pricing.ThreePaySchemeID)
	if err != nil {
		return domain.OfferResult{}, err
	}
	s.log.Info("payment schedule applied",
		zap.String("invoice_id", scheduled.InvoiceID),
		zap.Int("installments", len(scheduled.PaymentSchedules)),
	)

	return domain.OfferResult{
		SubscriptionID:    subscription.SubscriptionID,
		TransactionID:     invoice.InvoiceID,
		InvoiceStatus:     scheduled.Status,
		Message:           "Successfully processed TME Plus 3-Pay with scheduled payments",
		ScheduledPayments: s.installmentSchedule(installment),
	}, nil
}

// installmentSchedule builds the three display descriptors: today, one
// month out, two months out.
func (s *Service) installmentSchedule(installment int64) []domain.ScheduledPayment {
	now := s.clk.Now()
	amount := formatAmount(installment)

	return []domain.ScheduledPayment{
		{Date: now.Format("2006-01-02"), Amount: amount, Description: "Payment 1 of 3 (charged now)"},
		{Date: now.AddDate(0, 1, 0).Format("2006-01-02"), Amount: amount, Description: "Payment 2 of 3 (scheduled)"},
		{Date: now.AddDate(0, 2, 0).Format("2006-01-02"), Amount: amount, Description: "Payment 3 of 3 (scheduled)"},
	}
}

// formatAmount renders minor units as a display dollar amount, grouping
// thousands and dropping whole-dollar cents: 106700 -> "$1,067".
func formatAmount(cents int64) string {
	dollars := cents / 100
	remainder := cents % 100

	grouped := groupThousands(dollars)
	if remainder == 0 {
		return "$" + grouped
	}
	return fmt.Sprintf("$%s.%02d", grouped, remainder)
}

func groupThousands(value int64) string {
	digits := fmt.Sprintf("%d", value)
	if len(digits) <= 3 {
		return digits
	}
	var out strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		out.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if out.Len() > 0 {
			out.WriteString(",")
		}
		out.WriteString(digits[i : i+3])
	}
	return out.String()
}
