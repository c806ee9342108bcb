package offer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	billingdomain "github.com/alkeincodes/bundle-tool/internal/billing/domain"
	"github.com/alkeincodes/bundle-tool/internal/membership"
	"github.com/alkeincodes/bundle-tool/internal/observability/metrics"
	"github.com/alkeincodes/bundle-tool/internal/platform"
)

const genericConnectionMsg = "Connection error. Please try again."

// Registrar is the platform surface the sequencer drives after billing.
// Implemented by *platform.Client.
type Registrar interface {
	RegisterMio(ctx context.Context, customerID, email string) (map[string]any, error)
	RegisterHub(ctx context.Context, email, name string) (map[string]any, error)
}

type Params struct {
	fx.In

	Billing     billingdomain.Service
	Registrar   Registrar
	Provisioner membership.Provisioner
	Log         *zap.Logger
	Metrics     *metrics.OfferMetrics
}

// Service sequences one confirmed offer: billing, then Mio registration,
// then Hub registration. Strictly sequential, no parallelism, no
// compensation. A registration failure leaves the charge in place and is
// handed to the operator to finish manually.
type Service struct {
	billing     billingdomain.Service
	registrar   Registrar
	provisioner membership.Provisioner
	log         *zap.Logger
	metrics     *metrics.OfferMetrics
}

func NewService(p Params) *Service {
	return &Service{
		billing:     p.Billing,
		registrar:   p.Registrar,
		provisioner: p.Provisioner,
		log:         p.Log.Named("offer.sequencer"),
		metrics:     p.Metrics,
	}
}

// Fulfill drives one offer to completion. The returned error, when
// non-nil, is always a *FulfillmentError naming the failed stage and the
// stages that already committed.
func (s *Service) Fulfill(ctx context.Context, req Request) (billingdomain.OfferResult, error) {
	if strings.TrimSpace(req.CustomerID) == "" || strings.TrimSpace(req.CustomerEmail) == "" {
		s.metrics.ObserveOffer(string(req.Variant), "invalid")
		return billingdomain.OfferResult{}, &FulfillmentError{
			Stage:   StageValidation,
			Message: "Customer ID and email are required",
			Err:     ErrValidation,
		}
	}

	result, err := s.processBilling(ctx, req)
	if err != nil {
		outcome := "billing_failed"
		var ferr *FulfillmentError
		if errors.As(err, &ferr) && ferr.Stage == StageValidation {
			outcome = "invalid"
		}
		s.metrics.ObserveOffer(string(req.Variant), outcome)
		return billingdomain.OfferResult{}, err
	}
	s.log.Info("billing processed",
		zap.String("variant", string(req.Variant)),
		zap.String("customer_id", req.CustomerID),
		zap.String("subscription_id", result.SubscriptionID),
		zap.String("transaction_id", result.TransactionID),
	)

	if _, err := s.registrar.RegisterMio(ctx, req.CustomerID, req.CustomerEmail); err != nil {
		s.log.Error("mio registration failed", zap.String("customer_id", req.CustomerID), zap.Error(err))
		s.metrics.ObserveOffer(string(req.Variant), "mio_failed")
		s.metrics.ObserveRegistrationFailure("mio")
		return billingdomain.OfferResult{}, &FulfillmentError{
			Stage: StageMio,
			Message: fmt.Sprintf(
				"Mio registration failed: %s. Billing already completed (transaction %s); complete Mio and Hub registration manually.",
				failureMessage(err), result.TransactionID,
			),
			BillingCommitted: true,
			Err:              err,
		}
	}
	s.log.Info("mio registration complete", zap.String("customer_id", req.CustomerID))

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		name = req.CustomerEmail
	}
	if _, err := s.registrar.RegisterHub(ctx, req.CustomerEmail, name); err != nil {
		s.log.Error("hub registration failed", zap.String("customer_id", req.CustomerID), zap.Error(err))
		s.metrics.ObserveOffer(string(req.Variant), "hub_failed")
		s.metrics.ObserveRegistrationFailure("hub")
		return billingdomain.OfferResult{}, &FulfillmentError{
			Stage: StageHub,
			Message: fmt.Sprintf(
				"Hub registration failed: %s. Billing and Mio registration already completed (transaction %s); complete Hub registration manually.",
				failureMessage(err), result.TransactionID,
			),
			BillingCommitted: true,
			MioRegistered:    true,
			Err:              err,
		}
	}
	s.log.Info("hub registration complete", zap.String("customer_id", req.CustomerID))

	// Membership provisioning never fails the offer; until the endpoint
	// exists it only reports the operator's remaining step.
	provision, err := s.provisioner.ProvisionUser(ctx, req.CustomerEmail, req.CustomerID)
	if err != nil {
		s.log.Warn("membership provisioning failed", zap.String("customer_id", req.CustomerID), zap.Error(err))
		provision.ManualStep = membership.ManualProvisionStep
	}
	result.ManualStep = provision.ManualStep

	s.metrics.ObserveOffer(string(req.Variant), "success")
	return result, nil
}

func (s *Service) processBilling(ctx context.Context, req Request) (billingdomain.OfferResult, error) {
	var (
		result billingdomain.OfferResult
		err    error
	)
	switch req.Variant {
	case VariantFullPay:
		result, err = s.billing.ProcessFullPay(ctx, req.CustomerID, req.CustomerEmail)
	case VariantThreePay:
		result, err = s.billing.ProcessThreePay(ctx, req.CustomerID, req.CustomerEmail)
	default:
		return billingdomain.OfferResult{}, &FulfillmentError{
			Stage:   StageValidation,
			Message: "Unknown offer variant",
			Err:     ErrUnknownVariant,
		}
	}
	if err == nil {
		return result, nil
	}

	s.log.Error("billing failed",
		zap.String("variant", string(req.Variant)),
		zap.String("customer_id", req.CustomerID),
		zap.Error(err),
	)
	message := genericConnectionMsg
	var provErr *billingdomain.ProviderError
	if errors.As(err, &provErr) && provErr.APIErrorCode != "" {
		message = "Payment failed: " + provErr.Message
	}
	return billingdomain.OfferResult{}, &FulfillmentError{
		Stage:   StageBilling,
		Message: message,
		Err:     err,
	}
}

// failureMessage extracts the operator-facing text from a registration
// failure. Platform errors already carry clean provider text; anything
// else surfaces as-is for the operator to relay.
func failureMessage(err error) string {
	var apiErr *platform.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
