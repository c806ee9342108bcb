// Package membership holds the membership.io provisioning integration.
// The internal provisioning endpoint is not deployed yet, so ProvisionUser
// reports the manual step an operator has to perform instead.
package membership

import (
	"context"

	"go.uber.org/zap"
)

// ManualProvisionStep is surfaced to operators until the provisioning API
// exists.
const ManualProvisionStep = "Please manually provision user in membership.io"

// Result describes one provisioning attempt.
type Result struct {
	Provisioned bool   `json:"provisioned"`
	ManualStep  string `json:"manual_step,omitempty"`
}

// Provisioner creates membership.io accounts for fulfilled offers.
type Provisioner interface {
	ProvisionUser(ctx context.Context, email, customerID string) (Result, error)
}

type manualProvisioner struct {
	log *zap.Logger
}

// NewProvisioner returns the current provisioner. It never provisions and
// always hands the step back to the operator.
// TODO: replace with the HTTP client once the membership.io endpoint ships.
func NewProvisioner(log *zap.Logger) Provisioner {
	return &manualProvisioner{log: log.Named("membership.provisioner")}
}

func (p *manualProvisioner) ProvisionUser(ctx context.Context, email, customerID string) (Result, error) {
	p.log.Info("membership provisioning deferred to operator",
		zap.String("customer_id", customerID),
	)
	return Result{Provisioned: false, ManualStep: ManualProvisionStep}, nil
}
