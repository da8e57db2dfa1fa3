// internal/provider/stripe.go
package provider

import (
	"context"
	"fmt"
	"time"

	"billgate-service/internal/domain/billing"
	xerrors "billgate-service/internal/pkg/errors"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"go.uber.org/zap"
)

// statementDescriptorMax is Stripe's limit for statement descriptors.
const statementDescriptorMax = 22

// StripeCharger implements DirectCharger against the Stripe API. The secret
// key comes from the gateway row on every call; there is no process-wide
// configured client.
type StripeCharger struct {
	currency string
	appName  string
	timeout  time.Duration
	backends *stripe.Backends
	logger   *zap.Logger
}

// NewStripeCharger creates a Stripe adapter. backends is nil in production;
// tests inject one pointing at a stub server.
func NewStripeCharger(currency, appName string, timeout time.Duration, backends *stripe.Backends, logger *zap.Logger) *StripeCharger {
	return &StripeCharger{
		currency: currency,
		appName:  appName,
		timeout:  timeout,
		backends: backends,
		logger:   logger,
	}
}

func (s *StripeCharger) api(gw *billing.PaymentGateway) *client.API {
	api := &client.API{}
	api.Init(gw.PrivateKey, s.backends)
	return api
}

// CreateCustomer creates a Stripe customer bound to the payer and the card token.
func (s *StripeCharger) CreateCustomer(ctx context.Context, gw *billing.PaymentGateway, payer billing.Payer, token string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := &stripe.CustomerParams{
		Email: stripe.String(payer.Email),
		Name:  stripe.String(payer.Name),
	}
	params.Context = ctx
	params.Source = stripe.String(token)

	cust, err := s.api(gw).Customers.New(params)
	if err != nil {
		s.logger.Warn("stripe customer creation failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", xerrors.ErrChargeFailed, err)
	}

	return cust.ID, nil
}

// ChargeCustomer submits the charge against an existing customer, denominated
// in the provider's minor unit.
func (s *StripeCharger) ChargeCustomer(ctx context.Context, gw *billing.PaymentGateway, customerID string, amount float64, description, idempotencyKey string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := &stripe.ChargeParams{
		Amount:              stripe.Int64(billing.MinorUnits(amount)),
		Currency:            stripe.String(s.currency),
		Customer:            stripe.String(customerID),
		Description:         stripe.String(description),
		StatementDescriptor: stripe.String(truncateDescriptor(s.appName)),
	}
	params.Context = ctx
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	ch, err := s.api(gw).Charges.New(params)
	if err != nil {
		s.logger.Warn("stripe charge failed", zap.String("customer_id", customerID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", xerrors.ErrChargeFailed, err)
	}

	return ch.ID, nil
}

// truncateDescriptor cuts on rune boundaries so a non-ASCII name never sends
// invalid UTF-8.
func truncateDescriptor(name string) string {
	runes := []rune(name)
	if len(runes) > statementDescriptorMax {
		return string(runes[:statementDescriptorMax])
	}
	return name
}
