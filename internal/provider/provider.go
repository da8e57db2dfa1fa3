// internal/provider/provider.go
package provider

import (
	"context"

	"billgate-service/internal/domain/billing"
)

// DirectCharger is a provider that charges a stored payment token directly.
// Customer creation and the monetary charge are separate calls so the caller
// can persist the customer token between them; a failed charge leaves the
// stored token behind for the next attempt.
type DirectCharger interface {
	CreateCustomer(ctx context.Context, gw *billing.PaymentGateway, payer billing.Payer, token string) (customerID string, err error)
	ChargeCustomer(ctx context.Context, gw *billing.PaymentGateway, customerID string, amount float64, description, idempotencyKey string) (chargeID string, err error)
}

// RedirectInitiator is a provider whose payment happens on a hosted checkout
// page. Initiate returns the page URL; Verify confirms a completed payment
// when the payer is redirected back, including that the paid amount matches
// the one being activated.
type RedirectInitiator interface {
	Initiate(ctx context.Context, gw *billing.PaymentGateway, payer billing.Payer, plan *billing.SubscriptionPlan, term billing.Term, callbackURL string) (authorizationURL string, err error)
	Verify(ctx context.Context, gw *billing.PaymentGateway, reference string, amount float64) error
}
