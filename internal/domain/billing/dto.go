// internal/domain/billing/dto.go
package billing

import "time"

type SubscribeRequest struct {
	PlanID int64  `json:"plan_id" binding:"required"`
	Term   string `json:"term" binding:"required"`
}

type CancelRequest struct {
	PlanID int64 `json:"plan_id" binding:"required"`
}

type DirectChargeRequest struct {
	PlanID  int64  `json:"plan_id" binding:"required"`
	Term    string `json:"term" binding:"required"`
	TokenID string `json:"token_id" binding:"required"`
}

type RedirectInitRequest struct {
	PlanID int64  `json:"plan_id" binding:"required"`
	Term   string `json:"term" binding:"required"`
}

// CheckoutQuote is the presentation payload for the paid flow: the resolved
// amount plus the gateways the payer can choose from. Nothing is mutated to
// produce it.
type CheckoutQuote struct {
	Plan     *SubscriptionPlan `json:"plan"`
	Term     Term              `json:"term"`
	Amount   float64           `json:"amount"`
	Gateways []PaymentGateway  `json:"gateways"`
}

// ChargeReceipt reports a completed direct charge.
type ChargeReceipt struct {
	CustomerID      string    `json:"customer_id"`
	ChargeID        string    `json:"charge_id"`
	PlanID          int64     `json:"plan_id"`
	Term            Term      `json:"term"`
	Amount          float64   `json:"amount"`
	NextRenewalDate time.Time `json:"next_renewal_date"`
}

// RedirectCheckout carries the hosted-checkout URL the caller is sent to.
type RedirectCheckout struct {
	AuthorizationURL string `json:"authorization_url"`
}
