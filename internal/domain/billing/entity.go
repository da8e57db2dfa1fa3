// internal/domain/billing/entity.go
package billing

import (
	"database/sql"
	"time"

	xerrors "billgate-service/internal/pkg/errors"
)

// Term is the billing term a workspace subscribes on.
type Term string

const (
	TermNone    Term = ""
	TermMonthly Term = "monthly"
	TermYearly  Term = "yearly"
)

// ParseTerm validates a raw term from a request. Anything other than
// monthly/yearly is rejected before any gateway is contacted.
func ParseTerm(raw string) (Term, error) {
	switch Term(raw) {
	case TermMonthly:
		return TermMonthly, nil
	case TermYearly:
		return TermYearly, nil
	default:
		return TermNone, xerrors.ErrInvalidTerm
	}
}

// ProviderKind identifies the kind of payment provider behind a gateway.
type ProviderKind string

const (
	ProviderStripe   ProviderKind = "stripe"
	ProviderPaystack ProviderKind = "paystack"
)

type SubscriptionPlan struct {
	ID           int64   `json:"id" db:"id"`
	Name         string  `json:"name" db:"name"`
	PriceMonthly float64 `json:"price_monthly" db:"price_monthly"`
	PriceYearly  float64 `json:"price_yearly" db:"price_yearly"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AmountFor resolves the charge amount for a billing term.
func (p *SubscriptionPlan) AmountFor(term Term) (float64, error) {
	switch term {
	case TermMonthly:
		return p.PriceMonthly, nil
	case TermYearly:
		return p.PriceYearly, nil
	default:
		return 0, xerrors.ErrInvalidTerm
	}
}

// IsFree reports whether the plan can be subscribed to without payment.
func (p *SubscriptionPlan) IsFree() bool {
	return p.PriceMonthly == 0
}

// NextRenewal returns the renewal date one term after start.
func NextRenewal(start time.Time, term Term) time.Time {
	if term == TermYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// MinorUnits converts a currency amount to the provider's smallest unit.
// The amount is truncated to a whole unit before multiplying, matching the
// billing records this service replaces.
func MinorUnits(amount float64) int64 {
	return int64(amount) * 100
}

// PaymentGateway holds the credentials and provider-side plan mapping for one
// configured payment provider. At most one gateway per provider is active.
type PaymentGateway struct {
	ID         int64        `json:"id" db:"id"`
	Provider   ProviderKind `json:"provider" db:"provider"`
	PublicKey  string       `json:"public_key" db:"public_key"`
	PrivateKey string       `json:"-" db:"private_key"`

	// Provider-side recurring plan codes, used by redirect-initiate providers.
	MonthlyPlanCode sql.NullString `json:"-" db:"monthly_plan_code"`
	YearlyPlanCode  sql.NullString `json:"-" db:"yearly_plan_code"`

	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PlanCodeFor selects the provider-side plan mapping for a term.
func (g *PaymentGateway) PlanCodeFor(term Term) string {
	if term == TermYearly {
		return g.YearlyPlanCode.String
	}
	return g.MonthlyPlanCode.String
}

// Workspace is the billable tenant. Its subscription fields are mutated only
// by the billing service's activate/deactivate transitions.
type Workspace struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	Subscribed bool    `json:"subscribed" db:"subscribed"`
	PlanID     int64   `json:"plan_id" db:"plan_id"`
	Term       Term    `json:"term" db:"term"`
	Price      float64 `json:"price" db:"price"`
	Trial      bool    `json:"trial" db:"trial"`

	SubscriptionStartDate sql.NullTime `json:"subscription_start_date" db:"subscription_start_date"`
	NextRenewalDate       sql.NullTime `json:"next_renewal_date" db:"next_renewal_date"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PaymentMethod is a provider-side customer token stored after a successful
// customer creation on a direct-charge gateway. Rows are write-once.
type PaymentMethod struct {
	ID          int64  `json:"id" db:"id"`
	GatewayID   int64  `json:"gateway_id" db:"gateway_id"`
	WorkspaceID int64  `json:"workspace_id" db:"workspace_id"`
	Token       string `json:"token" db:"token"`
	// Reference is the charge-attempt reference the token was created under.
	Reference string    `json:"reference" db:"reference"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Payer is the acting user's identity as presented to a payment provider.
type Payer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
