// internal/service/billing/billing_service.go
package billing

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"billgate-service/internal/domain/billing"
	xerrors "billgate-service/internal/pkg/errors"
	"billgate-service/internal/provider"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Stores the orchestrator needs. Satisfied by the postgres repositories.
type PlanStore interface {
	FindByID(ctx context.Context, id int64) (*billing.SubscriptionPlan, error)
}

type GatewayStore interface {
	FindActiveByProvider(ctx context.Context, kind billing.ProviderKind) (*billing.PaymentGateway, error)
	ListActive(ctx context.Context) ([]billing.PaymentGateway, error)
}

type Ledger interface {
	FindByID(ctx context.Context, id int64) (*billing.Workspace, error)
	Activate(ctx context.Context, id, planID int64, term billing.Term, price float64, start, nextRenewal time.Time) error
	ActivateFree(ctx context.Context, id, planID int64, start time.Time) error
	Deactivate(ctx context.Context, id int64) error
}

type PaymentMethodStore interface {
	Create(ctx context.Context, m *billing.PaymentMethod) error
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]billing.PaymentMethod, error)
}

// AdminNotifier is the post-success side channel. Failures are logged and
// swallowed; they never affect the billing transaction.
type AdminNotifier interface {
	NotifyAdminSubscribed(ctx context.Context, ws *billing.Workspace, plan *billing.SubscriptionPlan) error
}

// Locker serializes billing writes per workspace.
type Locker interface {
	Acquire(ctx context.Context, workspaceID int64) (func(), error)
}

type BillingService struct {
	plans    PlanStore
	gateways GatewayStore
	ledger   Ledger
	methods  PaymentMethodStore
	direct   provider.DirectCharger
	redirect provider.RedirectInitiator
	notifier AdminNotifier
	locks    Locker
	appURL   string
	logger   *zap.Logger
}

func NewBillingService(
	plans PlanStore,
	gateways GatewayStore,
	ledger Ledger,
	methods PaymentMethodStore,
	direct provider.DirectCharger,
	redirect provider.RedirectInitiator,
	notifier AdminNotifier,
	locks Locker,
	appURL string,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		plans:    plans,
		gateways: gateways,
		ledger:   ledger,
		methods:  methods,
		direct:   direct,
		redirect: redirect,
		notifier: notifier,
		locks:    locks,
		appURL:   appURL,
		logger:   logger,
	}
}

// SubscribeFree activates a workspace on a free plan. No gateway is ever
// contacted on this path.
func (s *BillingService) SubscribeFree(ctx context.Context, workspaceID, planID int64) error {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		return err
	}

	if !plan.IsFree() {
		return xerrors.ErrPlanNotFree
	}

	release, err := s.locks.Acquire(ctx, workspaceID)
	if err != nil {
		return err
	}
	defer release()

	if err := s.ledger.ActivateFree(ctx, workspaceID, plan.ID, today()); err != nil {
		return err
	}

	s.logger.Info("workspace subscribed to free plan",
		zap.Int64("workspace_id", workspaceID),
		zap.Int64("plan_id", plan.ID),
	)

	return nil
}

// PreparePaidFlow resolves the amount and available gateways for a paid
// subscription. Performs no mutation.
func (s *BillingService) PreparePaidFlow(ctx context.Context, workspaceID, planID int64, rawTerm string) (*billing.CheckoutQuote, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	term, err := billing.ParseTerm(rawTerm)
	if err != nil {
		return nil, err
	}

	amount, err := plan.AmountFor(term)
	if err != nil {
		return nil, err
	}

	gateways, err := s.gateways.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(gateways) == 0 {
		return nil, xerrors.ErrGatewayNotConfigured
	}

	return &billing.CheckoutQuote{
		Plan:     plan,
		Term:     term,
		Amount:   amount,
		Gateways: gateways,
	}, nil
}

// ChargeDirect runs the direct-charge flow: resolve plan and amount, charge
// the token through the direct-charge gateway, then activate the
// subscription. Failure at any step before the ledger write leaves the
// workspace untouched.
func (s *BillingService) ChargeDirect(ctx context.Context, workspaceID int64, payer billing.Payer, req *billing.DirectChargeRequest) (*billing.ChargeReceipt, error) {
	plan, err := s.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	term, err := billing.ParseTerm(req.Term)
	if err != nil {
		return nil, err
	}

	amount, err := plan.AmountFor(term)
	if err != nil {
		return nil, err
	}

	gw, err := s.gateways.FindActiveByProvider(ctx, billing.ProviderStripe)
	if err != nil {
		return nil, err
	}

	release, err := s.locks.Acquire(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Charge-attempt reference, also used as the provider idempotency key so
	// a resubmitted attempt cannot double-charge.
	attemptRef := ulid.Make().String()

	customerID, err := s.direct.CreateCustomer(ctx, gw, payer, req.TokenID)
	if err != nil {
		return nil, err
	}

	method := &billing.PaymentMethod{
		GatewayID:   gw.ID,
		WorkspaceID: workspaceID,
		Token:       customerID,
		Reference:   attemptRef,
	}
	if err := s.methods.Create(ctx, method); err != nil {
		return nil, fmt.Errorf("failed to store payment method: %w", err)
	}

	// The stored method stays behind if the charge fails; the caller retries
	// with a fresh attempt.
	chargeID, err := s.direct.ChargeCustomer(ctx, gw, customerID, amount, plan.Name, attemptRef)
	if err != nil {
		return nil, err
	}

	start := today()
	nextRenewal := billing.NextRenewal(start, term)

	if err := s.ledger.Activate(ctx, workspaceID, plan.ID, term, amount, start, nextRenewal); err != nil {
		return nil, err
	}

	s.logger.Info("workspace subscribed",
		zap.Int64("workspace_id", workspaceID),
		zap.Int64("plan_id", plan.ID),
		zap.String("term", string(term)),
		zap.Float64("amount", amount),
		zap.String("charge_id", chargeID),
	)

	s.notifyAdmin(workspaceID, plan)

	return &billing.ChargeReceipt{
		CustomerID:      customerID,
		ChargeID:        chargeID,
		PlanID:          plan.ID,
		Term:            term,
		Amount:          amount,
		NextRenewalDate: nextRenewal,
	}, nil
}

// InitiateRedirect starts the hosted-checkout flow and returns the URL the
// payer is redirected to. The ledger is untouched; activation happens in
// CompleteRedirect once the payer returns.
func (s *BillingService) InitiateRedirect(ctx context.Context, workspaceID int64, payer billing.Payer, req *billing.RedirectInitRequest) (*billing.RedirectCheckout, error) {
	plan, err := s.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	term, err := billing.ParseTerm(req.Term)
	if err != nil {
		return nil, err
	}

	gw, err := s.gateways.FindActiveByProvider(ctx, billing.ProviderPaystack)
	if err != nil {
		return nil, err
	}

	callbackURL := s.callbackURL(plan.ID, term)

	authorizationURL, err := s.redirect.Initiate(ctx, gw, payer, plan, term, callbackURL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("redirect checkout initiated",
		zap.Int64("workspace_id", workspaceID),
		zap.Int64("plan_id", plan.ID),
		zap.String("term", string(term)),
	)

	return &billing.RedirectCheckout{AuthorizationURL: authorizationURL}, nil
}

// CompleteRedirect verifies a returned hosted-checkout payment by reference
// and performs the activation the redirect flow deferred.
func (s *BillingService) CompleteRedirect(ctx context.Context, workspaceID, planID int64, rawTerm, reference string) error {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		return err
	}

	term, err := billing.ParseTerm(rawTerm)
	if err != nil {
		return err
	}

	amount, err := plan.AmountFor(term)
	if err != nil {
		return err
	}

	gw, err := s.gateways.FindActiveByProvider(ctx, billing.ProviderPaystack)
	if err != nil {
		return err
	}

	release, err := s.locks.Acquire(ctx, workspaceID)
	if err != nil {
		return err
	}
	defer release()

	if err := s.redirect.Verify(ctx, gw, reference, amount); err != nil {
		return err
	}

	start := today()
	if err := s.ledger.Activate(ctx, workspaceID, plan.ID, term, amount, start, billing.NextRenewal(start, term)); err != nil {
		return err
	}

	s.logger.Info("workspace subscribed via redirect checkout",
		zap.Int64("workspace_id", workspaceID),
		zap.Int64("plan_id", plan.ID),
		zap.String("term", string(term)),
		zap.String("reference", reference),
	)

	s.notifyAdmin(workspaceID, plan)

	return nil
}

// Cancel deactivates the workspace's subscription. An unknown plan id is a
// silent no-op.
func (s *BillingService) Cancel(ctx context.Context, workspaceID, planID int64) error {
	_, err := s.plans.FindByID(ctx, planID)
	if xerrors.Is(err, xerrors.ErrPlanNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	release, err := s.locks.Acquire(ctx, workspaceID)
	if err != nil {
		return err
	}
	defer release()

	if err := s.ledger.Deactivate(ctx, workspaceID); err != nil {
		return err
	}

	s.logger.Info("workspace unsubscribed", zap.Int64("workspace_id", workspaceID))

	return nil
}

// Status returns the workspace's current subscription state.
func (s *BillingService) Status(ctx context.Context, workspaceID int64) (*billing.Workspace, error) {
	return s.ledger.FindByID(ctx, workspaceID)
}

// PaymentMethods lists the provider tokens stored for the workspace.
func (s *BillingService) PaymentMethods(ctx context.Context, workspaceID int64) ([]billing.PaymentMethod, error) {
	return s.methods.ListByWorkspace(ctx, workspaceID)
}

// notifyAdmin fires the admin notification without joining it to the
// caller's transaction boundary.
func (s *BillingService) notifyAdmin(workspaceID int64, plan *billing.SubscriptionPlan) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		ws, err := s.ledger.FindByID(ctx, workspaceID)
		if err != nil {
			s.logger.Warn("failed to load workspace for admin notification",
				zap.Int64("workspace_id", workspaceID), zap.Error(err))
			return
		}

		if err := s.notifier.NotifyAdminSubscribed(ctx, ws, plan); err != nil {
			s.logger.Warn("admin notification failed",
				zap.Int64("workspace_id", workspaceID), zap.Error(err))
		}
	}()
}

func (s *BillingService) callbackURL(planID int64, term billing.Term) string {
	q := url.Values{}
	q.Set("payment", "paystack")
	q.Set("plan_id", fmt.Sprintf("%d", planID))
	q.Set("term", string(term))
	return s.appURL + "/dashboard?" + q.Encode()
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
