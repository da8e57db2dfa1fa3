// internal/handlers/billing/billing_handler.go
package billing

import (
	"net/http"
	"strconv"

	domain "billgate-service/internal/domain/billing"
	"billgate-service/internal/middleware"
	xerrors "billgate-service/internal/pkg/errors"
	"billgate-service/internal/pkg/response"
	service "billgate-service/internal/service/billing"

	"github.com/gin-gonic/gin"
)

// freePlanTerm is the sentinel term the subscribe endpoint uses to request
// the free flow.
const freePlanTerm = "free_plan"

type BillingHandler struct {
	billingService *service.BillingService
}

func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
	}
}

// Subscribe handles the subscribe-to-plan operation. The free flow is tried
// first when requested; a plan that is not free falls through to the paid
// checkout quote.
func (h *BillingHandler) Subscribe(c *gin.Context) {
	var req domain.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	workspaceID := middleware.MustGetWorkspaceID(c)
	ctx := c.Request.Context()

	if req.Term == freePlanTerm {
		err := h.billingService.SubscribeFree(ctx, workspaceID, req.PlanID)
		if err == nil {
			response.Success(c, http.StatusOK, "Subscribed successfully!", nil)
			return
		}
		if !xerrors.Is(err, xerrors.ErrPlanNotFree) {
			response.FromError(c, "subscription failed", err)
			return
		}
		// Not a free plan; continue into the paid flow.
	}

	quote, err := h.billingService.PreparePaidFlow(ctx, workspaceID, req.PlanID, req.Term)
	if err != nil {
		response.FromError(c, "subscription failed", err)
		return
	}

	response.Success(c, http.StatusOK, "checkout prepared", quote)
}

// Cancel handles cancel-subscription
func (h *BillingHandler) Cancel(c *gin.Context) {
	var req domain.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	workspaceID := middleware.MustGetWorkspaceID(c)

	if err := h.billingService.Cancel(c.Request.Context(), workspaceID, req.PlanID); err != nil {
		response.FromError(c, "cancellation failed", err)
		return
	}

	response.Success(c, http.StatusOK, "Unsubscribed successfully!", nil)
}

// ChargeStripe handles charge-via-direct-gateway
func (h *BillingHandler) ChargeStripe(c *gin.Context) {
	var req domain.DirectChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	workspaceID := middleware.MustGetWorkspaceID(c)
	payer := middleware.GetPayer(c)

	receipt, err := h.billingService.ChargeDirect(c.Request.Context(), workspaceID, payer, &req)
	if err != nil {
		response.FromError(c, "an error occurred", err)
		return
	}

	response.Success(c, http.StatusOK, "Subscribed successfully!", receipt)
}

// InitiatePaystack handles initiate-via-redirect-gateway
func (h *BillingHandler) InitiatePaystack(c *gin.Context) {
	var req domain.RedirectInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	workspaceID := middleware.MustGetWorkspaceID(c)
	payer := middleware.GetPayer(c)

	checkout, err := h.billingService.InitiateRedirect(c.Request.Context(), workspaceID, payer, &req)
	if err != nil {
		response.FromError(c, "an error occurred", err)
		return
	}

	response.Success(c, http.StatusOK, "checkout initiated", checkout)
}

// PaystackCallback confirms a hosted-checkout payment when the payer is
// redirected back with a transaction reference.
func (h *BillingHandler) PaystackCallback(c *gin.Context) {
	reference := c.Query("reference")
	term := c.Query("term")
	planID, err := strconv.ParseInt(c.Query("plan_id"), 10, 64)
	if err != nil || reference == "" {
		response.ValidationError(c, "invalid callback parameters", err)
		return
	}

	workspaceID := middleware.MustGetWorkspaceID(c)

	if err := h.billingService.CompleteRedirect(c.Request.Context(), workspaceID, planID, term, reference); err != nil {
		response.FromError(c, "an error occurred", err)
		return
	}

	response.Success(c, http.StatusOK, "Subscribed successfully!", nil)
}

// Status returns the workspace's subscription state
func (h *BillingHandler) Status(c *gin.Context) {
	workspaceID := middleware.MustGetWorkspaceID(c)

	ws, err := h.billingService.Status(c.Request.Context(), workspaceID)
	if err != nil {
		response.FromError(c, "failed to load billing status", err)
		return
	}

	response.Success(c, http.StatusOK, "billing status", ws)
}

// PaymentMethods lists the stored payment methods for the workspace
func (h *BillingHandler) PaymentMethods(c *gin.Context) {
	workspaceID := middleware.MustGetWorkspaceID(c)

	methods, err := h.billingService.PaymentMethods(c.Request.Context(), workspaceID)
	if err != nil {
		response.FromError(c, "failed to list payment methods", err)
		return
	}

	response.Success(c, http.StatusOK, "payment methods", methods)
}
