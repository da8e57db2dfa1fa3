// internal/provider/paystack.go
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"billgate-service/internal/domain/billing"
	xerrors "billgate-service/internal/pkg/errors"

	"go.uber.org/zap"
)

const paystackBaseURL = "https://api.paystack.co"

// PaystackClient implements RedirectInitiator against the Paystack API.
type PaystackClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPaystackClient creates a Paystack adapter. baseURL is "" in production;
// tests point it at a stub server. The HTTP client carries the bounded
// provider timeout.
func NewPaystackClient(baseURL string, timeout time.Duration, logger *zap.Logger) *PaystackClient {
	if baseURL == "" {
		baseURL = paystackBaseURL
	}
	return &PaystackClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type paystackEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
		Status           string `json:"status"`
		Amount           int64  `json:"amount"`
	} `json:"data"`
}

// Initiate submits a transaction initialization and returns the hosted
// checkout URL the payer is redirected to. The term selects the gateway's
// provider-side plan code; the callback URL carries the subscription intent.
func (p *PaystackClient) Initiate(ctx context.Context, gw *billing.PaymentGateway, payer billing.Payer, plan *billing.SubscriptionPlan, term billing.Term, callbackURL string) (string, error) {
	amount, err := plan.AmountFor(term)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("email", payer.Email)
	form.Set("amount", strconv.FormatInt(billing.MinorUnits(amount), 10))
	form.Set("plan", gw.PlanCodeFor(term))
	form.Set("callback_url", callbackURL)

	body, err := p.post(ctx, gw, "/transaction/initialize", form)
	if err != nil {
		return "", fmt.Errorf("%w: an error occurred", xerrors.ErrInitiationFailed)
	}

	if !body.Status {
		return "", fmt.Errorf("%w: %s", xerrors.ErrInitiationFailed, defaultMessage(body.Message))
	}

	return body.Data.AuthorizationURL, nil
}

// Verify confirms a completed transaction by reference after the payer is
// redirected back. The transaction's paid amount must match the amount being
// activated; the reference alone proves nothing about what was paid.
func (p *PaystackClient) Verify(ctx context.Context, gw *billing.PaymentGateway, reference string, amount float64) error {
	endpoint := "/transaction/verify/" + url.PathEscape(reference)

	body, err := p.get(ctx, gw, endpoint)
	if err != nil {
		return fmt.Errorf("%w: an error occurred", xerrors.ErrChargeFailed)
	}

	if !body.Status {
		return fmt.Errorf("%w: %s", xerrors.ErrChargeFailed, defaultMessage(body.Message))
	}
	if body.Data.Status != "success" {
		return fmt.Errorf("%w: transaction status %q", xerrors.ErrChargeFailed, body.Data.Status)
	}
	if want := billing.MinorUnits(amount); body.Data.Amount != want {
		return fmt.Errorf("%w: paid amount %d does not match %d", xerrors.ErrChargeFailed, body.Data.Amount, want)
	}

	return nil
}

func (p *PaystackClient) post(ctx context.Context, gw *billing.PaymentGateway, endpoint string, form url.Values) (*paystackEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build paystack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+gw.PrivateKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return p.do(req)
}

func (p *PaystackClient) get(ctx context.Context, gw *billing.PaymentGateway, endpoint string) (*paystackEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build paystack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+gw.PrivateKey)

	return p.do(req)
}

func (p *PaystackClient) do(req *http.Request) (*paystackEnvelope, error) {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warn("paystack request failed", zap.String("url", req.URL.Path), zap.Error(err))
		return nil, fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	var body paystackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		p.logger.Warn("paystack response unreadable", zap.String("url", req.URL.Path), zap.Error(err))
		return nil, fmt.Errorf("failed to decode paystack response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Warn("paystack request rejected",
			zap.String("url", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", body.Message),
		)
		// The envelope still carries the provider message on many 4xx replies.
		body.Status = false
		return &body, nil
	}

	return &body, nil
}

func defaultMessage(message string) string {
	if message == "" {
		return "an error occurred"
	}
	return message
}
