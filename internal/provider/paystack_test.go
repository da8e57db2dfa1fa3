package provider

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"billgate-service/internal/domain/billing"
	xerrors "billgate-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func paystackGateway() *billing.PaymentGateway {
	return &billing.PaymentGateway{
		ID:              2,
		Provider:        billing.ProviderPaystack,
		PrivateKey:      "sk_test_paystack",
		MonthlyPlanCode: sql.NullString{String: "PLN_monthly", Valid: true},
		YearlyPlanCode:  sql.NullString{String: "PLN_yearly", Valid: true},
		Active:          true,
	}
}

func testPlan() *billing.SubscriptionPlan {
	return &billing.SubscriptionPlan{ID: 1, Name: "Pro", PriceMonthly: 10, PriceYearly: 100}
}

func TestPaystackInitiate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_paystack", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "owner@acme.test", r.PostForm.Get("email"))
		assert.Equal(t, "1000", r.PostForm.Get("amount"))
		assert.Equal(t, "PLN_monthly", r.PostForm.Get("plan"))
		assert.Equal(t, "https://app.test/dashboard?payment=paystack", r.PostForm.Get("callback_url"))

		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc123","access_code":"abc123","reference":"ref_1"}}`))
	}))
	defer srv.Close()

	client := NewPaystackClient(srv.URL, 5*time.Second, zap.NewNop())

	payer := billing.Payer{Email: "owner@acme.test", Name: "Ada Lovelace"}
	authURL, err := client.Initiate(context.Background(), paystackGateway(), payer, testPlan(), billing.TermMonthly, "https://app.test/dashboard?payment=paystack")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc123", authURL)
}

func TestPaystackInitiateYearlyAmountAndPlanCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "10000", r.PostForm.Get("amount"))
		assert.Equal(t, "PLN_yearly", r.PostForm.Get("plan"))

		w.Write([]byte(`{"status":true,"message":"ok","data":{"authorization_url":"https://checkout.paystack.com/y"}}`))
	}))
	defer srv.Close()

	client := NewPaystackClient(srv.URL, 5*time.Second, zap.NewNop())

	_, err := client.Initiate(context.Background(), paystackGateway(), billing.Payer{Email: "a@b.c"}, testPlan(), billing.TermYearly, "https://app.test/cb")
	require.NoError(t, err)
}

func TestPaystackInitiateProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer srv.Close()

	client := NewPaystackClient(srv.URL, 5*time.Second, zap.NewNop())

	_, err := client.Initiate(context.Background(), paystackGateway(), billing.Payer{Email: "a@b.c"}, testPlan(), billing.TermMonthly, "https://app.test/cb")
	require.ErrorIs(t, err, xerrors.ErrInitiationFailed)
	assert.Contains(t, err.Error(), "Invalid key")
}

func TestPaystackInitiateTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewPaystackClient(srv.URL, 5*time.Second, zap.NewNop())

	_, err := client.Initiate(context.Background(), paystackGateway(), billing.Payer{Email: "a@b.c"}, testPlan(), billing.TermMonthly, "https://app.test/cb")
	require.ErrorIs(t, err, xerrors.ErrInitiationFailed)
	assert.Contains(t, err.Error(), "an error occurred")
}

func TestPaystackInitiateInvalidTerm(t *testing.T) {
	client := NewPaystackClient("http://unused.test", 5*time.Second, zap.NewNop())

	_, err := client.Initiate(context.Background(), paystackGateway(), billing.Payer{Email: "a@b.c"}, testPlan(), billing.Term("weekly"), "https://app.test/cb")
	assert.ErrorIs(t, err, xerrors.ErrInvalidTerm)
}

func TestPaystackVerifySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/ref_42", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_paystack", r.Header.Get("Authorization"))

		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"reference":"ref_42","status":"success","amount":1000}}`))
	}))
	defer srv.Close()

	client := NewPaystackClient(srv.URL, 5*time.Second, zap.NewNop())

	err := client.Verify(context.Background(), paystackGateway(), "ref_42", 10)
	assert.NoError(t, err)
}

func TestPaystackVerifyAmountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// A reference from a cheaper checkout cannot activate a pricier plan.
		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"reference":"ref_42","status":"success","amount":1000}}`))
	}))
	defer srv.Close()

	client := NewPaystackClient(srv.URL, 5*time.Second, zap.NewNop())

	err := client.Verify(context.Background(), paystackGateway(), "ref_42", 100)
	require.ErrorIs(t, err, xerrors.ErrChargeFailed)
	assert.Contains(t, err.Error(), "amount")
}

func TestPaystackVerifyAbandoned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"reference":"ref_42","status":"abandoned"}}`))
	}))
	defer srv.Close()

	client := NewPaystackClient(srv.URL, 5*time.Second, zap.NewNop())

	err := client.Verify(context.Background(), paystackGateway(), "ref_42", 10)
	require.ErrorIs(t, err, xerrors.ErrChargeFailed)
	assert.Contains(t, err.Error(), "abandoned")
}

func TestPaystackVerifyUnknownReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
	}))
	defer srv.Close()

	client := NewPaystackClient(srv.URL, 5*time.Second, zap.NewNop())

	err := client.Verify(context.Background(), paystackGateway(), "ref_missing", 10)
	require.ErrorIs(t, err, xerrors.ErrChargeFailed)
	assert.Contains(t, err.Error(), "Transaction reference not found")
}
