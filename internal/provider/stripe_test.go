package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"unicode/utf8"

	"billgate-service/internal/domain/billing"
	xerrors "billgate-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

func stripeGateway() *billing.PaymentGateway {
	return &billing.PaymentGateway{
		ID:         1,
		Provider:   billing.ProviderStripe,
		PrivateKey: "sk_test_stripe",
		Active:     true,
	}
}

func stubStripeBackends(srv *httptest.Server) *stripe.Backends {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:           stripe.String(srv.URL),
		LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
}

func TestStripeCreateCustomer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/customers", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_stripe", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "owner@acme.test", r.PostForm.Get("email"))
		assert.Equal(t, "Ada Lovelace", r.PostForm.Get("name"))
		assert.Equal(t, "tok_visa", r.PostForm.Get("source"))

		w.Write([]byte(`{"id":"cus_123","object":"customer"}`))
	}))
	defer srv.Close()

	charger := NewStripeCharger("usd", "BillGate", 5*time.Second, stubStripeBackends(srv), zap.NewNop())

	payer := billing.Payer{Email: "owner@acme.test", Name: "Ada Lovelace"}
	customerID, err := charger.CreateCustomer(context.Background(), stripeGateway(), payer, "tok_visa")
	require.NoError(t, err)
	assert.Equal(t, "cus_123", customerID)
}

func TestStripeCreateCustomerCardDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	charger := NewStripeCharger("usd", "BillGate", 5*time.Second, stubStripeBackends(srv), zap.NewNop())

	_, err := charger.CreateCustomer(context.Background(), stripeGateway(), billing.Payer{Email: "a@b.c"}, "tok_chargeDeclined")
	assert.ErrorIs(t, err, xerrors.ErrChargeFailed)
}

func TestStripeChargeCustomer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/charges", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1000", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "cus_123", r.PostForm.Get("customer"))
		assert.Equal(t, "Pro", r.PostForm.Get("description"))
		assert.LessOrEqual(t, len(r.PostForm.Get("statement_descriptor")), statementDescriptorMax)

		w.Write([]byte(`{"id":"ch_123","object":"charge","status":"succeeded"}`))
	}))
	defer srv.Close()

	charger := NewStripeCharger("usd", "BillGate", 5*time.Second, stubStripeBackends(srv), zap.NewNop())

	chargeID, err := charger.ChargeCustomer(context.Background(), stripeGateway(), "cus_123", 10.99, "Pro", "attempt_1")
	require.NoError(t, err)
	assert.Equal(t, "ch_123", chargeID)
}

func TestStripeChargeCustomerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","code":"insufficient_funds","message":"Insufficient funds."}}`))
	}))
	defer srv.Close()

	charger := NewStripeCharger("usd", "BillGate", 5*time.Second, stubStripeBackends(srv), zap.NewNop())

	_, err := charger.ChargeCustomer(context.Background(), stripeGateway(), "cus_123", 10, "Pro", "attempt_2")
	assert.ErrorIs(t, err, xerrors.ErrChargeFailed)
}

func TestTruncateDescriptor(t *testing.T) {
	assert.Equal(t, "BillGate", truncateDescriptor("BillGate"))

	long := "A Very Long Workspace Billing Name"
	assert.Len(t, truncateDescriptor(long), statementDescriptorMax)

	// Multi-byte names truncate on rune boundaries, never mid-character.
	accented := "Fakturaavgiftstjänstenäöü ÅÄÖ"
	got := truncateDescriptor(accented)
	assert.True(t, utf8.ValidString(got))
	assert.Len(t, []rune(got), statementDescriptorMax)
}
