package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "billgate-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{xerrors.ErrPlanNotFound, http.StatusNotFound},
		{xerrors.ErrInvalidTerm, http.StatusBadRequest},
		{xerrors.ErrPlanNotFree, http.StatusBadRequest},
		{xerrors.ErrGatewayNotConfigured, http.StatusConflict},
		{xerrors.ErrChargeFailed, http.StatusUnprocessableEntity},
		{xerrors.ErrInitiationFailed, http.StatusUnprocessableEntity},
		{xerrors.ErrUnauthorized, http.StatusUnauthorized},
		{xerrors.ErrForbidden, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
		// Wrapped sentinels map the same as bare ones.
		{fmt.Errorf("%w: card declined", xerrors.ErrChargeFailed), http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), "error %v", tc.err)
	}
}

func TestFromErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	FromError(c, "Payment failed", fmt.Errorf("%w: Your card was declined.", xerrors.ErrChargeFailed))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Payment failed", body.Message)
	assert.Contains(t, body.Error, "Your card was declined.")
}

func TestSuccessEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, 0, "Subscribed successfully!", gin.H{"plan_id": 1})

	assert.Equal(t, http.StatusOK, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Subscribed successfully!", body.Message)
	assert.Empty(t, body.Error)
}
