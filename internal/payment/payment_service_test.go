package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-storefront-checkout/internal/payment"
	paymenterrors "go-storefront-checkout/internal/payment/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatewayStub(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestService_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/checkout/sessions", r.URL.Path)

			var req payment.CreateSessionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "nl", req.Locale)

			_, _ = w.Write([]byte(`{
				"clientSecret": "cs_test_123",
				"publishableKey": "pk_test_123",
				"orderId": "ord_1",
				"orderNumber": "2026-0001"
			}`))
		}))
		defer srv.Close()

		svc := payment.NewService(srv.URL, nil)
		session, err := svc.CreateSession(ctx, payment.CreateSessionRequest{Locale: "nl"})

		require.NoError(t, err)
		assert.Equal(t, "cs_test_123", session.ClientSecret)
		assert.Equal(t, "ord_1", session.OrderID)
	})

	t.Run("error_success_status_without_credentials", func(t *testing.T) {
		srv := gatewayStub(t, http.StatusOK, `{"orderId": "ord_1"}`)
		defer srv.Close()

		svc := payment.NewService(srv.URL, nil)
		_, err := svc.CreateSession(ctx, payment.CreateSessionRequest{})
		assert.ErrorIs(t, err, paymenterrors.ErrMalformedResponse)
	})

	t.Run("error_conflict_items_unavailable", func(t *testing.T) {
		srv := gatewayStub(t, http.StatusConflict, `{"missing": ["sku-1", "sku-2"]}`)
		defer srv.Close()

		svc := payment.NewService(srv.URL, nil)
		_, err := svc.CreateSession(ctx, payment.CreateSessionRequest{})

		assert.ErrorIs(t, err, paymenterrors.ErrItemsUnavailable)
		var ue *paymenterrors.UnavailableError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, []string{"sku-1", "sku-2"}, ue.Missing)
	})

	t.Run("error_conflict_insufficient_quantity", func(t *testing.T) {
		srv := gatewayStub(t, http.StatusConflict, `{"available": 1, "requested": 3, "message": "only 1 left"}`)
		defer srv.Close()

		svc := payment.NewService(srv.URL, nil)
		_, err := svc.CreateSession(ctx, payment.CreateSessionRequest{})

		assert.ErrorIs(t, err, paymenterrors.ErrInsufficientQuantity)
		var qe *paymenterrors.QuantityError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, 1, qe.Available)
		assert.Equal(t, 3, qe.Requested)
		assert.Equal(t, "only 1 left", qe.Message)
	})

	t.Run("error_conflict_with_unknown_shape", func(t *testing.T) {
		srv := gatewayStub(t, http.StatusConflict, `{"reason": "teapot"}`)
		defer srv.Close()

		svc := payment.NewService(srv.URL, nil)
		_, err := svc.CreateSession(ctx, payment.CreateSessionRequest{})
		assert.ErrorIs(t, err, paymenterrors.ErrMalformedResponse)
	})

	t.Run("error_server_failure", func(t *testing.T) {
		srv := gatewayStub(t, http.StatusInternalServerError, `{}`)
		defer srv.Close()

		svc := payment.NewService(srv.URL, nil)
		_, err := svc.CreateSession(ctx, payment.CreateSessionRequest{})
		assert.ErrorIs(t, err, paymenterrors.ErrGatewayUnavailable)
	})

	t.Run("error_unreachable_gateway", func(t *testing.T) {
		svc := payment.NewService("http://127.0.0.1:1", nil)
		_, err := svc.CreateSession(ctx, payment.CreateSessionRequest{})
		assert.ErrorIs(t, err, paymenterrors.ErrGatewayUnavailable)
	})
}

func TestService_ConfirmOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/orders/confirm", r.URL.Path)

			var req payment.ConfirmOrderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "ord_1", req.OrderID)

			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		svc := payment.NewService(srv.URL, nil)
		err := svc.ConfirmOrder(ctx, payment.ConfirmOrderRequest{OrderID: "ord_1", PaymentIntentID: "pi_1"})
		assert.NoError(t, err)
	})

	t.Run("error_status", func(t *testing.T) {
		srv := gatewayStub(t, http.StatusBadGateway, `{}`)
		defer srv.Close()

		svc := payment.NewService(srv.URL, nil)
		err := svc.ConfirmOrder(ctx, payment.ConfirmOrderRequest{OrderID: "ord_1"})
		assert.ErrorIs(t, err, paymenterrors.ErrGatewayUnavailable)
	})
}
