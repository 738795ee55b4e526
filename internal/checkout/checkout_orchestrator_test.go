package checkout_test

import (
	"context"
	"testing"
	"time"

	"go-storefront-checkout/internal/cart"
	"go-storefront-checkout/internal/checkout"
	checkouterrors "go-storefront-checkout/internal/checkout/errors"
	"go-storefront-checkout/internal/customer"
	mockpayment "go-storefront-checkout/internal/mock/payment"
	"go-storefront-checkout/internal/payment"
	paymenterrors "go-storefront-checkout/internal/payment/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func completeCustomer() customer.Snapshot {
	return customer.Snapshot{
		Email:      "jo@example.com",
		FirstName:  "Jo",
		LastName:   "Smit",
		Address:    "Main Street 1",
		PostalCode: "1011AB",
		City:       "Amsterdam",
		Phone:      "+31600000000",
	}
}

func sessionInput(fingerprint string) checkout.SessionInput {
	return checkout.SessionInput{
		Locale:      "en",
		Customer:    completeCustomer(),
		Items:       []cart.Item{{ID: "sku-1", Title: "Grinder", Quantity: 1}},
		Fingerprint: fingerprint,
	}
}

func testSession() payment.Session {
	return payment.Session{
		ClientSecret:   "cs_test",
		PublishableKey: "pk_test",
		OrderID:        "ord_1",
		OrderNumber:    "2026-0001",
	}
}

func TestOrchestrator_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("success_stores_session_for_fingerprint", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gateway := mockpayment.NewMockService(ctrl)
		gateway.EXPECT().
			CreateSession(gomock.Any(), gomock.Any()).
			Return(testSession(), nil)

		orch := checkout.NewOrchestrator(gateway, nil)
		require.NoError(t, orch.CreateSession(ctx, sessionInput("fp-1"), checkout.CreateOptions{}))

		session := orch.Session("fp-1")
		require.NotNil(t, session)
		assert.Equal(t, "cs_test", session.ClientSecret)
		assert.Nil(t, orch.Session("fp-other"))

		state := orch.State()
		assert.Empty(t, state.SubmitError)
		assert.Empty(t, state.PrefetchError)
	})

	t.Run("second_call_while_in_flight_is_noop", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		release := make(chan struct{})
		gateway := mockpayment.NewMockService(ctrl)
		gateway.EXPECT().
			CreateSession(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, payment.CreateSessionRequest) (payment.Session, error) {
				<-release
				return testSession(), nil
			}).
			Times(1)

		orch := checkout.NewOrchestrator(gateway, nil)

		done := make(chan error, 1)
		go func() {
			done <- orch.CreateSession(ctx, sessionInput("fp-1"), checkout.CreateOptions{})
		}()

		require.Eventually(t, orch.InFlight, 2*time.Second, time.Millisecond)

		// The duplicate returns immediately and never reaches the gateway.
		assert.NoError(t, orch.CreateSession(ctx, sessionInput("fp-1"), checkout.CreateOptions{}))
		assert.Nil(t, orch.Session("fp-1"))

		close(release)
		require.NoError(t, <-done)
		assert.NotNil(t, orch.Session("fp-1"))
	})

	t.Run("error_incomplete_customer_surfaces_message_key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		orch := checkout.NewOrchestrator(mockpayment.NewMockService(ctrl), nil)

		in := sessionInput("fp-1")
		in.Customer = customer.Snapshot{}
		err := orch.CreateSession(ctx, in, checkout.CreateOptions{})

		assert.ErrorIs(t, err, checkouterrors.ErrCompleteRequiredFields)
		assert.Equal(t, "completeRequiredFields", orch.State().SubmitError)
	})

	t.Run("silent_guard_failure_stays_quiet", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		orch := checkout.NewOrchestrator(mockpayment.NewMockService(ctrl), nil)

		in := sessionInput("fp-1")
		in.Items = nil
		assert.NoError(t, orch.CreateSession(ctx, in, checkout.CreateOptions{Silent: true}))

		state := orch.State()
		assert.Empty(t, state.SubmitError)
		assert.Empty(t, state.PrefetchError)
		assert.False(t, state.PrefetchAttempted)
	})

	t.Run("error_empty_cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		orch := checkout.NewOrchestrator(mockpayment.NewMockService(ctrl), nil)

		in := sessionInput("fp-1")
		in.Items = nil
		err := orch.CreateSession(ctx, in, checkout.CreateOptions{})

		assert.ErrorIs(t, err, checkouterrors.ErrCartEmpty)
		assert.Equal(t, "cartEmptyError", orch.State().SubmitError)
	})

	t.Run("silent_gateway_failure_lands_in_prefetch_slot", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gateway := mockpayment.NewMockService(ctrl)
		gateway.EXPECT().
			CreateSession(gomock.Any(), gomock.Any()).
			Return(payment.Session{}, &paymenterrors.QuantityError{Available: 1, Requested: 3, Message: "only 1 left"})

		orch := checkout.NewOrchestrator(gateway, nil)
		assert.NoError(t, orch.CreateSession(ctx, sessionInput("fp-1"),
			checkout.CreateOptions{Silent: true, AllowIncompleteForExpress: true}))

		state := orch.State()
		assert.True(t, state.PrefetchAttempted)
		assert.Equal(t, "only 1 left", state.PrefetchError)
		assert.Empty(t, state.SubmitError)
		assert.Nil(t, orch.Session("fp-1"))
	})

	t.Run("gateway_error_classification", func(t *testing.T) {
		tests := []struct {
			name    string
			err     error
			wantKey string
		}{
			{
				name:    "items_unavailable",
				err:     &paymenterrors.UnavailableError{Missing: []string{"sku-1"}},
				wantKey: "itemsUnavailable",
			},
			{
				name:    "insufficient_quantity_without_message",
				err:     &paymenterrors.QuantityError{Available: 0, Requested: 2},
				wantKey: "insufficientQuantity",
			},
			{
				name:    "anything_else_is_payment_unavailable",
				err:     paymenterrors.ErrGatewayUnavailable,
				wantKey: "paymentUnavailable",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				gateway := mockpayment.NewMockService(ctrl)
				gateway.EXPECT().
					CreateSession(gomock.Any(), gomock.Any()).
					Return(payment.Session{}, tt.err)

				orch := checkout.NewOrchestrator(gateway, nil)
				err := orch.CreateSession(ctx, sessionInput("fp-1"), checkout.CreateOptions{})

				assert.Error(t, err)
				assert.Equal(t, tt.wantKey, orch.State().SubmitError)
			})
		}
	})

	t.Run("success_clears_earlier_failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gateway := mockpayment.NewMockService(ctrl)
		gomock.InOrder(
			gateway.EXPECT().
				CreateSession(gomock.Any(), gomock.Any()).
				Return(payment.Session{}, paymenterrors.ErrGatewayUnavailable),
			gateway.EXPECT().
				CreateSession(gomock.Any(), gomock.Any()).
				Return(testSession(), nil),
		)

		orch := checkout.NewOrchestrator(gateway, nil)
		require.Error(t, orch.CreateSession(ctx, sessionInput("fp-1"), checkout.CreateOptions{}))
		assert.Equal(t, "paymentUnavailable", orch.State().SubmitError)

		require.NoError(t, orch.CreateSession(ctx, sessionInput("fp-1"), checkout.CreateOptions{}))
		assert.Empty(t, orch.State().SubmitError)
		assert.NotNil(t, orch.Session("fp-1"))
	})
}

func TestOrchestrator_MaybePrefetch(t *testing.T) {
	t.Run("attempts_once_per_fingerprint", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gateway := mockpayment.NewMockService(ctrl)
		gateway.EXPECT().
			CreateSession(gomock.Any(), gomock.Any()).
			Return(payment.Session{}, paymenterrors.ErrGatewayUnavailable).
			Times(1)

		orch := checkout.NewOrchestrator(gateway, nil)
		orch.MaybePrefetch(sessionInput("fp-1"))

		require.Eventually(t, func() bool {
			return orch.State().PrefetchError != ""
		}, 2*time.Second, time.Millisecond)

		// Same fingerprint: already burned, no second gateway call.
		orch.MaybePrefetch(sessionInput("fp-1"))
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, "paymentUnavailable", orch.State().PrefetchError)
	})

	t.Run("new_fingerprint_after_reset_speculates_again", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gateway := mockpayment.NewMockService(ctrl)
		gomock.InOrder(
			gateway.EXPECT().
				CreateSession(gomock.Any(), gomock.Any()).
				Return(payment.Session{}, paymenterrors.ErrGatewayUnavailable),
			gateway.EXPECT().
				CreateSession(gomock.Any(), gomock.Any()).
				Return(testSession(), nil),
		)

		orch := checkout.NewOrchestrator(gateway, nil)
		orch.MaybePrefetch(sessionInput("fp-1"))
		require.Eventually(t, func() bool {
			return orch.State().PrefetchError != ""
		}, 2*time.Second, time.Millisecond)

		orch.ResetForFingerprint("fp-2")
		assert.Empty(t, orch.State().PrefetchError)

		orch.MaybePrefetch(sessionInput("fp-2"))
		require.Eventually(t, func() bool {
			return orch.Session("fp-2") != nil
		}, 2*time.Second, time.Millisecond)
	})

	t.Run("skips_when_session_already_matches", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gateway := mockpayment.NewMockService(ctrl)
		gateway.EXPECT().
			CreateSession(gomock.Any(), gomock.Any()).
			Return(testSession(), nil).
			Times(1)

		orch := checkout.NewOrchestrator(gateway, nil)
		require.NoError(t, orch.CreateSession(context.Background(), sessionInput("fp-1"), checkout.CreateOptions{}))

		orch.MaybePrefetch(sessionInput("fp-1"))
		time.Sleep(50 * time.Millisecond)
		assert.NotNil(t, orch.Session("fp-1"))
	})

	t.Run("skips_empty_cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		orch := checkout.NewOrchestrator(mockpayment.NewMockService(ctrl), nil)

		in := sessionInput("fp-1")
		in.Items = nil
		orch.MaybePrefetch(in)
		time.Sleep(50 * time.Millisecond)
		assert.False(t, orch.State().PrefetchAttempted)
	})
}

func TestOrchestrator_SessionLifecycle(t *testing.T) {
	ctx := context.Background()

	newWithSession := func(t *testing.T, fingerprint string) *checkout.Orchestrator {
		t.Helper()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		gateway := mockpayment.NewMockService(ctrl)
		gateway.EXPECT().
			CreateSession(gomock.Any(), gomock.Any()).
			Return(testSession(), nil)

		orch := checkout.NewOrchestrator(gateway, nil)
		require.NoError(t, orch.CreateSession(ctx, sessionInput(fingerprint), checkout.CreateOptions{}))
		return orch
	}

	t.Run("reset_for_other_fingerprint_drops_session", func(t *testing.T) {
		orch := newWithSession(t, "fp-1")

		orch.ResetForFingerprint("fp-2")
		assert.Nil(t, orch.Session("fp-1"))
		assert.Nil(t, orch.Session("fp-2"))
	})

	t.Run("reset_for_same_fingerprint_keeps_session", func(t *testing.T) {
		orch := newWithSession(t, "fp-1")

		orch.ResetForFingerprint("fp-1")
		assert.NotNil(t, orch.Session("fp-1"))
	})

	t.Run("drop_session", func(t *testing.T) {
		orch := newWithSession(t, "fp-1")

		orch.DropSession()
		assert.Nil(t, orch.Session("fp-1"))
		assert.Empty(t, orch.State().SubmitError)
	})
}
