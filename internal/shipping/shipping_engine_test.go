package shipping_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go-storefront-checkout/internal/customer"
	mock "go-storefront-checkout/internal/mock/shipping"
	"go-storefront-checkout/internal/shipping"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testDebounce = 30 * time.Millisecond

func completeAddress() customer.Snapshot {
	return customer.Snapshot{
		Address:    "Main Street 1",
		PostalCode: "1011AB",
		City:       "Amsterdam",
	}
}

func validRefreshInput() shipping.RefreshInput {
	return shipping.RefreshInput{
		Address:             completeAddress(),
		FulfillmentShipping: true,
		PhysicalItems:       2,
		CartSize:            2,
		PhysicalSubtotal:    45,
	}
}

func waitForQuote(t *testing.T, engine *shipping.QuoteEngine) {
	t.Helper()
	require.Eventually(t, func() bool {
		return engine.State().Quote != nil
	}, 2*time.Second, 5*time.Millisecond)
}

func TestQuoteEngine_Refresh(t *testing.T) {
	t.Run("fetches_after_debounce_and_selects_first_option", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		rates := mock.NewMockRateClient(ctrl)
		rates.EXPECT().
			GetRates(gomock.Any(), gomock.Any()).
			Return(shipping.Quote{Options: []shipping.Option{
				{ID: "standard", Amount: 4.95},
				{ID: "express", Amount: 9.95},
			}}, nil)

		engine := shipping.NewQuoteEngine(shipping.EngineDeps{Rates: rates, Debounce: testDebounce})
		engine.Refresh(validRefreshInput())

		waitForQuote(t, engine)
		state := engine.State()
		assert.Equal(t, "standard", state.SelectedID)
		require.NotNil(t, state.Selected)
		assert.Equal(t, 4.95, state.Selected.Amount)
	})

	t.Run("rapid_refreshes_collapse_into_one_call_with_latest_input", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var captured atomic.Value
		rates := mock.NewMockRateClient(ctrl)
		rates.EXPECT().
			GetRates(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req shipping.RateRequest) (shipping.Quote, error) {
				captured.Store(req)
				return shipping.Quote{Options: []shipping.Option{{ID: "standard"}}}, nil
			}).
			Times(1)

		engine := shipping.NewQuoteEngine(shipping.EngineDeps{Rates: rates, Debounce: testDebounce})

		first := validRefreshInput()
		first.PhysicalSubtotal = 10
		second := validRefreshInput()
		second.PhysicalSubtotal = 99

		engine.Refresh(first)
		engine.Refresh(second)

		waitForQuote(t, engine)
		req := captured.Load().(shipping.RateRequest)
		assert.Equal(t, 99.0, req.Subtotal)
	})

	t.Run("reset_mid_debounce_makes_no_call", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// No expectations: any GetRates call fails the test.
		rates := mock.NewMockRateClient(ctrl)
		engine := shipping.NewQuoteEngine(shipping.EngineDeps{Rates: rates, Debounce: testDebounce})

		engine.Refresh(validRefreshInput())

		pickup := validRefreshInput()
		pickup.FulfillmentShipping = false
		engine.Refresh(pickup)

		time.Sleep(4 * testDebounce)
		state := engine.State()
		assert.Nil(t, state.Quote)
		assert.Empty(t, state.SelectedID)
	})

	t.Run("skips_incomplete_address", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		rates := mock.NewMockRateClient(ctrl)
		engine := shipping.NewQuoteEngine(shipping.EngineDeps{Rates: rates, Debounce: testDebounce})

		in := validRefreshInput()
		in.Address.PostalCode = ""
		engine.Refresh(in)

		time.Sleep(4 * testDebounce)
		assert.Nil(t, engine.State().Quote)
	})

	t.Run("fetch_error_resets_state", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var calls atomic.Int32
		rates := mock.NewMockRateClient(ctrl)
		rates.EXPECT().
			GetRates(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ shipping.RateRequest) (shipping.Quote, error) {
				calls.Add(1)
				return shipping.Quote{}, assert.AnError
			})

		engine := shipping.NewQuoteEngine(shipping.EngineDeps{Rates: rates, Debounce: testDebounce})
		engine.Refresh(validRefreshInput())

		require.Eventually(t, func() bool {
			return calls.Load() == 1
		}, 2*time.Second, 5*time.Millisecond)
		assert.Nil(t, engine.State().Quote)
	})
}

func TestQuoteEngine_Select(t *testing.T) {
	t.Run("error_without_quote", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		engine := shipping.NewQuoteEngine(shipping.EngineDeps{Rates: mock.NewMockRateClient(ctrl), Debounce: testDebounce})
		assert.ErrorIs(t, engine.Select("standard"), shipping.ErrNoQuote)
	})

	t.Run("selection_survives_refresh_while_option_exists", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var calls atomic.Int32
		both := shipping.Quote{Options: []shipping.Option{{ID: "standard"}, {ID: "express"}}}
		onlyStandard := shipping.Quote{Options: []shipping.Option{{ID: "standard"}}}

		rates := mock.NewMockRateClient(ctrl)
		rates.EXPECT().
			GetRates(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ shipping.RateRequest) (shipping.Quote, error) {
				n := calls.Add(1)
				if n < 3 {
					return both, nil
				}
				return onlyStandard, nil
			}).
			Times(3)

		engine := shipping.NewQuoteEngine(shipping.EngineDeps{Rates: rates, Debounce: testDebounce})

		engine.Refresh(validRefreshInput())
		require.Eventually(t, func() bool { return calls.Load() == 1 && engine.State().Quote != nil }, 2*time.Second, 5*time.Millisecond)

		require.NoError(t, engine.Select("express"))

		engine.Refresh(validRefreshInput())
		require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
		assert.Eventually(t, func() bool {
			return engine.State().SelectedID == "express"
		}, time.Second, 5*time.Millisecond)

		// The selected method disappearing from the quote falls back to the
		// first available one.
		engine.Refresh(validRefreshInput())
		require.Eventually(t, func() bool { return calls.Load() == 3 }, 2*time.Second, 5*time.Millisecond)
		assert.Eventually(t, func() bool {
			return engine.State().SelectedID == "standard"
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("error_unknown_option", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		rates := mock.NewMockRateClient(ctrl)
		rates.EXPECT().
			GetRates(gomock.Any(), gomock.Any()).
			Return(shipping.Quote{Options: []shipping.Option{{ID: "standard"}}}, nil)

		engine := shipping.NewQuoteEngine(shipping.EngineDeps{Rates: rates, Debounce: testDebounce})
		engine.Refresh(validRefreshInput())
		waitForQuote(t, engine)

		assert.ErrorIs(t, engine.Select("drone"), shipping.ErrUnknownOption)
	})
}
