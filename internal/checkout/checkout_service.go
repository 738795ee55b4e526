package checkout

import (
	"context"
	"sync"
	"time"

	"go-storefront-checkout/internal/cart"
	checkouterrors "go-storefront-checkout/internal/checkout/errors"
	"go-storefront-checkout/internal/customer"
	"go-storefront-checkout/internal/messaging/kafka/producer"
	"go-storefront-checkout/internal/payment"
	"go-storefront-checkout/internal/recommend"
	"go-storefront-checkout/internal/shipping"

	carterrors "go-storefront-checkout/internal/cart/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const defaultLocale = "en"

// Manager drives one checkout flow per cart: step state, customer
// snapshot, payment-session orchestration and shipping quotes. It reacts
// to cart mutations through the store's change notifications, so rapid
// edits from any surface keep session and quote state consistent.
type Manager struct {
	store     *cart.Store
	gateway   payment.Service
	rates     shipping.RateClient
	recommend recommend.Service
	writer    *kafka.Writer
	logger    *zap.Logger
	validate  *validator.Validate
	threshold float64
	debounce  time.Duration

	mu       sync.Mutex
	sessions map[string]*flow
}

type ManagerDeps struct {
	Store   *cart.Store
	Gateway payment.Service
	Rates   shipping.RateClient
	// Recommend and Writer are optional collaborators.
	Recommend             recommend.Service
	Writer                *kafka.Writer
	Logger                *zap.Logger
	FreeShippingThreshold float64
	QuoteDebounce         time.Duration
}

// flow is the per-cart checkout state. Checkout is process-local: it
// always starts over at the information step when re-entered.
type flow struct {
	mu              sync.Mutex
	cartID          string
	step            Step
	locale          string
	customer        customer.Snapshot
	fulfillmentMode string
	appointmentMode string
	requestedDate   string
	requestedTime   string

	orch        *Orchestrator
	quotes      *shipping.QuoteEngine
	unsubscribe func()
}

func NewManager(deps ManagerDeps) *Manager {
	if deps.Store == nil {
		panic("cart store cannot be nil")
	}
	if deps.Gateway == nil {
		panic("payment service cannot be nil")
	}
	if deps.Rates == nil {
		panic("rate client cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Manager{
		store:     deps.Store,
		gateway:   deps.Gateway,
		rates:     deps.Rates,
		recommend: deps.Recommend,
		writer:    deps.Writer,
		logger:    deps.Logger,
		validate:  validator.New(),
		threshold: deps.FreeShippingThreshold,
		debounce:  deps.QuoteDebounce,
		sessions:  make(map[string]*flow),
	}
}

// ========================
// flow lifecycle
// ========================

func (m *Manager) flowFor(cartID string) (*flow, error) {
	if _, err := uuid.Parse(cartID); err != nil {
		return nil, carterrors.ErrInvalidCartID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.sessions[cartID]; ok {
		return f, nil
	}

	f := &flow{
		cartID:          cartID,
		step:            StepInformation,
		locale:          defaultLocale,
		fulfillmentMode: FulfillmentShipping,
		appointmentMode: AppointmentRequested,
		orch:            NewOrchestrator(m.gateway, m.logger),
		quotes: shipping.NewQuoteEngine(shipping.EngineDeps{
			Rates:    m.rates,
			Logger:   m.logger,
			Debounce: m.debounce,
		}),
	}
	f.unsubscribe = m.store.Subscribe(cartID, f.onCartChanged)
	m.sessions[cartID] = f
	return f, nil
}

// onCartChanged is the reactive heart of the engine: every mutation
// re-fingerprints the cart, invalidates stale session state, speculates a
// new express session while still on the information step, and re-keys the
// shipping quote.
func (f *flow) onCartChanged(items []cart.Item) {
	f.mu.Lock()
	fp := Fingerprint(items, f.locale)
	step := f.step
	in := f.sessionInputLocked(items, fp)
	ri := f.refreshInputLocked(items)
	f.mu.Unlock()

	f.orch.ResetForFingerprint(fp)
	if step == StepInformation {
		f.orch.MaybePrefetch(in)
	}
	f.quotes.Refresh(ri)
}

// callers hold f.mu
func (f *flow) sessionInputLocked(items []cart.Item, fingerprint string) SessionInput {
	return SessionInput{
		Locale:           f.locale,
		Customer:         f.customer,
		Items:            items,
		ShippingOptionID: f.quotes.State().SelectedID,
		FulfillmentMode:  f.fulfillmentMode,
		AppointmentMode:  f.appointmentMode,
		RequestedDate:    f.requestedDate,
		RequestedTime:    f.requestedTime,
		Fingerprint:      fingerprint,
	}
}

// callers hold f.mu
func (f *flow) refreshInputLocked(items []cart.Item) shipping.RefreshInput {
	return shipping.RefreshInput{
		Address:             f.customer,
		FulfillmentShipping: f.fulfillmentMode == FulfillmentShipping,
		PhysicalItems:       cart.PhysicalItemCount(items),
		CartSize:            len(items),
		PhysicalSubtotal:    cart.PhysicalSubtotal(items),
	}
}

func (f *flow) setLocale(locale string, items []cart.Item) {
	f.mu.Lock()
	if locale == "" || locale == f.locale {
		f.mu.Unlock()
		return
	}
	f.locale = locale
	fp := Fingerprint(items, locale)
	step := f.step
	in := f.sessionInputLocked(items, fp)
	f.mu.Unlock()

	f.orch.ResetForFingerprint(fp)
	if step == StepInformation {
		f.orch.MaybePrefetch(in)
	}
}

func (m *Manager) snapshot(ctx context.Context, cartID, locale string) (*flow, []cart.Item, error) {
	f, err := m.flowFor(cartID)
	if err != nil {
		return nil, nil, err
	}
	items, err := m.store.Read(ctx, cartID)
	if err != nil {
		return nil, nil, err
	}
	f.setLocale(locale, items)
	return f, items, nil
}

// ========================
// operations
// ========================

func (m *Manager) State(ctx context.Context, cartID, locale string) (StateResponse, error) {
	f, items, err := m.snapshot(ctx, cartID, locale)
	if err != nil {
		return StateResponse{}, err
	}

	// Entering checkout on the information step is a fresh chance to
	// speculate an express session.
	f.mu.Lock()
	fp := Fingerprint(items, f.locale)
	step := f.step
	in := f.sessionInputLocked(items, fp)
	f.mu.Unlock()
	if step == StepInformation {
		f.orch.MaybePrefetch(in)
	}

	return m.buildState(f, items), nil
}

func (m *Manager) UpdateCustomer(ctx context.Context, cartID, locale string, req UpdateCustomerRequest) (StateResponse, error) {
	if err := m.validate.Struct(req.Customer); err != nil {
		return StateResponse{}, carterrors.MapValidationError(err)
	}

	f, items, err := m.snapshot(ctx, cartID, locale)
	if err != nil {
		return StateResponse{}, err
	}

	f.mu.Lock()
	f.customer = req.Customer
	ri := f.refreshInputLocked(items)
	f.mu.Unlock()

	f.quotes.Refresh(ri)
	return m.buildState(f, items), nil
}

func (m *Manager) UpdateOptions(ctx context.Context, cartID, locale string, req UpdateOptionsRequest) (StateResponse, error) {
	if err := m.validate.Struct(req); err != nil {
		return StateResponse{}, carterrors.MapValidationError(err)
	}

	f, items, err := m.snapshot(ctx, cartID, locale)
	if err != nil {
		return StateResponse{}, err
	}

	f.mu.Lock()
	if req.FulfillmentMode != "" {
		f.fulfillmentMode = req.FulfillmentMode
	}
	if req.AppointmentMode != "" {
		f.appointmentMode = req.AppointmentMode
	}
	f.requestedDate = req.RequestedDate
	f.requestedTime = req.RequestedTime
	ri := f.refreshInputLocked(items)
	f.mu.Unlock()

	f.quotes.Refresh(ri)
	return m.buildState(f, items), nil
}

// Apply executes a step intent. Transition errors come back alongside the
// unchanged state; a failed session creation on entering the payment step
// stays on the payment step with the failure surfaced in the state.
func (m *Manager) Apply(ctx context.Context, cartID, locale string, intent Intent) (StateResponse, error) {
	f, items, err := m.snapshot(ctx, cartID, locale)
	if err != nil {
		return StateResponse{}, err
	}

	f.mu.Lock()
	tc := TransitionContext{
		FormComplete: f.customer.Complete(),
		ItemCount:    cart.ItemCount(items),
		Busy:         f.orch.InFlight(),
	}
	prev := f.step
	next, terr := Transition(f.step, intent, tc)
	f.step = next
	fp := Fingerprint(items, f.locale)
	in := f.sessionInputLocked(items, fp)
	f.mu.Unlock()

	if terr != nil {
		return m.buildState(f, items), terr
	}

	if next == StepPayment && prev != StepPayment {
		// Error is surfaced through the state; the user stays on the
		// payment step and retries explicitly.
		if err := f.orch.CreateSession(ctx, in, CreateOptions{}); err != nil {
			m.logger.Warn("session creation on payment entry failed",
				zap.String("cart_id", cartID), zap.Error(err))
		}
	}
	if next == StepInformation && prev != StepInformation {
		f.orch.DropSession()
	}

	return m.buildState(f, items), nil
}

// CreateSession is the explicit, non-silent path: guards surface their
// message keys and gateway failures are returned for status mapping.
func (m *Manager) CreateSession(ctx context.Context, cartID, locale string) (StateResponse, error) {
	f, items, err := m.snapshot(ctx, cartID, locale)
	if err != nil {
		return StateResponse{}, err
	}

	f.mu.Lock()
	fp := Fingerprint(items, f.locale)
	in := f.sessionInputLocked(items, fp)
	f.mu.Unlock()

	err = f.orch.CreateSession(ctx, in, CreateOptions{})
	return m.buildState(f, items), err
}

func (m *Manager) SelectShippingOption(ctx context.Context, cartID, locale, optionID string) (StateResponse, error) {
	f, items, err := m.snapshot(ctx, cartID, locale)
	if err != nil {
		return StateResponse{}, err
	}

	if err := f.quotes.Select(optionID); err != nil {
		return StateResponse{}, err
	}
	return m.buildState(f, items), nil
}

// Complete finishes the flow after gateway-side success: best-effort order
// confirmation, cart clear, event publication, state reset.
func (m *Manager) Complete(ctx context.Context, cartID, locale string, req CompleteRequest) (CompleteResponse, error) {
	f, items, err := m.snapshot(ctx, cartID, locale)
	if err != nil {
		return CompleteResponse{}, err
	}

	f.mu.Lock()
	fp := Fingerprint(items, f.locale)
	loc := f.locale
	f.mu.Unlock()

	session := f.orch.Session(fp)
	if session == nil {
		return CompleteResponse{}, checkouterrors.ErrNoSession
	}

	logger := m.logger.With(
		zap.String("cart_id", cartID),
		zap.String("order_id", session.OrderID),
	)

	// Confirmation is best effort; a server-side fallback reconciles
	// missed calls.
	if err := m.gateway.ConfirmOrder(ctx, payment.ConfirmOrderRequest{
		OrderID:         session.OrderID,
		PaymentIntentID: req.PaymentIntentID,
		Locale:          loc,
	}); err != nil {
		logger.Warn("order confirmation failed", zap.Error(err))
	}

	if err := m.store.Clear(ctx, cartID); err != nil {
		return CompleteResponse{}, err
	}

	f.mu.Lock()
	f.step = StepInformation
	f.mu.Unlock()
	f.orch.DropSession()
	f.quotes.Reset()

	if m.writer != nil {
		event := producer.OrderCompletedEvent{
			EventID:     uuid.New(),
			CartID:      cartID,
			OrderID:     session.OrderID,
			OrderNumber: session.OrderNumber,
			Locale:      loc,
			CompletedAt: time.Now().UTC(),
		}
		if err := producer.PublishOrderCompleted(ctx, m.writer, event); err != nil {
			logger.Warn("order completed event not published", zap.Error(err))
		}
	}

	logger.Info("checkout completed")
	return CompleteResponse{
		OrderID:     session.OrderID,
		OrderNumber: session.OrderNumber,
	}, nil
}

// Recommendation fetches one upsell suggestion seeded from the newest
// cart line. Absence of a suggestion is not an error.
func (m *Manager) Recommendation(ctx context.Context, cartID string) (*recommend.Suggestion, error) {
	if m.recommend == nil {
		return nil, nil
	}

	items, err := m.store.Read(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	seed := items[len(items)-1]
	suggestion, err := m.recommend.Fetch(ctx, seed.ID, seed.Slug)
	if err != nil {
		// Upsell is decoration; failures never reach the user.
		m.logger.Debug("recommendation fetch failed",
			zap.String("cart_id", cartID), zap.Error(err))
		return nil, nil
	}
	return suggestion, nil
}

// ========================
// state assembly
// ========================

func (m *Manager) buildState(f *flow, items []cart.Item) StateResponse {
	f.mu.Lock()
	resp := StateResponse{
		Step:                 string(f.step),
		Locale:               f.locale,
		Customer:             f.customer,
		FulfillmentMode:      f.fulfillmentMode,
		AppointmentMode:      f.appointmentMode,
		ServiceRequestedDate: f.requestedDate,
		ServiceRequestedTime: f.requestedTime,
	}
	fp := Fingerprint(items, f.locale)
	shippingFulfillment := f.fulfillmentMode == FulfillmentShipping
	f.mu.Unlock()

	resp.Items = items
	resp.ItemCount = cart.ItemCount(items)
	resp.Subtotal = cart.Subtotal(items)
	resp.Fingerprint = fp

	orchState := f.orch.State()
	resp.SessionInFlight = orchState.InFlight
	resp.PrefetchAttempted = orchState.PrefetchAttempted
	resp.PrefetchError = orchState.PrefetchError
	resp.Error = orchState.SubmitError
	resp.Session = f.orch.Session(fp)

	resp.Shipping = f.quotes.State()

	if shippingFulfillment && m.threshold > 0 {
		physical := cart.PhysicalSubtotal(items)
		remaining, percent := shipping.FreeShippingProgress(physical, m.threshold)
		resp.FreeShipping = &cart.FreeShippingStatus{
			Threshold: m.threshold,
			Remaining: remaining,
			Percent:   percent,
			Unlocked:  remaining == 0,
		}
	}

	return resp
}
