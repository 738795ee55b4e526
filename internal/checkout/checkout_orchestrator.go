package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-storefront-checkout/internal/cart"
	checkouterrors "go-storefront-checkout/internal/checkout/errors"
	"go-storefront-checkout/internal/customer"
	"go-storefront-checkout/internal/payment"
	paymenterrors "go-storefront-checkout/internal/payment/errors"

	"go.uber.org/zap"
)

// User-facing message keys. Raw gateway detail never leaves this package.
const (
	msgCompleteRequiredFields = "completeRequiredFields"
	msgCartEmpty              = "cartEmptyError"
	msgItemsUnavailable       = "itemsUnavailable"
	msgInsufficientQuantity   = "insufficientQuantity"
	msgPaymentUnavailable     = "paymentUnavailable"
)

const prefetchTimeout = 20 * time.Second

type CreateOptions struct {
	// Silent routes failures into the prefetch slot instead of surfacing
	// them, so a failed background attempt never poisons an explicit retry.
	Silent bool
	// AllowIncompleteForExpress skips the form-completeness guard for the
	// speculative express path.
	AllowIncompleteForExpress bool
}

// SessionInput is the cart/customer snapshot a session is created from.
type SessionInput struct {
	Locale           string
	Customer         customer.Snapshot
	Items            []cart.Item
	ShippingOptionID string
	FulfillmentMode  string
	AppointmentMode  string
	RequestedDate    string
	RequestedTime    string
	Fingerprint      string
}

// Orchestrator owns at most one valid gateway session per cart snapshot.
// A boolean in-flight guard serializes creation: a second call while one
// is pending is a no-op rather than a race, which is what prevents
// duplicate sessions (and duplicate charges) under rapid edits.
type Orchestrator struct {
	gateway payment.Service
	logger  *zap.Logger

	mu                 sync.Mutex
	inFlight           bool
	session            *payment.Session
	sessionFingerprint string
	prefetchedFor      string
	prefetchErr        string
	submitErr          string
}

func NewOrchestrator(gateway payment.Service, logger *zap.Logger) *Orchestrator {
	if gateway == nil {
		panic("payment service cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{gateway: gateway, logger: logger}
}

// CreateSession runs the guarded creation flow. While a request is already
// in flight the call is a no-op: stored session and errors stay untouched.
func (o *Orchestrator) CreateSession(ctx context.Context, in SessionInput, opts CreateOptions) error {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil
	}

	if !opts.AllowIncompleteForExpress && !in.Customer.Complete() {
		if opts.Silent {
			o.mu.Unlock()
			return nil
		}
		o.submitErr = msgCompleteRequiredFields
		o.mu.Unlock()
		return checkouterrors.ErrCompleteRequiredFields
	}

	if len(in.Items) == 0 {
		if opts.Silent {
			o.mu.Unlock()
			return nil
		}
		o.submitErr = msgCartEmpty
		o.mu.Unlock()
		return checkouterrors.ErrCartEmpty
	}

	o.inFlight = true
	if opts.Silent {
		// One speculative attempt per fingerprint, success or not.
		o.prefetchedFor = in.Fingerprint
	}
	o.mu.Unlock()

	session, err := o.gateway.CreateSession(ctx, payment.CreateSessionRequest{
		Locale:                 in.Locale,
		Customer:               in.Customer,
		Items:                  in.Items,
		ShippingOptionID:       in.ShippingOptionID,
		ProductFulfillmentMode: in.FulfillmentMode,
		ServiceAppointmentMode: in.AppointmentMode,
		ServiceRequestedDate:   in.RequestedDate,
		ServiceRequestedTime:   in.RequestedTime,
	})

	o.mu.Lock()
	defer o.mu.Unlock()
	o.inFlight = false

	if err != nil {
		key := classifyGatewayError(err)
		if opts.Silent {
			o.prefetchErr = key
			o.logger.Debug("speculative session creation failed",
				zap.String("fingerprint", in.Fingerprint), zap.Error(err))
			return nil
		}
		o.submitErr = key
		return err
	}

	o.session = &session
	o.sessionFingerprint = in.Fingerprint
	o.submitErr = ""
	o.prefetchErr = ""
	return nil
}

// MaybePrefetch launches the speculative express path: non-blocking, silent
// and at most once per fingerprint. The caller gates on the current step.
func (o *Orchestrator) MaybePrefetch(in SessionInput) {
	o.mu.Lock()
	skip := len(in.Items) == 0 ||
		o.inFlight ||
		o.prefetchedFor == in.Fingerprint ||
		(o.session != nil && o.sessionFingerprint == in.Fingerprint)
	o.mu.Unlock()
	if skip {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), prefetchTimeout)
		defer cancel()
		_ = o.CreateSession(ctx, in, CreateOptions{Silent: true, AllowIncompleteForExpress: true})
	}()
}

// ResetForFingerprint invalidates whatever was built from a different
// snapshot: the session is discarded and the prefetch slate wiped, so the
// next cart settle may speculate again.
func (o *Orchestrator) ResetForFingerprint(fingerprint string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.sessionFingerprint != "" && o.sessionFingerprint != fingerprint {
		o.session = nil
		o.sessionFingerprint = ""
	}
	if o.prefetchedFor != "" && o.prefetchedFor != fingerprint {
		o.prefetchedFor = ""
		o.prefetchErr = ""
	}
}

// DropSession discards the active session; used when checkout returns to
// the information step.
func (o *Orchestrator) DropSession() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.session = nil
	o.sessionFingerprint = ""
	o.submitErr = ""
}

// Session returns the active session iff it still matches the fingerprint.
func (o *Orchestrator) Session(fingerprint string) *payment.Session {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil || o.sessionFingerprint != fingerprint {
		return nil
	}
	s := *o.session
	return &s
}

func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

type OrchestratorState struct {
	InFlight          bool
	PrefetchAttempted bool
	PrefetchError     string
	SubmitError       string
	Session           *payment.Session
}

func (o *Orchestrator) State() OrchestratorState {
	o.mu.Lock()
	defer o.mu.Unlock()

	state := OrchestratorState{
		InFlight:          o.inFlight,
		PrefetchAttempted: o.prefetchedFor != "",
		PrefetchError:     o.prefetchErr,
		SubmitError:       o.submitErr,
	}
	if o.session != nil {
		s := *o.session
		state.Session = &s
	}
	return state
}

func classifyGatewayError(err error) string {
	var qe *paymenterrors.QuantityError
	switch {
	case errors.As(err, &qe):
		if qe.Message != "" {
			return qe.Message
		}
		return msgInsufficientQuantity
	case errors.Is(err, paymenterrors.ErrItemsUnavailable):
		return msgItemsUnavailable
	default:
		return msgPaymentUnavailable
	}
}
