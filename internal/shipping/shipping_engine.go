package shipping

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// QuoteEngine keeps one shipping quote consistent with the current address
// and physical subtotal without over-calling the rate collaborator. Every
// Refresh supersedes the previous one: pending timers are stopped, in-flight
// requests are cancelled, and only the newest generation may commit.
type QuoteEngine struct {
	rates    RateClient
	logger   *zap.Logger
	debounce time.Duration

	mu         sync.Mutex
	generation uint64
	timer      *time.Timer
	cancel     context.CancelFunc
	quote      *Quote
	selectedID string
}

type EngineDeps struct {
	Rates  RateClient
	Logger *zap.Logger
	// Debounce overrides the 400ms default; tests shorten it.
	Debounce time.Duration
}

func NewQuoteEngine(deps EngineDeps) *QuoteEngine {
	if deps.Rates == nil {
		panic("rate client cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Debounce <= 0 {
		deps.Debounce = defaultDebounce
	}

	return &QuoteEngine{
		rates:    deps.Rates,
		logger:   deps.Logger,
		debounce: deps.Debounce,
	}
}

// required is the trigger condition: shipping fulfillment with at least
// one physical item, a complete address, a non-empty cart and a positive
// physical subtotal.
func required(in RefreshInput) bool {
	return in.FulfillmentShipping &&
		in.PhysicalItems > 0 &&
		in.CartSize > 0 &&
		in.PhysicalSubtotal > 0 &&
		in.Address.AddressComplete()
}

// Refresh re-evaluates the quote against a new dependency snapshot. When
// the trigger condition fails the state resets to "no quote" immediately,
// even mid-debounce, and no network call is made.
func (e *QuoteEngine) Refresh(in RefreshInput) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}

	if !required(in) {
		e.quote = nil
		e.selectedID = ""
		return
	}

	gen := e.generation
	e.timer = time.AfterFunc(e.debounce, func() {
		e.fetch(gen, in)
	})
}

func (e *QuoteEngine) fetch(gen uint64, in RefreshInput) {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.mu.Unlock()

	quote, err := e.rates.GetRates(ctx, RateRequest{
		Address:  in.Address,
		Subtotal: in.PhysicalSubtotal,
	})

	e.mu.Lock()
	defer e.mu.Unlock()

	// A newer refresh superseded this request while it was in flight.
	if gen != e.generation {
		return
	}
	e.cancel = nil

	if err != nil {
		e.logger.Warn("shipping quote fetch failed", zap.Error(err))
		e.quote = nil
		e.selectedID = ""
		return
	}

	e.quote = &quote
	if !hasOption(quote.Options, e.selectedID) {
		if len(quote.Options) > 0 {
			e.selectedID = quote.Options[0].ID
		} else {
			e.selectedID = ""
		}
	}
}

// Select changes the chosen method; the id must exist in the current list.
func (e *QuoteEngine) Select(optionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.quote == nil {
		return ErrNoQuote
	}
	if !hasOption(e.quote.Options, optionID) {
		return ErrUnknownOption
	}
	e.selectedID = optionID
	return nil
}

func (e *QuoteEngine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := EngineState{SelectedID: e.selectedID}
	if e.quote != nil {
		q := *e.quote
		state.Quote = &q
		for i := range q.Options {
			if q.Options[i].ID == e.selectedID {
				opt := q.Options[i]
				state.Selected = &opt
				break
			}
		}
	}
	return state
}

// Reset drops quote and selection and cancels anything pending.
func (e *QuoteEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.quote = nil
	e.selectedID = ""
}

func hasOption(options []Option, id string) bool {
	if id == "" {
		return false
	}
	for _, opt := range options {
		if opt.ID == id {
			return true
		}
	}
	return false
}
