package checkout

import (
	checkouterrors "go-storefront-checkout/internal/checkout/errors"
)

type Step string

const (
	StepInformation Step = "information"
	StepShipping    Step = "shipping"
	StepPayment     Step = "payment"
)

type Intent string

const (
	IntentNextFromInformation Intent = "next_from_information"
	IntentNextFromShipping    Intent = "next_from_shipping"
	IntentBackToInformation   Intent = "back_to_information"
	IntentBackToShipping      Intent = "back_to_shipping"
)

// TransitionContext is everything the step machine may consult. It never
// performs I/O; the caller snapshots the world into this struct.
type TransitionContext struct {
	FormComplete bool
	ItemCount    int
	// Busy mirrors an in-flight payment-session request. Forward intents
	// are dropped while it is set so a double-click cannot race the
	// session creation triggered by the first transition.
	Busy bool
}

// Transition is the pure step machine over information/shipping/payment.
// On a guard failure the current step is returned together with the
// message-key error; backward intents always succeed. The caller is
// responsible for creating a payment session after a successful transition
// into payment, and for dropping the active session when transitioning
// back to information.
func Transition(current Step, intent Intent, tc TransitionContext) (Step, error) {
	switch intent {
	case IntentNextFromInformation:
		if tc.Busy {
			return current, nil
		}
		if !tc.FormComplete {
			return current, checkouterrors.ErrCompleteRequiredFields
		}
		if tc.ItemCount == 0 {
			return current, checkouterrors.ErrCartEmpty
		}
		return StepShipping, nil

	case IntentNextFromShipping:
		if tc.Busy {
			return current, nil
		}
		if tc.ItemCount == 0 {
			return current, checkouterrors.ErrCartEmpty
		}
		return StepPayment, nil

	case IntentBackToInformation:
		return StepInformation, nil

	case IntentBackToShipping:
		return StepShipping, nil

	default:
		return current, checkouterrors.ErrUnknownIntent
	}
}
