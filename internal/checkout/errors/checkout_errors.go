package errors

import "errors"

// The message-key errors double as the user-facing translation keys, so
// their text is part of the client contract.
var (
	ErrCompleteRequiredFields = errors.New("completeRequiredFields")
	ErrCartEmpty              = errors.New("cartEmptyError")

	ErrUnknownIntent = errors.New("unknown checkout intent")
	ErrNoSession     = errors.New("no payment session")
)
