package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrItemsUnavailable     = errors.New("items unavailable")
	ErrInsufficientQuantity = errors.New("insufficient quantity available")
	ErrMalformedResponse    = errors.New("malformed gateway response")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
)

// UnavailableError is the 409 variant listing products the order system no
// longer carries.
type UnavailableError struct {
	Missing []string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%v: %s", ErrItemsUnavailable, strings.Join(e.Missing, ", "))
}

func (e *UnavailableError) Unwrap() error { return ErrItemsUnavailable }

// QuantityError is the 409 variant where stock exists but not enough of it.
// Message may carry a server-supplied explanation.
type QuantityError struct {
	Available int
	Requested int
	Message   string
}

func (e *QuantityError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%v: %d available, %d requested", ErrInsufficientQuantity, e.Available, e.Requested)
}

func (e *QuantityError) Unwrap() error { return ErrInsufficientQuantity }
