package errors

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidCartID = errors.New("invalid cart id")
	ErrInvalidItem   = errors.New("invalid cart item")
	ErrItemNotFound  = errors.New("cart item not found")
)

// MapValidationError collapses validator output into ErrInvalidItem so the
// handler layer never leaks struct-tag details.
func MapValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidItem, verrs[0].Field())
	}
	return err
}
