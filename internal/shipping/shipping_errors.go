package shipping

import "errors"

var (
	ErrNoQuote       = errors.New("no shipping quote available")
	ErrUnknownOption = errors.New("unknown shipping option")
)
