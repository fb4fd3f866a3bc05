package ledger

import "errors"

// The closed set of errors a caller can receive. Handlers match with
// errors.Is and render a specific message per kind.
var (
	ErrInvalidSymbol      = errors.New("invalid symbol")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrStoreUnavailable   = errors.New("store unavailable")
)
