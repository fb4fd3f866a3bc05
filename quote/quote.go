package quote

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time price lookup for one trading symbol.
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// ErrNotFound is returned when the provider has no listing for a symbol.
var ErrNotFound = errors.New("symbol not found")

// Provider resolves symbols to current quotes.
type Provider interface {
	Lookup(ctx context.Context, symbol string) (*Quote, error)
}
