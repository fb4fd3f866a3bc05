package quote_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"papertrade/quote"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeAlphaVantage(t *testing.T, prices map[string]string, names map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)
		require.NotEmpty(t, r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Query().Get("function") {
		case "GLOBAL_QUOTE":
			symbol := r.URL.Query().Get("symbol")
			price, ok := prices[symbol]
			if !ok {
				// Alpha Vantage returns an empty object for unknown symbols.
				fmt.Fprint(w, `{"Global Quote": {}}`)
				return
			}
			fmt.Fprintf(w, `{"Global Quote": {"01. symbol": %q, "05. price": %q}}`, symbol, price)
		case "SYMBOL_SEARCH":
			symbol := r.URL.Query().Get("keywords")
			name, ok := names[symbol]
			if !ok {
				fmt.Fprint(w, `{"bestMatches": []}`)
				return
			}
			fmt.Fprintf(w, `{"bestMatches": [{"1. symbol": %q, "2. name": %q}]}`, symbol, name)
		default:
			t.Errorf("unexpected function %q", r.URL.Query().Get("function"))
		}
	}))
}

func TestAlphaVantageLookup(t *testing.T) {
	srv := newFakeAlphaVantage(t,
		map[string]string{"AAPL": "150.0000"},
		map[string]string{"AAPL": "Apple Inc"},
	)
	defer srv.Close()

	av := quote.NewAlphaVantage("test-key", quote.WithBaseURL(srv.URL))
	q, err := av.Lookup(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, "Apple Inc", q.Name)
	assert.True(t, q.Price.Equal(decimal.RequireFromString("150")), "price: %s", q.Price)
}

func TestAlphaVantageLookupNameFallsBackToSymbol(t *testing.T) {
	srv := newFakeAlphaVantage(t, map[string]string{"AAPL": "150.0000"}, nil)
	defer srv.Close()

	av := quote.NewAlphaVantage("test-key", quote.WithBaseURL(srv.URL))
	q, err := av.Lookup(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Name)
}

func TestAlphaVantageLookupUnknownSymbol(t *testing.T) {
	srv := newFakeAlphaVantage(t, nil, nil)
	defer srv.Close()

	av := quote.NewAlphaVantage("test-key", quote.WithBaseURL(srv.URL))
	_, err := av.Lookup(context.Background(), "NOPE")
	assert.ErrorIs(t, err, quote.ErrNotFound)
}

func TestAlphaVantageLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	av := quote.NewAlphaVantage("test-key", quote.WithBaseURL(srv.URL))
	_, err := av.Lookup(context.Background(), "AAPL")
	require.Error(t, err)
	assert.NotErrorIs(t, err, quote.ErrNotFound)
}
