package quote

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://www.alphavantage.co"

type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol string `json:"01. symbol"`
		Price  string `json:"05. price"`
	} `json:"Global Quote"`
}

type symbolSearchResponse struct {
	BestMatches []struct {
		Symbol string `json:"1. symbol"`
		Name   string `json:"2. name"`
	} `json:"bestMatches"`
}

// AlphaVantage looks up quotes against the Alpha Vantage REST API.
type AlphaVantage struct {
	client *resty.Client
	apiKey string
}

type Option func(*AlphaVantage)

// WithBaseURL overrides the API endpoint, for tests.
func WithBaseURL(url string) Option {
	return func(a *AlphaVantage) { a.client.SetBaseURL(url) }
}

func NewAlphaVantage(apiKey string, opts ...Option) *AlphaVantage {
	a := &AlphaVantage{
		client: resty.New().SetBaseURL(defaultBaseURL),
		apiKey: apiKey,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *AlphaVantage) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	var gq globalQuoteResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function": "GLOBAL_QUOTE",
			"symbol":   symbol,
			"apikey":   a.apiKey,
		}).
		SetResult(&gq).
		Get("/query")
	if err != nil {
		return nil, fmt.Errorf("alphavantage request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("alphavantage status %s", resp.Status())
	}
	if gq.GlobalQuote.Price == "" {
		return nil, ErrNotFound
	}

	price, err := decimal.NewFromString(gq.GlobalQuote.Price)
	if err != nil {
		return nil, fmt.Errorf("alphavantage price %q: %w", gq.GlobalQuote.Price, err)
	}

	q := &Quote{Symbol: symbol, Name: symbol, Price: price}
	if gq.GlobalQuote.Symbol != "" {
		q.Symbol = gq.GlobalQuote.Symbol
	}
	if name := a.displayName(ctx, q.Symbol); name != "" {
		q.Name = name
	}
	return q, nil
}

// displayName resolves the company name via SYMBOL_SEARCH. Best effort: the
// quote is still usable with the symbol as its name.
func (a *AlphaVantage) displayName(ctx context.Context, symbol string) string {
	var sr symbolSearchResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function": "SYMBOL_SEARCH",
			"keywords": symbol,
			"apikey":   a.apiKey,
		}).
		SetResult(&sr).
		Get("/query")
	if err != nil || resp.IsError() {
		logrus.WithField("symbol", symbol).WithError(err).Debug("symbol search failed")
		return ""
	}
	for _, m := range sr.BestMatches {
		if m.Symbol == symbol {
			return m.Name
		}
	}
	return ""
}
