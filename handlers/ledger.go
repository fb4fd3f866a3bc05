package handlers

import (
	"context"
	"errors"
	"net/http"

	"papertrade/ledger"
	"papertrade/middleware"
	"papertrade/models"
	"papertrade/quote"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Ledger is the slice of the ledger service the HTTP layer needs.
type Ledger interface {
	Quote(ctx context.Context, symbol string) (*quote.Quote, error)
	Buy(ctx context.Context, userID uint, symbol string, shares int64) error
	Sell(ctx context.Context, userID uint, symbol string, shares int64) error
	Deposit(ctx context.Context, userID uint, amount decimal.Decimal) error
	Portfolio(ctx context.Context, userID uint) (*ledger.PortfolioView, error)
	History(ctx context.Context, userID uint) ([]models.Transaction, error)
	Symbols(ctx context.Context, userID uint) ([]string, error)
}

type LedgerHandler struct {
	svc Ledger
}

func NewLedgerHandler(svc Ledger) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

type tradeInput struct {
	Symbol string `json:"symbol" binding:"required"`
	Shares int64  `json:"shares"`
}

type depositInput struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *LedgerHandler) GetQuote(c *gin.Context) {
	q, err := h.svc.Quote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *LedgerHandler) Buy(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)

	var input tradeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		// Covers fractional share counts too: 2.5 does not unmarshal into int64.
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol and a whole number of shares are required"})
		return
	}
	if err := h.svc.Buy(c.Request.Context(), userID, input.Symbol, input.Shares); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "shares purchased"})
}

func (h *LedgerHandler) Sell(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)

	var input tradeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol and a whole number of shares are required"})
		return
	}
	if err := h.svc.Sell(c.Request.Context(), userID, input.Symbol, input.Shares); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "shares sold"})
}

func (h *LedgerHandler) Deposit(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)

	var input depositInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a positive amount is required"})
		return
	}
	if err := h.svc.Deposit(c.Request.Context(), userID, input.Amount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deposit applied"})
}

func (h *LedgerHandler) GetPortfolio(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)

	view, err := h.svc.Portfolio(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *LedgerHandler) GetHistory(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)

	txs, err := h.svc.History(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (h *LedgerHandler) GetSymbols(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)

	symbols, err := h.svc.Symbols(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols})
}

// respondError maps the ledger error kinds onto HTTP statuses with messages
// specific enough for the UI to render directly.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a positive whole number"})
	case errors.Is(err, ledger.ErrInvalidSymbol):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol"})
	case errors.Is(err, ledger.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "not enough cash for this purchase"})
	case errors.Is(err, ledger.ErrInsufficientShares):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "not enough shares to sell"})
	case errors.Is(err, ledger.ErrStoreUnavailable):
		logrus.WithError(err).Error("ledger store unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
	default:
		logrus.WithError(err).Error("unexpected ledger error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
