package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"papertrade/models"
	"papertrade/quote"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxAttempts bounds the retry loop around trade transactions.
const maxAttempts = 3

// Service owns the cash balance, holdings and transaction log. Every method
// takes the acting user explicitly; authentication happens upstream.
type Service struct {
	db     *gorm.DB
	quotes quote.Provider
}

func New(db *gorm.DB, quotes quote.Provider) *Service {
	return &Service{db: db, quotes: quotes}
}

// Position is one priced holding in a portfolio view.
type Position struct {
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name,omitempty"`
	Shares      int64           `json:"shares"`
	Price       decimal.Decimal `json:"price"`
	MarketValue decimal.Decimal `json:"market_value"`
	QuoteError  string          `json:"quote_error,omitempty"`
}

// PortfolioView is a user's cash plus priced holdings. Total excludes
// positions whose quote lookup failed; those carry a QuoteError instead.
type PortfolioView struct {
	Cash      decimal.Decimal `json:"cash"`
	Positions []Position      `json:"positions"`
	Total     decimal.Decimal `json:"total"`
}

// Quote resolves a symbol to its current price and display name. Each
// successful lookup is also recorded in the price history, best effort.
func (s *Service) Quote(ctx context.Context, symbol string) (*quote.Quote, error) {
	q, err := s.lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	entry := models.StockPrice{Symbol: q.Symbol, Price: q.Price}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		logrus.WithField("symbol", q.Symbol).WithError(err).Warn("failed to record stock price")
	}
	return q, nil
}

// Buy purchases shares at the current quoted price. Cash debit, holding
// upsert and the BUY record are committed as one transaction; the cash
// debit is conditional on the balance so two racing buys cannot overdraw.
func (s *Service) Buy(ctx context.Context, userID uint, symbol string, shares int64) error {
	if shares <= 0 {
		return ErrInvalidQuantity
	}
	q, err := s.lookup(ctx, symbol)
	if err != nil {
		return err
	}
	cost := q.Price.Mul(decimal.NewFromInt(shares))

	return s.withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.User{}).
				Where("id = ? AND cash >= ?", userID, cost).
				Update("cash", gorm.Expr("cash - ?", cost))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientFunds
			}

			holding := models.Holding{UserID: userID, Symbol: q.Symbol, Shares: shares}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "symbol"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"shares":     gorm.Expr("shares + ?", shares),
					"updated_at": time.Now(),
				}),
			}).Create(&holding).Error; err != nil {
				return err
			}

			return tx.Create(&models.Transaction{
				UserID: userID,
				Symbol: q.Symbol,
				Price:  q.Price,
				Shares: shares,
				Action: models.ActionBuy,
			}).Error
		})
	})
}

// Sell disposes of shares at the current quoted price. The holding
// decrement is conditional on the held amount; a holding that reaches zero
// is deleted so an absent row always means zero shares.
func (s *Service) Sell(ctx context.Context, userID uint, symbol string, shares int64) error {
	if shares <= 0 {
		return ErrInvalidQuantity
	}
	q, err := s.lookup(ctx, symbol)
	if err != nil {
		return err
	}
	proceeds := q.Price.Mul(decimal.NewFromInt(shares))

	return s.withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Holding{}).
				Where("user_id = ? AND symbol = ? AND shares >= ?", userID, q.Symbol, shares).
				Update("shares", gorm.Expr("shares - ?", shares))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientShares
			}
			if err := tx.Where("user_id = ? AND symbol = ? AND shares = 0", userID, q.Symbol).
				Delete(&models.Holding{}).Error; err != nil {
				return err
			}

			res = tx.Model(&models.User{}).
				Where("id = ?", userID).
				Update("cash", gorm.Expr("cash + ?", proceeds))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}

			return tx.Create(&models.Transaction{
				UserID: userID,
				Symbol: q.Symbol,
				Price:  q.Price,
				Shares: shares,
				Action: models.ActionSell,
			}).Error
		})
	})
}

// Deposit credits cash. Deposits are not trades and do not appear in the
// transaction log.
func (s *Service) Deposit(ctx context.Context, userID uint, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidQuantity
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("cash", gorm.Expr("cash + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d not found", ErrStoreUnavailable, userID)
	}
	return nil
}

// Portfolio prices every holding at its current quote. A failed lookup for
// one symbol marks that position instead of failing the whole listing.
func (s *Service) Portfolio(ctx context.Context, userID uint) (*PortfolioView, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var holdings []models.Holding
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND shares > 0", userID).
		Order("symbol asc").
		Find(&holdings).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	view := &PortfolioView{
		Cash:      user.Cash,
		Positions: make([]Position, 0, len(holdings)),
		Total:     user.Cash,
	}
	for _, h := range holdings {
		pos := Position{Symbol: h.Symbol, Shares: h.Shares}
		q, err := s.quotes.Lookup(ctx, h.Symbol)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"symbol":  h.Symbol,
			}).WithError(err).Warn("portfolio quote failed")
			pos.QuoteError = "quote unavailable"
		} else {
			pos.Name = q.Name
			pos.Price = q.Price
			pos.MarketValue = q.Price.Mul(decimal.NewFromInt(h.Shares))
			view.Total = view.Total.Add(pos.MarketValue)
		}
		view.Positions = append(view.Positions, pos)
	}
	return view, nil
}

// History returns the user's trades oldest first.
func (s *Service) History(ctx context.Context, userID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return txs, nil
}

// Symbols lists the symbols the user currently holds, for the sell form.
func (s *Service) Symbols(ctx context.Context, userID uint) ([]string, error) {
	var symbols []string
	if err := s.db.WithContext(ctx).Model(&models.Holding{}).
		Where("user_id = ? AND shares > 0", userID).
		Order("symbol asc").
		Pluck("symbol", &symbols).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return symbols, nil
}

// lookup normalizes the symbol and maps provider results onto the ledger
// error set.
func (s *Service) lookup(ctx context.Context, symbol string) (*quote.Quote, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return nil, ErrInvalidSymbol
	}
	q, err := s.quotes.Lookup(ctx, sym)
	if errors.Is(err, quote.ErrNotFound) {
		return nil, ErrInvalidSymbol
	}
	if err != nil {
		return nil, fmt.Errorf("%w: quote lookup: %v", ErrStoreUnavailable, err)
	}
	return q, nil
}

// withRetry re-runs fn on store-level failures up to maxAttempts. Domain
// errors pass straight through.
func (s *Service) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || isDomainErr(err) {
			return err
		}
		logrus.WithField("attempt", attempt).WithError(err).Warn("trade transaction failed")
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, ctx.Err())
		case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func isDomainErr(err error) bool {
	return errors.Is(err, ErrInvalidSymbol) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInsufficientShares)
}
