package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding is a user's current position in one symbol. At most one row
// exists per (user, symbol); the row is deleted outright when shares reach
// zero. No DeletedAt here: a soft-deleted row would keep occupying the
// unique index and swallow later re-buys of the symbol.
type Holding struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"uniqueIndex:idx_holdings_user_symbol;not null" json:"user_id"`
	Symbol    string    `gorm:"uniqueIndex:idx_holdings_user_symbol;size:12;not null" json:"symbol"`
	Shares    int64     `gorm:"not null" json:"shares"`
}

// Trade actions.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// Transaction is one executed trade. Rows are append-only; nothing in the
// codebase updates or deletes them.
type Transaction struct {
	gorm.Model
	UserID uint            `gorm:"index;not null" json:"user_id"`
	Symbol string          `gorm:"size:12;not null" json:"symbol"`
	Price  decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"price"`
	Shares int64           `gorm:"not null" json:"shares"`
	Action string          `gorm:"size:4;not null" json:"action"`
}
