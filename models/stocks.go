package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockPrice records one observed quote. Written best-effort on every
// successful quote lookup; CreatedAt is the observation time.
type StockPrice struct {
	gorm.Model
	Symbol string          `gorm:"index;size:12;not null" json:"symbol"`
	Price  decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"price"`
}
