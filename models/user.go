package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StartingCash is credited to every account at registration.
var StartingCash = decimal.RequireFromString("10000.00")

type User struct {
	gorm.Model
	Username     string          `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string          `gorm:"not null" json:"-"`
	Cash         decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"cash"`
}
