package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SellOrder is a standing offer to sell up to Amount credits of a project at a fixed price.
type SellOrder struct {
	OrderID        uint64          `gorm:"column:order_id;primaryKey;autoIncrement" json:"order_id"`
	ProjectID      uint64          `gorm:"column:project_id;not null;index" json:"project_id"`
	Seller         string          `gorm:"column:seller;type:varchar(42);not null;index" json:"seller"`
	Amount         int64           `gorm:"column:amount;not null" json:"amount"`
	PricePerCredit decimal.Decimal `gorm:"column:price_per_credit;type:numeric(78,18);not null" json:"price_per_credit"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	CreatedAt      time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (SellOrder) TableName() string {
	return "SellOrders"
}
