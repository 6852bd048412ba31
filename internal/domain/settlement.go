package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Settlement records the money side of a purchase: what the buyer paid, the
// platform's cut and what the seller is owed.
type Settlement struct {
	SettlementID   uuid.UUID       `gorm:"column:settlement_id;type:uuid;primaryKey" json:"settlement_id"`
	OrderID        uint64          `gorm:"column:order_id;not null;index" json:"order_id"`
	ProjectID      uint64          `gorm:"column:project_id;not null" json:"project_id"`
	Buyer          string          `gorm:"column:buyer;type:varchar(42);not null;index" json:"buyer"`
	Seller         string          `gorm:"column:seller;type:varchar(42);not null;index" json:"seller"`
	Amount         int64           `gorm:"column:amount;not null" json:"amount"`
	PricePerCredit decimal.Decimal `gorm:"column:price_per_credit;type:numeric(78,18);not null" json:"price_per_credit"`
	TotalPrice     decimal.Decimal `gorm:"column:total_price;type:numeric(78,18);not null" json:"total_price"`
	Fee            decimal.Decimal `gorm:"column:fee;type:numeric(78,18);not null" json:"fee"`
	SellerProceeds decimal.Decimal `gorm:"column:seller_proceeds;type:numeric(78,18);not null" json:"seller_proceeds"`
	Payment        decimal.Decimal `gorm:"column:payment;type:numeric(78,18);not null" json:"payment"`
	Refund         decimal.Decimal `gorm:"column:refund;type:numeric(78,18);not null" json:"refund"`
	TransactionID  uuid.UUID       `gorm:"column:transaction_id;type:uuid;not null" json:"transaction_id"`
	CreatedAt      time.Time       `gorm:"column:createdAt" json:"createdAt"`
}

func (Settlement) TableName() string {
	return "Settlements"
}

func (s *Settlement) BeforeCreate(tx *gorm.DB) error {
	if s.SettlementID == uuid.Nil {
		s.SettlementID = uuid.New()
	}
	return nil
}
