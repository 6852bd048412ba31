package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction types recorded in the ledger history.
const (
	TxMint     = "mint"
	TxPurchase = "purchase"
	TxTransfer = "transfer"
	TxRetire   = "retire"
)

// Transaction is one credit movement. FromAccount is nil for mints, ToAccount is nil for retirements.
type Transaction struct {
	TxID           uuid.UUID `gorm:"column:tx_id;type:uuid;primaryKey" json:"tx_id"`
	Type           string    `gorm:"column:type;type:varchar(20);not null" json:"type"`
	ProjectID      uint64    `gorm:"column:project_id;not null;index" json:"project_id"`
	FromAccount    *string   `gorm:"column:from_account;type:varchar(42);index" json:"from_account"`
	ToAccount      *string   `gorm:"column:to_account;type:varchar(42);index" json:"to_account"`
	Amount         int64     `gorm:"column:amount;not null" json:"amount"`
	RelatedOrderID *uint64   `gorm:"column:related_order_id" json:"related_order_id"`
	CreatedAt      time.Time `gorm:"column:createdAt" json:"createdAt"`
}

func (Transaction) TableName() string {
	return "Transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.TxID == uuid.Nil {
		t.TxID = uuid.New()
	}
	return nil
}
