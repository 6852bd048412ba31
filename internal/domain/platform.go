package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlatformStateID is the primary key of the single PlatformState row.
const PlatformStateID = 1

// MaxBasisPoints is 100%.
const MaxBasisPoints = 10000

// PlatformState holds exchange-wide settings and counters.
type PlatformState struct {
	ID              uint            `gorm:"column:id;primaryKey" json:"-"`
	OwnerAddress    string          `gorm:"column:owner_address;type:varchar(42);not null" json:"owner_address"`
	FeeBps          int             `gorm:"column:fee_bps;not null" json:"fee_bps"`
	FeeCapBps       int             `gorm:"column:fee_cap_bps;not null" json:"fee_cap_bps"`
	AccumulatedFees decimal.Decimal `gorm:"column:accumulated_fees;type:numeric(78,18);not null" json:"accumulated_fees"`
	TotalRetired    int64           `gorm:"column:total_retired;not null;default:0" json:"total_retired"`
	CreatedAt       time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (PlatformState) TableName() string {
	return "PlatformState"
}

// FeeWithdrawal records the owner sweeping accumulated fees.
type FeeWithdrawal struct {
	WithdrawalID uuid.UUID       `gorm:"column:withdrawal_id;type:uuid;primaryKey" json:"withdrawal_id"`
	Recipient    string          `gorm:"column:recipient;type:varchar(42);not null" json:"recipient"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric(78,18);not null" json:"amount"`
	CreatedAt    time.Time       `gorm:"column:createdAt" json:"createdAt"`
}

func (FeeWithdrawal) TableName() string {
	return "FeeWithdrawals"
}

func (w *FeeWithdrawal) BeforeCreate(tx *gorm.DB) error {
	if w.WithdrawalID == uuid.Nil {
		w.WithdrawalID = uuid.New()
	}
	return nil
}
