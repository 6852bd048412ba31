package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Ledger event types, one per state change notification.
const (
	EventProjectRegistered    = "ProjectRegistered"
	EventProjectVerified      = "ProjectVerified"
	EventProjectDeactivated   = "ProjectDeactivated"
	EventOrderListed          = "OrderListed"
	EventOrderCancelled       = "OrderCancelled"
	EventPurchaseSettled      = "PurchaseSettled"
	EventCreditsRetired       = "CreditsRetired"
	EventCreditsTransferred   = "CreditsTransferred"
	EventPlatformFeeUpdated   = "PlatformFeeUpdated"
	EventFeesWithdrawn        = "FeesWithdrawn"
	EventOwnershipTransferred = "OwnershipTransferred"
)

// LedgerEvent is written in the same transaction as the change it describes.
// ID is monotonic so consumers can poll with after_id.
type LedgerEvent struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;uniqueIndex;not null" json:"event_id"`
	EventType string         `gorm:"column:event_type;type:varchar(40);not null;index" json:"event_type"`
	ProjectID *uint64        `gorm:"column:project_id;index" json:"project_id,omitempty"`
	OrderID   *uint64        `gorm:"column:order_id;index" json:"order_id,omitempty"`
	Actor     string         `gorm:"column:actor;type:varchar(42);not null;index" json:"actor"`
	EventData datatypes.JSON `gorm:"column:event_data;type:jsonb;not null" json:"event_data"`
	CreatedAt time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (LedgerEvent) TableName() string {
	return "LedgerEvents"
}

func (e *LedgerEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
