package ledgerevents

import (
	"context"
	"encoding/json"

	"carbon-exchange/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// Publisher fans committed events out to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
}

// Record writes one event with tx so it commits or rolls back with the change it describes.
func Record(tx *gorm.DB, eventType string, projectID, orderID *uint64, actor string, data map[string]interface{}) (domain.LedgerEvent, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return domain.LedgerEvent{}, err
	}
	ev := domain.LedgerEvent{
		EventType: eventType,
		ProjectID: projectID,
		OrderID:   orderID,
		Actor:     actor,
		EventData: datatypes.JSON(raw),
	}
	if err := tx.Create(&ev).Error; err != nil {
		return domain.LedgerEvent{}, err
	}
	return ev, nil
}

// Dispatch publishes events that have already been committed. Failures are logged only.
func Dispatch(ctx context.Context, pub Publisher, events ...domain.LedgerEvent) {
	if pub == nil {
		return
	}
	for _, ev := range events {
		if err := pub.Publish(ctx, ev); err != nil {
			log.Warn().Err(err).Str("event_type", ev.EventType).Uint64("event_seq", ev.ID).Msg("ledger event publish failed")
		}
	}
}

// Ptr is a helper for the optional project/order ids on an event.
func Ptr(id uint64) *uint64 {
	return &id
}

type Service struct {
	DB *gorm.DB
}

// Filter narrows ListEvents. Zero values mean "any".
type Filter struct {
	EventType string
	ProjectID *uint64
	OrderID   *uint64
	Actor     string
	AfterID   uint64
	Limit     int
}

// ListEvents returns events in commit order.
func (s *Service) ListEvents(ctx context.Context, f Filter) ([]domain.LedgerEvent, error) {
	q := s.DB.WithContext(ctx).Model(&domain.LedgerEvent{})
	if f.EventType != "" {
		q = q.Where("event_type = ?", f.EventType)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.OrderID != nil {
		q = q.Where("order_id = ?", *f.OrderID)
	}
	if f.Actor != "" {
		q = q.Where("actor = ?", f.Actor)
	}
	if f.AfterID > 0 {
		q = q.Where("id > ?", f.AfterID)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var events []domain.LedgerEvent
	if err := q.Order("id ASC").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
