package ledgerevents

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/pkg/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	events []domain.LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev domain.LedgerEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

const actor = "0x1111111111111111111111111111111111111111"

func TestRecord_RollsBackWithTransaction(t *testing.T) {
	db := testdb.Open(t)

	boom := errors.New("boom")
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := Record(tx, domain.EventProjectRegistered, Ptr(1), nil, actor, nil)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&domain.LedgerEvent{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRecord_StoresPayload(t *testing.T) {
	db := testdb.Open(t)

	ev, err := Record(db, domain.EventOrderListed, Ptr(3), Ptr(7), actor, map[string]interface{}{"amount": 100})
	require.NoError(t, err)
	assert.NotZero(t, ev.ID)
	assert.NotEqual(t, "", ev.EventID.String())

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(ev.EventData, &payload))
	assert.Equal(t, float64(100), payload["amount"])
}

func TestDispatch_IgnoresPublishErrors(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("redis down")}
	Dispatch(context.Background(), pub,
		domain.LedgerEvent{ID: 1, EventType: domain.EventProjectVerified},
		domain.LedgerEvent{ID: 2, EventType: domain.EventOrderCancelled},
	)
	assert.Len(t, pub.events, 2)

	Dispatch(context.Background(), nil, domain.LedgerEvent{ID: 3})
}

func TestListEvents_Filters(t *testing.T) {
	db := testdb.Open(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	other := "0x2222222222222222222222222222222222222222"
	_, err := Record(db, domain.EventProjectRegistered, Ptr(1), nil, actor, nil)
	require.NoError(t, err)
	_, err = Record(db, domain.EventOrderListed, Ptr(1), Ptr(1), actor, nil)
	require.NoError(t, err)
	_, err = Record(db, domain.EventProjectRegistered, Ptr(2), nil, other, nil)
	require.NoError(t, err)

	all, err := svc.ListEvents(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].ID < all[1].ID && all[1].ID < all[2].ID)

	byType, err := svc.ListEvents(ctx, Filter{EventType: domain.EventProjectRegistered})
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	byProject, err := svc.ListEvents(ctx, Filter{ProjectID: Ptr(1)})
	require.NoError(t, err)
	assert.Len(t, byProject, 2)

	byOrder, err := svc.ListEvents(ctx, Filter{OrderID: Ptr(1)})
	require.NoError(t, err)
	require.Len(t, byOrder, 1)
	assert.Equal(t, domain.EventOrderListed, byOrder[0].EventType)

	byActor, err := svc.ListEvents(ctx, Filter{Actor: other})
	require.NoError(t, err)
	assert.Len(t, byActor, 1)

	after, err := svc.ListEvents(ctx, Filter{AfterID: all[0].ID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, all[1].ID, after[0].ID)
}
