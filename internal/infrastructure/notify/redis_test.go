package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"carbon-exchange/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestRedisPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, "test:events")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewRedisPublisher(rdb, "test:events")
	projectID := uint64(4)
	ev := domain.LedgerEvent{
		ID:        9,
		EventType: domain.EventCreditsRetired,
		ProjectID: &projectID,
		Actor:     "0x1111111111111111111111111111111111111111",
		EventData: datatypes.JSON(`{"amount":5}`),
	}
	require.NoError(t, pub.Publish(ctx, ev))

	msg, err := sub.ReceiveTimeout(ctx, 2*time.Second)
	require.NoError(t, err)
	m, ok := msg.(*redis.Message)
	require.True(t, ok)
	assert.Equal(t, "test:events", m.Channel)

	var got domain.LedgerEvent
	require.NoError(t, json.Unmarshal([]byte(m.Payload), &got))
	assert.Equal(t, uint64(9), got.ID)
	assert.Equal(t, domain.EventCreditsRetired, got.EventType)
	require.NotNil(t, got.ProjectID)
	assert.Equal(t, uint64(4), *got.ProjectID)
}

func TestNewRedisPublisher_DefaultChannel(t *testing.T) {
	pub := NewRedisPublisher(nil, "")
	assert.Equal(t, DefaultChannel, pub.Channel)
	assert.NoError(t, pub.Publish(context.Background(), domain.LedgerEvent{}))
}
