package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilClientIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishItemEvent(context.Background(), ItemEvent{Type: EventItemCreated}))
	assert.NoError(t, n.PublishUser(context.Background(), "u1", "payload"))

	var none *Notifier
	assert.NoError(t, none.PublishItemEvent(context.Background(), ItemEvent{Type: EventItemCreated}))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:u1", UserChannel("u1"))
}

func TestNotifier_PublishItemEvent(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, ItemEventsChannel, UserChannel("u1"))
	defer func() { _ = sub.Close() }()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)
	msgs := sub.Channel()

	n := NewNotifier(rdb)
	require.NoError(t, n.PublishItemEvent(ctx, ItemEvent{
		Type:        EventItemRecovered,
		ItemID:      "i1",
		UserID:      "u1",
		RecoveredBy: "u2",
	}))

	got := map[string]ItemEvent{}
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case msg := <-msgs:
			var ev ItemEvent
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
			got[msg.Channel] = ev
		case <-timeout:
			t.Fatalf("received %d of 2 messages", len(got))
		}
	}

	assert.Equal(t, "i1", got[ItemEventsChannel].ItemID)
	assert.Equal(t, "u2", got[UserChannel("u1")].RecoveredBy)
	assert.False(t, got[ItemEventsChannel].At.IsZero())
}

func TestConnect(t *testing.T) {
	assert.Nil(t, Connect(""))
	assert.Nil(t, Connect("redis://%zz"))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c := Connect(mr.Addr())
	require.NotNil(t, c)
	defer func() { _ = c.Close() }()
	assert.NoError(t, c.Ping(context.Background()).Err())

	url := Connect("redis://" + mr.Addr() + "/0")
	require.NotNil(t, url)
	_ = url.Close()
}
