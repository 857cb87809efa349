// Package notifications publishes item lifecycle events to Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"findlost/internal/observability"

	"github.com/redis/go-redis/v9"
)

// ItemEventsChannel carries every item lifecycle event.
const ItemEventsChannel = "items:events"

// Item event types.
const (
	EventItemCreated   = "item.created"
	EventItemUpdated   = "item.updated"
	EventItemDeleted   = "item.deleted"
	EventItemRecovered = "item.recovered"
)

// ItemEvent is the payload published for an item change.
type ItemEvent struct {
	Type        string    `json:"type"`
	ItemID      string    `json:"itemId"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title,omitempty"`
	Status      string    `json:"status,omitempty"`
	RecoveredBy string    `json:"recoveredBy,omitempty"`
	At          time.Time `json:"at"`
}

// UserChannel returns the channel of a single user's notifications.
func UserChannel(userID string) string {
	return fmt.Sprintf("notifications:user:%s", userID)
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishItemEvent publishes ev on ItemEventsChannel. Recoveries are also
// sent to the item owner's channel.
func (n *Notifier) PublishItemEvent(ctx context.Context, ev ItemEvent) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	if err := n.rdb.Publish(ctx, ItemEventsChannel, payload).Err(); err != nil {
		observability.ItemEventsTotal.WithLabelValues(ev.Type, "error").Inc()
		return err
	}
	if ev.Type == EventItemRecovered && ev.UserID != "" {
		if err := n.PublishUser(ctx, ev.UserID, string(payload)); err != nil {
			observability.ItemEventsTotal.WithLabelValues(ev.Type, "error").Inc()
			return err
		}
	}
	observability.ItemEventsTotal.WithLabelValues(ev.Type, "ok").Inc()
	return nil
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID string, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}
