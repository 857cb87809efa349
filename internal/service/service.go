// Package service holds the item registry, recovery recorder and user
// directory business rules.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"findlost/internal/middleware"
	"findlost/internal/models"
	"findlost/internal/notifications"
	"findlost/internal/repository"
)

// EventPublisher receives item lifecycle events. Publishing is best effort.
type EventPublisher interface {
	PublishItemEvent(ctx context.Context, ev notifications.ItemEvent) error
}

type noopPublisher struct{}

func (noopPublisher) PublishItemEvent(context.Context, notifications.ItemEvent) error { return nil }

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func publish(ctx context.Context, p EventPublisher, ev notifications.ItemEvent) {
	if err := p.PublishItemEvent(ctx, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish item event",
			slog.String("event", ev.Type),
			slog.String("item_id", ev.ItemID),
			slog.String("error", err.Error()),
		)
	}
}

// mapRepoError turns repository sentinels into API errors.
func mapRepoError(err error, resource, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return models.NewNotFoundError(resource, id)
	case errors.Is(err, repository.ErrConflict):
		return models.NewConflictError(resource + " already exists")
	default:
		return models.NewInternalError(err)
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// requiredFields collects the names whose values are blank after trimming.
type requiredFields []string

func (r *requiredFields) check(name, value string) {
	if strings.TrimSpace(value) == "" {
		*r = append(*r, name)
	}
}

func (r requiredFields) err() error {
	if len(r) == 0 {
		return nil
	}
	return models.NewMissingFieldsError(r)
}

// trimmedPtr trims a supplied value, recording name when it is blank.
func trimmedPtr(v *string, name string, blank *requiredFields) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		*blank = append(*blank, name)
	}
	return &t
}
