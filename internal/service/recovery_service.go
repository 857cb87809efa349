package service

import (
	"context"
	"errors"
	"strings"

	"findlost/internal/auth"
	"findlost/internal/models"
	"findlost/internal/notifications"
	"findlost/internal/observability"
	"findlost/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type RecoveryService struct {
	recoveries repository.RecoveryRepository
	items      repository.ItemRepository
	events     EventPublisher
}

type RecordRecoveryInput struct {
	ItemID   string
	UserID   string
	Name     string
	Email    string
	Photo    string
	Location string
}

func NewRecoveryService(
	recoveries repository.RecoveryRepository,
	items repository.ItemRepository,
	events EventPublisher,
) *RecoveryService {
	return &RecoveryService{
		recoveries: recoveries,
		items:      items,
		events:     publisherOrNoop(events),
	}
}

// ListRecoveries lists recoveries, narrowed to one recoverer when email is
// set. Narrowing needs a requester whose verified email matches.
func (s *RecoveryService) ListRecoveries(ctx context.Context, email string, requester *auth.Identity) ([]models.RecoveredItem, error) {
	email = normalizeEmail(email)
	if email != "" {
		if requester == nil {
			return nil, models.NewUnauthorizedError("Authorization required")
		}
		if requester.Email != email {
			return nil, models.NewForbiddenError("You can only list your own recoveries")
		}
	}

	recs, err := s.recoveries.List(ctx, email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return recs, nil
}

// RecordRecovery marks the item recovered and stores who recovered it. Of
// concurrent calls for one item exactly one succeeds; the rest get a conflict.
func (s *RecoveryService) RecordRecovery(ctx context.Context, in RecordRecoveryInput) (rec *models.RecoveredItem, err error) {
	ctx, finish := observability.StartSpan(ctx, "recovery.record", attribute.String("item.id", in.ItemID))
	defer func() { finish(err) }()

	var missing requiredFields
	missing.check("itemId", in.ItemID)
	missing.check("userId", in.UserID)
	missing.check("recoveryInfo.name", in.Name)
	missing.check("recoveryInfo.email", in.Email)
	missing.check("recoveryInfo.photo", in.Photo)
	missing.check("recoveryInfo.location", in.Location)
	if err := missing.err(); err != nil {
		observability.RecoveriesTotal.WithLabelValues(observability.RecoveryOutcomeInvalid).Inc()
		return nil, err
	}

	itemID := strings.TrimSpace(in.ItemID)
	rec = &models.RecoveredItem{
		ItemID: itemID,
		UserID: strings.TrimSpace(in.UserID),
		RecoveryInfo: models.RecoveryInfo{
			Name:     strings.TrimSpace(in.Name),
			Email:    normalizeEmail(in.Email),
			Photo:    strings.TrimSpace(in.Photo),
			Location: strings.TrimSpace(in.Location),
		},
	}

	if err := s.recoveries.Record(ctx, rec); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			observability.RecoveriesTotal.WithLabelValues(observability.RecoveryOutcomeNotFound).Inc()
			return nil, models.NewNotFoundError("Item", itemID)
		case errors.Is(err, repository.ErrConflict):
			observability.RecoveriesTotal.WithLabelValues(observability.RecoveryOutcomeConflict).Inc()
			return nil, models.NewConflictError("Item has already been recovered")
		default:
			observability.RecoveriesTotal.WithLabelValues(observability.RecoveryOutcomeError).Inc()
			return nil, models.NewInternalError(err)
		}
	}
	observability.RecoveriesTotal.WithLabelValues(observability.RecoveryOutcomeRecorded).Inc()

	ev := notifications.ItemEvent{
		Type:        notifications.EventItemRecovered,
		ItemID:      itemID,
		Status:      string(models.ItemStatusRecovered),
		RecoveredBy: rec.UserID,
	}
	if item, ierr := s.items.GetByID(ctx, itemID); ierr == nil {
		ev.UserID = item.UserID
		ev.Title = item.Title
	}
	publish(ctx, s.events, ev)

	return rec, nil
}
