package service

import (
	"context"
	"strings"
	"time"

	"findlost/internal/auth"
	"findlost/internal/models"
	"findlost/internal/notifications"
	"findlost/internal/repository"
)

type ItemService struct {
	items  repository.ItemRepository
	events EventPublisher
	now    func() time.Time
}

type ListItemsInput struct {
	// OwnerEmail lists the items posted with this contact email, any status.
	OwnerEmail string
}

type CreateItemInput struct {
	// Requester must own UserID.
	Requester       *auth.Identity
	PostType        string
	Thumbnail       string
	Title           string
	Description     string
	Category        string
	Location        string
	ContactEmail    string
	ContactPhone    string
	UserID          string
	LostOrFoundDate *time.Time
}

type UpdateItemInput struct {
	ID           string
	Requester    *auth.Identity
	Title        *string
	Description  *string
	Category     *string
	Location     *string
	Thumbnail    *string
	ContactEmail *string
	ContactPhone *string
}

func NewItemService(items repository.ItemRepository, events EventPublisher) *ItemService {
	return &ItemService{
		items:  items,
		events: publisherOrNoop(events),
		now:    time.Now,
	}
}

func (s *ItemService) ListItems(ctx context.Context, in ListItemsInput) ([]models.Item, error) {
	items, err := s.items.List(ctx, repository.ItemFilter{ContactEmail: normalizeEmail(in.OwnerEmail)})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

// ListOwnedItems lists every item of userID. Only the owner may list them.
func (s *ItemService) ListOwnedItems(ctx context.Context, userID string, requester *auth.Identity) ([]models.Item, error) {
	userID = strings.TrimSpace(userID)
	if !requester.Owns(userID) {
		return nil, models.NewForbiddenError("You can only list your own items")
	}
	items, err := s.items.List(ctx, repository.ItemFilter{UserID: userID})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (s *ItemService) GetItem(ctx context.Context, id string) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Item", id)
	}
	return item, nil
}

// CreateItem validates and stores a new listing. New items always start
// not-recovered.
func (s *ItemService) CreateItem(ctx context.Context, in CreateItemInput) (*models.Item, error) {
	var missing requiredFields
	missing.check("postType", in.PostType)
	missing.check("thumbnail", in.Thumbnail)
	missing.check("title", in.Title)
	missing.check("description", in.Description)
	missing.check("category", in.Category)
	missing.check("location", in.Location)
	missing.check("contactInfo.email", in.ContactEmail)
	missing.check("contactInfo.phone", in.ContactPhone)
	missing.check("userId", in.UserID)
	if err := missing.err(); err != nil {
		return nil, err
	}

	postType := models.PostType(strings.TrimSpace(in.PostType))
	if !postType.Valid() {
		return nil, models.NewValidationError("postType must be Lost or Found")
	}
	if !in.Requester.Owns(strings.TrimSpace(in.UserID)) {
		return nil, models.NewForbiddenError("You can only post items as yourself")
	}

	now := s.now().UTC()
	item := &models.Item{
		PostType:    postType,
		Thumbnail:   strings.TrimSpace(in.Thumbnail),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Location:    strings.TrimSpace(in.Location),
		ContactInfo: models.ContactInfo{
			Email: normalizeEmail(in.ContactEmail),
			Phone: strings.TrimSpace(in.ContactPhone),
		},
		UserID:          strings.TrimSpace(in.UserID),
		LostOrFoundDate: now,
		Status:          models.ItemStatusNotRecovered,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.LostOrFoundDate != nil && !in.LostOrFoundDate.IsZero() {
		item.LostOrFoundDate = in.LostOrFoundDate.UTC()
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, models.NewInternalError(err)
	}

	publish(ctx, s.events, notifications.ItemEvent{
		Type:   notifications.EventItemCreated,
		ItemID: item.ID,
		UserID: item.UserID,
		Title:  item.Title,
		Status: string(item.Status),
	})
	return item, nil
}

// UpdateItem applies the writable fields of in. Status is not among them.
func (s *ItemService) UpdateItem(ctx context.Context, in UpdateItemInput) (*models.Item, error) {
	if _, err := s.ownedItem(ctx, in.ID, in.Requester, "update"); err != nil {
		return nil, err
	}

	var blank requiredFields
	patch := repository.ItemPatch{
		Title:        trimmedPtr(in.Title, "title", &blank),
		Description:  trimmedPtr(in.Description, "description", &blank),
		Category:     trimmedPtr(in.Category, "category", &blank),
		Location:     trimmedPtr(in.Location, "location", &blank),
		Thumbnail:    trimmedPtr(in.Thumbnail, "thumbnail", &blank),
		ContactEmail: trimmedPtr(in.ContactEmail, "contactInfo.email", &blank),
		ContactPhone: trimmedPtr(in.ContactPhone, "contactInfo.phone", &blank),
	}
	if len(blank) > 0 {
		return nil, models.NewValidationError("Fields cannot be empty: " + strings.Join(blank, ", "))
	}
	if patch.ContactEmail != nil {
		e := normalizeEmail(*patch.ContactEmail)
		patch.ContactEmail = &e
	}

	updated, err := s.items.Update(ctx, in.ID, patch)
	if err != nil {
		return nil, mapRepoError(err, "Item", in.ID)
	}

	publish(ctx, s.events, notifications.ItemEvent{
		Type:   notifications.EventItemUpdated,
		ItemID: updated.ID,
		UserID: updated.UserID,
		Title:  updated.Title,
		Status: string(updated.Status),
	})
	return updated, nil
}

// DeleteItem removes an owned item and returns what was deleted.
func (s *ItemService) DeleteItem(ctx context.Context, id string, requester *auth.Identity) (*models.Item, error) {
	item, err := s.ownedItem(ctx, id, requester, "delete")
	if err != nil {
		return nil, err
	}

	if err := s.items.Delete(ctx, id); err != nil {
		return nil, mapRepoError(err, "Item", id)
	}

	publish(ctx, s.events, notifications.ItemEvent{
		Type:   notifications.EventItemDeleted,
		ItemID: item.ID,
		UserID: item.UserID,
		Title:  item.Title,
		Status: string(item.Status),
	})
	return item, nil
}

func (s *ItemService) ownedItem(ctx context.Context, id string, requester *auth.Identity, action string) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Item", id)
	}
	if !requester.Owns(item.UserID) {
		return nil, models.NewForbiddenError("You can only " + action + " your own items")
	}
	return item, nil
}
