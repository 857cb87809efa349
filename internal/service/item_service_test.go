package service

import (
	"context"
	"testing"
	"time"

	"findlost/internal/auth"
	"findlost/internal/models"
	"findlost/internal/notifications"
	"findlost/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walletInput() CreateItemInput {
	return CreateItemInput{
		Requester:    &auth.Identity{SubjectID: "u1", Email: "a@b.com"},
		PostType:     "Lost",
		Thumbnail:    "http://x/y.png",
		Title:        "  Wallet ",
		Description:  "Black leather",
		Category:     "Accessories",
		Location:     "Central Park",
		ContactEmail: "A@B.com",
		ContactPhone: "123",
		UserID:       "u1",
	}
}

func ownedItem(id, userID string) *models.Item {
	return &models.Item{ID: id, UserID: userID, Title: "Wallet", Status: models.ItemStatusNotRecovered}
}

func TestItemService_CreateItem(t *testing.T) {
	pub := &recordingPublisher{}
	repo := noopItemRepo()
	var stored *models.Item
	repo.createFn = func(_ context.Context, item *models.Item) error {
		item.ID = "item-1"
		stored = item
		return nil
	}
	svc := NewItemService(repo, pub)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	item, err := svc.CreateItem(context.Background(), walletInput())
	require.NoError(t, err)
	assert.Same(t, stored, item)
	assert.Equal(t, models.ItemStatusNotRecovered, item.Status)
	assert.Equal(t, "Wallet", item.Title)
	assert.Equal(t, "a@b.com", item.ContactInfo.Email)
	assert.Equal(t, fixed, item.LostOrFoundDate)
	assert.Equal(t, fixed, item.CreatedAt)
	assert.Equal(t, []string{notifications.EventItemCreated}, pub.types())

	when := time.Date(2024, 4, 30, 9, 0, 0, 0, time.UTC)
	in := walletInput()
	in.LostOrFoundDate = &when
	item, err = svc.CreateItem(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, when, item.LostOrFoundDate)
}

func TestItemService_CreateItem_Validation(t *testing.T) {
	svc := NewItemService(noopItemRepo(), nil)

	t.Run("lists every missing field", func(t *testing.T) {
		in := walletInput()
		in.Title = "   "
		in.ContactEmail = ""
		in.UserID = ""
		_, err := svc.CreateItem(context.Background(), in)
		appErr := assertValidationError(t, err)
		assert.Equal(t, []string{"title", "contactInfo.email", "userId"}, appErr.Fields)
	})

	t.Run("posting for another user", func(t *testing.T) {
		in := walletInput()
		in.Requester = &auth.Identity{SubjectID: "u2", Email: "b@c.com"}
		_, err := svc.CreateItem(context.Background(), in)
		assertForbiddenError(t, err)
	})

	t.Run("posting under the directory id", func(t *testing.T) {
		in := walletInput()
		in.Requester = &auth.Identity{SubjectID: "idp|7", UserID: "u1"}
		_, err := svc.CreateItem(context.Background(), in)
		assert.NoError(t, err)
	})

	t.Run("anonymous", func(t *testing.T) {
		in := walletInput()
		in.Requester = nil
		_, err := svc.CreateItem(context.Background(), in)
		assertForbiddenError(t, err)
	})

	t.Run("unknown post type", func(t *testing.T) {
		in := walletInput()
		in.PostType = "Stolen"
		_, err := svc.CreateItem(context.Background(), in)
		assertValidationError(t, err)
	})
}

func TestItemService_UpdateItem(t *testing.T) {
	owner := &auth.Identity{SubjectID: "u1", Email: "a@b.com"}
	stranger := &auth.Identity{SubjectID: "u9", Email: "z@b.com"}
	title := " New title "
	blank := " "

	tests := []struct {
		name      string
		in        UpdateItemInput
		existing  *models.Item
		wantCode  string
		wantTitle string
	}{
		{name: "owner updates", in: UpdateItemInput{ID: "i1", Requester: owner, Title: &title}, existing: ownedItem("i1", "u1"), wantTitle: "New title"},
		{name: "owner via directory id", in: UpdateItemInput{ID: "i1", Requester: &auth.Identity{SubjectID: "sub", UserID: "u1"}, Title: &title}, existing: ownedItem("i1", "u1"), wantTitle: "New title"},
		{name: "stranger", in: UpdateItemInput{ID: "i1", Requester: stranger, Title: &title}, existing: ownedItem("i1", "u1"), wantCode: models.CodeForbidden},
		{name: "missing item", in: UpdateItemInput{ID: "nope", Requester: owner, Title: &title}, wantCode: models.CodeNotFound},
		{name: "blank field", in: UpdateItemInput{ID: "i1", Requester: owner, Title: &blank}, existing: ownedItem("i1", "u1"), wantCode: models.CodeValidation},
		{name: "blank field on missing item", in: UpdateItemInput{ID: "nope", Requester: owner, Title: &blank}, wantCode: models.CodeNotFound},
		{name: "blank field from stranger", in: UpdateItemInput{ID: "i1", Requester: stranger, Title: &blank}, existing: ownedItem("i1", "u1"), wantCode: models.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := noopItemRepo()
			repo.getByIDFn = func(_ context.Context, id string) (*models.Item, error) {
				if tt.existing != nil && tt.existing.ID == id {
					return tt.existing, nil
				}
				return nil, repository.ErrNotFound
			}
			updated := false
			repo.updateFn = func(_ context.Context, id string, p repository.ItemPatch) (*models.Item, error) {
				updated = true
				out := *tt.existing
				out.Title = *p.Title
				return &out, nil
			}

			svc := NewItemService(repo, nil)
			item, err := svc.UpdateItem(context.Background(), tt.in)
			if tt.wantCode != "" {
				assertAppErrorCode(t, err, tt.wantCode)
				assert.False(t, updated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, item.Title)
			assert.Equal(t, models.ItemStatusNotRecovered, item.Status)
		})
	}
}

func TestItemService_DeleteItem_NonOwner(t *testing.T) {
	repo := noopItemRepo()
	repo.getByIDFn = func(_ context.Context, _ string) (*models.Item, error) {
		return ownedItem("i1", "u1"), nil
	}
	deleted := false
	repo.deleteFn = func(_ context.Context, _ string) error {
		deleted = true
		return nil
	}
	pub := &recordingPublisher{}
	svc := NewItemService(repo, pub)

	_, err := svc.DeleteItem(context.Background(), "i1", &auth.Identity{SubjectID: "u2", Email: "x@y.com"})
	assertForbiddenError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, pub.types())

	_, err = svc.DeleteItem(context.Background(), "i1", nil)
	assertForbiddenError(t, err)

	item, err := svc.DeleteItem(context.Background(), "i1", &auth.Identity{SubjectID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "i1", item.ID)
	assert.True(t, deleted)
	assert.Equal(t, []string{notifications.EventItemDeleted}, pub.types())
}

func TestItemService_ListOwnedItems(t *testing.T) {
	repo := noopItemRepo()
	var gotFilter repository.ItemFilter
	repo.listFn = func(_ context.Context, f repository.ItemFilter) ([]models.Item, error) {
		gotFilter = f
		return []models.Item{*ownedItem("i1", "u1")}, nil
	}
	svc := NewItemService(repo, nil)

	_, err := svc.ListOwnedItems(context.Background(), "u1", &auth.Identity{SubjectID: "u2"})
	assertForbiddenError(t, err)

	items, err := svc.ListOwnedItems(context.Background(), "u1", &auth.Identity{SubjectID: "u1"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "u1", gotFilter.UserID)
}

func TestItemService_ListItems_NormalizesEmail(t *testing.T) {
	repo := noopItemRepo()
	var gotFilter repository.ItemFilter
	repo.listFn = func(_ context.Context, f repository.ItemFilter) ([]models.Item, error) {
		gotFilter = f
		return []models.Item{}, nil
	}
	svc := NewItemService(repo, nil)

	items, err := svc.ListItems(context.Background(), ListItemsInput{OwnerEmail: " A@B.com "})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Equal(t, "a@b.com", gotFilter.ContactEmail)
}

func TestItemService_GetItem_NotFound(t *testing.T) {
	svc := NewItemService(noopItemRepo(), nil)
	_, err := svc.GetItem(context.Background(), "missing")
	assertNotFoundError(t, err)
}
