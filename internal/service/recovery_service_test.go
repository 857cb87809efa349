package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"findlost/internal/auth"
	"findlost/internal/models"
	"findlost/internal/notifications"
	"findlost/internal/repository"
	"findlost/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bobRecovery(itemID string) RecordRecoveryInput {
	return RecordRecoveryInput{
		ItemID:   itemID,
		UserID:   "u2",
		Name:     "Bob",
		Email:    "B@C.com",
		Photo:    "p.png",
		Location: "Park",
	}
}

func TestRecoveryService_RecordRecovery_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		repoErr  error
		wantCode string
	}{
		{name: "unknown item", repoErr: repository.ErrNotFound, wantCode: models.CodeNotFound},
		{name: "already recovered", repoErr: repository.ErrConflict, wantCode: models.CodeConflict},
		{name: "store failure", repoErr: errors.New("connection reset"), wantCode: models.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := noopRecoveryRepo()
			recs.recordFn = func(_ context.Context, _ *models.RecoveredItem) error { return tt.repoErr }
			pub := &recordingPublisher{}
			svc := NewRecoveryService(recs, noopItemRepo(), pub)

			_, err := svc.RecordRecovery(context.Background(), bobRecovery("i1"))
			assertAppErrorCode(t, err, tt.wantCode)
			assert.Empty(t, pub.types())
		})
	}
}

func TestRecoveryService_RecordRecovery_MissingFields(t *testing.T) {
	called := false
	recs := noopRecoveryRepo()
	recs.recordFn = func(_ context.Context, _ *models.RecoveredItem) error {
		called = true
		return nil
	}
	svc := NewRecoveryService(recs, noopItemRepo(), nil)

	in := bobRecovery("")
	in.Photo = " "
	_, err := svc.RecordRecovery(context.Background(), in)
	appErr := assertValidationError(t, err)
	assert.Equal(t, []string{"itemId", "recoveryInfo.photo"}, appErr.Fields)
	assert.False(t, called)
}

func TestRecoveryService_RecordRecovery_PublishesToOwner(t *testing.T) {
	items := noopItemRepo()
	items.getByIDFn = func(_ context.Context, id string) (*models.Item, error) {
		return ownedItem(id, "u1"), nil
	}
	pub := &recordingPublisher{}
	svc := NewRecoveryService(noopRecoveryRepo(), items, pub)

	rec, err := svc.RecordRecovery(context.Background(), bobRecovery("i1"))
	require.NoError(t, err)
	assert.Equal(t, "b@c.com", rec.RecoveryInfo.Email)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, notifications.EventItemRecovered, ev.Type)
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, "u2", ev.RecoveredBy)
}

func TestRecoveryService_PublishFailureDoesNotFailRecovery(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("redis down")}
	svc := NewRecoveryService(noopRecoveryRepo(), noopItemRepo(), pub)

	_, err := svc.RecordRecovery(context.Background(), bobRecovery("i1"))
	assert.NoError(t, err)
}

func TestRecoveryService_ListRecoveries(t *testing.T) {
	recs := noopRecoveryRepo()
	var gotEmail string
	recs.listFn = func(_ context.Context, email string) ([]models.RecoveredItem, error) {
		gotEmail = email
		return []models.RecoveredItem{}, nil
	}
	svc := NewRecoveryService(recs, noopItemRepo(), nil)
	ctx := context.Background()

	_, err := svc.ListRecoveries(ctx, "b@c.com", nil)
	assertAppErrorCode(t, err, models.CodeUnauthorized)

	_, err = svc.ListRecoveries(ctx, "b@c.com", &auth.Identity{SubjectID: "s", Email: "other@c.com"})
	assertForbiddenError(t, err)

	_, err = svc.ListRecoveries(ctx, "B@C.com", &auth.Identity{SubjectID: "s", Email: "b@c.com"})
	require.NoError(t, err)
	assert.Equal(t, "b@c.com", gotEmail)

	_, err = svc.ListRecoveries(ctx, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "", gotEmail)
}

func TestRecoveryService_ConcurrentRecoveries(t *testing.T) {
	repos := repository.New(testutil.NewSQLiteHandle(t))
	items := NewItemService(repos.Items, nil)
	svc := NewRecoveryService(repos.Recoveries, repos.Items, nil)
	ctx := context.Background()

	item, err := items.CreateItem(ctx, walletInput())
	require.NoError(t, err)

	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.RecordRecovery(ctx, bobRecovery(item.ID))
		}(i)
	}
	close(start)
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assertAppErrorCode(t, err, models.CodeConflict)
	}
	assert.Equal(t, 1, ok)

	got, err := items.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusRecovered, got.Status)

	all, err := svc.ListRecoveries(ctx, "", nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestItemService_UpdateKeepsStatus_SQLite(t *testing.T) {
	repos := repository.New(testutil.NewSQLiteHandle(t))
	items := NewItemService(repos.Items, nil)
	ctx := context.Background()

	item, err := items.CreateItem(ctx, walletInput())
	require.NoError(t, err)

	title := "Renamed"
	updated, err := items.UpdateItem(ctx, UpdateItemInput{
		ID:        item.ID,
		Requester: &auth.Identity{SubjectID: "u1"},
		Title:     &title,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, models.ItemStatusNotRecovered, updated.Status)
}
