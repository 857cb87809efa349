package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"findlost/internal/models"
	"findlost/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(title, email, userID string, createdAt time.Time) *models.Item {
	return &models.Item{
		PostType:        models.PostTypeLost,
		Thumbnail:       "http://x/y.png",
		Title:           title,
		Description:     "Black leather",
		Category:        "Accessories",
		Location:        "Central Park",
		ContactInfo:     models.ContactInfo{Email: email, Phone: "123"},
		UserID:          userID,
		LostOrFoundDate: createdAt,
		Status:          models.ItemStatusNotRecovered,
		CreatedAt:       createdAt,
	}
}

func newRecovery(itemID string) *models.RecoveredItem {
	return &models.RecoveredItem{
		ItemID: itemID,
		UserID: "u2",
		RecoveryInfo: models.RecoveryInfo{
			Name:     "Bob",
			Email:    "b@c.com",
			Photo:    "p.png",
			Location: "Park",
		},
	}
}

func TestItemRepository_SQLite(t *testing.T) {
	repos := New(testutil.NewSQLiteHandle(t))
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	older := newItem("Umbrella", "a@b.com", "u1", base)
	newer := newItem("Wallet", "a@b.com", "u1", base.Add(time.Minute))
	other := newItem("Keys", "z@y.com", "u3", base.Add(2*time.Minute))
	for _, it := range []*models.Item{older, newer, other} {
		require.NoError(t, repos.Items.Create(ctx, it))
		assert.NotEmpty(t, it.ID)
	}

	t.Run("default list is not-recovered newest first", func(t *testing.T) {
		require.NoError(t, repos.Recoveries.Record(ctx, newRecovery(other.ID)))

		items, err := repos.Items.List(ctx, ItemFilter{})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Wallet", items[0].Title)
		assert.Equal(t, "Umbrella", items[1].Title)
	})

	t.Run("contact email list includes every status", func(t *testing.T) {
		items, err := repos.Items.List(ctx, ItemFilter{ContactEmail: "z@y.com"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, models.ItemStatusRecovered, items[0].Status)
	})

	t.Run("owner list", func(t *testing.T) {
		items, err := repos.Items.List(ctx, ItemFilter{UserID: "u1"})
		require.NoError(t, err)
		assert.Len(t, items, 2)

		none, err := repos.Items.List(ctx, ItemFilter{UserID: "nobody"})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("update applies patch and keeps status", func(t *testing.T) {
		title := "Brown wallet"
		phone := "555"
		updated, err := repos.Items.Update(ctx, newer.ID, ItemPatch{Title: &title, ContactPhone: &phone})
		require.NoError(t, err)
		assert.Equal(t, "Brown wallet", updated.Title)
		assert.Equal(t, "555", updated.ContactInfo.Phone)
		assert.Equal(t, "a@b.com", updated.ContactInfo.Email)
		assert.Equal(t, models.ItemStatusNotRecovered, updated.Status)
	})

	t.Run("update missing item", func(t *testing.T) {
		title := "x"
		_, err := repos.Items.Update(ctx, "missing", ItemPatch{Title: &title})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repos.Items.Delete(ctx, older.ID))
		_, err := repos.Items.GetByID(ctx, older.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repos.Items.Delete(ctx, older.ID), ErrNotFound)
	})
}

func TestRecoveryRepository_Record(t *testing.T) {
	repos := New(testutil.NewSQLiteHandle(t))
	ctx := context.Background()

	item := newItem("Wallet", "a@b.com", "u1", time.Now())
	require.NoError(t, repos.Items.Create(ctx, item))

	rec := newRecovery(item.ID)
	require.NoError(t, repos.Recoveries.Record(ctx, rec))
	assert.NotEmpty(t, rec.ID)

	got, err := repos.Items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusRecovered, got.Status)

	assert.ErrorIs(t, repos.Recoveries.Record(ctx, newRecovery(item.ID)), ErrConflict)
	assert.ErrorIs(t, repos.Recoveries.Record(ctx, newRecovery("missing")), ErrNotFound)

	all, err := repos.Recoveries.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	byEmail, err := repos.Recoveries.List(ctx, "b@c.com")
	require.NoError(t, err)
	assert.Len(t, byEmail, 1)

	none, err := repos.Recoveries.List(ctx, "nobody@c.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecoveryRepository_ConcurrentRecord(t *testing.T) {
	repos := New(testutil.NewSQLiteHandle(t))
	ctx := context.Background()

	item := newItem("Wallet", "a@b.com", "u1", time.Now())
	require.NoError(t, repos.Items.Create(ctx, item))

	const callers = 2
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repos.Recoveries.Record(ctx, newRecovery(item.ID))
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	recs, err := repos.Recoveries.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRecoveryRepository_CancelledContextStillCompletes(t *testing.T) {
	repos := New(testutil.NewSQLiteHandle(t))

	item := newItem("Wallet", "a@b.com", "u1", time.Now())
	require.NoError(t, repos.Items.Create(context.Background(), item))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, repos.Recoveries.Record(ctx, newRecovery(item.ID)))

	got, err := repos.Items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusRecovered, got.Status)
}

func TestUserRepository_SQLite(t *testing.T) {
	repos := New(testutil.NewSQLiteHandle(t))
	ctx := context.Background()

	first := time.Now().Add(-time.Hour).UTC()
	u := &models.User{Username: "alice", Email: "a@b.com", LastSignIn: first}
	require.NoError(t, repos.Users.Create(ctx, u))
	assert.NotEmpty(t, u.ID)

	dup := &models.User{Username: "mallory", Email: "a@b.com", LastSignIn: first}
	assert.ErrorIs(t, repos.Users.Create(ctx, dup), ErrConflict)

	later := time.Now().UTC()
	touched, err := repos.Users.TouchSignIn(ctx, "a@b.com", later)
	require.NoError(t, err)
	assert.Equal(t, "alice", touched.Username)
	assert.WithinDuration(t, later, touched.LastSignIn, time.Second)

	_, err = repos.Users.TouchSignIn(ctx, "nobody@b.com", later)
	assert.ErrorIs(t, err, ErrNotFound)

	photo := "me.png"
	updated, err := repos.Users.Update(ctx, "a@b.com", UserPatch{Photo: &photo})
	require.NoError(t, err)
	assert.Equal(t, "me.png", updated.Photo)
	assert.Equal(t, "alice", updated.Username)

	byID, err := repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", byID.Email)

	users, err := repos.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, repos.Users.Delete(ctx, u.ID))
	assert.ErrorIs(t, repos.Users.Delete(ctx, u.ID), ErrNotFound)
	_, err = repos.Users.GetByEmail(ctx, "a@b.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPatchEmpty(t *testing.T) {
	assert.True(t, ItemPatch{}.Empty())
	s := "x"
	assert.False(t, ItemPatch{ContactEmail: &s}.Empty())
	assert.True(t, UserPatch{}.Empty())
	assert.False(t, UserPatch{Photo: &s}.Empty())
}
