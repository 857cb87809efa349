// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"findlost/internal/database"
	"findlost/internal/models"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write loses to the current state of the
	// store: a second recovery of one item, or a duplicate user email.
	ErrConflict = errors.New("conflicting write")
)

// ItemFilter selects items for List. With neither field set only
// not-recovered items are listed.
type ItemFilter struct {
	// ContactEmail lists items whose contactInfo.email matches, any status.
	ContactEmail string
	// UserID lists items owned by the user, any status.
	UserID string
}

// ItemPatch holds the writable subset of an item. Nil fields are left as is.
type ItemPatch struct {
	Title        *string
	Description  *string
	Category     *string
	Location     *string
	Thumbnail    *string
	ContactEmail *string
	ContactPhone *string
}

// Empty reports whether the patch changes nothing.
func (p ItemPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil && p.Location == nil &&
		p.Thumbnail == nil && p.ContactEmail == nil && p.ContactPhone == nil
}

// UserPatch holds the writable subset of a user.
type UserPatch struct {
	Username *string
	Photo    *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Photo == nil
}

// ItemRepository defines the interface for item data operations.
type ItemRepository interface {
	List(ctx context.Context, filter ItemFilter) ([]models.Item, error)
	GetByID(ctx context.Context, id string) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, id string, patch ItemPatch) (*models.Item, error)
	Delete(ctx context.Context, id string) error
}

// RecoveryRepository defines the interface for recovery data operations.
type RecoveryRepository interface {
	// List returns recoveries newest first, filtered by recoverer email when set.
	List(ctx context.Context, recovererEmail string) ([]models.RecoveredItem, error)
	// Record flips the item to recovered and stores rec as one unit. It returns
	// ErrNotFound for an unknown item and ErrConflict when the item is already
	// recovered.
	Record(ctx context.Context, rec *models.RecoveredItem) error
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Create returns ErrConflict when the email is already registered.
	Create(ctx context.Context, user *models.User) error
	// TouchSignIn sets lastSignIn of the user with email and returns the user.
	TouchSignIn(ctx context.Context, email string, at time.Time) (*models.User, error)
	Update(ctx context.Context, email string, patch UserPatch) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// Repositories bundles the repositories backed by one store handle.
type Repositories struct {
	Items      ItemRepository
	Recoveries RecoveryRepository
	Users      UserRepository
}

// New builds the repositories matching the handle's driver.
func New(h *database.Handle) *Repositories {
	if h.Mongo != nil {
		return &Repositories{
			Items:      NewMongoItemRepository(h.Mongo),
			Recoveries: NewMongoRecoveryRepository(h.Mongo),
			Users:      NewMongoUserRepository(h.Mongo),
		}
	}
	return &Repositories{
		Items:      NewItemRepository(h.SQL),
		Recoveries: NewRecoveryRepository(h.SQL),
		Users:      NewUserRepository(h.SQL),
	}
}
