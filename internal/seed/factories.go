// Package seed provides helpers to create demo data for the store. These
// helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"
	"time"

	"findlost/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

var categories = []string{
	"Electronics", "Accessories", "Documents", "Keys",
	"Clothing", "Bags", "Pets", "Other",
}

var itemNouns = map[string][]string{
	"Electronics": {"Phone", "Laptop", "Headphones", "Tablet", "Charger"},
	"Accessories": {"Wallet", "Watch", "Sunglasses", "Ring", "Umbrella"},
	"Documents":   {"Passport", "ID card", "Notebook", "Student card"},
	"Keys":        {"House keys", "Car key", "Key ring", "Bike lock key"},
	"Clothing":    {"Jacket", "Scarf", "Cap", "Gloves"},
	"Bags":        {"Backpack", "Handbag", "Gym bag", "Tote bag"},
	"Pets":        {"Cat", "Dog", "Parrot"},
	"Other":       {"Water bottle", "Book", "Toy"},
}

// Factory builds domain entities without persisting them.
type Factory struct {
	faker   *gofakeit.Faker
	maxDays int
	now     func() time.Time
}

// NewFactory creates a Factory. A zero seed picks a random one.
func NewFactory(seed int64, maxDays int) *Factory {
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{faker: gofakeit.New(seed), maxDays: maxDays, now: time.Now}
}

// BuildUser constructs a sample user. Optional overrides run last.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	signIn := f.pastTime()
	user := &models.User{
		Username:   f.faker.Username() + fmt.Sprintf("%d", f.faker.Number(100, 999)),
		Email:      strings.ToLower(f.faker.Email()),
		Photo:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		LastSignIn: signIn,
		CreatedAt:  signIn,
		UpdatedAt:  signIn,
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// BuildItem constructs a not-recovered item posted by owner.
func (f *Factory) BuildItem(owner *models.User, overrides ...func(*models.Item)) *models.Item {
	category := f.faker.RandomString(categories)
	noun := f.faker.RandomString(itemNouns[category])
	color := f.faker.Color()

	postType := models.PostTypeLost
	if f.faker.Bool() {
		postType = models.PostTypeFound
	}

	created := f.pastTime()
	item := &models.Item{
		PostType:    postType,
		Thumbnail:   fmt.Sprintf("https://picsum.photos/seed/%s/400/300", f.faker.UUID()),
		Title:       fmt.Sprintf("%s %s", color, strings.ToLower(noun)),
		Description: f.faker.Sentence(12),
		Category:    category,
		Location:    f.faker.City(),
		ContactInfo: models.ContactInfo{
			Email: owner.Email,
			Phone: f.faker.Phone(),
		},
		UserID:          owner.ID,
		LostOrFoundDate: created.Add(-time.Duration(f.faker.Number(1, 72)) * time.Hour),
		Status:          models.ItemStatusNotRecovered,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, override := range overrides {
		override(item)
	}
	return item
}

// BuildRecovery constructs the record of recoverer recovering item.
func (f *Factory) BuildRecovery(item *models.Item, recoverer *models.User) *models.RecoveredItem {
	at := item.CreatedAt.Add(time.Duration(f.faker.Number(1, 48)) * time.Hour)
	return &models.RecoveredItem{
		ItemID: item.ID,
		UserID: recoverer.ID,
		RecoveryInfo: models.RecoveryInfo{
			Name:     recoverer.Username,
			Email:    recoverer.Email,
			Photo:    recoverer.Photo,
			Location: f.faker.Street() + ", " + item.Location,
		},
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// pastTime returns a moment spread over the last maxDays days.
func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.maxDays*24*60)) * time.Minute
	return f.now().UTC().Add(-back).Truncate(time.Millisecond)
}
