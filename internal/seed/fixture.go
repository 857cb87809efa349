package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"findlost/internal/models"
	"findlost/internal/repository"

	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written data set, typically loaded from YAML.
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
	Items []FixtureItem `yaml:"items"`
}

type FixtureUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Photo    string `yaml:"photo"`
}

// FixtureItem refers to users by email. RecoveredBy, when set, recovers the
// item after it is created.
type FixtureItem struct {
	PostType        string    `yaml:"postType"`
	Thumbnail       string    `yaml:"thumbnail"`
	Title           string    `yaml:"title"`
	Description     string    `yaml:"description"`
	Category        string    `yaml:"category"`
	Location        string    `yaml:"location"`
	Owner           string    `yaml:"owner"`
	Phone           string    `yaml:"phone"`
	LostOrFoundDate time.Time `yaml:"lostOrFoundDate"`
	RecoveredBy     string    `yaml:"recoveredBy"`
	RecoveredAt     string    `yaml:"recoveredAt"`
}

// LoadFixture decodes a YAML fixture and checks its references.
func LoadFixture(r io.Reader) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := fx.validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

func (fx *Fixture) validate() error {
	known := make(map[string]bool, len(fx.Users))
	for i, u := range fx.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" || strings.TrimSpace(u.Username) == "" {
			return fmt.Errorf("users[%d]: username and email are required", i)
		}
		if known[email] {
			return fmt.Errorf("users[%d]: duplicate email %s", i, email)
		}
		known[email] = true
	}
	for i, it := range fx.Items {
		if !models.PostType(it.PostType).Valid() {
			return fmt.Errorf("items[%d]: postType must be Lost or Found", i)
		}
		if strings.TrimSpace(it.Title) == "" {
			return fmt.Errorf("items[%d]: title is required", i)
		}
		if !known[strings.ToLower(it.Owner)] {
			return fmt.Errorf("items[%d]: unknown owner %q", i, it.Owner)
		}
		if it.RecoveredBy != "" && !known[strings.ToLower(it.RecoveredBy)] {
			return fmt.Errorf("items[%d]: unknown recoverer %q", i, it.RecoveredBy)
		}
	}
	return nil
}

// Apply writes the fixture through repos.
func (fx *Fixture) Apply(ctx context.Context, repos *repository.Repositories) (Summary, error) {
	var sum Summary
	now := time.Now().UTC().Truncate(time.Millisecond)

	byEmail := make(map[string]*models.User, len(fx.Users))
	for _, u := range fx.Users {
		user := &models.User{
			Username:   strings.TrimSpace(u.Username),
			Email:      strings.ToLower(strings.TrimSpace(u.Email)),
			Photo:      u.Photo,
			LastSignIn: now,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			return sum, fmt.Errorf("create user %s: %w", user.Email, err)
		}
		byEmail[user.Email] = user
		sum.Users++
	}

	for _, it := range fx.Items {
		owner := byEmail[strings.ToLower(it.Owner)]
		when := it.LostOrFoundDate
		if when.IsZero() {
			when = now
		}
		item := &models.Item{
			PostType:        models.PostType(it.PostType),
			Thumbnail:       it.Thumbnail,
			Title:           strings.TrimSpace(it.Title),
			Description:     it.Description,
			Category:        it.Category,
			Location:        it.Location,
			ContactInfo:     models.ContactInfo{Email: owner.Email, Phone: it.Phone},
			UserID:          owner.ID,
			LostOrFoundDate: when.UTC(),
			Status:          models.ItemStatusNotRecovered,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := repos.Items.Create(ctx, item); err != nil {
			return sum, fmt.Errorf("create item %q: %w", item.Title, err)
		}
		sum.Items++

		if it.RecoveredBy == "" {
			continue
		}
		recoverer := byEmail[strings.ToLower(it.RecoveredBy)]
		location := it.RecoveredAt
		if location == "" {
			location = item.Location
		}
		rec := &models.RecoveredItem{
			ItemID: item.ID,
			UserID: recoverer.ID,
			RecoveryInfo: models.RecoveryInfo{
				Name:     recoverer.Username,
				Email:    recoverer.Email,
				Photo:    recoverer.Photo,
				Location: location,
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repos.Recoveries.Record(ctx, rec); err != nil {
			return sum, fmt.Errorf("recover item %q: %w", item.Title, err)
		}
		sum.Recoveries++
	}

	return sum, nil
}
