// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostType distinguishes lost reports from found reports.
type PostType string

const (
	PostTypeLost  PostType = "Lost"
	PostTypeFound PostType = "Found"
)

// Valid reports whether t is one of the known post types.
func (t PostType) Valid() bool {
	return t == PostTypeLost || t == PostTypeFound
}

// ItemStatus tracks whether an item has been reunited with its owner.
type ItemStatus string

const (
	ItemStatusNotRecovered ItemStatus = "not-recovered"
	ItemStatusRecovered    ItemStatus = "recovered"
)

// ContactInfo is how the poster of an item can be reached.
type ContactInfo struct {
	Email string `gorm:"size:320;not null;index" bson:"email" json:"email"`
	Phone string `gorm:"size:64;not null" bson:"phone" json:"phone"`
}

// Item represents a lost or found listing.
type Item struct {
	ID              string      `gorm:"primaryKey;size:36" bson:"_id" json:"_id"`
	PostType        PostType    `gorm:"size:16;not null" bson:"postType" json:"postType"`
	Thumbnail       string      `gorm:"not null" bson:"thumbnail" json:"thumbnail"`
	Title           string      `gorm:"not null" bson:"title" json:"title"`
	Description     string      `gorm:"type:text;not null" bson:"description" json:"description"`
	Category        string      `gorm:"not null" bson:"category" json:"category"`
	Location        string      `gorm:"not null" bson:"location" json:"location"`
	ContactInfo     ContactInfo `gorm:"embedded;embeddedPrefix:contact_" bson:"contactInfo" json:"contactInfo"`
	UserID          string      `gorm:"size:64;not null;index" bson:"userId" json:"userId"`
	LostOrFoundDate time.Time   `bson:"lostOrFounddate" json:"lostOrFounddate"`
	// Status is owned by the recovery protocol; generic updates never write it.
	Status    ItemStatus `gorm:"size:16;not null;index" bson:"status" json:"status"`
	CreatedAt time.Time  `gorm:"index" bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// BeforeCreate assigns a UUID primary key when the caller did not set one.
func (i *Item) BeforeCreate(_ *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// OwnedBy reports whether userID is the owning user of the item.
func (i *Item) OwnedBy(userID string) bool {
	return userID != "" && i.UserID == userID
}
