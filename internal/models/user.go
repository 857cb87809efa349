package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a person who signed in through the identity provider. Email is
// unique and stored lowercased.
type User struct {
	ID         string    `gorm:"primaryKey;size:36" bson:"_id" json:"_id"`
	Username   string    `gorm:"not null" bson:"username" json:"username"`
	Email      string    `gorm:"size:320;not null;uniqueIndex" bson:"email" json:"email"`
	Photo      string    `gorm:"not null" bson:"photo" json:"photo"`
	LastSignIn time.Time `bson:"lastSignIn" json:"lastSignIn"`
	CreatedAt  time.Time `gorm:"index" bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
