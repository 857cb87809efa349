package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecoveryInfo describes who recovered an item and where.
type RecoveryInfo struct {
	Name     string `gorm:"not null" bson:"name" json:"name"`
	Email    string `gorm:"size:320;not null;index" bson:"email" json:"email"`
	Photo    string `gorm:"not null" bson:"photo" json:"photo"`
	Location string `gorm:"not null" bson:"location" json:"location"`
}

// RecoveredItem links an item to the user who recovered it. There is at most
// one per item.
type RecoveredItem struct {
	ID           string       `gorm:"primaryKey;size:36" bson:"_id" json:"_id"`
	ItemID       string       `gorm:"size:64;not null;uniqueIndex" bson:"itemId" json:"itemId"`
	UserID       string       `gorm:"size:64;not null;index" bson:"userId" json:"userId"`
	RecoveryInfo RecoveryInfo `gorm:"embedded;embeddedPrefix:recovery_" bson:"recoveryInfo" json:"recoveryInfo"`
	CreatedAt    time.Time    `gorm:"index" bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time    `bson:"updatedAt" json:"updatedAt"`
}

func (r *RecoveredItem) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
