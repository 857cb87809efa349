package repository

import (
	"fmt"
	"time"

	"findlost/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// oid is an id as Mongo stores it. Hex ids are written as native ObjectIDs,
// anything else (an identity provider subject, say) stays a string.
type oid string

func (id oid) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if o, err := primitive.ObjectIDFromHex(string(id)); err == nil {
		return bson.MarshalValue(o)
	}
	return bson.MarshalValue(string(id))
}

func (id *oid) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.ObjectID:
		*id = oid(raw.ObjectID().Hex())
	case bsontype.String:
		*id = oid(raw.StringValue())
	default:
		return fmt.Errorf("unsupported id type %s", t)
	}
	return nil
}

// mongoDoc is a stored document that converts back to its model.
type mongoDoc[M any] interface {
	model() M
}

type itemDoc struct {
	ID              oid                `bson:"_id"`
	PostType        models.PostType    `bson:"postType"`
	Thumbnail       string             `bson:"thumbnail"`
	Title           string             `bson:"title"`
	Description     string             `bson:"description"`
	Category        string             `bson:"category"`
	Location        string             `bson:"location"`
	ContactInfo     models.ContactInfo `bson:"contactInfo"`
	UserID          oid                `bson:"userId"`
	LostOrFoundDate time.Time          `bson:"lostOrFounddate"`
	Status          models.ItemStatus  `bson:"status"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func newItemDoc(i *models.Item) itemDoc {
	return itemDoc{
		ID:              oid(i.ID),
		PostType:        i.PostType,
		Thumbnail:       i.Thumbnail,
		Title:           i.Title,
		Description:     i.Description,
		Category:        i.Category,
		Location:        i.Location,
		ContactInfo:     i.ContactInfo,
		UserID:          oid(i.UserID),
		LostOrFoundDate: i.LostOrFoundDate,
		Status:          i.Status,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}

func (d itemDoc) model() models.Item {
	return models.Item{
		ID:              string(d.ID),
		PostType:        d.PostType,
		Thumbnail:       d.Thumbnail,
		Title:           d.Title,
		Description:     d.Description,
		Category:        d.Category,
		Location:        d.Location,
		ContactInfo:     d.ContactInfo,
		UserID:          string(d.UserID),
		LostOrFoundDate: d.LostOrFoundDate,
		Status:          d.Status,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type recoveryDoc struct {
	ID           oid                 `bson:"_id"`
	ItemID       oid                 `bson:"itemId"`
	UserID       oid                 `bson:"userId"`
	RecoveryInfo models.RecoveryInfo `bson:"recoveryInfo"`
	CreatedAt    time.Time           `bson:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt"`
}

func newRecoveryDoc(r *models.RecoveredItem) recoveryDoc {
	return recoveryDoc{
		ID:           oid(r.ID),
		ItemID:       oid(r.ItemID),
		UserID:       oid(r.UserID),
		RecoveryInfo: r.RecoveryInfo,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (d recoveryDoc) model() models.RecoveredItem {
	return models.RecoveredItem{
		ID:           string(d.ID),
		ItemID:       string(d.ItemID),
		UserID:       string(d.UserID),
		RecoveryInfo: d.RecoveryInfo,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type userDoc struct {
	ID         oid       `bson:"_id"`
	Username   string    `bson:"username"`
	Email      string    `bson:"email"`
	Photo      string    `bson:"photo"`
	LastSignIn time.Time `bson:"lastSignIn"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func newUserDoc(u *models.User) userDoc {
	return userDoc{
		ID:         oid(u.ID),
		Username:   u.Username,
		Email:      u.Email,
		Photo:      u.Photo,
		LastSignIn: u.LastSignIn,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func (d userDoc) model() models.User {
	return models.User{
		ID:         string(d.ID),
		Username:   d.Username,
		Email:      d.Email,
		Photo:      d.Photo,
		LastSignIn: d.LastSignIn,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
