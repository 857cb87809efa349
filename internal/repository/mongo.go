package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"findlost/internal/database"
	"findlost/internal/middleware"
	"findlost/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

// mongoNow truncates to the millisecond precision BSON dates keep.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func byID(id string) bson.M {
	return bson.M{"_id": oid(id)}
}

func findAll[D mongoDoc[M], M any](ctx context.Context, coll *mongo.Collection, filter bson.M) ([]M, error) {
	cur, err := coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]M, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func findOne[D mongoDoc[M], M any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*M, error) {
	var doc D
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	m := doc.model()
	return &m, nil
}

func findOneAndSet[D mongoDoc[M], M any](ctx context.Context, coll *mongo.Collection, filter bson.M, set bson.M) (*M, error) {
	var doc D
	err := coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	m := doc.model()
	return &m, nil
}

type mongoItemRepository struct {
	items *mongo.Collection
}

// NewMongoItemRepository creates an item repository on the items collection.
func NewMongoItemRepository(db *mongo.Database) ItemRepository {
	return &mongoItemRepository{items: db.Collection(database.ItemsCollection)}
}

func (r *mongoItemRepository) List(ctx context.Context, filter ItemFilter) ([]models.Item, error) {
	q := bson.M{"status": models.ItemStatusNotRecovered}
	switch {
	case filter.ContactEmail != "":
		q = bson.M{"contactInfo.email": filter.ContactEmail}
	case filter.UserID != "":
		q = bson.M{"userId": oid(filter.UserID)}
	}
	return findAll[itemDoc, models.Item](ctx, r.items, q)
}

func (r *mongoItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	return findOne[itemDoc, models.Item](ctx, r.items, byID(id))
}

func (r *mongoItemRepository) Create(ctx context.Context, item *models.Item) error {
	now := mongoNow()
	if item.ID == "" {
		item.ID = primitive.NewObjectID().Hex()
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	_, err := r.items.InsertOne(ctx, newItemDoc(item))
	return err
}

func (r *mongoItemRepository) Update(ctx context.Context, id string, patch ItemPatch) (*models.Item, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	set := bson.M{"updatedAt": mongoNow()}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	put("title", patch.Title)
	put("description", patch.Description)
	put("category", patch.Category)
	put("location", patch.Location)
	put("thumbnail", patch.Thumbnail)
	put("contactInfo.email", patch.ContactEmail)
	put("contactInfo.phone", patch.ContactPhone)

	return findOneAndSet[itemDoc, models.Item](ctx, r.items, byID(id), set)
}

func (r *mongoItemRepository) Delete(ctx context.Context, id string) error {
	res, err := r.items.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type mongoRecoveryRepository struct {
	items      *mongo.Collection
	recoveries *mongo.Collection
}

// NewMongoRecoveryRepository creates a recovery repository on the items and
// recovereditems collections.
func NewMongoRecoveryRepository(db *mongo.Database) RecoveryRepository {
	return &mongoRecoveryRepository{
		items:      db.Collection(database.ItemsCollection),
		recoveries: db.Collection(database.RecoveredItemsCollection),
	}
}

func (r *mongoRecoveryRepository) List(ctx context.Context, recovererEmail string) ([]models.RecoveredItem, error) {
	q := bson.M{}
	if recovererEmail != "" {
		q["recoveryInfo.email"] = recovererEmail
	}
	return findAll[recoveryDoc, models.RecoveredItem](ctx, r.recoveries, q)
}

// Record swaps the item status first and inserts second. A failed insert
// swaps the status back unless the unique itemId index shows a recovery
// already exists.
func (r *mongoRecoveryRepository) Record(ctx context.Context, rec *models.RecoveredItem) error {
	ctx = context.WithoutCancel(ctx)
	now := mongoNow()

	res, err := r.items.UpdateOne(ctx,
		bson.M{"_id": oid(rec.ItemID), "status": models.ItemStatusNotRecovered},
		bson.M{"$set": bson.M{"status": models.ItemStatusRecovered, "updatedAt": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := r.items.CountDocuments(ctx, byID(rec.ItemID))
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}

	if rec.ID == "" {
		rec.ID = primitive.NewObjectID().Hex()
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if _, err := r.recoveries.InsertOne(ctx, newRecoveryDoc(rec)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		_, rerr := r.items.UpdateOne(ctx,
			bson.M{"_id": oid(rec.ItemID), "status": models.ItemStatusRecovered},
			bson.M{"$set": bson.M{"status": models.ItemStatusNotRecovered, "updatedAt": mongoNow()}},
		)
		if rerr != nil {
			middleware.Logger.ErrorContext(ctx, "failed to revert item status after recovery insert failure",
				slog.String("item_id", rec.ItemID),
				slog.String("error", rerr.Error()),
			)
		}
		return err
	}
	return nil
}

type mongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository creates a user repository on the users collection.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{users: db.Collection(database.UsersCollection)}
}

func (r *mongoUserRepository) List(ctx context.Context) ([]models.User, error) {
	return findAll[userDoc, models.User](ctx, r.users, bson.M{})
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return findOne[userDoc, models.User](ctx, r.users, byID(id))
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[userDoc, models.User](ctx, r.users, bson.M{"email": email})
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	now := mongoNow()
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	if _, err := r.users.InsertOne(ctx, newUserDoc(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *mongoUserRepository) TouchSignIn(ctx context.Context, email string, at time.Time) (*models.User, error) {
	return findOneAndSet[userDoc, models.User](ctx, r.users, bson.M{"email": email}, bson.M{
		"lastSignIn": at.UTC().Truncate(time.Millisecond),
		"updatedAt":  mongoNow(),
	})
}

func (r *mongoUserRepository) Update(ctx context.Context, email string, patch UserPatch) (*models.User, error) {
	if patch.Empty() {
		return r.GetByEmail(ctx, email)
	}
	set := bson.M{"updatedAt": mongoNow()}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.Photo != nil {
		set["photo"] = *patch.Photo
	}
	return findOneAndSet[userDoc, models.User](ctx, r.users, bson.M{"email": email}, set)
}

func (r *mongoUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.users.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
