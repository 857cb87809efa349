package repository

import (
	"context"
	"errors"

	"findlost/internal/models"

	"gorm.io/gorm"
)

// itemRepository implements ItemRepository
type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) List(ctx context.Context, filter ItemFilter) ([]models.Item, error) {
	items := []models.Item{}
	q := r.db.WithContext(ctx)
	switch {
	case filter.ContactEmail != "":
		q = q.Where("contact_email = ?", filter.ContactEmail)
	case filter.UserID != "":
		q = q.Where("user_id = ?", filter.UserID)
	default:
		q = q.Where("status = ?", models.ItemStatusNotRecovered)
	}
	if err := q.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepository) Update(ctx context.Context, id string, patch ItemPatch) (*models.Item, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if !patch.Empty() {
		err := r.db.WithContext(ctx).
			Model(&models.Item{}).
			Where("id = ?", id).
			Updates(itemColumns(patch)).Error
		if err != nil {
			return nil, err
		}
	}

	return r.GetByID(ctx, id)
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Item{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// itemColumns maps a patch onto column names. Status has no entry.
func itemColumns(p ItemPatch) map[string]any {
	cols := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	set("title", p.Title)
	set("description", p.Description)
	set("category", p.Category)
	set("location", p.Location)
	set("thumbnail", p.Thumbnail)
	set("contact_email", p.ContactEmail)
	set("contact_phone", p.ContactPhone)
	return cols
}
