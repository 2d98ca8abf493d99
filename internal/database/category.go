package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// Category groups items and is addressed publicly by its URL extension.
type Category struct {
	Base
	Title       string `gorm:"not null"`
	URLExt      string `gorm:"column:url_ext;uniqueIndex;not null"`
	Image       []byte
	ImageFormat string `gorm:"not null"`
	Snippet     string `gorm:"not null"`
	Description string `gorm:"not null"`
	Items       []Item `gorm:"constraint:OnDelete:CASCADE;"`
}

func (Category) TableName() string { return "category" }

func NewCategory(title, urlExt string, image []byte, imageFormat, snippet, description string) *Category {
	return &Category{
		Title:       title,
		URLExt:      urlExt,
		Image:       image,
		ImageFormat: imageFormat,
		Snippet:     snippet,
		Description: description,
	}
}

// CategoryUpdate holds the fields of a partial category update.
// Nil fields are left untouched.
type CategoryUpdate struct {
	Title       *string
	URLExt      *string
	Image       []byte
	ImageFormat *string
	Snippet     *string
	Description *string
}

// IsEmpty reports whether the update carries no fields.
func (u CategoryUpdate) IsEmpty() bool {
	return len(u.columns()) == 0
}

func (u CategoryUpdate) columns() map[string]any {
	cols := make(map[string]any)
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.URLExt != nil {
		cols["url_ext"] = *u.URLExt
	}
	if u.Image != nil {
		cols["image"] = u.Image
	}
	if u.ImageFormat != nil {
		cols["image_format"] = *u.ImageFormat
	}
	if u.Snippet != nil {
		cols["snippet"] = *u.Snippet
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	return cols
}

func (c *Client) CreateCategory(ctx context.Context, category *Category) (*Category, error) {
	if err := c.db.WithContext(ctx).Omit("Items").Create(category).Error; err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrIntegrity) {
			log.Error("failed to create category", "error", err)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (c *Client) GetAllCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := preloadItemIDs(c.db.WithContext(ctx)).Order("id").Find(&categories).Error; err != nil {
		log.Error("failed to get all categories", "error", err)
		return nil, err
	}
	return categories, nil
}

func (c *Client) GetCategoryByURLExt(ctx context.Context, urlExt string) (*Category, error) {
	category, err := findCategory(preloadItemIDs(c.db.WithContext(ctx)), urlExt)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error("failed to get category", "url_ext", urlExt, "error", err)
		}
		return nil, err
	}
	return category, nil
}

// UpdateCategory applies the provided fields to the category addressed by urlExt.
// It returns ErrNotFound for a missing category and ErrNoUpdates for an empty update.
func (c *Client) UpdateCategory(ctx context.Context, urlExt string, update CategoryUpdate) (*Category, error) {
	var updated *Category
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := findCategory(tx, urlExt)
		if err != nil {
			return err
		}
		if update.IsEmpty() {
			return ErrNoUpdates
		}
		if err := tx.Model(category).Updates(update.columns()).Error; err != nil {
			return err
		}
		updated, err = findCategoryByID(preloadItemIDs(tx), category.ID)
		return err
	})
	if err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrNoUpdates) && !errors.Is(err, ErrIntegrity) {
			log.Error("failed to update category", "url_ext", urlExt, "error", err)
		}
		return nil, err
	}
	return updated, nil
}

// DeleteCategory removes the category together with its items and their wishlist entries.
// The deleted category is returned with its item ids loaded.
func (c *Client) DeleteCategory(ctx context.Context, urlExt string) (*Category, error) {
	var deleted *Category
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := findCategory(preloadItemIDs(tx), urlExt)
		if err != nil {
			return err
		}
		itemIDs := tx.Model(&Item{}).Select("id").Where("category_id = ?", category.ID)
		if err := tx.Where("item_id IN (?)", itemIDs).Delete(&Wishlist{}).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", category.ID).Delete(&Item{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(category).Error; err != nil {
			return err
		}
		deleted = category
		return nil
	})
	if err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrNotFound) {
			log.Error("failed to delete category", "url_ext", urlExt, "error", err)
		}
		return nil, err
	}
	return deleted, nil
}

func findCategory(db *gorm.DB, urlExt string) (*Category, error) {
	var category Category
	if err := db.Where("url_ext = ?", urlExt).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Category", Key: urlExt}
		}
		return nil, err
	}
	return &category, nil
}

func findCategoryByID(db *gorm.DB, id uint) (*Category, error) {
	var category Category
	if err := db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Category", Key: id}
		}
		return nil, err
	}
	return &category, nil
}

// preloadItemIDs loads only the ids of a category's items, enough for summaries.
func preloadItemIDs(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "category_id").Order("id")
	})
}
