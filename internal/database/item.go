package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// Item is a catalogue entry that belongs to a category.
type Item struct {
	Base
	Title       string `gorm:"not null"`
	Snippet     string `gorm:"not null"`
	Description string `gorm:"not null"`
	Image       []byte
	ImageFormat string    `gorm:"not null"`
	Price       int64     `gorm:"not null"` // minor currency units
	CategoryID  uint      `gorm:"index;not null"`
	Category    *Category `gorm:"constraint:OnDelete:CASCADE;"`
}

func (Item) TableName() string { return "item" }

func NewItem(title, snippet, description string, image []byte, imageFormat string, price int64, categoryID uint) *Item {
	return &Item{
		Title:       title,
		Snippet:     snippet,
		Description: description,
		Image:       image,
		ImageFormat: imageFormat,
		Price:       price,
		CategoryID:  categoryID,
	}
}

// CreateItem inserts the item after checking that its category exists.
// The returned item has its category loaded.
func (c *Client) CreateItem(ctx context.Context, item *Item) (*Item, error) {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findCategoryByID(tx, item.CategoryID); err != nil {
			return err
		}
		return tx.Omit("Category").Create(item).Error
	})
	if err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrIntegrity) && !errors.Is(err, ErrNotFound) {
			log.Error("failed to create item", "error", err)
		}
		return nil, fmt.Errorf("create item: %w", err)
	}
	return c.GetItemByID(ctx, item.ID)
}

func (c *Client) GetAllItems(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := c.db.WithContext(ctx).Preload("Category", selectCategoryRef).Order("id").Find(&items).Error; err != nil {
		log.Error("failed to get all items", "error", err)
		return nil, err
	}
	return items, nil
}

func (c *Client) GetItemByID(ctx context.Context, id uint) (*Item, error) {
	item, err := findItem(c.db.WithContext(ctx).Preload("Category", selectCategoryRef), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error("failed to get item by ID", "error", err)
		}
		return nil, err
	}
	return item, nil
}

// DeleteItem removes the item and any wishlist entries that point at it.
func (c *Client) DeleteItem(ctx context.Context, id uint) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := findItem(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", item.ID).Delete(&Wishlist{}).Error; err != nil {
			return err
		}
		return tx.Delete(item).Error
	})
	if err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrNotFound) {
			log.Error("failed to delete item", "id", id, "error", err)
		}
		return err
	}
	return nil
}

func findItem(db *gorm.DB, id uint) (*Item, error) {
	var item Item
	if err := db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Item", Key: id}
		}
		return nil, err
	}
	return &item, nil
}

// selectCategoryRef loads only what an item view needs from its category.
func selectCategoryRef(db *gorm.DB) *gorm.DB {
	return db.Select("id", "url_ext")
}
