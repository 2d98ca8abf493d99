package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// Wishlist links one user to one item.
type Wishlist struct {
	Base
	ItemID      uint   `gorm:"uniqueIndex;not null"`
	UserID      uint   `gorm:"uniqueIndex;not null"`
	Title       string `gorm:"not null"`
	Snippet     string `gorm:"not null"`
	Description string `gorm:"not null"`
	Timestamps

	Item *Item `gorm:"constraint:OnDelete:CASCADE;"`
	User *User `gorm:"constraint:OnDelete:CASCADE;"`
}

func (Wishlist) TableName() string { return "wishlist" }

func NewWishlist(itemID, userID uint, title, snippet, description string) *Wishlist {
	return &Wishlist{
		ItemID:      itemID,
		UserID:      userID,
		Title:       title,
		Snippet:     snippet,
		Description: description,
	}
}

// CreateWishlist inserts the wishlist entry after checking the referenced item and user.
func (c *Client) CreateWishlist(ctx context.Context, wishlist *Wishlist) (*Wishlist, error) {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findItem(tx, wishlist.ItemID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&User{}).Where("id = ?", wishlist.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &NotFoundError{Entity: "User", Key: wishlist.UserID}
		}
		return tx.Omit("Item", "User").Create(wishlist).Error
	})
	if err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrIntegrity) && !errors.Is(err, ErrNotFound) {
			log.Error("failed to create wishlist", "error", err)
		}
		return nil, fmt.Errorf("create wishlist: %w", err)
	}
	return c.GetWishlistByID(ctx, wishlist.ID)
}

func (c *Client) GetAllWishlists(ctx context.Context) ([]Wishlist, error) {
	var wishlists []Wishlist
	if err := c.db.WithContext(ctx).Preload("Item", selectItemRef).Order("id").Find(&wishlists).Error; err != nil {
		log.Error("failed to get all wishlists", "error", err)
		return nil, err
	}
	return wishlists, nil
}

func (c *Client) GetWishlistByID(ctx context.Context, id uint) (*Wishlist, error) {
	var wishlist Wishlist
	if err := c.db.WithContext(ctx).Preload("Item", selectItemRef).First(&wishlist, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Wishlist", Key: id}
		}
		log.Error("failed to get wishlist by ID", "error", err)
		return nil, err
	}
	return &wishlist, nil
}

func selectItemRef(db *gorm.DB) *gorm.DB {
	return db.Select("id", "title", "snippet", "price")
}
