package database

import (
	"context"
	"fmt"
)

// Stats holds row counts per table.
type Stats struct {
	Users         int64
	Admins        int64
	Students      int64
	Teachers      int64
	Categories    int64
	Items         int64
	Wishlists     int64
	APIKeys       int64
	ActiveAPIKeys int64
	ImageBytes    int64
}

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	db := c.db.WithContext(ctx)
	for _, count := range []struct {
		model any
		dest  *int64
	}{
		{&User{}, &stats.Users},
		{&Admin{}, &stats.Admins},
		{&Student{}, &stats.Students},
		{&Teacher{}, &stats.Teachers},
		{&Category{}, &stats.Categories},
		{&Item{}, &stats.Items},
		{&Wishlist{}, &stats.Wishlists},
		{&APIKey{}, &stats.APIKeys},
	} {
		if err := db.Model(count.model).Count(count.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}
	if err := db.Model(&APIKey{}).Where("expired = ?", false).Count(&stats.ActiveAPIKeys).Error; err != nil {
		return nil, fmt.Errorf("failed to count active api keys: %w", err)
	}

	var imageBytes struct{ Total int64 }
	for _, model := range []any{&Category{}, &Item{}} {
		imageBytes.Total = 0
		if err := db.Model(model).Select("COALESCE(SUM(LENGTH(image)), 0) AS total").Scan(&imageBytes).Error; err != nil {
			return nil, fmt.Errorf("failed to sum image sizes: %w", err)
		}
		stats.ImageBytes += imageBytes.Total
	}
	return &stats, nil
}
