package models

import (
	"github.com/btecbytes/bytesapi/internal/database"
	"github.com/btecbytes/bytesapi/internal/gravatar"
	"github.com/samber/lo"
)

// ToUser converts a database.User loaded with its roles.
func ToUser(u database.User, avatars *gravatar.Resolver) User {
	user := User{
		ID:        u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		LastEdit:  u.LastEdit,
		Usertype:  string(u.Role()),
		AvatarURL: avatars.URL(u.Email),
	}

	switch {
	case u.Admin != nil:
		user.Admin = &Admin{ID: u.Admin.ID, UserID: u.Admin.UserID, AccessRank: u.Admin.AccessRank}
	case u.Student != nil:
		user.Student = &Student{ID: u.Student.ID, UserID: u.Student.UserID}
	case u.Teacher != nil:
		user.Teacher = &Teacher{ID: u.Teacher.ID, UserID: u.Teacher.UserID, Subject: u.Teacher.Subject}
	}

	return user
}

// ToUsers converts users to their detailed or summary form.
func ToUsers(users []database.User, detailed bool, avatars *gravatar.Resolver) []any {
	return lo.Map(users, func(u database.User, _ int) any {
		if !detailed {
			return Summary{ID: u.ID}
		}
		return ToUser(u, avatars)
	})
}

func ToCategory(c database.Category) Category {
	return Category{
		ID:          c.ID,
		Title:       c.Title,
		URLExt:      c.URLExt,
		Image:       c.Image,
		ImageFormat: c.ImageFormat,
		Snippet:     c.Snippet,
		Description: c.Description,
		Items: lo.Map(c.Items, func(i database.Item, _ int) Summary {
			return Summary{ID: i.ID}
		}),
	}
}

func ToCategories(categories []database.Category, detailed bool) []any {
	return lo.Map(categories, func(c database.Category, _ int) any {
		if !detailed {
			return Summary{ID: c.ID}
		}
		return ToCategory(c)
	})
}

func ToItem(i database.Item) Item {
	item := Item{
		ID:          i.ID,
		Title:       i.Title,
		Snippet:     i.Snippet,
		Description: i.Description,
		Image:       i.Image,
		ImageFormat: i.ImageFormat,
		Price:       i.Price,
		CategoryID:  i.CategoryID,
	}
	if i.Category != nil {
		item.CategoryURLExt = i.Category.URLExt
	}
	return item
}

func ToItems(items []database.Item, detailed bool) []any {
	return lo.Map(items, func(i database.Item, _ int) any {
		if !detailed {
			return Summary{ID: i.ID}
		}
		return ToItem(i)
	})
}

func ToWishlist(w database.Wishlist) Wishlist {
	wishlist := Wishlist{
		ID:          w.ID,
		ItemID:      w.ItemID,
		UserID:      w.UserID,
		Title:       w.Title,
		Snippet:     w.Snippet,
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
		LastEdit:    w.LastEdit,
	}
	// Item details are joined in when loaded.
	if w.Item != nil {
		wishlist.ItemTitle = w.Item.Title
		wishlist.ItemSnippet = w.Item.Snippet
		wishlist.ItemPrice = w.Item.Price
	}
	return wishlist
}

func ToWishlists(wishlists []database.Wishlist, detailed bool) []any {
	return lo.Map(wishlists, func(w database.Wishlist, _ int) any {
		if !detailed {
			return Summary{ID: w.ID}
		}
		return ToWishlist(w)
	})
}
