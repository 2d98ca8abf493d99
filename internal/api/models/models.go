package models

import "time"

// Envelope wraps every JSON response of the API.
type Envelope struct {
	Response  int    `json:"response"`
	Data      any    `json:"data"`
	Message   string `json:"message"`
	Exception string `json:"exception,omitempty"`
}

// Summary is the short form of any entity.
type Summary struct {
	ID uint `json:"id"`
}

// User is the detailed form of a user.
type User struct {
	ID        uint      `json:"id"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	LastEdit  time.Time `json:"last_edit"`
	Usertype  string    `json:"usertype,omitempty"`
	Admin     *Admin    `json:"admin,omitempty"`
	Student   *Student  `json:"student,omitempty"`
	Teacher   *Teacher  `json:"teacher,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

type Admin struct {
	ID         uint `json:"id"`
	UserID     uint `json:"user_id"`
	AccessRank int  `json:"access_rank"`
}

type Student struct {
	ID     uint `json:"id"`
	UserID uint `json:"user_id"`
}

type Teacher struct {
	ID      uint   `json:"id"`
	UserID  uint   `json:"user_id"`
	Subject string `json:"subject"`
}

// Category is the detailed form of a category. Items are listed as summaries.
type Category struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	URLExt      string    `json:"url_ext"`
	Image       []byte    `json:"image"`
	ImageFormat string    `json:"image_format"`
	Snippet     string    `json:"snippet"`
	Description string    `json:"description"`
	Items       []Summary `json:"items"`
}

// Item is the detailed form of an item.
type Item struct {
	ID             uint   `json:"id"`
	Title          string `json:"title"`
	Snippet        string `json:"snippet"`
	Description    string `json:"description"`
	Image          []byte `json:"image"`
	ImageFormat    string `json:"image_format"`
	Price          int64  `json:"price"`
	CategoryID     uint   `json:"category_id"`
	CategoryURLExt string `json:"category_url_ext"`
}

// Wishlist is the detailed form of a wishlist entry.
type Wishlist struct {
	ID          uint      `json:"id"`
	ItemID      uint      `json:"item_id"`
	ItemTitle   string    `json:"item_title"`
	ItemSnippet string    `json:"item_snippet"`
	ItemPrice   int64     `json:"item_price"`
	UserID      uint      `json:"user_id"`
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	LastEdit    time.Time `json:"last_edit"`
}

// CreateUserRequest is the body of POST /user.
type CreateUserRequest struct {
	Firstname  string `json:"firstname" form:"firstname" binding:"required"`
	Lastname   string `json:"lastname" form:"lastname" binding:"required"`
	Email      string `json:"email" form:"email" binding:"required"`
	Password   string `json:"password" form:"password" binding:"required"`
	Usertype   string `json:"usertype" form:"usertype"`
	IsAdmin    bool   `json:"is_admin" form:"is_admin"`
	AccessRank int    `json:"access_rank" form:"access_rank"`
	Subject    string `json:"subject" form:"subject"`
}

// LoginRequest is the body of POST /auth.
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// CreateCategoryRequest is the body of POST /category.
type CreateCategoryRequest struct {
	Title       string `json:"title" binding:"required"`
	URLExt      string `json:"url_ext" binding:"required"`
	Image       []byte `json:"image" binding:"required"`
	ImageFormat string `json:"image_format" binding:"required"`
	Snippet     string `json:"snippet" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// UpdateCategoryRequest is the body of PATCH /category/{url_ext}. Omitted fields stay untouched.
type UpdateCategoryRequest struct {
	Title       *string `json:"title"`
	URLExt      *string `json:"url_ext"`
	Image       []byte  `json:"image"`
	ImageFormat *string `json:"image_format"`
	Snippet     *string `json:"snippet"`
	Description *string `json:"description"`
}

// CreateItemRequest is the body of POST /item.
type CreateItemRequest struct {
	Title       string `json:"title" binding:"required"`
	Snippet     string `json:"snippet" binding:"required"`
	Description string `json:"description" binding:"required"`
	Image       []byte `json:"image" binding:"required"`
	ImageFormat string `json:"image_format" binding:"required"`
	Price       *int64 `json:"price" binding:"required,min=0"`
	CategoryID  uint   `json:"category_id" binding:"required"`
}

// CreateWishlistRequest is the body of POST /wishlist.
type CreateWishlistRequest struct {
	ItemID      uint   `json:"item_id" binding:"required"`
	UserID      uint   `json:"user_id" binding:"required"`
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	Description string `json:"description"`
}
