package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ DB = (*Client)(nil) // Ensure Client implements DB

// DB is the storage surface used by the API handlers, the CLI and the scheduler.
type DB interface {
	CreateUser(ctx context.Context, user *User, assignment *RoleAssignment) (*User, error)
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	AssignRole(ctx context.Context, userID uint, assignment RoleAssignment) error
	ResolveRole(ctx context.Context, userID uint) (Role, error)

	CreateCategory(ctx context.Context, category *Category) (*Category, error)
	GetAllCategories(ctx context.Context) ([]Category, error)
	GetCategoryByURLExt(ctx context.Context, urlExt string) (*Category, error)
	UpdateCategory(ctx context.Context, urlExt string, update CategoryUpdate) (*Category, error)
	DeleteCategory(ctx context.Context, urlExt string) (*Category, error)

	CreateItem(ctx context.Context, item *Item) (*Item, error)
	GetAllItems(ctx context.Context) ([]Item, error)
	GetItemByID(ctx context.Context, id uint) (*Item, error)
	DeleteItem(ctx context.Context, id uint) error

	CreateWishlist(ctx context.Context, wishlist *Wishlist) (*Wishlist, error)
	GetAllWishlists(ctx context.Context) ([]Wishlist, error)
	GetWishlistByID(ctx context.Context, id uint) (*Wishlist, error)

	CreateAPIKey(ctx context.Context) (*APIKey, error)
	GetAPIKeys(ctx context.Context) ([]APIKey, error)
	GetAPIKey(ctx context.Context, key string) (*APIKey, error)
	ExpireAPIKey(ctx context.Context, key string) error
	ExpireAPIKeysCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// New opens the database described by uri and migrates the schema.
// Supported forms are postgres:// and postgresql:// DSNs, sqlite:/// URIs
// and plain file paths, which are opened with SQLite.
func New(uri string) (*Client, error) {
	dialector, err := openDialector(uri)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&User{},
		&Admin{},
		&Student{},
		&Teacher{},
		&Category{},
		&Item{},
		&Wishlist{},
		&APIKey{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Client{db: db}, nil
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func openDialector(uri string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return postgres.Open(uri), nil
	case uri == "":
		return nil, fmt.Errorf("database uri is empty")
	}

	path := SQLitePath(uri)
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	return sqlite.Open(path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"), nil
}

// SQLitePath strips the sqlite:/// scheme from uri, if present.
// sqlite:///test.db is relative, sqlite:////var/db/test.db is absolute.
func SQLitePath(uri string) string {
	return strings.TrimPrefix(uri, "sqlite:///")
}
