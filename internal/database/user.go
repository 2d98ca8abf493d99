package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// User is an account that can log in.
// A user owns at most one of Admin, Student or Teacher.
type User struct {
	Base
	Firstname    string `gorm:"not null"`
	Lastname     string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	IsAdmin      bool   `gorm:"not null;default:false"`
	Timestamps

	Admin   *Admin   `gorm:"constraint:OnDelete:CASCADE;"`
	Student *Student `gorm:"constraint:OnDelete:CASCADE;"`
	Teacher *Teacher `gorm:"constraint:OnDelete:CASCADE;"`
}

func (User) TableName() string { return "user" }

// NewUser builds a user with a normalised email.
func NewUser(firstname, lastname, email, passwordHash string, isAdmin bool) *User {
	return &User{
		Firstname:    firstname,
		Lastname:     lastname,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
	}
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts the user and, if assignment is set, its subtype row in a single transaction.
func (c *Client) CreateUser(ctx context.Context, user *User, assignment *RoleAssignment) (*User, error) {
	user.Email = NormalizeEmail(user.Email)
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Admin", "Student", "Teacher").Create(user).Error; err != nil {
			return err
		}
		if assignment == nil || assignment.Role == RoleNone {
			return nil
		}
		return assignRole(tx, user.ID, *assignment)
	})
	if err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrIntegrity) {
			log.Error("failed to create user", "error", err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return c.GetUserByID(ctx, user.ID)
}

func (c *Client) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := preloadRoles(c.db.WithContext(ctx)).First(&user, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get user by ID", "error", err)
		}
		return nil, translateError(err)
	}
	return &user, nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := preloadRoles(c.db.WithContext(ctx)).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get user by email", "error", err)
		}
		return nil, translateError(err)
	}
	return &user, nil
}

func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := preloadRoles(c.db.WithContext(ctx)).Order("id").Find(&users).Error; err != nil {
		log.Error("failed to get all users", "error", err)
		return nil, err
	}
	return users, nil
}

func preloadRoles(db *gorm.DB) *gorm.DB {
	return db.Preload("Admin").Preload("Student").Preload("Teacher")
}
