package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Role names the subtype a user holds.
type Role string

const (
	RoleNone    Role = ""
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Roles lists every assignable role in resolution order.
var Roles = []Role{RoleAdmin, RoleStudent, RoleTeacher}

// ErrUnknownRole is returned by ParseRole for names outside Roles.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole parses a case-insensitive role name.
func ParseRole(name string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(name)))
	if !lo.Contains(Roles, role) {
		return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
	return role, nil
}

// ParseRoles parses role names, each of which may hold a comma separated list.
func ParseRoles(values []string) ([]Role, error) {
	var roles []Role
	for _, value := range values {
		for _, name := range strings.Split(value, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			role, err := ParseRole(name)
			if err != nil {
				return nil, err
			}
			roles = append(roles, role)
		}
	}
	return lo.Uniq(roles), nil
}

// RoleFilter selects users by role.
// A user passes if its role is not blacklisted and, when a whitelist is set, is whitelisted.
type RoleFilter struct {
	Whitelist []Role
	Blacklist []Role
}

// Allows reports whether role passes the filter.
func (f RoleFilter) Allows(role Role) bool {
	if len(f.Blacklist) > 0 && lo.Contains(f.Blacklist, role) {
		return false
	}
	if len(f.Whitelist) > 0 && !lo.Contains(f.Whitelist, role) {
		return false
	}
	return true
}

// Apply returns the users that pass the filter.
func (f RoleFilter) Apply(users []User) []User {
	return lo.Filter(users, func(u User, _ int) bool {
		return f.Allows(u.Role())
	})
}

// RoleAssignment describes the subtype row to create for a user.
type RoleAssignment struct {
	Role       Role
	AccessRank int
	Subject    string
}

// Admin is the administrator subtype of a user.
type Admin struct {
	Base
	UserID     uint `gorm:"uniqueIndex;not null"`
	AccessRank int  `gorm:"not null;default:0"`
}

func (Admin) TableName() string { return "admin" }

func NewAdmin(userID uint, accessRank int) *Admin {
	return &Admin{UserID: userID, AccessRank: accessRank}
}

// Student is the student subtype of a user.
type Student struct {
	Base
	UserID uint `gorm:"uniqueIndex;not null"`
}

func (Student) TableName() string { return "student" }

func NewStudent(userID uint) *Student {
	return &Student{UserID: userID}
}

// Teacher is the teacher subtype of a user.
type Teacher struct {
	Base
	UserID  uint   `gorm:"uniqueIndex;not null"`
	Subject string `gorm:"not null"`
}

func (Teacher) TableName() string { return "teacher" }

func NewTeacher(userID uint, subject string) *Teacher {
	return &Teacher{UserID: userID, Subject: subject}
}

// Role returns the role of a user loaded with its subtype associations.
func (u *User) Role() Role {
	switch {
	case u.Admin != nil:
		return RoleAdmin
	case u.Student != nil:
		return RoleStudent
	case u.Teacher != nil:
		return RoleTeacher
	default:
		return RoleNone
	}
}

// AssignRole creates the subtype row for an existing user.
func (c *Client) AssignRole(ctx context.Context, userID uint, assignment RoleAssignment) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return assignRole(tx, userID, assignment)
	})
	if err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrIntegrity) && !errors.Is(err, ErrNotFound) {
			log.Error("failed to assign role", "user_id", userID, "error", err)
		}
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

// ResolveRole looks the user up in every subtype table and returns the first match.
func (c *Client) ResolveRole(ctx context.Context, userID uint) (Role, error) {
	role, err := resolveRole(c.db.WithContext(ctx), userID)
	if err != nil {
		log.Error("failed to resolve role", "user_id", userID, "error", err)
		return RoleNone, err
	}
	return role, nil
}

func resolveRole(db *gorm.DB, userID uint) (Role, error) {
	for _, candidate := range []struct {
		role  Role
		model any
	}{
		{RoleAdmin, &Admin{}},
		{RoleStudent, &Student{}},
		{RoleTeacher, &Teacher{}},
	} {
		var count int64
		if err := db.Model(candidate.model).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return RoleNone, err
		}
		if count > 0 {
			return candidate.role, nil
		}
	}
	return RoleNone, nil
}

// assignRole runs the pre-insert guard and creates the subtype row inside tx.
func assignRole(tx *gorm.DB, userID uint, assignment RoleAssignment) error {
	existing, err := resolveRole(tx, userID)
	if err != nil {
		return err
	}
	if existing != RoleNone {
		return fmt.Errorf("%w (user %d is %s)", ErrRoleAlreadyAssigned, userID, existing)
	}

	var row any
	switch assignment.Role {
	case RoleAdmin:
		row = NewAdmin(userID, assignment.AccessRank)
	case RoleStudent:
		row = NewStudent(userID)
	case RoleTeacher:
		row = NewTeacher(userID, assignment.Subject)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRole, assignment.Role)
	}
	return tx.Create(row).Error
}
