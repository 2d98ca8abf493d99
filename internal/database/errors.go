package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrIntegrity is returned when a write violates a unique or foreign key constraint.
	ErrIntegrity = errors.New("integrity constraint violated")
	// ErrRoleAlreadyAssigned is returned when a user already owns a subtype row.
	ErrRoleAlreadyAssigned = fmt.Errorf("%w: user already has a role", ErrIntegrity)
	// ErrNoUpdates is returned by partial updates that carry no fields.
	ErrNoUpdates = errors.New("no updates provided")
)

// IsIntegrityError reports whether err was caused by a constraint violation.
func IsIntegrityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrIntegrity) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"unique constraint",
		"foreign key constraint",
		"duplicate key value",
		"violates foreign key",
		"not null constraint",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// translateError maps driver errors onto the package sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrIntegrity):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case IsIntegrityError(err):
		return fmt.Errorf("%w: %w", ErrIntegrity, err)
	default:
		return err
	}
}

// NotFoundError names the entity a lookup missed. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", strings.ToLower(e.Entity), e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
