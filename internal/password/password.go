// Package password hashes and verifies user passwords with PBKDF2-SHA512.
//
// Hashes use the modular crypt layout $pbkdf2-sha512$<rounds>$<salt>$<checksum>,
// where salt and checksum are base64 without padding and with '.' in place of '+'.
package password

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	scheme = "pbkdf2-sha512"
	// DefaultRounds is the iteration count used for new hashes.
	DefaultRounds = 25000
	saltSize      = 16
	keySize       = sha512.Size
)

// ErrMalformedHash is returned when a stored hash cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// decoyHash stands in for the stored hash of an account that does not exist.
var decoyHash = sync.OnceValue(func() string {
	hash, err := Hash("")
	if err != nil {
		return ""
	}
	return hash
})

// Hash derives a new hash for password with a random salt.
func Hash(password string) (string, error) {
	return HashWithRounds(password, DefaultRounds)
}

// HashWithRounds is Hash with a custom iteration count.
func HashWithRounds(password string, rounds int) (string, error) {
	if rounds < 1 {
		return "", fmt.Errorf("invalid rounds %d", rounds)
	}
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, rounds, keySize, sha512.New)
	return fmt.Sprintf("$%s$%d$%s$%s", scheme, rounds, encode(salt), encode(key)), nil
}

// Verify reports whether password matches hash. Malformed hashes never match.
func Verify(password, hash string) bool {
	rounds, salt, want, err := parse(hash)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), salt, rounds, len(want), sha512.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// VerifyDecoy does the work of Verify against a throwaway hash and always
// reports false. Call it when no account matches, so a miss costs as much as
// a wrong password.
func VerifyDecoy(password string) bool {
	Verify(password, decoyHash())
	return false
}

func parse(hash string) (int, []byte, []byte, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != scheme {
		return 0, nil, nil, ErrMalformedHash
	}
	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds < 1 {
		return 0, nil, nil, ErrMalformedHash
	}
	salt, err := decode(parts[3])
	if err != nil {
		return 0, nil, nil, ErrMalformedHash
	}
	key, err := decode(parts[4])
	if err != nil || len(key) == 0 {
		return 0, nil, nil, ErrMalformedHash
	}
	return rounds, salt, key, nil
}

func encode(b []byte) string {
	return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(b), "+", ".")
}

func decode(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.ReplaceAll(s, ".", "+"))
}
