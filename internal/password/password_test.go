package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generated with passlib's pbkdf2_sha512 layout, salt "0123456789abcdef", 1000 rounds
const knownHash = "$pbkdf2-sha512$1000$MDEyMzQ1Njc4OWFiY2RlZg$OM0FAoIqCVK1sWtxDiffVlBejtLa.ks4TP71JiecwuSZCG8iLbnlIEPOMoVX.i2B2wkSxjQ8CRGR9OkNGuIPMQ"

func TestHashAndVerify(t *testing.T) {
	hash, err := HashWithRounds("s3cret", 1000)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$pbkdf2-sha512$1000$"))
	assert.True(t, Verify("s3cret", hash))
	assert.False(t, Verify("S3cret", hash))
}

func TestHashUsesRandomSalt(t *testing.T) {
	a, err := HashWithRounds("same", 1000)
	require.NoError(t, err)
	b, err := HashWithRounds("same", 1000)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashDefaultRounds(t *testing.T) {
	hash, err := Hash("pw")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$pbkdf2-sha512$25000$"))
}

func TestVerifyKnownHash(t *testing.T) {
	assert.True(t, Verify("correct horse", knownHash))
	assert.False(t, Verify("battery staple", knownHash))
}

func TestVerifyDecoy(t *testing.T) {
	assert.True(t, strings.HasPrefix(decoyHash(), "$pbkdf2-sha512$25000$"))
	assert.False(t, VerifyDecoy(""))
	assert.False(t, VerifyDecoy("anything"))
}

func TestVerifyMalformed(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{name: "empty", hash: ""},
		{name: "wrong scheme", hash: "$pbkdf2-sha256$1000$MDEy$OM0F"},
		{name: "bad rounds", hash: "$pbkdf2-sha512$abc$MDEy$OM0F"},
		{name: "bad salt", hash: "$pbkdf2-sha512$1000$!!$OM0F"},
		{name: "missing checksum", hash: "$pbkdf2-sha512$1000$MDEy$"},
		{name: "bcrypt", hash: "$2a$10$abcdefghijklmnopqrstuv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Verify("anything", tt.hash))
		})
	}
}

func TestHashWithRoundsRejectsZero(t *testing.T) {
	_, err := HashWithRounds("pw", 0)
	assert.Error(t, err)
}
