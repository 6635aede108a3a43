package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	j := NewJWTUtil("unit-test-secret", 1)

	token, err := j.GenerateToken(42, "zhangsan", "vendor")
	require.NoError(t, err)

	claims, err := j.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "zhangsan", claims.Username)
	assert.Equal(t, "vendor", claims.Role)
}

func TestJWTWrongSecret(t *testing.T) {
	j := NewJWTUtil("secret-a", 1)
	token, err := j.GenerateToken(1, "u", "user")
	require.NoError(t, err)

	other := NewJWTUtil("secret-b", 1)
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTExpired(t *testing.T) {
	j := NewJWTUtil("unit-test-secret", 0)
	j.expireTime = -time.Minute

	token, err := j.GenerateToken(1, "u", "user")
	require.NoError(t, err)

	_, err = j.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{13}-[0-9A-Z]{9}$`)

func TestGenerateOrderNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		num := GenerateOrderNumber()
		assert.Regexp(t, orderNumberPattern, num)
		assert.False(t, seen[num], "duplicate order number %s", num)
		seen[num] = true
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPassword("s3cret-pass", hash))
	assert.False(t, CheckPassword("wrong-pass", hash))
}
