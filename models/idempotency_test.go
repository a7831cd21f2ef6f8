package models

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The idempotency key is unique per user, not globally: two users may
// present the same Idempotency-Key value without colliding. Both columns
// must sit on one composite unique index.
func TestIdempotencyKeyUniquePerUser(t *testing.T) {
	typ := reflect.TypeOf(IdempotencyKey{})

	keyField, ok := typ.FieldByName("Key")
	require.True(t, ok)
	userField, ok := typ.FieldByName("UserID")
	require.True(t, ok)

	const index = "uniqueIndex:idx_idempotency_keys_user_key"
	assert.Contains(t, keyField.Tag.Get("gorm"), index)
	assert.Contains(t, userField.Tag.Get("gorm"), index)

	// No leftover single-column unique index on the key.
	for _, part := range strings.Split(keyField.Tag.Get("gorm"), ";") {
		assert.NotEqual(t, "uniqueIndex", part)
	}
}
