package utils

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserContext(t *testing.T) {
	t.Run("SetUserContext and GetUserIDFromContext", func(t *testing.T) {
		ctx := SetUserContext(context.Background(), 42, "buyer@example.com", RoleUser)

		id, ok := GetUserIDFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, uint(42), id)
		assert.Equal(t, "buyer@example.com", GetUserEmailFromContext(ctx))
		assert.Equal(t, RoleUser, GetUserRoleFromContext(ctx))
		assert.False(t, IsAdmin(ctx))
	})

	t.Run("GetUserIDFromContext with empty context", func(t *testing.T) {
		_, ok := GetUserIDFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("IsAdmin", func(t *testing.T) {
		ctx := SetUserContext(context.Background(), 1, "admin@example.com", RoleAdmin)
		assert.True(t, IsAdmin(ctx))
	})
}

func TestGenerateOrderNumber(t *testing.T) {
	n1 := GenerateOrderNumber()
	n2 := GenerateOrderNumber()

	assert.True(t, strings.HasPrefix(n1, "ORD-"))
	assert.NotEqual(t, n1, n2)

	parts := strings.Split(n1, "-")
	assert.Len(t, parts, 3)
	assert.Len(t, parts[2], 5)
}

func TestGenerateSKU(t *testing.T) {
	sku := GenerateSKU()
	assert.True(t, strings.HasPrefix(sku, "DAV-"))
	assert.NotEqual(t, sku, GenerateSKU())
}
