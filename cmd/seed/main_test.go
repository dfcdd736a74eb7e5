package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/repository/memory"
	"github.com/iliyamo/unit-reservation/internal/utils"
)

func TestSeedAdmin_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	admin := model.User{Name: "Administrator", Email: "Admin@Example.com", Role: model.RoleAdmin}

	created, err := seedAdmin(ctx, store, admin, "admin123", 4)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = seedAdmin(ctx, store, admin, "other-pass", 4)
	require.NoError(t, err)
	assert.False(t, created)

	u, err := store.Users().GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "admin123"))
}
