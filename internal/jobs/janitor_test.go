package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/repository/memory"
)

func TestTokenJanitor_RunOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	u := model.User{Name: "a", Email: "a@example.com", Role: model.RoleAdmin}
	require.NoError(t, store.Users().Create(ctx, &u))

	now := time.Now().UTC()
	require.NoError(t, store.Tokens().StoreRefresh(ctx, u.ID, "expired", now.Add(-time.Hour)))
	require.NoError(t, store.Tokens().StoreRefresh(ctx, u.ID, "revoked", now.Add(time.Hour)))
	require.NoError(t, store.Tokens().RevokeByHash(ctx, "revoked"))
	require.NoError(t, store.Tokens().StoreRefresh(ctx, u.ID, "live", now.Add(time.Hour)))

	j := NewTokenJanitor(store.Tokens(), zap.NewNop())
	j.now = func() time.Time { return now.Add(time.Second) }
	n, err := j.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	uid, err := store.Tokens().ValidateRefresh(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)
}

func TestTokenJanitor_StartRejectsBadSpec(t *testing.T) {
	j := NewTokenJanitor(memory.NewStore().Tokens(), zap.NewNop())
	_, err := j.Start(context.Background(), "every tuesday")
	assert.Error(t, err)
}

func TestTokenJanitor_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	j := NewTokenJanitor(memory.NewStore().Tokens(), zap.NewNop())
	done, err := j.Start(ctx, "@hourly")
	require.NoError(t, err)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}
