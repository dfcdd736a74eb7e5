package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/utils"
)

func TestLoginRefreshLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.sessions.Login(ctx, "SAM@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, f.salesman.ID, s.User.ID)
	claims, err := utils.ParseAccessToken("test-secret", s.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleSalesman, claims.Role)

	rotated, err := f.sessions.Refresh(ctx, s.Refresh.Token)
	require.NoError(t, err)
	assert.NotEqual(t, s.Refresh.Token, rotated.Refresh.Token)

	// the old refresh token was revoked by the rotation
	_, err = f.sessions.Refresh(ctx, s.Refresh.Token)
	requireKind(t, err, apperr.Unauthorized)

	require.NoError(t, f.sessions.Logout(ctx, rotated.Refresh.Token))
	_, err = f.sessions.Refresh(ctx, rotated.Refresh.Token)
	requireKind(t, err, apperr.Unauthorized)
}

func TestLogin_BadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sessions.Login(ctx, "sam@example.com", "wrong")
	requireKind(t, err, apperr.Unauthorized)
	_, err = f.sessions.Login(ctx, "nobody@example.com", "secret1")
	requireKind(t, err, apperr.Unauthorized)
	_, err = f.sessions.Login(ctx, "", "")
	requireKind(t, err, apperr.BadRequest)
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	u, err := f.sessions.Me(context.Background(), f.supervisor)
	require.NoError(t, err)
	assert.Equal(t, "Sue", u.Name)

	_, err = f.sessions.Me(context.Background(), nil)
	requireKind(t, err, apperr.Unauthorized)
}
