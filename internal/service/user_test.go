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

func TestUserCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Create(ctx, f.admin, UserInput{Name: "Ann", Email: " Ann@Example.com ", Password: "hunter22", Role: model.RoleSalesman})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "hunter22"))

	_, err = f.users.Create(ctx, f.admin, UserInput{Name: "Ann 2", Email: "ann@example.com", Password: "hunter22", Role: model.RoleSalesman})
	requireKind(t, err, apperr.Conflict)

	_, err = f.users.Create(ctx, f.admin, UserInput{Name: "Bob", Email: "bob@example.com", Password: "123", Role: model.RoleSalesman})
	requireKind(t, err, apperr.BadRequest)

	_, err = f.users.Create(ctx, f.admin, UserInput{Name: "Bob", Email: "bob@example.com", Password: "hunter22", Role: "owner"})
	requireKind(t, err, apperr.BadRequest)

	_, err = f.users.Create(ctx, f.supervisor, UserInput{Name: "Bob", Email: "bob@example.com", Password: "hunter22", Role: model.RoleSalesman})
	requireKind(t, err, apperr.Forbidden)
}

func TestUserUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	name, pw := "Samuel", "newpass1"
	u, err := f.users.Update(ctx, f.admin, f.salesman.ID, UserPatch{Name: &name, Password: &pw})
	require.NoError(t, err)
	assert.Equal(t, "Samuel", u.Name)
	assert.Equal(t, "sam@example.com", u.Email)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "newpass1"))

	taken := "sue@example.com"
	_, err = f.users.Update(ctx, f.admin, f.salesman.ID, UserPatch{Email: &taken})
	requireKind(t, err, apperr.Conflict)

	_, err = f.users.Update(ctx, f.admin, 999, UserPatch{Name: &name})
	requireKind(t, err, apperr.NotFound)
}

func TestUserDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.users.Delete(ctx, f.admin, f.admin.ID)
	requireKind(t, err, apperr.Forbidden)
	assert.Equal(t, "you are not allowed to delete yourself", apperr.Normalize(err).Message)

	_, err = f.reservations.Create(ctx, f.salesman, reservationInput(f.unit("K-01").ID))
	require.NoError(t, err)
	requireKind(t, f.users.Delete(ctx, f.admin, f.salesman.ID), apperr.BadRequest)

	require.NoError(t, f.users.Delete(ctx, f.admin, f.supervisor.ID))
	_, err = f.users.Get(ctx, f.admin, f.supervisor.ID)
	requireKind(t, err, apperr.NotFound)
	requireKind(t, f.users.Delete(ctx, f.admin, f.supervisor.ID), apperr.NotFound)
}

func TestUserList_FilterByRole(t *testing.T) {
	f := newFixture(t)
	res, err := f.users.List(context.Background(), f.salesman, UserQuery{Role: model.RoleSupervisor})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Sue", res.Data[0].Name)
}
