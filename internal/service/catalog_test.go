package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/pagination"
	"github.com/iliyamo/unit-reservation/internal/storage"
)

func TestCatalogRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.facilities.Create(ctx, f.salesman, NameInput{Name: "Pool"})
	requireKind(t, err, apperr.Forbidden)
	_, err = f.facilities.Create(ctx, nil, NameInput{Name: "Pool"})
	requireKind(t, err, apperr.Unauthorized)

	fc, err := f.facilities.Create(ctx, f.admin, NameInput{Name: "  Pool "})
	require.NoError(t, err)
	assert.Equal(t, "Pool", fc.Name)

	got, err := f.facilities.Get(ctx, f.salesman, fc.ID)
	require.NoError(t, err)
	assert.Equal(t, fc.ID, got.ID)
}

func TestCatalogCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.roomTypes.Create(ctx, f.admin, NameInput{Name: " "})
	requireKind(t, err, apperr.BadRequest)

	for _, n := range []string{"Studio", "1BR", "2BR"} {
		_, err := f.roomTypes.Create(ctx, f.admin, NameInput{Name: n})
		require.NoError(t, err)
	}
	res, err := f.roomTypes.List(ctx, f.supervisor, NameQuery{Name: "BR"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	rt := res.Data[0]
	upd, err := f.roomTypes.Update(ctx, f.admin, rt.ID, NameInput{Name: "Loft"})
	require.NoError(t, err)
	assert.Equal(t, "Loft", upd.Name)

	_, err = f.roomTypes.Update(ctx, f.admin, 999, NameInput{Name: "x"})
	requireKind(t, err, apperr.NotFound)

	require.NoError(t, f.roomTypes.Delete(ctx, f.admin, rt.ID))
	_, err = f.roomTypes.Get(ctx, f.admin, rt.ID)
	requireKind(t, err, apperr.NotFound)

	bad := 0
	_, err = f.roomTypes.List(ctx, f.admin, NameQuery{Params: pagination.Params{Page: &bad}})
	requireKind(t, err, apperr.BadRequest)
}

func TestDeleteGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.unit("J-01")
	fl, err := f.floors.Get(ctx, f.admin, u.FloorID)
	require.NoError(t, err)

	err = f.towers.Delete(ctx, f.admin, fl.TowerID)
	requireKind(t, err, apperr.BadRequest)
	assert.Equal(t, "tower has floors", apperr.Normalize(err).Message)
	requireKind(t, f.floors.Delete(ctx, f.admin, fl.ID), apperr.BadRequest)
	requireKind(t, f.roomTypes.Delete(ctx, f.admin, u.RoomTypeID), apperr.BadRequest)

	// a facility in use is removed together with its links
	fc := f.facility("Pool")
	_, err = f.units.Update(ctx, f.admin, u.ID, UnitPatch{Facilities: []uint64{fc}})
	require.NoError(t, err)
	require.NoError(t, f.facilities.Delete(ctx, f.admin, fc))
	d, err := f.units.Get(ctx, f.admin, u.ID)
	require.NoError(t, err)
	assert.Empty(t, d.Facilities)

	require.NoError(t, f.units.Delete(ctx, f.admin, u.ID))
	require.NoError(t, f.floors.Delete(ctx, f.admin, fl.ID))
	require.NoError(t, f.towers.Delete(ctx, f.admin, fl.TowerID))
}

func TestFloorPlanLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tw, err := f.towers.Create(ctx, f.admin, NameInput{Name: "T"})
	require.NoError(t, err)

	_, err = f.floors.Create(ctx, f.admin, FloorInput{TowerID: 999, Label: "L1"})
	requireKind(t, err, apperr.BadRequest)
	assert.Equal(t, "tower not found", apperr.Normalize(err).Message)

	plan := png("plan.png")
	fl, err := f.floors.Create(ctx, f.admin, FloorInput{TowerID: tw.ID, Label: "L1", Number: 1, Plan: &plan})
	require.NoError(t, err)
	old := fl.FloorPlanImageURL

	next := png("plan2.png")
	label := "Lobby"
	fl, err = f.floors.Update(ctx, f.admin, fl.ID, FloorPatch{Label: &label, Plan: &next})
	require.NoError(t, err)
	assert.Equal(t, "Lobby", fl.Label)
	assert.False(t, f.blobExists(old))
	assert.True(t, f.blobExists(fl.FloorPlanImageURL))

	missing := uint64(999)
	_, err = f.floors.Update(ctx, f.admin, fl.ID, FloorPatch{TowerID: &missing})
	requireKind(t, err, apperr.BadRequest)

	res, err := f.floors.List(ctx, f.salesman, FloorQuery{TowerID: tw.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	require.NoError(t, f.floors.Delete(ctx, f.admin, fl.ID))
	assert.Equal(t, 0, f.blobCount())
}

func TestFloorCreate_RejectsOversizedPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tw, err := f.towers.Create(ctx, f.admin, NameInput{Name: "T"})
	require.NoError(t, err)

	plan := png("plan.png")
	plan.Size = storage.DefaultMaxBytes + 1
	_, err = f.floors.Create(ctx, f.admin, FloorInput{TowerID: tw.ID, Label: "L1", Plan: &plan})
	requireKind(t, err, apperr.BadRequest)
	assert.Equal(t, 0, f.blobCount())
}
