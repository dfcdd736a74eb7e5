package memory

import (
	"context"
	"strings"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
	"github.com/iliyamo/unit-reservation/internal/repository"
)

// table helpers shared by the id-keyed entities

func get[V any](g *gw, tbl func(*data) map[uint64]V, id uint64) (out V, err error) {
	err = g.with(func(d *data) error {
		v, ok := tbl(d)[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = v
		return nil
	})
	return out, err
}

func list[V any](g *gw, tbl func(*data) map[uint64]V, keep func(V) bool, w pagination.Window) (out []V, err error) {
	err = g.with(func(d *data) error {
		out = pagination.Slice(newestFirst(tbl(d), keep), w)
		return nil
	})
	return out, err
}

func count[V any](g *gw, tbl func(*data) map[uint64]V, keep func(V) bool) (n int, err error) {
	err = g.with(func(d *data) error {
		n = len(sortedValues(tbl(d), keep))
		return nil
	})
	return n, err
}

func remove[V any](g *gw, tbl func(*data) map[uint64]V, id uint64) error {
	return g.with(func(d *data) error {
		m := tbl(d)
		if _, ok := m[id]; !ok {
			return repository.ErrNotFound
		}
		delete(m, id)
		return nil
	})
}

func nameMatch(f repository.NameFilter, name string) bool {
	return f.Name == "" || strings.Contains(strings.ToLower(name), strings.ToLower(f.Name))
}

type towers struct{ g *gw }

func towerTbl(d *data) map[uint64]model.Tower { return d.towers }

func (r towers) Get(_ context.Context, id uint64) (model.Tower, error) { return get(r.g, towerTbl, id) }

func (r towers) List(_ context.Context, f repository.NameFilter, w pagination.Window) ([]model.Tower, error) {
	return list(r.g, towerTbl, func(t model.Tower) bool { return nameMatch(f, t.Name) }, w)
}

func (r towers) Count(_ context.Context, f repository.NameFilter) (int, error) {
	return count(r.g, towerTbl, func(t model.Tower) bool { return nameMatch(f, t.Name) })
}

func (r towers) Create(_ context.Context, t *model.Tower) error {
	return r.g.with(func(d *data) error {
		t.ID = d.next("towers")
		t.CreatedAt, t.UpdatedAt = now(), now()
		d.towers[t.ID] = *t
		return nil
	})
}

func (r towers) Update(_ context.Context, t *model.Tower) error {
	return r.g.with(func(d *data) error {
		if old, ok := d.towers[t.ID]; ok {
			t.CreatedAt, t.UpdatedAt = old.CreatedAt, now()
			d.towers[t.ID] = *t
		}
		return nil
	})
}

func (r towers) Delete(_ context.Context, id uint64) error { return remove(r.g, towerTbl, id) }

type floors struct{ g *gw }

func floorTbl(d *data) map[uint64]model.Floor { return d.floors }

func floorMatch(f repository.FloorFilter) func(model.Floor) bool {
	return func(fl model.Floor) bool { return f.TowerID == 0 || fl.TowerID == f.TowerID }
}

func (r floors) Get(_ context.Context, id uint64) (model.Floor, error) { return get(r.g, floorTbl, id) }

func (r floors) List(_ context.Context, f repository.FloorFilter, w pagination.Window) ([]model.Floor, error) {
	return list(r.g, floorTbl, floorMatch(f), w)
}

func (r floors) Count(_ context.Context, f repository.FloorFilter) (int, error) {
	return count(r.g, floorTbl, floorMatch(f))
}

func (r floors) Create(_ context.Context, fl *model.Floor) error {
	return r.g.with(func(d *data) error {
		if _, ok := d.towers[fl.TowerID]; !ok {
			return errForeignKey("floors.tower_id")
		}
		fl.ID = d.next("floors")
		fl.CreatedAt, fl.UpdatedAt = now(), now()
		d.floors[fl.ID] = *fl
		return nil
	})
}

func (r floors) Update(_ context.Context, fl *model.Floor) error {
	return r.g.with(func(d *data) error {
		old, ok := d.floors[fl.ID]
		if !ok {
			return nil
		}
		if _, ok := d.towers[fl.TowerID]; !ok {
			return errForeignKey("floors.tower_id")
		}
		fl.CreatedAt, fl.UpdatedAt = old.CreatedAt, now()
		d.floors[fl.ID] = *fl
		return nil
	})
}

func (r floors) Delete(_ context.Context, id uint64) error { return remove(r.g, floorTbl, id) }

type roomTypes struct{ g *gw }

func roomTypeTbl(d *data) map[uint64]model.RoomType { return d.roomTypes }

func (r roomTypes) Get(_ context.Context, id uint64) (model.RoomType, error) {
	return get(r.g, roomTypeTbl, id)
}

func (r roomTypes) List(_ context.Context, f repository.NameFilter, w pagination.Window) ([]model.RoomType, error) {
	return list(r.g, roomTypeTbl, func(rt model.RoomType) bool { return nameMatch(f, rt.Name) }, w)
}

func (r roomTypes) Count(_ context.Context, f repository.NameFilter) (int, error) {
	return count(r.g, roomTypeTbl, func(rt model.RoomType) bool { return nameMatch(f, rt.Name) })
}

func (r roomTypes) Create(_ context.Context, rt *model.RoomType) error {
	return r.g.with(func(d *data) error {
		rt.ID = d.next("room_types")
		rt.CreatedAt, rt.UpdatedAt = now(), now()
		d.roomTypes[rt.ID] = *rt
		return nil
	})
}

func (r roomTypes) Update(_ context.Context, rt *model.RoomType) error {
	return r.g.with(func(d *data) error {
		if old, ok := d.roomTypes[rt.ID]; ok {
			rt.CreatedAt, rt.UpdatedAt = old.CreatedAt, now()
			d.roomTypes[rt.ID] = *rt
		}
		return nil
	})
}

func (r roomTypes) Delete(_ context.Context, id uint64) error { return remove(r.g, roomTypeTbl, id) }

type facilities struct{ g *gw }

func facilityTbl(d *data) map[uint64]model.Facility { return d.facilities }

func (r facilities) Get(_ context.Context, id uint64) (model.Facility, error) {
	return get(r.g, facilityTbl, id)
}

func (r facilities) FindByIDs(_ context.Context, ids []uint64) (out []model.Facility, err error) {
	want := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	err = r.g.with(func(d *data) error {
		out = sortedValues(d.facilities, func(f model.Facility) bool { return want[f.ID] })
		return nil
	})
	return out, err
}

func (r facilities) List(_ context.Context, f repository.NameFilter, w pagination.Window) ([]model.Facility, error) {
	return list(r.g, facilityTbl, func(fc model.Facility) bool { return nameMatch(f, fc.Name) }, w)
}

func (r facilities) Count(_ context.Context, f repository.NameFilter) (int, error) {
	return count(r.g, facilityTbl, func(fc model.Facility) bool { return nameMatch(f, fc.Name) })
}

func (r facilities) Create(_ context.Context, fc *model.Facility) error {
	return r.g.with(func(d *data) error {
		fc.ID = d.next("facilities")
		fc.CreatedAt, fc.UpdatedAt = now(), now()
		d.facilities[fc.ID] = *fc
		return nil
	})
}

func (r facilities) Update(_ context.Context, fc *model.Facility) error {
	return r.g.with(func(d *data) error {
		if old, ok := d.facilities[fc.ID]; ok {
			fc.CreatedAt, fc.UpdatedAt = old.CreatedAt, now()
			d.facilities[fc.ID] = *fc
		}
		return nil
	})
}

// Delete also drops the facility's join rows, like the ON DELETE CASCADE
// on unit_facilities.
func (r facilities) Delete(_ context.Context, id uint64) error {
	return r.g.with(func(d *data) error {
		if _, ok := d.facilities[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.facilities, id)
		for uf := range d.unitFacilities {
			if uf.FacilityID == id {
				delete(d.unitFacilities, uf)
			}
		}
		return nil
	})
}
