package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
	"github.com/iliyamo/unit-reservation/internal/repository"
)

// errForeignKey mirrors a MySQL foreign key violation.  Services check
// references before writing, so reaching it is a programming error.
func errForeignKey(column string) error {
	return fmt.Errorf("memory: foreign key violation on %s", column)
}

type units struct{ g *gw }

func unitTbl(d *data) map[uint64]model.Unit { return d.units }

func unitMatch(d *data, f repository.UnitFilter) func(model.Unit) bool {
	return func(u model.Unit) bool {
		if f.UnitCode != "" && !strings.Contains(u.UnitCode, f.UnitCode) {
			return false
		}
		if f.FloorID != 0 && u.FloorID != f.FloorID {
			return false
		}
		if f.RoomTypeID != 0 && u.RoomTypeID != f.RoomTypeID {
			return false
		}
		if f.FacilityID != 0 {
			if _, ok := d.unitFacilities[model.UnitFacility{UnitID: u.ID, FacilityID: f.FacilityID}]; !ok {
				return false
			}
		}
		return true
	}
}

func detail(d *data, u model.Unit) model.UnitDetail {
	out := model.UnitDetail{
		Unit:         u,
		RoomTypeName: d.roomTypes[u.RoomTypeID].Name,
		Images:       sortedValues(d.images, func(img model.UnitImage) bool { return img.UnitID == u.ID }),
		Facilities:   []model.FacilityRef{},
	}
	for _, id := range facilityIDs(d, u.ID) {
		out.Facilities = append(out.Facilities, model.FacilityRef{ID: id, Name: d.facilities[id].Name})
	}
	return out
}

func facilityIDs(d *data, unitID uint64) []uint64 {
	var ids []uint64
	for uf := range d.unitFacilities {
		if uf.UnitID == unitID {
			ids = append(ids, uf.FacilityID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r units) Get(_ context.Context, id uint64) (model.Unit, error) { return get(r.g, unitTbl, id) }

func (r units) GetDetail(_ context.Context, id uint64) (out model.UnitDetail, err error) {
	err = r.g.with(func(d *data) error {
		u, ok := d.units[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = detail(d, u)
		return nil
	})
	return out, err
}

func (r units) List(_ context.Context, f repository.UnitFilter, w pagination.Window) (out []model.UnitDetail, err error) {
	err = r.g.with(func(d *data) error {
		page := pagination.Slice(newestFirst(d.units, unitMatch(d, f)), w)
		out = make([]model.UnitDetail, 0, len(page))
		for _, u := range page {
			out = append(out, detail(d, u))
		}
		return nil
	})
	return out, err
}

func (r units) Count(_ context.Context, f repository.UnitFilter) (n int, err error) {
	err = r.g.with(func(d *data) error {
		n = len(sortedValues(d.units, unitMatch(d, f)))
		return nil
	})
	return n, err
}

func checkUnitRefs(d *data, u *model.Unit) error {
	if _, ok := d.floors[u.FloorID]; !ok {
		return errForeignKey("units.floor_id")
	}
	if _, ok := d.roomTypes[u.RoomTypeID]; !ok {
		return errForeignKey("units.room_type_id")
	}
	return nil
}

func (r units) Create(_ context.Context, u *model.Unit) error {
	return r.g.with(func(d *data) error {
		if err := checkUnitRefs(d, u); err != nil {
			return err
		}
		u.ID = d.next("units")
		u.CreatedAt, u.UpdatedAt = now(), now()
		d.units[u.ID] = *u
		return nil
	})
}

func (r units) Update(_ context.Context, u *model.Unit) error {
	return r.g.with(func(d *data) error {
		old, ok := d.units[u.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if err := checkUnitRefs(d, u); err != nil {
			return err
		}
		u.CreatedAt, u.UpdatedAt = old.CreatedAt, now()
		d.units[u.ID] = *u
		return nil
	})
}

func (r units) SetStatus(_ context.Context, id uint64, status model.UnitStatus) error {
	return r.g.with(func(d *data) error {
		if u, ok := d.units[id]; ok {
			u.Status, u.UpdatedAt = status, now()
			d.units[id] = u
		}
		return nil
	})
}

func (r units) Delete(_ context.Context, id uint64) error {
	return r.g.with(func(d *data) error {
		if _, ok := d.units[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.units, id)
		deleteImages(d, id)
		clearFacilities(d, id)
		return nil
	})
}

func (r units) Images(_ context.Context, unitID uint64) (out []model.UnitImage, err error) {
	err = r.g.with(func(d *data) error {
		out = sortedValues(d.images, func(img model.UnitImage) bool { return img.UnitID == unitID })
		return nil
	})
	return out, err
}

func (r units) AddImage(_ context.Context, img *model.UnitImage) error {
	return r.g.with(func(d *data) error {
		if _, ok := d.units[img.UnitID]; !ok {
			return errForeignKey("unit_images.unit_id")
		}
		img.ID = d.next("unit_images")
		d.images[img.ID] = *img
		return nil
	})
}

func deleteImages(d *data, unitID uint64) {
	for id, img := range d.images {
		if img.UnitID == unitID {
			delete(d.images, id)
		}
	}
}

func (r units) DeleteImages(_ context.Context, unitID uint64) error {
	return r.g.with(func(d *data) error {
		deleteImages(d, unitID)
		return nil
	})
}

func (r units) FacilityIDs(_ context.Context, unitID uint64) (out []uint64, err error) {
	err = r.g.with(func(d *data) error {
		out = facilityIDs(d, unitID)
		return nil
	})
	return out, err
}

func (r units) AddFacilities(_ context.Context, unitID uint64, ids []uint64) error {
	return r.g.with(func(d *data) error {
		if _, ok := d.units[unitID]; !ok {
			return errForeignKey("unit_facilities.unit_id")
		}
		for _, fid := range ids {
			if _, ok := d.facilities[fid]; !ok {
				return errForeignKey("unit_facilities.facility_id")
			}
			key := model.UnitFacility{UnitID: unitID, FacilityID: fid}
			if _, dup := d.unitFacilities[key]; dup {
				return repository.ErrDuplicate
			}
			d.unitFacilities[key] = struct{}{}
		}
		return nil
	})
}

func clearFacilities(d *data, unitID uint64) {
	for uf := range d.unitFacilities {
		if uf.UnitID == unitID {
			delete(d.unitFacilities, uf)
		}
	}
}

func (r units) ClearFacilities(_ context.Context, unitID uint64) error {
	return r.g.with(func(d *data) error {
		clearFacilities(d, unitID)
		return nil
	})
}
