package service

import (
	"context"
	"strings"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/auth"
	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
	"github.com/iliyamo/unit-reservation/internal/repository"
)

// NameInput is the body of tower, room type and facility writes.
type NameInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

type NameQuery struct {
	pagination.Params
	Name string `query:"name"`
}

// namedStore is the store shape shared by towers, room types and facilities.
type namedStore[T any] interface {
	Get(ctx context.Context, id uint64) (T, error)
	List(ctx context.Context, f repository.NameFilter, w pagination.Window) ([]T, error)
	Count(ctx context.Context, f repository.NameFilter) (int, error)
	Create(ctx context.Context, v *T) error
	Update(ctx context.Context, v *T) error
	Delete(ctx context.Context, id uint64) error
}

// catalog implements CRUD for a master-data table whose only attribute is
// a name.  Reads are open to every authenticated caller, writes to admins.
type catalog[T any] struct {
	store   repository.Store
	table   func(repository.Gateway) namedStore[T]
	noun    string
	newItem func(name string) T
	rename  func(v *T, name string)
	// inUse rejects deletion while other rows still reference id.
	inUse func(ctx context.Context, tx repository.Gateway, id uint64) error
}

func (c catalog[T]) List(ctx context.Context, caller *auth.Caller, q NameQuery) (pagination.Result[T], error) {
	if err := auth.Authorize(caller); err != nil {
		return pagination.Result[T]{}, err
	}
	f := repository.NameFilter{Name: strings.TrimSpace(q.Name)}
	res, err := pagination.Paginate[T](ctx, c.table(c.store), f, q.Params)
	if err != nil {
		return res, internal(err)
	}
	return res, nil
}

func (c catalog[T]) Get(ctx context.Context, caller *auth.Caller, id uint64) (T, error) {
	var zero T
	if err := auth.Authorize(caller); err != nil {
		return zero, err
	}
	v, err := c.table(c.store).Get(ctx, id)
	if err != nil {
		return zero, lookup(err, c.noun+" not found")
	}
	return v, nil
}

func (c catalog[T]) Create(ctx context.Context, caller *auth.Caller, in NameInput) (T, error) {
	var zero T
	if err := auth.Authorize(caller, model.RoleAdmin); err != nil {
		return zero, err
	}
	name, err := requireName(in.Name)
	if err != nil {
		return zero, err
	}
	v := c.newItem(name)
	if err := c.table(c.store).Create(ctx, &v); err != nil {
		return zero, internal(err)
	}
	return v, nil
}

func (c catalog[T]) Update(ctx context.Context, caller *auth.Caller, id uint64, in NameInput) (T, error) {
	var zero T
	if err := auth.Authorize(caller, model.RoleAdmin); err != nil {
		return zero, err
	}
	name, err := requireName(in.Name)
	if err != nil {
		return zero, err
	}
	v, err := c.table(c.store).Get(ctx, id)
	if err != nil {
		return zero, lookup(err, c.noun+" not found")
	}
	c.rename(&v, name)
	if err := c.table(c.store).Update(ctx, &v); err != nil {
		return zero, lookup(err, c.noun+" not found")
	}
	return v, nil
}

func (c catalog[T]) Delete(ctx context.Context, caller *auth.Caller, id uint64) error {
	if err := auth.Authorize(caller, model.RoleAdmin); err != nil {
		return err
	}
	return c.store.RunInTx(ctx, func(tx repository.Gateway) error {
		if _, err := c.table(tx).Get(ctx, id); err != nil {
			return lookup(err, c.noun+" not found")
		}
		if c.inUse != nil {
			if err := c.inUse(ctx, tx, id); err != nil {
				return err
			}
		}
		return lookup(c.table(tx).Delete(ctx, id), c.noun+" not found")
	})
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.BadRequestf("name is required")
	}
	return name, nil
}

// TowerService manages towers.  A tower with floors cannot be deleted.
type TowerService struct{ catalog[model.Tower] }

func NewTowerService(store repository.Store) *TowerService {
	return &TowerService{catalog[model.Tower]{
		store:   store,
		table:   func(g repository.Gateway) namedStore[model.Tower] { return g.Towers() },
		noun:    "tower",
		newItem: func(name string) model.Tower { return model.Tower{Name: name} },
		rename:  func(t *model.Tower, name string) { t.Name = name },
		inUse: func(ctx context.Context, tx repository.Gateway, id uint64) error {
			n, err := tx.Floors().Count(ctx, repository.FloorFilter{TowerID: id})
			if err != nil {
				return internal(err)
			}
			if n > 0 {
				return apperr.BadRequestf("tower has floors")
			}
			return nil
		},
	}}
}

// RoomTypeService manages room types.  A room type used by units cannot be
// deleted.
type RoomTypeService struct{ catalog[model.RoomType] }

func NewRoomTypeService(store repository.Store) *RoomTypeService {
	return &RoomTypeService{catalog[model.RoomType]{
		store:   store,
		table:   func(g repository.Gateway) namedStore[model.RoomType] { return g.RoomTypes() },
		noun:    "room type",
		newItem: func(name string) model.RoomType { return model.RoomType{Name: name} },
		rename:  func(rt *model.RoomType, name string) { rt.Name = name },
		inUse: func(ctx context.Context, tx repository.Gateway, id uint64) error {
			n, err := tx.Units().Count(ctx, repository.UnitFilter{RoomTypeID: id})
			if err != nil {
				return internal(err)
			}
			if n > 0 {
				return apperr.BadRequestf("room type has units")
			}
			return nil
		},
	}}
}

// FacilityService manages facilities.  Deleting one drops its unit links.
type FacilityService struct{ catalog[model.Facility] }

func NewFacilityService(store repository.Store) *FacilityService {
	return &FacilityService{catalog[model.Facility]{
		store:   store,
		table:   func(g repository.Gateway) namedStore[model.Facility] { return g.Facilities() },
		noun:    "facility",
		newItem: func(name string) model.Facility { return model.Facility{Name: name} },
		rename:  func(f *model.Facility, name string) { f.Name = name },
	}}
}
