package repository

import (
	"context"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
)

// RoomTypeRepo reads and writes the room_types table.
type RoomTypeRepo struct{ db DBTX }

func NewRoomTypeRepo(db DBTX) *RoomTypeRepo { return &RoomTypeRepo{db: db} }

func (r *RoomTypeRepo) t() namedTable { return namedTable{db: r.db, table: "room_types"} }

func toRoomType(n namedRow) model.RoomType {
	return model.RoomType{ID: n.ID, Name: n.Name, CreatedAt: n.CreatedAt, UpdatedAt: n.UpdatedAt}
}

func (r *RoomTypeRepo) Get(ctx context.Context, id uint64) (model.RoomType, error) {
	n, err := r.t().get(ctx, id)
	return toRoomType(n), err
}

func (r *RoomTypeRepo) List(ctx context.Context, f NameFilter, w pagination.Window) ([]model.RoomType, error) {
	rows, err := r.t().list(ctx, f, w)
	if err != nil {
		return nil, err
	}
	out := make([]model.RoomType, 0, len(rows))
	for _, n := range rows {
		out = append(out, toRoomType(n))
	}
	return out, nil
}

func (r *RoomTypeRepo) Count(ctx context.Context, f NameFilter) (int, error) { return r.t().count(ctx, f) }

func (r *RoomTypeRepo) Create(ctx context.Context, rt *model.RoomType) error {
	n, err := r.t().create(ctx, rt.Name)
	if err != nil {
		return err
	}
	*rt = toRoomType(n)
	return nil
}

func (r *RoomTypeRepo) Update(ctx context.Context, rt *model.RoomType) error {
	at, err := r.t().update(ctx, rt.ID, rt.Name)
	rt.UpdatedAt = at
	return err
}

func (r *RoomTypeRepo) Delete(ctx context.Context, id uint64) error { return r.t().delete(ctx, id) }
