package repository

import (
	"context"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
)

// FacilityRepo reads and writes the facilities table.  Join rows in
// unit_facilities cascade when a facility is deleted.
type FacilityRepo struct{ db DBTX }

func NewFacilityRepo(db DBTX) *FacilityRepo { return &FacilityRepo{db: db} }

func (r *FacilityRepo) t() namedTable { return namedTable{db: r.db, table: "facilities"} }

func toFacility(n namedRow) model.Facility {
	return model.Facility{ID: n.ID, Name: n.Name, CreatedAt: n.CreatedAt, UpdatedAt: n.UpdatedAt}
}

func (r *FacilityRepo) Get(ctx context.Context, id uint64) (model.Facility, error) {
	n, err := r.t().get(ctx, id)
	return toFacility(n), err
}

// FindByIDs returns the facilities among ids that exist, ordered by id.
// Duplicated ids are returned once.
func (r *FacilityRepo) FindByIDs(ctx context.Context, ids []uint64) ([]model.Facility, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM facilities WHERE id IN ("+inPlaceholders(len(ids))+") ORDER BY id",
		uint64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Facility
	for rows.Next() {
		var f model.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FacilityRepo) List(ctx context.Context, f NameFilter, w pagination.Window) ([]model.Facility, error) {
	rows, err := r.t().list(ctx, f, w)
	if err != nil {
		return nil, err
	}
	out := make([]model.Facility, 0, len(rows))
	for _, n := range rows {
		out = append(out, toFacility(n))
	}
	return out, nil
}

func (r *FacilityRepo) Count(ctx context.Context, f NameFilter) (int, error) { return r.t().count(ctx, f) }

func (r *FacilityRepo) Create(ctx context.Context, fc *model.Facility) error {
	n, err := r.t().create(ctx, fc.Name)
	if err != nil {
		return err
	}
	*fc = toFacility(n)
	return nil
}

func (r *FacilityRepo) Update(ctx context.Context, fc *model.Facility) error {
	at, err := r.t().update(ctx, fc.ID, fc.Name)
	fc.UpdatedAt = at
	return err
}

func (r *FacilityRepo) Delete(ctx context.Context, id uint64) error { return r.t().delete(ctx, id) }
