package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
)

// FloorRepo reads and writes the floors table.  The floor plan image column
// is nullable; an empty reference is stored as NULL.
type FloorRepo struct{ db DBTX }

func NewFloorRepo(db DBTX) *FloorRepo { return &FloorRepo{db: db} }

const floorColumns = "id, tower_id, label, number, floor_plan_image_url, created_at, updated_at"

func scanFloor(row interface{ Scan(...any) error }) (model.Floor, error) {
	var (
		f    model.Floor
		plan sql.NullString
	)
	if err := row.Scan(&f.ID, &f.TowerID, &f.Label, &f.Number, &plan, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return model.Floor{}, translate(err)
	}
	f.FloorPlanImageURL = plan.String
	return f, nil
}

func nullString(s string) sql.NullString { return sql.NullString{String: s, Valid: s != ""} }

func floorWhere(f FloorFilter) (string, []any) {
	if f.TowerID != 0 {
		return " WHERE tower_id=?", []any{f.TowerID}
	}
	return "", nil
}

func (r *FloorRepo) Get(ctx context.Context, id uint64) (model.Floor, error) {
	return scanFloor(r.db.QueryRowContext(ctx, "SELECT "+floorColumns+" FROM floors WHERE id=?", id))
}

// List returns floors newest first.
func (r *FloorRepo) List(ctx context.Context, f FloorFilter, w pagination.Window) ([]model.Floor, error) {
	where, args := floorWhere(f)
	lim, largs := limitClause(w)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+floorColumns+" FROM floors"+where+" ORDER BY created_at DESC, id DESC"+lim,
		append(args, largs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Floor
	for rows.Next() {
		fl, err := scanFloor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fl)
	}
	return out, rows.Err()
}

func (r *FloorRepo) Count(ctx context.Context, f FloorFilter) (int, error) {
	where, args := floorWhere(f)
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM floors"+where, args...).Scan(&n)
	return n, err
}

func (r *FloorRepo) Create(ctx context.Context, fl *model.Floor) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO floors (tower_id, label, number, floor_plan_image_url, created_at, updated_at) VALUES (?,?,?,?,?,?)",
		fl.TowerID, fl.Label, fl.Number, nullString(fl.FloorPlanImageURL), now, now)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fl.ID, fl.CreatedAt, fl.UpdatedAt = uint64(id), now, now
	return nil
}

func (r *FloorRepo) Update(ctx context.Context, fl *model.Floor) error {
	fl.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		"UPDATE floors SET tower_id=?, label=?, number=?, floor_plan_image_url=?, updated_at=? WHERE id=?",
		fl.TowerID, fl.Label, fl.Number, nullString(fl.FloorPlanImageURL), fl.UpdatedAt, fl.ID)
	return translate(err)
}

func (r *FloorRepo) Delete(ctx context.Context, id uint64) error {
	return affectedOne(r.db.ExecContext(ctx, "DELETE FROM floors WHERE id=?", id))
}
