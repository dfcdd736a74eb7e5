package repository

import (
	"context"
	"time"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
)

// Towers, room types and facilities share the same (id, name, timestamps)
// shape; namedTable holds the SQL for one of those tables and the typed
// repositories below convert rows into their model.

type namedRow struct {
	ID        uint64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type namedTable struct {
	db    DBTX
	table string
}

func nameWhere(f NameFilter) (string, []any) {
	if f.Name != "" {
		return " WHERE name LIKE ?", []any{"%" + f.Name + "%"}
	}
	return "", nil
}

func (t namedTable) get(ctx context.Context, id uint64) (namedRow, error) {
	var r namedRow
	err := t.db.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM "+t.table+" WHERE id=?", id).
		Scan(&r.ID, &r.Name, &r.CreatedAt, &r.UpdatedAt)
	return r, translate(err)
}

func (t namedTable) list(ctx context.Context, f NameFilter, w pagination.Window) ([]namedRow, error) {
	where, args := nameWhere(f)
	lim, largs := limitClause(w)
	rows, err := t.db.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM "+t.table+where+" ORDER BY created_at DESC, id DESC"+lim,
		append(args, largs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []namedRow
	for rows.Next() {
		var r namedRow
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (t namedTable) count(ctx context.Context, f NameFilter) (int, error) {
	where, args := nameWhere(f)
	var n int
	err := t.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table+where, args...).Scan(&n)
	return n, err
}

func (t namedTable) create(ctx context.Context, name string) (namedRow, error) {
	now := time.Now().UTC()
	res, err := t.db.ExecContext(ctx,
		"INSERT INTO "+t.table+" (name, created_at, updated_at) VALUES (?,?,?)", name, now, now)
	if err != nil {
		return namedRow{}, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return namedRow{}, err
	}
	return namedRow{ID: uint64(id), Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

func (t namedTable) update(ctx context.Context, id uint64, name string) (time.Time, error) {
	now := time.Now().UTC()
	_, err := t.db.ExecContext(ctx,
		"UPDATE "+t.table+" SET name=?, updated_at=? WHERE id=?", name, now, id)
	return now, translate(err)
}

func (t namedTable) delete(ctx context.Context, id uint64) error {
	return affectedOne(t.db.ExecContext(ctx, "DELETE FROM "+t.table+" WHERE id=?", id))
}

// TowerRepo reads and writes the towers table.
type TowerRepo struct{ db DBTX }

func NewTowerRepo(db DBTX) *TowerRepo { return &TowerRepo{db: db} }

func (r *TowerRepo) t() namedTable { return namedTable{db: r.db, table: "towers"} }

func toTower(n namedRow) model.Tower {
	return model.Tower{ID: n.ID, Name: n.Name, CreatedAt: n.CreatedAt, UpdatedAt: n.UpdatedAt}
}

func (r *TowerRepo) Get(ctx context.Context, id uint64) (model.Tower, error) {
	n, err := r.t().get(ctx, id)
	return toTower(n), err
}

func (r *TowerRepo) List(ctx context.Context, f NameFilter, w pagination.Window) ([]model.Tower, error) {
	rows, err := r.t().list(ctx, f, w)
	if err != nil {
		return nil, err
	}
	out := make([]model.Tower, 0, len(rows))
	for _, n := range rows {
		out = append(out, toTower(n))
	}
	return out, nil
}

func (r *TowerRepo) Count(ctx context.Context, f NameFilter) (int, error) { return r.t().count(ctx, f) }

func (r *TowerRepo) Create(ctx context.Context, t *model.Tower) error {
	n, err := r.t().create(ctx, t.Name)
	if err != nil {
		return err
	}
	*t = toTower(n)
	return nil
}

func (r *TowerRepo) Update(ctx context.Context, t *model.Tower) error {
	at, err := r.t().update(ctx, t.ID, t.Name)
	t.UpdatedAt = at
	return err
}

func (r *TowerRepo) Delete(ctx context.Context, id uint64) error { return r.t().delete(ctx, id) }
