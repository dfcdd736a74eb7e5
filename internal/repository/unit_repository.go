package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
)

// UnitRepo reads and writes units together with their image rows and
// facility join rows.  Listing returns model.UnitDetail values: the unit,
// its room type name, images and facilities, loaded with one query per
// relation for the whole page.
type UnitRepo struct{ db DBTX }

func NewUnitRepo(db DBTX) *UnitRepo { return &UnitRepo{db: db} }

const unitColumns = "u.id, u.unit_code, u.floor_id, u.room_type_id, u.price_offer, u.semi_gross_area, u.status, u.created_at, u.updated_at"

func scanUnit(row interface{ Scan(...any) error }, extra ...any) (model.Unit, error) {
	var u model.Unit
	dest := append([]any{&u.ID, &u.UnitCode, &u.FloorID, &u.RoomTypeID, &u.PriceOffer,
		&u.SemiGrossArea, &u.Status, &u.CreatedAt, &u.UpdatedAt}, extra...)
	return u, translate(row.Scan(dest...))
}

func unitWhere(f UnitFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.UnitCode != "" {
		conds = append(conds, "u.unit_code LIKE ?")
		args = append(args, "%"+f.UnitCode+"%")
	}
	if f.FloorID != 0 {
		conds = append(conds, "u.floor_id = ?")
		args = append(args, f.FloorID)
	}
	if f.RoomTypeID != 0 {
		conds = append(conds, "u.room_type_id = ?")
		args = append(args, f.RoomTypeID)
	}
	if f.FacilityID != 0 {
		conds = append(conds, "EXISTS (SELECT 1 FROM unit_facilities uf WHERE uf.unit_id = u.id AND uf.facility_id = ?)")
		args = append(args, f.FacilityID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *UnitRepo) Get(ctx context.Context, id uint64) (model.Unit, error) {
	return scanUnit(r.db.QueryRowContext(ctx, "SELECT "+unitColumns+" FROM units u WHERE u.id=?", id))
}

func (r *UnitRepo) GetDetail(ctx context.Context, id uint64) (model.UnitDetail, error) {
	var d model.UnitDetail
	u, err := scanUnit(r.db.QueryRowContext(ctx,
		"SELECT "+unitColumns+", rt.name FROM units u JOIN room_types rt ON rt.id = u.room_type_id WHERE u.id=?", id),
		&d.RoomTypeName)
	if err != nil {
		return model.UnitDetail{}, err
	}
	d.Unit = u
	out := []model.UnitDetail{d}
	if err := r.loadRelations(ctx, out); err != nil {
		return model.UnitDetail{}, err
	}
	return out[0], nil
}

// List returns units matching f ordered by id.
func (r *UnitRepo) List(ctx context.Context, f UnitFilter, w pagination.Window) ([]model.UnitDetail, error) {
	where, args := unitWhere(f)
	lim, largs := limitClause(w)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+unitColumns+", rt.name FROM units u JOIN room_types rt ON rt.id = u.room_type_id"+where+" ORDER BY u.created_at DESC, u.id DESC"+lim,
		append(args, largs...)...)
	if err != nil {
		return nil, err
	}
	var out []model.UnitDetail
	for rows.Next() {
		var d model.UnitDetail
		u, err := scanUnit(rows, &d.RoomTypeName)
		if err != nil {
			rows.Close()
			return nil, err
		}
		d.Unit = u
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := r.loadRelations(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UnitRepo) Count(ctx context.Context, f UnitFilter) (int, error) {
	where, args := unitWhere(f)
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM units u"+where, args...).Scan(&n)
	return n, err
}

// loadRelations fills Images and Facilities for every unit in units.
func (r *UnitRepo) loadRelations(ctx context.Context, units []model.UnitDetail) error {
	if len(units) == 0 {
		return nil
	}
	ids := make([]uint64, len(units))
	index := make(map[uint64]int, len(units))
	for i := range units {
		ids[i] = units[i].ID
		index[units[i].ID] = i
		units[i].Images = []model.UnitImage{}
		units[i].Facilities = []model.FacilityRef{}
	}
	in := inPlaceholders(len(ids))

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, unit_id, image_url, description FROM unit_images WHERE unit_id IN ("+in+") ORDER BY id",
		uint64Args(ids)...)
	if err != nil {
		return err
	}
	for rows.Next() {
		var img model.UnitImage
		if err := rows.Scan(&img.ID, &img.UnitID, &img.ImageURL, &img.Description); err != nil {
			rows.Close()
			return err
		}
		i := index[img.UnitID]
		units[i].Images = append(units[i].Images, img)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	rows, err = r.db.QueryContext(ctx,
		"SELECT uf.unit_id, f.id, f.name FROM unit_facilities uf JOIN facilities f ON f.id = uf.facility_id WHERE uf.unit_id IN ("+in+") ORDER BY f.id",
		uint64Args(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			unitID uint64
			ref    model.FacilityRef
		)
		if err := rows.Scan(&unitID, &ref.ID, &ref.Name); err != nil {
			return err
		}
		i := index[unitID]
		units[i].Facilities = append(units[i].Facilities, ref)
	}
	return rows.Err()
}

func (r *UnitRepo) Create(ctx context.Context, u *model.Unit) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO units (unit_code, floor_id, room_type_id, price_offer, semi_gross_area, status, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		u.UnitCode, u.FloorID, u.RoomTypeID, u.PriceOffer, u.SemiGrossArea, u.Status, now, now)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID, u.CreatedAt, u.UpdatedAt = uint64(id), now, now
	return nil
}

func (r *UnitRepo) Update(ctx context.Context, u *model.Unit) error {
	u.UpdatedAt = time.Now().UTC()
	return affectedOne(r.db.ExecContext(ctx,
		`UPDATE units SET unit_code=?, floor_id=?, room_type_id=?, price_offer=?, semi_gross_area=?, status=?, updated_at=?
		 WHERE id=?`,
		u.UnitCode, u.FloorID, u.RoomTypeID, u.PriceOffer, u.SemiGrossArea, u.Status, u.UpdatedAt, u.ID))
}

// SetStatus changes only the status column.
func (r *UnitRepo) SetStatus(ctx context.Context, id uint64, status model.UnitStatus) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE units SET status=?, updated_at=? WHERE id=?", status, time.Now().UTC(), id)
	return translate(err)
}

// Delete removes the unit; image and facility rows cascade.
func (r *UnitRepo) Delete(ctx context.Context, id uint64) error {
	return affectedOne(r.db.ExecContext(ctx, "DELETE FROM units WHERE id=?", id))
}

func (r *UnitRepo) Images(ctx context.Context, unitID uint64) ([]model.UnitImage, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, unit_id, image_url, description FROM unit_images WHERE unit_id=? ORDER BY id", unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.UnitImage
	for rows.Next() {
		var img model.UnitImage
		if err := rows.Scan(&img.ID, &img.UnitID, &img.ImageURL, &img.Description); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (r *UnitRepo) AddImage(ctx context.Context, img *model.UnitImage) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO unit_images (unit_id, image_url, description) VALUES (?,?,?)",
		img.UnitID, img.ImageURL, img.Description)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	img.ID = uint64(id)
	return nil
}

func (r *UnitRepo) DeleteImages(ctx context.Context, unitID uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM unit_images WHERE unit_id=?", unitID)
	return err
}

func (r *UnitRepo) FacilityIDs(ctx context.Context, unitID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT facility_id FROM unit_facilities WHERE unit_id=? ORDER BY facility_id", unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// AddFacilities inserts one join row per facility in a single statement.
func (r *UnitRepo) AddFacilities(ctx context.Context, unitID uint64, facilityIDs []uint64) error {
	if len(facilityIDs) == 0 {
		return nil
	}
	values := make([]string, len(facilityIDs))
	args := make([]any, 0, 2*len(facilityIDs))
	for i, fid := range facilityIDs {
		values[i] = "(?,?)"
		args = append(args, unitID, fid)
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO unit_facilities (unit_id, facility_id) VALUES "+strings.Join(values, ","), args...)
	return translate(err)
}

func (r *UnitRepo) ClearFacilities(ctx context.Context, unitID uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM unit_facilities WHERE unit_id=?", unitID)
	return err
}
