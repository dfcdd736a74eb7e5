package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
)

// ReservationRepo provides CRUD operations for reservations.  Reservations
// are keyed by a UUID generated by the caller.  Detail reads join the unit,
// the customer and the salesman in one statement.
type ReservationRepo struct{ db DBTX }

// NewReservationRepo returns a new ReservationRepo bound to db.
func NewReservationRepo(db DBTX) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `r.uuid, r.unit_id, r.customer_id, r.salesman_id, r.media_source_category,
	r.media_source_desc, r.notes, r.payment_type, r.status, r.payment_proof_url, r.created_at, r.updated_at`

const reservationDetailSelect = "SELECT " + reservationColumns + `,
	u.id, u.unit_code, u.floor_id, u.room_type_id, u.price_offer, u.semi_gross_area, u.status, u.created_at, u.updated_at,
	c.id, c.name, c.ktp_number, c.npwp_number, c.email, c.phone_number, c.address, c.city, c.province, c.customer_source, c.created_at,
	s.id, s.name, s.email, s.role, s.created_at, s.updated_at
	FROM reservations r
	JOIN units u ON u.id = r.unit_id
	JOIN customers c ON c.id = r.customer_id
	JOIN users s ON s.id = r.salesman_id`

func reservationDest(r *model.Reservation) []any {
	return []any{&r.UUID, &r.UnitID, &r.CustomerID, &r.SalesmanID, &r.MediaSourceCategory,
		&r.MediaSourceDesc, &r.Notes, &r.PaymentType, &r.Status, &r.PaymentProofURL, &r.CreatedAt, &r.UpdatedAt}
}

func scanReservationDetail(row interface{ Scan(...any) error }) (model.ReservationDetail, error) {
	var d model.ReservationDetail
	dest := reservationDest(&d.Reservation)
	u, c, s := &d.Unit, &d.Customer, &d.Salesman
	dest = append(dest,
		&u.ID, &u.UnitCode, &u.FloorID, &u.RoomTypeID, &u.PriceOffer, &u.SemiGrossArea, &u.Status, &u.CreatedAt, &u.UpdatedAt,
		&c.ID, &c.Name, &c.KTPNumber, &c.NPWPNumber, &c.Email, &c.PhoneNumber, &c.Address, &c.City, &c.Province, &c.CustomerSource, &c.CreatedAt,
		&s.ID, &s.Name, &s.Email, &s.Role, &s.CreatedAt, &s.UpdatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return model.ReservationDetail{}, translate(err)
	}
	return d, nil
}

func reservationWhere(f ReservationFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.UnitID != 0 {
		conds = append(conds, "r.unit_id = ?")
		args = append(args, f.UnitID)
	}
	if f.SalesmanID != 0 {
		conds = append(conds, "r.salesman_id = ?")
		args = append(args, f.SalesmanID)
	}
	if f.Status != "" {
		conds = append(conds, "r.status = ?")
		args = append(args, f.Status)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Get fetches the reservation row only.
func (r *ReservationRepo) Get(ctx context.Context, uuid string) (model.Reservation, error) {
	var res model.Reservation
	err := r.db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations r WHERE r.uuid=?", uuid).Scan(reservationDest(&res)...)
	return res, translate(err)
}

func (r *ReservationRepo) GetDetail(ctx context.Context, uuid string) (model.ReservationDetail, error) {
	return scanReservationDetail(r.db.QueryRowContext(ctx, reservationDetailSelect+" WHERE r.uuid=?", uuid))
}

// List returns reservations newest first.
func (r *ReservationRepo) List(ctx context.Context, f ReservationFilter, w pagination.Window) ([]model.ReservationDetail, error) {
	where, args := reservationWhere(f)
	lim, largs := limitClause(w)
	rows, err := r.db.QueryContext(ctx,
		reservationDetailSelect+where+" ORDER BY r.created_at DESC, r.uuid"+lim, append(args, largs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ReservationDetail
	for rows.Next() {
		d, err := scanReservationDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *ReservationRepo) Count(ctx context.Context, f ReservationFilter) (int, error) {
	where, args := reservationWhere(f)
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reservations r"+where, args...).Scan(&n)
	return n, err
}

// Create inserts res.  UUID must already be set.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reservations (uuid, unit_id, customer_id, salesman_id, media_source_category, media_source_desc,
		 notes, payment_type, status, payment_proof_url, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		res.UUID, res.UnitID, res.CustomerID, res.SalesmanID, res.MediaSourceCategory, res.MediaSourceDesc,
		res.Notes, res.PaymentType, res.Status, res.PaymentProofURL, now, now)
	if err != nil {
		return translate(err)
	}
	res.CreatedAt, res.UpdatedAt = now, now
	return nil
}

// Update persists status and payment proof reference.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	res.UpdatedAt = time.Now().UTC()
	return affectedOne(r.db.ExecContext(ctx,
		"UPDATE reservations SET status=?, payment_proof_url=?, updated_at=? WHERE uuid=?",
		res.Status, res.PaymentProofURL, res.UpdatedAt, res.UUID))
}
