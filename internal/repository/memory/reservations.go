package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
	"github.com/iliyamo/unit-reservation/internal/repository"
)

type customers struct{ g *gw }

func (r customers) Get(_ context.Context, id uint64) (model.Customer, error) {
	return get(r.g, func(d *data) map[uint64]model.Customer { return d.customers }, id)
}

func (r customers) Create(_ context.Context, c *model.Customer) error {
	return r.g.with(func(d *data) error {
		c.ID = d.next("customers")
		c.CreatedAt = now()
		d.customers[c.ID] = *c
		return nil
	})
}

type reservations struct{ g *gw }

func (r reservations) Get(_ context.Context, uuid string) (out model.Reservation, err error) {
	err = r.g.with(func(d *data) error {
		res, ok := d.reservations[uuid]
		if !ok {
			return repository.ErrNotFound
		}
		out = res
		return nil
	})
	return out, err
}

func reservationDetail(d *data, res model.Reservation) model.ReservationDetail {
	return model.ReservationDetail{
		Reservation: res,
		Unit:        d.units[res.UnitID],
		Customer:    d.customers[res.CustomerID],
		Salesman:    d.users[res.SalesmanID],
	}
}

func (r reservations) GetDetail(_ context.Context, uuid string) (out model.ReservationDetail, err error) {
	err = r.g.with(func(d *data) error {
		res, ok := d.reservations[uuid]
		if !ok {
			return repository.ErrNotFound
		}
		out = reservationDetail(d, res)
		return nil
	})
	return out, err
}

func reservationMatch(f repository.ReservationFilter, res model.Reservation) bool {
	if f.UnitID != 0 && res.UnitID != f.UnitID {
		return false
	}
	if f.SalesmanID != 0 && res.SalesmanID != f.SalesmanID {
		return false
	}
	return f.Status == "" || res.Status == f.Status
}

// matching returns reservations newest first.
func matching(d *data, f repository.ReservationFilter) []model.Reservation {
	var out []model.Reservation
	for _, res := range d.reservations {
		if reservationMatch(f, res) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return d.resOrder[a.UUID] > d.resOrder[b.UUID]
	})
	return out
}

func (r reservations) List(_ context.Context, f repository.ReservationFilter, w pagination.Window) (out []model.ReservationDetail, err error) {
	err = r.g.with(func(d *data) error {
		page := pagination.Slice(matching(d, f), w)
		out = make([]model.ReservationDetail, 0, len(page))
		for _, res := range page {
			out = append(out, reservationDetail(d, res))
		}
		return nil
	})
	return out, err
}

func (r reservations) Count(_ context.Context, f repository.ReservationFilter) (n int, err error) {
	err = r.g.with(func(d *data) error {
		n = len(matching(d, f))
		return nil
	})
	return n, err
}

func (r reservations) Create(_ context.Context, res *model.Reservation) error {
	return r.g.with(func(d *data) error {
		if _, ok := d.reservations[res.UUID]; ok {
			return repository.ErrDuplicate
		}
		if _, ok := d.units[res.UnitID]; !ok {
			return errForeignKey("reservations.unit_id")
		}
		if _, ok := d.customers[res.CustomerID]; !ok {
			return errForeignKey("reservations.customer_id")
		}
		if _, ok := d.users[res.SalesmanID]; !ok {
			return errForeignKey("reservations.salesman_id")
		}
		res.CreatedAt, res.UpdatedAt = now(), now()
		d.reservations[res.UUID] = *res
		d.resOrder[res.UUID] = d.next("reservations")
		return nil
	})
}

func (r reservations) Update(_ context.Context, res *model.Reservation) error {
	return r.g.with(func(d *data) error {
		cur, ok := d.reservations[res.UUID]
		if !ok {
			return repository.ErrNotFound
		}
		cur.Status, cur.PaymentProofURL, cur.UpdatedAt = res.Status, res.PaymentProofURL, now()
		d.reservations[res.UUID] = cur
		res.UpdatedAt = cur.UpdatedAt
		return nil
	})
}
