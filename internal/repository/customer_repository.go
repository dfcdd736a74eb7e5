package repository

import (
	"context"
	"time"

	"github.com/iliyamo/unit-reservation/internal/model"
)

// CustomerRepo inserts and reads customers.  Customers are only created as
// part of a reservation and are never updated afterwards.
type CustomerRepo struct{ db DBTX }

func NewCustomerRepo(db DBTX) *CustomerRepo { return &CustomerRepo{db: db} }

const customerColumns = "id, name, ktp_number, npwp_number, email, phone_number, address, city, province, customer_source, created_at"

func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (name, ktp_number, npwp_number, email, phone_number, address, city, province, customer_source, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		c.Name, c.KTPNumber, c.NPWPNumber, c.Email, c.PhoneNumber, c.Address, c.City, c.Province, c.CustomerSource, now)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID, c.CreatedAt = uint64(id), now
	return nil
}

func (r *CustomerRepo) Get(ctx context.Context, id uint64) (model.Customer, error) {
	var c model.Customer
	err := r.db.QueryRowContext(ctx, "SELECT "+customerColumns+" FROM customers WHERE id=?", id).Scan(
		&c.ID, &c.Name, &c.KTPNumber, &c.NPWPNumber, &c.Email, &c.PhoneNumber,
		&c.Address, &c.City, &c.Province, &c.CustomerSource, &c.CreatedAt)
	return c, translate(err)
}
