package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repository can
// run either on the pool or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NameFilter matches rows whose name contains Name.  Empty matches all.
type NameFilter struct {
	Name string
}

type UserFilter struct {
	Role model.Role
}

type FloorFilter struct {
	TowerID uint64
}

// UnitFilter narrows unit listings.  Zero values are ignored.
type UnitFilter struct {
	UnitCode   string // substring match
	FloorID    uint64
	RoomTypeID uint64
	FacilityID uint64 // units that have this facility
}

type ReservationFilter struct {
	UnitID     uint64
	SalesmanID uint64
	Status     model.ReservationStatus
}

type UserStore interface {
	Get(ctx context.Context, id uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context, f UserFilter, w pagination.Window) ([]model.User, error)
	Count(ctx context.Context, f UserFilter) (int, error)
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id uint64) error
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	// ValidateRefresh returns the owner of an active token, ErrNotFound otherwise.
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
	// PurgeExpired removes tokens that expired or were revoked before cutoff.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type TowerStore interface {
	Get(ctx context.Context, id uint64) (model.Tower, error)
	List(ctx context.Context, f NameFilter, w pagination.Window) ([]model.Tower, error)
	Count(ctx context.Context, f NameFilter) (int, error)
	Create(ctx context.Context, t *model.Tower) error
	Update(ctx context.Context, t *model.Tower) error
	Delete(ctx context.Context, id uint64) error
}

type FloorStore interface {
	Get(ctx context.Context, id uint64) (model.Floor, error)
	List(ctx context.Context, f FloorFilter, w pagination.Window) ([]model.Floor, error)
	Count(ctx context.Context, f FloorFilter) (int, error)
	Create(ctx context.Context, fl *model.Floor) error
	Update(ctx context.Context, fl *model.Floor) error
	Delete(ctx context.Context, id uint64) error
}

type RoomTypeStore interface {
	Get(ctx context.Context, id uint64) (model.RoomType, error)
	List(ctx context.Context, f NameFilter, w pagination.Window) ([]model.RoomType, error)
	Count(ctx context.Context, f NameFilter) (int, error)
	Create(ctx context.Context, rt *model.RoomType) error
	Update(ctx context.Context, rt *model.RoomType) error
	Delete(ctx context.Context, id uint64) error
}

type FacilityStore interface {
	Get(ctx context.Context, id uint64) (model.Facility, error)
	// FindByIDs returns the facilities that exist among ids.
	FindByIDs(ctx context.Context, ids []uint64) ([]model.Facility, error)
	List(ctx context.Context, f NameFilter, w pagination.Window) ([]model.Facility, error)
	Count(ctx context.Context, f NameFilter) (int, error)
	Create(ctx context.Context, fc *model.Facility) error
	Update(ctx context.Context, fc *model.Facility) error
	Delete(ctx context.Context, id uint64) error
}

type UnitStore interface {
	Get(ctx context.Context, id uint64) (model.Unit, error)
	GetDetail(ctx context.Context, id uint64) (model.UnitDetail, error)
	List(ctx context.Context, f UnitFilter, w pagination.Window) ([]model.UnitDetail, error)
	Count(ctx context.Context, f UnitFilter) (int, error)
	Create(ctx context.Context, u *model.Unit) error
	// Update writes every column; a missing unit yields ErrNotFound.
	Update(ctx context.Context, u *model.Unit) error
	SetStatus(ctx context.Context, id uint64, status model.UnitStatus) error
	// Delete removes the unit together with its image and facility rows.
	Delete(ctx context.Context, id uint64) error

	Images(ctx context.Context, unitID uint64) ([]model.UnitImage, error)
	AddImage(ctx context.Context, img *model.UnitImage) error
	DeleteImages(ctx context.Context, unitID uint64) error

	FacilityIDs(ctx context.Context, unitID uint64) ([]uint64, error)
	AddFacilities(ctx context.Context, unitID uint64, facilityIDs []uint64) error
	ClearFacilities(ctx context.Context, unitID uint64) error
}

type CustomerStore interface {
	Get(ctx context.Context, id uint64) (model.Customer, error)
	Create(ctx context.Context, c *model.Customer) error
}

type ReservationStore interface {
	Get(ctx context.Context, uuid string) (model.Reservation, error)
	GetDetail(ctx context.Context, uuid string) (model.ReservationDetail, error)
	// List orders by creation time, newest first.
	List(ctx context.Context, f ReservationFilter, w pagination.Window) ([]model.ReservationDetail, error)
	Count(ctx context.Context, f ReservationFilter) (int, error)
	Create(ctx context.Context, r *model.Reservation) error
	// Update writes status and payment proof reference.
	Update(ctx context.Context, r *model.Reservation) error
}

// Gateway exposes one store per entity.  Inside RunInTx every store shares
// the same transaction.
type Gateway interface {
	Users() UserStore
	Tokens() TokenStore
	Towers() TowerStore
	Floors() FloorStore
	RoomTypes() RoomTypeStore
	Facilities() FacilityStore
	Units() UnitStore
	Customers() CustomerStore
	Reservations() ReservationStore
}

// Store is a Gateway that can open transactions.
type Store interface {
	Gateway
	// RunInTx calls fn with a transactional gateway.  It commits when fn
	// returns nil and rolls back otherwise, returning fn's error unchanged.
	RunInTx(ctx context.Context, fn func(tx Gateway) error) error
}

type gateway struct{ db DBTX }

func (g gateway) Users() UserStore               { return &UserRepo{db: g.db} }
func (g gateway) Tokens() TokenStore             { return &TokenRepo{db: g.db} }
func (g gateway) Towers() TowerStore             { return &TowerRepo{db: g.db} }
func (g gateway) Floors() FloorStore             { return &FloorRepo{db: g.db} }
func (g gateway) RoomTypes() RoomTypeStore       { return &RoomTypeRepo{db: g.db} }
func (g gateway) Facilities() FacilityStore      { return &FacilityRepo{db: g.db} }
func (g gateway) Units() UnitStore               { return &UnitRepo{db: g.db} }
func (g gateway) Customers() CustomerStore       { return &CustomerRepo{db: g.db} }
func (g gateway) Reservations() ReservationStore { return &ReservationRepo{db: g.db} }

// MySQLStore is the database/sql implementation of Store.
type MySQLStore struct {
	gateway
	db        *sql.DB
	isolation sql.IsolationLevel
}

// NewMySQLStore binds the repositories to db.  Transactions opened by
// RunInTx use the given isolation level; sql.LevelDefault leaves the
// server default (REPEATABLE READ on InnoDB) in place.
func NewMySQLStore(db *sql.DB, isolation sql.IsolationLevel) *MySQLStore {
	return &MySQLStore{gateway: gateway{db: db}, db: db, isolation: isolation}
}

func (s *MySQLStore) RunInTx(ctx context.Context, fn func(tx Gateway) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: s.isolation})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		// also runs while a panic unwinds
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(gateway{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// Ping reports database reachability for the health endpoint.
func (s *MySQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// limitClause renders LIMIT/OFFSET for w, or nothing for an unbounded window.
func limitClause(w pagination.Window) (string, []any) {
	if w.All() {
		if w.Offset > 0 {
			// MySQL has no OFFSET without LIMIT
			return " LIMIT 18446744073709551615 OFFSET ?", []any{w.Offset}
		}
		return "", nil
	}
	return " LIMIT ? OFFSET ?", []any{w.Limit, w.Offset}
}

// inPlaceholders returns "?,?,?" for n arguments.
func inPlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, 2*n-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}

func uint64Args(ids []uint64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
